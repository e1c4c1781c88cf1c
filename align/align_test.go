// haplogo: a haplotype-based variant calling engine for sequencing data.
// Copyright (c) 2021 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/ExaScience/haplogo/blob/master/LICENSE.txt>.

package align

import (
	"math"
	"testing"

	"github.com/vertgenlab/gonomics/cigar"
	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/sam"

	"github.com/exascience/haplogo/variants"
)

func makeRead(pos uint32, cigarString, seq, qual string) sam.Sam {
	var read sam.Sam
	read.RName = "chr1"
	read.Pos = pos
	read.Cigar = cigar.FromString(cigarString)
	read.Seq = dna.StringToBases(seq)
	read.Qual = qual
	return read
}

func makeHaplotype(bases string) variants.Haplotype {
	return variants.Haplotype{Contig: "chr1", Start: 0, Bases: bases}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-12
}

func TestAlignPerfectMatch(t *testing.T) {
	model := NewBaseQualityModel()
	read := makeRead(1, "4M", "ACGT", "IIII")
	expected := 4 * logMatch['I'-qualityBase]
	if !almostEqual(model.Align(read, makeHaplotype("ACGT")), expected) {
		t.Error("perfect match failed")
	}
}

func TestAlignMismatch(t *testing.T) {
	model := NewBaseQualityModel()
	read := makeRead(1, "4M", "ACGA", "IIII")
	q := 'I' - qualityBase
	expected := 3*logMatch[q] + logMismatch[q]
	if !almostEqual(model.Align(read, makeHaplotype("ACGT")), expected) {
		t.Error("mismatch failed")
	}
}

func TestAlignQualityWeighting(t *testing.T) {
	model := NewBaseQualityModel()
	haplotype := makeHaplotype("ACGT")
	confident := model.Align(makeRead(1, "4M", "ACGA", "IIII"), haplotype)
	uncertain := model.Align(makeRead(1, "4M", "ACGA", "III#"), haplotype)
	if uncertain <= confident {
		t.Error("quality weighting failed")
	}
}

func TestAlignInsertion(t *testing.T) {
	model := NewBaseQualityModel()
	read := makeRead(1, "2M2I2M", "ACGGTA", "IIIIII")
	expected := 4*logMatch['I'-qualityBase] + model.GapOpen + model.GapExtend
	if !almostEqual(model.Align(read, makeHaplotype("ACTA")), expected) {
		t.Error("insertion failed")
	}
}

func TestAlignDeletion(t *testing.T) {
	model := NewBaseQualityModel()
	read := makeRead(1, "2M2D2M", "ACTA", "IIII")
	expected := 4*logMatch['I'-qualityBase] + model.GapOpen + model.GapExtend
	if !almostEqual(model.Align(read, makeHaplotype("ACGGTA")), expected) {
		t.Error("deletion failed")
	}
}

func TestAlignSoftClip(t *testing.T) {
	model := NewBaseQualityModel()
	read := makeRead(1, "2S4M", "GGACGT", "IIIIII")
	expected := 4 * logMatch['I'-qualityBase]
	if !almostEqual(model.Align(read, makeHaplotype("ACGT")), expected) {
		t.Error("soft clip failed")
	}
}

func TestAlignNonCanonicalBase(t *testing.T) {
	model := NewBaseQualityModel()
	read := makeRead(1, "4M", "ACNT", "IIII")
	expected := 3 * logMatch['I'-qualityBase]
	if !almostEqual(model.Align(read, makeHaplotype("ACGT")), expected) {
		t.Error("non-canonical base failed")
	}
}

func TestAlignNoOverlap(t *testing.T) {
	model := NewBaseQualityModel()
	read := makeRead(101, "4M", "ACGT", "IIII")
	if model.Align(read, makeHaplotype("ACGT")) != 0 {
		t.Error("no overlap failed")
	}
}
