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

package variants

import (
	"testing"

	"github.com/vertgenlab/gonomics/cigar"
	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/sam"

	"github.com/exascience/haplogo/regions"
)

func TestNormalizeAllele(t *testing.T) {
	v := NormalizeAllele("chr1", 100, "ACGT", "ACGG")
	if v != (Variant{Contig: "chr1", Pos: 100, Ref: "ACGT", Alt: "ACGG"}) {
		t.Error("NormalizeAllele equal length failed")
	}
	v = NormalizeAllele("chr1", 100, "AT", "A")
	if v != (Variant{Contig: "chr1", Pos: 101, Ref: "T", Alt: ""}) {
		t.Error("NormalizeAllele deletion failed")
	}
	v = NormalizeAllele("chr1", 100, "A", "AGG")
	if v != (Variant{Contig: "chr1", Pos: 101, Ref: "", Alt: "GG"}) {
		t.Error("NormalizeAllele insertion failed")
	}
	v = NormalizeAllele("chr1", 100, "A", "T")
	if v != (Variant{Contig: "chr1", Pos: 100, Ref: "A", Alt: "T"}) {
		t.Error("NormalizeAllele SNV failed")
	}
}

func TestVariantKinds(t *testing.T) {
	snv := Variant{Contig: "chr1", Pos: 10, Ref: "A", Alt: "T"}
	if !snv.IsSNV() || snv.IsInsertion() || snv.IsDeletion() {
		t.Error("SNV kind failed")
	}
	insertion := Variant{Contig: "chr1", Pos: 10, Ref: "", Alt: "GG"}
	if insertion.IsSNV() || !insertion.IsInsertion() || insertion.IsDeletion() {
		t.Error("insertion kind failed")
	}
	deletion := Variant{Contig: "chr1", Pos: 10, Ref: "AC", Alt: ""}
	if deletion.IsSNV() || deletion.IsInsertion() || !deletion.IsDeletion() {
		t.Error("deletion kind failed")
	}
}

func TestVariantLess(t *testing.T) {
	a := Variant{Contig: "chr1", Pos: 10, Ref: "A", Alt: "T"}
	b := Variant{Contig: "chr1", Pos: 11, Ref: "A", Alt: "T"}
	c := Variant{Contig: "chr1", Pos: 10, Ref: "A", Alt: "C"}
	if !a.Less(b) || b.Less(a) {
		t.Error("Less by position failed")
	}
	if !c.Less(a) || a.Less(c) {
		t.Error("Less by alt failed")
	}
	if a.Less(a) {
		t.Error("Less irreflexivity failed")
	}
}

func TestApply(t *testing.T) {
	region := regions.Region{Contig: "chr1", Start: 0, End: 10}
	reference := "ACGTACGTAC"
	if result, ok := (Variant{Contig: "chr1", Pos: 4, Ref: "T", Alt: "A"}).Apply(region, reference); !ok || result != "ACGAACGTAC" {
		t.Error("Apply substitution failed")
	}
	if result, ok := (Variant{Contig: "chr1", Pos: 5, Ref: "", Alt: "GG"}).Apply(region, reference); !ok || result != "ACGTGGACGTAC" {
		t.Error("Apply insertion failed")
	}
	if result, ok := (Variant{Contig: "chr1", Pos: 5, Ref: "AC", Alt: ""}).Apply(region, reference); !ok || result != "ACGTGTAC" {
		t.Error("Apply deletion failed")
	}
	if _, ok := (Variant{Contig: "chr1", Pos: 10, Ref: "CCC", Alt: ""}).Apply(region, reference); ok {
		t.Error("Apply out of bounds failed")
	}
}

func TestBuildSimpleHaplotypes(t *testing.T) {
	region := regions.Region{Contig: "chr1", Start: 0, End: 10}
	reference := "acgtacgtac"
	candidates := []Variant{
		{Contig: "chr1", Pos: 4, Ref: "T", Alt: "A"},
		{Contig: "chr1", Pos: 5, Ref: "", Alt: "GG"},
	}
	haplotypes := BuildSimpleHaplotypes(region, reference, candidates)
	if len(haplotypes) != 3 {
		t.Fatal("BuildSimpleHaplotypes length failed")
	}
	if !haplotypes[0].IsRef || haplotypes[0].Bases != "ACGTACGTAC" || len(haplotypes[0].Events) != 0 {
		t.Error("BuildSimpleHaplotypes reference haplotype failed")
	}
	if haplotypes[1].IsRef || haplotypes[1].Bases != "ACGAACGTAC" || len(haplotypes[1].Events) != 1 {
		t.Error("BuildSimpleHaplotypes substitution haplotype failed")
	}
	if haplotypes[2].Bases != "ACGTGGACGTAC" || haplotypes[2].Events[0] != candidates[1] {
		t.Error("BuildSimpleHaplotypes insertion haplotype failed")
	}
}

type stringReference map[string]string

func (r stringReference) Bases(contig string, start, end int32) (string, error) {
	return r[contig][start:end], nil
}

type fakeProvider []sam.Sam

func (p fakeProvider) Reads(region regions.Region) ([]sam.Sam, error) {
	return p, nil
}

func makeRead(pos uint32, cigarString, seq, qual string) sam.Sam {
	var read sam.Sam
	read.RName = "chr1"
	read.Pos = pos
	read.Cigar = cigar.FromString(cigarString)
	read.Seq = dna.StringToBases(seq)
	read.Qual = qual
	return read
}

func TestAlignmentCandidates(t *testing.T) {
	reference := stringReference{"chr1": "ACGTACGTAC"}
	reads := fakeProvider{
		makeRead(1, "10M", "ACGAACGTAC", "IIIIIIIIII"),
		makeRead(1, "10M", "ACGAACGTAC", "IIIIIIIIII"),
		makeRead(1, "4M2I6M", "ACGTGGACGTAC", "IIIIIIIIIIII"),
		makeRead(1, "4M2I6M", "ACGTGGACGTAC", "IIIIIIIIIIII"),
		makeRead(1, "4M2D4M", "ACGTGTAC", "IIIIIIII"),
		makeRead(1, "4M2D4M", "ACGTGTAC", "IIIIIIII"),
		makeRead(1, "10M", "ACGTACTTAC", "IIIIII#III"),
	}
	generator := &AlignmentCandidates{
		Provider:       reads,
		Reference:      reference,
		MinSupport:     2,
		MinBaseQuality: 20,
	}
	candidates, err := generator.Generate(regions.Region{Contig: "chr1", Start: 0, End: 10})
	if err != nil {
		t.Fatal(err)
	}
	expected := []Variant{
		{Contig: "chr1", Pos: 4, Ref: "T", Alt: "A"},
		{Contig: "chr1", Pos: 5, Ref: "", Alt: "GG"},
		{Contig: "chr1", Pos: 5, Ref: "AC", Alt: ""},
	}
	if len(candidates) != len(expected) {
		t.Fatalf("AlignmentCandidates length failed: %v", candidates)
	}
	for i := range candidates {
		if candidates[i] != expected[i] {
			t.Errorf("AlignmentCandidates %v failed", i)
		}
	}
}

type fixedGenerator []Variant

func (g fixedGenerator) Generate(region regions.Region) ([]Variant, error) {
	return g, nil
}

func TestCompose(t *testing.T) {
	a := fixedGenerator{
		{Contig: "chr1", Pos: 4, Ref: "T", Alt: "A"},
		{Contig: "chr1", Pos: 8, Ref: "T", Alt: "C"},
	}
	b := fixedGenerator{
		{Contig: "chr1", Pos: 4, Ref: "T", Alt: "A"},
		{Contig: "chr1", Pos: 6, Ref: "", Alt: "G"},
	}
	composed, err := Compose(a, b).Generate(regions.Region{Contig: "chr1", Start: 0, End: 10})
	if err != nil {
		t.Fatal(err)
	}
	expected := []Variant{
		{Contig: "chr1", Pos: 4, Ref: "T", Alt: "A"},
		{Contig: "chr1", Pos: 6, Ref: "", Alt: "G"},
		{Contig: "chr1", Pos: 8, Ref: "T", Alt: "C"},
	}
	if len(composed) != len(expected) {
		t.Fatalf("Compose length failed: %v", composed)
	}
	for i := range composed {
		if composed[i] != expected[i] {
			t.Errorf("Compose %v failed", i)
		}
	}
}
