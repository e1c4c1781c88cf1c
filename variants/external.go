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
	"sort"

	"github.com/vertgenlab/gonomics/vcf"

	"github.com/exascience/haplogo/regions"
)

// NormalizeAllele converts one VCF ref/alt pair into a Variant. Pairs
// of unequal length are trimmed by their common prefix with the
// position advanced accordingly; pairs of equal length are taken
// verbatim. Alleles are never trimmed on the right.
func NormalizeAllele(contig string, pos int32, ref, alt string) Variant {
	if len(ref) != len(alt) {
		n := 0
		for n < len(ref) && n < len(alt) && ref[n] == alt[n] {
			n++
		}
		return Variant{Contig: contig, Pos: pos + int32(n), Ref: ref[n:], Alt: alt[n:]}
	}
	return Variant{Contig: contig, Pos: pos, Ref: ref, Alt: alt}
}

// VCFCandidates generates candidate variants from an external VCF call
// set. Every ALT allele of a record becomes its own candidate.
type VCFCandidates struct {
	candidates map[string][]Variant
}

// FromVCFFile loads an external VCF call set into a candidate
// generator. Records are normalized per ALT and sorted per contig.
func FromVCFFile(filename string) *VCFCandidates {
	records, _ := vcf.GoReadToChan(filename)
	candidates := make(map[string][]Variant)
	for record := range records {
		for _, alt := range record.Alt {
			v := NormalizeAllele(record.Chr, int32(record.Pos), record.Ref, alt)
			candidates[v.Contig] = append(candidates[v.Contig], v)
		}
	}
	for contig, list := range candidates {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Less(list[j])
		})
		candidates[contig] = list
	}
	return &VCFCandidates{candidates: candidates}
}

// Generate returns the candidates whose position falls within the
// region.
func (c *VCFCandidates) Generate(region regions.Region) ([]Variant, error) {
	list := c.candidates[region.Contig]
	lo := sort.Search(len(list), func(i int) bool {
		return list[i].Pos > region.Start
	})
	hi := sort.Search(len(list), func(i int) bool {
		return list[i].Pos > region.End
	})
	return list[lo:hi], nil
}
