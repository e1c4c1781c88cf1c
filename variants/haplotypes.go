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
	"strings"

	"github.com/exascience/haplogo/regions"
	"github.com/exascience/haplogo/sequtil"
)

// AssemblyCandidates is the composition point for candidates from
// local reassembly.
//
// TODO: implement local reassembly of active regions; until then this
// generator produces no candidates.
type AssemblyCandidates struct{}

// Generate returns no candidates.
func (AssemblyCandidates) Generate(region regions.Region) ([]Variant, error) {
	return nil, nil
}

// Apply returns the sequence that results from applying the variant to
// the reference bases of the region. The second return value is false
// if the variant does not fit the region.
func (v Variant) Apply(region regions.Region, reference string) (string, bool) {
	offset := int(v.Pos) - 1 - int(region.Start)
	switch {
	case v.IsInsertion():
		if offset < 0 || offset > len(reference) {
			return "", false
		}
		return reference[:offset] + v.Alt + reference[offset:], true
	case v.IsDeletion():
		if offset < 0 || offset+len(v.Ref) > len(reference) {
			return "", false
		}
		return reference[:offset] + reference[offset+len(v.Ref):], true
	default:
		if offset < 0 || offset+len(v.Ref) > len(reference) {
			return "", false
		}
		return reference[:offset] + v.Alt + reference[offset+len(v.Ref):], true
	}
}

// BuildSimpleHaplotypes returns the reference haplotype of the region
// followed by one haplotype per candidate variant. Candidates that do
// not fit the region or whose alternate bases contain 'N' are skipped.
func BuildSimpleHaplotypes(region regions.Region, reference string, candidates []Variant) []Haplotype {
	reference = strings.ToUpper(reference)
	haplotypes := []Haplotype{{
		Contig: region.Contig,
		Start:  region.Start,
		Bases:  reference,
		IsRef:  true,
	}}
	for _, v := range candidates {
		if sequtil.HasNs(v.Alt) {
			continue
		}
		bases, ok := v.Apply(region, reference)
		if !ok {
			continue
		}
		haplotypes = append(haplotypes, Haplotype{
			Contig: region.Contig,
			Start:  region.Start,
			Bases:  bases,
			Events: []Variant{v},
		})
	}
	return haplotypes
}
