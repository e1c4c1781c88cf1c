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

// Package variants models candidate variants and generates them from
// read alignments and external call sets.
package variants

import (
	"sort"

	"github.com/exascience/haplogo/regions"
)

// A Variant is a single candidate substitution, insertion, or
// deletion. Pos is 1-based. An insertion has an empty Ref and a
// deletion an empty Alt, with no shared prefix base. Length-preserving
// variants taken verbatim from a VCF may share a prefix.
type Variant struct {
	Contig string
	Pos    int32
	Ref    string
	Alt    string
}

// IsSNV returns true for single-base substitutions.
func (v Variant) IsSNV() bool {
	return len(v.Ref) == 1 && len(v.Alt) == 1
}

// IsInsertion returns true if the variant inserts bases.
func (v Variant) IsInsertion() bool {
	return len(v.Ref) == 0 && len(v.Alt) > 0
}

// IsDeletion returns true if the variant deletes bases.
func (v Variant) IsDeletion() bool {
	return len(v.Ref) > 0 && len(v.Alt) == 0
}

// Less orders variants by position, then reference allele, then
// alternate allele, within one contig.
func (v Variant) Less(other Variant) bool {
	if v.Pos != other.Pos {
		return v.Pos < other.Pos
	}
	if v.Ref != other.Ref {
		return v.Ref < other.Ref
	}
	return v.Alt < other.Alt
}

// A Haplotype is one candidate sequence over a region, together with
// the variant events that distinguish it from the reference. Start is
// the 0-based position of the first base.
type Haplotype struct {
	Contig string
	Start  int32
	Bases  string
	IsRef  bool
	Events []Variant
}

// A Generator produces candidate variants for a region, sorted by
// position.
type Generator interface {
	Generate(region regions.Region) ([]Variant, error)
}

// Compose returns a generator producing the deduplicated union of the
// candidates of all given generators, sorted by position.
func Compose(generators ...Generator) Generator {
	return composite(generators)
}

type composite []Generator

func (c composite) Generate(region regions.Region) ([]Variant, error) {
	var all []Variant
	for _, g := range c {
		candidates, err := g.Generate(region)
		if err != nil {
			return nil, err
		}
		all = append(all, candidates...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Less(all[j])
	})
	result := all[:0]
	for i, v := range all {
		if i == 0 || v != all[i-1] {
			result = append(result, v)
		}
	}
	return result, nil
}
