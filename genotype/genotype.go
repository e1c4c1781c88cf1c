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

// Package genotype represents genotypes as canonical multisets of
// haplotype handles, and enumerates all genotypes of a given ploidy.
package genotype

import (
	"fmt"
	"strings"

	"golang.org/x/exp/slices"
)

// A Handle identifies a haplotype within one region. Handles are
// indices into a region-local haplotype arena. They are stable for the
// duration of a region and meaningless across regions.
type Handle int32

// A Genotype is an unordered multiset of haplotype handles. The
// handles are kept sorted, so genotypes that contain the same handles
// the same number of times are equal regardless of construction order.
type Genotype struct {
	handles []Handle
}

// New returns a genotype over the given handles. The handles are
// copied and normalized.
func New(handles ...Handle) Genotype {
	h := make([]Handle, len(handles))
	copy(h, handles)
	slices.Sort(h)
	return Genotype{handles: h}
}

// Ploidy returns the total number of handles, counting multiplicity.
func (g Genotype) Ploidy() int {
	return len(g.handles)
}

// At returns the handle at the given position in the sorted multiset.
func (g Genotype) At(i int) Handle {
	return g.handles[i]
}

// Zygosity returns the number of distinct handles.
func (g Genotype) Zygosity() int {
	z := 0
	for i, h := range g.handles {
		if i == 0 || h != g.handles[i-1] {
			z++
		}
	}
	return z
}

// IsHomozygous returns true if the genotype is non-empty and all its
// handles are the same.
func (g Genotype) IsHomozygous() bool {
	if len(g.handles) == 0 {
		return false
	}
	return g.handles[0] == g.handles[len(g.handles)-1]
}

// Count returns the multiplicity of the given handle.
func (g Genotype) Count(h Handle) uint32 {
	var n uint32
	for _, x := range g.handles {
		if x == h {
			n++
		} else if x > h {
			break
		}
	}
	return n
}

// Unique returns the distinct handles in ascending order.
func (g Genotype) Unique() []Handle {
	unique := make([]Handle, 0, len(g.handles))
	for i, h := range g.handles {
		if i == 0 || h != g.handles[i-1] {
			unique = append(unique, h)
		}
	}
	return unique
}

// Counts returns the distinct handles in ascending order together with
// their multiplicities.
func (g Genotype) Counts() ([]Handle, []uint32) {
	unique := g.Unique()
	counts := make([]uint32, len(unique))
	j := 0
	for _, h := range g.handles {
		if h != unique[j] {
			j++
		}
		counts[j]++
	}
	return unique, counts
}

// Equal returns true if both genotypes contain the same handles with
// the same multiplicities.
func (g Genotype) Equal(other Genotype) bool {
	return slices.Equal(g.handles, other.handles)
}

// Hash returns a hash value for the genotype. Genotypes that are equal
// hash to the same value regardless of the order in which their
// handles were supplied.
func (g Genotype) Hash() (hash uint64) {
	// DJBX33A over the sorted handles
	hash = 5381
	for _, h := range g.handles {
		hash = ((hash << 5) + hash) + uint64(uint32(h))
	}
	return
}

func (g Genotype) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, h := range g.handles {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprint(&sb, int32(h))
	}
	sb.WriteByte('}')
	return sb.String()
}
