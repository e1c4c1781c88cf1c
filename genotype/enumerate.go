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

package genotype

import (
	"log"

	"golang.org/x/exp/slices"
)

// NumGenotypes returns the number of genotypes of the given ploidy
// over n haplotypes, which is the number of multisets of size ploidy
// drawn from n elements.
func NumGenotypes(n, ploidy int) int {
	if n < 0 || ploidy < 0 {
		log.Panicf("invalid genotype count parameters n=%v ploidy=%v", n, ploidy)
	}
	if n == 0 {
		if ploidy == 0 {
			return 1
		}
		return 0
	}
	// C(n+ploidy-1, ploidy)
	result := 1
	for i := 1; i <= ploidy; i++ {
		result = result * (n + i - 1) / i
	}
	return result
}

// EnumerateFunc calls yield for every genotype of the given ploidy
// over the given handles, in colex order over the sorted handles.
// Enumeration stops early if yield returns false. The genotype passed
// to yield shares no storage across calls.
func EnumerateFunc(handles []Handle, ploidy int, yield func(Genotype) bool) {
	if ploidy == 0 {
		yield(Genotype{})
		return
	}
	n := len(handles)
	if n == 0 {
		return
	}
	sorted := make([]Handle, n)
	copy(sorted, handles)
	slices.Sort(sorted)
	idx := make([]int, ploidy)
	for {
		g := make([]Handle, ploidy)
		for j, i := range idx {
			g[j] = sorted[i]
		}
		if !yield(Genotype{handles: g}) {
			return
		}
		// advance the odometer: bump the lowest position that can
		// move, reset everything below it
		j := 0
		for ; j < ploidy; j++ {
			limit := n - 1
			if j < ploidy-1 {
				limit = idx[j+1]
			}
			if idx[j] < limit {
				break
			}
		}
		if j == ploidy {
			return
		}
		idx[j]++
		for i := 0; i < j; i++ {
			idx[i] = 0
		}
	}
}

// Enumerate returns all genotypes of the given ploidy over the given
// handles, in colex order over the sorted handles.
func Enumerate(handles []Handle, ploidy int) []Genotype {
	genotypes := make([]Genotype, 0, NumGenotypes(len(handles), ploidy))
	EnumerateFunc(handles, ploidy, func(g Genotype) bool {
		genotypes = append(genotypes, g)
		return true
	})
	return genotypes
}
