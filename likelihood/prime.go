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

package likelihood

import (
	"github.com/exascience/pargo/parallel"
	"github.com/vertgenlab/gonomics/sam"

	"github.com/exascience/haplogo/genotype"
	"github.com/exascience/haplogo/utils"
	"github.com/exascience/haplogo/variants"
)

// An Aligner scores a read against a haplotype, returning the natural
// log likelihood of observing the read given the haplotype.
type Aligner interface {
	Align(read sam.Sam, haplotype variants.Haplotype) float64
}

// PrimeFromAligner scores every read against every haplotype and
// primes the cache for the given sample. Handle i refers to
// haplotypes[i]. Haplotypes are scored in parallel; the read order of
// every vector is the order of the reads slice.
func PrimeFromAligner(c *Cache, sample utils.Symbol, reads []sam.Sam, haplotypes []variants.Haplotype, aligner Aligner) {
	vectors := make([][]float64, len(haplotypes))
	parallel.Range(0, len(haplotypes), 0, func(low, high int) {
		for i := low; i < high; i++ {
			vector := make([]float64, len(reads))
			for r := range reads {
				vector[r] = aligner.Align(reads[r], haplotypes[i])
			}
			vectors[i] = vector
		}
	})
	likelihoods := make(map[genotype.Handle][]float64, len(haplotypes))
	for i := range haplotypes {
		likelihoods[genotype.Handle(i)] = vectors[i]
	}
	c.Prime(sample, likelihoods)
}
