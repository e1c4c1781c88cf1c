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

// Package caller turns genotype likelihoods into genotype calls.
package caller

import (
	"math"

	"github.com/exascience/haplogo/genotype"
	"github.com/exascience/haplogo/likelihood"
	"github.com/exascience/haplogo/logmath"
)

// Latents holds the posterior state of one sample over one region:
// normalized genotype posteriors in enumeration order, haplotype
// posteriors by marginalization, and the log evidence.
type Latents struct {
	Genotypes           []genotype.Genotype
	GenotypePosteriors  []float64
	HaplotypePosteriors map[genotype.Handle]float64
	LogEvidence         float64
	MapIndex            int
}

// ComputeLatents combines genotype log likelihoods with Hardy-Weinberg
// log priors into normalized log posteriors.
func ComputeLatents(gl likelihood.GenotypeLogLikelihoods, priors genotype.Frequencies) Latents {
	posteriors := make([]float64, len(gl.Values))
	for i, value := range gl.Values {
		posteriors[i] = value + genotype.LogHardyWeinberg(gl.Genotypes[i], priors)
	}
	evidence := logmath.LogSumExpSlice(posteriors)
	mapIndex := 0
	for i := range posteriors {
		if math.IsInf(evidence, -1) {
			posteriors[i] = math.Inf(-1)
		} else {
			posteriors[i] -= evidence
		}
		if posteriors[i] > posteriors[mapIndex] {
			mapIndex = i
		}
	}
	haplotypePosteriors := make(map[genotype.Handle]float64)
	for i, g := range gl.Genotypes {
		p := math.Exp(posteriors[i])
		for _, h := range g.Unique() {
			haplotypePosteriors[h] += p
		}
	}
	return Latents{
		Genotypes:           gl.Genotypes,
		GenotypePosteriors:  posteriors,
		HaplotypePosteriors: haplotypePosteriors,
		LogEvidence:         evidence,
		MapIndex:            mapIndex,
	}
}

// MapGenotype returns the maximum a posteriori genotype and its
// posterior probability.
func (l Latents) MapGenotype() (genotype.Genotype, float64) {
	return l.Genotypes[l.MapIndex], math.Exp(l.GenotypePosteriors[l.MapIndex])
}
