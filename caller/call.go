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

package caller

import (
	"math"

	"github.com/exascience/haplogo/genotype"
	"github.com/exascience/haplogo/likelihood"
	"github.com/exascience/haplogo/utils"
	"github.com/exascience/haplogo/variants"
)

// Parameters control the individual caller.
type Parameters struct {
	Ploidy              int
	MinVariantPosterior float64
	MinRefcallPosterior float64
}

// DefaultParameters are the parameters used when the command line does
// not override them.
var DefaultParameters = Parameters{
	Ploidy:              2,
	MinVariantPosterior: 0.5,
	MinRefcallPosterior: 0.5,
}

// ReadStats summarizes the reads of one region for call annotation.
type ReadStats struct {
	Depth              int
	MappingQualityZero int
	Forward            int
	Reverse            int
}

// A Call is one called or reference-confirmed site for one sample.
type Call struct {
	Variant            variants.Variant
	Genotype           genotype.Genotype
	Posterior          float64
	Quality            float64
	GenotypeQuality    float64
	Depth              int
	AltSupport         int
	MappingQualityZero int
	Forward            int
	Reverse            int
	RefCall            bool
	Sample             utils.Symbol
}

const (
	maxQuality         = 3000.0
	maxGenotypeQuality = 99.0
	ln10               = 2.302585092994045684017991454684364207601101488628772976033
)

// phred converts a posterior probability into a phred-scaled quality,
// capped at max.
func phred(p, max float64) float64 {
	q := -10 * math.Log1p(-p) / ln10
	if q > max || math.IsInf(q, 1) {
		return max
	}
	if q < 0 {
		return 0
	}
	return q
}

// Individual calls genotypes for a single sample.
type Individual struct {
	Params Parameters
}

// NewIndividual returns an individual caller with the given
// parameters.
func NewIndividual(params Parameters) *Individual {
	return &Individual{Params: params}
}

// Ploidy returns the ploidy the caller evaluates under.
func (c *Individual) Ploidy() int {
	return c.Params.Ploidy
}

// Call evaluates all genotypes over the given haplotypes against the
// primed cache and emits one call per candidate variant that reaches
// the posterior threshold. Candidates that fail the threshold but
// whose reference posterior reaches the refcall threshold are emitted
// as reference calls. Handle i refers to haplotypes[i].
func (c *Individual) Call(cache *likelihood.Cache, sample utils.Symbol, haplotypes []variants.Haplotype, candidates []variants.Variant, stats ReadStats) []Call {
	handles := make([]genotype.Handle, len(haplotypes))
	for i := range haplotypes {
		handles[i] = genotype.Handle(i)
	}
	genotypes := genotype.Enumerate(handles, c.Params.Ploidy)
	gl := likelihood.EvaluateGenotypes(cache, sample, genotypes)
	latents := ComputeLatents(gl, genotype.UniformFrequencies(handles))
	mapGenotype, mapPosterior := latents.MapGenotype()
	genotypeQuality := phred(mapPosterior, maxGenotypeQuality)

	var calls []Call
	for _, v := range candidates {
		posterior := c.variantPosterior(v, latents, haplotypes)
		call := Call{
			Variant:            v,
			Genotype:           mapGenotype,
			Posterior:          posterior,
			GenotypeQuality:    genotypeQuality,
			Depth:              stats.Depth,
			MappingQualityZero: stats.MappingQualityZero,
			Forward:            stats.Forward,
			Reverse:            stats.Reverse,
			Sample:             sample,
		}
		switch {
		case posterior >= c.Params.MinVariantPosterior:
			call.Quality = phred(posterior, maxQuality)
			call.AltSupport = c.altSupport(v, latents, haplotypes)
			calls = append(calls, call)
		case 1-posterior >= c.Params.MinRefcallPosterior:
			call.RefCall = true
			call.Quality = phred(1-posterior, maxQuality)
			calls = append(calls, call)
		}
	}
	return calls
}

// variantPosterior marginalizes the genotype posteriors over all
// genotypes that contain at least one haplotype carrying the variant.
func (c *Individual) variantPosterior(v variants.Variant, latents Latents, haplotypes []variants.Haplotype) float64 {
	carries := make([]bool, len(haplotypes))
	for i := range haplotypes {
		carries[i] = haplotypeCarries(haplotypes[i], v)
	}
	posterior := 0.0
	for i, g := range latents.Genotypes {
		supported := false
		for _, h := range g.Unique() {
			if carries[h] {
				supported = true
				break
			}
		}
		if supported {
			posterior += math.Exp(latents.GenotypePosteriors[i])
		}
	}
	if posterior > 1 {
		posterior = 1
	}
	return posterior
}

// altSupport estimates the called allele count from the MAP genotype.
func (c *Individual) altSupport(v variants.Variant, latents Latents, haplotypes []variants.Haplotype) int {
	mapGenotype, _ := latents.MapGenotype()
	support := 0
	for i := 0; i < mapGenotype.Ploidy(); i++ {
		if haplotypeCarries(haplotypes[mapGenotype.At(i)], v) {
			support++
		}
	}
	return support
}

func haplotypeCarries(h variants.Haplotype, v variants.Variant) bool {
	for _, event := range h.Events {
		if event == v {
			return true
		}
	}
	return false
}
