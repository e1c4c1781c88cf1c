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
	"log"
	"math"

	"github.com/exascience/haplogo/genotype"
	"github.com/exascience/haplogo/logmath"
	"github.com/exascience/haplogo/utils"
)

// A Model computes ln P(reads | genotype) for one sample against a
// primed likelihood cache, under a uniform mixture over the genotype's
// haplotypes. The ploidy specializations and the general polyploid
// path compute the same value; the specializations only shrink the
// inner loop. Reads are always summed in vector order, so results are
// reproducible bit for bit.
type Model struct {
	cache   *Cache
	sample  utils.Symbol
	scratch []float64
}

// NewModel returns a model over the given cache for the given sample.
func NewModel(cache *Cache, sample utils.Symbol) *Model {
	return &Model{cache: cache, sample: sample}
}

// Sample returns the sample this model evaluates.
func (m *Model) Sample() utils.Symbol {
	return m.sample
}

// Evaluate returns ln P(reads | g). The cache must be primed for the
// model's sample and contain every handle in g. An empty genotype or
// an empty read set yields 0.
func (m *Model) Evaluate(g genotype.Genotype) float64 {
	var result float64
	switch k := g.Ploidy(); k {
	case 0:
		return 0
	case 1:
		result = m.evaluateHaploid(g)
	case 2:
		result = m.evaluateDiploid(g)
	case 3:
		result = m.evaluateTriploid(g)
	default:
		result = m.evaluatePolyploid(g)
	}
	if math.IsNaN(result) {
		log.Printf("numeric fault evaluating genotype %v for sample %v; treating as impossible", g, *m.sample)
		return math.Inf(-1)
	}
	return result
}

func (m *Model) evaluateHaploid(g genotype.Genotype) float64 {
	vector := m.cache.Get(m.sample, g.At(0))
	sum := 0.0
	for _, l := range vector {
		sum += l
	}
	return sum
}

func (m *Model) evaluateDiploid(g genotype.Genotype) float64 {
	if g.IsHomozygous() {
		return m.evaluateHaploid(g)
	}
	l1 := m.cache.Get(m.sample, g.At(0))
	l2 := m.cache.Get(m.sample, g.At(1))
	ln2 := logmath.LnSmall(2)
	sum := 0.0
	for r, l := range l1 {
		sum += logmath.LogSumExp(l, l2[r]) - ln2
	}
	return sum
}

func (m *Model) evaluateTriploid(g genotype.Genotype) float64 {
	switch g.Zygosity() {
	case 1:
		return m.evaluateHaploid(g)
	case 3:
		l1 := m.cache.Get(m.sample, g.At(0))
		l2 := m.cache.Get(m.sample, g.At(1))
		l3 := m.cache.Get(m.sample, g.At(2))
		ln3 := logmath.LnSmall(3)
		sum := 0.0
		for r, l := range l1 {
			sum += logmath.LogSumExp3(l, l2[r], l3[r]) - ln3
		}
		return sum
	default:
		var double, single genotype.Handle
		if g.At(0) == g.At(1) {
			double, single = g.At(0), g.At(2)
		} else {
			double, single = g.At(1), g.At(0)
		}
		lDouble := m.cache.Get(m.sample, double)
		lSingle := m.cache.Get(m.sample, single)
		ln2 := logmath.LnSmall(2)
		ln3 := logmath.LnSmall(3)
		sum := 0.0
		for r, l := range lDouble {
			sum += logmath.LogSumExp(ln2+l, lSingle[r]) - ln3
		}
		return sum
	}
}

func (m *Model) evaluatePolyploid(g genotype.Genotype) float64 {
	k := g.Ploidy()
	lnK := logmath.LnSmall(uint32(k))
	unique, counts := g.Counts()
	switch len(unique) {
	case 1:
		return m.evaluateHaploid(g)
	case 2:
		la := m.cache.Get(m.sample, unique[0])
		lb := m.cache.Get(m.sample, unique[1])
		lnA := logmath.LnSmall(counts[0])
		lnB := logmath.LnSmall(counts[1])
		sum := 0.0
		for r, l := range la {
			sum += logmath.LogSumExp(lnA+l, lnB+lb[r]) - lnK
		}
		return sum
	default:
		z := len(unique)
		vectors := make([][]float64, z)
		lnCounts := make([]float64, z)
		for j, h := range unique {
			vectors[j] = m.cache.Get(m.sample, h)
			lnCounts[j] = logmath.LnSmall(counts[j])
		}
		if cap(m.scratch) < z {
			m.scratch = make([]float64, z)
		}
		scratch := m.scratch[:z]
		sum := 0.0
		for r := range vectors[0] {
			for j := range vectors {
				scratch[j] = lnCounts[j] + vectors[j][r]
			}
			sum += logmath.LogSumExpSlice(scratch) - lnK
		}
		return sum
	}
}

// GenotypeLogLikelihoods holds the log-likelihood of every genotype of
// one enumeration, in enumeration order.
type GenotypeLogLikelihoods struct {
	Genotypes []genotype.Genotype
	Values    []float64
}

// EvaluateGenotypes evaluates every given genotype and returns the
// values in matching order.
func EvaluateGenotypes(cache *Cache, sample utils.Symbol, genotypes []genotype.Genotype) GenotypeLogLikelihoods {
	model := NewModel(cache, sample)
	values := make([]float64, len(genotypes))
	for i, g := range genotypes {
		values[i] = model.Evaluate(g)
	}
	return GenotypeLogLikelihoods{Genotypes: genotypes, Values: values}
}
