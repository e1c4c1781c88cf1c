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
	"math"
	"math/rand"
	"testing"

	"github.com/exascience/haplogo/genotype"
	"github.com/exascience/haplogo/utils"
)

var testSample = utils.Intern("sample1")

func primedCache(likelihoods map[genotype.Handle][]float64) *Cache {
	cache := NewCache()
	cache.Prime(testSample, likelihoods)
	return cache
}

// bruteForce computes ln P(reads | g) directly from the mixture
// definition, without log-space shortcuts.
func bruteForce(g genotype.Genotype, likelihoods map[genotype.Handle][]float64, numReads int) float64 {
	k := g.Ploidy()
	sum := 0.0
	for r := 0; r < numReads; r++ {
		mixture := 0.0
		for i := 0; i < k; i++ {
			mixture += math.Exp(likelihoods[g.At(i)][r])
		}
		sum += math.Log(mixture / float64(k))
	}
	return sum
}

func almostEqual(a, b, epsilon float64) bool {
	if math.IsInf(a, -1) && math.IsInf(b, -1) {
		return true
	}
	return math.Abs(a-b) <= epsilon
}

func TestEvaluateHaploid(t *testing.T) {
	likelihoods := map[genotype.Handle][]float64{
		0: {math.Log(0.9), math.Log(0.8), math.Log(0.5)},
	}
	model := NewModel(primedCache(likelihoods), testSample)
	expected := math.Log(0.9) + math.Log(0.8) + math.Log(0.5)
	if !almostEqual(model.Evaluate(genotype.New(0)), expected, 1e-12) {
		t.Error("haploid evaluation failed")
	}
}

func TestEvaluateDiploid(t *testing.T) {
	likelihoods := map[genotype.Handle][]float64{
		0: {math.Log(0.9), math.Log(0.1)},
		1: {math.Log(0.2), math.Log(0.7)},
	}
	model := NewModel(primedCache(likelihoods), testSample)
	expected := math.Log((0.9+0.2)/2) + math.Log((0.1+0.7)/2)
	if !almostEqual(model.Evaluate(genotype.New(0, 1)), expected, 1e-12) {
		t.Error("diploid heterozygous evaluation failed")
	}
	homozygous := model.Evaluate(genotype.New(0, 0))
	haploid := model.Evaluate(genotype.New(0))
	if homozygous != haploid {
		t.Error("diploid homozygous evaluation failed")
	}
}

func TestEvaluateTriploid(t *testing.T) {
	likelihoods := map[genotype.Handle][]float64{
		0: {math.Log(0.9), math.Log(0.1)},
		1: {math.Log(0.2), math.Log(0.7)},
		2: {math.Log(0.4), math.Log(0.3)},
	}
	model := NewModel(primedCache(likelihoods), testSample)
	for _, g := range []genotype.Genotype{
		genotype.New(0, 0, 0),
		genotype.New(0, 0, 1),
		genotype.New(0, 1, 1),
		genotype.New(0, 1, 2),
	} {
		expected := bruteForce(g, likelihoods, 2)
		if !almostEqual(model.Evaluate(g), expected, 1e-12) {
			t.Errorf("triploid evaluation of %v failed", g)
		}
	}
}

func TestEvaluateEmptyReads(t *testing.T) {
	likelihoods := map[genotype.Handle][]float64{0: {}, 1: {}}
	model := NewModel(primedCache(likelihoods), testSample)
	if model.Evaluate(genotype.New(0, 1)) != 0 {
		t.Error("empty read set evaluation failed")
	}
}

func TestEvaluateEmptyGenotype(t *testing.T) {
	model := NewModel(primedCache(map[genotype.Handle][]float64{0: {-1}}), testSample)
	if model.Evaluate(genotype.New()) != 0 {
		t.Error("empty genotype evaluation failed")
	}
}

func TestEvaluateNumericFault(t *testing.T) {
	likelihoods := map[genotype.Handle][]float64{0: {math.NaN()}}
	model := NewModel(primedCache(likelihoods), testSample)
	if !math.IsInf(model.Evaluate(genotype.New(0)), -1) {
		t.Error("numeric fault evaluation failed")
	}
}

func TestEvaluateImpossibleHaplotype(t *testing.T) {
	likelihoods := map[genotype.Handle][]float64{
		0: {math.Inf(-1), math.Log(0.5)},
		1: {math.Log(0.5), math.Log(0.5)},
	}
	model := NewModel(primedCache(likelihoods), testSample)
	if !math.IsInf(model.Evaluate(genotype.New(0, 0)), -1) {
		t.Error("impossible homozygous evaluation failed")
	}
	expected := math.Log(0.5/2) + math.Log((0.5+0.5)/2)
	if !almostEqual(model.Evaluate(genotype.New(0, 1)), expected, 1e-12) {
		t.Error("impossible heterozygous evaluation failed")
	}
}

func TestSpecializationsAgree(t *testing.T) {
	r := rand.New(rand.NewSource(53))
	const numHaplotypes = 4
	const numReads = 7
	likelihoods := make(map[genotype.Handle][]float64)
	handles := make([]genotype.Handle, numHaplotypes)
	for h := 0; h < numHaplotypes; h++ {
		vector := make([]float64, numReads)
		for i := range vector {
			vector[i] = -10 * r.Float64()
		}
		likelihoods[genotype.Handle(h)] = vector
		handles[h] = genotype.Handle(h)
	}
	model := NewModel(primedCache(likelihoods), testSample)
	for ploidy := 1; ploidy <= 5; ploidy++ {
		for _, g := range genotype.Enumerate(handles, ploidy) {
			expected := bruteForce(g, likelihoods, numReads)
			if !almostEqual(model.Evaluate(g), expected, 1e-9) {
				t.Errorf("evaluation of %v at ploidy %v failed", g, ploidy)
			}
		}
	}
}

func TestEvaluateGenotypes(t *testing.T) {
	likelihoods := map[genotype.Handle][]float64{
		0: {math.Log(0.9)},
		1: {math.Log(0.2)},
	}
	cache := primedCache(likelihoods)
	genotypes := genotype.Enumerate([]genotype.Handle{0, 1}, 2)
	gl := EvaluateGenotypes(cache, testSample, genotypes)
	if len(gl.Values) != len(genotypes) {
		t.Fatal("EvaluateGenotypes length failed")
	}
	model := NewModel(cache, testSample)
	for i, g := range gl.Genotypes {
		if gl.Values[i] != model.Evaluate(g) {
			t.Error("EvaluateGenotypes value failed")
		}
	}
}
