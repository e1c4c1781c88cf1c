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
	"math"
	"math/rand"
	"testing"
)

func TestGenotypeNormalization(t *testing.T) {
	g1 := New(2, 0, 1)
	g2 := New(1, 2, 0)
	if !g1.Equal(g2) {
		t.Error("genotypes with the same handles in different order should be equal")
	}
	if g1.Hash() != g2.Hash() {
		t.Error("equal genotypes should hash to the same value")
	}
	if g1.At(0) != 0 || g1.At(1) != 1 || g1.At(2) != 2 {
		t.Error("genotype handles should be sorted")
	}
	if g1.Equal(New(0, 1)) {
		t.Error("genotypes of different ploidy should not be equal")
	}
	if New(0, 0, 1).Equal(New(0, 1, 1)) {
		t.Error("genotypes with different multiplicities should not be equal")
	}
}

func TestGenotypeQueries(t *testing.T) {
	g := New(3, 1, 3, 3, 7)
	if g.Ploidy() != 5 {
		t.Error("ploidy failed")
	}
	if g.Zygosity() != 3 {
		t.Error("zygosity failed")
	}
	if g.IsHomozygous() {
		t.Error("heterozygous genotype reported homozygous")
	}
	if !New(4, 4, 4).IsHomozygous() {
		t.Error("homozygous genotype reported heterozygous")
	}
	if New().IsHomozygous() {
		t.Error("empty genotype reported homozygous")
	}
	if g.Count(3) != 3 || g.Count(1) != 1 || g.Count(7) != 1 || g.Count(5) != 0 {
		t.Error("count failed")
	}
	unique := g.Unique()
	if len(unique) != 3 || unique[0] != 1 || unique[1] != 3 || unique[2] != 7 {
		t.Error("unique failed")
	}
	handles, counts := g.Counts()
	if len(handles) != 3 || handles[0] != 1 || handles[1] != 3 || handles[2] != 7 {
		t.Error("counts handles failed")
	}
	if counts[0] != 1 || counts[1] != 3 || counts[2] != 1 {
		t.Error("counts multiplicities failed")
	}
}

func TestNumGenotypes(t *testing.T) {
	if NumGenotypes(1, 1) != 1 {
		t.Error("NumGenotypes(1, 1) failed")
	}
	if NumGenotypes(2, 2) != 3 {
		t.Error("NumGenotypes(2, 2) failed")
	}
	if NumGenotypes(3, 2) != 6 {
		t.Error("NumGenotypes(3, 2) failed")
	}
	if NumGenotypes(4, 3) != 20 {
		t.Error("NumGenotypes(4, 3) failed")
	}
	if NumGenotypes(10, 4) != 715 {
		t.Error("NumGenotypes(10, 4) failed")
	}
	if NumGenotypes(5, 0) != 1 {
		t.Error("NumGenotypes(5, 0) failed")
	}
	if NumGenotypes(0, 3) != 0 {
		t.Error("NumGenotypes(0, 3) failed")
	}
}

func TestEnumerateOrder(t *testing.T) {
	genotypes := Enumerate([]Handle{0, 1, 2}, 2)
	expected := []Genotype{
		New(0, 0), New(0, 1), New(1, 1), New(0, 2), New(1, 2), New(2, 2),
	}
	if len(genotypes) != len(expected) {
		t.Fatal("enumeration size failed")
	}
	for i, g := range genotypes {
		if !g.Equal(expected[i]) {
			t.Error("enumeration order failed at index ", i)
		}
	}
}

func TestEnumerateOrderIndependentOfInput(t *testing.T) {
	a := Enumerate([]Handle{0, 1, 2, 3}, 3)
	b := Enumerate([]Handle{3, 1, 0, 2}, 3)
	if len(a) != len(b) {
		t.Fatal("enumeration sizes differ")
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			t.Error("enumeration order depends on input handle order")
		}
	}
}

func TestEnumerateComplete(t *testing.T) {
	r := rand.New(rand.NewSource(91))
	for run := 0; run < 20; run++ {
		n := 1 + r.Intn(6)
		ploidy := 1 + r.Intn(4)
		handles := make([]Handle, n)
		for i := range handles {
			handles[i] = Handle(i)
		}
		genotypes := Enumerate(handles, ploidy)
		if len(genotypes) != NumGenotypes(n, ploidy) {
			t.Error("enumeration size disagrees with NumGenotypes")
		}
		seen := make(map[uint64]bool)
		for _, g := range genotypes {
			if g.Ploidy() != ploidy {
				t.Error("enumerated genotype has wrong ploidy")
			}
			if seen[g.Hash()] {
				t.Error("enumeration contains duplicates")
			}
			seen[g.Hash()] = true
		}
	}
}

func TestEnumerateFuncEarlyStop(t *testing.T) {
	count := 0
	EnumerateFunc([]Handle{0, 1, 2, 3}, 2, func(g Genotype) bool {
		count++
		return count < 3
	})
	if count != 3 {
		t.Error("enumeration did not stop early")
	}
}

func TestEnumerateEmptyHandles(t *testing.T) {
	if len(Enumerate(nil, 2)) != 0 {
		t.Error("enumeration over no handles should be empty")
	}
	genotypes := Enumerate([]Handle{0, 1}, 0)
	if len(genotypes) != 1 || genotypes[0].Ploidy() != 0 {
		t.Error("enumeration with ploidy 0 should yield the empty genotype")
	}
}

func almostEqual(a, b, tolerance float64) bool {
	if a == b {
		return true
	}
	return math.Abs(a-b) <= tolerance
}

func TestLogHardyWeinbergDiploid(t *testing.T) {
	freqs := UniformFrequencies([]Handle{0, 1})
	if !almostEqual(LogHardyWeinberg(New(0, 0), freqs), math.Log(0.25), 1e-14) {
		t.Error("homozygous diploid prior failed")
	}
	if !almostEqual(LogHardyWeinberg(New(0, 1), freqs), math.Log(0.5), 1e-14) {
		t.Error("heterozygous diploid prior failed")
	}
}

func TestLogHardyWeinbergHaploid(t *testing.T) {
	freqs := Frequencies{0: 0.25, 1: 0.75}
	if !almostEqual(LogHardyWeinberg(New(0), freqs), math.Log(0.25), 1e-14) {
		t.Error("haploid prior failed")
	}
	if !almostEqual(LogHardyWeinberg(New(1), freqs), math.Log(0.75), 1e-14) {
		t.Error("haploid prior failed")
	}
}

func TestLogHardyWeinbergSumsToOne(t *testing.T) {
	r := rand.New(rand.NewSource(17))
	for run := 0; run < 20; run++ {
		n := 1 + r.Intn(5)
		ploidy := 1 + r.Intn(4)
		handles := make([]Handle, n)
		raw := make(map[Handle]uint32, n)
		for i := range handles {
			handles[i] = Handle(i)
			raw[Handle(i)] = uint32(1 + r.Intn(20))
		}
		freqs := FrequenciesFromCounts(raw)
		sum := 0.0
		for _, g := range Enumerate(handles, ploidy) {
			sum += math.Exp(LogHardyWeinberg(g, freqs))
		}
		if !almostEqual(sum, 1, 1e-10) {
			t.Error("Hardy-Weinberg probabilities do not sum to 1")
		}
	}
}

func TestFrequenciesFromCounts(t *testing.T) {
	freqs := FrequenciesFromCounts(map[Handle]uint32{0: 3, 1: 1})
	if !almostEqual(freqs[0], 0.75, 1e-15) || !almostEqual(freqs[1], 0.25, 1e-15) {
		t.Error("count normalization failed")
	}
}
