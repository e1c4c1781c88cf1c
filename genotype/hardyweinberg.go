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
	"math"

	"github.com/exascience/haplogo/logmath"
)

// Frequencies maps haplotype handles to population frequencies. The
// frequencies are expected to sum to 1 over the handles of a region.
type Frequencies map[Handle]float64

// UniformFrequencies assigns every handle the same frequency.
func UniformFrequencies(handles []Handle) Frequencies {
	if len(handles) == 0 {
		return Frequencies{}
	}
	f := 1 / float64(len(handles))
	freqs := make(Frequencies, len(handles))
	for _, h := range handles {
		freqs[h] = f
	}
	return freqs
}

// FrequenciesFromCounts normalizes observation counts into
// frequencies. Handles with zero count get zero frequency.
func FrequenciesFromCounts(counts map[Handle]uint32) Frequencies {
	var total uint32
	for _, c := range counts {
		total += c
	}
	freqs := make(Frequencies, len(counts))
	if total == 0 {
		for h := range counts {
			freqs[h] = 0
		}
		return freqs
	}
	for h, c := range counts {
		freqs[h] = float64(c) / float64(total)
	}
	return freqs
}

func logFrequency(freqs Frequencies, h Handle) float64 {
	f, ok := freqs[h]
	if !ok {
		log.Panicf("no frequency for haplotype handle %v", int32(h))
	}
	return math.Log(f)
}

// LogHardyWeinberg returns the natural log of the Hardy-Weinberg
// probability of the genotype under the given haplotype frequencies.
func LogHardyWeinberg(g Genotype, freqs Frequencies) float64 {
	switch g.Ploidy() {
	case 0:
		return 0
	case 1:
		return logFrequency(freqs, g.At(0))
	case 2:
		if g.IsHomozygous() {
			return 2 * logFrequency(freqs, g.At(0))
		}
		return logmath.LnSmall(2) + logFrequency(freqs, g.At(0)) + logFrequency(freqs, g.At(1))
	default:
		unique, counts := g.Counts()
		result := logmath.LogMultinomialCoefficient(counts)
		for i, h := range unique {
			result += float64(counts[i]) * logFrequency(freqs, h)
		}
		return result
	}
}
