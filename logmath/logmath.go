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

// Package logmath provides natural-log-space arithmetic used by the
// genotype likelihood model.
package logmath

import (
	"math"
)

// lnTable holds ln(n) for small n at full float64 precision. Index 0 is
// +Inf so that a lookup of ln(0) poisons any result it flows into
// instead of passing as a legitimate log probability.
var lnTable = [...]float64{
	math.Inf(1),
	0.0,
	0.693147180559945309417232121458176568075500134360255254120,
	1.098612288668109691395245236922525704647490557822749451734,
	1.386294361119890618834464242916353136151000268720510508241,
	1.609437912434100374600759333226187639525601354268517721912,
	1.791759469228055000812477358380702272722990692183004705855,
	1.945910149055313305105352743443179729637084729581861188459,
	2.079441541679835928251696364374529704226500403080765762362,
	2.197224577336219382790490473845051409294981115645498903469,
	2.302585092994045684017991454684364207601101488628772976033,
}

// LnSmall returns ln(n), using an exact lookup for n <= 10.
func LnSmall(n uint32) float64 {
	if int(n) < len(lnTable) {
		return lnTable[n]
	}
	return math.Log(float64(n))
}

// LogSumExp returns ln(exp(a) + exp(b)).
func LogSumExp(a, b float64) float64 {
	if a < b {
		a, b = b, a
	}
	if math.IsInf(a, -1) {
		return a
	}
	return a + math.Log1p(math.Exp(b-a))
}

// LogSumExp3 returns ln(exp(a) + exp(b) + exp(c)).
func LogSumExp3(a, b, c float64) float64 {
	max := a
	if b > max {
		max = b
	}
	if c > max {
		max = c
	}
	if math.IsInf(max, -1) {
		return max
	}
	return max + math.Log(math.Exp(a-max)+math.Exp(b-max)+math.Exp(c-max))
}

// LogSumExpSlice returns ln of the sum of exp over values. An empty
// slice yields -Inf.
func LogSumExpSlice(values []float64) float64 {
	if len(values) == 0 {
		return math.Inf(-1)
	}
	max := values[0]
	maxIndex := 0
	for i, v := range values[1:] {
		if v > max {
			max = v
			maxIndex = i + 1
		}
	}
	if math.IsInf(max, -1) {
		return max
	}
	sum := 1.0
	for i, v := range values {
		if i != maxIndex {
			sum += math.Exp(v - max)
		}
	}
	return max + math.Log(sum)
}

// LogMultinomialCoefficient returns the natural log of the multinomial
// coefficient (sum counts)! / (prod counts!).
func LogMultinomialCoefficient(counts []uint32) float64 {
	var total uint32
	for _, c := range counts {
		total += c
	}
	result, _ := math.Lgamma(float64(total) + 1)
	for _, c := range counts {
		l, _ := math.Lgamma(float64(c) + 1)
		result -= l
	}
	return result
}
