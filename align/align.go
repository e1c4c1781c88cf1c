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

// Package align scores reads against haplotypes. The base quality
// model walks the read's alignment gaplessly over the haplotype
// sequence and scores each aligned base by its quality, with flat
// penalties for gaps.
package align

import (
	"math"
	"strings"

	"github.com/vertgenlab/gonomics/cigar"
	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/sam"

	"github.com/exascience/haplogo/sequtil"
	"github.com/exascience/haplogo/variants"
)

const (
	numQualities = 94
	qualityBase  = 33
)

var logMatch, logMismatch [numQualities]float64

func init() {
	for q := 0; q < numQualities; q++ {
		e := math.Pow(10, -float64(q)/10)
		if e >= 1 {
			e = 0.75
		}
		logMatch[q] = math.Log1p(-e)
		logMismatch[q] = math.Log(e / 3)
	}
}

// BaseQualityModel scores a read against a haplotype as the sum of
// per-base log probabilities. Matching bases contribute log(1-e) and
// mismatching bases log(e/3), with e the base's error probability.
// Read bases inserted or deleted relative to the haplotype contribute
// GapOpen once per gap and GapExtend per additional base.
type BaseQualityModel struct {
	GapOpen   float64
	GapExtend float64
}

// NewBaseQualityModel returns a model with the default gap penalties.
func NewBaseQualityModel() *BaseQualityModel {
	return &BaseQualityModel{GapOpen: -10, GapExtend: -1}
}

// Align returns the log likelihood of observing the read given the
// haplotype. Aligned bases outside the haplotype contribute nothing,
// so an ungapped read that does not overlap the haplotype scores zero;
// gap penalties apply whether or not the read overlaps.
func (m *BaseQualityModel) Align(read sam.Sam, haplotype variants.Haplotype) float64 {
	bases := strings.ToUpper(dna.BasesToString(read.Seq))
	qual := read.Qual
	refPos := int32(read.GetChromStart()) - haplotype.Start
	readPos := 0
	result := 0.0
	for _, op := range read.Cigar {
		switch op.Op {
		case 'M', '=', 'X':
			for i := 0; i < op.RunLength; i++ {
				p := refPos + int32(i)
				r := readPos + i
				if p < 0 || int(p) >= len(haplotype.Bases) || r >= len(bases) {
					continue
				}
				q := int(qual[r]) - qualityBase
				if q < 0 {
					q = 0
				} else if q >= numQualities {
					q = numQualities - 1
				}
				if !sequtil.IsCanonicalBase(bases[r]) || !sequtil.IsCanonicalBase(haplotype.Bases[p]) {
					continue
				}
				if bases[r] == haplotype.Bases[p] {
					result += logMatch[q]
				} else {
					result += logMismatch[q]
				}
			}
			refPos += int32(op.RunLength)
			readPos += op.RunLength
		case 'I':
			result += m.gap(op.RunLength)
			readPos += op.RunLength
		case 'D':
			result += m.gap(op.RunLength)
			refPos += int32(op.RunLength)
		case 'S':
			readPos += op.RunLength
		case 'N':
			refPos += int32(op.RunLength)
		default:
			if cigar.ConsumesReference(op.Op) {
				refPos += int32(op.RunLength)
			}
			if cigar.ConsumesQuery(op.Op) {
				readPos += op.RunLength
			}
		}
	}
	return result
}

func (m *BaseQualityModel) gap(length int) float64 {
	return m.GapOpen + float64(length-1)*m.GapExtend
}
