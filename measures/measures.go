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

// Package measures computes annotation values over calls. The set of
// measures is closed; names are resolved through a static registry.
package measures

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/exascience/haplogo/caller"
)

// A Measure computes one annotation value for a call. Key is the
// VCF INFO key the value is written under.
type Measure interface {
	Name() string
	Key() string
	Compute(call caller.Call) float64
}

// UnknownMeasureError reports a measure name that is not in the
// registry. It lists the known names in its message.
type UnknownMeasureError struct {
	Name  string
	Known []string
}

func (e UnknownMeasureError) Error() string {
	return fmt.Sprintf("unknown measure %v; known measures are %v", e.Name, strings.Join(e.Known, ", "))
}

type depth struct{}

func (depth) Key() string { return "DP" }

func (depth) Name() string { return "depth" }

func (depth) Compute(call caller.Call) float64 {
	return float64(call.Depth)
}

type alleleFrequency struct{}

func (alleleFrequency) Key() string { return "AF" }

func (alleleFrequency) Name() string { return "allele-frequency" }

func (alleleFrequency) Compute(call caller.Call) float64 {
	if call.Depth == 0 {
		return 0
	}
	return float64(call.AltSupport) / float64(call.Depth)
}

type quality struct{}

func (quality) Key() string { return "Q" }

func (quality) Name() string { return "quality" }

func (quality) Compute(call caller.Call) float64 {
	return call.Quality
}

type qualityByDepth struct{}

func (qualityByDepth) Key() string { return "QD" }

func (qualityByDepth) Name() string { return "quality-by-depth" }

func (qualityByDepth) Compute(call caller.Call) float64 {
	if call.Depth == 0 {
		return 0
	}
	return call.Quality / float64(call.Depth)
}

type genotypeQuality struct{}

func (genotypeQuality) Key() string { return "GQ" }

func (genotypeQuality) Name() string { return "genotype-quality" }

func (genotypeQuality) Compute(call caller.Call) float64 {
	return call.GenotypeQuality
}

type strandBias struct{}

func (strandBias) Key() string { return "SB" }

func (strandBias) Name() string { return "strand-bias" }

// Compute returns the imbalance between forward and reverse support as
// a value in [0, 1], where 0 is perfectly balanced.
func (strandBias) Compute(call caller.Call) float64 {
	total := call.Forward + call.Reverse
	if total == 0 {
		return 0
	}
	return math.Abs(float64(call.Forward)-float64(call.Reverse)) / float64(total)
}

type mappingQualityZero struct{}

func (mappingQualityZero) Key() string { return "MQ0" }

func (mappingQualityZero) Name() string { return "mapping-quality-zero-count" }

func (mappingQualityZero) Compute(call caller.Call) float64 {
	return float64(call.MappingQualityZero)
}

var registry map[string]Measure

func init() {
	registry = make(map[string]Measure)
	for _, m := range []Measure{
		depth{},
		alleleFrequency{},
		quality{},
		qualityByDepth{},
		genotypeQuality{},
		strandBias{},
		mappingQualityZero{},
	} {
		registry[m.Name()] = m
	}
}

// Names returns the registered measure names in sorted order.
func Names() []string {
	names := maps.Keys(registry)
	slices.Sort(names)
	return names
}

// Make returns the named measure.
func Make(name string) (Measure, error) {
	m, ok := registry[name]
	if !ok {
		return nil, UnknownMeasureError{Name: name, Known: Names()}
	}
	return m, nil
}

// MakeAll resolves a comma-separated list of measure names.
func MakeAll(names string) ([]Measure, error) {
	if names == "" {
		return nil, nil
	}
	var result []Measure
	for _, name := range strings.Split(names, ",") {
		m, err := Make(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, nil
}
