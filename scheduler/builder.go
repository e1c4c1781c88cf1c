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

package scheduler

import (
	"fmt"

	"github.com/exascience/haplogo/regions"
	"github.com/exascience/haplogo/variants"
)

// A RegionSkippedError marks a region that is given up on without
// failing the run. The region is reported as skipped with the given
// reason.
type RegionSkippedError struct {
	Region regions.Region
	Reason string
}

func (e RegionSkippedError) Error() string {
	return fmt.Sprintf("region %v skipped: %v", e.Region, e.Reason)
}

// A HaplotypeBuilder turns candidate variants over a region into the
// haplotypes the genotype model evaluates. The reference haplotype is
// always first.
type HaplotypeBuilder interface {
	Build(region regions.Region, reference string, candidates []variants.Variant) ([]variants.Haplotype, error)
}

// SimpleBuilder builds one haplotype per candidate variant on top of
// the reference haplotype. Regions whose haplotype count would exceed
// MaxHaplotypes are skipped.
type SimpleBuilder struct {
	MaxHaplotypes int
}

func (b SimpleBuilder) Build(region regions.Region, reference string, candidates []variants.Variant) ([]variants.Haplotype, error) {
	if b.MaxHaplotypes > 0 && len(candidates)+1 > b.MaxHaplotypes {
		return nil, RegionSkippedError{Region: region, Reason: "haplotype-overflow"}
	}
	return variants.BuildSimpleHaplotypes(region, reference, candidates), nil
}
