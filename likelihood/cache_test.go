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
	"testing"

	"github.com/exascience/haplogo/genotype"
)

func TestCache(t *testing.T) {
	cache := NewCache()
	if cache.Primed() {
		t.Error("new cache primed failed")
	}
	cache.Prime(testSample, map[genotype.Handle][]float64{
		2: {-1, -2},
		0: {-3, -4},
	})
	if !cache.Primed() {
		t.Error("primed cache failed")
	}
	if cache.NumReads(testSample) != 2 {
		t.Error("cache NumReads failed")
	}
	handles := cache.Haplotypes(testSample)
	if len(handles) != 2 || handles[0] != 0 || handles[1] != 2 {
		t.Error("cache Haplotypes failed")
	}
	vector := cache.Get(testSample, 2)
	if len(vector) != 2 || vector[0] != -1 || vector[1] != -2 {
		t.Error("cache Get failed")
	}
	cache.Clear()
	if cache.Primed() {
		t.Error("cleared cache primed failed")
	}
	cache.Prime(testSample, map[genotype.Handle][]float64{1: {-5}})
	if cache.NumReads(testSample) != 1 {
		t.Error("reprimed cache NumReads failed")
	}
}
