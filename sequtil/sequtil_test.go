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

package sequtil

import "testing"

func TestHasNs(t *testing.T) {
	if HasNs("ACGT") {
		t.Error("HasNs without N failed")
	}
	if !HasNs("ACNGT") {
		t.Error("HasNs with N failed")
	}
	if HasNs("") {
		t.Error("HasNs empty failed")
	}
}

func TestIsCanonicalBase(t *testing.T) {
	for _, base := range []byte{'A', 'C', 'G', 'T'} {
		if !IsCanonicalBase(base) {
			t.Errorf("IsCanonicalBase %c failed", base)
		}
	}
	for _, base := range []byte{'N', 'a', 'U', '*', ' '} {
		if IsCanonicalBase(base) {
			t.Errorf("IsCanonicalBase %c failed", base)
		}
	}
}

func TestCountBase(t *testing.T) {
	if CountBase("ACGTACGTAC", 'A') != 3 {
		t.Error("CountBase failed")
	}
	if CountBase("ACGT", 'N') != 0 {
		t.Error("CountBase absent base failed")
	}
	if CountBase("", 'A') != 0 {
		t.Error("CountBase empty failed")
	}
}
