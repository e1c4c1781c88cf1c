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

// Package sequtil provides predicates over nucleotide sequences.
package sequtil

import "strings"

// HasNs returns true if the sequence contains at least one 'N' base.
func HasNs(sequence string) bool {
	return strings.IndexByte(sequence, 'N') >= 0
}

// IsCanonicalBase returns true for A, C, G, and T.
func IsCanonicalBase(base byte) bool {
	switch base {
	case 'A', 'C', 'G', 'T':
		return true
	default:
		return false
	}
}

// CountBase returns the number of occurrences of base in the sequence.
func CountBase(sequence string, base byte) int {
	return strings.Count(sequence, string(base))
}
