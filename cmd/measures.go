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

package cmd

import (
	"fmt"
	"os"

	"github.com/exascience/haplogo/measures"
)

// MeasuresHelp is the help string for the measures command.
const MeasuresHelp = "\nmeasures parameters:\n" +
	"haplogo measures\n"

// Measures prints the available annotation measures with their VCF
// INFO keys.
func Measures() error {
	for _, name := range measures.Names() {
		m, err := measures.Make(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%v\t%v\n", name, m.Key())
	}
	return nil
}
