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

package caller

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/exascience/haplogo/likelihood"
	"github.com/exascience/haplogo/utils"
	"github.com/exascience/haplogo/variants"
)

// A Caller produces calls for one sample over one region.
type Caller interface {
	Ploidy() int
	Call(cache *likelihood.Cache, sample utils.Symbol, haplotypes []variants.Haplotype, candidates []variants.Variant, stats ReadStats) []Call
}

// UnknownCallerError reports a caller name that is not in the
// registry. It lists the known names in its message.
type UnknownCallerError struct {
	Name  string
	Known []string
}

func (e UnknownCallerError) Error() string {
	return fmt.Sprintf("unknown caller %v; known callers are %v", e.Name, strings.Join(e.Known, ", "))
}

type constructor func(params Parameters) (Caller, error)

var constructors map[string]constructor

func init() {
	constructors = map[string]constructor{
		"individual": func(params Parameters) (Caller, error) {
			return NewIndividual(params), nil
		},
		"population": func(params Parameters) (Caller, error) {
			return nil, fmt.Errorf("the population caller is not implemented in this release")
		},
		"cancer": func(params Parameters) (Caller, error) {
			return nil, fmt.Errorf("the cancer caller is not implemented in this release")
		},
	}
}

// Names returns the registered caller names in sorted order.
func Names() []string {
	names := maps.Keys(constructors)
	slices.Sort(names)
	return names
}

// Make constructs the named caller.
func Make(name string, params Parameters) (Caller, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, UnknownCallerError{Name: name, Known: Names()}
	}
	return ctor(params)
}
