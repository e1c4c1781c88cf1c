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

// Package likelihood caches per-read haplotype likelihoods and
// evaluates genotype likelihoods under arbitrary ploidy.
package likelihood

import (
	"log"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/exascience/haplogo/genotype"
	"github.com/exascience/haplogo/utils"
)

// A Cache stores, per sample and per haplotype handle, the natural log
// likelihood of each read given that haplotype. All vectors for a
// sample have the same length and share the same read order. The cache
// owns the float64 storage.
//
// A cache is primed for one region at a time. Queries before priming,
// or for handles that were not primed, are programmer errors and
// panic. A cache is not safe for concurrent use; the scheduler keeps
// one per worker.
type Cache struct {
	likelihoods map[utils.Symbol]map[genotype.Handle][]float64
	numReads    map[utils.Symbol]int
	primed      bool
}

// NewCache returns an empty, unprimed cache.
func NewCache() *Cache {
	return &Cache{
		likelihoods: make(map[utils.Symbol]map[genotype.Handle][]float64),
		numReads:    make(map[utils.Symbol]int),
	}
}

// Prime stores the likelihood vectors for one sample and marks the
// cache primed. All vectors must have the same length.
func (c *Cache) Prime(sample utils.Symbol, likelihoods map[genotype.Handle][]float64) {
	n := -1
	for h, vector := range likelihoods {
		if n < 0 {
			n = len(vector)
		} else if len(vector) != n {
			log.Panicf("likelihood vector length mismatch for haplotype handle %v: %v instead of %v", int32(h), len(vector), n)
		}
	}
	if n < 0 {
		n = 0
	}
	c.likelihoods[sample] = likelihoods
	c.numReads[sample] = n
	c.primed = true
}

// Primed returns true if the cache has been primed since the last
// Clear.
func (c *Cache) Primed() bool {
	return c.primed
}

// Get returns the likelihood vector for the given sample and handle.
func (c *Cache) Get(sample utils.Symbol, h genotype.Handle) []float64 {
	if !c.primed {
		log.Panic("likelihood cache queried before priming")
	}
	sampleLikelihoods, ok := c.likelihoods[sample]
	if !ok {
		log.Panicf("likelihood cache queried for unknown sample %v", *sample)
	}
	vector, ok := sampleLikelihoods[h]
	if !ok {
		log.Panicf("likelihood cache queried for unknown haplotype handle %v", int32(h))
	}
	return vector
}

// NumReads returns the number of reads primed for the given sample.
func (c *Cache) NumReads(sample utils.Symbol) int {
	if !c.primed {
		log.Panic("likelihood cache queried before priming")
	}
	n, ok := c.numReads[sample]
	if !ok {
		log.Panicf("likelihood cache queried for unknown sample %v", *sample)
	}
	return n
}

// Haplotypes returns the primed handles for the given sample in
// ascending order.
func (c *Cache) Haplotypes(sample utils.Symbol) []genotype.Handle {
	if !c.primed {
		log.Panic("likelihood cache queried before priming")
	}
	handles := maps.Keys(c.likelihoods[sample])
	slices.Sort(handles)
	return handles
}

// Clear unprimes the cache and drops all stored vectors, so the cache
// can be reused for the next region.
func (c *Cache) Clear() {
	maps.Clear(c.likelihoods)
	maps.Clear(c.numReads)
	c.primed = false
}
