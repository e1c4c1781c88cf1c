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

// Package refseq serves reference sequence slices from an indexed
// FASTA file through a process-wide cache with a byte budget.
package refseq

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/fasta"
	"github.com/vertgenlab/gonomics/fileio"

	"github.com/exascience/haplogo/regions"
)

type entry struct {
	bases   string
	lastUse uint64
}

// A Cache loads contigs on demand and keeps them in memory up to a
// byte budget, evicting the least recently used contigs when the
// budget is exceeded. Cached bases are uppercase and immutable after
// insertion. A Cache is safe for concurrent use; all workers of a run
// share one instance.
type Cache struct {
	seekerMutex sync.Mutex
	seeker      *fasta.Seeker
	contigs     []regions.Contig
	lengths     map[string]int32
	mutex       sync.RWMutex
	entries     map[string]*entry
	size        int64
	capacity    int64
	clock       uint64
}

// NewCache opens the given indexed FASTA file. The .fai index next to
// it supplies the sequence dictionary. capacity bounds the number of
// cached reference bytes.
func NewCache(path string, capacity int64) (*Cache, error) {
	contigs, err := readIndex(path + ".fai")
	if err != nil {
		return nil, err
	}
	lengths := make(map[string]int32, len(contigs))
	for _, contig := range contigs {
		lengths[contig.Name] = contig.Length
	}
	return &Cache{
		seeker:   fasta.NewSeeker(path, ""),
		contigs:  contigs,
		lengths:  lengths,
		entries:  make(map[string]*entry),
		capacity: capacity,
	}, nil
}

func readIndex(path string) ([]regions.Contig, error) {
	file := fileio.EasyOpen(path)
	defer file.Close()
	var contigs []regions.Contig
	for line, done := fileio.EasyNextRealLine(file); !done; line, done = fileio.EasyNextRealLine(file) {
		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			return nil, fmt.Errorf("invalid fasta index line %v in %v", line, path)
		}
		length, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid sequence length in fasta index %v: %v", path, err)
		}
		contigs = append(contigs, regions.Contig{Name: fields[0], Length: int32(length)})
	}
	return contigs, nil
}

// Contigs returns the sequence dictionary in reference order.
func (c *Cache) Contigs() []regions.Contig {
	return c.contigs
}

// ContigLength returns the length of the named contig, or -1 if the
// contig is not in the dictionary.
func (c *Cache) ContigLength(name string) int32 {
	if length, ok := c.lengths[name]; ok {
		return length
	}
	return -1
}

// Bases returns the uppercase reference bases of the 0-based half-open
// range on the given contig.
func (c *Cache) Bases(contig string, start, end int32) (string, error) {
	length, ok := c.lengths[contig]
	if !ok {
		return "", fmt.Errorf("unknown contig %v", contig)
	}
	if start < 0 {
		start = 0
	}
	if end > length {
		end = length
	}
	if end <= start {
		return "", nil
	}
	bases, err := c.contigBases(contig, length)
	if err != nil {
		return "", err
	}
	return bases[start:end], nil
}

func (c *Cache) contigBases(contig string, length int32) (string, error) {
	c.mutex.RLock()
	e, ok := c.entries[contig]
	c.mutex.RUnlock()
	if ok {
		atomic.StoreUint64(&e.lastUse, atomic.AddUint64(&c.clock, 1))
		return e.bases, nil
	}
	bases, err := c.load(contig, length)
	if err != nil {
		return "", err
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if e, ok := c.entries[contig]; ok {
		atomic.StoreUint64(&e.lastUse, atomic.AddUint64(&c.clock, 1))
		return e.bases, nil
	}
	c.entries[contig] = &entry{
		bases:   bases,
		lastUse: atomic.AddUint64(&c.clock, 1),
	}
	c.size += int64(len(bases))
	c.evict(contig)
	return bases, nil
}

func (c *Cache) load(contig string, length int32) (string, error) {
	c.seekerMutex.Lock()
	defer c.seekerMutex.Unlock()
	bases, err := fasta.SeekByName(c.seeker, contig, 0, int(length))
	if err != nil {
		return "", err
	}
	dna.AllToUpper(bases)
	return dna.BasesToString(bases), nil
}

// evict drops least recently used entries until the cache fits its
// budget again. The entry named keep is never evicted, so a contig
// larger than the budget can still be served.
func (c *Cache) evict(keep string) {
	for c.size > c.capacity && len(c.entries) > 1 {
		victim := ""
		var oldest uint64
		for name, e := range c.entries {
			if name == keep {
				continue
			}
			use := atomic.LoadUint64(&e.lastUse)
			if victim == "" || use < oldest {
				victim = name
				oldest = use
			}
		}
		if victim == "" {
			return
		}
		c.size -= int64(len(c.entries[victim].bases))
		delete(c.entries, victim)
	}
}

// Close releases the underlying FASTA file.
func (c *Cache) Close() error {
	c.seekerMutex.Lock()
	defer c.seekerMutex.Unlock()
	return c.seeker.Close()
}
