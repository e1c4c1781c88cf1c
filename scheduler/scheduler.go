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

// Package scheduler partitions the genome into regions and runs the
// caller over them in parallel, emitting results in region order.
package scheduler

import (
	"context"
	"errors"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/bits-and-blooms/bitset"
	"github.com/exascience/pargo/pipeline"
	"github.com/vertgenlab/gonomics/sam"

	"github.com/exascience/haplogo/caller"
	"github.com/exascience/haplogo/likelihood"
	"github.com/exascience/haplogo/refseq"
	"github.com/exascience/haplogo/regions"
	"github.com/exascience/haplogo/utils"
	"github.com/exascience/haplogo/variants"
)

// Options control the parallel region scheduler.
type Options struct {
	Workers           int
	MaxRegionSize     int32
	MaxHaplotypes     int
	MaxHoldoutDepth   int
	MinMappingQuality uint8
	ReadBudget        int
	RetryAttempts     int
	RetryBackoff      time.Duration
	Verbose           bool
}

// DefaultOptions are the scheduler options used when the command line
// does not override them.
var DefaultOptions = Options{
	Workers:           runtime.GOMAXPROCS(0),
	MaxRegionSize:     100000,
	MaxHaplotypes:     200,
	MaxHoldoutDepth:   20000,
	MinMappingQuality: 20,
	ReadBudget:        1000000,
	RetryAttempts:     3,
	RetryBackoff:      time.Second,
}

// A Status classifies the outcome of one region.
type Status int

const (
	// Completed regions produced their calls.
	Completed Status = iota
	// Skipped regions were given up on without failing the run.
	Skipped
	// Failed regions encountered an error that retrying did not
	// resolve.
	Failed
)

// A Result is the outcome of one region. Calls is non-empty only for
// completed regions, and Err only for skipped and failed ones.
type Result struct {
	Region regions.Region
	Status Status
	Calls  []caller.Call
	Err    error
}

// Counts summarizes a finished run.
type Counts struct {
	Completed, Skipped, Failed int
}

// A Scheduler runs a caller over a list of regions.
type Scheduler struct {
	Opts      Options
	Reference *refseq.Cache
	Generator variants.Generator
	Builder   HaplotypeBuilder
	Aligner   likelihood.Aligner
	Caller    caller.Caller
	Sources   ReadSourceFactory
	Sample    utils.Symbol
}

// A readBudget bounds the total number of reads held in memory by all
// workers together. Regions larger than the full budget are admitted
// alone.
type readBudget struct {
	mutex     sync.Mutex
	cond      sync.Cond
	capacity  int
	available int
}

func newReadBudget(capacity int) *readBudget {
	b := &readBudget{capacity: capacity, available: capacity}
	b.cond.L = &b.mutex
	return b
}

func (b *readBudget) acquire(n int) {
	if b == nil {
		return
	}
	if n > b.capacity {
		n = b.capacity
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	for b.available < n {
		b.cond.Wait()
	}
	b.available -= n
}

func (b *readBudget) release(n int) {
	if b == nil {
		return
	}
	if n > b.capacity {
		n = b.capacity
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.available += n
	b.cond.Broadcast()
}

// Run processes the given regions in parallel and invokes emit for
// every result in region order. The run continues past skipped and
// failed regions; it stops early when the context is canceled or emit
// returns an error.
func (s *Scheduler) Run(ctx context.Context, regionList []regions.Region, emit func(Result) error) (Counts, error) {
	workers := s.Opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	sourcePool := make(chan ReadSource, workers)
	for i := 0; i < workers; i++ {
		source, err := s.Sources()
		if err != nil {
			close(sourcePool)
			for opened := range sourcePool {
				_ = opened.Close()
			}
			return Counts{}, err
		}
		if s.Opts.RetryAttempts > 1 {
			source = WithRetry(source, s.Opts.RetryAttempts, s.Opts.RetryBackoff)
		}
		sourcePool <- source
	}
	defer func() {
		for i := 0; i < workers; i++ {
			if err := (<-sourcePool).Close(); err != nil {
				log.Printf("closing read source: %v", err)
			}
		}
	}()

	var budget *readBudget
	if s.Opts.ReadBudget > 0 {
		budget = newReadBudget(s.Opts.ReadBudget)
	}

	cachePool := make(chan *likelihood.Cache, workers)
	for i := 0; i < workers; i++ {
		cachePool <- likelihood.NewCache()
	}

	meter := NewProgressMeter(regions.TotalSize(regionList), s.Opts.Verbose)
	meter.Start()

	regionChannel := make(chan regions.Region, workers)
	go func() {
		defer close(regionChannel)
		for _, region := range regionList {
			select {
			case <-ctx.Done():
				return
			case regionChannel <- region:
			}
		}
	}()

	var counts Counts
	completed := bitset.New(uint(len(regionList)))

	var p pipeline.Pipeline
	p.Source(pipeline.NewSingletonChan(regionChannel))
	p.SetVariableBatchSize(1, 1)
	p.Add(
		pipeline.LimitedPar(workers, pipeline.Receive(func(_ int, data interface{}) interface{} {
			region := data.(regions.Region)
			source := <-sourcePool
			cache := <-cachePool
			result := s.processRegion(ctx, region, source, cache, budget)
			cachePool <- cache
			sourcePool <- source
			meter.ReportCompleted(int64(region.Size()))
			return result
		})),
		pipeline.StrictOrd(pipeline.Receive(func(_ int, data interface{}) interface{} {
			result := data.(Result)
			switch result.Status {
			case Completed:
				counts.Completed++
				completed.Set(uint(result.Region.Index))
			case Skipped:
				counts.Skipped++
				log.Printf("skipping region %v: %v", result.Region, result.Err)
			case Failed:
				counts.Failed++
				log.Printf("region %v failed: %v", result.Region, result.Err)
			}
			if err := emit(result); err != nil {
				p.SetErr(err)
			}
			return data
		})),
	)
	p.Run()
	meter.Done()
	log.Printf("%v regions completed, %v skipped, %v failed", counts.Completed, counts.Skipped, counts.Failed)
	if err := p.Err(); err != nil {
		return counts, err
	}
	if err := ctx.Err(); err != nil {
		return counts, err
	}
	if uncompleted := uint(len(regionList)) - completed.Count(); uncompleted > 0 && s.Opts.Verbose {
		if index, ok := completed.NextClear(0); ok && index < uint(len(regionList)) {
			log.Printf("%v regions did not complete; first is %v", uncompleted, regionList[index])
		}
	}
	return counts, nil
}

// processRegion runs the full calling sequence over one region. The
// cache is owned by one worker and recycled across its regions.
func (s *Scheduler) processRegion(ctx context.Context, region regions.Region, source ReadSource, cache *likelihood.Cache, budget *readBudget) Result {
	if err := ctx.Err(); err != nil {
		return Result{Region: region, Status: Failed, Err: err}
	}

	reference, err := s.Reference.Bases(region.Contig, region.Start, region.End)
	if err != nil {
		return Result{Region: region, Status: Failed, Err: err}
	}

	reads, err := source.Reads(region)
	if err != nil {
		return Result{Region: region, Status: Failed, Err: err}
	}
	if len(reads) > s.Opts.MaxHoldoutDepth && s.Opts.MaxHoldoutDepth > 0 {
		return Result{Region: region, Status: Skipped, Err: RegionSkippedError{Region: region, Reason: "max-holdout-depth"}}
	}
	budget.acquire(len(reads))
	defer budget.release(len(reads))

	filtered, stats := s.filterReads(reads)

	candidates, err := s.Generator.Generate(region)
	if err != nil {
		return Result{Region: region, Status: Failed, Err: err}
	}
	if len(candidates) == 0 {
		return Result{Region: region, Status: Completed}
	}

	haplotypes, err := s.Builder.Build(region, reference, candidates)
	if err != nil {
		var skip RegionSkippedError
		if errors.As(err, &skip) {
			return Result{Region: region, Status: Skipped, Err: err}
		}
		return Result{Region: region, Status: Failed, Err: err}
	}

	cache.Clear()
	likelihood.PrimeFromAligner(cache, s.Sample, filtered, haplotypes, s.Aligner)
	calls := s.Caller.Call(cache, s.Sample, haplotypes, candidates, stats)
	return Result{Region: region, Status: Completed, Calls: calls}
}

// filterReads drops reads below the mapping quality threshold and
// summarizes the unfiltered reads for call annotation.
func (s *Scheduler) filterReads(reads []sam.Sam) ([]sam.Sam, caller.ReadStats) {
	stats := caller.ReadStats{Depth: len(reads)}
	filtered := reads[:0:0]
	for i := range reads {
		if sam.IsPosStrand(reads[i]) {
			stats.Forward++
		} else {
			stats.Reverse++
		}
		if reads[i].MapQ == 0 {
			stats.MappingQualityZero++
		}
		if reads[i].MapQ >= s.Opts.MinMappingQuality {
			filtered = append(filtered, reads[i])
		}
	}
	return filtered, stats
}
