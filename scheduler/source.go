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
	"log"
	"time"

	"github.com/vertgenlab/gonomics/sam"

	"github.com/exascience/haplogo/regions"
)

// A ReadSource supplies the aligned reads overlapping a region. A
// ReadSource is owned by one worker and not shared.
type ReadSource interface {
	Reads(region regions.Region) ([]sam.Sam, error)
	Close() error
}

// A ReadSourceFactory opens one ReadSource per worker.
type ReadSourceFactory func() (ReadSource, error)

type bamReadSource struct {
	reader   *sam.BamReader
	bai      sam.Bai
	recycled []sam.Sam
}

// BamFactory returns a factory over an indexed BAM file. The .bai
// index is expected next to the BAM file.
func BamFactory(path string) ReadSourceFactory {
	return func() (source ReadSource, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("opening %v: %v", path, r)
			}
		}()
		reader, _ := sam.OpenBam(path)
		bai := sam.ReadBai(path + ".bai")
		return &bamReadSource{reader: reader, bai: bai}, nil
	}
}

func (s *bamReadSource) Reads(region regions.Region) (reads []sam.Sam, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading %v: %v", region, r)
		}
	}()
	s.recycled = sam.SeekBamRegionRecycle(s.reader, s.bai, region.Contig, uint32(region.Start), uint32(region.End), s.recycled[:0])
	return s.recycled, nil
}

func (s *bamReadSource) Close() error {
	return s.reader.Close()
}

// retryingSource retries transient read failures with a fixed backoff
// before giving up on a region.
type retryingSource struct {
	source   ReadSource
	attempts int
	backoff  time.Duration
}

// WithRetry wraps a ReadSource so that Reads is attempted up to
// attempts times, sleeping backoff between attempts.
func WithRetry(source ReadSource, attempts int, backoff time.Duration) ReadSource {
	if attempts < 1 {
		attempts = 1
	}
	return &retryingSource{source: source, attempts: attempts, backoff: backoff}
}

func (s *retryingSource) Reads(region regions.Region) ([]sam.Sam, error) {
	var err error
	for attempt := 1; ; attempt++ {
		var reads []sam.Sam
		reads, err = s.source.Reads(region)
		if err == nil {
			return reads, nil
		}
		if attempt >= s.attempts {
			break
		}
		log.Printf("retrying reads for %v after failure (attempt %v of %v): %v", region, attempt, s.attempts, err)
		time.Sleep(s.backoff)
	}
	return nil, fmt.Errorf("reads for %v failed after %v attempts: %w", region, s.attempts, err)
}

func (s *retryingSource) Close() error {
	return s.source.Close()
}
