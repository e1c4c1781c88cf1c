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
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/stat"
)

// A ProgressMeter logs the progress of a run in blocks of one percent
// of the total number of bases, with an estimated time to completion
// based on the observed per-base processing times. Outlier blocks more
// than two standard deviations from the mean are ignored for the
// estimate.
type ProgressMeter struct {
	mutex          sync.Mutex
	runID          string
	total          int64
	completed      int64
	blockSize      int64
	nextBlock      int64
	started        time.Time
	blockStarted   time.Time
	secondsPerBase []float64
	verbose        bool
}

// NewProgressMeter returns a meter over a run of total bases. Verbose
// meters plot the per-block processing times when done.
func NewProgressMeter(total int64, verbose bool) *ProgressMeter {
	blockSize := total / 100
	if blockSize < 1 {
		blockSize = 1
	}
	return &ProgressMeter{
		runID:     uuid.New().String(),
		total:     total,
		blockSize: blockSize,
		nextBlock: blockSize,
		verbose:   verbose,
	}
}

// Start logs the run header and starts the clock.
func (m *ProgressMeter) Start() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.started = time.Now()
	m.blockStarted = m.started
	log.Printf("run %v: calling over %v bases", m.runID, m.total)
}

// ReportCompleted records size processed bases and logs a progress
// line whenever a percent block completes.
func (m *ProgressMeter) ReportCompleted(size int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.completed += size
	for m.completed >= m.nextBlock {
		now := time.Now()
		blockSeconds := now.Sub(m.blockStarted).Seconds()
		m.secondsPerBase = append(m.secondsPerBase, blockSeconds/float64(m.blockSize))
		m.blockStarted = now
		m.nextBlock += m.blockSize
		percent := 100 * m.completed / m.total
		log.Printf("run %v: %v%% (%v of %v bases), estimated time remaining %v",
			m.runID, percent, m.completed, m.total, m.estimate())
	}
}

// estimate extrapolates the remaining time from the trimmed mean of
// the observed per-base times. Called with the mutex held.
func (m *ProgressMeter) estimate() time.Duration {
	remaining := m.total - m.completed
	if remaining <= 0 {
		return 0
	}
	mean, std := stat.MeanStdDev(m.secondsPerBase, nil)
	if math.IsNaN(std) {
		std = 0
	}
	var sum float64
	var n int
	for _, s := range m.secondsPerBase {
		if math.Abs(s-mean) <= 2*std {
			sum += s
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return time.Duration(sum / float64(n) * float64(remaining) * float64(time.Second)).Round(time.Second)
}

// Done logs the final timing line, and in verbose mode a plot of the
// per-block processing times.
func (m *ProgressMeter) Done() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	log.Printf("run %v: processed %v bases in %v", m.runID, m.completed, time.Since(m.started).Round(time.Second))
	if m.verbose && len(m.secondsPerBase) > 1 {
		log.Printf("run %v: seconds per base by percent block:\n%v", m.runID,
			asciigraph.Plot(m.secondsPerBase, asciigraph.Height(10)))
	}
}
