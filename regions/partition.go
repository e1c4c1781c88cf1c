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

package regions

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/vertgenlab/gonomics/bed"
)

// A Contig names one reference sequence and its length.
type Contig struct {
	Name   string
	Length int32
}

// An Order determines the processing order of contigs.
type Order int

const (
	// ReferenceOrder keeps contigs in reference dictionary order.
	ReferenceOrder Order = iota
	// LexicographicAscending sorts contigs by name, ascending.
	LexicographicAscending
	// LexicographicDescending sorts contigs by name, descending.
	LexicographicDescending
	// SizeDescending sorts contigs by length, largest first.
	SizeDescending
)

// ParseOrder maps a command line name to an Order.
func ParseOrder(name string) (Order, error) {
	switch name {
	case "", "reference":
		return ReferenceOrder, nil
	case "lex-asc":
		return LexicographicAscending, nil
	case "lex-desc":
		return LexicographicDescending, nil
	case "size-desc":
		return SizeDescending, nil
	default:
		return ReferenceOrder, fmt.Errorf("unknown contig order %v; known orders are reference, lex-asc, lex-desc, and size-desc", name)
	}
}

// SortContigs reorders contigs according to the given order. Reference
// order leaves the slice unchanged. Sorts are stable, so contigs of
// equal length keep their reference order under SizeDescending.
func SortContigs(contigs []Contig, order Order) {
	switch order {
	case LexicographicAscending:
		sort.SliceStable(contigs, func(i, j int) bool {
			return contigs[i].Name < contigs[j].Name
		})
	case LexicographicDescending:
		sort.SliceStable(contigs, func(i, j int) bool {
			return contigs[i].Name > contigs[j].Name
		})
	case SizeDescending:
		sort.SliceStable(contigs, func(i, j int) bool {
			return contigs[i].Length > contigs[j].Length
		})
	}
}

// Partition cuts every contig into regions of at most maxRegionSize
// base pairs and numbers them in processing order.
func Partition(contigs []Contig, maxRegionSize int32) []Region {
	var result []Region
	for _, contig := range contigs {
		for start := int32(0); start < contig.Length; start += maxRegionSize {
			end := start + maxRegionSize
			if end > contig.Length {
				end = contig.Length
			}
			result = append(result, Region{
				Contig: contig.Name,
				Start:  start,
				End:    end,
				Index:  len(result),
			})
		}
	}
	return result
}

// PartitionTargets cuts every target interval into regions of at most
// maxRegionSize base pairs, walking the contigs in the given order.
// The target intervals must be flattened per contig.
func PartitionTargets(contigs []Contig, targets map[string][]Interval, maxRegionSize int32) []Region {
	var result []Region
	for _, contig := range contigs {
		for _, target := range targets[contig.Name] {
			for start := target.Start; start < target.End; start += maxRegionSize {
				end := start + maxRegionSize
				if end > target.End {
					end = target.End
				}
				result = append(result, Region{
					Contig: contig.Name,
					Start:  start,
					End:    end,
					Index:  len(result),
				})
			}
		}
	}
	return result
}

// TotalSize returns the number of base pairs covered by the regions.
func TotalSize(regions []Region) int64 {
	var total int64
	for _, region := range regions {
		total += int64(region.Size())
	}
	return total
}

// ParseRegion parses a contig:start-end region string with 1-based
// inclusive positions, or a bare contig name covering the full contig.
func ParseRegion(s string, contigs []Contig) (Region, error) {
	colon := strings.LastIndexByte(s, ':')
	name := s
	if colon >= 0 {
		name = s[:colon]
	}
	var length int32 = -1
	for _, contig := range contigs {
		if contig.Name == name {
			length = contig.Length
			break
		}
	}
	if length < 0 {
		return Region{}, fmt.Errorf("unknown contig %v in region %v", name, s)
	}
	if colon < 0 {
		return Region{Contig: name, Start: 0, End: length}, nil
	}
	dash := strings.IndexByte(s[colon+1:], '-')
	if dash < 0 {
		return Region{}, fmt.Errorf("invalid region %v; expected contig:start-end", s)
	}
	start, err := strconv.ParseInt(s[colon+1:colon+1+dash], 10, 32)
	if err != nil {
		return Region{}, fmt.Errorf("invalid region start in %v", s)
	}
	end, err := strconv.ParseInt(s[colon+2+dash:], 10, 32)
	if err != nil {
		return Region{}, fmt.Errorf("invalid region end in %v", s)
	}
	if start < 1 || end < start || int32(end) > length {
		return Region{}, fmt.Errorf("region %v out of bounds for contig %v of length %v", s, name, length)
	}
	return Region{Contig: name, Start: int32(start) - 1, End: int32(end)}, nil
}

// TargetsFromBedFile reads a BED file into flattened per-contig target
// intervals.
func TargetsFromBedFile(filename string) map[string][]Interval {
	targets := make(map[string][]Interval)
	for b := range bed.GoReadToChan(filename) {
		targets[b.Chrom] = append(targets[b.Chrom], Interval{Start: int32(b.ChromStart), End: int32(b.ChromEnd)})
	}
	for chrom, intervals := range targets {
		ParallelSortByStart(intervals)
		targets[chrom] = ParallelFlatten(intervals)
	}
	return targets
}
