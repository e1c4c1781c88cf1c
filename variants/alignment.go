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

package variants

import (
	"sort"

	"github.com/vertgenlab/gonomics/cigar"
	"github.com/vertgenlab/gonomics/dna"
	"github.com/vertgenlab/gonomics/sam"

	"github.com/exascience/haplogo/regions"
	"github.com/exascience/haplogo/sequtil"
)

// A ReadProvider supplies the aligned reads overlapping a region.
type ReadProvider interface {
	Reads(region regions.Region) ([]sam.Sam, error)
}

// A Reference supplies reference bases as an uppercase string over a
// 0-based half-open range.
type Reference interface {
	Bases(contig string, start, end int32) (string, error)
}

// AlignmentCandidates generates candidate variants from mismatches,
// insertions, and deletions in read alignments. A candidate is emitted
// when at least MinSupport reads carry it. Candidates containing 'N'
// bases are discarded.
type AlignmentCandidates struct {
	Provider       ReadProvider
	Reference      Reference
	MinSupport     uint32
	MinBaseQuality byte
}

// Generate scans the reads overlapping the region and returns the
// supported candidates within the region, sorted by position.
func (c *AlignmentCandidates) Generate(region regions.Region) ([]Variant, error) {
	reads, err := c.Provider.Reads(region)
	if err != nil {
		return nil, err
	}
	support := make(map[Variant]uint32)
	for i := range reads {
		if err := c.scanRead(&reads[i], support); err != nil {
			return nil, err
		}
	}
	var result []Variant
	for v, count := range support {
		if count >= c.MinSupport && v.Pos > region.Start && v.Pos <= region.End {
			result = append(result, v)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Less(result[j])
	})
	return result, nil
}

func (c *AlignmentCandidates) scanRead(read *sam.Sam, support map[Variant]uint32) error {
	start := int32(read.GetChromStart())
	end := int32(read.GetChromEnd())
	if end <= start {
		return nil
	}
	reference, err := c.Reference.Bases(read.RName, start, end)
	if err != nil {
		return err
	}
	seq := dna.BasesToString(read.Seq)
	if sequtil.HasNs(seq) && sequtil.CountBase(seq, 'N') == len(seq) {
		// fully masked read
		return nil
	}
	refPos := int32(read.Pos) // 1-based
	readPos := 0
	for _, op := range read.Cigar {
		length := op.RunLength
		switch op.Op {
		case 'M', '=', 'X':
			for i := 0; i < length; i++ {
				refOffset := int(refPos) - 1 + i - int(start)
				if refOffset < 0 || refOffset >= len(reference) || readPos+i >= len(seq) {
					continue
				}
				refBase := reference[refOffset]
				readBase := seq[readPos+i]
				if readBase == refBase {
					continue
				}
				if !sequtil.IsCanonicalBase(readBase) || !sequtil.IsCanonicalBase(refBase) {
					continue
				}
				if len(read.Qual) > readPos+i && read.Qual[readPos+i]-33 < c.MinBaseQuality {
					continue
				}
				support[Variant{
					Contig: read.RName,
					Pos:    refPos + int32(i),
					Ref:    string(refBase),
					Alt:    string(readBase),
				}]++
			}
			refPos += int32(length)
			readPos += length
		case 'I':
			if readPos+length <= len(seq) {
				inserted := seq[readPos : readPos+length]
				if !sequtil.HasNs(inserted) {
					support[Variant{
						Contig: read.RName,
						Pos:    refPos,
						Ref:    "",
						Alt:    inserted,
					}]++
				}
			}
			readPos += length
		case 'D':
			refOffset := int(refPos) - 1 - int(start)
			if refOffset >= 0 && refOffset+length <= len(reference) {
				deleted := reference[refOffset : refOffset+length]
				if !sequtil.HasNs(deleted) {
					support[Variant{
						Contig: read.RName,
						Pos:    refPos,
						Ref:    deleted,
						Alt:    "",
					}]++
				}
			}
			refPos += int32(length)
		case 'N':
			refPos += int32(length)
		case 'S':
			readPos += length
		default:
			if cigar.ConsumesReference(op.Op) {
				refPos += int32(length)
			}
			if cigar.ConsumesQuery(op.Op) {
				readPos += length
			}
		}
	}
	return nil
}
