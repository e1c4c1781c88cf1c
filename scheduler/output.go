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
	"strconv"
	"strings"

	"github.com/vertgenlab/gonomics/fileio"
	"github.com/vertgenlab/gonomics/vcf"

	"github.com/exascience/haplogo/caller"
	"github.com/exascience/haplogo/measures"
	"github.com/exascience/haplogo/refseq"
	"github.com/exascience/haplogo/utils"
)

// A VCFWriter writes calls as VCF records. Insertions and deletions
// are stored without a shared reference base, so they are re-anchored
// on the padding base when written.
type VCFWriter struct {
	out       *fileio.EasyWriter
	reference *refseq.Cache
	measures  []measures.Measure
}

// NewVCFWriter creates the output file and writes the VCF header. The
// contig lines are taken from the reference index, and one INFO line
// is written per requested measure.
func NewVCFWriter(filename string, reference *refseq.Cache, sampleName string, selected []measures.Measure) *VCFWriter {
	out := fileio.EasyCreate(filename)
	var header vcf.Header
	header.Text = append(header.Text, "##fileformat=VCFv4.2")
	header.Text = append(header.Text, fmt.Sprintf("##source=%v %v", utils.ProgramName, utils.ProgramVersion))
	for _, contig := range reference.Contigs() {
		header.Text = append(header.Text, fmt.Sprintf("##contig=<ID=%v,length=%v>", contig.Name, contig.Length))
	}
	for _, m := range selected {
		header.Text = append(header.Text, fmt.Sprintf("##INFO=<ID=%v,Number=1,Type=Float,Description=%q>", m.Key(), m.Name()))
	}
	header.Text = append(header.Text, "##FORMAT=<ID=GT,Number=1,Type=String,Description=\"Genotype\">")
	header.Text = append(header.Text, fmt.Sprintf("#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT\t%v", sampleName))
	vcf.NewWriteHeader(out, header)
	return &VCFWriter{out: out, reference: reference, measures: selected}
}

// Write writes one call as a VCF record.
func (w *VCFWriter) Write(call caller.Call) error {
	record := vcf.Vcf{
		Chr:    call.Variant.Contig,
		Id:     ".",
		Qual:   call.Quality,
		Filter: ".",
		Format: []string{"GT"},
	}
	pos, ref, alt, err := w.anchor(call)
	if err != nil {
		return err
	}
	record.Pos = pos
	record.Ref = ref
	record.Alt = []string{alt}
	record.Info = w.info(call)
	record.Samples = []vcf.Sample{{
		Alleles:    alleles(call),
		FormatData: []string{""},
	}}
	vcf.WriteVcf(w.out, record)
	return nil
}

// Close closes the output file.
func (w *VCFWriter) Close() error {
	return w.out.Close()
}

// anchor returns the VCF position, reference allele, and alternate
// allele for a call. SNVs and other length-preserving variants are
// written as is. Insertions and deletions are anchored on the
// reference base before the event, or on the base after it when the
// event starts at the first base of the contig.
func (w *VCFWriter) anchor(call caller.Call) (int, string, string, error) {
	v := call.Variant
	if call.RefCall {
		base, err := w.reference.Bases(v.Contig, v.Pos-1, v.Pos)
		if err != nil {
			return 0, "", "", err
		}
		return int(v.Pos), base, ".", nil
	}
	if !v.IsInsertion() && !v.IsDeletion() {
		return int(v.Pos), v.Ref, v.Alt, nil
	}
	if v.Pos > 1 {
		base, err := w.reference.Bases(v.Contig, v.Pos-2, v.Pos-1)
		if err != nil {
			return 0, "", "", err
		}
		return int(v.Pos - 1), base + v.Ref, base + v.Alt, nil
	}
	after := v.Pos + int32(len(v.Ref))
	base, err := w.reference.Bases(v.Contig, after-1, after)
	if err != nil {
		return 0, "", "", err
	}
	return int(v.Pos), v.Ref + base, v.Alt + base, nil
}

// info formats the measure values of a call as an INFO field.
func (w *VCFWriter) info(call caller.Call) string {
	if len(w.measures) == 0 {
		return "."
	}
	fields := make([]string, len(w.measures))
	for i, m := range w.measures {
		fields[i] = m.Key() + "=" + strconv.FormatFloat(m.Compute(call), 'f', -1, 64)
	}
	return strings.Join(fields, ";")
}

// alleles translates a call into genotype allele indices. The alleles
// of the called genotype that carry the variant map to the alternate
// allele.
func alleles(call caller.Call) []int16 {
	result := make([]int16, call.Genotype.Ploidy())
	for i := call.Genotype.Ploidy() - call.AltSupport; i < len(result); i++ {
		result[i] = 1
	}
	return result
}
