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
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/pkg/profile"
	"github.com/vertgenlab/gonomics/sam"

	"github.com/exascience/haplogo/align"
	"github.com/exascience/haplogo/caller"
	"github.com/exascience/haplogo/measures"
	"github.com/exascience/haplogo/refseq"
	"github.com/exascience/haplogo/regions"
	"github.com/exascience/haplogo/scheduler"
	"github.com/exascience/haplogo/utils"
	"github.com/exascience/haplogo/variants"
)

// CallHelp is the help string for the call command.
const CallHelp = "\ncall parameters:\n" +
	"haplogo call\n" +
	"--reference genome.fasta\n" +
	"--bam sample.bam\n" +
	"[--output calls.vcf]\n" +
	"[--sample-name name]\n" +
	"[--region contig:start-end]\n" +
	"[--targets targets.bed]\n" +
	"[--candidate-vcf candidates.vcf]\n" +
	"[--caller individual]\n" +
	"[--ploidy number]\n" +
	"[--min-variant-posterior probability]\n" +
	"[--min-refcall-posterior probability]\n" +
	"[--measures name,...]\n" +
	"[--min-mapping-quality quality]\n" +
	"[--min-base-quality quality]\n" +
	"[--min-support count]\n" +
	"[--max-region-size size]\n" +
	"[--max-haplotypes count]\n" +
	"[--max-holdout-depth depth]\n" +
	"[--read-budget count]\n" +
	"[--retry-attempts count]\n" +
	"[--contig-order reference|lex-asc|lex-desc|size-desc]\n" +
	"[--reference-cache-size bytes]\n" +
	"[--nr-of-threads number]\n" +
	"[--timed]\n" +
	"[--log-path path]\n" +
	"[--profile-path prefix]\n" +
	"[--memory-profile]\n"

// A lockedReadProvider serializes access to a read source shared by
// the candidate generators of all workers. The reads are copied out
// of the source's recycled buffer.
type lockedReadProvider struct {
	mutex  sync.Mutex
	source scheduler.ReadSource
}

func (p *lockedReadProvider) Reads(region regions.Region) ([]sam.Sam, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	reads, err := p.source.Reads(region)
	if err != nil {
		return nil, err
	}
	return append([]sam.Sam(nil), reads...), nil
}

// Call parses the command line of the call command and runs the
// caller over the requested regions.
func Call() error {
	var flags flag.FlagSet

	var (
		reference, bam, output, sampleName     string
		region, targets, candidateVCF          string
		callerName, measureNames, contigOrder  string
		ploidy                                 int
		minVariantPosterior                    float64
		minRefcallPosterior                    float64
		minMappingQuality, minBaseQuality      int
		minSupport                             int
		maxRegionSize, maxHaplotypes           int
		maxHoldoutDepth, readBudget            int
		retryAttempts                          int
		referenceCacheSize                     int64
		nrOfThreads                            int
		timed, verbose                         bool
		logPath, profilePath                   string
		memoryProfile                          bool
	)

	flags.StringVar(&reference, "reference", "", "reference FASTA file, with .fai index")
	flags.StringVar(&bam, "bam", "", "input BAM file, with .bai index")
	flags.StringVar(&output, "output", "", "output VCF file")
	flags.StringVar(&sampleName, "sample-name", "", "sample name in the output VCF")
	flags.StringVar(&region, "region", "", "restrict calling to one region")
	flags.StringVar(&targets, "targets", "", "restrict calling to the regions in a BED file")
	flags.StringVar(&candidateVCF, "candidate-vcf", "", "VCF file with additional candidate variants")
	flags.StringVar(&callerName, "caller", "individual", "calling model")
	flags.IntVar(&ploidy, "ploidy", caller.DefaultParameters.Ploidy, "ploidy of the sample")
	flags.Float64Var(&minVariantPosterior, "min-variant-posterior", caller.DefaultParameters.MinVariantPosterior, "minimum posterior probability to call a variant")
	flags.Float64Var(&minRefcallPosterior, "min-refcall-posterior", caller.DefaultParameters.MinRefcallPosterior, "minimum posterior probability to confirm the reference")
	flags.StringVar(&measureNames, "measures", "depth,allele-frequency,quality-by-depth", "annotation measures, as a comma-separated list of names")
	flags.IntVar(&minMappingQuality, "min-mapping-quality", int(scheduler.DefaultOptions.MinMappingQuality), "minimum mapping quality of reads used for calling")
	flags.IntVar(&minBaseQuality, "min-base-quality", 20, "minimum base quality of mismatches that nominate candidates")
	flags.IntVar(&minSupport, "min-support", 2, "minimum number of reads that must support a candidate")
	flags.IntVar(&maxRegionSize, "max-region-size", int(scheduler.DefaultOptions.MaxRegionSize), "maximum size of a scheduled region")
	flags.IntVar(&maxHaplotypes, "max-haplotypes", scheduler.DefaultOptions.MaxHaplotypes, "maximum number of haplotypes per region")
	flags.IntVar(&maxHoldoutDepth, "max-holdout-depth", scheduler.DefaultOptions.MaxHoldoutDepth, "skip regions with more reads than this")
	flags.IntVar(&readBudget, "read-budget", scheduler.DefaultOptions.ReadBudget, "maximum number of reads held in memory over all workers")
	flags.IntVar(&retryAttempts, "retry-attempts", scheduler.DefaultOptions.RetryAttempts, "number of attempts for failing reads")
	flags.StringVar(&contigOrder, "contig-order", "", "order in which contigs are processed")
	flags.Int64Var(&referenceCacheSize, "reference-cache-size", 1<<30, "maximum number of reference bases kept in memory")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.BoolVar(&verbose, "verbose", false, "log additional progress detail")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	flags.StringVar(&profilePath, "profile-path", "", "write a CPU profile to the specified file prefix")
	flags.BoolVar(&memoryProfile, "memory-profile", false, "write a memory profile")

	parseFlags(flags, 2, CallHelp)

	setLogOutput(logPath)

	ok := checkCallOptions(reference, bam)
	ok = checkExist("--reference", reference) && ok
	ok = ok && checkExist("--reference", reference+".fai")
	ok = checkExist("--bam", bam) && ok
	ok = ok && checkExist("--bam", bam+".bai")
	if targets != "" {
		ok = checkExist("--targets", targets) && ok
	}
	if candidateVCF != "" {
		ok = checkExist("--candidate-vcf", candidateVCF) && ok
	}
	if output == "" {
		output = strings.TrimSuffix(filepath.Base(bam), ".bam") + ".vcf"
	}
	ok = checkCreate("--output", output) && ok

	order, err := regions.ParseOrder(contigOrder)
	if err != nil {
		log.Println("Error: ", err)
		ok = false
	}
	if !ok {
		fmt.Fprint(os.Stderr, CallHelp)
		os.Exit(1)
	}

	if sampleName == "" {
		sampleName = strings.TrimSuffix(filepath.Base(bam), ".bam")
	}
	if nrOfThreads > 0 {
		runtime.GOMAXPROCS(nrOfThreads)
	}
	if memoryProfile {
		defer profile.Start(profile.MemProfile).Stop()
	}

	opts := scheduler.DefaultOptions
	opts.Workers = runtime.GOMAXPROCS(0)
	opts.MaxRegionSize = int32(maxRegionSize)
	opts.MaxHaplotypes = maxHaplotypes
	opts.MaxHoldoutDepth = maxHoldoutDepth
	opts.MinMappingQuality = uint8(minMappingQuality)
	opts.ReadBudget = readBudget
	opts.RetryAttempts = retryAttempts
	opts.Verbose = verbose

	selected, err := measures.MakeAll(measureNames)
	if err != nil {
		return err
	}
	model, err := caller.Make(callerName, caller.Parameters{
		Ploidy:              ploidy,
		MinVariantPosterior: minVariantPosterior,
		MinRefcallPosterior: minRefcallPosterior,
	})
	if err != nil {
		return err
	}

	referenceCache, err := refseq.NewCache(reference, referenceCacheSize)
	if err != nil {
		return err
	}
	defer referenceCache.Close()

	contigs := append([]regions.Contig(nil), referenceCache.Contigs()...)
	regions.SortContigs(contigs, order)
	var regionList []regions.Region
	switch {
	case region != "":
		r, err := regions.ParseRegion(region, contigs)
		if err != nil {
			return err
		}
		regionList = []regions.Region{r}
	case targets != "":
		regionList = regions.PartitionTargets(contigs, regions.TargetsFromBedFile(targets), opts.MaxRegionSize)
	default:
		regionList = regions.Partition(contigs, opts.MaxRegionSize)
	}

	factory := scheduler.BamFactory(bam)
	candidateSource, err := factory()
	if err != nil {
		return err
	}
	defer candidateSource.Close()
	generator := variants.Generator(&variants.AlignmentCandidates{
		Provider:       &lockedReadProvider{source: candidateSource},
		Reference:      referenceCache,
		MinSupport:     uint32(minSupport),
		MinBaseQuality: byte(minBaseQuality),
	})
	if candidateVCF != "" {
		generator = variants.Compose(generator, variants.FromVCFFile(candidateVCF))
	}

	writer := scheduler.NewVCFWriter(output, referenceCache, sampleName, selected)
	defer writer.Close()

	sched := &scheduler.Scheduler{
		Opts:      opts,
		Reference: referenceCache,
		Generator: generator,
		Builder:   scheduler.SimpleBuilder{MaxHaplotypes: opts.MaxHaplotypes},
		Aligner:   align.NewBaseQualityModel(),
		Caller:    model,
		Sources:   factory,
		Sample:    utils.Intern(sampleName),
	}

	log.Println("Executing command:\n", strings.Join(os.Args, " "))

	var runErr error
	timedRun(timed, profilePath, "Calling variants.", 1, func() {
		var variantCalls, refCalls int
		var counts scheduler.Counts
		counts, runErr = sched.Run(context.Background(), regionList, func(result scheduler.Result) error {
			for _, call := range result.Calls {
				if call.RefCall {
					refCalls++
				} else {
					variantCalls++
				}
				if err := writer.Write(call); err != nil {
					return err
				}
			}
			return nil
		})
		log.Printf("Called %v variants and %v reference sites over %v regions.", variantCalls, refCalls, counts.Completed)
	})
	return runErr
}
