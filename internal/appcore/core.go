// internal/appcore/core.go
package appcore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/cskokgibbs/gimmemotifs/core/background"
	"github.com/cskokgibbs/gimmemotifs/core/fasta"
	"github.com/cskokgibbs/gimmemotifs/core/fastscan"
	"github.com/cskokgibbs/gimmemotifs/core/motif"
	"github.com/cskokgibbs/gimmemotifs/core/scan"
	"github.com/cskokgibbs/gimmemotifs/internal/pipeline"
	"github.com/cskokgibbs/gimmemotifs/internal/version"
	"github.com/cskokgibbs/gimmemotifs/internal/writers"
)

// Options are the fully resolved settings for one run, after config and
// flag merging.
type Options struct {
	Input   string // FASTA/BED/region file, or "-" for stdin
	PFMFile string
	Genome  string
	BGFile  string

	BED        bool
	Table      bool
	ScoreTable bool
	Fast       bool

	Cutoff *float64
	FPR    *float64
	PValue *float64

	NReport int // 0 = unlimited
	ScanRC  bool
	ZScore  bool
	GCNorm  bool
	NCPUs   int

	Progress io.Writer // nil disables the progress bar
}

// Run executes one scan end to end and returns the process exit code:
// 0 on success (including a broken pipe), 2 for load and configuration
// failures, 3 for runtime failures, 130 on cancellation.
func Run(parent context.Context, stdout, stderr io.Writer, o Options, log *zap.Logger) int {
	if log == nil {
		log = zap.NewNop()
	}
	outw := bufio.NewWriter(stdout)

	// The fast backend re-reads the raw input itself, so it only works
	// on a seekable FASTA file.
	if o.Fast {
		if o.Input == "-" {
			fmt.Fprintln(stderr, "error: --fast re-reads the input and cannot use STDIN")
			return 2
		}
		if ok, err := fasta.LooksLikeFasta(o.Input); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		} else if !ok {
			fmt.Fprintln(stderr, "error: --fast needs FASTA input, not a region list")
			return 2
		}
	}

	motifs, err := motif.ReadFile(o.PFMFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	log.Info("motifs loaded", zap.String("file", o.PFMFile), zap.Int("count", len(motifs)))

	seqs, err := fasta.AsFasta(o.Input, o.Genome)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	log.Info("input loaded", zap.String("input", o.Input), zap.Int("sequences", seqs.Len()))

	bg, err := resolveBackground(o, seqs, log)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	sc := scan.New(scan.Config{NCPUs: o.NCPUs, Logger: log, Progress: o.Progress})
	if err := sc.SetMotifs(motifs); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if o.Genome != "" {
		if err := sc.SetGenome(o.Genome); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
	}
	sc.SetBackground(bg)

	cutoff, fpr := o.Cutoff, o.FPR
	if cutoff == nil && fpr == nil {
		f := scan.DefaultFPR
		fpr = &f
	}
	if !o.ScoreTable {
		if err := sc.SetThreshold(cutoff, fpr); err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
	}

	var alt pipeline.AltEngine
	if o.Fast && !o.ScoreTable {
		fr, err := fastscan.New(fastscan.Config{
			Input:      o.Input,
			Motifs:     motifs,
			Background: bg,
			Cutoff:     cutoff,
			PValue:     o.PValue,
			FPR:        fpr,
			NReport:    o.NReport,
			ScanRC:     o.ScanRC,
			Logger:     log,
		})
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		alt = fr
	}

	if o.BED && (o.Table || o.ScoreTable) {
		log.Warn("--bed has no effect on table output")
	}
	if o.PValue != nil && !o.Fast {
		log.Warn("--pvalue only applies to the --fast backend")
	}

	in, writeErr := writers.StartLineWriter(outw, sc.Workers()*4)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	send := func(line string) error {
		select {
		case in <- line:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	var perr error
	for _, ln := range Preamble(o, fpr) {
		if perr = send(ln); perr != nil {
			break
		}
	}
	if perr == nil {
		perr = pipeline.ForEachLine(ctx,
			pipeline.Deps{Engine: sc, Alt: alt, Seqs: seqs, Motifs: motifs},
			pipeline.Options{
				Table:      o.Table,
				ScoreTable: o.ScoreTable,
				BED:        o.BED,
				NReport:    o.NReport,
				ScanRC:     o.ScanRC,
				ZScore:     o.ZScore,
				GCNorm:     o.GCNorm,
			},
			send)
	}

	close(in)

	if werr := <-writeErr; writers.IsBrokenPipe(werr) {
		return 0
	} else if werr != nil {
		fmt.Fprintln(stderr, werr)
		return 3
	}
	if e := outw.Flush(); writers.IsBrokenPipe(e) {
		return 0
	} else if e != nil {
		fmt.Fprintln(stderr, e)
		return 3
	}

	if perr != nil {
		if errors.Is(perr, context.Canceled) {
			return 130
		}
		fmt.Fprintln(stderr, perr)
		return 3
	}
	return 0
}

// Preamble returns the comment header printed before the result lines.
// fpr is the threshold FPR actually in effect, nil when a cutoff rules.
func Preamble(o Options, fpr *float64) []string {
	lines := []string{
		"# pfmscan version " + version.Version,
		"# Input: " + o.Input,
		"# Motifs: " + o.PFMFile,
	}
	if fpr != nil && !o.ScoreTable {
		switch {
		case o.Genome != "":
			lines = append(lines, fmt.Sprintf("# FPR: %s (%s)", floatText(*fpr), o.Genome))
		case o.BGFile != "":
			lines = append(lines, fmt.Sprintf("# FPR: %s (%s)", floatText(*fpr), o.BGFile))
		}
	}
	if o.Cutoff != nil {
		lines = append(lines, "# Threshold: "+floatText(*o.Cutoff))
	}
	switch {
	case o.ZScore && o.GCNorm:
		lines = append(lines, "# Scoring: GC frequency normalized z-score")
	case o.ZScore:
		lines = append(lines, "# Scoring: normalized z-score")
	default:
		lines = append(lines, "# Scoring: logodds score")
	}
	return lines
}

// resolveBackground picks the background model source: a genome wins
// over a background file; with neither, the input itself is the model.
// The median input length sizes the score distributions.
func resolveBackground(o Options, seqs *fasta.Sequences, log *zap.Logger) (*background.Background, error) {
	size := seqs.MedianLength()
	switch {
	case o.Genome != "":
		log.Debug("background from genome", zap.String("file", o.Genome), zap.Int("size", size))
		return background.FromGenome(o.Genome, size)
	case o.BGFile != "":
		log.Debug("background from file", zap.String("file", o.BGFile), zap.Int("size", size))
		return background.FromFile(o.BGFile, size)
	default:
		log.Debug("background from input sequences", zap.Int("size", size))
		return background.FromSequences(seqs, size), nil
	}
}

func floatText(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
