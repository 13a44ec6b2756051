// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/cskokgibbs/gimmemotifs/internal/appcore"
	"github.com/cskokgibbs/gimmemotifs/internal/cli"
	"github.com/cskokgibbs/gimmemotifs/internal/config"
	"github.com/cskokgibbs/gimmemotifs/internal/logger"
	"github.com/cskokgibbs/gimmemotifs/internal/version"
	"github.com/cskokgibbs/gimmemotifs/internal/writers"
)

// RunContext parses argv, resolves configuration and runs one scan.
// The returned code is the process exit code.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)

	fs := cli.NewFlagSet("pfmscan")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		_, _ = cli.ParseArgs(fs, []string{"-h"})
		fs.SetOutput(outw)
		fs.Usage()
		return flushExit(outw, stderr, 0)
	}

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		switch {
		case errors.Is(err, cli.ErrPrintedAndExitOK):
			cli.PrintExamples(outw)
			return flushExit(outw, stderr, 0)
		case errors.Is(err, flag.ErrHelp):
			fs.SetOutput(outw)
			fs.Usage()
			return flushExit(outw, stderr, 0)
		}
		_, _ = fmt.Fprintln(stderr, err)
		fs.SetOutput(outw)
		fs.Usage()
		return flushExit(outw, stderr, 2)
	}

	if opts.Version {
		_, _ = fmt.Fprintln(outw, version.String())
		return flushExit(outw, stderr, 0)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	if opts.Quiet {
		level = "warn"
	}
	log, err := logger.New(level)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}
	defer func() { _ = log.Sync() }()

	o := mergeOptions(opts, cfg)
	if opts.Progress {
		o.Progress = stderr
	}
	return appcore.Run(parent, stdout, stderr, o, log)
}

// Run is RunContext without cancellation.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// mergeOptions resolves the effective settings: flags win over config,
// config wins over built-in defaults.
func mergeOptions(opt cli.Options, cfg config.Config) appcore.Options {
	o := appcore.Options{
		Input:      opt.Input,
		PFMFile:    opt.PFMFile,
		Genome:     opt.Genome,
		BGFile:     opt.BGFile,
		BED:        opt.BED || cfg.Output.BED,
		Table:      opt.Table,
		ScoreTable: opt.ScoreTable,
		Fast:       opt.Fast,
		Cutoff:     opt.Cutoff,
		FPR:        opt.FPR,
		PValue:     opt.PValue,
		ZScore:     opt.ZScore,
		GCNorm:     opt.GCNorm,
	}
	if o.Genome == "" {
		o.Genome = cfg.Scan.Genome
	}
	if o.Cutoff == nil && o.FPR == nil {
		f := cfg.Scan.FPR
		o.FPR = &f
	}
	o.NReport = opt.NReport
	if o.NReport < 0 {
		o.NReport = *cfg.Scan.NReport
	}
	o.ScanRC = *cfg.Scan.ScanRC && !opt.NoRC
	o.NCPUs = opt.NCPUs
	if o.NCPUs < 0 {
		o.NCPUs = cfg.Scan.NCPUs
	}
	return o
}

func flushExit(outw *bufio.Writer, stderr io.Writer, code int) int {
	if err := outw.Flush(); writers.IsBrokenPipe(err) {
		return 0
	} else if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}
	return code
}
