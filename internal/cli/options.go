package cli

import (
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/cskokgibbs/gimmemotifs/internal/cliutil"
	"github.com/cskokgibbs/gimmemotifs/internal/version"
)

// Options holds all CLI flags and the positional input path.
type Options struct {
	// Input
	Input   string // FASTA/BED/region file, or "-" for stdin
	PFMFile string
	Genome  string
	BGFile  string

	// Result mode
	BED        bool
	Table      bool
	ScoreTable bool
	Fast       bool

	// Thresholds; nil means "not given"
	Cutoff *float64
	FPR    *float64
	PValue *float64

	// Scanning
	NReport int // -1 until set; 0 = unlimited
	NoRC    bool
	ZScore  bool
	GCNorm  bool
	NCPUs   int // -1 until set; 0 = all cores

	// Miscellaneous
	Progress   bool
	ConfigPath string
	LogLevel   string
	Quiet      bool
	Examples   bool
	Version    bool
}

// NewFlagSet returns a configured FlagSet with custom usage/help.
func NewFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		out := fs.Output()
		fmt.Fprintf(out, "%s – scan sequences for motif occurrences\n\n", name)
		fmt.Fprintf(out, "Version: %s\n\n", version.Version)
		fmt.Fprintf(out, "Usage:\n  %s [options] --pfm motifs.pfm input.fa\n", name)

		fmt.Fprintln(out, "\nInput:")
		fmt.Fprintln(out, "  INPUT                       FASTA, BED, or region file; '-' for STDIN")
		fmt.Fprintln(out, "  -p, --pfm string            PFM motif file [*]")
		fmt.Fprintln(out, "  -g, --genome string         Genome FASTA for region input and background")
		fmt.Fprintln(out, "  -B, --bgfile string         Background FASTA (ignored when --genome is set)")

		fmt.Fprintln(out, "\nThresholds:")
		fmt.Fprintln(out, "  -c, --cutoff float          Log-odds score cutoff")
		fmt.Fprintln(out, "  -f, --fpr float             False positive rate [0.01]")
		fmt.Fprintln(out, "  -P, --pvalue float          Motif p-value cutoff (--fast only)")

		fmt.Fprintln(out, "\nScanning:")
		fmt.Fprintln(out, "  -n, --nreport int           Matches reported per motif and sequence (0 = unlimited) [1]")
		fmt.Fprintln(out, "      --no-rc                 Scan the forward strand only [false]")
		fmt.Fprintln(out, "  -z, --zscore                Report z-scores instead of raw log-odds [false]")
		fmt.Fprintln(out, "      --gc                    Normalize z-scores against sequence GC% [false]")
		fmt.Fprintln(out, "  -F, --fast                  Lookahead-pruned scanning backend [false]")
		fmt.Fprintln(out, "  -N, --ncpus int             Worker goroutines (0 = all cores, capped at 16) [0]")

		fmt.Fprintln(out, "\nOutput:")
		fmt.Fprintln(out, "  -b, --bed                   BED6 lines instead of GFF [false]")
		fmt.Fprintln(out, "  -T, --table                 Motif count table [false]")
		fmt.Fprintln(out, "  -t, --score-table           Best motif score table [false]")
		fmt.Fprintln(out, "      --progress              Progress bar on stderr [false]")

		fmt.Fprintln(out, "\nMiscellaneous:")
		fmt.Fprintln(out, "      --config string         Config file ($PFMSCAN_CONFIG, else ~/.config/pfmscan/pfmscan.yaml)")
		fmt.Fprintln(out, "      --log-level string      Log level: debug | info | warn | error [info]")
		fmt.Fprintln(out, "  -q, --quiet                 Log warnings and errors only [false]")
		fmt.Fprintln(out, "      --examples              Show quickstart examples and exit")
		fmt.Fprintln(out, "  -v, --version               Print version and exit")
		fmt.Fprintln(out, "  -h, --help                  Show this help and exit")
	}
	return fs
}

// Parse is the top-level call for CLI parsing.
func Parse() (Options, error) { return ParseArgs(NewFlagSet("pfmscan"), nil) }

// ParseArgs registers and parses all flags, returns an Options struct.
func ParseArgs(fs *flag.FlagSet, argv []string) (Options, error) {
	var opt Options
	var help bool

	// Input
	fs.StringVar(&opt.PFMFile, "pfm", "", "PFM motif file [*]")
	fs.StringVar(&opt.PFMFile, "p", "", "alias of --pfm")
	fs.StringVar(&opt.Genome, "genome", "", "genome FASTA for region input and background")
	fs.StringVar(&opt.Genome, "g", "", "alias of --genome")
	fs.StringVar(&opt.BGFile, "bgfile", "", "background FASTA (ignored when --genome is set)")
	fs.StringVar(&opt.BGFile, "B", "", "alias of --bgfile")

	// Result mode
	fs.BoolVar(&opt.BED, "bed", false, "BED6 lines instead of GFF [false]")
	fs.BoolVar(&opt.BED, "b", false, "alias of --bed")
	fs.BoolVar(&opt.Table, "table", false, "motif count table [false]")
	fs.BoolVar(&opt.Table, "T", false, "alias of --table")
	fs.BoolVar(&opt.ScoreTable, "score-table", false, "best motif score table [false]")
	fs.BoolVar(&opt.ScoreTable, "t", false, "alias of --score-table")
	fs.BoolVar(&opt.Fast, "fast", false, "lookahead-pruned scanning backend [false]")
	fs.BoolVar(&opt.Fast, "F", false, "alias of --fast")

	// Thresholds
	fs.Var(optFloat{&opt.Cutoff}, "cutoff", "log-odds score cutoff")
	fs.Var(optFloat{&opt.Cutoff}, "c", "alias of --cutoff")
	fs.Var(optFloat{&opt.FPR}, "fpr", "false positive rate [0.01]")
	fs.Var(optFloat{&opt.FPR}, "f", "alias of --fpr")
	fs.Var(optFloat{&opt.PValue}, "pvalue", "motif p-value cutoff (--fast only)")
	fs.Var(optFloat{&opt.PValue}, "P", "alias of --pvalue")

	// Scanning
	fs.IntVar(&opt.NReport, "nreport", -1, "matches reported per motif and sequence (0 = unlimited) [1]")
	fs.IntVar(&opt.NReport, "n", -1, "alias of --nreport")
	fs.BoolVar(&opt.NoRC, "no-rc", false, "scan the forward strand only [false]")
	fs.BoolVar(&opt.ZScore, "zscore", false, "report z-scores instead of raw log-odds [false]")
	fs.BoolVar(&opt.ZScore, "z", false, "alias of --zscore")
	fs.BoolVar(&opt.GCNorm, "gc", false, "normalize z-scores against sequence GC% [false]")
	fs.IntVar(&opt.NCPUs, "ncpus", -1, "worker goroutines (0 = all cores, capped at 16) [0]")
	fs.IntVar(&opt.NCPUs, "N", -1, "alias of --ncpus")

	// Miscellaneous
	fs.BoolVar(&opt.Progress, "progress", false, "progress bar on stderr [false]")
	fs.StringVar(&opt.ConfigPath, "config", "", "config file (overrides $PFMSCAN_CONFIG)")
	fs.StringVar(&opt.LogLevel, "log-level", "", "log level: debug | info | warn | error [info]")
	fs.BoolVar(&opt.Quiet, "quiet", false, "log warnings and errors only [false]")
	fs.BoolVar(&opt.Quiet, "q", false, "alias of --quiet")
	fs.BoolVar(&opt.Examples, "examples", false, "show quickstart examples and exit [false]")
	fs.BoolVar(&opt.Version, "version", false, "print version and exit [false]")
	fs.BoolVar(&opt.Version, "v", false, "alias of --version")
	fs.BoolVar(&help, "h", false, "show this help [false]")

	flagArgs, posArgs := cliutil.SplitFlagsAndPositionals(fs, argv)
	if err := fs.Parse(flagArgs); err != nil {
		return opt, err
	}
	if opt.Examples {
		return opt, ErrPrintedAndExitOK
	}
	if help {
		return opt, flag.ErrHelp
	}
	if opt.Version {
		return opt, nil
	}

	// Validation
	switch {
	case opt.Table && opt.ScoreTable:
		return opt, errors.New("--table conflicts with --score-table")
	case opt.Cutoff != nil && opt.FPR != nil:
		return opt, errors.New("--cutoff conflicts with --fpr")
	}
	if opt.PFMFile == "" {
		return opt, errors.New("--pfm is required")
	}
	switch len(posArgs) {
	case 0:
		return opt, errors.New("an input file (or '-') is required")
	case 1:
		opt.Input = posArgs[0]
	default:
		return opt, fmt.Errorf("expected one input, got %d", len(posArgs))
	}
	if opt.FPR != nil && (*opt.FPR <= 0 || *opt.FPR >= 1) {
		return opt, errors.New("--fpr must be between 0 and 1")
	}
	if opt.PValue != nil && (*opt.PValue <= 0 || *opt.PValue >= 1) {
		return opt, errors.New("--pvalue must be between 0 and 1")
	}
	if opt.NReport < -1 {
		return opt, errors.New("--nreport must be >= 0")
	}
	if opt.NCPUs < -1 {
		return opt, errors.New("--ncpus must be >= 0")
	}
	return opt, nil
}

// optFloat distinguishes an absent flag from an explicit value.
type optFloat struct{ p **float64 }

func (f optFloat) String() string {
	if f.p == nil || *f.p == nil {
		return ""
	}
	return strconv.FormatFloat(**f.p, 'g', -1, 64)
}

func (f optFloat) Set(v string) error {
	x, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", v)
	}
	*f.p = &x
	return nil
}
