// Package fastscan is the alternate scanner for large inputs. It
// resolves thresholds up front and prunes windows with a lookahead
// bound: once a window's partial score plus the best remaining score
// cannot reach the threshold, the window is abandoned.
package fastscan

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/cskokgibbs/gimmemotifs/core/background"
	"github.com/cskokgibbs/gimmemotifs/core/fasta"
	"github.com/cskokgibbs/gimmemotifs/core/motif"
	"github.com/cskokgibbs/gimmemotifs/core/scan"
)

var (
	ErrNoMotifs    = errors.New("no motifs configured")
	ErrNoThreshold = errors.New("fast scan needs a cutoff, p-value or FPR")
)

// Config fixes one fast-scan run; thresholds resolve at New. An absolute
// cutoff wins over a p-value, which wins over an FPR.
type Config struct {
	Input      string
	Motifs     []motif.Motif
	Background *background.Background
	Cutoff     *float64
	PValue     *float64
	FPR        *float64
	NReport    int
	ScanRC     bool
	Logger     *zap.Logger
}

// SeqCounts is one count-table row: matches per motif for one sequence.
type SeqCounts struct {
	ID     string
	Counts []int
}

// MotifHits is one motif's matches across all sequences, keyed by
// sequence ID. Sequences without matches are absent.
type MotifHits struct {
	Motif motif.Motif
	Hits  map[string][]scan.Match
}

type prepMotif struct {
	fwd, rev       motif.Matrix
	fwdRem, revRem []float64 // rem[i] = best achievable from positions >= i
	thr            float64
}

// Runner executes fast scans over one input.
type Runner struct {
	cfg  Config
	log  *zap.Logger
	prep []prepMotif
}

// New resolves per-motif thresholds and pruning bounds.
func New(cfg Config) (*Runner, error) {
	if len(cfg.Motifs) == 0 {
		return nil, ErrNoMotifs
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	bg := cfg.Background
	if bg == nil {
		bg = background.Uniform(background.DefaultSize)
	}

	prep := make([]prepMotif, len(cfg.Motifs))
	for i, m := range cfg.Motifs {
		lo := m.LogOdds(bg.Freqs)
		p := prepMotif{fwd: lo, rev: lo.RevComp()}
		switch {
		case cfg.Cutoff != nil:
			p.thr = *cfg.Cutoff
		case cfg.PValue != nil:
			p.thr = motif.NewDistribution(lo, bg.Freqs).ThresholdAtP(*cfg.PValue)
		case cfg.FPR != nil:
			p.thr = motif.NewDistribution(lo, bg.Freqs).ThresholdAtFPR(*cfg.FPR, bg.Windows(m.Len()))
		default:
			return nil, ErrNoThreshold
		}
		p.fwdRem = suffixMax(p.fwd)
		p.revRem = suffixMax(p.rev)
		prep[i] = p
	}
	log.Debug("fast scanner prepared",
		zap.Int("motifs", len(cfg.Motifs)),
		zap.String("input", cfg.Input))
	return &Runner{cfg: cfg, log: log, prep: prep}, nil
}

// Counts streams one count row per input sequence, in input order. The
// input is read record by record and never held in memory at once. The
// error channel yields exactly one value after the row channel closes.
func (r *Runner) Counts(ctx context.Context) (<-chan SeqCounts, <-chan error) {
	out := make(chan SeqCounts, 64)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		err := fasta.StreamCtx(ctx, r.cfg.Input, func(rec fasta.Record) error {
			row := make([]int, len(r.prep))
			for i, p := range r.prep {
				row[i] = len(r.matchWindows(p, rec.Seq))
			}
			select {
			case out <- SeqCounts{ID: rec.ID, Counts: row}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		errc <- err
	}()
	return out, errc
}

// Matches yields matches motif by motif in load order. The error channel
// yields exactly one value after the hits channel closes.
func (r *Runner) Matches(ctx context.Context) (<-chan MotifHits, <-chan error) {
	out := make(chan MotifHits, 1)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		seqs, err := fasta.ReadFile(r.cfg.Input)
		if err != nil {
			errc <- err
			return
		}
		for i, p := range r.prep {
			hits := make(map[string][]scan.Match)
			for j := 0; j < seqs.Len(); j++ {
				rec := seqs.At(j)
				if ms := r.matchWindows(p, rec.Seq); len(ms) > 0 {
					hits[rec.ID] = ms
				}
			}
			select {
			case out <- MotifHits{Motif: r.cfg.Motifs[i], Hits: hits}:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		errc <- nil
	}()
	return out, errc
}

// matchWindows collects qualifying windows on both strands, ranked
// best-first and capped at NReport.
func (r *Runner) matchWindows(p prepMotif, seq []byte) []scan.Match {
	w := len(p.fwd)
	if w == 0 || len(seq) < w {
		return nil
	}
	var ms []scan.Match
	last := len(seq) - w
	for pos := 0; pos <= last; pos++ {
		if sc, ok := scoreBounded(p.fwd, p.fwdRem, seq, pos, p.thr); ok {
			ms = append(ms, scan.Match{Score: sc, Pos: pos, Strand: scan.Forward})
		}
		if r.cfg.ScanRC {
			if sc, ok := scoreBounded(p.rev, p.revRem, seq, pos, p.thr); ok {
				ms = append(ms, scan.Match{Score: sc, Pos: pos, Strand: scan.Reverse})
			}
		}
	}
	return scan.TopMatches(ms, r.cfg.NReport)
}

// scoreBounded scores one window, abandoning as soon as the threshold is
// out of reach.
func scoreBounded(x motif.Matrix, rem []float64, seq []byte, pos int, thr float64) (float64, bool) {
	var s float64
	for i := range x {
		if col := motif.BaseIndex[seq[pos+i]]; col >= 0 {
			s += x[i][col]
		} else {
			s += x.RowMin(i)
		}
		if s+rem[i+1] < thr {
			return 0, false
		}
	}
	return s, true
}

func suffixMax(x motif.Matrix) []float64 {
	rem := make([]float64, len(x)+1)
	for i := len(x) - 1; i >= 0; i-- {
		rem[i] = rem[i+1] + x.RowMax(i)
	}
	return rem
}
