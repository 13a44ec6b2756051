// core/scan/scanner.go
package scan

import (
	"context"
	"errors"
	"io"
	"math"
	"os"
	"runtime"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/cskokgibbs/gimmemotifs/core/background"
	"github.com/cskokgibbs/gimmemotifs/core/fasta"
	"github.com/cskokgibbs/gimmemotifs/core/motif"
)

// MaxCPUs caps the worker pool; beyond this the scan is I/O bound.
const MaxCPUs = 16

// DefaultFPR is the false positive rate used when neither a cutoff nor
// an explicit FPR is configured.
const DefaultFPR = 0.01

var (
	ErrNoMotifs    = errors.New("no motifs configured")
	ErrNoThreshold = errors.New("no threshold configured: call SetThreshold first")
)

// Config carries scanner-wide settings.
type Config struct {
	NCPUs    int         // worker goroutines; <=0 means all CPUs, capped at MaxCPUs
	Logger   *zap.Logger // nil disables logging
	Progress io.Writer   // nil disables the progress bar
}

// Scanner scores motifs over sequences. Configure it with SetMotifs and
// friends, then run one of the result operations. Scanners are not safe
// for concurrent configuration.
type Scanner struct {
	log      *zap.Logger
	workers  int
	progress io.Writer

	motifs []motif.Motif
	bg     *background.Background
	genome string

	cutoff        *float64
	fpr           *float64
	unconstrained bool

	prep  []prepared
	thr   []float64
	dirty bool
}

type prepared struct {
	fwd, rev motif.Matrix
	dist     *motif.Distribution
}

// New returns a scanner with the worker count resolved and capped.
func New(cfg Config) *Scanner {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	workers := cfg.NCPUs
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > MaxCPUs {
		workers = MaxCPUs
	}
	return &Scanner{log: log, workers: workers, progress: cfg.Progress, dirty: true}
}

// SetMotifs installs the motifs to scan for.
func (s *Scanner) SetMotifs(ms []motif.Motif) error {
	if len(ms) == 0 {
		return ErrNoMotifs
	}
	s.motifs = ms
	s.dirty = true
	return nil
}

// Motifs returns the configured motifs in load order.
func (s *Scanner) Motifs() []motif.Motif { return s.motifs }

// SetGenome records the genome FASTA used to resolve regions and derive
// backgrounds. The path must exist.
func (s *Scanner) SetGenome(path string) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	s.genome = path
	return nil
}

// Genome returns the configured genome path, or "".
func (s *Scanner) Genome() string { return s.genome }

// Workers returns the resolved worker count.
func (s *Scanner) Workers() int { return s.workers }

// SetBackground installs the background model used for log-odds weights
// and threshold calibration.
func (s *Scanner) SetBackground(bg *background.Background) {
	s.bg = bg
	s.dirty = true
}

// SetThreshold configures the match threshold policy. An absolute cutoff
// wins over an FPR; at least one must be given.
func (s *Scanner) SetThreshold(cutoff, fpr *float64) error {
	if cutoff == nil && fpr == nil {
		return ErrNoThreshold
	}
	s.cutoff, s.fpr = cutoff, fpr
	s.unconstrained = false
	s.dirty = true
	return nil
}

// SetThresholdUnconstrained disables thresholding, so every window
// qualifies and only ranking and caps limit what is reported.
func (s *Scanner) SetThresholdUnconstrained() {
	s.cutoff, s.fpr = nil, nil
	s.unconstrained = true
	s.dirty = true
}

func (s *Scanner) prepare() error {
	if !s.dirty && s.prep != nil {
		return nil
	}
	if len(s.motifs) == 0 {
		return ErrNoMotifs
	}
	bg := s.bg
	if bg == nil {
		bg = background.Uniform(background.DefaultSize)
	}

	prep := make([]prepared, len(s.motifs))
	for i, m := range s.motifs {
		lo := m.LogOdds(bg.Freqs)
		prep[i] = prepared{fwd: lo, rev: lo.RevComp(), dist: motif.NewDistribution(lo, bg.Freqs)}
	}

	var thr []float64
	switch {
	case s.unconstrained:
		thr = make([]float64, len(s.motifs))
		for i := range thr {
			thr[i] = math.Inf(-1)
		}
	case s.cutoff != nil:
		thr = make([]float64, len(s.motifs))
		for i := range thr {
			thr[i] = *s.cutoff
		}
	case s.fpr != nil:
		thr = make([]float64, len(s.motifs))
		for i, m := range s.motifs {
			thr[i] = prep[i].dist.ThresholdAtFPR(*s.fpr, bg.Windows(m.Len()))
		}
	}

	s.prep, s.thr, s.dirty = prep, thr, false
	s.log.Debug("scanner prepared",
		zap.Int("motifs", len(s.motifs)),
		zap.Float64("background_gc", bg.GC()),
		zap.Int("background_size", bg.Size),
		zap.Bool("thresholded", thr != nil && !s.unconstrained))
	return nil
}

// Count reports, per sequence, how many matches each motif has. Rows are
// emitted in input order; columns follow motif load order.
func (s *Scanner) Count(
	ctx context.Context,
	seqs *fasta.Sequences,
	nreport int,
	scanRC bool,
	emit func(idx int, counts []int) error,
) error {
	if err := s.prepare(); err != nil {
		return err
	}
	if s.thr == nil {
		return ErrNoThreshold
	}
	bar := s.newBar(seqs.Len())
	defer finishBar(bar)
	s.log.Debug("counting matches",
		zap.Int("sequences", seqs.Len()), zap.Int("workers", s.workers))
	return runOrdered(ctx, s.workers, seqs,
		func(rec fasta.Record) ([]int, error) {
			row := make([]int, len(s.prep))
			for i, p := range s.prep {
				row[i] = len(scanWindows(p, rec.Seq, s.thr[i], nreport, scanRC))
			}
			return row, nil
		},
		func(idx int, row []int) error {
			barAdd(bar)
			return emit(idx, row)
		})
}

// BestScore reports, per sequence, each motif's best window score. With
// zscore the score is normalized by the motif's background moments; with
// gcnorm the moments come from the sequence's own GC content instead of
// the configured background.
func (s *Scanner) BestScore(
	ctx context.Context,
	seqs *fasta.Sequences,
	scanRC, zscore, gcnorm bool,
	emit func(idx int, scores []float64) error,
) error {
	if err := s.prepare(); err != nil {
		return err
	}
	bar := s.newBar(seqs.Len())
	defer finishBar(bar)
	s.log.Debug("scoring best matches",
		zap.Int("sequences", seqs.Len()), zap.Int("workers", s.workers))
	return runOrdered(ctx, s.workers, seqs,
		func(rec fasta.Record) ([]float64, error) {
			row := make([]float64, len(s.prep))
			for i, p := range s.prep {
				v := bestWindow(p, rec.Seq, scanRC)
				if zscore {
					mu, sd := s.momentsFor(i, rec.Seq, gcnorm)
					v = (v - mu) / sd
				}
				row[i] = v
			}
			return row, nil
		},
		func(idx int, row []float64) error {
			barAdd(bar)
			return emit(idx, row)
		})
}

// Scan reports every match above threshold. hits is indexed by motif;
// each motif's matches are ranked best-first and capped at nreport.
// Sequences are emitted in input order.
func (s *Scanner) Scan(
	ctx context.Context,
	seqs *fasta.Sequences,
	nreport int,
	scanRC, zscore, gcnorm bool,
	emit func(idx int, hits [][]Match) error,
) error {
	if err := s.prepare(); err != nil {
		return err
	}
	if s.thr == nil {
		return ErrNoThreshold
	}
	bar := s.newBar(seqs.Len())
	defer finishBar(bar)
	s.log.Debug("scanning for matches",
		zap.Int("sequences", seqs.Len()), zap.Int("workers", s.workers))
	return runOrdered(ctx, s.workers, seqs,
		func(rec fasta.Record) ([][]Match, error) {
			hits := make([][]Match, len(s.prep))
			for i, p := range s.prep {
				ms := scanWindows(p, rec.Seq, s.thr[i], nreport, scanRC)
				if zscore && len(ms) > 0 {
					mu, sd := s.momentsFor(i, rec.Seq, gcnorm)
					for k := range ms {
						ms[k].Score = (ms[k].Score - mu) / sd
					}
				}
				hits[i] = ms
			}
			return hits, nil
		},
		func(idx int, hits [][]Match) error {
			barAdd(bar)
			return emit(idx, hits)
		})
}

// momentsFor returns the normalization moments for motif i. The z-score
// transform runs after threshold filtering, which compares raw scores.
func (s *Scanner) momentsFor(i int, seq []byte, gcnorm bool) (float64, float64) {
	if !gcnorm {
		return s.prep[i].dist.Mean(), s.prep[i].dist.Std()
	}
	gcbg := background.FromGC(background.GCContent(seq), 0)
	return motif.Moments(s.prep[i].fwd, gcbg.Freqs)
}

// scanWindows scores every window of seq against one prepared motif and
// returns the qualifying matches ranked best-first.
func scanWindows(p prepared, seq []byte, thr float64, nreport int, scanRC bool) []Match {
	w := len(p.fwd)
	if w == 0 || len(seq) < w {
		return nil
	}
	var ms []Match
	last := len(seq) - w
	for pos := 0; pos <= last; pos++ {
		if sc := p.fwd.Score(seq, pos); sc >= thr {
			ms = append(ms, Match{Score: sc, Pos: pos, Strand: Forward})
		}
		if scanRC {
			if sc := p.rev.Score(seq, pos); sc >= thr {
				ms = append(ms, Match{Score: sc, Pos: pos, Strand: Reverse})
			}
		}
	}
	return TopMatches(ms, nreport)
}

// bestWindow returns the best score over all windows and strands. A
// sequence shorter than the motif reports the minimum possible score.
func bestWindow(p prepared, seq []byte, scanRC bool) float64 {
	w := len(p.fwd)
	if w == 0 || len(seq) < w {
		return p.fwd.MinScore()
	}
	best := math.Inf(-1)
	last := len(seq) - w
	for pos := 0; pos <= last; pos++ {
		if sc := p.fwd.Score(seq, pos); sc > best {
			best = sc
		}
		if scanRC {
			if sc := p.rev.Score(seq, pos); sc > best {
				best = sc
			}
		}
	}
	return best
}

func (s *Scanner) newBar(n int) *progressbar.ProgressBar {
	if s.progress == nil || n == 0 {
		return nil
	}
	return progressbar.NewOptions(n,
		progressbar.OptionSetWriter(s.progress),
		progressbar.OptionSetDescription("scanning"),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func barAdd(b *progressbar.ProgressBar) {
	if b != nil {
		_ = b.Add(1)
	}
}

func finishBar(b *progressbar.ProgressBar) {
	if b != nil {
		_ = b.Finish()
	}
}
