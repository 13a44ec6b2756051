// internal/pipeline/pipeline.go
package pipeline

import (
	"context"

	"github.com/cskokgibbs/gimmemotifs/core/fasta"
	"github.com/cskokgibbs/gimmemotifs/core/fastscan"
	"github.com/cskokgibbs/gimmemotifs/core/motif"
	"github.com/cskokgibbs/gimmemotifs/core/scan"
	"github.com/cskokgibbs/gimmemotifs/internal/output"
)

// Engine is the canonical scanner surface the dispatcher pulls from.
type Engine interface {
	Count(ctx context.Context, seqs *fasta.Sequences, nreport int, scanRC bool,
		emit func(idx int, counts []int) error) error
	BestScore(ctx context.Context, seqs *fasta.Sequences, scanRC, zscore, gcnorm bool,
		emit func(idx int, scores []float64) error) error
	Scan(ctx context.Context, seqs *fasta.Sequences, nreport int, scanRC, zscore, gcnorm bool,
		emit func(idx int, hits [][]scan.Match) error) error
	SetThresholdUnconstrained()
}

// AltEngine is the fast backend's streaming surface.
type AltEngine interface {
	Counts(ctx context.Context) (<-chan fastscan.SeqCounts, <-chan error)
	Matches(ctx context.Context) (<-chan fastscan.MotifHits, <-chan error)
}

// Options select the result mode and its knobs. Table wins over
// ScoreTable; with neither set, positional lines are produced.
type Options struct {
	Table      bool
	ScoreTable bool
	BED        bool
	NReport    int
	ScanRC     bool
	ZScore     bool
	GCNorm     bool
}

// Deps wires the dispatcher to its inputs. Seqs and Motifs are always
// required. Alt, when non-nil, serves the count-table and positional
// modes; the score table always runs on Engine.
type Deps struct {
	Engine Engine
	Alt    AltEngine
	Seqs   *fasta.Sequences
	Motifs []motif.Motif
}

// ForEachLine renders the selected result mode line by line, in input
// sequence order. Backend errors propagate unchanged.
func ForEachLine(ctx context.Context, d Deps, o Options, emit func(line string) error) error {
	switch {
	case o.Table:
		return countTable(ctx, d, o, emit)
	case o.ScoreTable:
		return scoreTable(ctx, d, o, emit)
	default:
		return positional(ctx, d, o, emit)
	}
}

func countTable(ctx context.Context, d Deps, o Options, emit func(string) error) error {
	if err := emit(output.Header(d.Motifs)); err != nil {
		return err
	}
	if d.Alt != nil {
		rows, errc := d.Alt.Counts(ctx)
		return drain(rows, errc, func(row fastscan.SeqCounts) error {
			return emit(output.CountRow(row.ID, row.Counts))
		})
	}
	return d.Engine.Count(ctx, d.Seqs, o.NReport, o.ScanRC,
		func(idx int, counts []int) error {
			return emit(output.CountRow(d.Seqs.At(idx).ID, counts))
		})
}

func scoreTable(ctx context.Context, d Deps, o Options, emit func(string) error) error {
	// A score table reports every best score, however weak.
	d.Engine.SetThresholdUnconstrained()
	if err := emit(output.Header(d.Motifs)); err != nil {
		return err
	}
	return d.Engine.BestScore(ctx, d.Seqs, o.ScanRC, o.ZScore, o.GCNorm,
		func(idx int, scores []float64) error {
			return emit(output.ScoreRow(d.Seqs.At(idx).ID, scores))
		})
}

func positional(ctx context.Context, d Deps, o Options, emit func(string) error) error {
	if d.Alt != nil {
		hits, errc := d.Alt.Matches(ctx)
		var perMotif []fastscan.MotifHits
		err := drain(hits, errc, func(mh fastscan.MotifHits) error {
			perMotif = append(perMotif, mh)
			return nil
		})
		if err != nil {
			return err
		}
		// Pivot the motif-major result to the canonical order: sequence
		// by input order, then motif by load order, then match rank.
		for i := 0; i < d.Seqs.Len(); i++ {
			rec := d.Seqs.At(i)
			for _, mh := range perMotif {
				for _, match := range mh.Hits[rec.ID] {
					if err := emit(output.Line(o.BED, rec.Seq, rec.ID, mh.Motif, match)); err != nil {
						return err
					}
				}
			}
		}
		return nil
	}
	return d.Engine.Scan(ctx, d.Seqs, o.NReport, o.ScanRC, o.ZScore, o.GCNorm,
		func(idx int, hits [][]scan.Match) error {
			rec := d.Seqs.At(idx)
			for mi, ms := range hits {
				for _, match := range ms {
					if err := emit(output.Line(o.BED, rec.Seq, rec.ID, d.Motifs[mi], match)); err != nil {
						return err
					}
				}
			}
			return nil
		})
}

// drain consumes a backend stream to the end even after a consumer
// error, so producers never block, then reports the first error.
func drain[T any](ch <-chan T, errc <-chan error, each func(T) error) error {
	var cerr error
	for v := range ch {
		if cerr != nil {
			continue
		}
		cerr = each(v)
	}
	werr := <-errc
	if cerr != nil {
		return cerr
	}
	return werr
}
