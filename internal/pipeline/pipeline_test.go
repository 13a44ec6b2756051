package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cskokgibbs/gimmemotifs/core/fasta"
	"github.com/cskokgibbs/gimmemotifs/core/fastscan"
	"github.com/cskokgibbs/gimmemotifs/core/motif"
	"github.com/cskokgibbs/gimmemotifs/core/scan"
)

var (
	mA = motif.Motif{ID: "mA", Freqs: [][4]float64{{1, 0, 0, 0}, {0, 1, 0, 0}}}
	mB = motif.Motif{ID: "mB", Freqs: [][4]float64{{0, 0, 1, 0}, {0, 0, 0, 1}}}
)

type fakeEngine struct {
	counts [][]int
	scores [][]float64
	hits   [][][]scan.Match

	unconstrained bool
	gotNReport    int
	gotScanRC     bool
	gotZScore     bool
	err           error
}

func (f *fakeEngine) Count(_ context.Context, _ *fasta.Sequences, nreport int, scanRC bool,
	emit func(int, []int) error) error {
	f.gotNReport, f.gotScanRC = nreport, scanRC
	if f.err != nil {
		return f.err
	}
	for i, row := range f.counts {
		if err := emit(i, row); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeEngine) BestScore(_ context.Context, _ *fasta.Sequences, scanRC, zscore, _ bool,
	emit func(int, []float64) error) error {
	f.gotScanRC, f.gotZScore = scanRC, zscore
	for i, row := range f.scores {
		if err := emit(i, row); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeEngine) Scan(_ context.Context, _ *fasta.Sequences, nreport int, scanRC, zscore, _ bool,
	emit func(int, [][]scan.Match) error) error {
	f.gotNReport, f.gotScanRC, f.gotZScore = nreport, scanRC, zscore
	for i, hits := range f.hits {
		if err := emit(i, hits); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeEngine) SetThresholdUnconstrained() { f.unconstrained = true }

type fakeAlt struct {
	rows []fastscan.SeqCounts
	hits []fastscan.MotifHits
	err  error
}

func (f *fakeAlt) Counts(context.Context) (<-chan fastscan.SeqCounts, <-chan error) {
	out := make(chan fastscan.SeqCounts, len(f.rows)+1)
	errc := make(chan error, 1)
	for _, r := range f.rows {
		out <- r
	}
	close(out)
	errc <- f.err
	return out, errc
}

func (f *fakeAlt) Matches(context.Context) (<-chan fastscan.MotifHits, <-chan error) {
	out := make(chan fastscan.MotifHits, len(f.hits)+1)
	errc := make(chan error, 1)
	for _, h := range f.hits {
		out <- h
	}
	close(out)
	errc <- f.err
	return out, errc
}

func twoSeqs(t *testing.T) *fasta.Sequences {
	t.Helper()
	s, err := fasta.ReadAll(strings.NewReader(">s1\nACGTAC\n>s2\nGTGTGT\n"), "t.fa")
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func collect(t *testing.T, d Deps, o Options) []string {
	t.Helper()
	var lines []string
	err := ForEachLine(context.Background(), d, o, func(line string) error {
		lines = append(lines, line)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachLine: %v", err)
	}
	return lines
}

func TestCountTable(t *testing.T) {
	eng := &fakeEngine{counts: [][]int{{1, 0}, {2, 3}}}
	d := Deps{Engine: eng, Seqs: twoSeqs(t), Motifs: []motif.Motif{mA, mB}}
	lines := collect(t, d, Options{Table: true, NReport: 7, ScanRC: true})

	want := []string{"\tmA\tmB", "s1\t1\t0", "s2\t2\t3"}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("lines:\n%s\nwant:\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}
	if eng.gotNReport != 7 || !eng.gotScanRC {
		t.Errorf("options not forwarded: nreport=%d scanRC=%v", eng.gotNReport, eng.gotScanRC)
	}
}

func TestScoreTableUnconstrained(t *testing.T) {
	eng := &fakeEngine{scores: [][]float64{{1.5, -0.25}, {0, 2}}}
	d := Deps{Engine: eng, Seqs: twoSeqs(t), Motifs: []motif.Motif{mA, mB}}
	lines := collect(t, d, Options{ScoreTable: true, ZScore: true})

	if !eng.unconstrained {
		t.Error("score table must lift the threshold")
	}
	if !eng.gotZScore {
		t.Error("zscore not forwarded")
	}
	want := []string{"\tmA\tmB", "s1\t1.5000\t-0.2500", "s2\t0.0000\t2.0000"}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTableWinsOverScoreTable(t *testing.T) {
	eng := &fakeEngine{counts: [][]int{{0, 0}, {0, 0}}}
	d := Deps{Engine: eng, Seqs: twoSeqs(t), Motifs: []motif.Motif{mA, mB}}
	collect(t, d, Options{Table: true, ScoreTable: true})
	if eng.unconstrained {
		t.Error("count table must not touch the threshold policy")
	}
}

func TestPositionalCanonicalOrder(t *testing.T) {
	eng := &fakeEngine{hits: [][][]scan.Match{
		{ // s1: one mA match, two mB matches
			{{Score: 5, Pos: 0, Strand: scan.Forward}},
			{{Score: 4, Pos: 2, Strand: scan.Reverse}, {Score: 3, Pos: 4, Strand: scan.Forward}},
		},
		{ // s2: nothing for mA, one for mB
			nil,
			{{Score: 2, Pos: 1, Strand: scan.Forward}},
		},
	}}
	d := Deps{Engine: eng, Seqs: twoSeqs(t), Motifs: []motif.Motif{mA, mB}}
	lines := collect(t, d, Options{BED: true})

	want := []string{
		"s1\t0\t2\tmA\t5\t+",
		"s1\t2\t4\tmB\t4\t-",
		"s1\t4\t6\tmB\t3\t+",
		"s2\t1\t3\tmB\t2\t+",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("lines:\n%s\nwant:\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}
}

func TestPositionalGFFUsesSequence(t *testing.T) {
	eng := &fakeEngine{hits: [][][]scan.Match{
		{{{Score: 1, Pos: 1, Strand: scan.Forward}}, nil},
		{nil, nil},
	}}
	d := Deps{Engine: eng, Seqs: twoSeqs(t), Motifs: []motif.Motif{mA, mB}}
	lines := collect(t, d, Options{})
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	// s1 is ACGTAC, so the window at 1 with width 2 is CG.
	if !strings.Contains(lines[0], `motif_instance "CG"`) {
		t.Errorf("GFF instance not sliced from sequence: %q", lines[0])
	}
}

func TestAltCountTable(t *testing.T) {
	alt := &fakeAlt{rows: []fastscan.SeqCounts{
		{ID: "s1", Counts: []int{1, 2}},
		{ID: "s2", Counts: []int{0, 0}},
	}}
	d := Deps{Engine: &fakeEngine{}, Alt: alt, Seqs: twoSeqs(t), Motifs: []motif.Motif{mA, mB}}
	lines := collect(t, d, Options{Table: true})
	want := []string{"\tmA\tmB", "s1\t1\t2", "s2\t0\t0"}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("lines = %v, want %v", lines, want)
	}
}

func TestAltPositionalPivot(t *testing.T) {
	// The fast backend reports motif-major; output must still be
	// sequence-major in input order.
	alt := &fakeAlt{hits: []fastscan.MotifHits{
		{Motif: mA, Hits: map[string][]scan.Match{
			"s2": {{Score: 9, Pos: 0, Strand: scan.Forward}},
			"s1": {{Score: 8, Pos: 2, Strand: scan.Forward}},
		}},
		{Motif: mB, Hits: map[string][]scan.Match{
			"s1": {{Score: 7, Pos: 4, Strand: scan.Reverse}},
		}},
	}}
	d := Deps{Engine: &fakeEngine{}, Alt: alt, Seqs: twoSeqs(t), Motifs: []motif.Motif{mA, mB}}
	lines := collect(t, d, Options{BED: true})
	want := []string{
		"s1\t2\t4\tmA\t8\t+",
		"s1\t4\t6\tmB\t7\t-",
		"s2\t0\t2\tmA\t9\t+",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("lines:\n%s\nwant:\n%s", strings.Join(lines, "\n"), strings.Join(want, "\n"))
	}
}

func TestAltErrorPropagatesUnchanged(t *testing.T) {
	sentinel := errors.New("backend exploded")
	alt := &fakeAlt{err: sentinel}
	d := Deps{Engine: &fakeEngine{}, Alt: alt, Seqs: twoSeqs(t), Motifs: []motif.Motif{mA, mB}}
	err := ForEachLine(context.Background(), d, Options{Table: true}, func(string) error { return nil })
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want the sentinel unchanged", err)
	}
}

func TestEmitErrorStops(t *testing.T) {
	eng := &fakeEngine{counts: [][]int{{1}, {2}}}
	d := Deps{Engine: eng, Seqs: twoSeqs(t), Motifs: []motif.Motif{mA}}
	stop := errors.New("stop")
	n := 0
	err := ForEachLine(context.Background(), d, Options{Table: true}, func(string) error {
		n++
		if n == 2 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("err = %v, want stop", err)
	}
	if n != 2 {
		t.Fatalf("emit called %d times, want 2", n)
	}
}
