package output

import (
	"testing"

	"github.com/cskokgibbs/gimmemotifs/core/motif"
)

func TestHeader(t *testing.T) {
	ms := []motif.Motif{{ID: "m1"}, {ID: "m2"}, {ID: "m3"}}
	if got, want := Header(ms), "\tm1\tm2\tm3"; got != want {
		t.Fatalf("Header = %q, want %q", got, want)
	}
	if got, want := Header(nil), "\t"; got != want {
		t.Fatalf("empty Header = %q, want %q", got, want)
	}
}

func TestCountRow(t *testing.T) {
	if got, want := CountRow("chr1:0-100", []int{0, 2, 13}), "chr1:0-100\t0\t2\t13"; got != want {
		t.Fatalf("CountRow = %q, want %q", got, want)
	}
}

func TestScoreRow(t *testing.T) {
	got := ScoreRow("s1", []float64{1, -0.5, 3.14159})
	want := "s1\t1.0000\t-0.5000\t3.1416"
	if got != want {
		t.Fatalf("ScoreRow = %q, want %q", got, want)
	}
}
