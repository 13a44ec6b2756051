package output

import (
	"strings"
	"testing"

	"github.com/cskokgibbs/gimmemotifs/core/motif"
	"github.com/cskokgibbs/gimmemotifs/core/scan"
)

var m1 = motif.Motif{ID: "m1", Freqs: [][4]float64{
	{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1},
}}

func TestBEDLineWithLocus(t *testing.T) {
	got := BEDLine("chr1:100-200", m1, scan.Match{Score: 7.5, Pos: 10, Strand: scan.Forward})
	want := "chr1\t110\t114\tm1\t7.5\t+"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
	if n := len(strings.Split(got, "\t")); n != 6 {
		t.Fatalf("BED line has %d fields, want 6", n)
	}
}

func TestBEDLinePlainID(t *testing.T) {
	got := BEDLine("peak_1", m1, scan.Match{Score: -3.25, Pos: 3, Strand: scan.Reverse})
	want := "peak_1\t3\t7\tm1\t-3.25\t-"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestGFFLine(t *testing.T) {
	seq := []byte("AAAACGTAAA")
	got := GFFLine(seq, "peak_1", m1, scan.Match{Score: 7.5, Pos: 3, Strand: scan.Reverse})
	want := "peak_1\tpfmscan\tmisc_feature\t4\t7\t7.5\t-\t.\t" +
		`motif_name "m1" ; motif_instance "ACGT"`
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
	if n := len(strings.Split(got, "\t")); n != 9 {
		t.Fatalf("GFF line has %d fields, want 9", n)
	}
}

func TestGFFLineKeepsLocusIDVerbatim(t *testing.T) {
	// GFF never translates coordinates; the identifier is the seqid.
	seq := []byte("TTACGTTT")
	got := GFFLine(seq, "chr1:100-200", m1, scan.Match{Score: 1.5, Pos: 2, Strand: scan.Forward})
	if !strings.HasPrefix(got, "chr1:100-200\t") {
		t.Fatalf("seqid not kept verbatim: %q", got)
	}
	if !strings.Contains(got, "\t3\t6\t") {
		t.Fatalf("coordinates must stay sequence-local: %q", got)
	}
}

func TestGFFLineTruncatedInstance(t *testing.T) {
	// A window running past the sequence keeps its nominal end but the
	// instance attribute shortens.
	seq := []byte("ACGT")
	got := GFFLine(seq, "s", m1, scan.Match{Score: 2, Pos: 2, Strand: scan.Forward})
	fields := strings.Split(got, "\t")
	if fields[4] != "6" {
		t.Errorf("end field = %s, want nominal 6", fields[4])
	}
	if !strings.Contains(got, `motif_instance "GT"`) {
		t.Errorf("instance not truncated: %q", got)
	}
}

func TestLineSelectsFormat(t *testing.T) {
	match := scan.Match{Score: 1, Pos: 0, Strand: scan.Forward}
	if got := Line(true, []byte("ACGT"), "s", m1, match); len(strings.Split(got, "\t")) != 6 {
		t.Errorf("bed=true did not produce BED: %q", got)
	}
	if got := Line(false, []byte("ACGT"), "s", m1, match); len(strings.Split(got, "\t")) != 9 {
		t.Errorf("bed=false did not produce GFF: %q", got)
	}
}

func TestScoreText(t *testing.T) {
	cases := map[float64]string{
		7.5:   "7.5",
		-3.25: "-3.25",
		5:     "5",
		0:     "0",
	}
	for in, want := range cases {
		if got := scoreText(in); got != want {
			t.Errorf("scoreText(%v) = %q, want %q", in, got, want)
		}
	}
}
