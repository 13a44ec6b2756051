// Package background models 0-order nucleotide backgrounds used for
// log-odds scoring and threshold calibration.
package background

import (
	"context"

	"github.com/cskokgibbs/gimmemotifs/core/fasta"
	"github.com/cskokgibbs/gimmemotifs/core/motif"
)

// DefaultSize is the model length assumed when nothing better is known,
// matching the usual width of scanned regions.
const DefaultSize = 200

// floor keeps every base frequency positive so log-odds stay finite
// even for backgrounds missing a base entirely.
const floor = 1e-6

// Background is a 0-order nucleotide model. Size is the sequence length
// the model represents, used to count scoring windows when spreading a
// false positive rate.
type Background struct {
	Freqs [4]float64 // A C G T
	Size  int
}

// Uniform returns the flat background.
func Uniform(size int) *Background {
	return &Background{Freqs: [4]float64{0.25, 0.25, 0.25, 0.25}, Size: size}
}

// FromGC builds a background from a GC fraction, splitting each pair of
// complementary bases evenly.
func FromGC(gc float64, size int) *Background {
	if gc < 0 {
		gc = 0
	}
	if gc > 1 {
		gc = 1
	}
	at := (1 - gc) / 2
	cg := gc / 2
	return normalize([4]float64{at, cg, cg, at}, size)
}

// FromSequences tallies base frequencies over an in-memory collection.
func FromSequences(seqs *fasta.Sequences, size int) *Background {
	var counts [4]float64
	for i := 0; i < seqs.Len(); i++ {
		tally(&counts, seqs.At(i).Seq)
	}
	return normalize(counts, size)
}

// FromFile tallies base frequencies over a background FASTA file.
func FromFile(path string, size int) (*Background, error) {
	return fromPath(path, size)
}

// FromGenome tallies base frequencies over a genome FASTA. The genome is
// streamed record by record, so it is never held in memory at once.
func FromGenome(path string, size int) (*Background, error) {
	return fromPath(path, size)
}

func fromPath(path string, size int) (*Background, error) {
	var counts [4]float64
	err := fasta.StreamCtx(context.Background(), path, func(rec fasta.Record) error {
		tally(&counts, rec.Seq)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return normalize(counts, size), nil
}

// GC returns the model's combined C+G frequency.
func (b *Background) GC() float64 {
	return b.Freqs[1] + b.Freqs[2]
}

// Windows returns the number of scoring windows a motif of width w has
// in a sequence of the model's size, never less than one.
func (b *Background) Windows(w int) int {
	n := b.Size - w + 1
	if n < 1 {
		return 1
	}
	return n
}

// GCContent returns the C+G fraction of a single sequence, counting only
// unambiguous bases. Sequences without any count as half GC.
func GCContent(seq []byte) float64 {
	var acgt, cg float64
	for _, c := range seq {
		switch motif.BaseIndex[c] {
		case 1, 2:
			cg++
			acgt++
		case 0, 3:
			acgt++
		}
	}
	if acgt == 0 {
		return 0.5
	}
	return cg / acgt
}

func tally(counts *[4]float64, seq []byte) {
	for _, c := range seq {
		if i := motif.BaseIndex[c]; i >= 0 {
			counts[i]++
		}
	}
}

func normalize(counts [4]float64, size int) *Background {
	var total float64
	for i := range counts {
		if counts[i] < floor {
			counts[i] = floor
		}
		total += counts[i]
	}
	for i := range counts {
		counts[i] /= total
	}
	return &Background{Freqs: counts, Size: size}
}
