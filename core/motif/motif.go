// Package motif models position frequency matrices and their log-odds
// scoring form. Matrices are stored position-major with fixed A, C, G, T
// columns.
package motif

import "math"

// Pseudo is the pseudocount mixed into each frequency before taking
// log-odds, so zero counts never produce -Inf weights.
const Pseudo = 1e-3

// BaseIndex maps a nucleotide byte to its matrix column, or -1 for
// anything that is not A, C, G or T. Lowercase (soft-masked) bases map
// to the same columns.
var BaseIndex [256]int8

func init() {
	for i := range BaseIndex {
		BaseIndex[i] = -1
	}
	for b, col := range map[byte]int8{'A': 0, 'C': 1, 'G': 2, 'T': 3} {
		BaseIndex[b] = col
		BaseIndex[b+'a'-'A'] = col
	}
}

// Motif is a named position frequency matrix. Freqs rows sum to one.
type Motif struct {
	ID    string
	Freqs [][4]float64
}

// Len returns the motif width in bases.
func (m Motif) Len() int { return len(m.Freqs) }

// LogOdds converts the motif to a log2-odds scoring matrix against the
// given background frequencies. Both motif and background frequencies
// receive the package pseudocount.
func (m Motif) LogOdds(bg [4]float64) Matrix {
	x := make(Matrix, len(m.Freqs))
	for i, row := range m.Freqs {
		for j, f := range row {
			x[i][j] = math.Log2((f + Pseudo) / (bg[j] + Pseudo))
		}
	}
	return x
}

// Matrix is a position-major scoring matrix with A, C, G, T columns.
type Matrix [][4]float64

// RevComp returns the matrix that scores the reverse complement of a
// window: positions reversed, A<->T and C<->G columns swapped.
func (x Matrix) RevComp() Matrix {
	rc := make(Matrix, len(x))
	for i, row := range x {
		rc[len(x)-1-i] = [4]float64{row[3], row[2], row[1], row[0]}
	}
	return rc
}

// MinScore returns the lowest score any window can take.
func (x Matrix) MinScore() float64 {
	var sum float64
	for i := range x {
		sum += x.RowMin(i)
	}
	return sum
}

// MaxScore returns the highest score any window can take.
func (x Matrix) MaxScore() float64 {
	var sum float64
	for i := range x {
		sum += x.RowMax(i)
	}
	return sum
}

// RowMin returns the smallest weight at position i.
func (x Matrix) RowMin(i int) float64 {
	m := x[i][0]
	for _, v := range x[i][1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// RowMax returns the largest weight at position i.
func (x Matrix) RowMax(i int) float64 {
	m := x[i][0]
	for _, v := range x[i][1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Score evaluates the window of the matrix's width starting at pos.
// Bases outside A/C/G/T contribute the position's minimum weight. The
// caller guarantees pos+len(x) <= len(seq).
func (x Matrix) Score(seq []byte, pos int) float64 {
	var s float64
	for i := range x {
		if col := BaseIndex[seq[pos+i]]; col >= 0 {
			s += x[i][col]
		} else {
			s += x.RowMin(i)
		}
	}
	return s
}
