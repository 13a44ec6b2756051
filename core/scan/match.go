// Package scan is the canonical motif scanner: exact log-odds scoring
// of every window on both strands, with thresholds calibrated against a
// background model.
package scan

import "sort"

// Strand marks which strand a match was found on.
type Strand int8

const (
	Forward Strand = 1
	Reverse Strand = -1
)

// Symbol returns the BED/GFF strand character.
func (s Strand) Symbol() string {
	if s == Reverse {
		return "-"
	}
	return "+"
}

// Match is one motif occurrence. Pos is the 0-based offset of the
// window's leftmost base on the forward strand, for either strand.
type Match struct {
	Score  float64
	Pos    int
	Strand Strand
}

// TopMatches orders matches best-first (score descending, then position
// ascending, forward strand before reverse) and truncates to cap when
// cap > 0. It sorts in place and returns the truncated slice.
func TopMatches(ms []Match, cap int) []Match {
	sort.SliceStable(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Pos != b.Pos {
			return a.Pos < b.Pos
		}
		return a.Strand > b.Strand
	})
	if cap > 0 && len(ms) > cap {
		ms = ms[:cap]
	}
	return ms
}
