package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cskokgibbs/gimmemotifs/core/motif"
)

// Header is the table header row: an empty corner cell, then one column
// per motif in load order.
func Header(motifs []motif.Motif) string {
	ids := make([]string, len(motifs))
	for i, m := range motifs {
		ids[i] = m.ID
	}
	return "\t" + strings.Join(ids, "\t")
}

// CountRow renders one count-table row.
func CountRow(seqID string, counts []int) string {
	var sb strings.Builder
	sb.WriteString(seqID)
	for _, c := range counts {
		sb.WriteByte('\t')
		sb.WriteString(strconv.Itoa(c))
	}
	return sb.String()
}

// ScoreRow renders one score-table row with fixed 4-decimal scores.
func ScoreRow(seqID string, scores []float64) string {
	var sb strings.Builder
	sb.WriteString(seqID)
	for _, s := range scores {
		fmt.Fprintf(&sb, "\t%.4f", s)
	}
	return sb.String()
}
