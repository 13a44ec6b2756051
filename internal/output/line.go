// Package output renders match results as text: BED or GFF lines for
// positional output, TSV rows for the table modes. Formats here are the
// single source of truth; writers must not re-derive them.
package output

import (
	"fmt"
	"strconv"

	"github.com/cskokgibbs/gimmemotifs/core/genomic"
	"github.com/cskokgibbs/gimmemotifs/core/motif"
	"github.com/cskokgibbs/gimmemotifs/core/scan"
)

// Fixed GFF source and feature columns.
const (
	SourceTag  = "pfmscan"
	FeatureTag = "misc_feature"
)

// Line renders one match, BED when bed is set, GFF otherwise. seq is
// only consulted for the GFF motif_instance attribute.
func Line(bed bool, seq []byte, seqID string, m motif.Motif, match scan.Match) string {
	if bed {
		return BEDLine(seqID, m, match)
	}
	return GFFLine(seq, seqID, m, match)
}

// BEDLine renders the 6-column BED form. Identifiers carrying a
// "chrom:start-end" locus are translated to genomic coordinates; other
// identifiers keep sequence-local coordinates.
func BEDLine(seqID string, m motif.Motif, match scan.Match) string {
	if loc, ok := genomic.ParseLocus(seqID); ok {
		start, end := loc.Interval(match.Pos, m.Len())
		return fmt.Sprintf("%s\t%d\t%d\t%s\t%s\t%s",
			loc.Chrom, start, end, m.ID, scoreText(match.Score), match.Strand.Symbol())
	}
	return fmt.Sprintf("%s\t%d\t%d\t%s\t%s\t%s",
		seqID, match.Pos, match.Pos+m.Len(), m.ID, scoreText(match.Score), match.Strand.Symbol())
}

// GFFLine renders the 9-column GFF form with 1-based start. The end
// column is always pos+len(motif); when that runs past the sequence the
// motif_instance attribute is simply shorter.
func GFFLine(seq []byte, seqID string, m motif.Motif, match scan.Match) string {
	end := match.Pos + m.Len()
	sliceEnd := end
	if sliceEnd > len(seq) {
		sliceEnd = len(seq)
	}
	instance := ""
	if match.Pos < sliceEnd {
		instance = string(seq[match.Pos:sliceEnd])
	}
	return fmt.Sprintf("%s\t%s\t%s\t%d\t%d\t%s\t%s\t.\tmotif_name \"%s\" ; motif_instance \"%s\"",
		seqID, SourceTag, FeatureTag, match.Pos+1, end,
		scoreText(match.Score), match.Strand.Symbol(), m.ID, instance)
}

// scoreText renders a score in its shortest exact decimal form.
func scoreText(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
