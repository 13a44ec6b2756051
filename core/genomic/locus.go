// Package genomic maps sequence identifiers that carry an embedded genomic
// interval, such as "chr1:100-200", back to genome coordinates.
package genomic

import (
	"fmt"
	"regexp"
	"strconv"
)

// locusRe recognizes "<chrom>:<start>-<end>" anywhere in an identifier.
// The chrom token may not contain whitespace or ':'.
var locusRe = regexp.MustCompile(`([^\s:]+):(\d+)-(\d+)`)

// Locus is a genomic interval extracted from a sequence identifier.
// Start/End carry the identifier's coordinates verbatim.
type Locus struct {
	Chrom string
	Start int
	End   int
}

// ParseLocus extracts a Locus from a sequence identifier. The second return
// value reports whether the identifier encodes one; callers fall back to
// sequence-local coordinates when it does not.
func ParseLocus(id string) (Locus, bool) {
	m := locusRe.FindStringSubmatch(id)
	if m == nil {
		return Locus{}, false
	}
	start, err := strconv.Atoi(m[2])
	if err != nil {
		return Locus{}, false
	}
	end, err := strconv.Atoi(m[3])
	if err != nil {
		return Locus{}, false
	}
	return Locus{Chrom: m[1], Start: start, End: end}, true
}

// Interval translates a sequence-local offset and span length into genomic
// coordinates relative to the locus start.
func (l Locus) Interval(pos, length int) (start, end int) {
	return l.Start + pos, l.Start + pos + length
}

// String renders the locus in the same "<chrom>:<start>-<end>" form it was
// parsed from.
func (l Locus) String() string {
	return fmt.Sprintf("%s:%d-%d", l.Chrom, l.Start, l.End)
}
