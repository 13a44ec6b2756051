// core/fasta/regions.go
package fasta

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cskokgibbs/gimmemotifs/core/genomic"
)

// AsFasta turns any supported input into sequences. FASTA input is
// loaded directly. Anything else is treated as a region list, either
// BED (chrom, start, end in the first three columns) or one
// "chrom:start-end" per line, and resolved against the genome FASTA.
// Extracted records are named "chrom:start-end" so downstream output
// can recover genomic coordinates.
func AsFasta(input, genome string) (*Sequences, error) {
	rc, err := openReader(input)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	br := bufio.NewReader(rc)
	first, err := peekContent(br)
	if err == io.EOF {
		return &Sequences{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	if first == '>' {
		return ReadAll(br, input)
	}
	if genome == "" {
		return nil, fmt.Errorf("%s looks like a region list; a genome is required to resolve regions", input)
	}
	g, err := ReadFile(genome)
	if err != nil {
		return nil, err
	}
	return extractRegions(br, input, g)
}

// LooksLikeFasta reports whether the input starts with a FASTA header,
// distinguishing sequence input from a region list. Empty input counts
// as FASTA.
func LooksLikeFasta(path string) (bool, error) {
	rc, err := openReader(path)
	if err != nil {
		return false, err
	}
	defer rc.Close()

	first, err := peekContent(bufio.NewReader(rc))
	if err == io.EOF {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	return first == '>', nil
}

// peekContent skips leading whitespace and reports the first content byte.
func peekContent(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			_, _ = br.ReadByte()
		default:
			return b[0], nil
		}
	}
}

func extractRegions(r io.Reader, name string, g *Sequences) (*Sequences, error) {
	out := &Sequences{}
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") ||
			strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser") {
			continue
		}
		loc, err := parseRegion(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, ln, err)
		}
		seq, ok := g.Get(loc.Chrom)
		if !ok {
			return nil, fmt.Errorf("%s:%d: chromosome %q not in genome", name, ln, loc.Chrom)
		}
		if loc.Start < 0 || loc.End > len(seq) || loc.Start >= loc.End {
			return nil, fmt.Errorf("%s:%d: region %s out of range (%s has length %d)",
				name, ln, loc, loc.Chrom, len(seq))
		}
		rec := Record{ID: loc.String(), Seq: append([]byte(nil), seq[loc.Start:loc.End]...)}
		if err := out.add(rec); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", name, ln, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func parseRegion(line string) (genomic.Locus, error) {
	fields := strings.Fields(line)
	if len(fields) >= 3 {
		start, serr := strconv.Atoi(fields[1])
		end, eerr := strconv.Atoi(fields[2])
		if serr == nil && eerr == nil {
			return genomic.Locus{Chrom: fields[0], Start: start, End: end}, nil
		}
	}
	if len(fields) == 1 {
		if loc, ok := genomic.ParseLocus(fields[0]); ok {
			return loc, nil
		}
	}
	return genomic.Locus{}, fmt.Errorf("cannot parse region %q", line)
}
