package motif

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ParseError reports a malformed line in a motif file.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
}

// ReadFile loads motifs from a PFM file: ">id" header lines followed by
// one whitespace-separated A C G T frequency (or count) row per motif
// position.
func ReadFile(path string) ([]Motif, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadAll(f, path)
}

// ReadAll parses PFM records from r. name is used in error messages only.
func ReadAll(r io.Reader, name string) ([]Motif, error) {
	var (
		motifs []Motif
		cur    *Motif
		ln     int
	)
	fail := func(msg string) error {
		return &ParseError{File: name, Line: ln, Msg: msg}
	}
	flush := func() error {
		if cur == nil {
			return nil
		}
		if cur.Len() == 0 {
			return fail(fmt.Sprintf("motif %q has no frequency rows", cur.ID))
		}
		motifs = append(motifs, *cur)
		cur = nil
		return nil
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if err := flush(); err != nil {
				return nil, err
			}
			id := strings.TrimSpace(line[1:])
			if id == "" {
				return nil, fail("empty motif name")
			}
			cur = &Motif{ID: id}
			continue
		}
		if cur == nil {
			return nil, fail("frequency row before first \">\" header")
		}
		row, err := parseRow(line)
		if err != nil {
			return nil, fail(err.Error())
		}
		cur.Freqs = append(cur.Freqs, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if err := flush(); err != nil {
		return nil, err
	}
	if len(motifs) == 0 {
		ln = 0
		return nil, fail("no motifs found")
	}
	return motifs, nil
}

// parseRow reads four numbers and normalizes them to frequencies, so
// count matrices and frequency matrices load the same way.
func parseRow(line string) ([4]float64, error) {
	var row [4]float64
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return row, fmt.Errorf("expected 4 values (A C G T), got %d", len(fields))
	}
	var sum float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return row, fmt.Errorf("bad value %q", f)
		}
		if v < 0 {
			return row, fmt.Errorf("negative value %q", f)
		}
		row[i] = v
		sum += v
	}
	if sum <= 0 {
		return row, fmt.Errorf("row sums to zero")
	}
	for i := range row {
		row[i] /= sum
	}
	return row, nil
}
