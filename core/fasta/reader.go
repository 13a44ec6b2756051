// core/fasta/reader.go
package fasta

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
)

// Record is a parsed FASTA sequence.
type Record struct {
	ID  string
	Seq []byte
}

// Sequences is an ordered, ID-indexed collection of records. Order is
// the order of appearance in the source file.
type Sequences struct {
	recs []Record
	byID map[string]int
}

// Len returns the number of records.
func (s *Sequences) Len() int { return len(s.recs) }

// At returns the i-th record in file order.
func (s *Sequences) At(i int) Record { return s.recs[i] }

// IDs returns the record identifiers in file order.
func (s *Sequences) IDs() []string {
	ids := make([]string, len(s.recs))
	for i, r := range s.recs {
		ids[i] = r.ID
	}
	return ids
}

// Get returns the sequence for id.
func (s *Sequences) Get(id string) ([]byte, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return s.recs[i].Seq, true
}

// MedianLength returns the median record length, rounding down for even
// counts, or 0 for an empty collection.
func (s *Sequences) MedianLength() int {
	if len(s.recs) == 0 {
		return 0
	}
	ls := make([]int, len(s.recs))
	for i, r := range s.recs {
		ls[i] = len(r.Seq)
	}
	sort.Ints(ls)
	n := len(ls)
	if n%2 == 1 {
		return ls[n/2]
	}
	return (ls[n/2-1] + ls[n/2]) / 2
}

func (s *Sequences) add(rec Record) error {
	if s.byID == nil {
		s.byID = make(map[string]int)
	}
	if _, dup := s.byID[rec.ID]; dup {
		return fmt.Errorf("duplicate sequence id %q", rec.ID)
	}
	s.byID[rec.ID] = len(s.recs)
	s.recs = append(s.recs, rec)
	return nil
}

// ReadFile loads all records from path. "-" reads stdin and .gz files
// are decompressed transparently.
func ReadFile(path string) (*Sequences, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return ReadAll(rc, path)
}

// ReadAll parses FASTA records from r. name is used in error messages
// only. Header IDs are cut at the first whitespace.
func ReadAll(r io.Reader, name string) (*Sequences, error) {
	out := &Sequences{}
	err := scanRecords(r, func(rec Record) error {
		return out.add(rec)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// scanRecords runs the scanner loop shared by ReadAll and StreamCtx.
func scanRecords(r io.Reader, emit func(Record) error) error {
	sc := bufio.NewScanner(r)
	const maxLine = 64 * 1024 * 1024 // allow very long single-line sequences (64 MiB)
	buf := make([]byte, 64*1024)
	sc.Buffer(buf, maxLine)

	var (
		id   string
		seen bool
		seq  = make([]byte, 0, 1<<20)
	)
	flush := func() error {
		if !seen {
			return nil
		}
		return emit(Record{ID: id, Seq: append([]byte(nil), seq...)})
	}
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return err
			}
			id = parseHeaderID(line[1:])
			seen = true
			seq = seq[:0]
			continue
		}
		if !seen {
			return fmt.Errorf("sequence data before first \">\" header")
		}
		seq = append(seq, bytes.TrimSpace(line)...)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("fasta scan: %w", err)
	}
	return flush()
}

func parseHeaderID(hdr []byte) string {
	hdr = bytes.TrimSpace(hdr)
	if i := bytes.IndexAny(hdr, " \t"); i >= 0 {
		return string(hdr[:i])
	}
	return string(hdr)
}
