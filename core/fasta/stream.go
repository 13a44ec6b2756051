// core/fasta/stream.go
package fasta

import (
	"context"
	"io"
)

// StreamCtx opens path and emits whole records one at a time, without
// keeping the file in memory. Cancellation is honored between records.
// emit may return an error to stop early.
func StreamCtx(ctx context.Context, path string, emit func(Record) error) error {
	rc, err := openReader(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	return StreamReaderCtx(ctx, rc, emit)
}

// StreamReaderCtx is StreamCtx over an already-open reader.
func StreamReaderCtx(ctx context.Context, r io.Reader, emit func(Record) error) error {
	return scanRecords(r, func(rec Record) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		return emit(rec)
	})
}
