// Package writers moves finished output lines onto an io.Writer from a
// dedicated goroutine, so scanning never blocks on terminal I/O.
//
// Writers own no presentation knowledge; lines arrive fully formatted
// from the output package via the pipeline.
package writers

import (
	"bufio"
	"errors"
	"io"
	"syscall"
)

// StartLineWriter starts a goroutine that writes one line per received
// string. The error channel yields exactly one value once the input
// channel is closed and the buffer flushed. After a write error the
// writer keeps draining its channel so producers never block on a dead
// sink.
func StartLineWriter(out io.Writer, bufSize int) (chan<- string, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan string, bufSize)
	done := make(chan error, 1)

	go func() {
		bw := bufio.NewWriterSize(out, 64<<10)
		var werr error
		for line := range in {
			if werr != nil {
				continue
			}
			if _, err := bw.WriteString(line); err != nil {
				werr = err
				continue
			}
			if err := bw.WriteByte('\n'); err != nil {
				werr = err
			}
		}
		if werr == nil {
			werr = bw.Flush()
		}
		done <- werr
	}()

	return in, done
}

// IsBrokenPipe reports whether err means the downstream consumer (a
// `head`, a closed pager) went away. Callers treat that as a normal end
// of output, not a failure.
func IsBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}
