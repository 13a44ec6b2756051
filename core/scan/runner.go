// core/scan/runner.go
package scan

import (
	"context"
	"sync"

	"github.com/cskokgibbs/gimmemotifs/core/fasta"
)

type result[T any] struct {
	idx int
	val T
	err error
}

// runOrdered fans sequences out over a worker pool and hands results to
// emit in input order, regardless of which worker finishes first. The
// first error (from work, emit, or cancellation) stops the run.
func runOrdered[T any](
	ctx context.Context,
	workers int,
	seqs *fasta.Sequences,
	work func(fasta.Record) (T, error),
	emit func(idx int, val T) error,
) error {
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int, workers*2)
	results := make(chan result[T], workers*2)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case i, ok := <-jobs:
					if !ok {
						return
					}
					val, err := work(seqs.At(i))
					select {
					case results <- result[T]{idx: i, val: val, err: err}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	// Collector: buffer out-of-order results, release them in input order.
	var (
		cerr error
		cwg  sync.WaitGroup
	)
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		next := 0
		pending := make(map[int]T, workers*2)
		for r := range results {
			if cerr != nil {
				continue
			}
			if r.err != nil {
				cerr = r.err
				continue
			}
			pending[r.idx] = r.val
			for {
				val, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				if err := emit(next, val); err != nil {
					cerr = err
					break
				}
				next++
			}
		}
	}()

feed:
	for i := 0; i < seqs.Len(); i++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}

	close(jobs)
	wg.Wait()
	close(results)
	cwg.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	return cerr
}
