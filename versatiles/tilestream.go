package versatiles

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// TileItem is one element of a TileStream: a tile coordinate paired with
// its blob, or a terminal error.
type TileItem struct {
	Coord TileCoord3
	Blob  Blob
	Err   error
}

// TileStream is an async sequence of (TileCoord3, Blob) items. Dropping a
// stream before draining it cooperatively cancels pending reads, provided
// the producing goroutine observes ctx.Done() (spec.md §5) — callers
// should cancel the context they passed to the producing call once they
// stop consuming.
type TileStream struct {
	ch <-chan TileItem
}

// NewTileStream wraps an existing channel of items as a TileStream, for
// operations that produce their own items (e.g. leaf/mock operations).
func NewTileStream(ch <-chan TileItem) TileStream {
	return TileStream{ch: ch}
}

// Next blocks until the next item is available, returning ok=false once
// the stream is exhausted.
func (s TileStream) Next() (TileItem, bool) {
	item, ok := <-s.ch
	return item, ok
}

// Boxed erases the concrete producer; in Go the TileStream struct is
// already the erased type; this is provided for parity with spec.md
// §4.11's combinator list.
func (s TileStream) Boxed() TileStream {
	return s
}

// FilterMapBlobParallel applies f to each item's blob across a worker pool
// of bounded concurrency (spec.md §4.11), preserving stream completion but
// not input order. f returns keep=false to drop the item (the Go
// equivalent of returning None from the spec's Blob -> Option<Blob>).
func (s TileStream) FilterMapBlobParallel(ctx context.Context, f func(Blob) (result Blob, keep bool, err error)) TileStream {
	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}

	in := s.ch
	out := make(chan TileItem)

	go func() {
		defer close(out)

		// Bounded-concurrency fan-out via errgroup, the same pattern the
		// teacher reaches for whenever it parallelizes I/O-bound work
		// across goroutines (pmtiles/extract.go, pmtiles/makesync.go).
		errs, groupCtx := errgroup.WithContext(ctx)
		for i := 0; i < workers; i++ {
			errs.Go(func() error {
				for {
					item, ok := <-in
					if !ok {
						return nil
					}
					if item.Err != nil {
						select {
						case out <- item:
						case <-groupCtx.Done():
						}
						continue
					}
					result, keep, err := f(item.Blob)
					if err != nil {
						select {
						case out <- TileItem{Err: err}:
						case <-groupCtx.Done():
						}
						continue
					}
					if !keep {
						continue
					}
					select {
					case out <- TileItem{Coord: item.Coord, Blob: result}:
					case <-groupCtx.Done():
						return nil
					}
				}
			})
		}
		errs.Wait()
	}()

	return TileStream{ch: out}
}

// Collect drains the stream into a slice, returning the first error
// encountered (if any) and stopping there, matching spec.md §7's "bbox
// streams propagate errors by terminating the stream" rule.
func (s TileStream) Collect() ([]TileItem, error) {
	var items []TileItem
	for {
		item, ok := s.Next()
		if !ok {
			return items, nil
		}
		if item.Err != nil {
			return items, item.Err
		}
		items = append(items, item)
	}
}
