// Package batch groups a pull-based stream into fixed-size slices
package batch

import (
	"errors"
	"io"

	perr "jarbas/internal/platform/errors"
)

// DefaultSize is the loader's batch size when none is configured
const DefaultSize = 4096

// Of pulls items from next until it returns io.EOF and hands them to yield in
// order, at most size at a time. Exactly one trailing group is always yielded,
// possibly short or empty, so a stream of N items gives floor(N/size)+1 calls.
// Any other error from next or yield stops the stream and is returned as is
func Of[T any](next func() (T, error), size int, yield func([]T) error) error {
	if size < 1 {
		return perr.InvalidArgf("batch size must be at least 1, got %d", size)
	}

	buf := make([]T, 0, size)
	for {
		item, err := next()
		if errors.Is(err, io.EOF) {
			return yield(buf)
		}
		if err != nil {
			return err
		}
		buf = append(buf, item)
		if len(buf) >= size {
			if err := yield(buf); err != nil {
				return err
			}
			buf = make([]T, 0, size)
		}
	}
}
