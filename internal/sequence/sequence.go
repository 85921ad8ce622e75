// Package sequence issues globally unique, strictly increasing order numbers.
package sequence

import (
	"context"
	"errors"
)

var ErrUnavailable = errors.New("sequence store unavailable")

// Allocator hands out the next value of a named counter. Implementations
// must be atomic across concurrent callers and across process instances:
// two calls never return the same value, and values strictly increase.
// A failed allocation returns no value; values lost to downstream failures
// are burned, never reused.
type Allocator interface {
	Next(ctx context.Context, name string) (int64, error)
}
