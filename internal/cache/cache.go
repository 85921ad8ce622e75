package cache

import (
	"context"
	"errors"
)

var ErrCacheMiss = errors.New("cache miss")

// Invalidator marks catalog views stale. Called only after an order is
// durably persisted; failures are logged by callers, never propagated to
// the checkout response.
type Invalidator interface {
	Invalidate(ctx context.Context, tags []string) error
}
