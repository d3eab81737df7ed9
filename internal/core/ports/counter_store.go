package ports

import (
	"context"
	"time"
)

// CounterStore is the backing store for fixed-window rate-limit counters.
// Implementations must make Hit atomic with respect to concurrent callers
// for the same key.
//
// Hit applies one request attempt against the counter identified by key:
//   - if no window is open for key (or the previous one has elapsed), a new
//     window of length window is opened with count 1 and the attempt is
//     allowed;
//   - if the open window's count has reached limit, the attempt is rejected
//     and the count is left untouched;
//   - otherwise the count is incremented and the attempt is allowed.
//
// retryAfter is the time remaining in the current window, in all cases. It
// is measured against the store's own clock, so callers must not re-derive
// it from wall time.
type CounterStore interface {
	Hit(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, retryAfter time.Duration, err error)
}
