package dispatch

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Semaphore is a counting semaphore for bounding concurrency outside a
// scope. It wraps golang.org/x/sync/semaphore.Weighted rather than
// reimplementing acquire/release bookkeeping by hand; every Acquire,
// TryAcquire and Release moves exactly one unit.
type Semaphore struct {
	w   *semaphore.Weighted
	cap int64
}

// NewSemaphore creates a semaphore with the given capacity. Panics if
// n <= 0.
func NewSemaphore(n int) *Semaphore {
	if n <= 0 {
		panic("dispatch: NewSemaphore requires n > 0")
	}
	return &Semaphore{w: semaphore.NewWeighted(int64(n)), cap: int64(n)}
}

// Acquire blocks until a slot is available or ctx is cancelled.
// Returns ctx.Err() on cancellation, nil on success.
func (s *Semaphore) Acquire(ctx context.Context) error {
	return s.w.Acquire(ctx, 1)
}

// TryAcquire attempts to acquire a slot without blocking.
func (s *Semaphore) TryAcquire() bool {
	return s.w.TryAcquire(1)
}

// Release releases a slot. Panics if more slots are released than
// acquired, same as the underlying Weighted semaphore.
func (s *Semaphore) Release() {
	s.w.Release(1)
}
