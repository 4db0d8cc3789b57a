package dispatch

import (
	"context"
	"fmt"
	"time"
)

// ForEachSlice executes fn for each item in the slice concurrently, using
// the provided options to control concurrency and error policy.
//
//	err := dispatch.ForEachSlice(ctx, urls, func(ctx context.Context, u string) error {
//	    return fetch(ctx, u)
//	}, dispatch.WithLimit(10))
func ForEachSlice[T any](ctx context.Context, items []T, fn func(ctx context.Context, item T) error, opts ...Option) error {
	return Run(ctx, func(sp Spawner) {
		for i, item := range items {
			sp.Go(fmt.Sprintf("foreach[%d]", i), func(ctx context.Context) error {
				return fn(ctx, item)
			})
		}
	}, opts...)
}

// MapSlice executes fn for each item concurrently and collects the results
// in the same order as the input slice. Uses [FailFast] by default; pass
// WithPolicy(Collect) to gather partial results alongside the error.
//
//	prices, err := dispatch.MapSlice(ctx, products, func(ctx context.Context, p Product) (float64, error) {
//	    return fetchPrice(ctx, p)
//	}, dispatch.WithLimit(5))
func MapSlice[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, item T) (R, error), opts ...Option) ([]R, error) {
	results := make([]R, len(items))
	err := Run(ctx, func(sp Spawner) {
		for i, item := range items {
			i, item := i, item
			sp.Go(fmt.Sprintf("map[%d]", i), func(ctx context.Context) error {
				r, err := fn(ctx, item)
				if err != nil {
					return err
				}
				results[i] = r
				return nil
			})
		}
	}, opts...)
	if err != nil {
		cfg := defaultConfig()
		for _, opt := range opts {
			opt(&cfg)
		}
		if cfg.policy == Collect {
			return results, err
		}
		return nil, err
	}
	return results, nil
}

// SpawnTimeout spawns a leaf task bound to a per-task deadline of d,
// independent of the scope's own context lifetime.
func SpawnTimeout(sp Spawner, name string, d time.Duration, fn LeafFunc) {
	sp.Go(name, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return fn(ctx)
	})
}

// SpawnRetry spawns a leaf task that retries up to n additional times on
// error, waiting backoff between attempts (doubled after each failure),
// until it succeeds, exhausts retries, or the context is cancelled.
//
// Panics if n < 0 or backoff <= 0.
func SpawnRetry(sp Spawner, name string, n int, backoff time.Duration, fn LeafFunc) {
	if n < 0 {
		panic("dispatch: SpawnRetry requires n >= 0")
	}
	if backoff <= 0 {
		panic("dispatch: SpawnRetry requires backoff > 0")
	}

	sp.Go(name, func(ctx context.Context) error {
		wait := backoff
		var lastErr error
		for attempt := 0; attempt <= n; attempt++ {
			if attempt > 0 {
				select {
				case <-time.After(wait):
					wait *= 2
				case <-ctx.Done():
					return ctx.Err()
				}
			}

			lastErr = fn(ctx)
			if lastErr == nil {
				return nil
			}
		}
		return lastErr
	})
}

// SpawnScope spawns a sub-scope as a single task: fn populates the
// sub-scope via its own Spawner, and the sub-scope's aggregated error
// (per its own, independently configurable, policy) becomes the parent
// task's error. Panics from the sub-scope propagate to the parent task
// the same way any other task panic would.
func SpawnScope(sp Spawner, name string, fn func(sub Spawner), opts ...Option) {
	sp.Go(name, func(ctx context.Context) error {
		return Run(ctx, fn, opts...)
	})
}
