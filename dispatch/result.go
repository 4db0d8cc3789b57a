package dispatch

import "context"

// Result holds the outcome of an asynchronous task that produces a typed
// value. Create one via [GoResult].
type Result[T any] struct {
	ch chan result[T]
}

type result[T any] struct {
	val T
	err error
}

// GoResult spawns a named leaf task that returns a typed value and wraps
// the outcome in a [Result]. The task runs within the scope behind sp,
// inheriting its lifecycle and error policy.
//
//	r := dispatch.GoResult(sp, "compute", func(ctx context.Context) (int, error) {
//	    return expensiveCalc(ctx)
//	})
//	val, err := r.Wait()
func GoResult[T any](
	sp Spawner,
	name string,
	fn func(ctx context.Context) (T, error),
) *Result[T] {
	r := &Result[T]{ch: make(chan result[T], 1)}

	sp.Go(name, func(ctx context.Context) error {
		var zero T

		// A panicking fn publishes a *PanicError to r.ch before the panic
		// continues into the scope's own exec, which then applies the
		// scope's panic policy - otherwise r.ch would stay unpublished and
		// Wait would block forever.
		err := sp.(*spawner).s.exec(func(ctx context.Context) error {
			defer func() {
				if p := recover(); p != nil {
					r.ch <- result[T]{zero, newPanicError(p)}
					panic(p)
				}
			}()
			v, err := fn(ctx)
			r.ch <- result[T]{v, err}
			return err
		})

		if err != nil {
			select {
			case r.ch <- result[T]{zero, err}:
			default:
			}
		}

		return err
	})

	return r
}

// Wait blocks until the task completes and returns its value and error.
// It does not return early on scope cancellation; the underlying task's
// own context-sensitivity governs that.
func (r *Result[T]) Wait() (T, error) {
	res := <-r.ch
	return res.val, res.err
}

// Done returns the channel the task's outcome is delivered on. It receives
// one value when the task completes and is never closed; a value read from
// it is no longer available to Wait.
func (r *Result[T]) Done() <-chan result[T] {
	return r.ch
}
