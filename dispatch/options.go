package dispatch

import "time"

// Policy determines how a [Scope] handles errors from child tasks.
type Policy int

const (
	// FailFast cancels all sibling tasks when the first error occurs.
	// [Scope.Wait] returns the first error encountered.
	FailFast Policy = iota

	// Collect gathers all errors without cancelling siblings.
	// [Scope.Wait] returns all errors joined via errors.Join.
	Collect
)

type config struct {
	policy     Policy
	limit      int
	maxErrors  int
	panicAsErr bool
	onStart    func(TaskInfo)
	onDone     func(TaskInfo, error, time.Duration)
	onEvent    func(TaskEvent)
}

// Option configures a [Scope].
type Option func(*config)

func defaultConfig() config {
	return config{policy: FailFast}
}

// WithPolicy sets the error handling policy for the scope.
// It panics if p is not a known Policy value.
func WithPolicy(p Policy) Option {
	return func(c *config) {
		switch p {
		case FailFast, Collect:
			c.policy = p
		default:
			panic("dispatch: invalid policy")
		}
	}
}

// WithLimit sets the maximum number of goroutines that can execute
// concurrently within the scope. Tasks beyond the limit block until
// a slot becomes available or the context is canceled.
//
// A limit of zero (the default) means unlimited concurrency.
// WithLimit panics if n is negative.
func WithLimit(n int) Option {
	return func(c *config) {
		if n < 0 {
			panic("dispatch: limit must be non-negative")
		}
		c.limit = n
	}
}

// WithMaxErrors caps the number of errors retained in [Collect] mode.
// Errors beyond the cap are counted (see [Scope.DroppedErrors]) but not
// stored. Ignored under [FailFast], which only ever keeps one error.
func WithMaxErrors(n int) Option {
	return func(c *config) {
		if n < 0 {
			panic("dispatch: max errors must be non-negative")
		}
		c.maxErrors = n
	}
}

// WithPanicAsError converts panics in child tasks to [*PanicError]
// values returned as regular errors, instead of re-raising them
// in [Scope.Wait].
func WithPanicAsError() Option {
	return func(c *config) {
		c.panicAsErr = true
	}
}

// WithOnStart registers a hook invoked when each task begins executing.
func WithOnStart(fn func(TaskInfo)) Option {
	return func(c *config) { c.onStart = fn }
}

// WithOnDone registers a hook invoked when each task finishes.
func WithOnDone(fn func(TaskInfo, error, time.Duration)) Option {
	return func(c *config) { c.onDone = fn }
}

// WithOnEvent registers a unified hook receiving a [TaskEvent] for every
// task state transition: started, done, errored, panicked, cancelled.
func WithOnEvent(fn func(TaskEvent)) Option {
	return func(c *config) { c.onEvent = fn }
}
