package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// scope holds the state shared by a [Scope] and every [Spawner] derived
// from it.
type scope struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	cfg    config

	wg sync.WaitGroup

	firstErr atomicError
	errOnce  sync.Once

	errMu         sync.Mutex
	errs          []*TaskError
	droppedErrors int

	panicMu sync.Mutex
	panics  []*PanicError

	sem chan struct{}

	finOnce  sync.Once
	finErr   error
	finPanic *PanicError

	totalSpawned atomic.Int64
	activeTasks  atomic.Int64
}

// Run creates a [Scope], invokes fn with its root [Spawner], then waits for
// every spawned task to complete. It returns the aggregated error according
// to the configured [Policy] (default [FailFast]).
func Run(parent context.Context, fn func(sp Spawner), opts ...Option) (err error) {
	sc, sp := New(parent, opts...)

	defer func() {
		runPanic := recover()

		sc.root.close()
		waitErr, waitPanic := sc.s.finalize()

		if runPanic != nil {
			panic(runPanic)
		}
		if waitPanic != nil {
			panic(waitPanic)
		}

		err = waitErr
	}()

	fn(sp)
	return nil
}

func (s *scope) finalize() (error, *PanicError) {
	s.finOnce.Do(func() {
		s.wg.Wait()

		ctxWasCancelled := s.ctx.Err() != nil

		select {
		case <-s.ctx.Done():
		default:
			s.cancel(nil)
		}

		if !s.cfg.panicAsErr {
			s.panicMu.Lock()
			if len(s.panics) > 0 {
				s.finPanic = s.panics[0]
			}
			s.panicMu.Unlock()
		}

		switch s.cfg.policy {
		case FailFast:
			if v := s.firstErr.Load(); v != nil {
				s.finErr = v
			}
		case Collect:
			s.errMu.Lock()
			if len(s.errs) > 0 {
				errs := make([]error, 0, len(s.errs))
				for _, te := range s.errs {
					errs = append(errs, te)
				}
				s.finErr = errors.Join(errs...)
			}
			s.errMu.Unlock()
		}

		if s.finErr == nil && ctxWasCancelled {
			s.finErr = s.ctx.Err()
		}
	})

	return s.finErr, s.finPanic
}

// exec runs fn with panic recovery, routing the recovered value according
// to the scope's panic policy.
func (s *scope) exec(fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			pe := newPanicError(r)
			if s.cfg.panicAsErr {
				err = pe
			} else {
				s.panicMu.Lock()
				s.panics = append(s.panics, pe)
				s.panicMu.Unlock()
				s.cancel(pe)
			}
		}
	}()
	return fn(s.ctx)
}

func (s *scope) emitEvent(e TaskEvent) {
	if s.cfg.onEvent != nil {
		s.cfg.onEvent(e)
	}
}

func (s *scope) emitCompletionEvent(info TaskInfo, err error, d time.Duration) {
	if s.cfg.onEvent == nil {
		return
	}

	var kind EventKind
	switch {
	case err == nil:
		kind = EventDone
	case errors.As(err, new(*PanicError)):
		kind = EventPanicked
	case s.ctx.Err() != nil:
		kind = EventCancelled
	default:
		kind = EventErrored
	}

	s.cfg.onEvent(TaskEvent{Kind: kind, Task: info, Err: err, Duration: d})
}

func (s *scope) recordError(taskInfo TaskInfo, err error) {
	te := &TaskError{Task: taskInfo, Err: err}

	switch s.cfg.policy {
	case FailFast:
		s.errOnce.Do(func() {
			s.firstErr.Store(te)
			s.cancel(err)
		})
	case Collect:
		s.errMu.Lock()
		if s.cfg.maxErrors > 0 && len(s.errs) >= s.cfg.maxErrors {
			s.droppedErrors++
		} else {
			s.errs = append(s.errs, te)
		}
		s.errMu.Unlock()
	}
}

// Scope wraps the internal scope state and exposes lifecycle and
// observability methods. Create one via [New]; finalize with [Scope.Wait].
type Scope struct {
	s        *scope
	root     *spawner
	once     sync.Once
	result   error
	panicVal *PanicError
}

// New creates a [Scope] and root [Spawner] for manual lifecycle control.
// The caller must call [Scope.Wait] to finalize the scope and collect
// errors. Prefer [Run] for most use cases.
func New(parent context.Context, opts ...Option) (*Scope, Spawner) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, cancel := context.WithCancelCause(parent)
	s := &scope{ctx: ctx, cancel: cancel, cfg: cfg}

	if cfg.limit > 0 {
		s.sem = make(chan struct{}, cfg.limit)
	}

	root := &spawner{s: s}
	root.open.Store(true)

	return &Scope{s: s, root: root}, root
}

// Wait closes the root [Spawner], waits for all spawned tasks to complete,
// and returns the aggregated error. If a task panicked and
// [WithPanicAsError] was not set, Wait re-panics with the captured
// [*PanicError]. Wait is idempotent.
func (sc *Scope) Wait() error {
	sc.once.Do(func() {
		sc.root.close()
		sc.result, sc.panicVal = sc.s.finalize()
	})

	if sc.panicVal != nil {
		panic(sc.panicVal)
	}
	return sc.result
}

// ErrWaitTimeout is returned by [Scope.WaitTimeout] when d elapses before
// every spawned task has finished. The scope's context is cancelled as a
// side effect, but tasks already past cancellation checks may still be
// running when WaitTimeout returns.
var ErrWaitTimeout = errors.New("dispatch: wait timed out")

// WaitTimeout waits up to d for the scope to finish, as [Scope.Wait] would.
// If d elapses first, it cancels the scope's context and returns
// [ErrWaitTimeout] without blocking further; a later call to [Scope.Wait]
// still returns the eventual aggregated result.
func (sc *Scope) WaitTimeout(d time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- sc.Wait() }()

	select {
	case err := <-done:
		return err
	case <-time.After(d):
		sc.Cancel(ErrWaitTimeout)
		return ErrWaitTimeout
	}
}

// Cancel cancels the scope's context with the given cause, signaling all
// tasks to stop. Subsequent calls have no additional effect.
func (sc *Scope) Cancel(err error) {
	sc.s.cancel(err)
}

// Context returns the scope's context, cancelled when the scope finalizes
// or is explicitly cancelled via [Scope.Cancel].
func (sc *Scope) Context() context.Context {
	return sc.s.ctx
}

// ActiveTasks returns the number of tasks currently executing.
func (sc *Scope) ActiveTasks() int64 {
	return sc.s.activeTasks.Load()
}

// TotalSpawned returns the total number of tasks spawned so far.
func (sc *Scope) TotalSpawned() int64 {
	return sc.s.totalSpawned.Load()
}

// DroppedErrors returns the number of errors discarded because
// [WithMaxErrors] was reached. Only meaningful in [Collect] mode.
func (sc *Scope) DroppedErrors() int {
	sc.s.errMu.Lock()
	defer sc.s.errMu.Unlock()
	return sc.s.droppedErrors
}
