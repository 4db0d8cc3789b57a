package capture

// Option configures a scope guard. See WithPanicOnViolation.
type Option func(*scopeConfig)

type scopeConfig struct {
	panicOnViolation bool
}

// WithPanicOnViolation makes Close panic instead of returning a
// *LIFOViolationError. Prefer this in tests, and in services that would
// rather crash loudly on a leaked or misordered scope than continue running
// with instrumentation state it can no longer trust.
func WithPanicOnViolation() Option {
	return func(c *scopeConfig) { c.panicOnViolation = true }
}

// ScopedCapture installs point as the current capture of type T for as long
// as it is open. Construct with NewScopedCapture; release with Close,
// ordinarily via defer immediately after construction.
//
// A ScopedCapture never crosses goroutines; work dispatched elsewhere will
// not see point through Current, even if that work is wrapped with WrapCall.
// Use NewAutoCrossingCapture for that.
type ScopedCapture[T any] struct {
	cfg    scopeConfig
	key    typeKey
	self   *capNode
	closed bool
}

// NewScopedCapture pushes point onto the capture stack for T on the calling
// goroutine and returns a guard that pops it again on Close.
func NewScopedCapture[T any](point T, opts ...Option) *ScopedCapture[T] {
	var cfg scopeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	g := stateForCurrentGoroutine()
	k := keyOf[T]()
	node := &capNode{key: k, point: point, prev: g.types[k]}
	g.types[k] = node

	return &ScopedCapture[T]{cfg: cfg, key: k, self: node}
}

// Close pops the capture pushed by the constructor. It must be called from
// the same goroutine that constructed the guard, and guards on the same
// goroutine must be closed in the reverse of their construction order; any
// other order is reported as a *LIFOViolationError (or a panic, if
// WithPanicOnViolation was passed to the constructor) rather than silently
// leaving the stack in an inconsistent state.
//
// Close is idempotent only in the sense that a *second* Close on an
// already-closed guard is itself reported as a violation - not as a no-op -
// since a correct caller never needs to call it twice.
func (s *ScopedCapture[T]) Close() error {
	g := stateForCurrentGoroutine()
	top := g.types[s.key]
	if s.closed || top != s.self {
		return s.violation(g)
	}
	g.types[s.key] = s.self.prev
	s.closed = true
	g.forgetIfEmpty()
	return nil
}

func (s *ScopedCapture[T]) violation(g *goroutineState) error {
	reason := "close called out of order"
	if s.closed {
		reason = "already closed"
	}
	err := newLIFOViolation(s.key.t, reason)
	if s.cfg.panicOnViolation {
		panic(err)
	}
	return err
}

// MustClose calls Close and panics if it returns an error.
func (s *ScopedCapture[T]) MustClose() {
	if err := s.Close(); err != nil {
		panic(err)
	}
}

// AutoCrossingCapture behaves exactly like ScopedCapture, but additionally
// registers with the crosser stack, so that WrapCall (invoked while this
// guard is open) carries point across a goroutine hop. Construct with
// NewAutoCrossingCapture; release with Close.
type AutoCrossingCapture[T any] struct {
	scoped      *ScopedCapture[T]
	cfg         scopeConfig
	prevCrosser *crosserNode
	self        *crosserNode
	closed      bool
}

// NewAutoCrossingCapture pushes point onto both the capture stack for T and
// the type-erased crosser stack on the calling goroutine.
func NewAutoCrossingCapture[T any](point T, opts ...Option) *AutoCrossingCapture[T] {
	var cfg scopeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	scoped := NewScopedCapture[T](point, opts...)

	g := stateForCurrentGoroutine()
	node := &crosserNode{
		key:         scoped.key,
		point:       point,
		prevCrosser: g.crosser,
		id:          newNodeID(),
	}
	g.crosser = node

	return &AutoCrossingCapture[T]{scoped: scoped, cfg: cfg, prevCrosser: node.prevCrosser, self: node}
}

// Close pops both the crosser-stack entry and the capture-stack entry
// pushed by the constructor. The same LIFO discipline as ScopedCapture.Close
// applies to the crosser stack in addition to the capture stack.
func (a *AutoCrossingCapture[T]) Close() error {
	g := stateForCurrentGoroutine()
	if a.closed || g.crosser != a.self || g.types[a.scoped.key] != a.scoped.self {
		reason := "close called out of order"
		if a.closed {
			reason = "already closed"
		}
		err := newLIFOViolation(a.scoped.key.t, reason)
		if a.cfg.panicOnViolation {
			panic(err)
		}
		return err
	}
	g.crosser = a.prevCrosser
	a.closed = true
	return a.scoped.Close()
}

// MustClose calls Close and panics if it returns an error.
func (a *AutoCrossingCapture[T]) MustClose() {
	if err := a.Close(); err != nil {
		panic(err)
	}
}

// Snapshot returns the crosser snapshot as it stood immediately after this
// capture was installed - i.e. with this capture as the newest entry. This
// is occasionally useful for tests and diagnostics; ordinary callers should
// use CaptureSnapshot or WrapCall instead, which read the goroutine's
// current top rather than a specific node's.
func (a *AutoCrossingCapture[T]) Snapshot() Snapshot {
	return Snapshot{node: a.self}
}
