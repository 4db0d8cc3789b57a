package capture

// ThreadBridge captures the current top of the capture stack for T on the
// constructing goroutine, so it can be carried - by ordinary value passing -
// to another goroutine and installed there via NewManualCrossThreads.
//
// Unlike NewAutoCrossingCapture, a ThreadBridge crosses exactly one type, one
// capture, on demand: it does not register with the crosser stack, has no
// bearing on WrapCall, and does not implicitly bring any other active
// capture along with it.
type ThreadBridge[T any] struct {
	node *capNode
}

// NewThreadBridge captures the current top of the T capture stack on the
// calling goroutine. If nothing is installed, the bridge carries "nothing"
// and ManualCrossThreads built from it behaves like a scope with no capture
// active.
func NewThreadBridge[T any]() ThreadBridge[T] {
	g := stateForCurrentGoroutineOrNil()
	if g == nil {
		return ThreadBridge[T]{}
	}
	return ThreadBridge[T]{node: g.types[keyOf[T]()]}
}

// ManualCrossThreads installs the capture referenced by a ThreadBridge as
// the current T capture on whatever goroutine constructs it, exactly as a
// ScopedCapture would, until Close.
type ManualCrossThreads[T any] struct {
	key    typeKey
	prev   *capNode
	self   *capNode
	closed bool
}

// NewManualCrossThreads installs bridge's captured value as current on the
// calling goroutine.
func NewManualCrossThreads[T any](bridge ThreadBridge[T]) *ManualCrossThreads[T] {
	g := stateForCurrentGoroutine()
	k := keyOf[T]()
	prev := g.types[k]
	node := &capNode{key: k, prev: prev}
	if bridge.node != nil {
		node.point = bridge.node.point
	}
	g.types[k] = node
	return &ManualCrossThreads[T]{key: k, prev: prev, self: node}
}

// Close restores the capture stack for T to what it was before this guard
// was installed. As with ScopedCapture, out-of-order Close is reported as a
// *LIFOViolationError rather than silently corrupting the stack.
func (m *ManualCrossThreads[T]) Close() error {
	g := stateForCurrentGoroutine()
	if m.closed || g.types[m.key] != m.self {
		reason := "close called out of order"
		if m.closed {
			reason = "already closed"
		}
		return newLIFOViolation(m.key.t, reason)
	}
	g.types[m.key] = m.prev
	m.closed = true
	g.forgetIfEmpty()
	return nil
}

// MustClose calls Close and panics if it returns an error.
func (m *ManualCrossThreads[T]) MustClose() {
	if err := m.Close(); err != nil {
		panic(err)
	}
}
