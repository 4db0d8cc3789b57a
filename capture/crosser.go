package capture

import (
	"reflect"

	"github.com/google/uuid"
)

// crosserNode is one entry in a goroutine's type-erased crosser stack: the
// chain of currently open AutoCrossingCapture instances, across every type,
// in construction order. Fields are set once at construction and never
// mutated afterward, which is what makes it safe for a Snapshot taken on one
// goroutine to be walked (read-only) from another.
type crosserNode struct {
	key         typeKey
	point       any
	prevCrosser *crosserNode
	id          uuid.UUID
}

func newNodeID() uuid.UUID {
	return uuid.New()
}

// Snapshot identifies the topmost crosser node of some goroutine at the
// instant it was taken. The zero Snapshot means "no auto-crossing capture
// was active". Snapshots are cheap to copy and safe to share across
// goroutines; the chain they reference is kept alive by ordinary Go garbage
// collection for as long as the Snapshot itself is reachable.
type Snapshot struct {
	node *crosserNode
}

// ID returns a diagnostic identifier for the snapshot's topmost node, or the
// nil UUID if the snapshot is empty. It is a diagnostic correlation id with
// no bearing on correctness; none of this repository's capture points
// (capturelog included) reads it.
func (s Snapshot) ID() uuid.UUID {
	if s.node == nil {
		return uuid.Nil
	}
	return s.node.id
}

// Empty reports whether the snapshot captured no auto-crossing captures.
func (s Snapshot) Empty() bool {
	return s.node == nil
}

// CaptureSnapshot returns the crosser snapshot for the calling goroutine's
// current environment: the chain of AutoCrossingCapture instances open on
// this goroutine right now, optionally extended by a restoration already in
// effect (see the package doc and WrapCall).
func CaptureSnapshot() Snapshot {
	g := stateForCurrentGoroutineOrNil()
	if g == nil {
		return Snapshot{}
	}
	return Snapshot{node: g.crosser}
}

// restore walks the chain from s.node back to the root (oldest first),
// pushes each node's captured value onto the same per-type capture stack
// ScopedCapture uses, sets the crosser-stack top to s.node so that a nested
// WrapCall sees the composed environment (see §4.3.3), runs fn, and unwinds
// everything - via defer, so a panicking fn still leaves goroutine state
// consistent - regardless of how fn returns.
func (s Snapshot) restore(fn func()) {
	if s.node == nil {
		fn()
		return
	}

	// Collect the chain newest-to-oldest (the natural walk order), then
	// process it oldest-to-newest so a later, same-typed node ends up on
	// top - recovering the origin goroutine's own LIFO order.
	var chain []*crosserNode
	for n := s.node; n != nil; n = n.prevCrosser {
		chain = append(chain, n)
	}

	g := stateForCurrentGoroutine()

	type pushedType struct {
		key  typeKey
		prev *capNode
	}
	pushed := make([]pushedType, 0, len(chain))

	for i := len(chain) - 1; i >= 0; i-- {
		n := chain[i]
		prev := g.types[n.key]
		g.types[n.key] = &capNode{key: n.key, point: n.point, prev: prev}
		pushed = append(pushed, pushedType{key: n.key, prev: prev})
	}

	prevCrosser := g.crosser
	g.crosser = s.node

	defer func() {
		g.crosser = prevCrosser
		for i := len(pushed) - 1; i >= 0; i-- {
			g.types[pushed[i].key] = pushed[i].prev
		}
		g.forgetIfEmpty()
	}()

	fn()
}

// wrapClosure is the receiver WrapCall's returned closures are bound to. Its
// sole purpose is to give every callable WrapCall produces the same
// underlying method-code pointer, which is how isWrapped recognizes "this is
// one of ours" without needing a registry of every wrapper ever created.
type wrapClosure struct {
	snap Snapshot
	fn   func()
}

func (w *wrapClosure) call() { w.snap.restore(w.fn) }

// wrapSignature is the code pointer shared by every (*wrapClosure).call
// method value, computed once from a throwaway instance.
var wrapSignature = reflect.ValueOf((&wrapClosure{}).call).Pointer()

func isWrapped(f func()) bool {
	return reflect.ValueOf(f).Pointer() == wrapSignature
}

// WrapCall captures the calling goroutine's current crosser snapshot and
// returns a callable that, when invoked (on any goroutine, any number of
// times), restores that snapshot for the duration of f.
//
// WrapCall(nil) returns nil. Wrapping an already-wrapped callable is a
// no-op: WrapCall(WrapCall(f)) behaves exactly like WrapCall(f), since the
// snapshot was already fixed at the first wrap and wrapping again would
// only re-capture the same (or, worse, a different) environment depending on
// where the second wrap happens to run.
func WrapCall(f func()) func() {
	if f == nil {
		return nil
	}
	if isWrapped(f) {
		return f
	}
	w := &wrapClosure{snap: CaptureSnapshot(), fn: f}
	return w.call
}

// wrapErrClosure mirrors wrapClosure for the func() error shape.
type wrapErrClosure struct {
	snap Snapshot
	fn   func() error
}

func (w *wrapErrClosure) call() (err error) {
	w.snap.restore(func() { err = w.fn() })
	return err
}

var wrapErrSignature = reflect.ValueOf((&wrapErrClosure{}).call).Pointer()

func isWrappedErr(f func() error) bool {
	return reflect.ValueOf(f).Pointer() == wrapErrSignature
}

// WrapCallErr is WrapCall for the func() error shape idiomatic Go code (and
// this repository's own dispatch package) actually dispatches.
func WrapCallErr(f func() error) func() error {
	if f == nil {
		return nil
	}
	if isWrappedErr(f) {
		return f
	}
	w := &wrapErrClosure{snap: CaptureSnapshot(), fn: f}
	return w.call
}

// Wrap is Snapshot's analog of WrapCall: it wraps f against this specific
// snapshot rather than the calling goroutine's current one. Useful when a
// Snapshot was captured earlier (via CaptureSnapshot) and needs to be
// applied to several callables later.
func (s Snapshot) Wrap(f func()) func() {
	if f == nil {
		return nil
	}
	if isWrapped(f) {
		return f
	}
	w := &wrapClosure{snap: s, fn: f}
	return w.call
}

// WrapErr is the func() error analog of Wrap.
func (s Snapshot) WrapErr(f func() error) func() error {
	if f == nil {
		return nil
	}
	if isWrappedErr(f) {
		return f
	}
	w := &wrapErrClosure{snap: s, fn: f}
	return w.call
}
