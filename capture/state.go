package capture

import (
	"reflect"
	"sync"

	"github.com/temurbekov/threadcapture/internal/goid"
)

// typeKey identifies a capture type T without needing T to be comparable
// itself; T only needs to exist statically, which reflect.TypeFor gives us
// even for interface types with a nil zero value.
type typeKey struct {
	t reflect.Type
}

func keyOf[T any]() typeKey {
	return typeKey{t: reflect.TypeFor[T]()}
}

// capNode is one entry in a per-type, per-goroutine capture stack. It is
// intentionally untyped (point stored as any) so that a single goroutineState
// can hold stacks for arbitrarily many capture types without generic state
// at the package level, which Go does not allow.
type capNode struct {
	key   typeKey
	point any
	prev  *capNode
}

// goroutineState is the per-goroutine root of every capture stack and of the
// type-erased crosser stack. Once created it is only ever mutated by the
// goroutine that owns it; the one exception is that crosser nodes reachable
// from a Snapshot may be read (never mutated) from other goroutines while a
// restoration is active there, which is safe because capNode and
// crosserNode fields are set once at construction and never changed after.
type goroutineState struct {
	types   map[typeKey]*capNode
	crosser *crosserNode
}

var states sync.Map // int64 (goroutine id) -> *goroutineState

// stateForCurrentGoroutine returns (creating if necessary) the state for the
// calling goroutine.
func stateForCurrentGoroutine() *goroutineState {
	id := goid.Get()
	if v, ok := states.Load(id); ok {
		return v.(*goroutineState)
	}
	fresh := &goroutineState{types: make(map[typeKey]*capNode)}
	actual, _ := states.LoadOrStore(id, fresh)
	return actual.(*goroutineState)
}

// stateForCurrentGoroutineOrNil avoids allocating state just to discover
// that nothing is installed, which is the common case for Current.
func stateForCurrentGoroutineOrNil() *goroutineState {
	id := goid.Get()
	v, ok := states.Load(id)
	if !ok {
		return nil
	}
	return v.(*goroutineState)
}

// forgetIfEmpty drops the calling goroutine's entry once it has no open
// scopes left, so long-lived goroutine pools (see the dispatch package) that
// occasionally open and close scopes don't leak one map entry per worker
// forever. It is best-effort: a goroutine that exits without closing every
// guard it opened leaks its entry, same as the C++ original leaks a
// thread_local slot's last value until the thread itself is torn down.
func (g *goroutineState) forgetIfEmpty() {
	if g.crosser != nil {
		return
	}
	for _, top := range g.types {
		if top != nil {
			return
		}
	}
	states.Delete(goid.Get())
}

// Current returns the topmost active capture of type T on the calling
// goroutine, honoring any active restoration entered via WrapCall/WrapCallErr.
// It returns the zero value of T and false if no capture of that type is
// active.
func Current[T any]() (T, bool) {
	var zero T
	g := stateForCurrentGoroutineOrNil()
	if g == nil {
		return zero, false
	}
	n := g.types[keyOf[T]()]
	if n == nil {
		return zero, false
	}
	v, ok := n.point.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
