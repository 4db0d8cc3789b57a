// Package capture provides scoped, ambient context propagation for
// multi-goroutine Go programs.
//
// It lets library code publish and consume per-goroutine capture points -
// loggers, tracers, metrics collectors, authorization contexts, and the
// like - without threading the value through every call in between, while
// preserving two invariants ad-hoc goroutine-local approaches routinely get
// wrong:
//
//  1. A captured value is visible only within the dynamic extent of the
//     scope that installed it (scoped lifetime, LIFO override).
//  2. A value installed on one goroutine becomes visible to work dispatched
//     to another goroutine only when the dispatching code explicitly opts
//     in, via [WrapCall] or [WrapCallErr], and only for capture points that
//     themselves opted in to crossing via [NewAutoCrossingCapture].
//
// # Installing a capture point
//
// A capture point is any value of a user-defined type, ordinarily an
// interface exposing one or more capability methods:
//
//	type LineLogger interface {
//	    LogLine(line string)
//	}
//
//	func Log(line string) {
//	    if l, ok := capture.Current[LineLogger](); ok {
//	        l.LogLine(line)
//	    }
//	}
//
// Installing an implementation makes it visible to [Current] for the
// duration of the enclosing scope:
//
//	logger := newMemoryLogger()
//	scope := capture.NewScopedCapture[LineLogger](logger)
//	defer scope.Close()
//
//	Log("visible to logger")
//
// [NewScopedCapture] never crosses goroutines. [NewAutoCrossingCapture]
// behaves identically at the install site, but additionally registers with
// the crosser stack so that [WrapCall] can carry it across a goroutine hop:
//
//	scope := capture.NewAutoCrossingCapture[LineLogger](logger)
//	defer scope.Close()
//
//	go capture.WrapCall(func() {
//	    Log("visible to logger from another goroutine")
//	})()
//
// # Manual single-type crossing
//
// [ThreadBridge] and [ManualCrossThreads] provide a narrower alternative:
// crossing exactly one capture, on demand, without opting the whole ambient
// environment in.
//
// # What this package deliberately does not do
//
// There is no global event bus, no automatic propagation across
// asynchronous boundaries that were not explicitly wrapped, no cross-process
// transport, no ordering guarantee between concurrent captures on different
// goroutines, and no persistence. Scopes are passive observation points, not
// values to be frozen or copied. For request-scoped data that should flow
// through an explicit call chain, prefer context.Context; this package
// exists for the narrower set of cross-cutting concerns where that is
// impractical.
package capture
