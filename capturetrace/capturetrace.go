// Package capturetrace makes the active OpenTelemetry span reachable
// through capture instead of context.Context, for the narrow set of call
// sites - deep in a library, across a goroutine hop a caller has opted
// into crossing - where plumbing a context.Context argument through every
// signature is the wrong trade. Most code should still prefer
// context.Context for span propagation; see the capture package doc for
// when this package is the better fit.
package capturetrace

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"github.com/temurbekov/threadcapture/capture"
)

// Current returns the span active on the calling goroutine, or
// trace.SpanFromContext(context.Background()) - a no-op span - if none is
// installed.
func Current() trace.Span {
	if s, ok := capture.Current[trace.Span](); ok {
		return s
	}
	return trace.SpanFromContext(context.Background())
}

// Install opens a manual (non-crossing) capture of span as the active
// span for the calling goroutine.
func Install(span trace.Span) *capture.ScopedCapture[trace.Span] {
	return capture.NewScopedCapture[trace.Span](span)
}

// InstallCrossing is Install's auto-crossing counterpart, reachable from
// goroutines spawned by code that explicitly wraps its work with
// capture.WrapCall, capture.WrapCallErr, or the capturedispatch helpers.
func InstallCrossing(span trace.Span) *capture.AutoCrossingCapture[trace.Span] {
	return capture.NewAutoCrossingCapture[trace.Span](span)
}

// InstallFromContext installs the span already carried by ctx, returning
// the same guard InstallCrossing would. A convenience for the common case
// of bridging an incoming context.Context into capture at a goroutine
// boundary.
func InstallFromContext(ctx context.Context) *capture.AutoCrossingCapture[trace.Span] {
	return InstallCrossing(trace.SpanFromContext(ctx))
}

// AddEvent adds an event to the goroutine's current span (see Current).
func AddEvent(name string, opts ...trace.EventOption) {
	Current().AddEvent(name, opts...)
}

// RecordError records err on the goroutine's current span.
func RecordError(err error, opts ...trace.EventOption) {
	Current().RecordError(err, opts...)
}
