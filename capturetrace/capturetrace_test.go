package capturetrace_test

import (
	"context"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/temurbekov/threadcapture/capture"
	"github.com/temurbekov/threadcapture/capturetrace"
)

// identSpan gives each test span pointer identity: noop.Span is not
// comparable, so == on two trace.Span values holding one panics.
type identSpan struct{ trace.Span }

func testSpan(t *testing.T) trace.Span {
	t.Helper()
	tracer := noop.NewTracerProvider().Tracer("capturetrace_test")
	_, span := tracer.Start(context.Background(), "op")
	return &identSpan{Span: span}
}

func TestCurrentDefaultsToNoopSpan(t *testing.T) {
	span := capturetrace.Current()
	if span == nil {
		t.Fatal("Current() must never return nil")
	}
	if span.SpanContext().IsValid() {
		t.Fatal("expected an invalid/no-op span context with nothing installed")
	}
}

func TestInstallMakesSpanCurrent(t *testing.T) {
	span := testSpan(t)
	guard := capturetrace.Install(span)
	defer guard.MustClose()

	if capturetrace.Current() != span {
		t.Fatal("expected the installed span to be current")
	}
}

func TestInstallCrossingSurvivesWrapCall(t *testing.T) {
	span := testSpan(t)
	guard := capturetrace.InstallCrossing(span)
	defer guard.MustClose()

	var crossed bool
	wrapped := capture.WrapCall(func() {
		crossed = capturetrace.Current() == span
		capturetrace.AddEvent("inside wrapped call")
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		wrapped()
	}()
	wg.Wait()

	if !crossed {
		t.Fatal("expected the installed span to be current inside the wrapped call")
	}
}

func TestInstallFromContext(t *testing.T) {
	span := testSpan(t)
	ctx := trace.ContextWithSpan(context.Background(), span)

	guard := capturetrace.InstallFromContext(ctx)
	defer guard.MustClose()

	if capturetrace.Current() != span {
		t.Fatal("expected the context's span to become current")
	}
}
