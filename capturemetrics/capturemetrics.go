// Package capturemetrics makes a Prometheus counter and histogram
// reachable through capture, for instrumentation call sites buried deep
// enough in shared code that threading a *prometheus.CounterVec or
// *prometheus.HistogramVec argument through every function signature
// would leak metrics plumbing into unrelated APIs.
package capturemetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/temurbekov/threadcapture/capture"
)

// Counter is the capability reached for via CurrentCounter. A
// prometheus.Counter satisfies it directly.
type Counter interface {
	Inc()
	Add(float64)
}

// Recorder is the capability reached for via CurrentRecorder. A
// prometheus.Histogram or prometheus.Summary satisfies it directly.
type Recorder interface {
	Observe(float64)
}

// defaultCounter and defaultRecorder are real, deliberately unregistered
// Prometheus collectors: observing against them costs an atomic add and
// nothing else, and call sites never have to nil-check what CurrentCounter
// or CurrentRecorder returns.
var (
	defaultCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "capturemetrics_unattributed_total",
		Help: "Counter observations made with no Counter installed via capturemetrics.",
	})
	defaultRecorder = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "capturemetrics_unattributed_seconds",
		Help: "Recorder observations made with no Recorder installed via capturemetrics.",
	})
)

// CurrentCounter returns the active Counter for the calling goroutine, or
// an unregistered fallback counter if none is installed.
func CurrentCounter() Counter {
	if c, ok := capture.Current[Counter](); ok {
		return c
	}
	return defaultCounter
}

// CurrentRecorder returns the active Recorder for the calling goroutine,
// or an unregistered fallback histogram if none is installed.
func CurrentRecorder() Recorder {
	if r, ok := capture.Current[Recorder](); ok {
		return r
	}
	return defaultRecorder
}

// InstallCounter opens a manual (non-crossing) capture of c as the
// current Counter.
func InstallCounter(c Counter) *capture.ScopedCapture[Counter] {
	return capture.NewScopedCapture[Counter](c)
}

// InstallCounterCrossing is InstallCounter's auto-crossing counterpart.
func InstallCounterCrossing(c Counter) *capture.AutoCrossingCapture[Counter] {
	return capture.NewAutoCrossingCapture[Counter](c)
}

// InstallRecorder opens a manual (non-crossing) capture of r as the
// current Recorder.
func InstallRecorder(r Recorder) *capture.ScopedCapture[Recorder] {
	return capture.NewScopedCapture[Recorder](r)
}

// InstallRecorderCrossing is InstallRecorder's auto-crossing counterpart.
func InstallRecorderCrossing(r Recorder) *capture.AutoCrossingCapture[Recorder] {
	return capture.NewAutoCrossingCapture[Recorder](r)
}

// Inc increments the current Counter by one.
func Inc() {
	CurrentCounter().Inc()
}

// Timer starts timing against the current Recorder. Call the returned
// func to observe the elapsed duration, in seconds, as prometheus
// histograms conventionally expect.
func Timer() func() {
	start := time.Now()
	return func() {
		CurrentRecorder().Observe(time.Since(start).Seconds())
	}
}
