package capturemetrics_test

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/temurbekov/threadcapture/capture"
	"github.com/temurbekov/threadcapture/capturemetrics"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestCurrentCounterFallsBackToUnregisteredCollector(t *testing.T) {
	capturemetrics.Inc()
	capturemetrics.Inc()
}

func TestInstallCounterRoutesInc(t *testing.T) {
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_counter"})
	guard := capturemetrics.InstallCounter(c)
	defer guard.MustClose()

	capturemetrics.Inc()
	capturemetrics.Inc()
	capturemetrics.Inc()

	if got := counterValue(t, c); got != 3 {
		t.Fatalf("counter = %v, want 3", got)
	}
}

func TestTimerObservesAgainstCurrentRecorder(t *testing.T) {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{Name: "test_histogram"})
	guard := capturemetrics.InstallRecorder(h)
	defer guard.MustClose()

	stop := capturemetrics.Timer()
	time.Sleep(time.Millisecond)
	stop()

	var m dto.Metric
	if err := h.Write(&m); err != nil {
		t.Fatalf("write: %v", err)
	}
	if m.GetHistogram().GetSampleCount() != 1 {
		t.Fatalf("sample count = %d, want 1", m.GetHistogram().GetSampleCount())
	}
}

func TestInstallCounterCrossingSurvivesWrapCall(t *testing.T) {
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_crossing_counter"})
	guard := capturemetrics.InstallCounterCrossing(c)
	defer guard.MustClose()

	wrapped := capture.WrapCall(func() {
		capturemetrics.Inc()
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		wrapped()
	}()
	wg.Wait()

	if got := counterValue(t, c); got != 1 {
		t.Fatalf("counter = %v, want 1", got)
	}
}
