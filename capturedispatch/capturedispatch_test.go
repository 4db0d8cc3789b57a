package capturedispatch_test

import (
	"context"
	"sync"
	"testing"

	"github.com/temurbekov/threadcapture/capture"
	"github.com/temurbekov/threadcapture/capturedispatch"
	"github.com/temurbekov/threadcapture/dispatch"
)

type lineLogger interface{ LogLine(string) }

type memLogger struct {
	mu    sync.Mutex
	lines []string
}

func (m *memLogger) LogLine(line string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lines = append(m.lines, line)
}

func (m *memLogger) Lines() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lines...)
}

func logLine(line string) {
	if l, ok := capture.Current[lineLogger](); ok {
		l.LogLine(line)
	}
}

func TestDispatchAloneDoesNotCrossCaptures(t *testing.T) {
	a := &memLogger{}
	scope := capture.NewAutoCrossingCapture[lineLogger](a)
	defer scope.MustClose()

	_ = dispatch.Run(context.Background(), func(sp dispatch.Spawner) {
		sp.Go("task", func(ctx context.Context) error {
			logLine("dropped")
			return nil
		})
	})

	if got := a.Lines(); len(got) != 0 {
		t.Fatalf("lines = %v, want none - dispatch must not auto-cross without opting in", got)
	}
}

func TestWrapLeafCarriesCapture(t *testing.T) {
	a := &memLogger{}
	scope := capture.NewAutoCrossingCapture[lineLogger](a)
	defer scope.MustClose()

	leaf := capturedispatch.WrapLeaf(func(ctx context.Context) error {
		logLine("seen")
		return nil
	})

	_ = dispatch.Run(context.Background(), func(sp dispatch.Spawner) {
		sp.Go("task", leaf)
	})

	if got, want := a.Lines(), []string{"seen"}; len(got) != 1 || got[0] != want[0] {
		t.Fatalf("lines = %v, want %v", got, want)
	}
}

func TestNewCrossingSpawnerCarriesCaptureThroughChildSpawns(t *testing.T) {
	a := &memLogger{}
	scope := capture.NewAutoCrossingCapture[lineLogger](a)
	defer scope.MustClose()

	_ = dispatch.Run(context.Background(), func(sp dispatch.Spawner) {
		crossing := capturedispatch.NewCrossingSpawner(sp)
		crossing.Spawn("outer", func(ctx context.Context, sub dispatch.Spawner) error {
			logLine("outer")
			sub.Go("inner", func(ctx context.Context) error {
				logLine("inner")
				return nil
			})
			return nil
		})
	})

	got := a.Lines()
	if len(got) != 2 || got[0] != "outer" || got[1] != "inner" {
		t.Fatalf("lines = %v, want [outer inner]", got)
	}
}

func TestWrapTaskNilIsNil(t *testing.T) {
	if capturedispatch.WrapTask(nil) != nil {
		t.Fatal("WrapTask(nil) must return nil")
	}
	if capturedispatch.WrapLeaf(nil) != nil {
		t.Fatal("WrapLeaf(nil) must return nil")
	}
	if capturedispatch.WrapPoolTask(nil) != nil {
		t.Fatal("WrapPoolTask(nil) must return nil")
	}
	if capturedispatch.WrapRaceTask[int](nil) != nil {
		t.Fatal("WrapRaceTask(nil) must return nil")
	}
}

func TestWrapPoolTaskCarriesCaptureAcrossWorkers(t *testing.T) {
	a := &memLogger{}
	scope := capture.NewAutoCrossingCapture[lineLogger](a)
	defer scope.MustClose()

	pool := dispatch.NewPool(context.Background(), 2)
	for i := 0; i < 3; i++ {
		if err := pool.Submit(capturedispatch.WrapPoolTask(func() error {
			logLine("pooled")
			return nil
		})); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got := a.Lines(); len(got) != 3 {
		t.Fatalf("lines = %v, want 3 pooled entries", got)
	}
}

func TestWrapRaceTaskCarriesCaptureToEveryCandidate(t *testing.T) {
	a := &memLogger{}
	scope := capture.NewAutoCrossingCapture[lineLogger](a)
	defer scope.MustClose()

	var ran sync.WaitGroup
	ran.Add(2)
	winner, err := dispatch.Race(context.Background(),
		capturedispatch.WrapRaceTask(func(ctx context.Context) (string, error) {
			defer ran.Done()
			logLine("slow")
			return "slow", nil
		}),
		capturedispatch.WrapRaceTask(func(ctx context.Context) (string, error) {
			defer ran.Done()
			logLine("fast")
			return "fast", nil
		}),
	)
	if err != nil {
		t.Fatalf("Race: %v", err)
	}
	if winner != "slow" && winner != "fast" {
		t.Fatalf("winner = %q, want one of the two candidates", winner)
	}

	// Race returns on the first success without waiting for the other
	// candidate, so wait for both before reading the log.
	ran.Wait()
	got := a.Lines()
	if len(got) != 2 {
		t.Fatalf("lines = %v, want both candidates to have logged", got)
	}
}
