package dispatch_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/temurbekov/threadcapture/dispatch"
)

func TestForEachSliceRunsEveryItem(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	seen := make(chan int, len(items))
	err := dispatch.ForEachSlice(context.Background(), items, func(ctx context.Context, item int) error {
		seen <- item
		return nil
	})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	close(seen)
	count := 0
	for range seen {
		count++
	}
	if count != len(items) {
		t.Fatalf("processed %d items, want %d", count, len(items))
	}
}

func TestMapSlicePreservesOrder(t *testing.T) {
	items := []int{1, 2, 3, 4}
	results, err := dispatch.MapSlice(context.Background(), items, func(ctx context.Context, item int) (int, error) {
		return item * item, nil
	})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	want := []int{1, 4, 9, 16}
	for i, r := range results {
		if r != want[i] {
			t.Fatalf("results = %v, want %v", results, want)
		}
	}
}

func TestMapSliceReturnsNilOnError(t *testing.T) {
	results, err := dispatch.MapSlice(context.Background(), []int{1, 2}, func(ctx context.Context, item int) (int, error) {
		if item == 2 {
			return 0, errBoom
		}
		return item, nil
	})
	if err == nil || results != nil {
		t.Fatalf("results = %v, err = %v, want (nil, err)", results, err)
	}
}

func TestGoResultDeliversValue(t *testing.T) {
	err := dispatch.Run(context.Background(), func(sp dispatch.Spawner) {
		r := dispatch.GoResult(sp, "compute", func(ctx context.Context) (int, error) {
			return 42, nil
		})
		v, err := r.Wait()
		if err != nil || v != 42 {
			t.Errorf("v, err = %d, %v, want 42, nil", v, err)
		}
	})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
}

func TestGoResultDeliversPanicAsError(t *testing.T) {
	err := dispatch.Run(context.Background(), func(sp dispatch.Spawner) {
		r := dispatch.GoResult(sp, "boom", func(ctx context.Context) (int, error) {
			panic("kaboom")
		})
		_, err := r.Wait()
		var pe *dispatch.PanicError
		if !errors.As(err, &pe) {
			t.Errorf("err = %v, want *PanicError", err)
		}
	}, dispatch.WithPanicAsError())
	if err == nil {
		t.Fatalf("expected the outer Run to also report the panic as an error")
	}
}

func TestSpawnTimeoutCancelsSlowTask(t *testing.T) {
	err := dispatch.Run(context.Background(), func(sp dispatch.Spawner) {
		dispatch.SpawnTimeout(sp, "slow", 5*time.Millisecond, func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
	})
	if !errors.Is(dispatch.CauseOf(err), context.DeadlineExceeded) {
		t.Fatalf("err = %v, want a deadline-exceeded cause", err)
	}
}

func TestSpawnRetrySucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := dispatch.Run(context.Background(), func(sp dispatch.Spawner) {
		dispatch.SpawnRetry(sp, "flaky", 3, time.Millisecond, func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errBoom
			}
			return nil
		})
	})
	if err != nil {
		t.Fatalf("err = %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestSpawnRetryExhausted(t *testing.T) {
	err := dispatch.Run(context.Background(), func(sp dispatch.Spawner) {
		dispatch.SpawnRetry(sp, "always-fails", 2, time.Millisecond, func(ctx context.Context) error {
			return errBoom
		})
	})
	if !errors.Is(dispatch.CauseOf(err), errBoom) {
		t.Fatalf("err = %v, want errBoom", err)
	}
}

func TestSpawnRetryPanicsOnInvalidArgs(t *testing.T) {
	_, sp := dispatch.New(context.Background())
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for n < 0")
		}
	}()
	dispatch.SpawnRetry(sp, "bad", -1, time.Millisecond, func(ctx context.Context) error { return nil })
}

func TestRaceReturnsFirstSuccess(t *testing.T) {
	val, err := dispatch.Race(context.Background(),
		func(ctx context.Context) (int, error) {
			time.Sleep(20 * time.Millisecond)
			return 1, nil
		},
		func(ctx context.Context) (int, error) {
			return 2, nil
		},
	)
	if err != nil || val != 2 {
		t.Fatalf("val, err = %d, %v, want 2, nil", val, err)
	}
}

func TestRaceAllFail(t *testing.T) {
	_, err := dispatch.Race(context.Background(),
		func(ctx context.Context) (int, error) { return 0, errBoom },
		func(ctx context.Context) (int, error) { return 0, errBoom },
	)
	if !errors.Is(err, errBoom) {
		t.Fatalf("err = %v, want errBoom", err)
	}
}

func TestRaceEmpty(t *testing.T) {
	val, err := dispatch.Race[int](context.Background())
	if err != nil || val != 0 {
		t.Fatalf("val, err = %d, %v, want 0, nil", val, err)
	}
}
