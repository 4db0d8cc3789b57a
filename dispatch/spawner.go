package dispatch

import (
	"context"
	"sync/atomic"
	"time"
)

// Spawner allows spawning concurrent tasks into a scope.
type Spawner interface {
	// Spawn starts a new concurrent task with the given name. The task
	// function receives a child Spawner allowing it to create sub-tasks.
	Spawn(name string, fn TaskFunc)

	// Go starts a new concurrent leaf task with the given name. It is a
	// convenience over Spawn for tasks that never spawn sub-tasks.
	Go(name string, fn LeafFunc)
}

// spawner implements the Spawner interface and manages the lifecycle of
// tasks spawned through it.
type spawner struct {
	s    *scope
	open atomic.Bool
}

// Go implements Spawner.Go.
func (sp *spawner) Go(name string, fn LeafFunc) {
	sp.Spawn(name, func(ctx context.Context, _ Spawner) error {
		return fn(ctx)
	})
}

// Spawn implements Spawner.Spawn.
func (sp *spawner) Spawn(name string, fn TaskFunc) {
	// Check open BEFORE wg.Add to avoid a TOCTOU race with finalize's
	// wg.Wait().
	if !sp.open.Load() {
		panic("dispatch: Spawn called after scope shutdown")
	}

	sp.s.wg.Add(1)
	sp.s.totalSpawned.Add(1)

	info := TaskInfo{Name: name}

	go func() {
		defer sp.s.wg.Done()

		if sp.s.sem != nil {
			select {
			case sp.s.sem <- struct{}{}:
				defer func() { <-sp.s.sem }()
			case <-sp.s.ctx.Done():
				return
			}
		}

		if sp.s.ctx.Err() != nil {
			return
		}

		sp.s.activeTasks.Add(1)
		defer sp.s.activeTasks.Add(-1)

		// The child spawner is valid only for the lifetime of this task;
		// spawning on it after the task function returns panics.
		child := &spawner{s: sp.s}
		child.open.Store(true)

		sp.s.emitEvent(TaskEvent{Kind: EventStarted, Task: info})

		start := time.Now()
		panicked := true
		err := sp.s.exec(func(ctx context.Context) error {
			if sp.s.cfg.onStart != nil {
				sp.s.cfg.onStart(info)
			}
			taskErr := fn(ctx, child)
			panicked = false
			return taskErr
		})
		elapsed := time.Since(start)

		child.close()

		if sp.s.cfg.onDone != nil {
			sp.s.cfg.onDone(info, err, elapsed)
		}
		if panicked && err == nil {
			// The panic was kept for re-raising in Wait rather than returned.
			sp.s.emitEvent(TaskEvent{Kind: EventPanicked, Task: info, Duration: elapsed})
		} else {
			sp.s.emitCompletionEvent(info, err, elapsed)
		}

		if err != nil {
			sp.s.recordError(info, err)
		}
	}()
}

// close marks the spawner as closed, preventing further Spawn calls.
func (sp *spawner) close() {
	sp.open.Store(false)
}
