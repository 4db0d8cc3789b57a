// Package capturedispatch wires goroutine-local context propagation into
// the dispatch package's task spawning, without either package depending
// on the other directly.
//
// Neither capture nor dispatch ever reaches across the package boundary on
// its own: a capture.AutoCrossingCapture opened on the goroutine calling
// Spawn/Go does not, by itself, show up inside a spawned task, because
// dispatch spawns the task on a fresh goroutine via a plain "go" statement.
// The functions here are the explicit opt-in point (see capture's package
// doc on WrapCall) - wrap a dispatch.TaskFunc or dispatch.LeafFunc before
// handing it to a Spawner and the calling goroutine's captured environment
// rides along. WrapPoolTask and WrapRaceTask do the same for dispatch.Pool
// and dispatch.Race, whose worker goroutines and candidate goroutines are
// equally opaque to capture without an explicit wrap.
package capturedispatch

import (
	"context"

	"github.com/temurbekov/threadcapture/capture"
	"github.com/temurbekov/threadcapture/dispatch"
)

// WrapTask wraps a dispatch.TaskFunc so that, when it eventually runs on a
// spawned goroutine, it runs with the calling goroutine's auto-crossing
// captures restored.
func WrapTask(fn dispatch.TaskFunc) dispatch.TaskFunc {
	if fn == nil {
		return nil
	}
	snap := capture.CaptureSnapshot()
	return func(ctx context.Context, sp dispatch.Spawner) error {
		return snap.WrapErr(func() error { return fn(ctx, sp) })()
	}
}

// WrapLeaf wraps a dispatch.LeafFunc the same way WrapTask wraps a
// dispatch.TaskFunc.
func WrapLeaf(fn dispatch.LeafFunc) dispatch.LeafFunc {
	if fn == nil {
		return nil
	}
	snap := capture.CaptureSnapshot()
	return func(ctx context.Context) error {
		return snap.WrapErr(func() error { return fn(ctx) })()
	}
}

// crossingSpawner decorates a dispatch.Spawner so every task or leaf
// handed to it is wrapped with the snapshot captured at the moment
// NewCrossingSpawner was called - not at each individual Spawn/Go call,
// matching capture.WrapCall's "snapshot fixed at wrap time" contract.
type crossingSpawner struct {
	sp   dispatch.Spawner
	snap capture.Snapshot
}

// NewCrossingSpawner returns a dispatch.Spawner that transparently carries
// the calling goroutine's current auto-crossing captures into every task
// spawned through it, including tasks spawned by those tasks' own child
// Spawners.
//
//	dispatch.Run(ctx, func(sp dispatch.Spawner) {
//	    crossing := capturedispatch.NewCrossingSpawner(sp)
//	    crossing.Go("worker", func(ctx context.Context) error {
//	        // sees whatever was auto-crossing on the goroutine that called
//	        // NewCrossingSpawner, regardless of which goroutine runs this.
//	        return nil
//	    })
//	})
func NewCrossingSpawner(sp dispatch.Spawner) dispatch.Spawner {
	return &crossingSpawner{sp: sp, snap: capture.CaptureSnapshot()}
}

func (c *crossingSpawner) Spawn(name string, fn dispatch.TaskFunc) {
	c.sp.Spawn(name, func(ctx context.Context, sub dispatch.Spawner) error {
		crossedSub := &crossingSpawner{sp: sub, snap: c.snap}
		return c.snap.WrapErr(func() error { return fn(ctx, crossedSub) })()
	})
}

func (c *crossingSpawner) Go(name string, fn dispatch.LeafFunc) {
	c.sp.Go(name, func(ctx context.Context) error {
		return c.snap.WrapErr(func() error { return fn(ctx) })()
	})
}

// WrapPoolTask wraps a function before handing it to [dispatch.Pool.Submit]
// or [dispatch.Pool.TrySubmit], the same opt-in WrapTask and WrapLeaf
// provide for Scope-based spawning: a Pool's worker goroutines are started
// once, up front, long before any particular task is submitted, so without
// this a submitted task never sees whatever was auto-crossing on the
// goroutine that called Submit.
func WrapPoolTask(fn func() error) func() error {
	if fn == nil {
		return nil
	}
	return capture.CaptureSnapshot().WrapErr(fn)
}

// WrapRaceTask wraps a single candidate passed to [dispatch.Race] so that
// candidate - win or lose - runs with the calling goroutine's auto-crossing
// captures restored. Race starts every candidate concurrently on its own
// goroutine, so without wrapping, none of them see the caller's environment.
func WrapRaceTask[T any](fn func(context.Context) (T, error)) func(context.Context) (T, error) {
	if fn == nil {
		return nil
	}
	snap := capture.CaptureSnapshot()
	return func(ctx context.Context) (T, error) {
		var result T
		err := snap.WrapErr(func() error {
			var innerErr error
			result, innerErr = fn(ctx)
			return innerErr
		})()
		return result, err
	}
}
