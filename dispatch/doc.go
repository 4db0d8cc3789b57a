// Package dispatch provides structured concurrency primitives for Go.
//
// Structured concurrency ensures that concurrent tasks have well-defined
// lifecycles: they are spawned and joined within a clear scope, preventing
// goroutine leaks, orphaned tasks, and unpredictable control flow.
//
// This package is the collaborator the capture package was designed to
// compose with rather than assume: nothing in dispatch knows about
// capture, and nothing in capture knows about dispatch. The
// capturedispatch package wires the two together by wrapping the task
// functions passed to Spawn/Go in capture.WrapCallErr, so goroutine-local
// context started via capture.NewAutoCrossingCapture survives the hop onto
// a worker goroutine only where a caller opted in.
//
// # Running Tasks
//
// The primary entry point is [Run], which creates a scope, executes a
// function that spawns tasks via [Spawner], and waits for all tasks to
// complete before returning:
//
//	err := dispatch.Run(ctx, func(sp dispatch.Spawner) {
//	    sp.Go("fetch", func(ctx context.Context) error {
//	        return fetch(ctx)
//	    })
//	    sp.Spawn("process", func(ctx context.Context, sub dispatch.Spawner) error {
//	        sub.Go("step-1", step1)
//	        return nil
//	    })
//	})
//
// Use [Spawner.Go] for simple tasks and [Spawner.Spawn] when the task
// needs to spawn sub-tasks of its own.
//
// For manual lifecycle control, [New] returns a [Scope] and root [Spawner]
// separately. The caller must call [Scope.Wait] to finalize.
// [Scope.WaitTimeout] adds a deadline to finalization.
//
// # Error Policies
//
// Error policies control how the scope reacts to task failures:
//
//   - [FailFast] (default): the first error cancels all sibling tasks.
//     [Scope.Wait] returns that first error.
//   - [Collect]: all errors are collected without cancelling siblings.
//     [Scope.Wait] returns all errors joined via errors.Join.
//     Use [WithMaxErrors] to cap stored errors in high-volume scenarios.
//
// All task errors are wrapped in [*TaskError] for attribution. Use
// [IsTaskError], [TaskOf], [CauseOf], and [AllTaskErrors] to inspect them.
//
// # Helpers
//
//   - [ForEachSlice]: apply a function to every item in a slice concurrently.
//   - [MapSlice]: transform every item concurrently, preserving order.
//   - [GoResult]: spawn a task that returns a typed value via [Result].
//   - [SpawnTimeout]: spawn a task with a per-task deadline.
//   - [SpawnRetry]: spawn a task with exponential-backoff retries.
//   - [SpawnScope]: spawn a sub-scope as a single task, allowing
//     hierarchical error handling with independent policies.
//
// # Bounded Concurrency
//
// Use [WithLimit] to restrict the number of goroutines executing
// concurrently within a scope. For standalone use outside scopes,
// [Semaphore] wraps golang.org/x/sync/semaphore, one slot per acquisition.
//
// # Worker Pool
//
// [Pool] provides a reusable fixed-size worker pool. Tasks are submitted
// via [Pool.Submit] (blocking) or [Pool.TrySubmit] (non-blocking).
//
// # Panic Recovery
//
// By default, a panic in any task is captured with its full stack trace
// and re-raised in [Scope.Wait]. Use [WithPanicAsError] to convert panics
// to [*PanicError] values and return them as regular errors instead.
//
// # Observability
//
//   - [WithOnStart] / [WithOnDone]: per-task lifecycle hooks.
//   - [WithOnEvent]: unified hook receiving [TaskEvent] for every state
//     change (started, done, errored, panicked, cancelled).
package dispatch
