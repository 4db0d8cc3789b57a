// Package chanx provides context-aware, goroutine-safe channel utilities
// for moving values between goroutines without leaking one on shutdown. No
// other package in this repository imports it.
//
// Go channels are powerful but have sharp edges: sends to closed channels
// panic, and combining a channel with context cancellation or a concurrent
// close requires careful select statements to avoid a panic or a leak.
//
// chanx covers one piece of that problem:
// [Closable], an idempotent-close channel wrapper that converts
// send-on-closed panics into an error and lets a producer and a Close
// caller race safely.
package chanx
