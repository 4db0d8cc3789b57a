// Package capturelog is a capture point built on top of the standard
// library's log.Logger, demonstrating the pattern the rest of this
// repository's capture points (capturetrace, capturemetrics) follow:
// define a narrow interface, install an implementation of it with
// capture.NewScopedCapture or capture.NewAutoCrossingCapture, and have
// call sites reach it through capture.Current rather than a passed-down
// parameter or a package-level global.
package capturelog

import (
	"fmt"
	"log"

	"github.com/temurbekov/threadcapture/capture"
)

// Logger is the capability call sites reach for via Current. Any
// *log.Logger satisfies it, as does any test double.
type Logger interface {
	Printf(format string, args ...any)
}

// Current returns the active Logger for the calling goroutine, or the
// standard library's default logger if none is installed - call sites
// never need to check the ok result themselves.
func Current() Logger {
	if l, ok := capture.Current[Logger](); ok {
		return l
	}
	return log.Default()
}

// Install opens a manual (non-crossing) capture of l as the current
// Logger for the calling goroutine. Close (or MustClose) it in the same
// function that opened it, in LIFO order relative to any other Logger
// capture.
func Install(l Logger) *capture.ScopedCapture[Logger] {
	return capture.NewScopedCapture[Logger](l)
}

// InstallCrossing is Install's auto-crossing counterpart: the logger
// installed this way is reachable from goroutines spawned by code that
// explicitly wraps its work with capture.WrapCall, capture.WrapCallErr, or
// the capturedispatch helpers.
func InstallCrossing(l Logger) *capture.AutoCrossingCapture[Logger] {
	return capture.NewAutoCrossingCapture[Logger](l)
}

// Printf formats according to a format specifier and writes to the current
// Logger (see Current).
func Printf(format string, args ...any) {
	Current().Printf(format, args...)
}

// Println is Printf for an already-formatted message.
func Println(args ...any) {
	Current().Printf("%s", fmt.Sprintln(args...))
}
