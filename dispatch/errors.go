package dispatch

import (
	"errors"
	"fmt"
	"runtime"
)

// TaskError wraps an error together with the [TaskInfo] of the task that
// produced it. Scope error aggregation wraps every task failure in a
// TaskError so callers can attribute errors to specific tasks.
type TaskError struct {
	Task TaskInfo
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %q failed: %v", e.Task.Name, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// IsTaskError reports whether err (or any error in its chain) is a [*TaskError].
func IsTaskError(err error) bool {
	if err == nil {
		return false
	}
	var te *TaskError
	return errors.As(err, &te)
}

// TaskOf extracts the [TaskInfo] from the first [*TaskError] in err's chain.
func TaskOf(err error) (TaskInfo, bool) {
	if err == nil {
		return TaskInfo{}, false
	}
	var te *TaskError
	if errors.As(err, &te) {
		return te.Task, true
	}
	return TaskInfo{}, false
}

// CauseOf unwraps the first [*TaskError] in err's chain and returns its
// underlying cause. If err is not a TaskError, it is returned as-is.
func CauseOf(err error) error {
	if err == nil {
		return nil
	}
	var te *TaskError
	if errors.As(err, &te) {
		return te.Err
	}
	return err
}

// AllTaskErrors recursively collects every [*TaskError] from err's chain,
// including errors wrapped via errors.Join.
func AllTaskErrors(err error) []*TaskError {
	if err == nil {
		return nil
	}
	var out []*TaskError
	collectTaskErrors(err, &out)
	return out
}

func collectTaskErrors(err error, out *[]*TaskError) {
	switch e := err.(type) {
	case *TaskError:
		*out = append(*out, e)
	case interface{ Unwrap() []error }:
		for _, sub := range e.Unwrap() {
			collectTaskErrors(sub, out)
		}
	case interface{ Unwrap() error }:
		collectTaskErrors(e.Unwrap(), out)
	}
}

// PanicError wraps a recovered panic value together with the goroutine
// stack trace captured at the point of the panic.
//
// When [WithPanicAsError] is set, panics in tasks are converted to
// *PanicError and returned as regular errors. Otherwise, the *PanicError
// is re-raised via panic in [Scope.Wait].
type PanicError struct {
	Value any
	Stack string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", e.Value, e.Stack)
}

func (e *PanicError) Unwrap() error { return nil }

func newPanicError(v any) *PanicError {
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{Value: v, Stack: string(buf[:n])}
}
