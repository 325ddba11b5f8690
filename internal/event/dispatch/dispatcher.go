package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/dshills/minui/internal/dom"
	"github.com/dshills/minui/internal/event"
)

// Dispatcher is the interface for handler dispatchers.
type Dispatcher interface {
	// Dispatch executes a handler with the given event.
	// Returns a Result containing execution details.
	Dispatch(ctx context.Context, ev *dom.Event, handler event.Handler) Result
}

// Result represents the outcome of a handler execution.
type Result struct {
	// Success is true if the handler completed without error or panic.
	Success bool

	// Error is the error returned by the handler, if any, attributed when
	// the handler ran under WithEntry. For panics it is an *event.PanicError.
	Error error

	// Panicked is true if the handler panicked.
	Panicked bool

	// PanicValue is the value passed to panic(), if Panicked is true.
	PanicValue any

	// PanicStack is the stack trace at the point of panic.
	PanicStack []byte

	// Duration is how long the handler took to execute.
	Duration time.Duration

	// Skipped is true if the handler was not executed (e.g., context cancelled).
	Skipped bool
}

// IsSuccess returns true if the result indicates successful execution.
func (r Result) IsSuccess() bool {
	return r.Success && !r.Panicked && r.Error == nil
}

// IsError returns true if the result indicates an error (not panic).
func (r Result) IsError() bool {
	return r.Error != nil && !r.Panicked
}

// IsPanic returns true if the result indicates a panic.
func (r Result) IsPanic() bool {
	return r.Panicked
}

// Err returns the failure carried by the result, or nil for successful and
// skipped results. Handlers run under WithEntry yield *event.HandlerError;
// panics always yield *event.PanicError.
func (r Result) Err() error {
	switch {
	case r.Skipped:
		return nil
	case r.Panicked:
		if r.Error != nil {
			return r.Error
		}
		return &event.PanicError{Value: r.PanicValue, Stack: string(r.PanicStack)}
	}
	return r.Error
}

// String summarizes the result for log lines.
func (r Result) String() string {
	switch {
	case r.Panicked:
		return fmt.Sprintf("panic: %v (%s)", r.PanicValue, r.Duration)
	case r.Skipped:
		return fmt.Sprintf("skipped: %v", r.Error)
	case r.Error != nil:
		return fmt.Sprintf("error: %v (%s)", r.Error, r.Duration)
	}
	return fmt.Sprintf("ok (%s)", r.Duration)
}

// PanicHandler is called when a handler panics during execution.
// It receives the event being processed, the panic value, and the stack trace.
type PanicHandler func(ev *dom.Event, panicValue any, stack []byte)

// defaultPanicHandler is a no-op panic handler.
func defaultPanicHandler(ev *dom.Event, panicValue any, stack []byte) {}
