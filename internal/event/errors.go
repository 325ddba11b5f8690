package event

import "errors"

// Sentinel errors for handler registration.
var (
	// ErrNilHandler is returned when a handler is nil or wraps a nil function.
	ErrNilHandler = errors.New("handler is not callable")

	// ErrUnknownEventType is returned for event types outside the supported set.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrHandlerPanic is returned when a handler panics.
	ErrHandlerPanic = errors.New("handler panicked")
)

// HandlerError wraps an error from a handler with additional context.
type HandlerError struct {
	// EntryID is the registry entry whose handler failed.
	EntryID string

	// Holder is the holder key the handler was registered under.
	Holder string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return "handler error for entry " + e.EntryID + " on holder " + e.Holder + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic value as an error.
type PanicError struct {
	// EntryID is the registry entry whose handler panicked.
	EntryID string

	// Holder is the holder key the handler was registered under.
	Holder string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return "handler panic for entry " + e.EntryID + " on holder " + e.Holder
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
