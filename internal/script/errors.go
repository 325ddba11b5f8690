package script

import (
	"errors"
	"fmt"
)

// Errors for script operations.
var (
	// ErrClosed is returned when operating on a closed engine.
	ErrClosed = errors.New("script engine is closed")

	// ErrNotFunction is returned when a handler names a global that is not a function.
	ErrNotFunction = errors.New("not a lua function")

	// ErrTimeout is returned when a handler runs past its deadline.
	ErrTimeout = errors.New("lua execution timeout")

	// ErrCallLimit is returned when a handler makes too many ui calls.
	ErrCallLimit = errors.New("lua call limit exceeded")

	// ErrNoTarget is returned by target-bound ui calls on document events.
	ErrNoTarget = errors.New("event has no target element")
)

// Error reports a failed Lua handler call.
type Error struct {
	// Func is the Lua function name.
	Func string
	// Err is the underlying error.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("lua handler %s: %v", e.Func, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
