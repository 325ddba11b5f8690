package delegate

import "errors"

// Sentinel errors for registration.
var (
	// ErrEmptyTrigger is returned when a trigger has nothing to match on.
	ErrEmptyTrigger = errors.New("trigger is empty")

	// ErrNoTargets is returned when a direct attachment selects no elements.
	ErrNoTargets = errors.New("trigger selects no elements")

	// ErrInvalidQuery is returned when the host cannot evaluate a query
	// for a direct attachment.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrBadArguments is returned by UI.On when its arguments are not a
	// handler and a trigger.
	ErrBadArguments = errors.New("expected a handler and a trigger")
)
