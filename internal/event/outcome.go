package event

// Outcome is the explicit result of a registration or an existence check.
type Outcome int

const (
	// OutcomeRegistered means the handler is recorded under the holder.
	OutcomeRegistered Outcome = iota

	// OutcomeRejectedNotCallable means the handler was nil; nothing was
	// attached or recorded.
	OutcomeRejectedNotCallable

	// OutcomeRejectedUnknownEvent means the event type is not supported;
	// nothing was attached or recorded.
	OutcomeRejectedUnknownEvent

	// OutcomeNotFound means the holder, or the elements a direct
	// attachment needed, do not exist.
	OutcomeNotFound

	// OutcomeFoundNoMatch means the holder exists but no entry under it
	// satisfies the query.
	OutcomeFoundNoMatch
)

// String returns a human-readable outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeRegistered:
		return "registered"
	case OutcomeRejectedNotCallable:
		return "rejected: not callable"
	case OutcomeRejectedUnknownEvent:
		return "rejected: unknown event type"
	case OutcomeNotFound:
		return "not found"
	case OutcomeFoundNoMatch:
		return "found, no match"
	default:
		return "unknown"
	}
}

// OK reports whether the outcome is OutcomeRegistered.
func (o Outcome) OK() bool {
	return o == OutcomeRegistered
}
