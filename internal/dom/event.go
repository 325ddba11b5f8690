package dom

import (
	"sort"
	"strings"
)

// EventType names a supported event type.
type EventType string

// Supported event types.
const (
	Click            EventType = "click"
	Change           EventType = "change"
	KeyPress         EventType = "keypress"
	KeyDown          EventType = "keydown"
	KeyUp            EventType = "keyup"
	Focus            EventType = "focus"
	FocusIn          EventType = "focusin"
	FocusOut         EventType = "focusout"
	Blur             EventType = "blur"
	MouseEnter       EventType = "mouseenter"
	MouseLeave       EventType = "mouseleave"
	DOMContentLoaded EventType = "DOMContentLoaded"
)

var eventTypes = map[EventType]bool{
	Click:            true,
	Change:           true,
	KeyPress:         true,
	KeyDown:          true,
	KeyUp:            true,
	Focus:            true,
	FocusIn:          true,
	FocusOut:         true,
	Blur:             true,
	MouseEnter:       true,
	MouseLeave:       true,
	DOMContentLoaded: true,
}

// String returns the event type name.
func (t EventType) String() string {
	return string(t)
}

// Valid reports whether t is one of the supported event types.
func (t EventType) Valid() bool {
	return eventTypes[t]
}

// ParseEventType resolves a name to a supported event type. Matching is
// case-insensitive; "domcontentloaded" resolves to DOMContentLoaded.
func ParseEventType(name string) (EventType, bool) {
	name = strings.TrimSpace(name)
	if t := EventType(name); t.Valid() {
		return t, true
	}
	for t := range eventTypes {
		if strings.EqualFold(string(t), name) {
			return t, true
		}
	}
	return "", false
}

// EventTypes returns all supported event types sorted by name.
func EventTypes() []EventType {
	types := make([]EventType, 0, len(eventTypes))
	for t := range eventTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Event is a delivered event.
type Event struct {
	// Type is the event type.
	Type EventType

	// Target is the innermost element the event was fired on. It is nil for
	// events fired on the document itself.
	Target Element

	// CurrentTarget is the target whose listeners are currently running.
	CurrentTarget EventTarget

	// Detail carries host-specific data (key codes, values, ...).
	Detail map[string]any

	stopped bool
}

// NewEvent creates an event for a target.
func NewEvent(t EventType, target Element, detail map[string]any) *Event {
	return &Event{
		Type:   t,
		Target: target,
		Detail: detail,
	}
}

// StopPropagation prevents delivery to further ancestors.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool {
	return e.stopped
}
