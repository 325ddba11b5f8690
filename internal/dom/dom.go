// Package dom defines the host document model that event delegation runs against.
//
// The delegation core never walks a concrete tree; it only needs element
// identity, tag names, class sets and the two structural links used by the
// selector combinators (parent and previous element sibling). Any tree that
// can provide those can host delegated handlers. The htmldom subpackage is the
// implementation backed by golang.org/x/net/html.
package dom

import "context"

// ListenerID identifies a listener attached to an EventTarget.
type ListenerID uint64

// Listener is a callback invoked by the host for a delivered event.
type Listener func(ctx context.Context, ev *Event)

// EventTarget is anything listeners can be attached to.
type EventTarget interface {
	// AddEventListener attaches l for events of type t and returns a handle
	// that can later detach it.
	AddEventListener(t EventType, l Listener) ListenerID

	// RemoveEventListener detaches a listener. It reports whether the
	// listener was attached to this target.
	RemoveEventListener(id ListenerID) bool
}

// ClassList is the mutable class set of an element.
type ClassList interface {
	// Contains reports whether the class is present.
	Contains(class string) bool

	// Add adds classes that are not present yet.
	Add(classes ...string)

	// Remove removes classes if present.
	Remove(classes ...string)

	// Toggle flips the class and reports whether it is now present.
	Toggle(class string) bool

	// Values returns the classes in document order.
	Values() []string
}

// Element is an opaque element handle.
//
// Handles are compared by identity: a host must return the same handle value
// every time it hands out the same underlying element.
type Element interface {
	EventTarget

	// TagName returns the element's tag name. Hosts may return any case;
	// callers compare case-insensitively.
	TagName() string

	// ID returns the id attribute, or "" when absent.
	ID() string

	// Attr returns an attribute value.
	Attr(name string) (string, bool)

	// ClassList returns the live class set.
	ClassList() ClassList

	// ParentElement returns the parent element, or nil at the top of the tree.
	ParentElement() Element

	// PreviousElementSibling returns the closest preceding sibling that is
	// an element, or nil.
	PreviousElementSibling() Element
}

// Document is the root of an element tree.
type Document interface {
	EventTarget

	// GetElementByID returns the first element with the id, or nil.
	GetElementByID(id string) Element

	// GetElementsByClassName returns every element carrying the class, in
	// document order.
	GetElementsByClassName(class string) []Element

	// QuerySelectorAll returns every element matching a CSS selector, in
	// document order.
	QuerySelectorAll(query string) ([]Element, error)
}
