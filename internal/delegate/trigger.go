package delegate

import (
	"fmt"

	"github.com/dshills/minui/internal/dom"
	"github.com/dshills/minui/internal/event"
)

// TriggerKind identifies what a Trigger matches on.
type TriggerKind int

const (
	// KindNone is the zero Trigger; it never matches.
	KindNone TriggerKind = iota
	// KindElement matches one element by identity.
	KindElement
	// KindClass matches targets carrying a class.
	KindClass
	// KindQuery matches targets against a parsed selector.
	KindQuery
	// KindID matches the target with a given id.
	KindID
	// KindDocument attaches to the document itself, without a predicate.
	KindDocument
)

// String returns the kind name.
func (k TriggerKind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindClass:
		return "class"
	case KindQuery:
		return "query"
	case KindID:
		return "id"
	case KindDocument:
		return "document"
	default:
		return "none"
	}
}

// Trigger is the caller's matching intent. Build one with OnElement,
// OnClass, OnQuery, OnID or OnDocument.
type Trigger struct {
	kind    TriggerKind
	element dom.Element
	value   string
}

// OnElement matches events whose target is el itself.
func OnElement(el dom.Element) Trigger {
	return Trigger{kind: KindElement, element: el}
}

// OnClass matches events whose target has class in its class list.
func OnClass(class string) Trigger {
	return Trigger{kind: KindClass, value: class}
}

// OnQuery matches events whose target satisfies the selector query.
func OnQuery(query string) Trigger {
	return Trigger{kind: KindQuery, value: query}
}

// OnID matches events whose target has the given id.
func OnID(id string) Trigger {
	return Trigger{kind: KindID, value: id}
}

// OnDocument runs the handler for every event of its type delivered to the
// document, whatever the target.
func OnDocument() Trigger {
	return Trigger{kind: KindDocument}
}

// Kind returns the trigger kind.
func (t Trigger) Kind() TriggerKind {
	return t.kind
}

// Element returns the element of a KindElement trigger.
func (t Trigger) Element() dom.Element {
	return t.element
}

// Value returns the class, query or id of the trigger.
func (t Trigger) Value() string {
	return t.value
}

// IsZero reports whether the trigger carries nothing to match on.
func (t Trigger) IsZero() bool {
	switch t.kind {
	case KindElement:
		return t.element == nil
	case KindClass, KindQuery, KindID:
		return t.value == ""
	case KindDocument:
		return false
	}
	return true
}

// HolderKey returns the registry key handlers for this trigger are recorded
// under: the id, class or raw query when given, else the element's id
// attribute, else event.DocumentHolder.
func (t Trigger) HolderKey() string {
	switch t.kind {
	case KindID, KindClass, KindQuery:
		if t.value != "" {
			return t.value
		}
	case KindElement:
		if t.element != nil && t.element.ID() != "" {
			return t.element.ID()
		}
	}
	return event.DocumentHolder
}

// String renders the trigger, e.g. query(ul>li).
func (t Trigger) String() string {
	switch t.kind {
	case KindElement:
		if t.element == nil {
			return "element(<nil>)"
		}
		return fmt.Sprintf("element(%v)", t.element)
	case KindDocument, KindNone:
		return t.kind.String()
	}
	return fmt.Sprintf("%s(%s)", t.kind, t.value)
}

// targets resolves the elements a direct attachment binds to.
func (t Trigger) targets(doc dom.Document) ([]dom.Element, error) {
	switch t.kind {
	case KindElement:
		return []dom.Element{t.element}, nil
	case KindID:
		if el := doc.GetElementByID(t.value); el != nil {
			return []dom.Element{el}, nil
		}
		return nil, nil
	case KindClass:
		return doc.GetElementsByClassName(t.value), nil
	case KindQuery:
		return doc.QuerySelectorAll(t.value)
	}
	return nil, nil
}
