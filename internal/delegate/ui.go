package delegate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dshills/minui/internal/dom"
	"github.com/dshills/minui/internal/event"
)

// ErrUnknownLoadState is returned for load states that were never defined.
var ErrUnknownLoadState = errors.New("unknown load state")

// UI is the convenience facade over a Dispatcher.
type UI struct {
	d *Dispatcher

	mu         sync.Mutex
	loadStates map[string]LoadState
}

// NewUI creates a facade with its own Dispatcher over doc.
func NewUI(doc dom.Document, opts ...Option) *UI {
	return &UI{
		d:          New(doc, opts...),
		loadStates: make(map[string]LoadState),
	}
}

// Dispatcher returns the underlying dispatcher.
func (u *UI) Dispatcher() *Dispatcher {
	return u.d
}

// On registers a handler for t. The handler and trigger may be given in
// either order. Handlers may be an event.Handler or a func taking
// (context.Context, *dom.Event) returning error, (*dom.Event), or nothing.
// Triggers may be a Trigger or a dom.Element.
//
// Events are delegated through the document unless the trigger is an
// element reference; WithBubble overrides either default.
func (u *UI) On(t dom.EventType, a, b any, opts ...RegisterOption) (Registration, error) {
	h, trigger, ok := normalize(a, b)
	if !ok {
		return Registration{Type: t, Outcome: event.OutcomeRejectedNotCallable}, ErrBadArguments
	}
	if trigger.kind == KindElement {
		opts = append([]RegisterOption{WithBubble(false)}, opts...)
	}
	return u.d.Register(t, h, trigger, opts...)
}

// Loaded runs h when the document fires DOMContentLoaded.
func (u *UI) Loaded(h any) (Registration, error) {
	return u.On(dom.DOMContentLoaded, h, OnDocument())
}

// Events returns a copy of every registration recorded so far.
func (u *UI) Events() event.Snapshot {
	return u.d.registry.All()
}

// FindEvents looks registrations up; see event.Registry.Find.
func (u *UI) FindEvents(q event.Query) event.Snapshot {
	return u.d.registry.Find(q)
}

// Selection picks elements by id, class or query, checked in that order.
type Selection struct {
	ID    string
	Class string
	Query string
}

// Get returns the selected elements in document order. An unknown id
// yields an empty result.
func (u *UI) Get(sel Selection) ([]dom.Element, error) {
	doc := u.d.doc
	switch {
	case sel.ID != "":
		if el := doc.GetElementByID(sel.ID); el != nil {
			return []dom.Element{el}, nil
		}
		return nil, nil
	case sel.Class != "":
		return doc.GetElementsByClassName(sel.Class), nil
	case sel.Query != "":
		els, err := doc.QuerySelectorAll(sel.Query)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		return els, nil
	}
	return nil, nil
}

// Props returns the named properties of each selected element. "tagName",
// "id" and "className" are element properties; any other name is read as
// an attribute and is absent when the attribute is.
func (u *UI) Props(sel Selection, props ...string) ([]map[string]string, error) {
	els, err := u.Get(sel)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]string, 0, len(els))
	for _, el := range els {
		m := make(map[string]string, len(props))
		for _, p := range props {
			switch p {
			case "tagName":
				m[p] = el.TagName()
			case "id":
				m[p] = el.ID()
			case "className":
				m[p] = strings.Join(el.ClassList().Values(), " ")
			default:
				if v, ok := el.Attr(p); ok {
					m[p] = v
				}
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// ToggleClasses toggles each class on el.
func (u *UI) ToggleClasses(el dom.Element, classes ...string) {
	if el == nil {
		return
	}
	cl := el.ClassList()
	for _, c := range classes {
		cl.Toggle(c)
	}
}

// LoadState names the classes shown while a query's elements load and
// after they finish.
type LoadState struct {
	Default []string
	Loading []string
	Success []string
	Error   []string
}

// LoadOutcome selects the classes StopLoad applies.
type LoadOutcome int

const (
	LoadDefault LoadOutcome = iota
	LoadSuccess
	LoadError
)

// DefineLoadState records the load classes for query.
func (u *UI) DefineLoadState(query string, s LoadState) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.loadStates[query] = s
}

func (u *UI) loadState(query string) (LoadState, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	s, ok := u.loadStates[query]
	if !ok {
		return LoadState{}, fmt.Errorf("%w: %q", ErrUnknownLoadState, query)
	}
	return s, nil
}

// StartLoad replaces the classes of every element matching query with the
// loading classes.
func (u *UI) StartLoad(query string) error {
	s, err := u.loadState(query)
	if err != nil {
		return err
	}
	els, err := u.Get(Selection{Query: query})
	if err != nil {
		return err
	}
	for _, el := range els {
		cl := el.ClassList()
		cl.Remove(cl.Values()...)
		cl.Add(s.Loading...)
	}
	return nil
}

// StopLoad removes the loading classes from every element matching query
// and adds the classes for outcome.
func (u *UI) StopLoad(query string, outcome LoadOutcome) error {
	s, err := u.loadState(query)
	if err != nil {
		return err
	}
	els, err := u.Get(Selection{Query: query})
	if err != nil {
		return err
	}
	add := s.Default
	switch outcome {
	case LoadSuccess:
		add = s.Success
	case LoadError:
		add = s.Error
	}
	for _, el := range els {
		cl := el.ClassList()
		cl.Remove(s.Loading...)
		cl.Add(add...)
	}
	return nil
}

// normalize sorts On's arguments into a handler and a trigger.
func normalize(a, b any) (event.Handler, Trigger, bool) {
	if t, ok := asTrigger(a); ok {
		return asHandler(b), t, true
	}
	if t, ok := asTrigger(b); ok {
		return asHandler(a), t, true
	}
	return nil, Trigger{}, false
}

func asTrigger(v any) (Trigger, bool) {
	switch t := v.(type) {
	case Trigger:
		return t, true
	case dom.Element:
		return OnElement(t), true
	}
	return Trigger{}, false
}

// asHandler adapts the supported handler shapes. Anything else, including
// nil funcs, yields nil, which Register rejects as not callable.
func asHandler(v any) event.Handler {
	switch fn := v.(type) {
	case event.Handler:
		return fn
	case func(context.Context, *dom.Event) error:
		if fn == nil {
			return nil
		}
		return event.HandlerFunc(fn)
	case func(*dom.Event):
		if fn == nil {
			return nil
		}
		return event.HandlerFunc(func(_ context.Context, ev *dom.Event) error {
			fn(ev)
			return nil
		})
	case func():
		if fn == nil {
			return nil
		}
		return event.HandlerFunc(func(context.Context, *dom.Event) error {
			fn()
			return nil
		})
	}
	return nil
}
