package event

import (
	"context"
	"reflect"

	"github.com/dshills/minui/internal/dom"
)

// Handler is the interface for event handlers.
type Handler interface {
	// Handle processes a delivered event.
	Handle(ctx context.Context, ev *dom.Event) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, ev *dom.Event) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, ev *dom.Event) error {
	return f(ctx, ev)
}

// Namer is implemented by handlers that carry a name. Names are what
// registry queries match when a caller does not hold the entry ID.
type Namer interface {
	Name() string
}

// namedHandler attaches a name to a handler.
type namedHandler struct {
	name string
	h    Handler
}

// Named returns a handler that reports name from Name.
func Named(name string, h Handler) Handler {
	return &namedHandler{name: name, h: h}
}

// NamedFunc is Named for a plain function.
func NamedFunc(name string, fn func(ctx context.Context, ev *dom.Event) error) Handler {
	return Named(name, HandlerFunc(fn))
}

func (n *namedHandler) Name() string {
	return n.name
}

func (n *namedHandler) Handle(ctx context.Context, ev *dom.Event) error {
	return n.h.Handle(ctx, ev)
}

// NameOf returns the handler's name, or "" when it has none.
func NameOf(h Handler) string {
	if n, ok := h.(Namer); ok {
		return n.Name()
	}
	return ""
}

// Callable reports whether h can be invoked: it is non-nil and does not wrap
// a nil function or pointer.
func Callable(h Handler) bool {
	if h == nil {
		return false
	}
	if n, ok := h.(*namedHandler); ok {
		return n != nil && Callable(n.h)
	}
	v := reflect.ValueOf(h)
	switch v.Kind() {
	case reflect.Func, reflect.Pointer, reflect.Map, reflect.Chan, reflect.Slice, reflect.Interface:
		return !v.IsNil()
	}
	return true
}
