package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/minui/internal/blueprint"
	"github.com/dshills/minui/internal/delegate"
	"github.com/dshills/minui/internal/dom"
	"github.com/dshills/minui/internal/event"
	"github.com/dshills/minui/internal/logging"
)

// Default limits for handler calls.
const (
	DefaultTimeout   = time.Second
	DefaultCallLimit = 1000
)

// Engine runs Lua handlers against a UI.
//
// gopher-lua states are single-threaded; the engine serializes every load
// and handler call on one mutex.
type Engine struct {
	mu sync.Mutex

	L      *lua.LState
	ui     *delegate.UI
	blue   *blueprint.Builder
	logger *logging.Logger

	timeout   time.Duration
	callLimit int

	frame  *frame
	closed bool
}

// frame is the state of the handler call in progress.
type frame struct {
	fn       string
	ev       *dom.Event
	calls    int
	exceeded bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout bounds each handler call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// WithCallLimit caps ui calls per handler call. Zero disables the cap.
func WithCallLimit(n int) Option {
	return func(e *Engine) {
		e.callLimit = n
	}
}

// WithBlueprints enables ui.state through b.
func WithBlueprints(b *blueprint.Builder) Option {
	return func(e *Engine) {
		e.blue = b
	}
}

// WithLogger sets the logger ui.log and print write to.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// New creates an engine bound to ui.
func New(ui *delegate.UI, opts ...Option) (*Engine, error) {
	e := &Engine{
		ui:        ui,
		logger:    logging.Nop(),
		timeout:   DefaultTimeout,
		callLimit: DefaultCallLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithComponent("script")

	L, err := newState()
	if err != nil {
		return nil, err
	}
	e.L = L
	e.install()
	return e, nil
}

// Load runs src as a chunk named name, typically defining handler functions.
func (e *Engine) Load(name, src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrClosed
	}
	if err := doChunk(e.L, strings.NewReader(src), name); err != nil {
		return fmt.Errorf("loading %s: %w", name, err)
	}
	return nil
}

// LoadFile runs the Lua file at path.
func (e *Engine) LoadFile(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return e.Load(path, string(src))
}

// Functions returns the names of the global functions scripts defined.
func (e *Engine) Functions() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	return globalFunctions(e.L)
}

// Global returns a global variable converted to Go.
func (e *Engine) Global(name string) any {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	return toGo(e.L.GetGlobal(name))
}

// Handler returns a handler named fn that calls the Lua global fn with the
// event table.
func (e *Engine) Handler(fn string) (event.Handler, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil, ErrClosed
	}
	if v := e.L.GetGlobal(fn); v.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotFunction, fn, v.Type())
	}

	return event.NamedFunc(fn, func(ctx context.Context, ev *dom.Event) error {
		return e.call(ctx, fn, ev)
	}), nil
}

// Close releases the Lua state.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.L.Close()
	e.closed = true
	return nil
}

func (e *Engine) call(ctx context.Context, fn string, ev *dom.Event) (err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return &Error{Func: fn, Err: ErrClosed}
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	f := &frame{fn: fn, ev: ev}
	e.frame = f
	top := e.L.GetTop()
	e.L.SetContext(ctx)
	defer func() {
		e.L.RemoveContext()
		e.L.SetTop(top)
		e.frame = nil
		if rec := recover(); rec != nil {
			err = &Error{Func: fn, Err: fmt.Errorf("lua panic: %v", rec)}
		}
	}()

	callErr := e.L.CallByParam(lua.P{
		Fn:      e.L.GetGlobal(fn),
		NRet:    0,
		Protect: true,
	}, eventTable(e.L, ev))
	if callErr == nil {
		return nil
	}

	switch {
	case f.exceeded:
		return &Error{Func: fn, Err: fmt.Errorf("%w: more than %d calls", ErrCallLimit, e.callLimit)}
	case ctx.Err() != nil:
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &Error{Func: fn, Err: ErrTimeout}
		}
		return &Error{Func: fn, Err: ctx.Err()}
	}
	return &Error{Func: fn, Err: callErr}
}
