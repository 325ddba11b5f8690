package dispatch

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/dshills/minui/internal/dom"
	"github.com/dshills/minui/internal/event"
)

// entryKey carries the registry entry a handler runs for.
type entryKey struct{}

type entryRef struct {
	id     string
	holder string
}

// WithEntry returns a context under which handler failures are attributed
// to a registry entry: Execute reports them as *event.HandlerError and
// *event.PanicError.
func WithEntry(ctx context.Context, entryID, holder string) context.Context {
	return context.WithValue(ctx, entryKey{}, entryRef{id: entryID, holder: holder})
}

// EntryFrom returns the entry attribution set by WithEntry.
func EntryFrom(ctx context.Context) (entryID, holder string, ok bool) {
	ref, ok := ctx.Value(entryKey{}).(entryRef)
	return ref.id, ref.holder, ok
}

// Executor handles the actual execution of event handlers with
// panic recovery and timing.
type Executor struct {
	panicHandler PanicHandler
}

// NewExecutor creates a new executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		panicHandler: defaultPanicHandler,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithExecutorPanicHandler sets the panic handler for the executor.
func WithExecutorPanicHandler(h PanicHandler) ExecutorOption {
	return func(e *Executor) {
		e.panicHandler = h
	}
}

// Execute runs a handler with the given event and returns the result.
// It recovers from panics and captures timing information. Under WithEntry,
// Result.Error holds the attributed failure; a panic always leaves an
// *event.PanicError there.
func (e *Executor) Execute(ctx context.Context, ev *dom.Event, handler event.Handler) (result Result) {
	select {
	case <-ctx.Done():
		return Result{
			Success: false,
			Error:   ctx.Err(),
			Skipped: true,
		}
	default:
	}

	ref, attributed := ctx.Value(entryKey{}).(entryRef)
	start := time.Now()

	defer func() {
		result.Duration = time.Since(start)

		if r := recover(); r != nil {
			stack := debug.Stack()

			result.Success = false
			result.Panicked = true
			result.PanicValue = r
			result.PanicStack = stack
			result.Error = &event.PanicError{
				EntryID: ref.id,
				Holder:  ref.holder,
				Value:   r,
				Stack:   string(stack),
			}

			// A panicking panic handler must not take the host down.
			if e.panicHandler != nil {
				func() {
					defer func() {
						_ = recover()
					}()
					e.panicHandler(ev, r, stack)
				}()
			}
		}
	}()

	if err := handler.Handle(ctx, ev); err != nil {
		result.Success = false
		result.Error = err
		if attributed {
			result.Error = &event.HandlerError{EntryID: ref.id, Holder: ref.holder, Err: err}
		}
	} else {
		result.Success = true
	}

	return result
}

// ExecuteWithTimeout runs a handler with a timeout.
// The handler must respect context cancellation for this to be effective.
func (e *Executor) ExecuteWithTimeout(ctx context.Context, ev *dom.Event, handler event.Handler, timeout time.Duration) Result {
	if timeout <= 0 {
		return e.Execute(ctx, ev, handler)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return e.Execute(ctx, ev, handler)
}
