package delegate

import (
	"context"
	"fmt"
	"sync"

	"github.com/dshills/minui/internal/dom"
	"github.com/dshills/minui/internal/event"
	"github.com/dshills/minui/internal/event/dispatch"
	"github.com/dshills/minui/internal/logging"
	"github.com/dshills/minui/internal/selector"
)

// Dispatcher attaches user handlers to a document and records them in a
// registry.
type Dispatcher struct {
	doc      dom.Document
	registry *event.Registry
	runner   dispatch.Dispatcher
	logger   *logging.Logger
	onError  func(error)

	// parser, when set, is the shared accumulating parser every query
	// evaluation goes through. evalMu serializes convert-match-clear.
	parser *selector.Parser
	evalMu sync.Mutex
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithRegistry records registrations in r instead of a private registry.
func WithRegistry(r *event.Registry) Option {
	return func(d *Dispatcher) {
		d.registry = r
	}
}

// WithSharedParser evaluates query triggers through p at every event,
// clearing it after each evaluation. By default queries are parsed once,
// when the handler is wrapped.
func WithSharedParser(p *selector.Parser) Option {
	return func(d *Dispatcher) {
		d.parser = p
	}
}

// WithRunner sets the dispatcher that runs matched handlers.
func WithRunner(r dispatch.Dispatcher) Option {
	return func(d *Dispatcher) {
		d.runner = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = l
	}
}

// WithErrorHandler is called with the event.HandlerError or
// event.PanicError of every failed handler, after it is logged.
func WithErrorHandler(fn func(error)) Option {
	return func(d *Dispatcher) {
		d.onError = fn
	}
}

// New creates a dispatcher for doc.
func New(doc dom.Document, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		doc:    doc,
		logger: logging.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.registry == nil {
		d.registry = event.NewRegistry()
	}
	if d.runner == nil {
		log := d.logger
		d.runner = dispatch.NewSyncDispatcher(dispatch.WithPanicHandler(func(ev *dom.Event, v any, stack []byte) {
			log.Debug("handler panic on %s: %v\n%s", ev.Type, v, stack)
		}))
	}
	d.logger = d.logger.WithComponent("delegate")
	return d
}

// Document returns the document handlers are attached to.
func (d *Dispatcher) Document() dom.Document {
	return d.doc
}

// Registry returns the registry registrations are recorded in.
func (d *Dispatcher) Registry() *event.Registry {
	return d.registry
}

// Stats returns the runner's counters when it keeps any.
func (d *Dispatcher) Stats() (dispatch.Stats, bool) {
	s, ok := d.runner.(interface{ Stats() dispatch.Stats })
	if !ok {
		return dispatch.Stats{}, false
	}
	return s.Stats(), true
}

// Wrap returns a listener that runs h only for events whose target
// satisfies t. Non-matching events are ignored.
func (d *Dispatcher) Wrap(h event.Handler, t Trigger) dom.Listener {
	return d.wrap(h, t, "", t.HolderKey())
}

func (d *Dispatcher) wrap(h event.Handler, t Trigger, entryID, holder string) dom.Listener {
	match := d.predicateFor(t)
	return func(ctx context.Context, ev *dom.Event) {
		if !match(ev.Target) {
			return
		}
		d.run(ctx, ev, h, entryID, holder)
	}
}

// direct returns a listener that runs h for every event it receives.
func (d *Dispatcher) direct(h event.Handler, entryID, holder string) dom.Listener {
	return func(ctx context.Context, ev *dom.Event) {
		d.run(ctx, ev, h, entryID, holder)
	}
}

func (d *Dispatcher) run(ctx context.Context, ev *dom.Event, h event.Handler, entryID, holder string) {
	result := d.runner.Dispatch(dispatch.WithEntry(ctx, entryID, holder), ev, h)
	err := result.Err()
	if err == nil {
		return
	}
	fields := map[string]any{
		"event":  ev.Type,
		"holder": holder,
	}
	if e, ok := d.registry.Get(entryID); ok {
		fields["seq"] = e.Seq
		if name := e.Name(); name != "" {
			fields["handler"] = name
		}
	}
	d.logger.WithFields(fields).Warn("%v", err)
	if d.onError != nil {
		d.onError(err)
	}
}

// RegisterOption configures one registration.
type RegisterOption func(*registerConfig)

type registerConfig struct {
	bubble bool
}

// WithBubble chooses delegation (true, the default) or direct attachment
// to each element the trigger selects (false).
func WithBubble(bubble bool) RegisterOption {
	return func(c *registerConfig) {
		c.bubble = bubble
	}
}

// Registration is the result of Register.
type Registration struct {
	// Outcome says whether the handler is now recorded under Holder.
	Outcome event.Outcome

	// Holder is the registry key the handler was recorded under.
	Holder string

	// Type is the event type.
	Type dom.EventType

	// Entries holds one entry per attachment: one for delegation or a
	// document trigger, one per element for direct attachment.
	Entries []event.Entry

	// Listeners holds the host listener IDs, parallel to Entries.
	Listeners []dom.ListenerID
}

// OK reports whether the handler was registered. A zero Registration is
// not OK.
func (r Registration) OK() bool {
	return r.Outcome.OK() && len(r.Entries) > 0
}

// Register attaches h for events of type t matching trigger and records it
// in the registry.
//
// With bubbling (the default) a single listener is attached to the document
// and tests each event's target against the trigger, so matching elements
// need not exist yet. Without bubbling the handler is attached directly to
// every element the trigger selects now; if there are none nothing is
// recorded. Document triggers always attach to the document.
//
// The returned Registration's Outcome confirms through the registry that
// the handler exists under its holder key.
func (d *Dispatcher) Register(t dom.EventType, h event.Handler, trigger Trigger, opts ...RegisterOption) (Registration, error) {
	cfg := registerConfig{bubble: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	reg := Registration{Type: t, Holder: trigger.HolderKey()}

	if !event.Callable(h) {
		reg.Outcome = event.OutcomeRejectedNotCallable
		return reg, event.ErrNilHandler
	}
	if !t.Valid() {
		reg.Outcome = event.OutcomeRejectedUnknownEvent
		return reg, fmt.Errorf("%w: %q", event.ErrUnknownEventType, string(t))
	}
	if trigger.IsZero() {
		reg.Outcome = event.OutcomeNotFound
		return reg, ErrEmptyTrigger
	}

	log := d.logger.WithFields(map[string]any{"event": t, "holder": reg.Holder})

	if cfg.bubble || trigger.kind == KindDocument {
		entry := d.registry.Add(reg.Holder, t, h)
		var l dom.Listener
		if trigger.kind == KindDocument {
			l = d.direct(h, entry.ID, reg.Holder)
		} else {
			l = d.wrap(h, trigger, entry.ID, reg.Holder)
		}
		reg.Entries = append(reg.Entries, *entry)
		reg.Listeners = append(reg.Listeners, d.doc.AddEventListener(t, l))
		log.Debug("delegated %s to document", trigger)
	} else {
		elements, err := trigger.targets(d.doc)
		if err != nil {
			reg.Outcome = event.OutcomeNotFound
			return reg, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
		}
		if len(elements) == 0 {
			reg.Outcome = event.OutcomeNotFound
			return reg, ErrNoTargets
		}
		for _, el := range elements {
			entry := d.registry.Add(reg.Holder, t, h)
			reg.Entries = append(reg.Entries, *entry)
			reg.Listeners = append(reg.Listeners, el.AddEventListener(t, d.direct(h, entry.ID, reg.Holder)))
		}
		log.Debug("attached %s directly to %d elements", trigger, len(elements))
	}

	reg.Outcome = d.registry.Check(event.Query{
		HandlerIDs: []string{reg.Entries[len(reg.Entries)-1].ID},
		ExistsOn:   reg.Holder,
	})
	return reg, nil
}
