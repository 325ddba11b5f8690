// Package delegate runs handlers for events on elements that match a
// declared pattern, whether or not those elements exist yet.
//
// A Trigger states what to match: an element reference, a class, an id, or
// a selector query in the small grammar of package selector. Register
// attaches one listener to the document; when an event bubbles up, the
// listener tests the event's target against the trigger and runs the
// handler only on a match. Every registration is recorded in an
// event.Registry.
//
//	d := delegate.New(doc, delegate.WithLogger(logger))
//	reg, err := d.Register(dom.Click, handler, delegate.OnQuery("ul>li"))
//	if err != nil {
//	    return err
//	}
//	// reg.Outcome == event.OutcomeRegistered
//
// Query triggers are matched with the rules documented on
// MatchRequirement. Pure class queries such as ".a.b" require the target's
// classes to equal the listed ones exactly.
//
// UI wraps a Dispatcher with the loose calling convention of On, which
// takes the handler and trigger in either order, and a few document
// helpers.
package delegate
