// Package dispatch runs delegated event handlers.
//
// A delegated listener decides whether an event matches its trigger; when
// it does, the user handler is run through a Dispatcher. The dispatcher
// recovers panics so a misbehaving handler cannot crash the host, applies
// an optional per-handler timeout through the context, and counts
// outcomes.
//
// # Usage
//
//	d := dispatch.NewSyncDispatcher(
//	    dispatch.WithTimeout(time.Second),
//	    dispatch.WithPanicHandler(func(ev *dom.Event, v any, stack []byte) {
//	        log.Printf("panic in %s handler: %v\n%s", ev.Type, v, stack)
//	    }),
//	)
//	ctx = dispatch.WithEntry(ctx, entry.ID, entry.Holder)
//	result := d.Dispatch(ctx, ev, handler)
//	if err := result.Err(); err != nil {
//	    // event.HandlerError or event.PanicError
//	}
//
// Handlers run in the caller's goroutine, in the order the host delivers
// them.
package dispatch
