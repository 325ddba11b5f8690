// Package event provides the handler registry for delegated events.
//
// Every handler the delegate package attaches is recorded here under a
// holder key (the id, class or query it was declared for, or "document" for
// handlers delegated to the root) and its event type:
//
//	holder ──▶ event type ──▶ [entry, entry, ...]
//
// The registry is an append-only ledger. Holder and event-type buckets are
// created on first insert; insertion order is preserved; the same handler
// may be recorded more than once. Nothing is ever removed. The registry does
// not deliver events: firing order belongs to the host document.
//
// # Basic Usage
//
//	reg := event.NewRegistry()
//	entry := reg.Add("btn", dom.Click, event.NamedFunc("save", save))
//
//	// Introspection
//	snap := reg.All()
//	entries := snap.Get("btn", dom.Click)
//
//	// Filtered lookup
//	found := reg.Find(event.Query{Types: []dom.EventType{dom.Click}})
//
//	// Existence checks
//	ok := reg.Exists(event.Query{HandlerIDs: []string{entry.ID}, ExistsOn: "btn"})
//	outcome := reg.Check(event.Query{HandlerNames: []string{"save"}, ExistsOn: "nav"})
//
// # Handler Filters
//
// Handler filters scan all of a holder's buckets. WithFirstBucketScan
// narrows them to the first bucket created for each holder.
//
// # Thread Safety
//
// Registry is safe for concurrent use. Snapshots returned by All and Find
// are copies and may be read freely.
package event
