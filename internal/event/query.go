package event

import "github.com/dshills/minui/internal/dom"

// Query selects registry entries.
//
// Filter rules, used by Find when Holder is empty and by Exists and Check:
// a holder matches when its bucket keys include any of Types, or when one
// of its scanned buckets holds an entry whose ID is in HandlerIDs or whose
// handler name is in HandlerNames. HolderGlob, when set, additionally
// restricts holders to keys matching the glob (* and ? wildcards).
type Query struct {
	// Holder selects a single holder for Find.
	Holder string

	// HolderGlob restricts holder keys with a wildcard pattern.
	HolderGlob string

	// Types filters on event types.
	Types []dom.EventType

	// HandlerIDs filters on entry IDs.
	HandlerIDs []string

	// HandlerNames filters on handler names.
	HandlerNames []string

	// ExistsOn is the holder key Exists and Check look under.
	ExistsOn string
}

func (q Query) hasHandlerFilter() bool {
	return len(q.HandlerIDs) > 0 || len(q.HandlerNames) > 0
}

func (q Query) filters() bool {
	return len(q.Types) > 0 || q.hasHandlerFilter()
}

func (q Query) matchesEntry(e *Entry) bool {
	for _, id := range q.HandlerIDs {
		if e.ID == id {
			return true
		}
	}
	if len(q.HandlerNames) == 0 {
		return false
	}
	name := NameOf(e.Handler)
	if name == "" {
		return false
	}
	for _, n := range q.HandlerNames {
		if n == name {
			return true
		}
	}
	return false
}
