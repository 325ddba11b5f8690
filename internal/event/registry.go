package event

import (
	"sync"

	"github.com/google/uuid"
	"github.com/tidwall/match"

	"github.com/dshills/minui/internal/dom"
)

// DocumentHolder is the holder key for handlers delegated to the document root.
const DocumentHolder = "document"

// Entry is one recorded handler registration. Entries are never mutated
// after they are added.
type Entry struct {
	// ID uniquely identifies the registration.
	ID string

	// Holder is the holder key the handler was recorded under.
	Holder string

	// Type is the event type.
	Type dom.EventType

	// Handler is the user handler, as given.
	Handler Handler

	// Seq is the registry-wide insertion sequence number, starting at 1.
	Seq uint64
}

// Name returns the handler's name, if it has one.
func (e Entry) Name() string {
	return NameOf(e.Handler)
}

// holder keeps one holder's buckets in creation order.
type holder struct {
	order   []dom.EventType
	buckets map[dom.EventType][]*Entry
}

// Registry is an append-only ledger of handler registrations keyed by holder
// and event type. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	holders map[string]*holder
	order   []string
	byID    map[string]*Entry
	seq     uint64

	firstBucketOnly bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithFirstBucketScan restricts Find's handler filters to each holder's
// first event-type bucket. By default every bucket is scanned. Exists and
// Check always scan every bucket of the holder they look under.
func WithFirstBucketScan() RegistryOption {
	return func(r *Registry) {
		r.firstBucketOnly = true
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		holders: make(map[string]*holder),
		byID:    make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add appends a handler to holderKey's bucket for t, creating the holder and
// bucket on first use. Duplicates are recorded again, never merged.
func (r *Registry) Add(holderKey string, t dom.EventType, h Handler) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	hd, ok := r.holders[holderKey]
	if !ok {
		hd = &holder{buckets: make(map[dom.EventType][]*Entry)}
		r.holders[holderKey] = hd
		r.order = append(r.order, holderKey)
	}
	if _, ok := hd.buckets[t]; !ok {
		hd.order = append(hd.order, t)
	}

	r.seq++
	e := &Entry{
		ID:      uuid.New().String(),
		Holder:  holderKey,
		Type:    t,
		Handler: h,
		Seq:     r.seq,
	}
	hd.buckets[t] = append(hd.buckets[t], e)
	r.byID[e.ID] = e
	return e
}

// Get returns an entry by ID.
func (r *Registry) Get(id string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Count returns the total number of entries.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byID)
}

// Holders returns every holder key in creation order.
func (r *Registry) Holders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns a copy of the full registry.
func (r *Registry) All() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := Snapshot{Holders: make([]HolderView, 0, len(r.order))}
	for _, key := range r.order {
		snap.Holders = append(snap.Holders, r.view(key))
	}
	return snap
}

// Find looks entries up.
//
// When q.Holder is set, the result holds only that holder, and is empty if
// the holder does not exist. Otherwise every holder that satisfies the
// query's filters is returned; see Query for the filter rules.
func (r *Registry) Find(q Query) Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if q.Holder != "" {
		if _, ok := r.holders[q.Holder]; !ok {
			return Snapshot{}
		}
		return Snapshot{Holders: []HolderView{r.view(q.Holder)}}
	}

	var snap Snapshot
	for _, key := range r.order {
		if r.matches(key, q, r.firstBucketOnly) {
			snap.Holders = append(snap.Holders, r.view(key))
		}
	}
	return snap
}

// Exists reports whether the query is satisfied under holder q.ExistsOn.
func (r *Registry) Exists(q Query) bool {
	return r.Check(q) == OutcomeRegistered
}

// Check resolves the query against holder q.ExistsOn and explains the result.
// A query without type or handler filters is satisfied by the holder existing.
func (r *Registry) Check(q Query) Outcome {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.holders[q.ExistsOn]; !ok {
		return OutcomeNotFound
	}
	if !q.filters() || r.matches(q.ExistsOn, q, false) {
		return OutcomeRegistered
	}
	return OutcomeFoundNoMatch
}

// matches applies the filter rules of Query to one holder. With firstOnly,
// handler filters only see the holder's first bucket. Callers hold r.mu.
func (r *Registry) matches(key string, q Query, firstOnly bool) bool {
	if q.HolderGlob != "" && !match.Match(key, q.HolderGlob) {
		return false
	}
	if !q.filters() {
		return q.HolderGlob != ""
	}

	hd := r.holders[key]
	for _, t := range q.Types {
		if _, ok := hd.buckets[t]; ok {
			return true
		}
	}

	if !q.hasHandlerFilter() {
		return false
	}
	scan := hd.order
	if firstOnly && len(scan) > 1 {
		scan = scan[:1]
	}
	for _, t := range scan {
		for _, e := range hd.buckets[t] {
			if q.matchesEntry(e) {
				return true
			}
		}
	}
	return false
}

// view copies one holder. Callers hold r.mu.
func (r *Registry) view(key string) HolderView {
	hd := r.holders[key]
	hv := HolderView{Key: key, Buckets: make([]Bucket, 0, len(hd.order))}
	for _, t := range hd.order {
		entries := hd.buckets[t]
		b := Bucket{Type: t, Entries: make([]Entry, len(entries))}
		for i, e := range entries {
			b.Entries[i] = *e
		}
		hv.Buckets = append(hv.Buckets, b)
	}
	return hv
}
