package event

import (
	"github.com/tidwall/sjson"

	"github.com/dshills/minui/internal/dom"
)

// Snapshot is a read-only copy of registry contents, in creation order.
type Snapshot struct {
	Holders []HolderView
}

// HolderView is one holder's buckets in creation order.
type HolderView struct {
	Key     string
	Buckets []Bucket
}

// Bucket is the ordered handler list for one event type.
type Bucket struct {
	Type    dom.EventType
	Entries []Entry
}

// Len returns the number of holders.
func (s Snapshot) Len() int {
	return len(s.Holders)
}

// Keys returns the holder keys.
func (s Snapshot) Keys() []string {
	keys := make([]string, len(s.Holders))
	for i, h := range s.Holders {
		keys[i] = h.Key
	}
	return keys
}

// Holder returns the view for a holder key.
func (s Snapshot) Holder(key string) (HolderView, bool) {
	for _, h := range s.Holders {
		if h.Key == key {
			return h, true
		}
	}
	return HolderView{}, false
}

// Get returns the entries recorded under holder and event type.
func (s Snapshot) Get(key string, t dom.EventType) []Entry {
	h, ok := s.Holder(key)
	if !ok {
		return nil
	}
	return h.Get(t)
}

// Types returns the holder's event types in creation order.
func (h HolderView) Types() []dom.EventType {
	types := make([]dom.EventType, len(h.Buckets))
	for i, b := range h.Buckets {
		types[i] = b.Type
	}
	return types
}

// Get returns the entries for one event type.
func (h HolderView) Get(t dom.EventType) []Entry {
	for _, b := range h.Buckets {
		if b.Type == t {
			return b.Entries
		}
	}
	return nil
}

// MarshalSnapshot encodes a snapshot as JSON:
//
//	{"count":2,"holders":[{"key":"btn","events":[{"type":"click",
//	  "handlers":[{"id":"...","seq":1,"name":"save"}]}]}]}
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	doc := []byte(`{"count":0,"holders":[]}`)
	count := 0

	for _, h := range s.Holders {
		hj, err := sjson.SetBytes([]byte(`{"events":[]}`), "key", h.Key)
		if err != nil {
			return nil, err
		}
		for _, b := range h.Buckets {
			bj, err := sjson.SetBytes([]byte(`{"handlers":[]}`), "type", string(b.Type))
			if err != nil {
				return nil, err
			}
			for _, e := range b.Entries {
				ej, err := marshalEntry(e)
				if err != nil {
					return nil, err
				}
				if bj, err = sjson.SetRawBytes(bj, "handlers.-1", ej); err != nil {
					return nil, err
				}
				count++
			}
			if hj, err = sjson.SetRawBytes(hj, "events.-1", bj); err != nil {
				return nil, err
			}
		}
		if doc, err = sjson.SetRawBytes(doc, "holders.-1", hj); err != nil {
			return nil, err
		}
	}

	return sjson.SetBytes(doc, "count", count)
}

func marshalEntry(e Entry) ([]byte, error) {
	ej, err := sjson.SetBytes([]byte(`{}`), "id", e.ID)
	if err != nil {
		return nil, err
	}
	if ej, err = sjson.SetBytes(ej, "seq", e.Seq); err != nil {
		return nil, err
	}
	if name := e.Name(); name != "" {
		if ej, err = sjson.SetBytes(ej, "name", name); err != nil {
			return nil, err
		}
	}
	return ej, nil
}
