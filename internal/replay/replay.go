// Package replay fires scripted synthetic events at a document.
//
// A replay file is JSON:
//
//	{"events": [
//	  {"type": "DOMContentLoaded"},
//	  {"type": "click", "target": "ul > li", "detail": {"button": 0}},
//	  {"type": "keyup", "target": "#search", "detail": {"key": "Enter"}}
//	]}
//
// target is a CSS selector; the first match receives the event. An empty
// target or "document" fires on the document. Steps whose type is unknown
// or whose target does not resolve are reported and skipped.
package replay

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/dshills/minui/internal/config/loader"
	"github.com/dshills/minui/internal/dom"
)

var (
	// ErrInvalidJSON is returned for input that is not valid JSON.
	ErrInvalidJSON = errors.New("invalid replay JSON")

	// ErrUnknownType is reported for steps with an unsupported event type.
	ErrUnknownType = errors.New("unknown event type")

	// ErrUnresolved is reported for steps whose target matches nothing.
	ErrUnresolved = errors.New("target not found")
)

// DocumentTarget fires a step on the document.
const DocumentTarget = "document"

// Step is one scripted event.
type Step struct {
	// Type is the event name as written.
	Type   string
	Target string
	Detail map[string]any
}

// OnDocument reports whether the step fires on the document.
func (s Step) OnDocument() bool {
	return s.Target == "" || s.Target == DocumentTarget
}

// Script is a parsed replay file.
type Script struct {
	Steps []Step
}

// Parse parses a replay document.
func Parse(data []byte) (*Script, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}

	events := gjson.GetBytes(data, "events")
	if events.Exists() && !events.IsArray() {
		return nil, fmt.Errorf("%w: events must be an array", ErrInvalidJSON)
	}

	s := &Script{}
	var err error
	events.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			err = fmt.Errorf("%w: event %d is not an object", ErrInvalidJSON, key.Int())
			return false
		}
		step := Step{
			Type:   value.Get("type").String(),
			Target: value.Get("target").String(),
		}
		if detail, ok := value.Get("detail").Value().(map[string]any); ok {
			step.Detail = detail
		}
		s.Steps = append(s.Steps, step)
		return true
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ParseFile reads and parses a replay file.
func ParseFile(fsys loader.FileSystem, path string) (*Script, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// eventType resolves a step's type.
func (s Step) eventType() (dom.EventType, error) {
	t, ok := dom.ParseEventType(s.Type)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s.Type)
	}
	return t, nil
}
