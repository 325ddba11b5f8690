// Package bindings loads declarative UI bindings from TOML or YAML files
// and applies them to a delegate.UI.
//
// A bindings file names a Lua script, blueprints to build and mount, load
// states, and the event bindings themselves:
//
//	script = "app.lua"
//
//	[[blueprint]]
//	name = "toast"
//	tag = "div"
//	classes = ["toast"]
//	mount = "body"
//	states = { shown = ["visible"], hidden = ["gone"] }
//
//	[[loadstate]]
//	query = ".panel"
//	loading = ["spinner"]
//	success = ["panel", "ok"]
//
//	[[binding]]
//	event = "click"
//	query = "ul > li"
//	handler = "select_item"
//
// Paths inside the file are relative to the file itself.
package bindings

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dshills/minui/internal/blueprint"
	"github.com/dshills/minui/internal/config/loader"
	"github.com/dshills/minui/internal/delegate"
	"github.com/dshills/minui/internal/dom"
	"github.com/dshills/minui/internal/event"
)

// ErrAmbiguousTrigger is returned for bindings naming more than one trigger.
var ErrAmbiguousTrigger = errors.New("binding names more than one trigger")

// File is a decoded bindings file.
type File struct {
	// Script is the Lua file defining the handlers.
	Script string `toml:"script" yaml:"script"`

	Blueprints []Blueprint `toml:"blueprint" yaml:"blueprint"`
	LoadStates []LoadState `toml:"loadstate" yaml:"loadstate"`
	Bindings   []Binding   `toml:"binding" yaml:"binding"`

	// Path is where the file was loaded from.
	Path string `toml:"-" yaml:"-"`
}

// Blueprint is a blueprint descriptor plus where to mount it.
type Blueprint struct {
	blueprint.Descriptor `yaml:",inline"`

	// Mount is the selector of the parent; the body when empty.
	Mount string `toml:"mount" yaml:"mount"`
}

// LoadState defines the load classes for a query.
type LoadState struct {
	Query   string   `toml:"query" yaml:"query"`
	Default []string `toml:"default" yaml:"default"`
	Loading []string `toml:"loading" yaml:"loading"`
	Success []string `toml:"success" yaml:"success"`
	Error   []string `toml:"error" yaml:"error"`
}

// Binding attaches a Lua handler to an event.
//
// Exactly one of ID, Class, Query or Document selects the trigger. Bubble
// defaults to true.
type Binding struct {
	Event    string `toml:"event" yaml:"event"`
	ID       string `toml:"id" yaml:"id"`
	Class    string `toml:"class" yaml:"class"`
	Query    string `toml:"query" yaml:"query"`
	Document bool   `toml:"document" yaml:"document"`
	Bubble   *bool  `toml:"bubble" yaml:"bubble"`
	Handler  string `toml:"handler" yaml:"handler"`
}

// EventType resolves the binding's event name.
func (b Binding) EventType() (dom.EventType, error) {
	t, ok := dom.ParseEventType(b.Event)
	if !ok {
		return "", fmt.Errorf("%w: %q", event.ErrUnknownEventType, b.Event)
	}
	return t, nil
}

// Trigger returns the binding's trigger.
func (b Binding) Trigger() (delegate.Trigger, error) {
	var triggers []delegate.Trigger
	if b.ID != "" {
		triggers = append(triggers, delegate.OnID(b.ID))
	}
	if b.Class != "" {
		triggers = append(triggers, delegate.OnClass(b.Class))
	}
	if b.Query != "" {
		triggers = append(triggers, delegate.OnQuery(b.Query))
	}
	if b.Document {
		triggers = append(triggers, delegate.OnDocument())
	}

	switch len(triggers) {
	case 0:
		return delegate.Trigger{}, delegate.ErrEmptyTrigger
	case 1:
		return triggers[0], nil
	default:
		return delegate.Trigger{}, ErrAmbiguousTrigger
	}
}

// Load reads and decodes a bindings file. The format follows the extension.
func Load(fsys loader.FileSystem, path string) (*File, error) {
	var f File
	if err := loader.DecodeFile(fsys, path, &f); err != nil {
		return nil, err
	}
	f.Path = path
	return &f, nil
}

// ScriptPath returns the script path resolved against the file's directory.
func (f *File) ScriptPath() string {
	if f.Script == "" || filepath.IsAbs(f.Script) {
		return f.Script
	}
	return filepath.Join(filepath.Dir(f.Path), f.Script)
}

// BindingError reports a binding that could not be applied.
type BindingError struct {
	// Index is the binding's position in the file, from 0.
	Index int
	// Binding is the offending binding.
	Binding Binding
	// Err is the underlying error.
	Err error
}

func (e *BindingError) Error() string {
	return fmt.Sprintf("binding %d (%s %s): %v", e.Index, e.Binding.Event, e.Binding.Handler, e.Err)
}

func (e *BindingError) Unwrap() error {
	return e.Err
}

// BlueprintError reports a blueprint that could not be built or mounted.
type BlueprintError struct {
	Index int
	Name  string
	Err   error
}

func (e *BlueprintError) Error() string {
	return fmt.Sprintf("blueprint %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *BlueprintError) Unwrap() error {
	return e.Err
}
