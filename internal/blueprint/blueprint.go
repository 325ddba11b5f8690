// Package blueprint builds elements from reusable descriptors and switches
// them between named class states.
//
// Built elements carry a data-blueprint attribute naming their descriptor,
// so a state change needs only the element:
//
//	b := blueprint.NewBuilder(doc)
//	frag, _ := b.Build(blueprint.Descriptor{
//		Name:    "toast",
//		Tag:     "div",
//		Classes: []string{"toast"},
//		States:  map[string][]string{"shown": {"visible"}, "hidden": {"gone"}},
//	})
//	el := frag.MountTo(doc.Body())[0]
//	_ = b.SetState(el, "shown")
package blueprint

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/minui/internal/dom"
	"github.com/dshills/minui/internal/dom/htmldom"
)

// Attr is the attribute naming an element's descriptor.
const Attr = "data-blueprint"

var (
	// ErrInvalidDescriptor is returned when a descriptor lacks a name or tag.
	ErrInvalidDescriptor = errors.New("invalid blueprint descriptor")

	// ErrUnknownBlueprint is returned for elements not built from a known descriptor.
	ErrUnknownBlueprint = errors.New("unknown blueprint")

	// ErrUnknownState is returned for a state the descriptor does not define.
	ErrUnknownState = errors.New("unknown blueprint state")
)

// Descriptor describes an element to build.
type Descriptor struct {
	Name    string              `toml:"name" yaml:"name"`
	Tag     string              `toml:"tag" yaml:"tag"`
	Attr    map[string]string   `toml:"attr" yaml:"attr"`
	Classes []string            `toml:"classes" yaml:"classes"`
	States  map[string][]string `toml:"states" yaml:"states"`
	Text    string              `toml:"text" yaml:"text"`
}

// StateNames returns the descriptor's states sorted by name.
func (d Descriptor) StateNames() []string {
	names := make([]string, 0, len(d.States))
	for name := range d.States {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builder creates elements from descriptors and remembers every descriptor
// it built, keyed by name. A later descriptor with the same name replaces
// the earlier one.
type Builder struct {
	mu         sync.RWMutex
	doc        *htmldom.Document
	blueprints map[string]Descriptor
}

// NewBuilder creates a builder for elements owned by doc.
func NewBuilder(doc *htmldom.Document) *Builder {
	return &Builder{
		doc:        doc,
		blueprints: make(map[string]Descriptor),
	}
}

// Build creates the element for d and returns it in a fragment ready to mount.
func (b *Builder) Build(d Descriptor) (*htmldom.Fragment, error) {
	if d.Name == "" || d.Tag == "" {
		return nil, fmt.Errorf("%w: name and tag are required", ErrInvalidDescriptor)
	}

	el := b.doc.CreateElement(d.Tag)
	for name, value := range d.Attr {
		el.SetAttr(name, value)
	}
	el.SetAttr(Attr, d.Name)
	el.ClassList().Add(d.Classes...)
	if d.Text != "" {
		el.SetText(d.Text)
	}

	b.mu.Lock()
	b.blueprints[d.Name] = d
	b.mu.Unlock()

	return htmldom.NewFragment(el), nil
}

// Lookup returns the descriptor recorded under name.
func (b *Builder) Lookup(name string) (Descriptor, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	d, ok := b.blueprints[name]
	return d, ok
}

// SetState removes the classes of every state of el's descriptor, then adds
// the classes of state.
func (b *Builder) SetState(el dom.Element, state string) error {
	name, _ := el.Attr(Attr)
	d, ok := b.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBlueprint, name)
	}
	classes, ok := d.States[state]
	if !ok {
		return fmt.Errorf("%w: %q has no state %q", ErrUnknownState, name, state)
	}

	cl := el.ClassList()
	for _, s := range d.States {
		cl.Remove(s...)
	}
	cl.Add(classes...)
	return nil
}
