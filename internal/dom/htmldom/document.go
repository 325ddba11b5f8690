// Package htmldom implements the dom host model on top of golang.org/x/net/html.
//
// A Document owns a parsed node tree, hands out stable element handles (one
// *Element per node, so handles compare by identity) and delivers events by
// calling listeners on the target and then on every ancestor up to the
// document, the way a browser bubbles an event.
package htmldom

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/minui/internal/dom"
)

// registered is a listener attached to a node.
type registered struct {
	id       dom.ListenerID
	typ      dom.EventType
	listener dom.Listener
}

// Document is an HTML document with event delivery.
type Document struct {
	mu sync.Mutex

	root     *html.Node
	elements map[*html.Node]*Element

	listeners map[*html.Node][]registered
	owners    map[dom.ListenerID]*html.Node
	nextID    dom.ListenerID
}

var _ dom.Document = (*Document)(nil)

// Parse parses an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return newDocument(root), nil
}

// ParseString parses an HTML document held in a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// New creates an empty document with html, head and body elements.
func New() *Document {
	doc, err := ParseString("<!DOCTYPE html><html><head></head><body></body></html>")
	if err != nil {
		// The literal above always parses.
		panic(err)
	}
	return doc
}

func newDocument(root *html.Node) *Document {
	return &Document{
		root:      root,
		elements:  make(map[*html.Node]*Element),
		listeners: make(map[*html.Node][]registered),
		owners:    make(map[dom.ListenerID]*html.Node),
	}
}

// Root returns the underlying document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Element returns the handle for an element node, or nil for other node types.
func (d *Document) Element(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.elements[n]; ok {
		return el
	}
	el := &Element{doc: d, n: n}
	d.elements[n] = el
	return el
}

// Body returns the body element, or nil if the document has none.
func (d *Document) Body() *Element {
	var body *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Body {
			body = n
			return false
		}
		return true
	})
	return d.Element(body)
}

// GetElementByID returns the first element with the given id.
func (d *Document) GetElementByID(id string) dom.Element {
	if id == "" {
		return nil
	}
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	return d.Element(found)
}

// GetElementsByClassName returns every element carrying the class.
func (d *Document) GetElementsByClassName(class string) []dom.Element {
	if class == "" {
		return nil
	}
	var result []dom.Element
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && hasClass(n, class) {
			result = append(result, d.Element(n))
		}
		return true
	})
	return result
}

// QuerySelectorAll returns every element matching the CSS selector group.
func (d *Document) QuerySelectorAll(query string) ([]dom.Element, error) {
	sel, err := cascadia.ParseGroup(query)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", query, err)
	}
	nodes := cascadia.QueryAll(d.root, sel)
	result := make([]dom.Element, 0, len(nodes))
	for _, n := range nodes {
		result = append(result, d.Element(n))
	}
	return result, nil
}

// QuerySelector returns the first element matching the selector, or nil.
func (d *Document) QuerySelector(query string) (*Element, error) {
	sel, err := cascadia.ParseGroup(query)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", query, err)
	}
	return d.Element(cascadia.Query(d.root, sel)), nil
}

// AddEventListener attaches a listener to the document itself.
func (d *Document) AddEventListener(t dom.EventType, l dom.Listener) dom.ListenerID {
	return d.addListener(d.root, t, l)
}

// RemoveEventListener detaches a listener from the document.
func (d *Document) RemoveEventListener(id dom.ListenerID) bool {
	return d.removeListener(d.root, id)
}

// ListenerCount returns the number of listeners attached anywhere in the document.
func (d *Document) ListenerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.owners)
}

func (d *Document) addListener(n *html.Node, t dom.EventType, l dom.Listener) dom.ListenerID {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	d.listeners[n] = append(d.listeners[n], registered{id: id, typ: t, listener: l})
	d.owners[id] = n
	return id
}

func (d *Document) removeListener(n *html.Node, id dom.ListenerID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.owners[id] != n {
		return false
	}
	regs := d.listeners[n]
	for i, r := range regs {
		if r.id == id {
			d.listeners[n] = append(regs[:i:i], regs[i+1:]...)
			break
		}
	}
	if len(d.listeners[n]) == 0 {
		delete(d.listeners, n)
	}
	delete(d.owners, id)
	return true
}

// snapshot returns the listeners of type t on n. Listeners added while the
// returned slice is being delivered are not part of it.
func (d *Document) snapshot(n *html.Node, t dom.EventType) []dom.Listener {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []dom.Listener
	for _, r := range d.listeners[n] {
		if r.typ == t {
			out = append(out, r.listener)
		}
	}
	return out
}

// Dispatch fires an event at target and bubbles it up to the document.
// A nil target fires the event on the document only.
func (d *Document) Dispatch(ctx context.Context, target *Element, t dom.EventType, detail map[string]any) *dom.Event {
	var ev *dom.Event
	var path []*html.Node
	if target != nil {
		ev = dom.NewEvent(t, target, detail)
		for n := target.n; n != nil; n = n.Parent {
			path = append(path, n)
		}
		if path[len(path)-1] != d.root {
			// Detached subtree: deliver along the subtree, then to the document.
			path = append(path, d.root)
		}
	} else {
		ev = dom.NewEvent(t, nil, detail)
		path = []*html.Node{d.root}
	}

	for _, n := range path {
		listeners := d.snapshot(n, t)
		if len(listeners) == 0 {
			continue
		}
		if n == d.root {
			ev.CurrentTarget = d
		} else {
			ev.CurrentTarget = d.Element(n)
		}
		for _, l := range listeners {
			l(ctx, ev)
		}
		if ev.PropagationStopped() {
			break
		}
	}
	ev.CurrentTarget = nil
	return ev
}

// FireLoaded delivers DOMContentLoaded to the document's listeners.
func (d *Document) FireLoaded(ctx context.Context) *dom.Event {
	return d.Dispatch(ctx, nil, dom.DOMContentLoaded, nil)
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

// walk visits n and its descendants depth-first in document order until
// visit returns false.
func walk(n *html.Node, visit func(*html.Node) bool) bool {
	if !visit(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, visit) {
			return false
		}
	}
	return true
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
