package htmldom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/minui/internal/dom"
)

// Element is a handle to an element node.
type Element struct {
	doc *Document
	n   *html.Node
}

var _ dom.Element = (*Element)(nil)

// Node returns the underlying node.
func (e *Element) Node() *html.Node {
	return e.n
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}

// TagName returns the upper-case tag name, as browsers report it for HTML.
func (e *Element) TagName() string {
	return cases.Upper(language.Und).String(e.n.Data)
}

// ID returns the id attribute.
func (e *Element) ID() string {
	return attr(e.n, "id")
}

// Attr returns an attribute value.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, replacing any existing value.
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr removes an attribute.
func (e *Element) RemoveAttr(name string) {
	attrs := e.n.Attr[:0]
	for _, a := range e.n.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		attrs = append(attrs, a)
	}
	e.n.Attr = attrs
}

// ClassList returns the live class set.
func (e *Element) ClassList() dom.ClassList {
	return classList{el: e}
}

// ParentElement returns the parent element, or nil when the parent is the
// document node or the element is detached.
func (e *Element) ParentElement() dom.Element {
	p := e.n.Parent
	if p == nil || p.Type != html.ElementNode {
		return nil
	}
	return e.doc.Element(p)
}

// PreviousElementSibling returns the closest preceding element sibling.
func (e *Element) PreviousElementSibling() dom.Element {
	for s := e.n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return e.doc.Element(s)
		}
	}
	return nil
}

// Children returns the element children in order.
func (e *Element) Children() []*Element {
	var out []*Element
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, e.doc.Element(c))
		}
	}
	return out
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	var b strings.Builder
	walk(e.n, func(n *html.Node) bool {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		return true
	})
	return b.String()
}

// SetText replaces the element's children with a single text node.
func (e *Element) SetText(text string) {
	for c := e.n.FirstChild; c != nil; {
		next := c.NextSibling
		e.n.RemoveChild(c)
		c = next
	}
	if text != "" {
		e.n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
}

// AppendChild moves child to the end of e's children.
func (e *Element) AppendChild(child *Element) {
	if child.n.Parent != nil {
		child.n.Parent.RemoveChild(child.n)
	}
	e.n.AppendChild(child.n)
}

// AddEventListener attaches a listener to the element.
func (e *Element) AddEventListener(t dom.EventType, l dom.Listener) dom.ListenerID {
	return e.doc.addListener(e.n, t, l)
}

// RemoveEventListener detaches a listener from the element.
func (e *Element) RemoveEventListener(id dom.ListenerID) bool {
	return e.doc.removeListener(e.n, id)
}

// String returns a short description such as <li#first.item.active>.
func (e *Element) String() string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(e.n.Data)
	if id := e.ID(); id != "" {
		b.WriteString("#")
		b.WriteString(id)
	}
	for _, c := range e.ClassList().Values() {
		b.WriteString(".")
		b.WriteString(c)
	}
	b.WriteString(">")
	return b.String()
}

// CreateElement creates a detached element owned by the document.
func (d *Document) CreateElement(tag string) *Element {
	tag = cases.Lower(language.Und).String(strings.TrimSpace(tag))
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	return d.Element(n)
}

// classList implements dom.ClassList over the class attribute.
type classList struct {
	el *Element
}

func (c classList) Values() []string {
	v, _ := c.el.Attr("class")
	return strings.Fields(v)
}

func (c classList) set(classes []string) {
	if len(classes) == 0 {
		c.el.RemoveAttr("class")
		return
	}
	c.el.SetAttr("class", strings.Join(classes, " "))
}

func (c classList) Contains(class string) bool {
	for _, v := range c.Values() {
		if v == class {
			return true
		}
	}
	return false
}

func (c classList) Add(classes ...string) {
	current := c.Values()
	for _, class := range classes {
		if class == "" || contains(current, class) {
			continue
		}
		current = append(current, class)
	}
	c.set(current)
}

func (c classList) Remove(classes ...string) {
	current := c.Values()
	kept := current[:0]
	for _, v := range current {
		if !contains(classes, v) {
			kept = append(kept, v)
		}
	}
	c.set(kept)
}

func (c classList) Toggle(class string) bool {
	if c.Contains(class) {
		c.Remove(class)
		return false
	}
	c.Add(class)
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
