package htmldom

import (
	"context"
	"strings"
	"testing"

	"github.com/dshills/minui/internal/dom"
)

const testPage = `<!DOCTYPE html>
<html><body>
<nav id="menu" class="nav main">
  <ul>
    <li id="first" class="item">One</li>
    <li id="second" class="item active">Two</li>
  </ul>
</nav>
<section><div><p id="para">text</p></div></section>
</body></html>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := ParseString(s)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func TestDocument_GetElementByID(t *testing.T) {
	doc := mustParse(t, testPage)

	el := doc.GetElementByID("second")
	if el == nil {
		t.Fatal("expected element #second")
	}
	if el.TagName() != "LI" {
		t.Errorf("expected tag LI, got %s", el.TagName())
	}
	if doc.GetElementByID("missing") != nil {
		t.Error("expected nil for missing id")
	}
	if doc.GetElementByID("") != nil {
		t.Error("expected nil for empty id")
	}
}

func TestDocument_HandleIdentity(t *testing.T) {
	doc := mustParse(t, testPage)

	a := doc.GetElementByID("first")
	b := doc.GetElementsByClassName("item")[0]
	if a != b {
		t.Error("expected the same handle for the same node")
	}
}

func TestDocument_GetElementsByClassName(t *testing.T) {
	doc := mustParse(t, testPage)

	items := doc.GetElementsByClassName("item")
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID() != "first" || items[1].ID() != "second" {
		t.Errorf("expected document order, got %s, %s", items[0].ID(), items[1].ID())
	}
	if got := doc.GetElementsByClassName("nope"); len(got) != 0 {
		t.Errorf("expected no elements, got %d", len(got))
	}
}

func TestDocument_QuerySelectorAll(t *testing.T) {
	doc := mustParse(t, testPage)

	els, err := doc.QuerySelectorAll("ul > li.active")
	if err != nil {
		t.Fatalf("QuerySelectorAll() error = %v", err)
	}
	if len(els) != 1 || els[0].ID() != "second" {
		t.Errorf("expected [#second], got %v", els)
	}

	if _, err := doc.QuerySelectorAll("li[[["); err == nil {
		t.Error("expected error for invalid selector")
	}
}

func TestElement_Structure(t *testing.T) {
	doc := mustParse(t, testPage)

	second := doc.GetElementByID("second")
	prev := second.PreviousElementSibling()
	if prev == nil || prev.ID() != "first" {
		t.Fatalf("expected previous sibling #first, got %v", prev)
	}
	if prev.PreviousElementSibling() != nil {
		t.Error("expected no previous sibling for #first")
	}

	parent := second.ParentElement()
	if parent == nil || parent.TagName() != "UL" {
		t.Fatalf("expected parent UL, got %v", parent)
	}

	html := doc.Body().ParentElement()
	if html == nil || html.ParentElement() != nil {
		t.Error("expected <html> to have no parent element")
	}
}

func TestClassList(t *testing.T) {
	doc := mustParse(t, testPage)
	el := doc.GetElementByID("first")
	cl := el.ClassList()

	if !cl.Contains("item") {
		t.Error("expected class item")
	}
	cl.Add("a", "b", "item")
	if got := strings.Join(cl.Values(), " "); got != "item a b" {
		t.Errorf("expected 'item a b', got %q", got)
	}
	if cl.Toggle("a") {
		t.Error("expected Toggle to remove a")
	}
	if !cl.Toggle("c") {
		t.Error("expected Toggle to add c")
	}
	cl.Remove("item", "b", "c")
	if len(cl.Values()) != 0 {
		t.Errorf("expected empty class list, got %v", cl.Values())
	}
	if _, ok := el.Attr("class"); ok {
		t.Error("expected class attribute to be removed")
	}
}

func TestDispatch_Bubbles(t *testing.T) {
	doc := mustParse(t, testPage)
	ctx := context.Background()

	var order []string
	record := func(name string) dom.Listener {
		return func(ctx context.Context, ev *dom.Event) {
			order = append(order, name)
		}
	}

	li := doc.GetElementByID("second")
	li.AddEventListener(dom.Click, record("li"))
	doc.GetElementByID("menu").AddEventListener(dom.Click, record("nav"))
	doc.AddEventListener(dom.Click, record("document"))
	doc.AddEventListener(dom.KeyUp, record("keyup"))

	ev := doc.Dispatch(ctx, li.(*Element), dom.Click, nil)

	want := []string{"li", "nav", "document"}
	if strings.Join(order, ",") != strings.Join(want, ",") {
		t.Errorf("expected order %v, got %v", want, order)
	}
	if ev.Target != li {
		t.Error("expected target to be the li element")
	}
	if ev.CurrentTarget != nil {
		t.Error("expected current target to be cleared after dispatch")
	}
}

func TestDispatch_StopPropagation(t *testing.T) {
	doc := mustParse(t, testPage)
	ctx := context.Background()

	reached := false
	li := doc.GetElementByID("first").(*Element)
	li.AddEventListener(dom.Click, func(ctx context.Context, ev *dom.Event) {
		ev.StopPropagation()
	})
	doc.AddEventListener(dom.Click, func(ctx context.Context, ev *dom.Event) {
		reached = true
	})

	doc.Dispatch(ctx, li, dom.Click, nil)
	if reached {
		t.Error("expected propagation to stop before the document")
	}
}

func TestDispatch_ListenerAddedDuringDispatch(t *testing.T) {
	doc := mustParse(t, testPage)
	ctx := context.Background()

	calls := 0
	doc.AddEventListener(dom.Click, func(ctx context.Context, ev *dom.Event) {
		calls++
		doc.AddEventListener(dom.Click, func(ctx context.Context, ev *dom.Event) {
			calls++
		})
	})

	doc.Dispatch(ctx, doc.Body(), dom.Click, nil)
	if calls != 1 {
		t.Errorf("expected 1 call during first dispatch, got %d", calls)
	}
}

func TestRemoveEventListener(t *testing.T) {
	doc := mustParse(t, testPage)
	li := doc.GetElementByID("first")

	id := li.AddEventListener(dom.Click, func(ctx context.Context, ev *dom.Event) {})
	if doc.ListenerCount() != 1 {
		t.Fatalf("expected 1 listener, got %d", doc.ListenerCount())
	}
	if doc.RemoveEventListener(id) {
		t.Error("expected document not to own the element's listener")
	}
	if !li.RemoveEventListener(id) {
		t.Error("expected RemoveEventListener to succeed")
	}
	if li.RemoveEventListener(id) {
		t.Error("expected second RemoveEventListener to fail")
	}
	if doc.ListenerCount() != 0 {
		t.Errorf("expected 0 listeners, got %d", doc.ListenerCount())
	}
}

func TestFragment_MountTo(t *testing.T) {
	doc := New()
	btn := doc.CreateElement("BUTTON")
	btn.SetText("Save")
	frag := NewFragment(btn)

	mounted := frag.MountTo(doc.Body())
	if len(mounted) != 1 || frag.Len() != 0 {
		t.Fatalf("expected fragment to be consumed, got mounted=%d len=%d", len(mounted), frag.Len())
	}
	if btn.ParentElement() != dom.Element(doc.Body()) {
		t.Error("expected button to be a child of body")
	}
	if !strings.Contains(doc.String(), "<button>Save</button>") {
		t.Errorf("expected rendered button, got %s", doc.String())
	}
}
