package script

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/dshills/minui/internal/blueprint"
	"github.com/dshills/minui/internal/delegate"
	"github.com/dshills/minui/internal/dom"
	"github.com/dshills/minui/internal/dom/htmldom"
	"github.com/dshills/minui/internal/event"
)

const page = `<!DOCTYPE html><html><body>
<ul id="list"><li id="one" class="item">One</li><li id="two" class="item">Two</li></ul>
<div class="panel" id="p1"></div>
</body></html>`

func setup(t *testing.T, opts ...Option) (*htmldom.Document, *delegate.UI, *Engine) {
	t.Helper()
	doc, err := htmldom.ParseString(page)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	ui := delegate.NewUI(doc)
	eng, err := New(ui, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = eng.Close() })
	return doc, ui, eng
}

func mustLoad(t *testing.T, eng *Engine, src string) {
	t.Helper()
	if err := eng.Load("test.lua", src); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func mustHandler(t *testing.T, eng *Engine, fn string) event.Handler {
	t.Helper()
	h, err := eng.Handler(fn)
	if err != nil {
		t.Fatalf("Handler(%q) error = %v", fn, err)
	}
	return h
}

func byID(doc *htmldom.Document, id string) *htmldom.Element {
	return doc.GetElementByID(id).(*htmldom.Element)
}

func TestHandler_ReceivesEventTable(t *testing.T) {
	doc, _, eng := setup(t)
	mustLoad(t, eng, `
function inspect(ev)
    seen_type = ev.type
    seen_tag = ev.target.tag
    seen_id = ev.target.id
    seen_class = ev.target.classes[1]
    seen_key = ev.detail.key
end`)

	h := mustHandler(t, eng, "inspect")
	ev := dom.NewEvent(dom.KeyUp, byID(doc, "one"), map[string]any{"key": "Enter"})
	if err := h.Handle(context.Background(), ev); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	want := map[string]any{
		"seen_type":  "keyup",
		"seen_tag":   "li",
		"seen_id":    "one",
		"seen_class": "item",
		"seen_key":   "Enter",
	}
	for name, v := range want {
		if got := eng.Global(name); got != v {
			t.Errorf("%s: expected %v, got %v", name, v, got)
		}
	}
}

func TestHandler_Named(t *testing.T) {
	_, _, eng := setup(t)
	mustLoad(t, eng, `function save(ev) end`)

	if name := event.NameOf(mustHandler(t, eng, "save")); name != "save" {
		t.Errorf("expected handler name save, got %q", name)
	}
}

func TestHandler_NotFunction(t *testing.T) {
	_, _, eng := setup(t)
	mustLoad(t, eng, `value = 3`)

	for _, fn := range []string{"value", "missing"} {
		if _, err := eng.Handler(fn); !errors.Is(err, ErrNotFunction) {
			t.Errorf("Handler(%q): expected ErrNotFunction, got %v", fn, err)
		}
	}
}

func TestHandler_DelegatedToggle(t *testing.T) {
	doc, ui, eng := setup(t)
	mustLoad(t, eng, `
function select_item(ev)
    ui.toggle("selected")
end`)

	reg, err := ui.On(dom.Click, delegate.OnQuery("ul > li"), mustHandler(t, eng, "select_item"))
	if err != nil {
		t.Fatalf("On() error = %v", err)
	}
	if reg.Outcome != event.OutcomeRegistered {
		t.Fatalf("expected registered, got %s", reg.Outcome)
	}

	two := byID(doc, "two")
	doc.Dispatch(context.Background(), two, dom.Click, nil)
	if !two.ClassList().Contains("selected") {
		t.Error("expected #two to be selected")
	}
	if byID(doc, "one").ClassList().Contains("selected") {
		t.Error("expected #one to be untouched")
	}

	doc.Dispatch(context.Background(), two, dom.Click, nil)
	if two.ClassList().Contains("selected") {
		t.Error("expected second click to toggle off")
	}
}

func TestHandler_LuaError(t *testing.T) {
	doc, _, eng := setup(t)
	mustLoad(t, eng, `function broken(ev) error("boom") end`)

	err := mustHandler(t, eng, "broken").Handle(context.Background(), dom.NewEvent(dom.Click, byID(doc, "one"), nil))

	var serr *Error
	if !errors.As(err, &serr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if serr.Func != "broken" {
		t.Errorf("expected func broken, got %s", serr.Func)
	}
}

func TestHandler_Timeout(t *testing.T) {
	doc, _, eng := setup(t, WithTimeout(20*time.Millisecond))
	mustLoad(t, eng, `function spin(ev) while true do end end`)

	start := time.Now()
	err := mustHandler(t, eng, "spin").Handle(context.Background(), dom.NewEvent(dom.Click, byID(doc, "one"), nil))
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Errorf("expected handler to stop near its deadline, took %v", time.Since(start))
	}

	// The state stays usable after a timeout.
	mustLoad(t, eng, `function ok(ev) done = true end`)
	if err := mustHandler(t, eng, "ok").Handle(context.Background(), dom.NewEvent(dom.Click, nil, nil)); err != nil {
		t.Errorf("expected follow-up call to succeed, got %v", err)
	}
}

func TestHandler_CallLimit(t *testing.T) {
	doc, _, eng := setup(t, WithCallLimit(3))
	mustLoad(t, eng, `
function chatty(ev)
    for i = 1, 10 do ui.log("tick", tostring(i)) end
end
function quiet(ev)
    ui.log("once")
end`)

	ev := dom.NewEvent(dom.Click, byID(doc, "one"), nil)
	if err := mustHandler(t, eng, "chatty").Handle(context.Background(), ev); !errors.Is(err, ErrCallLimit) {
		t.Errorf("expected ErrCallLimit, got %v", err)
	}
	// The count restarts for every call.
	if err := mustHandler(t, eng, "quiet").Handle(context.Background(), ev); err != nil {
		t.Errorf("expected quiet handler to succeed, got %v", err)
	}
}

func TestHandler_DocumentEventHasNoTarget(t *testing.T) {
	_, _, eng := setup(t)
	mustLoad(t, eng, `
function loaded(ev) had_target = ev.target ~= nil end
function toggler(ev) ui.toggle("x") end`)

	ev := dom.NewEvent(dom.DOMContentLoaded, nil, nil)
	if err := mustHandler(t, eng, "loaded").Handle(context.Background(), ev); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if got := eng.Global("had_target"); got != false {
		t.Errorf("expected no target, got %v", got)
	}
	if err := mustHandler(t, eng, "toggler").Handle(context.Background(), ev); err == nil {
		t.Error("expected toggle without target to fail")
	}
}

func TestHandler_Stop(t *testing.T) {
	doc, _, eng := setup(t)
	mustLoad(t, eng, `function halt(ev) ui.stop() end`)

	ev := dom.NewEvent(dom.Click, byID(doc, "one"), nil)
	if err := mustHandler(t, eng, "halt").Handle(context.Background(), ev); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !ev.PropagationStopped() {
		t.Error("expected propagation to be stopped")
	}
}

func TestHandler_BlueprintState(t *testing.T) {
	doc, err := htmldom.ParseString(page)
	if err != nil {
		t.Fatal(err)
	}
	builder := blueprint.NewBuilder(doc)
	frag, err := builder.Build(blueprint.Descriptor{
		Name:   "badge",
		Tag:    "span",
		Attr:   map[string]string{"id": "badge"},
		States: map[string][]string{"on": {"lit"}, "off": {"dim"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	el := frag.MountTo(doc.Body())[0]

	eng, err := New(delegate.NewUI(doc), WithBlueprints(builder))
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()
	mustLoad(t, eng, `
function light(ev) ui.state("on") end
function bogus(ev) ui.state("sideways") end`)

	ev := dom.NewEvent(dom.Click, el, nil)
	if err := mustHandler(t, eng, "light").Handle(context.Background(), ev); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !el.ClassList().Contains("lit") {
		t.Errorf("expected lit class, got %v", el.ClassList().Values())
	}
	if err := mustHandler(t, eng, "bogus").Handle(context.Background(), ev); err == nil {
		t.Error("expected unknown state to fail")
	}
}

func TestHandler_LoadStates(t *testing.T) {
	doc, ui, eng := setup(t)
	ui.DefineLoadState(".panel", delegate.LoadState{
		Default: []string{"panel"},
		Loading: []string{"spinner"},
		Success: []string{"panel", "ok"},
		Error:   []string{"panel", "failed"},
	})
	mustLoad(t, eng, `
function begin(ev) ui.start_load(".panel") end
function finish(ev) ui.stop_load(".panel", ev.detail.outcome) end`)

	panel := byID(doc, "p1")
	ctx := context.Background()
	if err := mustHandler(t, eng, "begin").Handle(ctx, dom.NewEvent(dom.Click, panel, nil)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if got := panel.ClassList().Values(); !reflect.DeepEqual(got, []string{"spinner"}) {
		t.Errorf("expected [spinner], got %v", got)
	}

	ev := dom.NewEvent(dom.Click, panel, map[string]any{"outcome": "success"})
	if err := mustHandler(t, eng, "finish").Handle(ctx, ev); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if got := panel.ClassList().Values(); !reflect.DeepEqual(got, []string{"panel", "ok"}) {
		t.Errorf("expected [panel ok], got %v", got)
	}

	bad := dom.NewEvent(dom.Click, panel, map[string]any{"outcome": "maybe"})
	if err := mustHandler(t, eng, "finish").Handle(ctx, bad); err == nil {
		t.Error("expected unknown outcome to fail")
	}
}

func TestSandbox(t *testing.T) {
	_, _, eng := setup(t)
	mustLoad(t, eng, `
sandboxed = os == nil and io == nil and debug == nil and package == nil
    and dofile == nil and loadfile == nil and load == nil and require == nil
has_string = string.upper("a") == "A"`)

	if eng.Global("sandboxed") != true {
		t.Error("expected unsafe libraries to be unavailable")
	}
	if eng.Global("has_string") != true {
		t.Error("expected string library to be available")
	}
}

func TestFunctions(t *testing.T) {
	_, _, eng := setup(t)
	mustLoad(t, eng, `
function b(ev) end
function a(ev) end
local function hidden() end
x = 1`)

	if got := eng.Functions(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("expected [a b], got %v", got)
	}
}

func TestLoad_SyntaxError(t *testing.T) {
	_, _, eng := setup(t)
	if err := eng.Load("bad.lua", "function ("); err == nil {
		t.Error("expected syntax error")
	}
}

func TestClosed(t *testing.T) {
	_, _, eng := setup(t)
	mustLoad(t, eng, `function f(ev) end`)
	h := mustHandler(t, eng, "f")
	_ = eng.Close()

	if err := eng.Load("x", ""); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Load, got %v", err)
	}
	if _, err := eng.Handler("f"); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from Handler, got %v", err)
	}
	if err := h.Handle(context.Background(), dom.NewEvent(dom.Click, nil, nil)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed from handler, got %v", err)
	}
	if err := eng.Close(); err != nil {
		t.Errorf("expected second Close to succeed, got %v", err)
	}
}
