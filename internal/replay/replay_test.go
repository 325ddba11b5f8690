package replay

import (
	"context"
	"errors"
	"io/fs"
	"testing"

	"github.com/dshills/minui/internal/delegate"
	"github.com/dshills/minui/internal/dom"
	"github.com/dshills/minui/internal/dom/htmldom"
)

const page = `<!DOCTYPE html><html><body>
<ul><li id="one" class="item">One</li><li id="two" class="item">Two</li></ul>
<input id="search">
</body></html>`

const events = `{"events":[
  {"type":"DOMContentLoaded"},
  {"type":"click","target":"ul > li"},
  {"type":"keyup","target":"#search","detail":{"key":"Enter","code":13}},
  {"type":"wheel","target":"#one"},
  {"type":"click","target":"#missing"},
  {"type":"click","target":"li:nth-child(2)"}
]}`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(events))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(s.Steps) != 6 {
		t.Fatalf("expected 6 steps, got %d", len(s.Steps))
	}
	if !s.Steps[0].OnDocument() {
		t.Error("expected step 0 to fire on the document")
	}
	if s.Steps[1].Target != "ul > li" {
		t.Errorf("expected target 'ul > li', got %q", s.Steps[1].Target)
	}
	if s.Steps[2].Detail["key"] != "Enter" || s.Steps[2].Detail["code"] != float64(13) {
		t.Errorf("unexpected detail %v", s.Steps[2].Detail)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", `{"events":[`},
		{"events not array", `{"events":{}}`},
		{"event not object", `{"events":[1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.input)); !errors.Is(err, ErrInvalidJSON) {
				t.Errorf("expected ErrInvalidJSON, got %v", err)
			}
		})
	}

	s, err := Parse([]byte(`{}`))
	if err != nil || len(s.Steps) != 0 {
		t.Errorf("expected empty script, got %v, %v", s, err)
	}
}

type memFS map[string]string

func (m memFS) Open(name string) (fs.File, error) { return nil, fs.ErrNotExist }

func (m memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(data), nil
}

func (m memFS) Stat(path string) (fs.FileInfo, error) { return nil, fs.ErrNotExist }

func TestParseFile(t *testing.T) {
	fsys := memFS{"/e.json": events, "/bad.json": "nope"}

	if s, err := ParseFile(fsys, "/e.json"); err != nil || len(s.Steps) != 6 {
		t.Errorf("expected 6 steps, got %v, %v", s, err)
	}
	if _, err := ParseFile(fsys, "/bad.json"); !errors.Is(err, ErrInvalidJSON) {
		t.Errorf("expected ErrInvalidJSON, got %v", err)
	}
	if _, err := ParseFile(fsys, "/none.json"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected ErrNotExist, got %v", err)
	}
}

func TestPlay(t *testing.T) {
	doc, err := htmldom.ParseString(page)
	if err != nil {
		t.Fatal(err)
	}
	ui := delegate.NewUI(doc)

	var loaded, clicked []string
	var keys []any
	if _, err := ui.Loaded(func() { loaded = append(loaded, "x") }); err != nil {
		t.Fatal(err)
	}
	if _, err := ui.On(dom.Click, delegate.OnClass("item"), func(ev *dom.Event) {
		clicked = append(clicked, ev.Target.ID())
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := ui.On(dom.KeyUp, delegate.OnID("search"), func(ev *dom.Event) {
		keys = append(keys, ev.Detail["key"])
	}); err != nil {
		t.Fatal(err)
	}

	s, _ := Parse([]byte(events))
	report := NewPlayer(doc, WithStats(ui.Dispatcher())).Play(context.Background(), s)

	if len(report.Steps) != 6 {
		t.Fatalf("expected 6 results, got %d", len(report.Steps))
	}
	if report.Delivered() != 4 || report.Skipped() != 2 {
		t.Errorf("expected 4 delivered and 2 skipped, got %d and %d", report.Delivered(), report.Skipped())
	}
	if !errors.Is(report.Steps[3].Err, ErrUnknownType) {
		t.Errorf("expected ErrUnknownType for step 3, got %v", report.Steps[3].Err)
	}
	if !errors.Is(report.Steps[4].Err, ErrUnresolved) {
		t.Errorf("expected ErrUnresolved for step 4, got %v", report.Steps[4].Err)
	}

	if len(loaded) != 1 {
		t.Errorf("expected loaded once, got %d", len(loaded))
	}
	if len(clicked) != 2 || clicked[0] != "one" || clicked[1] != "two" {
		t.Errorf("expected clicks on [one two], got %v", clicked)
	}
	if len(keys) != 1 || keys[0] != "Enter" {
		t.Errorf("expected Enter key, got %v", keys)
	}

	if report.Steps[1].Handled != 1 {
		t.Errorf("expected 1 handler for step 1, got %d", report.Steps[1].Handled)
	}
	if report.Steps[0].Target != DocumentTarget {
		t.Errorf("expected document target, got %q", report.Steps[0].Target)
	}
}

func TestPlay_HandlerFailures(t *testing.T) {
	doc, _ := htmldom.ParseString(page)
	ui := delegate.NewUI(doc)
	_, _ = ui.On(dom.Click, delegate.OnClass("item"), func(context.Context, *dom.Event) error {
		return errors.New("nope")
	})

	s, _ := Parse([]byte(`{"events":[{"type":"click","target":"#one"}]}`))
	report := NewPlayer(doc, WithStats(ui.Dispatcher())).Play(context.Background(), s)

	if got := report.Steps[0]; !got.OK() || got.Failed != 1 {
		t.Errorf("expected delivered step with one failure, got %s", got)
	}
}

func TestPlay_Cancelled(t *testing.T) {
	doc, _ := htmldom.ParseString(page)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, _ := Parse([]byte(`{"events":[{"type":"click","target":"#one"},{"type":"click","target":"#two"}]}`))
	report := NewPlayer(doc).Play(ctx, s)

	for _, r := range report.Steps {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", r.Err)
		}
	}
}
