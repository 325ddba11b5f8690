package blueprint

import (
	"errors"
	"reflect"
	"testing"

	"github.com/dshills/minui/internal/dom/htmldom"
)

func toast() Descriptor {
	return Descriptor{
		Name:    "toast",
		Tag:     "DIV",
		Attr:    map[string]string{"id": "note", "role": "status"},
		Classes: []string{"toast", "small"},
		States: map[string][]string{
			"shown":  {"visible", "fade-in"},
			"hidden": {"gone"},
		},
		Text: "Saved",
	}
}

func TestBuild(t *testing.T) {
	doc := htmldom.New()
	b := NewBuilder(doc)

	frag, err := b.Build(toast())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if frag.Len() != 1 {
		t.Fatalf("expected 1 element, got %d", frag.Len())
	}

	el := frag.Elements()[0]
	if el.TagName() != "DIV" {
		t.Errorf("expected tag DIV, got %s", el.TagName())
	}
	if el.ID() != "note" {
		t.Errorf("expected id note, got %q", el.ID())
	}
	if v, _ := el.Attr("role"); v != "status" {
		t.Errorf("expected role status, got %q", v)
	}
	if v, _ := el.Attr(Attr); v != "toast" {
		t.Errorf("expected %s=toast, got %q", Attr, v)
	}
	if got := el.ClassList().Values(); !reflect.DeepEqual(got, []string{"toast", "small"}) {
		t.Errorf("expected classes [toast small], got %v", got)
	}
	if el.Text() != "Saved" {
		t.Errorf("expected text Saved, got %q", el.Text())
	}
	if _, ok := b.Lookup("toast"); !ok {
		t.Error("expected descriptor to be recorded")
	}
}

func TestBuild_Invalid(t *testing.T) {
	b := NewBuilder(htmldom.New())

	tests := []struct {
		name string
		d    Descriptor
	}{
		{"no name", Descriptor{Tag: "div"}},
		{"no tag", Descriptor{Name: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := b.Build(tt.d); !errors.Is(err, ErrInvalidDescriptor) {
				t.Errorf("expected ErrInvalidDescriptor, got %v", err)
			}
		})
	}
}

func TestSetState(t *testing.T) {
	doc := htmldom.New()
	b := NewBuilder(doc)
	frag, _ := b.Build(toast())
	el := frag.MountTo(doc.Body())[0]

	if err := b.SetState(el, "shown"); err != nil {
		t.Fatalf("SetState(shown) error = %v", err)
	}
	if got := el.ClassList().Values(); !reflect.DeepEqual(got, []string{"toast", "small", "visible", "fade-in"}) {
		t.Errorf("unexpected classes after shown: %v", got)
	}

	if err := b.SetState(el, "hidden"); err != nil {
		t.Fatalf("SetState(hidden) error = %v", err)
	}
	if got := el.ClassList().Values(); !reflect.DeepEqual(got, []string{"toast", "small", "gone"}) {
		t.Errorf("unexpected classes after hidden: %v", got)
	}
}

func TestSetState_Errors(t *testing.T) {
	doc := htmldom.New()
	b := NewBuilder(doc)
	frag, _ := b.Build(toast())
	el := frag.Elements()[0]

	if err := b.SetState(el, "blinking"); !errors.Is(err, ErrUnknownState) {
		t.Errorf("expected ErrUnknownState, got %v", err)
	}

	plain := doc.CreateElement("span")
	if err := b.SetState(plain, "shown"); !errors.Is(err, ErrUnknownBlueprint) {
		t.Errorf("expected ErrUnknownBlueprint, got %v", err)
	}
}

func TestStateNames(t *testing.T) {
	if got := toast().StateNames(); !reflect.DeepEqual(got, []string{"hidden", "shown"}) {
		t.Errorf("expected [hidden shown], got %v", got)
	}
}
