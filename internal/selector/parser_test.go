package selector

import (
	"sync"
	"testing"
)

func tags(kv ...any) map[string]Relation {
	m := make(map[string]Relation)
	for i := 0; i < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1].(Relation)
	}
	return m
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		sel     string
		classes []string
		tags    map[string]Relation
	}{
		{"plain tag", "li", []string{}, tags("li", Relation{Kind: Present})},
		{"upper-case tag", "LI", []string{}, tags("li", Relation{Kind: Present})},
		{"padded tag", "  button ", []string{}, tags("button", Relation{Kind: Present})},
		{"parent", "ul>li", []string{}, tags("li", Relation{Kind: Parent, Tag: "ul"})},
		{"parent spaced", "ul > li", []string{}, tags("li", Relation{Kind: Parent, Tag: "ul"})},
		{"adjacent", "a+b", []string{}, tags("b", Relation{Kind: PrevSibling, Tag: "a"})},
		{"general sibling", "a~b", []string{}, tags("b", Relation{Kind: PrevSibling, Tag: "a"})},
		{"descendant", "div section", []string{}, tags("section", Relation{Kind: Inside, Tag: "div"})},
		{"descendant padded", " nav li ", []string{}, tags("li", Relation{Kind: Inside, Tag: "nav"})},
		{"double space is stripped", "nav  li", []string{}, tags("navli", Relation{Kind: Present})},
		{"alternation", "h1,h2, h3", []string{}, tags(
			"h1", Relation{Kind: Present},
			"h2", Relation{Kind: Present},
			"h3", Relation{Kind: Present},
		)},
		{"class only", ".btn", []string{"btn"}, tags()},
		{"classes", ".btn.primary", []string{"btn", "primary"}, tags()},
		{"tag and class", "button.primary", []string{"primary"}, tags("button", Relation{Kind: Present})},
		{"empty segments kept", ".a..b", []string{"a", "", "b"}, tags()},
		{"class keeps case", ".Active", []string{"Active"}, tags()},
		{"unrecognised falls through", "li:hover", []string{}, tags("li:hover", Relation{Kind: Present})},
		{"descendant wins over parent", "nav ul>li", []string{}, tags("ul>li", Relation{Kind: Inside, Tag: "nav"})},
		{"alternation wins over parent", "a,b>c", []string{}, tags(
			"a", Relation{Kind: Present},
			"b>c", Relation{Kind: Present},
		)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.sel)
			want := Requirement{ClassList: tt.classes, Tags: tt.tags}
			if !got.Equal(want) {
				t.Errorf("Parse(%q) = %s, want %s", tt.sel, got, want)
			}
		})
	}
}

func TestParse_ClassSegmentsInOrder(t *testing.T) {
	sels := []string{".a.b.c", "div.c.b.a", ".z", "p.x..y"}
	for _, sel := range sels {
		req := Parse(sel)
		var first string
		var rest []string
		for i, seg := range splitDots(sel) {
			if i == 0 {
				first = seg
				continue
			}
			rest = append(rest, seg)
		}
		if first != "" {
			if rel, ok := req.Tags[first]; !ok || rel.Kind != Present {
				t.Errorf("Parse(%q): expected tag %q present, got %s", sel, first, req)
			}
		} else if len(req.Tags) != 0 {
			t.Errorf("Parse(%q): expected no tags, got %s", sel, req)
		}
		if len(req.ClassList) != len(rest) {
			t.Fatalf("Parse(%q): expected classes %v, got %v", sel, rest, req.ClassList)
		}
		for i := range rest {
			if req.ClassList[i] != rest[i] {
				t.Errorf("Parse(%q): class %d expected %q, got %q", sel, i, rest[i], req.ClassList[i])
			}
		}
	}
}

func splitDots(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

func TestParser_Accumulates(t *testing.T) {
	p := NewParser()

	p.Convert("h1")
	req := p.Convert(".active")

	want := Requirement{
		ClassList: []string{"active"},
		Tags:      tags("h1", Relation{Kind: Present}),
	}
	if !req.Equal(want) {
		t.Errorf("expected accumulated %s, got %s", want, req)
	}

	// Later conversions overwrite the relation of an existing tag.
	p.Convert("ul>h1")
	if rel := p.Current().Tags["h1"]; rel.Kind != Parent || rel.Tag != "ul" {
		t.Errorf("expected h1 to be parent(ul), got %s", rel)
	}
}

func TestParser_Clear(t *testing.T) {
	p := NewParser()

	before := p.Convert("ul>li")
	p.Clear()

	if !p.Current().IsEmpty() {
		t.Errorf("expected empty requirement after Clear, got %s", p.Current())
	}
	if len(before.Tags) != 1 {
		t.Errorf("expected earlier result to be untouched, got %s", before)
	}
}

func TestParser_ClearThenConvertMatchesFresh(t *testing.T) {
	sels := []string{"li", ".a.b", "ul>li", "a+b", "a~b", "div section", "h1,h2"}

	used := NewParser()
	used.Convert("table.wide")
	used.Convert("x~y")

	for _, sel := range sels {
		used.Clear()
		got := used.Convert(sel).Clone()

		fresh := NewParser().Convert(sel).Clone()
		if !got.Equal(fresh) {
			t.Errorf("%q: used parser gave %s, fresh gave %s", sel, got, fresh)
		}
		if !got.Equal(Parse(sel)) {
			t.Errorf("%q: parser gave %s, Parse gave %s", sel, got, Parse(sel))
		}
	}
}

func TestParser_Concurrent(t *testing.T) {
	p := NewParser()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Convert("li")
			_ = p.Current()
		}()
	}
	wg.Wait()

	if rel, ok := p.Current().Tags["li"]; !ok || rel.Kind != Present {
		t.Errorf("expected li present, got %s", p.Current())
	}
}

func TestRequirement_Predicates(t *testing.T) {
	tests := []struct {
		sel        string
		classOnly  bool
		allPresent bool
		parent     bool
		sibling    bool
	}{
		{".a", true, true, false, false},
		{"li", false, true, false, false},
		{"h1,h2", false, true, false, false},
		{"ul>li", false, false, true, false},
		{"a+b", false, false, false, true},
	}

	for _, tt := range tests {
		req := Parse(tt.sel)
		if req.ClassOnly() != tt.classOnly {
			t.Errorf("%q ClassOnly() = %v, want %v", tt.sel, req.ClassOnly(), tt.classOnly)
		}
		if req.AllPresent() != tt.allPresent {
			t.Errorf("%q AllPresent() = %v, want %v", tt.sel, req.AllPresent(), tt.allPresent)
		}
		if req.Has(Parent) != tt.parent {
			t.Errorf("%q Has(Parent) = %v, want %v", tt.sel, req.Has(Parent), tt.parent)
		}
		if req.Has(PrevSibling) != tt.sibling {
			t.Errorf("%q Has(PrevSibling) = %v, want %v", tt.sel, req.Has(PrevSibling), tt.sibling)
		}
	}
}

func TestRequirement_SortedClasses(t *testing.T) {
	req := Parse(".c.a.b")
	got := req.SortedClasses()
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if req.ClassList[0] != "c" {
		t.Error("expected SortedClasses not to reorder the original list")
	}
}
