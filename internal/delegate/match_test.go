package delegate

import (
	"testing"

	"github.com/dshills/minui/internal/dom"
	"github.com/dshills/minui/internal/dom/htmldom"
	"github.com/dshills/minui/internal/selector"
)

const matchPage = `<html><body>
<ul id="list">
  <li id="one" class="item">One</li>
  <li id="two" class="item active">Two</li>
</ul>
<div id="box"><section><p id="deep" class="b a">deep</p></section></div>
<h2 id="title">Title</h2><p id="after">after</p>
<span id="lone"></span>
</body></html>`

func mustParse(t *testing.T, s string) *htmldom.Document {
	t.Helper()
	doc, err := htmldom.ParseString(s)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func byID(t *testing.T, doc *htmldom.Document, id string) *htmldom.Element {
	t.Helper()
	el, ok := doc.GetElementByID(id).(*htmldom.Element)
	if !ok || el == nil {
		t.Fatalf("element #%s not found", id)
	}
	return el
}

func TestMatchRequirement(t *testing.T) {
	doc := mustParse(t, matchPage)

	tests := []struct {
		name   string
		query  string
		target string
		want   bool
	}{
		{"plain tag", "li", "one", true},
		{"plain tag upper case", "LI", "one", true},
		{"plain tag miss", "ul", "one", false},
		{"alternation hit", "h2,p", "after", true},
		{"alternation miss", "h2,span", "one", false},
		{"parent hit", "ul>li", "one", true},
		{"parent wrong parent", "ol>li", "one", false},
		{"parent wrong tag", "ul>p", "one", false},
		{"adjacent sibling hit", "h2+p", "after", true},
		{"general sibling hit", "h2~p", "after", true},
		{"sibling wrong tag", "h2+span", "lone", false},
		{"sibling second item", "li+li", "two", true},
		{"no previous sibling", "ul+li", "one", false},
		{"descendant hit", "div p", "deep", true},
		{"descendant miss", "ul p", "deep", false},
		{"class exact", ".item", "one", true},
		{"class superset is not a match", ".item", "two", false},
		{"class set unordered", ".a.b", "deep", true},
		{"class subset is not a match", ".a", "deep", false},
		{"class set with tag", "li.item", "two", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := selector.Parse(tt.query)
			if got := MatchRequirement(req, byID(t, doc, tt.target)); got != tt.want {
				t.Errorf("MatchRequirement(%q, #%s) = %v, want %v", tt.query, tt.target, got, tt.want)
			}
		})
	}
}

func TestMatchRequirement_NilTarget(t *testing.T) {
	if MatchRequirement(selector.Parse("li"), nil) {
		t.Error("expected nil target not to match")
	}
}

func TestPredicateFor(t *testing.T) {
	doc := mustParse(t, matchPage)
	d := New(doc)
	one := byID(t, doc, "one")
	two := byID(t, doc, "two")

	tests := []struct {
		name    string
		trigger Trigger
		target  dom.Element
		want    bool
	}{
		{"element identity", OnElement(one), one, true},
		{"element other", OnElement(one), two, false},
		{"class member", OnClass("active"), two, true},
		{"class missing", OnClass("active"), one, false},
		{"id", OnID("two"), two, true},
		{"id other", OnID("two"), one, false},
		{"query", OnQuery("ul>li"), two, true},
		{"document", OnDocument(), nil, true},
		{"zero trigger", Trigger{}, one, false},
		{"nil target", OnClass("item"), nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.predicateFor(tt.trigger)(tt.target); got != tt.want {
				t.Errorf("predicate(%s) = %v, want %v", tt.trigger, got, tt.want)
			}
		})
	}
}

func TestSharedParser_ClearedAfterEvaluation(t *testing.T) {
	doc := mustParse(t, matchPage)
	p := selector.NewParser()
	d := New(doc, WithSharedParser(p))

	match := d.predicateFor(OnQuery("ul>li"))
	if !match(byID(t, doc, "one")) {
		t.Error("expected match")
	}
	if !p.Current().IsEmpty() {
		t.Errorf("expected parser cleared after match, got %s", p.Current())
	}

	if match(byID(t, doc, "deep")) {
		t.Error("expected no match")
	}
	if !p.Current().IsEmpty() {
		t.Errorf("expected parser cleared after non-match, got %s", p.Current())
	}
}

// Without clearing, a shared parser would leak "ul>li" into the next
// evaluation and let h2+p match list items.
func TestSharedParser_NoLeakBetweenTriggers(t *testing.T) {
	doc := mustParse(t, matchPage)
	d := New(doc, WithSharedParser(selector.NewParser()))

	list := d.predicateFor(OnQuery("ul>li"))
	sibling := d.predicateFor(OnQuery("h2+p"))

	if !list(byID(t, doc, "one")) {
		t.Fatal("expected list item to match ul>li")
	}
	if sibling(byID(t, doc, "one")) {
		t.Error("expected list item not to match h2+p")
	}
	if !sibling(byID(t, doc, "after")) {
		t.Error("expected paragraph to match h2+p")
	}
}
