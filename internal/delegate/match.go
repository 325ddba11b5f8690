package delegate

import (
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dshills/minui/internal/dom"
	"github.com/dshills/minui/internal/selector"
)

// predicate decides whether an event target satisfies a trigger.
type predicate func(target dom.Element) bool

// predicateFor builds the match function for a trigger. Query triggers are
// parsed once here unless the dispatcher evaluates through a shared parser.
func (d *Dispatcher) predicateFor(t Trigger) predicate {
	switch t.kind {
	case KindElement:
		want := t.element
		return func(target dom.Element) bool {
			return target != nil && want != nil && target == want
		}

	case KindClass:
		class := t.value
		return func(target dom.Element) bool {
			return target != nil && target.ClassList().Contains(class)
		}

	case KindID:
		id := t.value
		return func(target dom.Element) bool {
			return target != nil && target.ID() == id
		}

	case KindQuery:
		query := t.value
		if d.parser != nil {
			return func(target dom.Element) bool {
				return d.evalShared(query, target)
			}
		}
		req := selector.Parse(query)
		return func(target dom.Element) bool {
			return MatchRequirement(req, target)
		}

	case KindDocument:
		return func(dom.Element) bool { return true }
	}

	return func(dom.Element) bool { return false }
}

// evalShared converts query through the shared parser, matches, and always
// clears the parser afterwards.
func (d *Dispatcher) evalShared(query string, target dom.Element) bool {
	d.evalMu.Lock()
	defer d.evalMu.Unlock()
	defer d.parser.Clear()

	req := d.parser.Convert(query)
	return MatchRequirement(*req, target)
}

// MatchRequirement reports whether target satisfies req.
//
// A requirement without tags is a class selector and matches only when the
// target's class set equals the required classes exactly, compared sorted;
// a subset or superset is not a match. Otherwise the first rule that
// applies decides, in this order:
//
//   - every relation Present: the target's tag is a declared key
//   - any Parent: the target's tag is a key whose parent tag matches
//   - any PrevSibling: the target's tag is a key whose immediately preceding
//     element sibling matches; no sibling is a non-match
//   - any Inside: the target's tag is a key with a matching ancestor
func MatchRequirement(req selector.Requirement, target dom.Element) bool {
	if target == nil {
		return false
	}

	if req.ClassOnly() {
		return sameClasses(req.SortedClasses(), target.ClassList().Values())
	}

	tag := tagOf(target)
	rel, declared := req.Tags[tag]

	switch {
	case req.AllPresent():
		return declared

	case req.Has(selector.Parent):
		if !declared || rel.Kind != selector.Parent {
			return false
		}
		parent := target.ParentElement()
		return parent != nil && tagOf(parent) == rel.Tag

	case req.Has(selector.PrevSibling):
		if !declared || rel.Kind != selector.PrevSibling {
			return false
		}
		prev := target.PreviousElementSibling()
		return prev != nil && tagOf(prev) == rel.Tag

	case req.Has(selector.Inside):
		if !declared || rel.Kind != selector.Inside {
			return false
		}
		for p := target.ParentElement(); p != nil; p = p.ParentElement() {
			if tagOf(p) == rel.Tag {
				return true
			}
		}
	}

	return false
}

// sameClasses compares a sorted requirement with an element's classes.
func sameClasses(want, have []string) bool {
	if len(want) != len(have) {
		return false
	}
	sorted := make([]string, len(have))
	copy(sorted, have)
	sort.Strings(sorted)
	for i := range want {
		if want[i] != sorted[i] {
			return false
		}
	}
	return true
}

func tagOf(el dom.Element) string {
	return cases.Lower(language.Und).String(el.TagName())
}
