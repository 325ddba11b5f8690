// Package selector turns short CSS-like selector strings into match requirements.
//
// The grammar is deliberately tiny. A selector is either a class selector
// (anything containing a ".") or a tag selector using at most one combinator:
//
//	.btn.primary     classes btn and primary (class mode)
//	button.primary   tag button; classes primary
//	li               plain tag
//	h1,h2,h3         any of the tags
//	nav li           li inside a nav (descendant)
//	ul>li            li whose parent is a ul
//	h2+p, h2~p       p immediately preceded by an h2 sibling
//
// Only the first delimiter kind found is honoured, in the priority order
// descendant, alternation, parent, sibling. Anything else is read as a
// plain tag name: parsing never fails.
//
// # Parsing
//
// Parse returns a fresh Requirement for every call:
//
//	req := selector.Parse("ul > li")
//	// req.Tags == map[string]Relation{"li": {Kind: Parent, Tag: "ul"}}
//
// Parser keeps the older accumulating contract: Convert adds into one shared
// Requirement until Clear is called.
//
//	p := selector.NewParser()
//	p.Convert("h1")
//	p.Convert("h2")   // Tags now holds both h1 and h2
//	p.Clear()
package selector
