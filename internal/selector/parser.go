package selector

import (
	"regexp"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// descendantPattern detects "word space word", the descendant combinator.
	descendantPattern = regexp.MustCompile(`[a-zA-Z]\s[a-zA-Z]`)
	whitespace        = regexp.MustCompile(`\s+`)
)

// Delimiters recognised in tag mode.
const (
	classDelimiter      = "."
	descendantDelimiter = "_"
	alternateDelimiter  = ","
	parentDelimiter     = ">"
	adjacentDelimiter   = "+"
	siblingDelimiter    = "~"
)

// Parse converts a selector into a fresh Requirement.
func Parse(sel string) Requirement {
	req := NewRequirement()
	apply(&req, sel)
	return req
}

// Parser converts selectors into one shared, accumulating Requirement.
//
// Every Convert adds into the same Requirement until Clear resets it, so
// callers that reuse a Parser for unrelated selectors must Clear in between.
// A Parser is safe for concurrent use, but interleaved Convert calls from
// different goroutines still accumulate into each other.
type Parser struct {
	mu  sync.Mutex
	req *Requirement
}

// NewParser creates a parser with an empty requirement.
func NewParser() *Parser {
	req := NewRequirement()
	return &Parser{req: &req}
}

// Convert parses sel into the shared requirement and returns it.
func (p *Parser) Convert(sel string) *Requirement {
	p.mu.Lock()
	defer p.mu.Unlock()

	apply(p.req, sel)
	return p.req
}

// Clear replaces the shared requirement with an empty one. Requirements
// returned by earlier Convert calls are left untouched.
func (p *Parser) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	req := NewRequirement()
	p.req = &req
}

// Current returns a copy of the shared requirement.
func (p *Parser) Current() Requirement {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.req.Clone()
}

// apply adds the parsed form of sel into req.
func apply(req *Requirement, sel string) {
	sel = normalize(sel)
	if strings.Contains(sel, classDelimiter) {
		applyClasses(req, sel)
		return
	}
	applyTags(req, sel)
}

// normalize trims the selector and either joins descendant compounds with
// underscores or strips whitespace entirely.
func normalize(sel string) string {
	sel = strings.TrimSpace(sel)
	if descendantPattern.MatchString(sel) {
		return whitespace.ReplaceAllString(sel, descendantDelimiter)
	}
	return whitespace.ReplaceAllString(sel, "")
}

// applyClasses handles class mode. A non-empty first segment is a tag; every
// later segment is a class, kept even when empty.
func applyClasses(req *Requirement, sel string) {
	segments := strings.Split(sel, classDelimiter)
	if tag := segments[0]; tag != "" {
		req.Tags[lower(tag)] = Relation{Kind: Present}
	}
	req.ClassList = append(req.ClassList, segments[1:]...)
}

// applyTags handles tag mode. Exactly one delimiter kind is honoured.
func applyTags(req *Requirement, sel string) {
	sel = lower(sel)

	switch {
	case strings.Contains(sel, descendantDelimiter):
		parts := strings.Split(sel, descendantDelimiter)
		req.Tags[parts[1]] = Relation{Kind: Inside, Tag: parts[0]}

	case strings.Contains(sel, alternateDelimiter):
		for _, tag := range strings.Split(sel, alternateDelimiter) {
			req.Tags[tag] = Relation{Kind: Present}
		}

	case strings.Contains(sel, parentDelimiter):
		parts := strings.Split(sel, parentDelimiter)
		req.Tags[parts[1]] = Relation{Kind: Parent, Tag: parts[0]}

	case strings.Contains(sel, adjacentDelimiter):
		parts := strings.Split(sel, adjacentDelimiter)
		req.Tags[parts[1]] = Relation{Kind: PrevSibling, Tag: parts[0]}

	case strings.Contains(sel, siblingDelimiter):
		parts := strings.Split(sel, siblingDelimiter)
		req.Tags[parts[1]] = Relation{Kind: PrevSibling, Tag: parts[0]}

	default:
		req.Tags[sel] = Relation{Kind: Present}
	}
}

func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}
