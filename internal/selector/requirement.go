package selector

import (
	"fmt"
	"sort"
	"strings"
)

// RelationKind is the structural relation a tag requirement expresses.
type RelationKind int

const (
	// Present means the tag alone is required.
	Present RelationKind = iota

	// Inside means the tag must have an ancestor with Relation.Tag.
	Inside

	// Parent means the tag's direct parent must be Relation.Tag.
	Parent

	// PrevSibling means the tag's immediately preceding element sibling
	// must be Relation.Tag.
	PrevSibling
)

// String returns a human-readable relation kind.
func (k RelationKind) String() string {
	switch k {
	case Present:
		return "present"
	case Inside:
		return "inside"
	case Parent:
		return "parent"
	case PrevSibling:
		return "prevSibling"
	default:
		return "unknown"
	}
}

// Relation describes what a required tag must be related to.
type Relation struct {
	Kind RelationKind

	// Tag is the related tag. Empty for Present.
	Tag string
}

// String renders the relation, e.g. parent(ul).
func (r Relation) String() string {
	if r.Kind == Present {
		return r.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", r.Kind, r.Tag)
}

// Requirement is the parsed form of a selector.
type Requirement struct {
	// ClassList holds required classes in selector order. Only class-mode
	// selectors fill it.
	ClassList []string

	// Tags maps lower-case tag names to their relation.
	Tags map[string]Relation
}

// NewRequirement returns an empty requirement.
func NewRequirement() Requirement {
	return Requirement{
		ClassList: []string{},
		Tags:      map[string]Relation{},
	}
}

// IsEmpty reports whether nothing is required.
func (r Requirement) IsEmpty() bool {
	return len(r.ClassList) == 0 && len(r.Tags) == 0
}

// ClassOnly reports whether the requirement has no tag component.
func (r Requirement) ClassOnly() bool {
	return len(r.Tags) == 0
}

// AllPresent reports whether every tag relation is Present.
func (r Requirement) AllPresent() bool {
	for _, rel := range r.Tags {
		if rel.Kind != Present {
			return false
		}
	}
	return true
}

// Has reports whether any tag relation is of kind k.
func (r Requirement) Has(k RelationKind) bool {
	for _, rel := range r.Tags {
		if rel.Kind == k {
			return true
		}
	}
	return false
}

// SortedClasses returns a sorted copy of the class list.
func (r Requirement) SortedClasses() []string {
	out := make([]string, len(r.ClassList))
	copy(out, r.ClassList)
	sort.Strings(out)
	return out
}

// Clone returns a deep copy.
func (r Requirement) Clone() Requirement {
	c := Requirement{
		ClassList: make([]string, len(r.ClassList)),
		Tags:      make(map[string]Relation, len(r.Tags)),
	}
	copy(c.ClassList, r.ClassList)
	for k, v := range r.Tags {
		c.Tags[k] = v
	}
	return c
}

// Equal reports whether two requirements are identical. Class order matters.
func (r Requirement) Equal(o Requirement) bool {
	if len(r.ClassList) != len(o.ClassList) || len(r.Tags) != len(o.Tags) {
		return false
	}
	for i := range r.ClassList {
		if r.ClassList[i] != o.ClassList[i] {
			return false
		}
	}
	for k, v := range r.Tags {
		if ov, ok := o.Tags[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// String renders the requirement deterministically.
func (r Requirement) String() string {
	tags := make([]string, 0, len(r.Tags))
	for k := range r.Tags {
		tags = append(tags, k)
	}
	sort.Strings(tags)

	var b strings.Builder
	b.WriteString("{classes:[")
	b.WriteString(strings.Join(r.ClassList, ","))
	b.WriteString("] tags:{")
	for i, k := range tags {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(k)
		b.WriteString(":")
		b.WriteString(r.Tags[k].String())
	}
	b.WriteString("}}")
	return b.String()
}
