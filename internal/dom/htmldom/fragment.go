package htmldom

// Fragment is an ordered set of detached elements waiting to be mounted.
type Fragment struct {
	elements []*Element
}

// NewFragment creates an empty fragment.
func NewFragment(elements ...*Element) *Fragment {
	return &Fragment{elements: elements}
}

// Append adds elements to the fragment.
func (f *Fragment) Append(elements ...*Element) {
	f.elements = append(f.elements, elements...)
}

// Elements returns the fragment's top-level elements.
func (f *Fragment) Elements() []*Element {
	out := make([]*Element, len(f.elements))
	copy(out, f.elements)
	return out
}

// Len returns the number of top-level elements.
func (f *Fragment) Len() int {
	return len(f.elements)
}

// MountTo appends the fragment's elements to parent and empties the fragment,
// mirroring how a DocumentFragment is consumed on insertion.
func (f *Fragment) MountTo(parent *Element) []*Element {
	mounted := f.elements
	for _, el := range mounted {
		parent.AppendChild(el)
	}
	f.elements = nil
	return mounted
}
