// Package dom models the portfolio page as a server-side document tree.
//
// Components bind listeners to elements and mutate attributes exactly as they
// would in a browser. Mutations of connected elements are reported to an
// observer, which the live session turns into patches for the browser copy.
package dom

import (
	"strconv"
	"strings"
)

// MutationOp identifies the kind of change reported to an observer.
type MutationOp string

const (
	MutationSetAttr    MutationOp = "set-attr"
	MutationRemoveAttr MutationOp = "remove-attr"
	MutationSetText    MutationOp = "set-text"
	MutationInsert     MutationOp = "insert"
)

// Mutation describes one change to a connected element.
type Mutation struct {
	Op     MutationOp
	Target string // HID of the changed element, or of the parent for inserts
	Key    string
	Value  string
	Node   *Element // inserted element
}

// Document is the root of a page tree. It is also an event target for
// document-level listeners such as keydown.
type Document struct {
	target

	root     *Element
	head     *Element
	body     *Element
	seq      int
	observer func(Mutation)
}

// New creates a document with <html>, <head> and <body> elements.
func New() *Document {
	d := &Document{}
	d.root = d.CreateElement("html")
	d.head = d.CreateElement("head")
	d.body = d.CreateElement("body")
	d.root.Append(d.head, d.body)
	return d
}

// CreateElement creates a detached element owned by d.
func (d *Document) CreateElement(tag string) *Element {
	d.seq++
	return &Element{
		doc: d,
		hid: "h" + strconv.Itoa(d.seq),
		tag: strings.ToLower(tag),
	}
}

// DocumentElement returns the <html> root.
func (d *Document) DocumentElement() *Element { return d.root }

// Head returns the <head> element.
func (d *Document) Head() *Element { return d.head }

// Body returns the <body> element.
func (d *Document) Body() *Element { return d.body }

// Observe installs fn as the mutation observer, replacing any previous one.
// Passing nil stops observation.
func (d *Document) Observe(fn func(Mutation)) {
	d.observer = fn
}

// GetElementByID returns the first connected element whose id attribute is id.
func (d *Document) GetElementByID(id string) *Element {
	var found *Element
	walk(d.root, func(e *Element) bool {
		if e.attrs["id"] == id {
			found = e
			return false
		}
		return true
	})
	return found
}

// ElementByHID returns the connected element with hydration ID hid.
func (d *Document) ElementByHID(hid string) *Element {
	var found *Element
	walk(d.root, func(e *Element) bool {
		if e.hid == hid {
			found = e
			return false
		}
		return true
	})
	return found
}

// QuerySelector returns the first element in document order matching sel, or
// nil when nothing matches or sel is not a supported selector.
func (d *Document) QuerySelector(sel string) *Element {
	s, err := compileSelector(sel)
	if err != nil {
		return nil
	}
	var found *Element
	walk(d.root, func(e *Element) bool {
		if s.matches(e) {
			found = e
			return false
		}
		return true
	})
	return found
}

// QuerySelectorAll returns all elements in document order matching sel.
func (d *Document) QuerySelectorAll(sel string) []*Element {
	s, err := compileSelector(sel)
	if err != nil {
		return nil
	}
	var out []*Element
	walk(d.root, func(e *Element) bool {
		if s.matches(e) {
			out = append(out, e)
		}
		return true
	})
	return out
}

// Dispatch delivers ev to its target, then bubbles it through the target's
// ancestors and finally to the document. A nil target delivers to the
// document only.
func (d *Document) Dispatch(ev *Event) {
	for n := ev.Target; n != nil; n = n.parent {
		n.invoke(ev)
		if ev.stopped {
			return
		}
	}
	d.invoke(ev)
}

// walk visits e and its descendants depth-first until fn returns false.
func walk(e *Element, fn func(*Element) bool) bool {
	if !fn(e) {
		return false
	}
	for _, c := range e.children {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}
