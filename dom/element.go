package dom

import (
	"sort"
	"strings"
)

// Element is a node in the server-side document tree. Every element carries a
// hydration ID (HID) that the browser copy of the page uses to address it.
type Element struct {
	target

	doc      *Document
	hid      string
	tag      string
	attrs    map[string]string
	order    []string
	parent   *Element
	children []*Element
	text     string
	raw      bool
}

// HID returns the element's hydration ID.
func (e *Element) HID() string { return e.hid }

// Tag returns the lower-case tag name.
func (e *Element) Tag() string { return e.tag }

// Parent returns the parent element, or nil for detached and root elements.
func (e *Element) Parent() *Element { return e.parent }

// Children returns the element's children. The slice must not be modified.
func (e *Element) Children() []*Element { return e.children }

// Attr returns the value of attribute name.
func (e *Element) Attr(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// ID returns the element's id attribute.
func (e *Element) ID() string {
	return e.attrs["id"]
}

// SetAttr sets attribute name to value. Setting an attribute to the value it
// already holds is a no-op and emits no mutation.
func (e *Element) SetAttr(name, value string) {
	if e.attrs == nil {
		e.attrs = make(map[string]string)
	}
	if old, ok := e.attrs[name]; ok {
		if old == value {
			return
		}
	} else {
		e.order = append(e.order, name)
	}
	e.attrs[name] = value
	e.notify(Mutation{Op: MutationSetAttr, Target: e.hid, Key: name, Value: value})
}

// RemoveAttr deletes attribute name if present.
func (e *Element) RemoveAttr(name string) {
	if _, ok := e.attrs[name]; !ok {
		return
	}
	delete(e.attrs, name)
	for i, k := range e.order {
		if k == name {
			e.order = append(e.order[:i:i], e.order[i+1:]...)
			break
		}
	}
	e.notify(Mutation{Op: MutationRemoveAttr, Target: e.hid, Key: name})
}

// Classes returns the element's class list.
func (e *Element) Classes() []string {
	return strings.Fields(e.attrs["class"])
}

// HasClass reports whether the class list contains name.
func (e *Element) HasClass(name string) bool {
	for _, c := range e.Classes() {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass adds name to the class list.
func (e *Element) AddClass(name string) {
	e.SetClass(name, true)
}

// RemoveClass removes name from the class list.
func (e *Element) RemoveClass(name string) {
	e.SetClass(name, false)
}

// SetClass makes the presence of name in the class list equal to present.
func (e *Element) SetClass(name string, present bool) {
	if e.HasClass(name) == present {
		return
	}
	classes := e.Classes()
	if present {
		classes = append(classes, name)
	} else {
		kept := classes[:0]
		for _, c := range classes {
			if c != name {
				kept = append(kept, c)
			}
		}
		classes = kept
	}
	if len(classes) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(classes, " "))
}

// Style returns the inline style property prop.
func (e *Element) Style(prop string) string {
	return parseStyle(e.attrs["style"])[prop]
}

// SetStyle sets inline style property prop. An empty value removes it.
func (e *Element) SetStyle(prop, value string) {
	styles := parseStyle(e.attrs["style"])
	if styles[prop] == value {
		return
	}
	if value == "" {
		delete(styles, prop)
	} else {
		styles[prop] = value
	}
	if len(styles) == 0 {
		e.RemoveAttr("style")
		return
	}
	e.SetAttr("style", formatStyle(styles))
}

// Text returns the element's text content (its own, not its descendants').
func (e *Element) Text() string { return e.text }

// SetText replaces the element's text content. The text is escaped on render.
func (e *Element) SetText(text string) {
	if e.text == text && !e.raw {
		return
	}
	e.text = text
	e.raw = false
	e.notify(Mutation{Op: MutationSetText, Target: e.hid, Value: text})
}

// SetRawHTML replaces the element's content with trusted markup that is
// rendered without escaping.
func (e *Element) SetRawHTML(markup string) {
	e.text = markup
	e.raw = true
}

// AppendChild adds child as the last child of e, detaching it from any
// previous parent.
func (e *Element) AppendChild(child *Element) {
	if child == nil || child == e {
		return
	}
	if child.parent != nil {
		child.parent.removeChild(child)
	}
	child.parent = e
	e.children = append(e.children, child)
	e.notify(Mutation{Op: MutationInsert, Target: e.hid, Node: child})
}

// Append adds children in order and returns e.
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		e.AppendChild(c)
	}
	return e
}

func (e *Element) removeChild(child *Element) {
	for i, c := range e.children {
		if c == child {
			e.children = append(e.children[:i:i], e.children[i+1:]...)
			child.parent = nil
			return
		}
	}
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	for n := other; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// connected reports whether the element is part of its document's tree.
func (e *Element) connected() bool {
	if e.doc == nil {
		return false
	}
	for n := e; n != nil; n = n.parent {
		if n == e.doc.root {
			return true
		}
	}
	return false
}

func (e *Element) notify(m Mutation) {
	if e.doc == nil || e.doc.observer == nil || !e.connected() {
		return
	}
	e.doc.observer(m)
}

func parseStyle(s string) map[string]string {
	styles := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		prop = strings.TrimSpace(prop)
		value = strings.TrimSpace(value)
		if prop != "" && value != "" {
			styles[prop] = value
		}
	}
	return styles
}

func formatStyle(styles map[string]string) string {
	props := make([]string, 0, len(styles))
	for p := range styles {
		props = append(props, p)
	}
	sort.Strings(props)
	var b strings.Builder
	for i, p := range props {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(p)
		b.WriteString(": ")
		b.WriteString(styles[p])
		b.WriteString(";")
	}
	return b.String()
}
