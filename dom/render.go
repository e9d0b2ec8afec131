package dom

import (
	"io"
	"strings"

	g "maragu.dev/gomponents"
	"maragu.dev/gomponents/html"
)

// HIDAttr is the attribute carrying an element's hydration ID in rendered
// markup.
const HIDAttr = "data-hid"

// Node converts the element and its subtree into a gomponents node.
func (e *Element) Node() g.Node {
	nodes := make([]g.Node, 0, len(e.order)+len(e.children)+2)
	nodes = append(nodes, g.Attr(HIDAttr, e.hid))
	for _, name := range e.order {
		nodes = append(nodes, g.Attr(name, e.attrs[name]))
	}
	if e.text != "" {
		if e.raw {
			nodes = append(nodes, g.Raw(e.text))
		} else {
			nodes = append(nodes, g.Text(e.text))
		}
	}
	for _, c := range e.children {
		nodes = append(nodes, c.Node())
	}
	return g.El(e.tag, nodes...)
}

// HTML renders the element's subtree to a string.
func (e *Element) HTML() string {
	var b strings.Builder
	_ = e.Node().Render(&b)
	return b.String()
}

// Render writes the whole document, doctype included, to w.
func (d *Document) Render(w io.Writer) error {
	return html.Doctype(d.root.Node()).Render(w)
}
