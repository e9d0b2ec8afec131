package dom

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSelector is returned for selectors outside the supported subset:
// tag, #id, .class, [attr] and [attr="value"] compounds joined by the
// descendant combinator.
var ErrInvalidSelector = errors.New("dom: invalid selector")

type attrMatch struct {
	name     string
	value    string
	hasValue bool
}

type compound struct {
	tag     string
	id      string
	classes []string
	attrs   []attrMatch
}

// selector is a list of compounds; every compound but the last must match an
// ancestor, in order.
type selector []compound

func compileSelector(s string) (selector, error) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidSelector)
	}
	sel := make(selector, 0, len(parts))
	for _, p := range parts {
		c, err := parseCompound(p)
		if err != nil {
			return nil, err
		}
		sel = append(sel, c)
	}
	return sel, nil
}

func parseCompound(s string) (compound, error) {
	var c compound
	i := 0
	ident := func() string {
		start := i
		for i < len(s) && isIdentByte(s[i]) {
			i++
		}
		return s[start:i]
	}

	c.tag = strings.ToLower(ident())
	for i < len(s) {
		switch s[i] {
		case '#':
			i++
			if c.id = ident(); c.id == "" {
				return c, fmt.Errorf("%w: %q", ErrInvalidSelector, s)
			}
		case '.':
			i++
			name := ident()
			if name == "" {
				return c, fmt.Errorf("%w: %q", ErrInvalidSelector, s)
			}
			c.classes = append(c.classes, name)
		case '[':
			end := strings.IndexByte(s[i:], ']')
			if end == -1 {
				return c, fmt.Errorf("%w: unterminated attribute in %q", ErrInvalidSelector, s)
			}
			m, err := parseAttrMatch(s[i+1 : i+end])
			if err != nil {
				return c, err
			}
			c.attrs = append(c.attrs, m)
			i += end + 1
		default:
			return c, fmt.Errorf("%w: unexpected %q in %q", ErrInvalidSelector, s[i], s)
		}
	}
	return c, nil
}

func parseAttrMatch(s string) (attrMatch, error) {
	name, value, hasValue := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return attrMatch{}, fmt.Errorf("%w: empty attribute name", ErrInvalidSelector)
	}
	value = strings.TrimSpace(value)
	if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
		value = value[1 : len(value)-1]
	}
	return attrMatch{name: name, value: value, hasValue: hasValue}, nil
}

func isIdentByte(b byte) bool {
	return b == '-' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func (c compound) matches(e *Element) bool {
	if c.tag != "" && c.tag != "*" && c.tag != e.tag {
		return false
	}
	if c.id != "" && e.attrs["id"] != c.id {
		return false
	}
	for _, cls := range c.classes {
		if !e.HasClass(cls) {
			return false
		}
	}
	for _, m := range c.attrs {
		v, ok := e.attrs[m.name]
		if !ok || (m.hasValue && v != m.value) {
			return false
		}
	}
	return true
}

func (s selector) matches(e *Element) bool {
	last := len(s) - 1
	if !s[last].matches(e) {
		return false
	}
	i := last - 1
	for n := e.parent; n != nil && i >= 0; n = n.parent {
		if s[i].matches(n) {
			i--
		}
	}
	return i < 0
}
