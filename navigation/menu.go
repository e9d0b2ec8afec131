// Package navigation implements the collapsible mobile menu of the site header.
package navigation

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"portfolio/dom"
)

// ErrMissingElements is returned by Init when the toggle, nav or header is not
// in the document.
var ErrMissingElements = errors.New("navigation: missing DOM elements")

// Selectors locate the menu's elements.
type Selectors struct {
	Toggle string
	Nav    string
	Header string
	Links  string
}

// DefaultSelectors match the markup rendered by the page package.
var DefaultSelectors = Selectors{
	Toggle: ".nav-toggle",
	Nav:    ".site-nav",
	Header: ".site-header",
	Links:  ".site-nav a",
}

const (
	OpenClass  = "is-open"
	CloseKey   = "Escape"
	LabelOpen  = "Abrir menu"
	LabelClose = "Fechar menu"
)

// Menu opens and closes the site navigation on small screens.
type Menu struct {
	doc    *dom.Document
	sel    Selectors
	logger *zap.Logger

	toggle *dom.Element
	nav    *dom.Element
	header *dom.Element
	links  []*dom.Element

	isOpen bool
	bound  bool

	toggleListener  *dom.Listener
	linkListener    *dom.Listener
	keyListener     *dom.Listener
	outsideListener *dom.Listener
}

// Option configures a Menu.
type Option func(*Menu)

// WithSelectors overrides the default selectors.
func WithSelectors(s Selectors) Option {
	return func(m *Menu) { m.sel = s }
}

// WithLogger sets the menu's logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Menu) {
		if l != nil {
			m.logger = l
		}
	}
}

// New creates a menu bound to doc. Call Init to attach listeners.
func New(doc *dom.Document, opts ...Option) *Menu {
	m := &Menu{
		doc:    doc,
		sel:    DefaultSelectors,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.toggleListener = dom.NewListener(func(*dom.Event) { m.Toggle() })
	m.linkListener = dom.NewListener(func(*dom.Event) { m.Close() })
	m.keyListener = dom.NewListener(m.handleKeydown)
	m.outsideListener = dom.NewListener(m.handleClickOutside)
	return m
}

// Init looks up the menu's elements and binds the toggle and link listeners.
// It is a no-op when already bound.
func (m *Menu) Init() error {
	if m.bound {
		return nil
	}

	m.toggle = m.doc.QuerySelector(m.sel.Toggle)
	m.nav = m.doc.QuerySelector(m.sel.Nav)
	m.header = m.doc.QuerySelector(m.sel.Header)
	m.links = m.doc.QuerySelectorAll(m.sel.Links)

	var missing []string
	if m.toggle == nil {
		missing = append(missing, m.sel.Toggle)
	}
	if m.nav == nil {
		missing = append(missing, m.sel.Nav)
	}
	if m.header == nil {
		missing = append(missing, m.sel.Header)
	}
	if len(missing) > 0 {
		m.logger.Warn("missing DOM elements", zap.String("elements", strings.Join(missing, ", ")))
		return ErrMissingElements
	}

	m.toggle.AddEventListener("click", m.toggleListener)
	for _, link := range m.links {
		link.AddEventListener("click", m.linkListener)
	}
	m.bound = true
	return nil
}

// Destroy closes the menu and removes all listeners.
func (m *Menu) Destroy() {
	if !m.bound {
		return
	}
	m.Close()
	m.toggle.RemoveEventListener("click", m.toggleListener)
	for _, link := range m.links {
		link.RemoveEventListener("click", m.linkListener)
	}
	m.bound = false
}

// IsOpen reports whether the menu is open.
func (m *Menu) IsOpen() bool { return m.isOpen }

// Toggle opens a closed menu and closes an open one.
func (m *Menu) Toggle() {
	if m.isOpen {
		m.Close()
	} else {
		m.Open()
	}
}

// Open shows the menu, locks body scrolling and starts listening for Escape
// and outside clicks.
func (m *Menu) Open() {
	if !m.bound || m.isOpen {
		return
	}
	m.isOpen = true
	m.nav.AddClass(OpenClass)
	m.toggle.SetAttr("aria-expanded", "true")
	m.toggle.SetAttr("aria-label", LabelClose)
	m.doc.Body().SetStyle("overflow", "hidden")

	m.doc.AddEventListener("keydown", m.keyListener)
	m.doc.AddEventListener("click", m.outsideListener)
}

// Close hides the menu and undoes everything Open did.
func (m *Menu) Close() {
	if !m.bound {
		return
	}
	m.isOpen = false
	m.nav.RemoveClass(OpenClass)
	m.toggle.SetAttr("aria-expanded", "false")
	m.toggle.SetAttr("aria-label", LabelOpen)
	m.doc.Body().SetStyle("overflow", "")

	m.doc.RemoveEventListener("keydown", m.keyListener)
	m.doc.RemoveEventListener("click", m.outsideListener)
}

func (m *Menu) handleKeydown(ev *dom.Event) {
	if ev.Key == CloseKey {
		m.Close()
	}
}

func (m *Menu) handleClickOutside(ev *dom.Event) {
	if ev.Target == nil || (!m.nav.Contains(ev.Target) && !m.toggle.Contains(ev.Target)) {
		m.Close()
	}
}
