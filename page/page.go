// Package page builds the portfolio document served to browsers.
package page

import (
	"strconv"

	"portfolio/dom"
	"portfolio/navigation"
	"portfolio/schema"
	"portfolio/theme"
)

const (
	DefaultStylesheet = "/styles.css"
	DefaultScript     = "/static/client.js"

	// SessionAttr on the root element tells the page script which session
	// to attach to.
	SessionAttr = "data-session"
)

// Options describe the page to build.
type Options struct {
	Profile    schema.Profile
	Sections   []Section
	Stylesheet string
	Script     string
	Year       int
}

// Build creates the page document. The theme is not applied yet: the markup
// carries the light defaults and the theme controller renders the resolved
// theme on initialization.
func Build(opts Options) *dom.Document {
	if opts.Stylesheet == "" {
		opts.Stylesheet = DefaultStylesheet
	}
	if opts.Script == "" {
		opts.Script = DefaultScript
	}

	d := dom.New()
	el := func(tag string, attrs ...string) *dom.Element {
		e := d.CreateElement(tag)
		for i := 0; i+1 < len(attrs); i += 2 {
			e.SetAttr(attrs[i], attrs[i+1])
		}
		return e
	}
	text := func(e *dom.Element, s string) *dom.Element {
		e.SetText(s)
		return e
	}

	d.DocumentElement().SetAttr("lang", opts.Profile.Language)

	d.Head().Append(
		el("meta", "charset", "utf-8"),
		el("meta", "name", "viewport", "content", "width=device-width, initial-scale=1"),
		text(el("title"), opts.Profile.PageName),
		el("meta", "name", "description", "content", opts.Profile.Person.Description),
		el("meta", "name", "theme-color", "content", theme.MetaColorLight),
		el("link", "rel", "stylesheet", "href", opts.Stylesheet),
		el("script", "src", opts.Script, "defer", ""),
	)

	links := el("ul", "class", "site-nav-list")
	for _, s := range opts.Sections {
		links.AppendChild(el("li").Append(text(el("a", "href", "#"+s.ID), s.Title)))
	}

	header := el("header", "class", "site-header").Append(
		el("a", "class", "brand", "href", "#").Append(
			el("img", "id", "logo-navbar", "src", theme.LogoLightPath, "alt", opts.Profile.Person.Name),
		),
		el("button", "class", "nav-toggle", "type", "button",
			"aria-controls", "site-nav",
			"aria-expanded", "false",
			"aria-label", navigation.LabelOpen,
		).Append(el("span", "class", "nav-toggle-bar")),
		el("nav", "id", "site-nav", "class", "site-nav").Append(links),
		el("button", "id", "dark-mode-toggle", "type", "button",
			"aria-label", "Alternar tema",
			"title", "Alternar tema (Ctrl+Shift+D)",
		),
	)

	main := el("main", "class", "site-main")
	for _, s := range opts.Sections {
		section := el("section", "id", s.ID, "class", "section")
		section.SetRawHTML(s.HTML)
		main.AppendChild(section)
	}

	footer := el("footer", "class", "site-footer").Append(
		text(el("p"), "© "+strconv.Itoa(opts.Year)+" "+opts.Profile.Person.Name),
	)

	d.Body().Append(header, main, footer)
	return d
}
