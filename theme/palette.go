package theme

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"
)

// ErrIncompletePalette is returned when a palette lacks the light scheme.
var ErrIncompletePalette = errors.New("theme: palette has no light scheme")

// Palette holds the light and dark custom properties of the site and the base
// CSS that consumes them.
type Palette struct {
	schemes map[Theme]SchemeBlock
	base    string
	css     string
}

// LoadPalette reads and parses the palette stylesheet at path in fsys.
func LoadPalette(fsys fs.FS, path string, logger *zap.Logger) (*Palette, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("read palette %s: %w", path, err)
	}

	p, err := ParsePalette(string(content), logger)
	if err != nil {
		return nil, fmt.Errorf("parse palette %s: %w", path, err)
	}

	names := make([]string, 0, len(p.schemes))
	for t := range p.schemes {
		names = append(names, string(t))
	}
	logger.Info("palette loaded", zap.String("path", path), zap.Strings("schemes", names))
	return p, nil
}

// ParsePalette builds a palette from stylesheet content. Schemes other than
// light and dark are ignored.
func ParsePalette(content string, logger *zap.Logger) (*Palette, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	blocks, base := ParseSchemes(content)

	p := &Palette{
		schemes: make(map[Theme]SchemeBlock, 2),
		base:    base,
	}
	for _, b := range blocks {
		t, ok := Parse(b.Scheme)
		if !ok {
			logger.Warn("skipping unknown palette scheme", zap.String("scheme", b.Scheme))
			continue
		}
		p.schemes[t] = b
	}
	if _, ok := p.schemes[Light]; !ok {
		return nil, ErrIncompletePalette
	}

	p.css = p.compose()
	return p, nil
}

// Scheme returns the parsed block for t.
func (p *Palette) Scheme(t Theme) (SchemeBlock, bool) {
	b, ok := p.schemes[t]
	return b, ok
}

// Stylesheet returns the combined CSS: light properties on :root, dark
// properties scoped to the marker class, then the base rules.
func (p *Palette) Stylesheet() string {
	return p.css
}

func (p *Palette) compose() string {
	var b strings.Builder
	writeRule := func(selector string, block SchemeBlock) {
		b.WriteString(selector)
		b.WriteString(" {\n")
		for _, decl := range strings.Split(block.Declarations, "\n") {
			decl = strings.TrimSpace(decl)
			if decl == "" {
				continue
			}
			b.WriteString("  ")
			b.WriteString(decl)
			b.WriteString("\n")
		}
		b.WriteString("}\n")
	}

	writeRule(":root", p.schemes[Light])
	if dark, ok := p.schemes[Dark]; ok {
		writeRule(":root."+MarkerClass, dark)
	}
	if p.base != "" {
		b.WriteString("\n")
		b.WriteString(p.base)
		b.WriteString("\n")
	}
	return b.String()
}
