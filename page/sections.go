package page

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Content holds the default page sections.
//
//go:embed content/*.md
var Content embed.FS

// Section is one rendered block of page content.
type Section struct {
	ID    string
	Title string
	HTML  string
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// LoadSections renders every .md file in dir, ordered by file name. A leading
// "NN-" in the file name sets the order and is dropped from the section ID;
// the first "# " heading becomes the title.
func LoadSections(fsys fs.FS, dir string) ([]Section, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read sections directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	sections := make([]Section, 0, len(names))
	for _, name := range names {
		src, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read section %s: %w", name, err)
		}
		s, err := RenderSection(name, src)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, nil
}

// RenderSection converts one markdown file into a section.
func RenderSection(name string, src []byte) (Section, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return Section{}, fmt.Errorf("render section %s: %w", name, err)
	}
	id := sectionID(name)
	return Section{
		ID:    id,
		Title: sectionTitle(src, id),
		HTML:  buf.String(),
	}, nil
}

func sectionID(name string) string {
	id := strings.TrimSuffix(name, ".md")
	if prefix, rest, ok := strings.Cut(id, "-"); ok && prefix != "" && strings.Trim(prefix, "0123456789") == "" {
		id = rest
	}
	return id
}

func sectionTitle(src []byte, fallback string) string {
	for _, line := range strings.Split(string(src), "\n") {
		if title, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSpace(title)
		}
	}
	if fallback == "" {
		return ""
	}
	return strings.ToUpper(fallback[:1]) + fallback[1:]
}
