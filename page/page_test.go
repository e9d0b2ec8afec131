package page

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/navigation"
	"portfolio/schema"
	"portfolio/theme"
)

func TestLoadSections(t *testing.T) {
	fsys := fstest.MapFS{
		"c/02-projetos.md": {Data: []byte("# Projetos\n\n- um\n- dois\n")},
		"c/01-sobre.md":    {Data: []byte("# Sobre mim\n\nTexto *curto*.\n")},
		"c/contato.md":     {Data: []byte("Sem título.\n")},
		"c/notes.txt":      {Data: []byte("ignored")},
	}

	sections, err := LoadSections(fsys, "c")
	require.NoError(t, err)
	require.Len(t, sections, 3)

	assert.Equal(t, "sobre", sections[0].ID)
	assert.Equal(t, "Sobre mim", sections[0].Title)
	assert.Contains(t, sections[0].HTML, "<em>curto</em>")
	assert.Equal(t, "projetos", sections[1].ID)
	assert.Contains(t, sections[1].HTML, "<li>um</li>")
	assert.Equal(t, "contato", sections[2].ID)
	assert.Equal(t, "Contato", sections[2].Title)
}

func TestEmbeddedContent(t *testing.T) {
	sections, err := LoadSections(Content, "content")
	require.NoError(t, err)
	require.NotEmpty(t, sections)
	assert.Equal(t, "sobre", sections[0].ID)
}

func TestSectionID(t *testing.T) {
	assert.Equal(t, "sobre", sectionID("01-sobre.md"))
	assert.Equal(t, "meus-projetos", sectionID("10-meus-projetos.md"))
	assert.Equal(t, "dark-mode", sectionID("dark-mode.md"))
}

func TestBuild(t *testing.T) {
	d := Build(Options{
		Profile:  schema.DefaultProfile(),
		Sections: []Section{{ID: "sobre", Title: "Sobre", HTML: "<h1>Sobre</h1>"}},
		Year:     2026,
	})

	for _, sel := range []string{
		theme.ToggleSelector,
		theme.LogoSelector,
		theme.MetaColorSelector,
		navigation.DefaultSelectors.Toggle,
		navigation.DefaultSelectors.Nav,
		navigation.DefaultSelectors.Header,
		navigation.DefaultSelectors.Links,
		"section#sobre",
		`script[src="/static/client.js"]`,
		`link[href="/styles.css"]`,
	} {
		assert.NotNil(t, d.QuerySelector(sel), sel)
	}

	lang, _ := d.DocumentElement().Attr("lang")
	assert.Equal(t, "pt-BR", lang)
	assert.False(t, d.DocumentElement().HasClass(theme.MarkerClass))

	var b strings.Builder
	require.NoError(t, d.Render(&b))
	out := b.String()
	assert.Contains(t, out, "<h1>Sobre</h1>")
	assert.Contains(t, out, "© 2026 Luis Neves")
	assert.Contains(t, out, `href="#sobre"`)
}
