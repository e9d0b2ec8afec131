package theme

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePalette = `/*
  Scheme: light
  Display: Claro
*/
:root {
  --bg: #ffffff;
  --accent: #d76f30;
}

/*
  Scheme: dark
  Display: Escuro
*/
:root {
  --bg: #1a1a1a;
  --accent: #f0a060;
}

/* Base CSS */
body { background: var(--bg); }
`

func TestParseSchemeMetadata(t *testing.T) {
	meta := ParseSchemeMetadata("/*\n * Scheme: dark\n * Display: Escuro\n */")
	assert.Equal(t, SchemeMetadata{Scheme: "dark", Display: "Escuro"}, meta)

	assert.Equal(t, SchemeMetadata{}, ParseSchemeMetadata("no comment"))
	assert.Equal(t, SchemeMetadata{}, ParseSchemeMetadata("/* unterminated"))
}

func TestParseSchemes(t *testing.T) {
	blocks, base := ParseSchemes(samplePalette)
	require.Len(t, blocks, 2)

	assert.Equal(t, "light", blocks[0].Scheme)
	assert.Equal(t, "Claro", blocks[0].Display)
	assert.Equal(t, "--bg: #ffffff;\n  --accent: #d76f30;", blocks[0].Declarations)
	assert.Equal(t, "dark", blocks[1].Scheme)
	assert.Equal(t, "body { background: var(--bg); }", base)
}

func TestParseSchemesSkipsDuplicatesAndPlainComments(t *testing.T) {
	css := `/* just a note */
/* Scheme: light */
:root { --bg: #fff; }
/* Scheme: light */
:root { --bg: #000; }
a { color: red; }`

	blocks, base := ParseSchemes(css)
	require.Len(t, blocks, 1)
	assert.Equal(t, "--bg: #fff;", blocks[0].Declarations)
	assert.Equal(t, "a { color: red; }", base)
}

func TestPaletteStylesheet(t *testing.T) {
	p, err := ParsePalette(samplePalette, nil)
	require.NoError(t, err)

	css := p.Stylesheet()
	assert.True(t, strings.HasPrefix(css, ":root {\n  --bg: #ffffff;\n"))
	assert.Contains(t, css, ":root.dark {\n  --bg: #1a1a1a;\n  --accent: #f0a060;\n}\n")
	assert.True(t, strings.HasSuffix(css, "body { background: var(--bg); }\n"))

	dark, ok := p.Scheme(Dark)
	require.True(t, ok)
	assert.Equal(t, "Escuro", dark.Display)
}

func TestParsePaletteRequiresLight(t *testing.T) {
	_, err := ParsePalette("/* Scheme: dark */\n:root { --bg: #000; }", nil)
	assert.ErrorIs(t, err, ErrIncompletePalette)
}

func TestLoadPalette(t *testing.T) {
	fsys := fstest.MapFS{"css/site.css": {Data: []byte(samplePalette)}}

	p, err := LoadPalette(fsys, "css/site.css", nil)
	require.NoError(t, err)
	assert.Contains(t, p.Stylesheet(), ":root.dark")

	_, err = LoadPalette(fsys, "css/missing.css", nil)
	assert.Error(t, err)
}
