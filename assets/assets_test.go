package assets

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/theme"
)

func TestEmbeddedFiles(t *testing.T) {
	_, err := fs.Stat(Static(), "client.js")
	require.NoError(t, err)

	for _, p := range []string{theme.LogoLightPath, theme.LogoDarkPath} {
		// Logo paths are page relative: ./assets/images/...
		_, err := fs.Stat(Root(), p[len("./assets/"):])
		assert.NoError(t, err, p)
	}
}

func TestStylesheetHasBothSchemes(t *testing.T) {
	palette, err := theme.LoadPalette(Files, StylesheetPath, nil)
	require.NoError(t, err)

	_, ok := palette.Scheme(theme.Light)
	assert.True(t, ok)
	_, ok = palette.Scheme(theme.Dark)
	assert.True(t, ok)
	assert.Contains(t, palette.Stylesheet(), ":root.dark")
	assert.Contains(t, palette.Stylesheet(), ".site-nav.is-open")
}
