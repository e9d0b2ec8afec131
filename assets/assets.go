// Package assets embeds the files served alongside the page.
package assets

import (
	"embed"
	"io/fs"
)

// StylesheetPath is the palette source inside Files.
const StylesheetPath = "css/site.css"

//go:embed css/site.css static images
var Files embed.FS

// Static returns the page scripts served under /static/.
func Static() fs.FS {
	return sub("static")
}

// Root returns every embedded file. It is served under /assets/, which is
// where the page references its logos.
func Root() fs.FS {
	return Files
}

func sub(dir string) fs.FS {
	f, err := fs.Sub(Files, dir)
	if err != nil {
		panic(err)
	}
	return f
}
