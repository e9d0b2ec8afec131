package theme

import "errors"

// Theme is the visual mode of the page.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Parse converts a stored or submitted value into a Theme. Only the exact
// strings "light" and "dark" are accepted.
func Parse(s string) (Theme, bool) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), true
	default:
		return "", false
	}
}

// FromDark returns Dark when dark is true and Light otherwise.
func FromDark(dark bool) Theme {
	if dark {
		return Dark
	}
	return Light
}

// Opposite returns the other theme.
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

func (t Theme) String() string { return string(t) }

// Source records why a theme was applied.
type Source string

const (
	SourceStored   Source = "stored"
	SourceSystem   Source = "system"
	SourceDefault  Source = "default"
	SourceExplicit Source = "explicit"
)

const (
	// StorageKey is the key the explicit preference is persisted under.
	StorageKey = "theme-preference"

	// MarkerClass on the document root marks dark mode as active.
	MarkerClass = "dark"

	LogoLightPath = "./assets/images/logo-LN_ligthmode.png"
	LogoDarkPath  = "./assets/images/logo-LN_darkmode.png"

	MetaColorLight = "#d76f30"
	MetaColorDark  = "#1a1a1a"

	ToggleSelector    = "#dark-mode-toggle"
	LogoSelector      = "#logo-navbar"
	MetaColorSelector = `meta[name="theme-color"]`
)

// ErrMissingRequiredElement is returned by Initialize when the toggle control
// is not in the document.
var ErrMissingRequiredElement = errors.New("theme: missing required element")

// Store is the key-value persistence explicit choices are written to.
type Store interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
}

// PreferenceSource reports whether the operating system prefers a dark color
// scheme and notifies subscribers when that changes.
type PreferenceSource interface {
	PrefersDark() bool
	Subscribe(fn func(isDark bool)) (cancel func())
}

// Resolve applies the startup precedence: a stored preference, then the
// system preference, then light.
func Resolve(stored Theme, hasStored bool, systemDark bool) (Theme, Source) {
	if hasStored {
		return stored, SourceStored
	}
	if systemDark {
		return Dark, SourceSystem
	}
	return Light, SourceDefault
}

// LogoPath returns the logo asset for t.
func LogoPath(t Theme) string {
	if t == Dark {
		return LogoDarkPath
	}
	return LogoLightPath
}

// MetaColor returns the theme-color meta value for t.
func MetaColor(t Theme) string {
	if t == Dark {
		return MetaColorDark
	}
	return MetaColorLight
}
