package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/model"
	"portfolio/navigation"
	"portfolio/page"
	"portfolio/schema"
	"portfolio/storage"
	"portfolio/theme"
)

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, store storage.Store) *Manager {
	t.Helper()
	return NewManager(Options{
		Profile:    schema.DefaultProfile(),
		Sections:   []page.Section{{ID: "sobre", Title: "Sobre", HTML: "<p>oi</p>"}},
		Store:      store,
		PendingTTL: time.Minute,
		Now:        func() time.Time { return testNow },
	})
}

func boolPtr(b bool) *bool { return &b }

func hid(t *testing.T, s *Session, sel string) string {
	t.Helper()
	el := s.doc.QuerySelector(sel)
	require.NotNil(t, el, sel)
	return el.HID()
}

func findPatch(patches []model.Patch, target, key string) (model.Patch, bool) {
	for _, p := range patches {
		if p.Target == target && p.Key == key {
			return p, true
		}
	}
	return model.Patch{}, false
}

func TestCreateRendersLightByDefault(t *testing.T) {
	m := newTestManager(t, storage.NewMemory())
	s := m.Create("client-1", false)

	assert.Equal(t, theme.Light, s.Theme())
	assert.Equal(t, 1, m.Len())

	var b strings.Builder
	require.NoError(t, s.Render(&b))
	out := b.String()
	assert.Contains(t, out, `data-session="`+s.ID()+`"`)
	assert.Contains(t, out, schema.ScriptType)
	assert.Contains(t, out, theme.LogoLightPath)
}

func TestCreateSeedsSystemPreference(t *testing.T) {
	m := newTestManager(t, storage.NewMemory())
	s := m.Create("client-1", true)

	assert.Equal(t, theme.Dark, s.Theme())
	var b strings.Builder
	require.NoError(t, s.Render(&b))
	assert.Contains(t, b.String(), theme.MetaColorDark)
}

func TestReadyPatchesSystemDark(t *testing.T) {
	m := newTestManager(t, storage.NewMemory())
	s := m.Create("client-1", false)
	root := s.doc.DocumentElement().HID()

	patches, err := s.Handle(model.ClientMessage{Type: model.MessageReady, PrefersDark: boolPtr(true)})
	require.NoError(t, err)

	class, ok := findPatch(patches, root, "class")
	require.True(t, ok)
	assert.Equal(t, "set-attr", class.Op)
	assert.Equal(t, theme.MarkerClass, class.Value)

	logo, ok := findPatch(patches, hid(t, s, theme.LogoSelector), "src")
	require.True(t, ok)
	assert.Equal(t, theme.LogoDarkPath, logo.Value)

	meta, ok := findPatch(patches, hid(t, s, theme.MetaColorSelector), "content")
	require.True(t, ok)
	assert.Equal(t, theme.MetaColorDark, meta.Value)

	// Same preference again changes nothing.
	patches, err = s.Handle(model.ClientMessage{Type: model.MessageColorScheme, PrefersDark: boolPtr(true)})
	require.NoError(t, err)
	assert.Empty(t, patches)
}

func TestToggleClickPersistsForClient(t *testing.T) {
	store := storage.NewMemory()
	m := newTestManager(t, store)
	s := m.Create("client-1", false)

	patches, err := s.Handle(model.ClientMessage{
		Type:  model.MessageEvent,
		Event: &model.EventPayload{Type: "click", Target: hid(t, s, theme.ToggleSelector)},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, patches)
	assert.Equal(t, theme.Dark, s.Theme())

	v, ok, err := storage.NewBucket(store, "client-1").GetItem(theme.StorageKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "dark", v)

	// A later page for the same client starts dark and ignores the system.
	next := m.Create("client-1", false)
	assert.Equal(t, theme.Dark, next.Theme())
	patches, err = next.Handle(model.ClientMessage{Type: model.MessageReady, PrefersDark: boolPtr(true)})
	require.NoError(t, err)
	assert.Empty(t, patches)

	// Other clients are unaffected.
	assert.Equal(t, theme.Light, m.Create("client-2", false).Theme())
}

func TestKeyboardShortcut(t *testing.T) {
	m := newTestManager(t, nil)
	s := m.Create("client-1", false)

	_, err := s.Handle(model.ClientMessage{
		Type:  model.MessageEvent,
		Event: &model.EventPayload{Type: "keydown", Key: "D", Ctrl: true, Shift: true},
	})
	require.NoError(t, err)
	assert.Equal(t, theme.Dark, s.Theme())

	_, err = s.Handle(model.ClientMessage{
		Type:  model.MessageEvent,
		Event: &model.EventPayload{Type: "keydown", Key: "d", Ctrl: true},
	})
	require.NoError(t, err)
	assert.Equal(t, theme.Dark, s.Theme())
}

func TestMenuEvents(t *testing.T) {
	m := newTestManager(t, nil)
	s := m.Create("client-1", false)
	toggle := hid(t, s, navigation.DefaultSelectors.Toggle)

	patches, err := s.Handle(model.ClientMessage{
		Type:  model.MessageEvent,
		Event: &model.EventPayload{Type: "click", Target: toggle},
	})
	require.NoError(t, err)
	expanded, ok := findPatch(patches, toggle, "aria-expanded")
	require.True(t, ok)
	assert.Equal(t, "true", expanded.Value)

	patches, err = s.Handle(model.ClientMessage{
		Type:  model.MessageEvent,
		Event: &model.EventPayload{Type: "keydown", Key: navigation.CloseKey},
	})
	require.NoError(t, err)
	expanded, ok = findPatch(patches, toggle, "aria-expanded")
	require.True(t, ok)
	assert.Equal(t, "false", expanded.Value)
}

func TestHandleErrors(t *testing.T) {
	m := newTestManager(t, nil)
	s := m.Create("client-1", false)

	_, err := s.Handle(model.ClientMessage{Type: "bogus"})
	assert.ErrorIs(t, err, ErrUnknownMessage)

	_, err = s.Handle(model.ClientMessage{Type: model.MessageReady})
	assert.ErrorIs(t, err, ErrMalformedMessage)

	_, err = s.Handle(model.ClientMessage{Type: model.MessageEvent})
	assert.ErrorIs(t, err, ErrMalformedMessage)

	_, err = s.Handle(model.ClientMessage{
		Type:  model.MessageEvent,
		Event: &model.EventPayload{Type: "click", Target: "h99999"},
	})
	assert.ErrorIs(t, err, ErrUnknownTarget)
}

func TestAttach(t *testing.T) {
	m := newTestManager(t, nil)
	s := m.Create("client-1", false)

	got, err := m.Attach(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Attach(s.ID())
	assert.ErrorIs(t, err, ErrAlreadyAttached)

	_, err = m.Attach("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveUnbindsComponents(t *testing.T) {
	m := newTestManager(t, nil)
	s := m.Create("client-1", false)
	m.Remove(s.ID())

	_, ok := m.Get(s.ID())
	assert.False(t, ok)
	_, err := s.Handle(model.ClientMessage{Type: model.MessageReady, PrefersDark: boolPtr(true)})
	assert.ErrorIs(t, err, ErrNotFound)

	m.Remove(s.ID())
	assert.Equal(t, 0, m.Len())
}

func TestSweep(t *testing.T) {
	m := newTestManager(t, nil)
	pending := m.Create("client-1", false)
	attached := m.Create("client-2", false)
	_, err := m.Attach(attached.ID())
	require.NoError(t, err)

	assert.Equal(t, 0, m.Sweep(testNow.Add(30*time.Second)))
	assert.Equal(t, 1, m.Sweep(testNow.Add(time.Minute)))

	_, ok := m.Get(pending.ID())
	assert.False(t, ok)
	_, ok = m.Get(attached.ID())
	assert.True(t, ok)
}

func TestManagerClose(t *testing.T) {
	m := newTestManager(t, nil)
	m.Create("a", false)
	m.Create("b", true)
	m.Close()
	assert.Equal(t, 0, m.Len())
}

func TestColorScheme(t *testing.T) {
	c := newColorScheme(false)
	var got []bool
	cancel := c.Subscribe(func(dark bool) { got = append(got, dark) })

	c.Set(false)
	c.Set(true)
	c.Set(true)
	assert.True(t, c.PrefersDark())
	cancel()
	c.Set(false)

	assert.Equal(t, []bool{true}, got)
}
