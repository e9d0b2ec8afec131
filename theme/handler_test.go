package theme

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, store Store) *Handler {
	t.Helper()
	p, err := ParsePalette(samplePalette, nil)
	require.NoError(t, err)
	return NewHandler(p, func(*http.Request) Store { return store }, nil)
}

func TestPrefersDarkFromRequest(t *testing.T) {
	tests := []struct {
		header string
		want   bool
	}{
		{"dark", true},
		{`"dark"`, true},
		{"Dark", true},
		{"light", false},
		{"", false},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			r.Header.Set(ClientHintHeader, tt.header)
		}
		assert.Equal(t, tt.want, PrefersDarkFromRequest(r), tt.header)
	}
}

func TestHandleStylesheet(t *testing.T) {
	h := newTestHandler(t, newMemStore())
	rec := httptest.NewRecorder()
	h.HandleStylesheet(rec, httptest.NewRequest(http.MethodGet, "/styles.css", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/css; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), ":root.dark")
}

func TestHandleGetPreference(t *testing.T) {
	store := newMemStore()
	h := newTestHandler(t, store)

	r := httptest.NewRequest(http.MethodGet, "/api/theme", nil)
	r.Header.Set(ClientHintHeader, "dark")
	rec := httptest.NewRecorder()
	h.HandleGetPreference(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp PreferenceResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, Dark, resp.Theme)
	assert.Equal(t, SourceSystem, resp.Source)
	assert.Empty(t, resp.Stored)
	assert.Equal(t, MetaColorDark, resp.ThemeColor)

	store.items[StorageKey] = "light"
	rec = httptest.NewRecorder()
	h.HandleGetPreference(rec, r)
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, Light, resp.Theme)
	assert.Equal(t, SourceStored, resp.Source)
	assert.Equal(t, "light", resp.Stored)
}

func TestHandleGetPreferenceStoreError(t *testing.T) {
	store := newMemStore()
	store.readErr = errors.New("down")
	h := newTestHandler(t, store)

	rec := httptest.NewRecorder()
	h.HandleGetPreference(rec, httptest.NewRequest(http.MethodGet, "/api/theme", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandlePutPreference(t *testing.T) {
	store := newMemStore()
	h := newTestHandler(t, store)

	rec := httptest.NewRecorder()
	h.HandlePutPreference(rec, httptest.NewRequest(http.MethodPut, "/api/theme", strings.NewReader(`{"theme":"dark"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "dark", store.items[StorageKey])

	for _, body := range []string{`{"theme":"sepia"}`, `not json`, `{}`} {
		rec = httptest.NewRecorder()
		h.HandlePutPreference(rec, httptest.NewRequest(http.MethodPut, "/api/theme", strings.NewReader(body)))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	assert.Equal(t, "dark", store.items[StorageKey])
}
