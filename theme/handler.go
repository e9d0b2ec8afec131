package theme

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"portfolio/respond"
)

// ClientHintHeader carries the browser's color scheme preference when the
// server has asked for it with Accept-CH.
const ClientHintHeader = "Sec-CH-Prefers-Color-Scheme"

// PrefersDarkFromRequest reads the color scheme client hint.
func PrefersDarkFromRequest(r *http.Request) bool {
	v := strings.Trim(strings.TrimSpace(r.Header.Get(ClientHintHeader)), `"`)
	return strings.EqualFold(v, "dark")
}

// StoreFunc returns the preference store of the client making r.
type StoreFunc func(r *http.Request) Store

// Handler serves the palette stylesheet and the preference API.
type Handler struct {
	palette *Palette
	stores  StoreFunc
	logger  *zap.Logger
}

// NewHandler creates a handler for palette and the per-client stores.
func NewHandler(palette *Palette, stores StoreFunc, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		palette: palette,
		stores:  stores,
		logger:  logger,
	}
}

// HandleStylesheet serves the composed palette CSS.
func (h *Handler) HandleStylesheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(h.palette.Stylesheet()))
}

// PreferenceResponse describes the client's stored and effective theme.
type PreferenceResponse struct {
	Stored     string `json:"stored,omitempty"`
	Theme      Theme  `json:"theme"`
	Source     Source `json:"source"`
	SystemDark bool   `json:"system_dark"`
	LogoPath   string `json:"logo"`
	ThemeColor string `json:"theme_color"`
}

type preferenceRequest struct {
	Theme string `json:"theme"`
}

// HandleGetPreference resolves the theme the requesting client would start
// with.
func (h *Handler) HandleGetPreference(w http.ResponseWriter, r *http.Request) {
	store := h.stores(r)
	value, ok, err := store.GetItem(StorageKey)
	if err != nil {
		h.logger.Error("read preference", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to read preference")
		return
	}

	stored, valid := Parse(value)
	systemDark := PrefersDarkFromRequest(r)
	t, src := Resolve(stored, ok && valid, systemDark)

	resp := PreferenceResponse{
		Theme:      t,
		Source:     src,
		SystemDark: systemDark,
		LogoPath:   LogoPath(t),
		ThemeColor: MetaColor(t),
	}
	if ok && valid {
		resp.Stored = string(stored)
	}
	respond.JSON(w, http.StatusOK, resp)
}

// HandlePutPreference stores an explicit theme choice.
func (h *Handler) HandlePutPreference(w http.ResponseWriter, r *http.Request) {
	var req preferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	t, ok := Parse(req.Theme)
	if !ok {
		respond.Error(w, http.StatusBadRequest, `theme must be "light" or "dark"`)
		return
	}

	if err := h.stores(r).SetItem(StorageKey, string(t)); err != nil {
		h.logger.Error("write preference", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to store preference")
		return
	}

	respond.JSON(w, http.StatusOK, PreferenceResponse{
		Stored:     string(t),
		Theme:      t,
		Source:     SourceExplicit,
		SystemDark: PrefersDarkFromRequest(r),
		LogoPath:   LogoPath(t),
		ThemeColor: MetaColor(t),
	})
}
