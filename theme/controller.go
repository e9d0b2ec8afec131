package theme

import (
	"strings"

	"go.uber.org/zap"

	"portfolio/dom"
)

// Controller resolves, applies, persists and keeps in sync the page theme.
//
// The applied theme lives in the document: the marker class on the root is the
// single source of truth, read back by Toggle. Only explicit choices are
// persisted; the startup resolution and system preference changes are not.
type Controller struct {
	doc    *dom.Document
	store  Store
	system PreferenceSource
	logger *zap.Logger

	onApply func(Theme, Source)

	root   *dom.Element
	toggle *dom.Element
	logo   *dom.Element
	meta   *dom.Element

	clickListener *dom.Listener
	keyListener   *dom.Listener
	unsubscribe   func()
	bound         bool

	// Once the store fails the controller keeps the preference in memory.
	memoryOnly bool
	memory     Theme
	hasMemory  bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOnApply registers fn to be called after every applied theme.
func WithOnApply(fn func(Theme, Source)) Option {
	return func(c *Controller) {
		c.onApply = fn
	}
}

// NewController creates a controller for doc. A nil store keeps preferences in
// memory; a nil system source reports a light preference and never changes.
func NewController(doc *dom.Document, store Store, system PreferenceSource, opts ...Option) *Controller {
	c := &Controller{
		doc:    doc,
		store:  store,
		system: system,
		logger: zap.NewNop(),
		root:   doc.DocumentElement(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.memoryOnly = true
	}
	if c.system == nil {
		c.system = StaticPreference(false)
	}
	c.clickListener = dom.NewListener(c.handleClick)
	c.keyListener = dom.NewListener(c.handleKeydown)
	return c
}

// Initialize binds the controller to the document and renders the initial
// theme. Without a toggle control it logs a warning and returns
// ErrMissingRequiredElement. Calling it again while bound does nothing.
func (c *Controller) Initialize() error {
	if c.bound {
		return nil
	}

	c.toggle = c.doc.QuerySelector(ToggleSelector)
	if c.toggle == nil {
		c.logger.Warn("missing toggle control", zap.String("selector", ToggleSelector))
		return ErrMissingRequiredElement
	}
	c.logo = c.doc.QuerySelector(LogoSelector)
	c.meta = c.doc.QuerySelector(MetaColorSelector)

	t, src := c.resolveInitial()
	c.render(t, src)

	c.toggle.AddEventListener("click", c.clickListener)
	c.doc.AddEventListener("keydown", c.keyListener)
	c.unsubscribe = c.system.Subscribe(c.OnSystemPreferenceChange)
	c.bound = true

	c.logger.Debug("theme initialized",
		zap.Stringer("theme", t),
		zap.String("source", string(src)),
		zap.Bool("logo", c.logo != nil),
		zap.Bool("meta", c.meta != nil),
	)
	return nil
}

// Close removes every listener and subscription registered by Initialize.
func (c *Controller) Close() {
	if !c.bound {
		return
	}
	c.toggle.RemoveEventListener("click", c.clickListener)
	c.doc.RemoveEventListener("keydown", c.keyListener)
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.bound = false
}

// ResolveInitialTheme returns the theme the page should start with.
func (c *Controller) ResolveInitialTheme() Theme {
	t, _ := c.resolveInitial()
	return t
}

func (c *Controller) resolveInitial() (Theme, Source) {
	stored, ok := c.stored()
	return Resolve(stored, ok, c.system.PrefersDark())
}

// Theme returns the applied theme as read from the document root.
func (c *Controller) Theme() Theme {
	return FromDark(c.root.HasClass(MarkerClass))
}

// ApplyTheme renders t and records it as the user's explicit choice.
func (c *Controller) ApplyTheme(t Theme) {
	if _, ok := Parse(string(t)); !ok {
		c.logger.Warn("ignoring unknown theme", zap.String("theme", string(t)))
		return
	}
	c.render(t, SourceExplicit)
	c.persist(t)
}

// Toggle applies the complement of the currently rendered theme.
func (c *Controller) Toggle() {
	c.ApplyTheme(c.Theme().Opposite())
}

// OnSystemPreferenceChange follows the operating system preference as long as
// the user has not made an explicit choice.
func (c *Controller) OnSystemPreferenceChange(isDark bool) {
	if _, ok := c.stored(); ok {
		c.logger.Debug("system preference ignored, explicit choice stored", zap.Bool("dark", isDark))
		return
	}
	c.render(FromDark(isDark), SourceSystem)
}

// render updates the document. All changes are made before it returns.
func (c *Controller) render(t Theme, src Source) {
	c.root.SetClass(MarkerClass, t == Dark)
	if c.logo != nil {
		c.logo.SetAttr("src", LogoPath(t))
	}
	if c.meta != nil {
		c.meta.SetAttr("content", MetaColor(t))
	}
	if c.onApply != nil {
		c.onApply(t, src)
	}
}

func (c *Controller) stored() (Theme, bool) {
	if c.memoryOnly {
		return c.memory, c.hasMemory
	}
	v, ok, err := c.store.GetItem(StorageKey)
	if err != nil {
		c.degrade("read", err)
		return c.memory, c.hasMemory
	}
	if !ok {
		c.memory, c.hasMemory = "", false
		return "", false
	}
	t, valid := Parse(v)
	if !valid {
		c.logger.Debug("ignoring unrecognized stored theme", zap.String("value", v))
		c.memory, c.hasMemory = "", false
		return "", false
	}
	// Remember the last good read so a later store failure keeps it.
	c.memory, c.hasMemory = t, true
	return t, true
}

func (c *Controller) persist(t Theme) {
	c.memory, c.hasMemory = t, true
	if c.memoryOnly {
		return
	}
	if err := c.store.SetItem(StorageKey, string(t)); err != nil {
		c.degrade("write", err)
	}
}

func (c *Controller) degrade(op string, err error) {
	c.memoryOnly = true
	c.logger.Warn("preference storage unavailable, keeping theme in memory",
		zap.String("op", op),
		zap.Error(err),
	)
}

func (c *Controller) handleClick(*dom.Event) {
	c.Toggle()
}

func (c *Controller) handleKeydown(ev *dom.Event) {
	if IsToggleShortcut(ev) {
		c.Toggle()
	}
}

// IsToggleShortcut reports whether ev is the Ctrl+Shift+D chord.
func IsToggleShortcut(ev *dom.Event) bool {
	return ev.Ctrl && ev.Shift && !ev.Alt && !ev.Meta && strings.EqualFold(ev.Key, "d")
}

// StaticPreference is a PreferenceSource that never changes.
type StaticPreference bool

// PrefersDark implements PreferenceSource.
func (p StaticPreference) PrefersDark() bool { return bool(p) }

// Subscribe implements PreferenceSource. The callback is never invoked.
func (p StaticPreference) Subscribe(func(bool)) func() { return func() {} }
