package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portfolio/metrics"
	"portfolio/navigation"
	"portfolio/page"
	"portfolio/schema"
	"portfolio/storage"
	"portfolio/theme"
)

// DefaultPendingTTL is how long a rendered page may wait for its websocket.
const DefaultPendingTTL = 2 * time.Minute

// Options configure a Manager.
type Options struct {
	Profile  schema.Profile
	Sections []page.Section

	// Store persists explicit theme choices. Nil keeps them in memory for
	// the life of each page.
	Store storage.Store

	Metrics    *metrics.Metrics
	PendingTTL time.Duration
	Logger     *zap.Logger

	// Now replaces time.Now in tests.
	Now func() time.Time
}

// Manager creates and tracks sessions.
type Manager struct {
	opts   Options
	logger *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a manager with no sessions.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = DefaultPendingTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		opts:     opts,
		logger:   opts.Logger,
		sessions: make(map[string]*Session),
	}
}

// Create builds a page for clientID and binds its components. prefersDark
// seeds the system color scheme until the page script reports the real one.
// A component that fails to initialize is logged and left out; the page is
// still served.
func (m *Manager) Create(clientID string, prefersDark bool) *Session {
	now := m.opts.Now()
	id := uuid.NewString()
	logger := m.logger.With(zap.String("session", id))

	doc := page.Build(page.Options{
		Profile:  m.opts.Profile,
		Sections: m.opts.Sections,
		Year:     now.Year(),
	})
	doc.DocumentElement().SetAttr(page.SessionAttr, id)

	s := &Session{
		id:       id,
		clientID: clientID,
		created:  now,
		logger:   logger,
		doc:      doc,
		scheme:   newColorScheme(prefersDark),
	}

	if _, err := schema.NewInjector(m.opts.Profile, logger.Named("schema")).Inject(doc); err != nil {
		logger.Error("structured data injection failed", zap.Error(err))
	}

	s.menu = navigation.New(doc, navigation.WithLogger(logger.Named("navigation")))
	if err := s.menu.Init(); err != nil {
		logger.Error("navigation init failed", zap.Error(err))
	}

	var store theme.Store
	if m.opts.Store != nil {
		store = storage.NewBucket(m.opts.Store, clientID)
	}
	s.theme = theme.NewController(doc, store, s.scheme,
		theme.WithLogger(logger.Named("theme")),
		theme.WithOnApply(func(t theme.Theme, src theme.Source) {
			m.opts.Metrics.ThemeApplied(t.String(), string(src))
		}),
	)
	if err := s.theme.Initialize(); err != nil {
		logger.Error("theme init failed", zap.Error(err))
	}

	// Only changes made after the initial render travel as patches.
	doc.Observe(s.record)

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	m.opts.Metrics.SessionOpened()

	logger.Debug("session created", zap.String("client", clientID), zap.Bool("prefers_dark", prefersDark))
	return s
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Attach marks the session as owned by a websocket. A session can be attached
// once.
func (m *Manager) Attach(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attached {
		return nil, ErrAlreadyAttached
	}
	s.attached = true
	return s, nil
}

// Remove drops the session and unbinds its components.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return
	}
	s.close()
	m.opts.Metrics.SessionClosed()
	s.logger.Debug("session removed")
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes sessions that were never attached within the pending TTL
// and returns how many were dropped.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		s.mu.Lock()
		stale := !s.attached && now.Sub(s.created) >= m.opts.PendingTTL
		s.mu.Unlock()
		if stale {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
		m.opts.Metrics.SessionClosed()
		m.opts.Metrics.SessionSwept()
	}
	if len(expired) > 0 {
		m.logger.Debug("swept pending sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Close removes every session.
func (m *Manager) Close() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.close()
		m.opts.Metrics.SessionClosed()
	}
}
