// Package session holds the live page documents of connected browsers.
//
// A session is created when a page is rendered and attached when the page
// script opens its websocket. Client messages are replayed against the
// session's document and the resulting mutations are returned as patches.
package session

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"portfolio/dom"
	"portfolio/model"
	"portfolio/navigation"
	"portfolio/theme"
)

var (
	ErrNotFound         = errors.New("session: not found")
	ErrAlreadyAttached  = errors.New("session: already attached")
	ErrUnknownMessage   = errors.New("session: unknown message type")
	ErrMalformedMessage = errors.New("session: malformed message")
	ErrUnknownTarget    = errors.New("session: unknown event target")
)

// Session is one rendered page.
type Session struct {
	id       string
	clientID string
	created  time.Time
	logger   *zap.Logger

	mu       sync.Mutex
	doc      *dom.Document
	scheme   *colorScheme
	theme    *theme.Controller
	menu     *navigation.Menu
	pending  []model.Patch
	attached bool
	closed   bool
}

// ID returns the session ID embedded in the rendered page.
func (s *Session) ID() string { return s.id }

// ClientID returns the ID of the browser that owns the session.
func (s *Session) ClientID() string { return s.clientID }

// Theme returns the theme currently applied to the page.
func (s *Session) Theme() theme.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme.Theme()
}

// Render writes the current document as HTML.
func (s *Session) Render(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Render(w)
}

// Handle applies one client message and returns the patches it produced.
func (s *Session) Handle(msg model.ClientMessage) ([]model.Patch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrNotFound
	}

	switch msg.Type {
	case model.MessageReady, model.MessageColorScheme:
		if msg.PrefersDark == nil {
			return nil, fmt.Errorf("%w: %s without prefers_dark", ErrMalformedMessage, msg.Type)
		}
		s.scheme.Set(*msg.PrefersDark)

	case model.MessageEvent:
		if msg.Event == nil || msg.Event.Type == "" {
			return nil, fmt.Errorf("%w: event without type", ErrMalformedMessage)
		}
		ev := &dom.Event{
			Type:  msg.Event.Type,
			Key:   msg.Event.Key,
			Ctrl:  msg.Event.Ctrl,
			Shift: msg.Event.Shift,
			Alt:   msg.Event.Alt,
			Meta:  msg.Event.Meta,
		}
		if msg.Event.Target != "" {
			ev.Target = s.doc.ElementByHID(msg.Event.Target)
			if ev.Target == nil {
				return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, msg.Event.Target)
			}
		}
		s.doc.Dispatch(ev)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}

	return s.flush(), nil
}

func (s *Session) record(m dom.Mutation) {
	p := model.Patch{
		Op:     string(m.Op),
		Target: m.Target,
		Key:    m.Key,
		Value:  m.Value,
	}
	if m.Op == dom.MutationInsert && m.Node != nil {
		p.HTML = m.Node.HTML()
	}
	s.pending = append(s.pending, p)
}

func (s *Session) flush() []model.Patch {
	out := s.pending
	s.pending = nil
	return out
}

// close unbinds the page components. It is idempotent.
func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.theme.Close()
	s.menu.Destroy()
	s.doc.Observe(nil)
}
