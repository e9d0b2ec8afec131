package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"portfolio/model"
	"portfolio/respond"
	"portfolio/session"
)

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	if id == "" {
		respond.Error(w, http.StatusBadRequest, "missing session")
		return
	}

	sess, ok := s.sessions.Get(id)
	if !ok {
		respond.Error(w, http.StatusNotFound, "unknown session")
		return
	}
	if sess.ClientID() != ClientID(r.Context()) {
		respond.Error(w, http.StatusForbidden, "session belongs to another client")
		return
	}
	if _, err := s.sessions.Attach(id); err != nil {
		if errors.Is(err, session.ErrAlreadyAttached) {
			respond.Error(w, http.StatusConflict, "session already attached")
			return
		}
		respond.Error(w, http.StatusNotFound, "unknown session")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.metrics.WebsocketError("upgrade")
		s.logger.Warn("websocket upgrade failed", zap.String("session", id), zap.Error(err))
		s.sessions.Remove(id)
		return
	}

	logger := s.logger.With(zap.String("session", id))
	s.conns.Add(id, conn)
	defer func() {
		s.conns.Remove(id)
		conn.Close()
		s.sessions.Remove(id)
		logger.Debug("websocket closed")
	}()
	logger.Debug("websocket attached")

	conn.SetReadLimit(maxMessageSize)
	readWait := 2 * s.pingInterval
	_ = conn.SetReadDeadline(time.Now().Add(readWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readWait))
	})

	for {
		var msg model.ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.metrics.WebsocketError("read")
				logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(readWait))
		s.metrics.ClientMessage(messageLabel(msg.Type))

		patches, err := sess.Handle(msg)
		if err != nil {
			logger.Debug("rejected client message", zap.String("type", msg.Type), zap.Error(err))
			if err := s.conns.WriteJSON(id, model.ServerMessage{Type: model.MessageError, Error: err.Error()}); err != nil {
				s.metrics.WebsocketError("write")
				return
			}
			continue
		}
		if len(patches) == 0 {
			continue
		}

		if err := s.conns.WriteJSON(id, model.ServerMessage{Type: model.MessagePatch, Patches: patches}); err != nil {
			s.metrics.WebsocketError("write")
			logger.Debug("websocket write failed", zap.Error(err))
			return
		}
		s.metrics.PatchesSent(len(patches))
	}
}

// messageLabel bounds the metric label set to the known message types.
func messageLabel(typ string) string {
	switch typ {
	case model.MessageReady, model.MessageColorScheme, model.MessageEvent:
		return typ
	default:
		return "unknown"
	}
}
