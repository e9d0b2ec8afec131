package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// connWithMutex wraps a WebSocket connection with its own mutex for thread-safe writes.
type connWithMutex struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// WSConnectionManager tracks the websocket of each attached session.
type WSConnectionManager struct {
	mu          sync.RWMutex
	connections map[string]*connWithMutex
}

// NewWSConnectionManager creates a new WebSocket connection manager.
func NewWSConnectionManager() *WSConnectionManager {
	return &WSConnectionManager{
		connections: make(map[string]*connWithMutex),
	}
}

// Add registers conn as the socket of session id.
func (m *WSConnectionManager) Add(id string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connections[id] = &connWithMutex{
		conn: conn,
	}
}

// Remove forgets the socket of session id.
func (m *WSConnectionManager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.connections, id)
}

// Len returns the number of tracked sockets.
func (m *WSConnectionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

func (m *WSConnectionManager) snapshot() map[string]*connWithMutex {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conns := make(map[string]*connWithMutex, len(m.connections))
	for id, cwm := range m.connections {
		conns[id] = cwm
	}
	return conns
}

// Ping sends a ping to every socket. Sockets that fail are closed and
// removed; their read loops then end the sessions. It returns the IDs of the
// failed sockets.
func (m *WSConnectionManager) Ping(timeout time.Duration) []string {
	var failed []string
	for id, cwm := range m.snapshot() {
		cwm.mu.Lock()
		err := cwm.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(timeout))
		cwm.mu.Unlock()

		if err != nil {
			failed = append(failed, id)
			m.Remove(id)
			_ = cwm.conn.Close()
		}
	}
	return failed
}

// CloseAll sends a close frame to every socket and closes it.
func (m *WSConnectionManager) CloseAll(timeout time.Duration) {
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
	for id, cwm := range m.snapshot() {
		cwm.mu.Lock()
		_ = cwm.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(timeout))
		cwm.mu.Unlock()
		_ = cwm.conn.Close()
		m.Remove(id)
	}
}

// WriteJSON safely writes JSON to the socket of session id using its mutex.
func (m *WSConnectionManager) WriteJSON(id string, message interface{}) error {
	m.mu.RLock()
	cwm, exists := m.connections[id]
	m.mu.RUnlock()

	if !exists {
		return errConnectionGone
	}

	cwm.mu.Lock()
	defer cwm.mu.Unlock()
	return cwm.conn.WriteJSON(message)
}
