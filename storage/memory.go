package storage

import (
	"context"
	"sync"
)

// Memory is a process-local Store. Values are lost on restart.
type Memory struct {
	mu     sync.RWMutex
	items  map[string]map[string]string
	closed bool
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string]map[string]string)}
}

func (m *Memory) Get(_ context.Context, clientID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, ErrClosed
	}
	v, ok := m.items[clientID][key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, clientID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	bucket, ok := m.items[clientID]
	if !ok {
		bucket = make(map[string]string)
		m.items[clientID] = bucket
	}
	bucket[key] = value
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
