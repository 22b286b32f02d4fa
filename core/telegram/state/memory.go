package state

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store for tests and single-process deployments.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]Session)}
}

// Get returns the session for a user, or an idle session when none exists.
func (m *MemoryStore) Get(_ context.Context, userID int64) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if sess, ok := m.sessions[userID]; ok {
		return cloneSession(sess), nil
	}
	return Session{State: StateNone}, nil
}

// Set stores the session for a user, last write wins.
func (m *MemoryStore) Set(_ context.Context, userID int64, sess Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = cloneSession(sess)
	return nil
}

// Clear removes the session for a user.
func (m *MemoryStore) Clear(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
	return nil
}

func cloneSession(sess Session) Session {
	out := Session{State: sess.State}
	if sess.Data != nil {
		out.Data = make(map[string]string, len(sess.Data))
		for k, v := range sess.Data {
			out.Data[k] = v
		}
	}
	return out
}
