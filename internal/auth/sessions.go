package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoSession is returned by a SessionStore for an unknown or expired id.
var ErrNoSession = errors.New("no such session")

// SessionStore maps live session ids to usernames.
type SessionStore interface {
	Put(ctx context.Context, id, username string, ttl time.Duration) error
	Get(ctx context.Context, id string) (string, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

type memorySession struct {
	username string
	expires  time.Time
}

// MemorySessions is a process-local SessionStore.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]memorySession), now: time.Now}
}

func (m *MemorySessions) Put(_ context.Context, id, username string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = memorySession{username: username, expires: m.now().Add(ttl)}
	return nil
}

func (m *MemorySessions) Get(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return "", ErrNoSession
	}
	if !m.now().Before(s.expires) {
		delete(m.sessions, id)
		return "", ErrNoSession
	}
	return s.username, nil
}

func (m *MemorySessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MemorySessions) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = make(map[string]memorySession)
	return nil
}
