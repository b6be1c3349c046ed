// Package session tracks active conversations. Each session owns its memory
// manager; nothing is shared across sessions.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/memory"
)

// ErrNotFound is returned when a session ID is unknown or already ended.
var ErrNotFound = errors.New("session not found")

// Session is one active conversation.
type Session struct {
	ID        string
	StartedAt time.Time
	Memory    *memory.Manager

	// mu serializes message handling: one in-flight request per session.
	mu sync.Mutex
}

// Lock acquires the session for one message exchange.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// Manager creates, looks up and ends sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	maxTurns int
	store    memory.Store
}

// NewManager creates a session manager whose sessions persist turns through
// store and trim history at maxTurns.
func NewManager(maxTurns int, store memory.Store) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		maxTurns: maxTurns,
		store:    store,
	}
}

// Create starts a new session with a fresh history.
func (m *Manager) Create() *Session {
	id := uuid.NewString()
	s := &Session{
		ID:        id,
		StartedAt: time.Now().UTC(),
		Memory:    memory.NewManager(id, m.maxTurns, m.store),
	}
	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()
	return s
}

// Get looks up an active session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// End removes a session. Its in-memory history is dropped; persisted turns
// are kept for the transcript store.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
