package memory

import (
	"context"
	"strings"
	"sync"
)

// Store persists turns so a session transcript survives the process.
type Store interface {
	SaveTurn(ctx context.Context, sessionID string, turn Turn) error
	ListTurns(ctx context.Context, sessionID string) ([]Turn, error)
	DeleteSession(ctx context.Context, sessionID string) error
	Close() error
}

// NewStore creates a SQLite-backed store when a path is configured,
// otherwise an in-process store.
func NewStore(dbPath string) (Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return NewInMemoryStore(), nil
	}
	return NewSQLiteStore(dbPath)
}

// InMemoryStore keeps turns in process memory; used when no SQLite path is
// configured and in tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	turns map[string][]Turn
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{turns: make(map[string][]Turn)}
}

func (s *InMemoryStore) SaveTurn(_ context.Context, sessionID string, turn Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns[sessionID] = append(s.turns[sessionID], turn)
	return nil
}

func (s *InMemoryStore) ListTurns(_ context.Context, sessionID string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.turns[sessionID]
	out := make([]Turn, len(arr))
	copy(out, arr)
	return out, nil
}

func (s *InMemoryStore) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.turns, sessionID)
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
