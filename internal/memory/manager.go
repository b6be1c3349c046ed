// Package memory keeps per-session conversation history: an ordered,
// append-only sequence of turns with an optional persistent store behind it.
package memory

import (
	"context"

	"github.com/TungNguyen-dev/chatbot-ai-homnayangi/internal/logger"
)

// Manager owns the turn sequence for one session. Turns are only ever
// appended or cleared wholesale; ordering is never changed after the fact.
//
// Growth is bounded by maxTurns: once the count of non-system turns exceeds
// it, the oldest non-system turns are dropped while system turns survive.
// A maxTurns of zero disables trimming.
type Manager struct {
	sessionID string
	turns     []Turn
	maxTurns  int
	store     Store
}

// NewManager creates a history manager for one session backed by store.
func NewManager(sessionID string, maxTurns int, store Store) *Manager {
	return &Manager{sessionID: sessionID, maxTurns: maxTurns, store: store}
}

// SessionID returns the owning session's ID.
func (m *Manager) SessionID() string { return m.sessionID }

// Append adds a turn to the end of the history and persists it. Store
// failures are logged, not surfaced; the in-memory sequence stays
// authoritative.
func (m *Manager) Append(ctx context.Context, turn Turn) {
	m.turns = append(m.turns, turn)
	m.trim()
	if m.store != nil {
		if err := m.store.SaveTurn(ctx, m.sessionID, turn); err != nil {
			logger.L.Error("failed to persist turn", "session", m.sessionID, "error", err)
		}
	}
}

// History returns a copy of the turns in append order.
func (m *Manager) History() []Turn {
	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Len returns the number of turns currently held.
func (m *Manager) Len() int { return len(m.turns) }

// Clear empties the history. Partial deletion is deliberately not offered.
func (m *Manager) Clear(ctx context.Context) {
	m.turns = nil
	if m.store != nil {
		if err := m.store.DeleteSession(ctx, m.sessionID); err != nil {
			logger.L.Error("failed to clear persisted history", "session", m.sessionID, "error", err)
		}
	}
}

// trim keeps system turns and the most recent non-system turns within the
// configured bound.
func (m *Manager) trim() {
	if m.maxTurns <= 0 || len(m.turns) <= m.maxTurns {
		return
	}
	var system, other []Turn
	for _, t := range m.turns {
		if t.Role == RoleSystem {
			system = append(system, t)
		} else {
			other = append(other, t)
		}
	}
	keep := m.maxTurns - len(system)
	if keep < 0 {
		keep = 0
	}
	if len(other) > keep {
		other = other[len(other)-keep:]
	}
	m.turns = append(system, other...)
}
