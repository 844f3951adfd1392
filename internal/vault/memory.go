package vault

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a map. Used by the simulation backend setup
// and by tests; the server wires PostgresStore when DATABASE_URL is set.
// Mutex is required because Go maps are NOT thread-safe.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*EncryptedSession
	events   []AuthEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*EncryptedSession),
	}
}

func key(userID, platformName string) string {
	return userID + "/" + platformName
}

func (m *MemoryStore) Upsert(_ context.Context, s *EncryptedSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sessions[key(s.UserID, s.Platform)] = &cp
	return nil
}

func (m *MemoryStore) Get(_ context.Context, userID, platformName string) (*EncryptedSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key(userID, platformName)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) Touch(_ context.Context, userID, platformName string, lastUsed time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key(userID, platformName)]
	if !ok {
		return ErrNotFound
	}
	s.LastUsedAt = lastUsed
	return nil
}

func (m *MemoryStore) SetExpiry(_ context.Context, userID, platformName string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key(userID, platformName)]
	if !ok {
		return ErrNotFound
	}
	s.ExpiresAt = expiresAt
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, userID, platformName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key(userID, platformName))
	return nil
}

func (m *MemoryStore) DeleteAll(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, s := range m.sessions {
		if s.UserID == userID {
			delete(m.sessions, k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, s := range m.sessions {
		if now.After(s.ExpiresAt) {
			delete(m.sessions, k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) AppendEvent(_ context.Context, e AuthEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

// Events returns a copy of the audit trail, oldest first.
func (m *MemoryStore) Events() []AuthEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AuthEvent, len(m.events))
	copy(out, m.events)
	return out
}
