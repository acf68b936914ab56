package session

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a caller has no stored session.
var ErrNotFound = errors.New("session not found")

// Store keeps at most one session per caller. Implementations do not
// serialize access; callers hold the per-caller lock (KeyedMutex) across
// a full read-mutate-write cycle.
type Store interface {
	Get(ctx context.Context, callerID string) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, callerID string) error
}

// MemoryStore is the default in-process store.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

func (m *MemoryStore) Get(_ context.Context, callerID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[callerID]
	if !ok {
		return nil, ErrNotFound
	}
	// Hand out a copy so a caller can't mutate the stored record
	// without going through Put.
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) Put(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *s
	m.sessions[s.CallerID] = &cp
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, callerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, callerID)
	return nil
}
