package auth

import (
	"context"
	"sync"
	"time"
)

type memorySession struct {
	token     string
	expiresAt time.Time
}

// MemorySessionStore is an in-process SessionStore used for tests and
// single-node deployments. A mutex over the map gives the same per-key
// last-writer-wins semantics the Redis store gets from single-key commands.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore creates an empty in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		now:      time.Now,
	}
}

// WithTimeFunc overrides the clock, used to exercise TTL expiry in tests
func (s *MemorySessionStore) WithTimeFunc(now func() time.Time) *MemorySessionStore {
	if now != nil {
		s.now = now
	}
	return s
}

// Put replaces the session record for userID and resets its expiry
func (s *MemorySessionStore) Put(_ context.Context, userID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[userID] = memorySession{
		token:     token,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Get returns the current token for userID, or "" when no live record
// exists. Expired records are dropped lazily, so callers can not tell
// expiry from deletion.
func (s *MemorySessionStore) Get(_ context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.sessions[userID]
	if !ok {
		return "", nil
	}

	if !s.now().Before(record.expiresAt) {
		delete(s.sessions, userID)
		return "", nil
	}

	return record.token, nil
}

// Delete removes the record for userID; deleting an absent key is a no-op
func (s *MemorySessionStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, userID)
	return nil
}
