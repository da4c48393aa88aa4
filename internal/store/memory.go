package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/saas-webapp/web/internal/model"
)

// MemoryStore is a thread-safe in-memory session store. With a TTL, sessions
// older than the TTL (counted from CreatedAt) are treated as absent.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a new empty in-memory session store without expiry.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWithTTL(0)
}

func NewMemoryStoreWithTTL(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]model.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Save(_ context.Context, sess *model.Session) error {
	if sess == nil || sess.Key == "" {
		return fmt.Errorf("session key cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.Key] = *sess
	return nil
}

func (m *MemoryStore) Load(_ context.Context, key string) (*model.Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[key]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	if Expired(&sess, m.ttl, m.now()) {
		m.mu.Lock()
		// re-check: a concurrent Save may have replaced the record
		if cur, ok := m.sessions[key]; ok && Expired(&cur, m.ttl, m.now()) {
			delete(m.sessions, key)
		}
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}

func (m *MemoryStore) PurgeExpired(_ context.Context) (int, error) {
	if m.ttl <= 0 {
		return 0, nil
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, sess := range m.sessions {
		if Expired(&sess, m.ttl, now) {
			delete(m.sessions, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

var _ Purger = (*MemoryStore)(nil)
