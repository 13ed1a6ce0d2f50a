package session

import (
	"context"
	"time"

	"finweb/internal/cache"
)

const maxMemorySessions = 10000

// MemoryStore keeps sessions in an LRU cache; entries expire with the session.
type MemoryStore struct {
	cache *cache.LRUCache[Session]
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: cache.NewLRUCache[Session](maxMemorySessions, ttl)}
}

// Cache exposes the underlying cache so a cache.Manager can clean it.
func (m *MemoryStore) Cache() *cache.LRUCache[Session] { return m.cache }

func (m *MemoryStore) Save(_ context.Context, s Session) error {
	if s.ExpiresAt.IsZero() {
		m.cache.Set(s.ID, s)
		return nil
	}
	m.cache.SetUntil(s.ID, s, s.ExpiresAt)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Session, error) {
	s, ok := m.cache.Get(id)
	if !ok {
		return Session{}, ErrNotFound
	}
	return s, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.cache.Delete(id)
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }
