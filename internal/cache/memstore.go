package cache

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store. Entries live as long as the process, so
// the session only labels the store.
type MemStore struct {
	mu      sync.RWMutex
	session string
	posts   map[string]string
}

var _ Store = (*MemStore)(nil)

// NewMemStore returns an empty store scoped to session.
func NewMemStore(session string) *MemStore {
	return &MemStore{
		session: session,
		posts:   make(map[string]string),
	}
}

// Get implements Store.
func (m *MemStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.posts[key]
	return v, ok, nil
}

// Put implements Store.
func (m *MemStore) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[key] = value
	return nil
}

// Close implements Store.
func (m *MemStore) Close() error { return nil }
