// Package cache stores finished blog posts keyed by the verbatim user input
// that produced them. Every store is scoped to one session identity.
package cache

import (
	"context"
	"errors"
	"fmt"
)

// DefaultSessionID is the session every store uses unless configured
// otherwise.
const DefaultSessionID = "blog-post-generator"

// ErrUnavailable is returned by Open when a backend is not compiled in.
var ErrUnavailable = errors.New("cache: backend unavailable in this build")

// Store is a session-scoped key-value cache of final posts. Keys are not
// normalized. Concurrent use with distinct keys is safe; racing writers on
// the same key leave the last write in place.
type Store interface {
	// Get returns the cached value and true, or "" and false on a miss.
	Get(ctx context.Context, key string) (string, bool, error)

	// Put stores value under key, replacing any earlier value.
	Put(ctx context.Context, key, value string) error

	// Close releases resources held by the store.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendKuzu   = "kuzu"
)

// Options selects and configures a store.
type Options struct {
	Backend   string
	Path      string
	SessionID string
}

// Open builds the store named by opts.Backend. An empty backend selects the
// in-memory store.
func Open(opts Options) (Store, error) {
	session := opts.SessionID
	if session == "" {
		session = DefaultSessionID
	}
	switch opts.Backend {
	case "", BackendMemory:
		return NewMemStore(session), nil
	case BackendSQLite:
		s, err := NewSQLiteStore(opts.Path, session)
		if err != nil {
			return nil, err
		}
		return s, nil
	case BackendKuzu:
		s, err := NewKuzuStore(opts.Path, session)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("cache: unknown backend %q", opts.Backend)
}
