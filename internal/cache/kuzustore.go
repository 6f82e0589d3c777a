//go:build cgo

package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore keeps posts as CachedPost nodes in a KuzuDB database. It requires
// CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	mu      sync.Mutex
	db      *kuzu.Database
	conn    *kuzu.Connection
	session string
}

var _ Store = (*KuzuStore)(nil)

const kuzuSchema = `CREATE NODE TABLE IF NOT EXISTS CachedPost(
	id STRING,
	session_id STRING,
	input STRING,
	content STRING,
	updated_at INT64,
	PRIMARY KEY(id)
)`

// NewKuzuStore opens a KuzuDB database at path, or an in-memory one when
// path is empty or ":memory:".
func NewKuzuStore(path, session string) (*KuzuStore, error) {
	if path == "" {
		path = ":memory:"
	}
	if path != ":memory:" {
		// KuzuDB creates the leaf directory itself.
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
		}
	}
	db, err := kuzu.OpenDatabase(path, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	res, err := conn.Query(kuzuSchema)
	if err != nil {
		conn.Close()
		db.Close()
		return nil, fmt.Errorf("kuzu: init schema: %w", err)
	}
	res.Close()
	return &KuzuStore{db: db, conn: conn, session: session}, nil
}

// Get implements Store.
func (s *KuzuStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.conn.Prepare("MATCH (p:CachedPost {id: $id}) RETURN p.content")
	if err != nil {
		return "", false, fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()
	res, err := s.conn.Execute(stmt, map[string]any{"id": s.id(key)})
	if err != nil {
		return "", false, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	if !res.HasNext() {
		return "", false, nil
	}
	tuple, err := res.Next()
	if err != nil {
		return "", false, fmt.Errorf("kuzu: next: %w", err)
	}
	vals, err := tuple.GetAsSlice()
	if err != nil {
		return "", false, fmt.Errorf("kuzu: row values: %w", err)
	}
	if len(vals) == 0 {
		return "", false, nil
	}
	content, _ := vals[0].(string)
	return content, true, nil
}

// Put implements Store.
func (s *KuzuStore) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmt, err := s.conn.Prepare(`MERGE (p:CachedPost {id: $id})
		ON CREATE SET p.session_id = $session, p.input = $input, p.content = $content, p.updated_at = $ts
		ON MATCH SET p.content = $content, p.updated_at = $ts`)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()
	res, err := s.conn.Execute(stmt, map[string]any{
		"id":      s.id(key),
		"session": s.session,
		"input":   key,
		"content": value,
		"ts":      time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// Close implements Store.
func (s *KuzuStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	if s.db != nil {
		s.db.Close()
		s.db = nil
	}
	return nil
}

// id namespaces key by session so the same input in two sessions maps to two
// nodes.
func (s *KuzuStore) id(key string) string {
	return s.session + "\x1f" + key
}
