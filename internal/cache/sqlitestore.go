package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists posts in a SQLite database so they survive restarts.
type SQLiteStore struct {
	db      *sql.DB
	session string
}

var _ Store = (*SQLiteStore)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS post_cache (
	session_id TEXT NOT NULL,
	input TEXT NOT NULL,
	content TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (session_id, input)
);
`

// NewSQLiteStore opens (or creates) the database at path. The parent
// directory is created if needed.
func NewSQLiteStore(path, session string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("cache: sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("cache: create directory: %w", err)
	}

	// Pragmas go in the DSN so every pooled connection gets them.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("cache: open database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: create schema: %w", err)
	}
	return &SQLiteStore{db: db, session: session}, nil
}

// Get implements Store.
func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM post_cache WHERE session_id = ? AND input = ?`,
		s.session, key,
	).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cache: get: %w", err)
	}
	return content, true, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO post_cache (session_id, input, content, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(session_id, input) DO UPDATE SET
			content = excluded.content,
			updated_at = excluded.updated_at`,
		s.session, key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("cache: put: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
