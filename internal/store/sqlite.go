package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/eliseohh/keralastatsbot/internal/fault"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `CREATE TABLE IF NOT EXISTS last_messages (
	sender     TEXT PRIMARY KEY,
	text       TEXT NOT NULL,
	updated_at TEXT NOT NULL
);`

type SQLiteStore struct {
	*sql.DB
}

func NewSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fault.New(fault.Store, "open sqlite", fmt.Errorf("failed to open db: %w", err))
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fault.New(fault.Store, "open sqlite", fmt.Errorf("failed to ping db: %w", err))
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fault.New(fault.Store, "open sqlite", fmt.Errorf("failed to apply schema: %w", err))
	}

	return &SQLiteStore{db}, nil
}

// Set upserts; the previous text for key is overwritten.
func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	_, err := s.ExecContext(ctx, `INSERT INTO last_messages (sender, text, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(sender) DO UPDATE SET text = excluded.text, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fault.New(fault.Store, "set "+key, err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var text string
	err := s.QueryRowContext(ctx, "SELECT text FROM last_messages WHERE sender = ?", key).Scan(&text)
	if err != nil {
		return "", fault.New(fault.Store, "get "+key, err)
	}
	return text, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.QueryRowContext(ctx, "SELECT COUNT(*) FROM last_messages").Scan(&n); err != nil {
		return 0, fault.New(fault.Store, "count", err)
	}
	return n, nil
}
