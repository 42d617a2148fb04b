// Package history persists the server-side conversation log in SQLite.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

// ErrEmptyUserID is returned when an entry has no owner.
var ErrEmptyUserID = errors.New("user id is required")

// Entry is one stored chat turn.
type Entry struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Role      string    `db:"role"`
	Content   string    `db:"content"`
	Timestamp time.Time `db:"timestamp"`
}

// Store reads and writes chat_histories.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open connects to the sqlite database at path, creating the file and schema if needed.
func Open(path string, opts ...Option) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	// sqlite allows one writer at a time.
	db.SetMaxOpenConns(1)

	s, err := New(db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and ensures the schema exists.
func New(db *sqlx.DB, opts ...Option) (*Store, error) {
	createTable := `
	CREATE TABLE IF NOT EXISTS chat_histories (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)
	`
	if _, err := db.Exec(createTable); err != nil {
		return nil, fmt.Errorf("failed to create chat_histories table: %w", err)
	}
	createIndex := `CREATE INDEX IF NOT EXISTS idx_chat_histories_user ON chat_histories (user_id, timestamp)`
	if _, err := db.Exec(createIndex); err != nil {
		return nil, fmt.Errorf("failed to create chat_histories index: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Save appends a turn for userID and returns the stored entry.
func (s *Store) Save(ctx context.Context, userID, role, content string) (Entry, error) {
	if strings.TrimSpace(userID) == "" {
		return Entry{}, ErrEmptyUserID
	}

	entry := Entry{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		Content:   content,
		Timestamp: s.now().UTC(),
	}
	query := `INSERT INTO chat_histories (id, user_id, role, content, timestamp) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, entry.ID, entry.UserID, entry.Role, entry.Content, entry.Timestamp); err != nil {
		return Entry{}, fmt.Errorf("failed to add chat_history: %w", err)
	}

	slog.Debug("history_saved",
		slog.String("id", entry.ID),
		slog.String("user_id", entry.UserID),
		slog.String("role", entry.Role),
	)
	return entry, nil
}

// Recent returns up to limit of the newest entries for userID, oldest first.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	var entries []Entry
	query := `
		SELECT id, user_id, role, content, timestamp
		FROM chat_histories
		WHERE user_id = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`
	if err := s.db.SelectContext(ctx, &entries, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get chat_histories for %s: %w", userID, err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// Clear deletes every entry for userID.
func (s *Store) Clear(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chat_histories WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear chat_histories for %s: %w", userID, err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
