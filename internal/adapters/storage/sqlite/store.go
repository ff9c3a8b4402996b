package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// timeLayout sorts lexically in the same order as the instants it encodes.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store implements the conversation, message and task ports on one SQLite
// database file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}
	// A single connection serializes writers, so seq assignment and
	// AUTOINCREMENT never race.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func migrate(db *sql.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"conversations", `
			CREATE TABLE IF NOT EXISTS conversations (
				id         TEXT PRIMARY KEY,
				user_id    TEXT NOT NULL,
				title      TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`},
		{"conversations index", `
			CREATE INDEX IF NOT EXISTS idx_conversations_user
			ON conversations (user_id, updated_at)`},
		{"messages", `
			CREATE TABLE IF NOT EXISTS messages (
				id              TEXT PRIMARY KEY,
				conversation_id TEXT NOT NULL REFERENCES conversations (id),
				seq             INTEGER NOT NULL,
				role            TEXT NOT NULL,
				content         TEXT NOT NULL DEFAULT '',
				call_id         TEXT NOT NULL DEFAULT '',
				call_name       TEXT NOT NULL DEFAULT '',
				call_args       TEXT NOT NULL DEFAULT '',
				tool_call_id    TEXT NOT NULL DEFAULT '',
				tool_name       TEXT NOT NULL DEFAULT '',
				created_at      TEXT NOT NULL,
				UNIQUE (conversation_id, seq)
			)`},
		{"tasks", `
			CREATE TABLE IF NOT EXISTS tasks (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				user_id     TEXT NOT NULL,
				title       TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				completed   INTEGER NOT NULL DEFAULT 0,
				created_at  TEXT NOT NULL,
				updated_at  TEXT NOT NULL
			)`},
		{"tasks index", `
			CREATE INDEX IF NOT EXISTS idx_tasks_user
			ON tasks (user_id, completed)`},
	}

	for _, st := range stmts {
		if _, err := db.Exec(st.sql); err != nil {
			return fmt.Errorf("create %s: %w", st.name, err)
		}
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
