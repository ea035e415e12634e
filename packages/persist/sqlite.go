package persist

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"
)

// DefaultHistoryDB is the default SQLite history location.
const DefaultHistoryDB = ProjectDir + "/history.db"

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT    NOT NULL,
	label      TEXT    NOT NULL,
	content    TEXT    NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_responses_run ON responses(run_id);
`

// Entry is one stored response.
type Entry struct {
	ID        int64
	RunID     string
	Label     string
	Content   string
	CreatedAt time.Time
}

// SQLiteStore records responses in a SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	path  string
	runID string
	now   func() time.Time
}

// OpenSQLite opens (and creates if needed) the history database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		path = DefaultHistoryDB
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize history database: %w", err)
	}

	return &SQLiteStore{db: db, path: path, now: time.Now}, nil
}

// ForRun returns a store that tags new entries with runID. Both stores
// share the database handle.
func (s *SQLiteStore) ForRun(runID string) *SQLiteStore {
	c := *s
	c.runID = runID
	return &c
}

func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Persist(content, label string) error {
	_, err := s.db.Exec(
		`INSERT INTO responses (run_id, label, content, created_at) VALUES (?, ?, ?, ?)`,
		s.runID, label, content, s.now().Unix(),
	)
	if err != nil {
		return &WriteError{Label: label, Path: s.path, Err: err}
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *SQLiteStore) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, run_id, label, content, created_at FROM responses ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.ID, &e.RunID, &e.Label, &e.Content, &created); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.CreatedAt = time.Unix(created, 0)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}
