package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/twiced-technology-gmbh/planwatch/internal/filelock"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	data       TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks (created_at, id);
`

// SQLite keeps tasks as JSON documents in a single SQLite table.
type SQLite struct {
	db       *sql.DB
	path     string
	lockPath string
}

// OpenSQLite opens (creating when needed) the database at path.
func OpenSQLite(path, lockPath string) (*SQLite, error) {
	const dirMode = 0o750
	if err := os.MkdirAll(filepath.Dir(path), dirMode); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{db: db, path: path, lockPath: lockPath}, nil
}

// Load returns all stored tasks. Rows whose data does not decode are
// reported as warnings.
func (s *SQLite) Load(ctx context.Context) ([]*task.Task, []task.ReadWarning, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, data FROM tasks ORDER BY created_at, id`)
	if err != nil {
		return nil, nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tasks []*task.Task
	var warnings []task.ReadWarning
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, nil, fmt.Errorf("scan task: %w", err)
		}
		var t task.Task
		if err := json.Unmarshal([]byte(data), &t); err != nil {
			warnings = append(warnings, task.ReadWarning{File: id, Err: err})
			continue
		}
		t.ID = id
		t.File = ""
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate tasks: %w", err)
	}

	// created_at is text; sort in Go so sub-second precision and zones agree
	// with the files store.
	SortTasks(tasks)
	return tasks, warnings, nil
}

// Commit applies upserts and deletes in one transaction.
func (s *SQLite) Commit(ctx context.Context, upserts []*task.Task, deletes []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range upserts {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("encoding task %s: %w", t.ShortID(), err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, created_at, updated_at, data) VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at, data = excluded.data`,
			t.ID, t.Created.UTC().Format(time.RFC3339Nano), t.Updated.UTC().Format(time.RFC3339Nano), string(data),
		); err != nil {
			return fmt.Errorf("saving task %s: %w", t.ShortID(), err)
		}
	}

	for _, id := range deletes {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting task %s: %w", task.ShortID(id), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Lock takes the project lock file.
func (s *SQLite) Lock(ctx context.Context) (filelock.Unlock, error) {
	return filelock.LockContext(ctx, s.lockPath)
}

// Paths returns the database file and its write-ahead log.
func (s *SQLite) Paths() []string {
	return []string{s.path, s.path + "-wal"}
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
