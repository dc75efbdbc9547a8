package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go driver, registers "sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS history_entries (
	id          TEXT PRIMARY KEY,
	position    INTEGER NOT NULL,
	expression  TEXT NOT NULL,
	result      TEXT NOT NULL,
	timestamp   TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_history_entries_position ON history_entries(position);
`

// SQLiteStore keeps the log in a SQLite table, one row per entry, with
// position 0 being the newest.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the database at path.
func OpenSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("sqlite history: empty database path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// One writer at a time; a single connection also keeps :memory: databases
	// from splitting across connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, expression, result, timestamp, created_at FROM history_entries ORDER BY position`)
	if err != nil {
		return []Entry{}, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e         Entry
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Expression, &e.Result, &e.Timestamp, &createdAt); err != nil {
			return []Entry{}, fmt.Errorf("scan history row: %w", err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return []Entry{}, fmt.Errorf("parse created_at of %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return []Entry{}, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// Save replaces the table contents with entries inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, entries []Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history_entries`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO history_entries (id, position, expression, result, timestamp, created_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, i, e.Expression, e.Result, e.Timestamp, e.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert history entry %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
