package history

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed width so generated_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store on modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens or creates the history database at path. ":memory:" is
// accepted for tests.
func Open(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	if _, err := s.db.Exec(`PRAGMA journal_mode=WAL;`); err != nil {
		return fmt.Errorf("failed to enable WAL: %w", err)
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS generations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			project_name TEXT NOT NULL,
			archive_path TEXT NOT NULL,
			generated_at TEXT NOT NULL,
			duration_seconds REAL NOT NULL,
			artifacts TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_generations_at ON generations(generated_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Record implements Store.Record.
func (s *SQLiteStore) Record(e Entry) (int64, error) {
	artifacts, err := json.Marshal(e.Artifacts)
	if err != nil {
		return 0, fmt.Errorf("failed to encode artifacts: %w", err)
	}

	res, err := s.db.Exec(
		`INSERT INTO generations(project_name,archive_path,generated_at,duration_seconds,artifacts) VALUES(?,?,?,?,?)`,
		e.ProjectName, e.ArchivePath, e.GeneratedAt.UTC().Format(timeLayout), e.DurationSeconds, string(artifacts))
	if err != nil {
		return 0, fmt.Errorf("failed to record generation: %w", err)
	}
	return res.LastInsertId()
}

// List implements Store.List.
func (s *SQLiteStore) List(limit int) ([]Entry, error) {
	query := `SELECT id,project_name,archive_path,generated_at,duration_seconds,artifacts FROM generations ORDER BY generated_at DESC, id DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// Get implements Store.Get.
func (s *SQLiteStore) Get(id int64) (*Entry, error) {
	row := s.db.QueryRow(
		`SELECT id,project_name,archive_path,generated_at,duration_seconds,artifacts FROM generations WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return e, err
}

// Delete implements Store.Delete.
func (s *SQLiteStore) Delete(id int64) error {
	res, err := s.db.Exec(`DELETE FROM generations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete history entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

// Close implements Store.Close.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(sc scanner) (*Entry, error) {
	var (
		e           Entry
		generatedAt string
		artifacts   string
	)
	if err := sc.Scan(&e.ID, &e.ProjectName, &e.ArchivePath, &generatedAt, &e.DurationSeconds, &artifacts); err != nil {
		return nil, err
	}

	t, err := time.Parse(timeLayout, generatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid generated_at %q: %w", generatedAt, err)
	}
	e.GeneratedAt = t

	if err := json.Unmarshal([]byte(artifacts), &e.Artifacts); err != nil {
		return nil, fmt.Errorf("invalid artifacts for entry %d: %w", e.ID, err)
	}
	return &e, nil
}
