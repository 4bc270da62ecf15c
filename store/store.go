// Package store persists program run traces in a SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	cek "github.com/hypersimple/Toy-Language-Interpreter/core"
)

const schema = `
CREATE TABLE IF NOT EXISTS traces (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	program    TEXT    NOT NULL,
	outcome    TEXT    NOT NULL,
	output     TEXT    NOT NULL DEFAULT '',
	error      TEXT    NOT NULL DEFAULT '',
	error_kind TEXT    NOT NULL DEFAULT '',
	steps      INTEGER NOT NULL DEFAULT 0,
	created_at TEXT    NOT NULL
)`

// ErrNotFound is returned by Get for an unknown trace id.
var ErrNotFound = errors.New("trace not found")

// Store is a trace database. It is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database file at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("store: missing path")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts tr and returns its row id.
func (s *Store) Record(tr cek.Trace) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO traces (program, outcome, output, error, error_kind, steps, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tr.Program, tr.Outcome, tr.Output, tr.Error, tr.ErrorKind, tr.Steps, tr.Timestamp,
	)
	if err != nil {
		return 0, fmt.Errorf("store: record: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: record: %w", err)
	}
	return id, nil
}

// Get loads one trace by id.
func (s *Store) Get(id int64) (cek.Trace, error) {
	row := s.db.QueryRow(
		`SELECT id, program, outcome, output, error, error_kind, steps, created_at
		 FROM traces WHERE id = ?`, id)
	tr, err := scanTrace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return cek.Trace{}, fmt.Errorf("store: trace %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return cek.Trace{}, fmt.Errorf("store: get %d: %w", id, err)
	}
	return tr, nil
}

// Recent returns the last n traces, oldest first.
func (s *Store) Recent(n int) ([]cek.Trace, error) {
	rows, err := s.db.Query(
		`SELECT id, program, outcome, output, error, error_kind, steps, created_at
		 FROM (SELECT * FROM traces ORDER BY id DESC LIMIT ?) ORDER BY id ASC`, n)
	if err != nil {
		return nil, fmt.Errorf("store: recent: %w", err)
	}
	defer rows.Close()

	traces := make([]cek.Trace, 0)
	for rows.Next() {
		tr, err := scanTrace(rows)
		if err != nil {
			return nil, fmt.Errorf("store: recent: %w", err)
		}
		traces = append(traces, tr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent: %w", err)
	}
	return traces, nil
}

// Count returns how many traces have been recorded.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM traces`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrace(sc scanner) (cek.Trace, error) {
	var tr cek.Trace
	err := sc.Scan(&tr.ID, &tr.Program, &tr.Outcome, &tr.Output, &tr.Error, &tr.ErrorKind, &tr.Steps, &tr.Timestamp)
	return tr, err
}
