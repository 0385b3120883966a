// Package store owns the SQLite schema and every query the aggregation
// engine answers. The dataset is written wholesale by ReplaceAll and is
// read-only afterwards.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is how endTime is stored: UTC text that SQLite's DATE()
// and strftime() operate on directly.
const timeLayout = "2006-01-02 15:04:05"

// topLimit caps every ranked result list.
const topLimit = 20

type Store struct {
	db *sql.DB
}

// New opens the database at dbPath. It does not create tables; the
// dataset only exists after a load (see ReplaceAll).
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ready checks that a dataset has been loaded, using the songs table as
// the proxy for the whole table set.
func (s *Store) ready() error {
	row := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'songs'")
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return fmt.Errorf("checking for songs table: %w", ErrUnavailable)
	}
	if err != nil {
		return fmt.Errorf("checking for songs table: %v: %w", err, ErrUnavailable)
	}
	return nil
}

// TotalStreams returns the number of stored track events.
func (s *Store) TotalStreams() (int64, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	var count int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM songs").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting streams: %w", err)
	}
	return count, nil
}

// inClause builds "column IN (?, ?, ...)" plus its arguments. An empty
// value set yields a condition that matches nothing.
func inClause(column string, values []string) (string, []any) {
	if len(values) == 0 {
		return "1 = 0", nil
	}
	placeholders := strings.Repeat("?, ", len(values)-1) + "?"
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return fmt.Sprintf("%s IN (%s)", column, placeholders), args
}

// whereClause joins conditions into a WHERE clause, or "" when there are
// no conditions.
func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(conditions, " AND ")
}
