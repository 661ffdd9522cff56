package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

var (
	// ErrNotFound is returned when the referenced entity is absent or the
	// stated relationship (image-in-project, owned-by-user) does not hold.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned for the hard-coded guards, e.g. deleting an
	// admin user.
	ErrForbidden = errors.New("forbidden")
)

// Store is the resource adapter over users, projects, images and votes.
// Cascading deletions run inside a single transaction with an explicit
// ordering (votes, then images, then projects); no automatic FK cascades
// are relied upon.
type Store struct {
	db *sql.DB
}

// Open connects to PostgreSQL and verifies the connection.
func Open(databaseURL string) (*Store, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// New wraps an existing handle. Tests use it with an in-memory SQLite
// database; the queries are written to run on both drivers.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}
