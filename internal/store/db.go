package store

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/otabekh/minbar/internal/domain"
)

type DB struct {
	*sqlx.DB
}

func NewSQLiteDB(path string) (*DB, error) {
	// Pragmas ride in the DSN so every pooled connection gets them.
	// A one-off PRAGMA Exec only reaches the single connection that
	// happens to serve it, leaving the rest without a busy timeout.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)&_pragma=foreign_keys(1)",
		path)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	// Apply schema
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &DB{db}, nil
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// storeErr wraps a driver failure in the domain error type callers
// test against. Nil errors pass through untouched.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &domain.StoreError{Op: op, Err: err}
}
