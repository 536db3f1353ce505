package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const (
	UniqueConstrain = 1555

	dirPermissions = 0o750
)

var (
	ErrNotFound = errors.New("not found")
)

// NewSQLiteDB opens the sqlite file at dbPath, creating its directory if needed.
// Writers wait on a locked database instead of failing, the relays and the rpc server
// share the same file.
func NewSQLiteDB(dbPath string) (*sql.DB, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, dirPermissions); err != nil {
			return nil, fmt.Errorf("error creating db dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = normal;
		PRAGMA journal_size_limit = 6144000;
	`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error setting up %s: %w", dbPath, err)
	}
	return db, nil
}

// ReturnErrNotFound maps sql.ErrNoRows to ErrNotFound
func ReturnErrNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
