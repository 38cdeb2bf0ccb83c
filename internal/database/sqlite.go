// Package database provides the persistence behind inkwell's user and
// refresh rotation stores: SQLite or Postgres for accounts, and SQL or Redis
// for the refresh chain.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"git.sr.ht/~jakintosh/inkwell/internal/service"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	// ":memory:" databases exist per connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init database schema: couldn't enable foreign keys: %v", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to init database: %v", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UserStore() service.UserStore {
	return s
}

func (s *SQLiteStore) RotationStore() service.RotationStore {
	return s
}

func initSchema(db *sql.DB) error {
	if err := initTable(db, "users", `
		CREATE TABLE IF NOT EXISTS users (
			id                 INTEGER PRIMARY KEY,
			email              TEXT NOT NULL UNIQUE,
			nickname           TEXT NOT NULL UNIQUE,
			password_hash      BLOB NOT NULL,
			profile_image_url  TEXT NOT NULL DEFAULT '',
			created_at         INTEGER NOT NULL
		);`,
	); err != nil {
		return err
	}

	if err := initTable(db, "refresh_rotation", `
		CREATE TABLE IF NOT EXISTS refresh_rotation (
			subject     TEXT PRIMARY KEY,
			token_id    TEXT NOT NULL,
			expiration  INTEGER NOT NULL
		);`,
	); err != nil {
		return err
	}

	return nil
}

func initTable(
	db *sql.DB,
	name string,
	sql string,
) error {
	if _, err := db.Exec(sql); err != nil {
		return fmt.Errorf("failed to init '%s' table schema: %v", name, err)
	}
	return nil
}

// sqliteUniqueError maps a UNIQUE constraint failure on users to the
// matching service error, or returns nil.
func sqliteUniqueError(err error) error {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) || sqliteErr.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return nil
	}
	msg := sqliteErr.Error()
	switch {
	case strings.Contains(msg, "users.email"):
		return service.ErrEmailExists
	case strings.Contains(msg, "users.nickname"):
		return service.ErrNicknameExists
	default:
		return nil
	}
}

func resultsEmpty(result sql.Result) bool {
	count, err := result.RowsAffected()
	if err != nil {
		return false
	}
	return count == 0
}
