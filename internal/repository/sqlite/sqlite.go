// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — a single file, no server process to run.
// That matches this system's deployment model (one host, modest scale) and
// lets tests use ":memory:" databases that vanish on close.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 needs CGo and a C compiler; modernc.org/sqlite is a pure
// Go translation of SQLite, so it builds everywhere Go builds.
//
// TWO DATABASES:
// The catalog (books, including the audio/image blobs) and the credentials
// (users) live in two independent database files, each opened by its own
// constructor below. They share no schema and are never joined — the only
// link is the denormalized uploader username on a book.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The driver doesn't export a sentinel for this, so we match on
// the stable "UNIQUE constraint failed" prefix SQLite puts in the message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// open creates a connection pool for one database file and applies the
// pragmas every connection in this project wants.
func open(dbPath string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open doesn't actually connect; Ping forces the first connection so
	// a bad path or permissions problem surfaces here, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// One connection per pool: SQLite allows a single writer at a time, and
	// a second pooled connection to a ":memory:" database would see a fresh
	// empty database rather than the migrated one.
	conn.SetMaxOpenConns(1)

	// WAL mode allows concurrent reads while a write is in progress —
	// important for a web server where requests overlap.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite. Neither schema declares
	// any today, but turning enforcement on keeps future migrations honest.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	return conn, nil
}
