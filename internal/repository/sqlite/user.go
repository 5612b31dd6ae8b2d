package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaa221132/audiobook-library/internal/apperror"
	"github.com/aaa221132/audiobook-library/internal/model"
	"github.com/aaa221132/audiobook-library/internal/repository"
)

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the credential store. It lives in its own database file,
// completely separate from the catalog.
type UserDB struct {
	conn *sql.DB
}

// NewUserDB opens (or creates) the credentials database and runs its
// migration.
func NewUserDB(dbPath string) (*UserDB, error) {
	conn, err := open(dbPath)
	if err != nil {
		return nil, err
	}

	db := &UserDB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: migrating users schema: %w", err)
	}

	return db, nil
}

// Close closes the connection pool.
func (db *UserDB) Close() error {
	return db.conn.Close()
}

func (db *UserDB) migrate() error {
	// UNIQUE doubles as the index for the by-username lookup on login.
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			username        TEXT NOT NULL UNIQUE,
			hashed_password TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}
	return nil
}

// Insert creates a new user record and fills in the assigned id.
//
// Uniqueness is enforced by the UNIQUE constraint, not by a prior SELECT:
// check-then-insert in two statements would race between concurrent
// registrations, while the constraint makes the database the single
// arbiter. A constraint violation is translated to ErrDuplicateUsername.
func (db *UserDB) Insert(ctx context.Context, user *model.User) error {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, hashed_password) VALUES (?, ?)`,
		user.Username,
		user.HashedPassword,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateUsername(user.Username)
		}
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id

	return nil
}

// FindByUsername looks up a user for login.
// Returns apperror.ErrNotFound when no such username is registered.
func (db *UserDB) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, hashed_password FROM users WHERE username = ?`,
		username,
	).Scan(&u.ID, &u.Username, &u.HashedPassword)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: fmt.Sprintf("user %q not found", username),
			}
		}
		return nil, fmt.Errorf("sqlite: finding user %q: %w", username, err)
	}

	return &u, nil
}
