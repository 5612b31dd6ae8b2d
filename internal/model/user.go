// Package model defines the data structures used throughout the application.
package model

// User represents a registered account.
//
// HashedPassword holds the bcrypt hash of the user's password — never the
// plaintext. bcrypt output is self-contained (it embeds the salt and the
// cost), so a single TEXT column is all the storage we need.
//
// Usernames are globally unique; the credential store enforces that with a
// UNIQUE index. Accounts are created on registration and never updated or
// deleted by this system.
type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	HashedPassword string `json:"-"` // never serialized
}
