package domain

import (
	"errors"
	"time"
)

// ErrDuplicateUsername and ErrDuplicateEmail report a uniqueness violation
// from the store. Pre-insert lookups cannot rule these out: two concurrent
// signups can both pass the lookup, and only the constraint decides the loser.
var (
	ErrDuplicateUsername = errors.New("username already exists")
	ErrDuplicateEmail    = errors.New("email already exists")
)

// User is the core user entity. PasswordHash is the bcrypt digest; the
// plaintext password is never stored.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}

// Public is the caller-facing view of a user; it never carries the password digest.
type Public struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public returns the public view of the user.
func (u *User) Public() Public {
	return Public{ID: u.ID, Username: u.Username, Email: u.Email}
}
