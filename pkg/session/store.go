package session

import "time"

// Record is one issued refresh token as the store sees it.
type Record struct {
	Token     string
	Username  string
	CreatedAt time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// Store is the durable source of truth for refresh tokens. Access tokens
// are never stored; only the refresh half of a pair is stateful so it can
// be revoked and rotated.
type Store interface {
	// Save persists a new record. Token values are unique; saving a
	// duplicate is an error.
	Save(rec Record) error
	// FindByToken returns the record for the given token value, or
	// ErrNotFound.
	FindByToken(value string) (*Record, error)
	// Consume revokes the record for value if it is still active. The
	// check and the revocation are a single atomic operation: with
	// concurrent callers presenting the same value at most one succeeds,
	// the rest get ErrNotFound.
	Consume(value string) error
	// Delete removes the record for value regardless of its state. Used to
	// garbage-collect rows whose stored expiry has passed.
	Delete(value string) error
}
