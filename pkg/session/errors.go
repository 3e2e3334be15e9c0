package session

import "errors"

// The only failure kinds this package reports to callers. Refresh and
// logout collapse every internal check (bad signature, expired payload,
// unknown, revoked or expired record) into ErrInvalidToken so a caller
// cannot probe which one failed.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// ErrNotFound is returned by Store implementations when no matching record
// exists (or, for Consume, when it was already consumed).
var ErrNotFound = errors.New("refresh token not found")
