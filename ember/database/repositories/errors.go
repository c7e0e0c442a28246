package repositories

import "errors"

var (
	// ErrNotFound maps sql.ErrNoRows at the repository boundary.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists reports a violated uniqueness invariant, e.g. a
	// duplicate custom achievement id.
	ErrAlreadyExists = errors.New("already exists")
)
