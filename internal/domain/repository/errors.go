package repository

import "errors"

// Sentinel errors shared by all repository implementations. Uniqueness
// violations are reported by the storage layer's constraints, which are the
// authoritative signal; pre-checks only exist for friendlier validation
// messages.
var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already taken")
	ErrPostMissing   = errors.New("referenced post does not exist")
)
