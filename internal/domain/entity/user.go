package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// Passwords are stored as bcrypt hashes in PasswordHash.
// Users are never hard-deleted.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	IsSuperuser  bool
	Permissions  []string
	DateJoined   time.Time
	UpdatedAt    time.Time
}
