package domain

import "time"

// User represents an authenticated user of the system.
type User struct {
	ID           int64
	Username     string
	Email        *string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the caller resolved from a verified token. Every ownership-scoped
// operation takes one as its first argument after the context.
type Identity struct {
	UserID   int64
	Username string
}
