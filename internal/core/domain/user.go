package domain

import (
	"strings"
	"time"
)

// User is a registered identity. PasswordHash never leaves the service boundary.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the authenticated identity attached to a request once its
// bearer token has been verified and resolved to a live user.
type Principal struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Principal returns the caller-facing view of u.
func (u *User) Principal() Principal {
	return Principal{ID: u.ID, Email: u.Email}
}

// NormalizeEmail trims and lower-cases an email so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
