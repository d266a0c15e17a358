package domain

import "errors"

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrMissingCredentials = errors.New("no credentials supplied")

	ErrArticleNotFound = errors.New("article not found")
	ErrForbidden       = errors.New("access forbidden")

	// ErrInvalidInput wraps structural validation failures detected by the core.
	ErrInvalidInput = errors.New("invalid input")
)
