package auth

import "errors"

var (
	ErrNotFound           = errors.New("auth: not found")
	ErrAlreadyExists      = errors.New("auth: already exists")
	ErrInvalidInput       = errors.New("auth: invalid input")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrInvalidToken covers bad signature, malformed structure and missing
	// claims. ErrExpiredToken is separate so callers can distinguish the two
	// internally; the HTTP boundary collapses both into one 401.
	ErrInvalidToken = errors.New("auth: invalid token")
	ErrExpiredToken = errors.New("auth: token expired")
)
