package auth

import "time"

// User is a registered principal. PasswordHash is a bcrypt digest and must
// never appear in API responses or logs.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
