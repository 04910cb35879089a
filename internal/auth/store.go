package auth

import "context"

// UserStore persists principal identities. Lookups report a miss with
// ErrNotFound; Create reports a username collision with ErrAlreadyExists.
type UserStore interface {
	// Create inserts the user. The uniqueness check and the insert are a
	// single atomic operation: of two concurrent creates for the same
	// username exactly one succeeds.
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
}
