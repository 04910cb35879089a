package script

import "context"

// Store persists user-owned scripts. Every read path used by authenticated
// handlers carries an owner-equality predicate; a listing without one does
// not exist in this interface on purpose.
type Store interface {
	// Create inserts the script with OwnerID already set by the caller from
	// the resolved principal, never from client input.
	Create(ctx context.Context, s *Script) error
	// ListByOwner returns the owner's scripts ordered by creation time,
	// most recent first. An owner with no scripts gets an empty slice.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]Script, error)
}
