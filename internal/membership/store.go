// internal/membership/store.go
package membership

import (
	"context"
)

// Store is the membership lookup collaborator consumed by the
// authorization pipeline and the read handlers. Lookups are point reads;
// implementations must honor context cancellation and return ErrNotFound
// for absence rather than a zero Record.
type Store interface {
	// FindActiveMembership returns the active record for the given
	// (user, ACSP) pair, or ErrNotFound if none exists.
	FindActiveMembership(ctx context.Context, userID, acspNumber string) (*Record, error)

	// FindMembership returns the record with the given ID regardless of
	// status, or ErrNotFound.
	FindMembership(ctx context.Context, id string) (*Record, error)

	// ListMemberships returns the records for an ACSP. Removed records are
	// included only when includeRemoved is set.
	ListMemberships(ctx context.Context, acspNumber string, includeRemoved bool) ([]Record, error)
}
