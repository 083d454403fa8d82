// internal/membership/types.go
package membership

import (
	"errors"
	"time"
)

// Role is the rank a user holds within an ACSP.
// Ranking is total and fixed: owner > admin > standard.
type Role string

const (
	// RoleOwner can manage owners, admins and standard members
	RoleOwner Role = "owner"

	// RoleAdmin can manage admins and standard members
	RoleAdmin Role = "admin"

	// RoleStandard holds read access only
	RoleStandard Role = "standard"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleStandard:
		return true
	}
	return false
}

// Status is the lifecycle state of a membership record
type Status string

const (
	// StatusActive marks the single live record for a (user, ACSP) pair
	StatusActive Status = "active"

	// StatusRemoved marks a record that is no longer a valid basis for
	// authorization decisions
	StatusRemoved Status = "removed"
)

// Record is a membership of a user in an ACSP. At most one record is
// active for a given (user, ACSP) pair at a time.
type Record struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	AcspNumber string    `json:"acsp_number"`
	Role       Role      `json:"user_role"`
	Status     Status    `json:"status"`
	AddedAt    time.Time `json:"added_at"`
	RemovedAt  time.Time `json:"removed_at,omitempty"`
}

// ErrNotFound is returned by stores when no record matches a lookup.
// Callers must treat it as a normal absence, distinct from store failure.
var ErrNotFound = errors.New("membership: record not found")
