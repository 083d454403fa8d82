// internal/membership/fixture.go
package membership

import (
	"context"
	"sort"
)

// FixtureStore is an immutable in-memory Store. Records are copied at
// construction time, so a fixture built for one test cannot leak state
// into another. It also backs local runs when no database is configured.
type FixtureStore struct {
	records []Record
}

// NewFixtureStore creates a FixtureStore from the given records.
func NewFixtureStore(records ...Record) *FixtureStore {
	copied := make([]Record, len(records))
	copy(copied, records)
	sort.SliceStable(copied, func(i, j int) bool { return copied[i].ID < copied[j].ID })
	return &FixtureStore{records: copied}
}

// FindActiveMembership returns the active record for (userID, acspNumber).
func (s *FixtureStore) FindActiveMembership(ctx context.Context, userID, acspNumber string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, rec := range s.records {
		if rec.UserID == userID && rec.AcspNumber == acspNumber && rec.Status == StatusActive {
			found := rec
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// FindMembership returns the record with the given ID.
func (s *FixtureStore) FindMembership(ctx context.Context, id string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, rec := range s.records {
		if rec.ID == id {
			found := rec
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// ListMemberships returns the records for an ACSP.
func (s *FixtureStore) ListMemberships(ctx context.Context, acspNumber string, includeRemoved bool) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []Record
	for _, rec := range s.records {
		if rec.AcspNumber != acspNumber {
			continue
		}
		if rec.Status == StatusRemoved && !includeRemoved {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
