package membership

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureRecord(id, userID, acspNumber string, role Role, status Status) Record {
	return Record{
		ID:         id,
		UserID:     userID,
		AcspNumber: acspNumber,
		Role:       role,
		Status:     status,
		AddedAt:    time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestFixtureStoreFindActiveMembership(t *testing.T) {
	store := NewFixtureStore(
		fixtureRecord("m1", "user1", "WITA001", RoleOwner, StatusActive),
		fixtureRecord("m2", "user1", "WITA002", RoleStandard, StatusRemoved),
	)

	rec, err := store.FindActiveMembership(context.Background(), "user1", "WITA001")
	require.NoError(t, err)
	assert.Equal(t, RoleOwner, rec.Role)

	// Removed records never satisfy an active lookup
	_, err = store.FindActiveMembership(context.Background(), "user1", "WITA002")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.FindActiveMembership(context.Background(), "nobody", "WITA001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFixtureStoreFindMembership(t *testing.T) {
	store := NewFixtureStore(fixtureRecord("m1", "user1", "WITA001", RoleAdmin, StatusActive))

	rec, err := store.FindMembership(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "user1", rec.UserID)

	_, err = store.FindMembership(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFixtureStoreListMemberships(t *testing.T) {
	store := NewFixtureStore(
		fixtureRecord("m1", "user1", "WITA001", RoleOwner, StatusActive),
		fixtureRecord("m2", "user2", "WITA001", RoleStandard, StatusRemoved),
		fixtureRecord("m3", "user3", "OTHER9", RoleStandard, StatusActive),
	)

	active, err := store.ListMemberships(context.Background(), "WITA001", false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := store.ListMemberships(context.Background(), "WITA001", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFixtureStoreCopiesRecords(t *testing.T) {
	source := []Record{fixtureRecord("m1", "user1", "WITA001", RoleOwner, StatusActive)}
	store := NewFixtureStore(source...)

	source[0].Status = StatusRemoved

	rec, err := store.FindMembership(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, StatusActive, rec.Status)
}

func TestFixtureStoreHonoursContext(t *testing.T) {
	store := NewFixtureStore(fixtureRecord("m1", "user1", "WITA001", RoleOwner, StatusActive))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.FindActiveMembership(ctx, "user1", "WITA001")
	assert.ErrorIs(t, err, context.Canceled)
}
