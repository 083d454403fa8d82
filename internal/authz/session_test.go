package authz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acspmembers/internal/identity"
	"acspmembers/internal/membership"
	"acspmembers/internal/observability/logging"
	"acspmembers/internal/observability/metrics"
	"acspmembers/internal/permissions"
)

func newTestLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.NewLogger("error")
	require.NoError(t, err)
	return logger
}

func oauthIdentity(userID string) *identity.Identity {
	return &identity.Identity{UserID: userID, Kind: identity.KindOAuth2}
}

func sessionRequest(ident *identity.Identity, claim string) *Request {
	return &Request{
		Identity:    ident,
		Permissions: permissions.Parse(claim),
		Method:      "GET",
		Path:        "/acsps/WITA001/memberships",
		Context:     context.Background(),
	}
}

func activeRecord(userID, acspNumber string, role membership.Role) membership.Record {
	return membership.Record{
		ID:         "m-" + userID,
		UserID:     userID,
		AcspNumber: acspNumber,
		Role:       role,
		Status:     membership.StatusActive,
		AddedAt:    time.Now().UTC(),
	}
}

// failingStore simulates an unreachable membership store.
type failingStore struct{}

func (failingStore) FindActiveMembership(ctx context.Context, userID, acspNumber string) (*membership.Record, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) FindMembership(ctx context.Context, id string) (*membership.Record, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) ListMemberships(ctx context.Context, acspNumber string, includeRemoved bool) ([]membership.Record, error) {
	return nil, errors.New("connection refused")
}

// stallingStore blocks until the lookup context is cancelled.
type stallingStore struct{}

func (stallingStore) FindActiveMembership(ctx context.Context, userID, acspNumber string) (*membership.Record, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stallingStore) FindMembership(ctx context.Context, id string) (*membership.Record, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (stallingStore) ListMemberships(ctx context.Context, acspNumber string, includeRemoved bool) ([]membership.Record, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newValidator(t *testing.T, store membership.Store) *SessionValidator {
	t.Helper()
	return NewSessionValidator(store, 0, newTestLogger(t), metrics.NewCollector())
}

func TestValidateMatchingRoles(t *testing.T) {
	for _, role := range []membership.Role{membership.RoleOwner, membership.RoleAdmin, membership.RoleStandard} {
		t.Run(string(role), func(t *testing.T) {
			store := membership.NewFixtureStore(activeRecord("user1", "WITA001", role))
			v := newValidator(t, store)

			req := sessionRequest(oauthIdentity("user1"), permissions.ForRole("WITA001", role))
			resp := v.Validate(req)
			assert.Equal(t, Allow, resp.Decision)
		})
	}
}

func TestValidateRoleMismatchBothDirections(t *testing.T) {
	tests := []struct {
		name    string
		claimed membership.Role
		live    membership.Role
	}{
		{"escalation standard claim vs owner record", membership.RoleStandard, membership.RoleOwner},
		{"escalation admin claim vs owner record", membership.RoleAdmin, membership.RoleOwner},
		{"de-escalation owner claim vs standard record", membership.RoleOwner, membership.RoleStandard},
		{"de-escalation admin claim vs standard record", membership.RoleAdmin, membership.RoleStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := membership.NewFixtureStore(activeRecord("user1", "WITA001", tt.live))
			v := newValidator(t, store)

			req := sessionRequest(oauthIdentity("user1"), permissions.ForRole("WITA001", tt.claimed))
			resp := v.Validate(req)
			assert.Equal(t, Deny, resp.Decision)
		})
	}
}

func TestValidateAdminOverrideBypassesLookup(t *testing.T) {
	// No record exists for the caller at all; the override still accepts.
	v := newValidator(t, membership.NewFixtureStore())

	req := sessionRequest(oauthIdentity("backoffice"), "")
	req.AdminPrivilege = true

	resp := v.Validate(req)
	assert.Equal(t, Allow, resp.Decision)
}

func TestValidateInternalCallerBypass(t *testing.T) {
	v := newValidator(t, membership.NewFixtureStore())

	req := sessionRequest(&identity.Identity{Kind: identity.KindAPIKey, KeyRoles: []string{"*"}}, "")
	resp := v.Validate(req)
	assert.Equal(t, Allow, resp.Decision)
}

func TestValidateMissingUserID(t *testing.T) {
	v := newValidator(t, membership.NewFixtureStore())

	req := sessionRequest(oauthIdentity(""), permissions.ForRole("WITA001", membership.RoleStandard))
	resp := v.Validate(req)
	assert.Equal(t, Deny, resp.Decision)
}

func TestValidateMissingOrganizationContext(t *testing.T) {
	// Active membership exists, but the claim is absent entirely, so there
	// is no organization to validate against.
	store := membership.NewFixtureStore(activeRecord("user1", "WITA001", membership.RoleStandard))
	v := newValidator(t, store)

	req := sessionRequest(oauthIdentity("user1"), "")
	resp := v.Validate(req)
	assert.Equal(t, Deny, resp.Decision)
}

func TestValidateOrganizationFromPath(t *testing.T) {
	store := membership.NewFixtureStore(activeRecord("user1", "WITA001", membership.RoleStandard))
	v := newValidator(t, store)

	req := sessionRequest(oauthIdentity("user1"), "acsp_members=read")
	req.PathAcspNumber = "WITA001"

	resp := v.Validate(req)
	assert.Equal(t, Allow, resp.Decision)
}

func TestValidateClaimAndPathOrganizationDisagree(t *testing.T) {
	store := membership.NewFixtureStore(
		activeRecord("user1", "WITA001", membership.RoleStandard),
		activeRecord("user1", "WITA002", membership.RoleStandard),
	)
	v := newValidator(t, store)

	req := sessionRequest(oauthIdentity("user1"), permissions.ForRole("WITA001", membership.RoleStandard))
	req.PathAcspNumber = "WITA002"

	resp := v.Validate(req)
	assert.Equal(t, Deny, resp.Decision)
}

func TestValidateRemovedMembership(t *testing.T) {
	removed := activeRecord("user1", "WITA001", membership.RoleAdmin)
	removed.Status = membership.StatusRemoved

	v := newValidator(t, membership.NewFixtureStore(removed))

	req := sessionRequest(oauthIdentity("user1"), permissions.ForRole("WITA001", membership.RoleAdmin))
	resp := v.Validate(req)
	assert.Equal(t, Deny, resp.Decision)
}

func TestValidateClaimWithoutRoleKeys(t *testing.T) {
	store := membership.NewFixtureStore(activeRecord("user1", "WITA001", membership.RoleStandard))
	v := newValidator(t, store)

	// Organization present but nothing to derive a role from: fail closed.
	req := sessionRequest(oauthIdentity("user1"), "acsp_number=WITA001")
	resp := v.Validate(req)
	assert.Equal(t, Deny, resp.Decision)
}

func TestValidateStoreFailureIsErrorNotDeny(t *testing.T) {
	v := newValidator(t, failingStore{})

	req := sessionRequest(oauthIdentity("user1"), permissions.ForRole("WITA001", membership.RoleStandard))
	resp := v.Validate(req)
	assert.Equal(t, Error, resp.Decision)
	assert.Error(t, resp.Error)
}

func TestValidateLookupTimeoutIsError(t *testing.T) {
	v := NewSessionValidator(stallingStore{}, 10*time.Millisecond, newTestLogger(t), metrics.NewCollector())

	req := sessionRequest(oauthIdentity("user1"), permissions.ForRole("WITA001", membership.RoleStandard))

	start := time.Now()
	resp := v.Validate(req)
	assert.Equal(t, Error, resp.Decision)
	assert.Less(t, time.Since(start), time.Second)
}

func TestValidateUnknownIdentityKind(t *testing.T) {
	v := newValidator(t, membership.NewFixtureStore())

	req := sessionRequest(&identity.Identity{Kind: identity.KindUnknown}, "")
	resp := v.Validate(req)
	assert.Equal(t, Unauthorized, resp.Decision)
}

func TestValidateIsIdempotent(t *testing.T) {
	store := membership.NewFixtureStore(activeRecord("user1", "WITA001", membership.RoleOwner))
	v := newValidator(t, store)

	req := sessionRequest(oauthIdentity("user1"), permissions.ForRole("WITA001", membership.RoleOwner))
	first := v.Validate(req)
	second := v.Validate(req)
	assert.Equal(t, first.Decision, second.Decision)
}
