package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acspmembers/internal/authz"
	"acspmembers/internal/identity"
	"acspmembers/internal/membership"
	"acspmembers/internal/notify"
	"acspmembers/internal/observability/logging"
	"acspmembers/internal/observability/metrics"
	"acspmembers/internal/permissions"
)

type fakeNotifier struct {
	emails  []notify.EmailRequest
	letters []notify.LetterRequest
	err     error
}

func (f *fakeNotifier) SendEmail(ctx context.Context, req notify.EmailRequest) (*notify.SendResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.emails = append(f.emails, req)
	return &notify.SendResult{ID: "sent-1"}, nil
}

func (f *fakeNotifier) SendLetter(ctx context.Context, req notify.LetterRequest) (*notify.SendResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.letters = append(f.letters, req)
	return &notify.SendResult{ID: "sent-2"}, nil
}

func newTestRouter(t *testing.T, store membership.Store, notifier Notifier) *Router {
	t.Helper()
	logger, err := logging.NewLogger("error")
	require.NoError(t, err)
	if notifier == nil {
		notifier = &fakeNotifier{}
	}
	return New(Config{}, store, notifier, logger, metrics.NewCollector())
}

func record(id, userID, acspNumber string, role membership.Role, status membership.Status) membership.Record {
	return membership.Record{
		ID:         id,
		UserID:     userID,
		AcspNumber: acspNumber,
		Role:       role,
		Status:     status,
		AddedAt:    time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func delegatedHeaders(userID, claim string) map[string]string {
	return map[string]string{
		identity.IdentityHeader:         userID,
		identity.IdentityTypeHeader:     "oauth2",
		identity.TokenPermissionsHeader: claim,
	}
}

func doRequest(r *Router, method, path string, headers map[string]string, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestHealthcheckIsUnguarded(t *testing.T) {
	r := newTestRouter(t, membership.NewFixtureStore(), nil)
	rr := doRequest(r, http.MethodGet, "/healthcheck", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestListMembershipsConsistentSession(t *testing.T) {
	store := membership.NewFixtureStore(
		record("m1", "user1", "WITA001", membership.RoleAdmin, membership.StatusActive),
		record("m2", "user2", "WITA001", membership.RoleStandard, membership.StatusActive),
		record("m3", "user3", "WITA001", membership.RoleStandard, membership.StatusRemoved),
	)
	r := newTestRouter(t, store, nil)

	headers := delegatedHeaders("user1", permissions.ForRole("WITA001", membership.RoleAdmin))
	rr := doRequest(r, http.MethodGet, "/acsps/WITA001/memberships", headers, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var records []membership.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &records))
	// Removed members are filtered for non-admin callers
	assert.Len(t, records, 2)
}

func TestListMembershipsAdminOverride(t *testing.T) {
	// The back-office caller has no membership anywhere; the override
	// still admits the read and exposes removed records.
	store := membership.NewFixtureStore(
		record("m1", "user1", "WITA001", membership.RoleOwner, membership.StatusActive),
		record("m2", "user2", "WITA001", membership.RoleStandard, membership.StatusRemoved),
	)
	r := newTestRouter(t, store, nil)

	headers := map[string]string{
		identity.IdentityHeader:     "backoffice",
		identity.IdentityTypeHeader: "oauth2",
		identity.AdminRolesHeader:   authz.DefaultAdminSearchRole,
	}
	rr := doRequest(r, http.MethodGet, "/acsps/WITA001/memberships", headers, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var records []membership.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &records))
	assert.Len(t, records, 2)
}

func TestListMembershipsUnrecognizedIdentityKind(t *testing.T) {
	r := newTestRouter(t, membership.NewFixtureStore(), nil)

	headers := map[string]string{
		identity.IdentityHeader:     "user1",
		identity.IdentityTypeHeader: "basic",
	}
	rr := doRequest(r, http.MethodGet, "/acsps/WITA001/memberships", headers, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestListMembershipsNoClaimHeader(t *testing.T) {
	// Active membership exists, but without a claim the route-supplied
	// organization alone cannot derive a claimed role.
	store := membership.NewFixtureStore(
		record("m1", "user1", "WITA001", membership.RoleStandard, membership.StatusActive),
	)
	r := newTestRouter(t, store, nil)

	headers := map[string]string{
		identity.IdentityHeader:     "user1",
		identity.IdentityTypeHeader: "oauth2",
	}
	rr := doRequest(r, http.MethodGet, "/acsps/WITA001/memberships", headers, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestListMembershipsStaleClaim(t *testing.T) {
	store := membership.NewFixtureStore(
		record("m1", "user1", "WITA001", membership.RoleStandard, membership.StatusActive),
	)
	r := newTestRouter(t, store, nil)

	headers := delegatedHeaders("user1", permissions.ForRole("WITA001", membership.RoleOwner))
	rr := doRequest(r, http.MethodGet, "/acsps/WITA001/memberships", headers, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestListMembershipsRemovedMembership(t *testing.T) {
	store := membership.NewFixtureStore(
		record("m1", "user1", "WITA001", membership.RoleAdmin, membership.StatusRemoved),
	)
	r := newTestRouter(t, store, nil)

	headers := delegatedHeaders("user1", permissions.ForRole("WITA001", membership.RoleAdmin))
	rr := doRequest(r, http.MethodGet, "/acsps/WITA001/memberships", headers, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestGetMembershipOwnOrganization(t *testing.T) {
	store := membership.NewFixtureStore(
		record("m1", "user1", "WITA001", membership.RoleStandard, membership.StatusActive),
		record("m2", "user2", "WITA001", membership.RoleOwner, membership.StatusActive),
	)
	r := newTestRouter(t, store, nil)

	headers := delegatedHeaders("user1", permissions.ForRole("WITA001", membership.RoleStandard))
	rr := doRequest(r, http.MethodGet, "/memberships/m2", headers, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var rec membership.Record
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, "user2", rec.UserID)
}

func TestGetMembershipOtherOrganizationHidden(t *testing.T) {
	store := membership.NewFixtureStore(
		record("m1", "user1", "WITA001", membership.RoleStandard, membership.StatusActive),
		record("m9", "user9", "OTHER9", membership.RoleStandard, membership.StatusActive),
	)
	r := newTestRouter(t, store, nil)

	headers := delegatedHeaders("user1", permissions.ForRole("WITA001", membership.RoleStandard))
	rr := doRequest(r, http.MethodGet, "/memberships/m9", headers, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNotificationEmailRelay(t *testing.T) {
	notifier := &fakeNotifier{}
	r := newTestRouter(t, membership.NewFixtureStore(), notifier)

	headers := map[string]string{
		identity.IdentityTypeHeader: "key",
		identity.KeyRolesHeader:     "*",
	}
	body := `{"email_address":"someone@example.com","template_id":"tmpl-1"}`
	rr := doRequest(r, http.MethodPost, "/notifications/email", headers, body)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, notifier.emails, 1)
	assert.Equal(t, "someone@example.com", notifier.emails[0].Recipient)
}

func TestNotificationLetterRelay(t *testing.T) {
	notifier := &fakeNotifier{}
	r := newTestRouter(t, membership.NewFixtureStore(), notifier)

	headers := map[string]string{
		identity.IdentityTypeHeader: "key",
		identity.KeyRolesHeader:     "*",
	}
	body := `{"address_lines":["1 High St","Cardiff"],"template_id":"tmpl-2"}`
	rr := doRequest(r, http.MethodPost, "/notifications/letter", headers, body)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.Len(t, notifier.letters, 1)
}

func TestNotificationWrongMethodWithValidCredential(t *testing.T) {
	r := newTestRouter(t, membership.NewFixtureStore(), nil)

	headers := map[string]string{
		identity.IdentityTypeHeader: "key",
		identity.KeyRolesHeader:     "*",
	}
	rr := doRequest(r, http.MethodGet, "/notifications/email", headers, "")
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestNotificationDelegatedSessionRejected(t *testing.T) {
	// Even a perfectly consistent session is rejected on internal routes
	store := membership.NewFixtureStore(
		record("m1", "user1", "WITA001", membership.RoleOwner, membership.StatusActive),
	)
	r := newTestRouter(t, store, nil)

	headers := delegatedHeaders("user1", permissions.ForRole("WITA001", membership.RoleOwner))
	rr := doRequest(r, http.MethodPost, "/notifications/email", headers, `{"email_address":"a@b.c","template_id":"t"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestNotificationNoIdentityHeaders(t *testing.T) {
	r := newTestRouter(t, membership.NewFixtureStore(), nil)

	rr := doRequest(r, http.MethodPost, "/notifications/email", nil, `{}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestNotificationProviderFailure(t *testing.T) {
	notifier := &fakeNotifier{err: context.DeadlineExceeded}
	r := newTestRouter(t, membership.NewFixtureStore(), notifier)

	headers := map[string]string{
		identity.IdentityTypeHeader: "key",
		identity.KeyRolesHeader:     "*",
	}
	body := `{"email_address":"someone@example.com","template_id":"tmpl-1"}`
	rr := doRequest(r, http.MethodPost, "/notifications/email", headers, body)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestUndefinedRoute(t *testing.T) {
	r := newTestRouter(t, membership.NewFixtureStore(), nil)
	rr := doRequest(r, http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
