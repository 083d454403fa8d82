// internal/authz/session.go
package authz

import (
	"context"
	"errors"
	"time"

	"acspmembers/internal/identity"
	"acspmembers/internal/membership"
	"acspmembers/internal/observability/logging"
	"acspmembers/internal/observability/metrics"
)

// DefaultLookupTimeout bounds the membership store point read.
const DefaultLookupTimeout = 5 * time.Second

// SessionValidator reconciles the role claimed by a delegated session
// against the live membership record for that (caller, ACSP) pair. It
// exists to defeat stale or tampered session tokens: a role change
// applied after a token was issued invalidates the token's claim in
// either direction.
type SessionValidator struct {
	store         membership.Store
	lookupTimeout time.Duration
	logger        *logging.Logger
	metrics       *metrics.Collector
}

// NewSessionValidator creates a SessionValidator over the given store.
// A non-positive lookupTimeout falls back to DefaultLookupTimeout.
func NewSessionValidator(store membership.Store, lookupTimeout time.Duration, logger *logging.Logger, collector *metrics.Collector) *SessionValidator {
	if lookupTimeout <= 0 {
		lookupTimeout = DefaultLookupTimeout
	}
	return &SessionValidator{
		store:         store,
		lookupTimeout: lookupTimeout,
		logger:        logger.WithModule("authz.session"),
		metrics:       collector,
	}
}

// Validate runs the session-consistency check for a request.
//
// Admin-override and internal-caller requests are accepted outright:
// the former bypasses per-organization checks by design (and only on
// the read allow-list, enforced where the flag is computed), the latter
// derives its authority from the internal-service gate, not from
// membership. Everything else must present a delegated session whose
// claimed role exactly matches the live active record.
func (v *SessionValidator) Validate(req *Request) *Response {
	if req.AdminPrivilege {
		return allow("admin override")
	}
	if req.Identity != nil && req.Identity.Kind == identity.KindAPIKey {
		return allow("internal caller exempt from session checks")
	}
	if req.Identity == nil || req.Identity.Kind != identity.KindOAuth2 {
		return unauthorized("no delegated session established")
	}

	if req.Identity.UserID == "" {
		return deny("session carries no caller identifier")
	}

	acspNumber, ok := v.resolveAcspNumber(req)
	if !ok {
		return deny("organization context missing or inconsistent")
	}

	record, resp := v.lookupActiveMembership(req.Context, req.Identity.UserID, acspNumber)
	if resp != nil {
		return resp
	}

	claimed, ok := req.Permissions.ClaimedRole()
	if !ok {
		return deny("session claims no role")
	}
	if claimed != record.Role {
		v.logger.Info("Session role does not match live membership",
			"user_id", req.Identity.UserID,
			"acsp_number", acspNumber,
			"claimed_role", string(claimed),
			"live_role", string(record.Role),
		)
		return deny("session role inconsistent with live membership")
	}

	return allow("session consistent with live membership")
}

// resolveAcspNumber determines which ACSP the session is scoped to. The
// claim is authoritative; a route that itself names an ACSP may supply
// it when the claim does not, but a disagreement between the two is an
// inconsistency, not a fallback case.
func (v *SessionValidator) resolveAcspNumber(req *Request) (string, bool) {
	claimed := req.Permissions.AcspNumber()
	fromPath := req.PathAcspNumber

	switch {
	case claimed == "" && fromPath == "":
		return "", false
	case claimed == "":
		return fromPath, true
	case fromPath != "" && fromPath != claimed:
		return "", false
	default:
		return claimed, true
	}
}

// lookupActiveMembership performs the bounded point read against the
// membership store. Absence is a normal Deny; store failure or timeout
// is an Error so that outages are never reported as denials. The lookup
// is not retried: a failed result is authoritative for this request,
// and retrying could mask an intentionally removed membership.
func (v *SessionValidator) lookupActiveMembership(ctx context.Context, userID, acspNumber string) (*membership.Record, *Response) {
	lookupCtx, cancel := context.WithTimeout(ctx, v.lookupTimeout)
	defer cancel()

	start := time.Now()
	record, err := v.store.FindActiveMembership(lookupCtx, userID, acspNumber)
	duration := time.Since(start)

	switch {
	case err == nil:
		v.metrics.RecordMembershipLookup("found", duration)
		return record, nil
	case errors.Is(err, membership.ErrNotFound):
		v.metrics.RecordMembershipLookup("not_found", duration)
		return nil, deny("no active membership for caller and organization")
	default:
		v.metrics.RecordMembershipLookup("error", duration)
		v.logger.Error("Membership lookup failed",
			logging.Err(err),
			"user_id", userID,
			"acsp_number", acspNumber,
		)
		return nil, &Response{
			Decision: Error,
			Reason:   "membership lookup failed",
			Error:    err,
		}
	}
}
