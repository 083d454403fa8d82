// internal/authz/types.go
package authz

import (
	"context"

	"acspmembers/internal/identity"
	"acspmembers/internal/permissions"
)

// Decision represents an authorization decision
type Decision int

const (
	// Allow indicates the request may proceed
	Allow Decision = iota
	// Deny indicates the caller is identified but lacks privilege
	Deny
	// Unauthorized indicates no identity could be established
	Unauthorized
	// Error indicates an infrastructure failure during authorization.
	// It is never coerced into Deny: an unreachable membership store must
	// surface as an outage, not as a permission problem.
	Error
)

// String returns the decision name for logs and metrics.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	case Unauthorized:
		return "unauthorized"
	case Error:
		return "error"
	}
	return "unknown"
}

// Request is the per-request authorization context threaded through the
// pipeline stages. It is built once per request from headers and route
// data; stages read it, and the admin stage records its one derived
// fact on it. Nothing in a Request outlives the request.
type Request struct {
	// Identity is the classified caller identity
	Identity *identity.Identity

	// Permissions is the parsed capability claim (never nil; an absent
	// header parses to the empty claim)
	Permissions *permissions.TokenPermissions

	// Method is the HTTP method of the request
	Method string

	// Path is the URL path of the request
	Path string

	// PathAcspNumber is the ACSP named by the route itself, when the
	// matched route carries one
	PathAcspNumber string

	// AdminPrivilege is set by the admin evaluation stage and consumed by
	// later stages and downstream handlers
	AdminPrivilege bool

	// Context is the enclosing request context, used for cancellation of
	// membership lookups
	Context context.Context
}

// Response represents the outcome of a stage or of the whole pipeline
type Response struct {
	// Decision is the authorization decision
	Decision Decision

	// Reason provides additional information about the decision
	Reason string

	// Error is set if an infrastructure failure occurred
	Error error
}

func allow(reason string) *Response {
	return &Response{Decision: Allow, Reason: reason}
}

func deny(reason string) *Response {
	return &Response{Decision: Deny, Reason: reason}
}

func unauthorized(reason string) *Response {
	return &Response{Decision: Unauthorized, Reason: reason}
}
