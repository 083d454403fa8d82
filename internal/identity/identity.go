// internal/identity/identity.go
package identity

import (
	"net/http"
	"slices"
	"strings"
)

// Header names populated by the edge gateway before requests reach this
// service. The gateway authenticates the caller; this service only
// classifies and authorizes.
const (
	// IdentityHeader carries the opaque caller identifier
	IdentityHeader = "Eric-Identity"

	// IdentityTypeHeader carries the identity kind literal
	IdentityTypeHeader = "Eric-Identity-Type"

	// KeyRolesHeader carries the role list presented by API-key callers
	KeyRolesHeader = "Eric-Authorised-Key-Roles"

	// AdminRolesHeader carries the role list for the admin override mechanism
	AdminRolesHeader = "Eric-Authorised-Roles"

	// TokenPermissionsHeader carries the raw capability-token string
	TokenPermissionsHeader = "Eric-Authorised-Token-Permissions"
)

// Kind is the classified identity kind of a caller
type Kind string

const (
	// KindOAuth2 is a delegated end-user session
	KindOAuth2 Kind = "oauth2"

	// KindAPIKey is a trusted internal service caller
	KindAPIKey Kind = "key"

	// KindUnknown is any identity-type value this service does not recognize,
	// including an absent or blank header
	KindUnknown Kind = ""
)

// Identity is the per-request caller identity, reconstructed fresh from
// headers on every request and immutable afterwards.
type Identity struct {
	// UserID is the opaque caller identifier (empty for internal callers)
	UserID string

	// Kind is the classified identity kind
	Kind Kind

	// KeyRoles is the role set presented by internal callers
	KeyRoles []string

	// AdminRoles is the role set presented for the admin override mechanism
	AdminRoles []string
}

// ClassifyKind maps the raw identity-type header value to a Kind.
// Exactly two literals are accepted, case-sensitively; everything else,
// including empty, is KindUnknown.
func ClassifyKind(value string) Kind {
	switch value {
	case string(KindOAuth2):
		return KindOAuth2
	case string(KindAPIKey):
		return KindAPIKey
	default:
		return KindUnknown
	}
}

// FromRequest builds an Identity from the request headers.
func FromRequest(r *http.Request) *Identity {
	return &Identity{
		UserID:     strings.TrimSpace(r.Header.Get(IdentityHeader)),
		Kind:       ClassifyKind(r.Header.Get(IdentityTypeHeader)),
		KeyRoles:   splitRoles(r.Header.Get(KeyRolesHeader)),
		AdminRoles: splitRoles(r.Header.Get(AdminRolesHeader)),
	}
}

// HasKeyRole reports whether the caller presented the given API-key role.
func (i *Identity) HasKeyRole(role string) bool {
	return slices.Contains(i.KeyRoles, role)
}

// HasAdminRole reports whether the caller presented the given admin role.
func (i *Identity) HasAdminRole(role string) bool {
	return slices.Contains(i.AdminRoles, role)
}

func splitRoles(raw string) []string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	return fields
}
