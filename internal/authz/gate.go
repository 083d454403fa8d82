// internal/authz/gate.go
package authz

import (
	"net/http"

	"acspmembers/internal/identity"
)

// DefaultInternalKeyRole is the role marker internal service callers
// must present to pass the internal gate.
const DefaultInternalKeyRole = "*"

// InternalGate protects the notification relay routes. It is a pure
// header/method predicate: internal calls are pre-authorized by
// possession of the internal credential, so the gate never consults the
// membership store. A delegated session is always rejected here, even a
// perfectly consistent one.
type InternalGate struct {
	keyRole string
}

// NewInternalGate creates an InternalGate requiring the given key role.
func NewInternalGate(keyRole string) *InternalGate {
	if keyRole == "" {
		keyRole = DefaultInternalKeyRole
	}
	return &InternalGate{keyRole: keyRole}
}

// Check applies the gate. All three conditions are mandatory: an
// internal identity kind, the internal-service key role, and a mutating
// method.
func (g *InternalGate) Check(req *Request) *Response {
	if req.Identity == nil || req.Identity.Kind == identity.KindUnknown {
		return unauthorized("no identity established")
	}
	if req.Identity.Kind != identity.KindAPIKey {
		return deny("route is internal-only")
	}
	if !req.Identity.HasKeyRole(g.keyRole) {
		return deny("caller lacks internal-service role")
	}
	if req.Method != http.MethodPost {
		return deny("method not permitted on internal route")
	}
	return allow("internal caller admitted")
}
