// internal/authz/admin.go
package authz

import (
	"net/http"
	"regexp"
)

// DefaultAdminSearchRole is the reserved role marker that enables the
// admin override for back-office search surfaces.
const DefaultAdminSearchRole = "/admin/acsp/search"

// adminReadPaths is the allow-list of route shapes the admin override
// applies to: the organization-scoped membership listing, and nothing
// else. The override exists so a back-office read surface can bypass
// per-organization session checks; it never authorizes mutation.
var adminReadPaths = []*regexp.Regexp{
	regexp.MustCompile(`^/acsps/[0-9A-Za-z]+/memberships/?$`),
}

// AdminEvaluator computes the elevated-access flag for a request. It
// never rejects anything itself; it only annotates the request, and the
// session validator honors the flag.
type AdminEvaluator struct {
	searchRole string
}

// NewAdminEvaluator creates an AdminEvaluator granting the override to
// callers presenting the given role marker.
func NewAdminEvaluator(searchRole string) *AdminEvaluator {
	if searchRole == "" {
		searchRole = DefaultAdminSearchRole
	}
	return &AdminEvaluator{searchRole: searchRole}
}

// Evaluate records the admin override flag on the request and always
// continues. The flag is granted only when the caller presents the
// marker role, the method is GET, and the path is on the read allow-list.
// A mutating method or an off-list path forces the flag false even with
// the marker present.
func (e *AdminEvaluator) Evaluate(req *Request) *Response {
	req.AdminPrivilege = req.Identity != nil &&
		req.Identity.HasAdminRole(e.searchRole) &&
		req.Method == http.MethodGet &&
		pathOnAdminAllowList(req.Path)
	return allow("admin privilege evaluated")
}

func pathOnAdminAllowList(path string) bool {
	for _, re := range adminReadPaths {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
