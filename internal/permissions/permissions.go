// internal/permissions/permissions.go

// Package permissions parses the capability-token string carried on
// requests into a typed claim. Parsing happens exactly once, at the
// boundary; every later stage works on the structured TokenPermissions
// value. The parser is deliberately lenient: malformed input yields an
// empty claim, and strictness is enforced by the consumers that know
// what absence means.
package permissions

import (
	"regexp"
	"slices"
	"strings"

	"acspmembers/internal/membership"
)

// Capability keys understood by the service. Unknown keys are retained
// opaquely for forward compatibility but never influence decisions.
const (
	// KeyAcspNumber scopes the claim to an ACSP
	KeyAcspNumber = "acsp_number"

	// KeyMembers is the baseline read capability
	KeyMembers = "acsp_members"

	// KeyMembersOwners grants management of owner members
	KeyMembersOwners = "acsp_members_owners"

	// KeyMembersAdmins grants management of admin members
	KeyMembersAdmins = "acsp_members_admins"

	// KeyMembersStandard grants management of standard members
	KeyMembersStandard = "acsp_members_standard"
)

// Action tokens that may appear in a capability value list
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

var acspNumberPattern = regexp.MustCompile(`^[0-9A-Za-z]+$`)

// TokenPermissions is the parsed form of a capability-token string.
// Immutable after Parse.
type TokenPermissions struct {
	acspNumber string
	grants     map[string][]string
}

// Parse converts a raw capability-token header value into a
// TokenPermissions. The grammar is a space-separated sequence of
// key=value pairs, where value is a single token or a comma-separated
// list of action tokens. Absent, empty or malformed input produces the
// empty claim; it never fails.
func Parse(raw string) *TokenPermissions {
	p := &TokenPermissions{grants: make(map[string][]string)}

	for _, pair := range strings.Fields(raw) {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" || value == "" {
			continue
		}

		if key == KeyAcspNumber {
			if acspNumberPattern.MatchString(value) {
				p.acspNumber = value
			}
			continue
		}

		var actions []string
		for _, action := range strings.Split(value, ",") {
			if action = strings.TrimSpace(action); action != "" {
				actions = append(actions, action)
			}
		}
		p.grants[key] = actions
	}

	return p
}

// AcspNumber returns the ACSP the claim is scoped to, or "" when the
// claim carries no (or a malformed) acsp_number pair. Absence is not a
// parse error; it is surfaced by the session validator as missing
// organization context.
func (p *TokenPermissions) AcspNumber() string {
	return p.acspNumber
}

// Has reports whether the claim carries the given capability key at all,
// regardless of its action list.
func (p *TokenPermissions) Has(key string) bool {
	_, ok := p.grants[key]
	return ok
}

// Actions returns the action tokens recorded for a capability key.
func (p *TokenPermissions) Actions(key string) []string {
	return p.grants[key]
}

// HasFullActionSet reports whether the claim grants create, update and
// delete on the given capability key.
func (p *TokenPermissions) HasFullActionSet(key string) bool {
	actions := p.grants[key]
	return slices.Contains(actions, ActionCreate) &&
		slices.Contains(actions, ActionUpdate) &&
		slices.Contains(actions, ActionDelete)
}

// CanReadMembers reports whether the claim carries the baseline read
// capability.
func (p *TokenPermissions) CanReadMembers() bool {
	return p.Has(KeyMembers)
}

// IsEmpty reports whether the claim carries no recognized pairs at all.
func (p *TokenPermissions) IsEmpty() bool {
	return p.acspNumber == "" && len(p.grants) == 0
}

// ClaimedRole derives the role the caller's session claims to hold. A
// full owner-management action set claims owner; otherwise a full
// admin-management set claims admin; otherwise the bare read capability
// claims standard. A claim with none of these carries no role at all,
// which consumers treat as fail-closed.
func (p *TokenPermissions) ClaimedRole() (membership.Role, bool) {
	switch {
	case p.HasFullActionSet(KeyMembersOwners):
		return membership.RoleOwner, true
	case p.HasFullActionSet(KeyMembersAdmins):
		return membership.RoleAdmin, true
	case p.Has(KeyMembers):
		return membership.RoleStandard, true
	}
	return "", false
}

// ForRole produces the canonical capability-token string issued for a
// member of the given role within the given ACSP. Parsing its output and
// deriving the claimed role always round-trips to role.
func ForRole(acspNumber string, role membership.Role) string {
	fullSet := ActionCreate + "," + ActionUpdate + "," + ActionDelete

	parts := []string{
		KeyAcspNumber + "=" + acspNumber,
		KeyMembers + "=read",
	}
	switch role {
	case membership.RoleOwner:
		parts = append(parts,
			KeyMembersOwners+"="+fullSet,
			KeyMembersAdmins+"="+fullSet,
			KeyMembersStandard+"="+fullSet,
		)
	case membership.RoleAdmin:
		parts = append(parts,
			KeyMembersAdmins+"="+fullSet,
			KeyMembersStandard+"="+fullSet,
		)
	}
	return strings.Join(parts, " ")
}
