package auth

import "strings"

// Role is the closed set of identities the platform knows about. The
// canonical form is upper case; NormalizeRole is the only place claims are
// case-folded, immediately after token verification.
type Role string

const (
	RoleAdmin               Role = "ADMIN"
	RoleOwner               Role = "OWNER"
	RoleTenant              Role = "TENANT"
	RoleBroker              Role = "BROKER"
	RoleRunner              Role = "RUNNER"
	RoleSupport             Role = "SUPPORT"
	RoleServiceProvider     Role = "SERVICE_PROVIDER"
	RoleMaintenanceProvider Role = "MAINTENANCE_PROVIDER"
)

// NormalizeRole upper-cases a role claim and folds the legacy bare
// "PROVIDER" value into SERVICE_PROVIDER so old tokens keep working.
func NormalizeRole(s string) Role {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if r == "PROVIDER" {
		return RoleServiceProvider
	}
	return r
}

// Valid reports whether r is one of the canonical roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOwner, RoleTenant, RoleBroker, RoleRunner,
		RoleSupport, RoleServiceProvider, RoleMaintenanceProvider:
		return true
	}
	return false
}
