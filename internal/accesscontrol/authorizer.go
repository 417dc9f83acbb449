package accesscontrol

import (
	"fmt"
	"net/http"

	"rentora/internal/auth"
)

// ErrNotOwner marks denials from the ownership tier. It wraps
// auth.ErrForbidden, so callers that only care about 403-versus-401 keep
// working, while the audit trail can tell the two denial kinds apart.
var ErrNotOwner = fmt.Errorf("%w: not your resource", auth.ErrForbidden)

// Authorizer composes the token service with the permission registry. It is
// stateless beyond the write-once registry, so one instance serves all
// requests concurrently.
type Authorizer struct {
	auth     auth.Authenticator
	registry Registry
}

func NewAuthorizer(a auth.Authenticator, reg Registry) *Authorizer {
	return &Authorizer{auth: a, registry: reg}
}

// CanPerform authenticates the request and checks the caller's role against
// the action's allowed list. The verified claims are returned so handlers
// never re-verify the token.
func (az *Authorizer) CanPerform(r *http.Request, resource string, action Action) (*auth.AccessClaims, error) {
	cfg, err := az.registry.Config(resource)
	if err != nil {
		return nil, err
	}

	claims, err := az.auth.Authenticate(r)
	if err != nil {
		return nil, err
	}

	allowed, ok := cfg.Permissions.roles(action)
	if !ok {
		return nil, fmt.Errorf("%w: unknown action %q on %q", auth.ErrConfig, action, resource)
	}
	for _, role := range allowed {
		if claims.Role == role {
			return claims, nil
		}
	}
	return nil, fmt.Errorf("%w: role %s cannot %s %s", auth.ErrForbidden, claims.Role, action, resource)
}

// CheckOwnership runs the resource's ownership predicate. Resources without
// one are trivially owned: the role check alone gates access.
func (az *Authorizer) CheckOwnership(r *http.Request, resource string, userID, resourceID int64) (bool, error) {
	cfg, err := az.registry.Config(resource)
	if err != nil {
		return false, err
	}
	if cfg.Ownership == nil {
		return true, nil
	}
	return cfg.Ownership(r.Context(), userID, resourceID)
}

// Authorize is the two-tier gate: the coarse role check, then for a
// specific instance (resourceID > 0) the ownership predicate. Admins bypass
// ownership unconditionally. A failed ownership lookup propagates as an
// error; it is not proof the caller lacks ownership.
func (az *Authorizer) Authorize(r *http.Request, resource string, action Action, resourceID int64) (*auth.AccessClaims, error) {
	claims, err := az.CanPerform(r, resource, action)
	if err != nil {
		return nil, err
	}

	if resourceID <= 0 || claims.Role == auth.RoleAdmin {
		return claims, nil
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, auth.ErrUnauthenticated
	}

	owned, err := az.CheckOwnership(r, resource, userID, resourceID)
	if err != nil {
		return nil, fmt.Errorf("ownership lookup for %s/%d: %w", resource, resourceID, err)
	}
	if !owned {
		return nil, fmt.Errorf("%s/%d: %w", resource, resourceID, ErrNotOwner)
	}
	return claims, nil
}
