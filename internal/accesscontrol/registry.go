package accesscontrol

import (
	"fmt"

	"rentora/internal/auth"
)

// ErrUnknownResource wraps auth.ErrConfig: looking up a resource type that
// is not in the registry is a programming error, not a user-facing denial.
var ErrUnknownResource = fmt.Errorf("%w: unknown resource type", auth.ErrConfig)

// Registry maps resource type names to their permission entries. It is
// built once at startup and never mutated afterwards, so concurrent reads
// need no locking.
type Registry map[string]Config

// Resolvers carries the per-resource ownership lookups the data layer
// supplies. Resources without a field here are gated by role alone.
type Resolvers struct {
	Properties OwnershipFunc
	Contracts  OwnershipFunc
	Payments   OwnershipFunc
	Tickets    OwnershipFunc
	Messages   OwnershipFunc
	Reviews    OwnershipFunc
}

// NewRegistry builds the static permission matrix. Admins appear in every
// list; instance-level ownership is layered on top by the Authorizer.
func NewRegistry(own Resolvers) Registry {
	return Registry{
		ResourceUsers: {
			Resource: ResourceUsers,
			Permissions: ResourcePermissions{
				Create: []auth.Role{auth.RoleAdmin},
				Read:   []auth.Role{auth.RoleAdmin},
				Update: []auth.Role{auth.RoleAdmin},
				Delete: []auth.Role{auth.RoleAdmin},
			},
		},
		ResourceProperties: {
			Resource: ResourceProperties,
			Permissions: ResourcePermissions{
				Create: []auth.Role{auth.RoleAdmin, auth.RoleOwner, auth.RoleBroker},
				Read:   []auth.Role{auth.RoleAdmin, auth.RoleOwner, auth.RoleBroker, auth.RoleTenant},
				Update: []auth.Role{auth.RoleAdmin, auth.RoleOwner, auth.RoleBroker},
				Delete: []auth.Role{auth.RoleAdmin, auth.RoleOwner},
			},
			Ownership: own.Properties,
		},
		ResourceContracts: {
			Resource: ResourceContracts,
			Permissions: ResourcePermissions{
				Create: []auth.Role{auth.RoleAdmin, auth.RoleOwner, auth.RoleBroker},
				Read:   []auth.Role{auth.RoleAdmin, auth.RoleOwner, auth.RoleBroker, auth.RoleTenant},
				Update: []auth.Role{auth.RoleAdmin, auth.RoleOwner, auth.RoleBroker},
				Delete: []auth.Role{auth.RoleAdmin, auth.RoleOwner},
			},
			Ownership: own.Contracts,
		},
		ResourcePayments: {
			Resource: ResourcePayments,
			Permissions: ResourcePermissions{
				Create: []auth.Role{auth.RoleAdmin, auth.RoleOwner, auth.RoleTenant},
				Read:   []auth.Role{auth.RoleAdmin, auth.RoleOwner, auth.RoleBroker, auth.RoleTenant},
				Update: []auth.Role{auth.RoleAdmin, auth.RoleOwner},
				Delete: []auth.Role{auth.RoleAdmin},
			},
			Ownership: own.Payments,
		},
		ResourceTickets: {
			Resource: ResourceTickets,
			Permissions: ResourcePermissions{
				Create: []auth.Role{auth.RoleAdmin, auth.RoleTenant, auth.RoleOwner, auth.RoleBroker},
				Read:   []auth.Role{auth.RoleAdmin, auth.RoleSupport, auth.RoleTenant, auth.RoleOwner, auth.RoleBroker},
				Update: []auth.Role{auth.RoleAdmin, auth.RoleSupport},
				Delete: []auth.Role{auth.RoleAdmin},
			},
			Ownership: own.Tickets,
		},
		ResourceMessages: {
			Resource: ResourceMessages,
			Permissions: ResourcePermissions{
				Create: []auth.Role{auth.RoleAdmin, auth.RoleTenant, auth.RoleOwner, auth.RoleBroker, auth.RoleSupport, auth.RoleRunner},
				Read:   []auth.Role{auth.RoleAdmin, auth.RoleTenant, auth.RoleOwner, auth.RoleBroker, auth.RoleSupport, auth.RoleRunner},
				Update: []auth.Role{auth.RoleAdmin},
				Delete: []auth.Role{auth.RoleAdmin},
			},
			Ownership: own.Messages,
		},
		ResourceReviews: {
			Resource: ResourceReviews,
			Permissions: ResourcePermissions{
				Create: []auth.Role{auth.RoleAdmin, auth.RoleTenant, auth.RoleOwner, auth.RoleBroker},
				Read:   []auth.Role{auth.RoleAdmin, auth.RoleTenant, auth.RoleOwner, auth.RoleBroker},
				Update: []auth.Role{auth.RoleAdmin},
				Delete: []auth.Role{auth.RoleAdmin},
			},
			Ownership: own.Reviews,
		},
		ResourceSettings: {
			Resource: ResourceSettings,
			Permissions: ResourcePermissions{
				Create: []auth.Role{auth.RoleAdmin},
				Read:   []auth.Role{auth.RoleAdmin},
				Update: []auth.Role{auth.RoleAdmin},
				Delete: []auth.Role{auth.RoleAdmin},
			},
		},
		ResourceAuditLogs: {
			Resource: ResourceAuditLogs,
			Permissions: ResourcePermissions{
				Create: []auth.Role{auth.RoleAdmin},
				Read:   []auth.Role{auth.RoleAdmin},
				Update: []auth.Role{auth.RoleAdmin},
				Delete: []auth.Role{auth.RoleAdmin},
			},
		},
	}
}

// Config returns the entry for a resource type, erroring on unknown names
// rather than silently granting or denying.
func (reg Registry) Config(resource string) (Config, error) {
	cfg, ok := reg[resource]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownResource, resource)
	}
	return cfg, nil
}
