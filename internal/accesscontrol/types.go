package accesscontrol

import (
	"context"

	"rentora/internal/auth"
)

// Action is one of the four CRUD actions the permission matrix knows about.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource type names used as registry keys.
const (
	ResourceUsers      = "users"
	ResourceProperties = "properties"
	ResourceContracts  = "contracts"
	ResourcePayments   = "payments"
	ResourceTickets    = "tickets"
	ResourceMessages   = "messages"
	ResourceReviews    = "reviews"
	ResourceSettings   = "settings"
	ResourceAuditLogs  = "audit_logs"
)

// OwnershipFunc decides whether a user is a stakeholder in one specific
// record (owner, tenant, broker, sender/receiver, reviewer/reviewee,
// creator/assignee). It answers ownership only; which roles may act at all
// stays in the permission matrix. An error from the underlying lookup is an
// error, never an implicit "not owner".
type OwnershipFunc func(ctx context.Context, userID, resourceID int64) (bool, error)

// ResourcePermissions lists the roles allowed for each action. Every field
// is required; an incomplete entry cannot compile.
type ResourcePermissions struct {
	Create []auth.Role
	Read   []auth.Role
	Update []auth.Role
	Delete []auth.Role
}

func (p ResourcePermissions) roles(action Action) ([]auth.Role, bool) {
	switch action {
	case ActionCreate:
		return p.Create, true
	case ActionRead:
		return p.Read, true
	case ActionUpdate:
		return p.Update, true
	case ActionDelete:
		return p.Delete, true
	}
	return nil, false
}

// Config binds one resource type to its permission matrix entry. A nil
// Ownership means the role check alone gates access (global resources such
// as settings).
type Config struct {
	Resource    string
	Permissions ResourcePermissions
	Ownership   OwnershipFunc
}
