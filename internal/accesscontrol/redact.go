package accesscontrol

import "rentora/internal/auth"

// Field names stripped from records before they cross the authorization
// boundary to a non-admin caller. Last line of defense: even if a query
// path accidentally selects a hash column, it cannot reach a response.
var sensitiveFields = map[string]struct{}{
	"password":             {},
	"password_hash":        {},
	"refresh_token":        {},
	"reset_password_token": {},
}

// RedactSensitiveFields returns the record with sensitive fields removed
// for non-admin callers. Admins get the record unchanged. The input map is
// not modified.
func RedactSensitiveFields(record map[string]any, role auth.Role) map[string]any {
	if role == auth.RoleAdmin {
		return record
	}
	out := make(map[string]any, len(record))
	for k, v := range record {
		if _, sensitive := sensitiveFields[k]; sensitive {
			continue
		}
		out[k] = v
	}
	return out
}
