package auth

import "errors"

var (
	// ErrUnauthenticated covers every way a session can fail to exist:
	// missing cookie, malformed token, wrong signature, expiry. Callers get
	// one uniform failure so the response never acts as a verification oracle.
	ErrUnauthenticated = errors.New("auth: no valid session")

	// ErrForbidden means the identity is valid but the role or ownership
	// check failed. Refreshing tokens will not fix it.
	ErrForbidden = errors.New("auth: permission denied")

	// ErrConfig marks invalid bootstrap configuration (missing, weak or
	// duplicated secrets). Raised eagerly, never downgraded to 401/403.
	ErrConfig = errors.New("auth: invalid configuration")
)
