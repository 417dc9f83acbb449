package auth

import "net/http"

// Authenticator is the single entry point handlers use to establish identity.
// Handlers must not read the auth cookies or parse tokens themselves.
type Authenticator interface {
	GenerateTokens(userID int64, email string, role Role, name string) (string, string, error)
	ValidateAccessToken(token string) (*AccessClaims, error)
	ValidateRefreshToken(token string) (*RefreshClaims, error)
	Authenticate(r *http.Request) (*AccessClaims, error)
	RequireRole(r *http.Request, role Role) (*AccessClaims, error)
	RequireAnyRole(r *http.Request, roles ...Role) (*AccessClaims, error)
}
