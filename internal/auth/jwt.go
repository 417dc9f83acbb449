package auth

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const refreshKind = "refresh"

// AccessClaims is the verified payload of an access token. Role is
// normalized to upper case by Authenticate before anything compares it.
type AccessClaims struct {
	Email string `json:"email,omitempty"`
	Role  Role   `json:"role,omitempty"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the numeric subject out of the claim.
func (c *AccessClaims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// RefreshClaims carries only the subject and a kind marker. Role and email
// are deliberately absent: they are re-fetched from the user store on
// refresh so a stale claim cannot carry privileges forward.
type RefreshClaims struct {
	Kind string `json:"kind,omitempty"`
	jwt.RegisteredClaims
}

func (c *RefreshClaims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

// TokenConfig is validated once during bootstrap and injected into the
// authenticator, so a bad deployment fails at startup rather than on the
// first login.
type TokenConfig struct {
	Secret          string
	RefreshSecret   string
	AccessTokenExp  time.Duration
	RefreshTokenExp time.Duration
	Iss             string
	Production      bool
}

const minSecretLen = 32

// Validate enforces the secret requirements: both secrets set, and in
// production mode at least 32 bytes each and distinct from one another. A
// shared secret would let a leaked refresh token forge access tokens.
func (c TokenConfig) Validate() error {
	if c.Secret == "" {
		return fmt.Errorf("%w: access token secret is not set", ErrConfig)
	}
	if c.RefreshSecret == "" {
		return fmt.Errorf("%w: refresh token secret is not set", ErrConfig)
	}
	if c.Production {
		if len(c.Secret) < minSecretLen {
			return fmt.Errorf("%w: access token secret shorter than %d bytes", ErrConfig, minSecretLen)
		}
		if len(c.RefreshSecret) < minSecretLen {
			return fmt.Errorf("%w: refresh token secret shorter than %d bytes", ErrConfig, minSecretLen)
		}
		if c.Secret == c.RefreshSecret {
			return fmt.Errorf("%w: access and refresh token secrets must differ", ErrConfig)
		}
	}
	return nil
}

type JWTAuthenticator struct {
	cfg TokenConfig
}

// NewJWTAuthenticator validates the config and returns the authenticator.
func NewJWTAuthenticator(cfg TokenConfig) (*JWTAuthenticator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.AccessTokenExp <= 0 {
		cfg.AccessTokenExp = time.Hour
	}
	if cfg.RefreshTokenExp <= 0 {
		cfg.RefreshTokenExp = 7 * 24 * time.Hour
	}
	return &JWTAuthenticator{cfg: cfg}, nil
}

func (a *JWTAuthenticator) AccessTokenExp() time.Duration  { return a.cfg.AccessTokenExp }
func (a *JWTAuthenticator) RefreshTokenExp() time.Duration { return a.cfg.RefreshTokenExp }
func (a *JWTAuthenticator) Production() bool               { return a.cfg.Production }

// GenerateTokens signs an access and a refresh token with their own secrets.
func (a *JWTAuthenticator) GenerateTokens(userID int64, email string, role Role, name string) (string, string, error) {
	now := time.Now()
	sub := strconv.FormatInt(userID, 10)

	accessClaims := AccessClaims{
		Email: email,
		Role:  role,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    a.cfg.Iss,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.AccessTokenExp)),
		},
	}

	refreshClaims := RefreshClaims{
		Kind: refreshKind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    a.cfg.Iss,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.cfg.RefreshTokenExp)),
		},
	}

	accessToken, err := a.signClaims(accessClaims, a.cfg.Secret)
	if err != nil {
		return "", "", err
	}

	refreshToken, err := a.signClaims(refreshClaims, a.cfg.RefreshSecret)
	if err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (a *JWTAuthenticator) signClaims(claims jwt.Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateAccessToken verifies signature and expiry against the access
// secret. Every failure collapses to ErrUnauthenticated.
func (a *JWTAuthenticator) ValidateAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := a.parseInto(token, claims, a.cfg.Secret); err != nil {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// ValidateRefreshToken verifies against the refresh secret and requires the
// kind marker, so an access token can never be replayed as a refresh token.
func (a *JWTAuthenticator) ValidateRefreshToken(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := a.parseInto(token, claims, a.cfg.RefreshSecret); err != nil {
		return nil, ErrUnauthenticated
	}
	if claims.Kind != refreshKind {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

func (a *JWTAuthenticator) parseInto(token string, claims jwt.Claims, secret string) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired(), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return ErrUnauthenticated
	}
	return nil
}

// Authenticate extracts and verifies the access token from the request
// cookie and normalizes the role claim. This is the one place role
// case-folding happens; everything downstream compares roles literally.
func (a *JWTAuthenticator) Authenticate(r *http.Request) (*AccessClaims, error) {
	c, err := r.Cookie(AccessTokenCookie)
	if err != nil || c.Value == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := a.ValidateAccessToken(c.Value)
	if err != nil {
		return nil, err
	}
	claims.Role = NormalizeRole(string(claims.Role))
	return claims, nil
}

// RequireRole authenticates and then demands an exact role. Mismatch is an
// authorization failure, distinct from a missing or invalid session.
func (a *JWTAuthenticator) RequireRole(r *http.Request, role Role) (*AccessClaims, error) {
	claims, err := a.Authenticate(r)
	if err != nil {
		return nil, err
	}
	if claims.Role != NormalizeRole(string(role)) {
		return nil, fmt.Errorf("%w: role %s required", ErrForbidden, role)
	}
	return claims, nil
}

// RequireAnyRole authenticates and demands membership in the given set.
func (a *JWTAuthenticator) RequireAnyRole(r *http.Request, roles ...Role) (*AccessClaims, error) {
	claims, err := a.Authenticate(r)
	if err != nil {
		return nil, err
	}
	for _, role := range roles {
		if claims.Role == NormalizeRole(string(role)) {
			return claims, nil
		}
	}
	return nil, fmt.Errorf("%w: role %s is not permitted", ErrForbidden, claims.Role)
}
