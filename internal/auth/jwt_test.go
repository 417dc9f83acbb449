package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func testConfig() TokenConfig {
	return TokenConfig{
		Secret:          "test-access-secret",
		RefreshSecret:   "test-refresh-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 7 * 24 * time.Hour,
		Iss:             "rentora-test",
	}
}

func newTestAuthenticator(t *testing.T) *JWTAuthenticator {
	t.Helper()
	a, err := NewJWTAuthenticator(testConfig())
	if err != nil {
		t.Fatalf("NewJWTAuthenticator: %v", err)
	}
	return a
}

func requestWithAccessToken(t *testing.T, token string) *http.Request {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, "/v1/properties", nil)
	r.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: token})
	return r
}

func TestGenerateAndValidateTokens(t *testing.T) {
	a := newTestAuthenticator(t)

	access, refresh, err := a.GenerateTokens(42, "owner@example.com", RoleOwner, "Ana Owner")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	claims, err := a.ValidateAccessToken(access)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	if id, err := claims.UserID(); err != nil || id != 42 {
		t.Fatalf("unexpected subject: %s", claims.Subject)
	}
	if claims.Email != "owner@example.com" || claims.Role != RoleOwner || claims.Name != "Ana Owner" {
		t.Fatalf("claims not preserved: %+v", claims)
	}

	rc, err := a.ValidateRefreshToken(refresh)
	if err != nil {
		t.Fatalf("ValidateRefreshToken: %v", err)
	}
	if rc.Kind != "refresh" {
		t.Fatalf("unexpected refresh kind: %q", rc.Kind)
	}
	if rc.Subject != claims.Subject {
		t.Fatalf("refresh subject %s does not match access subject %s", rc.Subject, claims.Subject)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := testConfig()
	cfg.Secret = ""
	if _, err := NewJWTAuthenticator(cfg); !errors.Is(err, ErrConfig) {
		t.Fatalf("missing access secret: want ErrConfig, got %v", err)
	}

	cfg = testConfig()
	cfg.RefreshSecret = ""
	if _, err := NewJWTAuthenticator(cfg); !errors.Is(err, ErrConfig) {
		t.Fatalf("missing refresh secret: want ErrConfig, got %v", err)
	}
}

func TestProductionSecretRules(t *testing.T) {
	long := strings.Repeat("s", 40)

	cfg := testConfig()
	cfg.Production = true
	if _, err := NewJWTAuthenticator(cfg); !errors.Is(err, ErrConfig) {
		t.Fatalf("short production secrets: want ErrConfig, got %v", err)
	}

	cfg = testConfig()
	cfg.Production = true
	cfg.Secret = long
	cfg.RefreshSecret = long
	if _, err := NewJWTAuthenticator(cfg); !errors.Is(err, ErrConfig) {
		t.Fatalf("identical production secrets: want ErrConfig, got %v", err)
	}

	cfg.RefreshSecret = strings.Repeat("r", 40)
	if _, err := NewJWTAuthenticator(cfg); err != nil {
		t.Fatalf("valid production config rejected: %v", err)
	}
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	a := newTestAuthenticator(t)

	access, _, err := a.GenerateTokens(7, "t@example.com", RoleTenant, "T")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}
	if _, err := a.ValidateRefreshToken(access); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
}

func TestRefreshKindRequired(t *testing.T) {
	a := newTestAuthenticator(t)

	// Signed with the refresh secret but without the kind marker.
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := a.signClaims(claims, a.cfg.RefreshSecret)
	if err != nil {
		t.Fatalf("signClaims: %v", err)
	}
	if _, err := a.ValidateRefreshToken(token); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("kind-less token accepted as refresh token: %v", err)
	}
}

func TestExpiredTokenIsAuthenticationFailure(t *testing.T) {
	a := newTestAuthenticator(t)

	claims := AccessClaims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	token, err := a.signClaims(claims, a.cfg.Secret)
	if err != nil {
		t.Fatalf("signClaims: %v", err)
	}

	_, err = a.Authenticate(requestWithAccessToken(t, token))
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expired token: want ErrUnauthenticated, got %v", err)
	}
	if errors.Is(err, ErrForbidden) {
		t.Fatalf("expired token must not be an authorization failure")
	}
}

func TestAuthenticateMissingOrTamperedToken(t *testing.T) {
	a := newTestAuthenticator(t)

	r := httptest.NewRequest(http.MethodGet, "/v1/properties", nil)
	if _, err := a.Authenticate(r); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("missing cookie: want ErrUnauthenticated, got %v", err)
	}

	access, _, err := a.GenerateTokens(1, "a@example.com", RoleAdmin, "A")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}
	tampered := access[:len(access)-2] + "xx"
	if _, err := a.Authenticate(requestWithAccessToken(t, tampered)); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("tampered token: want ErrUnauthenticated, got %v", err)
	}
}

func TestRequireRoleCaseInsensitive(t *testing.T) {
	a := newTestAuthenticator(t)

	// Claim carries a lower-case role, as a legacy issuer might have set it.
	claims := AccessClaims{
		Role: Role("admin"),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := a.signClaims(claims, a.cfg.Secret)
	if err != nil {
		t.Fatalf("signClaims: %v", err)
	}

	got, err := a.RequireRole(requestWithAccessToken(t, token), RoleAdmin)
	if err != nil {
		t.Fatalf("RequireRole: %v", err)
	}
	if got.Role != RoleAdmin {
		t.Fatalf("role not normalized: %s", got.Role)
	}
}

func TestRequireAnyRole(t *testing.T) {
	a := newTestAuthenticator(t)

	access, _, err := a.GenerateTokens(9, "b@example.com", RoleBroker, "B")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	if _, err := a.RequireAnyRole(requestWithAccessToken(t, access), RoleOwner, RoleBroker); err != nil {
		t.Fatalf("broker should pass owner|broker: %v", err)
	}

	_, err = a.RequireAnyRole(requestWithAccessToken(t, access), RoleAdmin, RoleSupport)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("broker in admin|support: want ErrForbidden, got %v", err)
	}
	if errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("role mismatch must not be an authentication failure")
	}
}

func TestSetAndClearAuthCookies(t *testing.T) {
	a := newTestAuthenticator(t)

	rec := httptest.NewRecorder()
	a.SetAuthCookies(rec, "access-value", "refresh-value")

	cookies := rec.Result().Cookies()
	byName := map[string]*http.Cookie{}
	for _, c := range cookies {
		byName[c.Name] = c
	}

	access, ok := byName[AccessTokenCookie]
	if !ok {
		t.Fatalf("missing %s cookie", AccessTokenCookie)
	}
	if !access.HttpOnly || access.Path != "/" || access.SameSite != http.SameSiteLaxMode {
		t.Fatalf("access cookie attributes wrong: %+v", access)
	}
	if access.Domain != "" {
		t.Fatalf("cookies must not pin a domain, got %q", access.Domain)
	}
	if access.MaxAge != int(time.Hour.Seconds()) {
		t.Fatalf("access cookie max-age %d, want %d", access.MaxAge, int(time.Hour.Seconds()))
	}

	refresh, ok := byName[RefreshTokenCookie]
	if !ok {
		t.Fatalf("missing %s cookie", RefreshTokenCookie)
	}
	if refresh.MaxAge != int((7 * 24 * time.Hour).Seconds()) {
		t.Fatalf("refresh cookie max-age %d", refresh.MaxAge)
	}

	rec = httptest.NewRecorder()
	a.ClearAuthCookies(rec)
	for _, c := range rec.Result().Cookies() {
		if c.MaxAge != -1 || c.Value != "" {
			t.Fatalf("cookie %s not expired on clear: %+v", c.Name, c)
		}
	}
}
