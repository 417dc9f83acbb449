package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"rentora/internal/accesscontrol"
	"rentora/internal/auth"
	"rentora/internal/store"
)

type fakeAuditLogs struct {
	entries []store.AuditEntry
}

func (f *fakeAuditLogs) Append(_ context.Context, e *store.AuditEntry) error {
	f.entries = append(f.entries, *e)
	return nil
}

func (f *fakeAuditLogs) List(_ context.Context, _ int) ([]store.AuditEntry, error) {
	return f.entries, nil
}

func newTestApp(t *testing.T) (*application, *fakeAuditLogs) {
	t.Helper()

	authenticator, err := auth.NewJWTAuthenticator(auth.TokenConfig{
		Secret:          "0123456789abcdef0123456789abcdef",
		RefreshSecret:   "fedcba9876543210fedcba9876543210",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		Iss:             "rentora-test",
	})
	if err != nil {
		t.Fatalf("NewJWTAuthenticator: %v", err)
	}

	// user 1 owns every property; everyone else owns none
	registry := accesscontrol.NewRegistry(accesscontrol.Resolvers{
		Properties: func(_ context.Context, userID, _ int64) (bool, error) {
			return userID == 1, nil
		},
	})

	audit := &fakeAuditLogs{}
	app := &application{
		logger:        zap.NewNop().Sugar(),
		authenticator: authenticator,
		authorizer:    accesscontrol.NewAuthorizer(authenticator, registry),
		store:         store.Storage{AuditLogs: audit},
	}
	return app, audit
}

func loginAs(t *testing.T, app *application, userID int64, role auth.Role) *http.Cookie {
	t.Helper()

	access, _, err := app.authenticator.GenerateTokens(userID, "user@example.com", role, "Test User")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}
	return &http.Cookie{Name: auth.AccessTokenCookie, Value: access}
}

func TestAuthTokenMiddleware(t *testing.T) {
	app, _ := newTestApp(t)

	var gotClaims *auth.AccessClaims
	handler := app.AuthTokenMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims = getSessionFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("no cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("garbage cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: "not-a-jwt"})
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})

	t.Run("valid session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(loginAs(t, app, 42, auth.RoleTenant))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if gotClaims == nil {
			t.Fatal("expected claims in context")
		}
		if id, _ := gotClaims.UserID(); id != 42 {
			t.Fatalf("expected user 42, got %d", id)
		}
	})
}

func TestAuthorizeRoleDenialIsAudited(t *testing.T) {
	app, audit := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	req.AddCookie(loginAs(t, app, 7, auth.RoleTenant))
	rr := httptest.NewRecorder()

	_, ok := app.authorize(rr, req, accesscontrol.ResourceUsers, accesscontrol.ActionRead, 0)
	if ok {
		t.Fatal("tenant must not read users")
	}
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(audit.entries))
	}
	if audit.entries[0].Outcome != "denied_role" {
		t.Fatalf("expected denied_role, got %q", audit.entries[0].Outcome)
	}
}

func TestAuthorizeInstanceRoleDenialIsAudited(t *testing.T) {
	app, audit := newTestApp(t)

	// Tenants are not in the properties delete list, so this dies at the
	// role matrix even though a specific instance is addressed.
	req := httptest.NewRequest(http.MethodDelete, "/v1/properties/5", nil)
	req.AddCookie(loginAs(t, app, 7, auth.RoleTenant))
	rr := httptest.NewRecorder()

	_, ok := app.authorize(rr, req, accesscontrol.ResourceProperties, accesscontrol.ActionDelete, 5)
	if ok {
		t.Fatal("tenant must not delete properties")
	}
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(audit.entries))
	}
	if audit.entries[0].Outcome != "denied_role" {
		t.Fatalf("role-matrix denial recorded as %q, want denied_role", audit.entries[0].Outcome)
	}
}

func TestAuthorizeOwnershipDenialIsAudited(t *testing.T) {
	app, audit := newTestApp(t)

	// Owner 2 passes the role matrix for update but does not own property 5.
	req := httptest.NewRequest(http.MethodPatch, "/v1/properties/5", nil)
	req.AddCookie(loginAs(t, app, 2, auth.RoleOwner))
	rr := httptest.NewRecorder()

	_, ok := app.authorize(rr, req, accesscontrol.ResourceProperties, accesscontrol.ActionUpdate, 5)
	if ok {
		t.Fatal("non-owner must not update the property")
	}
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("expected 1 audit entry, got %d", len(audit.entries))
	}
	if audit.entries[0].Outcome != "denied_ownership" {
		t.Fatalf("ownership denial recorded as %q, want denied_ownership", audit.entries[0].Outcome)
	}
}

func TestAuthorizeAdminAllowed(t *testing.T) {
	app, audit := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	req.AddCookie(loginAs(t, app, 1, auth.RoleAdmin))
	rr := httptest.NewRecorder()

	claims, ok := app.authorize(rr, req, accesscontrol.ResourceUsers, accesscontrol.ActionRead, 0)
	if !ok {
		t.Fatalf("admin read denied, status %d", rr.Code)
	}
	if claims.Role != auth.RoleAdmin {
		t.Fatalf("expected admin claims, got %s", claims.Role)
	}
	if len(audit.entries) != 1 || audit.entries[0].Outcome != "allowed" {
		t.Fatalf("expected one allowed audit entry, got %+v", audit.entries)
	}
}

func TestAuthorizeNoSession(t *testing.T) {
	app, audit := newTestApp(t)

	rr := httptest.NewRecorder()
	_, ok := app.authorize(rr, httptest.NewRequest(http.MethodGet, "/v1/users", nil), accesscontrol.ResourceUsers, accesscontrol.ActionRead, 0)
	if ok {
		t.Fatal("anonymous request must be denied")
	}
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
	if len(audit.entries) != 0 {
		t.Fatalf("anonymous denials are not audited, got %+v", audit.entries)
	}
}
