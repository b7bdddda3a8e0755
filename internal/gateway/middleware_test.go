package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/corefellowship/backend/internal/logging"
	"github.com/corefellowship/backend/internal/principal"
	"github.com/corefellowship/backend/internal/token"
	"github.com/corefellowship/backend/types"
)

var gatewayTokenConfig = token.Config{
	Secret:   "gateway-test-secret",
	Issuer:   "fellowship-identity",
	Audience: "fellowship-platform",
	TTL:      time.Hour,
}

func mintFor(t *testing.T, user types.User) string {
	t.Helper()
	signed, err := token.NewIssuer(gatewayTokenConfig).Mint(user)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return signed
}

// echoPrincipal reports what identity, if any, reached the handler.
func echoPrincipal() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal.FromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]any{
			"authenticated": ok,
			"userId":        p.UserID,
			"role":          p.Role,
			"spoofedHeader": r.Header.Get(principal.HeaderUserRole),
		})
	})
}

func newTestAuthenticator() *Authenticator {
	return NewAuthenticator(token.NewValidator(gatewayTokenConfig), DefaultPolicy(), logging.Nop{})
}

func doRequest(t *testing.T, handler http.Handler, req *http.Request) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestAnonymousPublicRouteAllowed(t *testing.T) {
	handler := newTestAuthenticator().Middleware(echoPrincipal())

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	rec, body := doRequest(t, handler, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["authenticated"] != false {
		t.Errorf("authenticated = %v, want false", body["authenticated"])
	}
}

func TestAnonymousProtectedRouteRejected(t *testing.T) {
	handler := newTestAuthenticator().Middleware(echoPrincipal())

	req := httptest.NewRequest(http.MethodGet, "/v1/students/applications", nil)
	rec, body := doRequest(t, handler, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body["error"] != "401" {
		t.Errorf("error field = %v, want \"401\"", body["error"])
	}
}

func TestMalformedAuthorizationIsAnonymous(t *testing.T) {
	handler := newTestAuthenticator().Middleware(echoPrincipal())

	// Not a bearer scheme: treated as anonymous, and the public policy
	// lets the request through.
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec, _ := doRequest(t, handler, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	// The same anonymous request on a protected route is a 401.
	req = httptest.NewRequest(http.MethodGet, "/v1/startups/abc", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec, _ = doRequest(t, handler, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestInvalidTokenRejectedEvenOnPublicRoute(t *testing.T) {
	handler := newTestAuthenticator().Middleware(echoPrincipal())

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	rec, body := doRequest(t, handler, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if body["message"] != "Invalid or expired token" {
		t.Errorf("message = %v", body["message"])
	}
}

func TestValidTokenBuildsPrincipal(t *testing.T) {
	handler := newTestAuthenticator().Middleware(echoPrincipal())
	signed := mintFor(t, types.User{ID: "u-1", Email: "u@example.com", Role: types.RoleUser, UserType: types.UserTypeStudent})

	req := httptest.NewRequest(http.MethodGet, "/v1/students/applications", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec, body := doRequest(t, handler, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["userId"] != "u-1" {
		t.Errorf("userId = %v, want u-1", body["userId"])
	}
	if body["role"] != "USER" {
		t.Errorf("role = %v, want USER", body["role"])
	}
}

func TestAdminRouteRequiresAdminRole(t *testing.T) {
	handler := newTestAuthenticator().Middleware(echoPrincipal())

	user := mintFor(t, types.User{ID: "u-1", Email: "u@example.com", Role: types.RoleUser, UserType: types.UserTypeStudent})
	req := httptest.NewRequest(http.MethodGet, "/v1/export/students.csv", nil)
	req.Header.Set("Authorization", "Bearer "+user)
	rec, _ := doRequest(t, handler, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("USER on admin route: status = %d, want 403", rec.Code)
	}

	admin := mintFor(t, types.User{ID: "a-1", Email: "a@example.com", Role: types.RoleAdmin, UserType: types.UserTypeAdmin})
	req = httptest.NewRequest(http.MethodGet, "/v1/export/students.csv", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	rec, _ = doRequest(t, handler, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("ADMIN on admin route: status = %d, want 200", rec.Code)
	}
}

// A client-supplied identity header must never survive past the gateway.
func TestSpoofedIdentityHeadersStripped(t *testing.T) {
	handler := newTestAuthenticator().Middleware(echoPrincipal())
	signed := mintFor(t, types.User{ID: "u-1", Email: "u@example.com", Role: types.RoleUser, UserType: types.UserTypeStudent})

	req := httptest.NewRequest(http.MethodGet, "/v1/students/applications", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	req.Header.Set(principal.HeaderUserRole, "ADMIN")
	req.Header.Set(principal.HeaderUserID, "someone-else")
	rec, body := doRequest(t, handler, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["spoofedHeader"] != "" {
		t.Errorf("inbound %s header survived: %v", principal.HeaderUserRole, body["spoofedHeader"])
	}
	if body["role"] != "USER" {
		t.Errorf("role = %v, want USER (from validated claims)", body["role"])
	}

	// Spoofing alone never grants admin access.
	req = httptest.NewRequest(http.MethodGet, "/v1/export/students.csv", nil)
	req.Header.Set(principal.HeaderUserRole, "ADMIN")
	req.Header.Set(principal.HeaderUserID, "someone")
	rec, _ = doRequest(t, handler, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("spoofed anonymous on admin route: status = %d, want 401", rec.Code)
	}
}

func TestOptionsPassesWithoutAuth(t *testing.T) {
	handler := newTestAuthenticator().Middleware(echoPrincipal())

	req := httptest.NewRequest(http.MethodOptions, "/v1/export/students.csv", nil)
	rec, _ := doRequest(t, handler, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("OPTIONS status = %d, want 200", rec.Code)
	}
}
