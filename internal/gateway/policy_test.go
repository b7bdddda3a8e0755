package gateway

import (
	"testing"

	"github.com/corefellowship/backend/types"
)

func TestDefaultPolicyRules(t *testing.T) {
	policy := DefaultPolicy()

	tests := []struct {
		path        string
		requirement Requirement
		role        types.Role
	}{
		{"/v1/auth/login", PermitAll, ""},
		{"/v1/auth/register", PermitAll, ""},
		{"/v1/auth/deeply/nested/path", PermitAll, ""},
		{"/v1/identity/health", PermitAll, ""},
		{"/health", PermitAll, ""},
		{"/v1/export/students.csv", RequireRole, types.RoleAdmin},
		{"/v1/export/startups.json", RequireRole, types.RoleAdmin},
		{"/v1/students/applications/abc-123/status", RequireRole, types.RoleAdmin},
		{"/v1/startups/abc-123/status", RequireRole, types.RoleAdmin},
		{"/v1/students/applications", RequireAuthenticated, ""},
		{"/v1/students/applications/abc-123", RequireAuthenticated, ""},
		{"/v1/startups/intake", RequireAuthenticated, ""},
		{"/v1/startups/abc-123", RequireAuthenticated, ""},
		{"/", RequireAuthenticated, ""},
		{"/anything/else/at/all", RequireAuthenticated, ""},
	}

	for _, tt := range tests {
		rule := policy.Resolve(tt.path)
		if rule.Requirement != tt.requirement {
			t.Errorf("Resolve(%q).Requirement = %v, want %v", tt.path, rule.Requirement, tt.requirement)
		}
		if rule.Role != tt.role {
			t.Errorf("Resolve(%q).Role = %q, want %q", tt.path, rule.Role, tt.role)
		}
	}
}

// Every path must resolve to some rule; the catch-all guarantees it.
func TestPolicyTotality(t *testing.T) {
	policy := NewPolicy()
	for _, path := range []string{"", "/", "/x", "/a/b/c/d/e", "/health"} {
		rule := policy.Resolve(path)
		if rule.Pattern != "/**" {
			t.Errorf("Resolve(%q) = %q, want catch-all", path, rule.Pattern)
		}
		if rule.Requirement != RequireAuthenticated {
			t.Errorf("Resolve(%q).Requirement = %v, want RequireAuthenticated", path, rule.Requirement)
		}
	}
}

func TestFirstMatchWins(t *testing.T) {
	policy := NewPolicy(
		Rule{Pattern: "/a/**", Requirement: PermitAll},
		Rule{Pattern: "/a/secret", Requirement: RequireRole, Role: types.RoleAdmin},
	)
	// The broader rule is listed first, so it shadows the specific one.
	if rule := policy.Resolve("/a/secret"); rule.Requirement != PermitAll {
		t.Errorf("Resolve(/a/secret).Requirement = %v, want PermitAll", rule.Requirement)
	}
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		pattern, path string
		want          bool
	}{
		{"/health", "/health", true},
		{"/health", "/health/sub", false},
		{"/v1/auth/**", "/v1/auth", true},
		{"/v1/auth/**", "/v1/auth/login", true},
		{"/v1/auth/**", "/v1/auth/a/b/c", true},
		{"/v1/auth/**", "/v1/other", false},
		{"/v1/startups/*/status", "/v1/startups/id-1/status", true},
		{"/v1/startups/*/status", "/v1/startups/status", false},
		{"/v1/startups/*/status", "/v1/startups/a/b/status", false},
		{"/**", "/", true},
		{"/**", "/anything", true},
		{"/**", "/a/b/c", true},
	}
	for _, tt := range tests {
		if got := matchPattern(tt.pattern, tt.path); got != tt.want {
			t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.path, got, tt.want)
		}
	}
}
