// Package gateway implements the edge server that authenticates requests,
// enforces the route policy table and forwards traffic to backend services
// with identity headers derived from validated tokens.
package gateway

import (
	"strings"

	"github.com/corefellowship/backend/types"
)

// Requirement is the access level a policy rule demands.
type Requirement int

const (
	// PermitAll allows the request through without a principal.
	PermitAll Requirement = iota
	// RequireAuthenticated demands any validated principal.
	RequireAuthenticated
	// RequireRole demands a validated principal holding a specific role.
	RequireRole
)

// Rule binds a path pattern to an access requirement. Patterns use
// ant-style globs: `*` matches a single path segment, `**` matches any
// number of segments including none.
type Rule struct {
	Pattern     string
	Requirement Requirement
	Role        types.Role
}

// Policy is an ordered rule table. Resolution walks the table top to
// bottom and the first matching rule wins, so specific patterns must
// appear before broader ones.
type Policy struct {
	rules []Rule
}

// NewPolicy builds a policy from an ordered rule list, appending a
// terminal catch-all so every path resolves to a rule.
func NewPolicy(rules ...Rule) *Policy {
	p := &Policy{rules: make([]Rule, 0, len(rules)+1)}
	p.rules = append(p.rules, rules...)
	p.rules = append(p.rules, Rule{Pattern: "/**", Requirement: RequireAuthenticated})
	return p
}

// DefaultPolicy is the production rule table for the platform edge.
func DefaultPolicy() *Policy {
	return NewPolicy(
		Rule{Pattern: "/v1/auth/**", Requirement: PermitAll},
		Rule{Pattern: "/v1/identity/health", Requirement: PermitAll},
		Rule{Pattern: "/health", Requirement: PermitAll},
		Rule{Pattern: "/v1/export/**", Requirement: RequireRole, Role: types.RoleAdmin},
		Rule{Pattern: "/v1/students/applications/*/status", Requirement: RequireRole, Role: types.RoleAdmin},
		Rule{Pattern: "/v1/startups/*/status", Requirement: RequireRole, Role: types.RoleAdmin},
	)
}

// Resolve returns the first rule matching path. The terminal catch-all
// guarantees a match for any input.
func (p *Policy) Resolve(path string) Rule {
	for _, r := range p.rules {
		if matchPattern(r.Pattern, path) {
			return r
		}
	}
	// Unreachable: NewPolicy always appends /**.
	return Rule{Pattern: "/**", Requirement: RequireAuthenticated}
}

// matchPattern reports whether an ant-style glob matches a request path.
// Matching is segment-wise: `*` matches exactly one segment, `**` matches
// zero or more trailing or infix segments.
func matchPattern(pattern, path string) bool {
	return matchSegments(splitPath(pattern), splitPath(path))
}

func splitPath(s string) []string {
	s = strings.Trim(s, "/")
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

func matchSegments(pattern, path []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}
	if pattern[0] == "**" {
		// ** absorbs zero or more segments.
		for i := 0; i <= len(path); i++ {
			if matchSegments(pattern[1:], path[i:]) {
				return true
			}
		}
		return false
	}
	if len(path) == 0 {
		return false
	}
	if pattern[0] != "*" && pattern[0] != path[0] {
		return false
	}
	return matchSegments(pattern[1:], path[1:])
}
