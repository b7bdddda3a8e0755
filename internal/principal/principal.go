// Package principal carries validated request identity between the gateway
// and the backend services.
//
// The gateway is the only component that verifies bearer credentials. It
// re-asserts the validated identity to backends via the X-User-* headers
// below, and backends trust those headers without further checks. That trust
// is safe only while backends are reachable exclusively from the gateway;
// the network boundary, not this package, enforces that deployment invariant.
package principal

import (
	"context"
	"net/http"

	"github.com/corefellowship/backend/types"
)

// Identity headers set by the gateway from validated claims. They are
// stripped from every inbound client request before authentication so a
// caller can never smuggle its own values past the gateway.
const (
	HeaderUserID    = "X-User-Id"
	HeaderUserRole  = "X-User-Role"
	HeaderUserEmail = "X-User-Email"
)

// Principal is the request-scoped identity derived from validated claims or
// trusted identity headers. It lives only for the duration of one request.
type Principal struct {
	UserID   string
	Email    string
	Role     string
	UserType string
}

// IsAdmin reports whether the principal carries the ADMIN role.
func (p Principal) IsAdmin() bool {
	return p.Role == string(types.RoleAdmin)
}

type contextKey struct{}

// WithPrincipal returns a context carrying the principal.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the request principal, if any.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// StripHeaders removes all identity headers from the request. The gateway
// calls this before authentication on every request.
func StripHeaders(h http.Header) {
	h.Del(HeaderUserID)
	h.Del(HeaderUserRole)
	h.Del(HeaderUserEmail)
}

// SetHeaders writes the principal's identity headers onto an outbound
// request.
func SetHeaders(h http.Header, p Principal) {
	h.Set(HeaderUserID, p.UserID)
	h.Set(HeaderUserRole, p.Role)
	h.Set(HeaderUserEmail, p.Email)
}
