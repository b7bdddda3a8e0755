package applications

import (
	"net/http"

	"github.com/corefellowship/backend/internal/principal"
	"github.com/corefellowship/backend/internal/web"
)

// TrustHeaders reads the gateway-set identity headers and, when id and role
// are both present, places the resulting principal in the request context.
// It performs no verification: the gateway already validated the credential,
// and this service is reachable only through the gateway. The middleware
// never rejects; handlers decide whether an anonymous caller is acceptable.
func TrustHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get(principal.HeaderUserID)
		role := r.Header.Get(principal.HeaderUserRole)
		if userID != "" && role != "" {
			r = r.WithContext(principal.WithPrincipal(r.Context(), principal.Principal{
				UserID: userID,
				Role:   role,
				Email:  r.Header.Get(principal.HeaderUserEmail),
			}))
		}
		next.ServeHTTP(w, r)
	})
}

// requireAuthenticated rejects anonymous callers.
func requireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := principal.FromContext(r.Context()); !ok {
			web.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin rejects callers without the ADMIN role. The check is
// enforced here as well as in the gateway policy table.
func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principal.FromContext(r.Context())
		if !ok {
			web.Error(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !p.IsAdmin() {
			web.Error(w, http.StatusForbidden, "Insufficient permissions")
			return
		}
		next.ServeHTTP(w, r)
	})
}
