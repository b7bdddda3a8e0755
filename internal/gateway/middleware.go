package gateway

import (
	"net/http"
	"strings"

	"github.com/corefellowship/backend/internal/logging"
	"github.com/corefellowship/backend/internal/principal"
	"github.com/corefellowship/backend/internal/token"
	"github.com/corefellowship/backend/internal/web"
)

const bearerPrefix = "Bearer "

// Authenticator authenticates bearer tokens and enforces the route policy.
//
// Every inbound request first has its identity headers stripped so clients
// can never assert an identity themselves. A request carrying a well-formed
// bearer token is validated; an invalid or expired token is rejected with
// 401 regardless of the route's policy. A request without a usable token
// proceeds anonymously and the policy table decides whether that is enough.
type Authenticator struct {
	validator *token.Validator
	policy    *Policy
	log       logging.Logger
}

func NewAuthenticator(validator *token.Validator, policy *Policy, log logging.Logger) *Authenticator {
	return &Authenticator{validator: validator, policy: policy, log: log}
}

// Middleware wires the authenticator into a chi middleware chain.
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal.StripHeaders(r.Header)

		// CORS preflights carry no credentials and must reach the CORS
		// handler untouched.
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		p, authenticated, ok := a.authenticate(w, r)
		if !ok {
			return
		}

		rule := a.policy.Resolve(r.URL.Path)
		switch rule.Requirement {
		case PermitAll:
		case RequireAuthenticated:
			if !authenticated {
				web.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}
		case RequireRole:
			if !authenticated {
				web.Error(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if p.Role != string(rule.Role) {
				a.log.Warn(r.Context(), "access denied",
					"path", r.URL.Path, "userId", p.UserID, "role", p.Role, "required", rule.Role)
				web.Error(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
		}

		if authenticated {
			r = r.WithContext(principal.WithPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate extracts and validates the bearer token, if any. It returns
// ok=false when it has already written a response. An absent or malformed
// Authorization header yields an anonymous request, not an error; only a
// present-but-invalid token is rejected outright.
func (a *Authenticator) authenticate(w http.ResponseWriter, r *http.Request) (principal.Principal, bool, bool) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, bearerPrefix) {
		return principal.Principal{}, false, true
	}
	raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if raw == "" {
		return principal.Principal{}, false, true
	}

	claims, err := a.validator.Validate(raw)
	if err != nil {
		a.log.Warn(r.Context(), "token rejected", "path", r.URL.Path, "reason", err.Error())
		web.Error(w, http.StatusUnauthorized, "Invalid or expired token")
		return principal.Principal{}, false, false
	}

	return principal.Principal{
		UserID:   claims.Subject,
		Email:    claims.Email,
		Role:     claims.Role,
		UserType: claims.UserType,
	}, true, true
}
