package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/corefellowship/backend/config"
	"github.com/corefellowship/backend/internal/logging"
	"github.com/corefellowship/backend/internal/token"
	"github.com/corefellowship/backend/internal/web"
)

const proxyTimeout = 30 * time.Second

// Server is the platform edge. It terminates CORS, authenticates bearer
// tokens, enforces the route policy and forwards traffic to the identity
// and applications services.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
}

// New constructs the gateway with its middleware chain and proxy routes.
func New(cfg config.Config, log logging.Logger) (*Server, error) {
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	validator := token.NewValidator(token.Config{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})
	auth := NewAuthenticator(validator, DefaultPolicy(), log)

	identity, err := NewForwarder(cfg.Services.IdentityBaseURL, rewriteIdentity, proxyTimeout, log)
	if err != nil {
		return nil, fmt.Errorf("identity forwarder: %w", err)
	}
	applications, err := NewForwarder(cfg.Services.ApplicationsBaseURL, nil, proxyTimeout, log)
	if err != nil {
		return nil, fmt.Errorf("applications forwarder: %w", err)
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           3600,
	}))
	router.Use(auth.Middleware)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		web.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Handle("/v1/auth/*", identity)
	router.Handle("/v1/identity/health", identity)
	router.Handle("/*", applications)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Gateway.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{httpServer: httpServer, router: router}, nil
}

// rewriteIdentity maps edge auth paths onto the identity service's routes.
func rewriteIdentity(path string) string {
	if strings.HasPrefix(path, "/v1/auth/") {
		return "/api/auth/" + strings.TrimPrefix(path, "/v1/auth/")
	}
	if path == "/v1/identity/health" {
		return "/health"
	}
	return path
}

// Router exposes the chi router for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown closes the HTTP server.
func (s *Server) Shutdown() error {
	return s.httpServer.Close()
}
