// Package identity hosts the token-issuing service: account registration,
// credential verification and bearer-token minting.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/corefellowship/backend/config"
	"github.com/corefellowship/backend/internal/db"
	"github.com/corefellowship/backend/internal/logging"
	"github.com/corefellowship/backend/internal/services"
	"github.com/corefellowship/backend/internal/store"
	"github.com/corefellowship/backend/internal/token"
	"github.com/corefellowship/backend/internal/web"
)

// Server wraps the identity HTTP server and its database handle.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
}

// New constructs the identity server with its middleware and routes.
func New(ctx context.Context, cfg config.Config, log logging.Logger) (*Server, error) {
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	issuer := token.NewIssuer(token.Config{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
		TTL:      time.Duration(cfg.JWT.ExpirationHours) * time.Hour,
	})
	userRepo := store.NewUserRepository(dbConn)
	auth := services.NewAuthService(userRepo, issuer, cfg.AdminRegistrationToken)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(30*time.Second),
	)
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		web.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Route("/api/auth", func(r chi.Router) {
		AuthRouter(r, auth, log)
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Identity.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{httpServer: httpServer, router: router, db: dbConn}, nil
}

// Router exposes the chi router for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown closes the database and the HTTP server.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
