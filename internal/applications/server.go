// Package applications hosts the backend service for intake forms, admin
// review, interviews, file storage and data exports. It sits behind the
// gateway and trusts the identity headers the gateway sets.
package applications

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/corefellowship/backend/config"
	"github.com/corefellowship/backend/internal/db"
	"github.com/corefellowship/backend/internal/logging"
	"github.com/corefellowship/backend/internal/mq"
	"github.com/corefellowship/backend/internal/services"
	"github.com/corefellowship/backend/internal/storage"
	"github.com/corefellowship/backend/internal/store"
	"github.com/corefellowship/backend/internal/web"
)

// Server wraps the applications HTTP server and its external connections.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
}

// New constructs the applications server with its middleware and routes.
func New(ctx context.Context, cfg config.Config, log logging.Logger) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	files, err := storage.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("object storage: %w", err)
	}
	if files != nil {
		if err := files.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, fmt.Errorf("object storage: %w", err)
		}
	}

	broker, err := mq.NewFromConfig(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("message queue: %w", err)
	}
	publisher := mq.NewPublisher(broker, log)

	appRepo := store.NewStudentApplicationRepository(dbConn)
	startupRepo := store.NewStartupRepository(dbConn)
	interviewRepo := store.NewInterviewRepository(dbConn)

	appService := services.NewApplicationService(appRepo, publisher, log)
	startupService := services.NewStartupService(startupRepo, publisher, log)
	interviewService := services.NewInterviewService(interviewRepo)

	var resumes *ResumeHandler
	if files != nil {
		resumes = NewResumeHandler(appService, files, log)
	}
	appHandler := NewApplicationHandler(appService, interviewService, resumes, log)
	startupHandler := NewStartupHandler(startupService, log)
	exportHandler := NewExportHandler(appService, startupService, log)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Use(TrustHeaders)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		web.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Route("/v1/students/applications", appHandler.ApplicationRouter)
	router.Route("/v1/startups", startupHandler.StartupRouter)
	router.Route("/v1/export", exportHandler.ExportRouter)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Applications.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{httpServer: httpServer, router: router, db: dbConn, broker: broker}, nil
}

// Router exposes the chi router for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown closes the broker, the database and the HTTP server.
func (s *Server) Shutdown() error {
	if s.broker != nil {
		_ = s.broker.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
