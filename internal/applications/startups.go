package applications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/corefellowship/backend/internal/logging"
	"github.com/corefellowship/backend/internal/principal"
	"github.com/corefellowship/backend/internal/services"
	"github.com/corefellowship/backend/internal/store"
	"github.com/corefellowship/backend/internal/web"
	"github.com/corefellowship/backend/types"
)

// StartupHandler serves the startup intake and review routes.
type StartupHandler struct {
	startups *services.StartupService
	log      logging.Logger
}

func NewStartupHandler(startups *services.StartupService, log logging.Logger) *StartupHandler {
	return &StartupHandler{startups: startups, log: log}
}

// StartupRouter registers the startup routes.
func (h *StartupHandler) StartupRouter(r chi.Router) {
	r.With(requireAuthenticated).Post("/intake", h.Create)
	r.With(requireAuthenticated).Get("/", h.List)
	r.With(requireAuthenticated).Get("/{id}", h.Get)
	r.With(requireAdmin).Patch("/{id}/status", h.UpdateStatus)
	r.With(requireAdmin).Delete("/{id}", h.Delete)
}

// Create submits a startup intake form. One submission per user.
func (h *StartupHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := principal.FromContext(r.Context())

	var startup types.Startup
	if err := json.NewDecoder(r.Body).Decode(&startup); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	startup.UserID = p.UserID
	if strings.TrimSpace(startup.ContactEmail) == "" {
		startup.ContactEmail = p.Email
	}
	if strings.TrimSpace(startup.CompanyName) == "" || strings.TrimSpace(startup.Description) == "" {
		web.Error(w, http.StatusBadRequest, "companyName and description are required")
		return
	}

	created, err := h.startups.Create(r.Context(), startup)
	if err != nil {
		if errors.Is(err, services.ErrAlreadySubmitted) {
			web.Error(w, http.StatusConflict, "Intake form already submitted")
			return
		}
		h.log.Error(r.Context(), "startup create failed", "userId", p.UserID, "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Failed to create intake form")
		return
	}

	h.log.Info(r.Context(), "startup intake submitted", "startupId", created.ID, "userId", p.UserID)
	web.JSON(w, http.StatusCreated, created)
}

// List returns all startups for admins (with optional term/status filters)
// and only the caller's own for everyone else.
func (h *StartupHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := principal.FromContext(r.Context())

	filter := store.ApplicationFilter{
		Term:   r.URL.Query().Get("term"),
		Status: r.URL.Query().Get("status"),
	}
	if !p.IsAdmin() {
		filter.UserID = p.UserID
	}

	startups, err := h.startups.List(r.Context(), filter)
	if err != nil {
		h.log.Error(r.Context(), "startup list failed", "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Failed to list startups")
		return
	}
	if startups == nil {
		startups = []types.Startup{}
	}
	web.JSON(w, http.StatusOK, startups)
}

// Get returns one startup record. Owners and admins only.
func (h *StartupHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := principal.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	startup, err := h.startups.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "Startup not found")
			return
		}
		h.log.Error(r.Context(), "startup load failed", "startupId", id, "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Failed to load startup")
		return
	}
	if startup.UserID != p.UserID && !p.IsAdmin() {
		web.Error(w, http.StatusForbidden, "Insufficient permissions")
		return
	}
	web.JSON(w, http.StatusOK, startup)
}

type startupStatusRequest struct {
	Status      string `json:"status"`
	Term        string `json:"term"`
	ReviewNotes string `json:"reviewNotes"`
}

// UpdateStatus is the admin review mutation. An empty term leaves the stored
// term untouched.
func (h *StartupHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := principal.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req startupStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validStatus(req.Status) {
		web.Error(w, http.StatusBadRequest, "status must be submitted, under_review, accepted or rejected")
		return
	}

	updated, err := h.startups.UpdateStatus(r.Context(), id, req.Status, req.Term, p.UserID, req.ReviewNotes)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "Startup not found")
			return
		}
		h.log.Error(r.Context(), "startup status update failed", "startupId", id, "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Failed to update status")
		return
	}

	h.log.Info(r.Context(), "startup reviewed", "startupId", id, "status", req.Status, "reviewedBy", p.UserID)
	web.JSON(w, http.StatusOK, updated)
}

// Delete removes a startup record. Admin only (routing enforces it).
func (h *StartupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.startups.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "Startup not found")
			return
		}
		h.log.Error(r.Context(), "startup delete failed", "startupId", id, "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Failed to delete startup")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
