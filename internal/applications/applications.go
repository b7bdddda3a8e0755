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

// ApplicationHandler serves the student-application intake and review routes.
type ApplicationHandler struct {
	apps       *services.ApplicationService
	interviews *services.InterviewService
	resumes    *ResumeHandler
	log        logging.Logger
}

func NewApplicationHandler(apps *services.ApplicationService, interviews *services.InterviewService, resumes *ResumeHandler, log logging.Logger) *ApplicationHandler {
	return &ApplicationHandler{apps: apps, interviews: interviews, resumes: resumes, log: log}
}

// ApplicationRouter registers the student-application routes.
func (h *ApplicationHandler) ApplicationRouter(r chi.Router) {
	r.With(requireAuthenticated).Post("/", h.Create)
	r.With(requireAuthenticated).Get("/", h.List)
	r.With(requireAuthenticated).Get("/{id}", h.Get)
	r.With(requireAuthenticated).Patch("/{id}", h.Update)
	r.With(requireAdmin).Delete("/{id}", h.Delete)
	r.With(requireAdmin).Patch("/{id}/status", h.UpdateStatus)

	if h.resumes != nil {
		r.With(requireAuthenticated).Post("/{id}/resume", h.resumes.Upload)
		r.With(requireAuthenticated).Get("/{id}/resume", h.resumes.Download)
	}

	r.With(requireAdmin).Post("/{id}/interview", h.CreateInterview)
	r.With(requireAdmin).Get("/{id}/interview", h.GetInterview)
	r.With(requireAdmin).Put("/{id}/interview", h.UpdateInterview)
}

// Create submits an intake form for the calling user. One submission per
// user; the user id and email come from the trusted identity, never from
// the body.
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := principal.FromContext(r.Context())

	var app types.StudentApplication
	if err := json.NewDecoder(r.Body).Decode(&app); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	app.UserID = p.UserID
	if strings.TrimSpace(app.Email) == "" {
		app.Email = p.Email
	}
	if strings.TrimSpace(app.FullName) == "" || strings.TrimSpace(app.School) == "" {
		web.Error(w, http.StatusBadRequest, "fullName and school are required")
		return
	}

	created, err := h.apps.Create(r.Context(), app)
	if err != nil {
		if errors.Is(err, services.ErrAlreadySubmitted) {
			web.Error(w, http.StatusConflict, "Application already submitted")
			return
		}
		h.log.Error(r.Context(), "application create failed", "userId", p.UserID, "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Failed to create application")
		return
	}

	h.log.Info(r.Context(), "application submitted", "applicationId", created.ID, "userId", p.UserID)
	web.JSON(w, http.StatusCreated, created)
}

// List returns all applications for admins (with optional term/status
// filters) and only the caller's own for everyone else.
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := principal.FromContext(r.Context())

	filter := store.ApplicationFilter{
		Term:   r.URL.Query().Get("term"),
		Status: r.URL.Query().Get("status"),
	}
	if !p.IsAdmin() {
		filter.UserID = p.UserID
	}

	apps, err := h.apps.List(r.Context(), filter)
	if err != nil {
		h.log.Error(r.Context(), "application list failed", "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Failed to list applications")
		return
	}
	if apps == nil {
		apps = []types.StudentApplication{}
	}
	web.JSON(w, http.StatusOK, apps)
}

// Get returns one application. Owners and admins only.
func (h *ApplicationHandler) Get(w http.ResponseWriter, r *http.Request) {
	app, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	web.JSON(w, http.StatusOK, app)
}

// Update lets the owner (or an admin) amend the form fields. Administrative
// fields are preserved from the stored record.
func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	current, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var patch types.StudentApplication
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Identity and review fields are not caller-editable.
	patch.ID = current.ID
	patch.UserID = current.UserID
	patch.ResumeKey = current.ResumeKey
	patch.Term = current.Term
	patch.Status = current.Status
	patch.SubmittedAt = current.SubmittedAt
	patch.ReviewedBy = current.ReviewedBy
	patch.ReviewNotes = current.ReviewNotes
	patch.ReviewedAt = current.ReviewedAt

	updated, err := h.apps.Update(r.Context(), patch)
	if err != nil {
		h.log.Error(r.Context(), "application update failed", "applicationId", current.ID, "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Failed to update application")
		return
	}
	web.JSON(w, http.StatusOK, updated)
}

// Delete removes an application. Admin only (routing enforces it).
func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.apps.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "Application not found")
			return
		}
		h.log.Error(r.Context(), "application delete failed", "applicationId", id, "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Failed to delete application")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusUpdateRequest struct {
	Status      string `json:"status"`
	ReviewNotes string `json:"reviewNotes"`
}

// UpdateStatus is the admin review mutation.
func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := principal.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validStatus(req.Status) {
		web.Error(w, http.StatusBadRequest, "status must be submitted, under_review, accepted or rejected")
		return
	}

	updated, err := h.apps.UpdateStatus(r.Context(), id, req.Status, p.UserID, req.ReviewNotes)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "Application not found")
			return
		}
		h.log.Error(r.Context(), "status update failed", "applicationId", id, "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Failed to update status")
		return
	}

	h.log.Info(r.Context(), "application reviewed",
		"applicationId", id, "status", req.Status, "reviewedBy", p.UserID)
	web.JSON(w, http.StatusOK, updated)
}

// CreateInterview records an admin's evaluation of an application.
func (h *ApplicationHandler) CreateInterview(w http.ResponseWriter, r *http.Request) {
	p, _ := principal.FromContext(r.Context())
	applicationID := chi.URLParam(r, "id")

	if _, err := h.apps.Get(r.Context(), applicationID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "Application not found")
			return
		}
		web.Error(w, http.StatusInternalServerError, "Failed to load application")
		return
	}

	var iv types.Interview
	if err := json.NewDecoder(r.Body).Decode(&iv); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	iv.ApplicationID = applicationID
	iv.InterviewerID = p.UserID

	created, err := h.interviews.Create(r.Context(), iv)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidScore):
			web.Error(w, http.StatusBadRequest, "Scores must be between 1 and 10")
		case errors.Is(err, services.ErrInterviewExists):
			web.Error(w, http.StatusConflict, "Interview already recorded")
		default:
			h.log.Error(r.Context(), "interview create failed", "applicationId", applicationID, "error", err.Error())
			web.Error(w, http.StatusInternalServerError, "Failed to create interview")
		}
		return
	}
	web.JSON(w, http.StatusCreated, created)
}

// GetInterview returns the interview recorded for an application.
func (h *ApplicationHandler) GetInterview(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "id")
	iv, err := h.interviews.GetByApplicationID(r.Context(), applicationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "Interview not found")
			return
		}
		web.Error(w, http.StatusInternalServerError, "Failed to load interview")
		return
	}
	web.JSON(w, http.StatusOK, iv)
}

// UpdateInterview replaces the scores and notes of an existing interview.
func (h *ApplicationHandler) UpdateInterview(w http.ResponseWriter, r *http.Request) {
	applicationID := chi.URLParam(r, "id")

	current, err := h.interviews.GetByApplicationID(r.Context(), applicationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "Interview not found")
			return
		}
		web.Error(w, http.StatusInternalServerError, "Failed to load interview")
		return
	}

	var iv types.Interview
	if err := json.NewDecoder(r.Body).Decode(&iv); err != nil {
		web.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	iv.ID = current.ID
	iv.ApplicationID = current.ApplicationID
	iv.InterviewerID = current.InterviewerID

	updated, err := h.interviews.Update(r.Context(), iv)
	if err != nil {
		if errors.Is(err, services.ErrInvalidScore) {
			web.Error(w, http.StatusBadRequest, "Scores must be between 1 and 10")
			return
		}
		h.log.Error(r.Context(), "interview update failed", "applicationId", applicationID, "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Failed to update interview")
		return
	}
	web.JSON(w, http.StatusOK, updated)
}

// loadOwned fetches the application and enforces owner-or-admin access.
// It writes the error response itself when access is denied.
func (h *ApplicationHandler) loadOwned(w http.ResponseWriter, r *http.Request) (types.StudentApplication, bool) {
	p, _ := principal.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	app, err := h.apps.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "Application not found")
			return types.StudentApplication{}, false
		}
		h.log.Error(r.Context(), "application load failed", "applicationId", id, "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Failed to load application")
		return types.StudentApplication{}, false
	}
	if app.UserID != p.UserID && !p.IsAdmin() {
		web.Error(w, http.StatusForbidden, "Insufficient permissions")
		return types.StudentApplication{}, false
	}
	return app, true
}

func validStatus(s string) bool {
	switch s {
	case types.StatusSubmitted, types.StatusUnderReview, types.StatusAccepted, types.StatusRejected:
		return true
	}
	return false
}
