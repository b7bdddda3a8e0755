package applications

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/corefellowship/backend/internal/logging"
	"github.com/corefellowship/backend/internal/principal"
	"github.com/corefellowship/backend/internal/services"
	"github.com/corefellowship/backend/internal/storage"
	"github.com/corefellowship/backend/internal/store"
	"github.com/corefellowship/backend/internal/web"
)

const (
	maxResumeSize  = 5 << 20 // 5 MiB
	resumeURLValid = 15 * time.Minute
	pdfContentType = "application/pdf"
)

// ResumeHandler stores applicant resumes in object storage and serves
// short-lived download links for reviewers.
type ResumeHandler struct {
	apps  *services.ApplicationService
	files storage.ObjectStorage
	log   logging.Logger
}

func NewResumeHandler(apps *services.ApplicationService, files storage.ObjectStorage, log logging.Logger) *ResumeHandler {
	return &ResumeHandler{apps: apps, files: files, log: log}
}

// Upload accepts a multipart PDF up to 5 MiB and records its storage key on
// the application. Owners only; admins review via the download link.
func (h *ResumeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	p, _ := principal.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	app, err := h.apps.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "Application not found")
			return
		}
		web.Error(w, http.StatusInternalServerError, "Failed to load application")
		return
	}
	if app.UserID != p.UserID {
		web.Error(w, http.StatusForbidden, "Insufficient permissions")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxResumeSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			web.Error(w, http.StatusRequestEntityTooLarge, "Resume must be 5 MB or smaller")
			return
		}
		web.Error(w, http.StatusBadRequest, "Multipart field \"file\" is required")
		return
	}
	defer file.Close()

	if header.Header.Get("Content-Type") != pdfContentType {
		web.Error(w, http.StatusUnsupportedMediaType, "Resume must be a PDF")
		return
	}
	if header.Size > maxResumeSize {
		web.Error(w, http.StatusRequestEntityTooLarge, "Resume must be 5 MB or smaller")
		return
	}

	key := fmt.Sprintf("resumes/%s/%s.pdf", app.UserID, uuid.NewString())
	if err := h.files.Put(r.Context(), key, file, header.Size, pdfContentType); err != nil {
		h.log.Error(r.Context(), "resume upload failed", "applicationId", id, "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Failed to store resume")
		return
	}

	// Replace is best effort on the storage side; the record always points
	// at the latest upload.
	old := app.ResumeKey
	updated, err := h.apps.SetResumeKey(r.Context(), id, key)
	if err != nil {
		h.log.Error(r.Context(), "resume key update failed", "applicationId", id, "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Failed to store resume")
		return
	}
	if old != "" && old != key {
		if err := h.files.Delete(r.Context(), old); err != nil {
			h.log.Warn(r.Context(), "stale resume not deleted", "key", old, "error", err.Error())
		}
	}

	h.log.Info(r.Context(), "resume uploaded", "applicationId", id, "bytes", header.Size)
	web.JSON(w, http.StatusOK, updated)
}

// Download returns a short-lived signed URL for the stored resume. Owner or
// admin.
func (h *ResumeHandler) Download(w http.ResponseWriter, r *http.Request) {
	p, _ := principal.FromContext(r.Context())
	id := chi.URLParam(r, "id")

	app, err := h.apps.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			web.Error(w, http.StatusNotFound, "Application not found")
			return
		}
		web.Error(w, http.StatusInternalServerError, "Failed to load application")
		return
	}
	if app.UserID != p.UserID && !p.IsAdmin() {
		web.Error(w, http.StatusForbidden, "Insufficient permissions")
		return
	}
	if app.ResumeKey == "" {
		web.Error(w, http.StatusNotFound, "No resume uploaded")
		return
	}

	url, err := h.files.Presign(r.Context(), app.ResumeKey, resumeURLValid)
	if err != nil {
		h.log.Error(r.Context(), "resume presign failed", "applicationId", id, "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Failed to generate download link")
		return
	}

	web.JSON(w, http.StatusOK, resumeLinkResponse{
		URL:       url,
		ExpiresIn: int(resumeURLValid.Seconds()),
	})
}

type resumeLinkResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
}
