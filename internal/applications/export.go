package applications

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/corefellowship/backend/internal/logging"
	"github.com/corefellowship/backend/internal/services"
	"github.com/corefellowship/backend/internal/store"
	"github.com/corefellowship/backend/internal/web"
	"github.com/corefellowship/backend/types"
)

// ExportHandler produces admin downloads of the review data. The gateway
// policy already restricts /v1/export/** to admins; the routes repeat the
// check via requireAdmin.
type ExportHandler struct {
	apps     *services.ApplicationService
	startups *services.StartupService
	log      logging.Logger
}

func NewExportHandler(apps *services.ApplicationService, startups *services.StartupService, log logging.Logger) *ExportHandler {
	return &ExportHandler{apps: apps, startups: startups, log: log}
}

// ExportRouter registers the export routes.
func (h *ExportHandler) ExportRouter(r chi.Router) {
	r.Use(requireAdmin)
	r.Get("/students.json", h.StudentsJSON)
	r.Get("/students.csv", h.StudentsCSV)
	r.Get("/startups.json", h.StartupsJSON)
	r.Get("/startups.csv", h.StartupsCSV)
}

func exportFilter(r *http.Request) store.ApplicationFilter {
	return store.ApplicationFilter{
		Term:   r.URL.Query().Get("term"),
		Status: r.URL.Query().Get("status"),
	}
}

func attachment(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
}

func exportName(prefix, ext string) string {
	return fmt.Sprintf("%s-%s.%s", prefix, time.Now().Format("2006-01-02"), ext)
}

// StudentsJSON streams all matching student applications as a JSON document.
func (h *ExportHandler) StudentsJSON(w http.ResponseWriter, r *http.Request) {
	apps, err := h.apps.List(r.Context(), exportFilter(r))
	if err != nil {
		h.log.Error(r.Context(), "student export failed", "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Export failed")
		return
	}
	if apps == nil {
		apps = []types.StudentApplication{}
	}
	attachment(w, exportName("student-applications", "json"))
	web.JSON(w, http.StatusOK, apps)
}

var studentCSVHeader = []string{
	"id", "user_id", "full_name", "email", "school", "major", "grad_year",
	"role_preferences", "work_mode", "time_commitment", "term", "status",
	"submitted_at", "reviewed_by", "review_notes",
}

// StudentsCSV streams all matching student applications as CSV.
func (h *ExportHandler) StudentsCSV(w http.ResponseWriter, r *http.Request) {
	apps, err := h.apps.List(r.Context(), exportFilter(r))
	if err != nil {
		h.log.Error(r.Context(), "student export failed", "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Export failed")
		return
	}

	attachment(w, exportName("student-applications", "csv"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")

	cw := csv.NewWriter(w)
	_ = cw.Write(studentCSVHeader)
	for _, a := range apps {
		_ = cw.Write([]string{
			a.ID, a.UserID, a.FullName, a.Email, a.School, a.Major, a.GradYear,
			strings.Join(a.RolePreferences, ";"), a.WorkMode, a.TimeCommitment,
			a.Term, a.Status, a.SubmittedAt.Format(time.RFC3339),
			a.ReviewedBy, a.ReviewNotes,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.log.Warn(r.Context(), "csv stream interrupted", "error", err.Error())
	}
}

// StartupsJSON streams all matching startup records as a JSON document.
func (h *ExportHandler) StartupsJSON(w http.ResponseWriter, r *http.Request) {
	startups, err := h.startups.List(r.Context(), exportFilter(r))
	if err != nil {
		h.log.Error(r.Context(), "startup export failed", "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Export failed")
		return
	}
	if startups == nil {
		startups = []types.Startup{}
	}
	attachment(w, exportName("startups", "json"))
	web.JSON(w, http.StatusOK, startups)
}

var startupCSVHeader = []string{
	"id", "user_id", "company_name", "website", "industry", "stage",
	"contact_name", "contact_email", "interns_needed", "will_pay_interns",
	"term", "status", "submitted_at", "reviewed_by", "review_notes",
}

// StartupsCSV streams all matching startup records as CSV.
func (h *ExportHandler) StartupsCSV(w http.ResponseWriter, r *http.Request) {
	startups, err := h.startups.List(r.Context(), exportFilter(r))
	if err != nil {
		h.log.Error(r.Context(), "startup export failed", "error", err.Error())
		web.Error(w, http.StatusInternalServerError, "Export failed")
		return
	}

	attachment(w, exportName("startups", "csv"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")

	cw := csv.NewWriter(w)
	_ = cw.Write(startupCSVHeader)
	for _, s := range startups {
		_ = cw.Write([]string{
			s.ID, s.UserID, s.CompanyName, s.Website, s.Industry, s.Stage,
			s.ContactName, s.ContactEmail, strconv.Itoa(s.NumberOfInternsNeeded),
			s.WillPayInterns, s.Term, s.Status,
			s.SubmittedAt.Format(time.RFC3339), s.ReviewedBy, s.ReviewNotes,
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.log.Warn(r.Context(), "csv stream interrupted", "error", err.Error())
	}
}
