package applications

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/corefellowship/backend/internal/logging"
	"github.com/corefellowship/backend/internal/principal"
	"github.com/corefellowship/backend/internal/services"
	"github.com/corefellowship/backend/internal/store"
	"github.com/corefellowship/backend/types"
)

// memoryAppRepo is an in-memory services.StudentApplicationRepository.
type memoryAppRepo struct {
	apps map[string]types.StudentApplication
}

func newMemoryAppRepo() *memoryAppRepo {
	return &memoryAppRepo{apps: map[string]types.StudentApplication{}}
}

func (m *memoryAppRepo) Get(_ context.Context, id string) (types.StudentApplication, error) {
	app, ok := m.apps[id]
	if !ok {
		return types.StudentApplication{}, store.ErrNotFound
	}
	return app, nil
}

func (m *memoryAppRepo) ExistsByUserID(_ context.Context, userID string) (bool, error) {
	for _, app := range m.apps {
		if app.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryAppRepo) List(_ context.Context, filter store.ApplicationFilter) ([]types.StudentApplication, error) {
	var out []types.StudentApplication
	for _, app := range m.apps {
		if filter.UserID != "" && app.UserID != filter.UserID {
			continue
		}
		if filter.Term != "" && app.Term != filter.Term {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		out = append(out, app)
	}
	return out, nil
}

func (m *memoryAppRepo) Create(_ context.Context, app types.StudentApplication) (types.StudentApplication, error) {
	now := time.Now()
	app.SubmittedAt = now
	app.UpdatedAt = now
	m.apps[app.ID] = app
	return app, nil
}

func (m *memoryAppRepo) Update(_ context.Context, app types.StudentApplication) (types.StudentApplication, error) {
	if _, ok := m.apps[app.ID]; !ok {
		return types.StudentApplication{}, store.ErrNotFound
	}
	app.UpdatedAt = time.Now()
	m.apps[app.ID] = app
	return app, nil
}

func (m *memoryAppRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.apps[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.apps, id)
	return nil
}

// memoryStartupRepo is an in-memory services.StartupRepository.
type memoryStartupRepo struct {
	startups map[string]types.Startup
}

func newMemoryStartupRepo() *memoryStartupRepo {
	return &memoryStartupRepo{startups: map[string]types.Startup{}}
}

func (m *memoryStartupRepo) Get(_ context.Context, id string) (types.Startup, error) {
	s, ok := m.startups[id]
	if !ok {
		return types.Startup{}, store.ErrNotFound
	}
	return s, nil
}

func (m *memoryStartupRepo) ExistsByUserID(_ context.Context, userID string) (bool, error) {
	for _, s := range m.startups {
		if s.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStartupRepo) List(_ context.Context, filter store.ApplicationFilter) ([]types.Startup, error) {
	var out []types.Startup
	for _, s := range m.startups {
		if filter.UserID != "" && s.UserID != filter.UserID {
			continue
		}
		if filter.Term != "" && s.Term != filter.Term {
			continue
		}
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *memoryStartupRepo) Create(_ context.Context, s types.Startup) (types.Startup, error) {
	now := time.Now()
	s.SubmittedAt = now
	s.UpdatedAt = now
	m.startups[s.ID] = s
	return s, nil
}

func (m *memoryStartupRepo) UpdateStatus(_ context.Context, id, status, term, reviewedBy, reviewNotes string) (types.Startup, error) {
	s, ok := m.startups[id]
	if !ok {
		return types.Startup{}, store.ErrNotFound
	}
	s.Status = status
	if term != "" {
		s.Term = term
	}
	s.ReviewedBy = reviewedBy
	s.ReviewNotes = reviewNotes
	s.UpdatedAt = time.Now()
	m.startups[id] = s
	return s, nil
}

func (m *memoryStartupRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.startups[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.startups, id)
	return nil
}

// memoryInterviewRepo is an in-memory services.InterviewRepository.
type memoryInterviewRepo struct {
	interviews map[string]types.Interview // keyed by application id
}

func newMemoryInterviewRepo() *memoryInterviewRepo {
	return &memoryInterviewRepo{interviews: map[string]types.Interview{}}
}

func (m *memoryInterviewRepo) GetByApplicationID(_ context.Context, applicationID string) (types.Interview, error) {
	iv, ok := m.interviews[applicationID]
	if !ok {
		return types.Interview{}, store.ErrNotFound
	}
	return iv, nil
}

func (m *memoryInterviewRepo) Create(_ context.Context, iv types.Interview) (types.Interview, error) {
	if _, ok := m.interviews[iv.ApplicationID]; ok {
		return types.Interview{}, store.ErrDuplicate
	}
	now := time.Now()
	iv.CreatedAt = now
	iv.UpdatedAt = now
	m.interviews[iv.ApplicationID] = iv
	return iv, nil
}

func (m *memoryInterviewRepo) Update(_ context.Context, iv types.Interview) (types.Interview, error) {
	if _, ok := m.interviews[iv.ApplicationID]; !ok {
		return types.Interview{}, store.ErrNotFound
	}
	iv.UpdatedAt = time.Now()
	m.interviews[iv.ApplicationID] = iv
	return iv, nil
}

type testBackend struct {
	router   chi.Router
	appRepo  *memoryAppRepo
	startups *memoryStartupRepo
}

func newTestBackend() *testBackend {
	appRepo := newMemoryAppRepo()
	startupRepo := newMemoryStartupRepo()
	interviewRepo := newMemoryInterviewRepo()

	appService := services.NewApplicationService(appRepo, nil, logging.Nop{})
	startupService := services.NewStartupService(startupRepo, nil, logging.Nop{})
	interviewService := services.NewInterviewService(interviewRepo)

	appHandler := NewApplicationHandler(appService, interviewService, nil, logging.Nop{})
	startupHandler := NewStartupHandler(startupService, logging.Nop{})
	exportHandler := NewExportHandler(appService, startupService, logging.Nop{})

	router := chi.NewRouter()
	router.Use(TrustHeaders)
	router.Route("/v1/students/applications", appHandler.ApplicationRouter)
	router.Route("/v1/startups", startupHandler.StartupRouter)
	router.Route("/v1/export", exportHandler.ExportRouter)

	return &testBackend{router: router, appRepo: appRepo, startups: startupRepo}
}

func (b *testBackend) do(t *testing.T, method, path string, payload any, p *principal.Principal) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		principal.SetHeaders(req.Header, *p)
	}
	rec := httptest.NewRecorder()
	b.router.ServeHTTP(rec, req)
	return rec
}

var (
	studentPrincipal = principal.Principal{UserID: "stud-1", Role: "USER", Email: "stud@example.com"}
	otherPrincipal   = principal.Principal{UserID: "stud-2", Role: "USER", Email: "other@example.com"}
	adminPrincipal   = principal.Principal{UserID: "admin-1", Role: "ADMIN", Email: "admin@example.com"}
)

func intakeForm() map[string]any {
	return map[string]any{
		"fullName": "Ada Lovelace",
		"school":   "Analytical U",
		"major":    "Mathematics",
		"gradYear": "2027",
	}
}

func (b *testBackend) submit(t *testing.T, p principal.Principal) string {
	t.Helper()
	rec := b.do(t, http.MethodPost, "/v1/students/applications", intakeForm(), &p)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d: %s", rec.Code, rec.Body.String())
	}
	var app types.StudentApplication
	if err := json.Unmarshal(rec.Body.Bytes(), &app); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return app.ID
}

func TestAnonymousRejected(t *testing.T) {
	b := newTestBackend()
	rec := b.do(t, http.MethodGet, "/v1/students/applications", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestTrustHeadersBuildPrincipal(t *testing.T) {
	b := newTestBackend()
	id := b.submit(t, studentPrincipal)

	rec := b.do(t, http.MethodGet, "/v1/students/applications/"+id, nil, &studentPrincipal)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var app types.StudentApplication
	_ = json.Unmarshal(rec.Body.Bytes(), &app)
	if app.UserID != "stud-1" {
		t.Errorf("userId = %q, want stud-1 (from identity header)", app.UserID)
	}
	if app.Email != "stud@example.com" {
		t.Errorf("email = %q, want the trusted header email", app.Email)
	}
}

func TestOnePerUser(t *testing.T) {
	b := newTestBackend()
	b.submit(t, studentPrincipal)

	rec := b.do(t, http.MethodPost, "/v1/students/applications", intakeForm(), &studentPrincipal)
	if rec.Code != http.StatusConflict {
		t.Errorf("second submit status = %d, want 409", rec.Code)
	}
}

func TestOwnershipChecks(t *testing.T) {
	b := newTestBackend()
	id := b.submit(t, studentPrincipal)

	if rec := b.do(t, http.MethodGet, "/v1/students/applications/"+id, nil, &otherPrincipal); rec.Code != http.StatusForbidden {
		t.Errorf("other user get status = %d, want 403", rec.Code)
	}
	if rec := b.do(t, http.MethodGet, "/v1/students/applications/"+id, nil, &adminPrincipal); rec.Code != http.StatusOK {
		t.Errorf("admin get status = %d, want 200", rec.Code)
	}
}

func TestListScopedToOwnerForNonAdmins(t *testing.T) {
	b := newTestBackend()
	b.submit(t, studentPrincipal)
	b.submit(t, otherPrincipal)

	rec := b.do(t, http.MethodGet, "/v1/students/applications", nil, &studentPrincipal)
	var mine []types.StudentApplication
	_ = json.Unmarshal(rec.Body.Bytes(), &mine)
	if len(mine) != 1 || mine[0].UserID != "stud-1" {
		t.Errorf("user list = %d records, want only own", len(mine))
	}

	rec = b.do(t, http.MethodGet, "/v1/students/applications", nil, &adminPrincipal)
	var all []types.StudentApplication
	_ = json.Unmarshal(rec.Body.Bytes(), &all)
	if len(all) != 2 {
		t.Errorf("admin list = %d records, want 2", len(all))
	}
}

func TestStatusUpdateRequiresAdmin(t *testing.T) {
	b := newTestBackend()
	id := b.submit(t, studentPrincipal)
	payload := map[string]any{"status": "accepted", "reviewNotes": "strong"}

	if rec := b.do(t, http.MethodPatch, "/v1/students/applications/"+id+"/status", payload, &studentPrincipal); rec.Code != http.StatusForbidden {
		t.Fatalf("user status update = %d, want 403", rec.Code)
	}

	rec := b.do(t, http.MethodPatch, "/v1/students/applications/"+id+"/status", payload, &adminPrincipal)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin status update = %d: %s", rec.Code, rec.Body.String())
	}
	var app types.StudentApplication
	_ = json.Unmarshal(rec.Body.Bytes(), &app)
	if app.Status != types.StatusAccepted {
		t.Errorf("status = %q, want accepted", app.Status)
	}
	if app.ReviewedBy != "admin-1" {
		t.Errorf("reviewedBy = %q, want admin-1", app.ReviewedBy)
	}
	if app.ReviewedAt == nil {
		t.Error("reviewedAt not set")
	}
}

func TestUpdatePreservesAdministrativeFields(t *testing.T) {
	b := newTestBackend()
	id := b.submit(t, studentPrincipal)
	b.do(t, http.MethodPatch, "/v1/students/applications/"+id+"/status",
		map[string]any{"status": "under_review"}, &adminPrincipal)

	patch := intakeForm()
	patch["major"] = "Computer Science"
	patch["status"] = "accepted" // must be ignored
	rec := b.do(t, http.MethodPatch, "/v1/students/applications/"+id, patch, &studentPrincipal)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rec.Code, rec.Body.String())
	}

	var app types.StudentApplication
	_ = json.Unmarshal(rec.Body.Bytes(), &app)
	if app.Major != "Computer Science" {
		t.Errorf("major = %q, want updated value", app.Major)
	}
	if app.Status != types.StatusUnderReview {
		t.Errorf("status = %q, caller overwrote a review field", app.Status)
	}
}

func TestInterviewLifecycle(t *testing.T) {
	b := newTestBackend()
	id := b.submit(t, studentPrincipal)

	payload := map[string]any{
		"technicalScore":     8,
		"communicationScore": 6,
		"recommendation":     "YES",
	}
	if rec := b.do(t, http.MethodPost, "/v1/students/applications/"+id+"/interview", payload, &studentPrincipal); rec.Code != http.StatusForbidden {
		t.Fatalf("non-admin interview create = %d, want 403", rec.Code)
	}

	rec := b.do(t, http.MethodPost, "/v1/students/applications/"+id+"/interview", payload, &adminPrincipal)
	if rec.Code != http.StatusCreated {
		t.Fatalf("interview create = %d: %s", rec.Code, rec.Body.String())
	}
	var iv types.Interview
	_ = json.Unmarshal(rec.Body.Bytes(), &iv)
	if iv.OverallScore != 7 {
		t.Errorf("overallScore = %v, want mean of present scores 7", iv.OverallScore)
	}
	if iv.InterviewerID != "admin-1" {
		t.Errorf("interviewerId = %q", iv.InterviewerID)
	}

	if rec := b.do(t, http.MethodPost, "/v1/students/applications/"+id+"/interview", payload, &adminPrincipal); rec.Code != http.StatusConflict {
		t.Errorf("duplicate interview = %d, want 409", rec.Code)
	}

	bad := map[string]any{"technicalScore": 11}
	if rec := b.do(t, http.MethodPut, "/v1/students/applications/"+id+"/interview", bad, &adminPrincipal); rec.Code != http.StatusBadRequest {
		t.Errorf("out-of-range score = %d, want 400", rec.Code)
	}
}

func TestStartupIntakeAndReview(t *testing.T) {
	b := newTestBackend()

	form := map[string]any{
		"companyName": "Acme Robotics",
		"description": "Robots for everyone",
		"positions": []map[string]any{
			{"roleType": "tech", "description": "Build the robots"},
		},
	}
	rec := b.do(t, http.MethodPost, "/v1/startups/intake", form, &studentPrincipal)
	if rec.Code != http.StatusCreated {
		t.Fatalf("intake status = %d: %s", rec.Code, rec.Body.String())
	}
	var s types.Startup
	_ = json.Unmarshal(rec.Body.Bytes(), &s)
	if s.Status != types.StatusSubmitted {
		t.Errorf("status = %q, want submitted", s.Status)
	}

	if rec := b.do(t, http.MethodPost, "/v1/startups/intake", form, &studentPrincipal); rec.Code != http.StatusConflict {
		t.Errorf("second intake = %d, want 409", rec.Code)
	}

	payload := map[string]any{"status": "accepted", "term": "fall-2026"}
	if rec := b.do(t, http.MethodPatch, "/v1/startups/"+s.ID+"/status", payload, &studentPrincipal); rec.Code != http.StatusForbidden {
		t.Errorf("non-admin review = %d, want 403", rec.Code)
	}
	rec = b.do(t, http.MethodPatch, "/v1/startups/"+s.ID+"/status", payload, &adminPrincipal)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin review = %d: %s", rec.Code, rec.Body.String())
	}
	var reviewed types.Startup
	_ = json.Unmarshal(rec.Body.Bytes(), &reviewed)
	if reviewed.Status != types.StatusAccepted || reviewed.Term != "fall-2026" {
		t.Errorf("reviewed = %q/%q", reviewed.Status, reviewed.Term)
	}
}

func TestExportRequiresAdmin(t *testing.T) {
	b := newTestBackend()
	if rec := b.do(t, http.MethodGet, "/v1/export/students.csv", nil, &studentPrincipal); rec.Code != http.StatusForbidden {
		t.Errorf("user export = %d, want 403", rec.Code)
	}
	if rec := b.do(t, http.MethodGet, "/v1/export/students.csv", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous export = %d, want 401", rec.Code)
	}
}

func TestStudentCSVExport(t *testing.T) {
	b := newTestBackend()
	b.submit(t, studentPrincipal)

	rec := b.do(t, http.MethodGet, "/v1/export/students.csv", nil, &adminPrincipal)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment") {
		t.Errorf("content disposition = %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d, want header + 1 row", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,user_id,full_name") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "Ada Lovelace") {
		t.Errorf("row = %q", lines[1])
	}
}

func TestExportFilters(t *testing.T) {
	b := newTestBackend()
	id := b.submit(t, studentPrincipal)
	b.submit(t, otherPrincipal)
	b.do(t, http.MethodPatch, "/v1/students/applications/"+id+"/status",
		map[string]any{"status": "accepted"}, &adminPrincipal)

	rec := b.do(t, http.MethodGet, "/v1/export/students.json?status=accepted", nil, &adminPrincipal)
	var apps []types.StudentApplication
	_ = json.Unmarshal(rec.Body.Bytes(), &apps)
	if len(apps) != 1 || apps[0].Status != types.StatusAccepted {
		t.Errorf("filtered export = %d records", len(apps))
	}
}
