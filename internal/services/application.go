package services

import (
	"context"
	"errors"
	"time"

	"github.com/corefellowship/backend/internal/logging"
	"github.com/corefellowship/backend/internal/mq"
	"github.com/corefellowship/backend/internal/store"
	"github.com/corefellowship/backend/types"
	"github.com/google/uuid"
)

// ErrAlreadySubmitted is returned when a user submits a second intake form.
var ErrAlreadySubmitted = errors.New("application already submitted")

// StudentApplicationRepository defines persistence operations for student
// applications.
type StudentApplicationRepository interface {
	Get(ctx context.Context, id string) (types.StudentApplication, error)
	ExistsByUserID(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context, filter store.ApplicationFilter) ([]types.StudentApplication, error)
	Create(ctx context.Context, app types.StudentApplication) (types.StudentApplication, error)
	Update(ctx context.Context, app types.StudentApplication) (types.StudentApplication, error)
	Delete(ctx context.Context, id string) error
}

// ApplicationService encapsulates student-application use-cases.
type ApplicationService struct {
	repo      StudentApplicationRepository
	publisher *mq.Publisher
	log       logging.Logger
}

func NewApplicationService(repo StudentApplicationRepository, publisher *mq.Publisher, log logging.Logger) *ApplicationService {
	return &ApplicationService{repo: repo, publisher: publisher, log: log}
}

// Create stores a new application for the user. One application per user.
func (s *ApplicationService) Create(ctx context.Context, app types.StudentApplication) (types.StudentApplication, error) {
	exists, err := s.repo.ExistsByUserID(ctx, app.UserID)
	if err != nil {
		return types.StudentApplication{}, err
	}
	if exists {
		return types.StudentApplication{}, ErrAlreadySubmitted
	}

	app.ID = uuid.NewString()
	app.Status = types.StatusSubmitted

	created, err := s.repo.Create(ctx, app)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.StudentApplication{}, ErrAlreadySubmitted
		}
		return types.StudentApplication{}, err
	}

	s.publisher.Submitted(ctx, mq.SubmissionEvent{
		Kind:        mq.KindStudentApplication,
		ID:          created.ID,
		UserID:      created.UserID,
		Term:        created.Term,
		SubmittedAt: created.SubmittedAt,
	})

	return created, nil
}

func (s *ApplicationService) Get(ctx context.Context, id string) (types.StudentApplication, error) {
	return s.repo.Get(ctx, id)
}

func (s *ApplicationService) List(ctx context.Context, filter store.ApplicationFilter) ([]types.StudentApplication, error) {
	return s.repo.List(ctx, filter)
}

func (s *ApplicationService) Update(ctx context.Context, app types.StudentApplication) (types.StudentApplication, error) {
	return s.repo.Update(ctx, app)
}

func (s *ApplicationService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// UpdateStatus is the admin review mutation.
func (s *ApplicationService) UpdateStatus(ctx context.Context, id, status, reviewedBy, reviewNotes string) (types.StudentApplication, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.StudentApplication{}, err
	}
	now := time.Now()
	app.Status = status
	app.ReviewedBy = reviewedBy
	app.ReviewNotes = reviewNotes
	app.ReviewedAt = &now
	return s.repo.Update(ctx, app)
}

// SetResumeKey records the storage key of an uploaded resume.
func (s *ApplicationService) SetResumeKey(ctx context.Context, id, key string) (types.StudentApplication, error) {
	app, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.StudentApplication{}, err
	}
	app.ResumeKey = key
	return s.repo.Update(ctx, app)
}
