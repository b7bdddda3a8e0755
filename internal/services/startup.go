package services

import (
	"context"
	"errors"

	"github.com/corefellowship/backend/internal/logging"
	"github.com/corefellowship/backend/internal/mq"
	"github.com/corefellowship/backend/internal/store"
	"github.com/corefellowship/backend/types"
	"github.com/google/uuid"
)

// StartupRepository defines persistence operations for startup records.
type StartupRepository interface {
	Get(ctx context.Context, id string) (types.Startup, error)
	ExistsByUserID(ctx context.Context, userID string) (bool, error)
	List(ctx context.Context, filter store.ApplicationFilter) ([]types.Startup, error)
	Create(ctx context.Context, s types.Startup) (types.Startup, error)
	UpdateStatus(ctx context.Context, id, status, term, reviewedBy, reviewNotes string) (types.Startup, error)
	Delete(ctx context.Context, id string) error
}

// StartupService encapsulates startup intake use-cases.
type StartupService struct {
	repo      StartupRepository
	publisher *mq.Publisher
	log       logging.Logger
}

func NewStartupService(repo StartupRepository, publisher *mq.Publisher, log logging.Logger) *StartupService {
	return &StartupService{repo: repo, publisher: publisher, log: log}
}

// Create stores a new startup intake form. One record per user.
func (s *StartupService) Create(ctx context.Context, startup types.Startup) (types.Startup, error) {
	exists, err := s.repo.ExistsByUserID(ctx, startup.UserID)
	if err != nil {
		return types.Startup{}, err
	}
	if exists {
		return types.Startup{}, ErrAlreadySubmitted
	}

	startup.ID = uuid.NewString()
	startup.Status = types.StatusSubmitted

	created, err := s.repo.Create(ctx, startup)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.Startup{}, ErrAlreadySubmitted
		}
		return types.Startup{}, err
	}

	s.publisher.Submitted(ctx, mq.SubmissionEvent{
		Kind:        mq.KindStartup,
		ID:          created.ID,
		UserID:      created.UserID,
		Term:        created.Term,
		SubmittedAt: created.SubmittedAt,
	})

	return created, nil
}

func (s *StartupService) Get(ctx context.Context, id string) (types.Startup, error) {
	return s.repo.Get(ctx, id)
}

func (s *StartupService) List(ctx context.Context, filter store.ApplicationFilter) ([]types.Startup, error) {
	return s.repo.List(ctx, filter)
}

func (s *StartupService) UpdateStatus(ctx context.Context, id, status, term, reviewedBy, reviewNotes string) (types.Startup, error) {
	return s.repo.UpdateStatus(ctx, id, status, term, reviewedBy, reviewNotes)
}

func (s *StartupService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
