package services

import (
	"context"
	"errors"

	"github.com/corefellowship/backend/internal/store"
	"github.com/corefellowship/backend/types"
	"github.com/google/uuid"
)

// ErrInterviewExists is returned when an application already has an interview.
var ErrInterviewExists = errors.New("interview already recorded for application")

// ErrInvalidScore is returned for scores outside the 1-10 range.
var ErrInvalidScore = errors.New("score must be between 1 and 10")

// InterviewRepository defines persistence operations for interviews.
type InterviewRepository interface {
	GetByApplicationID(ctx context.Context, applicationID string) (types.Interview, error)
	Create(ctx context.Context, iv types.Interview) (types.Interview, error)
	Update(ctx context.Context, iv types.Interview) (types.Interview, error)
}

// InterviewService encapsulates interview-evaluation use-cases.
type InterviewService struct {
	repo InterviewRepository
}

func NewInterviewService(repo InterviewRepository) *InterviewService {
	return &InterviewService{repo: repo}
}

func (s *InterviewService) Create(ctx context.Context, iv types.Interview) (types.Interview, error) {
	if err := validateScores(iv); err != nil {
		return types.Interview{}, err
	}
	iv.ID = uuid.NewString()
	iv.OverallScore = overallScore(iv)
	created, err := s.repo.Create(ctx, iv)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return types.Interview{}, ErrInterviewExists
		}
		return types.Interview{}, err
	}
	return created, nil
}

func (s *InterviewService) GetByApplicationID(ctx context.Context, applicationID string) (types.Interview, error) {
	return s.repo.GetByApplicationID(ctx, applicationID)
}

func (s *InterviewService) Update(ctx context.Context, iv types.Interview) (types.Interview, error) {
	if err := validateScores(iv); err != nil {
		return types.Interview{}, err
	}
	iv.OverallScore = overallScore(iv)
	return s.repo.Update(ctx, iv)
}

func validateScores(iv types.Interview) error {
	for _, score := range scores(iv) {
		if score != nil && (*score < 1 || *score > 10) {
			return ErrInvalidScore
		}
	}
	return nil
}

// overallScore is the mean of the scores that are present.
func overallScore(iv types.Interview) float64 {
	var sum, n int
	for _, score := range scores(iv) {
		if score != nil {
			sum += *score
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func scores(iv types.Interview) []*int {
	return []*int{
		iv.TechnicalScore,
		iv.CommunicationScore,
		iv.MotivationScore,
		iv.CultureFitScore,
	}
}
