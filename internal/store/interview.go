package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/corefellowship/backend/types"
)

// InterviewRepository handles persistence for interview evaluations.
type InterviewRepository struct {
	db *sql.DB
}

func NewInterviewRepository(db *sql.DB) *InterviewRepository {
	return &InterviewRepository{db: db}
}

const interviewColumns = `
	id, application_id, interviewer_id, interviewer_name, interview_date,
	technical_score, communication_score, motivation_score, culture_fit_score,
	overall_score, strengths, concerns, notes, recommendation,
	created_at, updated_at`

func scanInterview(row rowScanner) (types.Interview, error) {
	var iv types.Interview
	var recommendation sql.NullString
	err := row.Scan(
		&iv.ID,
		&iv.ApplicationID,
		&iv.InterviewerID,
		&iv.InterviewerName,
		&iv.InterviewDate,
		&iv.TechnicalScore,
		&iv.CommunicationScore,
		&iv.MotivationScore,
		&iv.CultureFitScore,
		&iv.OverallScore,
		&iv.Strengths,
		&iv.Concerns,
		&iv.Notes,
		&recommendation,
		&iv.CreatedAt,
		&iv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Interview{}, ErrNotFound
		}
		return types.Interview{}, err
	}
	iv.Recommendation = types.Recommendation(recommendation.String)
	return iv, nil
}

// GetByApplicationID returns the interview for an application; at most one
// exists per application.
func (r *InterviewRepository) GetByApplicationID(ctx context.Context, applicationID string) (types.Interview, error) {
	const query = `SELECT` + interviewColumns + `
		FROM interviews
		WHERE application_id = $1`
	return scanInterview(r.db.QueryRowContext(ctx, query, applicationID))
}

func (r *InterviewRepository) Create(ctx context.Context, iv types.Interview) (types.Interview, error) {
	now := time.Now()
	iv.CreatedAt = now
	iv.UpdatedAt = now

	const query = `
		INSERT INTO interviews (
			id, application_id, interviewer_id, interviewer_name, interview_date,
			technical_score, communication_score, motivation_score, culture_fit_score,
			overall_score, strengths, concerns, notes, recommendation,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		iv.ID,
		iv.ApplicationID,
		iv.InterviewerID,
		iv.InterviewerName,
		iv.InterviewDate,
		iv.TechnicalScore,
		iv.CommunicationScore,
		iv.MotivationScore,
		iv.CultureFitScore,
		iv.OverallScore,
		iv.Strengths,
		iv.Concerns,
		iv.Notes,
		nullString(string(iv.Recommendation)),
		iv.CreatedAt,
		iv.UpdatedAt,
	); err != nil {
		return types.Interview{}, translateError(err)
	}
	return iv, nil
}

func (r *InterviewRepository) Update(ctx context.Context, iv types.Interview) (types.Interview, error) {
	iv.UpdatedAt = time.Now()

	const query = `
		UPDATE interviews
		SET interviewer_name = $1,
			interview_date = $2,
			technical_score = $3,
			communication_score = $4,
			motivation_score = $5,
			culture_fit_score = $6,
			overall_score = $7,
			strengths = $8,
			concerns = $9,
			notes = $10,
			recommendation = $11,
			updated_at = $12
		WHERE id = $13`
	result, err := r.db.ExecContext(
		ctx,
		query,
		iv.InterviewerName,
		iv.InterviewDate,
		iv.TechnicalScore,
		iv.CommunicationScore,
		iv.MotivationScore,
		iv.CultureFitScore,
		iv.OverallScore,
		iv.Strengths,
		iv.Concerns,
		iv.Notes,
		nullString(string(iv.Recommendation)),
		iv.UpdatedAt,
		iv.ID,
	)
	if err != nil {
		return types.Interview{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Interview{}, err
	}
	if affected == 0 {
		return types.Interview{}, ErrNotFound
	}
	return iv, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
