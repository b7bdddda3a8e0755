package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/corefellowship/backend/types"
	"github.com/lib/pq"
)

// ApplicationFilter narrows listing and export queries.
type ApplicationFilter struct {
	UserID string
	Term   string
	Status string
}

// StudentApplicationRepository handles persistence for student applications.
type StudentApplicationRepository struct {
	db *sql.DB
}

func NewStudentApplicationRepository(db *sql.DB) *StudentApplicationRepository {
	return &StudentApplicationRepository{db: db}
}

const applicationColumns = `
	id, user_id, full_name, pronouns, email, grad_year, school, major,
	linkedin_profile, portfolio_website, resume_key,
	how_did_you_hear, referral_source, role_preferences,
	startups_and_industries, contribution_and_experience, work_mode, time_commitment,
	additional_comments, previously_applied, previously_participated,
	has_upcoming_internship_offers,
	term, status, submitted_at, updated_at, reviewed_by, review_notes, reviewed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (types.StudentApplication, error) {
	var app types.StudentApplication
	err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.FullName,
		&app.Pronouns,
		&app.Email,
		&app.GradYear,
		&app.School,
		&app.Major,
		&app.LinkedinProfile,
		&app.PortfolioWebsite,
		&app.ResumeKey,
		&app.HowDidYouHear,
		&app.ReferralSource,
		pq.Array(&app.RolePreferences),
		&app.StartupsAndIndustries,
		&app.ContributionAndExperience,
		&app.WorkMode,
		&app.TimeCommitment,
		&app.AdditionalComments,
		&app.PreviouslyApplied,
		&app.PreviouslyParticipated,
		&app.HasUpcomingInternshipOffers,
		&app.Term,
		&app.Status,
		&app.SubmittedAt,
		&app.UpdatedAt,
		&app.ReviewedBy,
		&app.ReviewNotes,
		&app.ReviewedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.StudentApplication{}, ErrNotFound
		}
		return types.StudentApplication{}, err
	}
	return app, nil
}

func (r *StudentApplicationRepository) Get(ctx context.Context, id string) (types.StudentApplication, error) {
	const query = `SELECT` + applicationColumns + `
		FROM student_applications
		WHERE id = $1`
	return scanApplication(r.db.QueryRowContext(ctx, query, id))
}

func (r *StudentApplicationRepository) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM student_applications WHERE user_id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *StudentApplicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]types.StudentApplication, error) {
	query := `SELECT` + applicationColumns + ` FROM student_applications`
	where, args := buildFilter(filter)
	query += where + ` ORDER BY submitted_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []types.StudentApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *StudentApplicationRepository) Create(ctx context.Context, app types.StudentApplication) (types.StudentApplication, error) {
	now := time.Now()
	app.SubmittedAt = now
	app.UpdatedAt = now

	const query = `
		INSERT INTO student_applications (
			id, user_id, full_name, pronouns, email, grad_year, school, major,
			linkedin_profile, portfolio_website, resume_key,
			how_did_you_hear, referral_source, role_preferences,
			startups_and_industries, contribution_and_experience, work_mode, time_commitment,
			additional_comments, previously_applied, previously_participated,
			has_upcoming_internship_offers,
			term, status, submitted_at, updated_at, reviewed_by, review_notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		app.ID,
		app.UserID,
		app.FullName,
		app.Pronouns,
		app.Email,
		app.GradYear,
		app.School,
		app.Major,
		app.LinkedinProfile,
		app.PortfolioWebsite,
		app.ResumeKey,
		app.HowDidYouHear,
		app.ReferralSource,
		pq.Array(app.RolePreferences),
		app.StartupsAndIndustries,
		app.ContributionAndExperience,
		app.WorkMode,
		app.TimeCommitment,
		app.AdditionalComments,
		app.PreviouslyApplied,
		app.PreviouslyParticipated,
		app.HasUpcomingInternshipOffers,
		app.Term,
		app.Status,
		app.SubmittedAt,
		app.UpdatedAt,
		app.ReviewedBy,
		app.ReviewNotes,
	); err != nil {
		return types.StudentApplication{}, translateError(err)
	}
	return app, nil
}

func (r *StudentApplicationRepository) Update(ctx context.Context, app types.StudentApplication) (types.StudentApplication, error) {
	app.UpdatedAt = time.Now()

	const query = `
		UPDATE student_applications
		SET full_name = $1,
			pronouns = $2,
			email = $3,
			grad_year = $4,
			school = $5,
			major = $6,
			linkedin_profile = $7,
			portfolio_website = $8,
			resume_key = $9,
			how_did_you_hear = $10,
			referral_source = $11,
			role_preferences = $12,
			startups_and_industries = $13,
			contribution_and_experience = $14,
			work_mode = $15,
			time_commitment = $16,
			additional_comments = $17,
			previously_applied = $18,
			previously_participated = $19,
			has_upcoming_internship_offers = $20,
			term = $21,
			status = $22,
			updated_at = $23,
			reviewed_by = $24,
			review_notes = $25,
			reviewed_at = $26
		WHERE id = $27`
	result, err := r.db.ExecContext(
		ctx,
		query,
		app.FullName,
		app.Pronouns,
		app.Email,
		app.GradYear,
		app.School,
		app.Major,
		app.LinkedinProfile,
		app.PortfolioWebsite,
		app.ResumeKey,
		app.HowDidYouHear,
		app.ReferralSource,
		pq.Array(app.RolePreferences),
		app.StartupsAndIndustries,
		app.ContributionAndExperience,
		app.WorkMode,
		app.TimeCommitment,
		app.AdditionalComments,
		app.PreviouslyApplied,
		app.PreviouslyParticipated,
		app.HasUpcomingInternshipOffers,
		app.Term,
		app.Status,
		app.UpdatedAt,
		app.ReviewedBy,
		app.ReviewNotes,
		app.ReviewedAt,
		app.ID,
	)
	if err != nil {
		return types.StudentApplication{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.StudentApplication{}, err
	}
	if affected == 0 {
		return types.StudentApplication{}, ErrNotFound
	}
	return app, nil
}

func (r *StudentApplicationRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM student_applications WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func buildFilter(filter ApplicationFilter) (string, []any) {
	var clauses []string
	var args []any
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("user_id", filter.UserID)
	add("term", filter.Term)
	add("status", filter.Status)
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
