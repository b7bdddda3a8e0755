package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/corefellowship/backend/types"
)

// StartupRepository handles persistence for startup intake records.
type StartupRepository struct {
	db *sql.DB
}

func NewStartupRepository(db *sql.DB) *StartupRepository {
	return &StartupRepository{db: db}
}

const startupColumns = `
	id, user_id, company_name, website, industry, description, stage,
	team_size, founded_year, contact_name, contact_title, contact_email,
	contact_phone, operating_mode, time_zone, interns_supervisor,
	has_hired_interns_previously, number_of_interns_needed, positions,
	will_pay_interns, pay_amount, looking_for_permanent_intern,
	project_description_url, referral_source, commitment_acknowledged,
	term, status, submitted_at, updated_at, reviewed_by, review_notes`

func scanStartup(row rowScanner) (types.Startup, error) {
	var s types.Startup
	var positions []byte
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.CompanyName,
		&s.Website,
		&s.Industry,
		&s.Description,
		&s.Stage,
		&s.TeamSize,
		&s.FoundedYear,
		&s.ContactName,
		&s.ContactTitle,
		&s.ContactEmail,
		&s.ContactPhone,
		&s.OperatingMode,
		&s.TimeZone,
		&s.InternsSupervisor,
		&s.HasHiredInternsPreviously,
		&s.NumberOfInternsNeeded,
		&positions,
		&s.WillPayInterns,
		&s.PayAmount,
		&s.LookingForPermanentIntern,
		&s.ProjectDescriptionURL,
		&s.ReferralSource,
		&s.CommitmentAcknowledged,
		&s.Term,
		&s.Status,
		&s.SubmittedAt,
		&s.UpdatedAt,
		&s.ReviewedBy,
		&s.ReviewNotes,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Startup{}, ErrNotFound
		}
		return types.Startup{}, err
	}
	if len(positions) > 0 {
		if err := json.Unmarshal(positions, &s.Positions); err != nil {
			return types.Startup{}, err
		}
	}
	return s, nil
}

func (r *StartupRepository) Get(ctx context.Context, id string) (types.Startup, error) {
	const query = `SELECT` + startupColumns + `
		FROM startups
		WHERE id = $1`
	return scanStartup(r.db.QueryRowContext(ctx, query, id))
}

func (r *StartupRepository) ExistsByUserID(ctx context.Context, userID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM startups WHERE user_id = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *StartupRepository) List(ctx context.Context, filter ApplicationFilter) ([]types.Startup, error) {
	query := `SELECT` + startupColumns + ` FROM startups`
	where, args := buildFilter(filter)
	query += where + ` ORDER BY submitted_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var startups []types.Startup
	for rows.Next() {
		s, err := scanStartup(rows)
		if err != nil {
			return nil, err
		}
		startups = append(startups, s)
	}
	return startups, rows.Err()
}

func (r *StartupRepository) Create(ctx context.Context, s types.Startup) (types.Startup, error) {
	now := time.Now()
	s.SubmittedAt = now
	s.UpdatedAt = now

	positions, err := json.Marshal(s.Positions)
	if err != nil {
		return types.Startup{}, err
	}

	const query = `
		INSERT INTO startups (
			id, user_id, company_name, website, industry, description, stage,
			team_size, founded_year, contact_name, contact_title, contact_email,
			contact_phone, operating_mode, time_zone, interns_supervisor,
			has_hired_interns_previously, number_of_interns_needed, positions,
			will_pay_interns, pay_amount, looking_for_permanent_intern,
			project_description_url, referral_source, commitment_acknowledged,
			term, status, submitted_at, updated_at, reviewed_by, review_notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27,
			$28, $29, $30, $31)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		s.ID,
		s.UserID,
		s.CompanyName,
		s.Website,
		s.Industry,
		s.Description,
		s.Stage,
		s.TeamSize,
		s.FoundedYear,
		s.ContactName,
		s.ContactTitle,
		s.ContactEmail,
		s.ContactPhone,
		s.OperatingMode,
		s.TimeZone,
		s.InternsSupervisor,
		s.HasHiredInternsPreviously,
		s.NumberOfInternsNeeded,
		positions,
		s.WillPayInterns,
		s.PayAmount,
		s.LookingForPermanentIntern,
		s.ProjectDescriptionURL,
		s.ReferralSource,
		s.CommitmentAcknowledged,
		s.Term,
		s.Status,
		s.SubmittedAt,
		s.UpdatedAt,
		s.ReviewedBy,
		s.ReviewNotes,
	); err != nil {
		return types.Startup{}, translateError(err)
	}
	return s, nil
}

// UpdateStatus is the admin review mutation: status, term, and review notes.
func (r *StartupRepository) UpdateStatus(ctx context.Context, id, status, term, reviewedBy, reviewNotes string) (types.Startup, error) {
	const query = `
		UPDATE startups
		SET status = $1,
			term = COALESCE(NULLIF($2, ''), term),
			reviewed_by = $3,
			review_notes = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(ctx, query, status, term, reviewedBy, reviewNotes, time.Now(), id)
	if err != nil {
		return types.Startup{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Startup{}, err
	}
	if affected == 0 {
		return types.Startup{}, ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *StartupRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM startups WHERE id = $1`
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
