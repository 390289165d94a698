package store

import (
	"context"
	"database/sql"

	"github.com/meta-portal/meta-service/internal/fault"
	"github.com/meta-portal/meta-service/internal/model"
	"github.com/meta-portal/meta-service/internal/tenant"
)

const applicationColumns = `id, user_id, job_id, company_id, cover_letter, additional_info,
	status, applied_at, updated_at`

// CreateApplication inserts a new application. The (user_id, job_id) unique
// constraint is checked by the service before insert; the database enforces
// it as the final word.
func (s *Store) CreateApplication(ctx context.Context, a *model.Application) error {
	query := `
		INSERT INTO applications (user_id, job_id, company_id, cover_letter, additional_info, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, applied_at, updated_at
	`
	return s.db.QueryRowContext(ctx, query,
		a.UserID, a.JobID, a.CompanyID, a.CoverLetter, a.AdditionalInfo, a.Status,
	).Scan(&a.ID, &a.AppliedAt, &a.UpdatedAt)
}

func scanApplication(row *sql.Row) (*model.Application, error) {
	a := &model.Application{}
	err := row.Scan(
		&a.ID, &a.UserID, &a.JobID, &a.CompanyID, &a.CoverLetter, &a.AdditionalInfo,
		&a.Status, &a.AppliedAt, &a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ApplicationByID retrieves an application by primary key.
func (s *Store) ApplicationByID(ctx context.Context, id int64) (*model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplication(s.db.QueryRowContext(ctx, query, id))
}

// ApplicationByUserAndJob retrieves the one application a user may have for a
// job. Returns (nil, nil) when the user has not applied.
func (s *Store) ApplicationByUserAndJob(ctx context.Context, userID, jobID int64) (*model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = $1 AND job_id = $2`
	return scanApplication(s.db.QueryRowContext(ctx, query, userID, jobID))
}

// UpdateApplicationStatus sets a new status. Value validation happens in the
// service layer.
func (s *Store) UpdateApplicationStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE applications SET status = $2, updated_at = now() WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fault.NotFound("application", id)
	}
	return nil
}

// ListApplications returns applications visible to the caller's tenant
// context, newest first.
func (s *Store) ListApplications(ctx context.Context, tc tenant.Context) ([]*model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE 1=1`
	clause, args := tenant.Scope(tc, "company_id", 1)
	query += clause + ` ORDER BY applied_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*model.Application
	for rows.Next() {
		a := &model.Application{}
		err := rows.Scan(
			&a.ID, &a.UserID, &a.JobID, &a.CompanyID, &a.CoverLetter, &a.AdditionalInfo,
			&a.Status, &a.AppliedAt, &a.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}
	return apps, rows.Err()
}
