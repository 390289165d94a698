package store

import (
	"context"
	"database/sql"

	"github.com/meta-portal/meta-service/internal/fault"
	"github.com/meta-portal/meta-service/internal/model"
	"github.com/meta-portal/meta-service/internal/tenant"
)

const jobColumns = `id, company_id, title, department, location, job_type, experience_level,
	salary_min, salary_max, description, requirements, is_active, posted_at`

// CreateJob inserts a new job posting.
func (s *Store) CreateJob(ctx context.Context, j *model.Job) error {
	query := `
		INSERT INTO jobs (company_id, title, department, location, job_type, experience_level,
			salary_min, salary_max, description, requirements, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, posted_at
	`
	return s.db.QueryRowContext(ctx, query,
		j.CompanyID, j.Title, j.Department, j.Location, j.JobType, j.ExperienceLevel,
		j.SalaryMin, j.SalaryMax, j.Description, j.Requirements, j.IsActive,
	).Scan(&j.ID, &j.PostedAt)
}

func scanJob(row *sql.Row) (*model.Job, error) {
	j := &model.Job{}
	err := row.Scan(
		&j.ID, &j.CompanyID, &j.Title, &j.Department, &j.Location, &j.JobType,
		&j.ExperienceLevel, &j.SalaryMin, &j.SalaryMax, &j.Description,
		&j.Requirements, &j.IsActive, &j.PostedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return j, nil
}

// JobByID retrieves a job by primary key. Returns (nil, nil) when absent.
func (s *Store) JobByID(ctx context.Context, id int64) (*model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE id = $1`
	return scanJob(s.db.QueryRowContext(ctx, query, id))
}

// UpdateJob updates mutable job fields.
func (s *Store) UpdateJob(ctx context.Context, j *model.Job) error {
	query := `
		UPDATE jobs
		SET title = $2, department = $3, location = $4, job_type = $5, experience_level = $6,
			salary_min = $7, salary_max = $8, description = $9, requirements = $10, is_active = $11
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		j.ID, j.Title, j.Department, j.Location, j.JobType, j.ExperienceLevel,
		j.SalaryMin, j.SalaryMax, j.Description, j.Requirements, j.IsActive,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fault.NotFound("job", j.ID)
	}
	return nil
}

// ListJobs returns jobs visible to the caller, optionally active only.
func (s *Store) ListJobs(ctx context.Context, tc tenant.Context, activeOnly bool) ([]*model.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE 1=1`
	args := []any{}
	if activeOnly {
		query += ` AND is_active`
	}
	clause, scopeArgs := tenant.Scope(tc, "company_id", len(args)+1)
	query += clause
	args = append(args, scopeArgs...)
	query += ` ORDER BY posted_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		j := &model.Job{}
		err := rows.Scan(
			&j.ID, &j.CompanyID, &j.Title, &j.Department, &j.Location, &j.JobType,
			&j.ExperienceLevel, &j.SalaryMin, &j.SalaryMax, &j.Description,
			&j.Requirements, &j.IsActive, &j.PostedAt,
		)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
