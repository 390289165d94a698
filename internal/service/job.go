package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/meta-portal/meta-service/internal/fault"
	"github.com/meta-portal/meta-service/internal/model"
	"github.com/meta-portal/meta-service/internal/tenant"
)

// JobService manages a company's job postings.
type JobService struct {
	store Store
}

func NewJobService(store Store) *JobService {
	return &JobService{store: store}
}

func validateJob(j *model.Job) error {
	if j.Title == "" {
		return &fault.ValidationError{Field: "title", Reason: "is required"}
	}
	if j.Description == "" {
		return &fault.ValidationError{Field: "description", Reason: "is required"}
	}
	if j.SalaryMin != nil && j.SalaryMax != nil && *j.SalaryMin > *j.SalaryMax {
		return &fault.ValidationError{Field: "salary_min", Reason: "exceeds salary_max"}
	}
	return nil
}

// Post creates a job posting owned by the actor's company. A job always
// belongs to a company; the super admin must name one explicitly.
func (s *JobService) Post(ctx context.Context, tc tenant.Context, actor *model.User, j *model.Job) error {
	if err := validateJob(j); err != nil {
		return err
	}

	tenant.AssignOnCreate(j, tc, nil)
	if j.CompanyID == nil {
		return &fault.ValidationError{Field: "company_id", Reason: "is required"}
	}
	if err := tenant.RequireCompanyAdmin(actor, *j.CompanyID, "post jobs"); err != nil {
		return err
	}

	j.IsActive = true
	if err := s.store.CreateJob(ctx, j); err != nil {
		return fmt.Errorf("creating job: %w", err)
	}

	log.Info().Int64("job_id", j.ID).Int64("company_id", *j.CompanyID).Str("title", j.Title).
		Msg("Job posted")
	return nil
}

// Get returns one job, tenant rules applied. Active jobs are public: any
// caller may fetch them. Inactive jobs are visible only inside the owning
// tenant, and a cross-tenant fetch reads as not-found.
func (s *JobService) Get(ctx context.Context, tc tenant.Context, id int64) (*model.Job, error) {
	j, err := s.store.JobByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, fault.NotFound("job", id)
	}
	if j.IsActive {
		return j, nil
	}
	if err := tenant.Authorize(tc, j); err != nil {
		return nil, fault.NotFound("job", id)
	}
	return j, nil
}

// Update modifies a posting. The job's company never changes after creation.
func (s *JobService) Update(ctx context.Context, tc tenant.Context, actor *model.User, j *model.Job) error {
	existing, err := s.store.JobByID(ctx, j.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fault.NotFound("job", j.ID)
	}
	if err := tenant.Authorize(tc, existing); err != nil {
		return fault.NotFound("job", j.ID)
	}
	if existing.CompanyID != nil {
		if err := tenant.RequireCompanyAdmin(actor, *existing.CompanyID, "update jobs"); err != nil {
			return err
		}
	}
	if err := validateJob(j); err != nil {
		return err
	}

	j.CompanyID = existing.CompanyID
	return s.store.UpdateJob(ctx, j)
}

// SetActive opens or closes a posting without deleting it.
func (s *JobService) SetActive(ctx context.Context, tc tenant.Context, actor *model.User, id int64, active bool) error {
	j, err := s.store.JobByID(ctx, id)
	if err != nil {
		return err
	}
	if j == nil {
		return fault.NotFound("job", id)
	}
	if err := tenant.Authorize(tc, j); err != nil {
		return fault.NotFound("job", id)
	}
	if j.CompanyID != nil {
		if err := tenant.RequireCompanyAdmin(actor, *j.CompanyID, "change job status"); err != nil {
			return err
		}
	}

	j.IsActive = active
	return s.store.UpdateJob(ctx, j)
}

// List returns the jobs visible to the caller's tenant context.
func (s *JobService) List(ctx context.Context, tc tenant.Context, activeOnly bool) ([]*model.Job, error) {
	return s.store.ListJobs(ctx, tc, activeOnly)
}
