// Package service holds the portal's business logic. Each service validates
// input, applies the tenant rules and delegates persistence to the store.
package service

import (
	"context"

	"github.com/meta-portal/meta-service/internal/mail"
	"github.com/meta-portal/meta-service/internal/model"
	"github.com/meta-portal/meta-service/internal/tenant"
)

// Store is the persistence surface the portal services depend on. The
// concrete implementation lives in internal/store; tests substitute an
// in-memory fake.
type Store interface {
	CreateCompany(ctx context.Context, c *model.Company) error
	CompanyByID(ctx context.Context, id int64) (*model.Company, error)
	CompanyBySlug(ctx context.Context, slug string) (*model.Company, error)
	ListCompanies(ctx context.Context) ([]*model.Company, error)
	UpdateCompany(ctx context.Context, c *model.Company) error
	DeleteCompany(ctx context.Context, id int64) error
	CompanySummary(ctx context.Context, companyID int64) (*model.CompanySummary, error)

	CreateUser(ctx context.Context, u *model.User) error
	UserByID(ctx context.Context, id int64) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context, tc tenant.Context) ([]*model.User, error)
	SetUserActive(ctx context.Context, id int64, active bool) error
	SetUserAdmin(ctx context.Context, id int64, admin bool) error

	CreateJob(ctx context.Context, j *model.Job) error
	JobByID(ctx context.Context, id int64) (*model.Job, error)
	UpdateJob(ctx context.Context, j *model.Job) error
	ListJobs(ctx context.Context, tc tenant.Context, activeOnly bool) ([]*model.Job, error)

	CreateApplication(ctx context.Context, a *model.Application) error
	ApplicationByID(ctx context.Context, id int64) (*model.Application, error)
	ApplicationByUserAndJob(ctx context.Context, userID, jobID int64) (*model.Application, error)
	UpdateApplicationStatus(ctx context.Context, id int64, status string) error
	ListApplications(ctx context.Context, tc tenant.Context) ([]*model.Application, error)

	CreatePreference(ctx context.Context, p *model.EmailPreference) error
	PreferenceByUser(ctx context.Context, userID int64) (*model.EmailPreference, error)

	CreateFileUpload(ctx context.Context, f *model.FileUpload) error
	FileUploadByID(ctx context.Context, id int64) (*model.FileUpload, error)
	ListUserFiles(ctx context.Context, tc tenant.Context, userID int64) ([]*model.FileUpload, error)
	SetUploadStatus(ctx context.Context, id int64, status model.UploadStatus) error
	CreateResume(ctx context.Context, r *model.Resume) error
	ResumeByUpload(ctx context.Context, fileUploadID int64) (*model.Resume, error)
}

// Mailer is the slice of the email subsystem the portal services use.
// Notification sends are best-effort: a delivery failure is logged, never
// propagated to the caller of the business operation.
type Mailer interface {
	Send(ctx context.Context, req mail.SendRequest) (*model.Email, error)
}
