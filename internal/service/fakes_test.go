package service

import (
	"context"
	"time"

	"github.com/meta-portal/meta-service/internal/fault"
	"github.com/meta-portal/meta-service/internal/mail"
	"github.com/meta-portal/meta-service/internal/model"
	"github.com/meta-portal/meta-service/internal/tenant"
)

// fakeStore is an in-memory Store mirroring the SQL layer's semantics,
// including its tenant filtering and not-found conventions.
type fakeStore struct {
	companies map[int64]*model.Company
	users     map[int64]*model.User
	jobs      map[int64]*model.Job
	apps      map[int64]*model.Application
	prefs     map[int64]*model.EmailPreference
	uploads   map[int64]*model.FileUpload
	resumes   map[int64]*model.Resume
	nextID    int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		companies: make(map[int64]*model.Company),
		users:     make(map[int64]*model.User),
		jobs:      make(map[int64]*model.Job),
		apps:      make(map[int64]*model.Application),
		prefs:     make(map[int64]*model.EmailPreference),
		uploads:   make(map[int64]*model.FileUpload),
		resumes:   make(map[int64]*model.Resume),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

// visible mirrors the list-query predicate tenant.Scope builds: unrestricted
// callers see everything, a caller without a company sees only global rows,
// everyone else sees exactly their own company's rows.
func visible(tc tenant.Context, companyID *int64) bool {
	if tc.Unrestricted() {
		return true
	}
	if tc.CompanyID == nil {
		return companyID == nil
	}
	return companyID != nil && *companyID == *tc.CompanyID
}

func (f *fakeStore) CreateCompany(_ context.Context, c *model.Company) error {
	c.ID = f.id()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.companies[c.ID] = c
	return nil
}

func (f *fakeStore) CompanyByID(_ context.Context, id int64) (*model.Company, error) {
	c, ok := f.companies[id]
	if !ok || c.DeletedAt != nil {
		return nil, nil
	}
	return c, nil
}

func (f *fakeStore) CompanyBySlug(_ context.Context, slug string) (*model.Company, error) {
	for _, c := range f.companies {
		if c.Slug == slug && c.DeletedAt == nil {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListCompanies(_ context.Context) ([]*model.Company, error) {
	var out []*model.Company
	for _, c := range f.companies {
		if c.DeletedAt == nil {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateCompany(_ context.Context, c *model.Company) error {
	existing, ok := f.companies[c.ID]
	if !ok || existing.DeletedAt != nil {
		return fault.NotFound("company", c.ID)
	}
	c.UpdatedAt = time.Now()
	f.companies[c.ID] = c
	return nil
}

func (f *fakeStore) DeleteCompany(_ context.Context, id int64) error {
	c, ok := f.companies[id]
	if !ok || c.DeletedAt != nil {
		return fault.NotFound("company", id)
	}
	now := time.Now()
	c.DeletedAt = &now
	return nil
}

func (f *fakeStore) CompanySummary(_ context.Context, companyID int64) (*model.CompanySummary, error) {
	c, ok := f.companies[companyID]
	if !ok || c.DeletedAt != nil {
		return nil, fault.NotFound("company", companyID)
	}
	summary := &model.CompanySummary{CompanyID: companyID, CompanyName: c.Name}
	for _, u := range f.users {
		if u.CompanyID != nil && *u.CompanyID == companyID {
			summary.UserCount++
		}
	}
	for _, j := range f.jobs {
		if j.CompanyID != nil && *j.CompanyID == companyID {
			summary.JobCount++
			if j.IsActive {
				summary.ActiveJobCount++
			}
		}
	}
	for _, a := range f.apps {
		if a.CompanyID != nil && *a.CompanyID == companyID {
			summary.ApplicationCount++
		}
	}
	return summary, nil
}

func (f *fakeStore) CreateUser(_ context.Context, u *model.User) error {
	u.ID = f.id()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.users[u.ID] = u
	return nil
}

func (f *fakeStore) UserByID(_ context.Context, id int64) (*model.User, error) {
	return f.users[id], nil
}

func (f *fakeStore) UserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListUsers(_ context.Context, tc tenant.Context) ([]*model.User, error) {
	var out []*model.User
	for _, u := range f.users {
		if visible(tc, u.CompanyID) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) SetUserActive(_ context.Context, id int64, active bool) error {
	u, ok := f.users[id]
	if !ok {
		return fault.NotFound("user", id)
	}
	u.IsActive = active
	return nil
}

func (f *fakeStore) SetUserAdmin(_ context.Context, id int64, admin bool) error {
	u, ok := f.users[id]
	if !ok {
		return fault.NotFound("user", id)
	}
	u.IsAdmin = admin
	return nil
}

func (f *fakeStore) CreateJob(_ context.Context, j *model.Job) error {
	j.ID = f.id()
	j.PostedAt = time.Now()
	f.jobs[j.ID] = j
	return nil
}

func (f *fakeStore) JobByID(_ context.Context, id int64) (*model.Job, error) {
	return f.jobs[id], nil
}

func (f *fakeStore) UpdateJob(_ context.Context, j *model.Job) error {
	if _, ok := f.jobs[j.ID]; !ok {
		return fault.NotFound("job", j.ID)
	}
	f.jobs[j.ID] = j
	return nil
}

func (f *fakeStore) ListJobs(_ context.Context, tc tenant.Context, activeOnly bool) ([]*model.Job, error) {
	var out []*model.Job
	for _, j := range f.jobs {
		if !visible(tc, j.CompanyID) {
			continue
		}
		if activeOnly && !j.IsActive {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (f *fakeStore) CreateApplication(_ context.Context, a *model.Application) error {
	a.ID = f.id()
	a.AppliedAt = time.Now()
	a.UpdatedAt = a.AppliedAt
	f.apps[a.ID] = a
	return nil
}

func (f *fakeStore) ApplicationByID(_ context.Context, id int64) (*model.Application, error) {
	return f.apps[id], nil
}

func (f *fakeStore) ApplicationByUserAndJob(_ context.Context, userID, jobID int64) (*model.Application, error) {
	for _, a := range f.apps {
		if a.UserID == userID && a.JobID == jobID {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UpdateApplicationStatus(_ context.Context, id int64, status string) error {
	a, ok := f.apps[id]
	if !ok {
		return fault.NotFound("application", id)
	}
	a.Status = status
	a.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) ListApplications(_ context.Context, tc tenant.Context) ([]*model.Application, error) {
	var out []*model.Application
	for _, a := range f.apps {
		if visible(tc, a.CompanyID) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) CreatePreference(_ context.Context, p *model.EmailPreference) error {
	p.ID = f.id()
	f.prefs[p.UserID] = p
	return nil
}

func (f *fakeStore) PreferenceByUser(_ context.Context, userID int64) (*model.EmailPreference, error) {
	return f.prefs[userID], nil
}

func (f *fakeStore) CreateFileUpload(_ context.Context, u *model.FileUpload) error {
	u.ID = f.id()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	f.uploads[u.ID] = u
	return nil
}

func (f *fakeStore) FileUploadByID(_ context.Context, id int64) (*model.FileUpload, error) {
	u, ok := f.uploads[id]
	if !ok || u.Status == model.UploadDeleted {
		return nil, nil
	}
	return u, nil
}

func (f *fakeStore) ListUserFiles(_ context.Context, tc tenant.Context, userID int64) ([]*model.FileUpload, error) {
	var out []*model.FileUpload
	for _, u := range f.uploads {
		if u.UserID == userID && u.Status != model.UploadDeleted && visible(tc, u.CompanyID) {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) SetUploadStatus(_ context.Context, id int64, status model.UploadStatus) error {
	u, ok := f.uploads[id]
	if !ok {
		return fault.NotFound("file upload", id)
	}
	u.Status = status
	return nil
}

func (f *fakeStore) CreateResume(_ context.Context, r *model.Resume) error {
	r.ID = f.id()
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	f.resumes[r.ID] = r
	return nil
}

func (f *fakeStore) ResumeByUpload(_ context.Context, fileUploadID int64) (*model.Resume, error) {
	for _, r := range f.resumes {
		if r.FileUploadID == fileUploadID {
			return r, nil
		}
	}
	return nil, nil
}

// Seed helpers keep the test bodies focused on the behavior under test.

func (f *fakeStore) seedCompany(name, slug string) *model.Company {
	c := &model.Company{Name: name, Slug: slug, IsActive: true}
	_ = f.CreateCompany(context.Background(), c)
	return c
}

func (f *fakeStore) seedUser(email string, companyID *int64, admin bool) *model.User {
	u := &model.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		CompanyID: companyID,
		IsAdmin:   admin,
		IsActive:  true,
	}
	_ = f.CreateUser(context.Background(), u)
	return u
}

func (f *fakeStore) seedJob(companyID *int64, title string, active bool) *model.Job {
	j := &model.Job{
		CompanyID:   companyID,
		Title:       title,
		Location:    "Remote",
		JobType:     "full_time",
		Description: "desc",
		IsActive:    active,
	}
	_ = f.CreateJob(context.Background(), j)
	return j
}

// fakeMailer records every send request.
type fakeMailer struct {
	sent []mail.SendRequest
	err  error
}

func (m *fakeMailer) Send(_ context.Context, req mail.SendRequest) (*model.Email, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.sent = append(m.sent, req)
	return &model.Email{ID: int64(len(m.sent)), Status: model.EmailSent}, nil
}

func (m *fakeMailer) templates() []string {
	var out []string
	for _, req := range m.sent {
		out = append(out, req.TemplateName)
	}
	return out
}

func ptr(v int64) *int64 { return &v }
