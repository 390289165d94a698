package tenant

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meta-portal/meta-service/internal/fault"
	"github.com/meta-portal/meta-service/internal/model"
)

func int64p(v int64) *int64 { return &v }

func TestScope_RegularUser(t *testing.T) {
	clause, args := Scope(ForCompany(7), "company_id", 3)
	assert.Equal(t, " AND company_id = $3", clause)
	assert.Equal(t, []any{int64(7)}, args)
}

func TestScope_SuperAdminUnrestricted(t *testing.T) {
	clause, args := Scope(System, "company_id", 1)
	assert.Empty(t, clause)
	assert.Nil(t, args)
}

func TestScope_NoCompanySeesGlobalOnly(t *testing.T) {
	clause, args := Scope(Context{}, "company_id", 1)
	assert.Equal(t, " AND company_id IS NULL", clause)
	assert.Nil(t, args)
}

func TestScope_AdminWithCompanyStillFiltered(t *testing.T) {
	// The admin flag alone does not lift the filter; only a company-less
	// admin is unrestricted.
	tc := Context{CompanyID: int64p(7), IsSuperAdmin: true}
	clause, args := Scope(tc, "company_id", 2)
	assert.Equal(t, " AND company_id = $2", clause)
	assert.Equal(t, []any{int64(7)}, args)
}

func TestAuthorize_CrossTenantIsNotFound(t *testing.T) {
	job := &model.Job{ID: 1, CompanyID: int64p(1)}

	err := Authorize(ForCompany(2), job)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, fault.ErrNotFound))
	assert.False(t, errors.Is(err, fault.ErrForbidden))
}

func TestAuthorize_SameTenant(t *testing.T) {
	job := &model.Job{ID: 1, CompanyID: int64p(2)}
	assert.NoError(t, Authorize(ForCompany(2), job))
}

func TestAuthorize_SuperAdmin(t *testing.T) {
	job := &model.Job{ID: 1, CompanyID: int64p(9)}
	assert.NoError(t, Authorize(System, job))
}

func TestAuthorize_TenantCallerDeniedGlobalRow(t *testing.T) {
	// A row with no company is not public: a tenant-bound caller is denied
	// it the same way it is denied another tenant's row.
	superUser := &model.User{ID: 7}

	err := Authorize(ForCompany(1), superUser)
	assert.True(t, errors.Is(err, fault.ErrNotFound))
	assert.False(t, errors.Is(err, fault.ErrForbidden))
}

func TestAuthorize_GlobalRowVisibleToCompanylessCaller(t *testing.T) {
	tmpl := &model.EmailTemplate{ID: 1, IsSystemTemplate: true}
	assert.NoError(t, Authorize(Context{}, tmpl))
	assert.NoError(t, Authorize(System, tmpl))
}

func TestAssignOnCreate_NeverOverwrites(t *testing.T) {
	app := &model.Application{CompanyID: int64p(5)}
	AssignOnCreate(app, ForCompany(9), nil)
	assert.Equal(t, int64(5), *app.CompanyID)
}

func TestAssignOnCreate_InheritsParentOverCaller(t *testing.T) {
	// An application inherits its job's company even when the applicant
	// belongs to a different company.
	job := &model.Job{ID: 1, CompanyID: int64p(1)}
	app := &model.Application{UserID: 10, JobID: job.ID}

	AssignOnCreate(app, ForCompany(2), job)
	assert.NotNil(t, app.CompanyID)
	assert.Equal(t, int64(1), *app.CompanyID)
}

func TestAssignOnCreate_FallsBackToCaller(t *testing.T) {
	job := &model.Job{Title: "SRE"}
	AssignOnCreate(job, ForCompany(4), nil)
	assert.NotNil(t, job.CompanyID)
	assert.Equal(t, int64(4), *job.CompanyID)
}

func TestAssignOnCreate_GlobalParentStaysGlobal(t *testing.T) {
	parent := &model.Job{}
	app := &model.Application{}
	AssignOnCreate(app, ForCompany(4), parent)
	assert.Nil(t, app.CompanyID)
}

func TestRequireCompanyAdmin(t *testing.T) {
	admin := &model.User{ID: 1, CompanyID: int64p(3), IsAdmin: true}
	member := &model.User{ID: 2, CompanyID: int64p(3)}
	outsider := &model.User{ID: 3, CompanyID: int64p(4), IsAdmin: true}
	super := &model.User{ID: 4, IsAdmin: true}

	assert.NoError(t, RequireCompanyAdmin(admin, 3, "manage jobs"))
	assert.NoError(t, RequireCompanyAdmin(super, 3, "manage jobs"))

	err := RequireCompanyAdmin(member, 3, "manage jobs")
	assert.True(t, errors.Is(err, fault.ErrForbidden))

	err = RequireCompanyAdmin(outsider, 3, "manage jobs")
	assert.True(t, errors.Is(err, fault.ErrForbidden))
}
