package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meta-portal/meta-service/internal/fault"
	"github.com/meta-portal/meta-service/internal/model"
	"github.com/meta-portal/meta-service/internal/tenant"
)

func setupCompanyService(t *testing.T) (*CompanyService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	return NewCompanyService(store), store
}

func TestCreateCompany(t *testing.T) {
	svc, _ := setupCompanyService(t)

	c := &model.Company{Name: "Acme", Slug: "acme", ContactEmail: "hr@acme.com"}
	err := svc.Create(context.Background(), tenant.System, c)
	assert.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.True(t, c.IsActive)
}

func TestCreateCompany_RequiresSuperAdmin(t *testing.T) {
	svc, _ := setupCompanyService(t)

	c := &model.Company{Name: "Acme", Slug: "acme"}
	err := svc.Create(context.Background(), tenant.ForCompany(1), c)
	assert.True(t, errors.Is(err, fault.ErrForbidden))
}

func TestCreateCompany_ValidatesInput(t *testing.T) {
	svc, _ := setupCompanyService(t)

	for _, c := range []*model.Company{
		{Name: "", Slug: "acme"},
		{Name: "Acme", Slug: "Not A Slug"},
		{Name: "Acme", Slug: "acme", ContactEmail: "not-an-email"},
	} {
		err := svc.Create(context.Background(), tenant.System, c)
		assert.True(t, fault.IsValidation(err), "company %+v", c)
	}
}

func TestCreateCompany_DuplicateSlugRejected(t *testing.T) {
	svc, store := setupCompanyService(t)
	store.seedCompany("Acme", "acme")

	err := svc.Create(context.Background(), tenant.System, &model.Company{Name: "Acme Two", Slug: "acme"})
	assert.True(t, fault.IsValidation(err))
}

func TestGetCompany_CrossTenantReadsAsNotFound(t *testing.T) {
	svc, store := setupCompanyService(t)
	acme := store.seedCompany("Acme", "acme")
	globex := store.seedCompany("Globex", "globex")

	got, err := svc.Get(context.Background(), tenant.ForCompany(acme.ID), acme.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)

	_, err = svc.Get(context.Background(), tenant.ForCompany(acme.ID), globex.ID)
	assert.True(t, errors.Is(err, fault.ErrNotFound))
}

func TestDeleteCompany_SoftAndIdempotencyGuard(t *testing.T) {
	svc, store := setupCompanyService(t)
	acme := store.seedCompany("Acme", "acme")

	err := svc.Delete(context.Background(), tenant.System, acme.ID)
	assert.NoError(t, err)
	assert.NotNil(t, store.companies[acme.ID].DeletedAt)

	// Already deleted reads as absent.
	err = svc.Delete(context.Background(), tenant.System, acme.ID)
	assert.True(t, errors.Is(err, fault.ErrNotFound))

	_, err = svc.Get(context.Background(), tenant.System, acme.ID)
	assert.True(t, errors.Is(err, fault.ErrNotFound))
}

func TestDeleteCompany_RequiresSuperAdmin(t *testing.T) {
	svc, store := setupCompanyService(t)
	acme := store.seedCompany("Acme", "acme")

	err := svc.Delete(context.Background(), tenant.ForCompany(acme.ID), acme.ID)
	assert.True(t, errors.Is(err, fault.ErrForbidden))
}

func TestListCompanies_SuperAdminOnly(t *testing.T) {
	svc, store := setupCompanyService(t)
	store.seedCompany("Acme", "acme")
	store.seedCompany("Globex", "globex")

	companies, err := svc.List(context.Background(), tenant.System)
	assert.NoError(t, err)
	assert.Len(t, companies, 2)

	_, err = svc.List(context.Background(), tenant.ForCompany(1))
	assert.True(t, errors.Is(err, fault.ErrForbidden))
}

func TestCompanySummary(t *testing.T) {
	svc, store := setupCompanyService(t)
	acme := store.seedCompany("Acme", "acme")
	admin := store.seedUser("admin@acme.com", &acme.ID, true)
	store.seedUser("member@acme.com", &acme.ID, false)
	store.seedJob(&acme.ID, "Backend Engineer", true)
	store.seedJob(&acme.ID, "Old Role", false)

	summary, err := svc.Summary(context.Background(), admin, acme.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Acme", summary.CompanyName)
	assert.Equal(t, int64(2), summary.UserCount)
	assert.Equal(t, int64(2), summary.JobCount)
	assert.Equal(t, int64(1), summary.ActiveJobCount)
	assert.Equal(t, int64(0), summary.ApplicationCount)
}

func TestCompanySummary_RequiresCompanyAdmin(t *testing.T) {
	svc, store := setupCompanyService(t)
	acme := store.seedCompany("Acme", "acme")
	globex := store.seedCompany("Globex", "globex")
	member := store.seedUser("member@acme.com", &acme.ID, false)
	globexAdmin := store.seedUser("admin@globex.com", &globex.ID, true)

	_, err := svc.Summary(context.Background(), member, acme.ID)
	assert.True(t, errors.Is(err, fault.ErrForbidden))

	// Admin of another company is equally forbidden.
	_, err = svc.Summary(context.Background(), globexAdmin, acme.ID)
	assert.True(t, errors.Is(err, fault.ErrForbidden))
}
