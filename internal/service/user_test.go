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

func setupUserService(t *testing.T) (*UserService, *fakeStore, *fakeMailer) {
	t.Helper()
	store := newFakeStore()
	mailer := &fakeMailer{}
	return NewUserService(store, mailer), store, mailer
}

func TestRegister(t *testing.T) {
	svc, store, mailer := setupUserService(t)
	acme := store.seedCompany("Acme", "acme")

	u := &model.User{Email: "ann@acme.com", FirstName: "Ann", LastName: "Lee"}
	err := svc.Register(context.Background(), tenant.ForCompany(acme.ID), u)
	assert.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.True(t, u.IsActive)

	// Tenant assigned from the caller's context.
	assert.NotNil(t, u.CompanyID)
	assert.Equal(t, acme.ID, *u.CompanyID)

	// Default preferences seeded.
	pref := store.prefs[u.ID]
	assert.NotNil(t, pref)
	assert.True(t, pref.ApplicationConfirmations)
	assert.True(t, pref.StatusUpdates)

	// Welcome email with the company name resolved.
	assert.Equal(t, []string{"welcome_user"}, mailer.templates())
	assert.Equal(t, "ann@acme.com", mailer.sent[0].Recipient)
	assert.Equal(t, "Acme", mailer.sent[0].Variables["company_name"])
}

func TestRegister_GlobalUserWithoutCompany(t *testing.T) {
	svc, _, mailer := setupUserService(t)

	u := &model.User{Email: "ann@x.com", FirstName: "Ann", LastName: "Lee"}
	err := svc.Register(context.Background(), tenant.Context{}, u)
	assert.NoError(t, err)
	assert.Nil(t, u.CompanyID)
	assert.Equal(t, []string{"welcome_user"}, mailer.templates())
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	svc, store, _ := setupUserService(t)
	store.seedUser("ann@x.com", nil, false)

	u := &model.User{Email: "ann@x.com", FirstName: "Ann", LastName: "Lee"}
	err := svc.Register(context.Background(), tenant.Context{}, u)
	assert.True(t, fault.IsValidation(err))
}

func TestRegister_InvalidInputRejected(t *testing.T) {
	svc, _, _ := setupUserService(t)

	for _, u := range []*model.User{
		{Email: "not-an-email", FirstName: "Ann", LastName: "Lee"},
		{Email: "ann@x.com", FirstName: "", LastName: "Lee"},
	} {
		err := svc.Register(context.Background(), tenant.Context{}, u)
		assert.True(t, fault.IsValidation(err), "user %+v", u)
	}
}

func TestRegister_WelcomeFailureDoesNotFailRegistration(t *testing.T) {
	svc, _, mailer := setupUserService(t)
	mailer.err = errors.New("smtp down")

	u := &model.User{Email: "ann@x.com", FirstName: "Ann", LastName: "Lee"}
	err := svc.Register(context.Background(), tenant.Context{}, u)
	assert.NoError(t, err)
	assert.NotZero(t, u.ID)
}

func TestGetUser_CrossTenantReadsAsNotFound(t *testing.T) {
	svc, store, _ := setupUserService(t)
	acme := store.seedCompany("Acme", "acme")
	globex := store.seedCompany("Globex", "globex")
	target := store.seedUser("ann@acme.com", &acme.ID, false)

	got, err := svc.Get(context.Background(), tenant.ForCompany(acme.ID), target.ID)
	assert.NoError(t, err)
	assert.Equal(t, target.ID, got.ID)

	_, err = svc.Get(context.Background(), tenant.ForCompany(globex.ID), target.ID)
	assert.True(t, errors.Is(err, fault.ErrNotFound))
}

func TestGetUser_CompanylessUserHiddenFromTenantCaller(t *testing.T) {
	svc, store, _ := setupUserService(t)
	acme := store.seedCompany("Acme", "acme")
	target := store.seedUser("root@portal.com", nil, true)

	_, err := svc.Get(context.Background(), tenant.ForCompany(acme.ID), target.ID)
	assert.True(t, errors.Is(err, fault.ErrNotFound))

	got, err := svc.Get(context.Background(), tenant.System, target.ID)
	assert.NoError(t, err)
	assert.Equal(t, target.ID, got.ID)
}

func TestSetAdmin(t *testing.T) {
	svc, store, _ := setupUserService(t)
	acme := store.seedCompany("Acme", "acme")
	admin := store.seedUser("admin@acme.com", &acme.ID, true)
	member := store.seedUser("member@acme.com", &acme.ID, false)

	err := svc.SetAdmin(context.Background(), admin, member.ID, true)
	assert.NoError(t, err)
	assert.True(t, store.users[member.ID].IsAdmin)
}

func TestSetAdmin_SelfRevocationForbidden(t *testing.T) {
	svc, store, _ := setupUserService(t)
	acme := store.seedCompany("Acme", "acme")
	admin := store.seedUser("admin@acme.com", &acme.ID, true)

	err := svc.SetAdmin(context.Background(), admin, admin.ID, false)
	assert.True(t, errors.Is(err, fault.ErrForbidden))
	assert.True(t, store.users[admin.ID].IsAdmin)
}

func TestSetAdmin_CrossCompanyForbidden(t *testing.T) {
	svc, store, _ := setupUserService(t)
	acme := store.seedCompany("Acme", "acme")
	globex := store.seedCompany("Globex", "globex")
	acmeAdmin := store.seedUser("admin@acme.com", &acme.ID, true)
	globexMember := store.seedUser("member@globex.com", &globex.ID, false)

	err := svc.SetAdmin(context.Background(), acmeAdmin, globexMember.ID, true)
	assert.True(t, errors.Is(err, fault.ErrForbidden))
}

func TestSetAdmin_SuperAdminAnywhere(t *testing.T) {
	svc, store, _ := setupUserService(t)
	acme := store.seedCompany("Acme", "acme")
	super := store.seedUser("root@portal.com", nil, true)
	member := store.seedUser("member@acme.com", &acme.ID, false)

	err := svc.SetAdmin(context.Background(), super, member.ID, true)
	assert.NoError(t, err)
	assert.True(t, store.users[member.ID].IsAdmin)
}

func TestSetActive(t *testing.T) {
	svc, store, _ := setupUserService(t)
	acme := store.seedCompany("Acme", "acme")
	admin := store.seedUser("admin@acme.com", &acme.ID, true)
	member := store.seedUser("member@acme.com", &acme.ID, false)

	err := svc.SetActive(context.Background(), admin, member.ID, false)
	assert.NoError(t, err)
	assert.False(t, store.users[member.ID].IsActive)

	nonAdmin := store.seedUser("other@acme.com", &acme.ID, false)
	err = svc.SetActive(context.Background(), nonAdmin, member.ID, true)
	assert.True(t, errors.Is(err, fault.ErrForbidden))
}

func TestListUsers_ScopedToTenant(t *testing.T) {
	svc, store, _ := setupUserService(t)
	acme := store.seedCompany("Acme", "acme")
	globex := store.seedCompany("Globex", "globex")
	store.seedUser("a@acme.com", &acme.ID, false)
	store.seedUser("b@acme.com", &acme.ID, false)
	store.seedUser("c@globex.com", &globex.ID, false)

	users, err := svc.List(context.Background(), tenant.ForCompany(acme.ID))
	assert.NoError(t, err)
	assert.Len(t, users, 2)

	all, err := svc.List(context.Background(), tenant.System)
	assert.NoError(t, err)
	assert.Len(t, all, 3)
}
