package service

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog/log"

	"github.com/meta-portal/meta-service/internal/fault"
	"github.com/meta-portal/meta-service/internal/model"
	"github.com/meta-portal/meta-service/internal/tenant"
)

var (
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// CompanyService manages tenants themselves: creation, profile updates,
// soft deletion and the dashboard summary.
type CompanyService struct {
	store Store
}

func NewCompanyService(store Store) *CompanyService {
	return &CompanyService{store: store}
}

// Create registers a new company. Only the unrestricted super admin may
// create tenants.
func (s *CompanyService) Create(ctx context.Context, tc tenant.Context, c *model.Company) error {
	if !tc.Unrestricted() {
		return fault.Forbidden("create a company")
	}
	if c.Name == "" {
		return &fault.ValidationError{Field: "name", Reason: "is required"}
	}
	if !slugPattern.MatchString(c.Slug) {
		return &fault.ValidationError{Field: "slug", Reason: "must be lowercase letters, digits and hyphens"}
	}
	if c.ContactEmail != "" && !emailPattern.MatchString(c.ContactEmail) {
		return &fault.ValidationError{Field: "contact_email", Reason: "is not a valid email address"}
	}

	existing, err := s.store.CompanyBySlug(ctx, c.Slug)
	if err != nil {
		return fmt.Errorf("checking slug %q: %w", c.Slug, err)
	}
	if existing != nil {
		return &fault.ValidationError{Field: "slug", Reason: "is already taken"}
	}

	c.IsActive = true
	if err := s.store.CreateCompany(ctx, c); err != nil {
		return fmt.Errorf("creating company: %w", err)
	}

	log.Info().Int64("company_id", c.ID).Str("slug", c.Slug).Msg("Company created")
	return nil
}

// Get returns one company. A caller from another tenant gets not-found, the
// same answer a nonexistent id gets.
func (s *CompanyService) Get(ctx context.Context, tc tenant.Context, id int64) (*model.Company, error) {
	c, err := s.store.CompanyByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil || !tc.CanAccess(&c.ID) {
		return nil, fault.NotFound("company", id)
	}
	return c, nil
}

// List returns every company. Reserved for the super admin: no tenant has
// any business enumerating the others.
func (s *CompanyService) List(ctx context.Context, tc tenant.Context) ([]*model.Company, error) {
	if !tc.Unrestricted() {
		return nil, fault.Forbidden("list companies")
	}
	return s.store.ListCompanies(ctx)
}

// Update modifies a company profile. The actor must administer the company.
func (s *CompanyService) Update(ctx context.Context, actor *model.User, c *model.Company) error {
	if err := tenant.RequireCompanyAdmin(actor, c.ID, "update the company profile"); err != nil {
		return err
	}
	if c.ContactEmail != "" && !emailPattern.MatchString(c.ContactEmail) {
		return &fault.ValidationError{Field: "contact_email", Reason: "is not a valid email address"}
	}
	return s.store.UpdateCompany(ctx, c)
}

// Delete soft-deletes a company. Super admin only: removing a tenant takes
// every dependent row out of reach.
func (s *CompanyService) Delete(ctx context.Context, tc tenant.Context, id int64) error {
	if !tc.Unrestricted() {
		return fault.Forbidden("delete a company")
	}
	if err := s.store.DeleteCompany(ctx, id); err != nil {
		return err
	}
	log.Info().Int64("company_id", id).Msg("Company soft-deleted")
	return nil
}

// Summary returns the per-company dashboard counts. The actor must
// administer the company.
func (s *CompanyService) Summary(ctx context.Context, actor *model.User, companyID int64) (*model.CompanySummary, error) {
	if err := tenant.RequireCompanyAdmin(actor, companyID, "view the company summary"); err != nil {
		return nil, err
	}
	summary, err := s.store.CompanySummary(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, fault.NotFound("company", companyID)
	}
	return summary, nil
}
