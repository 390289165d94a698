package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/meta-portal/meta-service/internal/fault"
	"github.com/meta-portal/meta-service/internal/mail"
	"github.com/meta-portal/meta-service/internal/model"
	"github.com/meta-portal/meta-service/internal/tenant"
)

// UserService manages registration, lookup and the admin flags.
type UserService struct {
	store  Store
	mailer Mailer
}

func NewUserService(store Store, mailer Mailer) *UserService {
	return &UserService{store: store, mailer: mailer}
}

// Register creates a user, seeds their notification preferences and sends
// the welcome email. The welcome send is best-effort: registration succeeds
// even when delivery fails.
func (s *UserService) Register(ctx context.Context, tc tenant.Context, u *model.User) error {
	if !emailPattern.MatchString(u.Email) {
		return &fault.ValidationError{Field: "email", Reason: "is not a valid email address"}
	}
	if u.FirstName == "" || u.LastName == "" {
		return &fault.ValidationError{Field: "name", Reason: "first and last name are required"}
	}

	existing, err := s.store.UserByEmail(ctx, u.Email)
	if err != nil {
		return fmt.Errorf("checking email %q: %w", u.Email, err)
	}
	if existing != nil {
		return &fault.ValidationError{Field: "email", Reason: "is already registered"}
	}

	tenant.AssignOnCreate(u, tc, nil)
	u.IsActive = true
	if err := s.store.CreateUser(ctx, u); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}

	pref := &model.EmailPreference{
		UserID:                   u.ID,
		ApplicationConfirmations: true,
		StatusUpdates:            true,
		NewJobNotifications:      true,
		SystemNotifications:      true,
		DigestFrequency:          "daily",
	}
	if err := s.store.CreatePreference(ctx, pref); err != nil {
		log.Warn().Err(err).Int64("user_id", u.ID).Msg("Failed to seed email preferences")
	}

	vars := map[string]any{"user_name": u.FirstName}
	if u.CompanyID != nil {
		if company, err := s.store.CompanyByID(ctx, *u.CompanyID); err == nil && company != nil {
			vars["company_name"] = company.Name
		}
	}
	if _, err := s.mailer.Send(ctx, mail.SendRequest{
		Recipient:     u.Email,
		RecipientName: u.FirstName + " " + u.LastName,
		TemplateName:  "welcome_user",
		Variables:     vars,
		Priority:      model.PriorityNormal,
		CompanyID:     u.CompanyID,
		UserID:        &u.ID,
	}); err != nil {
		log.Warn().Err(err).Int64("user_id", u.ID).Msg("Welcome email not delivered")
	}

	log.Info().Int64("user_id", u.ID).Str("email", u.Email).Msg("User registered")
	return nil
}

// Get returns one user, tenant rules applied. A cross-tenant id is
// indistinguishable from a nonexistent one.
func (s *UserService) Get(ctx context.Context, tc tenant.Context, id int64) (*model.User, error) {
	u, err := s.store.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fault.NotFound("user", id)
	}
	if err := tenant.Authorize(tc, u); err != nil {
		return nil, fault.NotFound("user", id)
	}
	return u, nil
}

// List returns the users visible to the caller's tenant context.
func (s *UserService) List(ctx context.Context, tc tenant.Context) ([]*model.User, error) {
	return s.store.ListUsers(ctx, tc)
}

// SetAdmin grants or revokes a user's admin flag within the actor's company.
// An admin may not revoke their own flag, so a company can never end up
// adminless by accident.
func (s *UserService) SetAdmin(ctx context.Context, actor *model.User, targetID int64, admin bool) error {
	if actor != nil && actor.ID == targetID && !admin {
		return fault.Forbidden("revoke your own admin flag")
	}

	target, err := s.store.UserByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return fault.NotFound("user", targetID)
	}

	companyID := int64(0)
	if target.CompanyID != nil {
		companyID = *target.CompanyID
	}
	if err := tenant.RequireCompanyAdmin(actor, companyID, "change admin flags"); err != nil {
		return err
	}

	if err := s.store.SetUserAdmin(ctx, targetID, admin); err != nil {
		return err
	}
	log.Info().Int64("user_id", targetID).Bool("admin", admin).Msg("Admin flag changed")
	return nil
}

// SetActive enables or disables a user account within the actor's company.
func (s *UserService) SetActive(ctx context.Context, actor *model.User, targetID int64, active bool) error {
	target, err := s.store.UserByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return fault.NotFound("user", targetID)
	}

	companyID := int64(0)
	if target.CompanyID != nil {
		companyID = *target.CompanyID
	}
	if err := tenant.RequireCompanyAdmin(actor, companyID, "change account status"); err != nil {
		return err
	}
	return s.store.SetUserActive(ctx, targetID, active)
}
