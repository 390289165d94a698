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

// ApplicationService manages job applications and the notifications they
// trigger.
type ApplicationService struct {
	store  Store
	mailer Mailer
}

func NewApplicationService(store Store, mailer Mailer) *ApplicationService {
	return &ApplicationService{store: store, mailer: mailer}
}

// Apply records the applicant's application for a job. The application
// belongs to the job's company, never the applicant's own, so the hiring
// company can see it. At most one application per user and job.
//
// The confirmation and hiring-side notification emails are best-effort and
// honor the applicant's preferences.
func (s *ApplicationService) Apply(ctx context.Context, tc tenant.Context, applicant *model.User, jobID int64, coverLetter, additionalInfo string) (*model.Application, error) {
	if applicant == nil {
		return nil, fault.Forbidden("apply for a job")
	}
	if coverLetter == "" {
		return nil, &fault.ValidationError{Field: "cover_letter", Reason: "is required"}
	}

	job, err := s.store.JobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fault.NotFound("job", jobID)
	}
	if !job.IsActive {
		return nil, &fault.ValidationError{Field: "job_id", Reason: "posting is closed"}
	}

	existing, err := s.store.ApplicationByUserAndJob(ctx, applicant.ID, jobID)
	if err != nil {
		return nil, fmt.Errorf("checking duplicate application: %w", err)
	}
	if existing != nil {
		return nil, &fault.ValidationError{Field: "job_id", Reason: "you have already applied for this job"}
	}

	app := &model.Application{
		UserID:         applicant.ID,
		JobID:          jobID,
		CoverLetter:    coverLetter,
		AdditionalInfo: additionalInfo,
		Status:         model.ApplicationSubmitted,
	}
	tenant.AssignOnCreate(app, tc, job)
	if err := s.store.CreateApplication(ctx, app); err != nil {
		return nil, fmt.Errorf("creating application: %w", err)
	}

	log.Info().Int64("application_id", app.ID).Int64("job_id", jobID).
		Int64("user_id", applicant.ID).Msg("Application submitted")

	s.notifyApplied(ctx, app, job, applicant)
	return app, nil
}

func (s *ApplicationService) notifyApplied(ctx context.Context, app *model.Application, job *model.Job, applicant *model.User) {
	companyName := ""
	var company *model.Company
	if job.CompanyID != nil {
		c, err := s.store.CompanyByID(ctx, *job.CompanyID)
		if err != nil {
			log.Warn().Err(err).Int64("company_id", *job.CompanyID).Msg("Company lookup for notification failed")
		} else if c != nil {
			company = c
			companyName = c.Name
		}
	}

	if s.wantsEmail(ctx, applicant.ID, func(p *model.EmailPreference) bool { return p.ApplicationConfirmations }) {
		if _, err := s.mailer.Send(ctx, mail.SendRequest{
			Recipient:     applicant.Email,
			RecipientName: applicant.FirstName + " " + applicant.LastName,
			TemplateName:  "job_application_confirmation",
			Variables: map[string]any{
				"user_name":    applicant.FirstName,
				"job_title":    job.Title,
				"company_name": companyName,
			},
			Priority:      model.PriorityNormal,
			CompanyID:     app.CompanyID,
			UserID:        &applicant.ID,
			ApplicationID: &app.ID,
			JobID:         &job.ID,
		}); err != nil {
			log.Warn().Err(err).Int64("application_id", app.ID).Msg("Confirmation email not delivered")
		}
	}

	if company == nil || company.AdminUserID == nil {
		return
	}
	admin, err := s.store.UserByID(ctx, *company.AdminUserID)
	if err != nil || admin == nil {
		log.Warn().Err(err).Int64("company_id", company.ID).Msg("Company admin lookup for notification failed")
		return
	}
	if _, err := s.mailer.Send(ctx, mail.SendRequest{
		Recipient:     admin.Email,
		RecipientName: admin.FirstName + " " + admin.LastName,
		TemplateName:  "admin_new_application",
		Variables: map[string]any{
			"admin_name":     admin.FirstName,
			"applicant_name": applicant.FirstName + " " + applicant.LastName,
			"job_title":      job.Title,
			"company_name":   companyName,
		},
		Priority:      model.PriorityHigh,
		CompanyID:     app.CompanyID,
		UserID:        &admin.ID,
		ApplicationID: &app.ID,
		JobID:         &job.ID,
	}); err != nil {
		log.Warn().Err(err).Int64("application_id", app.ID).Msg("Admin notification not delivered")
	}
}

// wantsEmail consults the user's saved preferences; a user who never saved
// any gets every notification category by default.
func (s *ApplicationService) wantsEmail(ctx context.Context, userID int64, pick func(*model.EmailPreference) bool) bool {
	pref, err := s.store.PreferenceByUser(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Preference lookup failed, defaulting to send")
		return true
	}
	if pref == nil {
		return true
	}
	return pick(pref)
}

// UpdateStatus moves an application through the hiring pipeline. The status
// set is closed; anything else is rejected with the allowed values named.
func (s *ApplicationService) UpdateStatus(ctx context.Context, tc tenant.Context, actor *model.User, appID int64, status string) error {
	if !model.ValidApplicationStatus(status) {
		return &fault.ValidationError{
			Field:   "status",
			Reason:  fmt.Sprintf("%q is not a valid status", status),
			Allowed: model.ApplicationStatuses,
		}
	}

	app, err := s.store.ApplicationByID(ctx, appID)
	if err != nil {
		return err
	}
	if app == nil {
		return fault.NotFound("application", appID)
	}
	if err := tenant.Authorize(tc, app); err != nil {
		return fault.NotFound("application", appID)
	}
	if app.CompanyID != nil {
		if err := tenant.RequireCompanyAdmin(actor, *app.CompanyID, "update application status"); err != nil {
			return err
		}
	}

	if err := s.store.UpdateApplicationStatus(ctx, appID, status); err != nil {
		return err
	}
	log.Info().Int64("application_id", appID).Str("status", status).Msg("Application status updated")

	s.notifyStatusChange(ctx, app, status)
	return nil
}

func (s *ApplicationService) notifyStatusChange(ctx context.Context, app *model.Application, status string) {
	applicant, err := s.store.UserByID(ctx, app.UserID)
	if err != nil || applicant == nil {
		log.Warn().Err(err).Int64("user_id", app.UserID).Msg("Applicant lookup for notification failed")
		return
	}
	if !s.wantsEmail(ctx, applicant.ID, func(p *model.EmailPreference) bool { return p.StatusUpdates }) {
		return
	}

	jobTitle := ""
	if job, err := s.store.JobByID(ctx, app.JobID); err == nil && job != nil {
		jobTitle = job.Title
	}

	if _, err := s.mailer.Send(ctx, mail.SendRequest{
		Recipient:     applicant.Email,
		RecipientName: applicant.FirstName + " " + applicant.LastName,
		TemplateName:  "application_status_update",
		Variables: map[string]any{
			"user_name":  applicant.FirstName,
			"job_title":  jobTitle,
			"new_status": status,
		},
		Priority:      model.PriorityNormal,
		CompanyID:     app.CompanyID,
		UserID:        &applicant.ID,
		ApplicationID: &app.ID,
		JobID:         &app.JobID,
	}); err != nil {
		log.Warn().Err(err).Int64("application_id", app.ID).Msg("Status update email not delivered")
	}
}

// Get returns one application. The applicant always sees their own;
// otherwise tenant rules apply and a cross-tenant id reads as not-found.
func (s *ApplicationService) Get(ctx context.Context, tc tenant.Context, actor *model.User, id int64) (*model.Application, error) {
	app, err := s.store.ApplicationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fault.NotFound("application", id)
	}
	if actor != nil && app.UserID == actor.ID {
		return app, nil
	}
	if err := tenant.Authorize(tc, app); err != nil {
		return nil, fault.NotFound("application", id)
	}
	return app, nil
}

// List returns the applications visible to the caller's tenant context.
func (s *ApplicationService) List(ctx context.Context, tc tenant.Context) ([]*model.Application, error) {
	return s.store.ListApplications(ctx, tc)
}
