package store

import (
	"context"
	"database/sql"

	"github.com/meta-portal/meta-service/internal/model"
)

const preferenceColumns = `id, user_id, job_application_confirmations, application_status_updates,
	new_job_notifications, marketing_emails, system_notifications, digest_frequency,
	backup_email, created_at, updated_at`

// CreatePreference inserts a user's notification preference row.
func (s *Store) CreatePreference(ctx context.Context, p *model.EmailPreference) error {
	query := `
		INSERT INTO email_preferences (user_id, job_application_confirmations, application_status_updates,
			new_job_notifications, marketing_emails, system_notifications, digest_frequency, backup_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	return s.db.QueryRowContext(ctx, query,
		p.UserID, p.ApplicationConfirmations, p.StatusUpdates, p.NewJobNotifications,
		p.MarketingEmails, p.SystemNotifications, p.DigestFrequency, p.BackupEmail,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

// PreferenceByUser retrieves a user's preferences. Returns (nil, nil) when the
// user has never saved any; callers treat that as all defaults on.
func (s *Store) PreferenceByUser(ctx context.Context, userID int64) (*model.EmailPreference, error) {
	query := `SELECT ` + preferenceColumns + ` FROM email_preferences WHERE user_id = $1`
	p := &model.EmailPreference{}
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&p.ID, &p.UserID, &p.ApplicationConfirmations, &p.StatusUpdates,
		&p.NewJobNotifications, &p.MarketingEmails, &p.SystemNotifications,
		&p.DigestFrequency, &p.BackupEmail, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePreference persists changed preference flags.
func (s *Store) UpdatePreference(ctx context.Context, p *model.EmailPreference) error {
	query := `
		UPDATE email_preferences
		SET job_application_confirmations = $2, application_status_updates = $3,
			new_job_notifications = $4, marketing_emails = $5, system_notifications = $6,
			digest_frequency = $7, backup_email = $8, updated_at = now()
		WHERE user_id = $1
		RETURNING updated_at
	`
	return s.db.QueryRowContext(ctx, query,
		p.UserID, p.ApplicationConfirmations, p.StatusUpdates, p.NewJobNotifications,
		p.MarketingEmails, p.SystemNotifications, p.DigestFrequency, p.BackupEmail,
	).Scan(&p.UpdatedAt)
}
