package store

import (
	"context"
	"database/sql"

	"github.com/meta-portal/meta-service/internal/model"
)

const emailColumns = `id, recipient_email, recipient_name, sender_email, sender_name,
	subject, html_content, text_content, template_name, template_data,
	status, priority, scheduled_at, sent_at, failed_reason, retry_count, max_retries,
	company_id, user_id, application_id, job_id, tracking_enabled, tracking_id,
	created_at, updated_at`

// CreateEmail inserts a new email record in its initial state.
func (s *Store) CreateEmail(ctx context.Context, e *model.Email) error {
	data, err := jsonb(e.TemplateData)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO emails (recipient_email, recipient_name, sender_email, sender_name,
			subject, html_content, text_content, template_name, template_data,
			status, priority, scheduled_at, retry_count, max_retries,
			company_id, user_id, application_id, job_id, tracking_enabled, tracking_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, created_at, updated_at
	`
	return s.db.QueryRowContext(ctx, query,
		e.RecipientEmail, e.RecipientName, e.SenderEmail, e.SenderName,
		e.Subject, e.HTMLContent, e.TextContent, e.TemplateName, data,
		e.Status, e.Priority, e.ScheduledAt, e.RetryCount, e.MaxRetries,
		e.CompanyID, e.UserID, e.ApplicationID, e.JobID, e.TrackingEnabled, e.TrackingID,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// EmailByID retrieves an email by primary key. Returns (nil, nil) when absent.
func (s *Store) EmailByID(ctx context.Context, id int64) (*model.Email, error) {
	query := `SELECT ` + emailColumns + ` FROM emails WHERE id = $1`
	e := &model.Email{}
	var data []byte
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&e.ID, &e.RecipientEmail, &e.RecipientName, &e.SenderEmail, &e.SenderName,
		&e.Subject, &e.HTMLContent, &e.TextContent, &e.TemplateName, &data,
		&e.Status, &e.Priority, &e.ScheduledAt, &e.SentAt, &e.FailedReason,
		&e.RetryCount, &e.MaxRetries, &e.CompanyID, &e.UserID, &e.ApplicationID,
		&e.JobID, &e.TrackingEnabled, &e.TrackingID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := scanJSONB(data, &e.TemplateData); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateEmail persists the delivery-state fields of an email.
func (s *Store) UpdateEmail(ctx context.Context, e *model.Email) error {
	query := `
		UPDATE emails
		SET status = $2, sent_at = $3, failed_reason = $4, retry_count = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	return s.db.QueryRowContext(ctx, query,
		e.ID, e.Status, e.SentAt, e.FailedReason, e.RetryCount,
	).Scan(&e.UpdatedAt)
}

// EmailStats aggregates delivery statistics, tenant-scoped when companyID is
// non-nil.
func (s *Store) EmailStats(ctx context.Context, companyID *int64) (*model.EmailStats, error) {
	query := `
		SELECT
			count(*),
			count(*) FILTER (WHERE status = 'sent'),
			count(*) FILTER (WHERE status = 'failed'),
			count(*) FILTER (WHERE status = 'pending'),
			count(*) FILTER (WHERE created_at >= now() - interval '24 hours'),
			count(*) FILTER (WHERE created_at >= now() - interval '7 days')
		FROM emails
		WHERE ($1::bigint IS NULL OR company_id = $1)
	`
	stats := &model.EmailStats{}
	err := s.db.QueryRowContext(ctx, query, companyID).Scan(
		&stats.Total, &stats.Sent, &stats.Failed, &stats.Pending,
		&stats.Last24h, &stats.Last7d,
	)
	if err != nil {
		return nil, err
	}
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Sent) / float64(stats.Total) * 100
	}
	return stats, nil
}
