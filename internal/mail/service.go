// Package mail is the email delivery subsystem: template rendering, a
// durable queue table for deferred sends, and bounded automatic retry.
package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/meta-portal/meta-service/internal/fault"
	"github.com/meta-portal/meta-service/internal/model"
	"github.com/meta-portal/meta-service/internal/monitoring"
)

// Priority scores drive queue ordering. A scheduled retry runs at its
// original score plus retryBoost, so retries beat fresh sends of the same
// priority class.
const (
	scoreLow    = 25
	scoreNormal = 100
	scoreHigh   = 200
	scoreUrgent = 500

	retryBoost = 50
)

func priorityScore(p model.EmailPriority) int {
	switch p {
	case model.PriorityLow:
		return scoreLow
	case model.PriorityHigh:
		return scoreHigh
	case model.PriorityUrgent:
		return scoreUrgent
	default:
		return scoreNormal
	}
}

// Store is the persistence surface the delivery subsystem needs.
type Store interface {
	TemplateByName(ctx context.Context, name string, companyID *int64) (*model.EmailTemplate, error)
	TouchTemplateUsage(ctx context.Context, id int64) error

	CreateEmail(ctx context.Context, e *model.Email) error
	EmailByID(ctx context.Context, id int64) (*model.Email, error)
	UpdateEmail(ctx context.Context, e *model.Email) error
	EmailStats(ctx context.Context, companyID *int64) (*model.EmailStats, error)

	CreateQueueEntry(ctx context.Context, q *model.EmailQueueEntry) error
	DueQueueEntries(ctx context.Context, limit int) ([]*model.EmailQueueEntry, error)
	ClaimQueueEntry(ctx context.Context, id int64, workerID string) (bool, error)
	FinishQueueEntry(ctx context.Context, q *model.EmailQueueEntry) error
}

// Config holds the delivery defaults.
type Config struct {
	FromEmail  string
	FromName   string
	MaxRetries int
	// RetryDelay is a fixed interval, deliberately not exponential.
	RetryDelay time.Duration
}

// Service renders, records and delivers email.
type Service struct {
	store     Store
	transport Transport
	cfg       Config

	// now is swappable for tests.
	now func() time.Time
}

// NewService wires the delivery subsystem.
func NewService(store Store, transport Transport, cfg Config) *Service {
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = 30 * time.Minute
	}
	return &Service{store: store, transport: transport, cfg: cfg, now: time.Now}
}

// SendRequest describes one send. Identical requests produce independent
// Email records: delivery is at-least-once, never deduplicated.
type SendRequest struct {
	Recipient     string
	RecipientName string
	TemplateName  string
	Variables     map[string]any

	Priority    model.EmailPriority
	ScheduledAt *time.Time

	SenderEmail string
	SenderName  string

	CompanyID     *int64
	UserID        *int64
	ApplicationID *int64
	JobID         *int64

	TrackingEnabled bool
}

// Send looks up the active template, renders it, persists an Email record and
// either delivers immediately or queues for the scheduled time.
//
// The Email row is created before the delivery attempt on purpose: a send
// failure leaves a pending/failed record behind, and that partial state is
// exactly what drives the retry state machine.
func (s *Service) Send(ctx context.Context, req SendRequest) (*model.Email, error) {
	tpl, err := s.store.TemplateByName(ctx, req.TemplateName, req.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("looking up template %q: %w", req.TemplateName, err)
	}
	if tpl == nil {
		return nil, fmt.Errorf("template %q: %w", req.TemplateName, fault.ErrTemplateNotFound)
	}

	subject, html, text, err := render(tpl, req.Variables)
	if err != nil {
		return nil, err
	}

	if req.Priority == "" {
		req.Priority = model.PriorityNormal
	}

	email := &model.Email{
		RecipientEmail:  req.Recipient,
		RecipientName:   req.RecipientName,
		SenderEmail:     req.SenderEmail,
		SenderName:      req.SenderName,
		Subject:         subject,
		HTMLContent:     html,
		TextContent:     text,
		TemplateName:    tpl.Name,
		TemplateData:    req.Variables,
		Status:          model.EmailPending,
		Priority:        req.Priority,
		ScheduledAt:     req.ScheduledAt,
		MaxRetries:      s.cfg.MaxRetries,
		CompanyID:       req.CompanyID,
		UserID:          req.UserID,
		ApplicationID:   req.ApplicationID,
		JobID:           req.JobID,
		TrackingEnabled: req.TrackingEnabled,
	}
	if email.SenderEmail == "" {
		email.SenderEmail = s.cfg.FromEmail
	}
	if email.SenderName == "" {
		email.SenderName = s.cfg.FromName
	}
	if req.TrackingEnabled {
		id := uuid.New().String()
		email.TrackingID = &id
	}

	if err := s.store.CreateEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("creating email record: %w", err)
	}

	if err := s.store.TouchTemplateUsage(ctx, tpl.ID); err != nil {
		log.Warn().Err(err).Str("template", tpl.Name).Msg("Failed to bump template usage")
	}

	if req.ScheduledAt != nil && req.ScheduledAt.After(s.now()) {
		entry := &model.EmailQueueEntry{
			EmailID:       email.ID,
			QueueName:     "default",
			PriorityScore: priorityScore(email.Priority),
			ExecuteAfter:  *req.ScheduledAt,
			Status:        model.QueueQueued,
		}
		if err := s.store.CreateQueueEntry(ctx, entry); err != nil {
			return email, fmt.Errorf("queueing email %d: %w", email.ID, err)
		}
		log.Info().Int64("email_id", email.ID).Time("execute_after", *req.ScheduledAt).
			Msg("Email queued for scheduled delivery")
		return email, nil
	}

	return email, s.deliverNow(ctx, email)
}

// deliverNow attempts one delivery and advances the email state machine:
// sent on success; failed then retrying (with a boosted-priority queue entry
// after the fixed delay) while attempts remain; terminal failed once the
// ceiling is reached.
func (s *Service) deliverNow(ctx context.Context, email *model.Email) error {
	msg := &Message{
		FromEmail: email.SenderEmail,
		FromName:  email.SenderName,
		ToEmail:   email.RecipientEmail,
		ToName:    email.RecipientName,
		Subject:   email.Subject,
		Text:      email.TextContent,
		HTML:      email.HTMLContent,
	}
	if email.TrackingID != nil {
		msg.TrackingID = *email.TrackingID
	}

	sendErr := s.transport.Send(ctx, msg)
	if sendErr == nil {
		now := s.now()
		email.Status = model.EmailSent
		email.SentAt = &now
		email.FailedReason = ""
		monitoring.EmailsDelivered.WithLabelValues("sent").Inc()
		if err := s.store.UpdateEmail(ctx, email); err != nil {
			return fmt.Errorf("recording sent email %d: %w", email.ID, err)
		}
		log.Info().Int64("email_id", email.ID).Str("recipient", email.RecipientEmail).
			Msg("Email sent")
		return nil
	}

	email.RetryCount++
	email.FailedReason = sendErr.Error()
	email.Status = model.EmailFailed
	monitoring.EmailsDelivered.WithLabelValues("failed").Inc()

	if email.RetryCount < email.MaxRetries {
		email.Status = model.EmailRetrying
		if err := s.store.UpdateEmail(ctx, email); err != nil {
			return fmt.Errorf("recording failed email %d: %w", email.ID, err)
		}

		entry := &model.EmailQueueEntry{
			EmailID:       email.ID,
			QueueName:     "retry",
			PriorityScore: priorityScore(email.Priority) + retryBoost,
			ExecuteAfter:  s.now().Add(s.cfg.RetryDelay),
			Status:        model.QueueQueued,
		}
		if err := s.store.CreateQueueEntry(ctx, entry); err != nil {
			return fmt.Errorf("scheduling retry for email %d: %w", email.ID, err)
		}
		log.Warn().Err(sendErr).Int64("email_id", email.ID).Int("retry", email.RetryCount).
			Time("retry_at", entry.ExecuteAfter).Msg("Delivery failed, retry scheduled")
		return sendErr
	}

	if err := s.store.UpdateEmail(ctx, email); err != nil {
		return fmt.Errorf("recording failed email %d: %w", email.ID, err)
	}
	monitoring.Alert("email retries exhausted", map[string]string{
		"email_id":  fmt.Sprint(email.ID),
		"recipient": email.RecipientEmail,
	})
	log.Error().Err(sendErr).Int64("email_id", email.ID).
		Msg("Delivery failed terminally")
	return fmt.Errorf("email %d: %w", email.ID, fault.ErrRetryExhausted)
}

// Cancel marks an email cancelled. Queue entries referencing it are skipped
// by subsequent sweeps.
func (s *Service) Cancel(ctx context.Context, emailID int64) error {
	email, err := s.store.EmailByID(ctx, emailID)
	if err != nil {
		return err
	}
	if email == nil {
		return fault.NotFound("email", emailID)
	}
	if !email.Deliverable() {
		return &fault.ValidationError{Field: "status", Reason: fmt.Sprintf("cannot cancel email in state %q", email.Status)}
	}
	email.Status = model.EmailCancelled
	return s.store.UpdateEmail(ctx, email)
}

// ProcessQueue runs one bounded sweep: due entries in (priority desc,
// execute_after asc) order, each claimed atomically before the attempt so
// concurrent sweeps never double-send. One entry's failure never aborts the
// rest of the sweep. Returns the number of entries this sweep claimed.
func (s *Service) ProcessQueue(ctx context.Context, limit int, workerID string) (int, error) {
	start := s.now()
	defer func() {
		monitoring.QueueSweepDuration.Observe(time.Since(start).Seconds())
	}()

	entries, err := s.store.DueQueueEntries(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("selecting due queue entries: %w", err)
	}

	processed := 0
	for _, entry := range entries {
		claimed, err := s.store.ClaimQueueEntry(ctx, entry.ID, workerID)
		if err != nil {
			log.Error().Err(err).Int64("entry_id", entry.ID).Msg("Queue claim failed")
			continue
		}
		if !claimed {
			// Another worker got there first.
			continue
		}
		processed++
		s.processEntry(ctx, entry)
	}
	return processed, nil
}

func (s *Service) processEntry(ctx context.Context, entry *model.EmailQueueEntry) {
	started := s.now()
	finish := func(status model.QueueStatus, errMsg string) {
		now := s.now()
		ms := now.Sub(started).Milliseconds()
		entry.Status = status
		entry.CompletedAt = &now
		entry.ProcessingTimeMs = &ms
		entry.ErrorMessage = errMsg
		if err := s.store.FinishQueueEntry(ctx, entry); err != nil {
			log.Error().Err(err).Int64("entry_id", entry.ID).Msg("Failed to record queue outcome")
		}
		monitoring.QueueEntriesProcessed.WithLabelValues(string(status)).Inc()
	}

	email, err := s.store.EmailByID(ctx, entry.EmailID)
	if err != nil {
		finish(model.QueueFailed, fmt.Sprintf("loading email %d: %v", entry.EmailID, err))
		return
	}
	if email == nil {
		finish(model.QueueFailed, fmt.Sprintf("email %d no longer exists", entry.EmailID))
		return
	}
	if !email.Deliverable() {
		// Cancelled or already resolved elsewhere; the entry is spent.
		log.Info().Int64("entry_id", entry.ID).Int64("email_id", email.ID).
			Str("status", string(email.Status)).Msg("Skipping queue entry, email not deliverable")
		finish(model.QueueCompleted, "")
		return
	}

	if err := s.deliverNow(ctx, email); err != nil {
		// The email's own state machine already advanced; the entry just
		// records its attempt outcome.
		finish(model.QueueFailed, err.Error())
		return
	}
	finish(model.QueueCompleted, "")
}

// Stats returns the read-only delivery aggregate, tenant-scoped when a
// company id is supplied.
func (s *Service) Stats(ctx context.Context, companyID *int64) (*model.EmailStats, error) {
	return s.store.EmailStats(ctx, companyID)
}
