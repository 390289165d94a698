package model

import "time"

// EmailStatus is the delivery state of an Email record.
type EmailStatus string

const (
	EmailPending   EmailStatus = "pending"
	EmailSent      EmailStatus = "sent"
	EmailFailed    EmailStatus = "failed"
	EmailRetrying  EmailStatus = "retrying"
	EmailCancelled EmailStatus = "cancelled"
)

// EmailPriority orders queue processing. The numeric scores live in the mail
// package; the enum is what rows carry.
type EmailPriority string

const (
	PriorityLow    EmailPriority = "low"
	PriorityNormal EmailPriority = "normal"
	PriorityHigh   EmailPriority = "high"
	PriorityUrgent EmailPriority = "urgent"
)

// Email represents the emails table: one row per delivery attempt chain.
type Email struct {
	ID int64 `json:"id"`

	RecipientEmail string `json:"recipient_email"`
	RecipientName  string `json:"recipient_name,omitempty"`
	SenderEmail    string `json:"sender_email"`
	SenderName     string `json:"sender_name,omitempty"`

	Subject     string `json:"subject"`
	HTMLContent string `json:"html_content,omitempty"`
	TextContent string `json:"text_content,omitempty"`

	TemplateName string         `json:"template_name,omitempty"`
	TemplateData map[string]any `json:"template_data,omitempty"`

	Status   EmailStatus   `json:"status"`
	Priority EmailPriority `json:"priority"`

	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`

	FailedReason string `json:"failed_reason,omitempty"`
	RetryCount   int    `json:"retry_count"`
	MaxRetries   int    `json:"max_retries"`

	CompanyID     *int64 `json:"company_id,omitempty"`
	UserID        *int64 `json:"user_id,omitempty"`
	ApplicationID *int64 `json:"application_id,omitempty"`
	JobID         *int64 `json:"job_id,omitempty"`

	TrackingEnabled bool    `json:"tracking_enabled"`
	TrackingID      *string `json:"tracking_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Deliverable reports whether the queue sweep may still attempt this email.
// Cancelled, sent and terminally failed emails are skipped.
func (e *Email) Deliverable() bool {
	return e.Status == EmailPending || e.Status == EmailRetrying
}

// EmailTemplate represents the email_templates table. System templates
// (nil company id) are shared across tenants; a company template with the
// same name overrides the system one for that company.
type EmailTemplate struct {
	ID int64 `json:"id"`

	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`

	SubjectTemplate string `json:"subject_template"`
	HTMLContent     string `json:"html_content,omitempty"`
	TextContent     string `json:"text_content"`

	// Declared variable names. Missing variables render as empty strings,
	// never as an error.
	Variables []string `json:"variables,omitempty"`
	Category  string   `json:"category,omitempty"`
	Language  string   `json:"language"`

	CompanyID        *int64 `json:"company_id,omitempty"`
	IsSystemTemplate bool   `json:"is_system_template"`

	IsActive bool `json:"is_active"`
	Version  int  `json:"version"`

	UsageCount int64      `json:"usage_count"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy *int64    `json:"created_by,omitempty"`
	UpdatedBy *int64    `json:"updated_by,omitempty"`
}

// QueueStatus is the processing state of a queue entry, independent of the
// referenced email's own status.
type QueueStatus string

const (
	QueueQueued     QueueStatus = "queued"
	QueueProcessing QueueStatus = "processing"
	QueueCompleted  QueueStatus = "completed"
	QueueFailed     QueueStatus = "failed"
)

// EmailQueueEntry represents the email_queue table. One email may accumulate
// several entries across retries.
type EmailQueueEntry struct {
	ID      int64 `json:"id"`
	EmailID int64 `json:"email_id"`

	QueueName     string `json:"queue_name"`
	PriorityScore int    `json:"priority_score"`

	ExecuteAfter time.Time  `json:"execute_after"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`

	Status           QueueStatus `json:"status"`
	WorkerID         string      `json:"worker_id,omitempty"`
	ProcessingTimeMs *int64      `json:"processing_time_ms,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmailPreference represents the email_preferences table: per-user opt-outs
// consulted before category-bearing notification sends.
type EmailPreference struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"user_id"`

	ApplicationConfirmations bool `json:"job_application_confirmations"`
	StatusUpdates            bool `json:"application_status_updates"`
	NewJobNotifications      bool `json:"new_job_notifications"`
	MarketingEmails          bool `json:"marketing_emails"`
	SystemNotifications      bool `json:"system_notifications"`

	DigestFrequency string `json:"digest_frequency"`
	BackupEmail     string `json:"backup_email,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmailStats is the read-only aggregate returned by the delivery subsystem.
type EmailStats struct {
	Total       int64   `json:"total_emails"`
	Sent        int64   `json:"sent_emails"`
	Failed      int64   `json:"failed_emails"`
	Pending     int64   `json:"pending_emails"`
	SuccessRate float64 `json:"success_rate"`
	Last24h     int64   `json:"emails_last_24h"`
	Last7d      int64   `json:"emails_last_7d"`
}
