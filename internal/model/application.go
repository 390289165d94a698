package model

import "time"

// Application statuses. The set is closed: UpdateStatus rejects anything else
// and reports the allowed values in the error.
const (
	ApplicationSubmitted = "submitted"
	ApplicationInReview  = "in_review"
	ApplicationInterview = "interview"
	ApplicationRejected  = "rejected"
	ApplicationAccepted  = "accepted"
)

// ApplicationStatuses lists every valid application status.
var ApplicationStatuses = []string{
	ApplicationSubmitted,
	ApplicationInReview,
	ApplicationInterview,
	ApplicationRejected,
	ApplicationAccepted,
}

// ValidApplicationStatus reports whether s is a member of the closed set.
func ValidApplicationStatus(s string) bool {
	for _, v := range ApplicationStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Application links a user to a job they applied for. The company id is
// denormalized from the job at creation time so tenant filtering never needs
// a join; it is never the applicant's own company.
type Application struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	JobID     int64  `json:"job_id"`
	CompanyID *int64 `json:"company_id,omitempty"`

	CoverLetter    string `json:"cover_letter"`
	AdditionalInfo string `json:"additional_info,omitempty"`

	Status string `json:"status"`

	AppliedAt time.Time `json:"applied_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
