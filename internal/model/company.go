package model

import "time"

// Company represents the companies table. Each company is a tenant: it owns
// its users, jobs, applications and emails, and all of those rows carry its
// id as a foreign key.
type Company struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Slug   string  `json:"slug"`
	Domain *string `json:"domain,omitempty"`

	Description  string `json:"description,omitempty"`
	Industry     string `json:"industry,omitempty"`
	Website      string `json:"website,omitempty"`
	Headquarters string `json:"headquarters,omitempty"`
	Size         string `json:"size,omitempty"`

	Settings map[string]any `json:"settings,omitempty"`

	// Primary admin for the company. Nullable: a company may be created
	// before its first admin user exists.
	AdminUserID *int64 `json:"admin_user_id,omitempty"`

	ContactEmail   string `json:"-"` // Plaintext (transient, not stored in DB)
	EncryptedEmail []byte `json:"-"` // Stored in DB
	EmailNonce     []byte `json:"-"` // Stored in DB

	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// CompanySummary holds the per-company dashboard counts.
type CompanySummary struct {
	CompanyID        int64  `json:"company_id"`
	CompanyName      string `json:"company_name"`
	UserCount        int64  `json:"user_count"`
	JobCount         int64  `json:"job_count"`
	ActiveJobCount   int64  `json:"active_job_count"`
	ApplicationCount int64  `json:"application_count"`
}
