package model

import "time"

// Job represents the jobs table. Owned exclusively by one company.
type Job struct {
	ID        int64  `json:"id"`
	CompanyID *int64 `json:"company_id,omitempty"`

	Title           string `json:"title"`
	Department      string `json:"department,omitempty"`
	Location        string `json:"location"`
	JobType         string `json:"job_type"`
	ExperienceLevel string `json:"experience_level,omitempty"`

	SalaryMin *int64 `json:"salary_min,omitempty"`
	SalaryMax *int64 `json:"salary_max,omitempty"`

	Description  string `json:"description"`
	Requirements string `json:"requirements,omitempty"`

	IsActive bool      `json:"is_active"`
	PostedAt time.Time `json:"posted_at"`
}
