package model

import "time"

// User represents the users table.
type User struct {
	ID int64 `json:"id"`

	Email string `json:"email"`
	// Opaque credential hash. Hashing and verification happen in the auth
	// gateway, this service only stores and compares nothing.
	CredentialHash string `json:"-"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Phone          string `json:"phone"`

	// Nil company id plus the admin flag marks a super admin with
	// unrestricted access across tenants.
	CompanyID *int64 `json:"company_id,omitempty"`
	IsAdmin   bool   `json:"is_admin"`
	IsActive  bool   `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsSuperAdmin reports whether the user is the cross-tenant administrator.
func (u *User) IsSuperAdmin() bool {
	return u.IsAdmin && u.CompanyID == nil
}
