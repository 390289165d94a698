package model

// TenantScoped is implemented by every entity that carries a company id.
// Declaring the capability at compile time keeps "is this row tenant-scoped"
// out of runtime reflection: an entity type that does not implement it is
// visibly global, and the isolation layer simply cannot be asked to filter it.
//
// A nil company id on a scoped entity means the row is global (reserved for
// super-admin owned rows such as system email templates).
type TenantScoped interface {
	TenantID() *int64
	SetTenantID(id *int64)
}

func (u *User) TenantID() *int64 { return u.CompanyID }

func (u *User) SetTenantID(id *int64) { u.CompanyID = id }

func (j *Job) TenantID() *int64 { return j.CompanyID }

func (j *Job) SetTenantID(id *int64) { j.CompanyID = id }

func (a *Application) TenantID() *int64 { return a.CompanyID }

func (a *Application) SetTenantID(id *int64) { a.CompanyID = id }

func (e *Email) TenantID() *int64 { return e.CompanyID }

func (e *Email) SetTenantID(id *int64) { e.CompanyID = id }

func (t *EmailTemplate) TenantID() *int64 { return t.CompanyID }

func (t *EmailTemplate) SetTenantID(id *int64) { t.CompanyID = id }

func (f *FileUpload) TenantID() *int64 { return f.CompanyID }

func (f *FileUpload) SetTenantID(id *int64) { f.CompanyID = id }

func (r *Resume) TenantID() *int64 { return r.CompanyID }

func (r *Resume) SetTenantID(id *int64) { r.CompanyID = id }
