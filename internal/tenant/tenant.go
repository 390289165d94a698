// Package tenant is the data-isolation layer. Every multi-tenant-aware read
// or write passes through one of these primitives instead of re-deriving the
// filtering rules at each call site.
package tenant

import (
	"fmt"

	"github.com/meta-portal/meta-service/internal/fault"
	"github.com/meta-portal/meta-service/internal/model"
)

// Context is the caller's tenant identity, produced once per request from the
// session token and passed explicitly to every data-access call. It is never
// global state.
type Context struct {
	// CompanyID is nil for the super admin and for unauthenticated callers.
	CompanyID    *int64
	IsSuperAdmin bool
}

// System is the unrestricted context used by background workers and seeds.
var System = Context{IsSuperAdmin: true}

// ForCompany returns a regular (non-super-admin) context for one company.
func ForCompany(companyID int64) Context {
	return Context{CompanyID: &companyID}
}

// Unrestricted reports whether the caller may see every tenant's rows:
// admin flag set with no company of their own.
func (c Context) Unrestricted() bool {
	return c.IsSuperAdmin && c.CompanyID == nil
}

// CanAccess reports whether the caller may touch a row carrying the given
// company id. Rows with a nil company id belong to no tenant and are visible
// only to callers who themselves carry no company, mirroring Scope: a
// tenant-bound caller is denied a global row exactly as it is denied another
// tenant's row.
func (c Context) CanAccess(companyID *int64) bool {
	if c.Unrestricted() {
		return true
	}
	if companyID == nil {
		return c.CompanyID == nil
	}
	return c.CompanyID != nil && *c.CompanyID == *companyID
}

// Scope returns a SQL predicate restricting a query to the caller's rows,
// for appending to an existing WHERE clause. arg is the next free $n
// placeholder index. The predicate is empty for an unrestricted super admin.
// A caller with no company sees only global rows (company id IS NULL).
//
// Scope is only ever invoked by repositories of model.TenantScoped entities;
// entity types without the marker never reach it, which makes the "global
// entity" allowance a compile-time decision rather than a silent fallback.
func Scope(c Context, column string, arg int) (string, []any) {
	if c.Unrestricted() {
		return "", nil
	}
	if c.CompanyID == nil {
		return fmt.Sprintf(" AND %s IS NULL", column), nil
	}
	return fmt.Sprintf(" AND %s = $%d", column, arg), []any{*c.CompanyID}
}

// Authorize checks that the caller may access an already-fetched row.
// A cross-tenant row fails with ErrNotFound, not ErrForbidden, so the outcome
// is indistinguishable from the row not existing.
func Authorize(c Context, rec model.TenantScoped) error {
	if rec == nil {
		return fault.ErrNotFound
	}
	if !c.CanAccess(rec.TenantID()) {
		return fault.ErrNotFound
	}
	return nil
}

// AssignOnCreate sets the company id on a new row. An already-set id is never
// overwritten. When a parent is given the new row inherits the parent's
// company (an Application inherits its Job's company, never the applicant's);
// otherwise the caller's own company is used.
func AssignOnCreate(rec model.TenantScoped, c Context, parent model.TenantScoped) {
	if rec.TenantID() != nil {
		return
	}
	if parent != nil {
		if pid := parent.TenantID(); pid != nil {
			id := *pid
			rec.SetTenantID(&id)
			return
		}
		return
	}
	if c.CompanyID != nil {
		id := *c.CompanyID
		rec.SetTenantID(&id)
	}
}

// RequireCompanyAdmin fails with ErrForbidden unless the user is flagged
// admin and belongs to the given company. action describes the attempted
// operation for the error message.
func RequireCompanyAdmin(u *model.User, companyID int64, action string) error {
	if u == nil {
		return fault.NotFound("user", 0)
	}
	if u.IsSuperAdmin() {
		return nil
	}
	if !u.IsAdmin || u.CompanyID == nil || *u.CompanyID != companyID {
		return fault.Forbidden(action)
	}
	return nil
}
