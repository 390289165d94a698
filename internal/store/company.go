package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/meta-portal/meta-service/internal/fault"
	"github.com/meta-portal/meta-service/internal/model"
)

const companyColumns = `id, name, slug, domain, description, industry, website, headquarters, size,
	settings, admin_user_id, encrypted_email, email_nonce, is_active, created_at, updated_at, deleted_at`

func companyKey(id int64) string { return fmt.Sprintf("company:%d", id) }

// cachedCompany is the Redis representation of a company. The contact email
// is cached as its encrypted bytes, never in plaintext, and decrypted again
// on a hit so a cached read carries the same fields as a database read.
type cachedCompany struct {
	model.Company
	EncryptedEmail []byte `json:"encrypted_email,omitempty"`
	EmailNonce     []byte `json:"email_nonce,omitempty"`
}

func (s *Store) cacheCompany(ctx context.Context, c *model.Company) {
	s.cacheSet(ctx, companyKey(c.ID), &cachedCompany{
		Company:        *c,
		EncryptedEmail: c.EncryptedEmail,
		EmailNonce:     c.EmailNonce,
	})
}

// decryptContactEmail fills in the plaintext contact email from the encrypted
// columns. A nil cipher leaves it empty.
func (s *Store) decryptContactEmail(c *model.Company) error {
	if len(c.EncryptedEmail) == 0 || len(c.EmailNonce) == 0 || s.cipher == nil {
		return nil
	}
	contactEmail, err := s.cipher.Decrypt(c.EncryptedEmail, c.EmailNonce)
	if err != nil {
		return err
	}
	c.ContactEmail = contactEmail
	return nil
}

// CreateCompany inserts a new company, encrypting the contact email when a
// cipher is configured.
func (s *Store) CreateCompany(ctx context.Context, c *model.Company) error {
	if c.ContactEmail != "" && s.cipher != nil {
		encrypted, nonce, err := s.cipher.Encrypt(c.ContactEmail)
		if err != nil {
			return err
		}
		c.EncryptedEmail = encrypted
		c.EmailNonce = nonce
	}

	settings, err := jsonb(c.Settings)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO companies (name, slug, domain, description, industry, website, headquarters, size,
			settings, admin_user_id, encrypted_email, email_nonce, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`
	err = s.db.QueryRowContext(ctx, query,
		c.Name, c.Slug, c.Domain, c.Description, c.Industry, c.Website, c.Headquarters, c.Size,
		settings, c.AdminUserID, c.EncryptedEmail, c.EmailNonce, c.IsActive,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return err
	}

	s.cacheDel(ctx, companyKey(c.ID))
	return nil
}

func (s *Store) scanCompany(row *sql.Row) (*model.Company, error) {
	c := &model.Company{}
	var settings []byte
	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Domain, &c.Description, &c.Industry, &c.Website,
		&c.Headquarters, &c.Size, &settings, &c.AdminUserID,
		&c.EncryptedEmail, &c.EmailNonce, &c.IsActive, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := scanJSONB(settings, &c.Settings); err != nil {
		return nil, err
	}
	if err := s.decryptContactEmail(c); err != nil {
		return nil, err
	}
	return c, nil
}

// CompanyByID retrieves a company, cache first. Returns (nil, nil) when absent.
func (s *Store) CompanyByID(ctx context.Context, id int64) (*model.Company, error) {
	cached := &cachedCompany{}
	if s.cacheGet(ctx, companyKey(id), cached) {
		c := cached.Company
		c.EncryptedEmail = cached.EncryptedEmail
		c.EmailNonce = cached.EmailNonce
		if err := s.decryptContactEmail(&c); err != nil {
			return nil, err
		}
		return &c, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM companies WHERE id = $1 AND deleted_at IS NULL`, companyColumns)
	c, err := s.scanCompany(s.db.QueryRowContext(ctx, query, id))
	if err != nil || c == nil {
		return c, err
	}

	s.cacheCompany(ctx, c)
	return c, nil
}

// CompanyBySlug retrieves a company by its unique slug.
func (s *Store) CompanyBySlug(ctx context.Context, slug string) (*model.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies WHERE slug = $1 AND deleted_at IS NULL`, companyColumns)
	return s.scanCompany(s.db.QueryRowContext(ctx, query, slug))
}

// ListCompanies returns every live company, oldest first. Super-admin only;
// the service layer enforces that.
func (s *Store) ListCompanies(ctx context.Context) ([]*model.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies WHERE deleted_at IS NULL ORDER BY id`, companyColumns)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []*model.Company
	for rows.Next() {
		c := &model.Company{}
		var settings []byte
		err := rows.Scan(
			&c.ID, &c.Name, &c.Slug, &c.Domain, &c.Description, &c.Industry, &c.Website,
			&c.Headquarters, &c.Size, &settings, &c.AdminUserID,
			&c.EncryptedEmail, &c.EmailNonce, &c.IsActive, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := scanJSONB(settings, &c.Settings); err != nil {
			return nil, err
		}
		if err := s.decryptContactEmail(c); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// UpdateCompany updates mutable company fields and invalidates the cache.
func (s *Store) UpdateCompany(ctx context.Context, c *model.Company) error {
	if c.ContactEmail != "" && s.cipher != nil {
		encrypted, nonce, err := s.cipher.Encrypt(c.ContactEmail)
		if err != nil {
			return err
		}
		c.EncryptedEmail = encrypted
		c.EmailNonce = nonce
	}

	settings, err := jsonb(c.Settings)
	if err != nil {
		return err
	}

	query := `
		UPDATE companies
		SET name = $2, slug = $3, domain = $4, description = $5, industry = $6, website = $7,
			headquarters = $8, size = $9, settings = $10, admin_user_id = $11,
			encrypted_email = $12, email_nonce = $13, is_active = $14, updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`
	err = s.db.QueryRowContext(ctx, query,
		c.ID, c.Name, c.Slug, c.Domain, c.Description, c.Industry, c.Website,
		c.Headquarters, c.Size, settings, c.AdminUserID,
		c.EncryptedEmail, c.EmailNonce, c.IsActive,
	).Scan(&c.UpdatedAt)
	if err == sql.ErrNoRows {
		return fault.NotFound("company", c.ID)
	}
	if err != nil {
		return err
	}

	s.cacheDel(ctx, companyKey(c.ID))
	return nil
}

// DeleteCompany performs a soft delete.
func (s *Store) DeleteCompany(ctx context.Context, id int64) error {
	query := `
		UPDATE companies
		SET deleted_at = now(), updated_at = now()
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fault.NotFound("company", id)
	}

	s.cacheDel(ctx, companyKey(id))
	return nil
}

// CompanySummary aggregates the per-company dashboard counts.
func (s *Store) CompanySummary(ctx context.Context, companyID int64) (*model.CompanySummary, error) {
	company, err := s.CompanyByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fault.NotFound("company", companyID)
	}

	summary := &model.CompanySummary{CompanyID: companyID, CompanyName: company.Name}
	query := `
		SELECT
			(SELECT count(*) FROM users WHERE company_id = $1),
			(SELECT count(*) FROM jobs WHERE company_id = $1),
			(SELECT count(*) FROM jobs WHERE company_id = $1 AND is_active),
			(SELECT count(*) FROM applications WHERE company_id = $1)
	`
	err = s.db.QueryRowContext(ctx, query, companyID).Scan(
		&summary.UserCount, &summary.JobCount, &summary.ActiveJobCount, &summary.ApplicationCount,
	)
	if err != nil {
		return nil, err
	}
	return summary, nil
}
