package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/meta-portal/meta-service/internal/fault"
	"github.com/meta-portal/meta-service/internal/model"
)

const templateColumns = `id, name, display_name, description, subject_template, html_content,
	text_content, variables, category, language, company_id, is_system_template,
	is_active, version, usage_count, last_used_at, created_at, updated_at, created_by, updated_by`

func templateKey(name string, companyID *int64) string {
	if companyID == nil {
		return fmt.Sprintf("tmpl:sys:%s", name)
	}
	return fmt.Sprintf("tmpl:%d:%s", *companyID, name)
}

// CreateTemplate inserts a new email template.
func (s *Store) CreateTemplate(ctx context.Context, t *model.EmailTemplate) error {
	variables, err := jsonb(t.Variables)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO email_templates (name, display_name, description, subject_template, html_content,
			text_content, variables, category, language, company_id, is_system_template,
			is_active, version, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`
	err = s.db.QueryRowContext(ctx, query,
		t.Name, t.DisplayName, t.Description, t.SubjectTemplate, t.HTMLContent,
		t.TextContent, variables, t.Category, t.Language, t.CompanyID, t.IsSystemTemplate,
		t.IsActive, t.Version, t.CreatedBy,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return err
	}

	s.cacheDel(ctx, templateKey(t.Name, t.CompanyID))
	return nil
}

func (s *Store) scanTemplate(row *sql.Row) (*model.EmailTemplate, error) {
	t := &model.EmailTemplate{}
	var variables []byte
	err := row.Scan(
		&t.ID, &t.Name, &t.DisplayName, &t.Description, &t.SubjectTemplate, &t.HTMLContent,
		&t.TextContent, &variables, &t.Category, &t.Language, &t.CompanyID, &t.IsSystemTemplate,
		&t.IsActive, &t.Version, &t.UsageCount, &t.LastUsedAt,
		&t.CreatedAt, &t.UpdatedAt, &t.CreatedBy, &t.UpdatedBy,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := scanJSONB(variables, &t.Variables); err != nil {
		return nil, err
	}
	return t, nil
}

// TemplateByName retrieves the active template for a name. A company-specific
// template overrides the system one; companyID nil (or no override found)
// falls back to the system template. Returns (nil, nil) when neither exists.
func (s *Store) TemplateByName(ctx context.Context, name string, companyID *int64) (*model.EmailTemplate, error) {
	if companyID != nil {
		cached := &model.EmailTemplate{}
		if s.cacheGet(ctx, templateKey(name, companyID), cached) {
			return cached, nil
		}
		query := `SELECT ` + templateColumns + ` FROM email_templates
			WHERE name = $1 AND company_id = $2 AND is_active`
		t, err := s.scanTemplate(s.db.QueryRowContext(ctx, query, name, *companyID))
		if err != nil {
			return nil, err
		}
		if t != nil {
			s.cacheSet(ctx, templateKey(name, companyID), t)
			return t, nil
		}
	}

	cached := &model.EmailTemplate{}
	if s.cacheGet(ctx, templateKey(name, nil), cached) {
		return cached, nil
	}
	query := `SELECT ` + templateColumns + ` FROM email_templates
		WHERE name = $1 AND company_id IS NULL AND is_active`
	t, err := s.scanTemplate(s.db.QueryRowContext(ctx, query, name))
	if err != nil || t == nil {
		return t, err
	}
	s.cacheSet(ctx, templateKey(name, nil), t)
	return t, nil
}

// UpdateTemplate updates template content, bumping the version counter and
// invalidating the cache.
func (s *Store) UpdateTemplate(ctx context.Context, t *model.EmailTemplate) error {
	variables, err := jsonb(t.Variables)
	if err != nil {
		return err
	}

	query := `
		UPDATE email_templates
		SET display_name = $2, description = $3, subject_template = $4, html_content = $5,
			text_content = $6, variables = $7, category = $8, language = $9,
			is_active = $10, version = version + 1, updated_by = $11, updated_at = now()
		WHERE id = $1
		RETURNING version, updated_at
	`
	err = s.db.QueryRowContext(ctx, query,
		t.ID, t.DisplayName, t.Description, t.SubjectTemplate, t.HTMLContent,
		t.TextContent, variables, t.Category, t.Language, t.IsActive, t.UpdatedBy,
	).Scan(&t.Version, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return fault.NotFound("email template", t.ID)
	}
	if err != nil {
		return err
	}

	s.cacheDel(ctx, templateKey(t.Name, t.CompanyID))
	return nil
}

// TouchTemplateUsage bumps the usage counter after a successful render.
func (s *Store) TouchTemplateUsage(ctx context.Context, id int64) error {
	query := `UPDATE email_templates SET usage_count = usage_count + 1, last_used_at = now() WHERE id = $1`
	_, err := s.db.ExecContext(ctx, query, id)
	return err
}
