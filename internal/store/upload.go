package store

import (
	"context"
	"database/sql"

	"github.com/meta-portal/meta-service/internal/fault"
	"github.com/meta-portal/meta-service/internal/model"
	"github.com/meta-portal/meta-service/internal/tenant"
)

const uploadColumns = `id, user_id, company_id, original_filename, stored_filename, storage_path,
	file_type, content_type, size_bytes, sha256, status, created_at, updated_at`

// CreateFileUpload inserts upload metadata for a stored file.
func (s *Store) CreateFileUpload(ctx context.Context, f *model.FileUpload) error {
	query := `
		INSERT INTO file_uploads (user_id, company_id, original_filename, stored_filename, storage_path,
			file_type, content_type, size_bytes, sha256, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`
	return s.db.QueryRowContext(ctx, query,
		f.UserID, f.CompanyID, f.OriginalFilename, f.StoredFilename, f.StoragePath,
		f.FileType, f.ContentType, f.SizeBytes, f.SHA256, f.Status,
	).Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt)
}

// FileUploadByID retrieves upload metadata by primary key.
func (s *Store) FileUploadByID(ctx context.Context, id int64) (*model.FileUpload, error) {
	query := `SELECT ` + uploadColumns + ` FROM file_uploads WHERE id = $1 AND status <> 'deleted'`
	f := &model.FileUpload{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&f.ID, &f.UserID, &f.CompanyID, &f.OriginalFilename, &f.StoredFilename,
		&f.StoragePath, &f.FileType, &f.ContentType, &f.SizeBytes, &f.SHA256,
		&f.Status, &f.CreatedAt, &f.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ListUserFiles returns a user's uploads, tenant-scoped.
func (s *Store) ListUserFiles(ctx context.Context, tc tenant.Context, userID int64) ([]*model.FileUpload, error) {
	query := `SELECT ` + uploadColumns + ` FROM file_uploads WHERE user_id = $1 AND status <> 'deleted'`
	args := []any{userID}
	clause, scopeArgs := tenant.Scope(tc, "company_id", len(args)+1)
	query += clause
	args = append(args, scopeArgs...)
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*model.FileUpload
	for rows.Next() {
		f := &model.FileUpload{}
		err := rows.Scan(
			&f.ID, &f.UserID, &f.CompanyID, &f.OriginalFilename, &f.StoredFilename,
			&f.StoragePath, &f.FileType, &f.ContentType, &f.SizeBytes, &f.SHA256,
			&f.Status, &f.CreatedAt, &f.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// SetUploadStatus flips an upload's status (stored, failed, deleted).
func (s *Store) SetUploadStatus(ctx context.Context, id int64, status model.UploadStatus) error {
	query := `UPDATE file_uploads SET status = $2, updated_at = now() WHERE id = $1`
	result, err := s.db.ExecContext(ctx, query, id, status)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fault.NotFound("file upload", id)
	}
	return nil
}

// CreateResume inserts a resume record for an upload.
func (s *Store) CreateResume(ctx context.Context, r *model.Resume) error {
	data, err := jsonb(r.ParsedData)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO resumes (file_upload_id, user_id, company_id, parse_status, parsed_data, parse_error)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return s.db.QueryRowContext(ctx, query,
		r.FileUploadID, r.UserID, r.CompanyID, r.ParseStatus, data, r.ParseError,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
}

// ResumeByUpload retrieves the resume record for an upload.
func (s *Store) ResumeByUpload(ctx context.Context, fileUploadID int64) (*model.Resume, error) {
	query := `
		SELECT id, file_upload_id, user_id, company_id, parse_status, parsed_data, parse_error,
			created_at, updated_at
		FROM resumes WHERE file_upload_id = $1
	`
	r := &model.Resume{}
	var data []byte
	err := s.db.QueryRowContext(ctx, query, fileUploadID).Scan(
		&r.ID, &r.FileUploadID, &r.UserID, &r.CompanyID, &r.ParseStatus, &data,
		&r.ParseError, &r.CreatedAt, &r.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := scanJSONB(data, &r.ParsedData); err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateResumeParse records a parse outcome.
func (s *Store) UpdateResumeParse(ctx context.Context, r *model.Resume) error {
	data, err := jsonb(r.ParsedData)
	if err != nil {
		return err
	}

	query := `
		UPDATE resumes
		SET parse_status = $2, parsed_data = $3, parse_error = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at
	`
	return s.db.QueryRowContext(ctx, query, r.ID, r.ParseStatus, data, r.ParseError).Scan(&r.UpdatedAt)
}
