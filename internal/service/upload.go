package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/meta-portal/meta-service/internal/fault"
	"github.com/meta-portal/meta-service/internal/model"
	"github.com/meta-portal/meta-service/internal/tenant"
)

// resumeContentTypes maps the accepted resume extensions to the content type
// recorded with the upload.
var resumeContentTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
}

// UploadService stores resume files on disk and records their metadata.
type UploadService struct {
	store    Store
	dir      string
	maxBytes int64
}

func NewUploadService(store Store, dir string, maxBytes int64) *UploadService {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &UploadService{store: store, dir: dir, maxBytes: maxBytes}
}

// UploadResume validates, stores and records one resume file for the user,
// and queues it for parsing. Files land under
// <dir>/resumes/<company>/<user>/<uuid><ext>.
func (s *UploadService) UploadResume(ctx context.Context, tc tenant.Context, user *model.User, filename string, r io.Reader) (*model.FileUpload, error) {
	if user == nil {
		return nil, fault.Forbidden("upload a resume")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := resumeContentTypes[ext]
	if !ok {
		return nil, &fault.ValidationError{
			Field:   "filename",
			Reason:  fmt.Sprintf("unsupported file type %q", ext),
			Allowed: []string{".pdf", ".doc", ".docx", ".txt"},
		}
	}

	data, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, &fault.ValidationError{
			Field:  "file",
			Reason: fmt.Sprintf("exceeds the %d byte limit", s.maxBytes),
		}
	}
	if len(data) == 0 {
		return nil, &fault.ValidationError{Field: "file", Reason: "is empty"}
	}

	sum := sha256.Sum256(data)
	stored := uuid.New().String() + ext

	companySeg := "global"
	if user.CompanyID != nil {
		companySeg = fmt.Sprint(*user.CompanyID)
	}
	relPath := filepath.Join("resumes", companySeg, fmt.Sprint(user.ID), stored)
	absPath := filepath.Join(s.dir, relPath)

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}
	if err := os.WriteFile(absPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing upload: %w", err)
	}

	upload := &model.FileUpload{
		UserID:           user.ID,
		OriginalFilename: filepath.Base(filename),
		StoredFilename:   stored,
		StoragePath:      relPath,
		FileType:         strings.TrimPrefix(ext, "."),
		ContentType:      contentType,
		SizeBytes:        int64(len(data)),
		SHA256:           hex.EncodeToString(sum[:]),
		Status:           model.UploadStored,
	}
	tenant.AssignOnCreate(upload, tc, nil)
	if upload.CompanyID == nil {
		upload.CompanyID = user.CompanyID
	}
	if err := s.store.CreateFileUpload(ctx, upload); err != nil {
		if rmErr := os.Remove(absPath); rmErr != nil {
			log.Warn().Err(rmErr).Str("path", absPath).Msg("Failed to remove orphaned upload")
		}
		return nil, fmt.Errorf("recording upload: %w", err)
	}

	resume := &model.Resume{
		FileUploadID: upload.ID,
		UserID:       user.ID,
		CompanyID:    upload.CompanyID,
		ParseStatus:  model.ParseQueued,
	}
	if err := s.store.CreateResume(ctx, resume); err != nil {
		log.Warn().Err(err).Int64("upload_id", upload.ID).Msg("Failed to queue resume for parsing")
	}

	log.Info().Int64("upload_id", upload.ID).Int64("user_id", user.ID).
		Str("file", upload.OriginalFilename).Int64("bytes", upload.SizeBytes).
		Msg("Resume uploaded")
	return upload, nil
}

// Get returns upload metadata, tenant rules applied.
func (s *UploadService) Get(ctx context.Context, tc tenant.Context, id int64) (*model.FileUpload, error) {
	f, err := s.store.FileUploadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, fault.NotFound("file upload", id)
	}
	if err := tenant.Authorize(tc, f); err != nil {
		return nil, fault.NotFound("file upload", id)
	}
	return f, nil
}

// Files lists a user's uploads, tenant-scoped.
func (s *UploadService) Files(ctx context.Context, tc tenant.Context, userID int64) ([]*model.FileUpload, error) {
	return s.store.ListUserFiles(ctx, tc, userID)
}

// Delete marks an upload deleted and removes the file from disk. The row
// survives for audit; only the bytes go away.
func (s *UploadService) Delete(ctx context.Context, tc tenant.Context, id int64) error {
	f, err := s.Get(ctx, tc, id)
	if err != nil {
		return err
	}
	if err := s.store.SetUploadStatus(ctx, id, model.UploadDeleted); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, f.StoragePath)); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", f.StoragePath).Msg("Failed to remove deleted upload from disk")
	}
	return nil
}
