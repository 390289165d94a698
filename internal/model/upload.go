package model

import "time"

// Upload and parse states for the resume subsystem.
type UploadStatus string

const (
	UploadPending UploadStatus = "pending"
	UploadStored  UploadStatus = "stored"
	UploadFailed  UploadStatus = "failed"
	UploadDeleted UploadStatus = "deleted"
)

type ParseStatus string

const (
	ParseQueued    ParseStatus = "queued"
	ParseCompleted ParseStatus = "completed"
	ParseFailed    ParseStatus = "failed"
)

// FileUpload represents the file_uploads table: metadata for one stored file.
type FileUpload struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	CompanyID *int64 `json:"company_id,omitempty"`

	OriginalFilename string `json:"original_filename"`
	StoredFilename   string `json:"stored_filename"`
	StoragePath      string `json:"storage_path"`
	FileType         string `json:"file_type"`
	ContentType      string `json:"content_type"`
	SizeBytes        int64  `json:"size_bytes"`
	SHA256           string `json:"sha256"`

	Status UploadStatus `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Resume represents the resumes table: one parsed-resume record per upload.
type Resume struct {
	ID           int64  `json:"id"`
	FileUploadID int64  `json:"file_upload_id"`
	UserID       int64  `json:"user_id"`
	CompanyID    *int64 `json:"company_id,omitempty"`

	ParseStatus ParseStatus    `json:"parse_status"`
	ParsedData  map[string]any `json:"parsed_data,omitempty"`
	ParseError  string         `json:"parse_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
