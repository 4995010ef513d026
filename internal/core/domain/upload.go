package domain

import "time"

type UploadStatus string

const (
	UploadStatusUploaded  UploadStatus = "uploaded"
	UploadStatusProcessed UploadStatus = "processed"
	UploadStatusFailed    UploadStatus = "failed"
)

// UploadRecord is the lab server's view of an accepted exam file.
type UploadRecord struct {
	ID          string       `json:"id"`
	Filename    string       `json:"filename"`
	MimeType    string       `json:"mime_type"`
	Checksum    string       `json:"checksum"`
	StoragePath string       `json:"storage_path"`
	SizeBytes   int64        `json:"size_bytes"`
	Pages       int          `json:"pages"`
	Status      UploadStatus `json:"status"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
