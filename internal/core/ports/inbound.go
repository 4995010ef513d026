package ports

import (
	"context"
	"io"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
)

// Submitter is the inbound contract the presentation layer drives.
type Submitter interface {
	SelectFile(file domain.SelectedFile)
	Submit(ctx context.Context) domain.Outcome
	Outcome() (domain.Outcome, bool)
}

// UploadIngestor is the inbound contract for accepting exam files on the lab server.
type UploadIngestor interface {
	Ingest(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.UploadRecord, error)
}

// UploadReader is the inbound read model for upload records.
type UploadReader interface {
	GetByID(ctx context.Context, id string) (*domain.UploadRecord, error)
}

// UploadProcessor is the inbound contract for asynchronous upload processing.
type UploadProcessor interface {
	ProcessByID(ctx context.Context, uploadID string) error
}
