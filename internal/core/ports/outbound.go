package ports

import (
	"context"
	"io"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
)

// UploadTransport performs the single outbound POST of a submission.
// A non-nil error means no HTTP response was received.
type UploadTransport interface {
	Upload(ctx context.Context, file domain.SelectedFile) (*domain.UploadResponse, error)
}

// UploadRegistry persists upload records and detects duplicate checksums.
type UploadRegistry interface {
	Register(ctx context.Context, record *domain.UploadRecord) error
	GetByID(ctx context.Context, id string) (*domain.UploadRecord, error)
	MarkProcessed(ctx context.Context, id string, pages int) error
	MarkFailed(ctx context.Context, id string, errMessage string) error
}

// ObjectStorage stores accepted exam files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// PDFInspector checks that a blob is a readable PDF and counts its pages.
type PDFInspector interface {
	PageCount(data io.ReaderAt, size int64) (int, error)
}

// UploadEvents publishes and consumes "upload accepted" events.
type UploadEvents interface {
	PublishUploadAccepted(ctx context.Context, uploadID string) error
	SubscribeUploadAccepted(ctx context.Context, handler func(context.Context, string) error) error
}
