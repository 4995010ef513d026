package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
	"github.com/kirillkom/exam-lab-uploader/internal/core/ports"
)

type ProcessUploadUseCase struct {
	registry  ports.UploadRegistry
	storage   ports.ObjectStorage
	inspector ports.PDFInspector
}

func NewProcessUploadUseCase(
	registry ports.UploadRegistry,
	storage ports.ObjectStorage,
	inspector ports.PDFInspector,
) *ProcessUploadUseCase {
	return &ProcessUploadUseCase{
		registry:  registry,
		storage:   storage,
		inspector: inspector,
	}
}

func (uc *ProcessUploadUseCase) ProcessByID(ctx context.Context, uploadID string) error {
	record, err := uc.registry.GetByID(ctx, uploadID)
	if err != nil {
		return fmt.Errorf("fetch upload by id: %w", err)
	}
	// Redelivered events for finished uploads are no-ops. A failed record
	// has released its checksum and must stay out of the live set.
	if record.Status == domain.UploadStatusProcessed || record.Status == domain.UploadStatusFailed {
		return nil
	}

	pages, err := uc.countPages(ctx, record)
	if err != nil {
		if failErr := uc.registry.MarkFailed(ctx, uploadID, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.registry.MarkProcessed(ctx, uploadID, pages); err != nil {
		return fmt.Errorf("set status=processed: %w", err)
	}
	return nil
}

func (uc *ProcessUploadUseCase) countPages(ctx context.Context, record *domain.UploadRecord) (int, error) {
	reader, err := uc.storage.Open(ctx, record.StoragePath)
	if err != nil {
		return 0, fmt.Errorf("open stored upload: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return 0, fmt.Errorf("read stored upload: %w", err)
	}

	pages, err := uc.inspector.PageCount(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return 0, fmt.Errorf("inspect stored upload: %w", err)
	}
	return pages, nil
}
