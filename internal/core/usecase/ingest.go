package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
	"github.com/kirillkom/exam-lab-uploader/internal/core/ports"
)

type IngestUploadUseCase struct {
	registry  ports.UploadRegistry
	storage   ports.ObjectStorage
	inspector ports.PDFInspector
	events    ports.UploadEvents
	maxBytes  int64
}

func NewIngestUploadUseCase(
	registry ports.UploadRegistry,
	storage ports.ObjectStorage,
	inspector ports.PDFInspector,
	events ports.UploadEvents,
	maxBytes int64,
) *IngestUploadUseCase {
	return &IngestUploadUseCase{
		registry:  registry,
		storage:   storage,
		inspector: inspector,
		events:    events,
		maxBytes:  maxBytes,
	}
}

func (uc *IngestUploadUseCase) Ingest(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.UploadRecord, error) {
	raw, err := uc.readBody(body)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest upload", errors.New("empty file"))
	}

	pages, err := uc.inspector.PageCount(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("inspect pdf: %w", err)
	}

	sum := sha256.Sum256(raw)
	id := uuid.NewString()
	now := time.Now().UTC()
	record := &domain.UploadRecord{
		ID:          id,
		Filename:    filename,
		MimeType:    mimeType,
		Checksum:    hex.EncodeToString(sum[:]),
		StoragePath: fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)),
		SizeBytes:   int64(len(raw)),
		Pages:       pages,
		Status:      domain.UploadStatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := uc.registry.Register(ctx, record); err != nil {
		return nil, fmt.Errorf("register upload: %w", err)
	}

	if err := uc.storage.Save(ctx, record.StoragePath, bytes.NewReader(raw)); err != nil {
		if failErr := uc.registry.MarkFailed(ctx, record.ID, err.Error()); failErr != nil {
			return nil, fmt.Errorf("save to object storage: %w; mark failed: %v", err, failErr)
		}
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	if uc.events != nil {
		// A failed publish releases the checksum so the client can resend.
		if err := uc.events.PublishUploadAccepted(ctx, record.ID); err != nil {
			if failErr := uc.registry.MarkFailed(ctx, record.ID, err.Error()); failErr != nil {
				return nil, fmt.Errorf("publish upload event: %w; mark failed: %v", err, failErr)
			}
			return nil, fmt.Errorf("publish upload event: %w", err)
		}
	}

	return record, nil
}

func (uc *IngestUploadUseCase) readBody(body io.Reader) ([]byte, error) {
	if uc.maxBytes <= 0 {
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		return raw, nil
	}

	raw, err := io.ReadAll(io.LimitReader(body, uc.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(raw)) > uc.maxBytes {
		return nil, domain.WrapError(domain.ErrTooLarge, "ingest upload", fmt.Errorf("limit %d bytes", uc.maxBytes))
	}
	return raw, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == "_" {
		return "exam.pdf"
	}
	return base
}
