package memory

import (
	"context"
	"testing"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
)

func TestRegisterDetectsDuplicateChecksum(t *testing.T) {
	registry := NewUploadRegistry()
	ctx := context.Background()

	if err := registry.Register(ctx, &domain.UploadRecord{ID: "a", Checksum: "sum", Status: domain.UploadStatusUploaded}); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	err := registry.Register(ctx, &domain.UploadRecord{ID: "b", Checksum: "sum", Status: domain.UploadStatusUploaded})
	if !domain.IsKind(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestFailedUploadReleasesChecksum(t *testing.T) {
	registry := NewUploadRegistry()
	ctx := context.Background()

	if err := registry.Register(ctx, &domain.UploadRecord{ID: "a", Checksum: "sum", Status: domain.UploadStatusUploaded}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := registry.MarkFailed(ctx, "a", "disk full"); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}
	if err := registry.Register(ctx, &domain.UploadRecord{ID: "b", Checksum: "sum", Status: domain.UploadStatusUploaded}); err != nil {
		t.Fatalf("expected resubmission after failure to succeed, got %v", err)
	}

	failed, err := registry.GetByID(ctx, "a")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if failed.Status != domain.UploadStatusFailed || failed.Error != "disk full" {
		t.Fatalf("unexpected failed record %+v", failed)
	}
}

func TestMarkProcessedRecordsPages(t *testing.T) {
	registry := NewUploadRegistry()
	ctx := context.Background()
	_ = registry.Register(ctx, &domain.UploadRecord{ID: "a", Checksum: "sum", Status: domain.UploadStatusUploaded})

	if err := registry.MarkProcessed(ctx, "a", 5); err != nil {
		t.Fatalf("MarkProcessed() error = %v", err)
	}
	got, _ := registry.GetByID(ctx, "a")
	if got.Status != domain.UploadStatusProcessed || got.Pages != 5 {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestUnknownIDIsNotFound(t *testing.T) {
	registry := NewUploadRegistry()
	if _, err := registry.GetByID(context.Background(), "missing"); !domain.IsKind(err, domain.ErrUploadNotFound) {
		t.Fatalf("expected ErrUploadNotFound, got %v", err)
	}
	if err := registry.MarkProcessed(context.Background(), "missing", 1); !domain.IsKind(err, domain.ErrUploadNotFound) {
		t.Fatalf("expected ErrUploadNotFound, got %v", err)
	}
}
