package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
)

func newRegistryWithMock(t *testing.T) (*UploadRegistry, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &UploadRegistry{db: db}, mock, func() { _ = db.Close() }
}

func sampleRecord() *domain.UploadRecord {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	return &domain.UploadRecord{
		ID:          "up-1",
		Filename:    "exam.pdf",
		MimeType:    "application/pdf",
		Checksum:    "abc123",
		StoragePath: "up-1_exam.pdf",
		SizeBytes:   42,
		Pages:       2,
		Status:      domain.UploadStatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestRegisterInsertsRecord(t *testing.T) {
	registry, mock, done := newRegistryWithMock(t)
	defer done()

	rec := sampleRecord()
	mock.ExpectExec("INSERT INTO lab_uploads").
		WithArgs(rec.ID, rec.Filename, rec.MimeType, rec.Checksum, rec.StoragePath, rec.SizeBytes,
			rec.Pages, string(rec.Status), "", rec.CreatedAt, rec.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := registry.Register(context.Background(), rec); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRegisterReturnsDuplicateOnChecksumConflict(t *testing.T) {
	registry, mock, done := newRegistryWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO lab_uploads").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := registry.Register(context.Background(), sampleRecord())
	if !domain.IsKind(err, domain.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDReturnsDomainNotFound(t *testing.T) {
	registry, mock, done := newRegistryWithMock(t)
	defer done()

	mock.ExpectQuery("SELECT id, filename, mime_type, checksum").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := registry.GetByID(context.Background(), "missing")
	if !domain.IsKind(err, domain.ErrUploadNotFound) {
		t.Fatalf("expected ErrUploadNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGetByIDScansRecord(t *testing.T) {
	registry, mock, done := newRegistryWithMock(t)
	defer done()

	rec := sampleRecord()
	rows := sqlmock.NewRows([]string{
		"id", "filename", "mime_type", "checksum", "storage_path", "size_bytes", "pages", "status", "error_message", "created_at", "updated_at",
	}).AddRow(rec.ID, rec.Filename, rec.MimeType, rec.Checksum, rec.StoragePath, rec.SizeBytes, rec.Pages, "processed", "", rec.CreatedAt, rec.UpdatedAt)
	mock.ExpectQuery("SELECT id, filename, mime_type, checksum").
		WithArgs("up-1").
		WillReturnRows(rows)

	got, err := registry.GetByID(context.Background(), "up-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != domain.UploadStatusProcessed || got.Checksum != "abc123" || got.Pages != 2 {
		t.Fatalf("unexpected record %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMarkProcessedReturnsNotFoundWhenNoRowsAffected(t *testing.T) {
	registry, mock, done := newRegistryWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE lab_uploads").
		WithArgs("missing", string(domain.UploadStatusProcessed), 4, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := registry.MarkProcessed(context.Background(), "missing", 4)
	if !domain.IsKind(err, domain.ErrUploadNotFound) {
		t.Fatalf("expected ErrUploadNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestMarkFailedUpdatesStatus(t *testing.T) {
	registry, mock, done := newRegistryWithMock(t)
	defer done()

	mock.ExpectExec("UPDATE lab_uploads").
		WithArgs("up-1", string(domain.UploadStatusFailed), "disk full", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := registry.MarkFailed(context.Background(), "up-1", "disk full"); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
