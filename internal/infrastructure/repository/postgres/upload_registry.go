package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
)

type UploadRegistry struct {
	db *sql.DB
}

func NewUploadRegistry(db *sql.DB) *UploadRegistry {
	return &UploadRegistry{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *UploadRegistry) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across labserver/labworker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101901)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS lab_uploads (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	mime_type TEXT NOT NULL,
	checksum TEXT NOT NULL,
	storage_path TEXT NOT NULL,
	size_bytes BIGINT NOT NULL,
	pages INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS uq_lab_uploads_checksum_live ON lab_uploads(checksum) WHERE status <> 'failed';
CREATE INDEX IF NOT EXISTS idx_lab_uploads_created_at ON lab_uploads(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Register inserts record unless a live upload with the same checksum exists.
func (r *UploadRegistry) Register(ctx context.Context, record *domain.UploadRecord) error {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO lab_uploads (
	id, filename, mime_type, checksum, storage_path, size_bytes, pages, status, error_message, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (checksum) WHERE status <> 'failed' DO NOTHING
`,
		record.ID, record.Filename, record.MimeType, record.Checksum, record.StoragePath, record.SizeBytes,
		record.Pages, string(record.Status), record.Error, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert upload: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert upload rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrDuplicate, "register upload", fmt.Errorf("checksum=%s", record.Checksum))
	}
	return nil
}

func (r *UploadRegistry) GetByID(ctx context.Context, id string) (*domain.UploadRecord, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, filename, mime_type, checksum, storage_path, size_bytes, pages, status, error_message, created_at, updated_at
FROM lab_uploads
WHERE id = $1
`, id)

	var record domain.UploadRecord
	var status string
	err := row.Scan(
		&record.ID, &record.Filename, &record.MimeType, &record.Checksum, &record.StoragePath, &record.SizeBytes,
		&record.Pages, &status, &record.Error, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrUploadNotFound, "get upload", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan upload: %w", err)
	}
	record.Status = domain.UploadStatus(status)
	return &record, nil
}

func (r *UploadRegistry) MarkProcessed(ctx context.Context, id string, pages int) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE lab_uploads
SET status = $2, pages = $3, error_message = '', updated_at = $4
WHERE id = $1
`, id, string(domain.UploadStatusProcessed), pages, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark upload processed: %w", err)
	}
	return ensureAffected(res, "mark upload processed", id)
}

func (r *UploadRegistry) MarkFailed(ctx context.Context, id string, errMessage string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE lab_uploads
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, id, string(domain.UploadStatusFailed), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark upload failed: %w", err)
	}
	return ensureAffected(res, "mark upload failed", id)
}

func ensureAffected(res sql.Result, operation, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", operation, err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrUploadNotFound, operation, fmt.Errorf("id=%s", id))
	}
	return nil
}
