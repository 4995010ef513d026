package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
)

// UploadRegistry keeps upload records in process memory. It is used when no
// Postgres DSN is configured.
type UploadRegistry struct {
	mu      sync.RWMutex
	records map[string]domain.UploadRecord
	live    map[string]string
}

func NewUploadRegistry() *UploadRegistry {
	return &UploadRegistry{
		records: make(map[string]domain.UploadRecord),
		live:    make(map[string]string),
	}
}

func (r *UploadRegistry) Register(_ context.Context, record *domain.UploadRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.live[record.Checksum]; ok {
		return domain.WrapError(domain.ErrDuplicate, "register upload", fmt.Errorf("checksum=%s id=%s", record.Checksum, existing))
	}
	r.records[record.ID] = *record
	if record.Status != domain.UploadStatusFailed {
		r.live[record.Checksum] = record.ID
	}
	return nil
}

func (r *UploadRegistry) GetByID(_ context.Context, id string) (*domain.UploadRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrUploadNotFound, "get upload", fmt.Errorf("id=%s", id))
	}
	return &record, nil
}

func (r *UploadRegistry) MarkProcessed(_ context.Context, id string, pages int) error {
	return r.update(id, "mark upload processed", func(record *domain.UploadRecord) {
		record.Status = domain.UploadStatusProcessed
		record.Pages = pages
		record.Error = ""
	})
}

func (r *UploadRegistry) MarkFailed(_ context.Context, id string, errMessage string) error {
	return r.update(id, "mark upload failed", func(record *domain.UploadRecord) {
		record.Status = domain.UploadStatusFailed
		record.Error = errMessage
	})
}

func (r *UploadRegistry) update(id, operation string, apply func(*domain.UploadRecord)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.records[id]
	if !ok {
		return domain.WrapError(domain.ErrUploadNotFound, operation, fmt.Errorf("id=%s", id))
	}
	apply(&record)
	record.UpdatedAt = time.Now().UTC()
	r.records[id] = record

	if record.Status == domain.UploadStatusFailed && r.live[record.Checksum] == id {
		delete(r.live, record.Checksum)
	}
	return nil
}
