package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
)

type registryFake struct {
	mu          sync.Mutex
	records     map[string]*domain.UploadRecord
	registerErr error
	processed   map[string]int
	failed      map[string]string
}

func newRegistryFake() *registryFake {
	return &registryFake{
		records:   map[string]*domain.UploadRecord{},
		processed: map[string]int{},
		failed:    map[string]string{},
	}
}

func (f *registryFake) Register(_ context.Context, record *domain.UploadRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return f.registerErr
	}
	copyRecord := *record
	f.records[record.ID] = &copyRecord
	return nil
}

func (f *registryFake) GetByID(_ context.Context, id string) (*domain.UploadRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[id]
	if !ok {
		return nil, domain.WrapError(domain.ErrUploadNotFound, "get upload", errors.New(id))
	}
	copyRecord := *record
	return &copyRecord, nil
}

func (f *registryFake) MarkProcessed(_ context.Context, id string, pages int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed[id] = pages
	return nil
}

func (f *registryFake) MarkFailed(_ context.Context, id string, errMessage string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[id] = errMessage
	return nil
}

type storageFake struct {
	saved   map[string][]byte
	saveErr error
}

func newStorageFake() *storageFake {
	return &storageFake{saved: map[string][]byte{}}
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.saved[key] = raw
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := f.saved[key]
	if !ok {
		return nil, errors.New("open file: not found")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

type inspectorFake struct {
	pages int
	err   error
}

func (f inspectorFake) PageCount(io.ReaderAt, int64) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.pages, nil
}

type eventsFake struct {
	published []string
	err       error
}

func (f *eventsFake) PublishUploadAccepted(_ context.Context, uploadID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, uploadID)
	return nil
}

func (f *eventsFake) SubscribeUploadAccepted(context.Context, func(context.Context, string) error) error {
	return errors.New("not implemented")
}
