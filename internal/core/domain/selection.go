package domain

import (
	"bytes"
	"errors"
	"io"
)

const MIMETypePDF = "application/pdf"

var errNoContent = errors.New("selected file has no content source")

// SelectedFile is a handle to a user-chosen blob. The blob itself is opened
// lazily so that a selection stays cheap until it is submitted.
type SelectedFile struct {
	Name     string
	MIMEType string
	Size     int64

	open func() (io.ReadCloser, error)
}

func NewSelectedFile(name, mimeType string, size int64, open func() (io.ReadCloser, error)) SelectedFile {
	return SelectedFile{
		Name:     name,
		MIMEType: mimeType,
		Size:     size,
		open:     open,
	}
}

func SelectedFileFromBytes(name, mimeType string, data []byte) SelectedFile {
	raw := append([]byte(nil), data...)
	return NewSelectedFile(name, mimeType, int64(len(raw)), func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(raw)), nil
	})
}

func (f SelectedFile) Open() (io.ReadCloser, error) {
	if f.open == nil {
		return nil, errNoContent
	}
	return f.open()
}

// UploadResponse is whatever came back from the upload endpoint, regardless
// of status.
type UploadResponse struct {
	StatusCode int
	Body       ResponseBody
}

// ResponseBody is the optional JSON body of an upload response. Message is
// nil when the body is empty, not JSON, or has no string "message" field.
type ResponseBody struct {
	Message *string `json:"message,omitempty"`
}

func (b ResponseBody) MessageOr(fallback string) string {
	if b.Message == nil || *b.Message == "" {
		return fallback
	}
	return *b.Message
}
