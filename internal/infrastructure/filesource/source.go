// Package filesource turns local paths into selectable exam files.
package filesource

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
)

const fallbackMIMEType = "application/octet-stream"

// Select stats path and returns a SelectedFile that opens it lazily.
func Select(path string) (domain.SelectedFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return domain.SelectedFile{}, domain.WrapError(domain.ErrInvalidInput, "select file", errors.New("path is empty"))
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.SelectedFile{}, fmt.Errorf("select file: %w", err)
	}
	if info.IsDir() {
		return domain.SelectedFile{}, domain.WrapError(domain.ErrInvalidInput, "select file", fmt.Errorf("%s is a directory", path))
	}

	mimeType, err := detectMIMEType(path)
	if err != nil {
		return domain.SelectedFile{}, err
	}

	return domain.NewSelectedFile(filepath.Base(path), mimeType, info.Size(), func() (io.ReadCloser, error) {
		return os.Open(path)
	}), nil
}

// IsPDFHint reports whether the file claims to be a PDF.
func IsPDFHint(file domain.SelectedFile) bool {
	mediaType, _, err := mime.ParseMediaType(file.MIMEType)
	if err != nil {
		return false
	}
	return mediaType == domain.MIMETypePDF
}

func detectMIMEType(path string) (string, error) {
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); byExt != "" {
		mediaType, _, err := mime.ParseMediaType(byExt)
		if err == nil {
			return mediaType, nil
		}
	}

	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect mime type: %w", err)
	}
	mediaType, _, err := mime.ParseMediaType(detected.String())
	if err != nil || mediaType == "" {
		return fallbackMIMEType, nil
	}
	return mediaType, nil
}
