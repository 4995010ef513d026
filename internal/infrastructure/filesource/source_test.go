package filesource

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
	"github.com/kirillkom/exam-lab-uploader/internal/testutil"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestSelectPDFByExtension(t *testing.T) {
	data := testutil.MinimalPDF(1, "select")
	path := writeFile(t, "exam.pdf", data)

	file, err := Select(path)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if file.Name != "exam.pdf" {
		t.Fatalf("expected name exam.pdf, got %q", file.Name)
	}
	if file.MIMEType != domain.MIMETypePDF || !IsPDFHint(file) {
		t.Fatalf("expected pdf mime type, got %q", file.MIMEType)
	}
	if file.Size != int64(len(data)) {
		t.Fatalf("expected size %d, got %d", len(data), file.Size)
	}

	rc, err := file.Open()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(data) {
		t.Fatalf("expected blob contents to round-trip")
	}
}

func TestSelectSniffsContentWithoutExtension(t *testing.T) {
	path := writeFile(t, "scan", testutil.MinimalPDF(1, "sniff"))

	file, err := Select(path)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !IsPDFHint(file) {
		t.Fatalf("expected sniffed pdf, got %q", file.MIMEType)
	}
}

func TestSelectNonPDFHint(t *testing.T) {
	path := writeFile(t, "notes.txt", []byte("lab notes"))

	file, err := Select(path)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if IsPDFHint(file) {
		t.Fatalf("expected text file not to be hinted as pdf, got %q", file.MIMEType)
	}
}

func TestSelectRejectsDirectoryAndMissingPath(t *testing.T) {
	if _, err := Select(t.TempDir()); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for directory, got %v", err)
	}
	if _, err := Select(filepath.Join(t.TempDir(), "missing.pdf")); err == nil {
		t.Fatalf("expected error for missing file")
	}
	if _, err := Select("  "); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty path, got %v", err)
	}
}

func TestSelectOpenIsLazy(t *testing.T) {
	path := writeFile(t, "exam.pdf", testutil.MinimalPDF(1, "lazy"))
	file, err := Select(path)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := file.Open(); err == nil {
		t.Fatalf("expected open to fail after file removal")
	}
}
