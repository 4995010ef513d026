package pdfinspect

import (
	"errors"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
)

type Inspector struct{}

func NewInspector() *Inspector {
	return &Inspector{}
}

// PageCount parses the PDF cross-reference table and returns the page count.
// Unreadable or page-less documents are reported as ErrInvalidInput.
func (i *Inspector) PageCount(data io.ReaderAt, size int64) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = 0
			err = domain.WrapError(domain.ErrInvalidInput, "read pdf", fmt.Errorf("malformed document: %v", r))
		}
	}()

	reader, err := pdf.NewReader(data, size)
	if err != nil {
		return 0, domain.WrapError(domain.ErrInvalidInput, "read pdf", err)
	}

	pages = reader.NumPage()
	if pages <= 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "read pdf", errors.New("document has no pages"))
	}
	return pages, nil
}
