package httpadapter

import (
	"net/http"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrDuplicate):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case domain.IsKind(err, domain.ErrUploadNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func uploadResult(err error) string {
	switch mapErrorToHTTPStatus(err) {
	case http.StatusConflict:
		return "duplicate"
	case http.StatusUnprocessableEntity:
		return "invalid"
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	default:
		return "error"
	}
}

// publicMessage keeps internal error chains out of responses for 5xx.
func publicMessage(status int, err error) string {
	switch status {
	case http.StatusConflict:
		return "duplicate upload"
	case http.StatusServiceUnavailable:
		return "upload service temporarily unavailable"
	case http.StatusInternalServerError:
		return "internal error"
	default:
		return err.Error()
	}
}
