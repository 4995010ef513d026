package usecase

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
	"github.com/kirillkom/exam-lab-uploader/internal/core/ports"
)

var _ ports.Submitter = (*UploadController)(nil)

type UploadController struct {
	state     *SubmissionState
	transport ports.UploadTransport
	logger    *slog.Logger
}

func NewUploadController(transport ports.UploadTransport, logger *slog.Logger) *UploadController {
	if logger == nil {
		logger = slog.Default()
	}
	return &UploadController{
		state:     NewSubmissionState(),
		transport: transport,
		logger:    logger,
	}
}

func (c *UploadController) SelectFile(file domain.SelectedFile) {
	c.state.SetFile(file)
}

func (c *UploadController) Outcome() (domain.Outcome, bool) {
	return c.state.Outcome()
}

func (c *UploadController) Snapshot() SubmissionSnapshot {
	return c.state.Snapshot()
}

// Submit runs one submission attempt and returns its outcome. The outcome is
// also written to the state unless a newer attempt started in the meantime.
func (c *UploadController) Submit(ctx context.Context) domain.Outcome {
	generation := c.state.Begin()

	file, ok := c.state.File()
	if !ok {
		outcome := domain.NoFileSelected()
		c.complete(generation, outcome, 0, 0)
		return outcome
	}

	start := time.Now()
	resp, err := c.transport.Upload(ctx, file)

	var outcome domain.Outcome
	status := 0
	switch {
	case err != nil:
		outcome = ClassifyFailure(err)
	case resp == nil:
		outcome = domain.UnknownError(domain.MessageUnknownError)
	default:
		status = resp.StatusCode
		outcome = ClassifyResponse(*resp)
	}
	c.complete(generation, outcome, status, time.Since(start))
	return outcome
}

func (c *UploadController) complete(generation uint64, outcome domain.Outcome, status int, elapsed time.Duration) {
	applied := c.state.Complete(generation, outcome)

	attrs := []any{
		"category", string(outcome.Category),
		"status", status,
		"generation", generation,
		"stale", !applied,
		"duration_ms", float64(elapsed.Microseconds()) / 1000.0,
	}
	switch outcome.Category {
	case domain.CategorySuccess, domain.CategoryNoFileSelected:
		c.logger.Info("submission_outcome", attrs...)
	case domain.CategoryDuplicate, domain.CategoryValidationWarning:
		c.logger.Warn("submission_outcome", attrs...)
	default:
		c.logger.Error("submission_outcome", append(attrs, "text", outcome.Text)...)
	}
}

// ClassifyResponse maps a received HTTP response to an outcome.
func ClassifyResponse(resp domain.UploadResponse) domain.Outcome {
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return domain.Success(resp.Body.MessageOr(domain.MessageUploaded))
	case resp.StatusCode == http.StatusConflict:
		return domain.Duplicate(domain.MessageDuplicated)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return domain.ServerError(resp.Body.MessageOr(domain.MessageUploadFailed))
	default:
		return domain.ServerError(domain.MessageUnexpected)
	}
}

// ClassifyFailure maps a failure that produced no HTTP response.
func ClassifyFailure(err error) domain.Outcome {
	if err == nil {
		return domain.UnknownError(domain.MessageUnknownError)
	}
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = domain.MessageUnknownError
	}
	return domain.UnknownError(msg)
}
