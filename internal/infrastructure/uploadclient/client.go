package uploadclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
)

// FileField is the multipart form field carrying the exam file.
const FileField = "file"

const maxResponseBody = 64 << 10

type Options struct {
	// Timeout bounds a whole request. Zero leaves the transport default.
	Timeout    time.Duration
	HTTPClient *http.Client
	UserAgent  string
}

type Client struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
}

func New(endpoint string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = "exam-lab-uploader"
	}
	return &Client{
		endpoint:   strings.TrimSpace(endpoint),
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

// Upload posts file as a single multipart part. A returned error means no
// HTTP response was received; any response, whatever its status, is returned
// as an UploadResponse.
func (c *Client) Upload(ctx context.Context, file domain.SelectedFile) (*domain.UploadResponse, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("upload endpoint is not configured")
	}
	return c.postMultipart(ctx, file)
}
