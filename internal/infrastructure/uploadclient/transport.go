package uploadclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/kirillkom/exam-lab-uploader/internal/core/domain"
)

func (c *Client) postMultipart(ctx context.Context, file domain.SelectedFile) (*domain.UploadResponse, error) {
	body, contentType, err := encodeFile(file)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return &domain.UploadResponse{
		StatusCode: resp.StatusCode,
		Body:       decodeBody(resp.Body),
	}, nil
}

// encodeFile reads the selected blob once and builds the multipart body.
func encodeFile(file domain.SelectedFile) (*bytes.Buffer, string, error) {
	src, err := file.Open()
	if err != nil {
		return nil, "", fmt.Errorf("open selected file: %w", err)
	}
	defer src.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, FileField, partFilename(file.Name)))
	mimeType := strings.TrimSpace(file.MIMEType)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header.Set("Content-Type", mimeType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create multipart part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("read selected file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}

func partFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return "file.pdf"
	}
	return base
}

// decodeBody extracts the optional "message" field. Anything that is not a
// JSON object with a string message yields an empty body.
func decodeBody(r io.Reader) domain.ResponseBody {
	raw, err := io.ReadAll(io.LimitReader(r, maxResponseBody))
	if err != nil || len(bytes.TrimSpace(raw)) == 0 {
		return domain.ResponseBody{}
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.ResponseBody{}
	}
	field, ok := payload["message"]
	if !ok {
		return domain.ResponseBody{}
	}
	var message string
	if err := json.Unmarshal(field, &message); err != nil {
		return domain.ResponseBody{}
	}
	return domain.ResponseBody{Message: &message}
}
