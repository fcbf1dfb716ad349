// Package collaborators provides HTTP clients for the services the builder
// cooperates with: the media service that hosts uploaded attachments and the
// user directory that resolves conversation assignees.
package collaborators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultTimeoutSeconds = 30

// Media describes an uploaded attachment as the media service reports it.
type Media struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	MediaType string `json:"mediaType"`
	FileName  string `json:"fileName"`
	SizeBytes int64  `json:"sizeBytes"`
}

// MediaUploader uploads attachments referenced by action node configs.
type MediaUploader struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewMediaUploader creates a media service client.
func NewMediaUploader(baseURL string, logger *slog.Logger) *MediaUploader {
	return &MediaUploader{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeoutSeconds * time.Second},
		logger:  logger,
	}
}

// Upload sends the attachment as multipart form data and returns the hosted
// media record. The returned URL is what action configs store as mediaUrl.
func (m *MediaUploader) Upload(ctx context.Context, fileName, mediaType string, content io.Reader) (*Media, error) {
	var body bytes.Buffer

	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read attachment content: %w", err)
	}

	if err := writer.WriteField("mediaType", mediaType); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/media", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			m.logger.WarnContext(ctx, "failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media service returned status %d", resp.StatusCode)
	}

	var media Media
	if err := json.NewDecoder(resp.Body).Decode(&media); err != nil {
		return nil, fmt.Errorf("failed to decode media response: %w", err)
	}

	return &media, nil
}
