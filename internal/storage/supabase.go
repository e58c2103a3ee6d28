// internal/storage/supabase.go
package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"interview-backend/internal/common/config"
	httpclient "interview-backend/internal/common/http"
	"interview-backend/internal/common/logger"

	"github.com/google/uuid"
)

// Client uploads resume objects to Supabase Storage over its REST API and
// returns public object URLs.
type Client struct {
	baseURL    string
	serviceKey string
	bucket     string
	httpClient *httpclient.Client
	logger     logger.Logger
}

func NewClient(cfg config.SupabaseConfig, timeout time.Duration, log logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		serviceKey: cfg.ServiceKey,
		bucket:     cfg.Bucket,
		httpClient: httpclient.NewClient(timeout),
		logger:     log.WithFields(map[string]interface{}{"service": "storage"}),
	}
}

// UploadResume stores the file under a uuid-prefixed object name and returns
// the public URL. The prefix keeps repeated uploads of the same filename from
// colliding.
func (c *Client) UploadResume(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	objectName := fmt.Sprintf("%s_%s", uuid.New().String(), sanitizeFilename(filename))
	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, objectName)

	req, err := http.NewRequest(http.MethodPost, uploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return "", fmt.Errorf("upload object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("storage upload failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	publicURL := fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.baseURL, c.bucket, objectName)

	c.logger.Info("resume uploaded", map[string]interface{}{
		"object": objectName,
		"bytes":  len(data),
	})

	return publicURL, nil
}

// sanitizeFilename keeps object names URL-safe: the base name with spaces
// collapsed to underscores.
func sanitizeFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.ReplaceAll(base, " ", "_")
}
