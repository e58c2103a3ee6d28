// internal/storage/supabase_test.go
package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"interview-backend/internal/common/config"
	"interview-backend/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.SupabaseConfig{
		URL:        baseURL,
		ServiceKey: "service-key",
		Bucket:     "resumes",
	}, 5*time.Second, logger.NewNoOpLogger())
}

func TestClient_UploadResume_Success(t *testing.T) {
	var gotPath, gotAuth, gotAPIKey, gotContentType string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"Key":"resumes/whatever"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	url, err := client.UploadResume(context.Background(), []byte("pdf bytes"), "my resume.pdf", "application/pdf")

	require.NoError(t, err)
	assert.NotEmpty(t, url)

	// Object lives in the configured bucket under a uuid-prefixed name
	assert.True(t, strings.HasPrefix(gotPath, "/storage/v1/object/resumes/"))
	assert.True(t, strings.HasSuffix(gotPath, "_my_resume.pdf"))
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "service-key", gotAPIKey)
	assert.Equal(t, "application/pdf", gotContentType)
	assert.Equal(t, []byte("pdf bytes"), gotBody)

	// Public URL points at the same object
	assert.True(t, strings.HasPrefix(url, server.URL+"/storage/v1/object/public/resumes/"))
	assert.True(t, strings.HasSuffix(url, "_my_resume.pdf"))
}

func TestClient_UploadResume_UniqueObjectNames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	first, err := client.UploadResume(context.Background(), []byte("a"), "resume.pdf", "application/pdf")
	require.NoError(t, err)
	second, err := client.UploadResume(context.Background(), []byte("a"), "resume.pdf", "application/pdf")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestClient_UploadResume_DefaultContentType(t *testing.T) {
	var gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.UploadResume(context.Background(), []byte("a"), "resume.pdf", "")

	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", gotContentType)
}

func TestClient_UploadResume_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"invalid signature"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	url, err := client.UploadResume(context.Background(), []byte("a"), "resume.pdf", "application/pdf")

	assert.Empty(t, url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "invalid signature")
}

func TestClient_UploadResume_ConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := newTestClient(server.URL)
	url, err := client.UploadResume(context.Background(), []byte("a"), "resume.pdf", "application/pdf")

	assert.Empty(t, url)
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "resume.pdf", sanitizeFilename("resume.pdf"))
	assert.Equal(t, "my_resume.pdf", sanitizeFilename("my resume.pdf"))
	assert.Equal(t, "resume.pdf", sanitizeFilename("../../etc/resume.pdf"))
}
