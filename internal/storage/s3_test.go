package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, handler http.HandlerFunc) (*ExportStore, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewS3Client(context.Background(), S3Config{
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		AccessKey: "key",
		SecretKey: "secret",
	})
	require.NoError(t, err)
	return NewExportStore(client, "exports-bucket"), srv
}

func TestPutUploadsToBucketPath(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		ctype  string
	)
	store, _ := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		method, path, ctype = r.Method, r.URL.Path, r.Header.Get("Content-Type")
		mu.Unlock()
		io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	})

	err := store.Put(context.Background(), "exports/1/20261019.csv", "text/csv", []byte("a,b\n1,2\n"))
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/exports-bucket/exports/1/20261019.csv", path)
	assert.Equal(t, "text/csv", ctype)
}

func TestPresignGet(t *testing.T) {
	store, srv := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("presigning must not call the server, got %s %s", r.Method, r.URL.Path)
	})

	raw, err := store.PresignGet(context.Background(), "exports/1/x.json", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, srv.URL, u.Scheme+"://"+u.Host)
	assert.Equal(t, "/exports-bucket/exports/1/x.json", u.Path)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}
