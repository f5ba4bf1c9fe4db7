package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/order-assistant/internal/metrics"
)

func get(t *testing.T, h http.Handler, path string) (*http.Response, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	res := rec.Result()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res, string(body)
}

func TestHTTPHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "order_1.mp3"), []byte("ID3data"), 0o644))

	reg := metrics.NewRegistry()
	metrics.RecordOrderImport(metrics.StatusSuccess)
	h := NewHTTPHandler(dir, reg, func(context.Context) error { return nil }, nil)

	res, body := get(t, h, "/audio/order_1.mp3")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ID3data", body)

	res, _ = get(t, h, "/audio/")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = get(t, h, "/audio/missing.mp3")
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, body = get(t, h, "/metrics")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, body, "order_assistant_order_imports_total")

	res, body = get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}

func TestHTTPHandler_Unhealthy(t *testing.T) {
	h := NewHTTPHandler(t.TempDir(), metrics.NewRegistry(), func(context.Context) error {
		return errors.New("database is locked")
	}, nil)

	res, body := get(t, h, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
	assert.Contains(t, body, "database is locked")
}
