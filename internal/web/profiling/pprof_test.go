package profiling

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(config Config) http.Handler {
	r := chi.NewRouter()
	RegisterRoutes(r, config)
	return r
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRegisterRoutes(t *testing.T) {
	h := newRouter(DefaultConfig())

	tests := []struct {
		path        string
		contentType string
	}{
		{"/debug/pprof/", "text/html; charset=utf-8"},
		{"/debug/pprof/cmdline", "text/plain; charset=utf-8"},
		{"/debug/pprof/heap", "application/octet-stream"},
		{"/debug/pprof/goroutine", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, h, tt.path)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
		})
	}
}

func TestRegisterRoutes_CustomPath(t *testing.T) {
	h := newRouter(Config{Path: "/wp-schema/v1/debug"})
	assert.Equal(t, http.StatusOK, get(t, h, "/wp-schema/v1/debug/").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/debug/pprof/").Code)
}

func TestStatsHandler(t *testing.T) {
	rec := get(t, newRouter(Config{}), "/debug/pprof/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Positive(t, stats.Goroutines)
	assert.Positive(t, stats.NumCPU)
	assert.Positive(t, stats.Memory.Sys)
}
