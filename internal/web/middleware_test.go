package web

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockedby/leetstats/internal/logger"
)

func TestOriginGuard(t *testing.T) {
	guard := originGuard("https://stats.example.com/")
	h := guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		origin string
		want   int
	}{
		{"", http.StatusNoContent},
		{"https://stats.example.com", http.StatusNoContent},
		{"HTTPS://STATS.EXAMPLE.COM", http.StatusNoContent},
		{"http://stats.example.com", http.StatusForbidden},
		{"https://stats.example.com.evil.io", http.StatusForbidden},
		{"null", http.StatusForbidden},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/user", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, tt.want, rec.Code, "origin %q", tt.origin)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(logger.Options{Level: "debug", JSON: true, Out: &buf})
	require.NoError(t, err)

	var ctxLogger *zerolog.Logger
	h := middleware.RequestID(requestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = zerolog.Ctx(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/brew", nil))

	require.NotNil(t, ctxLogger)
	out := buf.String()
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"path":"/brew"`)
	assert.Contains(t, out, `"request_id"`)
	assert.Contains(t, out, `"level":"warn"`)
}

func TestWriteError_HidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/user", nil)

	WriteError(rec, req, http.StatusInternalServerError, "", assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, rec.Body.String())
}
