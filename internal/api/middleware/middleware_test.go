package middleware

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestCORSPreflight(t *testing.T) {
	h := CORS(CORSConfig{})(okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/public/themes", nil)
	req.Header.Set("Origin", "https://crumb.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-I18N-Lang")
	assert.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSAllowList(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"https://crumb.example/"}})(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://crumb.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://crumb.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://elsewhere.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestBodyLimit(t *testing.T) {
	h := BodyLimit(8)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("short")))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too long for the cap")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestMetricsCountsRejections(t *testing.T) {
	cfg := DefaultMetricsConfig()
	cfg.Registerer = prometheus.NewRegistry()
	m := NewMetrics(cfg)

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/bakers/{slug}", okHandler)
	r.Get("/admin", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	r.Get("/healthz", okHandler)

	for _, path := range []string{"/bakers/crumb-co", "/bakers/other", "/admin", "/healthz"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/bakers/{slug}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("forbidden")))
	assert.Zero(t, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/healthz", "200")))
}

func TestMetricsGuard(t *testing.T) {
	h := MetricsGuard("scrape-me")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set("Authorization", "Bearer scrape-me")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf strings.Builder
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	r := chi.NewRouter()
	r.Use(StructuredLogger(LoggingConfig{Logger: logger, SkipPaths: []string{"/healthz"}}))
	r.Get("/bakers/{slug}", okHandler)
	r.Get("/healthz", okHandler)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/bakers/crumb-co?limit=5", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	out := buf.String()
	require.Equal(t, 1, strings.Count(out, "request completed"))
	assert.Contains(t, out, "baker=crumb-co")
	assert.Contains(t, out, "query=\"limit=5\"")
	assert.NotContains(t, out, "/healthz")

	level, msg := accessLevel(http.StatusNotFound, time.Millisecond, time.Second)
	assert.Equal(t, slog.LevelWarn, level)
	assert.Equal(t, "request rejected", msg)
	level, msg = accessLevel(http.StatusOK, 2*time.Second, time.Second)
	assert.Equal(t, slog.LevelWarn, level)
	assert.Equal(t, "slow request", msg)
}
