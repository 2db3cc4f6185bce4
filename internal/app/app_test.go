package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zeyna175/data-processor-app/internal/config"
)

// createTestLogger creates a logger that discards output for testing
func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Server.Port = 0
	cfg.Server.ShutdownTimeout = 2 * time.Second
	cfg.Telemetry.EnableTracing = false
	return cfg
}

func newTestApplication(t *testing.T, mutate func(*config.Config)) *Application {
	t.Helper()
	cfg := testConfig(t)
	if mutate != nil {
		mutate(cfg)
	}
	app, err := NewApplication(cfg, createTestLogger())
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = app.OTelProviders.Shutdown(context.Background())
	})
	return app
}

func do(app *Application, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestNewApplication(t *testing.T) {
	app := newTestApplication(t, nil)

	assert.NotNil(t, app.Router)
	assert.NotNil(t, app.Server)
	assert.NotNil(t, app.CleaningService)
	assert.NotNil(t, app.HealthService)
	assert.NotNil(t, app.Files)
	assert.NotNil(t, app.Metrics)
	assert.DirExists(t, app.Paths.UploadsDir)
	assert.DirExists(t, app.Paths.ProcessedDir)
	assert.Equal(t, app.Config.Server.Addr(), app.Server.Addr)

	_, err := NewApplication(nil, createTestLogger())
	assert.Error(t, err)
}

func TestApplication_setupRouter(t *testing.T) {
	app := newTestApplication(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		status int
	}{
		{name: "status", method: http.MethodGet, path: "/api/status", status: http.StatusOK},
		{name: "health", method: http.MethodGet, path: "/api/health", status: http.StatusOK},
		{name: "files", method: http.MethodGet, path: "/api/files", status: http.StatusOK},
		{name: "metrics", method: http.MethodGet, path: "/metrics", status: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, path: "/api/unknown", status: http.StatusNotFound},
		{name: "wrong method", method: http.MethodDelete, path: "/api/status", status: http.StatusMethodNotAllowed},
		{name: "missing download", method: http.MethodGet, path: "/api/download/nope.csv", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(app, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestApplication_StatusPayload(t *testing.T) {
	app := newTestApplication(t, nil)

	rec := do(app, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "API active", body["status"])
	assert.Len(t, body["supported_formats"], 5)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestApplication_UploadThenDownload(t *testing.T) {
	app := newTestApplication(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "people.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("name,age\nJean,25\nMarie,\nJean,25\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := do(app, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var uploaded map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))
	assert.EqualValues(t, 2, uploaded["rows"])
	processed := uploaded["processed_file"].(string)

	rec = do(app, httptest.NewRequest(http.MethodGet, "/api/download/"+processed, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), processed)
	assert.Contains(t, rec.Body.String(), "name,age")

	rec = do(app, httptest.NewRequest(http.MethodGet, "/api/files", nil))
	assert.Contains(t, rec.Body.String(), processed)
}

func TestApplication_CORS(t *testing.T) {
	app := newTestApplication(t, func(c *config.Config) {
		c.Security.AllowedOrigins = []string{"http://localhost:4200"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/process", nil)
	req.Header.Set("Origin", "http://localhost:4200")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := do(app, req)

	assert.Equal(t, "http://localhost:4200", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestApplication_RateLimit(t *testing.T) {
	app := newTestApplication(t, func(c *config.Config) {
		c.Security.RateLimit.RPS = 0.001
		c.Security.RateLimit.Burst = 1
	})

	assert.Equal(t, http.StatusOK, do(app, httptest.NewRequest(http.MethodGet, "/api/status", nil)).Code)
	assert.Equal(t, http.StatusTooManyRequests, do(app, httptest.NewRequest(http.MethodGet, "/api/status", nil)).Code)
}

func TestApplication_StartStop(t *testing.T) {
	app := newTestApplication(t, func(c *config.Config) {
		c.Server.Host = "127.0.0.1"
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, app.Start(ctx, cancel))
	assert.NoError(t, app.Stop(ctx))
}
