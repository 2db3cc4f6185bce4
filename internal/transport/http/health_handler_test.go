package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zeyna175/data-processor-app/internal/config"
	"github.com/Zeyna175/data-processor-app/internal/services"
	"github.com/Zeyna175/data-processor-app/internal/shared/testutil"
)

func newHealthHandler(t *testing.T, createDirs bool) *HealthHandler {
	t.Helper()
	paths, err := config.NewPaths(config.PathsConfig{BaseDir: t.TempDir()})
	require.NoError(t, err)
	if createDirs {
		require.NoError(t, paths.EnsureDirectories())
	}
	logger, _ := testutil.NewTestLogger(t)
	return NewHealthHandler(services.NewHealthService("v1.0.0-test", paths, logger), logger)
}

func TestHealthHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		createDirs bool
		status     int
		health     string
	}{
		{name: "storage ready", createDirs: true, status: http.StatusOK, health: services.StatusHealthy},
		{name: "storage missing", createDirs: false, status: http.StatusServiceUnavailable, health: services.StatusDegraded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHealthHandler(t, tt.createDirs)

			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			rec := httptest.NewRecorder()
			render.SetContentType(render.ContentTypeJSON)(http.HandlerFunc(h.HealthCheck)).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			var body services.HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.health, body.Status)
			assert.Equal(t, "v1.0.0-test", body.Version)
			assert.Contains(t, body.Services, "uploads")
			assert.Contains(t, body.Services, "processed")
		})
	}
}

func TestHealthHandler_Status(t *testing.T) {
	h := newHealthHandler(t, true)

	rec := httptest.NewRecorder()
	h.Status(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body services.APIStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "API active", body.Status)
	assert.ElementsMatch(t, []string{"csv", "xlsx", "xls", "json", "xml"}, body.SupportedFormats)
	assert.Equal(t, []string{"csv", "excel", "json"}, body.OutputFormats)
}
