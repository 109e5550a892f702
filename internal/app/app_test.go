package app

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odpulse/internal/config"
	"odpulse/internal/infrastructure"
)

func newTestApplication(t *testing.T) *Application {
	t.Helper()

	cleanFile := filepath.Join(t.TempDir(), "clean.csv")
	content := "state,year,month,drug_type,deaths\n" +
		"Ohio,2020,January,Opioids,10\n" +
		"Texas,2021,March,Heroin,30\n"
	require.NoError(t, os.WriteFile(cleanFile, []byte(content), 0644))

	cfg := config.Default()
	cfg.Data.CleanFile = cleanFile
	cfg.Data.ExportDir = t.TempDir()
	cfg.Security.RateLimit.Enabled = false

	app := &Application{
		Config:  cfg,
		Logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Metrics: infrastructure.NewMetrics(),
	}
	app.initializeServices()
	app.setupRouter()
	app.createServer()
	return app
}

func TestApplication_HealthEndpoint(t *testing.T) {
	app := newTestApplication(t)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestApplication_OptionsEndpoint(t *testing.T) {
	app := newTestApplication(t)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard/options", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ohio")
	assert.Contains(t, w.Body.String(), "Heroin")
}

func TestApplication_MetricsEndpoint(t *testing.T) {
	app := newTestApplication(t)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestApplication_UnknownRouteIsProblemJSON(t *testing.T) {
	app := newTestApplication(t)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}
