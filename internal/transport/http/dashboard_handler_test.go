package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odpulse/internal/analytics"
	"odpulse/internal/dataset"
	apierrors "odpulse/internal/errors"
	"odpulse/internal/services"
)

type stubService struct {
	options    dataset.Options
	result     *services.QueryResult
	exportPath string
	err        error

	lastCriteria analytics.Criteria
	reloaded     bool
}

func (s *stubService) Options(ctx context.Context) (dataset.Options, error) {
	return s.options, s.err
}

func (s *stubService) Query(ctx context.Context, c analytics.Criteria) (*services.QueryResult, error) {
	s.lastCriteria = c
	return s.result, s.err
}

func (s *stubService) Export(ctx context.Context, c analytics.Criteria) (string, error) {
	s.lastCriteria = c
	return s.exportPath, s.err
}

func (s *stubService) Reload(ctx context.Context) error {
	s.reloaded = true
	return s.err
}

func newTestHandler(svc *stubService) *DashboardHandler {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return NewDashboardHandler(svc, logger, apierrors.NewErrorHandler(logger, false))
}

func TestDashboardHandler_GetOptions(t *testing.T) {
	svc := &stubService{options: dataset.Options{
		States:    []string{"Ohio", "Texas"},
		DrugTypes: []string{"Opioids"},
		YearMin:   2015,
		YearMax:   2022,
	}}
	handler := newTestHandler(svc)

	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/options", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var opts dataset.Options
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))
	assert.Equal(t, []string{"Ohio", "Texas"}, opts.States)
	assert.Equal(t, 2015, opts.YearMin)
}

func TestDashboardHandler_Query(t *testing.T) {
	svc := &stubService{result: &services.QueryResult{
		Metrics: services.QueryMetrics{TotalDeaths: 148, RecordCount: 6},
	}}
	handler := newTestHandler(svc)

	body := `{"states":["Ohio"],"year_from":2019,"year_to":2021,"drug_types":["Opioids"]}`
	r := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, analytics.Criteria{
		States:    []string{"Ohio"},
		YearFrom:  2019,
		YearTo:    2021,
		DrugTypes: []string{"Opioids"},
	}, svc.lastCriteria)

	var result services.QueryResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.InDelta(t, 148.0, result.Metrics.TotalDeaths, 1e-9)
}

func TestDashboardHandler_Query_InvalidBody(t *testing.T) {
	handler := newTestHandler(&stubService{})

	r := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestDashboardHandler_Query_InvalidYearRange(t *testing.T) {
	handler := newTestHandler(&stubService{})

	// year_to before year_from fails validation.
	body := `{"states":["Ohio"],"year_from":2021,"year_to":2019,"drug_types":["Opioids"]}`
	r := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YearTo")
}

func TestDashboardHandler_Query_ServiceError(t *testing.T) {
	svc := &stubService{err: apierrors.DatasetLoadError(io.ErrUnexpectedEOF)}
	handler := newTestHandler(svc)

	body := `{"states":["Ohio"],"drug_types":["Opioids"]}`
	r := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, r)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "/errors/dataset/load-failed")
}

func TestDashboardHandler_Export(t *testing.T) {
	svc := &stubService{exportPath: "/data/exports/dashboard_report_20260823_120000.xlsx"}
	handler := newTestHandler(svc)

	body := `{"states":["Ohio"],"drug_types":["Opioids"]}`
	r := httptest.NewRequest(http.MethodPost, "/export", strings.NewReader(body))
	w := httptest.NewRecorder()
	handler.Routes().ServeHTTP(w, r)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp ExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "dashboard_report_20260823_120000.xlsx", resp.File)
}

func TestDashboardHandler_Reload(t *testing.T) {
	svc := &stubService{}
	handler := newTestHandler(svc)

	w := httptest.NewRecorder()
	handler.DatasetRoutes().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reload", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, svc.reloaded)
}
