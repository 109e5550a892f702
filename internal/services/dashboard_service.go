package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"odpulse/internal/analytics"
	"odpulse/internal/dataset"
	"odpulse/internal/errors"
	"odpulse/internal/exporter"
	"odpulse/internal/infrastructure"
	"odpulse/pkg/contracts/domain"
)

// QueryMetrics are the headline numbers shown above the charts.
type QueryMetrics struct {
	TotalDeaths    float64 `json:"total_deaths"`
	AverageDeaths  float64 `json:"average_deaths"`
	StatesSelected int     `json:"states_selected"`
	RecordCount    int     `json:"record_count"`
}

// TrendPoint is one point of the monthly time series, labelled with a
// short period string such as "Jan 2020".
type TrendPoint struct {
	Period string  `json:"period"`
	Year   int     `json:"year"`
	Month  string  `json:"month"`
	State  string  `json:"state"`
	Deaths float64 `json:"deaths"`
}

// QueryResult is everything one dashboard query produces.
type QueryResult struct {
	Metrics     QueryMetrics              `json:"metrics"`
	Trend       []TrendPoint              `json:"trend"`
	ByDrugState []analytics.AggregatedRow `json:"by_drug_state"`
	ByDrug      []analytics.AggregatedRow `json:"by_drug"`
	Outliers    []domain.OverdoseRecord   `json:"outliers"`
	Fences      []analytics.StateFence    `json:"fences"`
}

// DashboardService computes filtered views, aggregates and outlier
// tables over the cleaned dataset.
type DashboardService struct {
	store   *dataset.Store
	reports *exporter.ReportWriter
	metrics *infrastructure.Metrics
	logger  *slog.Logger
}

// NewDashboardService creates a dashboard service. metrics may be nil,
// in which case no instruments are updated.
func NewDashboardService(store *dataset.Store, reports *exporter.ReportWriter, metrics *infrastructure.Metrics, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		store:   store,
		reports: reports,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "dashboard_service")),
	}
}

// Options returns the filter options derived from the dataset.
func (s *DashboardService) Options(ctx context.Context) (dataset.Options, error) {
	opts, err := s.store.Options(ctx)
	if err != nil {
		return dataset.Options{}, errors.DatasetLoadError(err)
	}
	return opts, nil
}

// Query runs one dashboard computation: filter, aggregate, detect
// outliers. The proportion chart deliberately ignores the state and
// drug selections and reflects the category mix over the year range
// alone.
func (s *DashboardService) Query(ctx context.Context, criteria analytics.Criteria) (*QueryResult, error) {
	all, err := s.store.Records(ctx)
	if err != nil {
		return nil, errors.DatasetLoadError(err)
	}
	if s.metrics != nil {
		s.metrics.QueriesTotal.Inc()
		s.metrics.DatasetRecords.Set(float64(len(all)))
	}

	filtered := analytics.Filter(all, criteria)
	outliers, fences := analytics.DetectOutliers(filtered)

	if s.metrics != nil {
		s.metrics.OutliersDetected.Add(float64(len(outliers)))
	}

	result := &QueryResult{
		Metrics:     computeMetrics(filtered),
		Trend:       trendPoints(analytics.TrendSeries(filtered)),
		ByDrugState: analytics.DeathsByDrugAndState(filtered),
		ByDrug:      analytics.DeathsByDrug(analytics.FilterYears(all, criteria)),
		Outliers:    outliers,
		Fences:      fences,
	}

	s.logger.InfoContext(ctx, "dashboard query computed",
		slog.Int("filtered_records", len(filtered)),
		slog.Int("outliers", len(outliers)))

	return result, nil
}

// Export writes the query result to an Excel workbook and returns the
// written file's path.
func (s *DashboardService) Export(ctx context.Context, criteria analytics.Criteria) (string, error) {
	all, err := s.store.Records(ctx)
	if err != nil {
		return "", errors.DatasetLoadError(err)
	}

	filtered := analytics.Filter(all, criteria)
	outliers, fences := analytics.DetectOutliers(filtered)

	report := exporter.Report{
		Records:  filtered,
		Trend:    analytics.TrendSeries(filtered),
		ByDrug:   analytics.DeathsByDrug(analytics.FilterYears(all, criteria)),
		Outliers: outliers,
		Fences:   fences,
	}

	name := fmt.Sprintf("dashboard_report_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	path, err := s.reports.WriteWorkbook(name, report)
	if err != nil {
		return "", errors.ExportError(err)
	}
	return path, nil
}

// Reload invalidates the dataset cache so the next query reloads the
// cleaned file from disk.
func (s *DashboardService) Reload(ctx context.Context) error {
	s.store.Invalidate()
	if s.metrics != nil {
		s.metrics.DatasetReloads.Inc()
	}

	// Reload eagerly so a broken file surfaces here, not on the next
	// user query.
	records, err := s.store.Records(ctx)
	if err != nil {
		return errors.DatasetLoadError(err)
	}
	if s.metrics != nil {
		s.metrics.DatasetRecords.Set(float64(len(records)))
	}

	s.logger.InfoContext(ctx, "dataset reloaded", slog.Int("records", len(records)))
	return nil
}

// computeMetrics sums and averages deaths over the filtered rows. An
// empty selection reports zeros rather than NaN.
func computeMetrics(records []domain.OverdoseRecord) QueryMetrics {
	m := QueryMetrics{RecordCount: len(records)}
	states := make(map[string]struct{})

	for _, rec := range records {
		m.TotalDeaths += rec.Deaths
		states[rec.State] = struct{}{}
	}
	m.StatesSelected = len(states)
	if len(records) > 0 {
		m.AverageDeaths = m.TotalDeaths / float64(len(records))
	}
	return m
}

func trendPoints(rows []analytics.AggregatedRow) []TrendPoint {
	points := make([]TrendPoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, TrendPoint{
			Period: domain.PeriodLabel(row.Year, row.Month),
			Year:   row.Year,
			Month:  row.Month,
			State:  row.State,
			Deaths: row.Deaths,
		})
	}
	return points
}
