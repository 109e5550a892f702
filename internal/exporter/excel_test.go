package exporter

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"odpulse/internal/analytics"
	"odpulse/pkg/contracts/domain"
)

func TestReportWriter_WriteWorkbook(t *testing.T) {
	dir := t.TempDir()
	w := NewReportWriter(dir, slog.New(slog.NewJSONHandler(io.Discard, nil)))

	report := Report{
		Records: []domain.OverdoseRecord{
			{State: "Ohio", Year: 2020, Month: "January", DrugType: "Opioids", Deaths: 10},
			{State: "Ohio", Year: 2020, Month: "June", DrugType: "Opioids", Deaths: 90},
		},
		Trend: []analytics.AggregatedRow{
			{Year: 2020, Month: "January", State: "Ohio", Deaths: 10},
			{Year: 2020, Month: "June", State: "Ohio", Deaths: 90},
		},
		ByDrug: []analytics.AggregatedRow{
			{DrugType: "Opioids", Deaths: 100},
		},
		Outliers: []domain.OverdoseRecord{
			{State: "Ohio", Year: 2020, Month: "June", DrugType: "Opioids", Deaths: 90},
		},
		Fences: []analytics.StateFence{
			{State: "Ohio", Q1: 11.25, Q3: 12.75, IQR: 1.5, UpperFence: 15, SampleSize: 6},
		},
	}

	path, err := w.WriteWorkbook("report.xlsx", report)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.ElementsMatch(t, []string{"Filtered Data", "Monthly Trend", "Deaths by Drug", "Outliers"}, sheets)

	state, err := f.GetCellValue("Filtered Data", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Ohio", state)

	period, err := f.GetCellValue("Monthly Trend", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Jan 2020", period)

	outlierDeaths, err := f.GetCellValue("Outliers", "E2")
	require.NoError(t, err)
	assert.Equal(t, "90", outlierDeaths)
}
