package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"odpulse/internal/analytics"
	"odpulse/pkg/contracts/domain"
)

// Report bundles everything that goes into one exported workbook.
type Report struct {
	Records  []domain.OverdoseRecord
	Trend    []analytics.AggregatedRow
	ByDrug   []analytics.AggregatedRow
	Outliers []domain.OverdoseRecord
	Fences   []analytics.StateFence
}

// ReportWriter builds multi-sheet Excel workbooks from dashboard
// results.
type ReportWriter struct {
	baseDir string
	logger  *slog.Logger
}

// NewReportWriter creates a report writer rooted at baseDir.
func NewReportWriter(baseDir string, logger *slog.Logger) *ReportWriter {
	return &ReportWriter{
		baseDir: baseDir,
		logger:  logger.With(slog.String("component", "report_writer")),
	}
}

// WriteWorkbook writes the report to an .xlsx file and returns the full
// path of the written file.
func (w *ReportWriter) WriteWorkbook(filePath string, report Report) (string, error) {
	fullPath := filePath
	if !filepath.IsAbs(fullPath) && w.baseDir != "" {
		fullPath = filepath.Join(w.baseDir, filePath)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := w.writeDataSheet(f, report.Records); err != nil {
		return "", err
	}
	if err := w.writeTrendSheet(f, report.Trend); err != nil {
		return "", err
	}
	if err := w.writeDrugSheet(f, report.ByDrug); err != nil {
		return "", err
	}
	if err := w.writeOutlierSheet(f, report.Outliers, report.Fences); err != nil {
		return "", err
	}

	// Drop the default sheet excelize creates.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("workbook written",
		slog.String("path", fullPath),
		slog.Int("records", len(report.Records)),
		slog.Int("outliers", len(report.Outliers)))

	return fullPath, nil
}

func (w *ReportWriter) writeDataSheet(f *excelize.File, records []domain.OverdoseRecord) error {
	const sheet = "Filtered Data"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}

	headers := []interface{}{"State", "Year", "Month", "Drug Type", "Deaths"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, rec := range records {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{rec.State, rec.Year, rec.Month, rec.DrugType, rec.Deaths}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return nil
}

func (w *ReportWriter) writeTrendSheet(f *excelize.File, rows []analytics.AggregatedRow) error {
	const sheet = "Monthly Trend"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}

	headers := []interface{}{"Period", "State", "Deaths"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		values := []interface{}{domain.PeriodLabel(row.Year, row.Month), row.State, row.Deaths}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return nil
}

func (w *ReportWriter) writeDrugSheet(f *excelize.File, rows []analytics.AggregatedRow) error {
	const sheet = "Deaths by Drug"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}

	headers := []interface{}{"Drug Type", "State", "Deaths"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		values := []interface{}{row.DrugType, row.State, row.Deaths}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return nil
}

func (w *ReportWriter) writeOutlierSheet(f *excelize.File, outliers []domain.OverdoseRecord, fences []analytics.StateFence) error {
	const sheet = "Outliers"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}

	headers := []interface{}{"State", "Year", "Month", "Drug Type", "Deaths"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	rowNum := 2
	for _, rec := range outliers {
		row := []interface{}{rec.State, rec.Year, rec.Month, rec.DrugType, rec.Deaths}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &row); err != nil {
			return fmt.Errorf("failed to write outlier row: %w", err)
		}
		rowNum++
	}

	// Fence summary below the outlier table, one blank row between.
	rowNum++
	fenceHeaders := []interface{}{"State", "Q1", "Q3", "IQR", "Upper Fence", "Sample Size"}
	if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &fenceHeaders); err != nil {
		return fmt.Errorf("failed to write fence headers: %w", err)
	}
	rowNum++
	for _, fence := range fences {
		row := []interface{}{fence.State, fence.Q1, fence.Q3, fence.IQR, fence.UpperFence, fence.SampleSize}
		if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &row); err != nil {
			return fmt.Errorf("failed to write fence row: %w", err)
		}
		rowNum++
	}
	return nil
}
