package dataprocessing

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"odpulse/pkg/contracts/domain"
)

// Raw column names are an exact compatibility contract with the CDC
// VSRR source file.
const (
	rawColState     = "State Name"
	rawColYear      = "Year"
	rawColMonth     = "Month"
	rawColIndicator = "Indicator"
	rawColDeaths    = "Data Value"
)

// summaryLabel is the indicator value that marks an all-drugs rollup
// row rather than an actual drug category. Compared case-insensitively.
const summaryLabel = "number of deaths"

// residualScan is the post-clean contamination check. It deliberately
// mirrors the upstream validation expression rather than the pattern
// list, so the two can disagree the same way the source system's did.
var residualScan = regexp.MustCompile(`united\s+states|us|u\.s\.|usa|america`)

// CleanOptions configures the cleaning stage.
type CleanOptions struct {
	// CategoryContains restricts output to drug categories containing
	// this substring, case-insensitively. The default "opioid" is a
	// domain restriction, not a general cleaning step; empty disables it.
	CategoryContains string

	// DisabledPatterns names aggregate-region patterns to skip, e.g.
	// PatternSpacedLetters.
	DisabledPatterns []string
}

// DefaultCleanOptions returns the upstream-compatible configuration.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{CategoryContains: "opioid"}
}

// CleanSummary reports what the cleaning run did. Malformed rows are
// never errors; they show up here as drop counts.
type CleanSummary struct {
	TotalRead              int `json:"total_read"`
	Cleaned                int `json:"cleaned"`
	DroppedMissing         int `json:"dropped_missing"`
	DroppedAggregateRegion int `json:"dropped_aggregate_region"`
	DroppedSummaryLabel    int `json:"dropped_summary_label"`
	DroppedCategory        int `json:"dropped_category"`
	DroppedCoercion        int `json:"dropped_coercion"`

	DistinctStates int `json:"distinct_states"`
	YearMin        int `json:"year_min"`
	YearMax        int `json:"year_max"`

	// ContaminatedRows counts cleaned rows whose state still matches the
	// residual scan. Non-zero is reported as a warning only; the rows
	// remain in the output.
	ContaminatedRows int `json:"contaminated_rows"`
}

// Cleaner consumes raw overdose records and emits the cleaned dataset
// plus a validation summary.
type Cleaner struct {
	logger     *slog.Logger
	normalizer *Normalizer
	options    CleanOptions
}

// NewCleaner creates a cleaner with the given options. A nil logger
// falls back to slog.Default.
func NewCleaner(logger *slog.Logger, options CleanOptions) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{
		logger:     logger.With(slog.String("component", "cleaner")),
		normalizer: NewNormalizer(options.DisabledPatterns...),
		options:    options,
	}
}

// CleanCSV reads the raw CSV and returns the cleaned records and a
// summary. The only error conditions are unreadable input or a header
// that breaks the upstream column contract; every per-row problem is a
// silent drop counted in the summary.
func (c *Cleaner) CleanCSV(r io.Reader) ([]domain.OverdoseRecord, *CleanSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns, err := mapRawColumns(header)
	if err != nil {
		return nil, nil, err
	}

	summary := &CleanSummary{}
	var records []domain.OverdoseRecord

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read row %d: %w", summary.TotalRead+1, err)
		}
		summary.TotalRead++

		if record, ok := c.cleanRow(row, columns, summary); ok {
			records = append(records, record)
		}
	}

	c.finalize(records, summary)
	return records, summary, nil
}

// cleanRow applies the ordered cleaning steps to one raw row. The order
// matters: missing-value drop precedes the exclusion rules, which
// precede type coercion.
func (c *Cleaner) cleanRow(row []string, columns map[string]int, summary *CleanSummary) (domain.OverdoseRecord, bool) {
	var zero domain.OverdoseRecord

	field := func(name string) string {
		idx := columns[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	state := field(rawColState)
	yearText := field(rawColYear)
	month := field(rawColMonth)
	drugType := field(rawColIndicator)
	deathsText := field(rawColDeaths)

	// Step 2: any missing field drops the row.
	if state == "" || yearText == "" || month == "" || drugType == "" || deathsText == "" {
		summary.DroppedMissing++
		return zero, false
	}

	// Step 3: aggregate-region exclusion.
	if _, matched := c.normalizer.MatchAggregateRegion(state); matched {
		summary.DroppedAggregateRegion++
		return zero, false
	}

	// Step 4: summary-only indicator labels are not drug categories.
	if strings.ToLower(drugType) == summaryLabel {
		summary.DroppedSummaryLabel++
		return zero, false
	}

	// Step 5: configurable category restriction.
	if c.options.CategoryContains != "" &&
		!strings.Contains(strings.ToLower(drugType), strings.ToLower(c.options.CategoryContains)) {
		summary.DroppedCategory++
		return zero, false
	}

	// Step 6: coerce year and deaths; failures drop the row. Negative
	// counts violate the cleaned-record invariant and drop too.
	year, err := strconv.Atoi(yearText)
	if err != nil {
		summary.DroppedCoercion++
		return zero, false
	}
	deaths, err := cast.ToFloat64E(deathsText)
	if err != nil || deaths < 0 {
		summary.DroppedCoercion++
		return zero, false
	}

	return domain.OverdoseRecord{
		State:    state,
		Year:     year,
		Month:    month,
		DrugType: drugType,
		Deaths:   deaths,
	}, true
}

// finalize fills the report counts and runs the residual contamination
// scan (step 7). Contamination never blocks output.
func (c *Cleaner) finalize(records []domain.OverdoseRecord, summary *CleanSummary) {
	summary.Cleaned = len(records)

	states := make(map[string]struct{})
	for _, rec := range records {
		states[rec.State] = struct{}{}
		if summary.YearMin == 0 || rec.Year < summary.YearMin {
			summary.YearMin = rec.Year
		}
		if rec.Year > summary.YearMax {
			summary.YearMax = rec.Year
		}
		if residualScan.MatchString(strings.ToLower(rec.State)) {
			summary.ContaminatedRows++
		}
	}
	summary.DistinctStates = len(states)

	if summary.ContaminatedRows > 0 {
		c.logger.Warn("aggregate-region records remain after cleaning",
			slog.Int("contaminated_rows", summary.ContaminatedRows),
			slog.String("action", "rows kept in output per data contract"))
	}

	c.logger.Info("cleaning complete",
		slog.Int("total_read", summary.TotalRead),
		slog.Int("cleaned", summary.Cleaned),
		slog.Int("distinct_states", summary.DistinctStates),
		slog.Int("year_min", summary.YearMin),
		slog.Int("year_max", summary.YearMax))
}

// mapRawColumns resolves the position of each required raw column,
// enforcing the exact upstream header names.
func mapRawColumns(header []string) (map[string]int, error) {
	columns := make(map[string]int, len(domain.RawCSVHeader))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range domain.RawCSVHeader {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("raw CSV is missing required column %q", required)
		}
	}
	return columns, nil
}
