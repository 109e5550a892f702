package dataprocessing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rawHeader = "State Name,Year,Month,Indicator,Data Value\n"

func cleanString(t *testing.T, csv string, options CleanOptions) ([]cleanedRow, *CleanSummary) {
	t.Helper()
	cleaner := NewCleaner(nil, options)
	records, summary, err := cleaner.CleanCSV(strings.NewReader(csv))
	require.NoError(t, err)

	rows := make([]cleanedRow, len(records))
	for i, rec := range records {
		rows[i] = cleanedRow{rec.State, rec.Year, rec.Month, rec.DrugType, rec.Deaths}
	}
	return rows, summary
}

type cleanedRow struct {
	State    string
	Year     int
	Month    string
	DrugType string
	Deaths   float64
}

func TestCleaner_HappyPath(t *testing.T) {
	csv := rawHeader +
		"Ohio,2020,January,Natural opioids,150\n" +
		"Texas,2021,March,Synthetic opioids,87.5\n"

	rows, summary := cleanString(t, csv, DefaultCleanOptions())

	require.Len(t, rows, 2)
	assert.Equal(t, cleanedRow{"Ohio", 2020, "January", "Natural opioids", 150}, rows[0])
	assert.Equal(t, cleanedRow{"Texas", 2021, "March", "Synthetic opioids", 87.5}, rows[1])

	assert.Equal(t, 2, summary.TotalRead)
	assert.Equal(t, 2, summary.Cleaned)
	assert.Equal(t, 2, summary.DistinctStates)
	assert.Equal(t, 2020, summary.YearMin)
	assert.Equal(t, 2021, summary.YearMax)
	assert.Zero(t, summary.ContaminatedRows)
}

func TestCleaner_ExcludesNationalRollups(t *testing.T) {
	csv := rawHeader +
		"United States,2020,January,Opioids,5000\n" +
		"us,2020,January,Opioids,5000\n" +
		"Ohio,2020,January,Opioids,150\n"

	rows, summary := cleanString(t, csv, DefaultCleanOptions())

	require.Len(t, rows, 1)
	assert.Equal(t, "Ohio", rows[0].State)
	assert.Equal(t, 2, summary.DroppedAggregateRegion)
}

func TestCleaner_DropsMissingFields(t *testing.T) {
	csv := rawHeader +
		"Ohio,2020,,Opioids,150\n" +
		"Ohio,2020,January,Opioids,\n" +
		",2020,January,Opioids,150\n" +
		"Ohio,2020,January,Opioids,150\n"

	rows, summary := cleanString(t, csv, DefaultCleanOptions())

	assert.Len(t, rows, 1)
	assert.Equal(t, 3, summary.DroppedMissing)
}

func TestCleaner_DropsSummaryLabel(t *testing.T) {
	csv := rawHeader +
		"Ohio,2020,January,Number of Deaths,150\n" +
		"Ohio,2020,January,number of deaths,150\n" +
		"Ohio,2020,January,Natural opioids,150\n"

	rows, summary := cleanString(t, csv, DefaultCleanOptions())

	assert.Len(t, rows, 1)
	assert.Equal(t, 2, summary.DroppedSummaryLabel)
}

func TestCleaner_CategoryRestriction(t *testing.T) {
	csv := rawHeader +
		"Ohio,2020,January,Psychostimulants,40\n" +
		"Ohio,2020,January,Natural Opioids,150\n"

	rows, summary := cleanString(t, csv, DefaultCleanOptions())
	require.Len(t, rows, 1)
	assert.Equal(t, "Natural Opioids", rows[0].DrugType)
	assert.Equal(t, 1, summary.DroppedCategory)

	// The restriction is configurable; disabling it keeps both rows.
	rows, summary = cleanString(t, csv, CleanOptions{})
	assert.Len(t, rows, 2)
	assert.Zero(t, summary.DroppedCategory)
}

func TestCleaner_DropsFailedCoercion(t *testing.T) {
	csv := rawHeader +
		"Ohio,2020,January,Opioids,not-a-number\n" +
		"Ohio,twenty20,January,Opioids,150\n" +
		"Ohio,2020,January,Opioids,-5\n" +
		"Ohio,2020,January,Opioids,150\n"

	rows, summary := cleanString(t, csv, DefaultCleanOptions())

	assert.Len(t, rows, 1)
	assert.Equal(t, 3, summary.DroppedCoercion)
}

func TestCleaner_SummaryCountsReconcile(t *testing.T) {
	csv := rawHeader +
		"United States,2020,January,Opioids,5000\n" +
		"Ohio,2020,,Opioids,150\n" +
		"Ohio,2020,January,Number of Deaths,150\n" +
		"Ohio,2020,January,Cocaine,40\n" +
		"Ohio,2020,January,Opioids,nan-ish\n" +
		"Ohio,2020,January,Opioids,150\n" +
		"New York,2021,February,Opioids,300\n"

	rows, summary := cleanString(t, csv, DefaultCleanOptions())

	assert.Len(t, rows, 2)
	dropped := summary.DroppedMissing + summary.DroppedAggregateRegion +
		summary.DroppedSummaryLabel + summary.DroppedCategory + summary.DroppedCoercion
	assert.Equal(t, summary.TotalRead, summary.Cleaned+dropped)
}

func TestCleaner_ContaminationWarningDoesNotBlock(t *testing.T) {
	// With every region pattern disabled, rollup rows survive cleaning.
	// The residual scan must report them while keeping them in output.
	options := DefaultCleanOptions()
	options.DisabledPatterns = []string{
		"united-states", "us-abbrev", "us-dotted", "usa", "america", PatternSpacedLetters,
	}

	csv := rawHeader +
		"United States,2020,January,Opioids,5000\n" +
		"Ohio,2020,January,Opioids,150\n"

	rows, summary := cleanString(t, csv, options)

	assert.Len(t, rows, 2)
	assert.Equal(t, 1, summary.ContaminatedRows)
}

func TestCleaner_RejectsWrongHeader(t *testing.T) {
	cleaner := NewCleaner(nil, DefaultCleanOptions())
	_, _, err := cleaner.CleanCSV(strings.NewReader("state,year,month,drug_type,deaths\nOhio,2020,January,Opioids,150\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "State Name")
}

func TestCleaner_EmptyFileBelowHeader(t *testing.T) {
	rows, summary := cleanString(t, rawHeader, DefaultCleanOptions())
	assert.Empty(t, rows)
	assert.Zero(t, summary.TotalRead)
	assert.Zero(t, summary.YearMin)
	assert.Zero(t, summary.YearMax)
}
