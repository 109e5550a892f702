package domain

import "fmt"

// OverdoseRecord is one cleaned monthly observation: reported overdose
// deaths for a state, calendar month, and drug category.
type OverdoseRecord struct {
	State    string  `json:"state"`
	Year     int     `json:"year"`
	Month    string  `json:"month"`
	DrugType string  `json:"drug_type"`
	Deaths   float64 `json:"deaths"`
}

// CSVHeader is the column order of the cleaned dataset file. The exact
// names are a compatibility contract with the dashboard stage.
var CSVHeader = []string{"state", "year", "month", "drug_type", "deaths"}

// RawCSVHeader is the upstream CDC VSRR column set the cleaning stage
// consumes. Names must match the source file exactly.
var RawCSVHeader = []string{"State Name", "Year", "Month", "Indicator", "Data Value"}

// calendarMonths maps month names to their chronological ordinal,
// January=1 through December=12. Time-series ordering uses this, never
// alphabetical order.
var calendarMonths = map[string]int{
	"January":   1,
	"February":  2,
	"March":     3,
	"April":     4,
	"May":       5,
	"June":      6,
	"July":      7,
	"August":    8,
	"September": 9,
	"October":   10,
	"November":  11,
	"December":  12,
}

// MonthOrdinal returns the 1-based chronological position of a calendar
// month name, or 0 if the name is not one of the twelve months.
func MonthOrdinal(month string) int {
	return calendarMonths[month]
}

// IsCalendarMonth reports whether month is one of the twelve calendar
// month names.
func IsCalendarMonth(month string) bool {
	return calendarMonths[month] != 0
}

// PeriodLabel formats a (year, month) pair as a short chart label such
// as "Jan 2020". Unknown months fall back to the raw name.
func PeriodLabel(year int, month string) string {
	if len(month) >= 3 && IsCalendarMonth(month) {
		return fmt.Sprintf("%s %d", month[:3], year)
	}
	return fmt.Sprintf("%s %d", month, year)
}

// SortKey returns a single sortable integer for the record's (year,
// month) pair. Records within the same month compare equal.
func (r OverdoseRecord) SortKey() int {
	return r.Year*100 + MonthOrdinal(r.Month)
}
