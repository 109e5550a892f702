package analytics

import (
	"sort"
	"strconv"
	"strings"

	"odpulse/pkg/contracts/domain"
)

// GroupKey selects a record field to bucket rows by before summation.
type GroupKey int

const (
	KeyYear GroupKey = iota
	KeyMonth
	KeyState
	KeyDrugType
)

// AggregatedRow is one group's summed deaths. Only the fields named by
// the grouping keys are populated; the rest stay zero-valued.
// Aggregated rows are derived per query and never stored.
type AggregatedRow struct {
	Year     int     `json:"year,omitempty"`
	Month    string  `json:"month,omitempty"`
	State    string  `json:"state,omitempty"`
	DrugType string  `json:"drug_type,omitempty"`
	Deaths   float64 `json:"deaths"`
}

// SumDeaths groups records by the given keys and sums deaths per
// distinct key combination. Summation is commutative, so the result is
// independent of input row order; output rows are sorted by their key
// fields (chronologically where year/month are involved) to keep the
// result deterministic.
func SumDeaths(records []domain.OverdoseRecord, keys ...GroupKey) []AggregatedRow {
	groups := make(map[string]*AggregatedRow)

	for _, rec := range records {
		id := groupID(rec, keys)
		row, ok := groups[id]
		if !ok {
			row = &AggregatedRow{}
			for _, key := range keys {
				switch key {
				case KeyYear:
					row.Year = rec.Year
				case KeyMonth:
					row.Month = rec.Month
				case KeyState:
					row.State = rec.State
				case KeyDrugType:
					row.DrugType = rec.DrugType
				}
			}
			groups[id] = row
		}
		row.Deaths += rec.Deaths
	}

	rows := make([]AggregatedRow, 0, len(groups))
	for _, row := range groups {
		rows = append(rows, *row)
	}
	sortRows(rows)
	return rows
}

// TrendSeries aggregates deaths by (year, month, state) in
// chronological order, the shape the time-series chart consumes.
func TrendSeries(records []domain.OverdoseRecord) []AggregatedRow {
	return SumDeaths(records, KeyYear, KeyMonth, KeyState)
}

// DeathsByDrugAndState aggregates deaths by (drug type, state) for the
// grouped-bar chart.
func DeathsByDrugAndState(records []domain.OverdoseRecord) []AggregatedRow {
	return SumDeaths(records, KeyDrugType, KeyState)
}

// DeathsByDrug aggregates deaths by drug type for the proportion chart.
func DeathsByDrug(records []domain.OverdoseRecord) []AggregatedRow {
	return SumDeaths(records, KeyDrugType)
}

// groupID builds the map key for one record under the given grouping.
// Month is keyed by its ordinal so two spellings of the same key order
// cannot collide with field text.
func groupID(rec domain.OverdoseRecord, keys []GroupKey) string {
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		switch key {
		case KeyYear:
			parts = append(parts, strconv.Itoa(rec.Year))
		case KeyMonth:
			parts = append(parts, strconv.Itoa(domain.MonthOrdinal(rec.Month)))
		case KeyState:
			parts = append(parts, rec.State)
		case KeyDrugType:
			parts = append(parts, rec.DrugType)
		}
	}
	return strings.Join(parts, "\x1f")
}

// sortRows orders aggregated rows by year, month ordinal (January=1 …
// December=12, never alphabetical), state, then drug type.
func sortRows(rows []AggregatedRow) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		mi, mj := domain.MonthOrdinal(rows[i].Month), domain.MonthOrdinal(rows[j].Month)
		if mi != mj {
			return mi < mj
		}
		if rows[i].State != rows[j].State {
			return rows[i].State < rows[j].State
		}
		return rows[i].DrugType < rows[j].DrugType
	})
}
