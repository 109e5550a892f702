package analytics

import "odpulse/pkg/contracts/domain"

// Criteria is one dashboard filter selection. It is recreated per query
// and never persisted.
//
// Set semantics: an empty States or DrugTypes selection means "selected
// nothing" and yields an empty result, not "select all". The UI always
// sends an explicit selection, so the all-rows case is the caller
// passing every option. Year bounds of zero mean unbounded on that
// side; otherwise the range is inclusive.
type Criteria struct {
	States    []string
	YearFrom  int
	YearTo    int
	DrugTypes []string
}

// Filter returns the subset of records matching all three criteria.
// An empty result is valid, never an error.
func Filter(records []domain.OverdoseRecord, c Criteria) []domain.OverdoseRecord {
	states := toSet(c.States)
	drugs := toSet(c.DrugTypes)

	result := make([]domain.OverdoseRecord, 0, len(records))
	for _, rec := range records {
		if !states[rec.State] || !drugs[rec.DrugType] {
			continue
		}
		if !yearInRange(rec.Year, c.YearFrom, c.YearTo) {
			continue
		}
		result = append(result, rec)
	}
	return result
}

// FilterYears restricts records to the criteria's year range only,
// ignoring the state and drug selections. The proportion chart uses
// this to show the category mix across the whole dataset.
func FilterYears(records []domain.OverdoseRecord, c Criteria) []domain.OverdoseRecord {
	result := make([]domain.OverdoseRecord, 0, len(records))
	for _, rec := range records {
		if yearInRange(rec.Year, c.YearFrom, c.YearTo) {
			result = append(result, rec)
		}
	}
	return result
}

func yearInRange(year, from, to int) bool {
	if from != 0 && year < from {
		return false
	}
	if to != 0 && year > to {
		return false
	}
	return true
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
