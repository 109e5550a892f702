package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"odpulse/pkg/contracts/domain"
)

func testRecords() []domain.OverdoseRecord {
	return []domain.OverdoseRecord{
		{State: "Ohio", Year: 2019, Month: "January", DrugType: "Natural opioids", Deaths: 50},
		{State: "Ohio", Year: 2020, Month: "March", DrugType: "Synthetic opioids", Deaths: 80},
		{State: "Texas", Year: 2020, Month: "March", DrugType: "Synthetic opioids", Deaths: 120},
		{State: "Texas", Year: 2021, Month: "July", DrugType: "Natural opioids", Deaths: 90},
		{State: "Utah", Year: 2022, Month: "May", DrugType: "Heroin", Deaths: 30},
	}
}

func TestFilter(t *testing.T) {
	records := testRecords()

	tests := []struct {
		name     string
		criteria Criteria
		want     int
	}{
		{
			name: "all states all drugs unbounded years",
			criteria: Criteria{
				States:    []string{"Ohio", "Texas", "Utah"},
				DrugTypes: []string{"Natural opioids", "Synthetic opioids", "Heroin"},
			},
			want: 5,
		},
		{
			name: "single state",
			criteria: Criteria{
				States:    []string{"Ohio"},
				DrugTypes: []string{"Natural opioids", "Synthetic opioids"},
			},
			want: 2,
		},
		{
			name: "year range inclusive",
			criteria: Criteria{
				States:    []string{"Ohio", "Texas", "Utah"},
				DrugTypes: []string{"Natural opioids", "Synthetic opioids", "Heroin"},
				YearFrom:  2020,
				YearTo:    2021,
			},
			want: 3,
		},
		{
			name: "conjunction of all three",
			criteria: Criteria{
				States:    []string{"Texas"},
				DrugTypes: []string{"Synthetic opioids"},
				YearFrom:  2020,
				YearTo:    2020,
			},
			want: 1,
		},
		{
			// Empty selection means "selected nothing", not "select all".
			name:     "empty state selection yields no rows",
			criteria: Criteria{DrugTypes: []string{"Heroin"}},
			want:     0,
		},
		{
			name:     "empty drug selection yields no rows",
			criteria: Criteria{States: []string{"Utah"}},
			want:     0,
		},
		{
			name: "no matches is valid",
			criteria: Criteria{
				States:    []string{"Ohio"},
				DrugTypes: []string{"Heroin"},
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(records, tt.criteria)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestFilter_Idempotent(t *testing.T) {
	records := testRecords()
	criteria := Criteria{
		States:    []string{"Ohio", "Texas"},
		DrugTypes: []string{"Synthetic opioids"},
		YearFrom:  2019,
		YearTo:    2021,
	}

	once := Filter(records, criteria)
	twice := Filter(once, criteria)
	assert.Equal(t, once, twice)
}

func TestFilterYears_IgnoresSelections(t *testing.T) {
	records := testRecords()

	// No states or drugs selected, but the year restriction still applies
	// to the full dataset.
	got := FilterYears(records, Criteria{YearFrom: 2020, YearTo: 2021})
	assert.Len(t, got, 3)

	got = FilterYears(records, Criteria{})
	assert.Len(t, got, 5)
}
