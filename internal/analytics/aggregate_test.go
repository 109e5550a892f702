package analytics

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"odpulse/pkg/contracts/domain"
)

func TestSumDeaths_MergesIdenticalKeys(t *testing.T) {
	records := []domain.OverdoseRecord{
		{State: "Texas", Year: 2021, Month: "March", DrugType: "Opioids", Deaths: 100},
		{State: "Texas", Year: 2021, Month: "March", DrugType: "Heroin", Deaths: 50},
	}

	rows := SumDeaths(records, KeyYear, KeyMonth, KeyState)

	require.Len(t, rows, 1)
	assert.Equal(t, 2021, rows[0].Year)
	assert.Equal(t, "March", rows[0].Month)
	assert.Equal(t, "Texas", rows[0].State)
	assert.Equal(t, 150.0, rows[0].Deaths)
	// Drug type was not a grouping key, so it stays unset.
	assert.Empty(t, rows[0].DrugType)
}

func TestTrendSeries_ChronologicalMonthOrder(t *testing.T) {
	// Alphabetical order would put April before February before January.
	records := []domain.OverdoseRecord{
		{State: "Ohio", Year: 2020, Month: "April", DrugType: "Opioids", Deaths: 3},
		{State: "Ohio", Year: 2020, Month: "January", DrugType: "Opioids", Deaths: 1},
		{State: "Ohio", Year: 2020, Month: "February", DrugType: "Opioids", Deaths: 2},
		{State: "Ohio", Year: 2019, Month: "December", DrugType: "Opioids", Deaths: 9},
	}

	rows := TrendSeries(records)

	require.Len(t, rows, 4)
	assert.Equal(t, "December", rows[0].Month)
	assert.Equal(t, 2019, rows[0].Year)
	assert.Equal(t, "January", rows[1].Month)
	assert.Equal(t, "February", rows[2].Month)
	assert.Equal(t, "April", rows[3].Month)
}

func TestSumDeaths_OrderIndependent(t *testing.T) {
	records := testRecords()

	expected := SumDeaths(records, KeyDrugType, KeyState)

	shuffled := make([]domain.OverdoseRecord, len(records))
	copy(shuffled, records)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		assert.Equal(t, expected, SumDeaths(shuffled, KeyDrugType, KeyState))
	}
}

func TestDeathsByDrug(t *testing.T) {
	rows := DeathsByDrug(testRecords())

	require.Len(t, rows, 3)
	totals := make(map[string]float64)
	for _, row := range rows {
		totals[row.DrugType] = row.Deaths
	}
	assert.Equal(t, 140.0, totals["Natural opioids"])
	assert.Equal(t, 200.0, totals["Synthetic opioids"])
	assert.Equal(t, 30.0, totals["Heroin"])
}

func TestSumDeaths_EmptyInput(t *testing.T) {
	assert.Empty(t, SumDeaths(nil, KeyState))
}
