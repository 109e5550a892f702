package analytics

import (
	"math"
	"sort"

	"odpulse/pkg/contracts/domain"
)

// StateFence is the IQR fence computed for one state's death counts.
type StateFence struct {
	State      string  `json:"state"`
	Q1         float64 `json:"q1"`
	Q3         float64 `json:"q3"`
	IQR        float64 `json:"iqr"`
	UpperFence float64 `json:"upper_fence"`
	SampleSize int     `json:"sample_size"`
}

// DetectOutliers flags, per state independently, every record whose
// deaths strictly exceed that state's upper fence Q3 + 1.5*IQR.
//
// There is no lower fence: overdose counts are non-negative and
// unusually low values are not flagged. Groups with fewer than four
// points still get quantiles from the standard interpolation rule;
// small-sample fences are unstable, which is a known limitation rather
// than something to special-case away.
//
// Returned records are ordered by state, then chronologically; fences
// are ordered by state. Each record belongs to exactly one state, so
// no deduplication is needed.
func DetectOutliers(records []domain.OverdoseRecord) ([]domain.OverdoseRecord, []StateFence) {
	byState := make(map[string][]domain.OverdoseRecord)
	for _, rec := range records {
		byState[rec.State] = append(byState[rec.State], rec)
	}

	states := make([]string, 0, len(byState))
	for state := range byState {
		states = append(states, state)
	}
	sort.Strings(states)

	var outliers []domain.OverdoseRecord
	fences := make([]StateFence, 0, len(states))

	for _, state := range states {
		group := byState[state]

		values := make([]float64, len(group))
		for i, rec := range group {
			values[i] = rec.Deaths
		}
		sort.Float64s(values)

		q1 := Quantile(values, 0.25)
		q3 := Quantile(values, 0.75)
		iqr := q3 - q1
		fence := q3 + 1.5*iqr

		fences = append(fences, StateFence{
			State:      state,
			Q1:         q1,
			Q3:         q3,
			IQR:        iqr,
			UpperFence: fence,
			SampleSize: len(group),
		})

		flagged := make([]domain.OverdoseRecord, 0)
		for _, rec := range group {
			if rec.Deaths > fence {
				flagged = append(flagged, rec)
			}
		}
		sort.Slice(flagged, func(i, j int) bool {
			if flagged[i].SortKey() != flagged[j].SortKey() {
				return flagged[i].SortKey() < flagged[j].SortKey()
			}
			return flagged[i].DrugType < flagged[j].DrugType
		})
		outliers = append(outliers, flagged...)
	}

	return outliers, fences
}

// Quantile returns the p-quantile of an ascending-sorted slice using
// linear interpolation between closest ranks (index = p * (n-1)). This
// convention is pinned deliberately: numeric libraries default to
// different interpolation rules and the fence values must be
// reproducible.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	index := p * float64(n-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
