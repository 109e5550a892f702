// Package analytics implements the dashboard's per-query computations
// over the cleaned overdose dataset: criteria filtering, group-by
// aggregation with chronological month ordering, and per-state IQR
// outlier detection.
//
// Everything here is pure and deterministic: no goroutines, no caching,
// no randomness. Each dashboard interaction recomputes filter →
// aggregate → outliers from scratch on the read-only dataset.
package analytics
