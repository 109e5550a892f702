// Package dataprocessing implements the offline cleaning stage of the
// overdose dashboard pipeline. It consolidates text normalization and
// record cleaning into a cohesive package that takes the raw CDC VSRR
// CSV and produces the cleaned dataset the dashboard stage consumes.
//
// # Architecture
//
// The package is organized into two main components:
//
// 1. Normalizer: normalizes free-text region names and classifies
// national-level rollups ("aggregate regions") for exclusion
// 2. Cleaner: renames and selects fields, drops malformed rows, applies
// the Normalizer's exclusion rule, coerces death counts, and reports a
// cleaning summary
//
// # Usage
//
//	cleaner := dataprocessing.NewCleaner(logger, dataprocessing.DefaultCleanOptions())
//	records, summary, err := cleaner.CleanCSV(rawFile)
//
// # Data Flow
//
//	Raw CSV → Cleaner (rename → drop missing → exclude rollups →
//	drop summary labels → category restriction → coerce deaths) →
//	cleaned records + summary
//
// # Error Handling
//
// Malformed rows are never errors: they are dropped and counted in the
// summary. Residual contamination found by the post-clean validation
// scan is reported as a non-fatal warning and the rows stay in the
// output, matching the upstream data contract.
package dataprocessing
