// Package exporter writes dashboard results to files for download.
//
// CSVWriter handles CSV output with optional UTF-8 BOM so Excel opens
// the files correctly. ReportWriter builds multi-sheet Excel workbooks
// with the filtered records, aggregates and outlier table.
package exporter
