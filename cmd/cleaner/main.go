package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"odpulse/internal/analytics"
	"odpulse/internal/config"
	"odpulse/internal/dataprocessing"
	"odpulse/internal/exporter"
	"odpulse/internal/files"
	"odpulse/internal/infrastructure"
)

func main() {
	in := flag.String("in", "", "raw CSV file, or a directory whose newest CSV is used (default: configured raw file)")
	out := flag.String("out", "", "cleaned CSV output path (default: configured clean file)")
	category := flag.String("category", "", "drug category substring filter (default: configured value; \"none\" disables)")
	disablePatterns := flag.String("disable-patterns", "", "comma-separated aggregate-region patterns to skip")
	excel := flag.String("excel", "", "optionally also write an Excel report workbook to this path")
	archive := flag.Bool("archive", false, "move the consumed raw file to an archive subdirectory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	if *in == "" {
		*in = cfg.Data.RawFile
	}
	if *out == "" {
		*out = cfg.Data.CleanFile
	}

	options := dataprocessing.CleanOptions{
		CategoryContains: cfg.Data.CategoryContains,
		DisabledPatterns: cfg.Data.DisabledPatterns,
	}
	switch {
	case *category == "none":
		options.CategoryContains = ""
	case *category != "":
		options.CategoryContains = *category
	}
	if *disablePatterns != "" {
		options.DisabledPatterns = strings.Split(*disablePatterns, ",")
	}

	if err := run(logger, *in, *out, *excel, *archive, options); err != nil {
		logger.Error("cleaning failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, in, out, excelPath string, archive bool, options dataprocessing.CleanOptions) error {
	inputPath, err := resolveInput(logger, in)
	if err != nil {
		return err
	}

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open raw file: %w", err)
	}
	defer file.Close()

	cleaner := dataprocessing.NewCleaner(logger, options)
	records, summary, err := cleaner.CleanCSV(file)
	if err != nil {
		return err
	}

	writer := exporter.NewCSVWriter("")
	if err := writer.WriteRecords(out, records); err != nil {
		return fmt.Errorf("failed to write cleaned CSV: %w", err)
	}
	logger.Info("cleaned dataset written",
		slog.String("path", out),
		slog.Int("records", len(records)))

	if excelPath != "" {
		outliers, fences := analytics.DetectOutliers(records)
		report := exporter.Report{
			Records:  records,
			Trend:    analytics.TrendSeries(records),
			ByDrug:   analytics.DeathsByDrug(records),
			Outliers: outliers,
			Fences:   fences,
		}
		reports := exporter.NewReportWriter("", logger)
		if _, err := reports.WriteWorkbook(excelPath, report); err != nil {
			return fmt.Errorf("failed to write Excel report: %w", err)
		}
	}

	if archive {
		manager := files.NewManager(logger)
		if _, err := manager.Archive(inputPath); err != nil {
			return fmt.Errorf("failed to archive raw file: %w", err)
		}
	}

	// Summary goes to stdout as JSON so wrapper scripts can consume it;
	// logs stay on their own stream.
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}

// resolveInput accepts either a file or a directory of dated drops, in
// which case the newest CSV wins.
func resolveInput(logger *slog.Logger, in string) (string, error) {
	info, err := os.Stat(in)
	if err != nil {
		return "", fmt.Errorf("failed to stat input %s: %w", in, err)
	}
	if !info.IsDir() {
		return in, nil
	}

	discovery := files.NewDiscovery(in)
	newest, err := discovery.MostRecentCSV(".")
	if err != nil {
		return "", err
	}
	logger.Info("selected newest raw file",
		slog.String("directory", in),
		slog.String("file", newest.Name))
	return newest.Path, nil
}
