// Package dataset loads the cleaned overdose CSV and serves it to the
// dashboard as a read-only, process-lifetime cache. The cache is
// populated on first access and invalidated only by process restart or
// an explicit Invalidate call, never by partial mutation.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"odpulse/internal/dataprocessing"
	"odpulse/pkg/contracts/domain"
)

// Options describes the distinct values the dashboard's filter controls
// offer: sorted states and drug types, and the observed year bounds for
// the range slider.
type Options struct {
	States    []string `json:"states"`
	DrugTypes []string `json:"drug_types"`
	YearMin   int      `json:"year_min"`
	YearMax   int      `json:"year_max"`
}

// Store is the cached cleaned-dataset loader. All methods are safe for
// concurrent use; the cached slice is shared read-only and callers must
// not mutate it.
type Store struct {
	path       string
	logger     *slog.Logger
	normalizer *dataprocessing.Normalizer
	titler     cases.Caser

	mu      sync.Mutex
	records []domain.OverdoseRecord
	options Options
	loaded  bool
}

// NewStore creates a store reading from the given cleaned CSV path.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:       path,
		logger:     logger.With(slog.String("component", "dataset_store")),
		normalizer: dataprocessing.NewNormalizer(),
		titler:     cases.Title(language.English),
	}
}

// Records returns the cached dataset, loading it on first access.
func (s *Store) Records(ctx context.Context) ([]domain.OverdoseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return nil, err
	}
	return s.records, nil
}

// Options returns the filter options derived from the cached dataset.
func (s *Store) Options(ctx context.Context) (Options, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoadedLocked(ctx); err != nil {
		return Options{}, err
	}
	return s.options, nil
}

// Invalidate drops the cache so the next access reloads from disk.
// This is the only cache-busting mechanism besides process restart.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.options = Options{}
	s.loaded = false
	s.logger.Info("dataset cache invalidated")
}

func (s *Store) ensureLoadedLocked(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	file, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("failed to open cleaned dataset: %w", err)
	}
	defer file.Close()

	records, err := s.load(file)
	if err != nil {
		return err
	}

	s.records = records
	s.options = buildOptions(records)
	s.loaded = true

	s.logger.Info("dataset loaded",
		slog.String("path", s.path),
		slog.Int("records", len(records)),
		slog.Int("states", len(s.options.States)),
		slog.Int("year_min", s.options.YearMin),
		slog.Int("year_max", s.options.YearMax))
	return nil
}

// load parses the cleaned CSV and re-applies the dashboard-side
// hygiene the cleaning stage already did: aggregate-region exclusion,
// numeric coercion, and month validation. The duplication is a
// deliberate upstream behavior, kept so a hand-edited or stale cleaned
// file cannot put rollup rows on the dashboard.
func (s *Store) load(r io.Reader) ([]domain.OverdoseRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range domain.CSVHeader {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("cleaned CSV is missing required column %q", required)
		}
	}

	var records []domain.OverdoseRecord
	dropped := 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read cleaned CSV row: %w", err)
		}

		field := func(name string) string {
			idx := columns[name]
			if idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		state := s.normalizer.Normalize(field("state"))
		month := field("month")
		drugType := field("drug_type")

		if state == "" || drugType == "" || !domain.IsCalendarMonth(month) {
			dropped++
			continue
		}
		if s.normalizer.IsAggregateRegion(state) {
			dropped++
			continue
		}

		year, err := strconv.Atoi(field("year"))
		if err != nil {
			dropped++
			continue
		}
		deaths, err := cast.ToFloat64E(field("deaths"))
		if err != nil || deaths < 0 {
			dropped++
			continue
		}

		records = append(records, domain.OverdoseRecord{
			State:    s.titler.String(state),
			Year:     year,
			Month:    month,
			DrugType: drugType,
			Deaths:   deaths,
		})
	}

	if dropped > 0 {
		s.logger.Warn("dropped invalid rows while loading cleaned dataset",
			slog.Int("dropped", dropped))
	}
	return records, nil
}

func buildOptions(records []domain.OverdoseRecord) Options {
	states := make(map[string]struct{})
	drugs := make(map[string]struct{})
	opts := Options{}

	for _, rec := range records {
		states[rec.State] = struct{}{}
		drugs[rec.DrugType] = struct{}{}
		if opts.YearMin == 0 || rec.Year < opts.YearMin {
			opts.YearMin = rec.Year
		}
		if rec.Year > opts.YearMax {
			opts.YearMax = rec.Year
		}
	}

	opts.States = sortedKeys(states)
	opts.DrugTypes = sortedKeys(drugs)
	return opts
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
