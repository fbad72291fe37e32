// Package store owns the in-memory dataset for the process lifetime. It runs
// the load→clean→melt pipeline once at startup, hands the result out as an
// immutable Snapshot, and swaps in a complete new snapshot on explicit
// reload so a request never sees a mixture of old and new rows.
package store

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"enrdash/internal/aggregate"
	"enrdash/internal/dataset"
	"enrdash/internal/errors"
	"enrdash/internal/geo"
	"enrdash/internal/validation"
)

// Region is one of the 13 fixed INSEE regions.
type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Snapshot is one fully-built, immutable view of the dataset. All fields are
// written before the snapshot is published and never afterwards.
type Snapshot struct {
	// Wide is the cleaned wide table, values in GWh.
	Wide []dataset.WideRow
	// Observations is the long-form table, values in MWh.
	Observations []dataset.Observation
	// EnergyTypes lists the tags actually melted from the source header.
	EnergyTypes []dataset.EnergyType
	// Regions is sorted by code.
	Regions []Region
	// Geo maps region code to parsed geometry; Geo.Failures carries the
	// codes whose shapes could not be parsed.
	Geo *geo.Result
	// Engine filters and aggregates over Observations. One engine per
	// snapshot, so its view cache dies with the snapshot.
	Engine *aggregate.Engine
	// YearMin and YearMax bound the observed annual cadence.
	YearMin, YearMax int
	LoadedAt         time.Time
}

// HasRegion reports whether the snapshot contains the given region code.
func (s *Snapshot) HasRegion(code string) bool {
	for _, region := range s.Regions {
		if region.Code == code {
			return true
		}
	}
	return false
}

// Store builds snapshots from the source file and publishes them atomically.
type Store struct {
	logger     *slog.Logger
	sourcePath string
	cleaner    *dataset.Cleaner
	extractor  *geo.Extractor
	validator  *validation.FileValidator

	mu      sync.RWMutex
	current *Snapshot
}

// New creates a store for the given source CSV. Call Load before Snapshot.
func New(sourcePath string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger:     logger.With(slog.String("component", "dataset_store")),
		sourcePath: sourcePath,
		cleaner:    dataset.NewCleaner(logger),
		extractor:  geo.NewExtractor(logger),
		validator:  validation.NewFileValidator(logger),
	}
}

// Load runs the pipeline and publishes the first snapshot. Fatal pipeline
// errors propagate to the caller, which aborts startup.
func (s *Store) Load(ctx context.Context) error {
	snapshot, err := s.build(ctx)
	if err != nil {
		return err
	}
	s.publish(snapshot)
	return nil
}

// Reload rebuilds the snapshot from the source file and swaps it in. The
// geometry cache is invalidated first; in-flight requests keep reading the
// old snapshot until the swap.
func (s *Store) Reload(ctx context.Context) error {
	s.extractor.Reset()
	snapshot, err := s.build(ctx)
	if err != nil {
		return err
	}
	s.publish(snapshot)
	s.logger.InfoContext(ctx, "dataset reloaded",
		slog.Int("observations", len(snapshot.Observations)),
		slog.Int("geo_failures", len(snapshot.Geo.Failures)))
	return nil
}

// Snapshot returns the current snapshot. Nil before the first Load.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) publish(snapshot *Snapshot) {
	s.mu.Lock()
	s.current = snapshot
	s.mu.Unlock()
}

func (s *Store) build(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	if err := s.validator.ValidateCSVFile(s.sourcePath); err != nil {
		return nil, errors.NewLoadError("source file validation failed", err).
			WithContext("path", s.sourcePath)
	}

	raw, err := dataset.LoadCSV(s.sourcePath, s.logger)
	if err != nil {
		return nil, err
	}

	wide, err := s.cleaner.Clean(raw)
	if err != nil {
		return nil, err
	}

	long := dataset.Melt(wide, raw.Schema, s.logger)
	geoResult := s.extractor.Extract(wide)

	regions := collectRegions(wide)
	yearMin, yearMax := yearBounds(wide)

	s.logger.InfoContext(ctx, "snapshot built",
		slog.Int("wide_rows", len(wide)),
		slog.Int("observations", len(long.Observations)),
		slog.Int("regions", len(regions)),
		slog.Int("year_min", yearMin),
		slog.Int("year_max", yearMax),
		slog.Duration("elapsed", time.Since(start)))

	return &Snapshot{
		Wide:         wide,
		Observations: long.Observations,
		EnergyTypes:  long.EnergyTypes,
		Regions:      regions,
		Geo:          geoResult,
		Engine:       aggregate.NewEngine(long.Observations, s.logger),
		YearMin:      yearMin,
		YearMax:      yearMax,
		LoadedAt:     time.Now(),
	}, nil
}

func collectRegions(rows []dataset.WideRow) []Region {
	names := make(map[string]string)
	for _, row := range rows {
		names[row.RegionCode] = row.RegionName
	}
	regions := make([]Region, 0, len(names))
	for code, name := range names {
		regions = append(regions, Region{Code: code, Name: name})
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i].Code < regions[j].Code })
	return regions
}

func yearBounds(rows []dataset.WideRow) (int, int) {
	if len(rows) == 0 {
		return 0, 0
	}
	min, max := rows[0].Year, rows[0].Year
	for _, row := range rows[1:] {
		if row.Year < min {
			min = row.Year
		}
		if row.Year > max {
			max = row.Year
		}
	}
	return min, max
}
