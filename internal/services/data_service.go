// Package services sits between the HTTP transport and the dataset store.
// Handlers never touch snapshots or raw rows directly; they call the data
// service, which resolves the current snapshot once per request so every
// answer is internally consistent even across a concurrent reload.
package services

import (
	"context"
	"log/slog"

	"enrdash/internal/aggregate"
	"enrdash/internal/dataset"
	"enrdash/internal/geo"
	"enrdash/internal/store"
)

// RegionGeometry is one region's shaped geometry for map views.
type RegionGeometry struct {
	Code     string      `json:"code"`
	Name     string      `json:"name"`
	Center   geo.Point   `json:"center"`
	Boundary [][]float64 `json:"boundary"`
}

// RegionsResponse carries every region plus the codes whose geometry failed
// to parse. Failed regions keep their production data in all non-map views.
type RegionsResponse struct {
	Regions      []RegionGeometry `json:"regions"`
	FailedCodes  []string         `json:"geometry_failures,omitempty"`
	RegionsTotal int              `json:"regions_total"`
}

// Summary carries the dashboard's key-metric card values, computed over the
// full unfiltered table.
type Summary struct {
	TotalProductionMWh     float64 `json:"total_production_mwh"`
	RegionCount            int     `json:"region_count"`
	EnergyTypeCount        int     `json:"energy_type_count"`
	YearMin                int     `json:"year_min"`
	YearMax                int     `json:"year_max"`
	YearsCovered           int     `json:"years_covered"`
	AvgAnnualProductionMWh float64 `json:"avg_annual_production_mwh"`
	// OverallGrowthPercent compares the last year's total production to the
	// first year's. Nil when the first year's total is 0 or only one year is
	// covered.
	OverallGrowthPercent *float64 `json:"overall_growth_percent"`
}

// DataService exposes the pipeline-to-presentation interface.
type DataService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewDataService creates a data service over the given store.
func NewDataService(st *store.Store, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		store:  st,
		logger: logger.With(slog.String("component", "data_service")),
	}
}

// snapshot resolves the current snapshot or reports that none is loaded.
func (ds *DataService) snapshot() (*store.Snapshot, error) {
	snap := ds.store.Snapshot()
	if snap == nil {
		return nil, ErrDatasetNotLoaded
	}
	return snap, nil
}

// Observations returns the full long-form table.
func (ds *DataService) Observations(ctx context.Context) ([]dataset.Observation, error) {
	snap, err := ds.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Observations, nil
}

// EnergyTypes returns the tags actually present in the source header.
func (ds *DataService) EnergyTypes(ctx context.Context) ([]dataset.EnergyType, error) {
	snap, err := ds.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.EnergyTypes, nil
}

// Regions returns region geometry for map views plus per-region parse
// failures.
func (ds *DataService) Regions(ctx context.Context) (*RegionsResponse, error) {
	snap, err := ds.snapshot()
	if err != nil {
		return nil, err
	}

	regions := make([]RegionGeometry, 0, len(snap.Regions))
	for _, region := range snap.Regions {
		entry := RegionGeometry{Code: region.Code, Name: region.Name}
		if shape, ok := snap.Geo.Shapes[region.Code]; ok {
			entry.Center = shape.Center
			entry.Boundary = shape.Ring()
		}
		regions = append(regions, entry)
	}

	return &RegionsResponse{
		Regions:      regions,
		FailedCodes:  snap.Geo.FailedCodes(),
		RegionsTotal: len(regions),
	}, nil
}

// Summary computes the dashboard key metrics from the full table.
func (ds *DataService) Summary(ctx context.Context) (*Summary, error) {
	snap, err := ds.snapshot()
	if err != nil {
		return nil, err
	}

	var total float64
	firstYear := make(map[int]float64)
	for _, obs := range snap.Observations {
		total += obs.ValueMWh
		firstYear[obs.Year] += obs.ValueMWh
	}

	years := snap.YearMax - snap.YearMin + 1
	summary := &Summary{
		TotalProductionMWh: total,
		RegionCount:        len(snap.Regions),
		EnergyTypeCount:    len(snap.EnergyTypes),
		YearMin:            snap.YearMin,
		YearMax:            snap.YearMax,
		YearsCovered:       years,
	}
	if years > 0 {
		summary.AvgAnnualProductionMWh = total / float64(years)
	}
	if years > 1 {
		first := firstYear[snap.YearMin]
		last := firstYear[snap.YearMax]
		if first != 0 {
			growth := (last/first - 1) * 100
			summary.OverallGrowthPercent = &growth
		}
	}
	return summary, nil
}

// Filter returns the cached or freshly-computed view for the given spec.
func (ds *DataService) Filter(ctx context.Context, spec aggregate.FilterSpec) (*aggregate.FilteredView, error) {
	snap, err := ds.snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Engine.Filter(spec)
}

// Growth returns the year-over-year growth series for one energy type and
// region within the filtered view. The region must exist in the dataset; a
// region merely excluded by the filter yields an empty series instead.
func (ds *DataService) Growth(ctx context.Context, spec aggregate.FilterSpec, energyType dataset.EnergyType, regionCode string) ([]aggregate.GrowthPoint, error) {
	snap, err := ds.snapshot()
	if err != nil {
		return nil, err
	}
	if !snap.HasRegion(regionCode) {
		return nil, ErrRegionNotFound
	}

	view, err := snap.Engine.Filter(spec)
	if err != nil {
		return nil, err
	}
	return view.YoYGrowth(energyType, regionCode), nil
}

// Pivot returns the summed matrix for two dimensions over the filtered view.
func (ds *DataService) Pivot(ctx context.Context, spec aggregate.FilterSpec, rowsDim, colsDim aggregate.Dimension) (*aggregate.Matrix, error) {
	view, err := ds.Filter(ctx, spec)
	if err != nil {
		return nil, err
	}
	return view.Pivot(rowsDim, colsDim)
}

// Reload rebuilds the snapshot from the source file. In-flight requests keep
// the old snapshot until the atomic swap.
func (ds *DataService) Reload(ctx context.Context) error {
	ds.logger.InfoContext(ctx, "reload requested")
	return ds.store.Reload(ctx)
}
