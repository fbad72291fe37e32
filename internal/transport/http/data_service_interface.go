package http

import (
	"context"

	"enrdash/internal/aggregate"
	"enrdash/internal/dataset"
	"enrdash/internal/services"
)

// DataServiceInterface defines the service operations the data handler
// depends on. Kept as an interface so handler tests can substitute mocks.
type DataServiceInterface interface {
	Observations(ctx context.Context) ([]dataset.Observation, error)
	EnergyTypes(ctx context.Context) ([]dataset.EnergyType, error)
	Regions(ctx context.Context) (*services.RegionsResponse, error)
	Summary(ctx context.Context) (*services.Summary, error)
	Filter(ctx context.Context, spec aggregate.FilterSpec) (*aggregate.FilteredView, error)
	Growth(ctx context.Context, spec aggregate.FilterSpec, energyType dataset.EnergyType, regionCode string) ([]aggregate.GrowthPoint, error)
	Pivot(ctx context.Context, spec aggregate.FilterSpec, rowsDim, colsDim aggregate.Dimension) (*aggregate.Matrix, error)
	Reload(ctx context.Context) error
}
