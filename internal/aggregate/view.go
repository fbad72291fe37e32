package aggregate

import (
	"fmt"
	"sort"
	"strconv"

	"enrdash/internal/dataset"
	"enrdash/internal/errors"
)

// FilteredView is a derived, non-owning projection of the observation table
// for one filter spec. Rows are sorted year, region code, energy type.
type FilteredView struct {
	Spec FilterSpec
	Rows []dataset.Observation
}

// RegionTotal is one region's summed production over the view.
type RegionTotal struct {
	RegionCode string  `json:"region_code"`
	RegionName string  `json:"region_name"`
	TotalMWh   float64 `json:"total_mwh"`
}

// EnergyTotal is one energy type's summed production over the view.
type EnergyTotal struct {
	EnergyType dataset.EnergyType `json:"energy_type"`
	TotalMWh   float64            `json:"total_mwh"`
}

// TotalByRegion sums value_mwh per region, sorted by region code.
func (v *FilteredView) TotalByRegion() []RegionTotal {
	sums := make(map[string]float64)
	names := make(map[string]string)
	for _, obs := range v.Rows {
		sums[obs.RegionCode] += obs.ValueMWh
		names[obs.RegionCode] = obs.RegionName
	}

	totals := make([]RegionTotal, 0, len(sums))
	for code, sum := range sums {
		totals = append(totals, RegionTotal{RegionCode: code, RegionName: names[code], TotalMWh: sum})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].RegionCode < totals[j].RegionCode })
	return totals
}

// TotalByEnergyType sums value_mwh per energy type, sorted by type name.
func (v *FilteredView) TotalByEnergyType() []EnergyTotal {
	sums := make(map[dataset.EnergyType]float64)
	for _, obs := range v.Rows {
		sums[obs.EnergyType] += obs.ValueMWh
	}

	totals := make([]EnergyTotal, 0, len(sums))
	for tag, sum := range sums {
		totals = append(totals, EnergyTotal{EnergyType: tag, TotalMWh: sum})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].EnergyType < totals[j].EnergyType })
	return totals
}

// GrowthPoint is one year's year-over-year growth rate. Rate is nil when the
// prior-year value is 0: the growth is undefined there, not zero and not an
// error.
type GrowthPoint struct {
	Year int      `json:"year"`
	Rate *float64 `json:"rate"`
}

// YoYGrowth computes (value[y] - value[y-1]) / value[y-1] for each pair of
// consecutive years present in the view for the given energy type and region.
func (v *FilteredView) YoYGrowth(energyType dataset.EnergyType, regionCode string) []GrowthPoint {
	byYear := make(map[int]float64)
	for _, obs := range v.Rows {
		if obs.EnergyType == energyType && obs.RegionCode == regionCode {
			byYear[obs.Year] += obs.ValueMWh
		}
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	points := make([]GrowthPoint, 0, len(years))
	for _, year := range years {
		prior, ok := byYear[year-1]
		if !ok {
			continue
		}
		if prior == 0 {
			points = append(points, GrowthPoint{Year: year})
			continue
		}
		rate := (byYear[year] - prior) / prior
		points = append(points, GrowthPoint{Year: year, Rate: &rate})
	}
	return points
}

// Dimension names a pivot axis.
type Dimension string

const (
	DimYear       Dimension = "year"
	DimRegion     Dimension = "region"
	DimEnergyType Dimension = "energy_type"
)

// Matrix is a pivoted view: summed value_mwh per (row key, column key), 0
// where no rows match. Keys are sorted.
type Matrix struct {
	RowDim  Dimension   `json:"row_dim"`
	ColDim  Dimension   `json:"col_dim"`
	RowKeys []string    `json:"row_keys"`
	ColKeys []string    `json:"col_keys"`
	Cells   [][]float64 `json:"cells"`
}

// Pivot groups the view by two distinct dimensions and sums each cell.
func (v *FilteredView) Pivot(rowsDim, colsDim Dimension) (*Matrix, error) {
	if rowsDim == colsDim {
		return nil, errors.NewValidationError("pivot dimensions must differ")
	}
	for _, dim := range []Dimension{rowsDim, colsDim} {
		switch dim {
		case DimYear, DimRegion, DimEnergyType:
		default:
			return nil, errors.NewValidationError(fmt.Sprintf("unknown pivot dimension %q", dim))
		}
	}

	sums := make(map[string]map[string]float64)
	rowKeySet := make(map[string]struct{})
	colKeySet := make(map[string]struct{})

	for _, obs := range v.Rows {
		rowKey := dimensionKey(obs, rowsDim)
		colKey := dimensionKey(obs, colsDim)
		if sums[rowKey] == nil {
			sums[rowKey] = make(map[string]float64)
		}
		sums[rowKey][colKey] += obs.ValueMWh
		rowKeySet[rowKey] = struct{}{}
		colKeySet[colKey] = struct{}{}
	}

	rowKeys := sortedKeys(rowKeySet, rowsDim)
	colKeys := sortedKeys(colKeySet, colsDim)

	cells := make([][]float64, len(rowKeys))
	for i, rowKey := range rowKeys {
		cells[i] = make([]float64, len(colKeys))
		for j, colKey := range colKeys {
			cells[i][j] = sums[rowKey][colKey]
		}
	}

	return &Matrix{
		RowDim:  rowsDim,
		ColDim:  colsDim,
		RowKeys: rowKeys,
		ColKeys: colKeys,
		Cells:   cells,
	}, nil
}

func dimensionKey(obs dataset.Observation, dim Dimension) string {
	switch dim {
	case DimYear:
		return strconv.Itoa(obs.Year)
	case DimRegion:
		return obs.RegionCode
	default:
		return string(obs.EnergyType)
	}
}

// sortedKeys sorts key sets; year keys sort numerically.
func sortedKeys(set map[string]struct{}, dim Dimension) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	if dim == DimYear {
		sort.Slice(keys, func(i, j int) bool {
			a, _ := strconv.Atoi(keys[i])
			b, _ := strconv.Atoi(keys[j])
			return a < b
		})
	} else {
		sort.Strings(keys)
	}
	return keys
}
