package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrdash/internal/dataset"
	"enrdash/internal/errors"
)

func testView() *FilteredView {
	return &FilteredView{Rows: testObservations()}
}

func TestTotalByRegion(t *testing.T) {
	totals := testView().TotalByRegion()

	require.Len(t, totals, 2)
	assert.Equal(t, "11", totals[0].RegionCode)
	assert.Equal(t, "Region 11", totals[0].RegionName)
	assert.Equal(t, 375.0, totals[0].TotalMWh)
	assert.Equal(t, "53", totals[1].RegionCode)
	assert.Equal(t, 530.0, totals[1].TotalMWh)
}

func TestTotalByEnergyType(t *testing.T) {
	totals := testView().TotalByEnergyType()

	require.Len(t, totals, 2)
	assert.Equal(t, dataset.EnergySolar, totals[0].EnergyType)
	assert.Equal(t, 155.0, totals[0].TotalMWh)
	assert.Equal(t, dataset.EnergyWind, totals[1].EnergyType)
	assert.Equal(t, 750.0, totals[1].TotalMWh)
}

func TestYoYGrowth(t *testing.T) {
	t.Run("computes rate per consecutive year pair", func(t *testing.T) {
		points := testView().YoYGrowth(dataset.EnergyWind, "11")

		require.Len(t, points, 1)
		assert.Equal(t, 2019, points[0].Year)
		require.NotNil(t, points[0].Rate)
		assert.InDelta(t, 0.5, *points[0].Rate, 1e-9)
	})

	t.Run("zero prior year yields a nil rate", func(t *testing.T) {
		points := testView().YoYGrowth(dataset.EnergySolar, "53")

		require.Len(t, points, 1)
		assert.Equal(t, 2019, points[0].Year)
		assert.Nil(t, points[0].Rate)
	})

	t.Run("negative growth is a negative rate", func(t *testing.T) {
		view := &FilteredView{Rows: []dataset.Observation{
			obs("53", 2018, dataset.EnergyWind, 200),
			obs("53", 2019, dataset.EnergyWind, 100),
		}}

		points := view.YoYGrowth(dataset.EnergyWind, "53")
		require.Len(t, points, 1)
		require.NotNil(t, points[0].Rate)
		assert.InDelta(t, -0.5, *points[0].Rate, 1e-9)
	})

	t.Run("non-consecutive years are skipped", func(t *testing.T) {
		view := &FilteredView{Rows: []dataset.Observation{
			obs("53", 2015, dataset.EnergyWind, 100),
			obs("53", 2017, dataset.EnergyWind, 200),
		}}

		points := view.YoYGrowth(dataset.EnergyWind, "53")
		assert.Empty(t, points)
	})

	t.Run("unknown series yields no points", func(t *testing.T) {
		points := testView().YoYGrowth(dataset.EnergyHydraulic, "99")
		assert.Empty(t, points)
	})
}

func TestPivot(t *testing.T) {
	t.Run("region by year matrix", func(t *testing.T) {
		matrix, err := testView().Pivot(DimRegion, DimYear)
		require.NoError(t, err)

		assert.Equal(t, []string{"11", "53"}, matrix.RowKeys)
		assert.Equal(t, []string{"2018", "2019"}, matrix.ColKeys)
		require.Len(t, matrix.Cells, 2)
		assert.Equal(t, []float64{150, 225}, matrix.Cells[0])
		assert.Equal(t, []float64{200, 330}, matrix.Cells[1])
	})

	t.Run("missing combinations are zero filled", func(t *testing.T) {
		view := &FilteredView{Rows: []dataset.Observation{
			obs("11", 2018, dataset.EnergyWind, 100),
			obs("53", 2019, dataset.EnergySolar, 50),
		}}

		matrix, err := view.Pivot(DimRegion, DimEnergyType)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 100}, matrix.Cells[0])
		assert.Equal(t, []float64{50, 0}, matrix.Cells[1])
	})

	t.Run("year keys sort numerically", func(t *testing.T) {
		view := &FilteredView{Rows: []dataset.Observation{
			obs("11", 999, dataset.EnergyWind, 1),
			obs("11", 2019, dataset.EnergyWind, 1),
		}}

		matrix, err := view.Pivot(DimYear, DimRegion)
		require.NoError(t, err)
		assert.Equal(t, []string{"999", "2019"}, matrix.RowKeys)
	})

	t.Run("identical dimensions are rejected", func(t *testing.T) {
		_, err := testView().Pivot(DimYear, DimYear)
		require.Error(t, err)

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrTypeValidation, appErr.Type)
	})

	t.Run("unknown dimension is rejected", func(t *testing.T) {
		_, err := testView().Pivot(DimYear, Dimension("quarter"))
		require.Error(t, err)
	})

	t.Run("empty view yields empty matrix", func(t *testing.T) {
		view := &FilteredView{}

		matrix, err := view.Pivot(DimRegion, DimYear)
		require.NoError(t, err)
		assert.Empty(t, matrix.RowKeys)
		assert.Empty(t, matrix.Cells)
	})
}
