package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMelt(t *testing.T) {
	rows := []WideRow{
		{
			Year:       2019,
			RegionName: "Bretagne",
			RegionCode: "53",
			Production: map[EnergyType]float64{
				EnergyHydraulic: 13.4,
				EnergyWind:      2883.2,
			},
		},
		{
			Year:       2018,
			RegionName: "Corse",
			RegionCode: "94",
			Production: map[EnergyType]float64{
				EnergyHydraulic: 100,
				EnergyWind:      0,
			},
		},
	}

	long := Melt(rows, testSchema, nil)

	require.Len(t, long.Observations, 4)
	assert.Equal(t, []EnergyType{EnergyHydraulic, EnergyWind}, long.EnergyTypes)

	// Sorted year, then region code, then energy type
	assert.Equal(t, 2018, long.Observations[0].Year)
	assert.Equal(t, "94", long.Observations[0].RegionCode)
	assert.Equal(t, EnergyHydraulic, long.Observations[0].EnergyType)
	assert.Equal(t, 2019, long.Observations[2].Year)
	assert.Equal(t, "53", long.Observations[2].RegionCode)

	// 1 GWh = 1000 MWh, exactly
	assert.Equal(t, 13400.0, long.Observations[2].ValueMWh)
	assert.Equal(t, 2883200.0, long.Observations[3].ValueMWh)
	assert.Equal(t, 100000.0, long.Observations[0].ValueMWh)
	assert.Zero(t, long.Observations[1].ValueMWh)

	// Melt converts on a copy; the wide table keeps its GWh values
	assert.Equal(t, 13.4, rows[0].Production[EnergyHydraulic])
}

func TestMeltSkipsAbsentTypes(t *testing.T) {
	schema := Schema{Production: map[EnergyType]int{EnergySolar: 3}}
	rows := []WideRow{
		{
			Year:       2020,
			RegionCode: "11",
			Production: map[EnergyType]float64{EnergySolar: 5},
		},
	}

	long := Melt(rows, schema, nil)

	require.Len(t, long.Observations, 1)
	assert.Equal(t, []EnergyType{EnergySolar}, long.EnergyTypes)
	assert.Equal(t, EnergySolar, long.Observations[0].EnergyType)
}

func TestConvertToMWh(t *testing.T) {
	rows := []WideRow{
		{
			Year:       2019,
			RegionCode: "53",
			Production: map[EnergyType]float64{EnergyHydraulic: 13.4},
		},
	}

	converted := ConvertToMWh(rows)

	require.Len(t, converted, 1)
	assert.Equal(t, 13400.0, converted[0].Production[EnergyHydraulic])
	// Source rows are untouched
	assert.Equal(t, 13.4, rows[0].Production[EnergyHydraulic])
}
