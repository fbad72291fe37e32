package dataset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrdash/internal/errors"
)

// regionFixtures is the 13 metropolitan INSEE regions used across tests.
var regionFixtures = []struct {
	Code string
	Name string
}{
	{"11", "Île-de-France"},
	{"24", "Centre-Val de Loire"},
	{"27", "Bourgogne-Franche-Comté"},
	{"28", "Normandie"},
	{"32", "Hauts-de-France"},
	{"44", "Grand Est"},
	{"52", "Pays de la Loire"},
	{"53", "Bretagne"},
	{"75", "Nouvelle-Aquitaine"},
	{"76", "Occitanie"},
	{"84", "Auvergne-Rhône-Alpes"},
	{"93", "Provence-Alpes-Côte d'Azur"},
	{"94", "Corse"},
}

// testSchema lays columns out as year, name, code, hydraulic, wind, shape, point.
var testSchema = Schema{
	Year:       0,
	RegionName: 1,
	RegionCode: 2,
	GeoShape:   5,
	GeoPoint:   6,
	Production: map[EnergyType]int{
		EnergyHydraulic: 3,
		EnergyWind:      4,
	},
}

// makeRawTable builds a raw table with one row per region per year.
func makeRawTable(years ...int) *RawTable {
	var rows [][]string
	for _, year := range years {
		for i, region := range regionFixtures {
			rows = append(rows, []string{
				fmt.Sprintf("%d", year),
				region.Name,
				region.Code,
				fmt.Sprintf("%d.5", i+1),
				fmt.Sprintf("%d", (i+1)*10),
				"",
				"",
			})
		}
	}
	return &RawTable{Schema: testSchema, Rows: rows}
}

func TestCleanerClean(t *testing.T) {
	t.Run("clean table passes through typed", func(t *testing.T) {
		raw := makeRawTable(2019, 2020)

		rows, err := NewCleaner(nil).Clean(raw)
		require.NoError(t, err)
		require.Len(t, rows, 26)
		assert.Equal(t, 2019, rows[0].Year)
		assert.Equal(t, "Île-de-France", rows[0].RegionName)
		assert.Equal(t, "11", rows[0].RegionCode)
		assert.Equal(t, 1.5, rows[0].Production[EnergyHydraulic])
		assert.Equal(t, 10.0, rows[0].Production[EnergyWind])
	})

	t.Run("blank production becomes zero", func(t *testing.T) {
		raw := makeRawTable(2019)
		raw.Rows[0][3] = ""
		raw.Rows[0][4] = "  "

		rows, err := NewCleaner(nil).Clean(raw)
		require.NoError(t, err)
		assert.Zero(t, rows[0].Production[EnergyHydraulic])
		assert.Zero(t, rows[0].Production[EnergyWind])
	})

	t.Run("blank region is forward filled", func(t *testing.T) {
		raw := makeRawTable(2019, 2020)
		// Second year's Bretagne row loses name and code
		raw.Rows[13+7][1] = ""
		raw.Rows[13+7][2] = ""

		rows, err := NewCleaner(nil).Clean(raw)
		require.NoError(t, err)
		// Fills from the nearest preceding row regardless of region
		assert.Equal(t, rows[13+6].RegionName, rows[13+7].RegionName)
		assert.Equal(t, rows[13+6].RegionCode, rows[13+7].RegionCode)
	})

	t.Run("leading blank region fails", func(t *testing.T) {
		raw := makeRawTable(2019)
		raw.Rows[0][2] = ""

		_, err := NewCleaner(nil).Clean(raw)
		require.Error(t, err)

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrTypeValidation, appErr.Type)
	})

	t.Run("comma decimal separator is tolerated", func(t *testing.T) {
		raw := makeRawTable(2019)
		raw.Rows[0][3] = "13,4"

		rows, err := NewCleaner(nil).Clean(raw)
		require.NoError(t, err)
		assert.Equal(t, 13.4, rows[0].Production[EnergyHydraulic])
	})

	t.Run("negative production fails", func(t *testing.T) {
		raw := makeRawTable(2019)
		raw.Rows[3][4] = "-12.5"

		_, err := NewCleaner(nil).Clean(raw)
		require.Error(t, err)

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrTypeValidation, appErr.Type)
	})

	t.Run("unparseable production fails", func(t *testing.T) {
		raw := makeRawTable(2019)
		raw.Rows[0][3] = "n/a"

		_, err := NewCleaner(nil).Clean(raw)
		require.Error(t, err)

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrTypeValidation, appErr.Type)
	})

	t.Run("invalid year fails", func(t *testing.T) {
		raw := makeRawTable(2019)
		raw.Rows[0][0] = "twenty-nineteen"

		_, err := NewCleaner(nil).Clean(raw)
		require.Error(t, err)

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrTypeValidation, appErr.Type)
	})

	t.Run("wrong region count fails", func(t *testing.T) {
		raw := makeRawTable(2019)
		raw.Rows = raw.Rows[:12]

		_, err := NewCleaner(nil).Clean(raw)
		require.Error(t, err)

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrTypeValidation, appErr.Type)
		assert.Contains(t, appErr.Message, "13")
	})

	t.Run("year gap fails", func(t *testing.T) {
		raw := makeRawTable(2017, 2018, 2020)

		_, err := NewCleaner(nil).Clean(raw)
		require.Error(t, err)

		var appErr *errors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, errors.ErrTypeValidation, appErr.Type)
		assert.Contains(t, appErr.Message, "2019")
	})

	t.Run("short rows read as blank cells", func(t *testing.T) {
		raw := makeRawTable(2019)
		raw.Rows[5] = raw.Rows[5][:4] // drops wind, shape and point

		rows, err := NewCleaner(nil).Clean(raw)
		require.NoError(t, err)
		assert.Zero(t, rows[5].Production[EnergyWind])
		assert.Empty(t, rows[5].GeoShape)
	})
}
