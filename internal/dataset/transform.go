package dataset

import (
	"log/slog"
	"sort"
)

// gwhToMWh is the exact unit conversion factor. 1 GWh = 1000 MWh.
const gwhToMWh = 1000

// LongTable is the transformer's output: the tidy observation table plus the
// energy tags that were actually produced from the source header.
type LongTable struct {
	Observations []Observation
	// EnergyTypes lists the tags melted from the header, sorted by name.
	// Types absent from the source are skipped, never invented.
	EnergyTypes []EnergyType
}

// Melt pivots the cleaned wide table into long form, converting every value
// from GWh to MWh. Output row count is len(rows) × len(schema energy types),
// ordered year ascending, then region code, then energy type.
func Melt(rows []WideRow, schema Schema, logger *slog.Logger) *LongTable {
	if logger == nil {
		logger = slog.Default()
	}

	types := schema.EnergyTypes()
	observations := make([]Observation, 0, len(rows)*len(types))

	for _, row := range ConvertToMWh(rows) {
		for _, tag := range types {
			observations = append(observations, Observation{
				RegionCode: row.RegionCode,
				RegionName: row.RegionName,
				Year:       row.Year,
				EnergyType: tag,
				ValueMWh:   row.Production[tag],
			})
		}
	}

	sort.Slice(observations, func(i, j int) bool {
		a, b := observations[i], observations[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.RegionCode != b.RegionCode {
			return a.RegionCode < b.RegionCode
		}
		return a.EnergyType < b.EnergyType
	})

	logger.Info("wide table melted",
		slog.Int("wide_rows", len(rows)),
		slog.Int("long_rows", len(observations)),
		slog.Int("energy_types", len(types)))

	return &LongTable{Observations: observations, EnergyTypes: types}
}

// ConvertToMWh returns a copy of the wide table with every production value
// multiplied by 1000. Relative proportions are preserved exactly; no rounding
// beyond the source's own float precision.
func ConvertToMWh(rows []WideRow) []WideRow {
	converted := make([]WideRow, len(rows))
	for i, row := range rows {
		production := make(map[EnergyType]float64, len(row.Production))
		for tag, gwh := range row.Production {
			production[tag] = gwh * gwhToMWh
		}
		converted[i] = WideRow{
			Year:       row.Year,
			RegionName: row.RegionName,
			RegionCode: row.RegionCode,
			Production: production,
			GeoShape:   row.GeoShape,
			GeoPoint:   row.GeoPoint,
		}
	}
	return converted
}
