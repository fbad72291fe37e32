package dataset

import "sort"

// EnergyType is the canonical tag attached to each melted production column.
type EnergyType string

const (
	EnergyHydraulic      EnergyType = "hydraulic"
	EnergyWind           EnergyType = "wind"
	EnergySolar          EnergyType = "solar"
	EnergyBioenergy      EnergyType = "bioenergy"
	EnergyRenewableGas   EnergyType = "renewable_gas"
	EnergyTotalElectric  EnergyType = "total_electric"
	EnergyTotalRenewable EnergyType = "total_renewable"
)

// ExpectedRegionCount is the fixed number of metropolitan INSEE regions in the
// dataset. The cleaner rejects any other count.
const ExpectedRegionCount = 13

// Source header names. The year column appears both with and without the
// accent depending on the dataset vintage.
const (
	ColYear       = "Année"
	ColYearASCII  = "Annee"
	ColRegionName = "Nom INSEE région"
	ColRegionCode = "Code INSEE région"
	ColGeoShape   = "Géo-shape région"
	ColGeoPoint   = "Géo-point région"
)

// productionColumns maps source production headers to canonical energy tags.
// Only columns actually present in the header are melted; the transformer
// records which tags it produced.
var productionColumns = map[string]EnergyType{
	"Production hydraulique renouvelable (GWh)": EnergyHydraulic,
	"Production éolienne renouvelable (GWh)":    EnergyWind,
	"Production solaire renouvelable (GWh)":     EnergySolar,
	"Production bioénergies renouvelable (GWh)": EnergyBioenergy,
	"Production gaz renouvelable (GWh)":         EnergyRenewableGas,
	"Production électrique renouvelable (GWh)":  EnergyTotalElectric,
	"Production totale renouvelable (GWh)":      EnergyTotalRenewable,
}

// Schema records where each required column sits in the source header.
type Schema struct {
	Year       int
	RegionName int
	RegionCode int
	GeoShape   int
	GeoPoint   int
	// Production maps each recognized energy tag to its column index.
	Production map[EnergyType]int
}

// EnergyTypes returns the tags present in the source header, sorted by name.
func (s Schema) EnergyTypes() []EnergyType {
	types := make([]EnergyType, 0, len(s.Production))
	for t := range s.Production {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// RawTable is the loader's output: the resolved schema plus unparsed rows in
// source order. No cleaning has happened yet.
type RawTable struct {
	Schema Schema
	Rows   [][]string
}

// WideRow is one cleaned source row: one region-year with every production
// value in GWh.
type WideRow struct {
	Year       int
	RegionName string
	RegionCode string
	// Production holds GWh values keyed by canonical tag.
	Production map[EnergyType]float64
	GeoShape   string
	GeoPoint   string
}

// Observation is one long-form record: a (region, year, energy type) triple
// with its production value in MWh.
type Observation struct {
	RegionCode string     `json:"region_code"`
	RegionName string     `json:"region_name"`
	Year       int        `json:"year"`
	EnergyType EnergyType `json:"energy_type"`
	ValueMWh   float64    `json:"value_mwh"`
}
