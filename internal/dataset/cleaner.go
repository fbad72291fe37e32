package dataset

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"enrdash/internal/errors"
)

// Cleaner applies the missing-value policy and enforces dataset invariants.
// It is the only stage allowed to reject data; everything downstream assumes
// a clean table.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a cleaner with the given logger.
func NewCleaner(logger *slog.Logger) *Cleaner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cleaner{logger: logger}
}

// Clean converts raw rows into typed wide rows with the same row count.
// Missing numeric production values become 0, missing region name/code are
// forward-filled from the nearest preceding row. Invariants enforced here:
// no negative production, exactly 13 distinct region codes, and a gap-free
// annual year cadence.
func (c *Cleaner) Clean(raw *RawTable) ([]WideRow, error) {
	schema := raw.Schema
	rows := make([]WideRow, 0, len(raw.Rows))

	var lastName, lastCode string
	zeroFilled := 0
	forwardFilled := 0

	for i, record := range raw.Rows {
		rowNum := i + 2 // 1-based, after header

		year, err := parseYear(cell(record, schema.Year))
		if err != nil {
			return nil, errors.NewValidationError("invalid year value").
				WithContext("row", rowNum).
				WithContext("value", cell(record, schema.Year))
		}

		name := strings.TrimSpace(cell(record, schema.RegionName))
		if name == "" {
			if lastName == "" {
				return nil, errors.NewValidationError("region name missing with no prior value to fill from").
					WithContext("row", rowNum)
			}
			name = lastName
			forwardFilled++
		}
		lastName = name

		code := strings.TrimSpace(cell(record, schema.RegionCode))
		if code == "" {
			if lastCode == "" {
				return nil, errors.NewValidationError("region code missing with no prior value to fill from").
					WithContext("row", rowNum)
			}
			code = lastCode
			forwardFilled++
		}
		lastCode = code

		production := make(map[EnergyType]float64, len(schema.Production))
		for tag, idx := range schema.Production {
			value := strings.TrimSpace(cell(record, idx))
			if value == "" {
				production[tag] = 0
				zeroFilled++
				continue
			}
			f, err := parseProduction(value)
			if err != nil {
				return nil, errors.NewValidationError("unparseable production value").
					WithContext("row", rowNum).
					WithContext("energy_type", string(tag)).
					WithContext("value", value)
			}
			if f < 0 {
				return nil, errors.NewValidationError(
					fmt.Sprintf("negative production value %g", f)).
					WithContext("row", rowNum).
					WithContext("energy_type", string(tag))
			}
			production[tag] = f
		}

		rows = append(rows, WideRow{
			Year:       year,
			RegionName: name,
			RegionCode: code,
			Production: production,
			GeoShape:   cell(record, schema.GeoShape),
			GeoPoint:   cell(record, schema.GeoPoint),
		})
	}

	if err := c.validateRegions(rows); err != nil {
		return nil, err
	}
	if err := c.validateYears(rows); err != nil {
		return nil, err
	}

	c.logger.Info("table cleaned",
		slog.Int("rows", len(rows)),
		slog.Int("zero_filled", zeroFilled),
		slog.Int("forward_filled", forwardFilled))

	return rows, nil
}

// validateRegions checks that exactly ExpectedRegionCount distinct codes are
// present.
func (c *Cleaner) validateRegions(rows []WideRow) error {
	codes := make(map[string]struct{})
	for _, row := range rows {
		codes[row.RegionCode] = struct{}{}
	}
	if len(codes) != ExpectedRegionCount {
		return errors.NewValidationError(
			fmt.Sprintf("expected %d distinct region codes, found %d", ExpectedRegionCount, len(codes))).
			WithContext("region_count", len(codes))
	}
	return nil
}

// validateYears checks the annual cadence: every year between the observed
// minimum and maximum must be present.
func (c *Cleaner) validateYears(rows []WideRow) error {
	seen := make(map[int]struct{})
	for _, row := range rows {
		seen[row.Year] = struct{}{}
	}
	if len(seen) == 0 {
		return errors.NewValidationError("no observation years present")
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)

	for y := years[0]; y <= years[len(years)-1]; y++ {
		if _, ok := seen[y]; !ok {
			return errors.NewValidationError(
				fmt.Sprintf("year %d missing from annual cadence %d-%d", y, years[0], years[len(years)-1])).
				WithContext("missing_year", y)
		}
	}
	return nil
}

// cell returns the record field at idx, or "" when the row is short.
func cell(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return record[idx]
}

func parseYear(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

// parseProduction parses a production value, tolerating a comma decimal
// separator from older dataset vintages.
func parseProduction(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && strings.Contains(s, ",") && !strings.Contains(s, ".") {
		return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	}
	return f, err
}
