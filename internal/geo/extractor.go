// Package geo parses the GeoJSON shape and center-point strings embedded in
// the source table into structured geometry, once per region.
package geo

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"enrdash/internal/dataset"
	"enrdash/internal/errors"
)

// Point is a region's center coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Shape is a region's parsed boundary and center. Immutable after load.
type Shape struct {
	RegionCode string
	Boundary   *geom.Polygon
	Center     Point
}

// Ring returns the outer boundary as (lon, lat) pairs for serialization.
func (s Shape) Ring() [][]float64 {
	if s.Boundary == nil {
		return nil
	}
	coords := s.Boundary.LinearRing(0).Coords()
	ring := make([][]float64, len(coords))
	for i, c := range coords {
		ring[i] = []float64{c.X(), c.Y()}
	}
	return ring
}

// Result is the outcome of one extraction pass. Failures carry the region
// codes whose geometry could not be parsed; their production data is
// unaffected and the presentation layer decides how to degrade.
type Result struct {
	Shapes   map[string]Shape
	Failures map[string]*errors.AppError
}

// FailedCodes returns the failed region codes sorted by code.
func (r *Result) FailedCodes() []string {
	codes := make([]string, 0, len(r.Failures))
	for code := range r.Failures {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Extractor parses region geometry with a process-wide cache keyed by region
// code. Each shape is parsed exactly once per source; Reset invalidates the
// cache on explicit reload.
type Extractor struct {
	logger *slog.Logger

	mu       sync.Mutex
	shapes   map[string]Shape
	failures map[string]*errors.AppError
}

// NewExtractor creates a geometry extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		logger:   logger.With(slog.String("component", "geo_extractor")),
		shapes:   make(map[string]Shape),
		failures: make(map[string]*errors.AppError),
	}
}

// Extract parses the geometry columns of the cleaned wide table, one parse
// per distinct region code. A malformed shape fails that region only; the
// remaining regions still extract.
func (e *Extractor) Extract(rows []dataset.WideRow) *Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	parsed := 0
	for _, row := range rows {
		code := row.RegionCode
		if _, ok := e.shapes[code]; ok {
			continue
		}
		if _, ok := e.failures[code]; ok {
			continue
		}

		shape, err := parseShape(code, row.GeoShape, row.GeoPoint)
		if err != nil {
			e.failures[code] = errors.NewGeoParseError(code, err)
			e.logger.Warn("geometry parse failed, region excluded from map views",
				slog.String("region_code", code),
				slog.String("error", err.Error()))
			continue
		}
		e.shapes[code] = shape
		parsed++
	}

	if parsed > 0 {
		e.logger.Info("geometry extracted",
			slog.Int("regions", len(e.shapes)),
			slog.Int("failures", len(e.failures)))
	}

	return e.snapshotLocked()
}

// Reset clears the cache. Called on explicit reload; otherwise the cache
// lives for the process lifetime.
func (e *Extractor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shapes = make(map[string]Shape)
	e.failures = make(map[string]*errors.AppError)
}

func (e *Extractor) snapshotLocked() *Result {
	shapes := make(map[string]Shape, len(e.shapes))
	for code, s := range e.shapes {
		shapes[code] = s
	}
	failures := make(map[string]*errors.AppError, len(e.failures))
	for code, err := range e.failures {
		failures[code] = err
	}
	return &Result{Shapes: shapes, Failures: failures}
}

// parseShape parses one region's GeoJSON boundary and "lat, lon" center.
func parseShape(code, shapeText, pointText string) (Shape, error) {
	boundary, err := parsePolygon(shapeText)
	if err != nil {
		return Shape{}, err
	}
	center, err := parsePoint(pointText)
	if err != nil {
		return Shape{}, err
	}
	return Shape{RegionCode: code, Boundary: boundary, Center: center}, nil
}

// parsePolygon converts a GeoJSON Polygon or MultiPolygon string into a
// go-geom polygon. For a MultiPolygon the first (mainland) polygon is used.
func parsePolygon(geojsonStr string) (*geom.Polygon, error) {
	geojsonStr = strings.TrimSpace(strings.Trim(geojsonStr, "\""))
	if geojsonStr == "" {
		return nil, fmt.Errorf("empty geometry text")
	}

	var g geom.T
	if err := geojson.Unmarshal([]byte(geojsonStr), &g); err != nil {
		return nil, fmt.Errorf("parsing GeoJSON: %w", err)
	}

	switch geometry := g.(type) {
	case *geom.Polygon:
		if geometry.NumLinearRings() == 0 {
			return nil, fmt.Errorf("empty polygon coordinates")
		}
		return geometry, nil
	case *geom.MultiPolygon:
		if geometry.NumPolygons() == 0 {
			return nil, fmt.Errorf("empty MultiPolygon coordinates")
		}
		return geometry.Polygon(0), nil
	default:
		return nil, fmt.Errorf("unsupported GeoJSON type %T", g)
	}
}

// parsePoint parses the "lat, lon" center string.
func parsePoint(pointText string) (Point, error) {
	parts := strings.Split(strings.TrimSpace(pointText), ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("center point %q is not a lat, lon pair", pointText)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("parsing center latitude: %w", err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Point{}, fmt.Errorf("parsing center longitude: %w", err)
	}
	return Point{Lat: lat, Lon: lon}, nil
}
