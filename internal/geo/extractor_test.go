package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrdash/internal/dataset"
	"enrdash/internal/errors"
)

const (
	polygonJSON = `{"type": "Polygon", "coordinates": [[[-2.0, 48.0], [-1.0, 48.0], [-1.0, 49.0], [-2.0, 48.0]]]}`
	multiJSON   = `{"type": "MultiPolygon", "coordinates": [[[[9.0, 42.0], [9.5, 42.0], [9.5, 43.0], [9.0, 42.0]]]]}`
)

func geoRow(code, shape, point string) dataset.WideRow {
	return dataset.WideRow{
		Year:       2019,
		RegionCode: code,
		RegionName: "Region " + code,
		GeoShape:   shape,
		GeoPoint:   point,
	}
}

func TestExtract(t *testing.T) {
	t.Run("parses polygon and center point", func(t *testing.T) {
		ex := NewExtractor(nil)

		result := ex.Extract([]dataset.WideRow{geoRow("53", polygonJSON, "48.18, -2.84")})

		require.Contains(t, result.Shapes, "53")
		assert.Empty(t, result.Failures)

		shape := result.Shapes["53"]
		assert.Equal(t, 48.18, shape.Center.Lat)
		assert.Equal(t, -2.84, shape.Center.Lon)

		ring := shape.Ring()
		require.Len(t, ring, 4)
		assert.Equal(t, []float64{-2.0, 48.0}, ring[0])
	})

	t.Run("uses first polygon of a MultiPolygon", func(t *testing.T) {
		ex := NewExtractor(nil)

		result := ex.Extract([]dataset.WideRow{geoRow("94", multiJSON, "42.15, 9.10")})

		require.Contains(t, result.Shapes, "94")
		ring := result.Shapes["94"].Ring()
		require.Len(t, ring, 4)
		assert.Equal(t, []float64{9.0, 42.0}, ring[0])
	})

	t.Run("malformed shape fails that region only", func(t *testing.T) {
		ex := NewExtractor(nil)

		result := ex.Extract([]dataset.WideRow{
			geoRow("53", polygonJSON, "48.18, -2.84"),
			geoRow("11", "{not json", "48.7, 2.5"),
			geoRow("94", multiJSON, "42.15, 9.10"),
		})

		assert.Len(t, result.Shapes, 2)
		require.Contains(t, result.Failures, "11")
		assert.Equal(t, []string{"11"}, result.FailedCodes())
		assert.Equal(t, errors.ErrTypeGeoParse, result.Failures["11"].Type)
	})

	t.Run("malformed center point is a failure", func(t *testing.T) {
		ex := NewExtractor(nil)

		result := ex.Extract([]dataset.WideRow{geoRow("53", polygonJSON, "not a point")})

		assert.Empty(t, result.Shapes)
		assert.Contains(t, result.Failures, "53")
	})

	t.Run("unsupported geometry type is a failure", func(t *testing.T) {
		ex := NewExtractor(nil)

		result := ex.Extract([]dataset.WideRow{
			geoRow("53", `{"type": "Point", "coordinates": [1.0, 2.0]}`, "48.18, -2.84"),
		})

		assert.Contains(t, result.Failures, "53")
	})

	t.Run("repeat rows hit the cache", func(t *testing.T) {
		ex := NewExtractor(nil)

		first := ex.Extract([]dataset.WideRow{geoRow("53", polygonJSON, "48.18, -2.84")})
		// Second pass carries broken text for the same code; the cached
		// shape wins because the code is parsed once per source.
		second := ex.Extract([]dataset.WideRow{geoRow("53", "{broken", "nope")})

		assert.Len(t, first.Shapes, 1)
		assert.Len(t, second.Shapes, 1)
		assert.Empty(t, second.Failures)
	})

	t.Run("reset clears cached shapes and failures", func(t *testing.T) {
		ex := NewExtractor(nil)

		ex.Extract([]dataset.WideRow{geoRow("53", "{broken", "nope")})
		ex.Reset()
		result := ex.Extract([]dataset.WideRow{geoRow("53", polygonJSON, "48.18, -2.84")})

		assert.Len(t, result.Shapes, 1)
		assert.Empty(t, result.Failures)
	})

	t.Run("result is a snapshot, not a live view", func(t *testing.T) {
		ex := NewExtractor(nil)

		first := ex.Extract([]dataset.WideRow{geoRow("53", polygonJSON, "48.18, -2.84")})
		ex.Extract([]dataset.WideRow{geoRow("94", multiJSON, "42.15, 9.10")})

		assert.Len(t, first.Shapes, 1)
	})
}
