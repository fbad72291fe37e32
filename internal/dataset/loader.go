package dataset

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"enrdash/internal/errors"
)

// utf8BOM is stripped from the first header cell when present. data.gouv.fr
// exports sometimes carry it.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadCSV reads the semicolon-delimited source file and resolves its schema.
// The file must be UTF-8; any other encoding fails with a FORMAT error, a
// missing required column with a SCHEMA error.
func LoadCSV(path string, logger *slog.Logger) (*RawTable, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewLoadError("failed to open source file", err).
			WithContext("path", path)
	}
	defer f.Close()

	data, err := io.ReadAll(bufio.NewReader(f))
	if err != nil {
		return nil, errors.NewLoadError("failed to read source file", err).
			WithContext("path", path)
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, errors.NewFormatError("source file is not valid UTF-8", nil).
			WithContext("path", path)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.NewFormatError("failed to read header row", err).
			WithContext("path", path)
	}

	schema, err := resolveSchema(header)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewFormatError("malformed delimited text", err).
				WithContext("path", path).
				WithContext("row", rowNum)
		}
		rows = append(rows, record)
	}

	logger.Info("source file loaded",
		slog.String("path", path),
		slog.Int("rows", len(rows)),
		slog.Int("energy_types", len(schema.Production)))

	return &RawTable{Schema: schema, Rows: rows}, nil
}

// resolveSchema maps the header row onto column positions. Production columns
// are recognized by the "Production … (GWh)" shape and looked up in the
// canonical tag table; an unknown production header is a schema drift we
// refuse to guess about.
func resolveSchema(header []string) (Schema, error) {
	schema := Schema{
		Year:       -1,
		RegionName: -1,
		RegionCode: -1,
		GeoShape:   -1,
		GeoPoint:   -1,
		Production: make(map[EnergyType]int),
	}

	for i, col := range header {
		name := strings.TrimSpace(col)
		switch name {
		case ColYear, ColYearASCII:
			schema.Year = i
		case ColRegionName:
			schema.RegionName = i
		case ColRegionCode:
			schema.RegionCode = i
		case ColGeoShape:
			schema.GeoShape = i
		case ColGeoPoint:
			schema.GeoPoint = i
		default:
			if strings.HasPrefix(name, "Production") && strings.HasSuffix(name, "(GWh)") {
				tag, ok := productionColumns[name]
				if !ok {
					return Schema{}, errors.NewSchemaError(
						fmt.Sprintf("unrecognized production column %q", name)).
						WithContext("column", name)
				}
				schema.Production[tag] = i
			}
		}
	}

	missing := make([]string, 0, 5)
	if schema.Year < 0 {
		missing = append(missing, ColYear)
	}
	if schema.RegionName < 0 {
		missing = append(missing, ColRegionName)
	}
	if schema.RegionCode < 0 {
		missing = append(missing, ColRegionCode)
	}
	if schema.GeoShape < 0 {
		missing = append(missing, ColGeoShape)
	}
	if schema.GeoPoint < 0 {
		missing = append(missing, ColGeoPoint)
	}
	if len(missing) > 0 {
		return Schema{}, errors.NewSchemaError(
			fmt.Sprintf("required columns missing from header: %s", strings.Join(missing, ", "))).
			WithContext("missing_columns", missing)
	}
	if len(schema.Production) == 0 {
		return Schema{}, errors.NewSchemaError("no production columns found in header")
	}

	return schema, nil
}
