package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"enrdash/internal/aggregate"
)

// utf8BOM helps Excel recognize UTF-8 encoded region names.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// observationHeaders is the column order for exported observation rows.
var observationHeaders = []string{"region_code", "region_name", "year", "energy_type", "value_mwh"}

// Exporter writes filtered views to CSV and XLSX.
type Exporter struct {
	logger *slog.Logger
}

// New creates an exporter.
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

// Filename returns a timestamped export file name for the given format.
func (e *Exporter) Filename(format string) string {
	return fmt.Sprintf("production_%s.%s", time.Now().Format("20060102_150405"), format)
}

// WriteCSV streams the view to w as a BOM-prefixed CSV document.
func (e *Exporter) WriteCSV(w io.Writer, view *aggregate.FilteredView) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(observationHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, obs := range view.Rows {
		record := []string{
			obs.RegionCode,
			obs.RegionName,
			formatYear(obs.Year),
			string(obs.EnergyType),
			formatValue(obs.ValueMWh),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportCSVFile writes the view to a timestamped CSV file under dir and
// returns the full path.
func (e *Exporter) ExportCSVFile(dir string, view *aggregate.FilteredView) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	fullPath := filepath.Join(dir, e.Filename("csv"))

	e.logger.Info("writing CSV export",
		slog.String("path", fullPath),
		slog.Int("record_count", len(view.Rows)))

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if err := e.WriteCSV(file, view); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return fullPath, nil
}
