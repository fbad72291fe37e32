package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"enrdash/internal/aggregate"
)

const sheetName = "Production"

// WriteXLSX streams the view to w as an XLSX workbook with one sheet.
func (e *Exporter) WriteXLSX(w io.Writer, view *aggregate.FilteredView) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	header := make([]interface{}, len(observationHeaders))
	for i, h := range observationHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, obs := range view.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell for row %d: %w", i, err)
		}
		row := []interface{}{obs.RegionCode, obs.RegionName, obs.Year, string(obs.EnergyType), obs.ValueMWh}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ExportXLSXFile writes the view to a timestamped XLSX file under dir and
// returns the full path.
func (e *Exporter) ExportXLSXFile(dir string, view *aggregate.FilteredView) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	fullPath := filepath.Join(dir, e.Filename("xlsx"))

	e.logger.Info("writing XLSX export",
		slog.String("path", fullPath),
		slog.Int("record_count", len(view.Rows)))

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if err := e.WriteXLSX(file, view); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return fullPath, nil
}
