package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"enrdash/internal/aggregate"
	"enrdash/internal/config"
	"enrdash/internal/exporter"
	"enrdash/internal/infrastructure"
	"enrdash/internal/store"
	"enrdash/internal/validation"
)

func main() {
	inFile := flag.String("in", "", "input semicolon-delimited production CSV (defaults to the configured source file)")
	outDir := flag.String("out", "", "output directory for exports (defaults to the configured export directory)")
	format := flag.String("format", "csv", "export format: csv or xlsx")
	yearMin := flag.Int("year-min", 0, "lower bound of the year range (0 means unbounded)")
	yearMax := flag.Int("year-max", 0, "upper bound of the year range (0 means unbounded)")
	regions := flag.String("regions", "", "comma-separated region codes to keep (empty means all)")
	types := flag.String("types", "", "comma-separated energy types to keep (empty means all)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	source := cfg.SourceFilePath()
	if *inFile != "" {
		source = *inFile
	}
	exportDir := cfg.ExportDirPath()
	if *outDir != "" {
		exportDir = *outDir
	}

	// One trace ID per run so the batch logs correlate
	ctx := infrastructure.EnsureTraceID(context.Background())

	st := store.New(source, logger)
	if err := st.Load(ctx); err != nil {
		logger.ErrorContext(ctx, "Pipeline failed", "error", err, "source", source)
		os.Exit(1)
	}

	snapshot := st.Snapshot()
	logger.InfoContext(ctx, "Dataset loaded",
		"observations", len(snapshot.Observations),
		"regions", len(snapshot.Regions),
		"year_min", snapshot.YearMin,
		"year_max", snapshot.YearMax)

	if snapshot.Geo != nil && len(snapshot.Geo.Failures) > 0 {
		logger.WarnContext(ctx, "Some region geometries could not be parsed",
			"failed_codes", snapshot.Geo.FailedCodes())
	}

	spec := aggregate.FilterSpec{
		YearMin:     *yearMin,
		YearMax:     *yearMax,
		Regions:     splitList(*regions),
		EnergyTypes: splitList(*types),
	}

	view, err := snapshot.Engine.Filter(spec)
	if err != nil {
		logger.ErrorContext(ctx, "Filter failed", "error", err)
		os.Exit(1)
	}

	if err := validation.NewFileValidator(logger).ValidateOutputDirectory(exportDir); err != nil {
		logger.ErrorContext(ctx, "Export directory not usable", "error", err)
		os.Exit(1)
	}

	exp := exporter.New(logger)

	var path string
	switch *format {
	case "csv":
		path, err = exp.ExportCSVFile(exportDir, view)
	case "xlsx":
		path, err = exp.ExportXLSXFile(exportDir, view)
	default:
		logger.ErrorContext(ctx, "Unknown export format", "format", *format)
		os.Exit(1)
	}
	if err != nil {
		logger.ErrorContext(ctx, "Export failed", "error", err, "format", *format)
		os.Exit(1)
	}

	fmt.Printf("Exported %d observations to %s\n", len(view.Rows), path)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
