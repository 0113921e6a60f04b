// Command comtrade-export decodes a COMTRADE bundle from disk and writes
// the scaled waveform series to CSV or an Excel workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ctview/internal/analysis"
	"ctview/internal/exporter"
	"ctview/internal/record"
	"ctview/pkg/contracts/domain"
)

func main() {
	var (
		cfgPath = flag.String("cfg", "", "path to the .cfg configuration file")
		datPath = flag.String("dat", "", "path to the .dat data file (defaults to cfg with .dat extension)")
		outPath = flag.String("out", "", "output path (defaults to cfg basename with format extension)")
		format  = flag.String("format", "csv", "output format: csv or xlsx")
		unit    = flag.String("unit", "secondary", "unit system for csv export: primary or secondary")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(logger, *cfgPath, *datPath, *outPath, *format, *unit); err != nil {
		logger.Error("export failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, cfgPath, datPath, outPath, format, unit string) error {
	if cfgPath == "" {
		return fmt.Errorf("missing required -cfg flag")
	}
	if format != "csv" && format != "xlsx" {
		return fmt.Errorf("unsupported format %q, expected csv or xlsx", format)
	}
	unitSystem := domain.UnitSystem(unit)
	if !unitSystem.IsValid() {
		return fmt.Errorf("unsupported unit %q, expected primary or secondary", unit)
	}
	if datPath == "" {
		datPath = strings.TrimSuffix(cfgPath, filepath.Ext(cfgPath)) + ".dat"
	}
	if outPath == "" {
		outPath = strings.TrimSuffix(cfgPath, filepath.Ext(cfgPath)) + "." + format
	}

	cfgBytes, err := os.ReadFile(cfgPath)
	if err != nil {
		return fmt.Errorf("read configuration file: %w", err)
	}
	datBytes, err := os.ReadFile(datPath)
	if err != nil {
		return fmt.Errorf("read data file: %w", err)
	}

	adapter := record.NewAdapter(logger)
	rec, err := adapter.Build(context.Background(), string(cfgBytes), datBytes, "")
	if err != nil {
		return err
	}
	primary, secondary := analysis.BuildSeries(rec)

	logger.Info("record decoded",
		slog.String("station", rec.Station),
		slog.Int("analog_channels", len(rec.Analog)),
		slog.Int("status_channels", len(rec.Status)),
		slog.Int("samples", rec.SampleCount()))

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer out.Close()

	switch format {
	case "xlsx":
		err = exporter.WriteSeriesWorkbook(out, primary, secondary)
	default:
		set := secondary
		if unitSystem == domain.UnitPrimary {
			set = primary
		}
		err = exporter.WriteSeriesCSV(out, set, exporter.CSVOptions{BOMPrefix: true})
	}
	if err != nil {
		return err
	}

	logger.Info("export complete", slog.String("path", outPath))
	return nil
}
