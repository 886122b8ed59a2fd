package campcmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/oklog/ulid/v2"
	"github.com/parkrec/campdata/internal/config"
	"github.com/parkrec/campdata/internal/geocoding"
	"github.com/parkrec/campdata/internal/ingest"
	"github.com/parkrec/campdata/internal/models"
	"github.com/parkrec/campdata/internal/observability"
	"github.com/parkrec/campdata/internal/results"
	"github.com/parkrec/campdata/internal/storage"
)

type ingestOptions struct {
	workbook      string
	output        string
	cachePath     string
	overridesPath string
	parquetPath   string
	noGeocode     bool
	metricsFile   string
}

func executeIngest(ctx context.Context, cfg *config.Config, opts ingestOptions, s streams) error {
	metrics := observability.NewMetrics()
	defer writeMetrics(metrics, opts.metricsFile)

	dataset, err := ingestWorkbook(ctx, cfg, opts, metrics)
	if err != nil {
		return err
	}

	if err := writeOutputs(dataset, opts.output, opts.parquetPath, s); err != nil {
		return err
	}
	printIngestSummary(s, dataset)
	return nil
}

func ingestWorkbook(ctx context.Context, cfg *config.Config, opts ingestOptions, metrics *observability.Metrics) (models.Dataset, error) {
	runID := ulid.Make().String()
	slog.Info("Starting ingest", "workbook", opts.workbook, "run_id", runID)

	in := ingest.New(clockwork.NewRealClock(), runID, metrics)
	dataset, err := in.IngestFile(opts.workbook)
	if err != nil {
		return nil, err
	}
	if len(dataset) == 0 {
		return nil, fmt.Errorf("no sheet in %s has a %q header row", opts.workbook, ingest.HeaderTitle)
	}

	if opts.noGeocode {
		return dataset, nil
	}
	if err := geocodeDataset(ctx, cfg.Geocode, dataset, opts, metrics); err != nil {
		return nil, err
	}
	return dataset, nil
}

func geocodeDataset(ctx context.Context, cfg config.GeocodeConfig, dataset models.Dataset, opts ingestOptions, metrics *observability.Metrics) (err error) {
	cache, err := storage.Open(opts.cachePath)
	if err != nil {
		return err
	}
	defer func() {
		if ferr := cache.Flush(); ferr != nil && err == nil {
			err = ferr
		}
	}()

	overrides, err := geocoding.LoadOverrides(opts.overridesPath)
	if err != nil {
		return err
	}

	resolver := geocoding.NewResolver(newGeocoder(cfg), cache, overrides, geocoding.Options{
		Region: cfg.Region,
		Delay:  cfg.Delay,
	}, metrics)

	for _, name := range dataset.SheetNames() {
		if err := resolver.Apply(ctx, dataset[name].Camps); err != nil {
			return fmt.Errorf("geocoding sheet %q: %w", name, err)
		}
	}
	return nil
}

func writeOutputs(dataset models.Dataset, output, parquetPath string, s streams) error {
	if err := models.WriteDataset(dataset, output, s.out); err != nil {
		return err
	}
	if output != "-" {
		slog.Info("Wrote dataset", "path", output)
	}

	if parquetPath != "" {
		if err := results.WriteParquet(parquetPath, dataset); err != nil {
			return err
		}
		slog.Info("Wrote parquet export", "path", parquetPath)
	}
	return nil
}

func printIngestSummary(s streams, dataset models.Dataset) {
	fmt.Fprintln(s.err, "\n========================================")
	fmt.Fprintln(s.err, "Ingest Summary")
	fmt.Fprintln(s.err, "========================================")
	for _, name := range dataset.SheetNames() {
		sheet := dataset[name]
		located := 0
		for _, c := range sheet.Camps {
			if c.Coordinates != nil {
				located++
			}
		}
		fmt.Fprintf(s.err, "%-20s %4d records, %4d geocoded, %d locations\n", name+":", sheet.Metadata.TotalCount, located, len(sheet.Metadata.Locations))
	}
	fmt.Fprintln(s.err, strings.Repeat("=", 40))
}
