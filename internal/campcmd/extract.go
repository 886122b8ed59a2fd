package campcmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/parkrec/campdata/internal/config"
	"github.com/parkrec/campdata/internal/extraction"
	"github.com/parkrec/campdata/internal/observability"
	"github.com/parkrec/campdata/internal/providers"
)

type extractOptions struct {
	document    string
	outputDir   string
	pages       []int
	metricsFile string
}

func executeExtract(ctx context.Context, cfg *config.Config, opts extractOptions, s streams) error {
	src, err := extraction.OpenSource(opts.document)
	if err != nil {
		return err
	}

	provider, err := newProvider(cfg.Extract)
	if err != nil {
		return err
	}
	return runExtract(ctx, cfg, provider, src, opts, s)
}

func runExtract(ctx context.Context, cfg *config.Config, provider providers.Provider, src extraction.PageSource, opts extractOptions, s streams) error {
	model := cfg.Extract.Model
	if model == "" {
		model = providers.DefaultModel(cfg.Extract.Provider)
	}
	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = extraction.DefaultOutputDir(opts.document)
	}

	slog.Info("Starting extraction", "document", opts.document, "provider", cfg.Extract.Provider, "model", model, "output_dir", outputDir)

	metrics := observability.NewMetrics()
	defer writeMetrics(metrics, opts.metricsFile)

	pipeline := extraction.New(provider, extraction.Options{
		OutputDir:   outputDir,
		Concurrency: cfg.Extract.Concurrency,
		Model:       model,
		Temperature: cfg.Extract.Temperature,
		Pages:       opts.pages,
	}, metrics)

	start := time.Now()
	result, err := pipeline.Run(ctx, src)
	if err != nil {
		var pageErr *extraction.PageError
		if errors.As(err, &pageErr) {
			return fmt.Errorf("%w\n\nResubmit the page with:\n  campdata extract %s --pages %d", err, opts.document, pageErr.Page)
		}
		return err
	}

	printExtractSummary(s, result, time.Since(start))
	return nil
}

func printExtractSummary(s streams, result *extraction.Result, elapsed time.Duration) {
	fmt.Fprintln(s.err, "\n========================================")
	fmt.Fprintln(s.err, "Extraction Summary")
	fmt.Fprintln(s.err, "========================================")
	fmt.Fprintf(s.err, "Pages extracted:    %d\n", result.Extracted)
	fmt.Fprintf(s.err, "Pages combined:     %d\n", len(result.Pages))
	fmt.Fprintf(s.err, "Elapsed:            %s\n", elapsed.Round(time.Millisecond))
	fmt.Fprintf(s.err, "Page files:         %s\n", result.OutputDir)
	fmt.Fprintf(s.err, "Combined corpus:    %s\n", result.CombinedPath)
	fmt.Fprintln(s.err, strings.Repeat("=", 40))
}
