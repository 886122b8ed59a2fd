package campcmd

import (
	"context"

	"github.com/parkrec/campdata/internal/config"
	"github.com/parkrec/campdata/internal/observability"
	"github.com/parkrec/campdata/internal/results"
)

type runOptions struct {
	ingest        ingestOptions
	corpus        string
	stopwordsPath string
	reportPath    string
}

// executeRun ingests and geocodes a workbook, then enriches the result
// from a corpus before writing anything out.
func executeRun(ctx context.Context, cfg *config.Config, opts runOptions, s streams) error {
	metrics := observability.NewMetrics()
	defer writeMetrics(metrics, opts.ingest.metricsFile)

	dataset, err := ingestWorkbook(ctx, cfg, opts.ingest, metrics)
	if err != nil {
		return err
	}

	summary, candidates, err := enrichDataset(cfg.Match, dataset, opts.corpus, opts.stopwordsPath, metrics)
	if err != nil {
		return err
	}

	if err := writeOutputs(dataset, opts.ingest.output, opts.ingest.parquetPath, s); err != nil {
		return err
	}

	printIngestSummary(s, dataset)
	summary.Print(s.err)
	return saveReport(opts.reportPath, results.ReportConfig{
		Dataset:   opts.ingest.workbook,
		Corpus:    opts.corpus,
		Threshold: cfg.Match.Threshold,
		RunID:     runIDOf(dataset),
	}, candidates, summary)
}
