package campcmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/parkrec/campdata/internal/config"
	"github.com/parkrec/campdata/internal/enrichment"
	"github.com/parkrec/campdata/internal/models"
	"github.com/parkrec/campdata/internal/observability"
	"github.com/parkrec/campdata/internal/results"
)

type enrichOptions struct {
	dataset       string
	corpus        string
	output        string
	stopwordsPath string
	reportPath    string
	parquetPath   string
	metricsFile   string
}

func executeEnrich(cfg *config.Config, opts enrichOptions, s streams) error {
	metrics := observability.NewMetrics()
	defer writeMetrics(metrics, opts.metricsFile)

	dataset, err := models.LoadDataset(opts.dataset)
	if err != nil {
		return err
	}

	summary, candidates, err := enrichDataset(cfg.Match, dataset, opts.corpus, opts.stopwordsPath, metrics)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = opts.dataset
	}
	if err := writeOutputs(dataset, output, opts.parquetPath, s); err != nil {
		return err
	}

	summary.Print(s.err)
	return saveReport(opts.reportPath, results.ReportConfig{
		Dataset:   opts.dataset,
		Corpus:    opts.corpus,
		Threshold: cfg.Match.Threshold,
		RunID:     runIDOf(dataset),
	}, candidates, summary)
}

// enrichDataset attaches corpus descriptions to every sheet of dataset.
// It returns the run summary and the number of corpus candidates.
func enrichDataset(cfg config.MatchConfig, dataset models.Dataset, corpusPath, stopwordsPath string, metrics *observability.Metrics) (*enrichment.Summary, int, error) {
	data, err := os.ReadFile(corpusPath)
	if err != nil {
		return nil, 0, fmt.Errorf("reading corpus: %w", err)
	}

	descs := enrichment.ParseCorpus(string(data))
	if len(descs) == 0 {
		slog.Warn("Corpus contains no headed blocks", "path", corpusPath)
	}
	slog.Info("Parsed corpus", "path", corpusPath, "candidates", len(descs))

	var stopwords []string
	if stopwordsPath != "" {
		stopwords, err = enrichment.LoadStopwords(stopwordsPath)
		if err != nil {
			return nil, 0, err
		}
	}

	enricher := enrichment.New(enrichment.Options{
		Threshold:       cfg.Threshold,
		Stopwords:       stopwords,
		UnmatchedSample: cfg.UnmatchedSample,
	}, metrics)

	return enricher.EnrichDataset(dataset, descs), len(descs), nil
}

func saveReport(path string, cfg results.ReportConfig, candidates int, summary *enrichment.Summary) error {
	if path == "" {
		return nil
	}
	report := results.NewEnrichmentReport(cfg, candidates, summary, time.Now())
	if err := results.SaveToYAML(path, report); err != nil {
		return err
	}
	slog.Info("Wrote enrichment report", "path", path)
	return nil
}

// runIDOf returns the run identifier stamped on the dataset by ingest.
func runIDOf(dataset models.Dataset) string {
	for _, name := range dataset.SheetNames() {
		if id := dataset[name].Metadata.RunID; id != "" {
			return id
		}
	}
	return ""
}
