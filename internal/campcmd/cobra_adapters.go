package campcmd

import (
	"fmt"
	"os"
	"time"

	"github.com/parkrec/campdata/internal/config"
	"github.com/spf13/cobra"
)

// overrides holds command-line values that take precedence over the
// environment when the flag was set explicitly.
type overrides struct {
	provider    string
	model       string
	concurrency int
	region      string
	geocoder    string
	delay       time.Duration
	threshold   float64
}

func loadConfig(cmd *cobra.Command, ov *overrides) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Extract.Provider = ov.provider
	}
	if flags.Changed("model") {
		cfg.Extract.Model = ov.model
	}
	if flags.Changed("concurrency") {
		cfg.Extract.Concurrency = ov.concurrency
	}
	if flags.Changed("region") {
		cfg.Geocode.Region = ov.region
	}
	if flags.Changed("geocoder") {
		cfg.Geocode.Provider = ov.geocoder
	}
	if flags.Changed("geocode-delay") {
		cfg.Geocode.Delay = ov.delay
	}
	if flags.Changed("threshold") {
		cfg.Match.Threshold = ov.threshold
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func commandStreams(cmd *cobra.Command) streams {
	return streams{out: cmd.OutOrStdout(), err: cmd.ErrOrStderr()}
}

func requireFile(path, what string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("%s not found: %s", what, path)
	}
	return nil
}

func addGeocodeFlags(cmd *cobra.Command, opts *ingestOptions, ov *overrides) {
	cmd.Flags().StringVar(&opts.cachePath, "cache", "geocode-cache.json", "Path to the persistent geocode cache")
	cmd.Flags().StringVar(&opts.overridesPath, "overrides", "", "Path to a JSON file of location address overrides")
	cmd.Flags().BoolVar(&opts.noGeocode, "no-geocode", false, "Skip geocoding")
	cmd.Flags().StringVar(&ov.geocoder, "geocoder", "nominatim", "Geocoding service (nominatim or mapbox)")
	cmd.Flags().StringVar(&ov.region, "region", "", "Region appended to every geocoding query")
	cmd.Flags().DurationVar(&ov.delay, "geocode-delay", 1100*time.Millisecond, "Minimum delay between geocoding requests")
}

// NewExtractCmd creates the extract command
func NewExtractCmd() *cobra.Command {
	var opts extractOptions
	var ov overrides

	cmd := &cobra.Command{
		Use:   "extract <document>",
		Short: "Transcribe a camp guide to markdown, one page at a time",
		Long: `Split a PDF (or a directory of page images) into pages and send each page to a
vision-capable model for transcription. Pages are processed concurrently up to
the configured limit. Each page is written as page-NNN.md and all pages are
joined, in page order, into <name>-combined.md.

Use --pages to reprocess selected pages; pages already on disk are reused when
building the combined file.`,
		Example: `  # Transcribe a guide with Gemini
  campdata extract guide.pdf

  # Redo two pages with OpenAI
  campdata extract guide.pdf --provider openai --pages 4,17`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.document = args[0]
			if err := requireFile(opts.document, "document"); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, &ov)
			if err != nil {
				return err
			}
			return executeExtract(cmd.Context(), cfg, opts, commandStreams(cmd))
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "Output directory (defaults to <name>-pages next to the document)")
	cmd.Flags().IntSliceVar(&opts.pages, "pages", nil, "Only process these 1-based pages")
	cmd.Flags().StringVar(&ov.provider, "provider", "gemini", "LLM provider (gemini, openai, or ollama)")
	cmd.Flags().StringVar(&ov.model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().IntVarP(&ov.concurrency, "concurrency", "c", 10, "Maximum pages in flight")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")

	return cmd
}

// NewIngestCmd creates the ingest command
func NewIngestCmd() *cobra.Command {
	var opts ingestOptions
	var ov overrides

	cmd := &cobra.Command{
		Use:   "ingest <workbook.xlsx>",
		Short: "Convert a camp schedule workbook into typed JSON",
		Long: `Read every sheet of a workbook, find the header row, and convert each data row
into a typed camp record. Dates, times, fees and ages are parsed; values that do
not parse are kept as their raw text. Unless --no-geocode is given, each distinct
location is geocoded once through the persistent cache.`,
		Example: `  campdata ingest schedule.xlsx -o camps.json --region "Tacoma, WA"
  campdata ingest schedule.xlsx --no-geocode -o - | jq '.Summer.metadata'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.workbook = args[0]
			if err := requireFile(opts.workbook, "workbook"); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, &ov)
			if err != nil {
				return err
			}
			return executeIngest(cmd.Context(), cfg, opts, commandStreams(cmd))
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "camps.json", "Output dataset path (- for stdout)")
	cmd.Flags().StringVar(&opts.parquetPath, "parquet", "", "Also write a flat parquet export")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	addGeocodeFlags(cmd, &opts, &ov)

	return cmd
}

// NewEnrichCmd creates the enrich command
func NewEnrichCmd() *cobra.Command {
	var opts enrichOptions
	var ov overrides

	cmd := &cobra.Command{
		Use:   "enrich <camps.json> <corpus.md>",
		Short: "Attach descriptions from a transcribed guide to camp records",
		Long: `Parse the combined markdown corpus into headed blocks and attach each block's
description to the matching camp. Matching tries activity codes, exact titles,
normalized titles, and finally word overlap above --threshold. A summary of how
each record matched is printed when done.`,
		Example: `  campdata enrich camps.json guide-combined.md
  campdata enrich camps.json guide-combined.md -o enriched.json --report enrich.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.dataset, opts.corpus = args[0], args[1]
			if err := requireFile(opts.dataset, "dataset"); err != nil {
				return err
			}
			if err := requireFile(opts.corpus, "corpus"); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, &ov)
			if err != nil {
				return err
			}
			return executeEnrich(cfg, opts, commandStreams(cmd))
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output dataset path (defaults to rewriting the input, - for stdout)")
	cmd.Flags().Float64Var(&ov.threshold, "threshold", 0.6, "Minimum word overlap for a fuzzy match")
	cmd.Flags().StringVar(&opts.stopwordsPath, "stopwords", "", "YAML file of words ignored by fuzzy matching")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Write a YAML match report")
	cmd.Flags().StringVar(&opts.parquetPath, "parquet", "", "Also write a flat parquet export")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")

	return cmd
}

// NewRunCmd creates the run command, which ingests and enriches in one pass
func NewRunCmd() *cobra.Command {
	var opts runOptions
	var ov overrides

	cmd := &cobra.Command{
		Use:     "run <workbook.xlsx> <corpus.md>",
		Short:   "Ingest, geocode and enrich in one pass",
		Example: `  campdata run schedule.xlsx guide-combined.md -o camps.json --region "Tacoma, WA"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ingest.workbook, opts.corpus = args[0], args[1]
			if err := requireFile(opts.ingest.workbook, "workbook"); err != nil {
				return err
			}
			if err := requireFile(opts.corpus, "corpus"); err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, &ov)
			if err != nil {
				return err
			}
			return executeRun(cmd.Context(), cfg, opts, commandStreams(cmd))
		},
	}

	cmd.Flags().StringVarP(&opts.ingest.output, "output", "o", "camps.json", "Output dataset path (- for stdout)")
	cmd.Flags().StringVar(&opts.ingest.parquetPath, "parquet", "", "Also write a flat parquet export")
	cmd.Flags().StringVar(&opts.ingest.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	cmd.Flags().Float64Var(&ov.threshold, "threshold", 0.6, "Minimum word overlap for a fuzzy match")
	cmd.Flags().StringVar(&opts.stopwordsPath, "stopwords", "", "YAML file of words ignored by fuzzy matching")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Write a YAML match report")
	addGeocodeFlags(cmd, &opts.ingest, &ov)

	return cmd
}
