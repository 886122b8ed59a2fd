package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/parkrec/campdata/internal/campcmd"
	"github.com/parkrec/campdata/internal/config"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "campdata",
		Short: "Camp guide data pipeline with LLM-powered page transcription",
		Long: `Campdata turns a parks and recreation summer camp guide into a web-ready dataset.

It transcribes the printed guide page by page with a vision-capable LLM, converts
the camp schedule workbook into typed records, geocodes camp locations, and
attaches the guide's descriptions to each camp.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return setupLogging(cfg.LogLevel, cfg.LogFormat, verbose)
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	cmd.AddCommand(campcmd.NewExtractCmd())
	cmd.AddCommand(campcmd.NewIngestCmd())
	cmd.AddCommand(campcmd.NewEnrichCmd())
	cmd.AddCommand(campcmd.NewRunCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// setupLogging installs the default slog logger. Logs always go to stderr
// so that datasets written to stdout stay clean.
func setupLogging(levelName, format string, verbose bool) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelName)); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q (supported: text, json)", format)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}
