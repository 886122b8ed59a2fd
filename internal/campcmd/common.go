package campcmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/parkrec/campdata/internal/config"
	"github.com/parkrec/campdata/internal/gemini"
	"github.com/parkrec/campdata/internal/geocoding"
	"github.com/parkrec/campdata/internal/observability"
	"github.com/parkrec/campdata/internal/ollama"
	"github.com/parkrec/campdata/internal/openai"
	"github.com/parkrec/campdata/internal/providers"
)

// streams carries where results and summaries are written.
type streams struct {
	out io.Writer
	err io.Writer
}

func newProvider(cfg config.ExtractConfig) (providers.Provider, error) {
	switch cfg.Provider {
	case "gemini":
		return gemini.New(cfg.GeminiAPIKey), nil
	case "openai":
		return openai.New(cfg.OpenAIAPIKey), nil
	case "ollama":
		return ollama.New(cfg.OllamaURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s (supported: gemini, openai, ollama)", cfg.Provider)
	}
}

func newGeocoder(cfg config.GeocodeConfig) geocoding.Geocoder {
	if cfg.Provider == "mapbox" {
		return geocoding.NewMapboxClient(cfg.MapboxToken, cfg.Timeout)
	}
	return geocoding.NewNominatimClient(cfg.NominatimURL, cfg.UserAgent, cfg.Timeout)
}

func writeMetrics(metrics *observability.Metrics, path string) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		slog.Error("Unable to write metrics file", "path", path, "err", err)
		return
	}
	slog.Debug("Wrote metrics", "path", path)
}
