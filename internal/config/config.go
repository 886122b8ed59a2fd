// Package config loads campdata settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config holds all pipeline settings, populated from environment variables.
type Config struct {
	LogLevel  string `validate:"oneof=debug info warn error"`
	LogFormat string `validate:"oneof=text json"`

	Extract ExtractConfig
	Geocode GeocodeConfig
	Match   MatchConfig
}

// ExtractConfig configures the brochure extraction provider.
type ExtractConfig struct {
	Provider     string `validate:"oneof=gemini openai ollama"`
	Model        string
	Concurrency  int     `validate:"min=1,max=100"`
	Temperature  float64 `validate:"gte=0,lte=2"`
	GeminiAPIKey string
	OpenAIAPIKey string
	OllamaURL    string `validate:"omitempty,url"`
}

// GeocodeConfig configures location lookups.
type GeocodeConfig struct {
	Provider     string `validate:"oneof=nominatim mapbox"`
	Region       string
	Delay        time.Duration `validate:"gte=0s"`
	Timeout      time.Duration `validate:"gt=0s"`
	NominatimURL string        `validate:"required,url"`
	UserAgent    string        `validate:"required"`
	MapboxToken  string        `validate:"required_if=Provider mapbox"`
}

// MatchConfig configures description matching.
type MatchConfig struct {
	Threshold       float64 `validate:"gt=0,lte=1"`
	UnmatchedSample int     `validate:"gte=0"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	concurrency, err := envInt("EXTRACT_CONCURRENCY", 10)
	if err != nil {
		return nil, err
	}
	temperature, err := envFloat("EXTRACT_TEMPERATURE", 0.1)
	if err != nil {
		return nil, err
	}
	delay, err := envDuration("GEOCODE_DELAY", 1100*time.Millisecond)
	if err != nil {
		return nil, err
	}
	timeout, err := envDuration("GEOCODE_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	threshold, err := envFloat("MATCH_THRESHOLD", 0.6)
	if err != nil {
		return nil, err
	}
	sample, err := envInt("MATCH_UNMATCHED_SAMPLE", 20)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		LogLevel:  strings.ToLower(envOrDefault("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(envOrDefault("LOG_FORMAT", "text")),
		Extract: ExtractConfig{
			Provider:     envOrDefault("EXTRACT_PROVIDER", "gemini"),
			Model:        os.Getenv("EXTRACT_MODEL"),
			Concurrency:  concurrency,
			Temperature:  temperature,
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
			OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
			OllamaURL:    os.Getenv("OLLAMA_URL"),
		},
		Geocode: GeocodeConfig{
			Provider:     envOrDefault("GEOCODE_PROVIDER", "nominatim"),
			Region:       os.Getenv("GEOCODE_REGION"),
			Delay:        delay,
			Timeout:      timeout,
			NominatimURL: envOrDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
			UserAgent:    envOrDefault("GEOCODE_USER_AGENT", "campdata/0.1 (parks and recreation camp guide)"),
			MapboxToken:  os.Getenv("MAPBOX_TOKEN"),
		},
		Match: MatchConfig{
			Threshold:       threshold,
			UnmatchedSample: sample,
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags. Call it again after applying flag overrides.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
