package results

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parkrec/campdata/internal/enrichment"
	"gopkg.in/yaml.v3"
)

// ReportConfig records the inputs of an enrichment run
type ReportConfig struct {
	Dataset   string  `yaml:"dataset"`
	Corpus    string  `yaml:"corpus"`
	Threshold float64 `yaml:"threshold"`
	RunID     string  `yaml:"runid,omitempty"`
	Timestamp string  `yaml:"timestamp"`
}

// ReportCounts holds the match counts per method
type ReportCounts struct {
	Total      int `yaml:"total"`
	Code       int `yaml:"code"`
	Name       int `yaml:"name"`
	Normalized int `yaml:"normalized"`
	Fuzzy      int `yaml:"fuzzy"`
	Unmatched  int `yaml:"unmatched"`
}

// EnrichmentReport is the YAML summary of an enrichment run
type EnrichmentReport struct {
	Config     ReportConfig `yaml:"config"`
	Counts     ReportCounts `yaml:"counts"`
	Candidates int          `yaml:"candidates"`
	Unmatched  []string     `yaml:"unmatched,omitempty"`
}

// NewEnrichmentReport builds a report from a run summary.
func NewEnrichmentReport(cfg ReportConfig, candidates int, summary *enrichment.Summary, now time.Time) EnrichmentReport {
	cfg.Timestamp = now.Format(time.RFC3339)
	return EnrichmentReport{
		Config: cfg,
		Counts: ReportCounts{
			Total:      summary.Total,
			Code:       summary.Counts[enrichment.MethodCode],
			Name:       summary.Counts[enrichment.MethodName],
			Normalized: summary.Counts[enrichment.MethodNormalized],
			Fuzzy:      summary.Counts[enrichment.MethodFuzzy],
			Unmatched:  summary.Counts[enrichment.MethodUnmatched],
		},
		Candidates: candidates,
		Unmatched:  summary.Unmatched,
	}
}

// SaveToYAML writes the report to path
func SaveToYAML(path string, report EnrichmentReport) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	data, err := yaml.Marshal(&report)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	return nil
}
