// Package observability holds the per-run Prometheus metrics.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "campdata"

// Metrics holds the Prometheus counters and histograms for one pipeline run.
type Metrics struct {
	registry *prometheus.Registry

	// Extraction metrics.
	PagesExtracted *prometheus.CounterVec // labels: outcome={success,error}
	PageDuration   prometheus.Histogram

	// Ingest metrics.
	RecordsIngested *prometheus.CounterVec // labels: sheet
	SheetsSkipped   prometheus.Counter

	// Geocoding metrics.
	GeocodeRequests *prometheus.CounterVec // labels: outcome={success,empty,error}
	GeocodeCache    *prometheus.CounterVec // labels: result={hit,miss}

	// Enrichment metrics.
	EnrichMatches *prometheus.CounterVec // labels: method={code,name,normalized,fuzzy,unmatched}
}

// NewMetrics creates the pipeline metrics on a fresh registry so a batch run
// can write them out once it finishes.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		PagesExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_extracted_total",
			Help:      "Document pages submitted for extraction by outcome.",
		}, []string{"outcome"}),
		PageDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "page_extraction_duration_seconds",
			Help:      "Time spent extracting a single page, including the wait for a slot.",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}),
		RecordsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_ingested_total",
			Help:      "Camp records read from the workbook by sheet.",
		}, []string{"sheet"}),
		SheetsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sheets_skipped_total",
			Help:      "Workbook sheets skipped because no header row was found.",
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding service requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocode cache lookups by result.",
		}, []string{"result"}),
		EnrichMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrichment_matches_total",
			Help:      "Description matches by method.",
		}, []string{"method"}),
	}

	m.registry.MustRegister(
		m.PagesExtracted,
		m.PageDuration,
		m.RecordsIngested,
		m.SheetsSkipped,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.EnrichMatches,
	)

	return m
}

// Registry exposes the run registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the text exposition format for a
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
