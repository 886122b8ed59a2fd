package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsUsesIsolatedRegistry(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.GeocodeCache.WithLabelValues("hit").Inc()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.GeocodeCache.WithLabelValues("hit")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.GeocodeCache.WithLabelValues("hit")))
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.EnrichMatches.WithLabelValues("fuzzy").Add(3)
	m.SheetsSkipped.Inc()

	path := filepath.Join(t.TempDir(), "campdata.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `campdata_enrichment_matches_total{method="fuzzy"} 3`)
	assert.Contains(t, string(data), "campdata_sheets_skipped_total 1")
}
