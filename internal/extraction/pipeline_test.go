package extraction

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/parkrec/campdata/internal/observability"
	"github.com/parkrec/campdata/internal/providers"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource writes "page N" documents.
type fakeSource struct {
	pages int
}

func (s *fakeSource) Name() string { return "brochure" }

func (s *fakeSource) PageCount() (int, error) { return s.pages, nil }

func (s *fakeSource) WritePage(page int, dir string) (string, string, error) {
	path := filepath.Join(dir, pageFile(page, ".pdf"))
	if err := os.WriteFile(path, []byte(fmt.Sprintf("page %d", page)), 0644); err != nil {
		return "", "", err
	}
	return path, "application/pdf", nil
}

// fakeProvider echoes the page document, finishing later pages first.
type fakeProvider struct {
	total    int
	failPage string
	current  atomic.Int64
	peak     atomic.Int64
	mu       sync.Mutex
	seen     []string
}

func (p *fakeProvider) ExtractText(ctx context.Context, cfg providers.Config) (string, error) {
	n := p.current.Add(1)
	defer p.current.Add(-1)
	for {
		peak := p.peak.Load()
		if n <= peak || p.peak.CompareAndSwap(peak, n) {
			break
		}
	}

	doc := string(cfg.Document)
	p.mu.Lock()
	p.seen = append(p.seen, doc)
	p.mu.Unlock()

	if doc == p.failPage {
		return "", errors.New("quota exceeded")
	}

	var page int
	_, _ = fmt.Sscanf(doc, "page %d", &page)
	select {
	case <-time.After(time.Duration(p.total-page+1) * 3 * time.Millisecond):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return fmt.Sprintf("```markdown\n## Camp from %s\n```", doc), nil
}

func TestRunBoundsConcurrencyAndOrdersOutput(t *testing.T) {
	dir := t.TempDir()
	provider := &fakeProvider{total: 12}
	metrics := observability.NewMetrics()
	p := New(provider, Options{OutputDir: dir, Concurrency: 3, Model: "test"}, metrics)

	res, err := p.Run(context.Background(), &fakeSource{pages: 12})
	require.NoError(t, err)

	assert.LessOrEqual(t, provider.peak.Load(), int64(3))
	assert.Len(t, provider.seen, 12)
	assert.Equal(t, 12.0, testutil.ToFloat64(metrics.PagesExtracted.WithLabelValues("success")))

	combined, err := os.ReadFile(res.CombinedPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "brochure-combined.md"), res.CombinedPath)

	parts := strings.Split(string(combined), PageSeparator)
	require.Len(t, parts, 12)
	for i, part := range parts {
		assert.Equal(t, fmt.Sprintf("<!-- page %d -->\n\n## Camp from page %d", i+1, i+1), part)
	}

	page3, err := os.ReadFile(filepath.Join(dir, "page-003.md"))
	require.NoError(t, err)
	assert.Equal(t, "## Camp from page 3", string(page3))
	assert.FileExists(t, filepath.Join(dir, "page-003.pdf"))
}

func TestRunReportsFailingPage(t *testing.T) {
	provider := &fakeProvider{total: 5, failPage: "page 4"}
	p := New(provider, Options{OutputDir: t.TempDir(), Concurrency: 2}, nil)

	_, err := p.Run(context.Background(), &fakeSource{pages: 5})
	require.Error(t, err)

	var pageErr *PageError
	require.ErrorAs(t, err, &pageErr)
	assert.Equal(t, 4, pageErr.Page)
	assert.Contains(t, err.Error(), "page 4: quota exceeded")
}

func TestRunSelectedPagesReusesEarlierText(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page-001.md"), []byte("## Earlier page 1"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page-003.md"), []byte("## Earlier page 3"), 0644))

	provider := &fakeProvider{total: 3}
	p := New(provider, Options{OutputDir: dir, Pages: []int{2, 2}}, nil)

	res, err := p.Run(context.Background(), &fakeSource{pages: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Extracted)
	assert.Equal(t, []string{"page 2"}, provider.seen)

	combined, err := os.ReadFile(res.CombinedPath)
	require.NoError(t, err)
	assert.Equal(t,
		"<!-- page 1 -->\n\n## Earlier page 1"+PageSeparator+
			"<!-- page 2 -->\n\n## Camp from page 2"+PageSeparator+
			"<!-- page 3 -->\n\n## Earlier page 3",
		string(combined))
}

func TestRunRejectsOutOfRangePage(t *testing.T) {
	p := New(&fakeProvider{total: 2}, Options{OutputDir: t.TempDir(), Pages: []int{3}}, nil)
	_, err := p.Run(context.Background(), &fakeSource{pages: 2})
	assert.ErrorContains(t, err, "out of range")
}

func TestCombineSortsByPage(t *testing.T) {
	out := Combine([]PageResult{{Page: 2, Text: "b"}, {Page: 1, Text: "a\n"}})
	assert.Equal(t, "<!-- page 1 -->\n\na"+PageSeparator+"<!-- page 2 -->\n\nb", out)
}

func TestDefaultOutputDir(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "brochure-pages"), DefaultOutputDir(filepath.Join("data", "brochure.pdf")))
	assert.Equal(t, filepath.Join("scans", "summer-pages"), DefaultOutputDir(filepath.Join("scans", "summer")+string(filepath.Separator)))
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  ## Pottery\n", "## Pottery"},
		{"fenced", "```markdown\n## Pottery\n**Description:** Clay.\n```", "## Pottery\n**Description:** Clay."},
		{"bare fence", "```\n## Pottery\n```", "## Pottery"},
		{"html", "<h2>Pottery</h2><p>Clay fun</p>", "## Pottery\n\nClay fun"},
		{"markdown with br", "| a<br>b |", "| a<br>b |"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanResponse(tt.in))
		})
	}
}
