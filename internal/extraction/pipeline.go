// Package extraction splits a brochure into pages and converts each page to
// markdown through an LLM provider, a bounded number of pages at a time.
package extraction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/parkrec/campdata/internal/limiter"
	"github.com/parkrec/campdata/internal/observability"
	"github.com/parkrec/campdata/internal/providers"
	"golang.org/x/sync/errgroup"
)

// PageSeparator joins page texts in the combined corpus.
const PageSeparator = "\n\n---\n\n"

// Instruction is sent with every page.
const Instruction = `You are reading one page of a summer camp brochure.
Transcribe it as clean markdown. For every distinct camp offering on the page:
- start a "## " heading with the camp name (use "### " for sessions or levels grouped under a program),
- add a line "**Description:** " followed by the full description text,
- add a line "**Code:** " with the activity code when one is printed,
- keep schedule tables as markdown tables, including the code column.
If the page contains no camp offerings, reply with a one or two sentence summary of the page instead.
Reply with the markdown only.`

// PageError reports a failed page so it can be resubmitted.
type PageError struct {
	Page int
	Err  error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Page, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Options configures a pipeline run.
type Options struct {
	OutputDir   string
	Concurrency int
	Model       string
	Temperature float64
	// Pages restricts the run to the listed page numbers. Text already on disk
	// for the other pages is reused when combining.
	Pages []int
}

// PageResult is the extracted text of one page.
type PageResult struct {
	Page int
	Text string
	Path string
}

// Result describes a completed run.
type Result struct {
	OutputDir    string
	CombinedPath string
	Pages        []PageResult
	Extracted    int
}

// Pipeline drives a provider over every page of a document.
type Pipeline struct {
	provider providers.Provider
	limiter  *limiter.Limiter
	opts     Options
	clock    clockwork.Clock
	metrics  *observability.Metrics
}

// New creates a Pipeline. A zero concurrency uses limiter.DefaultSize.
func New(provider providers.Provider, opts Options, metrics *observability.Metrics) *Pipeline {
	if opts.Concurrency == 0 {
		opts.Concurrency = limiter.DefaultSize
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	return &Pipeline{
		provider: provider,
		limiter:  limiter.New(opts.Concurrency),
		opts:     opts,
		clock:    clockwork.NewRealClock(),
		metrics:  metrics,
	}
}

// DefaultOutputDir returns the sibling "<name>-pages" directory for input.
func DefaultOutputDir(input string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(input)), baseName(input)+"-pages")
}

// Run extracts every selected page and writes "<name>-combined.md". All pages
// are launched at once; the limiter decides how many talk to the provider.
// The first page failure cancels the rest and is returned as a *PageError.
func (p *Pipeline) Run(ctx context.Context, src PageSource) (*Result, error) {
	total, err := src.PageCount()
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, errors.New("document has no pages")
	}

	pages, err := selectPages(total, p.opts.Pages)
	if err != nil {
		return nil, err
	}

	outDir := p.opts.OutputDir
	if outDir == "" {
		return nil, errors.New("output directory not set")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	slog.Info("Extracting pages", "document", src.Name(), "pages", len(pages), "of", total, "concurrency", p.limiter.Size())

	results := make([]PageResult, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	for i, page := range pages {
		g.Go(func() error {
			res, err := p.processPage(gctx, src, page, outDir)
			if err != nil {
				p.metrics.PagesExtracted.WithLabelValues("error").Inc()
				return &PageError{Page: page, Err: err}
			}
			p.metrics.PagesExtracted.WithLabelValues("success").Inc()
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := results
	if len(pages) < total {
		all, err = mergeExisting(results, total, outDir)
		if err != nil {
			return nil, err
		}
	}

	combinedPath := filepath.Join(outDir, src.Name()+"-combined.md")
	if err := os.WriteFile(combinedPath, []byte(Combine(all)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write combined output: %w", err)
	}

	return &Result{
		OutputDir:    outDir,
		CombinedPath: combinedPath,
		Pages:        all,
		Extracted:    len(pages),
	}, nil
}

func (p *Pipeline) processPage(ctx context.Context, src PageSource, page int, outDir string) (PageResult, error) {
	start := p.clock.Now()

	docPath, mimeType, err := src.WritePage(page, outDir)
	if err != nil {
		return PageResult{}, err
	}
	doc, err := os.ReadFile(docPath)
	if err != nil {
		return PageResult{}, fmt.Errorf("failed to read page document: %w", err)
	}

	var text string
	err = p.limiter.Do(ctx, func(ctx context.Context) error {
		slog.Debug("Submitting page", "page", page, "in_flight", p.limiter.InFlight())
		raw, err := p.provider.ExtractText(ctx, providers.Config{
			Model:       p.opts.Model,
			Temperature: p.opts.Temperature,
			Prompt:      Instruction,
			Document:    doc,
			MIMEType:    mimeType,
		})
		if err != nil {
			return err
		}
		text = CleanResponse(raw)
		return nil
	})
	if err != nil {
		return PageResult{}, err
	}

	mdPath := filepath.Join(outDir, pageFile(page, ".md"))
	if err := os.WriteFile(mdPath, []byte(text), 0644); err != nil {
		return PageResult{}, fmt.Errorf("failed to write page text: %w", err)
	}

	elapsed := p.clock.Since(start)
	p.metrics.PageDuration.Observe(elapsed.Seconds())
	slog.Info("Extracted page", "page", page, "chars", len(text), "duration", elapsed)

	return PageResult{Page: page, Text: text, Path: mdPath}, nil
}

// Combine orders pages by number and joins them with PageSeparator.
func Combine(pages []PageResult) string {
	sorted := append([]PageResult(nil), pages...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Page < sorted[j].Page })

	parts := make([]string, len(sorted))
	for i, pr := range sorted {
		parts[i] = fmt.Sprintf("<!-- page %d -->\n\n%s", pr.Page, strings.TrimSpace(pr.Text))
	}
	return strings.Join(parts, PageSeparator)
}

func selectPages(total int, requested []int) ([]int, error) {
	if len(requested) == 0 {
		pages := make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages, nil
	}

	seen := map[int]bool{}
	var pages []int
	for _, page := range requested {
		if page < 1 || page > total {
			return nil, fmt.Errorf("page %d out of range 1-%d", page, total)
		}
		if !seen[page] {
			seen[page] = true
			pages = append(pages, page)
		}
	}
	sort.Ints(pages)
	return pages, nil
}

// mergeExisting adds the text of pages that were not re-run, read from an
// earlier run's page files.
func mergeExisting(fresh []PageResult, total int, outDir string) ([]PageResult, error) {
	have := map[int]bool{}
	for _, r := range fresh {
		have[r.Page] = true
	}

	all := append([]PageResult(nil), fresh...)
	var missing []int
	for page := 1; page <= total; page++ {
		if have[page] {
			continue
		}
		path := filepath.Join(outDir, pageFile(page, ".md"))
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			missing = append(missing, page)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read page %d text: %w", page, err)
		}
		all = append(all, PageResult{Page: page, Text: string(data), Path: path})
	}

	if len(missing) > 0 {
		slog.Warn("Combined output is missing pages that have never been extracted", "pages", missing)
	}
	return all, nil
}
