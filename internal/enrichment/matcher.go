// Package enrichment attaches brochure descriptions to workbook records.
package enrichment

import (
	"log/slog"
	"strings"

	"github.com/parkrec/campdata/internal/models"
	"github.com/parkrec/campdata/internal/observability"
)

// DefaultMatchThreshold is the Jaccard score a fuzzy match must exceed.
const DefaultMatchThreshold = 0.6

// DefaultUnmatchedSample caps the unmatched titles kept in a Summary.
const DefaultUnmatchedSample = 20

// Method names how a record was matched.
type Method string

const (
	MethodCode       Method = "code"
	MethodName       Method = "name"
	MethodNormalized Method = "normalized"
	MethodFuzzy      Method = "fuzzy"
	MethodUnmatched  Method = "unmatched"
)

// Methods lists every method in the order they are tried.
var Methods = []Method{MethodCode, MethodName, MethodNormalized, MethodFuzzy, MethodUnmatched}

// Options configures an Enricher.
type Options struct {
	Threshold       float64
	Stopwords       []string
	UnmatchedSample int
}

// Enricher matches records to description candidates.
type Enricher struct {
	threshold  float64
	sample     int
	normalizer *Normalizer
	metrics    *observability.Metrics
}

// New returns an Enricher. Zero options fall back to the defaults.
func New(opts Options, metrics *observability.Metrics) *Enricher {
	if opts.Threshold == 0 {
		opts.Threshold = DefaultMatchThreshold
	}
	if opts.Stopwords == nil {
		opts.Stopwords = DefaultStopwords
	}
	if opts.UnmatchedSample == 0 {
		opts.UnmatchedSample = DefaultUnmatchedSample
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}
	return &Enricher{
		threshold:  opts.Threshold,
		sample:     opts.UnmatchedSample,
		normalizer: NewNormalizer(opts.Stopwords),
		metrics:    metrics,
	}
}

type index struct {
	byCode map[string]int
	byName map[string]int
	byNorm map[string]int
	words  []map[string]bool
}

// Each map keeps the first candidate seen for a key.
func (e *Enricher) buildIndex(descs []models.CampDescription) *index {
	idx := &index{
		byCode: map[string]int{},
		byName: map[string]int{},
		byNorm: map[string]int{},
		words:  make([]map[string]bool, len(descs)),
	}
	setFirst := func(m map[string]int, key string, i int) {
		if key == "" {
			return
		}
		if _, ok := m[key]; !ok {
			m[key] = i
		}
	}

	for i, d := range descs {
		for _, code := range d.Codes {
			setFirst(idx.byCode, strings.ToUpper(code), i)
		}
		setFirst(idx.byName, strings.ToLower(strings.TrimSpace(d.Name)), i)
		setFirst(idx.byNorm, e.normalizer.Normalize(d.Name), i)
		idx.words[i] = e.normalizer.Words(d.Name)
	}
	return idx
}

func (e *Enricher) exactMatch(idx *index, rec models.CampRecord) (int, Method, bool) {
	if code := strings.ToUpper(strings.TrimSpace(rec.Code)); code != "" {
		if i, ok := idx.byCode[code]; ok {
			return i, MethodCode, true
		}
	}
	if i, ok := idx.byName[strings.ToLower(strings.TrimSpace(rec.Title))]; ok {
		return i, MethodName, true
	}
	if norm := e.normalizer.Normalize(rec.Title); norm != "" {
		if i, ok := idx.byNorm[norm]; ok {
			return i, MethodNormalized, true
		}
	}
	return 0, "", false
}

// fuzzyMatch returns the unused candidate with the highest score above the
// threshold. Ties go to the earliest candidate.
func (e *Enricher) fuzzyMatch(idx *index, used []bool, title string) (int, float64, bool) {
	words := e.normalizer.Words(title)
	best, bestScore := -1, 0.0
	for i, cand := range idx.words {
		if used[i] {
			continue
		}
		if score := Jaccard(words, cand); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 || bestScore <= e.threshold {
		return 0, bestScore, false
	}
	return best, bestScore, true
}

// Enrich sets Description on each record in place and returns the match
// counts. All exact passes run before any fuzzy match, so the result does not
// depend on record order.
func (e *Enricher) Enrich(camps []models.CampRecord, descs []models.CampDescription) *Summary {
	idx := e.buildIndex(descs)
	used := make([]bool, len(descs))
	methods := make([]Method, len(camps))

	for i := range camps {
		camps[i].Description = ""
		if j, method, ok := e.exactMatch(idx, camps[i]); ok {
			camps[i].Description = descs[j].Description
			methods[i] = method
			used[j] = true
		}
	}

	for i := range camps {
		if methods[i] != "" {
			continue
		}
		j, score, ok := e.fuzzyMatch(idx, used, camps[i].Title)
		if !ok {
			methods[i] = MethodUnmatched
			continue
		}
		camps[i].Description = descs[j].Description
		methods[i] = MethodFuzzy
		slog.Debug("Fuzzy description match", "title", camps[i].Title, "candidate", descs[j].Name, "score", score)
	}

	summary := NewSummary(e.sample)
	for i, method := range methods {
		summary.Add(method, camps[i].Title)
		e.metrics.EnrichMatches.WithLabelValues(string(method)).Inc()
	}
	return summary
}

// EnrichDataset enriches every sheet against the same candidates.
func (e *Enricher) EnrichDataset(dataset models.Dataset, descs []models.CampDescription) *Summary {
	total := NewSummary(e.sample)
	for _, name := range dataset.SheetNames() {
		sheet := dataset[name]
		if sheet == nil {
			slog.Warn("Skipping empty sheet", "sheet", name)
			continue
		}
		s := e.Enrich(sheet.Camps, descs)
		slog.Info("Enriched sheet", "sheet", name, "matched", s.Matched(), "unmatched", s.Counts[MethodUnmatched])
		total.Merge(s)
	}
	return total
}
