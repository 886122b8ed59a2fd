package enrichment

import (
	"fmt"
	"io"
	"strings"
)

// Summary counts matches per method and keeps a sample of unmatched titles.
type Summary struct {
	Counts    map[Method]int
	Total     int
	Unmatched []string
	sample    int
}

// NewSummary returns an empty Summary keeping up to sample unmatched titles.
func NewSummary(sample int) *Summary {
	return &Summary{Counts: map[Method]int{}, sample: sample}
}

// Add records one record's outcome.
func (s *Summary) Add(method Method, title string) {
	s.Counts[method]++
	s.Total++
	if method == MethodUnmatched && len(s.Unmatched) < s.sample {
		s.Unmatched = append(s.Unmatched, title)
	}
}

// Merge folds other into s.
func (s *Summary) Merge(other *Summary) {
	for m, n := range other.Counts {
		s.Counts[m] += n
	}
	s.Total += other.Total
	for _, title := range other.Unmatched {
		if len(s.Unmatched) >= s.sample {
			break
		}
		s.Unmatched = append(s.Unmatched, title)
	}
}

// Matched returns the number of records that received a description.
func (s *Summary) Matched() int {
	return s.Total - s.Counts[MethodUnmatched]
}

// Print writes a human readable summary.
func (s *Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(w, "Enrichment Summary\n")
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", 60))
	fmt.Fprintf(w, "Records: %d\n", s.Total)
	if s.Total > 0 {
		fmt.Fprintf(w, "Matched: %d (%.1f%%)\n", s.Matched(), 100*float64(s.Matched())/float64(s.Total))
	}
	for _, m := range Methods {
		fmt.Fprintf(w, "  %-12s %d\n", m+":", s.Counts[m])
	}
	if len(s.Unmatched) > 0 {
		fmt.Fprintf(w, "\nUnmatched titles (first %d):\n", len(s.Unmatched))
		for _, title := range s.Unmatched {
			fmt.Fprintf(w, "  - %s\n", title)
		}
	}
	fmt.Fprintf(w, "%s\n", strings.Repeat("=", 60))
}
