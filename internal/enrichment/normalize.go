package enrichment

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// DefaultStopwords are dropped from titles before comparing them.
var DefaultStopwords = []string{"camp", "camps", "workshop", "new"}

var (
	// "(7-14yrs)", "(Ages 6 to 8)", "(8+ years)"
	ageRangePattern = regexp.MustCompile(`(?i)\(\s*(?:ages?\s*)?\d+\s*(?:-|–|to)\s*\d+\s*\+?\s*(?:yrs?|years?)?\s*\)|\(\s*(?:ages?\s*)?\d+\s*\+?\s*(?:yrs?|years?)\s*\)`)
	spSuffixPattern = regexp.MustCompile(`(?i)-sp\b`)
	nonWordPattern  = regexp.MustCompile(`[^\p{L}\p{N}]+`)
)

// Normalizer reduces titles to a comparable form.
type Normalizer struct {
	stopwords map[string]bool
}

// NewNormalizer returns a Normalizer that drops the given stopwords.
func NewNormalizer(stopwords []string) *Normalizer {
	n := &Normalizer{stopwords: make(map[string]bool, len(stopwords))}
	for _, w := range stopwords {
		n.stopwords[strings.ToLower(strings.TrimSpace(w))] = true
	}
	return n
}

// Normalize lowercases title, strips accents, age-range parentheticals, the
// "-SP" suffix, punctuation and stopwords, and collapses whitespace.
func (n *Normalizer) Normalize(title string) string {
	s := norm.NFKD.String(title)
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, s)
	s = strings.ToLower(s)
	s = ageRangePattern.ReplaceAllString(s, " ")
	s = spSuffixPattern.ReplaceAllString(s, " ")
	s = nonWordPattern.ReplaceAllString(s, " ")

	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !n.stopwords[w] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

// Words returns the distinct words longer than two characters of a title's
// normalized form.
func (n *Normalizer) Words(title string) map[string]bool {
	words := map[string]bool{}
	for _, w := range strings.Fields(n.Normalize(title)) {
		if utf8.RuneCountInString(w) > 2 {
			words[w] = true
		}
	}
	return words
}

// Jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both are empty.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Stoplist is the YAML stopword file format.
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStopwords reads a YAML stoplist ("terms: [...]").
func LoadStopwords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stopwords: %w", err)
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("failed to parse stopwords %s: %w", path, err)
	}
	return sl.Terms, nil
}
