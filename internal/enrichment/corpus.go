package enrichment

import (
	"regexp"
	"strings"

	"github.com/parkrec/campdata/internal/models"
)

var (
	inlineDescPattern = regexp.MustCompile(`(?m)^[ \t]*\*\*Description:\*\*[ \t]*(\S.*?)[ \t\r]*$`)
	bulletDescPattern = regexp.MustCompile(`(?m)^[ \t]*[-*][ \t]+\*\*Description:\*\*[ \t]*(\S.*?)[ \t\r]*$`)
	codeLinePattern   = regexp.MustCompile(`\*\*Code:\*\*[ \t]*([A-Za-z0-9][A-Za-z0-9.\-]*)`)
	tableCodePattern  = regexp.MustCompile(`(?i)^[a-z]{2,}[a-z0-9]*\.[a-z0-9]+(?:\.[a-z0-9]+)*$`)
)

// ParseCorpus reads candidates from the combined brochure markdown. Each "## "
// section contributes its own text up to the first "### " as one candidate,
// and each "### " subsection is another. Candidates without a description are
// dropped. Order follows the document.
func ParseCorpus(markdown string) []models.CampDescription {
	type block struct {
		name string
		body []string
	}

	var blocks []block
	var cur *block
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "### "):
			blocks = append(blocks, block{name: headingText(trimmed[4:])})
			cur = &blocks[len(blocks)-1]
		case strings.HasPrefix(trimmed, "## "):
			blocks = append(blocks, block{name: headingText(trimmed[3:])})
			cur = &blocks[len(blocks)-1]
		case cur != nil:
			cur.body = append(cur.body, line)
		}
	}

	var out []models.CampDescription
	for _, b := range blocks {
		body := strings.Join(b.body, "\n")
		desc := findDescription(body)
		if b.name == "" || desc == "" {
			continue
		}
		out = append(out, models.CampDescription{
			Name:        b.name,
			Description: desc,
			Codes:       findCodes(body),
		})
	}
	return out
}

var emphasisMarkers = strings.NewReplacer("**", "", "__", "", "*", "")

// headingText strips bold and italic markers anywhere in the heading and
// stray underscores or hashes at its ends.
func headingText(s string) string {
	s = emphasisMarkers.Replace(s)
	return strings.Join(strings.Fields(strings.Trim(strings.TrimSpace(s), "_#")), " ")
}

func findDescription(body string) string {
	for _, p := range []*regexp.Regexp{inlineDescPattern, bulletDescPattern} {
		if m := p.FindStringSubmatch(body); m != nil {
			return m[1]
		}
	}
	return ""
}

func findCodes(body string) []string {
	seen := map[string]bool{}
	var codes []string
	add := func(code string) {
		code = strings.ToUpper(strings.TrimRight(code, ".-"))
		if code != "" && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "|") {
			continue
		}
		for _, cell := range strings.Split(line, "|") {
			cell = strings.TrimSpace(cell)
			if tableCodePattern.MatchString(cell) {
				add(cell)
			}
		}
	}
	for _, m := range codeLinePattern.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return codes
}
