package extraction

import (
	"log/slog"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

var (
	fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*\\n(.*?)\\n?```$")
	htmlPattern  = regexp.MustCompile(`(?i)<(p|div|table|tr|td|h[1-6]|ul|li|br|strong|b)[\s/>]`)
)

// CleanResponse strips a wrapping code fence and converts answers written as
// HTML to markdown.
func CleanResponse(raw string) string {
	text := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	if strings.HasPrefix(text, "<") && htmlPattern.MatchString(text) {
		md, err := htmltomarkdown.ConvertString(text)
		if err != nil {
			slog.Warn("Unable to convert HTML response to markdown", "err", err)
			return text
		}
		text = strings.TrimSpace(md)
	}
	return text
}
