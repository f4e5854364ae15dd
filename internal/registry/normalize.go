package registry

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeText collapses internal whitespace and strips one trailing
// colon. Prompt text is compared in this form everywhere: map entries,
// options keys, and the compiled prompts all normalize once at load.
func NormalizeText(s string) string {
	s = whitespaceRun.ReplaceAllString(strings.TrimSpace(s), " ")
	return strings.TrimSuffix(s, ":")
}
