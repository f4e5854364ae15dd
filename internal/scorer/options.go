// Package scorer matches selection evidence from a document's flags
// against a prompt's allowed-options list.
package scorer

import (
	"regexp"
	"strings"

	"github.com/sells-group/planfill-cli/internal/model"
)

// keywordTerms are domain terms matched as substrings of a lowercased
// linkname; each hit contributes the term itself as a keyword.
var keywordTerms = []string{
	"eaca", "qaca", "aca", "eqac",
	"match", "profit", "non elective", "nonelective", "immediate",
	"monthly", "quarterly", "semi", "semi annual", "annual", "weekly",
	"cliff", "graded", "retire", "disability", "death", "early",
	"vesting", "vest",
}

var digitRun = regexp.MustCompile(`\d+`)

// Keywords extracts matcher keywords from one linkname: domain terms found
// as substrings, embedded digit runs kept verbatim to disambiguate numbered
// schedules, and unit markers for dollar, percent, and year forms.
func Keywords(name string) map[string]bool {
	n := strings.ToLower(name)
	kws := make(map[string]bool)

	if strings.Contains(n, "dollar") {
		kws["dollar"] = true
	}
	if strings.Contains(n, "perc") {
		kws["percent"] = true
	}
	for _, term := range keywordTerms {
		if strings.Contains(n, term) {
			kws[term] = true
		}
	}
	for _, num := range digitRun.FindAllString(n, -1) {
		kws[num] = true
	}
	if strings.Contains(n, "yr") || strings.Contains(n, "year") {
		kws["yr"] = true
	}
	return kws
}

// SplitOptions normalizes an allowed-options string into option lines.
// Literal \n escapes become real newlines; lines are trimmed of whitespace
// and surrounding quotes; empties are dropped.
func SplitOptions(raw string) []string {
	s := strings.ReplaceAll(raw, `\n`, "\n")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if cleaned := model.CleanName(line); cleaned != "" {
			lines = append(lines, cleaned)
		}
	}
	return lines
}

// Match picks the option line that best overlaps the keywords extracted
// from the prompt's selected candidates. When none of the candidates is
// selected, every selected linkname in the document contributes keywords
// as a fallback signal. Each keyword found as a case-insensitive substring
// of an option line scores one point; the strictly highest score above
// zero wins, and ties keep the earliest line.
func Match(candidates []string, flags model.FlagSet, lines []string) (string, bool) {
	if len(lines) == 0 {
		return "", false
	}

	kws := make(map[string]bool)
	anySelected := false
	for _, name := range candidates {
		if flags.IsSelected(name) {
			anySelected = true
			for kw := range Keywords(name) {
				kws[kw] = true
			}
		}
	}
	if !anySelected {
		for name, f := range flags {
			if f.Selected == 1 {
				for kw := range Keywords(name) {
					kws[kw] = true
				}
			}
		}
	}
	if len(kws) == 0 {
		return "", false
	}

	best := ""
	bestScore := 0
	for _, line := range lines {
		lower := strings.ToLower(line)
		score := 0
		for kw := range kws {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = line
		}
	}
	if bestScore == 0 {
		return "", false
	}
	return best, true
}
