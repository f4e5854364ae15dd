// Package resolve turns a prompt's candidate linknames and a document's
// flag set into a single display value.
package resolve

import (
	"regexp"
	"strings"

	"github.com/sells-group/planfill-cli/internal/model"
)

// Answers produced by Yes/No classification.
const (
	AnswerYes = "Yes"
	AnswerNo  = "No"
)

// yesNoLead matches prompts phrased as polar questions.
var yesNoLead = regexp.MustCompile(`^(is|does|will|are|has|have)\b`)

// IsYesNoPrompt reports whether the prompt reads as a Yes/No question: it
// ends with a question mark and opens with a polar-question verb.
func IsYesNoPrompt(text string) bool {
	p := strings.ToLower(strings.TrimSpace(text))
	return strings.HasSuffix(p, "?") && yesNoLead.MatchString(p)
}

// FromName derives Yes/No from a linkname's own polarity: names starting
// with "yes" answer by selection state, names starting with "no" answer by
// the inverse. The second return is false when the name carries no polarity
// prefix.
func FromName(name string, f model.Flag) (string, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "yes"):
		if f.Selected == 1 {
			return AnswerYes, true
		}
		return AnswerNo, true
	case strings.HasPrefix(lower, "no"):
		if f.Selected == 1 {
			return AnswerNo, true
		}
		return AnswerYes, true
	}
	return "", false
}
