package resolve

import (
	"strings"

	"github.com/sells-group/planfill-cli/internal/model"
)

// Resolve resolves a prompt against one document's flag set. The boolean
// reports whether a value was produced; false is a normal miss that falls
// through to the next resolution stage, never an error.
func Resolve(p model.Prompt, flags model.FlagSet) (string, bool) {
	switch len(p.Candidates) {
	case 0:
		return "", false
	case 1:
		return resolveSingle(p.Text, p.Candidates[0], flags)
	default:
		return resolveMulti(p.Text, p.Candidates, flags)
	}
}

func resolveSingle(promptText, name string, flags model.FlagSet) (string, bool) {
	if IsYesNoPrompt(promptText) {
		// An absent flag is a deliberate "No" for polar prompts.
		if flags.IsSelected(name) {
			return AnswerYes, true
		}
		return AnswerNo, true
	}
	f, ok := flags[name]
	if !ok {
		return "", false
	}
	if t := RelatedText(name, flags); t != "" {
		return t, true
	}
	if yn, ok := FromName(name, f); ok {
		return yn, true
	}
	return "", false
}

func resolveMulti(promptText string, candidates []string, flags model.FlagSet) (string, bool) {
	var chosen string
	for _, name := range candidates {
		if flags.IsSelected(name) {
			chosen = name
			break
		}
	}
	if chosen == "" {
		return "", false
	}

	if IsYesNoPrompt(promptText) {
		lower := strings.ToLower(chosen)
		switch {
		case strings.Contains(lower, "yes"):
			return AnswerYes, true
		case strings.Contains(lower, "no"):
			return AnswerNo, true
		}
		// A selected choice is itself an affirmative answer.
		return AnswerYes, true
	}

	// Never leak the internal linkname as output.
	if t := RelatedText(chosen, flags); t != "" {
		return t, true
	}
	return "", false
}

// QuickLabel derives a last-resort display label from a prompt's quick
// text, taking whatever follows the final comma. Quick text without a comma
// names the prompt rather than an answer and yields no label.
func QuickLabel(quick string) (string, bool) {
	q := strings.TrimSpace(quick)
	i := strings.LastIndex(q, ",")
	if i < 0 {
		return "", false
	}
	label := model.CleanName(q[i+1:])
	return label, label != ""
}
