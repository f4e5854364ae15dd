package model

import "strings"

// MapEntry is one operator-curated row of the prompt map: the prompt text,
// a comma-separated list of candidate linknames, and optional quick text.
type MapEntry struct {
	Prompt    string `json:"prompt"`
	Linknames string `json:"linknames"`
	Quick     string `json:"quick,omitempty"`
}

// Prompt is a compiled map entry ready for extraction. Key is unique within
// a single run; it is derived from the first candidate linkname (or a
// positional fallback) and must never be persisted as a business identifier.
type Prompt struct {
	Key        string
	Text       string
	Candidates []string
	Quick      string
}

// CleanName strips surrounding whitespace and double quotes from a linkname.
func CleanName(s string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"`))
}

// ParseCandidates splits a comma-separated linkname field into individual
// candidates, trimming whitespace and surrounding quotes and dropping
// empties. Order is preserved; resolution scans candidates in this order.
func ParseCandidates(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		if name := CleanName(part); name != "" {
			out = append(out, name)
		}
	}
	return out
}
