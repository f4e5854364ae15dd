package model

// Sentinel values emitted when a prompt cannot be resolved for a document.
const (
	// ValueNotAvailable marks a normal miss: no candidate matched and no
	// fallback produced an answer.
	ValueNotAvailable = "N/A"

	// ValueProcessingError marks a document that could not be read or
	// parsed; every prompt in that document's column carries it.
	ValueProcessingError = "Processing Error"
)

// Row is one prompt's resolved values across every document in a run,
// keyed by document filename.
type Row struct {
	PromptKey  string            `json:"promptKey"`
	PromptText string            `json:"promptText"`
	Values     map[string]string `json:"values"`
}

// Grid is the full result of a run: one row per prompt, one column per
// document. Files preserves the order documents were processed in and is
// the column order for every export format.
type Grid struct {
	Files []string `json:"fileNames"`
	Rows  []Row    `json:"rows"`
}

// Values flattens the grid into filename -> promptKey -> value. Every file
// appears in the result even when all of its values are sentinels.
func (g *Grid) Values() map[string]map[string]string {
	out := make(map[string]map[string]string, len(g.Files))
	for _, f := range g.Files {
		out[f] = make(map[string]string, len(g.Rows))
	}
	for _, r := range g.Rows {
		for f, v := range r.Values {
			if _, ok := out[f]; !ok {
				out[f] = make(map[string]string, len(g.Rows))
			}
			out[f][r.PromptKey] = v
		}
	}
	return out
}

// MissCount returns the number of grid cells holding a sentinel value.
func (g *Grid) MissCount() int {
	n := 0
	for _, r := range g.Rows {
		for _, v := range r.Values {
			if v == ValueNotAvailable || v == ValueProcessingError {
				n++
			}
		}
	}
	return n
}
