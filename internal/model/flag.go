package model

// Flag is the parsed state of one named element in a plan document.
// Selected and Insert mirror the document's numeric indicator attributes;
// Text carries the element's inline text with surrounding whitespace
// stripped, or "" when the element had none.
type Flag struct {
	Selected int    `json:"selected"`
	Insert   int    `json:"insert"`
	Text     string `json:"text,omitempty"`
}

// FlagSet maps linknames to their parsed state for one document. A set is
// built fresh per document and discarded once the document's column is
// resolved; nothing is cached across documents.
type FlagSet map[string]Flag

// IsSelected reports whether name exists in the set with selected=1.
func (fs FlagSet) IsSelected(name string) bool {
	f, ok := fs[name]
	return ok && f.Selected == 1
}

// AnySelected reports whether any flag in the set is selected.
func (fs FlagSet) AnySelected() bool {
	for _, f := range fs {
		if f.Selected == 1 {
			return true
		}
	}
	return false
}

// TextOf returns the inline text recorded for name, or "" when the flag
// is absent or carries no text.
func (fs FlagSet) TextOf(name string) string {
	return fs[name].Text
}
