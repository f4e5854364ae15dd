// Package vesting resolves vesting-schedule prompts through fixed lookup
// tables keyed by linkname. The tables are business vocabulary, not
// algorithm, and load from a YAML data file so they can evolve without
// code changes.
package vesting

import (
	_ "embed"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/planfill-cli/internal/model"
)

//go:embed data/schedules.yaml
var defaultSchedules []byte

// Gating values an immediate-vesting entry may require of the prompt's
// quick text.
const (
	RequiresMatch       = "match"
	RequiresNonElective = "nonelective"
)

// Entry maps one linkname to the short schedule label it denotes. Requires
// optionally gates the entry on the prompt's quick text mentioning a money
// type.
type Entry struct {
	Linkname string `yaml:"linkname"`
	Label    string `yaml:"label"`
	Requires string `yaml:"requires,omitempty"`
}

// Tables holds the vesting lookup tables. Sections are checked in priority
// order graded, cliff, immediate, and entries within a section in list
// order; the first selected linkname decides the label.
type Tables struct {
	Graded    []Entry             `yaml:"graded"`
	Cliff     []Entry             `yaml:"cliff"`
	Immediate []Entry             `yaml:"immediate"`
	Aliases   map[string][]string `yaml:"aliases"`
	Canonical map[string]string   `yaml:"canonical"`

	prefixes map[string][]string
	verbose  map[string]string
}

// Load reads schedule tables from a YAML file, replacing the packaged set.
func Load(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "vesting: read tables %s", path)
	}
	return parse(data)
}

// Default returns the packaged schedule tables.
func Default() (*Tables, error) {
	return parse(defaultSchedules)
}

func parse(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrap(err, "vesting: parse tables")
	}
	if err := t.finalize(); err != nil {
		return nil, err
	}
	return &t, nil
}

// finalize builds the normalized lookup maps and validates gate values.
func (t *Tables) finalize() error {
	for _, e := range t.Immediate {
		switch e.Requires {
		case "", RequiresMatch, RequiresNonElective:
		default:
			return eris.Errorf("vesting: unknown requires %q on %s", e.Requires, e.Linkname)
		}
	}

	t.verbose = make(map[string]string, len(t.Canonical))
	for label, phrase := range t.Canonical {
		t.verbose[normalize(label)] = phrase
	}
	t.prefixes = make(map[string][]string, len(t.Aliases))
	for label, aliases := range t.Aliases {
		n := normalize(label)
		for _, a := range aliases {
			an := normalize(a)
			t.prefixes[n] = append(t.prefixes[n], an)
			if phrase, ok := t.verbose[n]; ok {
				t.verbose[an] = phrase
			}
		}
	}
	return nil
}

// IsVestingPrompt reports whether the prompt asks for a vesting schedule.
// "Describe" prompts want free text and are excluded.
func IsVestingPrompt(text string) bool {
	p := strings.ToLower(strings.TrimSpace(text))
	return strings.Contains(p, "vesting schedule") && !strings.Contains(p, "describe")
}

// Resolve derives a vesting answer from the document's flags. The quick
// text gates money-type-specific immediate entries; optionLines, when
// present, supply the preferred verbose phrasing.
func (t *Tables) Resolve(flags model.FlagSet, quick string, optionLines []string) (string, bool) {
	label := t.shortLabel(flags, quick)
	if label == "" {
		return "", false
	}
	return t.Expand(label, optionLines), true
}

// shortLabel walks the tables in priority order and returns the label of
// the first selected entry.
func (t *Tables) shortLabel(flags model.FlagSet, quick string) string {
	for _, e := range t.Graded {
		if flags.IsSelected(e.Linkname) {
			return e.Label
		}
	}
	for _, e := range t.Cliff {
		if flags.IsSelected(e.Linkname) {
			return e.Label
		}
	}
	qt := strings.ToLower(quick)
	for _, e := range t.Immediate {
		if !gateAllows(e.Requires, qt) {
			continue
		}
		if flags.IsSelected(e.Linkname) {
			return e.Label
		}
	}
	return ""
}

// Expand turns a short label into its display phrase: first the earliest
// allowed-option line whose normalized form starts with the label or one of
// its aliases, then the canonical phrase, then the label itself.
func (t *Tables) Expand(label string, optionLines []string) string {
	n := normalize(label)
	prefixes := append([]string{n}, t.prefixes[n]...)
	for _, line := range optionLines {
		low := normalize(line)
		for _, p := range prefixes {
			if strings.HasPrefix(low, p) {
				return line
			}
		}
	}
	if phrase, ok := t.verbose[n]; ok {
		return phrase
	}
	if strings.HasPrefix(n, "immediate") {
		if phrase, ok := t.verbose["immediate"]; ok {
			return phrase
		}
	}
	return label
}

func gateAllows(requires, quick string) bool {
	switch requires {
	case RequiresMatch:
		return strings.Contains(quick, "match")
	case RequiresNonElective:
		return strings.Contains(quick, "non elective") ||
			strings.Contains(quick, "non-elective") ||
			strings.Contains(quick, "profit")
	}
	return true
}

// normalize folds case and strips all spaces for prefix comparison.
func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "")
}
