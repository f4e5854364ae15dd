// Package registry loads and layers the operator-curated prompt map and
// allowed-options configuration, producing the immutable inputs one run
// works from. Resolution order for each input: an explicit file path, then
// the user store, then the packaged defaults.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/planfill-cli/internal/model"
)

// Bundle is the compiled, read-only configuration for a run. Prompts keep
// map order; Options is keyed by normalized prompt text. MapSource and
// OptionsSource name the layer each input resolved from.
type Bundle struct {
	Prompts       []model.Prompt
	Options       map[string]string
	MapSource     string
	OptionsSource string
}

// OptionsFor returns the raw allowed-options string configured for a
// prompt, or "" when the prompt has none. Absence is a valid state.
func (b *Bundle) OptionsFor(p model.Prompt) string {
	return b.Options[p.Text]
}

// Loader resolves the prompt map and options configuration. Zero values
// fall through each layer: explicit paths beat the user store, which beats
// the packaged defaults.
type Loader struct {
	MapPath     string
	OptionsPath string
	StoreDir    string
}

// Load resolves both inputs and compiles them into a Bundle.
func (l Loader) Load() (*Bundle, error) {
	entries, mapSrc, err := l.loadEntries()
	if err != nil {
		return nil, err
	}
	options, optSrc, err := l.loadOptions()
	if err != nil {
		return nil, err
	}

	bundle := Compile(entries, options)
	bundle.MapSource = mapSrc
	bundle.OptionsSource = optSrc
	zap.L().Info("registry: configuration loaded",
		zap.String("map_source", mapSrc),
		zap.String("options_source", optSrc),
		zap.Int("prompts", len(bundle.Prompts)),
		zap.Int("options", len(bundle.Options)),
	)
	return bundle, nil
}

func (l Loader) loadEntries() ([]model.MapEntry, string, error) {
	if l.MapPath != "" {
		entries, err := LoadMapFile(l.MapPath)
		if err != nil {
			return nil, "", err
		}
		return entries, l.MapPath, nil
	}
	if dir := l.storeDir(); dir != "" {
		entries, err := LoadUserMap(dir)
		if err != nil {
			zap.L().Warn("registry: skipping unreadable user map",
				zap.String("dir", dir),
				zap.Error(err),
			)
		} else if entries != nil {
			return entries, "user store", nil
		}
	}
	entries, err := PackagedMap()
	if err != nil {
		return nil, "", err
	}
	return entries, "packaged defaults", nil
}

func (l Loader) loadOptions() (map[string]string, string, error) {
	if l.OptionsPath != "" {
		options, err := LoadOptionsFile(l.OptionsPath)
		if err != nil {
			return nil, "", err
		}
		return options, l.OptionsPath, nil
	}
	if dir := l.storeDir(); dir != "" {
		options, err := LoadUserOptions(dir)
		if err != nil {
			zap.L().Warn("registry: skipping unreadable user options",
				zap.String("dir", dir),
				zap.Error(err),
			)
		} else if options != nil {
			return options, "user store", nil
		}
	}
	options, err := PackagedOptions()
	if err != nil {
		return nil, "", err
	}
	return options, "packaged defaults", nil
}

func (l Loader) storeDir() string {
	if l.StoreDir != "" {
		return l.StoreDir
	}
	dir, err := DefaultStoreDir()
	if err != nil {
		zap.L().Warn("registry: user store unavailable", zap.Error(err))
		return ""
	}
	return dir
}

// LoadMapFile parses a prompt map from a CSV or XLSX file, picking the
// parser by extension.
func LoadMapFile(path string) ([]model.MapEntry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "registry: open map %s", path)
		}
		defer f.Close()
		return ParseMapCSV(f)
	case ".xlsx":
		return ParseMapXLSX(path)
	default:
		return nil, eris.Errorf("registry: unsupported map format %q", filepath.Ext(path))
	}
}

// LoadOptionsFile parses allowed data points from a CSV or XLSX file.
func LoadOptionsFile(path string) (map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "registry: open data points %s", path)
		}
		defer f.Close()
		return ParseOptionsCSV(f)
	case ".xlsx":
		return ParseOptionsXLSX(path)
	default:
		return nil, eris.Errorf("registry: unsupported data points format %q", filepath.Ext(path))
	}
}

// Compile normalizes entries into read-only prompts with run-scoped keys
// and indexes options by normalized prompt text. Keys derive from the
// first candidate linkname, or the entry position when no candidate
// sanitizes to anything usable, and collisions get a counter suffix.
func Compile(entries []model.MapEntry, options map[string]string) *Bundle {
	prompts := make([]model.Prompt, 0, len(entries))
	taken := make(map[string]bool, len(entries))
	for i, e := range entries {
		text := NormalizeText(e.Prompt)
		if text == "" {
			continue
		}
		candidates := model.ParseCandidates(e.Linknames)

		key := deriveKey(candidates, i)
		base := key
		for n := 2; taken[key]; n++ {
			key = fmt.Sprintf("%s_%d", base, n)
		}
		taken[key] = true

		prompts = append(prompts, model.Prompt{
			Key:        key,
			Text:       text,
			Candidates: candidates,
			Quick:      strings.TrimSpace(e.Quick),
		})
	}

	indexed := make(map[string]string, len(options))
	for k, v := range options {
		if nk := NormalizeText(k); nk != "" {
			indexed[nk] = v
		}
	}
	return &Bundle{Prompts: prompts, Options: indexed}
}

func deriveKey(candidates []string, pos int) string {
	if len(candidates) > 0 {
		if k := sanitizeKey(candidates[0]); k != "" {
			return k
		}
	}
	return fmt.Sprintf("prompt_%d", pos+1)
}

// sanitizeKey keeps only identifier-safe characters.
func sanitizeKey(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// WorkbookKind classifies an uploaded or discovered workbook by filename.
type WorkbookKind int

const (
	KindUnknown WorkbookKind = iota
	KindMap
	KindOptions
)

// DetectKind classifies a workbook by its filename: map workbooks carry
// "map" in the name, data-points workbooks "data points" or "tpa".
func DetectKind(name string) WorkbookKind {
	n := strings.ToLower(filepath.Base(name))
	switch {
	case strings.Contains(n, "map"):
		return KindMap
	case strings.Contains(n, "data points"), strings.Contains(n, "tpa"):
		return KindOptions
	default:
		return KindUnknown
	}
}
