package registry

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/planfill-cli/internal/model"
)

// Files kept in the user store directory.
const (
	mapFile     = "defaultMap.json"
	optionsFile = "optionsByPrompt.json"
)

// DefaultStoreDir returns the per-user configuration store, ~/.planfill.
func DefaultStoreDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", eris.Wrap(err, "registry: locate home directory")
	}
	return filepath.Join(home, ".planfill"), nil
}

// LoadUserMap reads the imported prompt map from the user store. An absent
// file returns nil entries without error; the layer simply does not apply.
func LoadUserMap(dir string) ([]model.MapEntry, error) {
	path := filepath.Join(dir, mapFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "registry: read %s", path)
	}
	var entries []model.MapEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrapf(err, "registry: parse %s", path)
	}
	return entries, nil
}

// LoadUserOptions reads the imported options mapping from the user store.
// Both an object mapping and a list of {key, value} records are accepted.
// An absent file returns nil without error.
func LoadUserOptions(dir string) (map[string]string, error) {
	path := filepath.Join(dir, optionsFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "registry: read %s", path)
	}
	return decodeOptions(data, path)
}

func decodeOptions(data []byte, path string) (map[string]string, error) {
	var asMap map[string]string
	if err := json.Unmarshal(data, &asMap); err == nil {
		return asMap, nil
	}
	var asList []struct {
		Key   string `json:"key"`
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &asList); err != nil {
		return nil, eris.Wrapf(err, "registry: parse %s", path)
	}
	out := make(map[string]string, len(asList))
	for _, item := range asList {
		if item.Key == "" {
			continue
		}
		out[item.Key] = item.Value
	}
	return out, nil
}

// SaveUserMap persists imported map entries to the user store.
func SaveUserMap(dir string, entries []model.MapEntry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "registry: create store dir %s", dir)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return eris.Wrap(err, "registry: encode map entries")
	}
	path := filepath.Join(dir, mapFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "registry: write %s", path)
	}
	return nil
}

// SaveUserOptions persists the imported options mapping to the user store.
func SaveUserOptions(dir string, options map[string]string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "registry: create store dir %s", dir)
	}
	data, err := json.MarshalIndent(options, "", "  ")
	if err != nil {
		return eris.Wrap(err, "registry: encode options")
	}
	path := filepath.Join(dir, optionsFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "registry: write %s", path)
	}
	return nil
}
