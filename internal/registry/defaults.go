package registry

import (
	"embed"
	"encoding/json"

	"github.com/rotisserie/eris"

	"github.com/sells-group/planfill-cli/internal/model"
)

//go:embed defaults/*.json
var packaged embed.FS

// PackagedMap returns the prompt map bundled with the binary, the last
// layer of the map resolution chain.
func PackagedMap() ([]model.MapEntry, error) {
	data, err := packaged.ReadFile("defaults/" + mapFile)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read packaged map")
	}
	var entries []model.MapEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, eris.Wrap(err, "registry: parse packaged map")
	}
	return entries, nil
}

// PackagedOptions returns the allowed-options mapping bundled with the
// binary.
func PackagedOptions() (map[string]string, error) {
	data, err := packaged.ReadFile("defaults/" + optionsFile)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read packaged options")
	}
	return decodeOptions(data, "packaged options")
}
