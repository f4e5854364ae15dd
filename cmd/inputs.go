package main

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/planfill-cli/internal/registry"
	"github.com/sells-group/planfill-cli/internal/vesting"
)

// loadInputs resolves the run's immutable inputs: the layered prompt map
// and options bundle, and the vesting schedule tables. Explicit paths win
// over the configured defaults, which win over the user store and the
// packaged data.
func loadInputs(mapPath, optionsPath string) (*registry.Bundle, *vesting.Tables, error) {
	if mapPath == "" {
		mapPath = cfg.Registry.MapPath
	}
	if optionsPath == "" {
		optionsPath = cfg.Registry.OptionsPath
	}

	loader := registry.Loader{
		MapPath:     mapPath,
		OptionsPath: optionsPath,
		StoreDir:    cfg.Registry.StoreDir,
	}
	bundle, err := loader.Load()
	if err != nil {
		return nil, nil, err
	}
	if len(bundle.Prompts) == 0 {
		return nil, nil, eris.New("prompt map is empty")
	}

	tables, err := loadVestingTables()
	if err != nil {
		return nil, nil, err
	}
	return bundle, tables, nil
}

func loadVestingTables() (*vesting.Tables, error) {
	if path := cfg.Registry.VestingTables; path != "" {
		return vesting.Load(path)
	}
	return vesting.Default()
}
