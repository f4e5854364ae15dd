//go:build !integration

package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/planfill-cli/internal/config"
	"github.com/sells-group/planfill-cli/internal/model"
	"github.com/sells-group/planfill-cli/internal/registry"
)

func TestMappingImport(t *testing.T) {
	dir := t.TempDir()

	mapCSV := filepath.Join(t.TempDir(), "map.csv")
	require.NoError(t, os.WriteFile(mapCSV,
		[]byte("Prompt,Proposed LinkName,Quick\nIs the plan frozen?,\"YesFrozen, NoFrozen\",\n"), 0o644))
	optCSV := filepath.Join(t.TempDir(), "datapoints.csv")
	require.NoError(t, os.WriteFile(optCSV,
		[]byte("PROMPT,Options Allowed\nIs the plan frozen?,Yes | No\n"), 0o644))

	cfg = &config.Config{Registry: config.RegistryConfig{StoreDir: dir}}
	mappingImportMap = mapCSV
	mappingImportOptions = optCSV
	t.Cleanup(func() { mappingImportMap, mappingImportOptions = "", "" })

	require.NoError(t, mappingImportCmd.RunE(mappingImportCmd, nil))

	entries, err := registry.LoadUserMap(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Is the plan frozen?", entries[0].Prompt)
	assert.Equal(t, "YesFrozen, NoFrozen", entries[0].Linknames)

	options, err := registry.LoadUserOptions(dir)
	require.NoError(t, err)
	assert.Equal(t, "Yes | No", options["Is the plan frozen?"])
}

func TestMappingImport_MapOnly(t *testing.T) {
	dir := t.TempDir()

	mapCSV := filepath.Join(t.TempDir(), "map.csv")
	require.NoError(t, os.WriteFile(mapCSV,
		[]byte("Prompt,Proposed LinkName\nIs the plan frozen?,YesFrozen\n"), 0o644))

	cfg = &config.Config{Registry: config.RegistryConfig{StoreDir: dir}}
	mappingImportMap = mapCSV
	mappingImportOptions = ""
	t.Cleanup(func() { mappingImportMap = "" })

	require.NoError(t, mappingImportCmd.RunE(mappingImportCmd, nil))

	entries, err := registry.LoadUserMap(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	options, err := registry.LoadUserOptions(dir)
	require.NoError(t, err)
	assert.Nil(t, options)
}

func TestMappingImport_NoUsableRows(t *testing.T) {
	mapCSV := filepath.Join(t.TempDir(), "map.csv")
	require.NoError(t, os.WriteFile(mapCSV, []byte("Prompt,Proposed LinkName\n"), 0o644))

	cfg = &config.Config{Registry: config.RegistryConfig{StoreDir: t.TempDir()}}
	mappingImportMap = mapCSV
	mappingImportOptions = ""
	t.Cleanup(func() { mappingImportMap = "" })

	err := mappingImportCmd.RunE(mappingImportCmd, nil)
	assert.Error(t, err)
}

func TestFormatMapping(t *testing.T) {
	bundle := registry.Compile([]model.MapEntry{
		{Prompt: "Is the plan frozen?", Linknames: "YesFrozen, NoFrozen"},
		{Prompt: "What is the vesting schedule for Match?", Linknames: "Vest5YRGradeMatch", Quick: "Vesting Schedule, Match"},
	}, map[string]string{
		"What is the vesting schedule for Match?": "1-20 (0=0,1=20)",
	})
	bundle.MapSource = "user store"
	bundle.OptionsSource = "packaged defaults"

	out := formatMapping(bundle)
	assert.Contains(t, out, "Map source:")
	assert.Contains(t, out, "user store")
	assert.Contains(t, out, "packaged defaults")
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "Is the plan frozen?")
	assert.Contains(t, out, "Vesting Schedule, Match")
}

func TestMappingView_JSON(t *testing.T) {
	bundle := registry.Compile([]model.MapEntry{
		{Prompt: "Is the plan frozen?", Linknames: "YesFrozen"},
	}, nil)
	bundle.MapSource = "packaged defaults"
	bundle.OptionsSource = "packaged defaults"

	data, err := json.Marshal(mappingView(bundle))
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `"map_source":"packaged defaults"`)
	assert.Contains(t, s, `"prompt":"Is the plan frozen?"`)
	assert.Contains(t, s, `"candidates":["YesFrozen"]`)
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "exactly-10", truncateText("exactly-10", 10))
	assert.Equal(t, "a long ...", truncateText("a long prompt text", 10))
}
