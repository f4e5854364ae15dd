//go:build !integration

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/planfill-cli/internal/config"
)

func TestLoadInputs_PackagedDefaults(t *testing.T) {
	cfg = &config.Config{Registry: config.RegistryConfig{StoreDir: t.TempDir()}}

	bundle, tables, err := loadInputs("", "")
	require.NoError(t, err)
	assert.Equal(t, "packaged defaults", bundle.MapSource)
	assert.Equal(t, "packaged defaults", bundle.OptionsSource)
	assert.NotEmpty(t, bundle.Prompts)
	assert.NotNil(t, tables)
}

func TestLoadInputs_ExplicitMapPath(t *testing.T) {
	mapCSV := filepath.Join(t.TempDir(), "map.csv")
	require.NoError(t, os.WriteFile(mapCSV,
		[]byte("Prompt,Proposed LinkName\nIs the plan frozen?,YesFrozen\n"), 0o644))

	cfg = &config.Config{Registry: config.RegistryConfig{StoreDir: t.TempDir()}}

	bundle, _, err := loadInputs(mapCSV, "")
	require.NoError(t, err)
	assert.Equal(t, mapCSV, bundle.MapSource)
	require.Len(t, bundle.Prompts, 1)
	assert.Equal(t, "Is the plan frozen?", bundle.Prompts[0].Text)
}

func TestLoadInputs_ConfiguredPathFallback(t *testing.T) {
	mapCSV := filepath.Join(t.TempDir(), "map.csv")
	require.NoError(t, os.WriteFile(mapCSV,
		[]byte("Prompt,Proposed LinkName\nIs the plan frozen?,YesFrozen\n"), 0o644))

	cfg = &config.Config{Registry: config.RegistryConfig{
		MapPath:  mapCSV,
		StoreDir: t.TempDir(),
	}}

	bundle, _, err := loadInputs("", "")
	require.NoError(t, err)
	assert.Equal(t, mapCSV, bundle.MapSource)
}

func TestLoadInputs_UnreadableMap(t *testing.T) {
	cfg = &config.Config{Registry: config.RegistryConfig{StoreDir: t.TempDir()}}

	_, _, err := loadInputs(filepath.Join(t.TempDir(), "missing.csv"), "")
	assert.Error(t, err)
}
