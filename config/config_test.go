package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCostFactorsTSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "costs.tsv")
	require.NoError(t, os.WriteFile(path, []byte("SCAN_COST\t1.5\n# comment\n\nJOIN_COST\t4\n"), 0o644))

	cf, err := LoadCostFactorsTSV(path)
	require.NoError(t, err)
	assert.Equal(t, 1.5, cf.Get("SCAN_COST", 0))
	assert.Equal(t, 4.0, cf.Get("JOIN_COST", 0))
	assert.Equal(t, 9.0, cf.Get("MISSING", 9.0))
}

func TestLoadCostFactorsTSVRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.tsv")
	require.NoError(t, os.WriteFile(path, []byte("NOT_A_PAIR\n"), 0o644))

	_, err := LoadCostFactorsTSV(path)
	assert.Error(t, err)
}

func TestLoadEngineConfigYAMLFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte("permutation_files:\n  PSO: pso.dat\n"), 0o644))

	cfg, err := LoadEngineConfigYAML(path)
	require.NoError(t, err)
	assert.Equal(t, "pso.dat", cfg.PermutationFiles["PSO"])
	assert.Equal(t, NofSubtreesToCache, cfg.CacheSize)
}
