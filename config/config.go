// Package config loads the small set of tunables the engine needs at
// startup: planner cost factors (TSV) and an optional engine sidecar
// (YAML) naming permutation files and a cache-size override, in the
// teacher's idiom of small typed option structs with defaults rather
// than a generic configuration framework.
package config

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/wbrown/sparqlcore/qerrors"
	"gopkg.in/yaml.v3"
)

// Process-wide constants named by the specification.
const (
	NofSubtreesToCache  = 50
	MaxNofRowsInResult  = 1_000_000
	MinWordPrefixSize   = 4
	PrefixChar          = '*'
)

// CostFactors holds planner tuning constants loaded from a TSV file of
// `name<tab>value` lines. Every name, known or not, is kept in Values
// rather than rejected, since the planner that consumes them is out of
// scope here.
type CostFactors struct {
	Values map[string]float64
}

// DefaultCostFactors returns reasonable defaults so the engine runs
// even without a cost-factors file.
func DefaultCostFactors() CostFactors {
	return CostFactors{Values: map[string]float64{
		"SCAN_COST":   1.0,
		"FILTER_COST": 1.0,
		"SORT_COST":   2.0,
		"JOIN_COST":   3.0,
	}}
}

// Get returns the named cost factor, or def if it was not present in
// the loaded file.
func (c CostFactors) Get(name string, def float64) float64 {
	if v, ok := c.Values[name]; ok {
		return v
	}
	return def
}

// LoadCostFactorsTSV reads a `name<tab>value` file, one pair per line.
// Blank lines and lines starting with '#' are ignored.
func LoadCostFactorsTSV(path string) (CostFactors, error) {
	f, err := os.Open(path)
	if err != nil {
		return CostFactors{}, qerrors.IOErrorf("LoadCostFactorsTSV", err, "opening %s", path)
	}
	defer f.Close()

	cf := CostFactors{Values: make(map[string]float64)}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return CostFactors{}, qerrors.Badf("LoadCostFactorsTSV", "line %d: expected name<TAB>value, got %q", lineNo, line)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return CostFactors{}, qerrors.Badf("LoadCostFactorsTSV", "line %d: invalid value %q: %v", lineNo, parts[1], err)
		}
		cf.Values[strings.TrimSpace(parts[0])] = v
	}
	if err := scanner.Err(); err != nil {
		return CostFactors{}, qerrors.IOErrorf("LoadCostFactorsTSV", err, "scanning %s", path)
	}
	return cf, nil
}

// EngineConfig is the optional YAML sidecar naming permutation files
// and process-wide overrides.
type EngineConfig struct {
	PermutationFiles map[string]string `yaml:"permutation_files"`
	CacheSize        int               `yaml:"cache_size"`
	EnableDebugLog   bool              `yaml:"enable_debug_log"`
}

// DefaultEngineConfig returns the process-wide defaults named by the
// specification.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{CacheSize: NofSubtreesToCache}
}

// LoadEngineConfigYAML reads an EngineConfig, falling back to
// DefaultEngineConfig for any field the file omits.
func LoadEngineConfigYAML(path string) (EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, qerrors.IOErrorf("LoadEngineConfigYAML", err, "reading %s", path)
	}
	cfg := DefaultEngineConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, qerrors.Badf("LoadEngineConfigYAML", "parsing %s: %v", path, err)
	}
	if cfg.CacheSize == 0 {
		cfg.CacheSize = NofSubtreesToCache
	}
	return cfg, nil
}
