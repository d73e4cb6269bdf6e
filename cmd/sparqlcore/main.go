// Command sparqlcore is a small driver over the engine package: it
// runs one index scan, optionally followed by an equality filter, as
// described on the command line against a toy in-memory index, printing
// the result as a markdown table. Configuring an on-disk PSO
// permutation file makes it stop with an error (see openIndex).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/wbrown/sparqlcore/config"
	"github.com/wbrown/sparqlcore/engine"
	"github.com/wbrown/sparqlcore/index"
	"github.com/wbrown/sparqlcore/observability"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "sparqlcore:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("sparqlcore", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to an engine.yaml sidecar (permutation files, cache size)")
	perm := fs.String("perm", "PSO", "permutation to scan: PSO, POS, SPO, SOP, OSP, OPS")
	bound := fs.String("bound", "", "comma-separated leading bound values, in permutation order")
	filterCol := fs.Int("filter-col", -1, "output column to filter on (-1 disables filtering)")
	filterVal := fs.String("filter-eq", "", "literal to filter filter-col equal to")
	debug := fs.Bool("debug", false, "print colorized timing events to the console")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.DefaultEngineConfig()
	if *configPath != "" {
		loaded, err := config.LoadEngineConfigYAML(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	idx, err := openIndex(cfg)
	if err != nil {
		return err
	}

	collector := observability.NewCollector(nil)
	if *debug {
		collector = observability.NewCollector(observability.ConsoleHandler())
	}
	cache := engine.NewCache(cfg.CacheSize, collector)

	permutation, err := parsePermutation(*perm)
	if err != nil {
		return err
	}
	var boundLabels []string
	if *bound != "" {
		boundLabels = strings.Split(*bound, ",")
	}

	scan := engine.NewIndexScan(idx, permutation, boundLabels...)
	tree := engine.NewQueryExecutionTree(cache, scan)
	tree.IsRoot = true

	if *filterCol >= 0 {
		f := engine.NewFilter(idx, tree, *filterCol, engine.EQ, *filterVal)
		tree = engine.NewQueryExecutionTree(cache, f)
		tree.IsRoot = true
	}

	formatter := engine.NewTableFormatter(idx)
	out, err := formatter.FormatTree(context.Background(), tree)
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func parsePermutation(s string) (engine.Permutation, error) {
	switch strings.ToUpper(s) {
	case "PSO":
		return engine.PSO, nil
	case "POS":
		return engine.POS, nil
	case "SPO":
		return engine.SPO, nil
	case "SOP":
		return engine.SOP, nil
	case "OSP":
		return engine.OSP, nil
	case "OPS":
		return engine.OPS, nil
	default:
		return 0, fmt.Errorf("unknown permutation %q", s)
	}
}

// openIndex returns a small built-in demo index so the binary is
// runnable without a prebuilt index directory. If cfg.PermutationFiles
// names a PSO file, it maps that file's header and then returns an
// error, since no on-disk Index facade is wired up here.
func openIndex(cfg config.EngineConfig) (index.Index, error) {
	if path, ok := cfg.PermutationFiles["PSO"]; ok && path != "" {
		mapped, err := index.OpenMappedIndexMetaData(path)
		if err != nil {
			return nil, err
		}
		_ = mapped
		return nil, fmt.Errorf("on-disk Index facade wiring is left to the embedding application; only demo mode (-config omitted) is runnable standalone")
	}
	return demoIndex(), nil
}

func demoIndex() *index.MemIndex {
	ix := index.NewMemIndex()
	facts := [][3]string{
		{"alice", "knows", "bob"},
		{"alice", "knows", "carol"},
		{"bob", "knows", "carol"},
		{"alice", "age", "30"},
		{"bob", "age", "25"},
	}
	for _, f := range facts {
		ix.AddTriple(ix.Intern(f[0]), ix.Intern(f[1]), ix.Intern(f[2]))
	}
	ix.Build()
	return ix
}
