package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/wbrown/sparqlcore/resulttable"
)

// QueryExecutionTree wraps one Operation with the bookkeeping that does
// not belong on the operator itself: a variable name to result-column
// map, a set of variables bound by an outer context (carried for the
// caller; nothing in this package reads it), a cached AsString (invalidated whenever the text limit changes), and
// a root flag telling the cache to pin the result permanently rather
// than let it be evicted like any other subtree.
type QueryExecutionTree struct {
	Op              Operation
	VariableColumns map[string]int
	ContextVars     map[string]struct{}
	IsRoot          bool

	cache       *Cache
	asString    string
	asStringSet bool
}

// NewQueryExecutionTree wraps op, starting from op's own variable
// columns; callers may replace VariableColumns afterwards.
func NewQueryExecutionTree(cache *Cache, op Operation) *QueryExecutionTree {
	return &QueryExecutionTree{
		Op:              op,
		VariableColumns: op.GetVariableColumns(),
		ContextVars:     map[string]struct{}{},
		cache:           cache,
	}
}

// SetTextLimit propagates to the wrapped operator and invalidates the
// cached AsString, since some operators fold the text limit into their
// canonical descriptor.
func (t *QueryExecutionTree) SetTextLimit(n int) {
	t.Op.SetTextLimit(n)
	t.asStringSet = false
}

// AsString returns (and caches) the canonical description used as the
// result cache key.
func (t *QueryExecutionTree) AsString() string {
	if !t.asStringSet {
		t.asString = t.Op.AsString(0)
		t.asStringSet = true
	}
	return t.asString
}

// GetSizeEstimate delegates to the wrapped operator.
func (t *QueryExecutionTree) GetSizeEstimate() uint64 { return t.Op.GetSizeEstimate() }

// GetCostEstimate delegates to the wrapped operator.
func (t *QueryExecutionTree) GetCostEstimate() uint64 { return t.Op.GetCostEstimate() }

// GetResult runs (or retrieves from cache) this subtree's result,
// pinning it in the cache if this tree is the query's root.
func (t *QueryExecutionTree) GetResult(ctx context.Context) (*resulttable.ResultTable, error) {
	return t.cache.GetResult(ctx, t.Op, t.IsRoot)
}

// Descendants returns every QueryExecutionTree in this subtree,
// including t itself, in preorder.
func (t *QueryExecutionTree) Descendants() []*QueryExecutionTree {
	out := []*QueryExecutionTree{t}
	for _, c := range t.Op.GetChildren() {
		out = append(out, c.Descendants()...)
	}
	return out
}

// WriteTable renders a debug dump of this subtree's materialized
// result: a header line of variable names over a plain rows listing.
// Cells are raw numeric ids; see table_formatter.go for the markdown
// variant that resolves KB ids to strings.
func (t *QueryExecutionTree) WriteTable(ctx context.Context) (string, error) {
	rt, err := t.GetResult(ctx)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	cols := t.orderedVariableNames()
	sb.WriteString(strings.Join(cols, "\t"))
	sb.WriteByte('\n')
	for r := 0; r < rt.Data.NumRows(); r++ {
		row := rt.Data.Row(r)
		parts := make([]string, len(cols))
		for i, name := range cols {
			col := t.VariableColumns[name]
			parts[i] = fmt.Sprintf("%d", row[col])
		}
		sb.WriteString(strings.Join(parts, "\t"))
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func (t *QueryExecutionTree) orderedVariableNames() []string {
	names := make([]string, 0, len(t.VariableColumns))
	for name := range t.VariableColumns {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return t.VariableColumns[names[i]] < t.VariableColumns[names[j]] })
	return names
}

// WriteJSON serializes up to limit rows (0 = unbounded), skipping the
// first offset rows, over the chosen variable subset (nil/empty means
// every exported variable) as a JSON array of objects.
func (t *QueryExecutionTree) WriteJSON(ctx context.Context, vars []string, limit, offset int) ([]byte, error) {
	rt, err := t.GetResult(ctx)
	if err != nil {
		return nil, err
	}
	if len(vars) == 0 {
		vars = t.orderedVariableNames()
	}
	rows := make([]map[string]uint64, 0)
	nofRows := rt.Data.NumRows()
	for r := offset; r < nofRows; r++ {
		if limit > 0 && len(rows) >= limit {
			break
		}
		row := rt.Data.Row(r)
		obj := make(map[string]uint64, len(vars))
		for _, name := range vars {
			col, ok := t.VariableColumns[name]
			if !ok {
				continue
			}
			obj[name] = uint64(row[col])
		}
		rows = append(rows, obj)
	}
	return json.Marshal(rows)
}

// WriteDelimited serializes the same row/column selection as
// WriteJSON but as sep-separated text, one row per line, with a header
// row of variable names.
func (t *QueryExecutionTree) WriteDelimited(ctx context.Context, vars []string, limit, offset int, sep string) (string, error) {
	rt, err := t.GetResult(ctx)
	if err != nil {
		return "", err
	}
	if len(vars) == 0 {
		vars = t.orderedVariableNames()
	}
	var sb strings.Builder
	sb.WriteString(strings.Join(vars, sep))
	sb.WriteByte('\n')

	nofRows := rt.Data.NumRows()
	for r := offset; r < nofRows; r++ {
		if limit > 0 && r-offset >= limit {
			break
		}
		row := rt.Data.Row(r)
		parts := make([]string, len(vars))
		for i, name := range vars {
			col, ok := t.VariableColumns[name]
			if !ok {
				continue
			}
			parts[i] = fmt.Sprintf("%d", row[col])
		}
		sb.WriteString(strings.Join(parts, sep))
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
