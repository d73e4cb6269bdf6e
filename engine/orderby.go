package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/wbrown/sparqlcore/idtable"
	"github.com/wbrown/sparqlcore/resulttable"
)

// SortKey is one column of an OrderBy's sort specification.
type SortKey struct {
	Col        int
	Descending bool
}

// OrderBy performs a stable multi-key sort over its child's result. An
// unconditional ascending comparison on column 0 is appended after the
// caller's keys as a deterministic tiebreak, matching the original's
// OBComp comparator.
type OrderBy struct {
	Memo

	Child     *QueryExecutionTree
	Keys      []SortKey
	textLimit int
}

var _ Operation = (*OrderBy)(nil)

func NewOrderBy(child *QueryExecutionTree, keys ...SortKey) *OrderBy {
	return &OrderBy{Child: child, Keys: keys}
}

func (o *OrderBy) GetResultWidth() int { return o.Child.Op.GetResultWidth() }

// ResultSortedOn reports only the ascending-only leading prefix of
// Keys: a descending key cannot be reported as a sort order that a
// downstream binary-search fast path could exploit the same way.
func (o *OrderBy) ResultSortedOn() []int {
	out := make([]int, 0, len(o.Keys))
	for _, k := range o.Keys {
		if k.Descending {
			break
		}
		out = append(out, k.Col)
	}
	return out
}

func (o *OrderBy) GetVariableColumns() map[string]int { return o.Child.VariableColumns }

func (o *OrderBy) SetTextLimit(n int) {
	o.textLimit = n
	o.Child.SetTextLimit(n)
	o.Memo.Reset()
}

func (o *OrderBy) GetSizeEstimate() uint64 {
	return o.Memo.Size(func() uint64 { return o.Child.Op.GetSizeEstimate() })
}

func (o *OrderBy) GetCostEstimate() uint64 {
	return o.Memo.Cost(func() uint64 {
		n := o.Child.Op.GetSizeEstimate()
		// n*log2(n) sort cost on top of materializing the child.
		cost := o.Child.Op.GetCostEstimate() + n
		for shifted := n; shifted > 1; shifted >>= 1 {
			cost += n
		}
		return cost
	})
}

func (o *OrderBy) KnownEmptyResult() bool {
	return o.Memo.KnownEmpty(func() bool { return o.Child.Op.KnownEmptyResult() })
}

func (o *OrderBy) GetMultiplicity(col int) float64 { return o.Child.Op.GetMultiplicity(col) }

func (o *OrderBy) AsString(indent int) string {
	parts := make([]string, len(o.Keys))
	for i, k := range o.Keys {
		dir := "ASC"
		if k.Descending {
			dir = "DESC"
		}
		parts[i] = fmt.Sprintf("col%d %s", k.Col, dir)
	}
	return fmt.Sprintf("%*sORDER BY %s\n%s", indent, "", strings.Join(parts, ", "), o.Child.Op.AsString(indent+2))
}

func (o *OrderBy) GetDescriptor() string {
	return fmt.Sprintf("OrderBy(%d keys)", len(o.Keys))
}

func (o *OrderBy) GetChildren() []*QueryExecutionTree { return []*QueryExecutionTree{o.Child} }

func (o *OrderBy) ComputeResult(ctx context.Context, out *resulttable.ResultTable) error {
	childResult, err := o.Child.GetResult(ctx)
	if err != nil {
		return err
	}

	out.NumCols = childResult.NumCols
	out.ResultTypes = childResult.ResultTypes
	out.LocalVocab = childResult.LocalVocab
	out.Data = idtable.NewDynamic(childResult.NumCols)
	out.SortedBy = o.ResultSortedOn()

	n := childResult.Data.NumRows()
	rows := make([]idtable.Row, n)
	for r := 0; r < n; r++ {
		rows[r] = childResult.Data.Row(r)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range o.Keys {
			a, b := rows[i][k.Col], rows[j][k.Col]
			if a == b {
				continue
			}
			if k.Descending {
				return a > b
			}
			return a < b
		}
		// Unconditional ascending tiebreak on column 0, matching the
		// original's OBComp which always ends with `a[0] < b[0]` once
		// the explicit sort keys are exhausted.
		return rows[i][0] < rows[j][0]
	})

	for _, row := range rows {
		if err := out.Data.PushBack(row); err != nil {
			return err
		}
	}
	return nil
}
