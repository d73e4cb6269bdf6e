package engine

import (
	"sort"

	"github.com/wbrown/sparqlcore/idtable"
)

// Kernel groups the stateless inner-loop helpers every operator's
// ComputeResult is ultimately built from. These do not hold any state
// of their own (unlike Filter/OrderBy/TwoColumnJoin, which carry a
// child and column indices): they operate directly on idtable.Table
// values, making them reusable outside of an Operation, e.g. from a
// debugging REPL or a test fixture builder.
type Kernel struct{}

// FilterRows copies every row of in for which keep returns true into a
// freshly allocated Dynamic of the same width.
func (Kernel) FilterRows(in idtable.Table, keep func(idtable.Row) bool) (*idtable.Dynamic, error) {
	out := idtable.NewDynamic(in.NumCols())
	for r := 0; r < in.NumRows(); r++ {
		row := in.Row(r)
		if keep(row) {
			if err := out.PushBack(row); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// SortRows stably sorts in place by less, operating on borrowed Row
// views via SwapRows rather than copying the whole table.
func (Kernel) SortRows(t idtable.Table, less func(a, b idtable.Row) bool) {
	n := t.NumRows()
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	// Sort an index permutation first since SwapRows operates by
	// position, not value: sorting the table directly would invalidate
	// earlier comparisons as rows move.
	sort.SliceStable(rows, func(i, j int) bool { return less(t.Row(rows[i]), t.Row(rows[j])) })
	applyPermutation(t, rows)
}

// applyPermutation reorders t's rows in place to match perm (perm[i]
// is the original row index that should end up at position i), walking
// each cycle of perm once and resolving it with one SwapRows per
// element after the first.
func applyPermutation(t idtable.Table, perm []int) {
	visited := make([]bool, len(perm))
	for i := range perm {
		if visited[i] || perm[i] == i {
			visited[i] = true
			continue
		}
		j := i
		for !visited[j] {
			visited[j] = true
			next := perm[j]
			if !visited[next] {
				t.SwapRows(j, next)
			}
			j = next
		}
	}
}

// JoinOnColumn performs a sort-merge join of two tables already sorted
// on their respective join columns, invoking emit for every matching
// pair of rows. This is the width-independent core that
// TwoColumnJoin.mergeGeneral specializes with output-row construction;
// it is exposed standalone so other two-table joins (e.g. a future
// multi-way join planner) can reuse the merge logic without going
// through an Operation.
func (Kernel) JoinOnColumn(left idtable.Table, leftCol int, right idtable.Table, rightCol int, emit func(l, r idtable.Row)) {
	li, ri := 0, 0
	nl, nr := left.NumRows(), right.NumRows()
	for li < nl && ri < nr {
		lv := left.At(li, leftCol)
		rv := right.At(ri, rightCol)
		switch {
		case lv < rv:
			li++
		case lv > rv:
			ri++
		default:
			riStart := ri
			for ; ri < nr && right.At(ri, rightCol) == lv; ri++ {
				emit(left.Row(li), right.Row(ri))
			}
			li++
			for li < nl && left.At(li, leftCol) == lv {
				for rr := riStart; rr < ri; rr++ {
					emit(left.Row(li), right.Row(rr))
				}
				li++
			}
		}
	}
}
