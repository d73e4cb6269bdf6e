package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/wbrown/sparqlcore/idtable"
	"github.com/wbrown/sparqlcore/resulttable"
)

// TwoColumnJoin merges two children already sorted on their join
// columns, producing one output row per matching pair. The result
// reports a single sort column (the join column in the output), a
// deliberate deviation from the original's incidental two-column
// sortedOn return: both join columns carry identical values in every
// output row, so the second one adds no information a consumer could
// act on. See DESIGN.md.
type TwoColumnJoin struct {
	Memo

	Left, Right         *QueryExecutionTree
	LeftJoinCol, RightJoinCol int
	textLimit            int
}

var _ Operation = (*TwoColumnJoin)(nil)

func NewTwoColumnJoin(left, right *QueryExecutionTree, leftJoinCol, rightJoinCol int) *TwoColumnJoin {
	return &TwoColumnJoin{Left: left, Right: right, LeftJoinCol: leftJoinCol, RightJoinCol: rightJoinCol}
}

// GetResultWidth is the join column (kept once) plus every other
// column from both sides.
func (j *TwoColumnJoin) GetResultWidth() int {
	return 1 + (j.Left.Op.GetResultWidth() - 1) + (j.Right.Op.GetResultWidth() - 1)
}

// ResultSortedOn reports only column 0, the join column's position in
// the output (see the type's doc comment for why not two columns).
func (j *TwoColumnJoin) ResultSortedOn() []int { return []int{0} }

func (j *TwoColumnJoin) GetVariableColumns() map[string]int {
	cols := map[string]int{}
	leftOther := 0
	for name, c := range j.Left.VariableColumns {
		if c == j.LeftJoinCol {
			cols[name] = 0
			continue
		}
		pos := c
		if c > j.LeftJoinCol {
			pos--
		}
		cols[name] = 1 + pos
		if pos+1 > leftOther {
			leftOther = pos + 1
		}
	}
	for name, c := range j.Right.VariableColumns {
		if c == j.RightJoinCol {
			if _, exists := cols[name]; !exists {
				cols[name] = 0
			}
			continue
		}
		pos := c
		if c > j.RightJoinCol {
			pos--
		}
		cols[name] = 1 + leftOther + pos
	}
	return cols
}

func (j *TwoColumnJoin) SetTextLimit(n int) {
	j.textLimit = n
	j.Left.SetTextLimit(n)
	j.Right.SetTextLimit(n)
	j.Memo.Reset()
}

// GetSizeEstimate is |L| * |R| divided twice by the larger of the two
// join-column multiplicities (at least 1), and is at least 1 when both
// sides are non-empty.
func (j *TwoColumnJoin) GetSizeEstimate() uint64 {
	return j.Memo.Size(func() uint64 {
		l := j.Left.Op.GetSizeEstimate()
		r := j.Right.Op.GetSizeEstimate()
		mult := j.Left.Op.GetMultiplicity(j.LeftJoinCol)
		if rm := j.Right.Op.GetMultiplicity(j.RightJoinCol); rm > mult {
			mult = rm
		}
		if mult < 1 {
			mult = 1
		}
		est := uint64(float64(l) * float64(r) / mult / mult)
		if est == 0 && l > 0 && r > 0 {
			est = 1
		}
		return est
	})
}

func (j *TwoColumnJoin) GetCostEstimate() uint64 {
	return j.Memo.Cost(func() uint64 {
		return j.Left.Op.GetCostEstimate() + j.Right.Op.GetCostEstimate() +
			j.Left.Op.GetSizeEstimate() + j.Right.Op.GetSizeEstimate()
	})
}

func (j *TwoColumnJoin) KnownEmptyResult() bool {
	return j.Memo.KnownEmpty(func() bool {
		return j.Left.Op.KnownEmptyResult() || j.Right.Op.KnownEmptyResult()
	})
}

func (j *TwoColumnJoin) GetMultiplicity(col int) float64 {
	if col == 0 {
		lm := j.Left.Op.GetMultiplicity(j.LeftJoinCol)
		rm := j.Right.Op.GetMultiplicity(j.RightJoinCol)
		return lm * rm
	}
	return 1
}

func (j *TwoColumnJoin) AsString(indent int) string {
	return fmt.Sprintf("%*sJOIN on left-col%d = right-col%d\n%s\n%s", indent, "", j.LeftJoinCol, j.RightJoinCol,
		j.Left.Op.AsString(indent+2), j.Right.Op.AsString(indent+2))
}

func (j *TwoColumnJoin) GetDescriptor() string {
	return fmt.Sprintf("Join(left-col%d = right-col%d)", j.LeftJoinCol, j.RightJoinCol)
}

func (j *TwoColumnJoin) GetChildren() []*QueryExecutionTree { return []*QueryExecutionTree{j.Left, j.Right} }

// ComputeResult performs a sort-merge join: both children must already
// be sorted on their join column (per the query planner's contract,
// out of scope here); when both sides have width 2 and the left side
// has no more rows than the right, the left join column is used as a
// sorted-key mask instead of a general merge, mirroring the original's
// dedicated fast path for the common "join with a single other bound
// variable" shape.
func (j *TwoColumnJoin) ComputeResult(ctx context.Context, out *resulttable.ResultTable) error {
	leftResult, err := j.Left.GetResult(ctx)
	if err != nil {
		return err
	}
	rightResult, err := j.Right.GetResult(ctx)
	if err != nil {
		return err
	}

	width := j.GetResultWidth()
	out.NumCols = width
	out.Data = idtable.NewDynamic(width)
	out.ResultTypes = make([]resulttable.ResultType, width)
	out.ResultTypes[0] = leftResult.GetResultType(j.LeftJoinCol)
	leftWidth := leftResult.NumCols
	col := 1
	for c := 0; c < leftWidth; c++ {
		if c == j.LeftJoinCol {
			continue
		}
		out.ResultTypes[col] = leftResult.GetResultType(c)
		col++
	}
	rightWidth := rightResult.NumCols
	for c := 0; c < rightWidth; c++ {
		if c == j.RightJoinCol {
			continue
		}
		out.ResultTypes[col] = rightResult.GetResultType(c)
		col++
	}
	out.SortedBy = j.ResultSortedOn()

	if leftWidth == 2 && rightWidth == 2 {
		return j.mergeWidthTwo(leftResult, rightResult, out)
	}
	return j.mergeGeneral(leftResult, rightResult, out)
}

func (j *TwoColumnJoin) buildOutputRow(leftRow, rightRow idtable.Row) idtable.Row {
	row := make(idtable.Row, 0, 1+len(leftRow)-1+len(rightRow)-1)
	row = append(row, leftRow[j.LeftJoinCol])
	for c, v := range leftRow {
		if c != j.LeftJoinCol {
			row = append(row, v)
		}
	}
	for c, v := range rightRow {
		if c != j.RightJoinCol {
			row = append(row, v)
		}
	}
	return row
}

// mergeGeneral is the standard two-pointer sort-merge join, handling
// arbitrary multiplicities on both sides via an inner scan over
// matching runs.
func (j *TwoColumnJoin) mergeGeneral(left, right *resulttable.ResultTable, out *resulttable.ResultTable) error {
	li, ri := 0, 0
	nl, nr := left.Data.NumRows(), right.Data.NumRows()
	for li < nl && ri < nr {
		lv := left.Data.At(li, j.LeftJoinCol)
		rv := right.Data.At(ri, j.RightJoinCol)
		switch {
		case lv < rv:
			li++
		case lv > rv:
			ri++
		default:
			riStart := ri
			for ; ri < nr && right.Data.At(ri, j.RightJoinCol) == lv; ri++ {
				if err := out.Data.PushBack(j.buildOutputRow(left.Data.Row(li), right.Data.Row(ri))); err != nil {
					return err
				}
			}
			li++
			for li < nl && left.Data.At(li, j.LeftJoinCol) == lv {
				for rr := riStart; rr < ri; rr++ {
					if err := out.Data.PushBack(j.buildOutputRow(left.Data.Row(li), right.Data.Row(rr))); err != nil {
						return err
					}
				}
				li++
			}
		}
	}
	return nil
}

// mergeWidthTwo is the join's dedicated fast path for two-column
// children (join key plus exactly one payload column on each side): if
// the left side has more rows than the right it defers to
// mergeGeneral; otherwise it builds a sorted key slice from the left
// side and binary-searches it for each row of the right side.
func (j *TwoColumnJoin) mergeWidthTwo(left, right *resulttable.ResultTable, out *resulttable.ResultTable) error {
	if left.Data.NumRows() > right.Data.NumRows() {
		return j.mergeGeneral(left, right, out)
	}
	keys := make([]idtable.Id, left.Data.NumRows())
	for i := range keys {
		keys[i] = left.Data.At(i, j.LeftJoinCol)
	}
	for ri := 0; ri < right.Data.NumRows(); ri++ {
		rv := right.Data.At(ri, j.RightJoinCol)
		lo := sort.Search(len(keys), func(i int) bool { return keys[i] >= rv })
		for li := lo; li < len(keys) && keys[li] == rv; li++ {
			if err := out.Data.PushBack(j.buildOutputRow(left.Data.Row(li), right.Data.Row(ri))); err != nil {
				return err
			}
		}
	}
	return nil
}
