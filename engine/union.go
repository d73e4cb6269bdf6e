package engine

import (
	"context"
	"fmt"

	"github.com/wbrown/sparqlcore/idtable"
	"github.com/wbrown/sparqlcore/resulttable"
)

// Union concatenates the results of two children, padding each side's
// rows with IDNoValue in columns present only on the other side. The
// two result widths need not match; GetResultWidth reports the length
// of the column mappings, mirroring the original's schema-alignment
// behavior for SPARQL's UNION over differently-shaped graph patterns.
type Union struct {
	Memo

	Left, Right *QueryExecutionTree
	// LeftColumns[i]/RightColumns[i] give the column of that side that
	// feeds output column i; -1 means that side does not supply output
	// column i, which is then padded with IDNoValue.
	LeftColumns, RightColumns []int
	textLimit                 int
}

var _ Operation = (*Union)(nil)

// NewUnion builds a Union whose output width is the number of entries
// in leftColumns (== len(rightColumns)).
func NewUnion(left, right *QueryExecutionTree, leftColumns, rightColumns []int) *Union {
	return &Union{Left: left, Right: right, LeftColumns: leftColumns, RightColumns: rightColumns}
}

func (u *Union) GetResultWidth() int { return len(u.LeftColumns) }

// ResultSortedOn is empty: concatenating two independently sorted
// tables does not preserve any global sort order.
func (u *Union) ResultSortedOn() []int { return nil }

func (u *Union) GetVariableColumns() map[string]int {
	cols := make(map[string]int, len(u.Left.VariableColumns))
	for name, col := range u.Left.VariableColumns {
		for outCol, leftCol := range u.LeftColumns {
			if leftCol == col {
				cols[name] = outCol
			}
		}
	}
	for name, col := range u.Right.VariableColumns {
		for outCol, rightCol := range u.RightColumns {
			if rightCol == col {
				if _, exists := cols[name]; !exists {
					cols[name] = outCol
				}
			}
		}
	}
	return cols
}

func (u *Union) SetTextLimit(n int) {
	u.textLimit = n
	u.Left.SetTextLimit(n)
	u.Right.SetTextLimit(n)
	u.Memo.Reset()
}

func (u *Union) GetSizeEstimate() uint64 {
	return u.Memo.Size(func() uint64 {
		return u.Left.Op.GetSizeEstimate() + u.Right.Op.GetSizeEstimate()
	})
}

func (u *Union) GetCostEstimate() uint64 {
	return u.Memo.Cost(func() uint64 {
		return u.Left.Op.GetCostEstimate() + u.Right.Op.GetCostEstimate() + u.GetSizeEstimate()
	})
}

func (u *Union) KnownEmptyResult() bool {
	return u.Memo.KnownEmpty(func() bool {
		return u.Left.Op.KnownEmptyResult() && u.Right.Op.KnownEmptyResult()
	})
}

// GetMultiplicity is the arithmetic mean of both sides' multiplicities
// for a column both sides supply. For a column only one side supplies,
// it adjusts that side's multiplicity down in proportion to that side's
// share of the total size, since only one side's rows actually carry
// col when the other side pads it.
func (u *Union) GetMultiplicity(col int) float64 {
	leftSize := float64(u.Left.Op.GetSizeEstimate())
	rightSize := float64(u.Right.Op.GetSizeEstimate())
	total := leftSize + rightSize
	if total == 0 {
		return 1
	}
	if col < len(u.LeftColumns) && u.LeftColumns[col] >= 0 && col < len(u.RightColumns) && u.RightColumns[col] >= 0 {
		return (u.Left.Op.GetMultiplicity(u.LeftColumns[col]) + u.Right.Op.GetMultiplicity(u.RightColumns[col])) / 2
	}
	if col < len(u.LeftColumns) && u.LeftColumns[col] >= 0 && (col >= len(u.RightColumns) || u.RightColumns[col] < 0) {
		return u.Left.Op.GetMultiplicity(u.LeftColumns[col]) * (leftSize / total)
	}
	if col < len(u.RightColumns) && u.RightColumns[col] >= 0 && (col >= len(u.LeftColumns) || u.LeftColumns[col] < 0) {
		return u.Right.Op.GetMultiplicity(u.RightColumns[col]) * (rightSize / total)
	}
	return 1
}

func (u *Union) AsString(indent int) string {
	return fmt.Sprintf("%*sUNION\n%s\n%s", indent, "", u.Left.Op.AsString(indent+2), u.Right.Op.AsString(indent+2))
}

func (u *Union) GetDescriptor() string { return "Union" }

func (u *Union) GetChildren() []*QueryExecutionTree { return []*QueryExecutionTree{u.Left, u.Right} }

func (u *Union) ComputeResult(ctx context.Context, out *resulttable.ResultTable) error {
	leftResult, err := u.Left.GetResult(ctx)
	if err != nil {
		return err
	}
	rightResult, err := u.Right.GetResult(ctx)
	if err != nil {
		return err
	}

	width := u.GetResultWidth()
	out.NumCols = width
	out.Data = idtable.NewDynamic(width)
	out.ResultTypes = make([]resulttable.ResultType, width)
	for i := range out.ResultTypes {
		out.ResultTypes[i] = resulttable.KB
		if i < len(u.LeftColumns) && u.LeftColumns[i] >= 0 {
			out.ResultTypes[i] = leftResult.GetResultType(u.LeftColumns[i])
		} else if i < len(u.RightColumns) && u.RightColumns[i] >= 0 {
			out.ResultTypes[i] = rightResult.GetResultType(u.RightColumns[i])
		}
	}
	out.SortedBy = nil

	out.Data.Reserve(leftResult.Data.NumRows() + rightResult.Data.NumRows())
	if err := u.appendSide(out.Data, leftResult, u.LeftColumns, width); err != nil {
		return err
	}
	if err := u.appendSide(out.Data, rightResult, u.RightColumns, width); err != nil {
		return err
	}
	return nil
}

// appendSide copies side's rows into dst, remapped through columns.
// When columns is the identity mapping over side's full width (the
// common case of two subqueries sharing an identical variable set),
// a fast path pushes rows directly without per-cell remapping.
func (u *Union) appendSide(dst *idtable.Dynamic, side *resulttable.ResultTable, columns []int, width int) error {
	identity := len(columns) == side.NumCols
	if identity {
		for i, c := range columns {
			if c != i {
				identity = false
				break
			}
		}
	}
	nofRows := side.Data.NumRows()
	if identity && width == side.NumCols {
		for r := 0; r < nofRows; r++ {
			if err := dst.PushBack(side.Data.Row(r)); err != nil {
				return err
			}
		}
		return nil
	}
	for r := 0; r < nofRows; r++ {
		srcRow := side.Data.Row(r)
		row := make(idtable.Row, width)
		for i := range row {
			row[i] = idtable.IDNoValue
		}
		for outCol, srcCol := range columns {
			if srcCol >= 0 {
				row[outCol] = srcRow[srcCol]
			}
		}
		if err := dst.PushBack(row); err != nil {
			return err
		}
	}
	return nil
}
