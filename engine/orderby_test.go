package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/sparqlcore/idtable"
	"github.com/wbrown/sparqlcore/resulttable"
)

// fakeTiedPairScan produces two rows that tie on column 1 but differ on
// column 0, in input order (3,7) then (1,7) — used to exercise OrderBy's
// unconditional column-0 tiebreak when the caller's keys don't cover it.
type fakeTiedPairScan struct{ Memo }

func (fakeTiedPairScan) GetResultWidth() int                { return 2 }
func (fakeTiedPairScan) ResultSortedOn() []int               { return nil }
func (fakeTiedPairScan) GetVariableColumns() map[string]int { return map[string]int{} }
func (fakeTiedPairScan) SetTextLimit(int)                    {}
func (fakeTiedPairScan) GetMultiplicity(int) float64         { return 1 }
func (fakeTiedPairScan) AsString(int) string                 { return "FAKE_TIED_PAIR_SCAN" }
func (fakeTiedPairScan) GetDescriptor() string                { return "fakeTiedPairScan" }
func (fakeTiedPairScan) GetChildren() []*QueryExecutionTree    { return nil }
func (f fakeTiedPairScan) GetSizeEstimate() uint64             { return f.Memo.Size(func() uint64 { return 2 }) }
func (f fakeTiedPairScan) GetCostEstimate() uint64             { return f.Memo.Cost(func() uint64 { return 2 }) }
func (f fakeTiedPairScan) KnownEmptyResult() bool              { return f.Memo.KnownEmpty(func() bool { return false }) }
func (fakeTiedPairScan) ComputeResult(_ context.Context, out *resulttable.ResultTable) error {
	out.NumCols = 2
	out.ResultTypes = []resulttable.ResultType{resulttable.VERBATIM, resulttable.VERBATIM}
	out.Data = idtable.NewDynamic(2)
	_ = out.Data.PushBack(idtable.Row{3, 7})
	_ = out.Data.PushBack(idtable.Row{1, 7})
	return nil
}

func TestOrderByAscendingStableSort(t *testing.T) {
	ix := buildTestIndex()
	cache := NewCache(10, nil)
	scan := NewIndexScan(ix, SPO) // S, P, O
	scanTree := NewQueryExecutionTree(cache, scan)

	ob := NewOrderBy(scanTree, SortKey{Col: 0})
	rt, err := NewQueryExecutionTree(cache, ob).GetResult(context.Background())
	require.NoError(t, err)

	n := rt.Data.NumRows()
	require.Equal(t, 5, n)
	for r := 1; r < n; r++ {
		assert.LessOrEqual(t, rt.Data.At(r-1, 0), rt.Data.At(r, 0))
	}
	assert.Equal(t, []int{0}, ob.ResultSortedOn())
}

func TestOrderByTiebreaksOnColumnZeroWhenKeysExcludeIt(t *testing.T) {
	cache := NewCache(10, nil)
	fakeTree := NewQueryExecutionTree(cache, fakeTiedPairScan{})

	ob := NewOrderBy(fakeTree, SortKey{Col: 1})
	rt, err := NewQueryExecutionTree(cache, ob).GetResult(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, rt.Data.NumRows())
	assert.Equal(t, idtable.Id(1), rt.Data.At(0, 0))
	assert.Equal(t, idtable.Id(3), rt.Data.At(1, 0))
}

func TestOrderByDescendingIsNotReportedAsSortedOn(t *testing.T) {
	ix := buildTestIndex()
	cache := NewCache(10, nil)
	scan := NewIndexScan(ix, SPO)
	scanTree := NewQueryExecutionTree(cache, scan)

	ob := NewOrderBy(scanTree, SortKey{Col: 0, Descending: true})
	assert.Empty(t, ob.ResultSortedOn())

	rt, err := NewQueryExecutionTree(cache, ob).GetResult(context.Background())
	require.NoError(t, err)
	n := rt.Data.NumRows()
	for r := 1; r < n; r++ {
		assert.GreaterOrEqual(t, rt.Data.At(r-1, 0), rt.Data.At(r, 0))
	}
}
