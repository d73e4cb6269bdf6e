package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/sparqlcore/idtable"
)

func TestKernelFilterRows(t *testing.T) {
	in := idtable.NewDynamic(1)
	require.NoError(t, in.PushBack(idtable.Row{1}))
	require.NoError(t, in.PushBack(idtable.Row{2}))
	require.NoError(t, in.PushBack(idtable.Row{3}))

	out, err := Kernel{}.FilterRows(in, func(r idtable.Row) bool { return r[0] != 2 })
	require.NoError(t, err)
	assert.Equal(t, 2, out.NumRows())
	assert.Equal(t, idtable.Id(1), out.At(0, 0))
	assert.Equal(t, idtable.Id(3), out.At(1, 0))
}

func TestKernelSortRowsStable(t *testing.T) {
	in := idtable.NewDynamic(2)
	require.NoError(t, in.PushBack(idtable.Row{3, 0}))
	require.NoError(t, in.PushBack(idtable.Row{1, 0}))
	require.NoError(t, in.PushBack(idtable.Row{1, 1}))
	require.NoError(t, in.PushBack(idtable.Row{2, 0}))

	Kernel{}.SortRows(in, func(a, b idtable.Row) bool { return a[0] < b[0] })

	assert.Equal(t, idtable.Id(1), in.At(0, 0))
	assert.Equal(t, idtable.Id(1), in.At(1, 0))
	// Stability: the two rows with key 1 keep their relative order (0 then 1).
	assert.Equal(t, idtable.Id(0), in.At(0, 1))
	assert.Equal(t, idtable.Id(1), in.At(1, 1))
	assert.Equal(t, idtable.Id(2), in.At(2, 0))
	assert.Equal(t, idtable.Id(3), in.At(3, 0))
}

func TestKernelJoinOnColumn(t *testing.T) {
	left := idtable.NewDynamic(2)
	require.NoError(t, left.PushBack(idtable.Row{1, 100}))
	require.NoError(t, left.PushBack(idtable.Row{2, 200}))

	right := idtable.NewDynamic(2)
	require.NoError(t, right.PushBack(idtable.Row{1, 10}))
	require.NoError(t, right.PushBack(idtable.Row{2, 20}))

	var pairs [][2]idtable.Id
	Kernel{}.JoinOnColumn(left, 0, right, 0, func(l, r idtable.Row) {
		pairs = append(pairs, [2]idtable.Id{l[1], r[1]})
	})
	assert.Equal(t, [][2]idtable.Id{{100, 10}, {200, 20}}, pairs)
}
