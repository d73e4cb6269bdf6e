package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wbrown/sparqlcore/index"
)

func buildTestIndex() *index.MemIndex {
	ix := index.NewMemIndex()
	type fact struct{ s, p, o string }
	facts := []fact{
		{"alice", "knows", "bob"},
		{"alice", "knows", "carol"},
		{"bob", "knows", "carol"},
		{"alice", "age", "30"},
		{"bob", "age", "25"},
	}
	for _, f := range facts {
		ix.AddTriple(ix.Intern(f.s), ix.Intern(f.p), ix.Intern(f.o))
	}
	ix.Build()
	return ix
}

func TestIndexScanFullWidthThree(t *testing.T) {
	ix := buildTestIndex()
	s := NewIndexScan(ix, SPO)
	assert.Equal(t, 3, s.GetResultWidth())
	assert.Equal(t, []int{0, 1, 2}, s.ResultSortedOn())

	rt, err := NewQueryExecutionTree(NewCache(10, nil), s).GetResult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, rt.Data.NumRows())
}

func TestIndexScanBoundOneColumn(t *testing.T) {
	ix := buildTestIndex()
	s := NewIndexScan(ix, PSO, "knows")
	assert.Equal(t, 2, s.GetResultWidth())

	rt, err := NewQueryExecutionTree(NewCache(10, nil), s).GetResult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, rt.Data.NumRows())
}

func TestIndexScanBoundTwoColumns(t *testing.T) {
	ix := buildTestIndex()
	s := NewIndexScan(ix, SPO, "alice", "knows")
	assert.Equal(t, 1, s.GetResultWidth())

	rt, err := NewQueryExecutionTree(NewCache(10, nil), s).GetResult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, rt.Data.NumRows())
	assert.Equal(t, uint64(2), s.GetSizeEstimate())
}

func TestIndexScanUnknownVocabularyIsBadQuery(t *testing.T) {
	ix := buildTestIndex()
	s := NewIndexScan(ix, PSO, "nonexistent")
	_, err := NewQueryExecutionTree(NewCache(10, nil), s).GetResult(context.Background())
	assert.Error(t, err)
}
