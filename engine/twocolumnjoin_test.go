package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwoColumnJoinMatchesOnSubject(t *testing.T) {
	ix := buildTestIndex()
	cache := NewCache(10, nil)
	knows := NewQueryExecutionTree(cache, NewIndexScan(ix, PSO, "knows")) // S, O; sorted by S
	ages := NewQueryExecutionTree(cache, NewIndexScan(ix, PSO, "age"))    // S, O; sorted by S

	j := NewTwoColumnJoin(knows, ages, 0, 0)
	assert.Equal(t, 3, j.GetResultWidth()) // join col + knows' O + ages' O
	assert.Equal(t, []int{0}, j.ResultSortedOn())

	rt, err := NewQueryExecutionTree(cache, j).GetResult(context.Background())
	require.NoError(t, err)
	// alice (2 knows rows) joined with her one age row, plus bob (1 knows
	// row) joined with his one age row: 2 + 1 = 3 output rows. carol has
	// no age row, so her incoming edges do not appear on the right side
	// to join against (alice->carol, bob->carol contribute via alice/bob
	// as the join column, which is what is counted above).
	assert.Equal(t, 3, rt.Data.NumRows())
}

func TestTwoColumnJoinEmptyWhenNoOverlap(t *testing.T) {
	ix := buildTestIndex()
	cache := NewCache(10, nil)
	// Join "knows" subjects against "knows" objects: overlap exists
	// (bob, carol appear on both sides) so instead verify a guaranteed
	// disjoint pairing by joining ages' subjects against themselves
	// offset through a filter that excludes everything.
	ages := NewQueryExecutionTree(cache, NewIndexScan(ix, PSO, "age"))
	filtered := NewQueryExecutionTree(cache, NewFilter(ix, ages, 0, EQ, "alice"))
	otherAges := NewQueryExecutionTree(cache, NewFilter(ix, NewQueryExecutionTree(cache, NewIndexScan(ix, PSO, "age")), 0, EQ, "bob"))

	j := NewTwoColumnJoin(filtered, otherAges, 0, 0)
	rt, err := NewQueryExecutionTree(cache, j).GetResult(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, rt.Data.NumRows())
}
