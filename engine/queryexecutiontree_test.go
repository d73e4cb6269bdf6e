package engine

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryExecutionTreeDescendantsIncludesSelfAndChildren(t *testing.T) {
	ix := buildTestIndex()
	cache := NewCache(10, nil)
	leaf := NewQueryExecutionTree(cache, NewIndexScan(ix, SPO))
	filter := NewQueryExecutionTree(cache, NewFilter(ix, leaf, 0, EQ, "alice"))

	all := filter.Descendants()
	assert.Len(t, all, 2)
	assert.Same(t, filter, all[0])
	assert.Same(t, leaf, all[1])
}

func TestQueryExecutionTreeWriteJSONRespectsLimitAndOffset(t *testing.T) {
	ix := buildTestIndex()
	cache := NewCache(10, nil)
	scan := NewIndexScan(ix, SPO)
	tree := NewQueryExecutionTree(cache, scan)
	tree.VariableColumns = map[string]int{"s": 0, "p": 1, "o": 2}

	data, err := tree.WriteJSON(context.Background(), nil, 2, 1)
	require.NoError(t, err)

	var rows []map[string]uint64
	require.NoError(t, json.Unmarshal(data, &rows))
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Contains(t, row, "s")
		assert.Contains(t, row, "p")
		assert.Contains(t, row, "o")
	}
}

func TestQueryExecutionTreeAsStringIsCachedUntilTextLimitChanges(t *testing.T) {
	ix := buildTestIndex()
	cache := NewCache(10, nil)
	tree := NewQueryExecutionTree(cache, NewIndexScan(ix, SPO))

	first := tree.AsString()
	assert.Equal(t, first, tree.AsString())

	tree.SetTextLimit(5)
	assert.Equal(t, first, tree.AsString()) // scan's AsString does not depend on text limit, but it must recompute, not panic
}
