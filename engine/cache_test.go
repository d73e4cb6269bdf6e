package engine

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheHitAvoidsRecompute(t *testing.T) {
	ix := buildTestIndex()
	cache := NewCache(10, nil)
	scan := NewIndexScan(ix, SPO)

	first, err := cache.GetResult(context.Background(), scan, false)
	require.NoError(t, err)
	second, err := cache.GetResult(context.Background(), scan, false)
	require.NoError(t, err)

	assert.Same(t, first, second)
	hits, misses, _, size := cache.Stats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 1, size)
}

func TestCacheEvictsLeastRecentlyUsedUnpinned(t *testing.T) {
	ix := buildTestIndex()
	cache := NewCache(1, nil)

	_, err := cache.GetResult(context.Background(), NewIndexScan(ix, SPO), false)
	require.NoError(t, err)
	_, err = cache.GetResult(context.Background(), NewIndexScan(ix, PSO), false)
	require.NoError(t, err)

	_, _, evictions, size := cache.Stats()
	assert.Equal(t, uint64(1), evictions)
	assert.Equal(t, 1, size)
}

func TestCachePinnedEntrySurvivesEviction(t *testing.T) {
	ix := buildTestIndex()
	cache := NewCache(1, nil)

	_, err := cache.GetResult(context.Background(), NewIndexScan(ix, SPO), true)
	require.NoError(t, err)
	_, err = cache.GetResult(context.Background(), NewIndexScan(ix, PSO), false)
	require.NoError(t, err)

	_, _, _, size := cache.Stats()
	assert.Equal(t, 2, size) // pinned entry was not evicted to make room
}

func TestCacheConcurrentIdenticalRequestsShareOneComputation(t *testing.T) {
	ix := buildTestIndex()
	cache := NewCache(10, nil)
	scan := NewIndexScan(ix, SPO)

	var wg sync.WaitGroup
	results := make([]interface{}, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rt, err := cache.GetResult(context.Background(), scan, false)
			require.NoError(t, err)
			results[i] = rt
		}(i)
	}
	wg.Wait()

	for i := 1; i < 4; i++ {
		assert.Same(t, results[0], results[i])
	}
	hits, misses, _, _ := cache.Stats()
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, uint64(3), hits)
}
