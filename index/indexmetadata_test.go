package index

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationMetaDataPacking(t *testing.T) {
	rmd := NewRelationMetaData(7, 100, 12345, 3.7, 1.0, true, false)

	assert.Equal(t, uint64(12345), rmd.NofElements())
	assert.True(t, rmd.IsFunctional())
	assert.False(t, rmd.HasBlocks())
	assert.Equal(t, uint8(1), rmd.Col1LogMultiplicity())
	assert.Equal(t, uint8(0), rmd.Col2LogMultiplicity())
}

func TestBlockBasedRelationMetaDataLookup(t *testing.T) {
	b := &BlockBasedRelationMetaData{
		StartRhs: 300,
		Blocks: []BlockMetaData{
			{FirstLhs: 10, StartOffset: 100},
			{FirstLhs: 50, StartOffset: 200},
		},
	}

	start, n, ok := b.GetBlockStartAndNofBytesForLhs(25)
	require.True(t, ok)
	assert.Equal(t, int64(100), start)
	assert.Equal(t, int64(100), n) // 200 - 100

	start, n, ok = b.GetBlockStartAndNofBytesForLhs(50)
	require.True(t, ok)
	assert.Equal(t, int64(200), start)
	assert.Equal(t, int64(100), n) // 300 - 200

	_, _, ok = b.GetBlockStartAndNofBytesForLhs(5)
	assert.False(t, ok)

	follow, ok := b.GetFollowBlockForLhs(10)
	require.True(t, ok)
	assert.Equal(t, Id(50), follow.FirstLhs)

	_, ok = b.GetFollowBlockForLhs(50)
	assert.False(t, ok)
}

func TestIndexMetaDataRoundTripPreloaded(t *testing.T) {
	m := NewIndexMetaData("PSO")
	m.Add(NewRelationMetaData(1, 0, 10, 1.0, 2.0, false, false))
	blocks := &BlockBasedRelationMetaData{
		StartRhs: 500,
		Blocks: []BlockMetaData{
			{FirstLhs: 1, StartOffset: 10},
			{FirstLhs: 4, StartOffset: 250},
		},
	}
	rmd2 := NewRelationMetaData(2, 100, 40, 4.0, 1.0, false, true)
	rmd2.Blocks = blocks
	m.Add(rmd2)

	var buf bytes.Buffer
	_, err := m.WriteTo(&buf)
	require.NoError(t, err)

	got, err := CreateFromByteBufferWithPreload(&buf)
	require.NoError(t, err)

	assert.Equal(t, m.Name, got.Name)
	require.Len(t, got.Relations, 2)
	assert.Equal(t, m.Relations[1], got.Relations[1])
	require.NotNil(t, got.Relations[2].Blocks)
	assert.Equal(t, *m.Relations[2].Blocks, *got.Relations[2].Blocks)
}

func TestIndexMetaDataLazyLoadBinarySearch(t *testing.T) {
	m := NewIndexMetaData("POS")
	for relId := Id(1); relId <= 20; relId++ {
		m.Add(NewRelationMetaData(relId, int64(relId)*10, uint64(relId), 1.0, 1.0, false, false))
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "pos.meta")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = m.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	lazy, err := CreateWithoutPreload(path)
	require.NoError(t, err)
	defer lazy.Close()

	for _, relId := range []Id{1, 10, 20} {
		rmd, ok, err := lazy.GetRelationMetaData(relId)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, relId, rmd.RelId)
		assert.Equal(t, uint64(relId), rmd.NofElements())
	}

	_, ok, err := lazy.GetRelationMetaData(999)
	require.NoError(t, err)
	assert.False(t, ok)
}
