package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbrown/sparqlcore/idtable"
)

func TestMappedIndexMetaDataLookup(t *testing.T) {
	m := NewIndexMetaData("OSP")
	for relId := Id(1); relId <= 5; relId++ {
		m.Add(NewRelationMetaData(relId, int64(relId)*10, uint64(relId*2), 2.0, 1.0, false, false))
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "osp.meta")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = m.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	mapped, err := OpenMappedIndexMetaData(path)
	require.NoError(t, err)
	defer mapped.Close()

	rmd, ok, err := mapped.GetRelationMetaData(3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Id(3), rmd.RelId)
	assert.Equal(t, uint64(6), rmd.NofElements())

	_, ok, err = mapped.GetRelationMetaData(42)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemIndexScanBoundPrefix(t *testing.T) {
	ix := NewMemIndex()
	s1, s2, p1, o1, o2 := ix.Intern("s1"), ix.Intern("s2"), ix.Intern("p1"), ix.Intern("o1"), ix.Intern("o2")
	ix.AddTriple(s1, p1, o1)
	ix.AddTriple(s1, p1, o2)
	ix.AddTriple(s2, p1, o1)
	ix.Build()

	out := idtable.NewDynamic(2)
	require.NoError(t, ix.ScanPSO(context.Background(), &p1, nil, out))
	assert.Equal(t, 3, out.NumRows())

	out2 := idtable.NewDynamic(1)
	require.NoError(t, ix.ScanPSO(context.Background(), &p1, &s1, out2))
	assert.Equal(t, 2, out2.NumRows())
}
