package index

import (
	"io"
	"os"

	"github.com/wbrown/sparqlcore/qerrors"
)

// MappedIndexMetaData is a lazy-loading IndexMetaData backed by a
// memory-mapped file rather than repeated Seek/Read calls: the pair
// table and every relation blob are read directly out of the mapped
// byte slice. This is the on-disk-header analogue of mmap-ing a
// permutation's relation-data section so skip-access block reads don't
// pay a syscall per seek.
type MappedIndexMetaData struct {
	IndexMetaData
	data   []byte
	closer func() error
}

// OpenMappedIndexMetaData opens and maps path, reading only the
// header eagerly.
func OpenMappedIndexMetaData(path string) (*MappedIndexMetaData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, qerrors.IOErrorf("OpenMappedIndexMetaData", err, "opening %s", path)
	}
	defer f.Close()

	data, closer, err := mmapReadOnly(f)
	if err != nil {
		return nil, qerrors.IOErrorf("OpenMappedIndexMetaData", err, "mapping %s", path)
	}

	r := &byteReader{buf: data}
	nameLen, err := readUint64(r)
	if err != nil {
		closer()
		return nil, qerrors.IOErrorf("OpenMappedIndexMetaData", err, "reading name length")
	}
	nameBytes := make([]byte, nameLen)
	if _, err := r.Read(nameBytes); err != nil {
		closer()
		return nil, qerrors.IOErrorf("OpenMappedIndexMetaData", err, "reading name")
	}
	nofRelations, err := readUint64(r)
	if err != nil {
		closer()
		return nil, qerrors.IOErrorf("OpenMappedIndexMetaData", err, "reading relation count")
	}
	offsetAfter, err := readInt64(r)
	if err != nil {
		closer()
		return nil, qerrors.IOErrorf("OpenMappedIndexMetaData", err, "reading offsetAfter")
	}

	startRelIdToOffset := int64(len(data)) - int64(nofRelations)*pairSize

	m := &MappedIndexMetaData{
		IndexMetaData: IndexMetaData{
			Name:               string(nameBytes),
			Relations:          make(map[Id]RelationMetaData),
			OffsetAfter:        offsetAfter,
			startRelIdToOffset: startRelIdToOffset,
			endMeta:            int64(len(data)),
		},
		data:   data,
		closer: closer,
	}
	return m, nil
}

// Close releases the memory mapping.
func (m *MappedIndexMetaData) Close() error {
	if m.closer == nil {
		return nil
	}
	return m.closer()
}

// GetRelationMetaData binary-searches the mapped pair table directly
// (no file I/O once the mapping is established).
func (m *MappedIndexMetaData) GetRelationMetaData(relId Id) (RelationMetaData, bool, error) {
	if rmd, ok := m.Relations[relId]; ok {
		return rmd, true, nil
	}
	offset, found, err := binarySearchMapped(m.data, relId, m.startRelIdToOffset, m.endMeta)
	if err != nil || !found {
		return RelationMetaData{}, false, err
	}
	r := &byteReader{buf: m.data[offset:]}
	rmd, err := readRelationBlob(r)
	if err != nil {
		return RelationMetaData{}, false, err
	}
	m.Add(rmd)
	return rmd, true, nil
}

func binarySearchMapped(data []byte, relId Id, startRelIdToOffset, endMeta int64) (int64, bool, error) {
	nofPairs := (endMeta - startRelIdToOffset) / pairSize
	loIdx, hiIdx := int64(0), nofPairs
	for loIdx < hiIdx {
		midIdx := loIdx + (hiIdx-loIdx)/2
		pos := startRelIdToOffset + midIdx*pairSize
		pairRelId := byteOrder.Uint64(data[pos : pos+8])
		pairOffset := int64(byteOrder.Uint64(data[pos+8 : pos+16]))
		switch {
		case pairRelId == relId:
			return pairOffset, true, nil
		case pairRelId < relId:
			loIdx = midIdx + 1
		default:
			hiIdx = midIdx
		}
	}
	return 0, false, nil
}

// byteReader is a minimal io.Reader over an in-memory buffer, letting
// the shared readUint64/readInt64/readRelationBlob helpers work
// identically against a mapped file or a real os.File.
type byteReader struct {
	buf []byte
	pos int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.buf) && len(p) > 0 {
		return 0, io.EOF
	}
	n := copy(p, r.buf[r.pos:])
	r.pos += n
	return n, nil
}
