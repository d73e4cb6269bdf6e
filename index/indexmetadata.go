package index

import (
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/wbrown/sparqlcore/qerrors"
)

// byteOrder fixes little-endian for every on-disk numeric field so the
// format is portable across the machine that wrote a fixture and the
// one reading it (the original's "native-endian" is not reproducible
// portably; see DESIGN.md).
var byteOrder = binary.LittleEndian

const pairSize = 16 // Id (uint64) + off_t (int64)

// IndexMetaData is the header for one permutation: a name, the
// {relId -> RelationMetaData} map, and the boundary offsets used by
// lazy loading.
type IndexMetaData struct {
	Name        string
	Relations   map[Id]RelationMetaData
	OffsetAfter int64

	// Lazy-loading handles; nil/zero when the metadata was loaded
	// eagerly via CreateFromByteBufferWithPreload.
	file                 *os.File
	startRelIdToOffset   int64
	endMeta              int64
}

// NewIndexMetaData creates an empty, eagerly-loaded metadata header.
func NewIndexMetaData(name string) *IndexMetaData {
	return &IndexMetaData{Name: name, Relations: make(map[Id]RelationMetaData)}
}

// Add registers a relation's metadata (preloaded mode).
func (m *IndexMetaData) Add(rmd RelationMetaData) {
	if m.Relations == nil {
		m.Relations = make(map[Id]RelationMetaData)
	}
	m.Relations[rmd.RelId] = rmd
}

// RelationExists reports whether relId has metadata, consulting the
// lazily loaded map first and falling back to a disk lookup when the
// metadata was loaded via CreateWithoutPreload.
func (m *IndexMetaData) RelationExists(relId Id) (bool, error) {
	if _, ok := m.Relations[relId]; ok {
		return true, nil
	}
	if m.file == nil {
		return false, nil
	}
	ok, err := m.loadAndAddRelationMetaData(relId)
	return ok, err
}

// GetRelationMetaData returns the metadata for relId, lazily loading
// it from disk on first access if this header was opened without
// preloading.
func (m *IndexMetaData) GetRelationMetaData(relId Id) (RelationMetaData, bool, error) {
	if rmd, ok := m.Relations[relId]; ok {
		return rmd, true, nil
	}
	if m.file == nil {
		return RelationMetaData{}, false, nil
	}
	ok, err := m.loadAndAddRelationMetaData(relId)
	if err != nil || !ok {
		return RelationMetaData{}, false, err
	}
	return m.Relations[relId], true, nil
}

// WriteTo serializes the header in the layout described by the
// component design: header fields, then each relation's metadata blob
// in ascending relId order, then a relId-sorted offset pair table.
func (m *IndexMetaData) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	if err := writeUint64(cw, uint64(len(m.Name))); err != nil {
		return cw.n, err
	}
	if _, err := cw.Write([]byte(m.Name)); err != nil {
		return cw.n, err
	}
	if err := writeUint64(cw, uint64(len(m.Relations))); err != nil {
		return cw.n, err
	}
	if err := writeInt64(cw, m.OffsetAfter); err != nil {
		return cw.n, err
	}

	offsets := make(map[Id]int64, len(m.Relations))
	relIds := make([]Id, 0, len(m.Relations))
	for relId := range m.Relations {
		relIds = append(relIds, relId)
	}
	sort.Slice(relIds, func(i, j int) bool { return relIds[i] < relIds[j] })

	for _, relId := range relIds {
		rmd := m.Relations[relId]
		offsets[relId] = cw.n
		if err := writeRelationBlob(cw, rmd); err != nil {
			return cw.n, err
		}
	}

	for _, relId := range relIds {
		if err := writeUint64(cw, relId); err != nil {
			return cw.n, err
		}
		if err := writeInt64(cw, offsets[relId]); err != nil {
			return cw.n, err
		}
	}

	return cw.n, nil
}

func writeRelationBlob(w io.Writer, rmd RelationMetaData) error {
	if err := writeUint64(w, rmd.RelId); err != nil {
		return err
	}
	if err := writeInt64(w, rmd.StartFullIndex); err != nil {
		return err
	}
	if err := writeUint64(w, rmd.TypeMultAndNofElements); err != nil {
		return err
	}
	if !rmd.HasBlocks() {
		return nil
	}
	b := rmd.Blocks
	if err := writeInt64(w, b.StartRhs); err != nil {
		return err
	}
	if err := writeInt64(w, b.OffsetAfter); err != nil {
		return err
	}
	if err := writeUint64(w, uint64(len(b.Blocks))); err != nil {
		return err
	}
	for _, blk := range b.Blocks {
		if err := writeUint64(w, blk.FirstLhs); err != nil {
			return err
		}
		if err := writeInt64(w, blk.StartOffset); err != nil {
			return err
		}
	}
	return nil
}

func readRelationBlob(r io.Reader) (RelationMetaData, error) {
	var rmd RelationMetaData
	var err error
	if rmd.RelId, err = readUint64(r); err != nil {
		return rmd, err
	}
	if rmd.StartFullIndex, err = readInt64(r); err != nil {
		return rmd, err
	}
	if rmd.TypeMultAndNofElements, err = readUint64(r); err != nil {
		return rmd, err
	}
	if !rmd.HasBlocks() {
		return rmd, nil
	}
	b := &BlockBasedRelationMetaData{}
	if b.StartRhs, err = readInt64(r); err != nil {
		return rmd, err
	}
	if b.OffsetAfter, err = readInt64(r); err != nil {
		return rmd, err
	}
	nofBlocks, err := readUint64(r)
	if err != nil {
		return rmd, err
	}
	b.Blocks = make([]BlockMetaData, nofBlocks)
	for i := range b.Blocks {
		if b.Blocks[i].FirstLhs, err = readUint64(r); err != nil {
			return rmd, err
		}
		if b.Blocks[i].StartOffset, err = readInt64(r); err != nil {
			return rmd, err
		}
	}
	rmd.Blocks = b
	return rmd, nil
}

// CreateFromByteBufferWithPreload reads the entire metadata table
// eagerly, reproducing the full relation map.
func CreateFromByteBufferWithPreload(r io.Reader) (*IndexMetaData, error) {
	nameLen, err := readUint64(r)
	if err != nil {
		return nil, qerrors.IOErrorf("CreateFromByteBufferWithPreload", err, "reading name length")
	}
	nameBytes := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBytes); err != nil {
		return nil, qerrors.IOErrorf("CreateFromByteBufferWithPreload", err, "reading name")
	}
	nofRelations, err := readUint64(r)
	if err != nil {
		return nil, qerrors.IOErrorf("CreateFromByteBufferWithPreload", err, "reading relation count")
	}
	offsetAfter, err := readInt64(r)
	if err != nil {
		return nil, qerrors.IOErrorf("CreateFromByteBufferWithPreload", err, "reading offsetAfter")
	}

	m := &IndexMetaData{Name: string(nameBytes), Relations: make(map[Id]RelationMetaData, nofRelations), OffsetAfter: offsetAfter}
	for i := uint64(0); i < nofRelations; i++ {
		rmd, err := readRelationBlob(r)
		if err != nil {
			return nil, qerrors.IOErrorf("CreateFromByteBufferWithPreload", err, "reading relation blob %d", i)
		}
		m.Add(rmd)
	}
	// The trailing relId-to-offset pair table is not needed once every
	// relation has been preloaded; callers that want it for lazy mode
	// should use CreateWithoutPreload against the file instead.
	return m, nil
}

// CreateWithoutPreload opens path and reads only the header, deferring
// every relation's metadata to on-demand binary search.
func CreateWithoutPreload(path string) (*IndexMetaData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, qerrors.IOErrorf("CreateWithoutPreload", err, "opening %s", path)
	}

	nameLen, err := readUint64(f)
	if err != nil {
		return nil, qerrors.IOErrorf("CreateWithoutPreload", err, "reading name length")
	}
	nameBytes := make([]byte, nameLen)
	if _, err := io.ReadFull(f, nameBytes); err != nil {
		return nil, qerrors.IOErrorf("CreateWithoutPreload", err, "reading name")
	}
	nofRelations, err := readUint64(f)
	if err != nil {
		return nil, qerrors.IOErrorf("CreateWithoutPreload", err, "reading relation count")
	}
	offsetAfter, err := readInt64(f)
	if err != nil {
		return nil, qerrors.IOErrorf("CreateWithoutPreload", err, "reading offsetAfter")
	}

	fileEnd, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, qerrors.IOErrorf("CreateWithoutPreload", err, "seeking to end")
	}
	startRelIdToOffset := fileEnd - int64(nofRelations)*pairSize

	return &IndexMetaData{
		Name:               string(nameBytes),
		Relations:          make(map[Id]RelationMetaData),
		OffsetAfter:        offsetAfter,
		file:               f,
		startRelIdToOffset: startRelIdToOffset,
		endMeta:            fileEnd,
	}, nil
}

// Close releases the lazy-loading file handle, if any.
func (m *IndexMetaData) Close() error {
	if m.file == nil {
		return nil
	}
	return m.file.Close()
}

// loadAndAddRelationMetaData binary-searches the on-disk offset table
// for relId, reads its metadata blob on a hit, adds it to the map, and
// explicitly returns true. (The original's equivalent control flow
// lacks an explicit return on this path; this implementation always
// returns a definite boolean.)
func (m *IndexMetaData) loadAndAddRelationMetaData(relId Id) (bool, error) {
	offset, found, err := binarySearchIndexFile(m.file, relId, m.startRelIdToOffset, m.endMeta)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if _, err := m.file.Seek(offset, io.SeekStart); err != nil {
		return false, qerrors.IOErrorf("loadAndAddRelationMetaData", err, "seeking to relation blob")
	}
	rmd, err := readRelationBlob(m.file)
	if err != nil {
		return false, qerrors.IOErrorf("loadAndAddRelationMetaData", err, "reading relation blob")
	}
	m.Add(rmd)
	return true, nil
}

// binarySearchIndexFile binary-searches the sorted (relId, offset)
// pair table occupying the byte range [startRelIdToOffset, endMeta).
// The corrected pivot computation: the midpoint is a pair *index*
// within [loIdx, hiIdx), and the seek target is
// startRelIdToOffset + midIndex*pairSize (the original's
// `(end-beg)*elemSize` pivot confusion is not reproduced).
func binarySearchIndexFile(f *os.File, relId Id, startRelIdToOffset, endMeta int64) (offset int64, found bool, err error) {
	nofPairs := (endMeta - startRelIdToOffset) / pairSize
	loIdx, hiIdx := int64(0), nofPairs
	for loIdx < hiIdx {
		midIdx := loIdx + (hiIdx-loIdx)/2
		seekPos := startRelIdToOffset + midIdx*pairSize
		if _, err := f.Seek(seekPos, io.SeekStart); err != nil {
			return 0, false, qerrors.IOErrorf("binarySearchIndexFile", err, "seeking to pair %d", midIdx)
		}
		pairRelId, err := readUint64(f)
		if err != nil {
			return 0, false, qerrors.IOErrorf("binarySearchIndexFile", err, "reading pair relId")
		}
		pairOffset, err := readInt64(f)
		if err != nil {
			return 0, false, qerrors.IOErrorf("binarySearchIndexFile", err, "reading pair offset")
		}
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

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func writeUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	byteOrder.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeInt64(w io.Writer, v int64) error {
	return writeUint64(w, uint64(v))
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return byteOrder.Uint64(buf[:]), nil
}

func readInt64(r io.Reader) (int64, error) {
	v, err := readUint64(r)
	return int64(v), err
}
