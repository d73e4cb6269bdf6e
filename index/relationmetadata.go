package index

import (
	"math"

	"github.com/wbrown/sparqlcore/idtable"
)

// Id is the shared 64-bit id type used throughout the on-disk format.
type Id = idtable.Id

const (
	nofElementsMask = uint64(0xFFFFFFFFFF) // low 40 bits
	isFunctionalBit = uint64(1) << 63
	hasBlocksBit    = uint64(1) << 62
	col1MultShift   = 48
	col2MultShift   = 40
	col1MultMask    = uint64(0xFF) << col1MultShift
	col2MultMask    = uint64(0xFF) << col2MultShift
)

// BlockMetaData is one entry of a relation's blockwise sub-index: the
// byte range [StartOffset, next block's StartOffset) holds every triple
// whose LHS (the relation's first free column) is >= FirstLhs and less
// than the first LHS of the following block.
type BlockMetaData struct {
	FirstLhs    Id
	StartOffset int64
}

// BlockBasedRelationMetaData is the auxiliary block index attached to a
// RelationMetaData when HasBlocks() is true.
type BlockBasedRelationMetaData struct {
	StartRhs    int64
	OffsetAfter int64
	Blocks      []BlockMetaData
}

// blockSearch returns the index of the last block whose FirstLhs <= lhs,
// i.e. the lower_bound-then-step-back rule from the original format.
// ok is false if lhs precedes every block's FirstLhs.
func (b *BlockBasedRelationMetaData) blockSearch(lhs Id) (idx int, ok bool) {
	// first index with Blocks[i].FirstLhs > lhs
	lo, hi := 0, len(b.Blocks)
	for lo < hi {
		mid := (lo + hi) / 2
		if b.Blocks[mid].FirstLhs > lhs {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	if lo == 0 {
		return 0, false
	}
	return lo - 1, true
}

// GetBlockStartAndNofBytesForLhs returns the byte range of the block
// that contains lhs.
func (b *BlockBasedRelationMetaData) GetBlockStartAndNofBytesForLhs(lhs Id) (startOffset int64, nofBytes int64, ok bool) {
	idx, ok := b.blockSearch(lhs)
	if !ok {
		return 0, 0, false
	}
	next := b.StartRhs
	if idx+1 < len(b.Blocks) {
		next = b.Blocks[idx+1].StartOffset
	}
	return b.Blocks[idx].StartOffset, next - b.Blocks[idx].StartOffset, true
}

// GetFollowBlockForLhs returns the block immediately after the one
// containing lhs, used to read across a boundary when an LHS group
// straddles two blocks.
func (b *BlockBasedRelationMetaData) GetFollowBlockForLhs(lhs Id) (BlockMetaData, bool) {
	idx, ok := b.blockSearch(lhs)
	if !ok {
		return BlockMetaData{}, false
	}
	if idx+1 < len(b.Blocks) {
		return b.Blocks[idx+1], true
	}
	return BlockMetaData{}, false
}

// RelationMetaData is the per-predicate on-disk descriptor.
type RelationMetaData struct {
	RelId                  Id
	StartFullIndex         int64
	TypeMultAndNofElements uint64
	Blocks                 *BlockBasedRelationMetaData
}

// NewRelationMetaData packs the given semantic fields into the bitfield
// layout described in the on-disk format.
func NewRelationMetaData(relId Id, startFullIndex int64, nofElements uint64, col1Mult, col2Mult float64, isFunctional, hasBlocks bool) RelationMetaData {
	v := nofElements & nofElementsMask
	if isFunctional {
		v |= isFunctionalBit
	}
	if hasBlocks {
		v |= hasBlocksBit
	}
	v |= uint64(logMultiplicity(col1Mult)) << col1MultShift
	v |= uint64(logMultiplicity(col2Mult)) << col2MultShift
	return RelationMetaData{
		RelId:                  relId,
		StartFullIndex:         startFullIndex,
		TypeMultAndNofElements: v,
	}
}

// logMultiplicity computes floor(log2(m)) clamped to the [0,255] range
// the 8-bit field can hold. Multiplicities are always >= 1, so the
// floor is always >= 0 in a well-formed call.
func logMultiplicity(m float64) uint8 {
	if m < 1 {
		m = 1
	}
	l := math.Floor(math.Log2(m))
	if l < 0 {
		l = 0
	}
	if l > 255 {
		l = 255
	}
	return uint8(l)
}

func (r RelationMetaData) NofElements() uint64 {
	return r.TypeMultAndNofElements & nofElementsMask
}

func (r RelationMetaData) IsFunctional() bool {
	return r.TypeMultAndNofElements&isFunctionalBit != 0
}

func (r RelationMetaData) HasBlocks() bool {
	return r.TypeMultAndNofElements&hasBlocksBit != 0
}

func (r RelationMetaData) Col1LogMultiplicity() uint8 {
	return uint8((r.TypeMultAndNofElements & col1MultMask) >> col1MultShift)
}

func (r RelationMetaData) Col2LogMultiplicity() uint8 {
	return uint8((r.TypeMultAndNofElements & col2MultMask) >> col2MultShift)
}
