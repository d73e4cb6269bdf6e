// Package idtable implements the dense, column-oriented ID matrix that
// every intermediate query result is built from. Row width is either
// fixed at construction (the "static" variant, used for the common
// widths 1-5 via the Width type parameter) or carried alongside the
// data (the "dynamic" variant, width 0 in the original terminology).
// Both share the Table interface.
package idtable

import (
	"math"

	"github.com/wbrown/sparqlcore/qerrors"
)

// Id is the 64-bit unsigned integer every cell of an IdTable holds.
type Id = uint64

// IDNoValue is the distinguished id marking an unbound column.
const IDNoValue Id = math.MaxUint64

// Row is a borrowed view over one row's cells. It is backed by a slice
// of the table's underlying storage, so mutating it mutates the table.
type Row []Id

// Equal reports whether two rows have the same length and contents.
func (r Row) Equal(o Row) bool {
	if len(r) != len(o) {
		return false
	}
	for i := range r {
		if r[i] != o[i] {
			return false
		}
	}
	return true
}

// Table is the width-independent contract shared by Dynamic and every
// Static[W] instantiation.
type Table interface {
	NumRows() int
	NumCols() int
	Size() int
	At(row, col int) Id
	Set(row, col int, v Id)
	Row(row int) Row
	PushBack(row []Id) error
	InsertRange(pos int, rows []Id) error
	Erase(begin int, end int) error
	Reserve(n int)
	Resize(n int)
	Clear()
	SwapRows(i, j int)
}

// growCapacity implements the geometric growth policy: ×1.5 plus one.
func growCapacity(old, needed int) int {
	c := old + old/2 + 1
	if c < needed {
		c = needed
	}
	return c
}

// assertWidth panics with an AssertFailed error on a row-width mismatch.
// Width mismatches are programmer errors per the component contract, not
// recoverable runtime errors.
func assertWidth(op string, got, want int) {
	if got != want {
		panic(qerrors.Assertf(op, "row width %d does not match table width %d", got, want))
	}
}
