package idtable

import "github.com/wbrown/sparqlcore/qerrors"

// Dynamic is the runtime-width IdTable variant (COLS = 0 in the
// original terminology): cols is stored alongside the flat data slice
// rather than fixed by the type.
type Dynamic struct {
	data []Id
	cols int
	rows int
}

var _ Table = (*Dynamic)(nil)

// NewDynamic creates an empty table with the given column count.
func NewDynamic(cols int) *Dynamic {
	return &Dynamic{cols: cols}
}

func (t *Dynamic) NumRows() int { return t.rows }
func (t *Dynamic) NumCols() int { return t.cols }
func (t *Dynamic) Size() int    { return t.rows }

func (t *Dynamic) capacityRows() int {
	if t.cols == 0 {
		return 0
	}
	return cap(t.data) / t.cols
}

func (t *Dynamic) At(row, col int) Id {
	return t.data[row*t.cols+col]
}

func (t *Dynamic) Set(row, col int, v Id) {
	t.data[row*t.cols+col] = v
}

// Row returns a borrowed view over row i's cells.
func (t *Dynamic) Row(i int) Row {
	start := i * t.cols
	return Row(t.data[start : start+t.cols])
}

// Reserve grows capacity (in rows) to at least n without changing Size.
func (t *Dynamic) Reserve(n int) {
	if t.cols == 0 || n <= t.capacityRows() {
		return
	}
	newData := make([]Id, t.rows*t.cols, n*t.cols)
	copy(newData, t.data)
	t.data = newData
}

func (t *Dynamic) growIfNeeded(extraRows int) {
	needed := t.rows + extraRows
	if needed <= t.capacityRows() {
		return
	}
	t.Reserve(growCapacity(t.rows, needed))
}

// PushBack appends one row. Amortized O(1) thanks to geometric growth.
func (t *Dynamic) PushBack(row []Id) error {
	assertWidth("Dynamic.PushBack", len(row), t.cols)
	t.growIfNeeded(1)
	t.data = t.data[:len(t.data)+t.cols]
	copy(t.data[t.rows*t.cols:], row)
	t.rows++
	return nil
}

// InsertRange inserts a contiguous block of rows before pos, shifting
// subsequent rows back. rows must be a flat, contiguous slice of
// len(rows)/cols rows (see Design Notes: insert requires contiguous
// source rows).
func (t *Dynamic) InsertRange(pos int, rows []Id) error {
	if t.cols == 0 {
		if len(rows) == 0 {
			return nil
		}
		return qerrors.Assertf("Dynamic.InsertRange", "cannot insert rows into a zero-column table")
	}
	if len(rows)%t.cols != 0 {
		return qerrors.Assertf("Dynamic.InsertRange", "rows length %d is not a multiple of cols %d", len(rows), t.cols)
	}
	n := len(rows) / t.cols
	if n == 0 {
		return nil
	}
	if pos > t.rows {
		pos = t.rows
	}
	t.growIfNeeded(n)
	t.data = t.data[:len(t.data)+n*t.cols]
	// Shift [pos, rows) back by n rows to make room.
	copy(t.data[(pos+n)*t.cols:], t.data[pos*t.cols:(t.rows)*t.cols])
	copy(t.data[pos*t.cols:(pos+n)*t.cols], rows)
	t.rows += n
	return nil
}

// Erase removes rows in [begin, end). If end < begin+1 it erases a
// single row at begin.
func (t *Dynamic) Erase(begin int, end int) error {
	if end <= begin {
		end = begin + 1
	}
	if begin < 0 || begin > t.rows || end > t.rows {
		return qerrors.Checkf("Dynamic.Erase", "erase range [%d,%d) out of bounds for %d rows", begin, end, t.rows)
	}
	n := end - begin
	if n <= 0 {
		return nil
	}
	copy(t.data[begin*t.cols:], t.data[end*t.cols:t.rows*t.cols])
	t.rows -= n
	t.data = t.data[:t.rows*t.cols]
	return nil
}

// Resize truncates or grows the table to n rows without initializing
// any newly added cells.
func (t *Dynamic) Resize(n int) {
	if n <= t.rows {
		t.rows = n
		t.data = t.data[:n*t.cols]
		return
	}
	t.growIfNeeded(n - t.rows)
	t.data = t.data[:n*t.cols]
	t.rows = n
}

// Clear empties the table but keeps its allocated capacity.
func (t *Dynamic) Clear() {
	t.rows = 0
	t.data = t.data[:0]
}

// SwapRows exchanges the contents of two rows by copying cell values,
// never by re-seating any borrowed Row view.
func (t *Dynamic) SwapRows(i, j int) {
	if i == j {
		return
	}
	a := t.Row(i)
	b := t.Row(j)
	for k := 0; k < t.cols; k++ {
		a[k], b[k] = b[k], a[k]
	}
}

// MoveToStatic converts this table to a Static[W] view, transferring
// ownership of the backing storage. The caller must not use t after
// calling this; t is left in the moved-from empty state.
func MoveToStatic[W Width](t *Dynamic) (*Static[W], error) {
	var w W
	if t.cols != w.Int() {
		return nil, qerrors.Assertf("MoveToStatic", "table has %d columns, cannot move to static width %d", t.cols, w.Int())
	}
	moved := *t
	s := &Static[W]{inner: &moved}
	*t = Dynamic{}
	return s, nil
}
