package idtable

import "github.com/wbrown/sparqlcore/qerrors"

// Width is satisfied by the marker types below, one per commonly-used
// static row width. This is the Go stand-in for the original's
// template specialization on a compile-time integer: the type argument
// W makes Static[Width2] and Static[Width3] distinct types to the
// compiler, while the width of each row passed in is still checked at
// runtime by the inner Dynamic.
type Width interface {
	Int() int
}

type Width1 struct{}
type Width2 struct{}
type Width3 struct{}
type Width4 struct{}
type Width5 struct{}

func (Width1) Int() int { return 1 }
func (Width2) Int() int { return 2 }
func (Width3) Int() int { return 3 }
func (Width4) Int() int { return 4 }
func (Width5) Int() int { return 5 }

// Static is the compile-time-width IdTable variant. Internally it
// stores its data in a Dynamic of W's width, which keeps the column
// count at runtime; every method delegates to it, including the width
// checks and the Row views it hands out.
type Static[W Width] struct {
	inner *Dynamic
}

var _ Table = (*Static[Width1])(nil)

// NewStatic creates an empty static-width table for width W.
func NewStatic[W Width]() *Static[W] {
	var w W
	return &Static[W]{inner: NewDynamic(w.Int())}
}

// AsStaticView produces a borrowed, non-owning Static[W] view over a
// Dynamic table without transferring ownership: further mutation
// through d continues to be visible through the returned view, and
// vice versa. Panics (AssertFailed) if the column counts disagree.
func AsStaticView[W Width](d *Dynamic) *Static[W] {
	var w W
	if d.cols != w.Int() {
		panic(qerrors.Assertf("AsStaticView", "table has %d columns, cannot view as static width %d", d.cols, w.Int()))
	}
	return &Static[W]{inner: d}
}

func (t *Static[W]) NumRows() int           { return t.inner.NumRows() }
func (t *Static[W]) NumCols() int           { return t.inner.NumCols() }
func (t *Static[W]) Size() int              { return t.inner.Size() }
func (t *Static[W]) At(row, col int) Id     { return t.inner.At(row, col) }
func (t *Static[W]) Set(row, col int, v Id) { t.inner.Set(row, col, v) }
func (t *Static[W]) Row(row int) Row        { return t.inner.Row(row) }
func (t *Static[W]) PushBack(row []Id) error {
	return t.inner.PushBack(row)
}
func (t *Static[W]) InsertRange(pos int, rows []Id) error { return t.inner.InsertRange(pos, rows) }
func (t *Static[W]) Erase(begin, end int) error           { return t.inner.Erase(begin, end) }
func (t *Static[W]) Reserve(n int)                        { t.inner.Reserve(n) }
func (t *Static[W]) Resize(n int)                         { t.inner.Resize(n) }
func (t *Static[W]) Clear()                               { t.inner.Clear() }
func (t *Static[W]) SwapRows(i, j int)                    { t.inner.SwapRows(i, j) }

// MoveToDynamic converts this table to a Dynamic, transferring
// ownership. The caller must not use t after calling this.
func (t *Static[W]) MoveToDynamic() *Dynamic {
	d := t.inner
	t.inner = nil
	return d
}
