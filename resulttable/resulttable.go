// Package resulttable implements ResultTable: an IdTable plus the
// per-column semantic types, sort order, local string vocabulary, and
// the IN_PROGRESS/FINISHED/ABORTED completion state every operator
// publishes its output through.
package resulttable

import (
	"sync"

	"github.com/wbrown/sparqlcore/idtable"
)

// ResultType tags how a column's Id values should be interpreted.
type ResultType int

const (
	// KB is an index into the global vocabulary.
	KB ResultType = iota
	// VERBATIM is an unsigned integer value stored literally.
	VERBATIM
	// TEXT is a byte offset into the text index.
	TEXT
	// FLOAT is the bit pattern of a 32-bit IEEE-754 float in the low
	// four bytes; the high four bytes must be zero.
	FLOAT
	// LOCAL_VOCAB is an index into this result's local vocabulary.
	LOCAL_VOCAB
)

func (rt ResultType) String() string {
	switch rt {
	case KB:
		return "KB"
	case VERBATIM:
		return "VERBATIM"
	case TEXT:
		return "TEXT"
	case FLOAT:
		return "FLOAT"
	case LOCAL_VOCAB:
		return "LOCAL_VOCAB"
	default:
		return "UNKNOWN"
	}
}

// Status is the lifecycle state of a ResultTable.
type Status int

const (
	InProgress Status = iota
	Finished
	Aborted
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "IN_PROGRESS"
	case Finished:
		return "FINISHED"
	case Aborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// ResultTable is the output of every Operation. It is always accessed
// through a pointer (copy/move are forbidden by the contract); once
// FINISHED it is immutable.
type ResultTable struct {
	NumCols    int
	SortedBy   []int
	Data       *idtable.Dynamic
	ResultTypes []ResultType
	LocalVocab  []string

	mu     sync.Mutex
	cond   *sync.Cond
	status Status
}

// New creates an empty ResultTable in IN_PROGRESS state with the given
// column count.
func New(cols int) *ResultTable {
	rt := &ResultTable{
		NumCols: cols,
		Data:    idtable.NewDynamic(cols),
		status:  InProgress,
	}
	rt.cond = sync.NewCond(&rt.mu)
	return rt
}

// Status returns the current lifecycle state.
func (rt *ResultTable) Status() Status {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.status
}

// Finish transitions IN_PROGRESS -> FINISHED and wakes all waiters.
// Terminal states are absorbing: calling Finish on an already-terminal
// table is a no-op.
func (rt *ResultTable) Finish() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.status != InProgress {
		return
	}
	rt.status = Finished
	rt.cond.Broadcast()
}

// Abort clears the data and transitions IN_PROGRESS -> ABORTED, waking
// all waiters.
func (rt *ResultTable) Abort() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.status != InProgress {
		return
	}
	rt.Data.Clear()
	rt.status = Aborted
	rt.cond.Broadcast()
}

// AwaitFinished blocks until the table leaves IN_PROGRESS.
func (rt *ResultTable) AwaitFinished() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	for rt.status == InProgress {
		rt.cond.Wait()
	}
}

// Size is the number of rows currently in Data.
func (rt *ResultTable) Size() int {
	return rt.Data.NumRows()
}

// GetResultType returns the ResultType of a column, defaulting to KB
// if the column is out of range of ResultTypes (mirrors the original's
// defensive default).
func (rt *ResultTable) GetResultType(col int) ResultType {
	if col >= 0 && col < len(rt.ResultTypes) {
		return rt.ResultTypes[col]
	}
	return KB
}

// IDToOptionalString resolves id against the local vocabulary only.
// Per the contract (see Design Notes), this never consults the global
// KB vocabulary: a caller must first check the column's ResultType and
// go through the Index facade for KB columns.
func (rt *ResultTable) IDToOptionalString(id idtable.Id) (string, bool) {
	if id < idtable.Id(len(rt.LocalVocab)) {
		return rt.LocalVocab[id], true
	}
	return "", false
}
