// Package engine implements the physical operators (IndexScan, Filter,
// OrderBy, Union, TwoColumnJoin), the QueryExecutionTree that composes
// them, the process-wide result cache, and the stateless inner-loop
// helpers shared by every operator's ComputeResult.
package engine

import (
	"context"

	"github.com/wbrown/sparqlcore/resulttable"
)

// Operation is the uniform contract every physical operator satisfies.
// Unlike the original's abstract base class, GetResult's caching
// behavior is not implemented via virtual dispatch on this interface
// (Go embedding cannot call back into an embedder's override); instead
// Cache.GetResult is the free "template method" that takes an Operation
// and drives the IN_PROGRESS -> FINISHED/ABORTED lifecycle around a
// call to ComputeResult. See DESIGN.md.
type Operation interface {
	GetResultWidth() int
	ResultSortedOn() []int
	GetVariableColumns() map[string]int
	SetTextLimit(n int)
	GetSizeEstimate() uint64
	GetCostEstimate() uint64
	GetMultiplicity(col int) float64
	KnownEmptyResult() bool
	AsString(indent int) string
	GetDescriptor() string
	GetChildren() []*QueryExecutionTree

	// ComputeResult fills out in place (NumCols/ResultTypes/SortedBy/
	// LocalVocab/Data) but does not call Finish/Abort; the caller
	// (Cache.GetResult) owns the lifecycle transition.
	ComputeResult(ctx context.Context, out *resulttable.ResultTable) error
}

// Memo memoizes the size estimate, the cost estimate and the
// known-empty flag, each computed at most once until Reset, mirroring
// the "(memoized)" contract in the specification.
type Memo struct {
	size    *uint64
	cost    *uint64
	empty   *bool
}

// Size returns the memoized size estimate, computing it via compute on
// first call.
func (m *Memo) Size(compute func() uint64) uint64 {
	if m.size == nil {
		v := compute()
		m.size = &v
	}
	return *m.size
}

// Cost returns the memoized cost estimate, computing it via compute on
// first call.
func (m *Memo) Cost(compute func() uint64) uint64 {
	if m.cost == nil {
		v := compute()
		m.cost = &v
	}
	return *m.cost
}

// KnownEmpty returns the memoized known-empty-result flag.
func (m *Memo) KnownEmpty(compute func() bool) bool {
	if m.empty == nil {
		v := compute()
		m.empty = &v
	}
	return *m.empty
}

// Reset clears every memoized value, used when a text limit change
// invalidates previously computed estimates.
func (m *Memo) Reset() {
	m.size = nil
	m.cost = nil
	m.empty = nil
}
