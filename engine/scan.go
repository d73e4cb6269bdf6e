package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/wbrown/sparqlcore/idtable"
	"github.com/wbrown/sparqlcore/index"
	"github.com/wbrown/sparqlcore/qerrors"
	"github.com/wbrown/sparqlcore/resulttable"
)

// Permutation names one of the six triple orderings.
type Permutation int

const (
	PSO Permutation = iota
	POS
	SPO
	SOP
	OSP
	OPS
)

func (p Permutation) String() string {
	return [...]string{"PSO", "POS", "SPO", "SOP", "OSP", "OPS"}[p]
}

// componentOrder returns the column identity ("S", "P", or "O") of
// each position in this permutation's natural triple order.
func (p Permutation) componentOrder() [3]string {
	switch p {
	case PSO:
		return [3]string{"P", "S", "O"}
	case POS:
		return [3]string{"P", "O", "S"}
	case SPO:
		return [3]string{"S", "P", "O"}
	case SOP:
		return [3]string{"S", "O", "P"}
	case OSP:
		return [3]string{"O", "S", "P"}
	default: // OPS
		return [3]string{"O", "P", "S"}
	}
}

// IndexScan is the leaf operator: it delegates to the Index facade
// according to its permutation and the number of leading (bound)
// columns. This models the specification's fifteen fixed scan types as
// the more general (permutation, boundDepth) pair -- a Go
// simplification documented in DESIGN.md that subsumes the fixed
// enumeration without losing any distinguishable scan behavior.
type IndexScan struct {
	Memo

	Idx          index.Index
	Perm         Permutation
	BoundLabels  []string // 0, 1, or 2 leading bound values, in permutation order
	textLimit    int
}

var _ Operation = (*IndexScan)(nil)

// NewIndexScan creates a scan over perm bound on the given leading
// labels (0, 1, or 2 of them).
func NewIndexScan(idx index.Index, perm Permutation, boundLabels ...string) *IndexScan {
	return &IndexScan{Idx: idx, Perm: perm, BoundLabels: boundLabels}
}

func (s *IndexScan) GetResultWidth() int { return 3 - len(s.BoundLabels) }

// ResultSortedOn: the free suffix of a permutation scan is fully
// lexicographically sorted (the permutation's whole triple order is),
// so every free output column, in order, is a sort key.
func (s *IndexScan) ResultSortedOn() []int {
	width := s.GetResultWidth()
	out := make([]int, width)
	for i := range out {
		out[i] = i
	}
	return out
}

// GetVariableColumns is empty here: a leaf scan does not itself know
// SPARQL variable names, those are assigned by the (out of scope)
// planner when it wraps this scan in a QueryExecutionTree.
func (s *IndexScan) GetVariableColumns() map[string]int { return map[string]int{} }

func (s *IndexScan) SetTextLimit(n int) {
	s.textLimit = n
	s.Memo.Reset()
}

func (s *IndexScan) components() (sLabel, pLabel, oLabel string) {
	order := s.Perm.componentOrder()
	vals := map[string]string{}
	for i, comp := range order {
		if i < len(s.BoundLabels) {
			vals[comp] = s.BoundLabels[i]
		}
	}
	return vals["S"], vals["P"], vals["O"]
}

func (s *IndexScan) GetSizeEstimate() uint64 {
	return s.Memo.Size(func() uint64 {
		if s.GetResultWidth() == 1 {
			out := idtable.NewDynamic(1)
			_ = s.doScan(context.Background(), out)
			return uint64(out.NumRows())
		}
		sLabel, pLabel, oLabel := s.components()
		return s.Idx.SizeEstimate(sLabel, pLabel, oLabel)
	})
}

func (s *IndexScan) GetCostEstimate() uint64 {
	return s.Memo.Cost(func() uint64 { return s.GetSizeEstimate() })
}

func (s *IndexScan) KnownEmptyResult() bool {
	return s.Memo.KnownEmpty(func() bool { return s.GetSizeEstimate() == 0 })
}

func (s *IndexScan) GetMultiplicity(col int) float64 {
	key := ""
	if len(s.BoundLabels) > 0 {
		key = s.BoundLabels[0]
	}
	var mults []float64
	switch s.Perm {
	case PSO:
		mults = s.Idx.GetPSOMultiplicities(key)
	case POS:
		mults = s.Idx.GetPOSMultiplicities(key)
	case SPO:
		mults = s.Idx.GetSPOMultiplicities(key)
	case SOP:
		mults = s.Idx.GetSOPMultiplicities(key)
	case OSP:
		mults = s.Idx.GetOSPMultiplicities(key)
	case OPS:
		mults = s.Idx.GetOPSMultiplicities(key)
	}
	if col < 0 || col >= len(mults) {
		return 1
	}
	return mults[col]
}

func (s *IndexScan) AsString(indent int) string {
	return fmt.Sprintf("%*sSCAN %s bound=[%s]", indent, "", s.Perm, strings.Join(s.BoundLabels, ","))
}

func (s *IndexScan) GetDescriptor() string {
	return fmt.Sprintf("IndexScan %s(%s)", s.Perm, strings.Join(s.BoundLabels, ","))
}

func (s *IndexScan) GetChildren() []*QueryExecutionTree { return nil }

func (s *IndexScan) doScan(ctx context.Context, out *idtable.Dynamic) error {
	var k1, k2 *index.Id
	resolve := func(label string) (*index.Id, error) {
		id, ok := s.Idx.GetID(label)
		if !ok {
			return nil, qerrors.Badf("IndexScan.ComputeResult", "unknown vocabulary entry %q", label)
		}
		return &id, nil
	}
	if len(s.BoundLabels) > 0 {
		id, err := resolve(s.BoundLabels[0])
		if err != nil {
			return err
		}
		k1 = id
	}
	if len(s.BoundLabels) > 1 {
		id, err := resolve(s.BoundLabels[1])
		if err != nil {
			return err
		}
		k2 = id
	}
	switch s.Perm {
	case PSO:
		return s.Idx.ScanPSO(ctx, k1, k2, out)
	case POS:
		return s.Idx.ScanPOS(ctx, k1, k2, out)
	case SPO:
		return s.Idx.ScanSPO(ctx, k1, k2, out)
	case SOP:
		return s.Idx.ScanSOP(ctx, k1, k2, out)
	case OSP:
		return s.Idx.ScanOSP(ctx, k1, k2, out)
	default: // OPS
		return s.Idx.ScanOPS(ctx, k1, k2, out)
	}
}

// ComputeResult populates out from the underlying permutation scan.
// Every output cell is ResultType KB.
func (s *IndexScan) ComputeResult(ctx context.Context, out *resulttable.ResultTable) error {
	width := s.GetResultWidth()
	out.NumCols = width
	out.Data = idtable.NewDynamic(width)
	out.ResultTypes = make([]resulttable.ResultType, width)
	for i := range out.ResultTypes {
		out.ResultTypes[i] = resulttable.KB
	}
	out.SortedBy = s.ResultSortedOn()

	if err := s.doScan(ctx, out.Data); err != nil {
		return err
	}
	return nil
}
