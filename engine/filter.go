package engine

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/wbrown/sparqlcore/idtable"
	"github.com/wbrown/sparqlcore/index"
	"github.com/wbrown/sparqlcore/qerrors"
	"github.com/wbrown/sparqlcore/resulttable"
)

// Comparator names a Filter's predicate kind.
type Comparator int

const (
	EQ Comparator = iota
	NE
	LT
	LE
	GT
	GE
	LangMatches
	Regex
	Prefix
)

func (c Comparator) String() string {
	return [...]string{"EQ", "NE", "LT", "LE", "GT", "GE", "LANG_MATCHES", "REGEX", "PREFIX"}[c]
}

// Filter applies a single predicate to one column of its child's
// result, row by row, or via a binary-search fast path when the child
// reports the filtered column as its leading sort key.
type Filter struct {
	Memo

	Child     *QueryExecutionTree
	Idx       index.Index
	Col       int
	Cmp       Comparator
	Literal   string // the right-hand side, as the original source text
	textLimit int
}

var _ Operation = (*Filter)(nil)

func NewFilter(idx index.Index, child *QueryExecutionTree, col int, cmp Comparator, literal string) *Filter {
	return &Filter{Idx: idx, Child: child, Col: col, Cmp: cmp, Literal: literal}
}

func (f *Filter) GetResultWidth() int { return f.Child.Op.GetResultWidth() }

// ResultSortedOn is unchanged from the child: filtering removes rows
// but preserves relative order.
func (f *Filter) ResultSortedOn() []int { return f.Child.Op.ResultSortedOn() }

func (f *Filter) GetVariableColumns() map[string]int { return f.Child.VariableColumns }

func (f *Filter) SetTextLimit(n int) {
	f.textLimit = n
	f.Child.SetTextLimit(n)
	f.Memo.Reset()
}

// GetSizeEstimate applies a fixed 50% selectivity heuristic to the
// child's estimate for EQ/range comparators (the teacher's planner has
// no column-value histograms to do better with), except for EQ against
// a column the index can report a per-value multiplicity for, where
// the multiplicity is a tighter estimate.
func (f *Filter) GetSizeEstimate() uint64 {
	return f.Memo.Size(func() uint64 {
		childSize := f.Child.Op.GetSizeEstimate()
		if f.Cmp == EQ {
			mult := f.Child.Op.GetMultiplicity(f.Col)
			if mult > 0 && mult < float64(childSize) {
				return uint64(mult)
			}
		}
		return childSize / 2
	})
}

func (f *Filter) GetCostEstimate() uint64 {
	return f.Memo.Cost(func() uint64 {
		return f.Child.Op.GetCostEstimate() + f.Child.Op.GetSizeEstimate()
	})
}

func (f *Filter) KnownEmptyResult() bool {
	return f.Memo.KnownEmpty(func() bool {
		return f.Child.Op.KnownEmptyResult() || f.GetSizeEstimate() == 0
	})
}

func (f *Filter) GetMultiplicity(col int) float64 { return f.Child.Op.GetMultiplicity(col) }

func (f *Filter) AsString(indent int) string {
	return fmt.Sprintf("%*sFILTER col%d %s %q\n%s", indent, "", f.Col, f.Cmp, f.Literal, f.Child.Op.AsString(indent+2))
}

func (f *Filter) GetDescriptor() string {
	return fmt.Sprintf("Filter(col%d %s %q)", f.Col, f.Cmp, f.Literal)
}

func (f *Filter) GetChildren() []*QueryExecutionTree { return []*QueryExecutionTree{f.Child} }

// resolveLiteral converts f.Literal to an Id comparable against the
// filtered column's values, using the ResultType of that column to
// decide how. KB columns go through vocabulary resolution; VERBATIM
// columns parse the literal as an unsigned integer. A KB literal that
// is not in the vocabulary resolves, for EQ and NE, to an id no row
// carries (so EQ keeps nothing and NE keeps everything); for the range
// comparators it is a BadQuery error.
func (f *Filter) resolveLiteral(rt resulttable.ResultType) (idtable.Id, error) {
	switch rt {
	case resulttable.KB:
		id, ok := f.Idx.GetID(f.Literal)
		if !ok {
			if f.Cmp == EQ || f.Cmp == NE {
				return idtable.IDNoValue - 1, nil
			}
			return 0, qerrors.Badf("Filter.resolveLiteral", "unknown vocabulary entry %q", f.Literal)
		}
		return id, nil
	default:
		var v uint64
		if _, err := fmt.Sscanf(f.Literal, "%d", &v); err != nil {
			return 0, qerrors.Badf("Filter.resolveLiteral", "cannot parse %q as a verbatim value: %v", f.Literal, err)
		}
		return v, nil
	}
}

func (f *Filter) matches(v idtable.Id, bound idtable.Id) bool {
	switch f.Cmp {
	case EQ:
		return v == bound
	case NE:
		return v != bound
	case LT:
		return v < bound
	case LE:
		return v <= bound
	case GT:
		return v > bound
	case GE:
		return v >= bound
	default:
		return false
	}
}

// ComputeResult runs the child, then applies the predicate. Range and
// equality comparators use a binary-search fast path when the child's
// result is sorted on the filtered column; LANG_MATCHES, REGEX, and
// PREFIX always scan row by row since they operate on resolved
// strings, not the raw ordering.
func (f *Filter) ComputeResult(ctx context.Context, out *resulttable.ResultTable) error {
	childResult, err := f.Child.GetResult(ctx)
	if err != nil {
		return err
	}

	out.NumCols = childResult.NumCols
	out.ResultTypes = childResult.ResultTypes
	out.LocalVocab = childResult.LocalVocab
	out.SortedBy = f.ResultSortedOn()
	out.Data = idtable.NewDynamic(childResult.NumCols)

	switch f.Cmp {
	case LangMatches, Regex, Prefix:
		return f.scanPredicate(childResult, out)
	default:
		colType := childResult.GetResultType(f.Col)
		bound, err := f.resolveLiteral(colType)
		if err != nil {
			return err
		}
		if f.childSortedOnFilterColumn(childResult) {
			return f.binarySearchRange(childResult, bound, out)
		}
		return f.scanRange(childResult, bound, out)
	}
}

func (f *Filter) childSortedOnFilterColumn(rt *resulttable.ResultTable) bool {
	return len(rt.SortedBy) > 0 && rt.SortedBy[0] == f.Col
}

func (f *Filter) scanRange(rt *resulttable.ResultTable, bound idtable.Id, out *resulttable.ResultTable) error {
	for r := 0; r < rt.Data.NumRows(); r++ {
		row := rt.Data.Row(r)
		if f.matches(row[f.Col], bound) {
			if err := out.Data.PushBack(row); err != nil {
				return err
			}
		}
	}
	return nil
}

// binarySearchRange exploits the child's sortedness on f.Col: EQ/LE/LT
// bound the scan to a contiguous slice found via sort.Search rather
// than testing every row.
func (f *Filter) binarySearchRange(rt *resulttable.ResultTable, bound idtable.Id, out *resulttable.ResultTable) error {
	if (f.Cmp == LT && bound == 0) || (f.Cmp == GT && bound == idtable.IDNoValue) {
		return nil // no Id lies below 0 or above the maximum Id
	}
	n := rt.Data.NumRows()
	lo := sort.Search(n, func(i int) bool { return rt.Data.At(i, f.Col) >= f.lowerBound(bound) })
	hi := sort.Search(n, func(i int) bool { return rt.Data.At(i, f.Col) > f.upperBound(bound) })
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	for r := lo; r < hi && r < n; r++ {
		row := rt.Data.Row(r)
		if f.Cmp == NE {
			continue // NE never benefits from the sorted fast path; handled by the full scan below
		}
		if err := out.Data.PushBack(row); err != nil {
			return err
		}
	}
	if f.Cmp == NE {
		return f.scanRange(rt, bound, out)
	}
	return nil
}

func (f *Filter) lowerBound(bound idtable.Id) idtable.Id {
	switch f.Cmp {
	case GT:
		return bound + 1
	case GE, EQ:
		return bound
	default: // LT, LE
		return 0
	}
}

func (f *Filter) upperBound(bound idtable.Id) idtable.Id {
	switch f.Cmp {
	case LT:
		if bound == 0 {
			return 0
		}
		return bound - 1
	case LE, EQ:
		return bound
	default: // GT, GE
		return idtable.IDNoValue
	}
}

// scanPredicate handles the string-valued comparators. PREFIX requires
// a KB column: matching a prefix against a VERBATIM or FLOAT column is
// meaningless, so it is rejected explicitly rather than silently
// falling through to REGEX as the original incidentally does.
func (f *Filter) scanPredicate(rt *resulttable.ResultTable, out *resulttable.ResultTable) error {
	colType := rt.GetResultType(f.Col)
	if f.Cmp == Prefix && colType != resulttable.KB {
		return qerrors.NotImplementedf("Filter.scanPredicate", "PREFIX filter on non-KB column (type %s)", colType)
	}

	var re *regexp.Regexp
	if f.Cmp == Regex {
		compiled, err := regexp.Compile(f.Literal)
		if err != nil {
			return qerrors.Badf("Filter.scanPredicate", "invalid REGEX pattern %q: %v", f.Literal, err)
		}
		re = compiled
	}

	for r := 0; r < rt.Data.NumRows(); r++ {
		row := rt.Data.Row(r)
		s, ok := f.resolveRowString(rt, colType, row[f.Col])
		var keep bool
		if !ok {
			// No string for this entity: LANG_MATCHES and REGEX let the
			// row pass rather than drop it, matching the original's
			// `if (!entity) { return true; }`. PREFIX has no such
			// pass-through: a KB id with no vocabulary string is dropped.
			keep = f.Cmp == LangMatches || f.Cmp == Regex
		} else {
			switch f.Cmp {
			case LangMatches:
				keep = strings.HasSuffix(s, f.Literal)
			case Regex:
				keep = re.MatchString(s)
			case Prefix:
				keep = strings.HasPrefix(s, f.Literal)
			}
		}
		if keep {
			if err := out.Data.PushBack(row); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *Filter) resolveRowString(rt *resulttable.ResultTable, colType resulttable.ResultType, id idtable.Id) (string, bool) {
	switch colType {
	case resulttable.LOCAL_VOCAB:
		return rt.IDToOptionalString(id)
	case resulttable.KB:
		return f.Idx.IDToOptionalString(id)
	default:
		return "", false
	}
}
