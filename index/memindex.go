package index

import (
	"context"
	"sort"
	"strconv"

	"github.com/wbrown/sparqlcore/idtable"
)

// triple is one (s,p,o) fact.
type triple [3]Id

// MemIndex is an in-memory Index, grounded in the same index-selection
// idea as a multi-permutation triple store: rather than one table
// scanned linearly per query, every permutation is kept pre-sorted so
// a bound prefix can be located by binary search (the same shape as
// choosing EAVT vs AVET by which field is bound, generalized to six
// fixed triple orderings instead of one flexible one). Used by the
// engine's tests and as a reference Index for small embedded
// deployments; a real deployment backs Index with the on-disk
// permutation files described in indexmetadata.go instead.
type MemIndex struct {
	vocab    []string
	ids      map[string]Id
	triples  []triple
	pso, pos, spo, sop, osp, ops []triple
}

var _ Index = (*MemIndex)(nil)

// NewMemIndex creates an empty index.
func NewMemIndex() *MemIndex {
	return &MemIndex{ids: make(map[string]Id)}
}

// Intern assigns (or returns the existing) vocabulary id for s.
func (ix *MemIndex) Intern(s string) Id {
	if id, ok := ix.ids[s]; ok {
		return id
	}
	id := Id(len(ix.vocab))
	ix.vocab = append(ix.vocab, s)
	ix.ids[s] = id
	return id
}

// AddTriple records one fact by vocabulary id.
func (ix *MemIndex) AddTriple(s, p, o Id) {
	ix.triples = append(ix.triples, triple{s, p, o})
}

// Build sorts the six permutations. Must be called after the last
// AddTriple and before any Scan call.
func (ix *MemIndex) Build() {
	reorder := func(order func(t triple) triple) []triple {
		out := make([]triple, len(ix.triples))
		for i, t := range ix.triples {
			out[i] = order(t)
		}
		sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
		return out
	}
	ix.pso = reorder(func(t triple) triple { return triple{t[1], t[0], t[2]} })
	ix.pos = reorder(func(t triple) triple { return triple{t[1], t[2], t[0]} })
	ix.spo = reorder(func(t triple) triple { return triple{t[0], t[1], t[2]} })
	ix.sop = reorder(func(t triple) triple { return triple{t[0], t[2], t[1]} })
	ix.osp = reorder(func(t triple) triple { return triple{t[2], t[0], t[1]} })
	ix.ops = reorder(func(t triple) triple { return triple{t[2], t[1], t[0]} })
}

func less(a, b triple) bool {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func (ix *MemIndex) GetID(s string) (Id, bool) {
	id, ok := ix.ids[s]
	return id, ok
}

func (ix *MemIndex) IDToOptionalString(id Id) (string, bool) {
	if id < Id(len(ix.vocab)) {
		return ix.vocab[id], true
	}
	return "", false
}

// GetValueIDForGE and friends resolve a numeric-literal string to a
// boundary id by comparing against the interned vocabulary in
// lexicographic order of the underlying string, which is sufficient
// for a reference in-memory index (a real vocabulary pre-sorts XSD
// values into index-word form; see §4.6 of the specification).
func (ix *MemIndex) boundaryID(s string, pred func(string) bool) Id {
	best := idtable.IDNoValue
	for str, id := range ix.ids {
		if pred(str) && (best == idtable.IDNoValue || str < ix.vocab[best]) {
			best = id
		}
	}
	return best
}

func (ix *MemIndex) GetValueIDForGE(s string) Id { return ix.boundaryID(s, func(v string) bool { return v >= s }) }
func (ix *MemIndex) GetValueIDForGT(s string) Id { return ix.boundaryID(s, func(v string) bool { return v > s }) }
func (ix *MemIndex) GetValueIDForLT(s string) Id {
	best := idtable.IDNoValue
	for str, id := range ix.ids {
		if str < s && (best == idtable.IDNoValue || str > ix.vocab[best]) {
			best = id
		}
	}
	return best
}
func (ix *MemIndex) GetValueIDForLE(s string) Id {
	best := idtable.IDNoValue
	for str, id := range ix.ids {
		if str <= s && (best == idtable.IDNoValue || str > ix.vocab[best]) {
			best = id
		}
	}
	return best
}

// scanRange performs a binary-search range scan over a pre-sorted
// permutation slice on a (possibly empty) bound prefix, appending the
// free suffix columns of each match to out.
func scanRange(perm []triple, bound []Id, out *idtable.Dynamic) error {
	lo := sort.Search(len(perm), func(i int) bool { return !lessPrefix(perm[i], bound) })
	hi := sort.Search(len(perm), func(i int) bool { return greaterPrefix(perm[i], bound) })
	freeCols := 3 - len(bound)
	for i := lo; i < hi; i++ {
		row := make([]Id, freeCols)
		copy(row, perm[i][len(bound):])
		if err := out.PushBack(row); err != nil {
			return err
		}
	}
	return nil
}

func lessPrefix(t triple, bound []Id) bool {
	for i, b := range bound {
		if t[i] < b {
			return true
		}
		if t[i] > b {
			return false
		}
	}
	return false
}

func greaterPrefix(t triple, bound []Id) bool {
	for i, b := range bound {
		if t[i] > b {
			return true
		}
		if t[i] < b {
			return false
		}
	}
	return false
}

func boundKeys(keys ...*Id) []Id {
	out := make([]Id, 0, len(keys))
	for _, k := range keys {
		if k == nil {
			break
		}
		out = append(out, *k)
	}
	return out
}

func (ix *MemIndex) ScanPSO(_ context.Context, p, s *Id, out *idtable.Dynamic) error {
	return scanRange(ix.pso, boundKeys(p, s), out)
}
func (ix *MemIndex) ScanPOS(_ context.Context, p, o *Id, out *idtable.Dynamic) error {
	return scanRange(ix.pos, boundKeys(p, o), out)
}
func (ix *MemIndex) ScanSPO(_ context.Context, s, p *Id, out *idtable.Dynamic) error {
	return scanRange(ix.spo, boundKeys(s, p), out)
}
func (ix *MemIndex) ScanSOP(_ context.Context, s, o *Id, out *idtable.Dynamic) error {
	return scanRange(ix.sop, boundKeys(s, o), out)
}
func (ix *MemIndex) ScanOSP(_ context.Context, o, s *Id, out *idtable.Dynamic) error {
	return scanRange(ix.osp, boundKeys(o, s), out)
}
func (ix *MemIndex) ScanOPS(_ context.Context, o, p *Id, out *idtable.Dynamic) error {
	return scanRange(ix.ops, boundKeys(o, p), out)
}

// SizeEstimate is exact in the reference implementation: it counts
// the triples matching every bound label, which the specification
// explicitly allows for width-1 scans and treats as a fine baseline
// everywhere else for a small embedded index. A label that is not in
// the vocabulary is treated like an empty one (a wildcard).
func (ix *MemIndex) SizeEstimate(s, p, o string) uint64 {
	var sid, pid, oid *Id
	if s != "" {
		if id, ok := ix.GetID(s); ok {
			sid = &id
		}
	}
	if p != "" {
		if id, ok := ix.GetID(p); ok {
			pid = &id
		}
	}
	if o != "" {
		if id, ok := ix.GetID(o); ok {
			oid = &id
		}
	}
	var n uint64
	for _, t := range ix.triples {
		if (sid == nil || t[0] == *sid) && (pid == nil || t[1] == *pid) && (oid == nil || t[2] == *oid) {
			n++
		}
	}
	return n
}

func nonEmpty(vals ...string) int {
	n := 0
	for _, v := range vals {
		if v != "" {
			n++
		}
	}
	return n
}

// multiplicities computes rows/distinct for the first two free columns
// of perm when key (if non-empty) binds the leading column.
func (ix *MemIndex) multiplicities(perm []triple, key string) []float64 {
	var bound []Id
	if key != "" {
		if id, ok := ix.GetID(key); ok {
			bound = []Id{id}
		} else {
			return []float64{1, 1}
		}
	}
	lo := sort.Search(len(perm), func(i int) bool { return !lessPrefix(perm[i], bound) })
	hi := sort.Search(len(perm), func(i int) bool { return greaterPrefix(perm[i], bound) })
	n := hi - lo
	if n == 0 {
		return []float64{1, 1}
	}
	distinct := map[[2]Id]bool{}
	distinctCol2 := map[Id]bool{}
	for i := lo; i < hi; i++ {
		t := perm[i]
		distinct[[2]Id{t[len(bound)], 0}] = true
		distinctCol2[t[len(bound)+1]] = true
	}
	col1Mult := float64(n) / float64(len(distinct))
	col2Mult := float64(n) / float64(len(distinctCol2))
	return []float64{col1Mult, col2Mult}
}

func (ix *MemIndex) GetPSOMultiplicities(key string) []float64 { return ix.multiplicities(ix.pso, key) }
func (ix *MemIndex) GetPOSMultiplicities(key string) []float64 { return ix.multiplicities(ix.pos, key) }
func (ix *MemIndex) GetSPOMultiplicities(key string) []float64 { return ix.multiplicities(ix.spo, key) }
func (ix *MemIndex) GetSOPMultiplicities(key string) []float64 { return ix.multiplicities(ix.sop, key) }
func (ix *MemIndex) GetOSPMultiplicities(key string) []float64 { return ix.multiplicities(ix.osp, key) }
func (ix *MemIndex) GetOPSMultiplicities(key string) []float64 { return ix.multiplicities(ix.ops, key) }

// ParseVerbatim parses a VERBATIM literal; exported for Filter's
// literal-preconversion step.
func ParseVerbatim(s string) (Id, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	return Id(v), err
}
