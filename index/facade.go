package index

import (
	"context"

	"github.com/wbrown/sparqlcore/idtable"
)

// Index is the narrow, consumed-only interface the engine talks to.
// Everything behind it (vocabulary construction, the parser, the
// planner) is out of scope for this module; a concrete Index is
// supplied by the embedding application.
type Index interface {
	// GetID resolves a literal/IRI string to its vocabulary id.
	GetID(s string) (Id, bool)
	// GetValueIDForGE/GT/LT/LE resolve a literal to the boundary id
	// used by Filter's binary-search fast path for range comparators.
	GetValueIDForGE(s string) Id
	GetValueIDForGT(s string) Id
	GetValueIDForLT(s string) Id
	GetValueIDForLE(s string) Id
	// IDToOptionalString resolves a KB id back to its string, used by
	// LANG_MATCHES/REGEX against KB columns.
	IDToOptionalString(id Id) (string, bool)

	ScanPSO(ctx context.Context, p, s *Id, out *idtable.Dynamic) error
	ScanPOS(ctx context.Context, p, o *Id, out *idtable.Dynamic) error
	ScanSPO(ctx context.Context, s, p *Id, out *idtable.Dynamic) error
	ScanSOP(ctx context.Context, s, o *Id, out *idtable.Dynamic) error
	ScanOSP(ctx context.Context, o, s *Id, out *idtable.Dynamic) error
	ScanOPS(ctx context.Context, o, p *Id, out *idtable.Dynamic) error

	// SizeEstimate returns a statistical row-count estimate for a scan
	// keyed by whichever of s, p, o is bound (empty string = wildcard).
	SizeEstimate(s, p, o string) uint64

	GetPSOMultiplicities(key string) []float64
	GetPOSMultiplicities(key string) []float64
	GetSPOMultiplicities(key string) []float64
	GetSOPMultiplicities(key string) []float64
	GetOSPMultiplicities(key string) []float64
	GetOPSMultiplicities(key string) []float64
}
