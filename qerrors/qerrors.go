// Package qerrors defines the tagged-sum error kinds shared by every
// package in the query engine, so a caller can branch on Kind without
// string-matching error messages.
package qerrors

import "fmt"

// Kind tags the class of failure so callers can decide whether a query
// should be retried, reported to the user, or treated as a bug.
type Kind int

const (
	// BadQuery is a user-visible parse/semantic error.
	BadQuery Kind = iota
	// NotYetImplemented marks a path explicitly unsupported by this engine.
	NotYetImplemented
	// AssertFailed marks an internal invariant violation; unrecoverable.
	AssertFailed
	// CheckFailed marks a failed runtime check short of a full assertion.
	CheckFailed
	// IO marks a file access failure on the on-disk index.
	IO
	// OutOfMemory marks an allocation failure during IdTable growth.
	OutOfMemory
)

func (k Kind) String() string {
	switch k {
	case BadQuery:
		return "BadQuery"
	case NotYetImplemented:
		return "NotYetImplemented"
	case AssertFailed:
		return "AssertFailed"
	case CheckFailed:
		return "CheckFailed"
	case IO:
		return "IO"
	case OutOfMemory:
		return "OutOfMemory"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type carried through the engine. Op names
// the component that raised it (e.g. "Filter.ComputeResult").
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Op, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, qerrors.KindBadQuery) style matching via a
// sentinel wrapper, by comparing Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

func wrapf(kind Kind, op string, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...), Err: err}
}

// Badf builds a BadQuery error.
func Badf(op, format string, args ...interface{}) *Error { return newf(BadQuery, op, format, args...) }

// NotImplementedf builds a NotYetImplemented error.
func NotImplementedf(op, format string, args ...interface{}) *Error {
	return newf(NotYetImplemented, op, format, args...)
}

// Assertf builds an AssertFailed error.
func Assertf(op, format string, args ...interface{}) *Error {
	return newf(AssertFailed, op, format, args...)
}

// Checkf builds a CheckFailed error.
func Checkf(op, format string, args ...interface{}) *Error {
	return newf(CheckFailed, op, format, args...)
}

// IOErrorf builds an IO error wrapping the underlying cause.
func IOErrorf(op string, err error, format string, args ...interface{}) *Error {
	return wrapf(IO, op, err, format, args...)
}

// OOMf builds an OutOfMemory error.
func OOMf(op, format string, args ...interface{}) *Error {
	return newf(OutOfMemory, op, format, args...)
}

// Sentinel kind-only values usable with errors.Is, e.g.
// errors.Is(err, qerrors.KindBadQuery).
var (
	KindBadQuery          = &Error{Kind: BadQuery}
	KindNotYetImplemented = &Error{Kind: NotYetImplemented}
	KindAssertFailed      = &Error{Kind: AssertFailed}
	KindCheckFailed        = &Error{Kind: CheckFailed}
	KindIO                = &Error{Kind: IO}
	KindOutOfMemory       = &Error{Kind: OutOfMemory}
)
