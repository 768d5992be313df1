// Package failure defines the kinds of error returned by the equilibrium engine.
//
// Errors are created by wrapping one of the sentinels below with
// github.com/pkg/errors, so the kind of any returned error can be
// recovered with errors.Is (or Is in this package).
package failure

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

var (
	// ErrInvariantViolation indicates a programming error, such as removing
	// the last active strategy of a player. It is never recovered.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrArithmetic indicates an arithmetic error in the numeric field,
	// e.g. division by zero. It is fatal to the current operation only.
	ErrArithmetic = errors.New("arithmetic error")
	// ErrNumericalFailure indicates an LP that did not converge or a
	// refactorization that disagreed with the incremental updates.
	// Callers recover by treating the query conservatively.
	ErrNumericalFailure = errors.New("numerical failure")
	// ErrDidNotTerminate indicates a pivot or recursion bound was exceeded.
	// It is not an error from the caller's perspective: the branch
	// simply yields no equilibria.
	ErrDidNotTerminate = errors.New("did not terminate")
	// ErrCanceled is returned by a status sink when the caller has
	// requested cancellation.
	ErrCanceled = errors.New("canceled")
)

// Is reports whether err is of the given kind.
func Is(err, kind error) bool {
	return stderrors.Is(err, kind)
}

// Invariantf returns a new ErrInvariantViolation with the given context.
func Invariantf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvariantViolation, format, args...)
}

// Numericalf returns a new ErrNumericalFailure with the given context.
func Numericalf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrNumericalFailure, format, args...)
}

// DidNotTerminatef returns a new ErrDidNotTerminate with the given context.
func DidNotTerminatef(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDidNotTerminate, format, args...)
}
