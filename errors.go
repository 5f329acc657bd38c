package phtree

import (
	"github.com/pkg/errors"
)

// Sentinel errors for the fatal error kinds this engine recognizes. Not
// found is never one of these: it is signaled by a plain (zero, false)
// return, matching the rest of the Go standard library.
var (
	// ErrConcurrentModification is returned by iterator methods that
	// observe a tree modification counter different from the one they
	// captured at creation time.
	ErrConcurrentModification = errors.New("phtree: concurrent modification")

	// ErrDimensionMismatch is wrapped into a panic when a Key's length
	// does not match the Tree's configured dimension.
	ErrDimensionMismatch = errors.New("phtree: key dimension mismatch")

	// ErrInvariantViolation is wrapped into a panic whenever an
	// internal structural invariant (postLen/infixLen bounds, entry
	// count, non-root node arity) is found broken. Seeing this means
	// the engine itself has a bug, not the caller.
	ErrInvariantViolation = errors.New("phtree: invariant violation")
)

func checkDim(got, want int) {
	if got != want {
		panic(errors.Wrapf(ErrDimensionMismatch, "got %d dims, tree has %d", got, want))
	}
}

func invariant(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(errors.Wrapf(ErrInvariantViolation, format, args...))
	}
}
