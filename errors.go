package meshdist

import (
	"github.com/pkg/errors"
)

// The three §7 build-time error kinds. Queries are total and never return an
// error (§7, §8 invariant: empty mesh still returns a well-defined sentinel
// Result).

// InvalidInputError wraps a non-finite coordinate, a triangle with repeated
// indices, or an out-of-range index.
type InvalidInputError struct{ cause error }

func (e *InvalidInputError) Error() string { return e.cause.Error() }
func (e *InvalidInputError) Unwrap() error { return e.cause }

func newInvalidInputError(msg string) error {
	return &InvalidInputError{cause: errors.New(msg)}
}

// DegenerateGeometryError wraps a zero-area triangle or a zero-length edge.
type DegenerateGeometryError struct{ cause error }

func (e *DegenerateGeometryError) Error() string { return e.cause.Error() }
func (e *DegenerateGeometryError) Unwrap() error { return e.cause }

func newDegenerateGeometryError(msg string) error {
	return &DegenerateGeometryError{cause: errors.New(msg)}
}

// TessellationError wraps a failure reported by the external Delaunay/
// weighted-Delaunay engine (§1, §7) on the cube-augmented point set.
type TessellationError struct{ cause error }

func (e *TessellationError) Error() string { return e.cause.Error() }
func (e *TessellationError) Unwrap() error { return e.cause }

func newTessellationError(msg string, cause error) error {
	if cause != nil {
		return &TessellationError{cause: errors.Wrap(cause, msg)}
	}
	return &TessellationError{cause: errors.New(msg)}
}
