// SPDX-License-Identifier: MIT
// Package: lvspline/bspline
//
// errors.go - sentinel errors for building and evaluating splines.
//
// Error policy:
//   • Only sentinel variables are exposed; callers use errors.Is(err, ErrX).
//   • Context is attached with splineErrorf ("Builder.Alpha: ...: %w").
//   • Errors from matrix/datatable are joined, not replaced, so both the
//     bspline sentinel and the lower-level cause remain matchable.
//   • Nothing panics on user input; option constructors route through the
//     error-returning setters instead.

package bspline

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig indicates a rejected option value: negative alpha,
	// degree outside [0,5], a vector of the wrong length, an unknown policy,
	// or a basis count too small for the degree.
	ErrInvalidConfig = errors.New("bspline: invalid configuration")

	// ErrInsufficientData indicates too few distinct sample values in some
	// dimension to place a clamped knot vector of the requested shape.
	ErrInsufficientData = errors.New("bspline: insufficient data")

	// ErrRankDeficient indicates a least-squares system without a unique solution.
	ErrRankDeficient = errors.New("bspline: rank deficient system")

	// ErrOutOfDomain indicates an evaluation point outside the knot span.
	ErrOutOfDomain = errors.New("bspline: point outside domain")

	// ErrDimensionMismatch indicates a point or vector with the wrong length.
	ErrDimensionMismatch = errors.New("bspline: dimension mismatch")
)

// splineErrorf wraps err with the method tag: "<method>: <err>".
func splineErrorf(method string, err error) error {
	return fmt.Errorf("%s: %w", method, err)
}

// joinCause tags cause with sentinel, keeping both matchable by errors.Is.
func joinCause(sentinel, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}
