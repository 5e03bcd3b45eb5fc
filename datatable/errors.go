// SPDX-License-Identifier: MIT
// Package: lvspline/datatable
//
// errors.go - sentinel errors for the sample table.
//
// Error policy:
//   • Only sentinel variables are exposed; callers branch with errors.Is.
//   • Methods attach context with tableErrorf ("Method: ...: %w").
//   • Nothing in this package panics on user input.

package datatable

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDimensions is returned when a table is requested with a negative
	// number of input variables.
	ErrInvalidDimensions = errors.New("datatable: invalid number of variables")

	// ErrDimensionMismatch indicates a sample whose input vector length differs
	// from the table dimensionality.
	ErrDimensionMismatch = errors.New("datatable: dimension mismatch")

	// ErrNaNInf indicates a NaN or ±Inf in a sample input or output.
	ErrNaNInf = errors.New("datatable: NaN or Inf value")

	// ErrDuplicateSample indicates a second sample at an input already present,
	// while duplicates are disallowed (the default).
	ErrDuplicateSample = errors.New("datatable: duplicate sample input")

	// ErrOutOfRange indicates a sample or column index outside the table.
	ErrOutOfRange = errors.New("datatable: index out of range")

	// ErrEmptyTable indicates an operation that needs at least one sample.
	ErrEmptyTable = errors.New("datatable: table is empty")

	// ErrParse indicates a malformed CSV record.
	ErrParse = errors.New("datatable: parse error")
)

// tableErrorf wraps err with the method tag: "<method>: <err>".
func tableErrorf(method string, err error) error {
	return fmt.Errorf("%s: %w", method, err)
}
