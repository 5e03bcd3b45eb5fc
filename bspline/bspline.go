// SPDX-License-Identifier: MIT
// Package: lvspline/bspline
//
// bspline.go - BSpline: an immutable tensor-product B-spline value.

package bspline

import (
	"fmt"
	"math"
)

// BSpline is a tensor-product B-spline f(x) = Σ_j c_j B_j(x).
// It is immutable; every accessor returns a copy. Safe for concurrent use.
//
// Only New and Builder.Build produce usable values. The evaluation methods of
// a zero BSpline fail with ErrInvalidConfig and its accessors return zero values.
type BSpline struct {
	basis  *tensorBasis
	coeffs []float64
}

// errEmpty is returned by evaluations of a BSpline that has no basis.
var errEmpty = fmt.Errorf("zero-value BSpline: %w", ErrInvalidConfig)

func (s *BSpline) empty() bool { return s == nil || s.basis == nil }

// New validates and assembles a spline from its parts. The inputs are copied.
//
// Errors:
//   - ErrDimensionMismatch: len(degrees) != len(knots), or len(coeffs) != Π m_k.
//   - ErrInvalidConfig: a degree outside [0, MaxDegree], a knot vector that is not
//     clamped for its degree, or a non-finite coefficient.
func New(degrees []int, knots [][]float64, coeffs []float64) (*BSpline, error) {
	tb, err := newTensorBasis(degrees, knots)
	if err != nil {
		return nil, splineErrorf("New", err)
	}
	if len(coeffs) != tb.numCols {
		return nil, splineErrorf("New", fmt.Errorf("%d coefficients, want %d: %w", len(coeffs), tb.numCols, ErrDimensionMismatch))
	}
	for i, c := range coeffs {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, splineErrorf("New", fmt.Errorf("coefficient %d: %w", i, ErrInvalidConfig))
		}
	}

	return &BSpline{basis: tb, coeffs: append([]float64(nil), coeffs...)}, nil
}

// Eval returns f(x).
//
// Errors: ErrDimensionMismatch (len(x) != NumVariables), ErrOutOfDomain.
func (s *BSpline) Eval(x []float64) (float64, error) {
	if s.empty() {
		return 0, splineErrorf("BSpline.Eval", errEmpty)
	}
	cols, vals, err := s.basis.row(x, nil, nil)
	if err != nil {
		return 0, splineErrorf("BSpline.Eval", err)
	}
	var y float64
	for k, j := range cols {
		y += vals[k] * s.coeffs[j]
	}

	return y, nil
}

// EvalAll evaluates every point; the first failing point aborts.
func (s *BSpline) EvalAll(xs [][]float64) ([]float64, error) {
	if s.empty() {
		return nil, splineErrorf("BSpline.EvalAll", errEmpty)
	}
	out := make([]float64, len(xs))
	var cols []int
	var vals []float64
	var err error
	for i, x := range xs {
		if cols, vals, err = s.basis.row(x, cols[:0], vals[:0]); err != nil {
			return nil, splineErrorf("BSpline.EvalAll", fmt.Errorf("point %d: %w", i, err))
		}
		for k, j := range cols {
			out[i] += vals[k] * s.coeffs[j]
		}
	}

	return out, nil
}

// EvalJacobian returns the gradient ∂f/∂x_k at x.
func (s *BSpline) EvalJacobian(x []float64) ([]float64, error) {
	if s.empty() {
		return nil, splineErrorf("BSpline.EvalJacobian", errEmpty)
	}
	g, err := s.basis.gradient(x, s.coeffs)
	if err != nil {
		return nil, splineErrorf("BSpline.EvalJacobian", err)
	}

	return g, nil
}

// EvalBasis returns the non-zero tensor-product basis values at x as a sparse
// row: strictly increasing column indices and their values.
func (s *BSpline) EvalBasis(x []float64) ([]int, []float64, error) {
	if s.empty() {
		return nil, nil, splineErrorf("BSpline.EvalBasis", errEmpty)
	}
	cols, vals, err := s.basis.row(x, nil, nil)
	if err != nil {
		return nil, nil, splineErrorf("BSpline.EvalBasis", err)
	}

	return cols, vals, nil
}

// NumVariables returns the input dimensionality d.
func (s *BSpline) NumVariables() int {
	if s.empty() {
		return 0
	}

	return s.basis.dims()
}

// NumCoefficients returns Π m_k.
func (s *BSpline) NumCoefficients() int {
	if s == nil {
		return 0
	}

	return len(s.coeffs)
}

// Degrees returns a copy of the per-dimension degrees.
func (s *BSpline) Degrees() []int {
	if s.empty() {
		return nil
	}

	return append([]int(nil), s.basis.degrees...)
}

// NumBasisFunctions returns a copy of the per-dimension basis counts.
func (s *BSpline) NumBasisFunctions() []int {
	if s.empty() {
		return nil
	}

	return append([]int(nil), s.basis.numBasis...)
}

// Coefficients returns a copy of the coefficient vector.
func (s *BSpline) Coefficients() []float64 {
	if s == nil {
		return nil
	}

	return append([]float64(nil), s.coeffs...)
}

// KnotVectors returns a deep copy of the knot vectors.
func (s *BSpline) KnotVectors() [][]float64 {
	if s.empty() {
		return nil
	}
	out := make([][]float64, len(s.basis.knots))
	for k, kv := range s.basis.knots {
		out[k] = append([]float64(nil), kv...)
	}

	return out
}

// DomainLowerBound returns the lower corner of the domain.
func (s *BSpline) DomainLowerBound() []float64 {
	if s.empty() {
		return nil
	}
	out := make([]float64, s.basis.dims())
	for k := range out {
		out[k] = s.basis.lower(k)
	}

	return out
}

// DomainUpperBound returns the upper corner of the domain.
func (s *BSpline) DomainUpperBound() []float64 {
	if s.empty() {
		return nil
	}
	out := make([]float64, s.basis.dims())
	for k := range out {
		out[k] = s.basis.upper(k)
	}

	return out
}

// InDomain reports whether x can be evaluated.
func (s *BSpline) InDomain(x []float64) bool { return !s.empty() && s.basis.checkPoint(x) == nil }
