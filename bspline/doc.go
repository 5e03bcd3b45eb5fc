// SPDX-License-Identifier: MIT

// Package bspline fits and evaluates tensor-product B-spline surrogates.
//
// A Builder turns a datatable.Table of scattered samples into an immutable
// BSpline in four steps:
//
//  1. Knots. For each input variable a clamped knot vector is placed from the
//     distinct sample values (AsSampled, Equidistant or Experimental spacing).
//  2. Design matrix. The tensor-product basis is evaluated at every sample into
//     a sparse matrix Φ (one row per sample, one column per coefficient, last
//     variable varying fastest).
//  3. Coefficients. The normal equations are solved with no smoothing (OLS),
//     ridge regularization (+αI) or a P-spline penalty (+αDᵗD, D the
//     second-order difference operator over the coefficient grid).
//  4. Result. Degrees, knot vectors and coefficients form the BSpline.
//
// Usage:
//
//	b, err := bspline.NewBuilder(table,
//		bspline.WithDegree(3),
//		bspline.WithSmoothing(bspline.PSpline),
//		bspline.WithAlpha(0.1),
//	)
//	if err != nil { ... }
//	s, err := b.Build()
//	y, err := s.Eval([]float64{0.5, 1.2})
//
// Setters validate immediately and report ErrInvalidConfig; Build reports
// ErrInvalidConfig, ErrInsufficientData or ErrRankDeficient and never returns
// a partial spline. Use errors.Is to branch.
package bspline
