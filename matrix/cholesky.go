// SPDX-License-Identifier: MIT

// Package matrix - symmetric positive definite solve backed by gonum.
//
// Ridge and penalized normal equations are SPD for every α > 0 even when the
// unpenalized Gram matrix is singular. Their smallest pivots scale with α, so
// a relative pivot tolerance (LUFactor) would reject a tiny but valid α; the
// Cholesky factorization only fails when the matrix is not positive definite
// in floating point.

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const opSPD = "SolveSPD"

// SolveSPD solves a·x = b for a symmetric positive definite a.
//
// Implementation:
//   - Stage 1: ValidateSystem(a, b); reject non-finite inputs.
//   - Stage 2: copy the upper triangle into a gonum SymDense and factorize
//     with mat.Cholesky.
//   - Stage 3: solve with the factors; a gonum mat.Condition warning keeps the
//     solution unless it is non-finite.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrNaNInf.
//   - ErrSingular: a is not numerically positive definite, or the solution
//     is not finite.
//
// Complexity:
//   - Time O(n^3/3), Space O(n^2).
func SolveSPD(a Matrix, b []float64) ([]float64, error) {
	if err := ValidateSystem(a, b); err != nil {
		return nil, matrixErrorf(opSPD, err)
	}
	if err := ValidateFinite(b); err != nil {
		return nil, matrixErrorf(opSPD, err)
	}
	am, err := toGonum(a)
	if err != nil {
		return nil, matrixErrorf(opSPD, err)
	}
	n := a.Rows()
	raw := am.RawMatrix().Data
	for _, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, matrixErrorf(opSPD, ErrNaNInf)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(mat.NewSymDense(n, raw)); !ok {
		return nil, matrixErrorf(opSPD, fmt.Errorf("not positive definite: %w", ErrSingular))
	}
	var x mat.VecDense
	if err = chol.SolveVecTo(&x, mat.NewVecDense(n, append([]float64(nil), b...))); err != nil {
		var cond mat.Condition
		if !asCondition(err, &cond) {
			return nil, matrixErrorf(opSPD, err)
		}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = x.AtVec(i)
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return nil, matrixErrorf(opSPD, fmt.Errorf("non-finite solution: %w", ErrSingular))
		}
	}

	return out, nil
}
