// SPDX-License-Identifier: MIT

// Package matrix - rank-aware solve backed by gonum.
//
// The pivoted LU in impl_linear_algebra.go answers "is there a non-zero pivot";
// it cannot tell a well-posed system from one that is merely not exactly
// singular. SolveRankAware measures the numerical rank through the singular
// values first and refuses rank-deficient systems with ErrRankDeficient.

package matrix

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const opRankAware = "SolveRankAware"

// RankInfo describes the spectrum of a system solved by SolveRankAware.
type RankInfo struct {
	Rank      int     // number of singular values above tol·σmax
	Size      int     // order of the system
	Condition float64 // σmax/σmin; +Inf when σmin == 0
}

// FullRank reports whether Rank == Size.
func (r RankInfo) FullRank() bool { return r.Rank == r.Size }

// toGonum copies a Matrix into a gonum *mat.Dense.
func toGonum(a Matrix) (*mat.Dense, error) {
	rows, cols := a.Rows(), a.Cols()
	if d, ok := a.(*Dense); ok {
		buf := make([]float64, len(d.data))
		copy(buf, d.data)
		return mat.NewDense(rows, cols, buf), nil
	}
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v, err := a.At(i, j)
			if err != nil {
				return nil, fmt.Errorf("At(%d,%d): %w", i, j, err)
			}
			out.Set(i, j, v)
		}
	}

	return out, nil
}

// SolveRankAware solves the square system a·x = b after checking its
// numerical rank.
//
// Implementation:
//   - Stage 1: ValidateSystem(a, b); reject non-finite inputs.
//   - Stage 2: thin SVD of a (gonum mat.SVD); rank = #{σ_i > tol·σ_0}.
//   - Stage 3: rank < n → ErrRankDeficient; otherwise solve with gonum's
//     LU-based VecDense.SolveVec.
//
// Returns:
//   - x, RankInfo (always filled once the SVD succeeded), error.
//
// Errors:
//   - ErrNilMatrix, ErrDimensionMismatch, ErrNaNInf, ErrRankDeficient.
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
func SolveRankAware(a Matrix, b []float64, opts ...Option) ([]float64, RankInfo, error) {
	if err := ValidateSystem(a, b); err != nil {
		return nil, RankInfo{}, matrixErrorf(opRankAware, err)
	}
	o := gatherOptions(opts...)
	if err := ValidateFinite(b); err != nil {
		return nil, RankInfo{}, matrixErrorf(opRankAware, err)
	}

	am, err := toGonum(a)
	if err != nil {
		return nil, RankInfo{}, matrixErrorf(opRankAware, err)
	}
	n := a.Rows()
	for _, v := range am.RawMatrix().Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, RankInfo{}, matrixErrorf(opRankAware, ErrNaNInf)
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(am, mat.SVDNone); !ok {
		return nil, RankInfo{Size: n}, matrixErrorf(opRankAware, fmt.Errorf("svd did not converge: %w", ErrRankDeficient))
	}
	sv := svd.Values(nil)
	info := RankInfo{Size: n, Condition: math.Inf(1)}
	if len(sv) > 0 && sv[0] > 0 {
		cut := o.rankTol * sv[0]
		for _, s := range sv {
			if s > cut {
				info.Rank++
			}
		}
		if last := sv[len(sv)-1]; last > 0 {
			info.Condition = sv[0] / last
		}
	}
	if !info.FullRank() {
		return nil, info, matrixErrorf(opRankAware, fmt.Errorf("rank %d < %d: %w", info.Rank, n, ErrRankDeficient))
	}

	var x mat.VecDense
	if err = x.SolveVec(am, mat.NewVecDense(n, append([]float64(nil), b...))); err != nil {
		// gonum reports a near-singular LU as mat.Condition; the SVD already
		// accepted the rank, so keep the solution unless it is unusable.
		var cond mat.Condition
		if !asCondition(err, &cond) {
			return nil, info, matrixErrorf(opRankAware, err)
		}
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = x.AtVec(i)
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return nil, info, matrixErrorf(opRankAware, ErrRankDeficient)
		}
	}

	return out, info, nil
}

// asCondition reports whether err is a gonum mat.Condition warning.
func asCondition(err error, dst *mat.Condition) bool {
	c, ok := err.(mat.Condition)
	if ok {
		*dst = c
	}

	return ok
}
