// SPDX-License-Identifier: MIT
// Package: lvspline/bspline
//
// solver.go - coefficient solve for the three smoothing formulations.
//
//	None:           ΦᵗΦ c = Φᵗy
//	Regularization: (ΦᵗΦ + αI) c = Φᵗy
//	PSpline:        (ΦᵗΦ + αDᵗD) c = Φᵗy
//
// The right-hand side Φᵗy is formed once. α == 0, or a penalty without rows,
// takes the None path unchanged. The smoothed systems are solved by Cholesky,
// the plain one by a rank-checked SVD.

package bspline

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/katalvlaran/lvspline/matrix"
)

const opSolve = "SolveCoefficients"

// SolveCoefficients solves for the coefficient vector of a basis with
// per-dimension counts numBasis, given its design matrix phi and targets y.
//
// Errors:
//   - ErrInvalidConfig: unknown smoothing, negative or non-finite alpha, or a
//     phi whose column count differs from Π numBasis.
//   - ErrDimensionMismatch: len(y) != phi.Rows().
//   - ErrRankDeficient: the system has no unique solution.
func SolveCoefficients(phi *matrix.Sparse, y []float64, numBasis []int, smoothing Smoothing, alpha float64) ([]float64, error) {
	if phi == nil {
		return nil, splineErrorf(opSolve, fmt.Errorf("nil design matrix: %w", ErrInvalidConfig))
	}
	active := roaring.New()
	for j, used := range phi.ColumnsUsed() {
		if used {
			active.Add(uint32(j))
		}
	}
	res, err := solveCoefficients(solveRequest{
		phi:       phi,
		active:    active,
		y:         y,
		numBasis:  numBasis,
		smoothing: smoothing,
		alpha:     alpha,
	})
	if err != nil {
		return nil, err
	}

	return res.coeffs, nil
}

// solveRequest carries one solve's inputs.
type solveRequest struct {
	phi       *matrix.Sparse
	active    *roaring.Bitmap // columns of phi with a non-zero
	y         []float64
	numBasis  []int
	smoothing Smoothing
	alpha     float64
}

// solveResult reports the solution and which formulation produced it.
type solveResult struct {
	coeffs []float64
	method Smoothing // formulation actually used (None after α == 0 dispatch)
	rank   int       // numerical rank; only measured on the None path
}

func solveCoefficients(req solveRequest) (solveResult, error) {
	if !req.smoothing.valid() {
		return solveResult{}, splineErrorf(opSolve, fmt.Errorf("%v: %w", req.smoothing, ErrInvalidConfig))
	}
	if err := validateAlpha(req.alpha); err != nil {
		return solveResult{}, splineErrorf(opSolve, err)
	}
	cols := 1
	for _, m := range req.numBasis {
		cols *= m
	}
	if len(req.numBasis) == 0 || cols != req.phi.Cols() {
		return solveResult{}, splineErrorf(opSolve, fmt.Errorf("phi has %d columns, basis counts %v: %w", req.phi.Cols(), req.numBasis, ErrInvalidConfig))
	}
	if len(req.y) != req.phi.Rows() {
		return solveResult{}, splineErrorf(opSolve, fmt.Errorf("len(y)=%d, %d samples: %w", len(req.y), req.phi.Rows(), ErrDimensionMismatch))
	}

	gram, rhs, err := matrix.NormalEquations(req.phi, req.y)
	if err != nil {
		return solveResult{}, splineErrorf(opSolve, err)
	}

	switch {
	case req.smoothing == None || req.alpha == 0:
		return solveOLS(req, gram, rhs)

	case req.smoothing == Regularization:
		if err = matrix.AddDiagonalInPlace(gram, req.alpha); err != nil {
			return solveResult{}, splineErrorf(opSolve, err)
		}

	default: // PSpline
		D, err := SecondOrderDifferenceMatrix(req.numBasis)
		if err != nil {
			return solveResult{}, splineErrorf(opSolve, err)
		}
		if D == nil {
			return solveOLS(req, gram, rhs)
		}
		DtD, err := D.Gram()
		if err != nil {
			return solveResult{}, splineErrorf(opSolve, err)
		}
		if err = matrix.AddScaledInPlace(gram, req.alpha, DtD); err != nil {
			return solveResult{}, splineErrorf(opSolve, err)
		}
	}

	// ΦᵗΦ + αI and ΦᵗΦ + αDᵗD are symmetric positive definite for α > 0.
	c, err := matrix.SolveSPD(gram, rhs)
	if err != nil {
		if errors.Is(err, matrix.ErrSingular) {
			return solveResult{}, splineErrorf(opSolve, joinCause(ErrRankDeficient, err))
		}
		return solveResult{}, splineErrorf(opSolve, err)
	}

	return solveResult{coeffs: c, method: req.smoothing}, nil
}

// solveOLS solves the plain normal equations, refusing systems whose design
// matrix leaves a column empty or whose Gram matrix is numerically rank deficient.
func solveOLS(req solveRequest, gram *matrix.Dense, rhs []float64) (solveResult, error) {
	cols := req.phi.Cols()
	if n := req.active.GetCardinality(); n < uint64(cols) {
		missing := -1
		for j := 0; j < cols; j++ {
			if !req.active.Contains(uint32(j)) {
				missing = j
				break
			}
		}
		return solveResult{}, splineErrorf(opSolve, fmt.Errorf("%d of %d basis functions have no sample support (first: column %d): %w",
			uint64(cols)-n, cols, missing, ErrRankDeficient))
	}

	c, info, err := matrix.SolveRankAware(gram, rhs)
	if err != nil {
		if errors.Is(err, matrix.ErrRankDeficient) {
			return solveResult{rank: info.Rank}, splineErrorf(opSolve, joinCause(ErrRankDeficient, err))
		}
		return solveResult{}, splineErrorf(opSolve, err)
	}

	return solveResult{coeffs: c, method: None, rank: info.Rank}, nil
}
