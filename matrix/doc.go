// SPDX-License-Identifier: MIT

// Package matrix is the linear-algebra layer under the spline builder.
//
// What & Why:
//
//	Dense is a row-major, bounds-checked matrix used for normal-equation
//	systems (ΦᵗΦ, penalties, identities). Sparse is an immutable CSR matrix
//	used for design matrices with one row per sample and a few non-zeros per
//	row. Solve factors a square system with partially pivoted LU;
//	SolveSPD factors a symmetric positive definite one with gonum's Cholesky;
//	SolveRankAware measures the numerical rank first (gonum SVD) and reports
//	rank-deficient systems with ErrRankDeficient instead of returning a
//	meaningless solution.
//
// Complexity:
//
//	At/Set are O(1). Gram is O(Σ nnz_row²). LU and SVD are O(n³).
package matrix
