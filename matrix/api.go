// SPDX-License-Identifier: MIT
// Package matrix - composite entry points built from the sparse kernels.

package matrix

// NormalEquations returns (AᵗA, Aᵗy) for a sparse design matrix A.
// Both products are formed without materializing Aᵗ.
func NormalEquations(a *Sparse, y []float64) (*Dense, []float64, error) {
	if a == nil {
		return nil, nil, matrixErrorf("NormalEquations", ErrNilMatrix)
	}
	g, err := a.Gram()
	if err != nil {
		return nil, nil, matrixErrorf("NormalEquations", err)
	}
	rhs, err := a.TMulVec(y)
	if err != nil {
		return nil, nil, matrixErrorf("NormalEquations", err)
	}

	return g, rhs, nil
}
