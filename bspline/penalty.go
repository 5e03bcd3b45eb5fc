// SPDX-License-Identifier: MIT
// Package: lvspline/bspline
//
// penalty.go - second-order difference operator over the coefficient grid.

package bspline

import (
	"fmt"

	"github.com/katalvlaran/lvspline/matrix"
)

const opPenalty = "SecondOrderDifferenceMatrix"

// SecondOrderDifferenceMatrix returns D with one row per (dimension k, grid
// position whose k-th index is at most m_k-3). The row holds +1, -2, +1 on the
// coefficients at offsets 0, 1, 2 along dimension k. Column order is the
// tensor-product order of the basis (last dimension fastest).
//
// Rows are grouped by dimension, then ordered by the column of their first entry.
// Dimensions with fewer than three basis functions contribute no rows; when no
// dimension contributes, the result is nil with a nil error.
//
// Errors:
//   - ErrInvalidConfig: empty numBasis or a count below 1.
//
// Complexity:
//   - Time O(d·Π m_k), Space O(3·rows).
func SecondOrderDifferenceMatrix(numBasis []int) (*matrix.Sparse, error) {
	d := len(numBasis)
	if d == 0 {
		return nil, splineErrorf(opPenalty, fmt.Errorf("no dimensions: %w", ErrInvalidConfig))
	}
	strides := make([]int, d)
	cols := 1
	for k := d - 1; k >= 0; k-- {
		if numBasis[k] < 1 {
			return nil, splineErrorf(opPenalty, fmt.Errorf("dim %d: %d basis functions: %w", k, numBasis[k], ErrInvalidConfig))
		}
		strides[k] = cols
		cols *= numBasis[k]
	}

	rows := 0
	for k := 0; k < d; k++ {
		if numBasis[k] >= 3 {
			rows += cols / numBasis[k] * (numBasis[k] - 2)
		}
	}
	if rows == 0 {
		return nil, nil
	}

	sb, err := matrix.NewSparseBuilder(rows, cols)
	if err != nil {
		return nil, splineErrorf(opPenalty, err)
	}
	r := 0
	var pos, s int
	for k := 0; k < d; k++ {
		if numBasis[k] < 3 {
			continue
		}
		s = strides[k]
		for j := 0; j < cols; j++ {
			// index of j along dimension k
			pos = (j / s) % numBasis[k]
			if pos > numBasis[k]-3 {
				continue
			}
			sb.Add(r, j, 1)
			sb.Add(r, j+s, -2)
			sb.Add(r, j+2*s, 1)
			r++
		}
	}

	D, err := sb.Build()
	if err != nil {
		return nil, splineErrorf(opPenalty, err)
	}

	return D, nil
}
