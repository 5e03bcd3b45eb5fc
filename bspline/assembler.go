// SPDX-License-Identifier: MIT
// Package: lvspline/bspline
//
// assembler.go - sparse design matrix Φ of a tensor-product basis.

package bspline

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/katalvlaran/lvspline/matrix"
	"golang.org/x/sync/errgroup"
)

const opAssemble = "AssembleBasisMatrix"

// AssembleBasisMatrix evaluates the tensor-product basis at every input.
//
// Implementation:
//   - Stage 1: validate degrees/knots into a tensor basis.
//   - Stage 2: split the rows into at most `workers` contiguous chunks; each
//     chunk fills its own SparseBuilder and active-column bitmap (errgroup,
//     SetLimit(workers)).
//   - Stage 3: merge the chunks in row order and compress to CSR.
//
// Returns:
//   - Φ (len(inputs) × Π m_k), entry (i, j) = B_j(inputs[i]); at most
//     Π(p_k+1) non-zeros per row.
//   - the set of columns holding at least one non-zero.
//
// Behavior highlights:
//   - The result does not depend on workers; chunks are merged in order and
//     CSR compression sorts each row.
//
// Errors:
//   - ErrDimensionMismatch, ErrInvalidConfig (basis), ErrOutOfDomain (an input
//     outside the knot span), ErrInsufficientData (no inputs).
//
// Complexity:
//   - Time O(N·Π(p_k+1)·d), Space O(N·Π(p_k+1)).
func AssembleBasisMatrix(inputs [][]float64, degrees []int, knots [][]float64, workers int) (*matrix.Sparse, *roaring.Bitmap, error) {
	tb, err := newTensorBasis(degrees, knots)
	if err != nil {
		return nil, nil, splineErrorf(opAssemble, err)
	}

	return assemble(tb, inputs, workers)
}

// assemble is AssembleBasisMatrix over an already validated basis.
func assemble(tb *tensorBasis, inputs [][]float64, workers int) (*matrix.Sparse, *roaring.Bitmap, error) {
	rows := len(inputs)
	if rows == 0 {
		return nil, nil, splineErrorf(opAssemble, fmt.Errorf("no samples: %w", ErrInsufficientData))
	}
	if workers < 1 {
		workers = 1
	}
	if workers > rows {
		workers = rows
	}
	chunk := (rows + workers - 1) / workers
	numChunks := (rows + chunk - 1) / chunk

	builders := make([]*matrix.SparseBuilder, numChunks)
	actives := make([]*roaring.Bitmap, numChunks)

	var g errgroup.Group
	g.SetLimit(workers)
	for c := 0; c < numChunks; c++ {
		lo, hi := c*chunk, min((c+1)*chunk, rows)
		g.Go(func() error {
			sb, err := matrix.NewSparseBuilder(rows, tb.numCols)
			if err != nil {
				return err
			}
			active := roaring.New()
			var cols []int
			var vals []float64
			for i := lo; i < hi; i++ {
				cols, vals, err = tb.row(inputs[i], cols[:0], vals[:0])
				if err != nil {
					return fmt.Errorf("sample %d: %w", i, err)
				}
				for k, j := range cols {
					sb.Add(i, j, vals[k])
					active.Add(uint32(j))
				}
			}
			builders[c], actives[c] = sb, active

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, splineErrorf(opAssemble, err)
	}

	for c := 1; c < numChunks; c++ {
		if err := builders[0].Merge(builders[c]); err != nil {
			return nil, nil, splineErrorf(opAssemble, err)
		}
	}
	phi, err := builders[0].Build()
	if err != nil {
		return nil, nil, splineErrorf(opAssemble, err)
	}

	return phi, roaring.FastOr(actives...), nil
}
