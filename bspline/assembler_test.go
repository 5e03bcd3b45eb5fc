// SPDX-License-Identifier: MIT
package bspline_test

import (
	"testing"

	"github.com/katalvlaran/lvspline/bspline"
	"github.com/stretchr/testify/require"
)

func gridInputs(xs, ys []float64) [][]float64 {
	out := make([][]float64, 0, len(xs)*len(ys))
	for _, x := range xs {
		for _, y := range ys {
			out = append(out, []float64{x, y})
		}
	}

	return out
}

func TestAssembleBasisMatrix_RowsArePartitionsOfUnity(t *testing.T) {
	t.Parallel()
	inputs := gridInputs(Range(6), []float64{0, 0.5, 1.25, 2, 3})
	knots := [][]float64{Clamped(0, 5, 2, 1.5, 2.5, 3.5), Clamped(0, 3, 1, 1, 2)}

	phi, active, err := bspline.AssembleBasisMatrix(inputs, []int{2, 1}, knots, 1)
	require.NoError(t, err)
	require.Equal(t, len(inputs), phi.Rows())
	require.Equal(t, 6*4, phi.Cols())
	require.EqualValues(t, phi.Cols(), active.GetCardinality())

	ones := make([]float64, phi.Cols())
	for i := range ones {
		ones[i] = 1
	}
	sums, err := phi.MulVec(ones)
	require.NoError(t, err)
	for i, s := range sums {
		require.InDelta(t, 1, s, 1e-12, "row %d", i)
		require.LessOrEqual(t, phi.RowNNZ(i), 3*2)
	}
}

func TestAssembleBasisMatrix_WorkerCountDoesNotChangeResult(t *testing.T) {
	t.Parallel()
	inputs := gridInputs(Range(9), Range(7))
	knots := [][]float64{Clamped(0, 8, 3, 2, 4, 6), Clamped(0, 6, 2, 1.5, 3, 4.5)}

	ref, refActive, err := bspline.AssembleBasisMatrix(inputs, []int{3, 2}, knots, 1)
	require.NoError(t, err)
	want, err := ref.ToDense()
	require.NoError(t, err)

	for _, workers := range []int{0, 2, 3, 8, 1000} {
		phi, active, err := bspline.AssembleBasisMatrix(inputs, []int{3, 2}, knots, workers)
		require.NoError(t, err, "workers=%d", workers)
		got, err := phi.ToDense()
		require.NoError(t, err)
		require.Equal(t, want.RawData(), got.RawData(), "workers=%d", workers)
		require.True(t, refActive.Equals(active), "workers=%d", workers)
	}
}

func TestAssembleBasisMatrix_ActiveColumns(t *testing.T) {
	t.Parallel()
	// Hat functions at 0, 1, 2, 3, 4; samples only near the left end.
	knots := [][]float64{Clamped(0, 4, 1, 1, 2, 3)}
	phi, active, err := bspline.AssembleBasisMatrix([][]float64{{0}, {0.5}, {1}}, []int{1}, knots, 2)
	require.NoError(t, err)
	require.Equal(t, 5, phi.Cols())
	require.Equal(t, []uint32{0, 1}, active.ToArray())
}

func TestAssembleBasisMatrix_Errors(t *testing.T) {
	t.Parallel()
	knots := [][]float64{Clamped(0, 1, 1)}
	_, _, err := bspline.AssembleBasisMatrix([][]float64{{0.5}, {2}}, []int{1}, knots, 2)
	require.ErrorIs(t, err, bspline.ErrOutOfDomain)

	_, _, err = bspline.AssembleBasisMatrix([][]float64{{0.5, 1}}, []int{1}, knots, 1)
	require.ErrorIs(t, err, bspline.ErrDimensionMismatch)

	_, _, err = bspline.AssembleBasisMatrix(nil, []int{1}, knots, 1)
	require.ErrorIs(t, err, bspline.ErrInsufficientData)

	_, _, err = bspline.AssembleBasisMatrix([][]float64{{0.5}}, []int{3}, knots, 1)
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)
}
