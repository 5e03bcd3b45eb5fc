// SPDX-License-Identifier: MIT
package bspline_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/lvspline/bspline"
	"github.com/katalvlaran/lvspline/datatable"
	"github.com/stretchr/testify/require"
)

func TestComputeKnotVector_MovingAverage(t *testing.T) {
	t.Parallel()
	got, err := bspline.ComputeKnotVector([]float64{3, 0, 2, 1, 2}, 2, 0, bspline.AsSampled, bspline.DefaultMaxSegments)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 0, 1.5, 3, 3, 3}, got)

	// Degree 0: midpoints between neighbouring values.
	got, err = bspline.ComputeKnotVector([]float64{0, 1, 3}, 0, 3, bspline.AsSampled, 1)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0.5, 2, 3}, got)
}

func TestComputeKnotVector_AveragedPlacement(t *testing.T) {
	t.Parallel()
	got, err := bspline.ComputeKnotVector(Range(10), 3, 6, bspline.AsSampled, bspline.DefaultMaxSegments)
	require.NoError(t, err)
	require.Len(t, got, 10)
	require.InDeltaSlice(t, []float64{0, 0, 0, 0, 7.0 / 3, 17.0 / 3, 9, 9, 9, 9}, got, 1e-12)

	_, err = bspline.ComputeKnotVector(Range(4), 2, 5, bspline.AsSampled, bspline.DefaultMaxSegments)
	require.ErrorIs(t, err, bspline.ErrInsufficientData)
}

func TestComputeKnotVector_Equidistant(t *testing.T) {
	t.Parallel()
	got, err := bspline.ComputeKnotVector([]float64{0, 10, 2, 7}, 1, 5, bspline.Equidistant, 1)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 2.5, 5, 7.5, 10, 10}, got)

	// Default count follows the distinct values; more basis functions than
	// values is allowed here.
	got, err = bspline.ComputeKnotVector([]float64{0, 1, 2, 3}, 1, 0, bspline.Equidistant, 1)
	require.NoError(t, err)
	require.Len(t, got, 4+1+1)
	got, err = bspline.ComputeKnotVector([]float64{0, 1, 2, 3}, 1, 8, bspline.Equidistant, 1)
	require.NoError(t, err)
	require.Len(t, got, 8+1+1)
}

func TestComputeKnotVector_Experimental(t *testing.T) {
	t.Parallel()
	got, err := bspline.ComputeKnotVector(Range(10), 2, 0, bspline.Experimental, bspline.DefaultMaxSegments)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 0, 1.5, 3.5, 4.5, 5.5, 6.5, 7.5, 8.5, 9, 9, 9}, got)

	capped, err := bspline.ComputeKnotVector(Range(10), 2, 0, bspline.Experimental, 3)
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 0, 3.5, 6.5, 9, 9, 9}, capped)

	explicit, err := bspline.ComputeKnotVector(Range(10), 2, 5, bspline.Experimental, 1)
	require.NoError(t, err)
	require.Equal(t, capped, explicit)

	_, err = bspline.ComputeKnotVector(Range(10), 2, 11, bspline.Experimental, 1)
	require.ErrorIs(t, err, bspline.ErrInsufficientData)
}

func TestComputeKnotVector_Errors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name     string
		values   []float64
		degree   int
		numBasis int
		spacing  bspline.KnotSpacing
		maxSeg   int
		want     error
	}{
		{"degree too high", Range(10), 6, 0, bspline.AsSampled, 10, bspline.ErrInvalidConfig},
		{"negative degree", Range(10), -1, 0, bspline.AsSampled, 10, bspline.ErrInvalidConfig},
		{"basis below degree+1", Range(10), 3, 2, bspline.AsSampled, 10, bspline.ErrInvalidConfig},
		{"unknown spacing", Range(10), 1, 0, bspline.KnotSpacing(9), 10, bspline.ErrInvalidConfig},
		{"zero max segments", Range(10), 1, 0, bspline.Experimental, 0, bspline.ErrInvalidConfig},
		{"NaN value", []float64{0, math.NaN(), 1}, 1, 0, bspline.AsSampled, 10, bspline.ErrInvalidConfig},
		{"single distinct value", []float64{1, 1, 1}, 0, 0, bspline.AsSampled, 10, bspline.ErrInsufficientData},
		{"fewer values than degree+1", []float64{0, 1, 2}, 3, 0, bspline.Equidistant, 10, bspline.ErrInsufficientData},
		{"duplicates collapse", []float64{0, 0, 1, 1, 2, 2}, 3, 0, bspline.AsSampled, 10, bspline.ErrInsufficientData},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := bspline.ComputeKnotVector(tc.values, tc.degree, tc.numBasis, tc.spacing, tc.maxSeg)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestComputeKnotVector_AlwaysClamped(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(3))
	values := make([]float64, 40)
	for i := range values {
		values[i] = math.Round(rng.NormFloat64()*100) / 10 // ties on purpose
	}
	n := len(datatable.UniqueSorted(values))

	for _, spacing := range []bspline.KnotSpacing{bspline.AsSampled, bspline.Equidistant, bspline.Experimental} {
		for p := 0; p <= bspline.MaxDegree; p++ {
			for _, m := range []int{0, p + 1, n - 1, n} {
				if m != 0 && m < p+1 {
					continue
				}
				knots, err := bspline.ComputeKnotVector(values, p, m, spacing, 4)
				require.NoError(t, err, "spacing=%v p=%d m=%d", spacing, p, m)
				require.True(t, bspline.IsClampedKnotVector(knots, p), "spacing=%v p=%d m=%d: %v", spacing, p, m, knots)
				if m != 0 {
					require.Len(t, knots, m+p+1)
				}
			}
		}
	}
}

func TestIsClampedKnotVector(t *testing.T) {
	t.Parallel()
	require.True(t, bspline.IsClampedKnotVector([]float64{0, 0, 0, 1, 1, 1}, 2))
	require.True(t, bspline.IsClampedKnotVector([]float64{0, 1}, 0))
	require.False(t, bspline.IsClampedKnotVector([]float64{0, 0, 1, 1}, 2), "too short")
	require.False(t, bspline.IsClampedKnotVector([]float64{0, 0, 0, 1, 1}, 1), "extra repeat")
	require.False(t, bspline.IsClampedKnotVector([]float64{0, 0, 2, 1, 3, 3}, 1), "decreasing")
	require.False(t, bspline.IsClampedKnotVector([]float64{1, 1, 1, 1}, 1), "empty domain")
	require.False(t, bspline.IsClampedKnotVector([]float64{0, 0, math.NaN(), 1, 1}, 1), "NaN")
	require.False(t, bspline.IsClampedKnotVector([]float64{0, 0, 1, 1}, -1))
}
