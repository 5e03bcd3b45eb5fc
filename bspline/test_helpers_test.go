// SPDX-License-Identifier: MIT
// Package bspline_test contains shared fixtures for the bspline tests.

package bspline_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/lvspline/bspline"
	"github.com/katalvlaran/lvspline/datatable"
	"github.com/stretchr/testify/require"
)

// MustTable1D BUILDS a one-variable table from xs and f.
func MustTable1D(t *testing.T, xs []float64, f func(x float64) float64) *datatable.Table {
	t.Helper()
	tbl, err := datatable.New(1)
	require.NoError(t, err)
	for _, x := range xs {
		require.NoError(t, tbl.Add([]float64{x}, f(x)))
	}

	return tbl
}

// MustGrid2D BUILDS a full tensor grid xs × ys sampled from f.
func MustGrid2D(t *testing.T, xs, ys []float64, f func(x, y float64) float64) *datatable.Table {
	t.Helper()
	tbl, err := datatable.New(2)
	require.NoError(t, err)
	for _, x := range xs {
		for _, y := range ys {
			require.NoError(t, tbl.Add([]float64{x, y}, f(x, y)))
		}
	}

	return tbl
}

// Range RETURNS [0, 1, ..., n-1] as floats.
func Range(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}

	return out
}

// MustBuild CONSTRUCTS a builder from opts and builds it, failing on error.
func MustBuild(t *testing.T, tbl *datatable.Table, opts ...bspline.Option) *bspline.BSpline {
	t.Helper()
	b, err := bspline.NewBuilder(tbl, opts...)
	require.NoError(t, err)
	s, err := b.Build()
	require.NoError(t, err)
	require.NotNil(t, s)

	return s
}

// RSS RETURNS the residual sum of squares of s over the table samples.
func RSS(t *testing.T, s *bspline.BSpline, tbl *datatable.Table) float64 {
	t.Helper()
	got, err := s.EvalAll(tbl.Inputs())
	require.NoError(t, err)
	var sum float64
	for i, y := range tbl.Outputs() {
		sum += (got[i] - y) * (got[i] - y)
	}

	return sum
}

// MaxAbs RETURNS max_i |v_i|.
func MaxAbs(v []float64) float64 {
	var m float64
	for _, x := range v {
		m = math.Max(m, math.Abs(x))
	}

	return m
}

// Clamped RETURNS a clamped knot vector on [lo, hi] for degree p with the
// given interior knots.
func Clamped(lo, hi float64, p int, interior ...float64) []float64 {
	out := make([]float64, 0, len(interior)+2*(p+1))
	for i := 0; i <= p; i++ {
		out = append(out, lo)
	}
	out = append(out, interior...)
	for i := 0; i <= p; i++ {
		out = append(out, hi)
	}

	return out
}
