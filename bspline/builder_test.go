// SPDX-License-Identifier: MIT
package bspline_test

import (
	"math"
	"sync"
	"testing"

	"github.com/katalvlaran/lvspline/bspline"
	"github.com/katalvlaran/lvspline/datatable"
	"github.com/katalvlaran/lvspline/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(x float64) float64 { return x * x }

func TestBuild_QuadraticScenario(t *testing.T) {
	t.Parallel()
	tbl := MustTable1D(t, []float64{0, 1, 2, 3}, square)
	s := MustBuild(t, tbl,
		bspline.WithDegree(2),
		bspline.WithNumBasisFunctions(4),
		bspline.WithKnotSpacing(bspline.AsSampled),
		bspline.WithSmoothing(bspline.None),
	)
	require.Equal(t, [][]float64{{0, 0, 0, 1.5, 3, 3, 3}}, s.KnotVectors())

	for _, x := range []float64{0, 1, 2, 3} {
		v, err := s.Eval([]float64{x})
		require.NoError(t, err)
		require.InDelta(t, x*x, v, 1e-9)
	}
}

func TestBuild_TooFewBasisFunctionsForDegree(t *testing.T) {
	t.Parallel()
	tbl := MustTable1D(t, []float64{0, 1, 2, 3}, square)
	b, err := bspline.NewBuilder(tbl)
	require.NoError(t, err)
	_, err = b.Degree(3)
	require.NoError(t, err)
	_, err = b.NumBasisFunctions(2)
	require.NoError(t, err)

	s, err := b.Build()
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)
	require.Nil(t, s)
}

func TestBuild_ConstantDegreeVector(t *testing.T) {
	t.Parallel()
	tbl := MustGrid2D(t, Range(7), Range(7), func(x, y float64) float64 {
		return math.Sin(x/2) + math.Cos(y/3)
	})
	for p := 0; p <= bspline.MaxDegree; p++ {
		s := MustBuild(t, tbl, bspline.WithDegree(p))
		require.Equal(t, []int{p, p}, s.Degrees(), "degree %d", p)
		for k, kv := range s.KnotVectors() {
			require.True(t, bspline.IsClampedKnotVector(kv, p), "degree %d dim %d", p, k)
		}
	}
}

func TestSetters_RejectWithoutPartialApplication(t *testing.T) {
	t.Parallel()
	tbl := MustGrid2D(t, Range(5), Range(5), func(x, y float64) float64 { return x + y })
	b, err := bspline.NewBuilder(tbl)
	require.NoError(t, err)
	_, err = b.Degree(2)
	require.NoError(t, err)

	for _, bad := range [][]int{{1}, {1, 2, 3}, {1, 6}, {-1, 2}, nil} {
		same, err := b.Degrees(bad)
		require.ErrorIs(t, err, bspline.ErrInvalidConfig, "%v", bad)
		require.Same(t, b, same)
	}
	_, err = b.Degree(6)
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)
	_, err = b.Degree(-1)
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)

	s, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, []int{2, 2}, s.Degrees())

	_, err = b.NumBasisFunctionsPerDim([]int{4})
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)
	_, err = b.NumBasisFunctionsPerDim([]int{4, 0})
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)
	_, err = b.NumBasisFunctions(0)
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)
	_, err = b.KnotSpacing(bspline.KnotSpacing(-1))
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)
	_, err = b.Smoothing(bspline.Smoothing(3))
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)
	_, err = b.MaxSegments(0)
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)
	_, err = b.Parallelism(0)
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)
	require.Equal(t, bspline.AsSampled, b.KnotSpacingPolicy())
	require.Equal(t, bspline.None, b.SmoothingPolicy())
	require.Equal(t, 2, b.NumVariables())
}

func TestAlpha_Validation(t *testing.T) {
	t.Parallel()
	tbl := MustTable1D(t, Range(6), square)
	b, err := bspline.NewBuilder(tbl)
	require.NoError(t, err)
	_, err = b.Alpha(0.25)
	require.NoError(t, err)

	for _, a := range []float64{-1e-12, -3, math.NaN(), math.Inf(1)} {
		_, err = b.Alpha(a)
		require.ErrorIs(t, err, bspline.ErrInvalidConfig, "alpha %g", a)
	}
	require.Equal(t, 0.25, b.AlphaValue())

	_, err = b.Alpha(0)
	require.NoError(t, err)
	require.Zero(t, b.AlphaValue())
}

func TestBuild_ZeroAlphaEqualsNoSmoothing(t *testing.T) {
	t.Parallel()
	tbl := MustTable1D(t, Range(12), func(x float64) float64 { return math.Sin(x) + 0.1*x })
	ref := MustBuild(t, tbl, bspline.WithNumBasisFunctions(8))

	for _, sm := range []bspline.Smoothing{bspline.Regularization, bspline.PSpline} {
		s := MustBuild(t, tbl, bspline.WithNumBasisFunctions(8), bspline.WithSmoothing(sm), bspline.WithAlpha(0))
		require.Equal(t, ref.Coefficients(), s.Coefficients(), "smoothing %v", sm)
	}
}

func TestBuild_OLSReproducesPolynomials(t *testing.T) {
	t.Parallel()
	cubic := func(x float64) float64 { return 2*x*x*x - x + 1 }
	tbl := MustTable1D(t, Range(10), cubic)
	s := MustBuild(t, tbl, bspline.WithDegree(3))
	for _, x := range []float64{0, 1, 4, 4.5, 7.25, 9} {
		v, err := s.Eval([]float64{x})
		require.NoError(t, err)
		require.InDelta(t, cubic(x), v, 1e-8, "x=%g", x)
	}

	f := func(x, y float64) float64 { return 1 + x + 2*y + x*y + x*x*y }
	grid := MustGrid2D(t, Range(6), []float64{0, 0.5, 1, 2, 2.5, 4}, f)
	for _, spacing := range []bspline.KnotSpacing{bspline.AsSampled, bspline.Equidistant, bspline.Experimental} {
		s2 := MustBuild(t, grid, bspline.WithDegree(2), bspline.WithKnotSpacing(spacing), bspline.WithParallelism(3))
		for _, x := range [][]float64{{0, 0}, {5, 4}, {2, 0.5}, {3.3, 1.7}, {4.9, 3.1}} {
			v, err := s2.Eval(x)
			require.NoError(t, err)
			require.InDelta(t, f(x[0], x[1]), v, 1e-8, "spacing %v x=%v", spacing, x)
		}
	}
}

func TestBuild_RidgeResidualGrowsWithAlpha(t *testing.T) {
	t.Parallel()
	noisy := func(x float64) float64 { return math.Sin(x/3) + 0.2*math.Sin(7*x) }
	tbl := MustTable1D(t, Range(20), noisy)

	prev := RSS(t, MustBuild(t, tbl), tbl)
	for _, a := range []float64{1e-4, 1e-2, 1, 100} {
		s := MustBuild(t, tbl, bspline.WithSmoothing(bspline.Regularization), bspline.WithAlpha(a))
		rss := RSS(t, s, tbl)
		require.GreaterOrEqual(t, rss, prev-1e-12, "alpha %g", a)
		prev = rss
	}
	require.Greater(t, prev, 1e-3)
}

func TestBuild_RidgeSolvesSingularSystem(t *testing.T) {
	t.Parallel()
	tbl := MustTable1D(t, []float64{0, 1, 2, 3}, square)
	opts := []bspline.Option{
		bspline.WithDegree(1),
		bspline.WithKnotSpacing(bspline.Equidistant),
		bspline.WithNumBasisFunctions(8),
	}

	b, err := bspline.NewBuilder(tbl, opts...)
	require.NoError(t, err)
	s, err := b.Build()
	require.ErrorIs(t, err, bspline.ErrRankDeficient)
	require.Nil(t, s)

	s = MustBuild(t, tbl, append(opts, bspline.WithSmoothing(bspline.Regularization), bspline.WithAlpha(1e-6))...)
	require.Equal(t, 8, s.NumCoefficients())

	s = MustBuild(t, tbl, append(opts, bspline.WithSmoothing(bspline.PSpline), bspline.WithAlpha(1e-3))...)
	require.Equal(t, 8, s.NumCoefficients())
}

func TestBuild_RidgeAcceptsTinyAlpha(t *testing.T) {
	t.Parallel()
	tbl := MustTable1D(t, []float64{0, 1, 2, 3}, square)
	opts := []bspline.Option{
		bspline.WithDegree(1),
		bspline.WithKnotSpacing(bspline.Equidistant),
		bspline.WithNumBasisFunctions(8),
	}

	for _, alpha := range []float64{1e-10, 1e-12, 1e-14} {
		b, err := bspline.NewBuilder(tbl, append(opts, bspline.WithSmoothing(bspline.Regularization), bspline.WithAlpha(alpha))...)
		require.NoError(t, err)
		s, err := b.Build()
		require.NoError(t, err, "alpha %g", alpha)
		require.Equal(t, 8, s.NumCoefficients())
		for _, x := range []float64{0, 1, 2, 3} {
			v, err := s.Eval([]float64{x})
			require.NoError(t, err)
			require.InDelta(t, x*x, v, 1e-3, "alpha %g x %g", alpha, x)
		}
	}
}

// Every basis function has sample support, yet samples on the diagonal of a
// bilinear grid cannot separate the two off-diagonal corners.
func TestBuild_SupportedButRankDeficient(t *testing.T) {
	t.Parallel()
	tbl, err := datatable.New(2)
	require.NoError(t, err)
	for _, v := range []float64{0, 0.25, 0.5, 0.75, 1} {
		require.NoError(t, tbl.Add([]float64{v, v}, 2*v))
	}
	opts := []bspline.Option{bspline.WithDegree(1), bspline.WithNumBasisFunctions(2)}

	b, err := bspline.NewBuilder(tbl, opts...)
	require.NoError(t, err)
	s, err := b.Build()
	require.ErrorIs(t, err, bspline.ErrRankDeficient)
	require.ErrorIs(t, err, matrix.ErrRankDeficient)
	require.ErrorContains(t, err, "rank 3 < 4")
	require.Nil(t, s)

	s = MustBuild(t, tbl, append(opts, bspline.WithSmoothing(bspline.Regularization), bspline.WithAlpha(1e-3))...)
	require.Equal(t, 4, s.NumCoefficients())
	for _, v := range []float64{0, 0.5, 1} {
		y, err := s.Eval([]float64{v, v})
		require.NoError(t, err)
		require.InDelta(t, 2*v, y, 1e-2)
	}
}

func TestBuild_PSplineLargeAlphaFlattensCurvature(t *testing.T) {
	t.Parallel()
	tbl := MustTable1D(t, Range(30), func(x float64) float64 { return 0.5*x + 0.5*math.Sin(7*x) })
	opts := []bspline.Option{
		bspline.WithDegree(3),
		bspline.WithKnotSpacing(bspline.Equidistant),
		bspline.WithNumBasisFunctions(10),
	}
	second := func(c []float64) []float64 {
		out := make([]float64, len(c)-2)
		for i := range out {
			out[i] = c[i] - 2*c[i+1] + c[i+2]
		}
		return out
	}

	ols := MustBuild(t, tbl, opts...)
	ps := MustBuild(t, tbl, append(opts, bspline.WithSmoothing(bspline.PSpline), bspline.WithAlpha(1e6))...)

	require.Less(t, MaxAbs(second(ps.Coefficients())), 1e-3)
	require.Greater(t, MaxAbs(second(ols.Coefficients())), MaxAbs(second(ps.Coefficients())))
	require.GreaterOrEqual(t, RSS(t, ps, tbl), RSS(t, ols, tbl))
}

func TestBuild_PSplineWithoutPenaltyRowsEqualsNoSmoothing(t *testing.T) {
	t.Parallel()
	tbl := MustTable1D(t, []float64{0, 1, 2}, square)
	ref := MustBuild(t, tbl, bspline.WithDegree(1), bspline.WithNumBasisFunctions(2))
	s := MustBuild(t, tbl, bspline.WithDegree(1), bspline.WithNumBasisFunctions(2),
		bspline.WithSmoothing(bspline.PSpline), bspline.WithAlpha(5))
	require.Equal(t, ref.Coefficients(), s.Coefficients())
}

func TestBuild_InsufficientData(t *testing.T) {
	t.Parallel()
	tbl := MustTable1D(t, []float64{0, 1}, square)
	b, err := bspline.NewBuilder(tbl)
	require.NoError(t, err)
	s, err := b.Build()
	require.ErrorIs(t, err, bspline.ErrInsufficientData)
	require.Nil(t, s)

	b, err = bspline.NewBuilder(tbl, bspline.WithDegree(1), bspline.WithNumBasisFunctions(3))
	require.NoError(t, err)
	_, err = b.Build()
	require.ErrorIs(t, err, bspline.ErrInsufficientData)

	s = MustBuild(t, tbl, bspline.WithDegree(1))
	require.InDeltaSlice(t, []float64{0, 1}, s.Coefficients(), 1e-12)
}

func TestBuild_RepeatableAndIsolatedFromTable(t *testing.T) {
	t.Parallel()
	tbl := MustTable1D(t, Range(8), math.Sqrt)
	b, err := bspline.NewBuilder(tbl, bspline.WithDegree(2))
	require.NoError(t, err)

	first, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, tbl.Add([]float64{100}, 0))
	second, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, first.Coefficients(), second.Coefficients())
	require.Equal(t, first.KnotVectors(), second.KnotVectors())
	require.Equal(t, []float64{7}, second.DomainUpperBound())
}

func TestBuild_ParallelismIsDeterministic(t *testing.T) {
	t.Parallel()
	grid := MustGrid2D(t, Range(9), Range(8), func(x, y float64) float64 { return math.Exp(-x/5) * math.Cos(y) })
	ref := MustBuild(t, grid, bspline.WithDegree(3), bspline.WithSmoothing(bspline.PSpline), bspline.WithAlpha(0.1))
	for _, w := range []int{2, 4, 16} {
		s := MustBuild(t, grid, bspline.WithDegree(3), bspline.WithSmoothing(bspline.PSpline),
			bspline.WithAlpha(0.1), bspline.WithParallelism(w))
		require.Equal(t, ref.Coefficients(), s.Coefficients(), "workers %d", w)
	}
}

func TestBuild_IndependentBuildersInParallel(t *testing.T) {
	t.Parallel()
	tbl := MustTable1D(t, Range(15), math.Cbrt)
	ref := MustBuild(t, tbl)

	var wg sync.WaitGroup
	results := make([][]float64, 6)
	errs := make([]error, 6)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := bspline.NewBuilder(tbl)
			if err != nil {
				errs[i] = err
				return
			}
			s, err := b.Build()
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = s.Coefficients()
		}(i)
	}
	wg.Wait()
	for i := range results {
		require.NoError(t, errs[i])
		require.Equal(t, ref.Coefficients(), results[i])
	}
}

func TestNewBuilder_Errors(t *testing.T) {
	t.Parallel()
	_, err := bspline.NewBuilder(nil)
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)

	empty, err := datatable.New(2)
	require.NoError(t, err)
	_, err = bspline.NewBuilder(empty)
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)

	tbl := MustTable1D(t, Range(5), square)
	_, err = bspline.NewBuilder(tbl, bspline.WithDegree(9))
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)
	_, err = bspline.NewBuilder(tbl, bspline.WithAlpha(-1))
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)
	_, err = bspline.NewBuilder(tbl, bspline.WithDegrees([]int{1, 1}))
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)

	b, err := bspline.NewBuilder(tbl, nil, bspline.WithLogger(nil), bspline.WithMaxSegments(2))
	require.NoError(t, err)
	assert.Equal(t, 1, b.NumVariables())
}

func TestParsePolicies(t *testing.T) {
	t.Parallel()
	for _, s := range []bspline.KnotSpacing{bspline.AsSampled, bspline.Equidistant, bspline.Experimental} {
		got, err := bspline.ParseKnotSpacing(s.String())
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
	for _, s := range []bspline.Smoothing{bspline.None, bspline.Regularization, bspline.PSpline} {
		got, err := bspline.ParseSmoothing(s.String())
		require.NoError(t, err)
		require.Equal(t, s, got)
	}
	got, err := bspline.ParseSmoothing(" Ridge ")
	require.NoError(t, err)
	require.Equal(t, bspline.Regularization, got)

	_, err = bspline.ParseKnotSpacing("chebyshev")
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)
	_, err = bspline.ParseSmoothing("lasso")
	require.ErrorIs(t, err, bspline.ErrInvalidConfig)
	require.Equal(t, "KnotSpacing(7)", bspline.KnotSpacing(7).String())
	require.Equal(t, "Smoothing(-1)", bspline.Smoothing(-1).String())
}
