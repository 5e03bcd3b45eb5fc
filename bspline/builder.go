// SPDX-License-Identifier: MIT
// Package: lvspline/bspline
//
// builder.go - Builder: configuration and orchestration of a spline fit.
//
// Contract:
//   • Every setter validates immediately. On error it returns the builder
//     unchanged together with an ErrInvalidConfig-wrapped error; nothing is
//     partially applied.
//   • Build is repeatable and side-effect free: each call recomputes knots,
//     design matrix and coefficients from the current configuration.
//   • A Builder is not safe for concurrent mutation. Independent builders may
//     build in parallel.

package bspline

import (
	"fmt"
	"math"
	"time"

	"github.com/katalvlaran/lvspline/datatable"
)

// Builder fits a BSpline to a sample table.
type Builder struct {
	table        *datatable.Table
	numVariables int
	degrees      []int // nil = DefaultDegree in every dimension
	numBasis     []int // nil = sample-driven per spacing
	spacing      KnotSpacing
	smoothing    Smoothing
	alpha        float64
	maxSegments  int
	workers      int
	logger       *Logger
}

// NewBuilder clones table and applies opts in order; the first failing
// option aborts construction.
//
// Defaults: AsSampled spacing, no smoothing, alpha 0, degree 3, sample-driven
// basis counts, DefaultMaxSegments, one assembly worker, no logging.
//
// Errors:
//   - ErrInvalidConfig: nil or empty table, or a rejected option.
func NewBuilder(table *datatable.Table, opts ...Option) (*Builder, error) {
	if table == nil || table.NumSamples() == 0 {
		return nil, splineErrorf("NewBuilder", fmt.Errorf("empty sample table: %w", ErrInvalidConfig))
	}
	b := &Builder{
		table:        table.Clone(),
		numVariables: table.NumVariables(),
		spacing:      AsSampled,
		smoothing:    None,
		maxSegments:  DefaultMaxSegments,
		workers:      DefaultParallelism,
		logger:       NoopLogger(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(b); err != nil {
			return nil, splineErrorf("NewBuilder", err)
		}
	}

	return b, nil
}

func validateAlpha(a float64) error {
	if math.IsNaN(a) || math.IsInf(a, 0) || a < 0 {
		return fmt.Errorf("alpha %g must be finite and non-negative: %w", a, ErrInvalidConfig)
	}

	return nil
}

func validateDegree(p int) error {
	if p < 0 || p > MaxDegree {
		return fmt.Errorf("degree %d not in [0,%d]: %w", p, MaxDegree, ErrInvalidConfig)
	}

	return nil
}

func (b *Builder) repeat(v int) []int {
	out := make([]int, b.numVariables)
	for k := range out {
		out[k] = v
	}

	return out
}

// Alpha sets the smoothing weight (finite, >= 0).
func (b *Builder) Alpha(a float64) (*Builder, error) {
	if err := validateAlpha(a); err != nil {
		return b, splineErrorf("Builder.Alpha", err)
	}
	b.alpha = a

	return b, nil
}

// Degree sets the same degree p in [0, MaxDegree] for every dimension.
func (b *Builder) Degree(p int) (*Builder, error) {
	if err := validateDegree(p); err != nil {
		return b, splineErrorf("Builder.Degree", err)
	}
	b.degrees = b.repeat(p)

	return b, nil
}

// Degrees sets one degree per dimension.
func (b *Builder) Degrees(ps []int) (*Builder, error) {
	if len(ps) != b.numVariables {
		return b, splineErrorf("Builder.Degrees", fmt.Errorf("%d degrees for %d variables: %w", len(ps), b.numVariables, ErrInvalidConfig))
	}
	for k, p := range ps {
		if err := validateDegree(p); err != nil {
			return b, splineErrorf("Builder.Degrees", fmt.Errorf("dim %d: %w", k, err))
		}
	}
	b.degrees = append([]int(nil), ps...)

	return b, nil
}

// NumBasisFunctions sets the same basis count (>= 1) for every dimension.
// Counts below degree+1 are rejected by Build.
func (b *Builder) NumBasisFunctions(n int) (*Builder, error) {
	if n < 1 {
		return b, splineErrorf("Builder.NumBasisFunctions", fmt.Errorf("%d basis functions: %w", n, ErrInvalidConfig))
	}
	b.numBasis = b.repeat(n)

	return b, nil
}

// NumBasisFunctionsPerDim sets one basis count (>= 1) per dimension.
func (b *Builder) NumBasisFunctionsPerDim(ns []int) (*Builder, error) {
	if len(ns) != b.numVariables {
		return b, splineErrorf("Builder.NumBasisFunctionsPerDim", fmt.Errorf("%d counts for %d variables: %w", len(ns), b.numVariables, ErrInvalidConfig))
	}
	for k, n := range ns {
		if n < 1 {
			return b, splineErrorf("Builder.NumBasisFunctionsPerDim", fmt.Errorf("dim %d: %d basis functions: %w", k, n, ErrInvalidConfig))
		}
	}
	b.numBasis = append([]int(nil), ns...)

	return b, nil
}

// KnotSpacing selects the knot placement policy.
func (b *Builder) KnotSpacing(s KnotSpacing) (*Builder, error) {
	if !s.valid() {
		return b, splineErrorf("Builder.KnotSpacing", fmt.Errorf("%v: %w", s, ErrInvalidConfig))
	}
	b.spacing = s

	return b, nil
}

// Smoothing selects the coefficient-solve formulation.
func (b *Builder) Smoothing(s Smoothing) (*Builder, error) {
	if !s.valid() {
		return b, splineErrorf("Builder.Smoothing", fmt.Errorf("%v: %w", s, ErrInvalidConfig))
	}
	b.smoothing = s

	return b, nil
}

// MaxSegments caps the bucket count of Experimental spacing (>= 1).
func (b *Builder) MaxSegments(n int) (*Builder, error) {
	if n < 1 {
		return b, splineErrorf("Builder.MaxSegments", fmt.Errorf("%d segments: %w", n, ErrInvalidConfig))
	}
	b.maxSegments = n

	return b, nil
}

// Parallelism sets the number of basis-matrix assembly workers (>= 1).
func (b *Builder) Parallelism(n int) (*Builder, error) {
	if n < 1 {
		return b, splineErrorf("Builder.Parallelism", fmt.Errorf("%d workers: %w", n, ErrInvalidConfig))
	}
	b.workers = n

	return b, nil
}

// Logger sets the build logger; nil disables logging.
func (b *Builder) Logger(l *Logger) (*Builder, error) {
	if l == nil {
		l = NoopLogger()
	}
	b.logger = l

	return b, nil
}

// AlphaValue returns the configured smoothing weight.
func (b *Builder) AlphaValue() float64 { return b.alpha }

// KnotSpacingPolicy returns the configured knot spacing.
func (b *Builder) KnotSpacingPolicy() KnotSpacing { return b.spacing }

// SmoothingPolicy returns the configured smoothing.
func (b *Builder) SmoothingPolicy() Smoothing { return b.smoothing }

// NumVariables returns the dimensionality of the sample table.
func (b *Builder) NumVariables() int { return b.numVariables }

// resolvedDegrees returns the configured degrees or the default.
func (b *Builder) resolvedDegrees() []int {
	if b.degrees == nil {
		return b.repeat(DefaultDegree)
	}

	return append([]int(nil), b.degrees...)
}

// Build fits a spline to the sample table.
//
// Implementation:
//   - Stage 1: resolve degrees (default 3) and basis counts; an explicit count
//     below degree+1 is rejected.
//   - Stage 2: one knot vector per dimension (ComputeKnotVector).
//   - Stage 3: sparse design matrix Φ and its active columns.
//   - Stage 4: coefficient solve for the configured smoothing.
//   - Stage 5: assemble the immutable BSpline.
//
// Errors:
//   - ErrInvalidConfig, ErrInsufficientData, ErrRankDeficient. Any failure
//     returns a nil spline.
func (b *Builder) Build() (*BSpline, error) {
	start := time.Now()
	spline, err := b.build()
	coefficients := 0
	if spline != nil {
		coefficients = spline.NumCoefficients()
	}
	b.logger.LogBuild(b.table.NumSamples(), b.numVariables, coefficients, time.Since(start), err)
	if err != nil {
		return nil, splineErrorf("Builder.Build", err)
	}

	return spline, nil
}

func (b *Builder) build() (*BSpline, error) {
	d := b.numVariables
	degrees := b.resolvedDegrees()
	if b.numBasis != nil {
		for k := 0; k < d; k++ {
			if b.numBasis[k] < degrees[k]+1 {
				return nil, fmt.Errorf("dim %d: %d basis functions < degree+1 = %d: %w",
					k, b.numBasis[k], degrees[k]+1, ErrInvalidConfig)
			}
		}
	}

	knots := make([][]float64, d)
	for k := 0; k < d; k++ {
		values, err := b.table.Column(k)
		if err != nil {
			return nil, err
		}
		m := 0
		if b.numBasis != nil {
			m = b.numBasis[k]
		}
		knots[k], err = ComputeKnotVector(values, degrees[k], m, b.spacing, b.maxSegments)
		b.logger.LogKnots(k, b.spacing, degrees[k], len(knots[k]), err)
		if err != nil {
			return nil, fmt.Errorf("dim %d: %w", k, err)
		}
	}

	tb, err := newTensorBasis(degrees, knots)
	if err != nil {
		return nil, err
	}
	phi, active, err := assemble(tb, b.table.Inputs(), b.workers)
	if err != nil {
		b.logger.LogAssembly(b.table.NumSamples(), tb.numCols, 0, 0, b.workers, err)
		return nil, err
	}
	b.logger.LogAssembly(phi.Rows(), phi.Cols(), phi.NNZ(), int(active.GetCardinality()), b.workers, nil)

	res, err := solveCoefficients(solveRequest{
		phi:       phi,
		active:    active,
		y:         b.table.Outputs(),
		numBasis:  tb.numBasis,
		smoothing: b.smoothing,
		alpha:     b.alpha,
	})
	if err != nil {
		b.logger.LogSolve(b.smoothing, b.alpha, tb.numCols, err)
		return nil, err
	}
	b.logger.LogSolve(res.method, b.alpha, tb.numCols, nil)

	return &BSpline{basis: tb, coeffs: res.coeffs}, nil
}
