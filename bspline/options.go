// SPDX-License-Identifier: MIT
// Package: lvspline/bspline
//
// options.go - functional options for NewBuilder.
//
// Each WithX routes through the matching Builder setter, so an option is
// validated exactly like the setter and NewBuilder reports the first failure
// as an error instead of panicking.

package bspline

// Option configures a Builder during NewBuilder.
type Option func(*Builder) error

// setter adapts a Builder method value to an Option.
func setter[T any](v T, set func(*Builder, T) (*Builder, error)) Option {
	return func(b *Builder) error {
		_, err := set(b, v)
		return err
	}
}

// WithAlpha is Builder.Alpha as an option.
func WithAlpha(a float64) Option { return setter(a, (*Builder).Alpha) }

// WithDegree is Builder.Degree as an option.
func WithDegree(p int) Option { return setter(p, (*Builder).Degree) }

// WithDegrees is Builder.Degrees as an option. ps is copied when applied.
func WithDegrees(ps []int) Option { return setter(ps, (*Builder).Degrees) }

// WithNumBasisFunctions is Builder.NumBasisFunctions as an option.
func WithNumBasisFunctions(n int) Option { return setter(n, (*Builder).NumBasisFunctions) }

// WithNumBasisFunctionsPerDim is Builder.NumBasisFunctionsPerDim as an option.
func WithNumBasisFunctionsPerDim(ns []int) Option {
	return setter(ns, (*Builder).NumBasisFunctionsPerDim)
}

// WithKnotSpacing is Builder.KnotSpacing as an option.
func WithKnotSpacing(s KnotSpacing) Option { return setter(s, (*Builder).KnotSpacing) }

// WithSmoothing is Builder.Smoothing as an option.
func WithSmoothing(s Smoothing) Option { return setter(s, (*Builder).Smoothing) }

// WithMaxSegments is Builder.MaxSegments as an option.
func WithMaxSegments(n int) Option { return setter(n, (*Builder).MaxSegments) }

// WithParallelism is Builder.Parallelism as an option.
func WithParallelism(n int) Option { return setter(n, (*Builder).Parallelism) }

// WithLogger is Builder.Logger as an option; nil disables logging.
func WithLogger(l *Logger) Option { return setter(l, (*Builder).Logger) }
