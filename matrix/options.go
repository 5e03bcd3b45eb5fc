// SPDX-License-Identifier: MIT

// Package matrix: functional configuration for the linear solvers and the
// numeric policy. This file defines:
//   - Option / Options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that enforces invariants.
//
// Design goals:
//   - Deterministic behavior: no global state, no implicit randomness.
//   - No dead switches: each flag impacts behavior and is covered by tests.
//   - Safe by construction: panic only on invalid parameters (programmer error).
//
// Notes:
//   - Pivot tolerance is relative: a pivot p is treated as zero when
//     |p| <= eps * max|A[i,j]|. A zero matrix is always singular.
//   - Rank tolerance is relative to the largest singular value.
package matrix

import "math"

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultEpsilon is the relative pivot tolerance of the LU solve.
	DefaultEpsilon = 1e-13

	// DefaultRankTolerance is the relative singular-value cutoff of SolveRankAware.
	DefaultRankTolerance = 1e-11

	// DefaultValidateNaNInf toggles strict finite-value validation on ingestion and Set.
	DefaultValidateNaNInf = true
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicEpsilonInvalid = "matrix: WithEpsilon: eps must be finite, non-negative"
	panicRankTolInvalid = "matrix: WithRankTolerance: tol must be finite, non-negative"
)

// Option mutates internal options. Safe to apply repeatedly (idempotent).
// Constructors MUST panic only on nonsensical values (programmer error).
type Option func(*Options)

// Options stores the effective configuration after applying Option setters.
// Fields are unexported; public entry points accept `...Option`.
type Options struct {
	eps            float64 // relative pivot tolerance; DefaultEpsilon
	rankTol        float64 // relative singular value cutoff; DefaultRankTolerance
	validateNaNInf bool    // reject non-finite inputs; DefaultValidateNaNInf
}

// WithEpsilon sets the relative pivot tolerance used by LUFactor/Solve.
//
// Implementation:
//   - Stage 1: validate eps is finite and ≥ 0 (panic otherwise).
//   - Stage 2: return a setter that writes eps into Options.
//
// Complexity:
//   - Time O(1), Space O(1).
//
// AI-Hints:
//   - 0 restores the strict "exact zero pivot" behavior.
func WithEpsilon(eps float64) Option {
	if math.IsNaN(eps) || math.IsInf(eps, 0) || eps < 0 {
		panic(panicEpsilonInvalid)
	}

	return func(o *Options) { o.eps = eps }
}

// WithRankTolerance sets the relative singular-value cutoff used by SolveRankAware.
// Panics on negative or non-finite values.
func WithRankTolerance(tol float64) Option {
	if math.IsNaN(tol) || math.IsInf(tol, 0) || tol < 0 {
		panic(panicRankTolInvalid)
	}

	return func(o *Options) { o.rankTol = tol }
}

// WithValidateNaNInf enables finite-value validation of solver inputs.
func WithValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = true }
}

// WithNoValidateNaNInf disables finite-value validation of solver inputs.
func WithNoValidateNaNInf() Option {
	return func(o *Options) { o.validateNaNInf = false }
}

// NewMatrixOptions resolves user options on top of the defaults.
func NewMatrixOptions(opts ...Option) Options {
	return gatherOptions(opts...)
}

// defaultOptions returns the documented defaults.
func defaultOptions() Options {
	return Options{
		eps:            DefaultEpsilon,
		rankTol:        DefaultRankTolerance,
		validateNaNInf: DefaultValidateNaNInf,
	}
}

// gatherOptions applies user options in order over the defaults; nil options
// are skipped.
func gatherOptions(user ...Option) Options {
	o := defaultOptions()
	for _, opt := range user {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// Epsilon reports the resolved pivot tolerance.
func (o Options) Epsilon() float64 { return o.eps }

// RankTolerance reports the resolved rank cutoff.
func (o Options) RankTolerance() float64 { return o.rankTol }
