// SPDX-License-Identifier: MIT
// Package: lvspline/bspline
//
// types.go - policy enums and package constants.

package bspline

import (
	"fmt"
	"strings"
)

const (
	// MaxDegree is the largest supported polynomial degree per dimension.
	MaxDegree = 5

	// DefaultDegree is used when no degree was configured.
	DefaultDegree = 3

	// DefaultMaxSegments caps the bucket count of Experimental spacing.
	DefaultMaxSegments = 10

	// DefaultParallelism is the default number of assembly workers.
	DefaultParallelism = 1
)

// KnotSpacing selects how interior knots follow the samples.
type KnotSpacing int

const (
	// AsSampled places knots by averaging the distinct sample values, so knot
	// density mimics sample density.
	AsSampled KnotSpacing = iota
	// Equidistant places interior knots uniformly on [min, max].
	Equidistant
	// Experimental partitions the distinct values into buckets and puts a knot
	// between neighbouring buckets.
	Experimental
)

var knotSpacingNames = [...]string{
	AsSampled:    "as_sampled",
	Equidistant:  "equidistant",
	Experimental: "experimental",
}

// String implements fmt.Stringer.
func (s KnotSpacing) String() string {
	if s.valid() {
		return knotSpacingNames[s]
	}

	return fmt.Sprintf("KnotSpacing(%d)", int(s))
}

func (s KnotSpacing) valid() bool { return s >= AsSampled && s <= Experimental }

// ParseKnotSpacing maps a case-insensitive name ("as_sampled", "sample",
// "equidistant", "experimental") to its KnotSpacing.
func ParseKnotSpacing(name string) (KnotSpacing, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "as_sampled", "sample", "sampled":
		return AsSampled, nil
	case "equidistant":
		return Equidistant, nil
	case "experimental", "buckets":
		return Experimental, nil
	}

	return 0, splineErrorf("ParseKnotSpacing", fmt.Errorf("%q: %w", name, ErrInvalidConfig))
}

// Smoothing selects the coefficient-solve formulation.
type Smoothing int

const (
	// None solves the ordinary least-squares normal equations.
	None Smoothing = iota
	// Regularization adds alpha·I (ridge) to the normal equations.
	Regularization
	// PSpline adds alpha·DᵗD, D the second-order difference operator over the
	// coefficient grid.
	PSpline
)

var smoothingNames = [...]string{
	None:           "none",
	Regularization: "regularization",
	PSpline:        "pspline",
}

// String implements fmt.Stringer.
func (s Smoothing) String() string {
	if s.valid() {
		return smoothingNames[s]
	}

	return fmt.Sprintf("Smoothing(%d)", int(s))
}

func (s Smoothing) valid() bool { return s >= None && s <= PSpline }

// ParseSmoothing maps a case-insensitive name ("none", "regularization"/"ridge",
// "pspline"/"p-spline") to its Smoothing.
func ParseSmoothing(name string) (Smoothing, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "ols":
		return None, nil
	case "regularization", "ridge":
		return Regularization, nil
	case "pspline", "p-spline":
		return PSpline, nil
	}

	return 0, splineErrorf("ParseSmoothing", fmt.Errorf("%q: %w", name, ErrInvalidConfig))
}
