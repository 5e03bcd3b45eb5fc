// SPDX-License-Identifier: MIT
// Package: lvspline/bspline
//
// knots.go - clamped knot vectors from one dimension of sample values.
//
// Every policy works on the distinct sorted values u[0..n-1] and returns a
// vector of length m+p+1 whose first and last values are repeated exactly p+1
// times and whose interior knots lie strictly inside (u[0], u[n-1]).

package bspline

import (
	"fmt"
	"math"

	"github.com/katalvlaran/lvspline/datatable"
)

const opKnots = "ComputeKnotVector"

// ComputeKnotVector returns the clamped knot vector for one dimension.
//
// Inputs:
//   - values: sample values of this dimension (any order, duplicates allowed).
//   - degree: polynomial degree p in [0, MaxDegree].
//   - numBasis: requested basis count m; 0 selects the sample-driven default.
//   - spacing: knot placement policy.
//   - maxSegments: bucket cap of Experimental spacing when numBasis is 0.
//
// Policies (n distinct values):
//   - AsSampled, m == n (default): moving average of window p+2 over the
//     distinct values gives n-p-1 interior knots.
//   - AsSampled, m < n: averaged placement; interior knot j sits at the
//     fractional position j·n/(m-p) of the distinct values.
//   - Equidistant: m-p-1 interior knots uniformly on [u[0], u[n-1]]; default m = n.
//   - Experimental: the distinct values are split into ns buckets (ns = n-p
//     capped by maxSegments, or m-p when m is given); one interior knot
//     halfway between neighbouring buckets.
//
// Errors:
//   - ErrInvalidConfig: degree out of range, 0 < numBasis < degree+1,
//     unknown spacing, maxSegments < 1, non-finite values.
//   - ErrInsufficientData: fewer than max(p+1, 2) distinct values, or a
//     requested m that the distinct values cannot support (AsSampled or
//     Experimental with m > n).
//
// Complexity:
//   - Time O(n log n) for the distinct-value sort, O(n + m) afterwards.
func ComputeKnotVector(values []float64, degree, numBasis int, spacing KnotSpacing, maxSegments int) ([]float64, error) {
	switch {
	case degree < 0 || degree > MaxDegree:
		return nil, splineErrorf(opKnots, fmt.Errorf("degree %d not in [0,%d]: %w", degree, MaxDegree, ErrInvalidConfig))
	case numBasis < 0 || (numBasis > 0 && numBasis < degree+1):
		return nil, splineErrorf(opKnots, fmt.Errorf("%d basis functions < degree+1 = %d: %w", numBasis, degree+1, ErrInvalidConfig))
	case !spacing.valid():
		return nil, splineErrorf(opKnots, fmt.Errorf("%v: %w", spacing, ErrInvalidConfig))
	case maxSegments < 1:
		return nil, splineErrorf(opKnots, fmt.Errorf("max segments %d: %w", maxSegments, ErrInvalidConfig))
	}
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, splineErrorf(opKnots, fmt.Errorf("non-finite sample value: %w", ErrInvalidConfig))
		}
	}

	u := datatable.UniqueSorted(values)
	n, p := len(u), degree
	if need := max(p+1, 2); n < need {
		return nil, splineErrorf(opKnots, fmt.Errorf("%d distinct values, need %d for degree %d: %w", n, need, p, ErrInsufficientData))
	}

	var interior []float64
	switch spacing {
	case AsSampled:
		m := numBasis
		if m == 0 {
			m = n
		}
		switch {
		case m > n:
			return nil, splineErrorf(opKnots, fmt.Errorf("%d basis functions from %d distinct values: %w", m, n, ErrInsufficientData))
		case m == n:
			interior = movingAverageKnots(u, p)
		default:
			interior = averagedKnots(u, p, m)
		}
	case Equidistant:
		m := numBasis
		if m == 0 {
			m = n
		}
		interior = equidistantKnots(u[0], u[n-1], p, m)
	case Experimental:
		ns := n - p
		if numBasis > 0 {
			if numBasis-p > ns {
				return nil, splineErrorf(opKnots, fmt.Errorf("%d segments from %d distinct values: %w", numBasis-p, n, ErrInsufficientData))
			}
			ns = numBasis - p
		} else if ns > maxSegments {
			ns = maxSegments
		}
		interior = bucketKnots(u, ns)
	}

	return clampKnots(u[0], u[n-1], p, interior), nil
}

// movingAverageKnots returns n-p-1 interior knots, each the mean of p+2
// consecutive distinct values.
func movingAverageKnots(u []float64, p int) []float64 {
	n, w := len(u), p+2
	out := make([]float64, n-p-1)
	for i := range out {
		var sum float64
		for j := 0; j < w; j++ {
			sum += u[i+j]
		}
		out[i] = sum / float64(w)
	}

	return out
}

// averagedKnots returns m-p-1 interior knots for m < len(u) basis functions.
func averagedKnots(u []float64, p, m int) []float64 {
	n := len(u)
	d := float64(n) / float64(m-p)
	out := make([]float64, m-p-1)
	for j := 1; j <= len(out); j++ {
		pos := float64(j) * d
		i := int(math.Floor(pos))
		a := pos - float64(i)
		out[j-1] = (1-a)*u[i-1] + a*u[i]
	}

	return out
}

// equidistantKnots returns m-p-1 interior knots uniformly spaced on [lo, hi].
func equidistantKnots(lo, hi float64, p, m int) []float64 {
	segments := m - p
	out := make([]float64, segments-1)
	for j := 1; j < segments; j++ {
		out[j-1] = lo + (hi-lo)*float64(j)/float64(segments)
	}

	return out
}

// bucketKnots splits u into ns contiguous buckets (the first len(u) mod ns
// buckets one value larger) and returns the ns-1 boundary midpoints.
func bucketKnots(u []float64, ns int) []float64 {
	w := len(u) / ns
	res := len(u) - w*ns
	out := make([]float64, 0, ns-1)
	index := 0
	for b := 0; b < ns-1; b++ {
		index += w
		if b < res {
			index++
		}
		out = append(out, (u[index-1]+u[index])/2)
	}

	return out
}

// clampKnots wraps interior with p+1 copies of lo and hi.
func clampKnots(lo, hi float64, p int, interior []float64) []float64 {
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

// IsClampedKnotVector reports whether knots is a valid clamped knot vector
// for degree p: finite, non-decreasing, at least 2(p+1) long, a non-empty
// domain, and first and last values repeated exactly p+1 times.
func IsClampedKnotVector(knots []float64, p int) bool {
	n := len(knots)
	if p < 0 || n < 2*(p+1) {
		return false
	}
	for i, v := range knots {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
		if i > 0 && v < knots[i-1] {
			return false
		}
	}
	lo, hi := knots[0], knots[n-1]
	if !(lo < hi) {
		return false
	}
	for i := 0; i <= p; i++ {
		if knots[i] != lo || knots[n-1-i] != hi {
			return false
		}
	}

	return knots[p+1] != lo && knots[n-p-2] != hi
}
