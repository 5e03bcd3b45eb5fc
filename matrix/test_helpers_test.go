// SPDX-License-Identifier: MIT
// Package matrix_test contains test helpers
//
// Purpose:
//   • Provide small, deterministic test fixtures and utilities for kernels.
//   • Keep all data finite and well-formed to avoid numeric-policy interference.

package matrix_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/katalvlaran/lvspline/matrix"
)

// tol is the default absolute tolerance used for floating-point comparisons.
const tol = 1e-9

// hide WRAPS any Matrix to hide its concrete type from type assertions.
// Use hide{X} in tests to force non-*Dense (fallback) paths.
type hide struct{ matrix.Matrix }

// MustDense ALLOCATES an r×c *Dense or fails the test (fatal on error).
func MustDense(t *testing.T, r, c int) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDense(r, c)
	if err != nil {
		t.Fatalf("NewDense(%d,%d): %v", r, c, err)
	}

	return m
}

// NewFilledDense BUILDS r×c *Dense from a row-major flat slice.
func NewFilledDense(t *testing.T, r, c int, vals []float64) *matrix.Dense {
	t.Helper()
	m, err := matrix.NewDenseFrom(r, c, vals)
	if err != nil {
		t.Fatalf("NewDenseFrom(%d,%d): %v", r, c, err)
	}

	return m
}

// MustAt READS m[i,j] or fails the test.
func MustAt(t *testing.T, m matrix.Matrix, i, j int) float64 {
	t.Helper()
	v, err := m.At(i, j)
	if err != nil {
		t.Fatalf("At(%d,%d): %v", i, j, err)
	}

	return v
}

// MustSet WRITES m[i,j] or fails the test.
func MustSet(t *testing.T, m matrix.Matrix, i, j int, v float64) {
	t.Helper()
	if err := m.Set(i, j, v); err != nil {
		t.Fatalf("Set(%d,%d): %v", i, j, err)
	}
}

// RandomFill FILLS a Matrix with deterministic U(-1,1) values by seed.
func RandomFill(t *testing.T, m matrix.Matrix, seed int64) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < m.Rows(); i++ {
		for j := 0; j < m.Cols(); j++ {
			MustSet(t, m, i, j, rng.Float64()*2-1)
		}
	}
}

// RandomSPD BUILDS a well-conditioned symmetric positive definite n×n matrix
// as BᵗB + n·I for a seeded random B.
func RandomSPD(t *testing.T, n int, seed int64) *matrix.Dense {
	t.Helper()
	b := MustDense(t, n, n)
	RandomFill(t, b, seed)
	bt, err := matrix.Transpose(b)
	if err != nil {
		t.Fatalf("Transpose: %v", err)
	}
	p, err := matrix.Mul(bt, b)
	if err != nil {
		t.Fatalf("Mul: %v", err)
	}
	d := p.(*matrix.Dense)
	if err = matrix.AddDiagonalInPlace(d, float64(n)); err != nil {
		t.Fatalf("AddDiagonalInPlace: %v", err)
	}

	return d
}

// CompareClose FAILS the test when any |got[i]-want[i]| > eps.
func CompareClose(t *testing.T, want, got []float64, eps float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("length mismatch: want %d, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(want[i]-got[i]) > eps {
			t.Fatalf("index %d: want %g, got %g (eps %g)", i, want[i], got[i], eps)
		}
	}
}

// Identity BUILDS the n×n identity matrix.
func Identity(t *testing.T, n int) *matrix.Dense {
	t.Helper()
	m := MustDense(t, n, n)
	for i := 0; i < n; i++ {
		MustSet(t, m, i, i, 1)
	}

	return m
}
