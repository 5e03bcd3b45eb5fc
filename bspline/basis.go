// SPDX-License-Identifier: MIT
// Package: lvspline/bspline
//
// basis.go - univariate B-spline basis (span search, Cox–de Boor values,
// first derivatives) and the tensor-product basis built on top of it.
//
// Conventions:
//   • A clamped knot vector for m basis functions of degree p has m+p+1 knots;
//     the domain is [knots[p], knots[m]].
//   • Tensor-product column index is mixed-radix over the per-dimension basis
//     indices, last dimension varying fastest.

package bspline

import (
	"fmt"
	"math"
	"sort"
)

// findSpan returns s in [p, m-1] with knots[s] <= x < knots[s+1]; the right
// end of the domain maps to the last non-empty span.
func findSpan(knots []float64, p, m int, x float64) int {
	if x >= knots[m] {
		s := m - 1
		for s > p && knots[s] == knots[s+1] {
			s--
		}
		return s
	}
	s := sort.Search(len(knots), func(i int) bool { return knots[i] > x }) - 1
	if s < p {
		s = p
	}
	if s > m-1 {
		s = m - 1
	}

	return s
}

// basisFuns writes the p+1 non-vanishing basis values N[span-p..span] at x
// into out (len(out) >= p+1).
//
// Implementation:
//   - Triangular Cox–de Boor recursion with left/right knot differences
//     (Piegl & Tiller, A2.2); O(p²) flops, no allocation.
func basisFuns(knots []float64, span, p int, x float64, out []float64) {
	var left, right [MaxDegree + 1]float64
	out[0] = 1
	var j, r int
	var saved, temp, den float64
	for j = 1; j <= p; j++ {
		left[j] = x - knots[span+1-j]
		right[j] = knots[span+j] - x
		saved = 0
		for r = 0; r < j; r++ {
			den = right[r+1] + left[j-r]
			temp = 0
			if den != 0 {
				temp = out[r] / den
			}
			out[r] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		out[j] = saved
	}
}

// basisDerivs writes the first derivatives of N[span-p..span] at x into out.
// dN_{i,p} = p/(u_{i+p}-u_i)·N_{i,p-1} - p/(u_{i+p+1}-u_{i+1})·N_{i+1,p-1}.
func basisDerivs(knots []float64, span, p int, x float64, out []float64) {
	for k := 0; k <= p; k++ {
		out[k] = 0
	}
	if p == 0 {
		return
	}
	var lower [MaxDegree + 1]float64
	basisFuns(knots, span, p-1, x, lower[:])

	fp := float64(p)
	var i int
	var den float64
	for k := 0; k <= p; k++ {
		i = span - p + k
		if k >= 1 {
			if den = knots[i+p] - knots[i]; den != 0 {
				out[k] += fp / den * lower[k-1]
			}
		}
		if k <= p-1 {
			if den = knots[i+p+1] - knots[i+1]; den != 0 {
				out[k] -= fp / den * lower[k]
			}
		}
	}
}

// tensorBasis is the evaluation skeleton of a spline: degrees and knots,
// without coefficients. It is immutable after construction.
type tensorBasis struct {
	degrees  []int
	knots    [][]float64
	numBasis []int
	strides  []int // strides[d-1] == 1
	numCols  int
}

// newTensorBasis validates degrees/knots and precomputes strides.
func newTensorBasis(degrees []int, knots [][]float64) (*tensorBasis, error) {
	d := len(degrees)
	if d == 0 || len(knots) != d {
		return nil, fmt.Errorf("%d degrees, %d knot vectors: %w", d, len(knots), ErrDimensionMismatch)
	}
	tb := &tensorBasis{
		degrees:  append([]int(nil), degrees...),
		knots:    make([][]float64, d),
		numBasis: make([]int, d),
		strides:  make([]int, d),
		numCols:  1,
	}
	for k := 0; k < d; k++ {
		p := degrees[k]
		if p < 0 || p > MaxDegree {
			return nil, fmt.Errorf("dim %d: degree %d: %w", k, p, ErrInvalidConfig)
		}
		if !IsClampedKnotVector(knots[k], p) {
			return nil, fmt.Errorf("dim %d: knot vector is not clamped for degree %d: %w", k, p, ErrInvalidConfig)
		}
		tb.knots[k] = append([]float64(nil), knots[k]...)
		tb.numBasis[k] = len(knots[k]) - p - 1
	}
	for k := d - 1; k >= 0; k-- {
		tb.strides[k] = tb.numCols
		if tb.numCols > math.MaxInt32/tb.numBasis[k] {
			return nil, fmt.Errorf("too many tensor-product basis functions: %w", ErrInvalidConfig)
		}
		tb.numCols *= tb.numBasis[k]
	}

	return tb, nil
}

func (tb *tensorBasis) dims() int { return len(tb.degrees) }

// lower/upper return the domain bounds of dimension k.
func (tb *tensorBasis) lower(k int) float64 { return tb.knots[k][tb.degrees[k]] }
func (tb *tensorBasis) upper(k int) float64 { return tb.knots[k][tb.numBasis[k]] }

// checkPoint verifies that x has the right length and lies inside the domain.
func (tb *tensorBasis) checkPoint(x []float64) error {
	if len(x) != tb.dims() {
		return fmt.Errorf("len(x)=%d, want %d: %w", len(x), tb.dims(), ErrDimensionMismatch)
	}
	for k, v := range x {
		if !(v >= tb.lower(k) && v <= tb.upper(k)) {
			return fmt.Errorf("x[%d]=%g not in [%g, %g]: %w", k, v, tb.lower(k), tb.upper(k), ErrOutOfDomain)
		}
	}

	return nil
}

// localBasis holds, per dimension, the span start and the p+1 local values.
type localBasis struct {
	start []int
	vals  [][MaxDegree + 1]float64
	ders  [][MaxDegree + 1]float64
}

// local evaluates the univariate bases at x (already validated).
func (tb *tensorBasis) local(x []float64, withDerivs bool) localBasis {
	d := tb.dims()
	lb := localBasis{
		start: make([]int, d),
		vals:  make([][MaxDegree + 1]float64, d),
	}
	if withDerivs {
		lb.ders = make([][MaxDegree + 1]float64, d)
	}
	for k := 0; k < d; k++ {
		p := tb.degrees[k]
		span := findSpan(tb.knots[k], p, tb.numBasis[k], x[k])
		lb.start[k] = span - p
		basisFuns(tb.knots[k], span, p, x[k], lb.vals[k][:])
		if withDerivs {
			basisDerivs(tb.knots[k], span, p, x[k], lb.ders[k][:])
		}
	}

	return lb
}

// forEachTerm visits every tensor-product combination of the local bases in
// increasing column order. idx[k] is the local offset in dimension k.
func (tb *tensorBasis) forEachTerm(lb localBasis, visit func(col int, idx []int)) {
	d := tb.dims()
	idx := make([]int, d)
	for {
		col := 0
		for k := 0; k < d; k++ {
			col += (lb.start[k] + idx[k]) * tb.strides[k]
		}
		visit(col, idx)

		// Mixed-radix increment, last dimension fastest.
		k := d - 1
		for ; k >= 0; k-- {
			idx[k]++
			if idx[k] <= tb.degrees[k] {
				break
			}
			idx[k] = 0
		}
		if k < 0 {
			return
		}
	}
}

// row appends the non-zero tensor-product basis values at x to cols/vals.
func (tb *tensorBasis) row(x []float64, cols []int, vals []float64) ([]int, []float64, error) {
	if err := tb.checkPoint(x); err != nil {
		return cols, vals, err
	}
	lb := tb.local(x, false)
	tb.forEachTerm(lb, func(col int, idx []int) {
		v := 1.0
		for k, i := range idx {
			v *= lb.vals[k][i]
		}
		if v != 0 {
			cols = append(cols, col)
			vals = append(vals, v)
		}
	})

	return cols, vals, nil
}

// gradient returns Σ_j c_j ∂B_j/∂x_k for every k.
func (tb *tensorBasis) gradient(x, coeffs []float64) ([]float64, error) {
	if err := tb.checkPoint(x); err != nil {
		return nil, err
	}
	d := tb.dims()
	lb := tb.local(x, true)
	grad := make([]float64, d)
	tb.forEachTerm(lb, func(col int, idx []int) {
		c := coeffs[col]
		if c == 0 {
			return
		}
		for k := 0; k < d; k++ {
			v := lb.ders[k][idx[k]]
			for j := 0; j < d && v != 0; j++ {
				if j != k {
					v *= lb.vals[j][idx[j]]
				}
			}
			grad[k] += c * v
		}
	})

	return grad, nil
}
