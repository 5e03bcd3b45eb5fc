// SPDX-License-Identifier: MIT

// Package matrix - Sparse storage (CSR) for design matrices.
//
// Purpose:
//   - Store tall, thin, mostly-zero matrices (one row per sample, at most a
//     handful of non-zeros per row) in compressed sparse row form.
//   - Provide exactly the products a least-squares solver needs: A·x, Aᵗ·y and AᵗA.
//
// Contract:
//   - A Sparse is immutable once built. There is no Set; build a new one instead.
//   - Within a row, column indices are strictly increasing (duplicates summed at build).
//   - Explicit zeros are dropped at build time.
//
// Complexity quicksheet:
//   - Build: O(nnz log nnz_row); At: O(log nnz_row); MulVec/TMulVec: O(nnz);
//     Gram: O(Σ nnz_row²) plus O(c²) for the dense result.

package matrix

import (
	"fmt"
	"math"
	"sort"
)

const (
	opSparseBuild = "SparseBuilder.Build"
	opSparseAt    = "Sparse.At"
	opSparseRow   = "Sparse.Row"
	opSparseMV    = "Sparse.MulVec"
	opSparseTMV   = "Sparse.TMulVec"
	opSparseGram  = "Sparse.Gram"
)

// triplet is one (row, col, value) entry awaiting compression.
type triplet struct {
	i, j int
	v    float64
}

// SparseBuilder accumulates triplets for a rows×cols matrix.
// Not safe for concurrent use; assemble per worker and Merge.
type SparseBuilder struct {
	rows, cols int
	entries    []triplet
	err        error // first ingestion error, reported by Build
}

// NewSparseBuilder returns a builder for a rows×cols matrix.
func NewSparseBuilder(rows, cols int) (*SparseBuilder, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &SparseBuilder{rows: rows, cols: cols}, nil
}

// Add records value v at (i, j). Repeated coordinates are summed by Build.
// Out-of-range or non-finite entries are remembered and reported by Build.
func (b *SparseBuilder) Add(i, j int, v float64) {
	if b.err != nil {
		return
	}
	if i < 0 || i >= b.rows || j < 0 || j >= b.cols {
		b.err = fmt.Errorf("(%d,%d): %w", i, j, ErrOutOfRange)
		return
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		b.err = fmt.Errorf("(%d,%d): %w", i, j, ErrNaNInf)
		return
	}
	b.entries = append(b.entries, triplet{i: i, j: j, v: v})
}

// Merge appends all entries of other, which must have the same shape.
func (b *SparseBuilder) Merge(other *SparseBuilder) error {
	if other == nil {
		return ErrNilMatrix
	}
	if other.rows != b.rows || other.cols != b.cols {
		return ErrDimensionMismatch
	}
	if other.err != nil && b.err == nil {
		b.err = other.err
	}
	b.entries = append(b.entries, other.entries...)

	return nil
}

// Build compresses the triplets into CSR.
//
// Implementation:
//   - Stage 1: stable sort by (row, col).
//   - Stage 2: sum duplicate coordinates, drop exact zeros, fill rowPtr.
//
// Errors:
//   - First ingestion error recorded by Add/Merge (ErrOutOfRange, ErrNaNInf).
//
// Complexity:
//   - Time O(nnz log nnz), Space O(nnz + rows).
func (b *SparseBuilder) Build() (*Sparse, error) {
	if b.err != nil {
		return nil, matrixErrorf(opSparseBuild, b.err)
	}
	entries := make([]triplet, len(b.entries))
	copy(entries, b.entries)
	sort.SliceStable(entries, func(x, y int) bool {
		if entries[x].i != entries[y].i {
			return entries[x].i < entries[y].i
		}
		return entries[x].j < entries[y].j
	})

	s := &Sparse{
		rows:   b.rows,
		cols:   b.cols,
		rowPtr: make([]int, b.rows+1),
		colInd: make([]int, 0, len(entries)),
		values: make([]float64, 0, len(entries)),
	}
	var k int
	for k < len(entries) {
		e := entries[k]
		sum := e.v
		k++
		for k < len(entries) && entries[k].i == e.i && entries[k].j == e.j {
			sum += entries[k].v
			k++
		}
		if sum == 0 {
			continue
		}
		s.colInd = append(s.colInd, e.j)
		s.values = append(s.values, sum)
		s.rowPtr[e.i+1]++
	}
	for i := 0; i < b.rows; i++ {
		s.rowPtr[i+1] += s.rowPtr[i]
	}

	return s, nil
}

// Sparse is an immutable CSR matrix.
type Sparse struct {
	rows, cols int
	rowPtr     []int     // len rows+1; row i occupies [rowPtr[i], rowPtr[i+1])
	colInd     []int     // column index per stored value
	values     []float64 // stored non-zeros
}

// Rows returns the row count.
func (s *Sparse) Rows() int { return s.rows }

// Cols returns the column count.
func (s *Sparse) Cols() int { return s.cols }

// NNZ returns the number of stored non-zeros.
func (s *Sparse) NNZ() int { return len(s.values) }

// RowNNZ returns the number of stored non-zeros in row i (0 when out of range).
func (s *Sparse) RowNNZ(i int) int {
	if i < 0 || i >= s.rows {
		return 0
	}

	return s.rowPtr[i+1] - s.rowPtr[i]
}

// At returns the element at (i, j); absent entries read as 0.
func (s *Sparse) At(i, j int) (float64, error) {
	if i < 0 || i >= s.rows || j < 0 || j >= s.cols {
		return 0, fmt.Errorf("%s(%d,%d): %w", opSparseAt, i, j, ErrOutOfRange)
	}
	lo, hi := s.rowPtr[i], s.rowPtr[i+1]
	k := sort.SearchInts(s.colInd[lo:hi], j) + lo
	if k < hi && s.colInd[k] == j {
		return s.values[k], nil
	}

	return 0, nil
}

// Row returns copies of the column indices and values stored in row i.
func (s *Sparse) Row(i int) ([]int, []float64, error) {
	if i < 0 || i >= s.rows {
		return nil, nil, fmt.Errorf("%s(%d): %w", opSparseRow, i, ErrOutOfRange)
	}
	lo, hi := s.rowPtr[i], s.rowPtr[i+1]
	cols := make([]int, hi-lo)
	vals := make([]float64, hi-lo)
	copy(cols, s.colInd[lo:hi])
	copy(vals, s.values[lo:hi])

	return cols, vals, nil
}

// ColumnsUsed reports, for each column, whether any row stores a value in it.
func (s *Sparse) ColumnsUsed() []bool {
	used := make([]bool, s.cols)
	for _, j := range s.colInd {
		used[j] = true
	}

	return used
}

// MulVec computes y = A·x.
// Complexity: O(nnz).
func (s *Sparse) MulVec(x []float64) ([]float64, error) {
	if err := ValidateVecLen(x, s.cols); err != nil {
		return nil, matrixErrorf(opSparseMV, err)
	}
	y := make([]float64, s.rows)
	var i, k int
	var acc float64
	for i = 0; i < s.rows; i++ {
		acc = ZeroSum
		for k = s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			acc += s.values[k] * x[s.colInd[k]]
		}
		y[i] = acc
	}

	return y, nil
}

// TMulVec computes z = Aᵗ·y without forming Aᵗ.
// Complexity: O(nnz).
func (s *Sparse) TMulVec(y []float64) ([]float64, error) {
	if err := ValidateVecLen(y, s.rows); err != nil {
		return nil, matrixErrorf(opSparseTMV, err)
	}
	z := make([]float64, s.cols)
	var i, k int
	var yi float64
	for i = 0; i < s.rows; i++ {
		yi = y[i]
		if yi == 0 {
			continue
		}
		for k = s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			z[s.colInd[k]] += s.values[k] * yi
		}
	}

	return z, nil
}

// Gram returns the dense cols×cols matrix AᵗA.
//
// Implementation:
//   - Stage 1: allocate Dense(cols, cols).
//   - Stage 2: for every row, add the outer product of its non-zeros.
//
// Behavior highlights:
//   - Exactly symmetric: (a,b) and (b,a) receive identical products in the same order.
//
// Complexity:
//   - Time O(Σ nnz_row²), Space O(cols²).
func (s *Sparse) Gram() (*Dense, error) {
	g, err := NewDense(s.cols, s.cols)
	if err != nil {
		return nil, matrixErrorf(opSparseGram, err)
	}
	var i, a, b, lo, hi, ca int
	var va float64
	for i = 0; i < s.rows; i++ {
		lo, hi = s.rowPtr[i], s.rowPtr[i+1]
		for a = lo; a < hi; a++ {
			ca = s.colInd[a] * s.cols
			va = s.values[a]
			for b = lo; b < hi; b++ {
				g.data[ca+s.colInd[b]] += va * s.values[b]
			}
		}
	}

	return g, nil
}

// ToDense materializes the matrix; intended for tests and small diagnostics.
func (s *Sparse) ToDense() (*Dense, error) {
	d, err := NewDense(s.rows, s.cols)
	if err != nil {
		return nil, err
	}
	for i := 0; i < s.rows; i++ {
		for k := s.rowPtr[i]; k < s.rowPtr[i+1]; k++ {
			d.data[i*s.cols+s.colInd[k]] = s.values[k]
		}
	}

	return d, nil
}
