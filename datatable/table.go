// SPDX-License-Identifier: MIT
// Package: lvspline/datatable
//
// table.go - Table: an ordered set of (input vector, scalar output) samples.
//
// Concurrency:
//   • All methods are safe for concurrent use (single sync.RWMutex).
//   • Accessors return copies; callers never alias internal storage.

package datatable

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Sample is one observation: input vector X and output Y.
type Sample struct {
	X []float64
	Y float64
}

// Table stores samples with a fixed input dimensionality.
// The dimensionality is fixed by New(d) with d > 0, or by the first sample
// when New(0) was used.
type Table struct {
	mu              sync.RWMutex
	dim             int
	allowDuplicates bool
	samples         []Sample
	keys            map[string]int // input key -> multiplicity
}

// New returns an empty table with d input variables (0 = fixed by the first sample).
func New(d int, opts ...Option) (*Table, error) {
	if d < 0 {
		return nil, tableErrorf("New", ErrInvalidDimensions)
	}
	cfg := newTableConfig(opts...)

	return &Table{
		dim:             d,
		allowDuplicates: cfg.allowDuplicates,
		keys:            make(map[string]int),
	}, nil
}

// inputKey encodes x bit-exactly; -0 is folded onto +0.
func inputKey(x []float64) string {
	buf := make([]byte, 0, 8*len(x))
	for _, v := range x {
		if v == 0 {
			v = 0
		}
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}

	return string(buf)
}

// Add appends the sample (x, y). x is copied.
//
// Errors:
//   - ErrDimensionMismatch: len(x) differs from the table dimensionality, or x is empty.
//   - ErrNaNInf: x or y is not finite.
//   - ErrDuplicateSample: x already present and duplicates are not allowed.
func (t *Table) Add(x []float64, y float64) error {
	if len(x) == 0 {
		return tableErrorf("Add", ErrDimensionMismatch)
	}
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return tableErrorf("Add", fmt.Errorf("x[%d]: %w", i, ErrNaNInf))
		}
	}
	if math.IsNaN(y) || math.IsInf(y, 0) {
		return tableErrorf("Add", fmt.Errorf("y: %w", ErrNaNInf))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.dim == 0 {
		t.dim = len(x)
	}
	if len(x) != t.dim {
		return tableErrorf("Add", fmt.Errorf("len(x)=%d, want %d: %w", len(x), t.dim, ErrDimensionMismatch))
	}
	key := inputKey(x)
	if t.keys[key] > 0 && !t.allowDuplicates {
		return tableErrorf("Add", fmt.Errorf("x=%v: %w", x, ErrDuplicateSample))
	}
	t.keys[key]++
	t.samples = append(t.samples, Sample{X: append([]float64(nil), x...), Y: y})

	return nil
}

// AddSample is Add(s.X, s.Y).
func (t *Table) AddSample(s Sample) error { return t.Add(s.X, s.Y) }

// NumSamples returns the number of stored samples.
func (t *Table) NumSamples() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.samples)
}

// NumVariables returns the input dimensionality (0 for an unfixed empty table).
func (t *Table) NumVariables() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.dim
}

// AllowsDuplicates reports the duplicate-input policy.
func (t *Table) AllowsDuplicates() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.allowDuplicates
}

// Sample returns a copy of sample i.
func (t *Table) Sample(i int) (Sample, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i < 0 || i >= len(t.samples) {
		return Sample{}, tableErrorf("Sample", fmt.Errorf("%d: %w", i, ErrOutOfRange))
	}
	s := t.samples[i]

	return Sample{X: append([]float64(nil), s.X...), Y: s.Y}, nil
}

// Samples returns a deep copy of all samples in insertion order.
func (t *Table) Samples() []Sample {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]Sample, len(t.samples))
	for i, s := range t.samples {
		out[i] = Sample{X: append([]float64(nil), s.X...), Y: s.Y}
	}

	return out
}

// Inputs returns a copy of every input vector in insertion order.
func (t *Table) Inputs() [][]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([][]float64, len(t.samples))
	for i, s := range t.samples {
		out[i] = append([]float64(nil), s.X...)
	}

	return out
}

// Outputs returns the outputs in insertion order.
func (t *Table) Outputs() []float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]float64, len(t.samples))
	for i, s := range t.samples {
		out[i] = s.Y
	}

	return out
}

// Column returns input variable k of every sample, in insertion order.
func (t *Table) Column(k int) ([]float64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if k < 0 || k >= t.dim {
		return nil, tableErrorf("Column", fmt.Errorf("%d: %w", k, ErrOutOfRange))
	}
	out := make([]float64, len(t.samples))
	for i, s := range t.samples {
		out[i] = s.X[k]
	}

	return out, nil
}

// UniqueSorted returns the distinct values of input variable k in ascending order.
func (t *Table) UniqueSorted(k int) ([]float64, error) {
	col, err := t.Column(k)
	if err != nil {
		return nil, tableErrorf("UniqueSorted", err)
	}

	return UniqueSorted(col), nil
}

// UniqueSorted returns the distinct values of values in ascending order.
// The input is not modified.
func UniqueSorted(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := append([]float64(nil), values...)
	sort.Float64s(out)
	w := 1
	for r := 1; r < len(out); r++ {
		if out[r] != out[w-1] {
			out[w] = out[r]
			w++
		}
	}

	return out[:w]
}

// Bounds returns the per-variable minimum and maximum input values.
func (t *Table) Bounds() (lower, upper []float64, err error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.samples) == 0 {
		return nil, nil, tableErrorf("Bounds", ErrEmptyTable)
	}
	lower = append([]float64(nil), t.samples[0].X...)
	upper = append([]float64(nil), t.samples[0].X...)
	for _, s := range t.samples[1:] {
		for k, v := range s.X {
			if v < lower[k] {
				lower[k] = v
			}
			if v > upper[k] {
				upper[k] = v
			}
		}
	}

	return lower, upper, nil
}

// IsGridComplete reports whether the distinct inputs form a full tensor grid:
// the product of per-variable distinct counts equals the number of distinct inputs.
// An empty table is not a grid.
func (t *Table) IsGridComplete() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if len(t.samples) == 0 {
		return false
	}
	distinct := make([]map[float64]struct{}, t.dim)
	for k := range distinct {
		distinct[k] = make(map[float64]struct{})
	}
	for _, s := range t.samples {
		for k, v := range s.X {
			if v == 0 {
				v = 0
			}
			distinct[k][v] = struct{}{}
		}
	}
	product := 1
	for _, set := range distinct {
		product *= len(set)
		if product > len(t.keys) {
			return false
		}
	}

	return product == len(t.keys)
}

// Clone returns an independent deep copy, including the duplicate policy.
func (t *Table) Clone() *Table {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c := &Table{
		dim:             t.dim,
		allowDuplicates: t.allowDuplicates,
		samples:         make([]Sample, len(t.samples)),
		keys:            make(map[string]int, len(t.keys)),
	}
	for i, s := range t.samples {
		c.samples[i] = Sample{X: append([]float64(nil), s.X...), Y: s.Y}
	}
	for k, n := range t.keys {
		c.keys[k] = n
	}

	return c
}
