// SPDX-License-Identifier: MIT

// Package datatable holds scattered samples for surrogate fitting.
//
// A Table is an ordered list of (input vector, scalar output) samples with a
// fixed number of input variables. Inputs and outputs must be finite. By
// default a second sample at an existing input is rejected with
// ErrDuplicateSample; WithAllowDuplicates keeps it.
//
//	t, _ := datatable.New(2)
//	_ = t.Add([]float64{0, 0}, 1)
//	_ = t.Add([]float64{1, 0}, 2)
//	xs, _ := t.UniqueSorted(0) // [0 1]
//
// ReadCSV and WriteCSV move tables through CSV, last column = output.
package datatable
