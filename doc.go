// Package lvspline builds smooth surrogate models from scattered samples with
// tensor-product B-splines.
//
// 🚀 What is lvspline?
//
//	A pure-Go library that turns a table of (x, y) samples, x ∈ ℝᵈ, into an
//	immutable spline you can evaluate, differentiate and persist:
//		• Knot placement: as-sampled, equidistant or bucketed (experimental)
//		• Sparse design matrix assembly, optionally in parallel
//		• Coefficient solve: plain least squares, ridge, or P-spline smoothing
//		• Binary persistence with zstd / lz4 / s2 compression and checksums
//
// Under the hood, everything is organized under these subpackages:
//
//	bspline/     - Builder, BSpline, knot vectors, basis assembly, solver
//	datatable/   - thread-safe sample table with CSV import/export
//	matrix/      - dense LU, sparse CSR, gonum SVD and Cholesky solves
//	codec/       - framed binary encoding of splines and tables
//	cmd/splinefit - CLI: CSV in, spline file and optional PNG plot out
//
// Quick example:
//
//	tbl, _ := datatable.New(1)
//	for _, x := range []float64{0, 1, 2, 3} {
//		_ = tbl.Add([]float64{x}, x*x)
//	}
//	b, _ := bspline.NewBuilder(tbl, bspline.WithDegree(2))
//	s, _ := b.Build()
//	y, _ := s.Eval([]float64{1.5}) // 2.25
//
//	go get github.com/katalvlaran/lvspline/bspline
package lvspline
