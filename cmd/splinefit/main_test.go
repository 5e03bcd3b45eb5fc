// SPDX-License-Identifier: MIT
package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/katalvlaran/lvspline/codec"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, header string, rows [][]float64) string {
	t.Helper()
	var sb strings.Builder
	if header != "" {
		sb.WriteString(header + "\n")
	}
	for _, r := range rows {
		parts := make([]string, len(r))
		for i, v := range r {
			parts[i] = fmt.Sprint(v)
		}
		sb.WriteString(strings.Join(parts, ",") + "\n")
	}
	path := filepath.Join(t.TempDir(), "samples.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o600))

	return path
}

func TestRun_FitSavePlot(t *testing.T) {
	t.Parallel()
	var rows [][]float64
	for i := 0; i < 25; i++ {
		x := float64(i) / 4
		rows = append(rows, []float64{x, math.Sin(x)})
	}
	in := writeCSV(t, "x,y", rows)
	dir := t.TempDir()
	out := filepath.Join(dir, "model.lvsp")
	png := filepath.Join(dir, "fit.png")

	var stdout, stderr bytes.Buffer
	err := run([]string{"-in", in, "-out", out, "-plot", png, "-compress", "lz4", "-v", "-json"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	require.Contains(t, stdout.String(), "samples=25 variables=1")
	require.Contains(t, stderr.String(), `"msg":"bspline built"`)
	require.Contains(t, stderr.String(), `"msg":"knot vector computed"`)

	s, err := codec.LoadBSpline(out)
	require.NoError(t, err)
	require.Equal(t, 1, s.NumVariables())
	v, err := s.Eval([]float64{1})
	require.NoError(t, err)
	require.InDelta(t, math.Sin(1), v, 1e-9)

	info, err := os.Stat(png)
	require.NoError(t, err)
	require.Positive(t, info.Size())
}

func TestRun_SmoothedSurface(t *testing.T) {
	t.Parallel()
	var rows [][]float64
	for i := 0; i < 6; i++ {
		for j := 0; j < 5; j++ {
			x, y := float64(i), float64(j)
			rows = append(rows, []float64{x, y, x*y + 0.1*math.Cos(3*x)})
		}
	}
	in := writeCSV(t, "", rows)

	var stdout, stderr bytes.Buffer
	err := run([]string{"-in", in, "-degree", "2", "-smoothing", "pspline", "-alpha", "0.5",
		"-spacing", "equidistant", "-workers", "3"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	require.Contains(t, stdout.String(), "variables=2 coefficients=30")
	require.Contains(t, stderr.String(), "bspline built")

	err = run([]string{"-in", in, "-plot", filepath.Join(t.TempDir(), "x.png")}, &stdout, &stderr)
	require.ErrorContains(t, err, "only 1 is supported")
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()
	in := writeCSV(t, "", [][]float64{{0, 0}, {1, 1}, {2, 4}, {3, 9}})
	var stdout, stderr bytes.Buffer

	require.Error(t, run(nil, &stdout, &stderr))
	require.Error(t, run([]string{"-in", in, "-spacing", "chebyshev"}, &stdout, &stderr))
	require.Error(t, run([]string{"-in", in, "-smoothing", "lasso"}, &stdout, &stderr))
	require.Error(t, run([]string{"-in", in, "-compress", "brotli"}, &stdout, &stderr))
	require.Error(t, run([]string{"-in", in, "-degree", "9"}, &stdout, &stderr))
	require.Error(t, run([]string{"-in", in, "-degree", "3", "-basis", "2"}, &stdout, &stderr))
	require.Error(t, run([]string{"-in", filepath.Join(t.TempDir(), "missing.csv")}, &stdout, &stderr))

	stdout.Reset()
	require.NoError(t, run([]string{"-in", in, "-degree", "2"}, &stdout, &stderr))
	require.Contains(t, stdout.String(), "coefficients=4")
}
