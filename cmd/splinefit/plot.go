// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"image/color"

	"github.com/katalvlaran/lvspline/bspline"
	"github.com/katalvlaran/lvspline/datatable"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const plotPoints = 400

// savePlot renders the samples and the fitted curve of a one-variable spline
// to a PNG (or any format gonum/plot infers from the extension).
func savePlot(path string, s *bspline.BSpline, tbl *datatable.Table) error {
	if s.NumVariables() != 1 {
		return fmt.Errorf("plot: %d input variables, only 1 is supported", s.NumVariables())
	}

	samples := make(plotter.XYs, 0, tbl.NumSamples())
	for _, smp := range tbl.Samples() {
		samples = append(samples, plotter.XY{X: smp.X[0], Y: smp.Y})
	}

	lo, hi := s.DomainLowerBound()[0], s.DomainUpperBound()[0]
	curve := make(plotter.XYs, plotPoints)
	for i := range curve {
		x := lo + (hi-lo)*float64(i)/float64(plotPoints-1)
		if i == plotPoints-1 {
			x = hi
		}
		y, err := s.Eval([]float64{x})
		if err != nil {
			return fmt.Errorf("plot: %w", err)
		}
		curve[i] = plotter.XY{X: x, Y: y}
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("B-spline fit (degree %d, %d coefficients)", s.Degrees()[0], s.NumCoefficients())
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	pts, err := plotter.NewScatter(samples)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	pts.GlyphStyle.Radius = vg.Points(2)
	pts.GlyphStyle.Color = color.RGBA{R: 200, G: 60, B: 40, A: 255}

	line, err := plotter.NewLine(curve)
	if err != nil {
		return fmt.Errorf("plot: %w", err)
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = color.RGBA{R: 30, G: 90, B: 200, A: 255}

	p.Add(pts, line)
	p.Legend.Add("samples", pts)
	p.Legend.Add("spline", line)
	p.Legend.Top = true

	if err = p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("plot: %w", err)
	}

	return nil
}
