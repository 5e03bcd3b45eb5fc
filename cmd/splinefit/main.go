// SPDX-License-Identifier: MIT

// Command splinefit fits a tensor-product B-spline to CSV samples.
//
// The last CSV column is the output, every other column an input; an optional
// non-numeric header line is skipped. The fitted spline is written as a codec
// frame and the training RMSE is printed.
//
//	splinefit -in samples.csv -out model.lvsp -degree 3 -smoothing pspline -alpha 0.1
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/katalvlaran/lvspline/bspline"
	"github.com/katalvlaran/lvspline/codec"
	"github.com/katalvlaran/lvspline/datatable"
)

type config struct {
	in, out, plot string
	degree        int
	basis         int
	spacing       string
	smoothing     string
	alpha         float64
	workers       int
	compress      string
	duplicates    bool
	verbose       bool
	json          bool
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("splinefit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.in, "in", "", "input CSV (last column is the output)")
	fs.StringVar(&cfg.out, "out", "", "write the fitted spline to this file")
	fs.StringVar(&cfg.plot, "plot", "", "write a PNG of the fit (one input variable only)")
	fs.IntVar(&cfg.degree, "degree", bspline.DefaultDegree, "polynomial degree per variable")
	fs.IntVar(&cfg.basis, "basis", 0, "basis functions per variable (0 = from samples)")
	fs.StringVar(&cfg.spacing, "spacing", bspline.AsSampled.String(), "knot spacing: as_sampled, equidistant, experimental")
	fs.StringVar(&cfg.smoothing, "smoothing", bspline.None.String(), "smoothing: none, regularization, pspline")
	fs.Float64Var(&cfg.alpha, "alpha", 0, "smoothing weight")
	fs.IntVar(&cfg.workers, "workers", bspline.DefaultParallelism, "basis matrix assembly workers")
	fs.StringVar(&cfg.compress, "compress", "zstd", "spline file compression: none, zstd, lz4, s2")
	fs.BoolVar(&cfg.duplicates, "dup", false, "allow repeated input points")
	fs.BoolVar(&cfg.verbose, "v", false, "debug logging")
	fs.BoolVar(&cfg.json, "json", false, "JSON logs")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.in == "" {
		fs.Usage()
		return cfg, errors.New("-in is required")
	}

	return cfg, nil
}

func newLogger(cfg config, w io.Writer) *bspline.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.verbose {
		opts.Level = slog.LevelDebug
	}
	if cfg.json {
		return bspline.NewLogger(slog.NewJSONHandler(w, opts))
	}

	return bspline.NewLogger(slog.NewTextHandler(w, opts))
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	spacing, err := bspline.ParseKnotSpacing(cfg.spacing)
	if err != nil {
		return err
	}
	smoothing, err := bspline.ParseSmoothing(cfg.smoothing)
	if err != nil {
		return err
	}
	compression, err := codec.ParseCompression(cfg.compress)
	if err != nil {
		return err
	}

	f, err := os.Open(cfg.in)
	if err != nil {
		return err
	}
	var topts []datatable.Option
	if cfg.duplicates {
		topts = append(topts, datatable.WithAllowDuplicates())
	}
	tbl, err := datatable.ReadCSV(f, topts...)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.in, err)
	}

	opts := []bspline.Option{
		bspline.WithDegree(cfg.degree),
		bspline.WithKnotSpacing(spacing),
		bspline.WithSmoothing(smoothing),
		bspline.WithAlpha(cfg.alpha),
		bspline.WithParallelism(cfg.workers),
		bspline.WithLogger(newLogger(cfg, stderr)),
	}
	if cfg.basis > 0 {
		opts = append(opts, bspline.WithNumBasisFunctions(cfg.basis))
	}
	b, err := bspline.NewBuilder(tbl, opts...)
	if err != nil {
		return err
	}
	s, err := b.Build()
	if err != nil {
		return err
	}

	rmse, err := trainingRMSE(s, tbl)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "samples=%d variables=%d coefficients=%d rmse=%.6g\n",
		tbl.NumSamples(), tbl.NumVariables(), s.NumCoefficients(), rmse)

	if cfg.out != "" {
		if err = codec.SaveBSpline(cfg.out, s, codec.WithCompression(compression)); err != nil {
			return err
		}
	}
	if cfg.plot != "" {
		if err = savePlot(cfg.plot, s, tbl); err != nil {
			return err
		}
	}

	return nil
}

func trainingRMSE(s *bspline.BSpline, tbl *datatable.Table) (float64, error) {
	got, err := s.EvalAll(tbl.Inputs())
	if err != nil {
		return 0, err
	}
	var sum float64
	for i, y := range tbl.Outputs() {
		d := got[i] - y
		sum += d * d
	}

	return math.Sqrt(sum / float64(len(got))), nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "splinefit: %v\n", err)
		os.Exit(1)
	}
}
