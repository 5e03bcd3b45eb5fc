// SPDX-License-Identifier: MIT
// Package: lvspline/bspline
//
// logger.go - structured logging for builds.

package bspline

import (
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with build-specific helpers and consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler on stderr at info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards everything.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// LogKnots logs the knot vector computed for one dimension.
// Stage failures are logged at Debug; LogBuild reports the error once.
func (l *Logger) LogKnots(dim int, spacing KnotSpacing, degree, numKnots int, err error) {
	if err != nil {
		l.Debug("knot vector failed",
			"dimension", dim,
			"spacing", spacing.String(),
			"degree", degree,
			"error", err,
		)
		return
	}
	l.Debug("knot vector computed",
		"dimension", dim,
		"spacing", spacing.String(),
		"degree", degree,
		"knots", numKnots,
	)
}

// LogAssembly logs the basis matrix assembly.
func (l *Logger) LogAssembly(rows, cols, nnz, active, workers int, err error) {
	if err != nil {
		l.Debug("basis matrix assembly failed",
			"rows", rows,
			"workers", workers,
			"error", err,
		)
		return
	}
	l.Debug("basis matrix assembled",
		"rows", rows,
		"cols", cols,
		"nnz", nnz,
		"active_cols", active,
		"workers", workers,
	)
}

// LogSolve logs the coefficient solve.
func (l *Logger) LogSolve(smoothing Smoothing, alpha float64, unknowns int, err error) {
	if err != nil {
		l.Debug("coefficient solve failed",
			"smoothing", smoothing.String(),
			"alpha", alpha,
			"unknowns", unknowns,
			"error", err,
		)
		return
	}
	l.Debug("coefficients solved",
		"smoothing", smoothing.String(),
		"alpha", alpha,
		"unknowns", unknowns,
	)
}

// LogBuild logs the outcome of a whole build.
func (l *Logger) LogBuild(samples, numVariables, coefficients int, elapsed time.Duration, err error) {
	if err != nil {
		l.Error("bspline build failed",
			"samples", samples,
			"variables", numVariables,
			"elapsed", elapsed,
			"error", err,
		)
		return
	}
	l.Info("bspline built",
		"samples", samples,
		"variables", numVariables,
		"coefficients", coefficients,
		"elapsed", elapsed,
	)
}
