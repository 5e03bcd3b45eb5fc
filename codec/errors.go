// SPDX-License-Identifier: MIT
// Package: lvspline/codec
//
// errors.go - sentinel errors for framed persistence.
//
// Error policy:
//   • Only sentinel variables are exposed; callers branch with errors.Is.
//   • Validation errors of the decoded object (bspline.New, datatable.Add)
//     are returned wrapped, so their own sentinels stay reachable.

package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrBadMagic indicates input that does not start with the frame magic.
	ErrBadMagic = errors.New("codec: bad magic")

	// ErrUnsupportedVersion indicates a frame written by a newer format version.
	ErrUnsupportedVersion = errors.New("codec: unsupported format version")

	// ErrChecksum indicates a payload whose xxhash64 does not match the frame.
	ErrChecksum = errors.New("codec: checksum mismatch")

	// ErrKindMismatch indicates a frame holding a different object kind than
	// the one requested (e.g. a table passed to DecodeBSpline).
	ErrKindMismatch = errors.New("codec: object kind mismatch")

	// ErrTruncated indicates a frame or payload shorter than its declared size.
	ErrTruncated = errors.New("codec: truncated input")

	// ErrUnknownCompression indicates an unsupported compression identifier.
	ErrUnknownCompression = errors.New("codec: unknown compression")

	// ErrCorrupt indicates a structurally invalid payload or a failed
	// decompression.
	ErrCorrupt = errors.New("codec: corrupt payload")
)

// codecErrorf wraps err with the operation tag: "<op>: <err>".
func codecErrorf(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
