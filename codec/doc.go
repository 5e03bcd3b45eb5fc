// SPDX-License-Identifier: MIT

// Package codec persists splines and sample tables in a small self-checking
// binary frame.
//
// A frame carries a magic, a version, the object kind and the payload
// compression (None, Zstd, LZ4 or S2), followed by the payload and an
// xxhash64 of the uncompressed bytes. Decoding verifies every field before
// the object is rebuilt, and rebuilt objects pass through the same
// constructors as fresh ones (bspline.New, datatable.Table.Add).
//
//	frame, err := codec.EncodeBSpline(s, codec.WithCompression(codec.Zstd))
//	restored, err := codec.DecodeBSpline(frame)
//
// Errors are sentinels (ErrBadMagic, ErrChecksum, ...) wrapped with the
// operation name; use errors.Is.
package codec
