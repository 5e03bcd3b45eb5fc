// SPDX-License-Identifier: MIT
// Package: lvspline/codec
//
// codec.go - framed binary encoding of splines and sample tables.
//
// Frame layout (little-endian):
//
//	offset size  field
//	0      4     magic "LVSP"
//	4      1     format version
//	5      1     kind (1 = BSpline, 2 = Table)
//	6      1     compression (None, Zstd, LZ4, S2)
//	7      1     reserved, zero
//	8      8     uncompressed payload length
//	16     8     stored payload length
//	24     n     stored payload
//	24+n   8     xxhash64 of the uncompressed payload
//
// BSpline payload: u32 d; per dimension u32 degree, u32 #knots, knots as
// f64; u32 #coefficients, coefficients as f64.
// Table payload: u32 d; u8 allow-duplicates; u64 #samples; per sample d
// inputs then the output, all f64.

package codec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/katalvlaran/lvspline/bspline"
	"github.com/katalvlaran/lvspline/datatable"
)

const (
	magic = "LVSP"

	// Version is the frame format written by this package.
	Version = 1

	headerSize  = 24
	trailerSize = 8

	// maxPayload bounds declared payload sizes before any allocation.
	maxPayload = 1 << 30
)

// Kind identifies the object stored in a frame.
type Kind uint8

const (
	// KindBSpline marks a serialized bspline.BSpline.
	KindBSpline Kind = 1
	// KindTable marks a serialized datatable.Table.
	KindTable Kind = 2
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindBSpline:
		return "bspline"
	case KindTable:
		return "table"
	}

	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Header is the decoded fixed part of a frame.
type Header struct {
	Version     uint8
	Kind        Kind
	Compression Compression
	RawLen      uint64 // uncompressed payload bytes
	StoredLen   uint64 // payload bytes as stored
}

// Option configures encoding.
type Option func(*encodeConfig)

type encodeConfig struct {
	compression Compression
}

// WithCompression selects the payload compression (default None).
func WithCompression(c Compression) Option {
	return func(cfg *encodeConfig) { cfg.compression = c }
}

func newEncodeConfig(opts ...Option) encodeConfig {
	cfg := encodeConfig{compression: None}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// EncodeBSpline serializes s into a frame.
//
// Errors:
//   - ErrCorrupt: nil spline.
//   - ErrUnknownCompression: unsupported WithCompression value.
func EncodeBSpline(s *bspline.BSpline, opts ...Option) ([]byte, error) {
	const op = "EncodeBSpline"
	if s == nil || s.NumVariables() == 0 {
		return nil, codecErrorf(op, fmt.Errorf("nil or empty spline: %w", ErrCorrupt))
	}
	degrees, knots, coeffs := s.Degrees(), s.KnotVectors(), s.Coefficients()

	size := 4 + 4 + 8*len(coeffs)
	for _, kv := range knots {
		size += 8 + 8*len(kv)
	}
	p := make([]byte, 0, size)
	p = binary.LittleEndian.AppendUint32(p, uint32(len(degrees)))
	for k, deg := range degrees {
		p = binary.LittleEndian.AppendUint32(p, uint32(deg))
		p = appendFloats(p, knots[k])
	}
	p = appendFloats(p, coeffs)

	frame, err := encodeFrame(KindBSpline, p, newEncodeConfig(opts...))
	if err != nil {
		return nil, codecErrorf(op, err)
	}

	return frame, nil
}

// DecodeBSpline parses a frame written by EncodeBSpline and rebuilds the
// spline through bspline.New, so a decoded spline passed the same validation
// as a freshly built one.
//
// Errors:
//   - frame errors (ErrTruncated, ErrBadMagic, ErrUnsupportedVersion,
//     ErrKindMismatch, ErrUnknownCompression, ErrChecksum, ErrCorrupt).
//   - bspline.ErrInvalidConfig / bspline.ErrDimensionMismatch from bspline.New.
func DecodeBSpline(data []byte) (*bspline.BSpline, error) {
	const op = "DecodeBSpline"
	p, err := decodeFrame(data, KindBSpline)
	if err != nil {
		return nil, codecErrorf(op, err)
	}

	r := payloadReader{buf: p}
	d := int(r.u32())
	if r.err == nil && d > r.remaining()/8 {
		r.err = ErrCorrupt
	}
	var (
		degrees []int
		knots   [][]float64
	)
	for k := 0; k < d && r.err == nil; k++ {
		degrees = append(degrees, int(r.u32()))
		knots = append(knots, r.floats())
	}
	coeffs := r.floats()
	if r.err == nil && r.remaining() != 0 {
		r.err = fmt.Errorf("%d trailing bytes: %w", r.remaining(), ErrCorrupt)
	}
	if r.err != nil {
		return nil, codecErrorf(op, r.err)
	}

	s, err := bspline.New(degrees, knots, coeffs)
	if err != nil {
		return nil, codecErrorf(op, err)
	}

	return s, nil
}

// EncodeTable serializes t into a frame, preserving its duplicate policy.
func EncodeTable(t *datatable.Table, opts ...Option) ([]byte, error) {
	const op = "EncodeTable"
	if t == nil {
		return nil, codecErrorf(op, fmt.Errorf("nil table: %w", ErrCorrupt))
	}
	d, samples := t.NumVariables(), t.Samples()

	p := make([]byte, 0, 4+1+8+len(samples)*(d+1)*8)
	p = binary.LittleEndian.AppendUint32(p, uint32(d))
	var dup byte
	if t.AllowsDuplicates() {
		dup = 1
	}
	p = append(p, dup)
	p = binary.LittleEndian.AppendUint64(p, uint64(len(samples)))
	for _, s := range samples {
		for _, x := range s.X {
			p = binary.LittleEndian.AppendUint64(p, math.Float64bits(x))
		}
		p = binary.LittleEndian.AppendUint64(p, math.Float64bits(s.Y))
	}

	frame, err := encodeFrame(KindTable, p, newEncodeConfig(opts...))
	if err != nil {
		return nil, codecErrorf(op, err)
	}

	return frame, nil
}

// DecodeTable parses a frame written by EncodeTable. Every sample is re-added
// through Table.Add and therefore re-validated.
func DecodeTable(data []byte) (*datatable.Table, error) {
	const op = "DecodeTable"
	p, err := decodeFrame(data, KindTable)
	if err != nil {
		return nil, codecErrorf(op, err)
	}

	r := payloadReader{buf: p}
	d := int(r.u32())
	dup := r.u8()
	n := r.u64()
	if r.err == nil && (dup > 1 || n > uint64(r.remaining())/uint64(8*(d+1))) {
		r.err = ErrCorrupt
	}
	if r.err != nil {
		return nil, codecErrorf(op, r.err)
	}

	var topts []datatable.Option
	if dup == 1 {
		topts = append(topts, datatable.WithAllowDuplicates())
	}
	t, err := datatable.New(d, topts...)
	if err != nil {
		return nil, codecErrorf(op, err)
	}
	for i := uint64(0); i < n; i++ {
		x := make([]float64, d)
		for k := range x {
			x[k] = math.Float64frombits(r.u64())
		}
		y := math.Float64frombits(r.u64())
		if r.err != nil {
			return nil, codecErrorf(op, r.err)
		}
		if err = t.Add(x, y); err != nil {
			return nil, codecErrorf(op, fmt.Errorf("sample %d: %w", i, err))
		}
	}
	if r.remaining() != 0 {
		return nil, codecErrorf(op, fmt.Errorf("%d trailing bytes: %w", r.remaining(), ErrCorrupt))
	}

	return t, nil
}

// ReadHeader decodes the fixed header of a frame without touching the payload.
func ReadHeader(data []byte) (Header, error) {
	h, err := parseHeader(data)
	if err != nil {
		return Header{}, codecErrorf("ReadHeader", err)
	}

	return h, nil
}

// ReadFrame reads exactly one frame from r, so several frames may share a
// stream. The returned bytes are suitable for DecodeBSpline or DecodeTable.
func ReadFrame(r io.Reader) ([]byte, error) {
	const op = "ReadFrame"
	head := make([]byte, headerSize)
	if _, err := io.ReadFull(r, head); err != nil {
		if err == io.EOF {
			return nil, err
		}
		return nil, codecErrorf(op, fmt.Errorf("%w: %w", ErrTruncated, err))
	}
	h, err := parseHeader(head)
	if err != nil {
		return nil, codecErrorf(op, err)
	}
	frame := make([]byte, headerSize+int(h.StoredLen)+trailerSize)
	copy(frame, head)
	if _, err = io.ReadFull(r, frame[headerSize:]); err != nil {
		return nil, codecErrorf(op, fmt.Errorf("%w: %w", ErrTruncated, err))
	}

	return frame, nil
}

func encodeFrame(kind Kind, raw []byte, cfg encodeConfig) ([]byte, error) {
	if !cfg.compression.valid() {
		return nil, fmt.Errorf("%v: %w", cfg.compression, ErrUnknownCompression)
	}
	if len(raw) > maxPayload {
		return nil, fmt.Errorf("payload %d bytes exceeds %d: %w", len(raw), maxPayload, ErrCorrupt)
	}
	stored, used, err := compress(cfg.compression, raw)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, headerSize+len(stored)+trailerSize)
	out = append(out, magic...)
	out = append(out, Version, byte(kind), byte(used), 0)
	out = binary.LittleEndian.AppendUint64(out, uint64(len(raw)))
	out = binary.LittleEndian.AppendUint64(out, uint64(len(stored)))
	out = append(out, stored...)
	out = binary.LittleEndian.AppendUint64(out, xxhash.Sum64(raw))

	return out, nil
}

func parseHeader(data []byte) (Header, error) {
	if len(data) < len(magic) {
		return Header{}, fmt.Errorf("%d bytes: %w", len(data), ErrTruncated)
	}
	if string(data[:len(magic)]) != magic {
		return Header{}, ErrBadMagic
	}
	if len(data) < headerSize {
		return Header{}, fmt.Errorf("header %d of %d bytes: %w", len(data), headerSize, ErrTruncated)
	}
	h := Header{
		Version:     data[4],
		Kind:        Kind(data[5]),
		Compression: Compression(data[6]),
		RawLen:      binary.LittleEndian.Uint64(data[8:16]),
		StoredLen:   binary.LittleEndian.Uint64(data[16:24]),
	}
	if h.Version == 0 || h.Version > Version {
		return Header{}, fmt.Errorf("version %d: %w", h.Version, ErrUnsupportedVersion)
	}
	if !h.Compression.valid() {
		return Header{}, fmt.Errorf("%v: %w", h.Compression, ErrUnknownCompression)
	}
	if h.RawLen > maxPayload || h.StoredLen > maxPayload {
		return Header{}, fmt.Errorf("declared payload %d/%d bytes: %w", h.RawLen, h.StoredLen, ErrCorrupt)
	}

	return h, nil
}

// decodeFrame validates a whole frame and returns its uncompressed payload.
func decodeFrame(data []byte, want Kind) ([]byte, error) {
	h, err := parseHeader(data)
	if err != nil {
		return nil, err
	}
	if h.Kind != want {
		return nil, fmt.Errorf("frame holds %v, want %v: %w", h.Kind, want, ErrKindMismatch)
	}
	end := headerSize + int(h.StoredLen)
	switch {
	case len(data) < end+trailerSize:
		return nil, fmt.Errorf("frame %d of %d bytes: %w", len(data), end+trailerSize, ErrTruncated)
	case len(data) > end+trailerSize:
		return nil, fmt.Errorf("%d trailing bytes: %w", len(data)-end-trailerSize, ErrCorrupt)
	}

	raw, err := decompress(h.Compression, data[headerSize:end], int(h.RawLen))
	if err != nil {
		return nil, err
	}
	if sum := binary.LittleEndian.Uint64(data[end:]); sum != xxhash.Sum64(raw) {
		return nil, ErrChecksum
	}

	return raw, nil
}

func appendFloats(p []byte, v []float64) []byte {
	p = binary.LittleEndian.AppendUint32(p, uint32(len(v)))
	for _, f := range v {
		p = binary.LittleEndian.AppendUint64(p, math.Float64bits(f))
	}

	return p
}

// payloadReader is a bounds-checked cursor; the first short read sets err and
// every later read returns zero.
type payloadReader struct {
	buf []byte
	off int
	err error
}

func (r *payloadReader) remaining() int { return len(r.buf) - r.off }

func (r *payloadReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.remaining() < n {
		r.err = fmt.Errorf("payload needs %d more bytes, %d left: %w", n, r.remaining(), ErrTruncated)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n

	return b
}

func (r *payloadReader) u8() byte {
	if b := r.take(1); b != nil {
		return b[0]
	}

	return 0
}

func (r *payloadReader) u32() uint32 {
	if b := r.take(4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}

	return 0
}

func (r *payloadReader) u64() uint64 {
	if b := r.take(8); b != nil {
		return binary.LittleEndian.Uint64(b)
	}

	return 0
}

func (r *payloadReader) floats() []float64 {
	n := int(r.u32())
	if r.err != nil {
		return nil
	}
	if n > r.remaining()/8 {
		r.err = fmt.Errorf("%d floats, %d bytes left: %w", n, r.remaining(), ErrTruncated)
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Float64frombits(r.u64())
	}

	return out
}
