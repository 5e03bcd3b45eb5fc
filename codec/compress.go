// SPDX-License-Identifier: MIT
// Package: lvspline/codec
//
// compress.go - payload compression.
//
// Encoders and decoders are pooled; EncodeAll/DecodeAll and the lz4 block
// API are stateless per call, so pooled instances are safe to share.

package codec

import (
	"fmt"
	"strings"
	"sync"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the payload compression of a frame.
type Compression uint8

const (
	// None stores the payload as is.
	None Compression = iota
	// Zstd compresses with Zstandard (klauspost/compress).
	Zstd
	// LZ4 compresses with the LZ4 block format.
	LZ4
	// S2 compresses with S2, the Snappy extension from klauspost/compress.
	S2
)

var compressionNames = [...]string{None: "none", Zstd: "zstd", LZ4: "lz4", S2: "s2"}

// String implements fmt.Stringer.
func (c Compression) String() string {
	if c.valid() {
		return compressionNames[c]
	}

	return fmt.Sprintf("Compression(%d)", uint8(c))
}

func (c Compression) valid() bool { return c <= S2 }

// ParseCompression maps a case-insensitive name to its Compression.
func ParseCompression(name string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return None, nil
	case "zstd":
		return Zstd, nil
	case "lz4":
		return LZ4, nil
	case "s2":
		return S2, nil
	}

	return None, codecErrorf("ParseCompression", fmt.Errorf("%q: %w", name, ErrUnknownCompression))
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false), // the frame carries its own checksum
		)
		if err != nil {
			panic(fmt.Sprintf("codec: zstd encoder: %v", err))
		}
		return enc
	},
}

var zstdDecoderPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderMaxMemory(maxPayload),
		)
		if err != nil {
			panic(fmt.Sprintf("codec: zstd decoder: %v", err))
		}
		return dec
	},
}

var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

// compress returns the stored form of raw under c. LZ4 falls back to None
// when the block does not shrink.
func compress(c Compression, raw []byte) ([]byte, Compression, error) {
	switch c {
	case None:
		return raw, None, nil

	case Zstd:
		enc := zstdEncoderPool.Get().(*zstd.Encoder)
		defer zstdEncoderPool.Put(enc)
		return enc.EncodeAll(raw, nil), Zstd, nil

	case LZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(raw)))
		lc := lz4CompressorPool.Get().(*lz4.Compressor)
		defer lz4CompressorPool.Put(lc)
		n, err := lc.CompressBlock(raw, dst)
		if err != nil {
			return nil, None, err
		}
		if n == 0 || n >= len(raw) {
			return raw, None, nil
		}
		return dst[:n], LZ4, nil

	case S2:
		return s2.Encode(nil, raw), S2, nil
	}

	return nil, None, fmt.Errorf("%v: %w", c, ErrUnknownCompression)
}

// Upper bounds on rawLen/storedLen. An LZ4 match costs at least one byte per
// 255 bytes it produces; a zstd block emits at most 128 KiB and costs at least
// 4 bytes (an RLE block).
const (
	lz4MaxExpansion  = 255
	zstdMaxExpansion = 128 << 10 / 4
)

// decompress inverts compress; rawLen is the declared uncompressed size.
// The declared size is checked against what the stored bytes can produce
// before any buffer of that size is allocated.
func decompress(c Compression, stored []byte, rawLen int) ([]byte, error) {
	var (
		raw []byte
		err error
	)
	switch c {
	case None:
		raw = stored

	case Zstd:
		var h zstd.Header
		if err = h.Decode(stored); err != nil {
			return nil, fmt.Errorf("%v: %w: %w", c, ErrCorrupt, err)
		}
		if !h.HasFCS || h.FrameContentSize != uint64(rawLen) {
			return nil, fmt.Errorf("%v: frame content size %d, declared %d: %w", c, h.FrameContentSize, rawLen, ErrCorrupt)
		}
		if rawLen > zstdMaxExpansion*len(stored) {
			return nil, fmt.Errorf("%v: %d stored bytes cannot expand to %d: %w", c, len(stored), rawLen, ErrCorrupt)
		}
		dec := zstdDecoderPool.Get().(*zstd.Decoder)
		defer zstdDecoderPool.Put(dec)
		raw, err = dec.DecodeAll(stored, make([]byte, 0, rawLen))

	case LZ4:
		if rawLen > lz4MaxExpansion*len(stored) {
			return nil, fmt.Errorf("%v: %d stored bytes cannot expand to %d: %w", c, len(stored), rawLen, ErrCorrupt)
		}
		raw = make([]byte, rawLen)
		var n int
		n, err = lz4.UncompressBlock(stored, raw)
		raw = raw[:max(n, 0)]

	case S2:
		var n int
		if n, err = s2.DecodedLen(stored); err == nil && n != rawLen {
			return nil, fmt.Errorf("s2 length %d, declared %d: %w", n, rawLen, ErrCorrupt)
		}
		if err == nil {
			raw, err = s2.Decode(nil, stored)
		}

	default:
		return nil, fmt.Errorf("%v: %w", c, ErrUnknownCompression)
	}
	if err != nil {
		return nil, fmt.Errorf("%v: %w: %w", c, ErrCorrupt, err)
	}
	if len(raw) != rawLen {
		return nil, fmt.Errorf("%v: %d bytes, declared %d: %w", c, len(raw), rawLen, ErrCorrupt)
	}

	return raw, nil
}
