// Package codec implements the two compression algorithms the archive
// format can select per-archive: zlib (stdlib compress/zlib) and LZMA
// (ulikunitz/xz, whose dictionary presets map onto the format's 0-9
// compression_level the way xz-utils' easy encoder maps its -0..-9
// flags).
//
// Decompress enforces a bounded-output contract: the caller always
// knows the exact expected plaintext size ahead of time (it comes from
// authenticated entry metadata), so allocation is bounded by that size
// rather than by attacker-controlled stream length.
package codec

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"

	"github.com/hambosto/seclume/internal/codecerr"
	"github.com/ulikunitz/xz"
)

// Algorithm selects the compression codec, matching the one-byte
// compression_algo header field.
type Algorithm uint8

const (
	// Zlib is DEFLATE in a zlib wrapper.
	Zlib Algorithm = 0
	// LZMA is the xz-utils easy-encoder equivalent.
	LZMA Algorithm = 1
)

// Valid reports whether a is a known algorithm value.
func (a Algorithm) Valid() bool {
	return a == Zlib || a == LZMA
}

func (a Algorithm) String() string {
	switch a {
	case Zlib:
		return "zlib"
	case LZMA:
		return "lzma"
	default:
		return "unknown"
	}
}

// MinLevel and MaxLevel bound the compression_level header field; both
// algorithms accept the same [0, 9] range, zlib mapping it onto
// compress/flate's level scale directly and LZMA mapping it onto its
// preset scale.
const (
	MinLevel = 0
	MaxLevel = 9
)

var (
	ErrInvalidAlgorithm = errors.New("codec: invalid compression algorithm")
	ErrInvalidLevel     = fmt.Errorf("codec: level must be in [%d, %d]", MinLevel, MaxLevel)
)

// Compress compresses data using algo at the given level.
func Compress(algo Algorithm, level int, data []byte) ([]byte, error) {
	if !algo.Valid() {
		return nil, ErrInvalidAlgorithm
	}
	if level < MinLevel || level > MaxLevel {
		return nil, ErrInvalidLevel
	}

	switch algo {
	case Zlib:
		return compressZlib(level, data)
	default:
		return compressLZMA(level, data)
	}
}

// Decompress decompresses data using algo, failing closed if the
// produced plaintext length does not exactly equal expectedSize or if
// the stream is truncated or corrupt.
func Decompress(algo Algorithm, data []byte, expectedSize uint64) ([]byte, error) {
	if !algo.Valid() {
		return nil, ErrInvalidAlgorithm
	}

	var (
		out []byte
		err error
	)
	switch algo {
	case Zlib:
		out, err = decompressZlib(data, expectedSize)
	default:
		out, err = decompressLZMA(data, expectedSize)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codecerr.ErrDecompress, err)
	}
	if uint64(len(out)) != expectedSize {
		return nil, fmt.Errorf("%w: decompressed %d bytes, expected %d", codecerr.ErrDecompress, len(out), expectedSize)
	}
	return out, nil
}

func compressZlib(level int, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, mapZlibLevel(level))
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decompressZlib reads at most expectedSize+1 bytes of plaintext from
// the zlib stream, bounding allocation to the authenticated size. A
// truncated or corrupt stream makes the zlib reader fail, and io.ReadAll
// returns that error; excess plaintext beyond expectedSize shows up as
// one extra byte, which the caller's length equality test rejects.
func decompressZlib(data []byte, expectedSize uint64) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	limited := io.LimitReader(r, int64(expectedSize)+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func mapZlibLevel(level int) int {
	// zlib's level scale already runs 0..9; clamp defensively.
	if level < zlib.NoCompression {
		return zlib.NoCompression
	}
	if level > zlib.BestCompression {
		return zlib.BestCompression
	}
	return level
}

// compressLZMA wraps the payload in an xz container (LZMA2 filter,
// CRC64 integrity check, xz-utils' own default).
func compressLZMA(level int, data []byte) ([]byte, error) {
	cfg := xz.WriterConfig{
		DictCap:  presetDictCap(level),
		CheckSum: xz.CRC64,
	}
	if err := cfg.Verify(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w, err := cfg.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompressLZMA(data []byte, expectedSize uint64) ([]byte, error) {
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	limited := io.LimitReader(r, int64(expectedSize)+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// presetDictCap maps the archive's 0..9 compression_level onto the LZMA2
// dictionary-capacity preset tiers, the same coarse bucketing xz-utils'
// easy encoder applies to its -0..-9 flags.
func presetDictCap(level int) int {
	switch {
	case level <= 1:
		return 1 << 20 // 1 MiB
	case level <= 3:
		return 1 << 22 // 4 MiB
	case level <= 5:
		return 1 << 23 // 8 MiB
	case level <= 7:
		return 1 << 24 // 16 MiB
	default:
		return 1 << 26 // 64 MiB
	}
}
