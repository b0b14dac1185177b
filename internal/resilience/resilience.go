// Package resilience adds Reed-Solomon parity to a finished archive
// file so it survives localized corruption on lossy storage. It is a
// wrapper around the archive byte stream, never part of the archive
// layout itself: Shield produces a sibling .shd file, Unshield
// recovers the original archive bytes from one. Each chunk of the
// archive is sharded and encoded independently, so damage is contained
// to the chunk it lands in.
package resilience

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/hambosto/seclume/internal/chunkio"
	"github.com/klauspost/reedsolomon"
)

const (
	// lenPrefixSize is the per-chunk header carrying the chunk's
	// pre-encoding length, embedded in the first data shard.
	lenPrefixSize = 4

	// DefaultDataShards and DefaultParityShards tolerate the loss of
	// any two shards per chunk at 50% storage overhead.
	DefaultDataShards   = 4
	DefaultParityShards = 2
)

var (
	ErrInvalidShards  = errors.New("resilience: shard counts must be positive")
	ErrEncodedSize    = errors.New("resilience: encoded chunk size does not divide into shards")
	ErrCorrupted      = errors.New("resilience: chunk failed parity verification")
	ErrLengthMismatch = errors.New("resilience: recovered length prefix is implausible")
)

// Options configures a Shield or Unshield run. Shard counts must match
// between the Shield that produced a file and the Unshield that reads
// it back.
type Options struct {
	DataShards   int
	ParityShards int
	// ChunkSize is the archive-bytes chunk size; chunkio's default if zero.
	ChunkSize int
	// Concurrency bounds the encode workers; NumCPU if zero.
	Concurrency int
}

func (o Options) withDefaults() Options {
	if o.DataShards == 0 && o.ParityShards == 0 {
		o.DataShards = DefaultDataShards
		o.ParityShards = DefaultParityShards
	}
	return o
}

// coder wraps one reedsolomon.Encoder with the shard geometry it was
// built for.
type coder struct {
	dataShards   int
	parityShards int
	enc          reedsolomon.Encoder
}

func newCoder(opts Options) (*coder, error) {
	if opts.DataShards <= 0 || opts.ParityShards <= 0 {
		return nil, ErrInvalidShards
	}
	enc, err := reedsolomon.New(opts.DataShards, opts.ParityShards)
	if err != nil {
		return nil, fmt.Errorf("resilience: creating encoder: %w", err)
	}
	return &coder{dataShards: opts.DataShards, parityShards: opts.ParityShards, enc: enc}, nil
}

// Shield reads the file at inPath and writes its Reed-Solomon-encoded
// form to outPath. The input is processed in independent chunks; each
// is length-prefixed, split into data shards, extended with parity
// shards, and written as one frame.
func Shield(inPath, outPath string, opts Options) error {
	opts = opts.withDefaults()
	c, err := newCoder(opts)
	if err != nil {
		return err
	}

	return processFile(inPath, outPath, chunkio.Config{
		ChunkSize:   opts.ChunkSize,
		Concurrency: opts.Concurrency,
		FrameOutput: true,
	}, func(t chunkio.Task) ([]byte, error) {
		return c.encodeChunk(t.Data)
	})
}

// Unshield reads a shielded file at inPath and writes the recovered
// archive bytes to outPath. A chunk whose shards no longer verify makes
// the run fail with ErrCorrupted; Unshield does not reconstruct it
// (ReconstructChunk repairs a frame whose damaged shard indexes are known).
func Unshield(inPath, outPath string, opts Options) error {
	opts = opts.withDefaults()
	c, err := newCoder(opts)
	if err != nil {
		return err
	}

	return processFile(inPath, outPath, chunkio.Config{
		Concurrency: opts.Concurrency,
		Framed:      true,
	}, func(t chunkio.Task) ([]byte, error) {
		return c.decodeChunk(t.Data)
	})
}

func processFile(inPath, outPath string, cfg chunkio.Config, transform func(chunkio.Task) ([]byte, error)) (err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("resilience: opening %s: %w", inPath, err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("resilience: creating %s: %w", outPath, err)
	}
	defer func() {
		closeErr := out.Close()
		if err != nil {
			os.Remove(outPath)
			return
		}
		if closeErr != nil {
			err = fmt.Errorf("resilience: closing %s: %w", outPath, closeErr)
			os.Remove(outPath)
		}
	}()

	return chunkio.Run(in, out, cfg, transform)
}

// encodeChunk length-prefixes data, pads it across dataShards
// equal-size shards, computes parity, and returns all shards
// concatenated.
func (c *coder) encodeChunk(data []byte) ([]byte, error) {
	if len(data) > math.MaxUint32-lenPrefixSize {
		return nil, fmt.Errorf("resilience: chunk of %d bytes too large", len(data))
	}

	prefixed := make([]byte, lenPrefixSize+len(data))
	binary.BigEndian.PutUint32(prefixed, uint32(len(data)))
	copy(prefixed[lenPrefixSize:], data)

	shardSize := (len(prefixed) + c.dataShards - 1) / c.dataShards
	shards := make([][]byte, c.dataShards+c.parityShards)
	for i := range shards {
		shards[i] = make([]byte, shardSize)
	}
	for i := range c.dataShards {
		start := i * shardSize
		if start >= len(prefixed) {
			break
		}
		copy(shards[i], prefixed[start:])
	}

	if err := c.enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("resilience: encoding chunk: %w", err)
	}

	out := make([]byte, 0, shardSize*len(shards))
	for _, shard := range shards {
		out = append(out, shard...)
	}
	return out, nil
}

// decodeChunk splits an encoded frame back into shards, verifies the
// parity relation, and strips the length prefix. When verification
// fails the chunk cannot be repaired blind (parity locates nothing on
// its own; it repairs known-missing shards), so corruption is
// reported rather than guessed at.
func (c *coder) decodeChunk(encoded []byte) ([]byte, error) {
	totalShards := c.dataShards + c.parityShards
	if len(encoded) == 0 || len(encoded)%totalShards != 0 {
		return nil, ErrEncodedSize
	}
	shardSize := len(encoded) / totalShards

	shards := make([][]byte, totalShards)
	for i := range shards {
		shards[i] = encoded[i*shardSize : (i+1)*shardSize]
	}

	ok, err := c.enc.Verify(shards)
	if err != nil {
		return nil, fmt.Errorf("resilience: verifying chunk: %w", err)
	}
	if !ok {
		return nil, ErrCorrupted
	}

	combined := make([]byte, 0, shardSize*c.dataShards)
	for i := range c.dataShards {
		combined = append(combined, shards[i]...)
	}

	if len(combined) < lenPrefixSize {
		return nil, ErrLengthMismatch
	}
	dataLen := binary.BigEndian.Uint32(combined)
	if int(dataLen) > len(combined)-lenPrefixSize {
		return nil, ErrLengthMismatch
	}
	return combined[lenPrefixSize : lenPrefixSize+int(dataLen)], nil
}

// ReconstructChunk repairs a frame whose damaged shard indexes are
// known (for example from a storage layer's own block checksums),
// returning the repaired frame. Up to parityShards shards may be
// missing.
func ReconstructChunk(encoded []byte, missing []int, opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	c, err := newCoder(opts)
	if err != nil {
		return nil, err
	}

	totalShards := c.dataShards + c.parityShards
	if len(encoded) == 0 || len(encoded)%totalShards != 0 {
		return nil, ErrEncodedSize
	}
	shardSize := len(encoded) / totalShards

	shards := make([][]byte, totalShards)
	for i := range shards {
		shard := make([]byte, shardSize)
		copy(shard, encoded[i*shardSize:(i+1)*shardSize])
		shards[i] = shard
	}
	for _, idx := range missing {
		if idx < 0 || idx >= totalShards {
			return nil, fmt.Errorf("resilience: shard index %d out of range", idx)
		}
		shards[idx] = nil
	}

	if err := c.enc.Reconstruct(shards); err != nil {
		return nil, fmt.Errorf("resilience: reconstructing chunk: %w", err)
	}

	out := make([]byte, 0, shardSize*totalShards)
	for _, shard := range shards {
		out = append(out, shard...)
	}
	return out, nil
}
