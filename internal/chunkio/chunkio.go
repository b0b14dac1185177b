// Package chunkio runs a transform over a stream in fixed-size chunks
// with bounded concurrency, writing results back out in input order.
// The archive codec itself never uses this (entries are strictly
// sequential); it exists for whole-file post-processing such as the
// resilience layer, where chunks are independent and order only
// matters at the output.
package chunkio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"
)

// DefaultChunkSize is the plaintext chunk size used when Config leaves
// ChunkSize zero.
const DefaultChunkSize = 1 << 20 // 1 MiB

// Task is one chunk handed to the transform.
type Task struct {
	Index uint64
	Data  []byte
}

// Result is the transform's output for one chunk.
type Result struct {
	Index uint64
	Data  []byte
	Err   error
}

// Config controls a Run call.
type Config struct {
	// ChunkSize is the input chunk size in bytes; DefaultChunkSize if zero.
	ChunkSize int
	// Concurrency is the worker count; runtime.NumCPU() if zero.
	Concurrency int
	// Framed selects how input chunks are delimited: false reads
	// fixed ChunkSize slices (last chunk may be short), true reads
	// chunks prefixed with a big-endian uint32 length, as written by
	// a previous Run with FrameOutput set.
	Framed bool
	// FrameOutput prefixes each output chunk with a big-endian uint32
	// length so a later Run can consume the stream with Framed set.
	// Without it chunks are concatenated bare.
	FrameOutput bool
}

// Run reads chunks from r, applies transform to each with Concurrency
// workers, and writes the results to w in input order. After the first
// transform or write error nothing more is written to w; the rest of
// the input is still read and transformed, and that error is returned
// once it has been. A read error stops reading and is returned.
func Run(r io.Reader, w io.Writer, cfg Config, transform func(Task) ([]byte, error)) error {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	tasks := make(chan Task, concurrency)
	results := make(chan Result, concurrency)

	var workers sync.WaitGroup
	workers.Add(concurrency)
	for range concurrency {
		go func() {
			defer workers.Done()
			for t := range tasks {
				out, err := transform(t)
				results <- Result{Index: t.Index, Data: out, Err: err}
			}
		}()
	}

	writeErr := make(chan error, 1)
	var writer sync.WaitGroup
	writer.Add(1)
	go func() {
		defer writer.Done()
		writeErr <- writeInOrder(w, results, cfg.FrameOutput)
	}()

	readErr := feedTasks(r, chunkSize, cfg.Framed, tasks)

	close(tasks)
	workers.Wait()
	close(results)
	writer.Wait()

	if readErr != nil {
		return readErr
	}
	return <-writeErr
}

func feedTasks(r io.Reader, chunkSize int, framed bool, tasks chan<- Task) error {
	var index uint64
	if framed {
		var sizeBuf [4]byte
		for {
			if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
				if err == io.EOF {
					return nil
				}
				return fmt.Errorf("chunkio: reading chunk length: %w", err)
			}
			data := make([]byte, binary.BigEndian.Uint32(sizeBuf[:]))
			if _, err := io.ReadFull(r, data); err != nil {
				return fmt.Errorf("chunkio: reading chunk %d: %w", index, err)
			}
			tasks <- Task{Index: index, Data: data}
			index++
		}
	}

	buf := make([]byte, chunkSize)
	for {
		n, err := io.ReadFull(r, buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			tasks <- Task{Index: index, Data: data}
			index++
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("chunkio: reading chunk %d: %w", index, err)
		}
	}
}

// writeInOrder drains results, buffering out-of-order chunks until
// their predecessors arrive.
func writeInOrder(w io.Writer, results <-chan Result, frame bool) error {
	pending := make(map[uint64]Result)
	var next uint64
	var failed error

	for res := range results {
		if failed != nil {
			continue // drain without writing
		}
		if res.Err != nil {
			failed = fmt.Errorf("chunkio: chunk %d: %w", res.Index, res.Err)
			continue
		}
		pending[res.Index] = res
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if err := writeChunk(w, ready.Data, frame); err != nil {
				failed = err
				break
			}
			next++
		}
	}
	return failed
}

func writeChunk(w io.Writer, data []byte, frame bool) error {
	if frame {
		if len(data) > math.MaxUint32 {
			return fmt.Errorf("chunkio: chunk of %d bytes exceeds frame limit", len(data))
		}
		var sizeBuf [4]byte
		binary.BigEndian.PutUint32(sizeBuf[:], uint32(len(data)))
		if _, err := w.Write(sizeBuf[:]); err != nil {
			return fmt.Errorf("chunkio: writing chunk length: %w", err)
		}
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("chunkio: writing chunk data: %w", err)
	}
	return nil
}
