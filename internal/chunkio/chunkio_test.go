package chunkio

import (
	"bytes"
	"errors"
	"testing"
)

func TestRunRoundTripFramed(t *testing.T) {
	input := bytes.Repeat([]byte("0123456789abcdef"), 1000)

	// Identity transform, fixed chunks in, framed chunks out.
	var framed bytes.Buffer
	err := Run(bytes.NewReader(input), &framed, Config{ChunkSize: 1024, FrameOutput: true}, func(t Task) ([]byte, error) {
		return t.Data, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	// Framed chunks back in, bare bytes out.
	var out bytes.Buffer
	err = Run(&framed, &out, Config{Framed: true}, func(t Task) ([]byte, error) {
		return t.Data, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(out.Bytes(), input) {
		t.Fatalf("round-trip mismatch: got %d bytes, want %d", out.Len(), len(input))
	}
}

func TestRunPreservesChunkOrder(t *testing.T) {
	// 26 one-byte chunks processed by 8 workers must still come out
	// in input order.
	input := []byte("abcdefghijklmnopqrstuvwxyz")

	var out bytes.Buffer
	err := Run(bytes.NewReader(input), &out, Config{ChunkSize: 1, Concurrency: 8}, func(t Task) ([]byte, error) {
		return bytes.ToUpper(t.Data), nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if got := out.String(); got != "ABCDEFGHIJKLMNOPQRSTUVWXYZ" {
		t.Fatalf("chunks out of order: %q", got)
	}
}

func TestRunPropagatesTransformError(t *testing.T) {
	boom := errors.New("boom")
	input := bytes.Repeat([]byte{0x55}, 4096)

	var out bytes.Buffer
	err := Run(bytes.NewReader(input), &out, Config{ChunkSize: 512}, func(t Task) ([]byte, error) {
		if t.Index == 3 {
			return nil, boom
		}
		return t.Data, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
}

func TestRunEmptyInput(t *testing.T) {
	var out bytes.Buffer
	err := Run(bytes.NewReader(nil), &out, Config{}, func(t Task) ([]byte, error) {
		return t.Data, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %d bytes", out.Len())
	}
}

func TestRunShortFinalChunk(t *testing.T) {
	// 100 bytes at ChunkSize 64 yields chunks of 64 and 36.
	input := bytes.Repeat([]byte{0xAA}, 100)

	var sizes []int
	var out bytes.Buffer
	err := Run(bytes.NewReader(input), &out, Config{ChunkSize: 64, Concurrency: 1}, func(t Task) ([]byte, error) {
		sizes = append(sizes, len(t.Data))
		return t.Data, nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(sizes) != 2 || sizes[0] != 64 || sizes[1] != 36 {
		t.Fatalf("chunk sizes = %v, want [64 36]", sizes)
	}
	if !bytes.Equal(out.Bytes(), input) {
		t.Fatal("output does not match input")
	}
}

func TestRunTruncatedFrameFails(t *testing.T) {
	// A frame header promising more bytes than the stream holds.
	broken := []byte{0x00, 0x00, 0x01, 0x00, 0xAB}

	var out bytes.Buffer
	err := Run(bytes.NewReader(broken), &out, Config{Framed: true}, func(t Task) ([]byte, error) {
		return t.Data, nil
	})
	if err == nil {
		t.Fatal("expected error for truncated frame")
	}
}
