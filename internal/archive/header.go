package archive

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hambosto/seclume/internal/codec"
	"github.com/hambosto/seclume/internal/codecerr"
	"github.com/hambosto/seclume/internal/pathguard"
	"github.com/hambosto/seclume/internal/primitives"
)

// NewHeader builds a v6 header for a fresh archive: salt and
// compression settings populated, outdir optionally sealed under
// metaKey, and the HMAC computed over everything else, keyed with
// fileKey. The header HMAC reuses the file key rather than a third
// derived key; that choice is frozen into the format.
func NewHeader(fileCount uint32, salt [SaltSize]byte, algo codec.Algorithm, level uint8, outdirHint string, fileKey, metaKey []byte) (*ArchiveHeader, error) {
	if fileCount > MaxFiles {
		return nil, fmt.Errorf("%w: file_count %d exceeds %d", codecerr.ErrSizeBound, fileCount, MaxFiles)
	}

	h := &ArchiveHeader{
		Version:          Version,
		FileCount:        fileCount,
		Salt:             salt,
		CompressionAlgo:  algo,
		CompressionLevel: level,
	}

	if outdirHint != "" {
		if len(outdirHint) > MaxOutdirPlain {
			return nil, fmt.Errorf("%w: outdir hint too long", codecerr.ErrSizeBound)
		}
		nonce, tag, ciphertext, err := primitives.Seal(metaKey, []byte(outdirHint))
		if err != nil {
			return nil, fmt.Errorf("sealing outdir hint: %w", err)
		}
		sealed := make([]byte, 0, len(ciphertext)+len(nonce)+len(tag))
		sealed = append(sealed, ciphertext...)
		sealed = append(sealed, nonce...)
		sealed = append(sealed, tag...)

		h.OutdirLen = uint32(len(outdirHint))
		h.OutdirSealed = sealed
	}

	hmacValue := computeHeaderHMAC(fileKey, h)
	copy(h.HMAC[:], hmacValue)

	return h, nil
}

// WriteHeader serializes h to w in declared field order with no
// padding and little-endian multi-byte fields.
func WriteHeader(w io.Writer, h *ArchiveHeader) error {
	buf := marshalHeaderPrefix(h)
	buf = append(buf, h.HMAC[:]...)

	if len(buf) != HeaderSize {
		return fmt.Errorf("archive: internal error: header buffer is %d bytes, want %d", len(buf), HeaderSize)
	}

	n, err := w.Write(buf)
	if err != nil {
		return fmt.Errorf("%w: writing header: %v", codecerr.ErrIO, err)
	}
	if n != len(buf) {
		return fmt.Errorf("%w: short header write: %d of %d bytes", codecerr.ErrIO, n, len(buf))
	}
	return nil
}

// marshalHeaderPrefix serializes every header field except the trailing
// HMAC, in declared order.
func marshalHeaderPrefix(h *ArchiveHeader) []byte {
	buf := make([]byte, 0, hmacCoveredSize)
	buf = append(buf, Magic...)

	var versionBuf [2]byte
	binary.LittleEndian.PutUint16(versionBuf[:], h.Version)
	buf = append(buf, versionBuf[:]...)

	var fileCountBuf [4]byte
	binary.LittleEndian.PutUint32(fileCountBuf[:], h.FileCount)
	buf = append(buf, fileCountBuf[:]...)

	buf = append(buf, h.Salt[:]...)
	buf = append(buf, byte(h.CompressionAlgo))
	buf = append(buf, h.CompressionLevel)

	var outdirLenBuf [4]byte
	binary.LittleEndian.PutUint32(outdirLenBuf[:], h.OutdirLen)
	buf = append(buf, outdirLenBuf[:]...)

	outdirField := make([]byte, MaxOutdir)
	copy(outdirField, h.OutdirSealed)
	buf = append(buf, outdirField...)

	return buf
}

// computeHeaderHMAC computes HMAC-SHA256 over every header field
// preceding the HMAC itself, keyed with fileKey.
func computeHeaderHMAC(fileKey []byte, h *ArchiveHeader) []byte {
	return primitives.ComputeHMAC(fileKey, marshalHeaderPrefix(h))
}

// ReadHeader reads and validates a fixed-size header from r: magic,
// version range, file_count bound, and (for versions 5 and 6, which
// carry compression_algo) its value. It does not yet verify the HMAC — that
// requires the derived keys, which the caller computes after seeing the
// salt.
func ReadHeader(r io.Reader) (*ArchiveHeader, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", codecerr.ErrIO, err)
	}

	if string(buf[:MagicSize]) != Magic {
		return nil, fmt.Errorf("%w: bad magic", codecerr.ErrFormatInvalid)
	}
	offset := MagicSize

	version := binary.LittleEndian.Uint16(buf[offset : offset+2])
	offset += 2
	if version < MinReadableVersion || version > MaxReadableVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", codecerr.ErrFormatInvalid, version)
	}

	fileCount := binary.LittleEndian.Uint32(buf[offset : offset+4])
	offset += 4
	if fileCount > MaxFiles {
		return nil, fmt.Errorf("%w: file_count %d exceeds %d", codecerr.ErrSizeBound, fileCount, MaxFiles)
	}

	var salt [SaltSize]byte
	copy(salt[:], buf[offset:offset+SaltSize])
	offset += SaltSize

	algoByte := buf[offset]
	offset++
	level := buf[offset]
	offset++

	var algo codec.Algorithm
	if version == 4 {
		// v4 predates compression_algo and is always LZMA.
		algo = codec.LZMA
	} else {
		algo = codec.Algorithm(algoByte)
		if !algo.Valid() {
			return nil, fmt.Errorf("%w: invalid compression_algo %d", codecerr.ErrFormatInvalid, algoByte)
		}
	}

	outdirLen := binary.LittleEndian.Uint32(buf[offset : offset+4])
	offset += 4

	outdirField := buf[offset : offset+MaxOutdir]
	offset += MaxOutdir

	var hmacValue [HMACSize]byte
	copy(hmacValue[:], buf[offset:offset+HMACSize])

	h := &ArchiveHeader{
		Version:          version,
		FileCount:        fileCount,
		Salt:             salt,
		CompressionAlgo:  algo,
		CompressionLevel: level,
		OutdirLen:        outdirLen,
		HMAC:             hmacValue,
	}

	if version >= 6 && outdirLen > 0 {
		if outdirLen > uint32(MaxOutdirPlain) {
			return nil, fmt.Errorf("%w: outdir_len %d exceeds %d", codecerr.ErrSizeBound, outdirLen, MaxOutdirPlain)
		}
		sealed := make([]byte, int(outdirLen)+OutdirNonceSize+OutdirTagSize)
		copy(sealed, outdirField[:len(sealed)])
		h.OutdirSealed = sealed
	}

	return h, nil
}

// VerifyHMAC recomputes the header HMAC with fileKey and compares it
// in constant time against the stored value.
func VerifyHMAC(h *ArchiveHeader, fileKey []byte) error {
	expected := computeHeaderHMAC(fileKey, h)
	if !primitives.ConstantTimeEqual(expected, h.HMAC[:]) {
		return codecerr.ErrHmacMismatch
	}
	return nil
}

// DecryptOutdir opens the encrypted outdir hint with metaKey, validates
// it for path traversal, and returns the plaintext directory. It must
// only be called after VerifyHMAC succeeds.
func DecryptOutdir(h *ArchiveHeader, metaKey []byte) (string, error) {
	if h.OutdirLen == 0 || len(h.OutdirSealed) == 0 {
		return "", nil
	}

	n := int(h.OutdirLen)
	ciphertext := h.OutdirSealed[:n]
	nonce := h.OutdirSealed[n : n+OutdirNonceSize]
	tag := h.OutdirSealed[n+OutdirNonceSize : n+OutdirNonceSize+OutdirTagSize]

	plain, err := primitives.Open(metaKey, nonce, tag, ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: outdir: %v", codecerr.ErrAuth, err)
	}
	if uint32(len(plain)) != h.OutdirLen {
		return "", fmt.Errorf("%w: outdir length mismatch", codecerr.ErrInvalidMetadata)
	}

	outdir := string(plain)
	if pathguard.HasTraversal(outdir) {
		return "", fmt.Errorf("%w: outdir %q", codecerr.ErrPathTraversal, outdir)
	}
	return outdir, nil
}
