package archive

import (
	"encoding/binary"
	"fmt"

	"github.com/hambosto/seclume/internal/codecerr"
	"github.com/hambosto/seclume/internal/pathguard"
	"github.com/hambosto/seclume/internal/primitives"
)

// EncodeEntry seals plain's fields under metaKey and returns the on-disk
// FileEntry record. The filename is bounds- and traversal-checked, and
// the sizes bound- and relation-checked, before sealing so bad metadata
// is rejected before any bytes hit the archive.
func EncodeEntry(plain FileEntryPlain, metaKey []byte) (FileEntry, error) {
	var entry FileEntry

	if len(plain.Filename) > MaxFilename-1 {
		return entry, fmt.Errorf("%w: filename %q exceeds %d bytes", codecerr.ErrSizeBound, plain.Filename, MaxFilename-1)
	}
	if pathguard.HasTraversal(plain.Filename) {
		return entry, fmt.Errorf("%w: %q", codecerr.ErrPathTraversal, plain.Filename)
	}
	if plain.OriginalSize > MaxFileSize {
		return entry, fmt.Errorf("%w: original_size %d exceeds %d", codecerr.ErrSizeBound, plain.OriginalSize, MaxFileSize)
	}
	if plain.CompressedSize > 0 && plain.OriginalSize == 0 {
		return entry, fmt.Errorf("%w: compressed_size %d with original_size 0", codecerr.ErrInvalidMetadata, plain.CompressedSize)
	}

	buf := marshalEntryPlain(plain)

	nonce, tag, ciphertext, err := primitives.Seal(metaKey, buf)
	if err != nil {
		return entry, fmt.Errorf("sealing file entry metadata: %w", err)
	}

	copy(entry.Nonce[:], nonce)
	copy(entry.Tag[:], tag)
	copy(entry.Encrypted[:], ciphertext)

	return entry, nil
}

// DecodeEntry opens a FileEntry's sealed metadata with metaKey and
// unmarshals it back into a FileEntryPlain.
func DecodeEntry(entry FileEntry, metaKey []byte) (FileEntryPlain, error) {
	var plain FileEntryPlain

	buf, err := primitives.Open(metaKey, entry.Nonce[:], entry.Tag[:], entry.Encrypted[:])
	if err != nil {
		return plain, fmt.Errorf("%w: file entry metadata: %v", codecerr.ErrAuth, err)
	}
	if len(buf) != FileEntryPlainSize {
		return plain, fmt.Errorf("%w: decoded entry size %d, want %d", codecerr.ErrInvalidMetadata, len(buf), FileEntryPlainSize)
	}

	return unmarshalEntryPlain(buf)
}

// marshalEntryPlain packs plain into the fixed-size metadata layout:
// filename[256] (NUL-padded), original_size(8), compressed_size(8), mode(4).
func marshalEntryPlain(plain FileEntryPlain) []byte {
	buf := make([]byte, FileEntryPlainSize)

	nameField := buf[:MaxFilename]
	copy(nameField, plain.Filename)

	offset := MaxFilename
	binary.LittleEndian.PutUint64(buf[offset:offset+8], plain.OriginalSize)
	offset += 8
	binary.LittleEndian.PutUint64(buf[offset:offset+8], plain.CompressedSize)
	offset += 8
	binary.LittleEndian.PutUint32(buf[offset:offset+4], plain.Mode)

	return buf
}

// unmarshalEntryPlain reverses marshalEntryPlain, stopping the filename
// at its first NUL byte, and rejects a filename that fills the field
// with no terminator.
func unmarshalEntryPlain(buf []byte) (FileEntryPlain, error) {
	var plain FileEntryPlain

	nameField := buf[:MaxFilename]
	nameLen := indexNUL(nameField)

	offset := MaxFilename
	plain.OriginalSize = binary.LittleEndian.Uint64(buf[offset : offset+8])
	offset += 8
	plain.CompressedSize = binary.LittleEndian.Uint64(buf[offset : offset+8])
	offset += 8
	plain.Mode = binary.LittleEndian.Uint32(buf[offset : offset+4])

	// Sizes are parsed above even when the name is malformed, so a
	// caller walking a multi-entry stream (List) can still skip past
	// this entry's payload using CompressedSize.
	if nameLen < 0 {
		return plain, fmt.Errorf("%w: filename not NUL-terminated", codecerr.ErrInvalidMetadata)
	}
	plain.Filename = string(nameField[:nameLen])

	if pathguard.HasTraversal(plain.Filename) {
		return plain, fmt.Errorf("%w: traversal in filename %q", codecerr.ErrInvalidMetadata, plain.Filename)
	}
	if plain.OriginalSize > MaxFileSize {
		return plain, fmt.Errorf("%w: original_size %d exceeds %d", codecerr.ErrInvalidMetadata, plain.OriginalSize, MaxFileSize)
	}
	if plain.CompressedSize > 0 && plain.OriginalSize == 0 {
		return plain, fmt.Errorf("%w: compressed_size %d with original_size 0", codecerr.ErrInvalidMetadata, plain.CompressedSize)
	}

	return plain, nil
}

func indexNUL(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}
	return -1
}
