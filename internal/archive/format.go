// Package archive implements the on-disk .slm format: ArchiveHeader and
// FileEntry encoding/decoding, including the header HMAC and per-entry
// AEAD metadata sealing. All structures are fixed-size and packed,
// serialized in declared field order with little-endian multi-byte
// fields and a trailing integrity tag.
package archive

import "github.com/hambosto/seclume/internal/codec"

// Magic identifies a Seclume archive.
const Magic = "SLM\x00"

// Version is the format version this implementation writes. Readers
// accept MinReadableVersion through MaxReadableVersion inclusive.
const (
	Version            = 6
	MinReadableVersion = 4
	MaxReadableVersion = 6
)

// Field sizes, all fixed by the format.
const (
	MagicSize       = 4
	SaltSize        = 16
	MaxOutdir       = 4096
	MaxFilename     = 256
	NonceSize       = 12
	TagSize         = 16
	HMACSize        = 32
	OutdirNonceSize = NonceSize
	OutdirTagSize   = TagSize
)

// MaxFiles bounds ArchiveHeader.file_count.
const MaxFiles = 1024

// MaxFileSize bounds FileEntryPlain.original_size (2^32 - 1).
const MaxFileSize = (1 << 32) - 1

// HeaderSize is the total fixed size of an on-disk ArchiveHeader:
// magic(4) + version(2) + file_count(4) + salt(16) + compression_algo(1) +
// compression_level(1) + outdir_len(4) + outdir(4096) + hmac(32).
const HeaderSize = MagicSize + 2 + 4 + SaltSize + 1 + 1 + 4 + MaxOutdir + HMACSize

// hmacCoveredSize is the number of leading header bytes the HMAC is
// computed over: every field except the HMAC itself.
const hmacCoveredSize = HeaderSize - HMACSize

// FileEntryPlainSize is the fixed size of the metadata plaintext sealed
// inside each FileEntry: filename(256) + original_size(8) +
// compressed_size(8) + mode(4).
const FileEntryPlainSize = MaxFilename + 8 + 8 + 4

// FileEntrySize is the fixed on-disk size of one FileEntry record:
// nonce(12) + tag(16) + encrypted_data(FileEntryPlainSize).
const FileEntrySize = NonceSize + TagSize + FileEntryPlainSize

// MaxOutdirPlain is the largest plaintext outdir that fits in the fixed
// outdir field once its nonce and tag are subtracted.
const MaxOutdirPlain = MaxOutdir - OutdirNonceSize - OutdirTagSize

// ArchiveHeader is the decoded, in-memory form of the fixed-size
// on-disk header.
type ArchiveHeader struct {
	Version          uint16
	FileCount        uint32
	Salt             [SaltSize]byte
	CompressionAlgo  codec.Algorithm
	CompressionLevel uint8
	OutdirLen        uint32
	// OutdirSealed holds ciphertext‖nonce‖tag for the encrypted outdir
	// hint, or nil if OutdirLen is 0. Length equals OutdirLen+28 when present.
	OutdirSealed []byte
	HMAC         [HMACSize]byte
}

// FileEntryPlain is the metadata sealed inside every FileEntry.
type FileEntryPlain struct {
	Filename       string
	OriginalSize   uint64
	CompressedSize uint64
	Mode           uint32
}

// FileEntry is the on-disk record: an AEAD-sealed FileEntryPlain.
type FileEntry struct {
	Nonce     [NonceSize]byte
	Tag       [TagSize]byte
	Encrypted [FileEntryPlainSize]byte
}
