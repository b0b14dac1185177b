// Package unpacker reads archives back out: Extract is strict (any
// per-entry failure aborts the operation), List is lenient (per-entry
// failures are counted and skipped where the stream position allows).
// Both share the same header-read, key-derive, HMAC-verify prefix.
package unpacker

import (
	"fmt"
	"io"
	"os"

	"github.com/hambosto/seclume/internal/archive"
	"github.com/hambosto/seclume/internal/codecerr"
	"github.com/hambosto/seclume/internal/keyschedule"
	"github.com/hambosto/seclume/internal/verbosity"
)

// opened holds everything derived from a header read shared by Extract
// and List.
type opened struct {
	file   *os.File
	header *archive.ArchiveHeader
	keys   *keyschedule.Keys
}

// openArchive reads and authenticates the header, deriving keys from
// password and the header's stored salt.
func openArchive(archivePath string, password []byte, log *verbosity.Logger) (*opened, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", codecerr.ErrIO, archivePath, err)
	}

	header, err := archive.ReadHeader(file)
	if err != nil {
		file.Close()
		return nil, err
	}
	log.Basicf("read archive header, version %d, %d files, compression %s level %d",
		header.Version, header.FileCount, header.CompressionAlgo, header.CompressionLevel)

	keys, err := keyschedule.Derive(password, header.Salt[:])
	if err != nil {
		file.Close()
		return nil, err
	}
	log.Debugf("derived encryption keys")

	if err := archive.VerifyHMAC(header, keys.FileKey.Bytes()); err != nil {
		keys.Close()
		file.Close()
		return nil, err
	}
	log.Debugf("verified header HMAC")

	return &opened{file: file, header: header, keys: keys}, nil
}

func (o *opened) Close() {
	o.keys.Close()
	o.file.Close()
}

// resolveOutdir picks the extraction directory by priority: caller
// argument, then the header's sealed hint, then ".", falling back to
// "." if the chosen directory doesn't exist.
func resolveOutdir(o *opened, callerOutdir string) (string, error) {
	candidate := callerOutdir
	if candidate == "" {
		hint, err := archive.DecryptOutdir(o.header, o.keys.MetaKey.Bytes())
		if err != nil {
			return "", err
		}
		candidate = hint
	}
	if candidate == "" {
		candidate = "."
	}

	if info, err := os.Stat(candidate); err != nil || !info.IsDir() {
		if candidate != "." {
			if info2, err2 := os.Stat("."); err2 != nil || !info2.IsDir() {
				return "", fmt.Errorf("%w: no usable output directory", codecerr.ErrIO)
			}
			candidate = "."
		}
	}
	return candidate, nil
}

func readFileEntry(r io.Reader) (archive.FileEntry, error) {
	var entry archive.FileEntry
	buf := make([]byte, archive.FileEntrySize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return entry, fmt.Errorf("%w: reading entry: %v", codecerr.ErrIO, err)
	}
	copy(entry.Nonce[:], buf[:archive.NonceSize])
	copy(entry.Tag[:], buf[archive.NonceSize:archive.NonceSize+archive.TagSize])
	copy(entry.Encrypted[:], buf[archive.NonceSize+archive.TagSize:])
	return entry, nil
}

const payloadNonceTagSize = archive.NonceSize + archive.TagSize
