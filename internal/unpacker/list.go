package unpacker

import (
	"errors"
	"fmt"
	"io"

	"github.com/hambosto/seclume/internal/archive"
	"github.com/hambosto/seclume/internal/codecerr"
	"github.com/hambosto/seclume/internal/verbosity"
)

// Entry describes one archive member as reported by List.
type Entry struct {
	Filename     string
	OriginalSize uint64
	Mode         uint32
}

// ListResult is the outcome of a List call: the entries that decoded
// successfully, plus a count of entries that failed.
type ListResult struct {
	Entries    []Entry
	ErrorCount int
}

// List reports the archive's members without writing any files. It is
// lenient: a failed entry is counted and, when possible, skipped,
// rather than aborting the whole operation.
func List(archivePath string, password []byte, log *verbosity.Logger) (*ListResult, error) {
	o, err := openArchive(archivePath, password, log)
	if err != nil {
		return nil, err
	}
	defer o.Close()

	result := &ListResult{}

	for i := uint32(0); i < o.header.FileCount; i++ {
		entry, err := listOne(o)
		if err != nil {
			if errors.Is(err, errListFatal) {
				return result, fmt.Errorf("listing entry %d: %w", i, err)
			}
			result.ErrorCount++
			continue
		}
		result.Entries = append(result.Entries, entry)
	}

	return result, nil
}

// errListFatal marks a listOne failure that can't be recovered from by
// skipping (a short read leaves the stream position unrecoverable).
var errListFatal = errors.New("unpacker: fatal list error")

func listOne(o *opened) (Entry, error) {
	rawEntry, err := readFileEntry(o.file)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", errListFatal, err)
	}

	plain, err := archive.DecodeEntry(rawEntry, o.keys.MetaKey.Bytes())
	if err != nil {
		if errors.Is(err, codecerr.ErrAuth) {
			// Payload size is unknown without metadata, so there is
			// no safe offset to skip to.
			return Entry{}, fmt.Errorf("%w: %v", errListFatal, err)
		}
		// InvalidMetadata: the name was malformed but sizes still
		// decoded (entry.go parses them unconditionally), so the
		// payload can still be skipped and scanning can continue.
		if plain.CompressedSize > 0 {
			skip := int64(plain.CompressedSize) + payloadNonceTagSize
			if _, seekErr := o.file.Seek(skip, io.SeekCurrent); seekErr != nil {
				return Entry{}, fmt.Errorf("%w: %v", errListFatal, seekErr)
			}
		}
		return Entry{}, err
	}

	if plain.CompressedSize > 0 {
		skip := int64(plain.CompressedSize) + payloadNonceTagSize
		if _, err := o.file.Seek(skip, io.SeekCurrent); err != nil {
			return Entry{}, fmt.Errorf("%w: %v", errListFatal, err)
		}
	}

	return Entry{Filename: plain.Filename, OriginalSize: plain.OriginalSize, Mode: plain.Mode}, nil
}
