// Package packer implements archive creation: derive keys, build and
// write the header, then seal each input's metadata and payload in
// turn, cleaning up on every exit path.
package packer

import (
	"fmt"
	"io"
	"os"

	"github.com/hambosto/seclume/internal/archive"
	"github.com/hambosto/seclume/internal/codec"
	"github.com/hambosto/seclume/internal/codecerr"
	"github.com/hambosto/seclume/internal/keyschedule"
	"github.com/hambosto/seclume/internal/primitives"
	"github.com/hambosto/seclume/internal/verbosity"
)

// Input describes one file to be packed.
type Input struct {
	// Filename is the name stored in the archive (not a full path).
	Filename string
	// Path is the filesystem path to read the file's bytes from.
	Path string
	// Size is the file's size in bytes.
	Size int64
	// Mode is the file's POSIX permission bits.
	Mode uint32
}

// Options configures a Pack call.
type Options struct {
	Algorithm  codec.Algorithm
	Level      int
	OutdirHint string
	Force      bool
	Log        *verbosity.Logger
	Progress   interface{ Add(int64) error }
}

// Pack writes a new archive at archivePath containing inputs, sealed
// under password. On any failure the partially written archive file is
// removed, so no truncated archive is ever left behind.
func Pack(archivePath string, inputs []Input, password []byte, opts Options) (err error) {
	if len(inputs) == 0 {
		return fmt.Errorf("%w: no inputs", codecerr.ErrInvalidMetadata)
	}
	if len(inputs) > archive.MaxFiles {
		return fmt.Errorf("%w: %d inputs exceeds %d", codecerr.ErrSizeBound, len(inputs), archive.MaxFiles)
	}
	if !opts.Force {
		if _, statErr := os.Stat(archivePath); statErr == nil {
			return fmt.Errorf("%w: %s", codecerr.ErrExists, archivePath)
		}
	}

	salt, err := keyschedule.GenerateSalt()
	if err != nil {
		return err
	}
	var saltArr [archive.SaltSize]byte
	copy(saltArr[:], salt)

	keys, err := keyschedule.Derive(password, salt)
	if err != nil {
		return err
	}
	defer keys.Close()

	opts.Log.Debugf("derived encryption keys")

	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("%w: creating archive: %v", codecerr.ErrIO, err)
	}
	defer func() {
		closeErr := out.Close()
		if err != nil {
			os.Remove(archivePath)
			return
		}
		if closeErr != nil {
			err = fmt.Errorf("%w: closing archive: %v", codecerr.ErrIO, closeErr)
			os.Remove(archivePath)
		}
	}()

	header, err := archive.NewHeader(uint32(len(inputs)), saltArr, opts.Algorithm, uint8(opts.Level), opts.OutdirHint, keys.FileKey.Bytes(), keys.MetaKey.Bytes())
	if err != nil {
		return err
	}
	if err := archive.WriteHeader(out, header); err != nil {
		return err
	}

	for _, input := range inputs {
		if err := packOne(out, input, opts, keys); err != nil {
			return fmt.Errorf("packing %s: %w", input.Filename, err)
		}
		if opts.Progress != nil {
			if progErr := opts.Progress.Add(input.Size); progErr != nil {
				return progErr
			}
		}
	}

	if err := out.Sync(); err != nil {
		return fmt.Errorf("%w: syncing archive: %v", codecerr.ErrIO, err)
	}

	opts.Log.Basicf("packed %d files into %s", len(inputs), archivePath)
	return nil
}

func packOne(w io.Writer, input Input, opts Options, keys *keyschedule.Keys) error {
	if len(input.Filename) > archive.MaxFilename-1 {
		return fmt.Errorf("%w: filename %q too long", codecerr.ErrSizeBound, input.Filename)
	}
	if input.Size > archive.MaxFileSize {
		return fmt.Errorf("%w: %s exceeds max file size", codecerr.ErrSizeBound, input.Filename)
	}

	raw, err := os.ReadFile(input.Path)
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", codecerr.ErrIO, input.Path, err)
	}

	plain := archive.FileEntryPlain{
		Filename:     input.Filename,
		OriginalSize: uint64(len(raw)),
		Mode:         input.Mode,
	}

	var compressed []byte
	if len(raw) > 0 {
		compressed, err = codec.Compress(opts.Algorithm, opts.Level, raw)
		if err != nil {
			return err
		}
		plain.CompressedSize = uint64(len(compressed))
	}

	entry, err := archive.EncodeEntry(plain, keys.MetaKey.Bytes())
	if err != nil {
		return err
	}
	if err := writeEntry(w, entry); err != nil {
		return err
	}

	if plain.CompressedSize == 0 {
		return nil
	}

	nonce, tag, ciphertext, err := primitives.Seal(keys.FileKey.Bytes(), compressed)
	if err != nil {
		return fmt.Errorf("sealing payload for %s: %w", input.Filename, err)
	}
	return writePayload(w, nonce, tag, ciphertext)
}

func writeEntry(w io.Writer, entry archive.FileEntry) error {
	buf := make([]byte, 0, archive.FileEntrySize)
	buf = append(buf, entry.Nonce[:]...)
	buf = append(buf, entry.Tag[:]...)
	buf = append(buf, entry.Encrypted[:]...)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%w: writing entry: %v", codecerr.ErrIO, err)
	}
	return nil
}

func writePayload(w io.Writer, nonce, tag, ciphertext []byte) error {
	buf := make([]byte, 0, len(nonce)+len(tag)+len(ciphertext))
	buf = append(buf, nonce...)
	buf = append(buf, tag...)
	buf = append(buf, ciphertext...)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("%w: writing payload: %v", codecerr.ErrIO, err)
	}
	return nil
}
