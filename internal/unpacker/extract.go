package unpacker

import (
	"fmt"
	"io"
	"os"

	"github.com/hambosto/seclume/internal/archive"
	"github.com/hambosto/seclume/internal/codec"
	"github.com/hambosto/seclume/internal/codecerr"
	"github.com/hambosto/seclume/internal/pathguard"
	"github.com/hambosto/seclume/internal/primitives"
	"github.com/hambosto/seclume/internal/verbosity"
)

// ExtractOptions configures an Extract call.
type ExtractOptions struct {
	// Outdir overrides the archive's stored output-directory hint.
	Outdir string
	// Force allows overwriting files already present at the destination.
	Force    bool
	Log      *verbosity.Logger
	Progress interface{ Add(int64) error }
}

// Extract unpacks every entry of the archive at archivePath. It is
// strict: any per-entry failure aborts the whole operation.
func Extract(archivePath string, password []byte, opts ExtractOptions) (err error) {
	o, err := openArchive(archivePath, password, opts.Log)
	if err != nil {
		return err
	}
	defer o.Close()

	outdir, err := resolveOutdir(o, opts.Outdir)
	if err != nil {
		return err
	}
	opts.Log.Basicf("extracting to directory: %s", outdir)

	for i := uint32(0); i < o.header.FileCount; i++ {
		if err := extractOne(o, outdir, opts); err != nil {
			return fmt.Errorf("extracting entry %d: %w", i, err)
		}
	}

	opts.Log.Basicf("extraction completed: %s", archivePath)
	return nil
}

func extractOne(o *opened, outdir string, opts ExtractOptions) error {
	rawEntry, err := readFileEntry(o.file)
	if err != nil {
		return err
	}

	plain, err := archive.DecodeEntry(rawEntry, o.keys.MetaKey.Bytes())
	if err != nil {
		return err
	}

	if pathguard.HasTraversal(plain.Filename) {
		return fmt.Errorf("%w: %s", codecerr.ErrPathTraversal, plain.Filename)
	}
	fullPath := pathguard.Join(outdir, plain.Filename)

	if !opts.Force {
		if _, statErr := os.Stat(fullPath); statErr == nil {
			return fmt.Errorf("%w: %s", codecerr.ErrExists, fullPath)
		}
	}

	if err := pathguard.EnsureParentDirs(fullPath); err != nil {
		return err
	}

	if plain.OriginalSize == 0 {
		opts.Log.Basicf("extracting empty file: %s", fullPath)
		f, err := os.Create(fullPath)
		if err != nil {
			return fmt.Errorf("%w: creating %s: %v", codecerr.ErrIO, fullPath, err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("%w: closing %s: %v", codecerr.ErrIO, fullPath, err)
		}
		if chErr := os.Chmod(fullPath, os.FileMode(plain.Mode)); chErr != nil {
			opts.Log.Basicf("warning: could not set permissions on %s: %v", fullPath, chErr)
		}
		opts.Log.Basicf("extracted empty file: %s", fullPath)
		return nil
	}

	payload := make([]byte, payloadNonceTagSize+int(plain.CompressedSize))
	if _, err := io.ReadFull(o.file, payload); err != nil {
		return fmt.Errorf("%w: reading payload for %s: %v", codecerr.ErrIO, plain.Filename, err)
	}
	nonce := payload[:archive.NonceSize]
	tag := payload[archive.NonceSize:payloadNonceTagSize]
	ciphertext := payload[payloadNonceTagSize:]

	compressed, err := primitives.Open(o.keys.FileKey.Bytes(), nonce, tag, ciphertext)
	if err != nil {
		return fmt.Errorf("%w: payload for %s: %v", codecerr.ErrAuth, plain.Filename, err)
	}
	opts.Log.Debugf("decrypted %d bytes", len(compressed))

	raw, err := codec.Decompress(o.header.CompressionAlgo, compressed, plain.OriginalSize)
	if err != nil {
		return err
	}
	opts.Log.Debugf("decompressed to %d bytes", len(raw))

	if err := os.WriteFile(fullPath, raw, os.FileMode(plain.Mode)); err != nil {
		return fmt.Errorf("%w: writing %s: %v", codecerr.ErrIO, fullPath, err)
	}
	if chErr := os.Chmod(fullPath, os.FileMode(plain.Mode)); chErr != nil {
		opts.Log.Basicf("warning: could not set permissions on %s: %v", fullPath, chErr)
	}

	if opts.Progress != nil {
		if progErr := opts.Progress.Add(int64(plain.OriginalSize)); progErr != nil {
			return progErr
		}
	}

	opts.Log.Basicf("extracted file: %s", fullPath)
	return nil
}
