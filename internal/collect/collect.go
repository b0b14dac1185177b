// Package collect walks input paths into a flat list of regular files
// eligible for packing, applying glob-based exclusion patterns against
// each file's base name.
package collect

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hambosto/seclume/internal/codecerr"
)

// Options controls which files Collect returns.
type Options struct {
	// Excludes holds shell glob patterns (path/filepath.Match syntax)
	// matched against each candidate's base name.
	Excludes []string
	// MaxFiles bounds the number of regular files collected.
	MaxFiles int
}

// Collect walks each root (a file or a directory) and returns every
// regular file found, sorted for deterministic archive ordering. A
// root that is itself a regular file is included unless excluded;
// dotfiles are not special-cased, since an archiver's whole purpose is
// to carry whatever the caller names.
func Collect(roots []string, opts Options) ([]string, error) {
	var out []string

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("%w: cannot stat %s: %v", codecerr.ErrIO, root, err)
		}

		if err := collectPath(root, info, opts, &out); err != nil {
			return nil, err
		}
	}

	sort.Strings(out)
	return out, nil
}

func collectPath(path string, info os.FileInfo, opts Options, out *[]string) error {
	if info.Mode().IsRegular() {
		if excluded(filepath.Base(path), opts.Excludes) {
			return nil
		}
		if opts.MaxFiles > 0 && len(*out) >= opts.MaxFiles {
			return fmt.Errorf("%w: too many files (max %d)", codecerr.ErrSizeBound, opts.MaxFiles)
		}
		*out = append(*out, path)
		return nil
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a regular file or directory", codecerr.ErrIO, path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("%w: cannot read directory %s: %v", codecerr.ErrIO, path, err)
	}

	for _, entry := range entries {
		childInfo, err := entry.Info()
		if err != nil {
			return fmt.Errorf("%w: cannot stat %s: %v", codecerr.ErrIO, filepath.Join(path, entry.Name()), err)
		}
		if err := collectPath(filepath.Join(path, entry.Name()), childInfo, opts, out); err != nil {
			return err
		}
	}
	return nil
}

func excluded(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
