// Package pathguard rejects path traversal in archive filenames and
// the stored output-directory hint, and provides the textual join used
// to compose extraction paths.
package pathguard

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// HasTraversal reports whether s contains a path-traversal component:
// s contains "../" or "..\", equals "..", or (after stripping one
// optional leading '/') begins with ".." followed by end-of-string or
// '/'.
func HasTraversal(s string) bool {
	if strings.Contains(s, "../") || strings.Contains(s, `..\`) {
		return true
	}
	if s == ".." {
		return true
	}

	p := s
	if strings.HasPrefix(p, "/") {
		p = p[1:]
	}
	if strings.HasPrefix(p, "..") {
		rest := p[2:]
		if rest == "" || strings.HasPrefix(rest, "/") {
			return true
		}
	}
	return false
}

// Join textually composes outputDir and filename as outputDir + "/" +
// filename. Both components must already have passed HasTraversal;
// Join performs no further sanitization.
func Join(outputDir, filename string) string {
	return outputDir + "/" + filename
}

// EnsureParentDirs creates every missing parent directory of path,
// stopping early when the immediate parent already exists.
func EnsureParentDirs(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "/" || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("pathguard: %s exists but is not a directory", dir)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("pathguard: cannot stat %s: %w", dir, err)
	}

	return os.MkdirAll(dir, 0o755)
}
