package collect

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	mustWrite := func(rel string) {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	mustWrite("a.txt")
	mustWrite("b.log")
	mustWrite("sub/c.txt")
	mustWrite("sub/deep/d.txt")

	return root
}

func TestCollectWalksDirectoryTree(t *testing.T) {
	root := writeTree(t)

	got, err := Collect([]string{root}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("collected %d files, want 4: %v", len(got), got)
	}
}

func TestCollectAppliesExcludePatterns(t *testing.T) {
	root := writeTree(t)

	got, err := Collect([]string{root}, Options{Excludes: []string{"*.log"}})
	if err != nil {
		t.Fatal(err)
	}
	for _, path := range got {
		if filepath.Ext(path) == ".log" {
			t.Errorf("excluded pattern still present: %s", path)
		}
	}
	if len(got) != 3 {
		t.Fatalf("collected %d files, want 3: %v", len(got), got)
	}
}

func TestCollectSingleFileRoot(t *testing.T) {
	root := writeTree(t)
	file := filepath.Join(root, "a.txt")

	got, err := Collect([]string{file}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != file {
		t.Fatalf("got %v, want [%s]", got, file)
	}
}

func TestCollectRejectsTooManyFiles(t *testing.T) {
	root := writeTree(t)

	_, err := Collect([]string{root}, Options{MaxFiles: 1})
	if err == nil {
		t.Fatal("expected error for exceeding MaxFiles")
	}
}

func TestCollectRejectsMissingPath(t *testing.T) {
	if _, err := Collect([]string{"/nonexistent/path/xyz"}, Options{}); err == nil {
		t.Fatal("expected error for missing path")
	}
}
