package localfs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestListerWalksFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "part1.bin"), []byte("abcd"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested", "part2.bin"), []byte("efghij"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	files, err := NewLister().List(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}

	sizes := make(map[string]int64)
	for _, f := range files {
		sizes[f.ID] = f.Size
		if f.AbsPath == "" {
			t.Fatalf("file %s has no path", f.ID)
		}
	}
	if sizes["part1.bin"] != 4 || sizes["part2.bin"] != 6 {
		t.Fatalf("unexpected sizes %v", sizes)
	}
}

func TestListerMissingRoot(t *testing.T) {
	if _, err := NewLister().List(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatalf("expected error for missing root")
	}
}
