package split

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lmontoya/filepart/backend/manifest"
)

func TestChunkUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.txt")
	writeTestFile(t, src, []byte("hello"))

	_, _, err := Chunk(src, Options{Prefix: filepath.Join(dir, "p"), ChunkSize: 1024})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestChunkWritesManifestAndJoins(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "data.bin")
	data := patternBytes(5000)
	writeTestFile(t, src, data)

	prefix := filepath.Join(dir, "part")
	m, res, err := Chunk(src, Options{Prefix: prefix, ChunkSize: 2048, WriteManifest: true})
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if res.Parts != 3 {
		t.Fatalf("expected 3 parts, got %d", res.Parts)
	}
	if m.TotalParts != 3 || m.Kind != manifest.KindBinary || m.OriginalExtension != ".bin" {
		t.Fatalf("unexpected manifest %+v", m)
	}
	if m.FileID == "" {
		t.Fatalf("manifest has no file id")
	}

	loaded, err := manifest.Load(manifest.PathFor(prefix))
	if err != nil {
		t.Fatalf("load manifest: %v", err)
	}
	if loaded.TotalParts != 3 || loaded.Prefix != "part" {
		t.Fatalf("unexpected loaded manifest %+v", loaded)
	}

	out := filepath.Join(dir, "out.bin")
	if _, err := Join(loaded, dir, out, nil); err != nil {
		t.Fatalf("join: %v", err)
	}
	got, _ := os.ReadFile(out)
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch: %d vs %d bytes", len(got), len(data))
	}
}

func TestRelocatedChunkDirStillJoins(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "before")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	src := filepath.Join(dir, "data.bin")
	data := patternBytes(3000)
	writeTestFile(t, src, data)

	prefix := filepath.Join(srcDir, "part")
	if _, _, err := Chunk(src, Options{Prefix: prefix, ChunkSize: 1024, WriteManifest: true}); err != nil {
		t.Fatalf("chunk: %v", err)
	}

	movedDir := filepath.Join(dir, "after")
	if err := os.Rename(srcDir, movedDir); err != nil {
		t.Fatalf("rename: %v", err)
	}

	m, err := manifest.Load(filepath.Join(movedDir, "part.manifest.toml"))
	if err != nil {
		t.Fatalf("load manifest after move: %v", err)
	}
	out := filepath.Join(dir, "out.bin")
	if _, err := Join(m, movedDir, out, nil); err != nil {
		t.Fatalf("join after move: %v", err)
	}
	got, _ := os.ReadFile(out)
	if !bytes.Equal(got, data) {
		t.Fatalf("round trip mismatch after relocation")
	}
}

func TestJoinCSVManifest(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "table.csv")
	writeTestFile(t, src, []byte("h1,h2\na,1\nb,2\nc,3\n"))

	prefix := filepath.Join(dir, "c")
	m, res, err := Chunk(src, Options{Prefix: prefix, ChunkSize: 4})
	if err != nil {
		t.Fatalf("chunk: %v", err)
	}
	if m.Kind != manifest.KindCSV {
		t.Fatalf("expected csv manifest, got %q", m.Kind)
	}
	if res.Parts == 0 {
		t.Fatalf("expected parts for csv source")
	}

	out := filepath.Join(dir, "out.csv")
	m.Prefix = prefix
	if _, err := Join(m, "", out, nil); err != nil {
		t.Fatalf("join: %v", err)
	}
	got, _ := os.ReadFile(out)
	if string(got) != "h1,h2\na,1\nb,2\nc,3\n" {
		t.Fatalf("unexpected csv output %q", got)
	}
}

func TestDefaultOutputName(t *testing.T) {
	if got := DefaultOutputName(KindBinary, ".mp4"); got != "output.mp4" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := DefaultOutputName(KindCSV, ".csv"); got != "output.csv" {
		t.Fatalf("unexpected name %q", got)
	}
	if got := DefaultOutputName(KindBinary, ""); got != "output" {
		t.Fatalf("unexpected name %q", got)
	}
}
