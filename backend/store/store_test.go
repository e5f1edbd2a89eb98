package store

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/lmontoya/filepart/backend/manifest"
	"github.com/lmontoya/filepart/backend/split"
	"github.com/lmontoya/filepart/pkg/metrics"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "store"), metrics.NewSplitCollector())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func writeSource(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return path
}

func binaryData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 241)
	}
	return data
}

func TestStoreIngestAndAssembleBinary(t *testing.T) {
	s := newTestStore(t)
	srcDir := t.TempDir()
	data := binaryData(5000)
	src := writeSource(t, srcDir, "track.mp3", data)

	m, err := s.Ingest(src, "", 2048)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if m.TotalParts != 3 {
		t.Fatalf("expected 3 parts, got %d", m.TotalParts)
	}
	if m.Kind != manifest.KindBinary || m.OriginalFilename != "track.mp3" {
		t.Fatalf("unexpected manifest %+v", m)
	}

	parts, err := s.Parts(m.FileID)
	if err != nil {
		t.Fatalf("parts: %v", err)
	}
	if len(parts) != 3 {
		t.Fatalf("expected 3 part files, got %d", len(parts))
	}
	if parts[0].ID != "part1.mp3" {
		t.Fatalf("unexpected first part name %q", parts[0].ID)
	}

	out := filepath.Join(srcDir, "reassembled.mp3")
	if _, err := s.Assemble(m.FileID, out); err != nil {
		t.Fatalf("assemble: %v", err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatalf("assembled output differs from source")
	}
}

func TestStoreIngestCSV(t *testing.T) {
	s := newTestStore(t)
	srcDir := t.TempDir()
	src := writeSource(t, srcDir, "table.csv", []byte("h1,h2\n1,a\n2,b\n3,c\n"))

	m, err := s.Ingest(src, "", 4)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if m.Kind != manifest.KindCSV {
		t.Fatalf("expected csv kind, got %q", m.Kind)
	}
	if m.TotalParts != 3 {
		t.Fatalf("expected 3 parts, got %d", m.TotalParts)
	}

	path, err := s.PartPath(m.FileID, 2)
	if err != nil {
		t.Fatalf("part path: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read part: %v", err)
	}
	if string(raw) != "h1,h2\n2,b\n" {
		t.Fatalf("unexpected part content %q", raw)
	}

	out := filepath.Join(srcDir, "out.csv")
	if _, err := s.Assemble(m.FileID, out); err != nil {
		t.Fatalf("assemble: %v", err)
	}
	got, _ := os.ReadFile(out)
	if string(got) != "h1,h2\n1,a\n2,b\n3,c\n" {
		t.Fatalf("unexpected assembled csv %q", got)
	}
}

func TestStoreIngestRecordsCallerFilename(t *testing.T) {
	s := newTestStore(t)
	src := writeSource(t, t.TempDir(), "upload-1629384.mp3", binaryData(100))

	m, err := s.Ingest(src, "track.mp3", 64)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if m.OriginalFilename != "track.mp3" {
		t.Fatalf("expected caller filename, got %q", m.OriginalFilename)
	}
	if m.OriginalExtension != ".mp3" {
		t.Fatalf("unexpected extension %q", m.OriginalExtension)
	}
}

func TestStoreIngestUnsupported(t *testing.T) {
	s := newTestStore(t)
	src := writeSource(t, t.TempDir(), "readme.txt", []byte("nope"))

	if _, err := s.Ingest(src, "", 1024); !errors.Is(err, split.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestStoreListAndRemove(t *testing.T) {
	s := newTestStore(t)
	srcDir := t.TempDir()
	src1 := writeSource(t, srcDir, "a.bin", binaryData(100))
	src2 := writeSource(t, srcDir, "b.bin", binaryData(200))

	m1, err := s.Ingest(src1, "", 64)
	if err != nil {
		t.Fatalf("ingest a: %v", err)
	}
	m2, err := s.Ingest(src2, "", 64)
	if err != nil {
		t.Fatalf("ingest b: %v", err)
	}

	files, err := s.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 stored files, got %d", len(files))
	}

	if err := s.Remove(m1.FileID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := s.Get(m1.FileID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
	if _, err := s.Get(m2.FileID); err != nil {
		t.Fatalf("second file should survive: %v", err)
	}

	files, err = s.List()
	if err != nil {
		t.Fatalf("list after remove: %v", err)
	}
	if len(files) != 1 || files[0].ID != m2.FileID {
		t.Fatalf("unexpected list after remove: %+v", files)
	}
}

func TestStorePartPathRange(t *testing.T) {
	s := newTestStore(t)
	src := writeSource(t, t.TempDir(), "c.bin", binaryData(100))
	m, err := s.Ingest(src, "", 64)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if _, err := s.PartPath(m.FileID, 0); err == nil {
		t.Fatalf("expected error for index 0")
	}
	if _, err := s.PartPath(m.FileID, m.TotalParts+1); err == nil {
		t.Fatalf("expected error for index past the end")
	}
	if _, err := s.PartPath("no-such-id", 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown id, got %v", err)
	}
}
