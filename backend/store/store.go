// Package store keeps chunk sets on local disk, one directory per ingested
// file, each holding the numbered parts plus the manifest that describes them.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lmontoya/filepart/backend/localfs"
	"github.com/lmontoya/filepart/backend/manifest"
	"github.com/lmontoya/filepart/backend/split"
	"github.com/lmontoya/filepart/pkg/metrics"
)

const (
	chunksDirName = "chunks"
	tmpDirName    = "tmp"
	partStem      = "part"
	manifestName  = "manifest.toml"
)

var ErrNotFound = errors.New("file not found in store")

type Store struct {
	root      string
	lister    *localfs.Lister
	collector *metrics.SplitCollector
}

type StoredFile struct {
	ID               string
	OriginalFilename string
	Kind             string
	TotalParts       int
	CreatedAt        time.Time
}

// New roots a store at dir, creating the chunks and tmp directories. The
// collector may be nil.
func New(dir string, collector *metrics.SplitCollector) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store dir must not be empty")
	}
	for _, sub := range []string{chunksDirName, tmpDirName} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}
	return &Store{root: dir, lister: localfs.NewLister(), collector: collector}, nil
}

func (s *Store) Root() string {
	return s.root
}

// TmpDir is scratch space for callers that need to land an upload on disk
// before ingesting it.
func (s *Store) TmpDir() string {
	return filepath.Join(s.root, tmpDirName)
}

func (s *Store) chunkDir(id string) string {
	return filepath.Join(s.root, chunksDirName, id)
}

// Ingest chunks the source into a fresh chunk set and records its manifest.
// The source file is left in place. originalName is the filename recorded in
// the manifest; when blank the source's base name is used, letting callers
// that stage uploads under scratch names keep the real one.
func (s *Store) Ingest(srcPath, originalName string, chunkSize int64) (*manifest.Manifest, error) {
	start := time.Now()

	id := uuid.New().String()
	dir := s.chunkDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chunk dir: %w", err)
	}

	m, res, err := split.Chunk(srcPath, split.Options{
		Prefix:    filepath.Join(dir, partStem),
		ChunkSize: chunkSize,
	})
	if err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	// The manifest prefix stays relative so the chunk set can be relocated
	// wholesale.
	m.FileID = id
	m.Prefix = partStem
	if originalName != "" {
		m.OriginalFilename = originalName
	}
	if err := m.Save(filepath.Join(dir, manifestName)); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}

	s.collector.ObserveChunk(res.Parts, res.Bytes)
	s.collector.ObserveIngest(time.Since(start))
	return m, nil
}

// Get loads the manifest for a stored file.
func (s *Store) Get(id string) (*manifest.Manifest, error) {
	path := filepath.Join(s.chunkDir(id), manifestName)
	m, err := manifest.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return m, nil
}

// List returns a record per stored chunk set, sorted by creation time then ID
// for a stable order.
func (s *Store) List() ([]StoredFile, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, chunksDirName))
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}

	var files []StoredFile
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m, err := s.Get(entry.Name())
		if err != nil {
			// A chunk dir without a readable manifest is skipped, not fatal.
			continue
		}
		files = append(files, StoredFile{
			ID:               m.FileID,
			OriginalFilename: m.OriginalFilename,
			Kind:             m.Kind,
			TotalParts:       m.TotalParts,
			CreatedAt:        m.CreatedAt,
		})
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].ID < files[j].ID
		}
		return files[i].CreatedAt.Before(files[j].CreatedAt)
	})
	return files, nil
}

// PartPath resolves the on-disk path of one part, 1-based.
func (s *Store) PartPath(id string, index int) (string, error) {
	m, err := s.Get(id)
	if err != nil {
		return "", err
	}
	if index < 1 || index > m.TotalParts {
		return "", fmt.Errorf("part index %d out of range 1..%d", index, m.TotalParts)
	}
	ext := m.OriginalExtension
	if m.Kind == manifest.KindCSV {
		ext = split.CSVExt
	}
	return filepath.Join(s.chunkDir(id), split.PartName(m.Prefix, index, ext)), nil
}

// Parts lists the part files of a stored chunk set in index order.
func (s *Store) Parts(id string) ([]localfs.FileInfo, error) {
	m, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	all, err := s.lister.List(s.chunkDir(id))
	if err != nil {
		return nil, fmt.Errorf("list parts: %w", err)
	}

	byName := make(map[string]localfs.FileInfo, len(all))
	for _, fi := range all {
		byName[fi.ID] = fi
	}

	ext := m.OriginalExtension
	if m.Kind == manifest.KindCSV {
		ext = split.CSVExt
	}
	parts := make([]localfs.FileInfo, 0, m.TotalParts)
	for i := 1; i <= m.TotalParts; i++ {
		name := split.PartName(m.Prefix, i, ext)
		fi, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("part %s missing from store", name)
		}
		parts = append(parts, fi)
	}
	return parts, nil
}

// Assemble reconstructs the original file to outPath using the manifest.
func (s *Store) Assemble(id, outPath string) (*manifest.Manifest, error) {
	start := time.Now()

	m, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	res, err := split.Join(m, s.chunkDir(id), outPath, nil)
	if err != nil {
		return nil, err
	}

	s.collector.ObserveJoin(res.Parts, res.Bytes)
	s.collector.ObserveAssemble(time.Since(start))
	return m, nil
}

// Remove deletes a chunk set and its manifest.
func (s *Store) Remove(id string) error {
	if _, err := s.Get(id); err != nil {
		return err
	}
	if err := os.RemoveAll(s.chunkDir(id)); err != nil {
		return fmt.Errorf("remove chunk set: %w", err)
	}
	return nil
}
