// Package manifest records what a chunk pass produced so reassembly does not
// depend on probing the filesystem for the next part index.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	KindBinary = "binary"
	KindCSV    = "csv"
)

type Manifest struct {
	FileID            string    `toml:"file_id"`
	OriginalFilename  string    `toml:"original_filename"`
	OriginalExtension string    `toml:"original_extension"`
	Prefix            string    `toml:"prefix"`
	TotalParts        int       `toml:"total_parts"`
	Kind              string    `toml:"kind"`
	ChunkSize         int64     `toml:"chunk_size"`
	CreatedAt         time.Time `toml:"created_at"`
}

// PathFor is the conventional manifest location beside the parts. The suffix
// can never collide with a part name since parts end in an integer plus
// extension.
func PathFor(prefix string) string {
	return prefix + ".manifest.toml"
}

func (m *Manifest) Validate() error {
	if strings.TrimSpace(m.Prefix) == "" {
		return errors.New("manifest prefix must not be empty")
	}
	if m.Kind != KindBinary && m.Kind != KindCSV {
		return fmt.Errorf("unknown manifest kind %q", m.Kind)
	}
	if m.TotalParts < 0 {
		return fmt.Errorf("total_parts must not be negative, got %d", m.TotalParts)
	}
	if m.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", m.ChunkSize)
	}
	return nil
}

func (m *Manifest) Save(path string) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create manifest dir: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

func Load(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return &m, nil
}

// Exists reports whether a manifest file is present at the conventional
// location for the prefix.
func Exists(prefix string) bool {
	_, err := os.Stat(PathFor(prefix))
	return err == nil
}
