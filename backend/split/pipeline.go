package split

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/lmontoya/filepart/backend/manifest"
)

// ErrUnsupported is returned when a source extension maps to no pipeline.
var ErrUnsupported = errors.New("unsupported file type")

// Options drive a dispatching chunk pass. ChunkSize is the part byte size for
// the binary pipeline and the line-byte threshold for the CSV pipeline.
type Options struct {
	Prefix        string
	ChunkSize     int64
	WriteManifest bool
	OnPart        ProgressFunc
}

// Chunk picks a pipeline from the source extension, produces the parts and
// returns the resulting manifest. The manifest is written beside the parts
// when opts.WriteManifest is set.
func Chunk(srcPath string, opts Options) (*manifest.Manifest, *Result, error) {
	kind := Detect(srcPath)

	var (
		res *Result
		err error
	)
	switch kind {
	case KindBinary:
		bc := &BinaryChunker{ChunkSize: opts.ChunkSize, OnPart: opts.OnPart}
		res, err = bc.Chunk(srcPath, opts.Prefix)
	case KindCSV:
		cc := &CSVChunker{Threshold: opts.ChunkSize, OnPart: opts.OnPart}
		res, err = cc.Chunk(srcPath, opts.Prefix)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupported, Ext(srcPath))
	}
	if err != nil {
		return nil, nil, err
	}

	// The recorded prefix is relative to the manifest's own directory so a
	// relocated chunk directory still joins.
	m := &manifest.Manifest{
		FileID:            uuid.New().String(),
		OriginalFilename:  filepath.Base(srcPath),
		OriginalExtension: Ext(srcPath),
		Prefix:            filepath.Base(opts.Prefix),
		TotalParts:        res.Parts,
		Kind:              kind.String(),
		ChunkSize:         opts.ChunkSize,
		CreatedAt:         time.Now().UTC(),
	}
	if opts.WriteManifest {
		if err := m.Save(manifest.PathFor(opts.Prefix)); err != nil {
			return nil, nil, err
		}
	}
	return m, res, nil
}

// Join reassembles the chunk set a manifest describes. The manifest prefix is
// resolved relative to its own directory unless absolute, so a relocated
// chunk directory still joins.
func Join(m *manifest.Manifest, manifestDir, outPath string, onPart ProgressFunc) (*Result, error) {
	prefix := m.Prefix
	if manifestDir != "" && !filepath.IsAbs(prefix) {
		prefix = filepath.Join(manifestDir, prefix)
	}

	switch m.Kind {
	case manifest.KindBinary:
		bj := &BinaryJoiner{Ext: m.OriginalExtension, TotalParts: m.TotalParts, OnPart: onPart}
		return bj.Join(prefix, outPath)
	case manifest.KindCSV:
		cj := &CSVJoiner{TotalParts: m.TotalParts, OnPart: onPart}
		return cj.Join(prefix, outPath)
	default:
		return nil, fmt.Errorf("%w: manifest kind %q", ErrUnsupported, m.Kind)
	}
}

// DefaultOutputName matches the historical reassembly destination: output.csv
// for the CSV pipeline, output plus the original extension otherwise.
func DefaultOutputName(kind Kind, ext string) string {
	if kind == KindCSV {
		return "output" + CSVExt
	}
	return "output" + ext
}
