package split

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Result reports what a chunk or join pass moved. Bytes counts data bytes:
// every byte for the binary pipeline, line content without newlines or
// repeated headers for the CSV pipeline.
type Result struct {
	Parts     int
	Bytes     int64
	PartNames []string
}

// ProgressFunc is invoked once per part after it is fully written or read.
type ProgressFunc func(name string, bytes int64)

// BinaryChunker splits an opaque byte stream into parts of at most ChunkSize
// bytes. Reads proceed strictly forward; each part is written and closed
// before the next read begins. Any part that cannot be written aborts the
// whole operation.
type BinaryChunker struct {
	ChunkSize int64
	OnPart    ProgressFunc
}

func NewBinaryChunker(chunkSize int64) *BinaryChunker {
	return &BinaryChunker{ChunkSize: chunkSize}
}

func (bc *BinaryChunker) Chunk(srcPath, prefix string) (*Result, error) {
	if bc.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", bc.ChunkSize)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	ext := Ext(srcPath)
	buf := make([]byte, bc.ChunkSize)
	res := &Result{}

	for index := 1; ; index++ {
		n, readErr := io.ReadFull(src, buf)
		if n == 0 {
			// A zero-byte read is the termination signal; an exact-multiple
			// source never produces an empty trailing part.
			if readErr == io.EOF || readErr == io.ErrUnexpectedEOF || readErr == nil {
				break
			}
			return nil, fmt.Errorf("read source: %w", readErr)
		}
		if readErr != nil && readErr != io.EOF && readErr != io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("read source: %w", readErr)
		}

		name := PartName(prefix, index, ext)
		if err := writePart(name, buf[:n]); err != nil {
			return nil, err
		}
		res.Parts++
		res.Bytes += int64(n)
		res.PartNames = append(res.PartNames, name)
		if bc.OnPart != nil {
			bc.OnPart(name, int64(n))
		}
	}

	return res, nil
}

func writePart(name string, data []byte) error {
	f, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create part %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write part %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close part %s: %w", name, err)
	}
	return nil
}

// BinaryJoiner concatenates parts <prefix>1<Ext>, <prefix>2<Ext>, ... into a
// single output file. With TotalParts zero it probes indices upward and stops
// at the first missing part; a missing first part yields an empty output.
// With TotalParts set, every indexed part must exist.
type BinaryJoiner struct {
	Ext        string
	TotalParts int
	OnPart     ProgressFunc
}

func NewBinaryJoiner(ext string) *BinaryJoiner {
	return &BinaryJoiner{Ext: ext}
}

func (bj *BinaryJoiner) Join(prefix, outPath string) (*Result, error) {
	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}

	res := &Result{}
	for index := 1; bj.TotalParts == 0 || index <= bj.TotalParts; index++ {
		name := PartName(prefix, index, bj.Ext)
		part, err := os.Open(name)
		if err != nil {
			if bj.TotalParts == 0 && errors.Is(err, os.ErrNotExist) {
				break
			}
			out.Close()
			return nil, fmt.Errorf("open part %s: %w", name, err)
		}
		n, err := io.Copy(out, part)
		part.Close()
		if err != nil {
			out.Close()
			return nil, fmt.Errorf("copy part %s: %w", name, err)
		}
		res.Parts++
		res.Bytes += n
		res.PartNames = append(res.PartNames, name)
		if bj.OnPart != nil {
			bj.OnPart(name, n)
		}
	}

	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("close output: %w", err)
	}
	return res, nil
}
