package split

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// Lines longer than this abort the operation rather than silently truncating.
const maxLineBytes = 64 * 1024 * 1024

// CSVChunker splits a CSV file at line boundaries. The first source line is
// the header and is repeated as the first line of every part. Threshold
// counts cumulative line-content bytes without newline terminators and is a
// soft cap: a new part opens when the running count is zero or the next line
// would push it past the threshold, and the line then lands whole in the
// current part even if it alone exceeds the threshold. A header-only source
// produces zero parts.
type CSVChunker struct {
	Threshold int64
	OnPart    ProgressFunc
}

func NewCSVChunker(threshold int64) *CSVChunker {
	return &CSVChunker{Threshold: threshold}
}

func (cc *CSVChunker) Chunk(srcPath, prefix string) (*Result, error) {
	if cc.Threshold <= 0 {
		return nil, fmt.Errorf("threshold must be positive, got %d", cc.Threshold)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read header: %w", err)
		}
		return &Result{}, nil
	}
	header := scanner.Text()

	res := &Result{}
	var (
		out         *os.File
		outName     string
		outBytes    int64
		accumulated int64
	)

	closeCurrent := func() error {
		if out == nil {
			return nil
		}
		err := out.Close()
		out = nil
		if err != nil {
			return fmt.Errorf("close part %s: %w", outName, err)
		}
		if cc.OnPart != nil {
			cc.OnPart(outName, outBytes)
		}
		return nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		size := int64(len(line))

		if accumulated == 0 || accumulated+size > cc.Threshold {
			if err := closeCurrent(); err != nil {
				return nil, err
			}
			outName = PartName(prefix, res.Parts+1, CSVExt)
			out, err = os.Create(outName)
			if err != nil {
				return nil, fmt.Errorf("create part %s: %w", outName, err)
			}
			if _, err := fmt.Fprintln(out, header); err != nil {
				out.Close()
				return nil, fmt.Errorf("write header to part %s: %w", outName, err)
			}
			res.Parts++
			res.PartNames = append(res.PartNames, outName)
			accumulated = 0
			outBytes = 0
		}

		if _, err := fmt.Fprintln(out, line); err != nil {
			out.Close()
			return nil, fmt.Errorf("write part %s: %w", outName, err)
		}
		accumulated += size
		outBytes += size
		res.Bytes += size
	}
	if err := scanner.Err(); err != nil {
		if out != nil {
			out.Close()
		}
		return nil, fmt.Errorf("read source: %w", err)
	}

	if err := closeCurrent(); err != nil {
		return nil, err
	}
	return res, nil
}

// CSVJoiner reassembles parts <prefix>1.csv, <prefix>2.csv, ... The first
// line of the first part is written as the output header; the first line of
// every later part is the repeated header and is skipped. Every output line
// is newline-terminated whether or not the source was. TotalParts follows
// the same probe-versus-exact contract as BinaryJoiner.
type CSVJoiner struct {
	TotalParts int
	OnPart     ProgressFunc
}

func NewCSVJoiner() *CSVJoiner {
	return &CSVJoiner{}
}

func (cj *CSVJoiner) Join(prefix, outPath string) (*Result, error) {
	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	w := bufio.NewWriter(out)

	res := &Result{}
	headerWritten := false

	for index := 1; cj.TotalParts == 0 || index <= cj.TotalParts; index++ {
		name := PartName(prefix, index, CSVExt)
		part, err := os.Open(name)
		if err != nil {
			if cj.TotalParts == 0 && errors.Is(err, os.ErrNotExist) {
				break
			}
			out.Close()
			return nil, fmt.Errorf("open part %s: %w", name, err)
		}

		var partBytes int64
		scanner := bufio.NewScanner(part)
		scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
		first := true
		for scanner.Scan() {
			line := scanner.Text()
			if first {
				first = false
				if headerWritten {
					continue
				}
				headerWritten = true
				if _, err := fmt.Fprintln(w, line); err != nil {
					part.Close()
					out.Close()
					return nil, fmt.Errorf("write output: %w", err)
				}
				continue
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				part.Close()
				out.Close()
				return nil, fmt.Errorf("write output: %w", err)
			}
			partBytes += int64(len(line))
		}
		scanErr := scanner.Err()
		part.Close()
		if scanErr != nil {
			out.Close()
			return nil, fmt.Errorf("read part %s: %w", name, scanErr)
		}

		res.Parts++
		res.Bytes += partBytes
		res.PartNames = append(res.PartNames, name)
		if cj.OnPart != nil {
			cj.OnPart(name, partBytes)
		}
	}

	if err := w.Flush(); err != nil {
		out.Close()
		return nil, fmt.Errorf("flush output: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("close output: %w", err)
	}
	return res, nil
}
