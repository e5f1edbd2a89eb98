package split

import (
	"path/filepath"
	"strconv"
)

// CSVExt is the extension every CSV part carries regardless of the source name.
const CSVExt = ".csv"

type Kind int

const (
	KindUnsupported Kind = iota
	KindBinary
	KindCSV
)

func (k Kind) String() string {
	switch k {
	case KindBinary:
		return "binary"
	case KindCSV:
		return "csv"
	default:
		return "unsupported"
	}
}

var binaryExts = map[string]bool{
	".mp3": true,
	".mp4": true,
	".bin": true,
}

// Detect picks a pipeline from the source path's extension.
func Detect(path string) Kind {
	ext := Ext(path)
	switch {
	case ext == CSVExt:
		return KindCSV
	case binaryExts[ext]:
		return KindBinary
	default:
		return KindUnsupported
	}
}

// Ext returns the filename extension including the leading dot, empty if none.
func Ext(path string) string {
	return filepath.Ext(path)
}

// PartName derives a part's file name from the shared prefix, its 1-based
// index and the extension. No zero padding.
func PartName(prefix string, index int, ext string) string {
	return prefix + strconv.Itoa(index) + ext
}
