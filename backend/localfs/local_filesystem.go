package localfs

import (
	"io/fs"
	"path/filepath"
)

type FileInfo struct {
	ID      string
	AbsPath string
	Size    int64
}

type Lister struct {
}

func NewLister() *Lister {
	return &Lister{}
}

func (l *Lister) List(rootPath string) ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return err
			}

			files = append(files, FileInfo{
				ID:      d.Name(),
				AbsPath: path,
				Size:    info.Size(),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}
