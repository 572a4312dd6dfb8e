package models

import (
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalFile is a staged document handle: enough to name it, size it and
// stream it, nothing more.
type LocalFile struct {
	Name string
	Size int64
	Path string
}

// OpenLocalFile stats path and returns a handle for it.
func OpenLocalFile(path string) (LocalFile, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return LocalFile{}, err
	}
	return LocalFile{Name: filepath.Base(path), Size: fi.Size(), Path: path}, nil
}

// Open returns a reader over the file content.
func (f LocalFile) Open() (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// IsZero reports whether no file is staged.
func (f LocalFile) IsZero() bool {
	return f.Path == "" && f.Name == ""
}

// BaseTitle is the file name without its extension, used to pre-fill titles.
func (f LocalFile) BaseTitle() string {
	name := filepath.Base(f.Name)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
