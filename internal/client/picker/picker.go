// Package picker stages a single local PDF for upload. It stands in for a
// drag-and-drop zone: rejected files never reach the upload controller.
package picker

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/flipbook/internal/client/models"
	"github.com/gabriel-vasile/mimetype"
)

const pdfMIME = "application/pdf"

var (
	ErrNoFile       = errors.New("no file given")
	ErrTooManyFiles = errors.New("only one file can be uploaded at a time")
	ErrNotPDF       = errors.New("only PDF files are accepted")
	ErrTooLarge     = errors.New("file too large")
	ErrNotRegular   = errors.New("not a regular file")
)

type Picker struct {
	MaxSize int64
}

func New(maxSize int64) *Picker {
	return &Picker{MaxSize: maxSize}
}

// Pick validates paths and returns the staged file.
func (p *Picker) Pick(paths ...string) (models.LocalFile, error) {
	switch {
	case len(paths) == 0:
		return models.LocalFile{}, ErrNoFile
	case len(paths) > 1:
		return models.LocalFile{}, ErrTooManyFiles
	}
	path := paths[0]

	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return models.LocalFile{}, fmt.Errorf("%s: %w", filepath.Base(path), ErrNotPDF)
	}

	fi, err := os.Stat(path)
	if err != nil {
		return models.LocalFile{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if !fi.Mode().IsRegular() {
		return models.LocalFile{}, fmt.Errorf("%s: %w", path, ErrNotRegular)
	}
	f := models.LocalFile{Name: fi.Name(), Size: fi.Size(), Path: path}
	if p.MaxSize > 0 && f.Size > p.MaxSize {
		return models.LocalFile{}, fmt.Errorf("%s is %d bytes, limit is %d: %w", f.Name, f.Size, p.MaxSize, ErrTooLarge)
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return models.LocalFile{}, fmt.Errorf("detect %s: %w", path, err)
	}
	if !mt.Is(pdfMIME) {
		return models.LocalFile{}, fmt.Errorf("%s looks like %s: %w", f.Name, mt.String(), ErrNotPDF)
	}
	return f, nil
}
