package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/flipbook/internal/client/models"
)

// MinimalPDF is a tiny document that content sniffers recognise as a PDF.
var MinimalPDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

// WriteFile writes content to name inside a fresh temp dir and returns its path.
func WriteFile(t testing.TB, name string, content []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, content, 0o600); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

// PDFFile stages a small PDF named name.
func PDFFile(t testing.TB, name string) models.LocalFile {
	t.Helper()
	f, err := models.OpenLocalFile(WriteFile(t, name, MinimalPDF))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	return f
}
