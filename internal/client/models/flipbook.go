package models

import (
	"net/url"
	"time"
)

// Flipbook is a converted document as served by the backend. It is
// read-only to the client.
type Flipbook struct {
	PublicID  string    `json:"publicId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`

	// Images lists page image paths in page order. The client never reorders it.
	Images []string `json:"images"`

	// PDFURL is the path of the original source document.
	PDFURL string `json:"pdfUrl"`
}

// PageCount returns the number of pages.
func (f *Flipbook) PageCount() int {
	if f == nil {
		return 0
	}
	return len(f.Images)
}

// Summary returns the list-view projection of f.
func (f *Flipbook) Summary() FlipbookSummary {
	return FlipbookSummary{PublicID: f.PublicID, Title: f.Title, CreatedAt: f.CreatedAt}
}

// FlipbookSummary is one entry of the recent list.
type FlipbookSummary struct {
	PublicID  string    `json:"publicId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// UploadResult is the backend's answer to a successful upload.
type UploadResult struct {
	ID string `json:"id"`
}

const (
	HomePath   = "/"
	UploadPath = "/upload"
)

// ViewerPath is the navigable location of the viewer for id.
func ViewerPath(id string) string {
	return "/flipbook/" + url.PathEscape(id)
}
