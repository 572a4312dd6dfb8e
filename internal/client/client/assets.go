package client

import (
	"net/url"
	"strings"
)

// Assets resolves static asset references against the asset host. Assets
// are fetched by direct reference, never through the REST API.
type Assets struct {
	BaseURL string
}

func NewAssets(baseURL string) Assets {
	return Assets{BaseURL: strings.TrimRight(baseURL, "/")}
}

// Thumbnail is the first page image of the flipbook id.
func (a Assets) Thumbnail(id string) string {
	return a.BaseURL + "/uploads/images/" + url.PathEscape(id) + "/page-01.png"
}

// Page resolves one entry of Flipbook.Images.
func (a Assets) Page(path string) string {
	return a.resolve(path)
}

// Document resolves Flipbook.PDFURL.
func (a Assets) Document(pdfURL string) string {
	return a.resolve(pdfURL)
}

// Pages resolves every image path, keeping their order.
func (a Assets) Pages(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = a.resolve(p)
	}
	return out
}

func (a Assets) resolve(ref string) string {
	if ref == "" {
		return ""
	}
	if u, err := url.Parse(ref); err == nil && u.IsAbs() {
		return ref
	}
	return a.BaseURL + "/" + strings.TrimLeft(ref, "/")
}
