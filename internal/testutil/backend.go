// Package testutil provides an in-memory flipbook backend and hand-written
// test doubles shared by the client packages' tests.
package testutil

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/flipbook/internal/client/models"
	"github.com/labstack/echo/v4"
	"github.com/rs/cors"
)

// Route keys accepted by Hits, Fail and Hold.
const (
	RouteRecent = "GET /flipbooks/recent"
	RouteGet    = "GET /flipbooks/:id"
	RouteUpload = "POST /upload"
	RouteDelete = "DELETE /flipbooks/:id"
	RouteAsset  = "GET /uploads/*"
)

// Failure makes a route answer with Status and, when set, {"message": Message}.
type Failure struct {
	Status  int
	Message string
}

// Upload records one accepted upload.
type Upload struct {
	Title    string
	Filename string
	Content  []byte
}

// Backend is a fake flipbook server. The REST API is mounted under /api and
// static assets under /uploads.
type Backend struct {
	srv *httptest.Server

	mu        sync.Mutex
	books     map[string]models.Flipbook
	assets    map[string][]byte
	hits      map[string]int
	failures  map[string]Failure
	holds     map[string]*gate
	uploads   []Upload
	nextID    string
	seq       int
	nullEmpty bool
}

// NewBackend starts a backend that is closed when t finishes.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		books:    make(map[string]models.Flipbook),
		assets:   make(map[string][]byte),
		hits:     make(map[string]int),
		failures: make(map[string]Failure),
		holds:    make(map[string]*gate),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(b.intercept)

	api := e.Group("/api")
	api.GET("/flipbooks/recent", b.listRecent)
	api.GET("/flipbooks/:id", b.getFlipbook)
	api.POST("/upload", b.upload)
	api.DELETE("/flipbooks/:id", b.deleteFlipbook)
	e.GET("/uploads/*", b.asset)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"*"},
	})
	b.srv = httptest.NewServer(c.Handler(e))
	t.Cleanup(b.Close)
	return b
}

func (b *Backend) APIURL() string   { return b.srv.URL + "/api" }
func (b *Backend) AssetURL() string { return b.srv.URL }

// Close releases held requests and stops the server.
func (b *Backend) Close() {
	b.mu.Lock()
	for k, g := range b.holds {
		g.open()
		delete(b.holds, k)
	}
	b.mu.Unlock()
	b.srv.Close()
}

// Seed stores flipbooks as if they had been uploaded.
func (b *Backend) Seed(books ...models.Flipbook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, fb := range books {
		b.books[fb.PublicID] = fb
	}
}

// SetAsset serves content at path, which must start with /uploads/.
func (b *Backend) SetAsset(path string, content []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.assets[path] = content
}

// SetNextID fixes the id handed out by the next upload.
func (b *Backend) SetNextID(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID = id
}

// NullForMissing makes lookups of unknown ids answer 200 with a null body
// instead of 404.
func (b *Backend) NullForMissing(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nullEmpty = v
}

func (b *Backend) Has(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.books[id]
	return ok
}

func (b *Backend) Hits(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[route]
}

func (b *Backend) Uploads() []Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Upload(nil), b.uploads...)
}

// Fail makes route answer with f until Recover is called.
func (b *Backend) Fail(route string, f Failure) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = f
}

func (b *Backend) Recover(route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, route)
}

// Hold blocks requests to route, after they are counted, until the returned
// release func is called or the client goes away.
func (b *Backend) Hold(route string) (release func()) {
	g := &gate{ch: make(chan struct{})}
	b.mu.Lock()
	b.holds[route] = g
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		if b.holds[route] == g {
			delete(b.holds, route)
		}
		b.mu.Unlock()
		g.open()
	}
}

type gate struct {
	ch   chan struct{}
	once sync.Once
}

func (g *gate) open() { g.once.Do(func() { close(g.ch) }) }

func (b *Backend) intercept(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Method + " " + strings.TrimPrefix(c.Path(), "/api")

		b.mu.Lock()
		b.hits[key]++
		hold := b.holds[key]
		fail, failing := b.failures[key]
		b.mu.Unlock()

		if hold != nil {
			select {
			case <-hold.ch:
			case <-c.Request().Context().Done():
				return c.Request().Context().Err()
			}
		}

		if failing {
			if fail.Message == "" {
				return c.NoContent(fail.Status)
			}
			return c.JSON(fail.Status, map[string]string{"message": fail.Message})
		}
		return next(c)
	}
}

func (b *Backend) listRecent(c echo.Context) error {
	b.mu.Lock()
	items := make([]models.FlipbookSummary, 0, len(b.books))
	for _, fb := range b.books {
		items = append(items, fb.Summary())
	}
	b.mu.Unlock()

	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
	return c.JSON(http.StatusOK, items)
}

func (b *Backend) getFlipbook(c echo.Context) error {
	id := c.Param("id")

	b.mu.Lock()
	fb, ok := b.books[id]
	nullEmpty := b.nullEmpty
	b.mu.Unlock()

	if !ok {
		if nullEmpty {
			return c.JSONBlob(http.StatusOK, []byte("null"))
		}
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Flipbook not found"})
	}
	return c.JSON(http.StatusOK, fb)
}

func (b *Backend) upload(c echo.Context) error {
	fh, err := c.FormFile("pdf")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "No file uploaded"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "failed to read upload"})
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "failed to read upload"})
	}

	title := c.FormValue("title")

	b.mu.Lock()
	id := b.nextID
	b.nextID = ""
	if id == "" {
		b.seq++
		id = fmt.Sprintf("fb%03d", b.seq)
	}
	b.uploads = append(b.uploads, Upload{Title: title, Filename: fh.Filename, Content: content})
	b.books[id] = models.Flipbook{
		PublicID:  id,
		Title:     title,
		CreatedAt: time.Now().UTC(),
		Images:    []string{"/uploads/images/" + id + "/page-01.png"},
		PDFURL:    "/uploads/pdfs/" + id + ".pdf",
	}
	b.mu.Unlock()

	return c.JSON(http.StatusCreated, models.UploadResult{ID: id})
}

func (b *Backend) deleteFlipbook(c echo.Context) error {
	id := c.Param("id")

	b.mu.Lock()
	_, ok := b.books[id]
	delete(b.books, id)
	b.mu.Unlock()

	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"message": "Flipbook not found"})
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Flipbook deleted successfully"})
}

func (b *Backend) asset(c echo.Context) error {
	b.mu.Lock()
	content, ok := b.assets[c.Request().URL.Path]
	b.mu.Unlock()

	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "asset not found")
	}
	return c.Blob(http.StatusOK, http.DetectContentType(content), content)
}
