package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/flipbook/internal/client/config"
	"github.com/dmitrijs2005/flipbook/internal/client/models"
	"github.com/dmitrijs2005/flipbook/internal/client/pageflip"
	"github.com/dmitrijs2005/flipbook/internal/logging"
	"github.com/dmitrijs2005/flipbook/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	backend *testutil.Backend
	chrome  *testutil.Chrome
	sched   *testutil.Scheduler
	out     *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := testutil.NewBackend(t)
	b.Seed(models.Flipbook{
		PublicID:  "abc123",
		Title:     "Annual Report",
		CreatedAt: time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
		Images: []string{
			"/uploads/images/abc123/page-01.png",
			"/uploads/images/abc123/page-02.png",
			"/uploads/images/abc123/page-03.png",
		},
		PDFURL: "/uploads/pdfs/abc123.pdf",
	})
	b.SetAsset("/uploads/pdfs/abc123.pdf", testutil.MinimalPDF)
	return &harness{
		backend: b,
		chrome:  &testutil.Chrome{Auto: true},
		sched:   &testutil.Scheduler{},
		out:     &bytes.Buffer{},
	}
}

func (h *harness) run(t *testing.T, lines ...string) {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.APIBaseURL = h.backend.APIURL()
	cfg.AssetBaseURL = h.backend.AssetURL()

	app, err := NewApp(cfg,
		WithIO(strings.NewReader(strings.Join(lines, "\n")+"\n"), h.out),
		WithLogger(logging.NewNop()),
		WithChrome(h.chrome),
		WithScheduler(h.sched),
		WithMeasurer(func() (pageflip.Viewport, error) { return pageflip.Viewport{Width: 1600, Height: 1200}, nil }),
	)
	require.NoError(t, err)
	app.Run(context.Background())
}

func TestApp_ViewerSession(t *testing.T) {
	chdirForTest(t, t.TempDir())
	h := newHarness(t)

	h.run(t,
		"open abc123",
		"next",
		"page 3",
		"page x",
		"fs",
		"esc",
		"download",
		"home",
	)

	s := h.out.String()
	assert.Contains(t, s, "1. Annual Report")
	assert.Contains(t, s, h.backend.AssetURL()+"/uploads/images/abc123/page-01.png")
	assert.Contains(t, s, "view:      /flipbook/abc123")
	assert.Contains(t, s, "== Annual Report == (windowed)")
	assert.Contains(t, s, "Page 1/3")
	assert.Contains(t, s, "Page 2/3")
	assert.Contains(t, s, "Page 3/3")
	assert.Contains(t, s, "Error: page must be a number")
	assert.Contains(t, s, "== Annual Report == (fullscreen)")
	assert.Contains(t, s, "original PDF: "+h.backend.AssetURL()+"/uploads/pdfs/abc123.pdf")
	assert.Contains(t, s, "Saved ")

	got, err := os.ReadFile(filepath.Join("download", "abc123.pdf"))
	require.NoError(t, err)
	assert.Equal(t, testutil.MinimalPDF, got)

	timers := h.sched.Timers()
	require.Len(t, timers, 1)
	assert.True(t, timers[0].Stopped(), "settle timer stopped when leaving the viewer")
	assert.Equal(t, []string{"flipbook-viewer"}, h.chrome.Requests())
	assert.Zero(t, h.chrome.Subscribers())
}

func TestApp_DeleteWithConfirmation(t *testing.T) {
	h := newHarness(t)

	h.run(t,
		"delete abc123",
		"n",
		"delete abc123",
		"y",
	)

	s := h.out.String()
	assert.Equal(t, 2, strings.Count(s, "Are you sure you want to delete this flipbook? [y/N]"))
	assert.Contains(t, s, "[ok] Flipbook deleted successfully")
	assert.Contains(t, s, "No flipbooks available. Upload one now!")
	assert.Equal(t, 1, h.backend.Hits(testutil.RouteDelete))
	assert.Equal(t, 2, h.backend.Hits(testutil.RouteRecent))
	assert.False(t, h.backend.Has("abc123"))
}

func TestApp_DeleteFailure(t *testing.T) {
	h := newHarness(t)
	h.backend.Fail(testutil.RouteDelete, testutil.Failure{Status: 500})

	h.run(t, "delete abc123", "yes")

	s := h.out.String()
	assert.Contains(t, s, "[error] Failed to delete flipbook")
	assert.NotContains(t, s, "[ok]")
	assert.True(t, h.backend.Has("abc123"))
}

func TestApp_UploadFlow(t *testing.T) {
	h := newHarness(t)
	h.backend.SetNextID("new1")
	pdf := testutil.WriteFile(t, "Slides.pdf", testutil.MinimalPDF)
	txt := testutil.WriteFile(t, "notes.txt", []byte("hello"))

	h.run(t,
		"select "+pdf,
		"upload",
		"submit",
		"select "+txt,
		"select "+pdf,
		"title Fresh Deck",
		"create",
		"select "+pdf,
		"another",
	)

	s := h.out.String()
	assert.Contains(t, s, "Error: not available in this view")
	assert.Contains(t, s, "[error] Please select a PDF file")
	assert.Contains(t, s, "only PDF files are accepted")
	assert.Contains(t, s, "Selected file: Slides.pdf (0.00 MB)")
	assert.Contains(t, s, "100% uploaded")
	assert.Contains(t, s, "[ok] Upload successful!")
	assert.Contains(t, s, "PDF uploaded successfully!")
	assert.Contains(t, s, "view flipbook: /flipbook/new1")
	assert.Contains(t, s, "Error: selection locked")
	assert.Contains(t, s, "Maximum file size: 20 MB")

	ups := h.backend.Uploads()
	require.Len(t, ups, 1)
	assert.Equal(t, "Fresh Deck", ups[0].Title)
	assert.Equal(t, "Slides.pdf", ups[0].Filename)
}

func TestApp_ViewerNotFoundAndBadPath(t *testing.T) {
	h := newHarness(t)

	h.run(t, "open xyz", "next", "go /nowhere", "show")

	s := h.out.String()
	assert.Contains(t, s, "Flipbook not found")
	assert.Contains(t, s, "Error: flipbook is not loaded")
	assert.Contains(t, s, "route not found")
	assert.NotContains(t, s, "Failed to load flipbook")
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}
