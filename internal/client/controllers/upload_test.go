package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/flipbook/internal/client/client"
	"github.com/dmitrijs2005/flipbook/internal/client/notify"
	"github.com/dmitrijs2005/flipbook/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) upload(t *testing.T) *Upload {
	t.Helper()
	c := NewUpload(f.deps)
	require.NoError(t, c.Activate(context.Background()))
	return c
}

func TestUpload_SubmitWithoutFile(t *testing.T) {
	f := newFixture(t)
	c := f.upload(t)
	before := c.State()

	err := c.Submit(context.Background())
	require.ErrorIs(t, err, ErrNoFileSelected)
	require.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, before, c.State())
	assert.Equal(t, UploadIdle, c.State().Status)
	assert.Zero(t, f.backend.Hits(testutil.RouteUpload))
	assert.Equal(t, []notify.Notification{{Level: notify.Error, Message: MsgNoFile}}, f.notes.All())
}

func TestUpload_SelectPrefillsTitle(t *testing.T) {
	f := newFixture(t)
	c := f.upload(t)

	require.NoError(t, c.Select(testutil.PDFFile(t, "first.pdf")))
	require.NoError(t, c.SetTitle("Custom"))
	require.NoError(t, c.Select(testutil.PDFFile(t, "quarterly.report.pdf")))

	st := c.State()
	assert.Equal(t, "quarterly.report.pdf", st.File.Name)
	assert.Equal(t, "quarterly.report", st.Title)
	assert.Equal(t, "quarterly.report", st.DerivedTitle)
}

func TestUpload_Succeeds(t *testing.T) {
	f := newFixture(t)
	f.backend.SetNextID("abc123")
	c := f.upload(t)

	var mu sync.Mutex
	var progress []int
	c.Subscribe(func(st UploadState) {
		if st.Status != Uploading {
			return
		}
		mu.Lock()
		progress = append(progress, st.Progress)
		mu.Unlock()
	})

	require.NoError(t, c.Select(testutil.PDFFile(t, "report.pdf")))
	require.NoError(t, c.SetTitle("  Annual Report "))
	require.NoError(t, c.Submit(context.Background()))
	c.Wait()

	st := c.State()
	assert.Equal(t, UploadSucceeded, st.Status)
	assert.Equal(t, "abc123", st.ResultID)
	assert.Equal(t, "/flipbook/abc123", st.ViewerPath())
	assert.Equal(t, 100, st.Progress)
	assert.Empty(t, st.Error)

	ups := f.backend.Uploads()
	require.Len(t, ups, 1)
	assert.Equal(t, "Annual Report", ups[0].Title)

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, progress)
	assert.Equal(t, 0, progress[0])
	assert.IsNonDecreasing(t, progress)
	for _, p := range progress {
		assert.GreaterOrEqual(t, p, 0)
		assert.LessOrEqual(t, p, 100)
	}

	assert.Equal(t, []notify.Notification{{Level: notify.Success, Message: MsgUploadSucceeded}}, f.notes.All())
}

func TestUpload_BlankTitleFallsBackToFileName(t *testing.T) {
	f := newFixture(t)
	c := f.upload(t)

	require.NoError(t, c.Select(testutil.PDFFile(t, "slides.pdf")))
	require.NoError(t, c.SetTitle("   "))
	require.NoError(t, c.Submit(context.Background()))
	c.Wait()

	ups := f.backend.Uploads()
	require.Len(t, ups, 1)
	assert.Equal(t, "slides", ups[0].Title)
}

func TestUpload_SingleInFlight(t *testing.T) {
	f := newFixture(t)
	release := f.backend.Hold(testutil.RouteUpload)
	c := f.upload(t)

	require.NoError(t, c.Select(testutil.PDFFile(t, "a.pdf")))
	require.NoError(t, c.Submit(context.Background()))
	require.Eventually(t, func() bool { return f.backend.Hits(testutil.RouteUpload) == 1 }, time.Second, time.Millisecond)

	require.ErrorIs(t, c.Submit(context.Background()), ErrUploadInProgress)
	require.ErrorIs(t, c.Select(testutil.PDFFile(t, "b.pdf")), ErrSelectionLocked)
	require.ErrorIs(t, c.SetTitle("x"), ErrSelectionLocked)
	require.ErrorIs(t, c.Reset(), ErrUploadInProgress)
	assert.Equal(t, Uploading, c.State().Status)

	release()
	c.Wait()

	assert.Equal(t, UploadSucceeded, c.State().Status)
	assert.Equal(t, 1, f.backend.Hits(testutil.RouteUpload))
	require.ErrorIs(t, c.Submit(context.Background()), ErrSelectionLocked)
}

func TestUpload_FailureUsesServerMessage(t *testing.T) {
	f := newFixture(t)
	f.backend.Fail(testutil.RouteUpload, testutil.Failure{Status: 400, Message: "Only PDF files are allowed"})
	c := f.upload(t)

	require.NoError(t, c.Select(testutil.PDFFile(t, "a.pdf")))
	require.NoError(t, c.Submit(context.Background()))
	c.Wait()

	st := c.State()
	assert.Equal(t, UploadFailed, st.Status)
	assert.Equal(t, "Only PDF files are allowed", st.Error)
	assert.ErrorIs(t, st.Cause, ErrTransport)
	assert.Equal(t, []notify.Notification{{Level: notify.Error, Message: "Only PDF files are allowed"}}, f.notes.All())

	// retry after a failure starts a fresh phase
	f.backend.Recover(testutil.RouteUpload)
	require.NoError(t, c.Submit(context.Background()))
	c.Wait()
	assert.Equal(t, UploadSucceeded, c.State().Status)
}

func TestUpload_AnswerWithoutIDFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	f := newFixture(t)
	f.deps.Client = client.NewHTTPClient(srv.URL)
	c := f.upload(t)

	require.NoError(t, c.Select(testutil.PDFFile(t, "a.pdf")))
	require.NoError(t, c.Submit(context.Background()))
	c.Wait()

	st := c.State()
	assert.Equal(t, UploadFailed, st.Status)
	assert.Empty(t, st.ResultID)
	assert.Empty(t, st.ViewerPath())
	assert.Equal(t, MsgUploadFailed, st.Error)
	assert.Equal(t, []notify.Notification{{Level: notify.Error, Message: MsgUploadFailed}}, f.notes.All())
}

func TestUpload_FailureFallbackMessage(t *testing.T) {
	f := newFixture(t)
	f.backend.Fail(testutil.RouteUpload, testutil.Failure{Status: 503})
	c := f.upload(t)

	require.NoError(t, c.Select(testutil.PDFFile(t, "a.pdf")))
	require.NoError(t, c.Submit(context.Background()))
	c.Wait()

	assert.Equal(t, MsgUploadFailed, c.State().Error)

	require.NoError(t, c.Select(testutil.PDFFile(t, "b.pdf")))
	st := c.State()
	assert.Equal(t, UploadIdle, st.Status)
	assert.Empty(t, st.Error)
	assert.Equal(t, "b.pdf", st.File.Name)
}

func TestUpload_Reset(t *testing.T) {
	f := newFixture(t)
	c := f.upload(t)

	require.NoError(t, c.Select(testutil.PDFFile(t, "a.pdf")))
	require.NoError(t, c.Submit(context.Background()))
	c.Wait()
	require.Equal(t, UploadSucceeded, c.State().Status)

	require.NoError(t, c.Reset())
	assert.Equal(t, UploadState{}, c.State())
	require.NoError(t, c.Select(testutil.PDFFile(t, "b.pdf")))
}

func TestUpload_DeactivateDropsLateResult(t *testing.T) {
	f := newFixture(t)
	release := f.backend.Hold(testutil.RouteUpload)
	c := f.upload(t)

	require.NoError(t, c.Select(testutil.PDFFile(t, "a.pdf")))
	require.NoError(t, c.Submit(context.Background()))
	require.Eventually(t, func() bool { return f.backend.Hits(testutil.RouteUpload) == 1 }, time.Second, time.Millisecond)

	c.Deactivate()
	release()
	c.Wait()

	assert.Equal(t, UploadState{}, c.State())
	assert.Empty(t, f.notes.All())
	require.ErrorIs(t, c.Submit(context.Background()), ErrInactive)
}

func TestPercent(t *testing.T) {
	tests := []struct {
		sent, total int64
		want        int
	}{
		{0, 100, 0},
		{1, 200, 1},
		{1, 300, 0},
		{50, 100, 50},
		{2, 3, 67},
		{100, 100, 100},
		{150, 100, 100},
		{-5, 100, 0},
		{10, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, percent(tt.sent, tt.total), "%d/%d", tt.sent, tt.total)
	}
}
