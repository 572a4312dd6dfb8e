package controllers

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/dmitrijs2005/flipbook/internal/client/fullscreen"
	"github.com/dmitrijs2005/flipbook/internal/client/models"
	"github.com/dmitrijs2005/flipbook/internal/client/notify"
	"github.com/dmitrijs2005/flipbook/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) viewer() *Viewer {
	return NewViewer(f.deps, f.chrome, f.assets, ViewerOptions{Scheduler: f.schedule})
}

func loadedViewer(t *testing.T, f *fixture) *Viewer {
	t.Helper()
	f.backend.Seed(sampleBook)
	c := f.viewer()
	require.NoError(t, c.Activate(context.Background(), sampleBook.PublicID))
	c.Wait()
	require.Equal(t, ViewerLoaded, c.State().Status)
	return c
}

func TestViewer_Loads(t *testing.T) {
	f := newFixture(t)
	c := loadedViewer(t, f)

	st := c.State()
	assert.Equal(t, 0, st.Page)
	assert.False(t, st.Fullscreen)
	assert.Equal(t, uint64(0), st.RenderEpoch)
	assert.Equal(t, sampleBook.Images, st.Flipbook.Images)
	assert.Equal(t, 1, f.backend.Hits(testutil.RouteGet))
	assert.Empty(t, f.notes.All())

	p := c.Props()
	assert.Equal(t, uint64(0), p.Key)
	assert.Equal(t, models.WindowedBounds, p.Bounds)
	assert.Equal(t, f.backend.AssetURL()+"/uploads/images/abc123/page-02.png", p.Pages[1])
}

func TestViewer_NotFoundIsDistinct(t *testing.T) {
	f := newFixture(t)
	c := f.viewer()

	require.NoError(t, c.Activate(context.Background(), "xyz"))
	c.Wait()

	st := c.State()
	assert.Equal(t, ViewerNotFound, st.Status)
	assert.Equal(t, MsgViewerNotFound, st.Error)
	assert.ErrorIs(t, st.Cause, ErrNotFound)
	assert.Nil(t, st.Flipbook)
	assert.Equal(t, 1, f.notes.Count(notify.Error))
}

func TestViewer_NullBodyIsNotFound(t *testing.T) {
	f := newFixture(t)
	f.backend.NullForMissing(true)
	c := f.viewer()

	require.NoError(t, c.Activate(context.Background(), "xyz"))
	c.Wait()

	assert.Equal(t, ViewerNotFound, c.State().Status)
}

func TestViewer_LoadFailed(t *testing.T) {
	f := newFixture(t)
	f.backend.Fail(testutil.RouteGet, testutil.Failure{Status: 500})
	c := f.viewer()

	require.NoError(t, c.Activate(context.Background(), "abc123"))
	c.Wait()

	st := c.State()
	assert.Equal(t, ViewerLoadFailed, st.Status)
	assert.Equal(t, MsgViewerFailed, st.Error)
	assert.NotEqual(t, MsgViewerNotFound, st.Error)
	assert.ErrorIs(t, st.Cause, ErrTransport)
	assert.Equal(t, []notify.Notification{{Level: notify.Error, Message: MsgViewerFailed}}, f.notes.All())
}

func TestViewer_NoPagesIsLoadFailed(t *testing.T) {
	f := newFixture(t)
	f.backend.Seed(models.Flipbook{PublicID: "empty", Title: "Blank", CreatedAt: time.Now(), Images: []string{}})
	c := f.viewer()

	require.NoError(t, c.Activate(context.Background(), "empty"))
	c.Wait()

	st := c.State()
	assert.Equal(t, ViewerLoadFailed, st.Status)
	assert.Equal(t, MsgViewerEmpty, st.Error)
	assert.ErrorIs(t, st.Cause, ErrValidation)
	assert.Equal(t, []notify.Notification{{Level: notify.Error, Message: MsgViewerEmpty}}, f.notes.All())
	require.ErrorIs(t, c.Flip(0), ErrValidation)
}

func TestViewer_FlipKeepsPageInRange(t *testing.T) {
	f := newFixture(t)
	c := loadedViewer(t, f)

	require.NoError(t, c.Flip(2))
	assert.Equal(t, 2, c.State().Page)

	require.ErrorIs(t, c.Flip(3), ErrValidation)
	require.ErrorIs(t, c.Flip(-1), ErrValidation)
	assert.Equal(t, 2, c.State().Page)

	rng := rand.New(rand.NewSource(1))
	n := len(sampleBook.Images)
	for i := 0; i < 200; i++ {
		_ = c.Flip(rng.Intn(3*n) - n)
		st := c.State()
		require.GreaterOrEqual(t, st.Page, 0)
		require.Less(t, st.Page, n)
	}
}

func TestViewer_FlipBeforeLoadIgnored(t *testing.T) {
	f := newFixture(t)
	f.backend.Seed(sampleBook)
	release := f.backend.Hold(testutil.RouteGet)
	c := f.viewer()

	require.NoError(t, c.Activate(context.Background(), "abc123"))
	require.ErrorIs(t, c.Flip(1), ErrValidation)

	release()
	c.Wait()
	assert.Equal(t, 0, c.State().Page)
}

func TestViewer_ToggleIsNotOptimistic(t *testing.T) {
	f := newFixture(t)
	f.chrome.Auto = false
	c := loadedViewer(t, f)

	require.NoError(t, c.ToggleFullscreen(context.Background()))
	assert.Equal(t, []string{viewerRegion}, f.chrome.Requests())
	assert.False(t, c.State().Fullscreen)

	f.chrome.Set(true)
	assert.True(t, c.State().Fullscreen)
	assert.Equal(t, models.FullscreenBounds, c.Props().Bounds)

	require.NoError(t, c.ToggleFullscreen(context.Background()))
	assert.Equal(t, 1, f.chrome.Exits())
	assert.True(t, c.State().Fullscreen)
}

func TestViewer_ExitBumpsEpochAfterSettleDelay(t *testing.T) {
	f := newFixture(t)
	c := loadedViewer(t, f)

	require.NoError(t, c.ToggleFullscreen(context.Background()))
	require.True(t, c.State().Fullscreen)
	assert.Zero(t, f.schedule.Pending(), "entering fullscreen needs no remount")

	require.NoError(t, c.ToggleFullscreen(context.Background()))
	require.False(t, c.State().Fullscreen)

	timers := f.schedule.Timers()
	require.Len(t, timers, 1)
	assert.Equal(t, DefaultSettleDelay, timers[0].Delay)
	assert.Equal(t, uint64(0), c.State().RenderEpoch, "not before the delay")

	f.schedule.FireAll()
	assert.Equal(t, uint64(1), c.State().RenderEpoch)
	assert.Equal(t, uint64(1), c.Props().Key)
	assert.Zero(t, c.PendingRemounts())

	f.schedule.FireAll()
	assert.Equal(t, uint64(1), c.State().RenderEpoch)
}

func TestViewer_NativeExitTakesSubscriptionPath(t *testing.T) {
	f := newFixture(t)
	c := loadedViewer(t, f)

	require.NoError(t, c.ToggleFullscreen(context.Background()))
	require.True(t, c.State().Fullscreen)

	f.chrome.Set(false)

	assert.False(t, c.State().Fullscreen)
	assert.Zero(t, f.chrome.Exits())
	require.Equal(t, 1, f.schedule.Pending())

	f.schedule.FireAll()
	assert.Equal(t, uint64(1), c.State().RenderEpoch)
}

func TestViewer_OneEpochPerExit(t *testing.T) {
	f := newFixture(t)
	c := loadedViewer(t, f)

	for i := 0; i < 3; i++ {
		f.chrome.Set(true)
		f.chrome.Set(false)
	}
	assert.Equal(t, 3, f.schedule.Pending())

	f.schedule.FireAll()
	assert.Equal(t, uint64(3), c.State().RenderEpoch)
}

func TestViewer_VetoedRequest(t *testing.T) {
	f := newFixture(t)
	f.chrome.Veto = fullscreen.ErrNotAllowed
	c := loadedViewer(t, f)

	err := c.ToggleFullscreen(context.Background())
	require.True(t, errors.Is(err, fullscreen.ErrNotAllowed))
	assert.False(t, c.State().Fullscreen)
	assert.Zero(t, f.schedule.Pending())
	assert.Equal(t, []notify.Notification{{Level: notify.Error, Message: MsgFullscreenRejected}}, f.notes.All())
}

func TestViewer_ToggleNeedsLoadedFlipbook(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture) func()
		id    string
	}{
		{
			name: "loading",
			setup: func(f *fixture) func() {
				f.backend.Seed(sampleBook)
				return f.backend.Hold(testutil.RouteGet)
			},
			id: sampleBook.PublicID,
		},
		{
			name:  "not found",
			setup: func(f *fixture) func() { return func() {} },
			id:    "xyz",
		},
		{
			name: "load failed",
			setup: func(f *fixture) func() {
				f.backend.Fail(testutil.RouteGet, testutil.Failure{Status: 500})
				return func() {}
			},
			id: sampleBook.PublicID,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			release := tt.setup(f)
			c := f.viewer()

			require.NoError(t, c.Activate(context.Background(), tt.id))
			if tt.name != "loading" {
				c.Wait()
			}

			require.ErrorIs(t, c.ToggleFullscreen(context.Background()), ErrValidation)
			assert.Empty(t, f.chrome.Requests())
			assert.False(t, c.State().Fullscreen)

			release()
			c.Wait()
		})
	}
}

func TestViewer_ToggleLeavesFullscreenWhileNotLoaded(t *testing.T) {
	f := newFixture(t)
	f.chrome.Set(true)
	c := f.viewer()

	require.NoError(t, c.Activate(context.Background(), "xyz"))
	c.Wait()
	require.True(t, c.State().Fullscreen)

	require.NoError(t, c.ToggleFullscreen(context.Background()))
	assert.Equal(t, 1, f.chrome.Exits())
	assert.False(t, c.State().Fullscreen)
}

func TestViewer_DeactivateStopsTimersAndUnsubscribes(t *testing.T) {
	f := newFixture(t)
	c := loadedViewer(t, f)
	require.Equal(t, 1, f.chrome.Subscribers())

	f.chrome.Set(true)
	f.chrome.Set(false)
	timers := f.schedule.Timers()
	require.Len(t, timers, 1)

	c.Deactivate()

	assert.True(t, timers[0].Stopped())
	assert.Zero(t, f.chrome.Subscribers())
	assert.Zero(t, c.PendingRemounts())

	// a timer that had already expired still runs; its result is dropped
	timers[0].Fire()
	assert.Equal(t, ViewerState{}, c.State())

	require.ErrorIs(t, c.ToggleFullscreen(context.Background()), ErrInactive)
}

func TestViewer_ActivateInFullscreen(t *testing.T) {
	f := newFixture(t)
	f.chrome.Set(true)
	c := loadedViewer(t, f)

	assert.True(t, c.State().Fullscreen)
	assert.Equal(t, models.FullscreenBounds, c.Props().Bounds)
}

func TestViewer_ReactivationReplacesSubscription(t *testing.T) {
	f := newFixture(t)
	c := loadedViewer(t, f)

	require.NoError(t, c.Activate(context.Background(), sampleBook.PublicID))
	c.Wait()

	assert.Equal(t, 1, f.chrome.Subscribers())
	assert.Equal(t, 2, f.backend.Hits(testutil.RouteGet))
}

func TestViewer_RealSchedulerFires(t *testing.T) {
	f := newFixture(t)
	f.backend.Seed(sampleBook)
	c := NewViewer(f.deps, f.chrome, f.assets, ViewerOptions{SettleDelay: 5 * time.Millisecond})
	require.NoError(t, c.Activate(context.Background(), sampleBook.PublicID))
	c.Wait()

	f.chrome.Set(true)
	f.chrome.Set(false)

	require.Eventually(t, func() bool { return c.State().RenderEpoch == 1 }, time.Second, time.Millisecond)
}
