package controllers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/flipbook/internal/client/client"
	"github.com/dmitrijs2005/flipbook/internal/client/fullscreen"
	"github.com/dmitrijs2005/flipbook/internal/client/models"
	"github.com/dmitrijs2005/flipbook/internal/client/notify"
	"github.com/dmitrijs2005/flipbook/internal/client/pageflip"
	"github.com/dmitrijs2005/flipbook/internal/client/session"
)

const (
	MsgViewerFailed       = "Failed to load flipbook"
	MsgViewerNotFound     = "Flipbook not found"
	MsgViewerEmpty        = "This flipbook has no pages"
	MsgFullscreenRejected = "Fullscreen is not available"

	// DefaultSettleDelay is how long the platform gets to settle after a
	// fullscreen exit before the page widget is remounted.
	DefaultSettleDelay = 300 * time.Millisecond

	viewerRegion = "flipbook-viewer"
)

type ViewerStatus int

const (
	ViewerIdle ViewerStatus = iota
	ViewerLoading
	ViewerLoaded
	ViewerNotFound
	ViewerLoadFailed
)

func (s ViewerStatus) String() string {
	switch s {
	case ViewerLoading:
		return "loading"
	case ViewerLoaded:
		return "loaded"
	case ViewerNotFound:
		return "not-found"
	case ViewerLoadFailed:
		return "load-failed"
	default:
		return "idle"
	}
}

// ViewerState is one viewing session. While Loaded, Page is a valid index
// into Flipbook.Images. Fullscreen mirrors the last chrome notification and
// RenderEpoch grows by one per settled fullscreen exit.
type ViewerState struct {
	ID          string
	Status      ViewerStatus
	Flipbook    *models.Flipbook
	Page        int
	Fullscreen  bool
	RenderEpoch uint64
	Error       string
	Cause       error
}

type ViewerOptions struct {
	SettleDelay time.Duration
	Scheduler   session.Scheduler
}

// Viewer loads one flipbook and tracks its page and the fullscreen chrome.
type Viewer struct {
	deps   Deps
	chrome fullscreen.Chrome
	assets client.Assets
	opts   ViewerOptions

	store *session.Store[ViewerState]
	log   sessionLog

	mu        sync.Mutex
	unsub     func()
	timers    map[int]session.Timer
	nextTimer int
}

func NewViewer(deps Deps, chrome fullscreen.Chrome, assets client.Assets, opts ViewerOptions) *Viewer {
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = DefaultSettleDelay
	}
	if opts.Scheduler == nil {
		opts.Scheduler = session.RealScheduler{}
	}
	return &Viewer{
		deps:   deps,
		chrome: chrome,
		assets: assets,
		opts:   opts,
		store:  session.NewStore(ViewerState{}),
		timers: make(map[int]session.Timer),
	}
}

// Activate opens a session for flipbook id: it subscribes to the chrome and
// issues exactly one fetch.
func (c *Viewer) Activate(ctx context.Context, id string) error {
	scope, gen := c.store.Begin(ctx, ViewerState{ID: id, Status: ViewerLoading, Fullscreen: c.chrome.Active()})
	c.teardown()
	log := c.log.begin(c.deps.Logger, "viewer")
	log.Debug(scope, "activated", "id", id)

	unsub := c.chrome.Subscribe(func(active bool) { c.onChrome(gen, active) })
	c.mu.Lock()
	c.unsub = unsub
	c.mu.Unlock()
	c.onChrome(gen, c.chrome.Active())

	c.store.Track(func() { c.load(scope, gen, id) })
	return nil
}

func (c *Viewer) load(ctx context.Context, gen uint64, id string) {
	log := c.log.get()

	fb, err := c.deps.Client.GetFlipbook(ctx, id)
	if ctx.Err() != nil {
		log.Debug(ctx, "fetch abandoned", "error", ctx.Err())
		return
	}

	if err != nil {
		status, msg := ViewerLoadFailed, MsgViewerFailed
		if errors.Is(err, client.ErrNotFound) {
			status, msg = ViewerNotFound, MsgViewerNotFound
		}
		log.Warn(ctx, "fetch failed", "id", id, "error", err)
		if c.store.Apply(gen, func(st *ViewerState) error {
			st.Status = status
			st.Error = msg
			st.Cause = classify(err)
			return nil
		}) == nil {
			c.deps.notify(ctx, notify.Error, msg)
		}
		return
	}

	if fb.PageCount() == 0 {
		log.Warn(ctx, "flipbook has no pages", "id", id)
		if c.store.Apply(gen, func(st *ViewerState) error {
			st.Status = ViewerLoadFailed
			st.Error = MsgViewerEmpty
			st.Cause = fmt.Errorf("%w: flipbook %s has no pages", ErrValidation, id)
			return nil
		}) == nil {
			c.deps.notify(ctx, notify.Error, MsgViewerEmpty)
		}
		return
	}

	if err := c.store.Apply(gen, func(st *ViewerState) error {
		st.Status = ViewerLoaded
		st.Flipbook = fb
		st.Page = 0
		return nil
	}); err != nil {
		log.Debug(ctx, "fetch result dropped", "error", err)
		return
	}
	log.Info(ctx, "flipbook loaded", "id", id, "pages", fb.PageCount())
}

// Flip records the page reported by the widget. Indexes outside the loaded
// flipbook are ignored.
func (c *Viewer) Flip(index int) error {
	err := c.store.Update(func(st *ViewerState) error {
		if st.Status != ViewerLoaded {
			return fmt.Errorf("%w: flipbook not loaded", ErrValidation)
		}
		if index < 0 || index >= st.Flipbook.PageCount() {
			return fmt.Errorf("%w: page %d out of range [0,%d)", ErrValidation, index, st.Flipbook.PageCount())
		}
		if index == st.Page {
			return errNoChange
		}
		st.Page = index
		return nil
	})
	if errors.Is(err, errNoChange) {
		return nil
	}
	if err != nil {
		c.log.get().Debug(context.Background(), "flip ignored", "index", index, "error", err)
	}
	return storeErr(err)
}

// ToggleFullscreen asks the chrome for the opposite of the current
// sub-state. The flag itself only changes when the chrome reports back.
// Entering fullscreen needs a loaded flipbook; leaving is always allowed.
func (c *Viewer) ToggleFullscreen(ctx context.Context) error {
	if !c.store.Active() {
		return ErrInactive
	}

	st := c.store.Snapshot()
	if !st.Fullscreen && st.Status != ViewerLoaded {
		return fmt.Errorf("%w: flipbook not loaded", ErrValidation)
	}

	var err error
	if st.Fullscreen {
		err = c.chrome.Exit()
	} else {
		err = c.chrome.Request(viewerRegion)
	}
	if err != nil {
		c.log.get().Warn(ctx, "fullscreen request rejected", "error", err)
		c.deps.notify(ctx, notify.Error, MsgFullscreenRejected)
		return fmt.Errorf("toggle fullscreen: %w", err)
	}
	return nil
}

func (c *Viewer) onChrome(gen uint64, active bool) {
	var exited bool
	err := c.store.Apply(gen, func(st *ViewerState) error {
		if st.Fullscreen == active {
			return errNoChange
		}
		exited = st.Fullscreen && !active
		st.Fullscreen = active
		return nil
	})
	if err != nil {
		return
	}
	c.log.get().Debug(context.Background(), "fullscreen changed", "active", active)
	if exited {
		c.scheduleRemount(gen)
	}
}

func (c *Viewer) scheduleRemount(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store.Generation() != gen {
		return
	}
	id := c.nextTimer
	c.nextTimer++
	c.timers[id] = c.opts.Scheduler.AfterFunc(c.opts.SettleDelay, func() { c.remount(gen, id) })
}

func (c *Viewer) remount(gen uint64, id int) {
	c.mu.Lock()
	delete(c.timers, id)
	c.mu.Unlock()

	err := c.store.Apply(gen, func(st *ViewerState) error {
		st.RenderEpoch++
		return nil
	})
	if err != nil {
		return
	}
	c.log.get().Debug(context.Background(), "page widget remount scheduled")
}

// Props are the page widget parameters for the current state.
func (c *Viewer) Props() pageflip.Props {
	st := c.store.Snapshot()
	p := pageflip.Props{
		Key:       st.RenderEpoch,
		ID:        st.ID,
		Bounds:    models.BoundsFor(st.Fullscreen),
		StartPage: st.Page,
		OnFlip:    func(i int) { _ = c.Flip(i) },
	}
	if st.Flipbook != nil {
		p.Pages = c.assets.Pages(st.Flipbook.Images)
	}
	return p
}

// Deactivate unsubscribes from the chrome, stops pending timers and cancels
// the fetch.
func (c *Viewer) Deactivate() {
	c.store.End(ViewerState{})
	c.teardown()
}

func (c *Viewer) teardown() {
	c.mu.Lock()
	unsub := c.unsub
	c.unsub = nil
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (c *Viewer) State() ViewerState { return c.store.Snapshot() }

func (c *Viewer) Subscribe(fn func(ViewerState)) func() { return c.store.Subscribe(fn) }

func (c *Viewer) Wait() { c.store.Wait() }

// PendingRemounts reports how many settle timers are outstanding.
func (c *Viewer) PendingRemounts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}
