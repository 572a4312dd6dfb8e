package controllers

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/flipbook/internal/client/models"
	"github.com/dmitrijs2005/flipbook/internal/client/notify"
	"github.com/dmitrijs2005/flipbook/internal/client/session"
)

const (
	MsgRecentFailed    = "Failed to fetch recent flipbooks"
	MsgDeleteConfirm   = "Are you sure you want to delete this flipbook?"
	MsgDeleteFailed    = "Failed to delete flipbook"
	MsgDeleteSucceeded = "Flipbook deleted successfully"
)

type RecentStatus int

const (
	RecentIdle RecentStatus = iota
	RecentLoading
	RecentLoaded
	RecentLoadFailed
)

func (s RecentStatus) String() string {
	switch s {
	case RecentLoading:
		return "loading"
	case RecentLoaded:
		return "loaded"
	case RecentLoadFailed:
		return "load-failed"
	default:
		return "idle"
	}
}

// RecentState is the list view's state. An empty Items with status
// RecentLoaded is the "no flipbooks yet" state, not an error.
type RecentState struct {
	Status RecentStatus
	Items  []models.FlipbookSummary
	Error  string
	Cause  error

	Deleting    string
	DeleteError string
}

// RecentList loads the most recent flipbooks and deletes them on request.
type RecentList struct {
	deps    Deps
	nav     Navigator
	confirm Confirmer

	store *session.Store[RecentState]
	log   sessionLog
}

func NewRecentList(deps Deps, nav Navigator, confirm Confirmer) *RecentList {
	return &RecentList{
		deps:    deps,
		nav:     nav,
		confirm: confirm,
		store:   session.NewStore(RecentState{}),
	}
}

// Activate starts a new list session and issues exactly one list fetch.
func (c *RecentList) Activate(ctx context.Context) error {
	scope, gen := c.store.Begin(ctx, RecentState{Status: RecentLoading})
	log := c.log.begin(c.deps.Logger, "recent")
	log.Debug(scope, "activated")

	c.store.Track(func() { c.load(scope, gen) })
	return nil
}

func (c *RecentList) load(ctx context.Context, gen uint64) {
	log := c.log.get()

	items, err := c.deps.Client.ListRecent(ctx)
	if ctx.Err() != nil {
		log.Debug(ctx, "list fetch abandoned", "error", ctx.Err())
		return
	}

	if err != nil {
		log.Warn(ctx, "list fetch failed", "error", err)
		applied := c.store.Apply(gen, func(st *RecentState) error {
			st.Status = RecentLoadFailed
			st.Items = nil
			st.Error = MsgRecentFailed
			st.Cause = classify(err)
			return nil
		})
		if applied == nil {
			c.deps.notify(ctx, notify.Error, MsgRecentFailed)
		}
		return
	}

	if items == nil {
		items = []models.FlipbookSummary{}
	}
	if err := c.store.Apply(gen, func(st *RecentState) error {
		st.Status = RecentLoaded
		st.Items = items
		st.Error = ""
		st.Cause = nil
		return nil
	}); err != nil {
		log.Debug(ctx, "list result dropped", "error", err)
		return
	}
	log.Info(ctx, "list loaded", "count", len(items))
}

// Delete asks for confirmation and removes the flipbook id. A declined
// confirmation is a no-op and reports (false, nil). On success the list is
// reloaded by navigating to the home path.
func (c *RecentList) Delete(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return false, fmt.Errorf("%w: empty flipbook id", ErrValidation)
	}

	scope, gen, err := c.store.Context()
	if err != nil {
		return false, storeErr(err)
	}
	log := c.log.get()

	if !c.confirm.Confirm(ctx, MsgDeleteConfirm) {
		log.Debug(ctx, "delete declined", "id", id)
		return false, nil
	}

	if err := c.store.Apply(gen, func(st *RecentState) error {
		st.Deleting = id
		st.DeleteError = ""
		return nil
	}); err != nil {
		return false, storeErr(err)
	}

	if err := c.deps.Client.Delete(scope, id); err != nil {
		if scope.Err() != nil {
			return false, ErrInactive
		}
		log.Warn(ctx, "delete failed", "id", id, "error", err)
		_ = c.store.Apply(gen, func(st *RecentState) error {
			st.Deleting = ""
			st.DeleteError = MsgDeleteFailed
			return nil
		})
		c.deps.notify(ctx, notify.Error, MsgDeleteFailed)
		return false, fmt.Errorf("delete %s: %w", id, classify(err))
	}

	log.Info(ctx, "flipbook deleted", "id", id)
	_ = c.store.Apply(gen, func(st *RecentState) error {
		st.Deleting = ""
		return nil
	})
	c.deps.notify(ctx, notify.Success, MsgDeleteSucceeded)

	if err := c.nav.Navigate(ctx, models.HomePath); err != nil {
		return true, fmt.Errorf("reload list: %w", err)
	}
	return true, nil
}

// Deactivate cancels any in-flight request. Late results are dropped.
func (c *RecentList) Deactivate() {
	c.store.End(RecentState{})
}

func (c *RecentList) State() RecentState { return c.store.Snapshot() }

func (c *RecentList) Subscribe(fn func(RecentState)) func() { return c.store.Subscribe(fn) }

// Wait blocks until background work started by this controller has finished.
func (c *RecentList) Wait() { c.store.Wait() }
