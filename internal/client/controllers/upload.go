package controllers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/flipbook/internal/client/client"
	"github.com/dmitrijs2005/flipbook/internal/client/models"
	"github.com/dmitrijs2005/flipbook/internal/client/notify"
	"github.com/dmitrijs2005/flipbook/internal/client/session"
)

const (
	MsgNoFile          = "Please select a PDF file"
	MsgUploadFailed    = "Upload failed"
	MsgUploadSucceeded = "Upload successful!"
)

type UploadStatus int

const (
	UploadIdle UploadStatus = iota
	Uploading
	UploadSucceeded
	UploadFailed
)

func (s UploadStatus) String() string {
	switch s {
	case Uploading:
		return "uploading"
	case UploadSucceeded:
		return "succeeded"
	case UploadFailed:
		return "failed"
	default:
		return "idle"
	}
}

// UploadState is one upload session. Progress never decreases within an
// Uploading phase and is reset only when a new phase begins.
type UploadState struct {
	File         models.LocalFile
	Title        string
	DerivedTitle string

	Status   UploadStatus
	Progress int
	ResultID string
	Error    string
	Cause    error
}

// ResolvedTitle is the title sent with the upload: the trimmed Title, or the
// file-derived name when Title is blank.
func (s UploadState) ResolvedTitle() string {
	if t := strings.TrimSpace(s.Title); t != "" {
		return t
	}
	return s.DerivedTitle
}

// ViewerPath is where the uploaded flipbook can be opened, once there is one.
func (s UploadState) ViewerPath() string {
	if s.Status != UploadSucceeded || s.ResultID == "" {
		return ""
	}
	return models.ViewerPath(s.ResultID)
}

// Upload stages a single document and sends it to the backend.
type Upload struct {
	deps  Deps
	store *session.Store[UploadState]
	log   sessionLog
}

func NewUpload(deps Deps) *Upload {
	return &Upload{deps: deps, store: session.NewStore(UploadState{})}
}

func (c *Upload) Activate(ctx context.Context) error {
	scope, _ := c.store.Begin(ctx, UploadState{})
	c.log.begin(c.deps.Logger, "upload").Debug(scope, "activated")
	return nil
}

// Select stages file, replacing any previous selection, and pre-fills the
// title with the file's base name. A failed session returns to Idle.
func (c *Upload) Select(file models.LocalFile) error {
	err := c.store.Update(func(st *UploadState) error {
		if st.Status == Uploading || st.Status == UploadSucceeded {
			return ErrSelectionLocked
		}
		*st = UploadState{
			File:         file,
			Title:        file.BaseTitle(),
			DerivedTitle: file.BaseTitle(),
		}
		return nil
	})
	if err != nil {
		return storeErr(err)
	}
	c.log.get().Debug(context.Background(), "file selected", "name", file.Name, "size", file.Size)
	return nil
}

func (c *Upload) SetTitle(title string) error {
	return storeErr(c.store.Update(func(st *UploadState) error {
		if st.Status == Uploading || st.Status == UploadSucceeded {
			return ErrSelectionLocked
		}
		st.Title = title
		return nil
	}))
}

// Submit starts the upload of the staged file. Without a staged file it
// notifies, sends nothing and returns ErrNoFileSelected.
func (c *Upload) Submit(ctx context.Context) error {
	scope, gen, err := c.store.Context()
	if err != nil {
		return storeErr(err)
	}

	var req client.UploadRequest
	err = c.store.Apply(gen, func(st *UploadState) error {
		switch {
		case st.Status == Uploading:
			return ErrUploadInProgress
		case st.Status == UploadSucceeded:
			return ErrSelectionLocked
		case st.File.IsZero():
			return ErrNoFileSelected
		}
		req = client.UploadRequest{File: st.File, Title: st.ResolvedTitle()}
		st.Status = Uploading
		st.Progress = 0
		st.Error = ""
		st.Cause = nil
		st.ResultID = ""
		return nil
	})
	if errors.Is(err, ErrNoFileSelected) {
		c.deps.notify(ctx, notify.Error, MsgNoFile)
	}
	if err != nil {
		return storeErr(err)
	}

	c.log.get().Info(ctx, "upload started", "file", req.File.Name, "title", req.Title, "size", req.File.Size)
	c.store.Track(func() { c.upload(scope, gen, req) })
	return nil
}

func (c *Upload) upload(ctx context.Context, gen uint64, req client.UploadRequest) {
	log := c.log.get()

	res, err := c.deps.Client.Upload(ctx, req, func(sent, total int64) {
		pct := percent(sent, total)
		_ = c.store.Apply(gen, func(st *UploadState) error {
			if st.Status != Uploading || pct <= st.Progress {
				return errNoChange
			}
			st.Progress = pct
			return nil
		})
	})
	if ctx.Err() != nil {
		log.Debug(ctx, "upload abandoned", "error", ctx.Err())
		return
	}

	if err == nil && (res == nil || res.ID == "") {
		err = fmt.Errorf("%w: upload answer has no id", client.ErrRequestFailed)
	}
	if err != nil {
		msg := client.ServerMessage(err)
		if msg == "" {
			msg = MsgUploadFailed
		}
		log.Warn(ctx, "upload failed", "error", err)
		if c.store.Apply(gen, func(st *UploadState) error {
			st.Status = UploadFailed
			st.Error = msg
			st.Cause = classify(err)
			return nil
		}) == nil {
			c.deps.notify(ctx, notify.Error, msg)
		}
		return
	}

	if c.store.Apply(gen, func(st *UploadState) error {
		st.Status = UploadSucceeded
		st.Progress = 100
		st.ResultID = res.ID
		return nil
	}) != nil {
		return
	}
	log.Info(ctx, "upload succeeded", "id", res.ID)
	c.deps.notify(ctx, notify.Success, MsgUploadSucceeded)
}

// Reset clears a finished session so another document can be uploaded.
func (c *Upload) Reset() error {
	return storeErr(c.store.Update(func(st *UploadState) error {
		if st.Status == Uploading {
			return ErrUploadInProgress
		}
		*st = UploadState{}
		return nil
	}))
}

// Deactivate cancels an in-flight upload; its result is dropped.
func (c *Upload) Deactivate() {
	c.store.End(UploadState{})
}

func (c *Upload) State() UploadState { return c.store.Snapshot() }

func (c *Upload) Subscribe(fn func(UploadState)) func() { return c.store.Subscribe(fn) }

func (c *Upload) Wait() { c.store.Wait() }

// percent converts transport progress to a whole percentage in [0,100].
func percent(sent, total int64) int {
	if total <= 0 {
		return 0
	}
	p := (sent*100 + total/2) / total
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return int(p)
}
