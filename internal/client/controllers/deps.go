package controllers

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/flipbook/internal/client/client"
	"github.com/dmitrijs2005/flipbook/internal/client/notify"
	"github.com/dmitrijs2005/flipbook/internal/logging"
	"github.com/google/uuid"
)

// Navigator performs a full navigation to a client path.
type Navigator interface {
	Navigate(ctx context.Context, path string) error
}

// Confirmer asks the user to confirm a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// Deps are the collaborators shared by all controllers.
type Deps struct {
	Client   client.Client
	Notifier notify.Notifier
	Logger   logging.Logger
}

func (d Deps) notify(ctx context.Context, level notify.Level, msg string) {
	if d.Notifier != nil {
		d.Notifier.Notify(ctx, notify.Notification{Level: level, Message: msg})
	}
}

// sessionLog holds the logger of the current activation.
type sessionLog struct {
	mu  sync.Mutex
	log logging.Logger
}

func (s *sessionLog) begin(base logging.Logger, controller string) logging.Logger {
	if base == nil {
		base = logging.NewNop()
	}
	l := base.With("controller", controller, "session", uuid.NewString())
	s.mu.Lock()
	s.log = l
	s.mu.Unlock()
	return l
}

func (s *sessionLog) get() logging.Logger {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.log == nil {
		return logging.NewNop()
	}
	return s.log
}
