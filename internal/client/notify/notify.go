// Package notify delivers short-lived, non-blocking user notifications.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/flipbook/internal/logging"
)

type Level int

const (
	Info Level = iota
	Success
	Error
)

func (l Level) String() string {
	switch l {
	case Success:
		return "ok"
	case Error:
		return "error"
	default:
		return "info"
	}
}

type Notification struct {
	Level   Level
	Message string
}

// Notifier shows a notification. Implementations must not block the caller
// on user interaction.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Writer prints one line per notification, e.g. "[ok] Upload successful!".
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) Notify(_ context.Context, n Notification) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.out, "[%s] %s\n", n.Level, n.Message)
}

// Log wraps a Notifier and also records each notification in the log.
type Log struct {
	Next   Notifier
	Logger logging.Logger
}

func (l Log) Notify(ctx context.Context, n Notification) {
	switch n.Level {
	case Error:
		l.Logger.Warn(ctx, "notification", "severity", n.Level.String(), "message", n.Message)
	default:
		l.Logger.Debug(ctx, "notification", "severity", n.Level.String(), "message", n.Message)
	}
	if l.Next != nil {
		l.Next.Notify(ctx, n)
	}
}
