package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/flipbook/internal/client/notify"
	"github.com/dmitrijs2005/flipbook/internal/client/session"
)

// Recorder is a notify.Notifier that keeps everything it is given.
type Recorder struct {
	mu  sync.Mutex
	all []notify.Notification
}

func (r *Recorder) Notify(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.all = append(r.all, n)
}

func (r *Recorder) All() []notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Notification(nil), r.all...)
}

// Count returns how many notifications of level were recorded.
func (r *Recorder) Count(level notify.Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, x := range r.all {
		if x.Level == level {
			n++
		}
	}
	return n
}

// Confirmer answers every confirmation with Answer and records the prompts.
type Confirmer struct {
	Answer bool

	mu      sync.Mutex
	prompts []string
}

func (c *Confirmer) Confirm(_ context.Context, prompt string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	return c.Answer
}

func (c *Confirmer) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

// Navigator records navigations. Err, when set, is returned from Navigate.
type Navigator struct {
	Err error

	mu    sync.Mutex
	paths []string
}

func (n *Navigator) Navigate(_ context.Context, path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
	return n.Err
}

func (n *Navigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

// Scheduler is a manual session.Scheduler: nothing runs until the test fires it.
type Scheduler struct {
	mu     sync.Mutex
	timers []*Timer
}

func (s *Scheduler) AfterFunc(d time.Duration, fn func()) session.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &Timer{Delay: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Timers returns every timer ever scheduled, in order.
func (s *Scheduler) Timers() []*Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Timer(nil), s.timers...)
}

// Pending counts timers that are neither stopped nor fired.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.Timers() {
		if t.pending() {
			n++
		}
	}
	return n
}

// FireAll runs every pending timer.
func (s *Scheduler) FireAll() {
	for _, t := range s.Timers() {
		if t.pending() {
			t.Fire()
		}
	}
}

type Timer struct {
	Delay time.Duration

	mu      sync.Mutex
	fn      func()
	stopped bool
	fired   bool
}

func (t *Timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

func (t *Timer) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Fire runs the callback even if the timer was stopped, modelling a timer
// that had already expired when Stop was called.
func (t *Timer) Fire() {
	t.mu.Lock()
	t.fired = true
	fn := t.fn
	t.mu.Unlock()
	fn()
}

func (t *Timer) pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped && !t.fired
}

// Chrome is a scriptable fullscreen.Chrome. With Auto set, Request and Exit
// deliver their transition synchronously; otherwise the test calls Set.
type Chrome struct {
	Auto bool
	Veto error

	mu        sync.Mutex
	active    bool
	next      int
	listeners map[int]func(bool)
	requests  []string
	exits     int
}

func (c *Chrome) Subscribe(fn func(bool)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.listeners == nil {
		c.listeners = make(map[int]func(bool))
	}
	id := c.next
	c.next++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Chrome) Request(region string) error {
	c.mu.Lock()
	c.requests = append(c.requests, region)
	veto, auto := c.Veto, c.Auto
	c.mu.Unlock()

	if veto != nil {
		return veto
	}
	if auto {
		c.Set(true)
	}
	return nil
}

func (c *Chrome) Exit() error {
	c.mu.Lock()
	c.exits++
	auto := c.Auto
	c.mu.Unlock()

	if auto {
		c.Set(false)
	}
	return nil
}

func (c *Chrome) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Set changes the chrome state and notifies subscribers if it changed.
func (c *Chrome) Set(active bool) {
	c.mu.Lock()
	if c.active == active {
		c.mu.Unlock()
		return
	}
	c.active = active
	ls := make([]func(bool), 0, len(c.listeners))
	for _, fn := range c.listeners {
		ls = append(ls, fn)
	}
	c.mu.Unlock()

	for _, fn := range ls {
		fn(active)
	}
}

func (c *Chrome) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.listeners)
}

func (c *Chrome) Requests() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.requests...)
}

func (c *Chrome) Exits() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.exits
}

// NativeExit models the platform's own exit gesture.
func (c *Chrome) NativeExit() { c.Set(false) }
