// Package fullscreen models the platform's fullscreen chrome: one global
// on/off resource that the application may ask to change and that the
// platform may change on its own.
package fullscreen

import (
	"errors"
	"io"
	"sync"

	"golang.org/x/term"
)

// ErrNotAllowed is returned when the platform vetoes a fullscreen request.
var ErrNotAllowed = errors.New("fullscreen not allowed")

// Chrome is the fullscreen resource as seen by a viewer. Request and Exit
// only ask for a transition; the outcome arrives through Subscribe.
type Chrome interface {
	Subscribe(fn func(active bool)) (unsubscribe func())
	Request(region string) error
	Exit() error
	Active() bool
}

const (
	enterAltScreen = "\x1b[?1049h\x1b[H"
	exitAltScreen  = "\x1b[?1049l"
)

// Screen implements Chrome with the terminal's alternate screen buffer.
type Screen struct {
	out        io.Writer
	isTerminal func() bool

	mu        sync.Mutex
	active    bool
	region    string
	seq       uint64
	nextID    int
	listeners map[int]func(bool)

	notifyMu  sync.Mutex
	delivered uint64
}

// NewScreen drives out, which must be the terminal behind fd for requests
// to be allowed.
func NewScreen(out io.Writer, fd int) *Screen {
	return newScreen(out, func() bool { return term.IsTerminal(fd) })
}

func newScreen(out io.Writer, isTerminal func() bool) *Screen {
	return &Screen{out: out, isTerminal: isTerminal, listeners: make(map[int]func(bool))}
}

func (s *Screen) Subscribe(fn func(bool)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Screen) Request(region string) error {
	if !s.isTerminal() {
		return ErrNotAllowed
	}
	return s.set(true, region)
}

// Exit leaves fullscreen at the application's request.
func (s *Screen) Exit() error {
	return s.set(false, "")
}

// NativeExit is the platform's own exit gesture. Subscribers cannot tell
// it apart from Exit.
func (s *Screen) NativeExit() {
	_ = s.set(false, "")
}

func (s *Screen) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Region is the region that requested the current fullscreen session.
func (s *Screen) Region() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.region
}

func (s *Screen) set(active bool, region string) error {
	s.mu.Lock()
	if s.active == active {
		s.mu.Unlock()
		return nil
	}
	esc := exitAltScreen
	if active {
		esc = enterAltScreen
	}
	if _, err := io.WriteString(s.out, esc); err != nil {
		s.mu.Unlock()
		return err
	}
	s.active = active
	s.region = region
	s.seq++
	n := s.seq
	ls := make([]func(bool), 0, len(s.listeners))
	for _, fn := range s.listeners {
		ls = append(ls, fn)
	}
	s.mu.Unlock()

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if n <= s.delivered {
		return nil
	}
	s.delivered = n
	for _, fn := range ls {
		fn(active)
	}
	return nil
}

