// Package session holds the transient, per-activation state of a client
// controller and guards it against results that arrive after the activation
// that requested them is gone.
//
// Every activation (Begin) opens a new generation with its own cancellable
// context. Asynchronous work captures the generation it started in and
// commits through Apply, which drops the result if the generation has since
// changed. State changes are atomic with respect to Snapshot and listeners.
package session

import (
	"context"
	"errors"
	"sync"
)

// ErrStale is returned by Apply when the generation has been superseded.
var ErrStale = errors.New("stale generation")

// ErrInactive is returned when no activation is open.
var ErrInactive = errors.New("session inactive")

// Store owns one controller's state. The zero value is not usable; use NewStore.
type Store[T any] struct {
	mu     sync.Mutex
	state  T
	gen    uint64
	seq    uint64
	active bool
	ctx    context.Context
	cancel context.CancelFunc

	nextID    int
	listeners map[int]func(T)

	notifyMu  sync.Mutex
	delivered uint64

	wg sync.WaitGroup
}

// NewStore returns an inactive store holding init.
func NewStore[T any](init T) *Store[T] {
	return &Store[T]{state: init, listeners: make(map[int]func(T))}
}

// Begin opens a new activation: any previous one is cancelled, the
// generation advances and the state is replaced by init.
func (s *Store[T]) Begin(parent context.Context, init T) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.ctx, s.cancel = ctx, cancel
	s.gen++
	s.active = true
	s.state = init
	gen := s.gen
	s.publishLocked()

	return ctx, gen
}

// End closes the current activation, cancelling its context, and installs final.
func (s *Store[T]) End(final T) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.ctx, s.cancel = nil, nil
	s.gen++
	s.active = false
	s.state = final
	s.publishLocked()
}

// Context returns the current activation's context and generation.
func (s *Store[T]) Context() (context.Context, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return nil, s.gen, ErrInactive
	}
	return s.ctx, s.gen, nil
}

// Generation returns the current generation.
func (s *Store[T]) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Active reports whether an activation is open.
func (s *Store[T]) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Apply runs fn on a copy of the state and commits the copy iff gen is
// still current and fn returns nil. fn must validate before it mutates
// anything it shares with the committed state (slices, maps).
func (s *Store[T]) Apply(gen uint64, fn func(*T) error) error {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return ErrStale
	}
	next := s.state
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.publishLocked()
	return nil
}

// Update is Apply against whatever generation is current. It fails with
// ErrInactive outside an activation.
func (s *Store[T]) Update(fn func(*T) error) error {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return ErrInactive
	}
	gen := s.gen
	s.mu.Unlock()
	return s.Apply(gen, fn)
}

// Snapshot returns a copy of the current state.
func (s *Store[T]) Snapshot() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for state changes and returns a function that
// removes it. fn receives copies, never runs under the state lock, and
// sees states in commit order (intermediate states may be coalesced).
// fn must not call Begin, End, Apply or Update on the same store.
func (s *Store[T]) Subscribe(fn func(T)) (unsubscribe func()) {
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

// Track runs fn on its own goroutine and tracks it for Wait.
func (s *Store[T]) Track(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// Wait blocks until every function started with Track has returned.
// It must not be called from inside such a function.
func (s *Store[T]) Wait() {
	s.wg.Wait()
}

// publishLocked must be called with s.mu held; it releases it.
func (s *Store[T]) publishLocked() {
	s.seq++
	seq := s.seq
	snap := s.state
	ls := make([]func(T), 0, len(s.listeners))
	for _, fn := range s.listeners {
		ls = append(ls, fn)
	}
	s.mu.Unlock()

	if len(ls) == 0 {
		return
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if seq <= s.delivered {
		return
	}
	s.delivered = seq
	for _, fn := range ls {
		fn(snap)
	}
}
