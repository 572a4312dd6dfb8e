// Package pageflip is a page-flipping book widget.
//
// A Book measures its viewport once, when it is mounted, and derives its
// page layout from that measurement. Later bound changes reuse the cached
// measurement, so the only way to get a layout for a resized viewport is a
// fresh mount. Host does that whenever Props.Key changes.
package pageflip

import (
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/flipbook/internal/client/models"
	"golang.org/x/term"
)

// Cell size used to convert a terminal viewport into pixels.
const (
	cellWidth  = 8
	cellHeight = 16
)

// Props configure a Book. Key identifies one widget instance: a Host
// remounts the book whenever it changes.
type Props struct {
	Key       uint64
	ID        string
	Pages     []string
	Bounds    models.Bounds
	StartPage int
	OnFlip    func(index int)
}

// Viewport is the available drawing area in pixels.
type Viewport struct {
	Width  int
	Height int
}

// Measurer reports the current viewport.
type Measurer func() (Viewport, error)

// TerminalMeasurer measures the terminal behind fd. Off a terminal it
// reports a zero viewport.
func TerminalMeasurer(fd int) Measurer {
	return func() (Viewport, error) {
		if !term.IsTerminal(fd) {
			return Viewport{}, nil
		}
		cols, rows, err := term.GetSize(fd)
		if err != nil {
			return Viewport{}, err
		}
		return Viewport{Width: cols * cellWidth, Height: rows * cellHeight}, nil
	}
}

// Layout is the computed size of one page.
type Layout struct {
	Width  int
	Height int
}

type Book struct {
	mu       sync.Mutex
	props    Props
	viewport Viewport
	layout   Layout
	page     int
}

// Mount builds a book and takes its one viewport measurement. A failed
// measurement leaves the layout at the preferred bounds.
func Mount(p Props, measure Measurer) *Book {
	var vp Viewport
	if measure != nil {
		if v, err := measure(); err == nil {
			vp = v
		}
	}
	b := &Book{props: p, viewport: vp}
	b.layout = computeLayout(vp, p.Bounds)
	b.page = clamp(p.StartPage, 0, len(p.Pages)-1)
	return b
}

func (b *Book) Key() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.props.Key
}

func (b *Book) Layout() Layout {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.layout
}

func (b *Book) Page() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.page
}

func (b *Book) PageCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.props.Pages)
}

// SetBounds applies new size bounds against the viewport measured at mount.
func (b *Book) SetBounds(bounds models.Bounds) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.props.Bounds = bounds
	b.layout = computeLayout(b.viewport, bounds)
}

func (b *Book) setOnFlip(fn func(int)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.props.OnFlip = fn
}

func (b *Book) Next() bool { return b.Turn(1) }
func (b *Book) Prev() bool { return b.Turn(-1) }

// Turn moves by delta pages, stopping at either cover.
func (b *Book) Turn(delta int) bool {
	b.mu.Lock()
	return b.flipLocked(b.page + delta)
}

// Flip jumps to index, clamped to the page range.
func (b *Book) Flip(index int) bool {
	b.mu.Lock()
	return b.flipLocked(index)
}

// flipLocked releases b.mu before emitting OnFlip.
func (b *Book) flipLocked(index int) bool {
	n := len(b.props.Pages)
	if n == 0 {
		b.mu.Unlock()
		return false
	}
	index = clamp(index, 0, n-1)
	if index == b.page {
		b.mu.Unlock()
		return false
	}
	b.page = index
	onFlip := b.props.OnFlip
	b.mu.Unlock()

	if onFlip != nil {
		onFlip(index)
	}
	return true
}

// Render draws the current page reference.
func (b *Book) Render(w io.Writer) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.props.Pages)
	if n == 0 {
		_, err := fmt.Fprintln(w, "  (no pages)")
		return err
	}
	_, err := fmt.Fprintf(w, "  Page %d/%d [%dx%d]\n  %s\n",
		b.page+1, n, b.layout.Width, b.layout.Height, b.props.Pages[b.page])
	return err
}

// computeLayout stretches the page to the viewport within bounds, keeping
// the preferred aspect ratio.
func computeLayout(vp Viewport, bounds models.Bounds) Layout {
	w := bounds.Width
	if vp.Width > 0 {
		w = bounds.ClampWidth(vp.Width / 2)
	}
	h := bounds.Height
	if bounds.Width > 0 {
		h = w * bounds.Height / bounds.Width
	}
	if vp.Height > 0 && h > vp.Height {
		h = vp.Height
	}
	h = clamp(h, bounds.MinHeight, bounds.MaxHeight)
	return Layout{Width: w, Height: h}
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
