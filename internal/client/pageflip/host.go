package pageflip

import "sync"

// Host keeps one mounted Book and decides between updating it in place and
// mounting a fresh one.
type Host struct {
	measure Measurer

	mu   sync.Mutex
	book *Book
}

func NewHost(measure Measurer) *Host {
	return &Host{measure: measure}
}

// Render reconciles p with the mounted book. A different Key or document
// mounts a new book; otherwise only the bounds and flip handler change.
func (h *Host) Render(p Props) *Book {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.book == nil || h.book.Key() != p.Key || h.bookID() != p.ID {
		if h.book != nil {
			p.StartPage = h.carryPage(p)
		}
		h.book = Mount(p, h.measure)
		return h.book
	}
	h.book.SetBounds(p.Bounds)
	h.book.setOnFlip(p.OnFlip)
	return h.book
}

// Book returns the mounted book, if any.
func (h *Host) Book() *Book {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.book
}

// Unmount drops the mounted book.
func (h *Host) Unmount() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.book = nil
}

func (h *Host) bookID() string {
	h.book.mu.Lock()
	defer h.book.mu.Unlock()
	return h.book.props.ID
}

// carryPage keeps the reader's place across a remount of the same document.
func (h *Host) carryPage(p Props) int {
	if h.bookID() != p.ID {
		return p.StartPage
	}
	return h.book.Page()
}
