package models

// Bounds are the explicit size constraints handed to the page-flip widget.
type Bounds struct {
	Width     int
	Height    int
	MinWidth  int
	MaxWidth  int
	MinHeight int
	MaxHeight int
}

var (
	WindowedBounds = Bounds{
		Width: 550, Height: 733,
		MinWidth: 315, MaxWidth: 1000,
		MinHeight: 400, MaxHeight: 1533,
	}

	FullscreenBounds = Bounds{
		Width: 1100, Height: 1466,
		MinWidth: 630, MaxWidth: 2000,
		MinHeight: 800, MaxHeight: 3066,
	}
)

// BoundsFor picks the size policy for the fullscreen sub-state.
func BoundsFor(fullscreen bool) Bounds {
	if fullscreen {
		return FullscreenBounds
	}
	return WindowedBounds
}

// ClampWidth fits width into [MinWidth, MaxWidth].
func (b Bounds) ClampWidth(width int) int {
	if width < b.MinWidth {
		return b.MinWidth
	}
	if b.MaxWidth > 0 && width > b.MaxWidth {
		return b.MaxWidth
	}
	return width
}
