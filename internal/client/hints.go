package client

// SizeHints is the subset of WM_NORMAL_HINTS the manager acts on. Base is
// the minimum size; when a window only declares a minimum, the reader
// stores it as the base.
type SizeHints struct {
	BaseWidth  int
	BaseHeight int
	IncWidth   int
	IncHeight  int
	MaxWidth   int
	MaxHeight  int

	// UserPosition is set when the client asked for an explicit position.
	UserPosition bool
	X            int
	Y            int
}

// Normalize replaces zero or negative increments with 1.
func (h SizeHints) Normalize() SizeHints {
	if h.IncWidth <= 0 {
		h.IncWidth = 1
	}
	if h.IncHeight <= 0 {
		h.IncHeight = 1
	}
	if h.BaseWidth < 0 {
		h.BaseWidth = 0
	}
	if h.BaseHeight < 0 {
		h.BaseHeight = 0
	}
	return h
}

// Apply quantizes a requested size to the hints' increments. The result
// never falls below the base size and is the largest reachable step that
// does not exceed the request (or the maximum, when one is declared).
func (h SizeHints) Apply(width, height int) (int, int) {
	h = h.Normalize()
	if h.MaxWidth > 0 && width > h.MaxWidth {
		width = h.MaxWidth
	}
	if h.MaxHeight > 0 && height > h.MaxHeight {
		height = h.MaxHeight
	}
	return quantize(width, h.BaseWidth, h.IncWidth),
		quantize(height, h.BaseHeight, h.IncHeight)
}

// Units converts a pixel size into increment units above the base, the
// figure shown while resizing.
func (h SizeHints) Units(width, height int) (int, int) {
	h = h.Normalize()
	return (width - h.BaseWidth) / h.IncWidth, (height - h.BaseHeight) / h.IncHeight
}

func quantize(n, base, inc int) int {
	if n <= base {
		return base
	}
	return base + ((n-base)/inc)*inc
}
