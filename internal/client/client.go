// Package client models managed top-level windows and the registry that
// owns them.
package client

import "github.com/1broseidon/quietwm/internal/geom"

// Window is the native handle of a top-level window.
type Window uint32

// MaxNameHistory bounds how many past titles a client remembers.
const MaxNameHistory = 5

// NoGroup marks a client that belongs to no group.
const NoGroup = -1

// Flags is the small state bitset carried by every client.
type Flags uint16

const (
	// FlagHidden is set while the window is iconified by the manager.
	FlagHidden Flags = 1 << iota
	// FlagFrozen clients ignore interactive move/resize and are skipped
	// when cycling.
	FlagFrozen
	// FlagSticky clients are shown regardless of group visibility.
	FlagSticky
	FlagMaximized
	FlagVMaximized
)

// Has reports whether every bit in mask is set.
func (f Flags) Has(mask Flags) bool { return f&mask == mask }

// Highlight selects the border color used while toggling group membership.
type Highlight int

const (
	HighlightNone Highlight = iota
	HighlightGroup
	HighlightUngroup
)

// Client is the manager-side state of one top-level window.
type Client struct {
	ID     ID
	Window Window
	// Screen is the index of the owning screen. The screen owns the
	// client's membership; this is only a record of where it lives.
	Screen int

	Geom        geom.Rect
	SavedGeom   geom.Rect
	BorderWidth int
	Hints       SizeHints

	Flags     Flags
	Highlight Highlight
	Active    bool

	Name     string
	names    []string
	Label    string
	AppName  string
	AppClass string

	StackingOrder int
	Group         int

	// PtrX and PtrY are the saved pointer position relative to the
	// window, or -1 when nothing has been saved.
	PtrX int
	PtrY int

	SupportsDelete    bool
	SupportsTakeFocus bool
}

// New returns a client for win on the given screen with no saved pointer
// and no group.
func New(win Window, screen int) *Client {
	return &Client{
		Window: win,
		Screen: screen,
		Hints:  SizeHints{IncWidth: 1, IncHeight: 1},
		Group:  NoGroup,
		PtrX:   -1,
		PtrY:   -1,
	}
}

// Hidden reports whether the client is currently hidden.
func (c *Client) Hidden() bool { return c.Flags.Has(FlagHidden) }

// Frozen reports whether the client ignores interactive operations.
func (c *Client) Frozen() bool { return c.Flags.Has(FlagFrozen) }

// SetName records name as the current title. A title seen before moves to
// the newest slot of the history instead of being stored twice, and the
// oldest entry is dropped once the history exceeds MaxNameHistory.
func (c *Client) SetName(name string) {
	for i, n := range c.names {
		if n == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
	c.names = append(c.names, name)
	if len(c.names) > MaxNameHistory {
		c.names = c.names[len(c.names)-MaxNameHistory:]
	}
	c.Name = name
}

// Names returns the title history, oldest first.
func (c *Client) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// ApplySizeHints quantizes the client's width and height in place.
func (c *Client) ApplySizeHints() {
	c.Geom.Width, c.Geom.Height = c.Hints.Apply(c.Geom.Width, c.Geom.Height)
}

// InBounds reports whether a window-relative point lies inside the client.
func (c *Client) InBounds(x, y int) bool {
	return x >= 0 && x < c.Geom.Width &&
		y >= 0 && y < c.Geom.Height
}

// SavePointer stores a window-relative pointer position if it lies inside
// the window.
func (c *Client) SavePointer(x, y int) bool {
	if !c.InBounds(x, y) {
		return false
	}
	c.PtrX, c.PtrY = x, y
	return true
}

// ClampSavedPointer pulls a saved pointer position that fell outside the
// window after a shrink back onto its far edge.
func (c *Client) ClampSavedPointer() {
	if c.PtrX > c.Geom.Width {
		c.PtrX = c.Geom.Width - c.BorderWidth
	}
	if c.PtrY > c.Geom.Height {
		c.PtrY = c.Geom.Height - c.BorderWidth
	}
}

// WarpTarget returns where the pointer should land when this client gains
// focus: the saved position, or the window centre if none was saved.
func (c *Client) WarpTarget() (int, int) {
	if c.PtrX == -1 || c.PtrY == -1 {
		return c.Geom.Width / 2, c.Geom.Height / 2
	}
	return c.PtrX, c.PtrY
}

// DisplayName returns the label when set, otherwise the current title.
func (c *Client) DisplayName() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Name
}
