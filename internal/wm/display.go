package wm

import (
	"github.com/1broseidon/quietwm/internal/client"
	"github.com/1broseidon/quietwm/internal/geom"
	"github.com/1broseidon/quietwm/internal/menu"
	"github.com/1broseidon/quietwm/internal/pointer"
	"github.com/1broseidon/quietwm/internal/search"
)

// WindowState mirrors the ICCCM WM_STATE values the manager writes.
type WindowState int

const (
	WithdrawnState WindowState = 0
	NormalState    WindowState = 1
	IconicState    WindowState = 3
)

// ColorRole names a border color; the display maps it to a pixel.
type ColorRole int

const (
	ColorActive ColorRole = iota
	ColorInactive
	ColorGroup
	ColorUngroup
)

// Cursor selects the pointer shape used during a grab.
type Cursor int

const (
	CursorNormal Cursor = iota
	CursorMove
	CursorResize
	CursorQuestion
)

// WindowInfo is what the manager reads from a window when it starts
// managing it.
type WindowInfo struct {
	Geom     geom.Rect
	Viewable bool
	Hints    client.SizeHints
	// Iconic is set when WM_HINTS asks for the window to start iconified.
	Iconic bool
	// NoBorder is set when the client asked for no decorations.
	NoBorder bool

	Name     string
	AppName  string
	AppClass string

	SupportsDelete    bool
	SupportsTakeFocus bool

	// Desktop is the _NET_WM_DESKTOP value when HasDesktop is set, with -1
	// meaning all desktops.
	Desktop    int
	HasDesktop bool
}

// Display is the windowing transport the manager drives. Every method is
// called from the event thread.
type Display interface {
	ScreenCount() int
	ScreenGeometry(screen int) geom.Rect
	// Heads returns the monitor rectangles of a screen, or nothing when
	// the query fails.
	Heads(screen int) []geom.Rect
	// ExistingWindows lists the viewable top-level windows present when
	// the manager starts.
	ExistingWindows(screen int) []client.Window
	// StackingOrder returns the screen's top-level windows bottom to top.
	StackingOrder(screen int) []client.Window

	ReadWindow(w client.Window) (WindowInfo, error)
	ReadName(w client.Window) string
	ReadSizeHints(w client.Window) client.SizeHints

	// Manage selects the events the manager needs on a client window and
	// adds it to the save set. Unmanage undoes it.
	Manage(w client.Window)
	Unmanage(w client.Window)

	MoveResize(w client.Window, r geom.Rect)
	SendConfigure(w client.Window, r geom.Rect, border int)
	MapRaised(w client.Window)
	Unmap(w client.Window)
	Raise(w client.Window)
	Lower(w client.Window)
	// Restack orders windows top to bottom.
	Restack(top []client.Window)
	SetBorder(w client.Window, width int, role ColorRole)
	SetState(w client.Window, state WindowState)
	Focus(w client.Window, takeFocus bool)
	// Delete asks the client to close via WM_DELETE_WINDOW when it
	// supports it and kills the connection otherwise.
	Delete(w client.Window, supported bool)

	SetActiveWindow(screen int, w client.Window)
	SetClientList(screen int, windows []client.Window)
	// SetWindowDesktop publishes a client's group; -1 means none.
	SetWindowDesktop(w client.Window, desktop int)
	SetCurrentDesktop(screen, desktop int)
	SetNumberOfDesktops(screen, n int)
	DesktopNames(screen int) []string
	SetDesktopNames(screen int, names []string)

	// QueryPointer returns the pointer position in root coordinates.
	QueryPointer(screen int) (int, int)
	WarpPointer(screen, x, y int)
	// GrabPointer grabs the pointer for an interactive operation on w and
	// returns the nested event source. ok is false when the grab failed.
	GrabPointer(w client.Window, cursor Cursor) (src pointer.Source, ok bool)
	UngrabPointer()
	UngrabKeyboard()

	// ShowReadout places a small label with its top-left corner at (x, y).
	ShowReadout(screen, x, y int, text string)
	HideReadout(screen int)
	// RunMenu shows m at the pointer and blocks until it finishes.
	RunMenu(screen int, m *menu.Menu) (menu.Outcome, *search.Entry)

	// Wake interrupts the event loop so posted work runs.
	Wake()
	// Stop ends the event loop.
	Stop()
}

// Spawner starts helper programs.
type Spawner interface {
	Spawn(command string) error
	// Replace execs command in place of the running process.
	Replace(command string) error
}
