package x11

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xrect"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/quietwm/internal/geom"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil  *xgbutil.XUtil
	Root   xproto.Window
	logger *slog.Logger
}

// NewConnection establishes a connection to the X11 server named by display
// ("" means $DISPLAY) and initializes the key and mouse binding modules.
// A nil logger uses slog.Default.
func NewConnection(display string, logger *slog.Logger) (*Connection, error) {
	if logger == nil {
		logger = slog.Default()
	}
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	keybind.Initialize(xu)
	mousebind.Initialize(xu)

	return &Connection{
		XUtil:  xu,
		Root:   xu.RootWin(),
		logger: logger,
	}, nil
}

// rootEventMask is what a window manager selects on the root window.
const rootEventMask = xproto.EventMaskSubstructureRedirect |
	xproto.EventMaskSubstructureNotify |
	xproto.EventMaskPropertyChange |
	xproto.EventMaskEnterWindow |
	xproto.EventMaskLeaveWindow |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskStructureNotify

// BecomeWM selects substructure redirection on the root window. Only one
// client may hold it; IsAccessError reports the failure when another
// window manager does.
func (c *Connection) BecomeWM() error {
	err := xproto.ChangeWindowAttributesChecked(c.XUtil.Conn(), c.Root,
		xproto.CwEventMask, []uint32{rootEventMask}).Check()
	if err != nil {
		return fmt.Errorf("failed to select root events: %w", err)
	}
	return nil
}

// IsAccessError reports whether err is an X BadAccess error.
func IsAccessError(err error) bool {
	var access xproto.AccessError
	return errors.As(err, &access)
}

// Screen returns the geometry of the root window. The root is re-queried
// so that RandR resizes are picked up.
func (c *Connection) Screen() geom.Rect {
	r, err := xwindow.RawGeometry(c.XUtil, xproto.Drawable(c.Root))
	if err != nil {
		s := c.XUtil.Screen()
		return geom.Rect{Width: int(s.WidthInPixels), Height: int(s.HeightInPixels)}
	}
	x, y, w, h := xrect.Pieces(r)
	return geom.Rect{X: x, Y: y, Width: w, Height: h}
}

// EventLoop starts the main X11 event loop (blocking)
func (c *Connection) EventLoop() {
	xevent.Main(c.XUtil)
}

// Quit makes EventLoop return after the event being processed.
func (c *Connection) Quit() {
	xevent.Quit(c.XUtil)
}

// Sync flushes requests and waits for the server to process them.
func (c *Connection) Sync() {
	c.XUtil.Sync()
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
