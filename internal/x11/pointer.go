package x11

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Cursors holds the pointer shapes used during grabs.
type Cursors struct {
	Normal   xproto.Cursor
	Move     xproto.Cursor
	Resize   xproto.Cursor
	Question xproto.Cursor
}

// CreateCursors loads the glyph cursors. A shape that cannot be created is
// left as None, which keeps the current cursor.
func (c *Connection) CreateCursors() Cursors {
	load := func(shape uint16) xproto.Cursor {
		cur, err := xcursor.CreateCursor(c.XUtil, shape)
		if err != nil {
			c.logger.Warn("failed to create cursor", "shape", shape, "error", err)
			return 0
		}
		return cur
	}
	return Cursors{
		Normal:   load(xcursor.LeftPtr),
		Move:     load(xcursor.Fleur),
		Resize:   load(xcursor.BottomRightCorner),
		Question: load(xcursor.QuestionArrow),
	}
}

// SetRootCursor sets the cursor shown over the root window.
func (c *Connection) SetRootCursor(cur xproto.Cursor) {
	xproto.ChangeWindowAttributes(c.XUtil.Conn(), c.Root,
		xproto.CwCursor, []uint32{uint32(cur)})
}

// QueryPointer returns the pointer position in root coordinates.
func (c *Connection) QueryPointer() (int, int) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return 0, 0
	}
	return int(reply.RootX), int(reply.RootY)
}

// WarpPointer moves the pointer to (x, y) on the root.
func (c *Connection) WarpPointer(x, y int) {
	xproto.WarpPointer(c.XUtil.Conn(), xproto.WindowNone, c.Root,
		0, 0, 0, 0, int16(x), int16(y))
}

// GrabPointer actively grabs the pointer on the root with cur. It reports
// whether the grab succeeded.
func (c *Connection) GrabPointer(cur xproto.Cursor) bool {
	ok, err := mousebind.GrabPointer(c.XUtil, c.Root, xproto.WindowNone, cur)
	if err != nil {
		c.logger.Debug("pointer grab failed", "error", err)
		return false
	}
	return ok
}

// UngrabPointer releases an active pointer grab.
func (c *Connection) UngrabPointer() {
	mousebind.UngrabPointer(c.XUtil)
}

// GrabKeyboard grabs the keyboard on the root window.
func (c *Connection) GrabKeyboard() error {
	if err := keybind.GrabKeyboard(c.XUtil, c.Root); err != nil {
		return fmt.Errorf("keyboard grab failed: %w", err)
	}
	return nil
}

// UngrabKeyboard releases the keyboard.
func (c *Connection) UngrabKeyboard() {
	keybind.UngrabKeyboard(c.XUtil)
}

// KeyName returns the keysym name of a key event together with the text it
// types under the event's modifiers.
func (c *Connection) KeyName(state uint16, detail xproto.Keycode) (keysym, text string) {
	keysym = keybind.KeysymToStr(keybind.KeysymGet(c.XUtil, detail, 0))
	text = keybind.LookupString(c.XUtil, state, detail)
	if len([]rune(text)) != 1 {
		text = ""
	}
	return keysym, text
}

// Pump reads events directly from the connection while a grab is active,
// outside the main loop. Events it does not return are put back on the
// main queue by Close, so nothing is lost while a nested loop runs.
type Pump struct {
	xu       *xgbutil.XUtil
	logger   *slog.Logger
	deferred []xgbutil.EventOrError
}

// NewPump starts a nested event loop.
func (c *Connection) NewPump() *Pump {
	return &Pump{xu: c.XUtil, logger: c.logger}
}

// Next blocks until an input or expose event arrives and returns it.
func (p *Pump) Next() xgb.Event {
	for {
		if xevent.Empty(p.xu) {
			xevent.Read(p.xu, true)
		}
		ev, err := xevent.Dequeue(p.xu)
		if err != nil {
			p.logger.Warn("x error in nested loop", "error", err)
			continue
		}
		switch ev.(type) {
		case xproto.MotionNotifyEvent, xproto.ButtonPressEvent,
			xproto.ButtonReleaseEvent, xproto.KeyPressEvent,
			xproto.KeyReleaseEvent, xproto.ExposeEvent:
			return ev
		case nil:
			continue
		}
		p.deferred = append(p.deferred, xgbutil.EventOrError{Event: ev})
	}
}

// Close hands deferred events back to the main loop ahead of anything
// queued since, so the main loop still sees them in arrival order.
func (p *Pump) Close() {
	if len(p.deferred) == 0 {
		return
	}
	p.xu.EvqueueLck.Lock()
	p.xu.Evqueue = append(p.deferred, p.xu.Evqueue...)
	p.xu.EvqueueLck.Unlock()
	p.deferred = nil
}
