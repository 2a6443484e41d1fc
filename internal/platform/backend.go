package platform

import (
	"image/color"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/quietwm/internal/client"
	"github.com/1broseidon/quietwm/internal/geom"
	"github.com/1broseidon/quietwm/internal/pointer"
	"github.com/1broseidon/quietwm/internal/wm"
	"github.com/1broseidon/quietwm/internal/x11"
)

// Colors are the pixel values and menu colors the backend draws with.
type Colors struct {
	Borders map[wm.ColorRole]uint32

	MenuBackground color.RGBA
	MenuForeground color.RGBA
	MenuSelection  color.RGBA
	MenuBorder     uint32
}

func menuPalette(c Colors) x11.Palette {
	return x11.Palette{
		Background: c.MenuBackground,
		Foreground: c.MenuForeground,
		Selection:  c.MenuSelection,
		Border:     c.MenuBorder,
	}
}

// DefaultColors mirrors the classic palette: a light gray active border,
// dark gray inactive, blue for group highlight and red for ungroup.
func DefaultColors() Colors {
	return Colors{
		Borders: map[wm.ColorRole]uint32{
			wm.ColorActive:   0xcccccc,
			wm.ColorInactive: 0x666666,
			wm.ColorGroup:    0x0000ff,
			wm.ColorUngroup:  0xff0000,
		},
		MenuBackground: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		MenuForeground: color.RGBA{A: 0xff},
		MenuSelection:  color.RGBA{A: 0xff},
		MenuBorder:     0x000000,
	}
}

// pointerEvent reduces an X event read during a grab to what the move and
// resize state machines consume.
func pointerEvent(ev xgb.Event) (pointer.Event, bool) {
	switch e := ev.(type) {
	case xproto.MotionNotifyEvent:
		return pointer.Event{
			Kind:  pointer.EventMotion,
			RootX: int(e.RootX),
			RootY: int(e.RootY),
			Time:  uint32(e.Time),
		}, true
	case xproto.ButtonReleaseEvent:
		return pointer.Event{
			Kind:  pointer.EventButtonRelease,
			RootX: int(e.RootX),
			RootY: int(e.RootY),
			Time:  uint32(e.Time),
		}, true
	case xproto.ExposeEvent:
		return pointer.Event{Kind: pointer.EventExpose}, true
	}
	return pointer.Event{}, false
}

// placeMenu positions a menu of size w x h at the pointer, pulling it back
// inside area when it would overflow. The returned point is the menu's
// top-left corner.
func placeMenu(px, py, w, h int, area geom.Rect) (int, int) {
	x, y := px, py
	if x+w > area.Right() {
		x = area.Right() - w
	}
	if x < area.X {
		x = area.X
	}
	if y+h > area.Bottom() {
		y = area.Bottom() - h
	}
	if y < area.Y {
		y = area.Y
	}
	return x, y
}

// headAt returns the head strictly containing (x, y), or screen.
func headAt(heads []geom.Rect, screen geom.Rect, x, y int) geom.Rect {
	for _, h := range heads {
		if h.ContainsStrict(x, y) {
			return h
		}
	}
	return screen
}

// unmapLedger counts unmaps the manager issued itself, so their
// notifications are not mistaken for a client withdrawing. Only unmapping
// a viewable window produces a notification, so only those are counted.
type unmapLedger map[xproto.Window]int

func (l unmapLedger) expect(win xproto.Window, viewable bool) {
	if viewable {
		l[win]++
	}
}

// swallow consumes one expected notification for win.
func (l unmapLedger) swallow(win xproto.Window) bool {
	n := l[win]
	if n == 0 {
		return false
	}
	if n == 1 {
		delete(l, win)
	} else {
		l[win] = n - 1
	}
	return true
}

func (l unmapLedger) forget(win xproto.Window) { delete(l, win) }

// configureRequest converts a ConfigureRequest event into the fields the
// manager honours.
func configureRequest(e xproto.ConfigureRequestEvent) wm.ConfigureRequest {
	req := wm.ConfigureRequest{
		Window:      client.Window(e.Window),
		X:           int(e.X),
		Y:           int(e.Y),
		Width:       int(e.Width),
		Height:      int(e.Height),
		BorderWidth: int(e.BorderWidth),
	}
	fields := map[uint16]wm.ConfigureFields{
		xproto.ConfigWindowX:           wm.ConfigureX,
		xproto.ConfigWindowY:           wm.ConfigureY,
		xproto.ConfigWindowWidth:       wm.ConfigureWidth,
		xproto.ConfigWindowHeight:      wm.ConfigureHeight,
		xproto.ConfigWindowBorderWidth: wm.ConfigureBorder,
	}
	for bit, f := range fields {
		if e.ValueMask&bit != 0 {
			req.Fields |= f
		}
	}
	return req
}

// modifier masks used when classifying menu keys.
const (
	controlMask = xproto.ModMaskControl
	metaMask    = xproto.ModMask1
)
