package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WakeAtom is the private client message used to interrupt the event loop.
const WakeAtom = "_QUIETWM_WAKE"

// supportedAtoms is published as _NET_SUPPORTED.
var supportedAtoms = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_ACTIVE_WINDOW",
	"_NET_CLIENT_LIST",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_CURRENT_DESKTOP",
	"_NET_DESKTOP_NAMES",
	"_NET_WM_DESKTOP",
	"_NET_WM_NAME",
}

// CreateCheckWindow creates the _NET_SUPPORTING_WM_CHECK window, names the
// manager on it and advertises the supported hints.
func (c *Connection) CreateCheckWindow(name string) (xproto.Window, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate check window: %w", err)
	}
	if err := win.CreateChecked(c.Root, -1, -1, 1, 1,
		xproto.CwOverrideRedirect|xproto.CwEventMask,
		1, xproto.EventMaskPropertyChange); err != nil {
		return 0, fmt.Errorf("failed to create check window: %w", err)
	}

	if err := ewmh.SupportingWmCheckSet(c.XUtil, c.Root, win.Id); err != nil {
		return 0, err
	}
	if err := ewmh.SupportingWmCheckSet(c.XUtil, win.Id, win.Id); err != nil {
		return 0, err
	}
	if err := ewmh.WmNameSet(c.XUtil, win.Id, name); err != nil {
		return 0, err
	}
	if err := ewmh.SupportedSet(c.XUtil, supportedAtoms); err != nil {
		return 0, err
	}
	return win.Id, nil
}

// SendWake posts a WakeAtom client message to win. It is safe to call from
// any goroutine.
func (c *Connection) SendWake(win xproto.Window) {
	typ, err := xprop.Atm(c.XUtil, WakeAtom)
	if err != nil {
		c.logger.Warn("failed to intern atom", "atom", WakeAtom, "error", err)
		return
	}
	ev, err := xevent.NewClientMessage(32, win, typ)
	if err != nil {
		return
	}
	xproto.SendEvent(c.XUtil.Conn(), false, win, xproto.EventMaskNoEvent, string(ev.Bytes()))
}

// IsWake reports whether a client message is a wake-up.
func (c *Connection) IsWake(ev xevent.ClientMessageEvent) bool {
	typ, err := xprop.Atm(c.XUtil, WakeAtom)
	return err == nil && ev.Type == typ
}

// SetActiveWindow publishes _NET_ACTIVE_WINDOW.
func (c *Connection) SetActiveWindow(win xproto.Window) {
	if err := ewmh.ActiveWindowSet(c.XUtil, win); err != nil {
		c.logger.Debug("failed to set _NET_ACTIVE_WINDOW", "error", err)
	}
}

// SetClientList publishes _NET_CLIENT_LIST.
func (c *Connection) SetClientList(wins []xproto.Window) {
	if err := ewmh.ClientListSet(c.XUtil, wins); err != nil {
		c.logger.Debug("failed to set _NET_CLIENT_LIST", "error", err)
	}
}

// SetWindowDesktop publishes a window's _NET_WM_DESKTOP. A negative
// desktop is written as 0xFFFFFFFF (all desktops).
func (c *Connection) SetWindowDesktop(win xproto.Window, desktop int) {
	value := uint(0xFFFFFFFF)
	if desktop >= 0 {
		value = uint(desktop)
	}
	if err := ewmh.WmDesktopSet(c.XUtil, win, value); err != nil {
		c.logger.Debug("failed to set _NET_WM_DESKTOP", "window", win, "error", err)
	}
}

// SetCurrentDesktop publishes _NET_CURRENT_DESKTOP.
func (c *Connection) SetCurrentDesktop(desktop int) {
	if err := ewmh.CurrentDesktopSet(c.XUtil, uint(desktop)); err != nil {
		c.logger.Debug("failed to set _NET_CURRENT_DESKTOP", "error", err)
	}
}

// SetNumberOfDesktops publishes _NET_NUMBER_OF_DESKTOPS.
func (c *Connection) SetNumberOfDesktops(n int) {
	if err := ewmh.NumberOfDesktopsSet(c.XUtil, uint(n)); err != nil {
		c.logger.Debug("failed to set _NET_NUMBER_OF_DESKTOPS", "error", err)
	}
}

// DesktopNames reads _NET_DESKTOP_NAMES.
func (c *Connection) DesktopNames() []string {
	names, err := ewmh.DesktopNamesGet(c.XUtil)
	if err != nil {
		return nil
	}
	return names
}

// SetDesktopNames publishes _NET_DESKTOP_NAMES.
func (c *Connection) SetDesktopNames(names []string) {
	if err := ewmh.DesktopNamesSet(c.XUtil, names); err != nil {
		c.logger.Debug("failed to set _NET_DESKTOP_NAMES", "error", err)
	}
}
