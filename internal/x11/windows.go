package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/quietwm/internal/client"
	"github.com/1broseidon/quietwm/internal/geom"
)

// clientEventMask is selected on every managed window. Unmap and destroy
// notifications arrive through the root's SubstructureNotify.
const clientEventMask = xproto.EventMaskEnterWindow |
	xproto.EventMaskPropertyChange

// Attributes is the subset of window attributes the manager reads.
type Attributes struct {
	Geom             geom.Rect
	Viewable         bool
	OverrideRedirect bool
}

// Viewable reports whether win is currently mapped and visible. Unknown
// windows are not viewable.
func (c *Connection) Viewable(win xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	return err == nil && attrs.MapState == xproto.MapStateViewable
}

// GetAttributes reads a window's map state and geometry.
func (c *Connection) GetAttributes(win xproto.Window) (Attributes, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	if err != nil {
		return Attributes{}, fmt.Errorf("failed to get window attributes: %w", err)
	}
	g, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return Attributes{}, fmt.Errorf("failed to get window geometry: %w", err)
	}
	return Attributes{
		Geom: geom.Rect{
			X:      int(g.X),
			Y:      int(g.Y),
			Width:  int(g.Width),
			Height: int(g.Height),
		},
		Viewable:         attrs.MapState == xproto.MapStateViewable,
		OverrideRedirect: attrs.OverrideRedirect,
	}, nil
}

// TopLevelWindows lists the children of the root, bottom to top.
func (c *Connection) TopLevelWindows() ([]xproto.Window, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query window tree: %w", err)
	}
	return tree.Children, nil
}

// GetName returns _NET_WM_NAME, falling back to WM_NAME.
func (c *Connection) GetName(win xproto.Window) string {
	if name, err := ewmh.WmNameGet(c.XUtil, win); err == nil && name != "" {
		return name
	}
	name, _ := icccm.WmNameGet(c.XUtil, win)
	return name
}

// GetClass returns the WM_CLASS instance and class names.
func (c *Connection) GetClass(win xproto.Window) (instance, class string) {
	wc, err := icccm.WmClassGet(c.XUtil, win)
	if err != nil {
		return "", ""
	}
	return wc.Instance, wc.Class
}

// GetSizeHints reads WM_NORMAL_HINTS.
func (c *Connection) GetSizeHints(win xproto.Window) client.SizeHints {
	nh, err := icccm.WmNormalHintsGet(c.XUtil, win)
	if err != nil {
		return client.SizeHints{}
	}
	return sizeHints(nh)
}

func sizeHints(nh *icccm.NormalHints) client.SizeHints {
	var h client.SizeHints
	switch {
	case nh.Flags&icccm.SizeHintPBaseSize != 0:
		h.BaseWidth, h.BaseHeight = int(nh.BaseWidth), int(nh.BaseHeight)
	case nh.Flags&icccm.SizeHintPMinSize != 0:
		h.BaseWidth, h.BaseHeight = int(nh.MinWidth), int(nh.MinHeight)
	}
	if nh.Flags&icccm.SizeHintPResizeInc != 0 {
		h.IncWidth, h.IncHeight = int(nh.WidthInc), int(nh.HeightInc)
	}
	if nh.Flags&icccm.SizeHintPMaxSize != 0 {
		h.MaxWidth, h.MaxHeight = int(nh.MaxWidth), int(nh.MaxHeight)
	}
	if nh.Flags&icccm.SizeHintUSPosition != 0 {
		h.UserPosition = true
		h.X, h.Y = nh.X, nh.Y
	}
	return h.Normalize()
}

// StartsIconic reports whether WM_HINTS asks for an iconic initial state.
func (c *Connection) StartsIconic(win xproto.Window) bool {
	hints, err := icccm.WmHintsGet(c.XUtil, win)
	if err != nil {
		return false
	}
	return hints.Flags&icccm.HintState != 0 && hints.InitialState == icccm.StateIconic
}

// GetWMState reads WM_STATE.
func (c *Connection) GetWMState(win xproto.Window) (uint, bool) {
	st, err := icccm.WmStateGet(c.XUtil, win)
	if err != nil {
		return 0, false
	}
	return st.State, true
}

// motifDecorations is the MWM_HINTS_DECORATIONS flag of _MOTIF_WM_HINTS.
const motifDecorations = 1 << 1

// NoDecorations reports whether _MOTIF_WM_HINTS asks for no decorations.
func (c *Connection) NoDecorations(win xproto.Window) bool {
	vals, err := xprop.PropValNums(xprop.GetProperty(c.XUtil, win, "_MOTIF_WM_HINTS"))
	if err != nil || len(vals) < 3 {
		return false
	}
	return vals[0]&motifDecorations != 0 && vals[2] == 0
}

// GetProtocols reports which of WM_DELETE_WINDOW and WM_TAKE_FOCUS a
// window participates in.
func (c *Connection) GetProtocols(win xproto.Window) (deleteWindow, takeFocus bool) {
	protocols, err := icccm.WmProtocolsGet(c.XUtil, win)
	if err != nil {
		return false, false
	}
	for _, p := range protocols {
		switch p {
		case "WM_DELETE_WINDOW":
			deleteWindow = true
		case "WM_TAKE_FOCUS":
			takeFocus = true
		}
	}
	return deleteWindow, takeFocus
}

// GetWindowDesktop returns the desktop number a window is on.
// Uses _NET_WM_DESKTOP atom. Returns -1 for "sticky" windows (visible on all desktops).
func (c *Connection) GetWindowDesktop(win xproto.Window) (int, error) {
	desktop, err := ewmh.WmDesktopGet(c.XUtil, win)
	if err != nil {
		return 0, fmt.Errorf("failed to get window desktop: %w", err)
	}
	// 0xFFFFFFFF means the window is on all desktops (sticky)
	if desktop == 0xFFFFFFFF {
		return -1, nil
	}
	return int(desktop), nil
}

// Manage selects client events on win and puts it in the save set so it
// survives a crash of the manager.
func (c *Connection) Manage(win xproto.Window) {
	xproto.ChangeWindowAttributes(c.XUtil.Conn(), win,
		xproto.CwEventMask, []uint32{clientEventMask})
	xproto.ChangeSaveSet(c.XUtil.Conn(), xproto.SetModeInsert, win)
}

// Unmanage detaches every callback registered for win.
func (c *Connection) Unmanage(win xproto.Window) {
	xevent.Detach(c.XUtil, win)
}

// MoveResizeWindow moves and resizes a window to the specified geometry
func (c *Connection) MoveResizeWindow(win xproto.Window, r geom.Rect) {
	xwindow.New(c.XUtil, win).MoveResize(r.X, r.Y, r.Width, r.Height)
}

// SendConfigure tells a client its geometry with a synthetic
// ConfigureNotify, as ICCCM requires after a move without a resize.
func (c *Connection) SendConfigure(win xproto.Window, r geom.Rect, border int) {
	ev := xevent.NewConfigureNotify(win, win, 0,
		r.X, r.Y, r.Width, r.Height, uint16(border), false)
	xproto.SendEvent(c.XUtil.Conn(), false, win,
		xproto.EventMaskStructureNotify, string(ev.Bytes()))
}

// MapRaised maps a window on top of the stack.
func (c *Connection) MapRaised(win xproto.Window) {
	w := xwindow.New(c.XUtil, win)
	w.Stack(xproto.StackModeAbove)
	w.Map()
}

// Unmap unmaps a window.
func (c *Connection) Unmap(win xproto.Window) {
	xwindow.New(c.XUtil, win).Unmap()
}

// Raise puts a window on top of its siblings.
func (c *Connection) Raise(win xproto.Window) {
	xwindow.New(c.XUtil, win).Stack(xproto.StackModeAbove)
}

// Lower puts a window below its siblings.
func (c *Connection) Lower(win xproto.Window) {
	xwindow.New(c.XUtil, win).Stack(xproto.StackModeBelow)
}

// Restack orders windows top to bottom, leaving the first where it is.
func (c *Connection) Restack(top []xproto.Window) {
	for i := 1; i < len(top); i++ {
		xwindow.New(c.XUtil, top[i]).StackSibling(top[i-1], xproto.StackModeBelow)
	}
}

// SetBorder sets the border width and pixel of a window.
func (c *Connection) SetBorder(win xproto.Window, width int, pixel uint32) {
	xproto.ConfigureWindow(c.XUtil.Conn(), win,
		xproto.ConfigWindowBorderWidth, []uint32{uint32(width)})
	xproto.ChangeWindowAttributes(c.XUtil.Conn(), win,
		xproto.CwBorderPixel, []uint32{pixel})
}

// SetWMState writes WM_STATE.
func (c *Connection) SetWMState(win xproto.Window, state uint) {
	if err := icccm.WmStateSet(c.XUtil, win, &icccm.WmState{State: state}); err != nil {
		c.logger.Debug("failed to set WM_STATE", "window", win, "error", err)
	}
}

// Focus gives a window the input focus. Clients that take part in
// WM_TAKE_FOCUS are also sent the protocol message.
func (c *Connection) Focus(win xproto.Window, takeFocus bool) {
	xproto.SetInputFocus(c.XUtil.Conn(), xproto.InputFocusPointerRoot, win, xproto.TimeCurrentTime)
	if takeFocus {
		if err := c.sendProtocol(win, "WM_TAKE_FOCUS"); err != nil {
			c.logger.Debug("failed to send WM_TAKE_FOCUS", "window", win, "error", err)
		}
	}
}

// Delete closes a window via WM_DELETE_WINDOW when it supports it and
// kills its connection otherwise.
func (c *Connection) Delete(win xproto.Window, supported bool) {
	if supported {
		if err := c.sendProtocol(win, "WM_DELETE_WINDOW"); err == nil {
			return
		}
	}
	xproto.KillClient(c.XUtil.Conn(), uint32(win))
}

func (c *Connection) sendProtocol(win xproto.Window, protocol string) error {
	protocolsAtom, err := c.atom("WM_PROTOCOLS")
	if err != nil {
		return err
	}
	protoAtom, err := c.atom(protocol)
	if err != nil {
		return err
	}

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   protocolsAtom,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(protoAtom), uint32(c.XUtil.TimeGet()), 0, 0, 0,
		}),
	}
	return xproto.SendEventChecked(c.XUtil.Conn(), false, win,
		xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}

func (c *Connection) atom(name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(c.XUtil.Conn(), false, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("failed to intern %s: %w", name, err)
	}
	return reply.Atom, nil
}

// AtomName resolves an atom id for event dispatch.
func (c *Connection) AtomName(a xproto.Atom) string {
	reply, err := xproto.GetAtomName(c.XUtil.Conn(), a).Reply()
	if err != nil {
		return ""
	}
	return reply.Name
}

// PassConfigure forwards a configure request for a window the manager
// does not manage, unchanged.
func (c *Connection) PassConfigure(ev xproto.ConfigureRequestEvent) {
	xproto.ConfigureWindow(c.XUtil.Conn(), ev.Window, ev.ValueMask, configureValues(ev))
}

// configureValues builds the value list for a ConfigureWindow request in
// mask bit order.
func configureValues(ev xproto.ConfigureRequestEvent) []uint32 {
	var vals []uint32
	if ev.ValueMask&xproto.ConfigWindowX != 0 {
		vals = append(vals, uint32(int32(ev.X)))
	}
	if ev.ValueMask&xproto.ConfigWindowY != 0 {
		vals = append(vals, uint32(int32(ev.Y)))
	}
	if ev.ValueMask&xproto.ConfigWindowWidth != 0 {
		vals = append(vals, uint32(ev.Width))
	}
	if ev.ValueMask&xproto.ConfigWindowHeight != 0 {
		vals = append(vals, uint32(ev.Height))
	}
	if ev.ValueMask&xproto.ConfigWindowBorderWidth != 0 {
		vals = append(vals, uint32(ev.BorderWidth))
	}
	if ev.ValueMask&xproto.ConfigWindowSibling != 0 {
		vals = append(vals, uint32(ev.Sibling))
	}
	if ev.ValueMask&xproto.ConfigWindowStackMode != 0 {
		vals = append(vals, uint32(ev.StackMode))
	}
	return vals
}
