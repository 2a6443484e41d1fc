//go:build linux

package platform

import (
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"

	"github.com/1broseidon/quietwm/internal/client"
	"github.com/1broseidon/quietwm/internal/font"
	"github.com/1broseidon/quietwm/internal/geom"
	"github.com/1broseidon/quietwm/internal/menu"
	"github.com/1broseidon/quietwm/internal/pointer"
	"github.com/1broseidon/quietwm/internal/search"
	"github.com/1broseidon/quietwm/internal/wm"
	"github.com/1broseidon/quietwm/internal/x11"
)

// wmName is published on the check window.
const wmName = "quietwm"

// LinuxBackend drives an X11 display on behalf of the window manager.
type LinuxBackend struct {
	conn    *x11.Connection
	logger  *slog.Logger
	colors  Colors
	face    *font.Face
	cursors x11.Cursors
	check   xproto.Window
	heads   []geom.Rect

	readout *x11.Overlay
	menu    *x11.Overlay
	pump    *x11.Pump

	unmapIgnore unmapLedger

	// OnManage and OnUnmanage let the binding layer grab buttons on
	// client windows.
	OnManage   func(w xproto.Window)
	OnUnmanage func(w xproto.Window)

	m *wm.Manager
}

var _ wm.Display = (*LinuxBackend)(nil)

// NewLinuxBackend takes over the root window of conn. It returns
// wm.ErrOtherWM when another window manager is running.
func NewLinuxBackend(conn *x11.Connection, colors Colors, logger *slog.Logger) (*LinuxBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := conn.BecomeWM(); err != nil {
		if x11.IsAccessError(err) {
			return nil, wm.ErrOtherWM
		}
		return nil, err
	}

	b := &LinuxBackend{
		conn:        conn,
		logger:      logger,
		colors:      colors,
		face:        font.Default(),
		unmapIgnore: make(unmapLedger),
	}

	check, err := conn.CreateCheckWindow(wmName)
	if err != nil {
		return nil, fmt.Errorf("failed to set up EWMH: %w", err)
	}
	b.check = check

	b.cursors = conn.CreateCursors()
	conn.SetRootCursor(b.cursors.Normal)

	if err := b.createOverlays(); err != nil {
		return nil, err
	}

	if err := conn.WatchScreenChanges(); err != nil {
		logger.Warn("screen change notifications unavailable", "error", err)
	}
	b.heads = conn.Heads()

	return b, nil
}

func (b *LinuxBackend) createOverlays() error {
	palette := menuPalette(b.colors)
	readout, err := b.conn.NewOverlay(b.face, palette, 1)
	if err != nil {
		return err
	}
	mn, err := b.conn.NewOverlay(b.face, palette, 1)
	if err != nil {
		return err
	}
	b.readout, b.menu = readout, mn
	return nil
}

// SetColors swaps the border palette and recolors the menu and readout.
func (b *LinuxBackend) SetColors(colors Colors) {
	b.colors = colors
	palette := menuPalette(colors)
	for _, o := range []*x11.Overlay{b.readout, b.menu} {
		if o != nil {
			o.SetPalette(palette)
		}
	}
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	return b.conn.XUtil
}

// Connection returns the underlying X connection.
func (b *LinuxBackend) Connection() *x11.Connection {
	return b.conn
}

// EventLoop runs the X event loop until Stop.
func (b *LinuxBackend) EventLoop() {
	b.conn.EventLoop()
}

// Attach routes X events to m. Call it once, before Manager.Start, so
// that windows adopted at startup get their callbacks.
func (b *LinuxBackend) Attach(m *wm.Manager) {
	b.m = m
	xu := b.conn.XUtil
	root := b.conn.Root

	xevent.MapRequestFun(func(_ *xgbutil.XUtil, e xevent.MapRequestEvent) {
		m.HandleMapRequest(client.Window(e.Window), 0)
	}).Connect(xu, root)

	xevent.ConfigureRequestFun(func(_ *xgbutil.XUtil, e xevent.ConfigureRequestEvent) {
		if !m.HandleConfigureRequest(configureRequest(*e.ConfigureRequestEvent)) {
			b.conn.PassConfigure(*e.ConfigureRequestEvent)
		}
	}).Connect(xu, root)

	xevent.ClientMessageFun(func(_ *xgbutil.XUtil, e xevent.ClientMessageEvent) {
		if b.conn.IsWake(e) {
			m.RunPosted()
		}
	}).Connect(xu, b.check)

	xevent.HookFun(func(_ *xgbutil.XUtil, ev interface{}) bool {
		if _, ok := ev.(randr.ScreenChangeNotifyEvent); ok {
			b.heads = b.conn.Heads()
			m.HandleScreenChange(0)
			return false
		}
		return true
	}).Connect(xu)
}

func (b *LinuxBackend) ScreenCount() int { return 1 }

func (b *LinuxBackend) ScreenGeometry(int) geom.Rect { return b.conn.Screen() }

func (b *LinuxBackend) Heads(int) []geom.Rect { return b.heads }

func (b *LinuxBackend) ExistingWindows(int) []client.Window {
	wins, err := b.conn.TopLevelWindows()
	if err != nil {
		b.logger.Warn("failed to list existing windows", "error", err)
		return nil
	}
	var out []client.Window
	for _, w := range wins {
		if w == b.check {
			continue
		}
		attrs, err := b.conn.GetAttributes(w)
		if err != nil || attrs.OverrideRedirect {
			continue
		}
		state, _ := b.conn.GetWMState(w)
		if attrs.Viewable || state == icccm.StateIconic {
			out = append(out, client.Window(w))
		}
	}
	return out
}

func (b *LinuxBackend) StackingOrder(int) []client.Window {
	wins, err := b.conn.TopLevelWindows()
	if err != nil {
		return nil
	}
	out := make([]client.Window, 0, len(wins))
	for _, w := range wins {
		out = append(out, client.Window(w))
	}
	return out
}

func (b *LinuxBackend) ReadWindow(w client.Window) (wm.WindowInfo, error) {
	win := xproto.Window(w)
	attrs, err := b.conn.GetAttributes(win)
	if err != nil {
		return wm.WindowInfo{}, err
	}
	info := wm.WindowInfo{
		Geom:     attrs.Geom,
		Viewable: attrs.Viewable,
		Hints:    b.conn.GetSizeHints(win),
		Iconic:   b.conn.StartsIconic(win),
		NoBorder: b.conn.NoDecorations(win),
		Name:     b.conn.GetName(win),
	}
	info.AppName, info.AppClass = b.conn.GetClass(win)
	info.SupportsDelete, info.SupportsTakeFocus = b.conn.GetProtocols(win)
	if d, err := b.conn.GetWindowDesktop(win); err == nil {
		info.Desktop, info.HasDesktop = d, true
	}
	return info, nil
}

func (b *LinuxBackend) ReadName(w client.Window) string {
	return b.conn.GetName(xproto.Window(w))
}

func (b *LinuxBackend) ReadSizeHints(w client.Window) client.SizeHints {
	return b.conn.GetSizeHints(xproto.Window(w))
}

// Manage selects client events and connects the per-window callbacks.
func (b *LinuxBackend) Manage(w client.Window) {
	win := xproto.Window(w)
	xu := b.conn.XUtil
	b.conn.Manage(win)

	if b.m != nil {
		m := b.m
		xevent.EnterNotifyFun(func(_ *xgbutil.XUtil, e xevent.EnterNotifyEvent) {
			m.HandleEnterNotify(w)
		}).Connect(xu, win)

		xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, e xevent.PropertyNotifyEvent) {
			name, err := xprop.AtomName(xu, e.Atom)
			if err != nil {
				return
			}
			switch name {
			case "WM_NAME", "_NET_WM_NAME":
				m.HandlePropertyNotify(w, wm.PropertyName)
			case "WM_NORMAL_HINTS":
				m.HandlePropertyNotify(w, wm.PropertyNormalHints)
			}
		}).Connect(xu, win)

		xevent.UnmapNotifyFun(func(xu *xgbutil.XUtil, e xevent.UnmapNotifyEvent) {
			if b.unmapIgnore.swallow(win) {
				return
			}
			// xgb drops the send_event bit, so an unmap the manager did not
			// issue is treated as the client withdrawing.
			m.HandleUnmapNotify(w, true, b.destroyPending(win))
		}).Connect(xu, win)

		xevent.DestroyNotifyFun(func(_ *xgbutil.XUtil, e xevent.DestroyNotifyEvent) {
			m.HandleDestroyNotify(w)
		}).Connect(xu, win)

		xevent.ClientMessageFun(func(xu *xgbutil.XUtil, e xevent.ClientMessageEvent) {
			name, err := xprop.AtomName(xu, e.Type)
			if err != nil {
				return
			}
			switch name {
			case "WM_CHANGE_STATE":
				if e.Data.Data32[0] == icccm.StateIconic {
					m.HandleIconifyRequest(w)
				}
			case "_NET_ACTIVE_WINDOW":
				m.HandleActivateRequest(w)
			}
		}).Connect(xu, win)

		xevent.ButtonReleaseFun(func(_ *xgbutil.XUtil, e xevent.ButtonReleaseEvent) {
			m.HandleButtonRelease()
		}).Connect(xu, win)
	}

	if b.OnManage != nil {
		b.OnManage(win)
	}
}

// destroyPending reports whether a DestroyNotify for win is already queued.
func (b *LinuxBackend) destroyPending(win xproto.Window) bool {
	xevent.Read(b.conn.XUtil, false)
	for _, e := range xevent.Peek(b.conn.XUtil) {
		if d, ok := e.Event.(xproto.DestroyNotifyEvent); ok && d.Window == win {
			return true
		}
	}
	return false
}

func (b *LinuxBackend) Unmanage(w client.Window) {
	win := xproto.Window(w)
	b.unmapIgnore.forget(win)
	if b.OnUnmanage != nil {
		b.OnUnmanage(win)
	}
	b.conn.Unmanage(win)
}

func (b *LinuxBackend) MoveResize(w client.Window, r geom.Rect) {
	b.conn.MoveResizeWindow(xproto.Window(w), r)
}

func (b *LinuxBackend) SendConfigure(w client.Window, r geom.Rect, border int) {
	b.conn.SendConfigure(xproto.Window(w), r, border)
}

func (b *LinuxBackend) MapRaised(w client.Window) { b.conn.MapRaised(xproto.Window(w)) }

func (b *LinuxBackend) Unmap(w client.Window) {
	win := xproto.Window(w)
	b.unmapIgnore.expect(win, b.conn.Viewable(win))
	b.conn.Unmap(win)
}

func (b *LinuxBackend) Raise(w client.Window) { b.conn.Raise(xproto.Window(w)) }
func (b *LinuxBackend) Lower(w client.Window) { b.conn.Lower(xproto.Window(w)) }

func (b *LinuxBackend) Restack(top []client.Window) {
	wins := make([]xproto.Window, 0, len(top))
	for _, w := range top {
		wins = append(wins, xproto.Window(w))
	}
	b.conn.Restack(wins)
}

func (b *LinuxBackend) SetBorder(w client.Window, width int, role wm.ColorRole) {
	b.conn.SetBorder(xproto.Window(w), width, b.colors.Borders[role])
}

func (b *LinuxBackend) SetState(w client.Window, state wm.WindowState) {
	b.conn.SetWMState(xproto.Window(w), uint(state))
}

func (b *LinuxBackend) Focus(w client.Window, takeFocus bool) {
	b.conn.Focus(xproto.Window(w), takeFocus)
}

func (b *LinuxBackend) Delete(w client.Window, supported bool) {
	b.conn.Delete(xproto.Window(w), supported)
}

func (b *LinuxBackend) SetActiveWindow(_ int, w client.Window) {
	b.conn.SetActiveWindow(xproto.Window(w))
}

func (b *LinuxBackend) SetClientList(_ int, windows []client.Window) {
	wins := make([]xproto.Window, 0, len(windows))
	for _, w := range windows {
		wins = append(wins, xproto.Window(w))
	}
	b.conn.SetClientList(wins)
}

func (b *LinuxBackend) SetWindowDesktop(w client.Window, desktop int) {
	b.conn.SetWindowDesktop(xproto.Window(w), desktop)
}

func (b *LinuxBackend) SetCurrentDesktop(_, desktop int) { b.conn.SetCurrentDesktop(desktop) }
func (b *LinuxBackend) SetNumberOfDesktops(_, n int)     { b.conn.SetNumberOfDesktops(n) }
func (b *LinuxBackend) DesktopNames(int) []string        { return b.conn.DesktopNames() }

func (b *LinuxBackend) SetDesktopNames(_ int, names []string) {
	b.conn.SetDesktopNames(names)
}

func (b *LinuxBackend) QueryPointer(int) (int, int) { return b.conn.QueryPointer() }
func (b *LinuxBackend) WarpPointer(_, x, y int)     { b.conn.WarpPointer(x, y) }

func (b *LinuxBackend) cursor(c wm.Cursor) xproto.Cursor {
	switch c {
	case wm.CursorMove:
		return b.cursors.Move
	case wm.CursorResize:
		return b.cursors.Resize
	case wm.CursorQuestion:
		return b.cursors.Question
	default:
		return b.cursors.Normal
	}
}

// GrabPointer grabs the pointer and returns a source that reads the
// nested event loop until UngrabPointer.
func (b *LinuxBackend) GrabPointer(_ client.Window, c wm.Cursor) (pointer.Source, bool) {
	if !b.conn.GrabPointer(b.cursor(c)) {
		return nil, false
	}
	b.pump = b.conn.NewPump()
	return &grabSource{pump: b.pump}, true
}

func (b *LinuxBackend) UngrabPointer() {
	b.conn.UngrabPointer()
	if b.pump != nil {
		b.pump.Close()
		b.pump = nil
	}
}

func (b *LinuxBackend) UngrabKeyboard() { b.conn.UngrabKeyboard() }

// GrabKeyboard grabs the keyboard for the length of a client cycle.
func (b *LinuxBackend) GrabKeyboard() {
	if err := b.conn.GrabKeyboard(); err != nil {
		b.logger.Debug("keyboard grab denied", "error", err)
	}
}

type grabSource struct {
	pump *x11.Pump
}

func (s *grabSource) NextEvent() pointer.Event {
	for {
		if ev, ok := pointerEvent(s.pump.Next()); ok {
			return ev
		}
	}
}

func (b *LinuxBackend) ShowReadout(_, x, y int, text string) {
	b.readout.Show(x, y, []string{text}, -1)
}

func (b *LinuxBackend) HideReadout(int) { b.readout.Hide() }

// RunMenu shows mn at the pointer and runs a nested loop until it
// finishes. The pointer is put back if the menu had to move it and the
// user did not.
func (b *LinuxBackend) RunMenu(_ int, mn *menu.Menu) (menu.Outcome, *search.Entry) {
	px, py := b.conn.QueryPointer()
	area := headAt(b.heads, b.conn.Screen(), px, py)

	if mn.HasPrompt() {
		if err := b.conn.GrabKeyboard(); err != nil {
			b.logger.Debug("menu keyboard grab denied", "error", err)
			return menu.Done, nil
		}
		defer b.conn.UngrabKeyboard()
	}
	if !b.conn.GrabPointer(b.cursors.Question) {
		b.logger.Debug("menu pointer grab denied")
		return menu.Done, nil
	}
	defer b.conn.UngrabPointer()

	pump := b.conn.NewPump()
	defer pump.Close()

	warpX, warpY := -1, -1
	draw := func() {
		lines := mn.Lines()
		w, h := b.menu.Size(lines)
		x, y := placeMenu(px, py, w, h, area)
		if warpX < 0 && (x != px || y != py) {
			warpX, warpY = x, y
			b.conn.WarpPointer(x, y)
		}
		b.menu.Show(x, y, lines, mn.Highlighted())
	}
	defer b.menu.Hide()
	defer func() {
		if warpX < 0 {
			return
		}
		if cx, cy := b.conn.QueryPointer(); cx == warpX && cy == warpY {
			b.conn.WarpPointer(px, py)
		}
	}()

	draw()
	for {
		switch e := pump.Next().(type) {
		case xproto.KeyPressEvent:
			keysym, text := b.conn.KeyName(e.State, e.Detail)
			k := menu.Classify(keysym, text, e.State&controlMask != 0, e.State&metaMask != 0)
			out, picked := mn.HandleKey(k)
			if out != menu.Continue {
				return out, picked
			}
			draw()
		case xproto.MotionNotifyEvent:
			g := b.menu.Geometry()
			mn.Hover(int(e.RootX)-g.Min.X, int(e.RootY)-g.Min.Y, g.Dx(), b.menu.RowHeight())
			draw()
		case xproto.ButtonReleaseEvent:
			g := b.menu.Geometry()
			picked := mn.Release(int(e.RootX)-g.Min.X, int(e.RootY)-g.Min.Y, g.Dx(), b.menu.RowHeight())
			return menu.Done, picked
		case xproto.ExposeEvent:
			b.menu.Redraw()
		}
	}
}

// Wake interrupts the event loop from any goroutine.
func (b *LinuxBackend) Wake() { b.conn.SendWake(b.check) }

// WindowExists reports whether w is still a live window on the server.
func (b *LinuxBackend) WindowExists(w uint32) bool {
	_, err := b.conn.GetAttributes(xproto.Window(w))
	return err == nil
}

// Stop ends the event loop.
func (b *LinuxBackend) Stop() { b.conn.Quit() }

// Disconnect closes the underlying X11 connection.
func (b *LinuxBackend) Disconnect() {
	b.readout.Destroy()
	b.menu.Destroy()
	b.conn.Close()
}
