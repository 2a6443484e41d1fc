package wm

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/1broseidon/quietwm/internal/client"
	"github.com/1broseidon/quietwm/internal/geom"
	"github.com/1broseidon/quietwm/internal/menu"
	"github.com/1broseidon/quietwm/internal/pointer"
	"github.com/1broseidon/quietwm/internal/search"
)

type moveCall struct {
	w client.Window
	r geom.Rect
}

type warp struct{ x, y int }

// fakeDisplay records what the manager asks of the windowing system.
type fakeDisplay struct {
	screen   geom.Rect
	heads    []geom.Rect
	existing []client.Window
	stacking []client.Window
	windows  map[client.Window]WindowInfo
	names    map[client.Window]string
	hints    map[client.Window]client.SizeHints

	ptrX, ptrY int
	grabOK     bool
	events     []pointer.Event
	menuFn     func(m *menu.Menu) (menu.Outcome, *search.Entry)
	menus      []*menu.Menu

	desktopNames []string

	moves          []moveCall
	mapped         map[client.Window]bool
	unmaps         map[client.Window]int
	managed        map[client.Window]bool
	states         map[client.Window]WindowState
	borders        map[client.Window]ColorRole
	borderWidths   map[client.Window]int
	desktops       map[client.Window]int
	focused        client.Window
	active         client.Window
	clientList     []client.Window
	warps          []warp
	readouts       []string
	readoutHidden  int
	grabs          int
	ungrabs        int
	keyboardUngrab int
	restacks       [][]client.Window
	deleted        []client.Window
	currentDesktop int
	publishedNames []string
	wakes          int
	stopped        bool
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{
		screen:       geom.Rect{Width: 1920, Height: 1080},
		windows:      make(map[client.Window]WindowInfo),
		names:        make(map[client.Window]string),
		hints:        make(map[client.Window]client.SizeHints),
		grabOK:       true,
		mapped:       make(map[client.Window]bool),
		unmaps:       make(map[client.Window]int),
		managed:      make(map[client.Window]bool),
		states:       make(map[client.Window]WindowState),
		borders:      make(map[client.Window]ColorRole),
		borderWidths: make(map[client.Window]int),
		desktops:     make(map[client.Window]int),
	}
}

func (d *fakeDisplay) addWindow(w client.Window, info WindowInfo) {
	d.windows[w] = info
	d.stacking = append(d.stacking, w)
}

func (d *fakeDisplay) movesOf(w client.Window) []geom.Rect {
	var out []geom.Rect
	for _, mv := range d.moves {
		if mv.w == w {
			out = append(out, mv.r)
		}
	}
	return out
}

func (d *fakeDisplay) lastWarp() warp {
	if len(d.warps) == 0 {
		return warp{-1, -1}
	}
	return d.warps[len(d.warps)-1]
}

func (d *fakeDisplay) ScreenCount() int                    { return 1 }
func (d *fakeDisplay) ScreenGeometry(int) geom.Rect        { return d.screen }
func (d *fakeDisplay) Heads(int) []geom.Rect               { return d.heads }
func (d *fakeDisplay) ExistingWindows(int) []client.Window { return d.existing }

func (d *fakeDisplay) StackingOrder(int) []client.Window {
	return append([]client.Window(nil), d.stacking...)
}

func (d *fakeDisplay) ReadWindow(w client.Window) (WindowInfo, error) {
	info, ok := d.windows[w]
	if !ok {
		return WindowInfo{}, errors.New("bad window")
	}
	return info, nil
}

func (d *fakeDisplay) ReadName(w client.Window) string                { return d.names[w] }
func (d *fakeDisplay) ReadSizeHints(w client.Window) client.SizeHints { return d.hints[w] }

func (d *fakeDisplay) Manage(w client.Window)   { d.managed[w] = true }
func (d *fakeDisplay) Unmanage(w client.Window) { delete(d.managed, w) }

func (d *fakeDisplay) MoveResize(w client.Window, r geom.Rect) {
	d.moves = append(d.moves, moveCall{w, r})
}

func (d *fakeDisplay) SendConfigure(client.Window, geom.Rect, int) {}

func (d *fakeDisplay) MapRaised(w client.Window) {
	d.mapped[w] = true
	d.Raise(w)
}

func (d *fakeDisplay) Unmap(w client.Window) {
	d.mapped[w] = false
	d.unmaps[w]++
}

func (d *fakeDisplay) Raise(w client.Window) {
	d.stacking = append(without(d.stacking, w), w)
}

func (d *fakeDisplay) Lower(w client.Window) {
	d.stacking = append([]client.Window{w}, without(d.stacking, w)...)
}

func without(ws []client.Window, w client.Window) []client.Window {
	out := make([]client.Window, 0, len(ws))
	for _, x := range ws {
		if x != w {
			out = append(out, x)
		}
	}
	return out
}

func (d *fakeDisplay) Restack(top []client.Window) {
	d.restacks = append(d.restacks, append([]client.Window(nil), top...))
}

func (d *fakeDisplay) SetBorder(w client.Window, width int, role ColorRole) {
	d.borders[w] = role
	d.borderWidths[w] = width
}

func (d *fakeDisplay) SetState(w client.Window, s WindowState) { d.states[w] = s }
func (d *fakeDisplay) Focus(w client.Window, _ bool)           { d.focused = w }

func (d *fakeDisplay) Delete(w client.Window, _ bool) {
	d.deleted = append(d.deleted, w)
}

func (d *fakeDisplay) SetActiveWindow(_ int, w client.Window) { d.active = w }

func (d *fakeDisplay) SetClientList(_ int, ws []client.Window) {
	d.clientList = append([]client.Window(nil), ws...)
}

func (d *fakeDisplay) SetWindowDesktop(w client.Window, desktop int) { d.desktops[w] = desktop }
func (d *fakeDisplay) SetCurrentDesktop(_, desktop int)              { d.currentDesktop = desktop }
func (d *fakeDisplay) SetNumberOfDesktops(int, int)                  {}
func (d *fakeDisplay) DesktopNames(int) []string                     { return d.desktopNames }

func (d *fakeDisplay) SetDesktopNames(_ int, names []string) {
	d.publishedNames = append([]string(nil), names...)
}

func (d *fakeDisplay) QueryPointer(int) (int, int) { return d.ptrX, d.ptrY }

func (d *fakeDisplay) WarpPointer(_, x, y int) {
	d.ptrX, d.ptrY = x, y
	d.warps = append(d.warps, warp{x, y})
}

func (d *fakeDisplay) GrabPointer(client.Window, Cursor) (pointer.Source, bool) {
	if !d.grabOK {
		return nil, false
	}
	d.grabs++
	return &scriptSource{events: d.events}, true
}

func (d *fakeDisplay) UngrabPointer()  { d.ungrabs++ }
func (d *fakeDisplay) UngrabKeyboard() { d.keyboardUngrab++ }

func (d *fakeDisplay) ShowReadout(_, _, _ int, text string) {
	d.readouts = append(d.readouts, text)
}

func (d *fakeDisplay) HideReadout(int) { d.readoutHidden++ }

func (d *fakeDisplay) RunMenu(_ int, m *menu.Menu) (menu.Outcome, *search.Entry) {
	d.menus = append(d.menus, m)
	if d.menuFn == nil {
		return menu.Done, nil
	}
	return d.menuFn(m)
}

func (d *fakeDisplay) Wake() { d.wakes++ }
func (d *fakeDisplay) Stop() { d.stopped = true }

// scriptSource replays events and then releases the button so a loop can
// never spin forever.
type scriptSource struct {
	events []pointer.Event
	read   int
}

func (s *scriptSource) NextEvent() pointer.Event {
	if s.read >= len(s.events) {
		return pointer.Event{Kind: pointer.EventButtonRelease}
	}
	ev := s.events[s.read]
	s.read++
	return ev
}

type fakeSpawner struct {
	spawned  []string
	replaced []string
	err      error
}

func (s *fakeSpawner) Spawn(cmd string) error {
	s.spawned = append(s.spawned, cmd)
	return s.err
}

func (s *fakeSpawner) Replace(cmd string) error {
	s.replaced = append(s.replaced, cmd)
	return s.err
}

// typeKeys feeds text into a menu one rune at a time and then presses
// return.
func typeKeys(m *menu.Menu, text string) (menu.Outcome, *search.Entry) {
	for _, r := range text {
		m.HandleKey(menu.Key{Text: string(r)})
	}
	return m.HandleKey(menu.Key{Ctl: menu.CtlReturn})
}

func newTestManager(t *testing.T, opts Options, setup func(d *fakeDisplay)) (*Manager, *fakeDisplay, *fakeSpawner) {
	t.Helper()
	d := newFakeDisplay()
	if setup != nil {
		setup(d)
	}
	sp := &fakeSpawner{}
	m := New(d, sp, opts, slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.Start()
	return m, d, sp
}

// manage adds a viewable window and makes the manager adopt it.
func manage(t *testing.T, m *Manager, d *fakeDisplay, w client.Window, name string, r geom.Rect) *client.Client {
	t.Helper()
	d.addWindow(w, WindowInfo{Geom: r, Viewable: true, Name: name, AppClass: "Test"})
	c := m.InitClient(w, 0, true)
	require.NotNil(t, c)
	return c
}
