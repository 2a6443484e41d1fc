package wm

import (
	"sort"
	"strconv"

	"github.com/1broseidon/quietwm/internal/client"
)

// Trigger describes the input that fired a binding.
type Trigger struct {
	// Window is the window the event was reported on; the root for key
	// bindings and root mouse bindings.
	Window client.Window
	Screen int
	RootX  int
	RootY  int
}

type direction int

const (
	dirUp direction = iota
	dirDown
	dirLeft
	dirRight
)

type action struct {
	needsClient bool
	run         func(m *Manager, c *client.Client, t Trigger)
}

var actions = map[string]action{}

func init() {
	onClient := func(f func(m *Manager, c *client.Client)) action {
		return action{needsClient: true, run: func(m *Manager, c *client.Client, _ Trigger) { f(m, c) }}
	}
	global := func(f func(m *Manager, t Trigger)) action {
		return action{run: func(m *Manager, _ *client.Client, t Trigger) { f(m, t) }}
	}

	actions["lower"] = onClient((*Manager).Lower)
	actions["raise"] = onClient((*Manager).Raise)
	actions["hide"] = onClient((*Manager).Hide)
	actions["delete"] = onClient((*Manager).SendDelete)
	actions["label"] = onClient((*Manager).LabelMenu)
	actions["maximize"] = onClient((*Manager).Maximize)
	actions["vmaximize"] = onClient((*Manager).VertMaximize)

	actions["search"] = global(func(m *Manager, _ Trigger) { m.SearchMenu() })
	actions["menusearch"] = global(func(m *Manager, _ Trigger) { m.ApplicationMenu() })
	actions["cycle"] = global(func(m *Manager, _ Trigger) { m.Cycle(false) })
	actions["rcycle"] = global(func(m *Manager, _ Trigger) { m.Cycle(true) })

	for i := 1; i < NumGroups; i++ {
		idx := i
		actions["group"+strconv.Itoa(i)] = global(func(m *Manager, t Trigger) {
			if sc := m.triggerScreen(t); sc != nil {
				_ = m.HideToggle(sc, idx)
			}
		})
		actions["movetogroup"+strconv.Itoa(i)] = onClient(func(m *Manager, c *client.Client) {
			_ = m.MoveToGroup(c, idx)
		})
	}
	actions["nogroup"] = global(func(m *Manager, t Trigger) {
		if sc := m.triggerScreen(t); sc != nil {
			m.AllToggle(sc)
		}
	})
	actions["nextgroup"] = global(func(m *Manager, t Trigger) {
		if sc := m.triggerScreen(t); sc != nil {
			m.CycleGroup(sc, false)
		}
	})
	actions["prevgroup"] = global(func(m *Manager, t Trigger) {
		if sc := m.triggerScreen(t); sc != nil {
			m.CycleGroup(sc, true)
		}
	})

	actions["exec"] = global(func(m *Manager, _ Trigger) { m.ExecMenu(false) })
	actions["exec_wm"] = global(func(m *Manager, _ Trigger) { m.ExecMenu(true) })
	actions["ssh"] = global(func(m *Manager, _ Trigger) { m.SSHMenu() })
	actions["terminal"] = global(func(m *Manager, _ Trigger) { m.spawn(m.opts.Terminal) })
	actions["lock"] = global(func(m *Manager, _ Trigger) { m.spawn(m.opts.Lock) })
	actions["quit"] = global(func(m *Manager, _ Trigger) { m.Quit() })
	actions["restart"] = global(func(m *Manager, _ Trigger) { m.Restart() })

	dirs := map[string]direction{"up": dirUp, "down": dirDown, "left": dirLeft, "right": dirRight}
	for name, dir := range dirs {
		d := dir
		for _, big := range []bool{false, true} {
			b := big
			prefix := ""
			if b {
				prefix = "big"
			}
			actions[prefix+"move"+name] = onClient(func(m *Manager, c *client.Client) { m.keyMove(c, d, b) })
			actions[prefix+"resize"+name] = onClient(func(m *Manager, c *client.Client) { m.keyResize(c, d, b) })
			actions[prefix+"ptrmove"+name] = global(func(m *Manager, t Trigger) { m.ptrMove(t, d, b) })
		}
	}

	actions["window_move"] = onClient((*Manager).MoveInteractive)
	actions["window_resize"] = onClient((*Manager).ResizeInteractive)
	actions["window_grouptoggle"] = onClient((*Manager).StickyToggleEnter)
	actions["window_lower"] = onClient(func(m *Manager, c *client.Client) {
		m.PtrSave(c)
		m.Lower(c)
	})
	actions["window_raise"] = onClient((*Manager).Raise)
	actions["window_hide"] = onClient((*Manager).Hide)
	actions["window_cyclegroup"] = onClient(func(m *Manager, c *client.Client) {
		if sc := m.Screen(c.Screen); sc != nil {
			m.CycleGroup(sc, false)
		}
	})
	actions["window_rcyclegroup"] = onClient(func(m *Manager, c *client.Client) {
		if sc := m.Screen(c.Screen); sc != nil {
			m.CycleGroup(sc, true)
		}
	})
	actions["menu_unhide"] = global(func(m *Manager, t Trigger) {
		if sc := m.triggerScreen(t); sc != nil {
			m.UnhideMenu(sc)
		}
	})
	actions["menu_group"] = global(func(m *Manager, t Trigger) {
		if sc := m.triggerScreen(t); sc != nil {
			m.GroupMenu(sc)
		}
	})
	actions["menu_cmd"] = global(func(m *Manager, t Trigger) {
		if sc := m.triggerScreen(t); sc != nil {
			m.CommandMenu(sc)
		}
	})
}

// IsAction reports whether name is a bindable function rather than a
// shell command.
func IsAction(name string) bool {
	_, ok := actions[name]
	return ok
}

// ActionNames lists the bindable functions in sorted order.
func ActionNames() []string {
	names := make([]string, 0, len(actions))
	for n := range actions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the function bound as name. An unknown name is run as a
// shell command. Functions that act on a client use the client under the
// trigger, falling back to the current one, and do nothing without one.
func (m *Manager) Invoke(name string, t Trigger) {
	a, ok := actions[name]
	if !ok {
		m.spawn(name)
		return
	}

	var c *client.Client
	if a.needsClient {
		c = m.FindClient(t.Window)
		if c == nil {
			c = m.current
		}
		if c == nil {
			return
		}
	}
	m.logger.Debug("binding invoked", "action", name, "window", t.Window)
	a.run(m, c, t)
}

func (m *Manager) triggerScreen(t Trigger) *Screen {
	if sc := m.Screen(t.Screen); sc != nil {
		return sc
	}
	return m.CurrentScreen()
}

func (m *Manager) step(dir direction, big bool) (int, int) {
	amt := m.opts.MoveAmount
	if big {
		amt *= 10
	}
	switch dir {
	case dirUp:
		return 0, -amt
	case dirDown:
		return 0, amt
	case dirLeft:
		return -amt, 0
	default:
		return amt, 0
	}
}

// keyMove nudges c and keeps the pointer at the same spot inside it.
func (m *Manager) keyMove(c *client.Client, dir direction, big bool) {
	if c.Frozen() {
		return
	}
	dx, dy := m.step(dir, big)
	c.Geom.X += dx
	c.Geom.Y += dy
	m.resizeClient(c)

	px, py := m.display.QueryPointer(c.Screen)
	c.PtrX = px - c.Geom.X - c.BorderWidth + dx
	c.PtrY = py - c.Geom.Y - c.BorderWidth + dy
	m.PtrWarp(c)
}

// keyResize grows or shrinks c and parks the pointer in its centre.
func (m *Manager) keyResize(c *client.Client, dir direction, big bool) {
	if c.Frozen() {
		return
	}
	dx, dy := m.step(dir, big)
	c.Geom.Width = max(1, c.Geom.Width+dx)
	c.Geom.Height = max(1, c.Geom.Height+dy)
	m.resizeClient(c)

	c.PtrX, c.PtrY = -1, -1
	m.PtrWarp(c)
}

func (m *Manager) ptrMove(t Trigger, dir direction, big bool) {
	sc := m.triggerScreen(t)
	if sc == nil {
		return
	}
	dx, dy := m.step(dir, big)
	px, py := m.display.QueryPointer(sc.Index)
	m.display.WarpPointer(sc.Index, px+dx, py+dy)
}
