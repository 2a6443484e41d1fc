package wm

import (
	"strings"

	"github.com/1broseidon/quietwm/internal/client"
)

// InitClient starts managing w on the given screen. mapped is false for a
// window that is being adopted without a map request. A window that is
// already managed is returned as is.
func (m *Manager) InitClient(w client.Window, screen int, mapped bool) *client.Client {
	if c := m.registry.Find(w); c != nil {
		return c
	}
	sc := m.Screen(screen)
	if sc == nil {
		return nil
	}

	info, err := m.display.ReadWindow(w)
	if err != nil {
		m.logger.Debug("window vanished before it could be managed", "window", w, "error", err)
		return nil
	}

	c := client.New(w, screen)
	c.Geom = info.Geom
	c.Hints = info.Hints.Normalize()
	c.BorderWidth = m.opts.BorderWidth
	c.SetName(info.Name)
	c.AppName = info.AppName
	c.AppClass = info.AppClass
	c.SupportsDelete = info.SupportsDelete
	c.SupportsTakeFocus = info.SupportsTakeFocus

	if m.ignored(c.Name) {
		c.BorderWidth = 0
		c.Flags |= client.FlagFrozen
	}
	if info.NoBorder {
		c.BorderWidth = 0
	}

	iconic := false
	if !info.Viewable {
		m.PlaceCalc(c)
		iconic = info.Iconic
		m.display.MoveResize(w, c.Geom)
	}

	m.registry.Insert(c)
	m.display.Manage(w)
	m.drawBorder(c)
	m.sendConfigure(c)

	if iconic {
		m.Hide(c)
	} else {
		m.Unhide(c)
	}

	if mapped {
		m.Autogroup(c, info)
	}

	m.publishClientList(sc)
	m.UpdateStackingOrder(sc)

	m.logger.Debug("client managed",
		"window", w,
		"name", c.Name,
		"class", c.AppClass,
		"geom", c.Geom)
	return c
}

// FindClient returns the client managing w, or nil.
func (m *Manager) FindClient(w client.Window) *client.Client {
	return m.registry.Find(w)
}

// CurrentClient returns the focused client, or nil. A hidden client is
// never current.
func (m *Manager) CurrentClient() *client.Client {
	return m.current
}

// DeleteClient stops managing c.
func (m *Manager) DeleteClient(c *client.Client) {
	m.display.SetState(c.Window, WithdrawnState)
	m.display.Unmanage(c.Window)

	if m.current == c {
		m.current = nil
	}
	m.registry.Remove(c.ID)

	if sc := m.Screen(c.Screen); sc != nil {
		m.publishClientList(sc)
	}
	m.logger.Debug("client released", "window", c.Window, "name", c.Name)
}

// SetActive gives c the input focus when fg is set, otherwise only marks
// it inactive. While a cycle is in progress the MRU order is left alone.
func (m *Manager) SetActive(c *client.Client, fg bool) {
	if c == nil {
		c = m.current
	}
	if c == nil {
		return
	}

	if fg {
		if c.Hidden() {
			return
		}
		m.display.Focus(c.Window, c.SupportsTakeFocus)
		if sc := m.Screen(c.Screen); sc != nil && !sc.altPersist {
			m.registry.MoveToFront(c.ID)
		}
		if m.current != c {
			if old := m.current; old != nil {
				old.Active = false
				m.drawBorder(old)
			}
			m.current = c
		}
		m.display.SetActiveWindow(c.Screen, c.Window)
	}

	c.Active = fg
	m.drawBorder(c)
}

// Hide iconifies c.
func (m *Manager) Hide(c *client.Client) {
	if c.Hidden() {
		return
	}
	m.display.Unmap(c.Window)

	c.Active = false
	c.Flags |= client.FlagHidden
	m.display.SetState(c.Window, IconicState)

	if m.current == c {
		m.current = nil
	}
}

// Unhide maps c again.
func (m *Manager) Unhide(c *client.Client) {
	m.display.MapRaised(c.Window)

	c.Highlight = client.HighlightNone
	c.Flags &^= client.FlagHidden
	m.display.SetState(c.Window, NormalState)
	m.drawBorder(c)
}

// Raise puts c on top of its siblings.
func (m *Manager) Raise(c *client.Client) {
	m.display.Raise(c.Window)
	if sc := m.Screen(c.Screen); sc != nil {
		m.UpdateStackingOrder(sc)
	}
}

// Lower puts c below its siblings.
func (m *Manager) Lower(c *client.Client) {
	m.display.Lower(c.Window)
	if sc := m.Screen(c.Screen); sc != nil {
		m.UpdateStackingOrder(sc)
	}
}

// PtrSave remembers where the pointer sits inside c, if it is inside.
func (m *Manager) PtrSave(c *client.Client) {
	x, y := m.display.QueryPointer(c.Screen)
	c.SavePointer(x-c.Geom.X-c.BorderWidth, y-c.Geom.Y-c.BorderWidth)
}

// PtrWarp brings c forward and moves the pointer to its saved position,
// or its centre when none was saved.
func (m *Manager) PtrWarp(c *client.Client) {
	x, y := c.WarpTarget()

	if c.Hidden() {
		m.Unhide(c)
	} else {
		m.Raise(c)
	}

	m.display.WarpPointer(c.Screen,
		c.Geom.X+c.BorderWidth+x,
		c.Geom.Y+c.BorderWidth+y)
}

// Maximize toggles c between its saved geometry and the full work area
// of the region under its centre.
func (m *Manager) Maximize(c *client.Client) {
	if c.Frozen() {
		return
	}
	sc := m.Screen(c.Screen)
	if sc == nil {
		return
	}

	if c.Flags.Has(client.FlagMaximized) {
		c.Geom = c.SavedGeom
		c.Flags &^= client.FlagMaximized | client.FlagVMaximized
	} else {
		if !c.Flags.Has(client.FlagVMaximized) {
			c.SavedGeom = c.Geom
		}
		cx, cy := c.Geom.Center()
		area := m.FindRegionArea(sc, cx, cy, true)

		c.Geom.X = area.X
		c.Geom.Y = area.Y
		c.Geom.Width = area.Width - 2*c.BorderWidth
		c.Geom.Height = area.Height - 2*c.BorderWidth
		c.Flags &^= client.FlagVMaximized
		c.Flags |= client.FlagMaximized
	}

	m.resizeClient(c)
}

// VertMaximize toggles c between its saved geometry and the full height
// of the region under its centre.
func (m *Manager) VertMaximize(c *client.Client) {
	if c.Frozen() {
		return
	}
	sc := m.Screen(c.Screen)
	if sc == nil {
		return
	}

	if c.Flags.Has(client.FlagVMaximized) {
		c.Geom = c.SavedGeom
		c.Flags &^= client.FlagMaximized | client.FlagVMaximized
	} else {
		if !c.Flags.Has(client.FlagMaximized) {
			c.SavedGeom = c.Geom
		}
		cx, cy := c.Geom.Center()
		area := m.FindRegionArea(sc, cx, cy, true)

		c.Geom.Y = area.Y
		c.Geom.Height = area.Height - 2*c.BorderWidth
		c.Flags &^= client.FlagMaximized
		c.Flags |= client.FlagVMaximized
	}

	m.resizeClient(c)
}

// PlaceCalc positions a new window. A position the client asked for is
// kept on screen; otherwise the window is centred on the pointer within
// the region under it, respecting the gaps.
func (m *Manager) PlaceCalc(c *client.Client) {
	sc := m.Screen(c.Screen)
	if sc == nil {
		return
	}
	bw2 := 2 * c.BorderWidth

	if c.Hints.UserPosition {
		xslack := sc.View.Right() - c.Geom.Width - bw2
		yslack := sc.View.Bottom() - c.Geom.Height - bw2
		if c.Hints.X > 0 {
			c.Geom.X = min(c.Hints.X, xslack)
		}
		if c.Hints.Y > 0 {
			c.Geom.Y = min(c.Hints.Y, yslack)
		}
		return
	}

	px, py := m.display.QueryPointer(sc.Index)
	area := m.FindRegionArea(sc, px, py, false)
	xorig, yorig := area.X, area.Y
	xmax, ymax := area.Right(), area.Bottom()
	g := m.opts.Gap

	xm := max(max(px, xorig)-c.Geom.Width/2, xorig)
	ym := max(max(py, yorig)-c.Geom.Height/2, yorig)

	xslack := xmax - c.Geom.Width - bw2
	yslack := ymax - c.Geom.Height - bw2

	if xslack >= xorig {
		c.Geom.X = max(min(xm, xslack), xorig+g.Left)
		if c.Geom.X > xslack-g.Right {
			c.Geom.X -= g.Right
		}
	} else {
		c.Geom.X = xorig + g.Left
		c.Geom.Width = xmax - xorig - g.Left - g.Right - bw2
	}
	if yslack >= yorig {
		c.Geom.Y = max(min(ym, yslack), yorig+g.Top)
		if c.Geom.Y > yslack-g.Bottom {
			c.Geom.Y -= g.Bottom
		}
	} else {
		c.Geom.Y = yorig + g.Top
		c.Geom.Height = ymax - yorig - g.Top - g.Bottom - bw2
	}
}

// SetName re-reads the title of c into its history.
func (m *Manager) SetName(c *client.Client) {
	c.SetName(m.display.ReadName(c.Window))
}

// SendDelete asks c to close.
func (m *Manager) SendDelete(c *client.Client) {
	m.display.Delete(c.Window, c.SupportsDelete)
}

// SetLabel stores a user label on c.
func (m *Manager) SetLabel(c *client.Client, label string) {
	c.Label = label
}

func (m *Manager) resizeClient(c *client.Client) {
	m.display.MoveResize(c.Window, c.Geom)
	m.sendConfigure(c)
}

func (m *Manager) sendConfigure(c *client.Client) {
	m.display.SendConfigure(c.Window, c.Geom, c.BorderWidth)
}

func (m *Manager) drawBorder(c *client.Client) {
	m.display.SetBorder(c.Window, c.BorderWidth, m.borderRole(c))
}

func (m *Manager) publishClientList(sc *Screen) {
	var wins []client.Window
	for _, c := range m.registry.All() {
		if c.Screen == sc.Index {
			wins = append(wins, c.Window)
		}
	}
	m.display.SetClientList(sc.Index, wins)
}

func (m *Manager) ignored(name string) bool {
	for _, prefix := range m.opts.Ignore {
		if prefix != "" && strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}
