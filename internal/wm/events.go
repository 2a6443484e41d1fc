package wm

import "github.com/1broseidon/quietwm/internal/client"

// ConfigureFields marks which fields of a ConfigureRequest are set.
type ConfigureFields uint16

const (
	ConfigureX ConfigureFields = 1 << iota
	ConfigureY
	ConfigureWidth
	ConfigureHeight
	ConfigureBorder
)

// ConfigureRequest is a client's request to change its geometry.
type ConfigureRequest struct {
	Window      client.Window
	Fields      ConfigureFields
	X           int
	Y           int
	Width       int
	Height      int
	BorderWidth int
}

// Property identifies the client properties the manager tracks.
type Property int

const (
	PropertyName Property = iota
	PropertyNormalHints
)

// HandleMapRequest manages w if needed and moves the pointer onto it.
func (m *Manager) HandleMapRequest(w client.Window, screen int) {
	if old := m.current; old != nil {
		m.PtrSave(old)
	}
	c := m.FindClient(w)
	if c == nil {
		c = m.InitClient(w, screen, true)
	}
	if c == nil {
		return
	}
	m.PtrWarp(c)
}

// HandleUnmapNotify releases a client that is going away and hides one
// that merely unmapped. A synthetic unmap asks for withdrawal.
func (m *Manager) HandleUnmapNotify(w client.Window, synthetic, destroyPending bool) {
	c := m.FindClient(w)
	if c == nil {
		return
	}
	if destroyPending || synthetic {
		m.DeleteClient(c)
		return
	}
	m.Hide(c)
}

// HandleDestroyNotify releases a destroyed client.
func (m *Manager) HandleDestroyNotify(w client.Window) {
	if c := m.FindClient(w); c != nil {
		m.DeleteClient(c)
	}
}

// HandleConfigureRequest applies a managed client's request and reports
// true. For an unmanaged window it reports false and the caller passes the
// request through unchanged.
func (m *Manager) HandleConfigureRequest(req ConfigureRequest) bool {
	c := m.FindClient(req.Window)
	if c == nil {
		return false
	}
	sc := m.Screen(c.Screen)

	if req.Fields&ConfigureWidth != 0 {
		c.Geom.Width = req.Width
	}
	if req.Fields&ConfigureHeight != 0 {
		c.Geom.Height = req.Height
	}
	if req.Fields&ConfigureX != 0 {
		c.Geom.X = req.X
	}
	if req.Fields&ConfigureY != 0 {
		c.Geom.Y = req.Y
	}

	// A full-screen request at the origin would leave the border visible.
	if sc != nil {
		if c.Geom.X == 0 && c.Geom.Width >= sc.View.Width {
			c.Geom.X -= c.BorderWidth
		}
		if c.Geom.Y == 0 && c.Geom.Height >= sc.View.Height {
			c.Geom.Y -= c.BorderWidth
		}
	}

	m.resizeClient(c)
	m.drawBorder(c)
	return true
}

// HandlePropertyNotify refreshes the tracked property of a client.
func (m *Manager) HandlePropertyNotify(w client.Window, prop Property) {
	c := m.FindClient(w)
	if c == nil {
		return
	}
	switch prop {
	case PropertyName:
		m.SetName(c)
	case PropertyNormalHints:
		c.Hints = m.display.ReadSizeHints(w).Normalize()
	}
}

// HandleEnterNotify focuses the client under the pointer.
func (m *Manager) HandleEnterNotify(w client.Window) {
	if c := m.FindClient(w); c != nil {
		m.SetActive(c, true)
	}
}

// HandleExpose repaints a client's border.
func (m *Manager) HandleExpose(w client.Window) {
	if c := m.FindClient(w); c != nil {
		m.drawBorder(c)
	}
}

// HandleIconifyRequest hides a client that asked to be iconified.
func (m *Manager) HandleIconifyRequest(w client.Window) {
	if c := m.FindClient(w); c != nil {
		m.Hide(c)
	}
}

// HandleActivateRequest brings a client forward on a pager's request.
func (m *Manager) HandleActivateRequest(w client.Window) {
	c := m.FindClient(w)
	if c == nil {
		return
	}
	if old := m.current; old != nil && old != c {
		m.PtrSave(old)
	}
	m.PtrWarp(c)
	m.SetActive(c, true)
}

// HandleScreenChange rebuilds a screen's geometry after a RandR change.
func (m *Manager) HandleScreenChange(screen int) {
	if sc := m.Screen(screen); sc != nil {
		m.UpdateGeometry(sc)
	}
}

// HandleButtonRelease ends a sticky-toggle highlight.
func (m *Manager) HandleButtonRelease() {
	if c := m.current; c != nil {
		m.StickyToggleExit(c)
	}
}

func (m *Manager) borderRole(c *client.Client) ColorRole {
	if !c.Active {
		return ColorInactive
	}
	switch c.Highlight {
	case client.HighlightGroup:
		return ColorGroup
	case client.HighlightUngroup:
		return ColorUngroup
	default:
		return ColorActive
	}
}
