package wm

import (
	"fmt"

	"github.com/1broseidon/quietwm/internal/client"
	"github.com/1broseidon/quietwm/internal/geom"
	"github.com/1broseidon/quietwm/internal/pointer"
)

// ResizeInteractive sweeps c's bottom-right corner with the pointer until
// the button is released.
func (m *Manager) ResizeInteractive(c *client.Client) {
	if c.Frozen() {
		return
	}
	m.Raise(c)
	m.PtrSave(c)

	src, ok := m.display.GrabPointer(c.Window, CursorResize)
	t := &resizeTarget{m: m, c: c}
	op := pointer.NewResize(c.Geom, c.BorderWidth, c.Hints, t)
	if !op.Begin(ok) {
		m.logger.Debug("pointer grab denied", "op", "resize", "window", c.Window)
		return
	}

	m.display.WarpPointer(c.Screen,
		c.Geom.X+c.BorderWidth+c.Geom.Width,
		c.Geom.Y+c.BorderWidth+c.Geom.Height)
	t.readout()

	pointer.Run(src, op)

	m.display.HideReadout(c.Screen)
	m.display.UngrabPointer()

	c.ClampSavedPointer()
	m.PtrWarp(c)
}

// MoveInteractive drags c with the pointer until the button is released,
// snapping its edges to the work area under the pointer.
func (m *Manager) MoveInteractive(c *client.Client) {
	m.Raise(c)
	if c.Frozen() {
		return
	}
	sc := m.Screen(c.Screen)
	if sc == nil {
		return
	}

	src, ok := m.display.GrabPointer(c.Window, CursorMove)
	px, py := m.display.QueryPointer(c.Screen)
	area := func(x, y int) geom.Rect { return m.FindRegionArea(sc, x, y, true) }
	op := pointer.NewMove(c.Geom, c.BorderWidth,
		px-c.Geom.X-c.BorderWidth, py-c.Geom.Y-c.BorderWidth,
		area, m.opts.SnapDist, &moveTarget{m: m, c: c})
	if !op.Begin(ok) {
		m.logger.Debug("pointer grab denied", "op", "move", "window", c.Window)
		return
	}

	pointer.Run(src, op)

	m.display.UngrabPointer()
}

type resizeTarget struct {
	m *Manager
	c *client.Client
}

func (t *resizeTarget) Redraw() { t.m.drawBorder(t.c) }

func (t *resizeTarget) Apply(r geom.Rect) {
	t.c.Geom = r
	t.m.resizeClient(t.c)
	t.readout()
}

func (t *resizeTarget) readout() {
	w, h := t.c.Hints.Units(t.c.Geom.Width, t.c.Geom.Height)
	t.m.display.ShowReadout(t.c.Screen,
		t.c.Geom.X+t.c.BorderWidth, t.c.Geom.Y+t.c.BorderWidth,
		SizeReadout(w, h))
}

// SizeReadout formats the dimensions shown while resizing.
func SizeReadout(w, h int) string {
	return fmt.Sprintf(" %4d x %-4d ", w, h)
}

type moveTarget struct {
	m *Manager
	c *client.Client
}

func (t *moveTarget) Redraw() { t.m.drawBorder(t.c) }

func (t *moveTarget) Apply(r geom.Rect) {
	t.c.Geom = r
	t.m.resizeClient(t.c)
}
