package pointer

import "github.com/1broseidon/quietwm/internal/geom"

// AreaFunc returns the work area used for snapping at a root position.
type AreaFunc func(x, y int) geom.Rect

// Move drags a window with the pointer, snapping its edges to the work
// area of the region under the pointer.
type Move struct {
	base
	offX     int
	offY     int
	area     AreaFunc
	snapDist int
}

// NewMove starts a move of a window at start, grabbed at window-relative
// offset (offX, offY).
func NewMove(start geom.Rect, border, offX, offY int, area AreaFunc, snapDist int, target Target) *Move {
	return &Move{
		base: base{
			geom:   start,
			border: border,
			target: target,
		},
		offX:     offX,
		offY:     offY,
		area:     area,
		snapDist: snapDist,
	}
}

// Handle advances the operation by one event.
func (m *Move) Handle(ev Event) {
	if m.phase != PhaseTracking {
		return
	}
	switch ev.Kind {
	case EventExpose:
		m.target.Redraw()
	case EventMotion:
		m.drag(ev.RootX, ev.RootY)
		m.motion(ev.Time)
	case EventButtonRelease:
		m.release()
	}
}

func (m *Move) drag(px, py int) {
	x := px - m.offX - m.border
	y := py - m.offY - m.border

	a := m.area(px, py)
	x += geom.SnapCalc(x, x+m.geom.Width+2*m.border, a.X, a.Width, m.snapDist)
	y += geom.SnapCalc(y, y+m.geom.Height+2*m.border, a.Y, a.Height, m.snapDist)

	m.geom.X, m.geom.Y = x, y
}
