package pointer

import (
	"github.com/1broseidon/quietwm/internal/client"
	"github.com/1broseidon/quietwm/internal/geom"
)

// Resize sweeps a window from its fixed top-left anchor to the pointer.
type Resize struct {
	base
	anchorX int
	anchorY int
	hints   client.SizeHints
}

// NewResize starts a resize of a window currently at start.
func NewResize(start geom.Rect, border int, hints client.SizeHints, target Target) *Resize {
	return &Resize{
		base: base{
			geom:   start,
			border: border,
			target: target,
		},
		anchorX: start.X,
		anchorY: start.Y,
		hints:   hints,
	}
}

// Handle advances the operation by one event.
func (r *Resize) Handle(ev Event) {
	if r.phase != PhaseTracking {
		return
	}
	switch ev.Kind {
	case EventExpose:
		r.target.Redraw()
	case EventMotion:
		r.sweep(ev.RootX, ev.RootY)
		r.motion(ev.Time)
	case EventButtonRelease:
		r.release()
	}
}

func (r *Resize) sweep(px, py int) {
	w := abs(r.anchorX-px) - r.border
	h := abs(r.anchorY-py) - r.border
	w, h = r.hints.Apply(w, h)
	// X rejects zero-sized windows; a pointer back on the anchor keeps one pixel.
	w, h = max(w, 1), max(h, 1)

	r.geom.Width, r.geom.Height = w, h
	if r.anchorX <= px {
		r.geom.X = r.anchorX
	} else {
		r.geom.X = r.anchorX - w
	}
	if r.anchorY <= py {
		r.geom.Y = r.anchorY
	} else {
		r.geom.Y = r.anchorY - h
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
