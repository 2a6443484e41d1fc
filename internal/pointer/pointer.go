// Package pointer implements the interactive move and resize operations as
// explicit state machines. A caller grabs the pointer, reports the outcome
// through Begin, then feeds events from the nested event pump until the
// operation reaches PhaseDone.
package pointer

import "github.com/1broseidon/quietwm/internal/geom"

// ThrottleInterval is the minimum spacing, in event-time milliseconds,
// between two applied geometry updates.
const ThrottleInterval = 1000 / 60

// Phase is the lifecycle state of an interactive operation.
type Phase int

const (
	PhaseGrabbing Phase = iota
	PhaseTracking
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseGrabbing:
		return "grabbing"
	case PhaseTracking:
		return "tracking"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// EventKind identifies the pointer-grab events an operation reacts to.
type EventKind int

const (
	EventExpose EventKind = iota
	EventMotion
	EventButtonRelease
)

// Event is a pointer-grab event reduced to what the state machines use.
// Time is the server timestamp carried by the event.
type Event struct {
	Kind  EventKind
	RootX int
	RootY int
	Time  uint32
}

// Throttle rate-limits updates using event timestamps.
type Throttle struct {
	last  uint32
	fired bool
}

// Allow reports whether an update stamped ts may be applied, and records
// it if so. The first update always passes; later ones must be strictly
// more than ThrottleInterval after the last applied one.
func (t *Throttle) Allow(ts uint32) bool {
	if t.fired && ts-t.last <= ThrottleInterval {
		return false
	}
	t.last = ts
	t.fired = true
	return true
}

// Fired reports whether any update has been applied.
func (t *Throttle) Fired() bool { return t.fired }

// Source yields the next event while the pointer is grabbed. It blocks.
type Source interface {
	NextEvent() Event
}

// Target receives the side effects of an operation.
type Target interface {
	// Redraw repaints decorations after an expose.
	Redraw()
	// Apply pushes new geometry to the window.
	Apply(r geom.Rect)
}

// Operation is a running move or resize.
type Operation interface {
	Phase() Phase
	Handle(ev Event)
}

// Run pumps events into op until it finishes. It returns immediately if
// the operation never reached PhaseTracking.
func Run(src Source, op Operation) {
	for op.Phase() == PhaseTracking {
		op.Handle(src.NextEvent())
	}
}

type base struct {
	phase    Phase
	geom     geom.Rect
	border   int
	throttle Throttle
	target   Target
}

func (b *base) Phase() Phase { return b.phase }

// Geometry returns the most recently computed geometry.
func (b *base) Geometry() geom.Rect { return b.geom }

// Begin records whether the pointer grab succeeded. A failed grab ends the
// operation without side effects.
func (b *base) Begin(grabbed bool) bool {
	if b.phase != PhaseGrabbing {
		return b.phase == PhaseTracking
	}
	if grabbed {
		b.phase = PhaseTracking
	} else {
		b.phase = PhaseDone
	}
	return grabbed
}

func (b *base) motion(ts uint32) {
	if b.throttle.Allow(ts) {
		b.target.Apply(b.geom)
	}
}

func (b *base) release() {
	if b.throttle.Fired() {
		b.target.Apply(b.geom)
	}
	b.phase = PhaseDone
}
