package pointer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/quietwm/internal/client"
	"github.com/1broseidon/quietwm/internal/geom"
)

type scriptedSource struct {
	events []Event
	read   int
}

func (s *scriptedSource) NextEvent() Event {
	ev := s.events[s.read]
	s.read++
	return ev
}

type recordingTarget struct {
	applied []geom.Rect
	redraws int
}

func (r *recordingTarget) Redraw()           { r.redraws++ }
func (r *recordingTarget) Apply(g geom.Rect) { r.applied = append(r.applied, g) }

func motion(x, y int, ts uint32) Event {
	return Event{Kind: EventMotion, RootX: x, RootY: y, Time: ts}
}

func release() Event { return Event{Kind: EventButtonRelease} }

// expectedApplications replays the throttle rule independently of Throttle.
func expectedApplications(times []uint32) int {
	n := 0
	var last uint32
	for i, ts := range times {
		if i == 0 || ts-last > ThrottleInterval {
			last = ts
			n++
		}
	}
	return n
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "grabbing", PhaseGrabbing.String())
	assert.Equal(t, "tracking", PhaseTracking.String())
	assert.Equal(t, "done", PhaseDone.String())
	assert.Equal(t, "unknown", Phase(9).String())
}

func TestThrottleBoundary(t *testing.T) {
	tests := []struct {
		name  string
		delta uint32
		allow bool
	}{
		{"well inside", 5, false},
		{"at interval", ThrottleInterval, false},
		{"just past interval", ThrottleInterval + 1, true},
		{"well past", 40, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var th Throttle
			require.True(t, th.Allow(1000))
			assert.Equal(t, tt.allow, th.Allow(1000+tt.delta))
		})
	}
}

func TestThrottleWrapsWithServerTime(t *testing.T) {
	var th Throttle
	require.True(t, th.Allow(^uint32(0)-5))
	assert.False(t, th.Allow(3))
	assert.True(t, th.Allow(20))
}

func TestResizeThrottleScenario(t *testing.T) {
	const t0 = 50000
	times := []uint32{t0, t0 + 5, t0 + 20, t0 + 40}

	src := &scriptedSource{}
	for i, ts := range times {
		src.events = append(src.events, motion(300+i, 300+i, ts))
	}
	src.events = append(src.events, release())

	target := &recordingTarget{}
	op := NewResize(geom.Rect{X: 100, Y: 100, Width: 50, Height: 50}, 0, client.SizeHints{}, target)
	require.True(t, op.Begin(true))
	Run(src, op)

	// One extra application comes from the final resize on release.
	assert.Len(t, target.applied, expectedApplications(times)+1)
	assert.Equal(t, PhaseDone, op.Phase())
}

func TestResizeAnchorsCorner(t *testing.T) {
	target := &recordingTarget{}
	op := NewResize(geom.Rect{X: 100, Y: 100, Width: 10, Height: 10}, 2, client.SizeHints{}, target)
	require.True(t, op.Begin(true))

	op.Handle(motion(300, 250, 100))
	assert.Equal(t, geom.Rect{X: 100, Y: 100, Width: 198, Height: 148}, op.Geometry())

	op.Handle(motion(50, 60, 200))
	assert.Equal(t, geom.Rect{X: 52, Y: 62, Width: 48, Height: 38}, op.Geometry())
}

func TestResizeOntoAnchorKeepsWindowNonEmpty(t *testing.T) {
	target := &recordingTarget{}
	op := NewResize(geom.Rect{X: 100, Y: 100, Width: 300, Height: 200}, 1, client.SizeHints{}, target)
	require.True(t, op.Begin(true))

	op.Handle(motion(100, 101, 10))
	op.Handle(motion(99, 99, 50))
	op.Handle(release())

	require.NotEmpty(t, target.applied)
	for _, g := range target.applied {
		assert.GreaterOrEqual(t, g.Width, 1)
		assert.GreaterOrEqual(t, g.Height, 1)
	}
	assert.Equal(t, geom.Rect{X: 99, Y: 99, Width: 1, Height: 1}, op.Geometry())
}

func TestResizeAppliesSizeHints(t *testing.T) {
	target := &recordingTarget{}
	hints := client.SizeHints{BaseWidth: 4, BaseHeight: 4, IncWidth: 10, IncHeight: 20}
	op := NewResize(geom.Rect{X: 0, Y: 0, Width: 10, Height: 10}, 0, hints, target)
	op.Begin(true)

	op.Handle(motion(127, 95, 10))
	g := op.Geometry()
	assert.Equal(t, 124, g.Width)
	assert.Equal(t, 84, g.Height)
	require.Len(t, target.applied, 1)
}

func TestResizeExposeRedraws(t *testing.T) {
	target := &recordingTarget{}
	op := NewResize(geom.Rect{Width: 10, Height: 10}, 0, client.SizeHints{}, target)
	op.Begin(true)
	op.Handle(Event{Kind: EventExpose})
	assert.Equal(t, 1, target.redraws)
	assert.Empty(t, target.applied)
}

func TestReleaseWithoutMotionAppliesNothing(t *testing.T) {
	target := &recordingTarget{}
	op := NewResize(geom.Rect{Width: 10, Height: 10}, 0, client.SizeHints{}, target)
	op.Begin(true)
	Run(&scriptedSource{events: []Event{release()}}, op)
	assert.Empty(t, target.applied)
	assert.Equal(t, PhaseDone, op.Phase())
}

func TestGrabFailureEndsOperation(t *testing.T) {
	target := &recordingTarget{}
	op := NewMove(geom.Rect{Width: 10, Height: 10}, 0, 0, 0, nil, 0, target)
	assert.False(t, op.Begin(false))
	assert.Equal(t, PhaseDone, op.Phase())

	src := &scriptedSource{}
	Run(src, op)
	assert.Zero(t, src.read)
	assert.Empty(t, target.applied)
}

func TestMoveSnapsToArea(t *testing.T) {
	area := geom.Rect{X: 0, Y: 0, Width: 1000, Height: 800}
	areaFor := func(x, y int) geom.Rect { return area }
	target := &recordingTarget{}

	op := NewMove(geom.Rect{X: 100, Y: 100, Width: 200, Height: 100}, 1, 10, 10, areaFor, 20, target)
	require.True(t, op.Begin(true))

	op.Handle(motion(500, 300, 100))
	assert.Equal(t, geom.Rect{X: 489, Y: 289, Width: 200, Height: 100}, op.Geometry())

	op.Handle(motion(15, 12, 200))
	assert.Equal(t, 0, op.Geometry().X)
	assert.Equal(t, 0, op.Geometry().Y)

	op.Handle(motion(801, 300, 300))
	assert.Equal(t, 798, op.Geometry().X)

	op.Handle(release())
	assert.Equal(t, PhaseDone, op.Phase())
	require.Len(t, target.applied, 4)
	assert.Equal(t, op.Geometry(), target.applied[3])
}

func TestMoveThrottledLikeResize(t *testing.T) {
	area := geom.Rect{Width: 2000, Height: 2000}
	target := &recordingTarget{}
	op := NewMove(geom.Rect{X: 500, Y: 500, Width: 10, Height: 10}, 0, 0, 0,
		func(int, int) geom.Rect { return area }, 0, target)
	op.Begin(true)

	times := []uint32{100, 101, 102, 140, 150, 170}
	src := &scriptedSource{}
	for i, ts := range times {
		src.events = append(src.events, motion(600+i, 600+i, ts))
	}
	src.events = append(src.events, release())
	Run(src, op)

	assert.Len(t, target.applied, expectedApplications(times)+1)
}

func TestHandleAfterDoneIsIgnored(t *testing.T) {
	target := &recordingTarget{}
	op := NewResize(geom.Rect{Width: 10, Height: 10}, 0, client.SizeHints{}, target)
	op.Begin(true)
	op.Handle(release())
	op.Handle(motion(100, 100, 1000))
	assert.Empty(t, target.applied)
}
