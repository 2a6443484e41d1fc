package wm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1broseidon/quietwm/internal/client"
	"github.com/1broseidon/quietwm/internal/geom"
	"github.com/1broseidon/quietwm/internal/menu"
	"github.com/1broseidon/quietwm/internal/pointer"
	"github.com/1broseidon/quietwm/internal/search"
)

func windows(cs []*client.Client) []client.Window {
	out := make([]client.Window, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Window)
	}
	return out
}

func TestScreenGeometryAndRegions(t *testing.T) {
	opts := DefaultOptions()
	opts.Gap = geom.Gaps{Top: 10, Bottom: 20, Left: 5, Right: 5}
	m, d, _ := newTestManager(t, opts, func(d *fakeDisplay) {
		d.heads = []geom.Rect{
			{X: 0, Y: 0, Width: 1000, Height: 800},
			{X: 1000, Y: 0, Width: 920, Height: 1080},
		}
	})

	sc := m.Screen(0)
	require.NotNil(t, sc)
	assert.Equal(t, geom.Rect{Width: 1920, Height: 1080}, sc.View)
	assert.Equal(t, geom.Rect{X: 5, Y: 10, Width: 1910, Height: 1050}, sc.WorkArea)
	require.Len(t, sc.Regions, 2)
	assert.Equal(t, geom.Rect{X: 1005, Y: 10, Width: 910, Height: 1050}, sc.Regions[1].Work)

	assert.Equal(t, geom.Rect{Width: 1000, Height: 800}, m.FindRegionArea(sc, 500, 400, false))
	assert.Equal(t, geom.Rect{X: 1005, Y: 10, Width: 910, Height: 1050}, m.FindRegionArea(sc, 1200, 500, true))

	// A point on the boundary belongs to no region.
	assert.Equal(t, sc.View, m.FindRegionArea(sc, 1000, 500, false))
	assert.Equal(t, sc.WorkArea, m.FindRegionArea(sc, 1000, 500, true))

	d.heads = nil
	m.HandleScreenChange(0)
	assert.Empty(t, sc.Regions)
	assert.Equal(t, sc.View, m.FindRegionArea(sc, 500, 400, false))

	assert.Nil(t, m.Screen(3))
	assert.Equal(t, sc, m.CurrentScreen())
}

func TestStartAdoptsExistingWindows(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), func(d *fakeDisplay) {
		d.addWindow(7, WindowInfo{Geom: geom.Rect{X: 10, Y: 10, Width: 100, Height: 100}, Viewable: true, Name: "one"})
		d.addWindow(8, WindowInfo{Geom: geom.Rect{X: 20, Y: 20, Width: 100, Height: 100}, Viewable: true, Name: "two"})
		d.existing = []client.Window{7, 8}
	})

	assert.Equal(t, 2, m.Registry().Len())
	assert.Equal(t, []client.Window{7, 8}, d.clientList)
	assert.True(t, d.managed[7])
	assert.Equal(t, NormalState, d.states[8])
	assert.Equal(t, 1, m.Screen(0).ActiveGroup())
	assert.Equal(t, 1, d.currentDesktop)
	assert.Equal(t, "one", m.Screen(0).GroupName(1))
}

func TestGroupNamesArePaddedAndPublished(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), func(d *fakeDisplay) {
		d.desktopNames = []string{"web", "mail"}
	})

	sc := m.Screen(0)
	assert.Equal(t, "web", sc.GroupName(0))
	assert.Equal(t, "mail", sc.GroupName(1))
	assert.Equal(t, "nogroup", sc.GroupName(2))
	assert.Len(t, d.publishedNames, NumGroups)
	assert.Equal(t, "", sc.GroupName(NumGroups))
}

func TestInitClientAndDelete(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)

	c := manage(t, m, d, 10, "term", geom.Rect{X: 50, Y: 60, Width: 300, Height: 200})
	assert.Same(t, c, m.FindClient(10))
	assert.Same(t, c, m.InitClient(10, 0, true), "managing twice returns the same client")
	assert.Equal(t, 1, m.Registry().Len())
	assert.Equal(t, []client.Window{10}, d.clientList)
	assert.Equal(t, 3, d.borderWidths[10])
	assert.Equal(t, ColorInactive, d.borders[10])
	assert.True(t, d.mapped[10])
	assert.Empty(t, d.movesOf(10), "viewable windows keep their position")
	assert.Equal(t, client.NoGroup, c.Group)

	m.SetActive(c, true)
	m.DeleteClient(c)
	assert.Nil(t, m.FindClient(10))
	assert.Nil(t, m.CurrentClient())
	assert.Equal(t, WithdrawnState, d.states[10])
	assert.False(t, d.managed[10])
	assert.Empty(t, d.clientList)

	assert.Nil(t, m.InitClient(99, 0, true), "unknown windows are not managed")
	assert.Nil(t, m.InitClient(10, 4, true), "unknown screens are not managed")
}

func TestInitClientPlacesUnmappedWindows(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	d.ptrX, d.ptrY = 960, 540

	d.addWindow(1, WindowInfo{Geom: geom.Rect{Width: 200, Height: 100}})
	c := m.InitClient(1, 0, false)
	require.NotNil(t, c)
	assert.Equal(t, geom.Rect{X: 860, Y: 490, Width: 200, Height: 100}, c.Geom)
	require.NotEmpty(t, d.movesOf(1))
	assert.Equal(t, c.Geom, d.movesOf(1)[0])
	assert.False(t, c.Hidden())

	d.addWindow(2, WindowInfo{Geom: geom.Rect{Width: 200, Height: 100}, Iconic: true})
	c = m.InitClient(2, 0, false)
	require.NotNil(t, c)
	assert.True(t, c.Hidden())
	assert.Equal(t, IconicState, d.states[2])
	assert.False(t, d.mapped[2])
}

func TestPlaceCalc(t *testing.T) {
	t.Run("user position is kept on screen", func(t *testing.T) {
		m, d, _ := newTestManager(t, DefaultOptions(), nil)
		d.addWindow(1, WindowInfo{
			Geom:  geom.Rect{Width: 300, Height: 200},
			Hints: client.SizeHints{UserPosition: true, X: 1800, Y: 50},
		})
		c := m.InitClient(1, 0, false)
		require.NotNil(t, c)
		assert.Equal(t, 1614, c.Geom.X)
		assert.Equal(t, 50, c.Geom.Y)
	})

	t.Run("pointer near the corner respects the gaps", func(t *testing.T) {
		opts := DefaultOptions()
		opts.Gap = geom.Gaps{Top: 20, Left: 10}
		m, d, _ := newTestManager(t, opts, nil)
		d.ptrX, d.ptrY = 0, 0

		c := client.New(1, 0)
		c.BorderWidth = 3
		c.Geom = geom.Rect{Width: 200, Height: 100}
		m.PlaceCalc(c)
		assert.Equal(t, 10, c.Geom.X)
		assert.Equal(t, 20, c.Geom.Y)
	})

	t.Run("oversized windows are shrunk to the area", func(t *testing.T) {
		m, d, _ := newTestManager(t, DefaultOptions(), nil)
		d.ptrX, d.ptrY = 500, 500

		c := client.New(1, 0)
		c.BorderWidth = 3
		c.Geom = geom.Rect{Width: 4000, Height: 3000}
		m.PlaceCalc(c)
		assert.Equal(t, geom.Rect{X: 0, Y: 0, Width: 1914, Height: 1074}, c.Geom)
	})
}

func TestIgnoredWindowsAreFrozenAndBorderless(t *testing.T) {
	opts := DefaultOptions()
	opts.Ignore = []string{"xclock"}
	m, d, _ := newTestManager(t, opts, nil)

	c := manage(t, m, d, 1, "xclock-big", geom.Rect{Width: 100, Height: 100})
	assert.True(t, c.Frozen())
	assert.Equal(t, 0, c.BorderWidth)
	assert.Equal(t, 0, d.borderWidths[1])

	plain := manage(t, m, d, 2, "xterm", geom.Rect{Width: 100, Height: 100})
	assert.False(t, plain.Frozen())

	opts.BorderWidth = 5
	m.Reconfigure(opts)
	assert.Equal(t, 0, d.borderWidths[1])
	assert.Equal(t, 5, d.borderWidths[2])
}

func TestSetActiveAndHide(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	c1 := manage(t, m, d, 1, "one", geom.Rect{Width: 100, Height: 100})
	c2 := manage(t, m, d, 2, "two", geom.Rect{X: 200, Width: 100, Height: 100})

	m.SetActive(c1, true)
	assert.Same(t, c1, m.CurrentClient())
	assert.Equal(t, client.Window(1), d.focused)
	assert.Equal(t, client.Window(1), d.active)
	assert.Equal(t, ColorActive, d.borders[1])

	m.SetActive(c2, true)
	assert.Same(t, c2, m.CurrentClient())
	assert.False(t, c1.Active)
	assert.Equal(t, ColorInactive, d.borders[1])
	assert.Equal(t, ColorActive, d.borders[2])
	assert.Equal(t, []client.Window{2, 1}, windows(m.Registry().MRU(0)))

	m.Hide(c2)
	assert.Nil(t, m.CurrentClient())
	assert.Equal(t, IconicState, d.states[2])
	assert.False(t, d.mapped[2])

	m.SetActive(c2, true)
	assert.Nil(t, m.CurrentClient(), "hidden clients never become current")

	m.Unhide(c2)
	assert.True(t, d.mapped[2])
	assert.Equal(t, NormalState, d.states[2])
}

func TestUpdateStackingOrderSkipsHidden(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	c1 := manage(t, m, d, 1, "one", geom.Rect{Width: 100, Height: 100})
	c2 := manage(t, m, d, 2, "two", geom.Rect{Width: 100, Height: 100})
	c3 := manage(t, m, d, 3, "three", geom.Rect{Width: 100, Height: 100})

	assert.Equal(t, []int{0, 1, 2}, []int{c1.StackingOrder, c2.StackingOrder, c3.StackingOrder})

	m.Lower(c3)
	assert.Equal(t, []int{1, 2, 0}, []int{c1.StackingOrder, c2.StackingOrder, c3.StackingOrder})

	m.Hide(c1)
	m.UpdateStackingOrder(m.Screen(0))
	assert.Equal(t, 0, c3.StackingOrder)
	assert.Equal(t, 1, c2.StackingOrder)
	assert.Equal(t, 1, c1.StackingOrder, "hidden clients keep their previous index")
}

func TestCycle(t *testing.T) {
	setup := func(t *testing.T) (*Manager, *fakeDisplay, []*client.Client) {
		m, d, _ := newTestManager(t, DefaultOptions(), nil)
		cs := []*client.Client{
			manage(t, m, d, 1, "one", geom.Rect{Width: 100, Height: 100}),
			manage(t, m, d, 2, "two", geom.Rect{X: 100, Y: 100, Width: 200, Height: 100}),
			manage(t, m, d, 3, "three", geom.Rect{X: 400, Y: 400, Width: 100, Height: 100}),
		}
		return m, d, cs
	}

	t.Run("forward walks the MRU queue and ends the cycle", func(t *testing.T) {
		m, d, cs := setup(t)

		next := m.Cycle(false)
		assert.Same(t, cs[1], next)
		assert.Equal(t, warp{203, 153}, d.lastWarp())
		m.SetActive(next, true)
		assert.Equal(t, []client.Window{1, 2, 3}, windows(m.Registry().MRU(0)), "order is frozen while cycling")

		next = m.Cycle(false)
		assert.Same(t, cs[2], next)
		m.SetActive(next, true)

		next = m.Cycle(false)
		assert.Same(t, cs[0], next, "the walk wraps around")
		m.SetActive(next, true)

		m.EndCycle()
		assert.Equal(t, []client.Window{1, 2, 3}, windows(m.Registry().MRU(0)))
		assert.Equal(t, 1, d.keyboardUngrab)

		m.Cycle(false)
		m.SetActive(cs[1], true)
		m.EndCycle()
		assert.Equal(t, []client.Window{2, 1, 3}, windows(m.Registry().MRU(0)))
	})

	t.Run("reverse", func(t *testing.T) {
		m, _, cs := setup(t)
		m.SetActive(cs[0], true)
		assert.Same(t, cs[2], m.Cycle(true))
	})

	t.Run("skips hidden and frozen clients", func(t *testing.T) {
		m, _, cs := setup(t)
		m.Hide(cs[1])
		cs[2].Flags |= client.FlagFrozen
		m.SetActive(cs[0], true)
		assert.Same(t, cs[0], m.Cycle(false), "only the current client is left")
	})

	t.Run("nothing visible", func(t *testing.T) {
		m, _, cs := setup(t)
		for _, c := range cs {
			m.Hide(c)
		}
		assert.Nil(t, m.Cycle(false))
	})

	t.Run("no clients", func(t *testing.T) {
		m, _, _ := newTestManager(t, DefaultOptions(), nil)
		assert.Nil(t, m.Cycle(false))
		m.EndCycle()
	})
}

func TestPointerSaveAndWarp(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	c := manage(t, m, d, 1, "one", geom.Rect{X: 100, Y: 100, Width: 400, Height: 300})

	d.ptrX, d.ptrY = 150, 160
	m.PtrSave(c)
	assert.Equal(t, 47, c.PtrX)
	assert.Equal(t, 57, c.PtrY)

	d.ptrX, d.ptrY = 5, 5
	m.PtrSave(c)
	assert.Equal(t, 47, c.PtrX, "positions outside the window are not saved")

	m.Hide(c)
	m.PtrWarp(c)
	assert.False(t, c.Hidden())
	assert.Equal(t, warp{150, 160}, d.lastWarp())
}

func TestResizeInteractive(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	c := manage(t, m, d, 1, "one", geom.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	d.ptrX, d.ptrY = 150, 150
	d.events = []pointer.Event{
		{Kind: pointer.EventMotion, RootX: 700, RootY: 600, Time: 1000},
		{Kind: pointer.EventMotion, RootX: 710, RootY: 610, Time: 1005},
		{Kind: pointer.EventExpose},
		{Kind: pointer.EventMotion, RootX: 720, RootY: 620, Time: 1020},
		{Kind: pointer.EventButtonRelease},
	}

	m.ResizeInteractive(c)

	assert.Equal(t, geom.Rect{X: 100, Y: 100, Width: 617, Height: 517}, c.Geom)
	assert.Equal(t, []geom.Rect{
		{X: 100, Y: 100, Width: 597, Height: 497},
		{X: 100, Y: 100, Width: 617, Height: 517},
		{X: 100, Y: 100, Width: 617, Height: 517},
	}, d.movesOf(1))

	require.Len(t, d.readouts, 4)
	assert.Equal(t, SizeReadout(400, 300), d.readouts[0])
	assert.Equal(t, SizeReadout(617, 517), d.readouts[3])
	assert.Equal(t, 1, d.readoutHidden)
	assert.Equal(t, 1, d.ungrabs)

	assert.Contains(t, d.warps, warp{503, 403}, "the pointer starts on the corner")
	assert.Equal(t, warp{150, 150}, d.lastWarp(), "the pointer returns to its saved spot")
}

func TestResizeInteractiveGrabDenied(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	c := manage(t, m, d, 1, "one", geom.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	d.grabOK = false
	d.events = []pointer.Event{{Kind: pointer.EventMotion, RootX: 700, RootY: 600, Time: 1000}}

	m.ResizeInteractive(c)

	assert.Equal(t, geom.Rect{X: 100, Y: 100, Width: 400, Height: 300}, c.Geom)
	assert.Empty(t, d.movesOf(1))
	assert.Empty(t, d.readouts)
	assert.Zero(t, d.ungrabs)
}

func TestInteractiveSkipsFrozenClients(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	c := manage(t, m, d, 1, "one", geom.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	c.Flags |= client.FlagFrozen

	m.ResizeInteractive(c)
	m.MoveInteractive(c)
	assert.Zero(t, d.grabs)
}

func TestMoveInteractiveSnaps(t *testing.T) {
	opts := DefaultOptions()
	opts.SnapDist = 10
	m, d, _ := newTestManager(t, opts, nil)
	c := manage(t, m, d, 1, "one", geom.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	d.ptrX, d.ptrY = 200, 200
	d.events = []pointer.Event{
		{Kind: pointer.EventMotion, RootX: 105, RootY: 150, Time: 1000},
		{Kind: pointer.EventMotion, RootX: 1610, RootY: 800, Time: 1040},
		{Kind: pointer.EventButtonRelease},
	}

	m.MoveInteractive(c)

	moves := d.movesOf(1)
	require.Len(t, moves, 3)
	assert.Equal(t, geom.Rect{X: 0, Y: 50, Width: 400, Height: 300}, moves[0], "leading edge snaps")
	assert.Equal(t, geom.Rect{X: 1514, Y: 700, Width: 400, Height: 300}, moves[1], "trailing edge snaps")
	assert.Equal(t, moves[1], c.Geom)
	assert.Equal(t, 1, d.ungrabs)
	assert.Empty(t, d.readouts)
}

func TestSizeReadout(t *testing.T) {
	assert.Equal(t, "   80 x 24   ", SizeReadout(80, 24))
	assert.Equal(t, " 1234 x 5678 ", SizeReadout(1234, 5678))
}

func TestMaximize(t *testing.T) {
	opts := DefaultOptions()
	opts.Gap = geom.Gaps{Top: 20}
	m, d, _ := newTestManager(t, opts, nil)
	orig := geom.Rect{X: 100, Y: 100, Width: 400, Height: 300}
	c := manage(t, m, d, 1, "one", orig)

	m.Maximize(c)
	assert.Equal(t, geom.Rect{X: 0, Y: 20, Width: 1914, Height: 1054}, c.Geom)
	assert.True(t, c.Flags.Has(client.FlagMaximized))

	m.Maximize(c)
	assert.Equal(t, orig, c.Geom)
	assert.False(t, c.Flags.Has(client.FlagMaximized))

	m.VertMaximize(c)
	assert.Equal(t, geom.Rect{X: 100, Y: 20, Width: 400, Height: 1054}, c.Geom)

	m.Maximize(c)
	assert.Equal(t, geom.Rect{X: 0, Y: 20, Width: 1914, Height: 1054}, c.Geom)
	assert.False(t, c.Flags.Has(client.FlagVMaximized))

	m.Maximize(c)
	assert.Equal(t, orig, c.Geom, "the geometry saved before the first maximize survives")

	c.Flags |= client.FlagFrozen
	m.Maximize(c)
	assert.Equal(t, orig, c.Geom)
}

func TestHideIsIdempotent(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	sc := m.Screen(0)
	c1 := manage(t, m, d, 1, "one", geom.Rect{Width: 100, Height: 100})
	c2 := manage(t, m, d, 2, "two", geom.Rect{Width: 100, Height: 100})
	require.NoError(t, m.MoveToGroup(c1, 3))
	require.NoError(t, m.MoveToGroup(c2, 3))

	m.Hide(c1)
	m.Hide(c1)
	assert.Equal(t, 1, d.unmaps[1], "a hidden client is not unmapped again")

	require.NoError(t, m.HideToggle(sc, 3))
	assert.True(t, c2.Hidden())
	assert.Equal(t, 1, d.unmaps[1])
	assert.Equal(t, 1, d.unmaps[2])
}

func TestGroupHideToggle(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	sc := m.Screen(0)
	c1 := manage(t, m, d, 1, "one", geom.Rect{Width: 100, Height: 100})
	c2 := manage(t, m, d, 2, "two", geom.Rect{Width: 100, Height: 100})

	require.NoError(t, m.MoveToGroup(c1, 2))
	require.NoError(t, m.MoveToGroup(c2, 2))
	assert.Equal(t, 2, d.desktops[1])
	assert.Equal(t, windows([]*client.Client{c1, c2}), windows(m.GroupClients(sc, 2)))

	require.NoError(t, m.HideToggle(sc, 2))
	assert.True(t, c1.Hidden())
	assert.True(t, c2.Hidden())
	assert.True(t, sc.GroupHidden(2))
	assert.Equal(t, 1, sc.ActiveGroup())

	require.NoError(t, m.HideToggle(sc, 2))
	assert.False(t, c1.Hidden())
	assert.False(t, c2.Hidden())
	assert.False(t, sc.GroupHidden(2))
	assert.Equal(t, 2, sc.ActiveGroup())
	assert.Equal(t, 2, d.currentDesktop)
	require.NotEmpty(t, d.restacks)
	assert.Equal(t, []client.Window{2, 1}, d.restacks[len(d.restacks)-1], "the previous stacking is restored")

	assert.Error(t, m.HideToggle(sc, NumGroups))
	assert.Error(t, m.MoveToGroup(c1, -1))
}

func TestHideToggleOnEmptyGroupActivatesIt(t *testing.T) {
	m, _, _ := newTestManager(t, DefaultOptions(), nil)
	sc := m.Screen(0)

	require.NoError(t, m.HideToggle(sc, 5))
	assert.Equal(t, 5, sc.ActiveGroup())
	assert.False(t, sc.GroupHidden(5))
}

func TestMoveToHiddenGroupHidesClient(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	sc := m.Screen(0)
	c1 := manage(t, m, d, 1, "one", geom.Rect{Width: 100, Height: 100})
	c2 := manage(t, m, d, 2, "two", geom.Rect{Width: 100, Height: 100})

	require.NoError(t, m.MoveToGroup(c1, 4))
	require.NoError(t, m.HideToggle(sc, 4))
	require.True(t, sc.GroupHidden(4))

	require.NoError(t, m.MoveToGroup(c2, 4))
	assert.True(t, c2.Hidden())
	assert.Equal(t, 4, c2.Group)
}

func TestStickyToggle(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	c := manage(t, m, d, 1, "one", geom.Rect{Width: 100, Height: 100})
	m.SetActive(c, true)

	m.StickyToggleEnter(c)
	assert.Equal(t, 1, c.Group)
	assert.Equal(t, ColorGroup, d.borders[1])

	m.HandleButtonRelease()
	assert.Equal(t, ColorActive, d.borders[1])

	m.StickyToggleEnter(c)
	assert.Equal(t, client.NoGroup, c.Group)
	assert.Equal(t, -1, d.desktops[1])
	assert.Equal(t, ColorUngroup, d.borders[1])
}

func TestCycleGroup(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	sc := m.Screen(0)
	c1 := manage(t, m, d, 1, "one", geom.Rect{Width: 100, Height: 100})
	c2 := manage(t, m, d, 2, "two", geom.Rect{Width: 100, Height: 100})
	loose := manage(t, m, d, 3, "loose", geom.Rect{Width: 100, Height: 100})
	require.NoError(t, m.MoveToGroup(c1, 1))
	require.NoError(t, m.MoveToGroup(c2, 3))

	m.CycleGroup(sc, false)
	assert.Equal(t, 3, sc.ActiveGroup())
	assert.True(t, c1.Hidden())
	assert.False(t, c2.Hidden())
	assert.False(t, loose.Hidden(), "clients outside every group are untouched")

	m.CycleGroup(sc, true)
	assert.Equal(t, 1, sc.ActiveGroup())
	assert.False(t, c1.Hidden())
	assert.True(t, c2.Hidden())
}

func TestAllToggleAndOnly(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	sc := m.Screen(0)
	c1 := manage(t, m, d, 1, "one", geom.Rect{Width: 100, Height: 100})
	c2 := manage(t, m, d, 2, "two", geom.Rect{Width: 100, Height: 100})
	require.NoError(t, m.MoveToGroup(c1, 1))
	require.NoError(t, m.MoveToGroup(c2, 2))

	m.AllToggle(sc)
	assert.True(t, c1.Hidden())
	assert.True(t, c2.Hidden())

	m.AllToggle(sc)
	assert.False(t, c1.Hidden())
	assert.False(t, c2.Hidden())

	require.NoError(t, m.Only(sc, 2))
	assert.True(t, c1.Hidden())
	assert.False(t, c2.Hidden())
	assert.Equal(t, 2, sc.ActiveGroup())
}

func TestAutogroup(t *testing.T) {
	rules := []AutogroupRule{
		{Class: "Firefox", Name: "Navigator", Group: 5},
		{Class: "Firefox", Group: 3},
		{Class: "XTerm", Group: 0},
	}

	tests := []struct {
		name   string
		info   WindowInfo
		sticky bool
		want   int
	}{
		{"class and name", WindowInfo{AppClass: "Firefox", AppName: "Navigator"}, false, 5},
		{"class only", WindowInfo{AppClass: "Firefox", AppName: "Dialog"}, false, 3},
		{"rule for no group", WindowInfo{AppClass: "XTerm"}, true, client.NoGroup},
		{"no match", WindowInfo{AppClass: "Gimp"}, false, client.NoGroup},
		{"sticky puts it in the active group", WindowInfo{AppClass: "Gimp"}, true, 1},
		{"desktop property", WindowInfo{AppClass: "Firefox", HasDesktop: true, Desktop: 7}, false, 7},
		{"desktop past the last group", WindowInfo{HasDesktop: true, Desktop: 15}, false, 9},
		{"desktop on all desktops", WindowInfo{HasDesktop: true, Desktop: -1}, true, client.NoGroup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Autogroup = rules
			opts.StickyGroups = tt.sticky
			m, d, _ := newTestManager(t, opts, nil)

			info := tt.info
			info.Viewable = true
			info.Geom = geom.Rect{Width: 100, Height: 100}
			d.addWindow(1, info)
			c := m.InitClient(1, 0, true)
			require.NotNil(t, c)
			assert.Equal(t, tt.want, c.Group)
		})
	}
}

func TestConfigureRequest(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	c := manage(t, m, d, 1, "one", geom.Rect{X: 100, Y: 100, Width: 400, Height: 300})

	handled := m.HandleConfigureRequest(ConfigureRequest{
		Window: 1,
		Fields: ConfigureWidth | ConfigureHeight,
		Width:  500,
		Height: 350,
	})
	assert.True(t, handled)
	assert.Equal(t, geom.Rect{X: 100, Y: 100, Width: 500, Height: 350}, c.Geom)

	m.HandleConfigureRequest(ConfigureRequest{
		Window: 1,
		Fields: ConfigureX | ConfigureY | ConfigureWidth | ConfigureHeight,
		Width:  1920,
		Height: 1080,
	})
	assert.Equal(t, geom.Rect{X: -3, Y: -3, Width: 1920, Height: 1080}, c.Geom, "full-screen requests hide the border")
	assert.Equal(t, c.Geom, d.movesOf(1)[len(d.movesOf(1))-1])

	assert.False(t, m.HandleConfigureRequest(ConfigureRequest{Window: 42}))
}

func TestEventHandlers(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	c := manage(t, m, d, 1, "first", geom.Rect{X: 100, Y: 100, Width: 400, Height: 300})

	d.names[1] = "second"
	m.HandlePropertyNotify(1, PropertyName)
	assert.Equal(t, "second", c.Name)
	assert.Equal(t, []string{"first", "second"}, c.Names())

	d.hints[1] = client.SizeHints{BaseWidth: 10, IncWidth: 0}
	m.HandlePropertyNotify(1, PropertyNormalHints)
	assert.Equal(t, 10, c.Hints.BaseWidth)
	assert.Equal(t, 1, c.Hints.IncWidth)

	m.HandleEnterNotify(1)
	assert.Same(t, c, m.CurrentClient())

	m.HandleIconifyRequest(1)
	assert.True(t, c.Hidden())

	m.HandleActivateRequest(1)
	assert.False(t, c.Hidden())
	assert.Same(t, c, m.CurrentClient())

	m.HandleUnmapNotify(1, false, false)
	assert.True(t, c.Hidden())
	assert.NotNil(t, m.FindClient(1))

	m.HandleUnmapNotify(1, true, false)
	assert.Nil(t, m.FindClient(1), "a synthetic unmap withdraws the window")

	c2 := manage(t, m, d, 2, "other", geom.Rect{Width: 100, Height: 100})
	m.HandleDestroyNotify(2)
	assert.Nil(t, m.FindClient(c2.Window))

	// Events for unknown windows are ignored.
	m.HandleEnterNotify(77)
	m.HandleExpose(77)
	m.HandlePropertyNotify(77, PropertyName)
}

func TestMapRequestManagesAndWarps(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	d.addWindow(5, WindowInfo{Geom: geom.Rect{X: 10, Y: 10, Width: 100, Height: 50}, Viewable: true})

	m.HandleMapRequest(5, 0)
	c := m.FindClient(5)
	require.NotNil(t, c)
	assert.Equal(t, warp{63, 38}, d.lastWarp())

	m.HandleMapRequest(6, 0)
	assert.Nil(t, m.FindClient(6))
}

func TestInvoke(t *testing.T) {
	m, d, sp := newTestManager(t, DefaultOptions(), nil)

	m.Invoke("firefox --new-window", Trigger{})
	assert.Equal(t, []string{"firefox --new-window"}, sp.spawned)

	m.Invoke("raise", Trigger{}) // no client: nothing happens

	m.Invoke("terminal", Trigger{})
	assert.Equal(t, "xterm", sp.spawned[len(sp.spawned)-1])

	c := manage(t, m, d, 1, "one", geom.Rect{X: 100, Y: 100, Width: 400, Height: 300})
	m.SetActive(c, true)

	m.Invoke("bigmoveright", Trigger{})
	assert.Equal(t, 110, c.Geom.X)

	m.Invoke("resizedown", Trigger{Window: 1})
	assert.Equal(t, 301, c.Geom.Height)
	assert.Equal(t, -1, c.PtrX)

	m.Invoke("movetogroup3", Trigger{Window: 1})
	assert.Equal(t, 3, c.Group)

	m.Invoke("hide", Trigger{Window: 1})
	assert.True(t, c.Hidden())

	d.ptrX, d.ptrY = 50, 50
	m.Invoke("ptrmoveup", Trigger{})
	assert.Equal(t, warp{50, 49}, d.lastWarp())

	m.Invoke("delete", Trigger{Window: 1})
	assert.Equal(t, []client.Window{1}, d.deleted)

	m.Invoke("restart", Trigger{})
	assert.True(t, d.stopped)
	assert.True(t, m.RestartRequested())
}

func TestSpawnFailureIsLogged(t *testing.T) {
	m, _, sp := newTestManager(t, DefaultOptions(), nil)
	sp.err = errors.New("no such file")

	m.Invoke("lock", Trigger{})
	assert.Equal(t, []string{"xlock"}, sp.spawned)
	assert.Error(t, m.Exec("anything"))
}

func TestActionNames(t *testing.T) {
	names := ActionNames()
	assert.IsIncreasing(t, names)
	for _, n := range []string{"window_move", "menu_cmd", "group9", "bigptrmoveleft", "exec_wm"} {
		assert.True(t, IsAction(n), n)
	}
	assert.False(t, IsAction("xterm"))
	assert.False(t, IsAction("group0"))
}

func TestPostAndDo(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)

	ran := 0
	m.Post(func() { ran++ })
	assert.Equal(t, 1, d.wakes)
	assert.Zero(t, ran)
	m.RunPosted()
	assert.Equal(t, 1, ran)
	m.RunPosted()
	assert.Equal(t, 1, ran)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, m.Do(ctx, func() {}), context.Canceled)
	m.RunPosted()
}

func TestDoWaitsForEventThread(t *testing.T) {
	m, _, _ := newTestManager(t, DefaultOptions(), nil)

	done := make(chan error, 1)
	var status Status
	go func() {
		done <- m.Do(context.Background(), func() { status = m.Status() })
	}()

	select {
	case err := <-done:
		t.Fatalf("Do returned before the work ran: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	require.Eventually(t, func() bool {
		m.RunPosted()
		select {
		case err := <-done:
			return err == nil
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, status.Screens)
}

func TestSearchMenuFocusesPick(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	manage(t, m, d, 1, "firefox", geom.Rect{Width: 100, Height: 100})
	c2 := manage(t, m, d, 2, "xterm", geom.Rect{X: 200, Y: 200, Width: 100, Height: 100})
	m.Hide(c2)

	d.menuFn = func(mn *menu.Menu) (menu.Outcome, *search.Entry) {
		assert.True(t, mn.HasPrompt())
		return typeKeys(mn, "xterm")
	}
	m.SearchMenu()

	assert.False(t, c2.Hidden())
	assert.Equal(t, warp{253, 253}, d.lastWarp())
}

func TestSearchMenuAbort(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	manage(t, m, d, 1, "firefox", geom.Rect{Width: 100, Height: 100})
	warps := len(d.warps)

	d.menuFn = func(mn *menu.Menu) (menu.Outcome, *search.Entry) {
		return mn.HandleKey(menu.Key{Ctl: menu.CtlAbort})
	}
	m.SearchMenu()
	assert.Len(t, d.warps, warps)
}

func TestApplicationAndCommandMenus(t *testing.T) {
	opts := DefaultOptions()
	opts.Commands = []Command{
		{Label: "term", Command: "xterm -bg black"},
		{Label: "browser", Command: "firefox"},
	}
	m, d, sp := newTestManager(t, opts, nil)

	d.menuFn = func(mn *menu.Menu) (menu.Outcome, *search.Entry) {
		return typeKeys(mn, "brow")
	}
	m.ApplicationMenu()
	assert.Equal(t, []string{"firefox"}, sp.spawned)

	d.menuFn = func(mn *menu.Menu) (menu.Outcome, *search.Entry) {
		assert.False(t, mn.HasPrompt())
		mn.Lines()
		require.Len(t, mn.Results(), 2)
		return menu.Done, mn.Results()[0]
	}
	m.CommandMenu(m.Screen(0))
	assert.Equal(t, []string{"firefox", "xterm -bg black"}, sp.spawned)
}

func TestExecMenu(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	m, d, sp := newTestManager(t, DefaultOptions(), nil)

	calls := 0
	d.menuFn = func(mn *menu.Menu) (menu.Outcome, *search.Entry) {
		calls++
		if calls == 1 {
			assert.True(t, mn.HasPrompt())
			for _, r := range "vim" {
				mn.HandleKey(menu.Key{Text: string(r)})
			}
			return menu.NeedPath, nil
		}
		assert.Equal(t, "vim", mn.Query())
		return menu.Done, &search.Entry{Text: "/tmp/notes.txt"}
	}
	m.ExecMenu(false)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []string{`vim "/tmp/notes.txt"`}, sp.spawned)

	d.menuFn = func(mn *menu.Menu) (menu.Outcome, *search.Entry) {
		return typeKeys(mn, "twm")
	}
	m.ExecMenu(true)
	assert.Equal(t, []string{"twm"}, sp.replaced)
}

func TestSSHMenu(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".ssh"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".ssh", "known_hosts"),
		[]byte("example.org ssh-ed25519 AAAA\nother.net,10.0.0.1 ssh-rsa AAAA\n"), 0o600))

	m, d, sp := newTestManager(t, DefaultOptions(), nil)
	d.menuFn = func(mn *menu.Menu) (menu.Outcome, *search.Entry) {
		return typeKeys(mn, "example.org")
	}
	m.SSHMenu()
	assert.Equal(t, []string{"xterm -e ssh example.org"}, sp.spawned)
}

func TestLabelMenu(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	c := manage(t, m, d, 1, "one", geom.Rect{Width: 100, Height: 100})

	d.menuFn = func(mn *menu.Menu) (menu.Outcome, *search.Entry) {
		return typeKeys(mn, "work")
	}
	m.Invoke("label", Trigger{Window: 1})
	assert.Equal(t, "work", c.Label)
	assert.Equal(t, "work", c.DisplayName())
}

func TestGroupAndUnhideMenus(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	sc := m.Screen(0)
	c := manage(t, m, d, 1, "one", geom.Rect{Width: 100, Height: 100})
	require.NoError(t, m.MoveToGroup(c, 2))
	require.NoError(t, m.HideToggle(sc, 2))

	d.menuFn = func(mn *menu.Menu) (menu.Outcome, *search.Entry) {
		lines := mn.Lines()
		assert.Equal(t, []string{"2: [two]"}, lines)
		return menu.Done, mn.Results()[0]
	}
	m.GroupMenu(sc)
	assert.False(t, c.Hidden())
	assert.Equal(t, 2, sc.ActiveGroup())

	m.Hide(c)
	d.menuFn = func(mn *menu.Menu) (menu.Outcome, *search.Entry) {
		mn.Lines()
		return menu.Done, mn.Results()[0]
	}
	m.UnhideMenu(sc)
	assert.False(t, c.Hidden())

	menus := len(d.menus)
	m.UnhideMenu(sc)
	assert.Len(t, d.menus, menus, "nothing hidden means no menu")
}

func TestStatusAndSearchClients(t *testing.T) {
	m, d, _ := newTestManager(t, DefaultOptions(), nil)
	manage(t, m, d, 1, "firefox", geom.Rect{Width: 100, Height: 100})
	c2 := manage(t, m, d, 2, "xterm", geom.Rect{X: 5, Y: 6, Width: 70, Height: 80})
	m.SetActive(c2, true)

	st := m.Status()
	assert.Equal(t, 2, st.Clients)
	assert.Equal(t, "xterm", st.Current)
	assert.Equal(t, 1, st.ActiveGroup)

	infos := m.Clients()
	require.Len(t, infos, 2)
	assert.Equal(t, ClientInfo{
		Window: 2, Name: "xterm", Class: "Test", Group: client.NoGroup,
		Current: true, X: 5, Y: 6, Width: 70, Height: 80,
	}, infos[1])

	results := m.SearchClients("fire")
	require.Len(t, results, 1)
	assert.Equal(t, uint32(1), results[0].Window)
	assert.NotEmpty(t, results[0].Print)
}
