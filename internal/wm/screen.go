package wm

import "github.com/1broseidon/quietwm/internal/geom"

// Region is one monitor of a screen.
type Region struct {
	Num  int
	View geom.Rect
	Work geom.Rect
}

// Screen is one managed display.
type Screen struct {
	Index    int
	View     geom.Rect
	WorkArea geom.Rect
	Regions  []Region

	groups     [NumGroups]Group
	groupNames []string
	active     int
	hideAll    bool

	// altPersist freezes the MRU order while a cycle is in progress.
	altPersist bool
}

func newScreen(index int) *Screen {
	sc := &Screen{Index: index}
	for i := range sc.groups {
		sc.groups[i].Shortcut = i
	}
	return sc
}

// UpdateGeometry re-reads the screen size and rebuilds its regions.
func (m *Manager) UpdateGeometry(sc *Screen) {
	sc.View = m.display.ScreenGeometry(sc.Index)
	sc.WorkArea = sc.View.Shrink(m.opts.Gap)

	heads := m.display.Heads(sc.Index)
	regions := make([]Region, 0, len(heads))
	for i, h := range heads {
		regions = append(regions, Region{
			Num:  i,
			View: h,
			Work: h.Shrink(m.opts.Gap),
		})
	}
	sc.Regions = regions

	m.logger.Debug("screen geometry updated",
		"screen", sc.Index,
		"view", sc.View,
		"regions", len(sc.Regions))
}

// FindRegionArea returns the area of the region strictly containing
// (x, y), or the whole screen when no region does. With applyGap the
// configured gaps are taken off.
func (m *Manager) FindRegionArea(sc *Screen, x, y int, applyGap bool) geom.Rect {
	area := sc.View
	for _, r := range sc.Regions {
		if r.View.ContainsStrict(x, y) {
			area = r.View
			break
		}
	}
	if applyGap {
		area = area.Shrink(m.opts.Gap)
	}
	return area
}

// UpdateStackingOrder numbers the visible clients of a screen bottom to
// top. Hidden clients keep their previous index.
func (m *Manager) UpdateStackingOrder(sc *Screen) {
	s := 0
	for _, w := range m.display.StackingOrder(sc.Index) {
		c := m.registry.Find(w)
		if c == nil || c.Hidden() {
			continue
		}
		c.StackingOrder = s
		s++
	}
}
