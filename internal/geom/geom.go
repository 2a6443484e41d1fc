// Package geom holds the rectangle arithmetic shared by the screen model,
// client placement and the interactive move loop.
package geom

// Rect is an axis-aligned rectangle in root window coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Gaps are the reserved margins subtracted from a view to form a work area.
type Gaps struct {
	Top    int
	Bottom int
	Left   int
	Right  int
}

// Right returns the first x coordinate past the rectangle.
func (r Rect) Right() int { return r.X + r.Width }

// Bottom returns the first y coordinate past the rectangle.
func (r Rect) Bottom() int { return r.Y + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Shrink returns r with each edge pulled in by the matching gap.
func (r Rect) Shrink(g Gaps) Rect {
	return Rect{
		X:      r.X + g.Left,
		Y:      r.Y + g.Top,
		Width:  r.Width - (g.Left + g.Right),
		Height: r.Height - (g.Top + g.Bottom),
	}
}

// ContainsStrict reports whether (x, y) lies strictly inside r. Points on
// an edge are outside, which is how monitor lookup has always behaved.
func (r Rect) ContainsStrict(x, y int) bool {
	return x > r.X && x < r.Right() &&
		y > r.Y && y < r.Bottom()
}

// Contains reports whether (x, y) lies inside r, including the top and left
// edges.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() &&
		y >= r.Y && y < r.Bottom()
}

// Intersects reports whether two rectangles overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() &&
		r.Right() > o.X &&
		r.Y < o.Bottom() &&
		r.Bottom() > o.Y
}

// SnapCalc returns the signed adjustment that aligns a window span
// [n0, n1) with the edge of an area that starts at e0 and is length long.
// Either edge snaps when it is within dist pixels; when both are in range
// the closer one wins. Zero means no snap.
func SnapCalc(n0, n1, e0, length, dist int) int {
	e1 := e0 + length

	var s0, s1 int
	if abs(e0-n0) <= dist {
		s0 = e0 - n0
	}
	if abs(e1-n1) <= dist {
		s1 = e1 - n1
	}

	switch {
	case s0 != 0 && s1 != 0:
		if abs(s0) < abs(s1) {
			return s0
		}
		return s1
	case s0 != 0:
		return s0
	default:
		return s1
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
