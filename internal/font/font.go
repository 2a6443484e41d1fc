// Package font measures and draws the text shown in menus and the resize
// readout.
package font

import (
	"image"
	"image/color"
	"image/draw"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Face wraps a font face with the handful of metrics the manager needs.
type Face struct {
	face xfont.Face
}

// Default returns the built-in 7x13 bitmap face.
func Default() *Face {
	return New(basicfont.Face7x13)
}

// New wraps an arbitrary face.
func New(face xfont.Face) *Face {
	return &Face{face: face}
}

// Measure returns the advance width of s in pixels.
func (f *Face) Measure(s string) int {
	return xfont.MeasureString(f.face, s).Ceil()
}

// Ascent is the distance from the top of a line to its baseline.
func (f *Face) Ascent() int {
	return f.face.Metrics().Ascent.Ceil()
}

// Height is the height of one line of text.
func (f *Face) Height() int {
	m := f.face.Metrics()
	return (m.Ascent + m.Descent).Ceil()
}

// Draw renders s onto dst with the top-left of the line at (x, y).
func (f *Face) Draw(dst draw.Image, s string, c color.Color, x, y int) {
	d := &xfont.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: f.face,
		Dot:  fixed.P(x, y+f.Ascent()),
	}
	d.DrawString(s)
}
