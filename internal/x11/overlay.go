package x11

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xgraphics"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/quietwm/internal/font"
)

// Palette is the set of colors an overlay draws with.
type Palette struct {
	Background color.RGBA
	Foreground color.RGBA
	Selection  color.RGBA
	Border     uint32
}

// Overlay is an override-redirect window that shows lines of text. It
// backs both the resize readout and the menus.
type Overlay struct {
	conn    *Connection
	win     *xwindow.Window
	face    *font.Face
	palette Palette
	border  int
	mapped  bool

	lines     []string
	highlight int
	geom      image.Rectangle
}

// NewOverlay creates an unmapped overlay window.
func (c *Connection) NewOverlay(face *font.Face, palette Palette, border int) (*Overlay, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate overlay window: %w", err)
	}
	if err := win.CreateChecked(c.Root, 0, 0, 1, 1,
		xproto.CwBackPixel|xproto.CwBorderPixel|xproto.CwOverrideRedirect|xproto.CwEventMask,
		rgbPixel(palette.Background), palette.Border, 1,
		xproto.EventMaskExposure|xproto.EventMaskPointerMotion|
			xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease); err != nil {
		return nil, fmt.Errorf("failed to create overlay window: %w", err)
	}
	xproto.ConfigureWindow(c.XUtil.Conn(), win.Id,
		xproto.ConfigWindowBorderWidth, []uint32{uint32(border)})

	return &Overlay{
		conn:      c,
		win:       win,
		face:      face,
		palette:   palette,
		border:    border,
		highlight: -1,
	}, nil
}

// SetPalette recolors the window and repaints it if mapped.
func (o *Overlay) SetPalette(p Palette) {
	o.palette = p
	o.win.Change(xproto.CwBackPixel|xproto.CwBorderPixel, rgbPixel(p.Background), p.Border)
	o.Redraw()
}

// ID returns the overlay's window.
func (o *Overlay) ID() xproto.Window { return o.win.Id }

// RowHeight is the height of one line.
func (o *Overlay) RowHeight() int { return o.face.Height() }

// Size returns the pixel size lines need.
func (o *Overlay) Size(lines []string) (int, int) {
	w := 1
	for _, l := range lines {
		w = max(w, o.face.Measure(l))
	}
	return w, max(1, len(lines)*o.face.Height())
}

// Show places the overlay with its top-left corner at (x, y), draws lines
// and maps it on top. Row highlight, when in range, is drawn inverted.
func (o *Overlay) Show(x, y int, lines []string, highlight int) {
	w, h := o.Size(lines)
	o.lines = append(o.lines[:0], lines...)
	o.highlight = highlight
	o.geom = image.Rect(x, y, x+w, y+h)

	o.win.MoveResize(x, y, w, h)
	if !o.mapped {
		o.win.Map()
		o.mapped = true
	}
	o.win.Stack(xproto.StackModeAbove)
	o.Redraw()
}

// Geometry returns the overlay's last placement in root coordinates.
func (o *Overlay) Geometry() image.Rectangle { return o.geom }

// Redraw repaints the current lines.
func (o *Overlay) Redraw() {
	if !o.mapped || o.geom.Empty() {
		return
	}
	w, h := o.geom.Dx(), o.geom.Dy()
	img := xgraphics.New(o.conn.XUtil, image.Rect(0, 0, w, h))
	defer img.Destroy()

	o.paint(img, w)

	if err := img.XSurfaceSet(o.win.Id); err != nil {
		return
	}
	img.XDraw()
	img.XPaint(o.win.Id)
}

func (o *Overlay) paint(dst draw.Image, width int) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(o.palette.Background), image.Point{}, draw.Src)
	row := o.face.Height()
	for i, line := range o.lines {
		fg := o.palette.Foreground
		if i == o.highlight {
			band := image.Rect(0, i*row, width, (i+1)*row)
			draw.Draw(dst, band, image.NewUniform(o.palette.Selection), image.Point{}, draw.Src)
			fg = o.palette.Background
		}
		o.face.Draw(dst, line, fg, 0, i*row)
	}
}

// Hide unmaps the overlay.
func (o *Overlay) Hide() {
	if o.mapped {
		o.win.Unmap()
		o.mapped = false
	}
}

// Destroy releases the window.
func (o *Overlay) Destroy() {
	o.win.Destroy()
}
