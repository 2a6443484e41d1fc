package platform

import (
	"image/color"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"

	"github.com/1broseidon/quietwm/internal/geom"
	"github.com/1broseidon/quietwm/internal/pointer"
	"github.com/1broseidon/quietwm/internal/wm"
)

func TestPointerEvent(t *testing.T) {
	ev, ok := pointerEvent(xproto.MotionNotifyEvent{RootX: 10, RootY: 20, Time: 99})
	assert.True(t, ok)
	assert.Equal(t, pointer.Event{Kind: pointer.EventMotion, RootX: 10, RootY: 20, Time: 99}, ev)

	ev, ok = pointerEvent(xproto.ButtonReleaseEvent{RootX: 3, RootY: 4, Time: 7})
	assert.True(t, ok)
	assert.Equal(t, pointer.EventButtonRelease, ev.Kind)
	assert.Equal(t, 3, ev.RootX)

	ev, ok = pointerEvent(xproto.ExposeEvent{})
	assert.True(t, ok)
	assert.Equal(t, pointer.EventExpose, ev.Kind)

	_, ok = pointerEvent(xproto.KeyPressEvent{})
	assert.False(t, ok)
}

func TestPlaceMenu(t *testing.T) {
	area := geom.Rect{X: 0, Y: 0, Width: 1000, Height: 800}

	tests := []struct {
		name   string
		px, py int
		wantX  int
		wantY  int
	}{
		{"fits at pointer", 100, 100, 100, 100},
		{"overflows right", 950, 100, 800, 100},
		{"overflows bottom", 100, 790, 100, 700},
		{"overflows both", 990, 790, 800, 700},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := placeMenu(tt.px, tt.py, 200, 100, area)
			assert.Equal(t, tt.wantX, x)
			assert.Equal(t, tt.wantY, y)
		})
	}
}

func TestPlaceMenuLargerThanArea(t *testing.T) {
	area := geom.Rect{X: 50, Y: 50, Width: 100, Height: 100}
	x, y := placeMenu(60, 60, 300, 300, area)
	assert.Equal(t, 50, x)
	assert.Equal(t, 50, y)
}

func TestHeadAt(t *testing.T) {
	screen := geom.Rect{Width: 3840, Height: 1080}
	heads := []geom.Rect{
		{X: 0, Y: 0, Width: 1920, Height: 1080},
		{X: 1920, Y: 0, Width: 1920, Height: 1080},
	}
	assert.Equal(t, heads[1], headAt(heads, screen, 2000, 10))
	assert.Equal(t, heads[0], headAt(heads, screen, 5, 5))
	assert.Equal(t, screen, headAt(nil, screen, 5, 5))
}

func TestConfigureRequest(t *testing.T) {
	req := configureRequest(xproto.ConfigureRequestEvent{
		Window:    42,
		X:         10,
		Width:     300,
		ValueMask: xproto.ConfigWindowX | xproto.ConfigWindowWidth,
	})
	assert.Equal(t, wm.ConfigureX|wm.ConfigureWidth, req.Fields)
	assert.Equal(t, 10, req.X)
	assert.Equal(t, 300, req.Width)
	assert.EqualValues(t, 42, req.Window)
}

func TestMenuPaletteFollowsColors(t *testing.T) {
	c := DefaultColors()
	c.MenuBackground = color.RGBA{R: 1, A: 0xff}
	c.MenuSelection = color.RGBA{B: 2, A: 0xff}
	c.MenuBorder = 0x123456

	p := menuPalette(c)
	assert.Equal(t, c.MenuBackground, p.Background)
	assert.Equal(t, c.MenuForeground, p.Foreground)
	assert.Equal(t, c.MenuSelection, p.Selection)
	assert.Equal(t, uint32(0x123456), p.Border)
}

func TestDefaultColors(t *testing.T) {
	c := DefaultColors()
	assert.Equal(t, uint32(0xcccccc), c.Borders[wm.ColorActive])
	assert.Equal(t, uint32(0x666666), c.Borders[wm.ColorInactive])
	assert.Len(t, c.Borders, 4)
}

func TestUnmapLedger(t *testing.T) {
	l := make(unmapLedger)

	l.expect(1, true)
	l.expect(1, false)
	l.expect(2, false)
	assert.True(t, l.swallow(1))
	assert.False(t, l.swallow(1), "only viewable unmaps are expected")
	assert.False(t, l.swallow(2))
	assert.Empty(t, l)

	l.expect(3, true)
	l.expect(3, true)
	l.forget(3)
	assert.False(t, l.swallow(3))
}
