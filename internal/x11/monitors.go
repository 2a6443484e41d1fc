package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	xgbxinerama "github.com/BurntSushi/xgb/xinerama"
	"github.com/BurntSushi/xgbutil/xinerama"
	"github.com/BurntSushi/xgbutil/xrect"

	"github.com/1broseidon/quietwm/internal/geom"
)

// Monitor represents a physical display
type Monitor struct {
	ID   int
	Name string
	geom.Rect
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor

	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		outputName := fmt.Sprintf("Monitor%d", i)
		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			outputName = string(outputInfo.Name)
		}

		monitors = append(monitors, Monitor{
			ID:   i,
			Name: outputName,
			Rect: geom.Rect{
				X:      int(crtcInfo.X),
				Y:      int(crtcInfo.Y),
				Width:  int(crtcInfo.Width),
				Height: int(crtcInfo.Height),
			},
		})
	}

	return monitors, nil
}

// Heads returns the monitor rectangles, preferring RandR and falling back
// to Xinerama. Cloned outputs sharing an origin are reported once. An
// empty result means neither extension answered.
func (c *Connection) Heads() []geom.Rect {
	monitors, err := c.GetMonitors()
	if err == nil && len(monitors) > 0 {
		return uniqueOrigins(monitorRects(monitors))
	}
	if err != nil {
		c.logger.Debug("randr heads unavailable", "error", err)
	}

	if err := xgbxinerama.Init(c.XUtil.Conn()); err != nil {
		return nil
	}
	heads, err := xinerama.PhysicalHeads(c.XUtil)
	if err != nil {
		c.logger.Debug("xinerama heads unavailable", "error", err)
		return nil
	}
	return headRects(heads)
}

// WatchScreenChanges asks RandR for ScreenChangeNotify events on the root.
func (c *Connection) WatchScreenChanges() error {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return fmt.Errorf("randr init failed: %w", err)
	}
	return randr.SelectInputChecked(c.XUtil.Conn(), c.Root, randr.NotifyMaskScreenChange).Check()
}

func monitorRects(monitors []Monitor) []geom.Rect {
	out := make([]geom.Rect, 0, len(monitors))
	for _, m := range monitors {
		out = append(out, m.Rect)
	}
	return out
}

func headRects(heads []xrect.Rect) []geom.Rect {
	out := make([]geom.Rect, 0, len(heads))
	for _, h := range heads {
		x, y, w, hh := xrect.Pieces(h)
		out = append(out, geom.Rect{X: x, Y: y, Width: w, Height: hh})
	}
	return out
}

func uniqueOrigins(rects []geom.Rect) []geom.Rect {
	out := make([]geom.Rect, 0, len(rects))
outer:
	for _, r := range rects {
		for _, seen := range out {
			if seen.X == r.X && seen.Y == r.Y {
				continue outer
			}
		}
		out = append(out, r)
	}
	return out
}
