package x11

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseColor parses a "#rrggbb" or "#rgb" color.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q: want #rrggbb", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Pixel converts a parsed color to a pixel value for a 24-bit TrueColor
// visual.
func Pixel(s string) (uint32, error) {
	c, err := ParseColor(s)
	if err != nil {
		return 0, err
	}
	return rgbPixel(c), nil
}

func rgbPixel(c color.RGBA) uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}
