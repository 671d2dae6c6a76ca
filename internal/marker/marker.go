// Package marker paints perturbed pixels in a solid colour for inspection.
package marker

import (
	"fmt"
	"image/color"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/danielpatrickdp/pixelthreat/internal/faults"
	"github.com/danielpatrickdp/pixelthreat/internal/perturb"
	"github.com/danielpatrickdp/pixelthreat/internal/raster"
)

// #region palette

// Named marker colours.
var (
	Red     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Blue    = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// DefaultColor is pure red.
var DefaultColor = Red

var palette = map[string]color.RGBA{
	"red":     Red,
	"green":   Green,
	"blue":    Blue,
	"yellow":  Yellow,
	"cyan":    Cyan,
	"magenta": Magenta,
	"white":   White,
	"black":   Black,
}

// ParseColor accepts a palette name or a #rrggbb / #rgb hex string.
func ParseColor(s string) (color.RGBA, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return DefaultColor, nil
	}
	if c, ok := palette[key]; ok {
		return c, nil
	}
	c, err := colorful.Hex(key)
	if err != nil {
		return color.RGBA{}, faults.Wrap("marker.ParseColor", faults.KindInvalidConfig,
			fmt.Errorf("colour %q: %w", s, err))
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Hex formats c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// #endregion palette

// #region mark

// Mark returns a copy of img in which every distinct coordinate in set is
// overwritten with c on all channels, and the number of pixels painted.
// Duplicate coordinates collapse to a single mark; records outside img are skipped.
func Mark(img *raster.Image, set perturb.Set, c color.RGBA) (*raster.Image, int) {
	out := img.Clone()
	rgb := [3]uint8{c.R, c.G, c.B}
	seen := make(map[[2]int]struct{}, len(set))
	for _, p := range set {
		key := [2]int{p.X, p.Y}
		if _, ok := seen[key]; ok {
			continue
		}
		if !out.InBounds(p.X, p.Y) {
			continue
		}
		seen[key] = struct{}{}
		out.Set(p.X, p.Y, rgb)
	}
	return out, len(seen)
}

// #endregion mark
