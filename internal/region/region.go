// Package region selects the clipped, centred square that perturbations are confined to.
package region

import (
	"fmt"
	"image"

	"github.com/danielpatrickdp/pixelthreat/internal/faults"
)

// #region types

// Region is an axis-aligned box [StartX, EndX) × [StartY, EndY).
// A Region built by SelectCentered always lies inside its image.
type Region struct {
	StartX int `json:"start_x"`
	StartY int `json:"start_y"`
	EndX   int `json:"end_x"`
	EndY   int `json:"end_y"`
}

// Width returns EndX - StartX.
func (r Region) Width() int { return r.EndX - r.StartX }

// Height returns EndY - StartY.
func (r Region) Height() int { return r.EndY - r.StartY }

// PixelCount returns the number of pixels covered by the region.
func (r Region) PixelCount() int {
	if r.Empty() {
		return 0
	}
	return r.Width() * r.Height()
}

// Empty reports whether the region covers no pixels.
func (r Region) Empty() bool { return r.EndX <= r.StartX || r.EndY <= r.StartY }

// Contains reports whether (x, y) lies inside the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.StartX && x < r.EndX && y >= r.StartY && y < r.EndY
}

// Within reports whether the region is non-empty and fits a height×width image.
func (r Region) Within(height, width int) bool {
	return !r.Empty() && r.StartX >= 0 && r.StartY >= 0 && r.EndX <= width && r.EndY <= height
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.StartX, r.StartY, r.EndX, r.EndY)
}

func (r Region) String() string {
	return fmt.Sprintf("(%d, %d)-(%d, %d) %dx%d", r.StartX, r.StartY, r.EndX, r.EndY, r.Width(), r.Height())
}

// #endregion types

// #region select

// SelectCentered returns a square of side size centred on (height/2, width/2).
// Each edge is clipped independently to the image, so an oversized square
// degenerates to the full extent on that axis. size must be positive.
func SelectCentered(height, width, size int) (Region, error) {
	if height <= 0 || width <= 0 {
		return Region{}, faults.New("region.SelectCentered", faults.KindInvalidRegionSize,
			"image has no pixels (%dx%d)", width, height)
	}
	if size <= 0 {
		return Region{}, faults.New("region.SelectCentered", faults.KindInvalidRegionSize,
			"size must be positive, got %d", size)
	}

	cy, cx := height/2, width/2
	half := size / 2

	y0 := cy - half
	x0 := cx - half
	return Region{
		StartX: clip(x0, width),
		StartY: clip(y0, height),
		EndX:   clip(x0+size, width),
		EndY:   clip(y0+size, height),
	}, nil
}

// clip bounds v to [0, limit].
func clip(v, limit int) int {
	if v < 0 {
		return 0
	}
	if v > limit {
		return limit
	}
	return v
}

// #endregion select
