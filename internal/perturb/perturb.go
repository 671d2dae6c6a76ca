// Package perturb applies region-bounded random intensity changes to an image.
package perturb

import (
	"math"

	"github.com/danielpatrickdp/pixelthreat/internal/faults"
	"github.com/danielpatrickdp/pixelthreat/internal/raster"
	"github.com/danielpatrickdp/pixelthreat/internal/region"
)

// #region validate

// Validate checks o against the engine's preconditions: fraction in [0,1]
// and 0 <= Lo <= Hi <= MaxIntensity.
func (o Options) Validate() error {
	if math.IsNaN(o.Fraction) || o.Fraction < 0 || o.Fraction > 1 {
		return faults.New("perturb.Options", faults.KindInvalidOptions,
			"fraction must be within [0,1], got %v", o.Fraction)
	}
	if o.Intensity.Lo < 0 {
		return faults.New("perturb.Options", faults.KindInvalidOptions,
			"intensity lower bound must be >= 0, got %d", o.Intensity.Lo)
	}
	if o.Intensity.Hi < o.Intensity.Lo {
		return faults.New("perturb.Options", faults.KindInvalidOptions,
			"intensity range [%d,%d] is inverted", o.Intensity.Lo, o.Intensity.Hi)
	}
	if o.Intensity.Hi > MaxIntensity {
		return faults.New("perturb.Options", faults.KindInvalidOptions,
			"intensity upper bound must be <= %d, got %d", MaxIntensity, o.Intensity.Hi)
	}
	return nil
}

// Count returns floor(pixels * fraction), the number of attempts for a region
// of the given size.
func (o Options) Count(pixels int) int {
	return int(math.Floor(float64(pixels) * o.Fraction))
}

// #endregion validate

// #region perturb

// Perturb returns a modified copy of img and the ordered list of attempts.
//
// Each attempt samples a coordinate uniformly from r with replacement, draws a
// magnitude uniformly from the intensity range and a uniform sign, then adds the
// signed delta to every channel of the pixel's current value and clamps to [0,255].
// img is never written to.
func Perturb(img *raster.Image, r region.Region, opts Options, rng Source) (*raster.Image, Set, error) {
	if img == nil {
		return nil, nil, faults.New("perturb.Perturb", faults.KindInvalidOptions, "nil image")
	}
	if rng == nil {
		return nil, nil, faults.New("perturb.Perturb", faults.KindInvalidOptions, "nil random source")
	}
	if err := opts.Validate(); err != nil {
		return nil, nil, err
	}
	if !r.Within(img.Height, img.Width) {
		return nil, nil, faults.New("perturb.Perturb", faults.KindInvalidOptions,
			"region %v outside %dx%d image", r, img.Width, img.Height)
	}

	out := img.Clone()
	count := opts.Count(r.PixelCount())
	if count == 0 {
		return out, Set{}, nil
	}

	set := make(Set, 0, count)
	w, h := r.Width(), r.Height()
	span := opts.Intensity.Hi - opts.Intensity.Lo + 1

	for i := 0; i < count; i++ {
		x := r.StartX + rng.IntN(w)
		y := r.StartY + rng.IntN(h)

		delta := opts.Intensity.Lo + rng.IntN(span)
		if rng.IntN(2) == 1 {
			delta = -delta
		}

		off := out.Offset(x, y)
		for c := 0; c < raster.Channels; c++ {
			out.Pix[off+c] = clamp(int(out.Pix[off+c]) + delta)
		}

		set = append(set, ModifiedPixel{X: x, Y: y, Delta: delta})
	}

	return out, set, nil
}

// clamp bounds v to the valid 8-bit intensity range.
func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// #endregion perturb
