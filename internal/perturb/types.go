package perturb

import (
	"math/rand/v2"
)

// #region modified-pixel

// ModifiedPixel records one perturbation attempt: the sampled coordinate and the
// signed delta applied to all three channels.
type ModifiedPixel struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Delta int `json:"delta"`
}

// Set is the ordered list of attempts, in generation order. The same (X, Y)
// may appear more than once.
type Set []ModifiedPixel

// Unique returns the number of distinct coordinates in s.
func (s Set) Unique() int {
	seen := make(map[[2]int]struct{}, len(s))
	for _, p := range s {
		seen[[2]int{p.X, p.Y}] = struct{}{}
	}
	return len(seen)
}

// #endregion modified-pixel

// #region options

// MaxIntensity is the largest accepted magnitude. A delta of 255 already
// saturates any channel value.
const MaxIntensity = 255

// IntensityRange bounds the magnitude drawn for each attempt, inclusive on both ends.
type IntensityRange struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// Options configures a perturbation run.
type Options struct {
	Fraction  float64        `json:"fraction"` // share of region pixels to attempt, in [0,1]
	Intensity IntensityRange `json:"intensity"`
}

// DefaultOptions returns 30% of the region with magnitudes in [0,10].
func DefaultOptions() Options {
	return Options{
		Fraction:  0.30,
		Intensity: IntensityRange{Lo: 0, Hi: 10},
	}
}

// #endregion options

// #region source

// Source is the random source the engine draws from. IntN returns a uniform
// integer in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// NewSource returns a deterministic PCG-backed source for seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// #endregion source
