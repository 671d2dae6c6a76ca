// Package threat scores a perturbation against a set of unsafe directions.
//
// The score is a linearised proxy for how far a perturbation pushes a model
// toward its nearest unsafe boundary: for each direction u with margin g the
// ratio dot(delta, u)/g is computed, and the score is the largest ratio.
package threat

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/danielpatrickdp/pixelthreat/internal/faults"
)

// #region score

// Score projects v onto every direction and returns the maximum of
// projection/margin.
//
// The maximum is taken over signed ratios, not absolute values: margins are
// one-sided, so moving away from a boundary (negative projection) never
// dominates a direction that approaches one.
//
// It fails with KindEmptyDirectionSet when dirs is empty, KindDimensionMismatch
// when a vector length differs from len(v), KindInvalidDistance when a margin
// is not a finite positive number, KindInvalidOptions when v has a NaN or
// infinite component and KindInvalidDirection when a direction does. All
// checks run before any division. A projection that overflows fails with
// KindInvalidOptions, so every returned ratio is finite.
func Score(v []float64, dirs []Direction) (Assessment, error) {
	if err := validate(v, dirs); err != nil {
		return Assessment{}, err
	}

	a := Assessment{
		Ratios: make([]float64, len(dirs)),
	}
	for i, d := range dirs {
		ratio := floats.Dot(v, d.Vector) / d.Margin
		if !isFinite(ratio) {
			return Assessment{}, faults.New("threat.Score", faults.KindInvalidOptions,
				"projection onto direction %d (%s) is not finite", i, d.Name)
		}
		a.Ratios[i] = ratio
		if i == 0 || ratio > a.Score {
			a.Score = ratio
			a.Worst = i
		}
	}
	a.WorstName = dirs[a.Worst].Name
	return a, nil
}

func validate(v []float64, dirs []Direction) error {
	if len(dirs) == 0 {
		return faults.New("threat.Score", faults.KindEmptyDirectionSet, "no unsafe directions supplied")
	}
	if j := firstNonFinite(v); j >= 0 {
		return faults.New("threat.Score", faults.KindInvalidOptions,
			"perturbation component %d is %v", j, v[j])
	}
	for i, d := range dirs {
		if len(d.Vector) != len(v) {
			return faults.New("threat.Score", faults.KindDimensionMismatch,
				"direction %d (%s) has %d components, perturbation has %d", i, d.Name, len(d.Vector), len(v))
		}
		if !(d.Margin > 0) || math.IsInf(d.Margin, 1) {
			return faults.New("threat.Score", faults.KindInvalidDistance,
				"direction %d (%s) margin %v must be finite and > 0", i, d.Name, d.Margin)
		}
		if j := firstNonFinite(d.Vector); j >= 0 {
			return faults.New("threat.Score", faults.KindInvalidDirection,
				"direction %d (%s) component %d is %v", i, d.Name, j, d.Vector[j])
		}
	}
	return nil
}

func isFinite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }

// firstNonFinite returns the index of the first NaN or infinite element, or -1.
func firstNonFinite(xs []float64) int {
	for i, x := range xs {
		if !isFinite(x) {
			return i
		}
	}
	return -1
}

// #endregion score

// #region normalize

// Normalize returns copies of dirs rescaled to unit L2 norm. Margins and names
// are kept. A zero or non-finite vector fails with KindInvalidDirection.
func Normalize(dirs []Direction) ([]Direction, error) {
	out := make([]Direction, len(dirs))
	for i, d := range dirs {
		norm := floats.Norm(d.Vector, 2)
		if norm == 0 || !isFinite(norm) {
			return nil, faults.New("threat.Normalize", faults.KindInvalidDirection,
				"direction %d (%s) has norm %v", i, d.Name, norm)
		}
		vec := make([]float64, len(d.Vector))
		for j, x := range d.Vector {
			vec[j] = x / norm
		}
		out[i] = Direction{Name: d.Name, Vector: vec, Margin: d.Margin}
	}
	return out, nil
}

// IsUnit reports whether d's vector has unit L2 norm within tol.
func IsUnit(d Direction, tol float64) bool {
	return math.Abs(floats.Norm(d.Vector, 2)-1) <= tol
}

// #endregion normalize
