// Package directions supplies the unsafe directions and margins the threat
// scorer consumes: from YAML files, from an axis-aligned basis, or from a
// remote margin service over gRPC.
package directions

import (
	"context"
	"strconv"

	"github.com/danielpatrickdp/pixelthreat/internal/faults"
	"github.com/danielpatrickdp/pixelthreat/internal/threat"
)

// Source yields the direction set for perturbation vectors of length dim.
type Source interface {
	Directions(ctx context.Context, dim int) ([]threat.Direction, error)
}

// Static is a fixed in-memory direction set.
type Static []threat.Direction

// Directions returns the set, or KindDimensionMismatch if any vector is not dim long.
func (s Static) Directions(_ context.Context, dim int) ([]threat.Direction, error) {
	if err := checkDimension("directions.static", s, dim); err != nil {
		return nil, err
	}
	return []threat.Direction(s), nil
}

// Basis returns axis-aligned unit directions e_0..e_{n-1} in dim dimensions,
// one per margin.
func Basis(dim int, margins []float64) ([]threat.Direction, error) {
	if len(margins) > dim {
		return nil, faults.New("directions.basis", faults.KindDimensionMismatch,
			"%d margins for %d dimensions", len(margins), dim)
	}
	dirs := make([]threat.Direction, len(margins))
	for i, g := range margins {
		v := make([]float64, dim)
		v[i] = 1
		dirs[i] = threat.Direction{Name: basisName(i), Vector: v, Margin: g}
	}
	return dirs, nil
}

func basisName(i int) string {
	return "e" + strconv.Itoa(i)
}

func checkDimension(op string, dirs []threat.Direction, dim int) error {
	if dim <= 0 {
		return nil
	}
	for i, d := range dirs {
		if len(d.Vector) != dim {
			return faults.New(op, faults.KindDimensionMismatch,
				"direction %d (%s) has %d components, want %d", i, d.Name, len(d.Vector), dim)
		}
	}
	return nil
}
