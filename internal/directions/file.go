package directions

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/pixelthreat/internal/faults"
	"github.com/danielpatrickdp/pixelthreat/internal/threat"
)

// #region yaml

type fileDTO struct {
	Dimension  int            `yaml:"dimension"`
	Normalize  bool           `yaml:"normalize"`
	Directions []directionDTO `yaml:"directions"`
}

type directionDTO struct {
	Name       string          `yaml:"name"`
	Margin     float64         `yaml:"margin"`
	Vector     []float64       `yaml:"vector"`
	Components map[int]float64 `yaml:"components"`
}

// #endregion yaml

// File is a parsed direction file.
type File struct {
	Dimension  int
	Directions []threat.Direction
}

// LoadFile reads a YAML direction file. Each direction carries either a
// dense vector or sparse components keyed by index; sparse entries need
// the top-level dimension. With normalize set every vector is scaled to
// unit length.
func LoadFile(path string) (File, error) {
	const op = "directions.load_file"

	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return File{}, &faults.Error{Op: op, Kind: faults.KindNotFound, Path: path, Err: err}
		}
		return File{}, &faults.Error{Op: op, Kind: faults.KindInvalidConfig, Path: path, Err: err}
	}

	var dto fileDTO
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return File{}, &faults.Error{Op: op, Kind: faults.KindInvalidConfig, Path: path, Err: err}
	}

	f, err := dto.toFile()
	if err != nil {
		var fe *faults.Error
		if errors.As(err, &fe) && fe.Path == "" {
			fe.Path = path
		}
		return File{}, err
	}
	return f, nil
}

func (dto fileDTO) toFile() (File, error) {
	const op = "directions.load_file"

	if len(dto.Directions) == 0 {
		return File{}, faults.New(op, faults.KindEmptyDirectionSet, "no directions listed")
	}
	if dto.Dimension < 0 {
		return File{}, faults.New(op, faults.KindInvalidDirection, "dimension %d is negative", dto.Dimension)
	}

	dim := dto.Dimension
	if dim == 0 {
		for _, d := range dto.Directions {
			if len(d.Vector) > 0 {
				dim = len(d.Vector)
				break
			}
		}
	}
	if dim == 0 {
		return File{}, faults.New(op, faults.KindInvalidDirection, "dimension unset and no dense vector to infer it from")
	}

	dirs := make([]threat.Direction, 0, len(dto.Directions))
	for i, d := range dto.Directions {
		name := d.Name
		if name == "" {
			name = fmt.Sprintf("d%d", i)
		}
		v, err := d.vector(dim)
		if err != nil {
			return File{}, faults.New(op, faults.KindInvalidDirection, "direction %s: %v", name, err)
		}
		dirs = append(dirs, threat.Direction{Name: name, Vector: v, Margin: d.Margin})
	}

	if err := checkDimension(op, dirs, dim); err != nil {
		return File{}, err
	}
	if dto.Normalize {
		var err error
		if dirs, err = threat.Normalize(dirs); err != nil {
			return File{}, err
		}
	}
	return File{Dimension: dim, Directions: dirs}, nil
}

func (d directionDTO) vector(dim int) ([]float64, error) {
	switch {
	case len(d.Vector) > 0 && len(d.Components) > 0:
		return nil, errors.New("both vector and components given")
	case len(d.Vector) > 0:
		if len(d.Vector) != dim {
			return nil, fmt.Errorf("vector has %d components, want %d", len(d.Vector), dim)
		}
		for i, x := range d.Vector {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("component %d is %v", i, x)
			}
		}
		return append([]float64(nil), d.Vector...), nil
	case len(d.Components) > 0:
		v := make([]float64, dim)
		for idx, x := range d.Components {
			if idx < 0 || idx >= dim {
				return nil, fmt.Errorf("component index %d outside [0,%d)", idx, dim)
			}
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("component %d is %v", idx, x)
			}
			v[idx] = x
		}
		return v, nil
	default:
		return nil, errors.New("neither vector nor components given")
	}
}

// FileSource loads directions from a YAML file on every call.
type FileSource struct {
	Path string
}

// Directions implements Source.
func (s FileSource) Directions(_ context.Context, dim int) ([]threat.Direction, error) {
	f, err := LoadFile(s.Path)
	if err != nil {
		return nil, err
	}
	if err := checkDimension("directions.file", f.Directions, dim); err != nil {
		return nil, err
	}
	return f.Directions, nil
}
