// Package config loads pixelthreat settings from YAML.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/pixelthreat/internal/faults"
	"github.com/danielpatrickdp/pixelthreat/internal/marker"
	"github.com/danielpatrickdp/pixelthreat/internal/perturb"
)

// EnvDB overrides Store.Path when set.
const EnvDB = "PIXELTHREAT_DB"

// #region types

// Config holds runtime settings for the perturbation pipeline, the threat gate,
// the run store and logging.
type Config struct {
	Region  RegionConfig
	Perturb PerturbConfig
	Marker  MarkerConfig
	Threat  ThreatConfig
	Store   StoreConfig
	Logging LoggingConfig
}

// RegionConfig sets the side of the centred square.
type RegionConfig struct {
	Size int
}

// PerturbConfig sets the attempt fraction, magnitude range and seed.
type PerturbConfig struct {
	Fraction     float64
	IntensityMin int
	IntensityMax int
	Seed         uint64
}

// MarkerConfig holds the visualization colour, a palette name or hex string.
type MarkerConfig struct {
	Color string
}

// ThreatConfig sets the gate threshold and whether directions are normalized.
type ThreatConfig struct {
	Threshold float64
	Normalize bool
}

// StoreConfig locates the SQLite run store.
type StoreConfig struct {
	Path string
}

// LoggingConfig sets the log directory and verbosity.
type LoggingConfig struct {
	Dir   string
	Debug bool
}

// DefaultConfig returns the documented defaults: a 50px region, 30% of its
// pixels, magnitudes in [0,10], red markers and a unit threat threshold.
func DefaultConfig() Config {
	return Config{
		Region: RegionConfig{Size: 50},
		Perturb: PerturbConfig{
			Fraction:     0.30,
			IntensityMin: 0,
			IntensityMax: 10,
			Seed:         42,
		},
		Marker:  MarkerConfig{Color: "#ff0000"},
		Threat:  ThreatConfig{Threshold: 1.0},
		Store:   StoreConfig{Path: "pixelthreat.db"},
		Logging: LoggingConfig{Dir: ".pixelthreat/logs"},
	}
}

// #endregion types

// #region load

// Load reads path over DefaultConfig. A missing file yields the defaults.
// PIXELTHREAT_DB, when set, replaces Store.Path.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, &faults.Error{Op: "config.load", Kind: faults.KindInvalidConfig, Path: path, Err: err}
		default:
			var dto yamlConfig
			if err := yaml.Unmarshal(b, &dto); err != nil {
				return cfg, &faults.Error{Op: "config.load", Kind: faults.KindInvalidConfig, Path: path, Err: err}
			}
			if err := dto.apply(&cfg); err != nil {
				return cfg, &faults.Error{Op: "config.load", Kind: faults.KindInvalidConfig, Path: path, Err: err}
			}
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvDB)); v != "" {
		cfg.Store.Path = v
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// #endregion load

// #region validate

// Validate rejects values the pipeline cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Region.Size <= 0:
		return invalidField("region.size", fmt.Sprintf("must be positive, got %d", c.Region.Size))
	case math.IsNaN(c.Perturb.Fraction) || c.Perturb.Fraction < 0 || c.Perturb.Fraction > 1:
		return invalidField("perturb.fraction", fmt.Sprintf("must be within [0,1], got %v", c.Perturb.Fraction))
	case c.Perturb.IntensityMin < 0:
		return invalidField("perturb.intensity", fmt.Sprintf("lower bound must be >= 0, got %d", c.Perturb.IntensityMin))
	case c.Perturb.IntensityMax < c.Perturb.IntensityMin:
		return invalidField("perturb.intensity", fmt.Sprintf("range [%d,%d] is inverted", c.Perturb.IntensityMin, c.Perturb.IntensityMax))
	case c.Perturb.IntensityMax > perturb.MaxIntensity:
		return invalidField("perturb.intensity", fmt.Sprintf("upper bound must be <= %d, got %d", perturb.MaxIntensity, c.Perturb.IntensityMax))
	case !(c.Threat.Threshold > 0) || math.IsInf(c.Threat.Threshold, 0):
		return invalidField("threat.threshold", fmt.Sprintf("must be finite and > 0, got %v", c.Threat.Threshold))
	}
	if _, err := marker.ParseColor(c.Marker.Color); err != nil {
		return invalidField("marker.color", err.Error())
	}
	return nil
}

func invalidField(field, msg string) error {
	return &faults.Error{
		Op:   "config.validate",
		Kind: faults.KindInvalidConfig,
		Err:  fmt.Errorf("field %s: %s: %w", field, msg, faults.ErrInvalidConfig),
	}
}

// #endregion validate
