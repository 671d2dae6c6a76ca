package config

import "fmt"

// yamlConfig mirrors the on-disk layout. Pointer fields distinguish "absent"
// from zero so partial files keep the defaults.
type yamlConfig struct {
	Region *struct {
		Size *int `yaml:"size"`
	} `yaml:"region"`
	Perturb *struct {
		Fraction  *float64 `yaml:"fraction"`
		Intensity []int    `yaml:"intensity"`
		Seed      *uint64  `yaml:"seed"`
	} `yaml:"perturb"`
	Marker *struct {
		Color *string `yaml:"color"`
	} `yaml:"marker"`
	Threat *struct {
		Threshold *float64 `yaml:"threshold"`
		Normalize *bool    `yaml:"normalize"`
	} `yaml:"threat"`
	Store *struct {
		Path *string `yaml:"path"`
	} `yaml:"store"`
	Logging *struct {
		Dir   *string `yaml:"dir"`
		Debug *bool   `yaml:"debug"`
	} `yaml:"logging"`
}

func (y yamlConfig) apply(cfg *Config) error {
	if r := y.Region; r != nil && r.Size != nil {
		cfg.Region.Size = *r.Size
	}
	if p := y.Perturb; p != nil {
		if p.Fraction != nil {
			cfg.Perturb.Fraction = *p.Fraction
		}
		if p.Intensity != nil {
			if len(p.Intensity) != 2 {
				return fmt.Errorf("field perturb.intensity: expected [min, max], got %d values", len(p.Intensity))
			}
			cfg.Perturb.IntensityMin, cfg.Perturb.IntensityMax = p.Intensity[0], p.Intensity[1]
		}
		if p.Seed != nil {
			cfg.Perturb.Seed = *p.Seed
		}
	}
	if m := y.Marker; m != nil && m.Color != nil {
		cfg.Marker.Color = *m.Color
	}
	if t := y.Threat; t != nil {
		if t.Threshold != nil {
			cfg.Threat.Threshold = *t.Threshold
		}
		if t.Normalize != nil {
			cfg.Threat.Normalize = *t.Normalize
		}
	}
	if s := y.Store; s != nil && s.Path != nil {
		cfg.Store.Path = *s.Path
	}
	if l := y.Logging; l != nil {
		if l.Dir != nil {
			cfg.Logging.Dir = *l.Dir
		}
		if l.Debug != nil {
			cfg.Logging.Debug = *l.Debug
		}
	}
	return nil
}
