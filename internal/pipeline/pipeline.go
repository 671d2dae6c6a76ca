// Package pipeline chains region selection, perturbation, analysis and
// marking into one run, and turns a run into a vector the threat gate can judge.
package pipeline

import (
	"image/color"

	"github.com/danielpatrickdp/pixelthreat/internal/analysis"
	"github.com/danielpatrickdp/pixelthreat/internal/config"
	"github.com/danielpatrickdp/pixelthreat/internal/faults"
	"github.com/danielpatrickdp/pixelthreat/internal/logger"
	"github.com/danielpatrickdp/pixelthreat/internal/marker"
	"github.com/danielpatrickdp/pixelthreat/internal/perturb"
	"github.com/danielpatrickdp/pixelthreat/internal/raster"
	"github.com/danielpatrickdp/pixelthreat/internal/region"
	"github.com/danielpatrickdp/pixelthreat/internal/threat"
)

// #region options
// Options configures one pipeline run.
type Options struct {
	RegionSize int
	Perturb    perturb.Options
	Marker     color.RGBA
}

// DefaultOptions returns a 50px region, 30% of its pixels perturbed by up to
// ±10, marked in red.
func DefaultOptions() Options {
	return Options{
		RegionSize: 50,
		Perturb:    perturb.DefaultOptions(),
		Marker:     marker.DefaultColor,
	}
}

// FromConfig builds Options from loaded settings.
func FromConfig(cfg config.Config) (Options, error) {
	c, err := marker.ParseColor(cfg.Marker.Color)
	if err != nil {
		return Options{}, err
	}
	return Options{
		RegionSize: cfg.Region.Size,
		Perturb: perturb.Options{
			Fraction:  cfg.Perturb.Fraction,
			Intensity: perturb.IntensityRange{Lo: cfg.Perturb.IntensityMin, Hi: cfg.Perturb.IntensityMax},
		},
		Marker: c,
	}, nil
}
// #endregion options

// #region result
// Result holds every stage's output. Original, Modified and Visualization are
// distinct buffers.
type Result struct {
	Region        region.Region
	Original      *raster.Image
	Modified      *raster.Image
	Visualization *raster.Image
	Set           perturb.Set
	Stats         analysis.Stats
	Marked        int
}
// #endregion result

// #region run
// Run selects the centred region of img, perturbs it with rng, summarises the
// attempts and marks the touched pixels on a copy of the modified image.
// img is not modified.
func Run(img *raster.Image, opts Options, rng perturb.Source) (Result, error) {
	if img == nil {
		return Result{}, faults.New("pipeline.Run", faults.KindInvalidOptions, "nil image")
	}

	logger.L().Debug("run.started",
		"height", img.Height,
		"width", img.Width,
		"size", opts.RegionSize,
		"fraction", opts.Perturb.Fraction,
	)

	r, err := region.SelectCentered(img.Height, img.Width, opts.RegionSize)
	if err != nil {
		return Result{}, err
	}

	modified, set, err := perturb.Perturb(img, r, opts.Perturb, rng)
	if err != nil {
		return Result{}, err
	}

	stats := analysis.Analyze(set)
	vis, marked := marker.Mark(modified, set, opts.Marker)

	logger.L().Debug("run.completed",
		"region", r.String(),
		"attempts", stats.Count,
		"unique", stats.UniquePixels,
		"marked", marked,
		"max_abs_delta", stats.MaxAbsDelta,
	)

	return Result{
		Region:        r,
		Original:      img,
		Modified:      modified,
		Visualization: vis,
		Set:           set,
		Stats:         stats,
		Marked:        marked,
	}, nil
}
// #endregion run

// #region delta
// DeltaVector flattens modified-original over r in row, column, channel order.
// Its length is r.PixelCount()*raster.Channels.
func DeltaVector(orig, mod *raster.Image, r region.Region) ([]float64, error) {
	if orig == nil || mod == nil {
		return nil, faults.New("pipeline.DeltaVector", faults.KindInvalidOptions, "nil image")
	}
	if orig.Height != mod.Height || orig.Width != mod.Width {
		return nil, faults.New("pipeline.DeltaVector", faults.KindDimensionMismatch,
			"original is %dx%d, modified is %dx%d", orig.Width, orig.Height, mod.Width, mod.Height)
	}
	if !r.Within(orig.Height, orig.Width) {
		return nil, faults.New("pipeline.DeltaVector", faults.KindInvalidOptions,
			"region %v outside %dx%d image", r, orig.Width, orig.Height)
	}

	v := make([]float64, 0, r.PixelCount()*raster.Channels)
	for y := r.StartY; y < r.EndY; y++ {
		for x := r.StartX; x < r.EndX; x++ {
			off := orig.Offset(x, y)
			for c := 0; c < raster.Channels; c++ {
				v = append(v, float64(int(mod.Pix[off+c])-int(orig.Pix[off+c])))
			}
		}
	}
	return v, nil
}

// Dimension is the DeltaVector length for a run over r.
func Dimension(r region.Region) int {
	return r.PixelCount() * raster.Channels
}
// #endregion delta

// #region assess
// Assess scores the run's realised perturbation against dirs and passes it
// through gate.
func Assess(res Result, dirs []threat.Direction, gate *threat.Gate) (threat.Decision, error) {
	v, err := DeltaVector(res.Original, res.Modified, res.Region)
	if err != nil {
		return threat.Decision{}, err
	}
	d, err := gate.Evaluate(v, dirs)
	if err != nil {
		return threat.Decision{}, err
	}
	logger.L().Info("threat.scored",
		"action", d.Action,
		"score", d.Assessment.Score,
		"worst", d.Assessment.WorstName,
		"violations", len(d.Violations),
	)
	return d, nil
}
// #endregion assess
