package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/pixelthreat/internal/audit"
	"github.com/danielpatrickdp/pixelthreat/internal/imageio"
	"github.com/danielpatrickdp/pixelthreat/internal/logger"
	"github.com/danielpatrickdp/pixelthreat/internal/perturb"
	"github.com/danielpatrickdp/pixelthreat/internal/pipeline"
	"github.com/danielpatrickdp/pixelthreat/internal/runstore"
	"github.com/danielpatrickdp/pixelthreat/internal/threat"
)

type perturbFlags struct {
	image      string
	out        string
	marked     string
	size       int
	fraction   float64
	min        int
	max        int
	seed       uint64
	color      string
	dirFile    string
	marginAddr string
	basis      string
	threshold  float64
	noSave     bool
	format     string
}

func perturbCmd(root *rootOptions) *cobra.Command {
	f := &perturbFlags{}

	c := &cobra.Command{
		Use:   "perturb",
		Short: "Perturb the centred region of an image and optionally score the change",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(f.format); err != nil {
				return err
			}
			s, err := root.open()
			if err != nil {
				return err
			}
			defer s.close()

			flags := cmd.Flags()
			if flags.Changed("size") {
				s.cfg.Region.Size = f.size
			}
			if flags.Changed("fraction") {
				s.cfg.Perturb.Fraction = f.fraction
			}
			if flags.Changed("min") {
				s.cfg.Perturb.IntensityMin = f.min
			}
			if flags.Changed("max") {
				s.cfg.Perturb.IntensityMax = f.max
			}
			if flags.Changed("seed") {
				s.cfg.Perturb.Seed = f.seed
			}
			if flags.Changed("color") {
				s.cfg.Marker.Color = f.color
			}
			if flags.Changed("threshold") {
				s.cfg.Threat.Threshold = f.threshold
			}
			if err := s.cfg.Validate(); err != nil {
				return err
			}

			img, err := imageio.Load(f.image)
			if err != nil {
				return err
			}
			opts, err := pipeline.FromConfig(s.cfg)
			if err != nil {
				return err
			}
			res, err := pipeline.Run(img, opts, perturb.NewSource(s.cfg.Perturb.Seed))
			if err != nil {
				return err
			}

			if f.out != "" {
				if err := imageio.Save(f.out, res.Modified); err != nil {
					return err
				}
			}
			if f.marked != "" {
				if err := imageio.Save(f.marked, res.Visualization); err != nil {
					return err
				}
			}

			src, sourceName, closeSrc, err := directionSource(f.dirFile, f.marginAddr, f.basis)
			if err != nil {
				return err
			}
			defer closeSrc()

			var decision *threat.Decision
			if src != nil {
				dirs, err := src.Directions(cmd.Context(), pipeline.Dimension(res.Region))
				if err != nil {
					return err
				}
				if dirs, err = maybeNormalize(dirs, s.cfg.Threat.Normalize); err != nil {
					return err
				}
				d, err := pipeline.Assess(res, dirs, threat.NewGate(threat.GateConfig{Threshold: s.cfg.Threat.Threshold}))
				if err != nil {
					return err
				}
				decision = &d
			}

			run := runstore.Run{
				ImagePath:  f.image,
				RegionSize: s.cfg.Region.Size,
				Region:     res.Region,
				Seed:       s.cfg.Perturb.Seed,
				Options:    opts.Perturb,
				Stats:      res.Stats,
				Marked:     res.Marked,
				Set:        res.Set,
			}
			if !f.noSave {
				if run, err = saveRun(s, run, sourceName, decision); err != nil {
					return err
				}
			}

			return printPerturb(cmd, run, decision, f.format)
		},
	}

	fl := c.Flags()
	fl.StringVarP(&f.image, "image", "i", "", "Input image (required)")
	fl.StringVarP(&f.out, "out", "o", "", "Write the perturbed image here")
	fl.StringVar(&f.marked, "marked", "", "Write the marked visualization here")
	fl.IntVar(&f.size, "size", 50, "Region side in pixels")
	fl.Float64Var(&f.fraction, "fraction", 0.30, "Share of region pixels to perturb, in [0,1]")
	fl.IntVar(&f.min, "min", 0, "Minimum perturbation magnitude")
	fl.IntVar(&f.max, "max", 10, "Maximum perturbation magnitude")
	fl.Uint64Var(&f.seed, "seed", 42, "Random seed")
	fl.StringVar(&f.color, "color", "red", "Marker colour: palette name or #rrggbb")
	fl.StringVar(&f.dirFile, "directions", "", "YAML file of unsafe directions")
	fl.StringVar(&f.marginAddr, "margin-addr", "", "Margin service address (host:port)")
	fl.StringVar(&f.basis, "basis", "", "Comma-separated margins for axis-aligned directions")
	fl.Float64Var(&f.threshold, "threshold", 1.0, "Threat score above which the perturbation is unsafe")
	fl.BoolVar(&f.noSave, "no-save", false, "Do not record the run in the store")
	fl.StringVar(&f.format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("image")
	return c
}

func saveRun(s *session, run runstore.Run, source string, d *threat.Decision) (runstore.Run, error) {
	st, err := s.openStore()
	if err != nil {
		return run, err
	}
	defer st.Close()

	saved, err := st.SaveRun(run)
	if err != nil {
		return run, err
	}
	if d != nil {
		if err := audit.LogAssessment(st.DB(), audit.FromDecision(saved.RunID, source, *d)); err != nil {
			return saved, err
		}
	}
	logger.L().Info("run.persisted", "run_id", saved.RunID, "store", s.cfg.Store.Path)
	return saved, nil
}

func printPerturb(cmd *cobra.Command, run runstore.Run, d *threat.Decision, format string) error {
	w := cmd.OutOrStdout()
	if format == "json" {
		payload := map[string]any{
			"run_id": run.RunID,
			"region": run.Region,
			"seed":   run.Seed,
			"stats":  run.Stats,
			"marked": run.Marked,
		}
		if d != nil {
			payload["decision"] = d
		}
		return writeJSON(w, payload)
	}
	printRunPretty(w, run, d)
	if d != nil && d.Action == threat.ActionUnsafe {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: perturbation exceeds the threat threshold")
	}
	return nil
}
