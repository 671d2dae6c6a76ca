package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/pixelthreat/internal/threat"
)

func scoreCmd(root *rootOptions) *cobra.Command {
	var vector, dirFile, marginAddr, basis, format string
	var threshold float64

	c := &cobra.Command{
		Use:   "score",
		Short: "Score a perturbation vector against unsafe directions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			s, err := root.open()
			if err != nil {
				return err
			}
			defer s.close()

			if cmd.Flags().Changed("threshold") {
				s.cfg.Threat.Threshold = threshold
			}

			v, err := parseFloats(vector)
			if err != nil {
				return err
			}

			src, _, closeSrc, err := directionSource(dirFile, marginAddr, basis)
			if err != nil {
				return err
			}
			defer closeSrc()
			if src == nil {
				return errNoDirections
			}

			dirs, err := src.Directions(cmd.Context(), len(v))
			if err != nil {
				return err
			}
			if dirs, err = maybeNormalize(dirs, s.cfg.Threat.Normalize); err != nil {
				return err
			}

			d, err := threat.NewGate(threat.GateConfig{Threshold: s.cfg.Threat.Threshold}).Evaluate(v, dirs)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if format == "json" {
				return writeJSON(w, d)
			}
			t := defaultTheme()
			var b strings.Builder
			t.decision(&b, d)
			_, err = w.Write([]byte(t.Card.Render(strings.TrimRight(b.String(), "\n")) + "\n"))
			return err
		},
	}

	fl := c.Flags()
	fl.StringVar(&vector, "vector", "", "Comma-separated perturbation vector (required)")
	fl.StringVar(&dirFile, "directions", "", "YAML file of unsafe directions")
	fl.StringVar(&marginAddr, "margin-addr", "", "Margin service address (host:port)")
	fl.StringVar(&basis, "basis", "", "Comma-separated margins for axis-aligned directions")
	fl.Float64Var(&threshold, "threshold", 1.0, "Threat score above which the vector is unsafe")
	fl.StringVar(&format, "format", "pretty", "Output format: pretty|json")

	_ = c.MarkFlagRequired("vector")
	return c
}
