package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/pixelthreat/internal/replay"
)

func replayCmd(root *rootOptions) *cobra.Command {
	var fixture string

	c := &cobra.Command{
		Use:   "replay",
		Short: "Re-run a fixture and verify the outcome is reproduced",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := root.open()
			if err != nil {
				return err
			}
			defer s.close()

			f, err := replay.LoadFixture(fixture)
			if err != nil {
				return err
			}
			res, err := replay.Replay(f)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			t := defaultTheme()
			if res.Pass() {
				fmt.Fprintf(w, "%s %s: %d attempts, region %s, digest %s\n",
					t.Safe.Render("PASS"), fixture, res.Count, res.Region.String(), res.Digest[:12])
				return nil
			}
			fmt.Fprintf(w, "%s %s\n", t.Unsafe.Render("FAIL"), fixture)
			for _, m := range res.Mismatches {
				fmt.Fprintf(w, "  - %s\n", m)
			}
			return fmt.Errorf("replay failed (%d mismatch(es))", len(res.Mismatches))
		},
	}
	c.Flags().StringVarP(&fixture, "fixture", "f", "", "Fixture JSON (required)")
	_ = c.MarkFlagRequired("fixture")

	c.AddCommand(replayExportCmd(root))
	return c
}

func replayExportCmd(root *rootOptions) *cobra.Command {
	var runID, out string

	c := &cobra.Command{
		Use:   "export",
		Short: "Export a stored run as a replay fixture",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := root.open()
			if err != nil {
				return err
			}
			defer s.close()

			st, err := s.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			run, err := st.GetRun(runID)
			if err != nil {
				return err
			}
			f, err := replay.FixtureFromRun(run)
			if err != nil {
				return err
			}
			if err := replay.WriteFixture(out, f); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d attempts)\n", out, f.Expected.Count)
			return nil
		},
	}
	c.Flags().StringVar(&runID, "run", "", "Run ID (required)")
	c.Flags().StringVarP(&out, "out", "o", "", "Output fixture path (required)")
	_ = c.MarkFlagRequired("run")
	_ = c.MarkFlagRequired("out")
	return c
}
