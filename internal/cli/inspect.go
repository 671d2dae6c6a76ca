package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/pixelthreat/internal/audit"
)

func inspectCmd(root *rootOptions) *cobra.Command {
	var last int
	var runID string
	var asJSON bool

	c := &cobra.Command{
		Use:   "inspect",
		Short: "List stored runs or show one run with its assessments",
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

			w := cmd.OutOrStdout()

			if runID != "" {
				run, err := st.GetRun(runID)
				if err != nil {
					return err
				}
				entries, err := audit.ListForRun(st.DB(), runID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(w, map[string]any{
						"run_id":      run.RunID,
						"parent_id":   run.ParentID,
						"image_path":  run.ImagePath,
						"region":      run.Region,
						"seed":        run.Seed,
						"perturb":     run.Options,
						"stats":       run.Stats,
						"marked":      run.Marked,
						"records":     run.Set,
						"created_at":  run.CreatedAt,
						"assessments": entries,
					})
				}
				printRunPretty(w, run, nil)
				printAssessments(w, entries)
				return nil
			}

			runs, err := st.ListRuns(last)
			if err != nil {
				return err
			}
			if asJSON {
				type summary struct {
					RunID     string    `json:"run_id"`
					ImagePath string    `json:"image_path"`
					Count     int       `json:"count"`
					Marked    int       `json:"marked"`
					CreatedAt time.Time `json:"created_at"`
				}
				out := make([]summary, 0, len(runs))
				for _, r := range runs {
					out = append(out, summary{r.RunID, r.ImagePath, r.Stats.Count, r.Marked, r.CreatedAt})
				}
				return writeJSON(w, out)
			}
			printRunList(w, runs, time.Now())
			return nil
		},
	}

	c.Flags().IntVarP(&last, "last", "n", 10, "Number of most recent runs to list")
	c.Flags().StringVar(&runID, "run", "", "Show a single run by ID")
	c.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return c
}
