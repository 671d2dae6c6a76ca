package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/danielpatrickdp/pixelthreat/internal/analysis"
	"github.com/danielpatrickdp/pixelthreat/internal/audit"
	"github.com/danielpatrickdp/pixelthreat/internal/runstore"
	"github.com/danielpatrickdp/pixelthreat/internal/threat"
)

// #region theme

type theme struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Safe   lipgloss.Style
	Unsafe lipgloss.Style
	Card   lipgloss.Style
}

func defaultTheme() theme {
	return theme{
		Title:  lipgloss.NewStyle().Bold(true),
		Label:  lipgloss.NewStyle().Faint(true),
		Safe:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Unsafe: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		Card: lipgloss.NewStyle().
			Padding(0, 1).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")),
	}
}

// #endregion theme

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func checkFormat(format string) error {
	switch format {
	case "pretty", "", "json":
		return nil
	default:
		return fmt.Errorf("unsupported format %q (expected pretty|json)", format)
	}
}

// #region pretty

func (t theme) row(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%s %s\n", t.Label.Render(fmt.Sprintf("%-12s", label+":")), value)
}

func (t theme) stats(b *strings.Builder, s analysis.Stats) {
	t.row(b, "Attempts", humanize.Comma(int64(s.Count)))
	t.row(b, "Unique", humanize.Comma(int64(s.UniquePixels)))
	if s.Empty() {
		return
	}
	t.row(b, "Mean |d|", fmt.Sprintf("%.3f", s.MeanAbsDelta))
	t.row(b, "Range |d|", fmt.Sprintf("[%d, %d]", s.MinAbsDelta, s.MaxAbsDelta))
	t.row(b, "Signs", fmt.Sprintf("+%s / -%s (zero %s)",
		humanize.Comma(int64(s.PositiveCount)), humanize.Comma(int64(s.NegativeCount)),
		humanize.Comma(int64(s.ZeroCount))))
}

func (t theme) action(a string) string {
	if a == threat.ActionUnsafe {
		return t.Unsafe.Render(strings.ToUpper(a))
	}
	return t.Safe.Render(strings.ToUpper(a))
}

func (t theme) decision(b *strings.Builder, d threat.Decision) {
	t.row(b, "Decision", t.action(d.Action))
	worst := d.Assessment.WorstName
	if worst == "" {
		worst = fmt.Sprintf("#%d", d.Assessment.Worst)
	}
	t.row(b, "Score", fmt.Sprintf("%.4f (worst %s)", d.Assessment.Score, worst))
	t.row(b, "Reason", d.Reason)
	if n := len(d.Violations); n > 0 {
		t.row(b, "Violations", humanize.Comma(int64(n)))
	}
}

func printRunPretty(w io.Writer, run runstore.Run, d *threat.Decision) {
	t := defaultTheme()
	var b strings.Builder
	if run.RunID != "" {
		t.row(&b, "Run", run.RunID)
	}
	if run.ImagePath != "" {
		t.row(&b, "Image", run.ImagePath)
	}
	t.row(&b, "Region", run.Region.String())
	t.row(&b, "Seed", fmt.Sprintf("%d", run.Seed))
	t.stats(&b, run.Stats)
	t.row(&b, "Marked", humanize.Comma(int64(run.Marked)))
	if d != nil {
		t.decision(&b, *d)
	}
	fmt.Fprintln(w, t.Title.Render("Perturbation run"))
	fmt.Fprintln(w, t.Card.Render(strings.TrimRight(b.String(), "\n")))
}

func printRunList(w io.Writer, runs []runstore.Run, now time.Time) {
	t := defaultTheme()
	if len(runs) == 0 {
		fmt.Fprintln(w, "(no runs stored)")
		return
	}
	fmt.Fprintln(w, t.Title.Render(fmt.Sprintf("%d run(s)", len(runs))))
	for _, r := range runs {
		fmt.Fprintf(w, "- %s  %s  %s  attempts=%s marked=%s  %s\n",
			r.RunID,
			humanize.RelTime(r.CreatedAt, now, "ago", "from now"),
			r.Region.String(),
			humanize.Comma(int64(r.Stats.Count)),
			humanize.Comma(int64(r.Marked)),
			t.Label.Render(r.ImagePath),
		)
	}
}

func printAssessments(w io.Writer, entries []audit.Entry) {
	t := defaultTheme()
	if len(entries) == 0 {
		return
	}
	fmt.Fprintln(w, t.Title.Render("Assessments"))
	for _, e := range entries {
		fmt.Fprintf(w, "- %s score=%.4f worst=%s source=%s\n",
			t.action(e.Decision), e.Score, e.WorstName, e.Source)
	}
}

// #endregion pretty
