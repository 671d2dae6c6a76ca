package threat

import (
	"fmt"
)

// #region gate

// Gate classifies perturbations as safe or unsafe against a score threshold.
type Gate struct {
	config GateConfig
}

// NewGate creates a gate with the given configuration.
func NewGate(config GateConfig) *Gate {
	return &Gate{config: config}
}

// Threshold returns the configured threshold.
func (g *Gate) Threshold() float64 { return g.config.Threshold }

// Evaluate scores v and marks it unsafe when the score exceeds the threshold.
// Every direction whose ratio exceeds the threshold is listed as a violation.
// Scoring errors are returned unchanged.
func (g *Gate) Evaluate(v []float64, dirs []Direction) (Decision, error) {
	a, err := Score(v, dirs)
	if err != nil {
		return Decision{}, err
	}

	var violations []Violation
	for i, r := range a.Ratios {
		if r > g.config.Threshold {
			violations = append(violations, Violation{Index: i, Name: dirs[i].Name, Ratio: r})
		}
	}

	if len(violations) > 0 {
		return Decision{
			Action:     ActionUnsafe,
			Reason:     fmt.Sprintf("score %.4f exceeds threshold %.4f along direction %s", a.Score, g.config.Threshold, label(a)),
			Assessment: a,
			Violations: violations,
		}, nil
	}

	return Decision{
		Action:     ActionSafe,
		Reason:     fmt.Sprintf("score %.4f within threshold %.4f", a.Score, g.config.Threshold),
		Assessment: a,
	}, nil
}

func label(a Assessment) string {
	if a.WorstName != "" {
		return a.WorstName
	}
	return fmt.Sprintf("#%d", a.Worst)
}

// #endregion gate
