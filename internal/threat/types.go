package threat

// #region direction

// Direction is an unsafe unit direction in perturbation space paired with the
// distance from the current point to the unsafe boundary along it.
type Direction struct {
	Name   string    `json:"name,omitempty"`
	Vector []float64 `json:"vector"`
	Margin float64   `json:"margin"`
}

// #endregion direction

// #region assessment

// Assessment is the result of scoring one perturbation vector.
type Assessment struct {
	Score     float64   `json:"score"`      // max over Ratios
	Worst     int       `json:"worst"`      // index of the direction attaining Score
	WorstName string    `json:"worst_name"` // name of that direction, if any
	Ratios    []float64 `json:"ratios"`     // projection/margin per direction, input order
}

// Crosses reports whether the perturbation plausibly crosses the unsafe boundary
// along the worst direction (Score > 1). A score at or below 1 stays within the
// modelled safety margin for every direction.
func (a Assessment) Crosses() bool { return a.Score > 1 }

// #endregion assessment

// #region gate-types

// GateConfig holds the decision threshold applied to Assessment.Score.
type GateConfig struct {
	Threshold float64 `json:"threshold"`
}

// DefaultGateConfig uses the margin boundary itself as threshold.
func DefaultGateConfig() GateConfig {
	return GateConfig{Threshold: 1.0}
}

// Violation names a direction whose ratio exceeded the gate threshold.
type Violation struct {
	Index int     `json:"index"`
	Name  string  `json:"name,omitempty"`
	Ratio float64 `json:"ratio"`
}

// Decision is the output of Gate.Evaluate.
type Decision struct {
	Action     string      `json:"action"` // "safe" | "unsafe"
	Reason     string      `json:"reason"`
	Assessment Assessment  `json:"assessment"`
	Violations []Violation `json:"violations,omitempty"`
}

const (
	ActionSafe   = "safe"
	ActionUnsafe = "unsafe"
)

// #endregion gate-types
