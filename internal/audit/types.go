package audit

import "time"

// #region entry
// Entry is a single row in the assessment_log table.
type Entry struct {
	RunID      string // empty for ad-hoc vectors scored outside a run
	Source     string // where the directions came from: file path, margin service address, "basis"
	Score      float64
	WorstIndex int
	WorstName  string
	Decision   string // "safe" | "unsafe"
	Reason     string
	Ratios     []float64
	CreatedAt  time.Time
}
// #endregion entry
