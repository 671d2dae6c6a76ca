// Package audit records threat assessments next to the runs they judged.
package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/pixelthreat/internal/threat"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS assessment_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT,
	source       TEXT NOT NULL,
	score        REAL NOT NULL,
	worst        INTEGER NOT NULL,
	worst_name   TEXT,
	decision     TEXT NOT NULL,
	reason       TEXT,
	ratios_json  TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS assessment_log_run ON assessment_log(run_id);
`
// #endregion schema

// Migrate creates the assessment_log table if it does not exist.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("migrate assessment_log: %w", err)
	}
	return nil
}

// FromDecision builds an entry from a gate decision.
func FromDecision(runID, source string, d threat.Decision) Entry {
	return Entry{
		RunID:      runID,
		Source:     source,
		Score:      d.Assessment.Score,
		WorstIndex: d.Assessment.Worst,
		WorstName:  d.Assessment.WorstName,
		Decision:   d.Action,
		Reason:     d.Reason,
		Ratios:     d.Assessment.Ratios,
	}
}

// #region log-assessment
// LogAssessment writes an entry to the assessment_log table.
func LogAssessment(db *sql.DB, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	ratios := entry.Ratios
	if ratios == nil {
		ratios = []float64{}
	}
	ratiosJSON, err := json.Marshal(ratios)
	if err != nil {
		return fmt.Errorf("marshal ratios: %w", err)
	}

	_, err = db.Exec(
		`INSERT INTO assessment_log (run_id, source, score, worst, worst_name, decision, reason, ratios_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullIfEmpty(entry.RunID),
		entry.Source,
		entry.Score,
		entry.WorstIndex,
		nullIfEmpty(entry.WorstName),
		entry.Decision,
		nullIfEmpty(entry.Reason),
		string(ratiosJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log assessment: %w", err)
	}
	return nil
}
// #endregion log-assessment

// #region list-for-run
// ListForRun returns the assessments recorded for runID in insertion order.
func ListForRun(db *sql.DB, runID string) ([]Entry, error) {
	rows, err := db.Query(
		`SELECT run_id, source, score, worst, worst_name, decision, reason, ratios_json, created_at
		 FROM assessment_log WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var run, worstName, reason sql.NullString
		var ratiosJSON, createdStr string
		if err := rows.Scan(&run, &e.Source, &e.Score, &e.WorstIndex, &worstName,
			&e.Decision, &reason, &ratiosJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		e.RunID = run.String
		e.WorstName = worstName.String
		e.Reason = reason.String
		if err := json.Unmarshal([]byte(ratiosJSON), &e.Ratios); err != nil {
			return nil, fmt.Errorf("unmarshal ratios: %w", err)
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
// #endregion list-for-run

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
