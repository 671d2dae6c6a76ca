package audit

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/pixelthreat/internal/analysis"
	"github.com/danielpatrickdp/pixelthreat/internal/runstore"
	"github.com/danielpatrickdp/pixelthreat/internal/threat"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}
// #endregion helpers

func TestLogAssessmentAndList(t *testing.T) {
	db := setupDB(t)

	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{RunID: "r1", Source: "dirs.yaml", Score: 0.5, WorstIndex: 0, WorstName: "e0",
			Decision: threat.ActionSafe, Reason: "ok", Ratios: []float64{0.5, -0.1}, CreatedAt: at},
		{RunID: "r1", Source: "dirs.yaml", Score: 3, WorstIndex: 1, WorstName: "e1",
			Decision: threat.ActionUnsafe, Reason: "too far", Ratios: []float64{0.2, 3}, CreatedAt: at},
		{RunID: "r2", Source: "basis", Score: 0, Decision: threat.ActionSafe, CreatedAt: at},
	}
	for _, e := range entries {
		if err := LogAssessment(db, e); err != nil {
			t.Fatalf("LogAssessment: %v", err)
		}
	}

	got, err := ListForRun(db, "r1")
	if err != nil {
		t.Fatalf("ListForRun: %v", err)
	}
	if diff := cmp.Diff(entries[:2], got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}

	got, err = ListForRun(db, "r2")
	if err != nil {
		t.Fatalf("ListForRun: %v", err)
	}
	if len(got) != 1 || len(got[0].Ratios) != 0 {
		t.Fatalf("unexpected r2 entries: %+v", got)
	}
}

func TestLogAssessmentWithoutRun(t *testing.T) {
	db := setupDB(t)
	if err := LogAssessment(db, Entry{Source: "basis", Decision: threat.ActionSafe}); err != nil {
		t.Fatalf("LogAssessment: %v", err)
	}
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM assessment_log WHERE run_id IS NULL`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 run-less row, got %d", n)
	}
}

func TestFromDecision(t *testing.T) {
	dirs := []threat.Direction{
		{Name: "a", Vector: []float64{1, 0}, Margin: 1},
		{Name: "b", Vector: []float64{0, 1}, Margin: 1},
	}
	d, err := threat.NewGate(threat.DefaultGateConfig()).Evaluate([]float64{3, 1}, dirs)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	e := FromDecision("r", "file", d)
	if e.Score != 3 || e.WorstName != "a" || e.Decision != threat.ActionUnsafe {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestCascadeWithRunStore(t *testing.T) {
	s, err := runstore.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if err := Migrate(s.DB()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	run, err := s.SaveRun(runstore.Run{RegionSize: 1, Stats: analysis.Stats{}})
	if err != nil {
		t.Fatalf("SaveRun: %v", err)
	}
	if err := LogAssessment(s.DB(), Entry{RunID: run.RunID, Source: "basis", Decision: threat.ActionSafe}); err != nil {
		t.Fatalf("LogAssessment: %v", err)
	}
	if err := s.DeleteRun(run.RunID); err != nil {
		t.Fatalf("DeleteRun: %v", err)
	}
	got, err := ListForRun(s.DB(), run.RunID)
	if err != nil {
		t.Fatalf("ListForRun: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected assessments removed with run, got %d", len(got))
	}
}
