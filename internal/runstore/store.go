// Package runstore persists perturbation runs in SQLite.
package runstore

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/pixelthreat/internal/faults"
	"github.com/danielpatrickdp/pixelthreat/internal/perturb"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	parent_id    TEXT,
	image_path   TEXT,
	region_size  INTEGER NOT NULL,
	region       TEXT NOT NULL,
	seed         INTEGER NOT NULL,
	fraction     REAL NOT NULL,
	lo           INTEGER NOT NULL,
	hi           INTEGER NOT NULL,
	stats_json   TEXT NOT NULL,
	marked       INTEGER NOT NULL,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES runs(run_id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS perturbations (
	run_id       TEXT PRIMARY KEY,
	records      BLOB,
	FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);
`
// #endregion schema

// timeLayout keeps created_at fixed-width so text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #region store-struct
// Store manages perturbation runs in SQLite.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// Open opens a SQLite database at path and runs migrations. ":memory:" gives
// a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == ":memory:" {
		// each pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for packages sharing the database (audit).
func (s *Store) DB() *sql.DB {
	return s.db
}

// #region save-run
// SaveRun assigns a fresh run ID and timestamp and inserts the run together
// with its attempt records in one transaction.
func (s *Store) SaveRun(run Run) (Run, error) {
	run.RunID = uuid.New().String()
	run.CreatedAt = time.Now().UTC()

	regionJSON, err := json.Marshal(run.Region)
	if err != nil {
		return Run{}, fmt.Errorf("marshal region: %w", err)
	}
	statsJSON, err := json.Marshal(run.Stats)
	if err != nil {
		return Run{}, fmt.Errorf("marshal stats: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parentPtr interface{}
	if run.ParentID != "" {
		parentPtr = run.ParentID
	}

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, parent_id, image_path, region_size, region, seed, fraction, lo, hi, stats_json, marked, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, parentPtr, run.ImagePath, run.RegionSize, string(regionJSON),
		int64(run.Seed), run.Options.Fraction, run.Options.Intensity.Lo, run.Options.Intensity.Hi,
		string(statsJSON), run.Marked, run.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO perturbations (run_id, records) VALUES (?, ?)`,
		run.RunID, encodeSet(run.Set),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert perturbations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}
// #endregion save-run

// #region get-run
// GetRun retrieves a run and its attempt records. A missing ID fails with
// faults.KindNotFound.
func (s *Store) GetRun(id string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT r.run_id, r.parent_id, r.image_path, r.region_size, r.region, r.seed, r.fraction, r.lo, r.hi,
		        r.stats_json, r.marked, r.created_at, p.records
		 FROM runs r LEFT JOIN perturbations p ON p.run_id = r.run_id
		 WHERE r.run_id = ?`, id,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, faults.New("runstore.get_run", faults.KindNotFound, "run %s not found", id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}
// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT r.run_id, r.parent_id, r.image_path, r.region_size, r.region, r.seed, r.fraction, r.lo, r.hi,
		        r.stats_json, r.marked, r.created_at, p.records
		 FROM runs r LEFT JOIN perturbations p ON p.run_id = r.run_id
		 ORDER BY r.created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
// #endregion list-runs

// #region delete-run
// DeleteRun removes a run and its records. Runs derived from it keep their
// rows with the parent link cleared.
func (s *Store) DeleteRun(id string) error {
	res, err := s.db.Exec(`DELETE FROM runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	if n == 0 {
		return faults.New("runstore.delete_run", faults.KindNotFound, "run %s not found", id)
	}
	return nil
}
// #endregion delete-run

// #region scan
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var run Run
	var parentID, imagePath sql.NullString
	var regionJSON, statsJSON, createdStr string
	var seed int64
	var records []byte

	err := sc.Scan(&run.RunID, &parentID, &imagePath, &run.RegionSize, &regionJSON, &seed,
		&run.Options.Fraction, &run.Options.Intensity.Lo, &run.Options.Intensity.Hi,
		&statsJSON, &run.Marked, &createdStr, &records)
	if err != nil {
		return Run{}, err
	}

	run.ParentID = parentID.String
	run.ImagePath = imagePath.String
	run.Seed = uint64(seed)
	if err := json.Unmarshal([]byte(regionJSON), &run.Region); err != nil {
		return Run{}, fmt.Errorf("unmarshal region: %w", err)
	}
	if err := json.Unmarshal([]byte(statsJSON), &run.Stats); err != nil {
		return Run{}, fmt.Errorf("unmarshal stats: %w", err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	if run.Set, err = decodeSet(records); err != nil {
		return Run{}, err
	}
	return run, nil
}
// #endregion scan

// #region record-encoding
const recordSize = 12

func encodeSet(set perturb.Set) []byte {
	buf := make([]byte, len(set)*recordSize)
	for i, p := range set {
		off := i * recordSize
		binary.LittleEndian.PutUint32(buf[off:], uint32(int32(p.X)))
		binary.LittleEndian.PutUint32(buf[off+4:], uint32(int32(p.Y)))
		binary.LittleEndian.PutUint32(buf[off+8:], uint32(int32(p.Delta)))
	}
	return buf
}

func decodeSet(b []byte) (perturb.Set, error) {
	if len(b)%recordSize != 0 {
		return nil, fmt.Errorf("decode records: %d bytes is not a multiple of %d", len(b), recordSize)
	}
	set := make(perturb.Set, len(b)/recordSize)
	for i := range set {
		off := i * recordSize
		set[i] = perturb.ModifiedPixel{
			X:     int(int32(binary.LittleEndian.Uint32(b[off:]))),
			Y:     int(int32(binary.LittleEndian.Uint32(b[off+4:]))),
			Delta: int(int32(binary.LittleEndian.Uint32(b[off+8:]))),
		}
	}
	return set, nil
}
// #endregion record-encoding
