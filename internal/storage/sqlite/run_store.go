package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/banshee-data/fault.report/internal/fault"
	"github.com/banshee-data/fault.report/internal/timeutil"
)

// Run is one persisted batch of fault analyses.
type Run struct {
	RunID       string          `json:"run_id"`
	Source      string          `json:"source"`
	ParamsJSON  json.RawMessage `json:"params_json,omitempty"`
	FaultCount  int             `json:"fault_count"`
	FailedCount int             `json:"failed_count"`
	CreatedAt   int64           `json:"created_at"`
}

// RunFailure is a fault excluded from a run's table.
type RunFailure struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// RunStore provides persistence for fault runs and their tables.
type RunStore struct {
	db    *sql.DB
	clock timeutil.Clock
}

// NewRunStore creates a new RunStore stamping runs with the real clock.
func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db.DB, clock: timeutil.RealClock{}}
}

// WithClock replaces the clock used for CreatedAt.
func (s *RunStore) WithClock(c timeutil.Clock) *RunStore {
	s.clock = c
	return s
}

var (
	recordColumnList = strings.Join(fault.RecordColumns, ", ")
	insertRecordSQL  = fmt.Sprintf(
		"INSERT INTO fault_records (run_id, row_index, label, %s) VALUES (?, ?, ?%s)",
		recordColumnList, strings.Repeat(", ?", len(fault.RecordColumns)))
	selectRecordSQL = fmt.Sprintf(
		"SELECT label, %s FROM fault_records WHERE run_id = ? ORDER BY row_index", recordColumnList)
)

// SaveRun stores run together with every table row and failure in one
// transaction. If RunID is empty a UUID is generated; CreatedAt defaults to
// now. Counts are taken from the table and failures.
func (s *RunStore) SaveRun(run *Run, table *fault.Table, failures []fault.Failure) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = s.clock.Now().UnixNano()
	}
	run.FaultCount = table.Len()
	run.FailedCount = len(failures)

	var params interface{}
	if len(run.ParamsJSON) > 0 {
		params = string(run.ParamsJSON)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin run transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO fault_runs (run_id, source, params_json, fault_count, failed_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Source, params, run.FaultCount, run.FailedCount, run.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if table != nil {
		stmt, err := tx.Prepare(insertRecordSQL)
		if err != nil {
			return fmt.Errorf("prepare record insert: %w", err)
		}
		defer stmt.Close()

		for i, row := range table.Rows {
			args := []interface{}{run.RunID, i, row.Label}
			for _, v := range row.Record.Values() {
				args = append(args, nullableFloat(v))
			}
			if _, err := stmt.Exec(args...); err != nil {
				return fmt.Errorf("insert record %s: %w", row.Label, err)
			}
		}
	}

	for _, f := range failures {
		if _, err := tx.Exec(`INSERT INTO fault_failures (run_id, label, reason) VALUES (?, ?, ?)`,
			run.RunID, f.Label, f.Err.Error()); err != nil {
			return fmt.Errorf("insert failure %s: %w", f.Label, err)
		}
	}

	return tx.Commit()
}

// GetRun returns a single run by ID.
func (s *RunStore) GetRun(runID string) (*Run, error) {
	var r Run
	var params sql.NullString
	err := s.db.QueryRow(`
		SELECT run_id, source, params_json, fault_count, failed_count, created_at
		FROM fault_runs WHERE run_id = ?`, runID,
	).Scan(&r.RunID, &r.Source, &params, &r.FaultCount, &r.FailedCount, &r.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	if params.Valid {
		r.ParamsJSON = json.RawMessage(params.String)
	}
	return &r, nil
}

// ListRuns returns all runs, newest first.
func (s *RunStore) ListRuns() ([]*Run, error) {
	rows, err := s.db.Query(`
		SELECT run_id, source, params_json, fault_count, failed_count, created_at
		FROM fault_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var params sql.NullString
		if err := rows.Scan(&r.RunID, &r.Source, &params, &r.FaultCount, &r.FailedCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if params.Valid {
			r.ParamsJSON = json.RawMessage(params.String)
		}
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// LoadTable rebuilds the fault table of a run in its original row order.
func (s *RunStore) LoadTable(runID string) (*fault.Table, error) {
	rows, err := s.db.Query(selectRecordSQL, runID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	table := fault.NewTable(0)
	for rows.Next() {
		var label string
		vals := make([]sql.NullFloat64, len(fault.RecordColumns))
		dest := []interface{}{&label}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		table.Append(label, recordFromValues(vals))
	}
	return table, rows.Err()
}

// ListFailures returns the faults excluded from a run.
func (s *RunStore) ListFailures(runID string) ([]RunFailure, error) {
	rows, err := s.db.Query(`SELECT label, reason FROM fault_failures WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	var out []RunFailure
	for rows.Next() {
		var f RunFailure
		if err := rows.Scan(&f.Label, &f.Reason); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// DeleteRun removes a run with its records and failures. Pragmas are per
// connection, so child rows are deleted explicitly rather than relying on
// cascading keys.
func (s *RunStore) DeleteRun(runID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM fault_records WHERE run_id = ?`,
		`DELETE FROM fault_failures WHERE run_id = ?`,
	} {
		if _, err := tx.Exec(q, runID); err != nil {
			return fmt.Errorf("delete run rows: %w", err)
		}
	}

	res, err := tx.Exec(`DELETE FROM fault_runs WHERE run_id = ?`, runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", runID)
	}
	return tx.Commit()
}

// SQLite stores NaN as NULL; keep that explicit in both directions.
func nullableFloat(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func recordFromValues(vals []sql.NullFloat64) fault.Record {
	f := func(i int) float64 {
		if !vals[i].Valid {
			return math.NaN()
		}
		return vals[i].Float64
	}
	return fault.Record{
		Strike:    f(0),
		Dip:       f(1),
		DepthMin:  f(2),
		DepthMax:  f(3),
		Height:    f(4),
		Length:    f(5),
		Area:      f(6),
		Curv:      f(7),
		CurvMean:  f(8),
		CurvMin:   f(9),
		CurvMax:   f(10),
		CurvX:     f(11),
		CurvY:     f(12),
		Deviation: f(13),
		StdDev:    f(14),
	}
}
