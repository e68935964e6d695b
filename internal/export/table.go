package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/banshee-data/fault.report/internal/fault"
	"github.com/banshee-data/fault.report/internal/units"
)

// WriteCSV writes the table with a "label" column followed by the record
// columns. Non-finite values are written as NaN, +Inf or -Inf.
func WriteCSV(w io.Writer, t *fault.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	rec := make([]string, 0, len(fault.RecordColumns)+1)
	for _, row := range t.Rows {
		rec = append(rec[:0], row.Label)
		for _, v := range row.Record.Values() {
			rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.Label, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ConvertAngles returns a copy of t with strike and dip in the given angle
// units. The input table is always in radians.
func ConvertAngles(t *fault.Table, unit string) (*fault.Table, error) {
	if !units.IsValidAngle(unit) {
		return nil, fmt.Errorf("invalid angle units %q: must be one of %s", unit, units.ValidAngleUnitsString())
	}
	out := fault.NewTable(t.Len())
	for _, row := range t.Rows {
		r := row.Record
		r.Strike = units.ConvertAngle(r.Strike, unit)
		r.Dip = units.ConvertAngle(r.Dip, unit)
		out.Append(row.Label, r)
	}
	return out, nil
}

type jsonFailure struct {
	Label string `json:"label"`
	Error string `json:"error"`
}

type jsonTable struct {
	Columns  []string                 `json:"columns"`
	Rows     []map[string]interface{} `json:"rows"`
	Failures []jsonFailure            `json:"failures"`
}

// WriteJSON writes the table rows, keyed by column name, and the failures of
// a batch. JSON has no NaN, so non-finite values become null.
func WriteJSON(w io.Writer, t *fault.Table, failures []fault.Failure) error {
	out := jsonTable{
		Columns:  t.Columns(),
		Rows:     make([]map[string]interface{}, 0, t.Len()),
		Failures: make([]jsonFailure, 0, len(failures)),
	}
	for _, row := range t.Rows {
		m := make(map[string]interface{}, len(fault.RecordColumns)+1)
		m["label"] = row.Label
		for name, v := range row.Record.Map() {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				m[name] = nil
				continue
			}
			m[name] = v
		}
		out.Rows = append(out.Rows, m)
	}
	for _, f := range failures {
		out.Failures = append(out.Failures, jsonFailure{Label: f.Label, Error: f.Err.Error()})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
