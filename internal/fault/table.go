package fault

// Row is one labelled fault record.
type Row struct {
	Label  string `json:"label"`
	Record Record `json:"record"`
}

// Table aggregates fault records in insertion order. Labels are carried for
// diagnostics only; rows are not keyed by them and duplicates are allowed.
type Table struct {
	Rows []Row `json:"rows"`
}

// NewTable returns an empty table with room for n rows.
func NewTable(n int) *Table {
	return &Table{Rows: make([]Row, 0, n)}
}

// Append adds a row at the end of the table.
func (t *Table) Append(label string, r Record) {
	t.Rows = append(t.Rows, Row{Label: label, Record: r})
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Columns returns the header: "label" followed by RecordColumns.
func (t *Table) Columns() []string {
	return append([]string{"label"}, RecordColumns...)
}

// Column returns one attribute across all rows, or nil for an unknown name.
func (t *Table) Column(name string) []float64 {
	idx := -1
	for i, c := range RecordColumns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	out := make([]float64, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row.Record.Values()[idx]
	}
	return out
}

// GenerateTable builds a table from already parameterised faults, keeping
// their order.
func GenerateTable(faults []*ParameterizedFault) *Table {
	t := NewTable(len(faults))
	for _, pf := range faults {
		t.Append(pf.Label(), pf.Record())
	}
	return t
}
