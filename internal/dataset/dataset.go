package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Dataset is an immutable tabular view of one loaded survey export.
// Cells are kept as raw strings; the empty string marks a missing value.
// Derivations never mutate a Dataset in place: WithColumn returns a new one.
type Dataset struct {
	name    string
	columns []string
	index   map[string]int
	rows    [][]string
}

// New builds a Dataset from a header and row-major cells. Short rows are
// padded with missing values so every row matches the header width.
func New(name string, columns []string, rows [][]string) *Dataset {
	cols := make([]string, len(columns))
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		cols[i] = strings.TrimSpace(c)
		idx[cols[i]] = i
	}
	out := make([][]string, len(rows))
	for i, r := range rows {
		row := make([]string, len(cols))
		copy(row, r)
		out[i] = row
	}
	return &Dataset{name: name, columns: cols, index: idx, rows: out}
}

// Name returns the source name (file base or caller-supplied label).
func (d *Dataset) Name() string { return d.name }

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Columns returns the header in source order.
func (d *Dataset) Columns() []string {
	out := make([]string, len(d.columns))
	copy(out, d.columns)
	return out
}

// HasColumn reports whether the named column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column returns a copy of the named column's cells, or ok=false when the
// column is absent. Absence is an expected outcome across differently-shaped
// survey exports, so callers branch on ok instead of handling an error.
func (d *Dataset) Column(name string) ([]string, bool) {
	i, ok := d.index[name]
	if !ok {
		return nil, false
	}
	out := make([]string, len(d.rows))
	for r, row := range d.rows {
		out[r] = row[i]
	}
	return out, true
}

// Row returns a copy of row i.
func (d *Dataset) Row(i int) []string {
	out := make([]string, len(d.columns))
	copy(out, d.rows[i])
	return out
}

// WithColumn returns a new Dataset extended by one column. An existing column
// of the same name is replaced. The receiver is left untouched.
func (d *Dataset) WithColumn(name string, values []string) (*Dataset, error) {
	if len(values) != len(d.rows) {
		return nil, fmt.Errorf("column %s: %d values for %d rows", name, len(values), len(d.rows))
	}
	name = strings.TrimSpace(name)
	if i, ok := d.index[name]; ok {
		rows := make([][]string, len(d.rows))
		for r, row := range d.rows {
			nr := make([]string, len(row))
			copy(nr, row)
			nr[i] = values[r]
			rows[r] = nr
		}
		return &Dataset{name: d.name, columns: d.Columns(), index: copyIndex(d.index), rows: rows}, nil
	}
	cols := append(d.Columns(), name)
	idx := copyIndex(d.index)
	idx[name] = len(cols) - 1
	rows := make([][]string, len(d.rows))
	for r, row := range d.rows {
		nr := make([]string, len(row)+1)
		copy(nr, row)
		nr[len(row)] = values[r]
		rows[r] = nr
	}
	return &Dataset{name: d.name, columns: cols, index: idx, rows: rows}, nil
}

func copyIndex(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Cell is one parsed numeric value; Valid is false for missing or
// non-numeric cells.
type Cell struct {
	Value float64
	Valid bool
}

// Numeric parses the named column as float64 cells. Missing and unparsable
// cells come back as invalid rather than failing the whole column.
func (d *Dataset) Numeric(name string) ([]Cell, bool) {
	raw, ok := d.Column(name)
	if !ok {
		return nil, false
	}
	out := make([]Cell, len(raw))
	for i, v := range raw {
		if f, ok := ParseNumeric(v); ok {
			out[i] = Cell{Value: f, Valid: true}
		}
	}
	return out, true
}

// ParseNumeric parses one cell as a float. Percent signs are stripped since
// survey exports occasionally suffix rates with them.
func ParseNumeric(s string) (float64, bool) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return 0, false
	}
	raw = strings.ReplaceAll(raw, "%", "")
	raw = strings.TrimSpace(raw)
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Max returns the maximum valid value of a numeric column. ok is false when
// the column is absent or holds no valid numbers.
func (d *Dataset) Max(name string) (float64, bool) {
	cells, ok := d.Numeric(name)
	if !ok {
		return 0, false
	}
	var max float64
	found := false
	for _, c := range cells {
		if !c.Valid {
			continue
		}
		if !found || c.Value > max {
			max = c.Value
			found = true
		}
	}
	return max, found
}
