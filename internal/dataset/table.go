// Package dataset loads and validates the per-subject clinical table that
// every downstream fit consumes: one row per patient, numeric covariate
// columns, a follow-up time column and a binary death-event column.
package dataset

import (
	"fmt"
	"math"
	"slices"
)

// Table is a column-oriented subject table. Columns are float64 slices keyed
// by short covariate labels; the time and event columns are tracked by name.
// A Table is never mutated after construction: derived columns produce a new
// Table sharing the untouched column slices.
type Table struct {
	n        int
	names    []string // column order, time/event included
	cols     map[string][]float64
	timeCol  string
	eventCol string
}

// New builds a Table from named columns. All columns must have the same
// length, and timeCol/eventCol must be present among them.
func New(names []string, cols map[string][]float64, timeCol, eventCol string) (*Table, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("dataset: no columns")
	}
	n := -1
	for _, name := range names {
		col, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("dataset: column %q listed but not provided", name)
		}
		if n == -1 {
			n = len(col)
		} else if len(col) != n {
			return nil, fmt.Errorf("dataset: column %q has %d values, want %d", name, len(col), n)
		}
	}
	if !slices.Contains(names, timeCol) {
		return nil, fmt.Errorf("dataset: time column %q not present", timeCol)
	}
	if !slices.Contains(names, eventCol) {
		return nil, fmt.Errorf("dataset: event column %q not present", eventCol)
	}
	return &Table{n: n, names: slices.Clone(names), cols: cols, timeCol: timeCol, eventCol: eventCol}, nil
}

// N returns the number of subjects.
func (t *Table) N() int { return t.n }

// Names returns the column order, including the time and event columns.
func (t *Table) Names() []string { return slices.Clone(t.names) }

// TimeColumn returns the name of the follow-up time column.
func (t *Table) TimeColumn() string { return t.timeCol }

// EventColumn returns the name of the event indicator column.
func (t *Table) EventColumn() string { return t.eventCol }

// Column returns the values of a named column. The returned slice is shared;
// callers must not modify it.
func (t *Table) Column(name string) ([]float64, error) {
	col, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("dataset: unknown column %q", name)
	}
	return col, nil
}

// Times returns the follow-up time column.
func (t *Table) Times() []float64 {
	return t.cols[t.timeCol]
}

// Events returns the event indicator column as ints. Validate guarantees the
// underlying values are exactly 0 or 1.
func (t *Table) Events() []int {
	raw := t.cols[t.eventCol]
	ev := make([]int, len(raw))
	for i, v := range raw {
		if v != 0 {
			ev[i] = 1
		}
	}
	return ev
}

// EventCount returns the number of observed (uncensored) deaths.
func (t *Table) EventCount() int {
	d := 0
	for _, v := range t.cols[t.eventCol] {
		if v != 0 {
			d++
		}
	}
	return d
}

// WithColumn returns a new Table with an extra column appended. The source
// table is unchanged. Appending over an existing name is an error.
func (t *Table) WithColumn(name string, values []float64) (*Table, error) {
	if _, exists := t.cols[name]; exists {
		return nil, fmt.Errorf("dataset: column %q already present", name)
	}
	if len(values) != t.n {
		return nil, fmt.Errorf("dataset: column %q has %d values, want %d", name, len(values), t.n)
	}
	cols := make(map[string][]float64, len(t.cols)+1)
	for k, v := range t.cols {
		cols[k] = v
	}
	cols[name] = values
	names := append(slices.Clone(t.names), name)
	return &Table{n: t.n, names: names, cols: cols, timeCol: t.timeCol, eventCol: t.eventCol}, nil
}

// Select returns a sub-table keeping only the named covariates plus the time
// and event columns.
func (t *Table) Select(covariates ...string) (*Table, error) {
	names := make([]string, 0, len(covariates)+2)
	cols := make(map[string][]float64, len(covariates)+2)
	for _, name := range covariates {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		cols[name] = col
	}
	names = append(names, t.timeCol, t.eventCol)
	cols[t.timeCol] = t.cols[t.timeCol]
	cols[t.eventCol] = t.cols[t.eventCol]
	return &Table{n: t.n, names: names, cols: cols, timeCol: t.timeCol, eventCol: t.eventCol}, nil
}

// hasMissing reports whether v is NaN or infinite.
func hasMissing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
