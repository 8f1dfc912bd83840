package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Schema describes how a raw CSV maps onto a Table: which headers carry the
// follow-up time and the event indicator, and which headers are renamed to
// short covariate labels (e.g. "ejection_fraction" -> "EF").
type Schema struct {
	TimeColumn  string            // raw header of the follow-up time column
	EventColumn string            // raw header of the event indicator column
	Rename      map[string]string // raw header -> short label; identity if absent
}

// label returns the internal column name for a raw CSV header.
func (s Schema) label(header string) string {
	if renamed, ok := s.Rename[header]; ok {
		return renamed
	}
	return header
}

// Load reads a comma-separated subject file into a Table and validates it.
// Every cell must parse as a number; validation failures name the offending
// column and 1-based data row and are never silently imputed.
func Load(path string, schema Schema) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	rd := csv.NewReader(f)
	header, err := rd.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	names := make([]string, len(header))
	for i, h := range header {
		names[i] = schema.label(h)
	}
	timeCol := schema.label(schema.TimeColumn)
	eventCol := schema.label(schema.EventColumn)

	rows, err := rd.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("dataset %s has no data rows", path)
	}

	cols := make(map[string][]float64, len(names))
	for _, name := range names {
		cols[name] = make([]float64, 0, len(rows))
	}
	for ri, row := range rows {
		if len(row) != len(names) {
			return nil, &ValidationError{Row: ri + 1, Reason: fmt.Sprintf("has %d fields, want %d", len(row), len(names))}
		}
		for ci, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				return nil, &ValidationError{Column: names[ci], Row: ri + 1, Reason: "missing value"}
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, &ValidationError{Column: names[ci], Row: ri + 1, Reason: fmt.Sprintf("not numeric: %q", cell)}
			}
			cols[names[ci]] = append(cols[names[ci]], v)
		}
	}

	t, err := New(names, cols, timeCol, eventCol)
	if err != nil {
		return nil, err
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// WriteCSV writes the table back out as a comma-separated file, one row per
// subject, with the current column order. Used by the transform command to
// materialize an engineered feature set.
func (t *Table) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.names); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	row := make([]string, len(t.names))
	for i := 0; i < t.n; i++ {
		for j, name := range t.names {
			row[j] = strconv.FormatFloat(t.cols[name][i], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	return w.Error()
}
