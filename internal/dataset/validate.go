package dataset

import "fmt"

// ValidationError reports a data error detected before fitting: a missing or
// non-numeric value, a non-positive follow-up time, or a malformed event code.
// Row is 1-based over data rows (header excluded); Row 0 means the whole
// column. Column may be empty for row-shape errors.
type ValidationError struct {
	Column string
	Row    int
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Column == "":
		return fmt.Sprintf("dataset: row %d %s", e.Row, e.Reason)
	case e.Row == 0:
		return fmt.Sprintf("dataset: column %q %s", e.Column, e.Reason)
	default:
		return fmt.Sprintf("dataset: column %q row %d: %s", e.Column, e.Row, e.Reason)
	}
}

// Validate checks the invariants a fit requires: every value observed and
// finite, TIME strictly positive, Event exactly 0 or 1. The first violation
// found is returned; nothing is repaired.
func (t *Table) Validate() error {
	for _, name := range t.names {
		col := t.cols[name]
		for i, v := range col {
			if hasMissing(v) {
				return &ValidationError{Column: name, Row: i + 1, Reason: "missing or non-finite value"}
			}
		}
	}
	for i, v := range t.cols[t.timeCol] {
		if v <= 0 {
			return &ValidationError{Column: t.timeCol, Row: i + 1, Reason: fmt.Sprintf("non-positive time %g", v)}
		}
	}
	for i, v := range t.cols[t.eventCol] {
		if v != 0 && v != 1 {
			return &ValidationError{Column: t.eventCol, Row: i + 1, Reason: fmt.Sprintf("event code %g not in {0,1}", v)}
		}
	}
	return nil
}
