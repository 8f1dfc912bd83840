package transform

import (
	"fmt"
	"math"

	"hfsurv/internal/dataset"
)

// Set is an ordered list of expressions applied together to engineer a
// transformed feature set.
type Set []Expression

// DefaultSet returns the transformation set discovered by the original
// symbolic-regression search over the heart-failure cohort: an exponential of
// age and reciprocals of ejection fraction and serum creatinine. Study files
// may override the constants.
func DefaultSet() Set {
	return Set{
		{Covariate: "age", Form: Exponential, Coef: 0.056},
		{Covariate: "EF", Form: Reciprocal, Coef: 100},
		{Covariate: "serum_creatinine", Form: Reciprocal, Coef: 1},
	}
}

// Names returns the derived column labels in set order.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, e := range s {
		names[i] = e.Name()
	}
	return names
}

// Derive appends one derived column per expression to the table and returns
// the extended table. Columns are computed once here and held fixed; a derived
// value that comes out non-finite (e.g. a reciprocal of zero) is a data error,
// reported with the source covariate and row.
func (s Set) Derive(t *dataset.Table) (*dataset.Table, error) {
	out := t
	for _, e := range s {
		src, err := t.Column(e.Covariate)
		if err != nil {
			return nil, fmt.Errorf("transform %s: %w", e, err)
		}
		derived := make([]float64, len(src))
		for i, x := range src {
			v := e.Apply(x)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, &dataset.ValidationError{
					Column: e.Covariate,
					Row:    i + 1,
					Reason: fmt.Sprintf("value %g is outside the domain of %s", x, e),
				}
			}
			derived[i] = v
		}
		out, err = out.WithColumn(e.Name(), derived)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
