package format

import (
	"fmt"

	"hfsurv/internal/survival"
)

// num formats a float at the report precision.
func num(v float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, v)
}

// pval formats a p-value: small values switch to scientific notation so they
// do not render as an uninformative 0.0000.
func pval(p float64, precision int) string {
	if p != 0 && p < pow10(-precision) {
		return fmt.Sprintf("%.*e", 1, p)
	}
	return num(p, precision)
}

func pow10(exp int) float64 {
	v := 1.0
	for i := 0; i > exp; i-- {
		v /= 10
	}
	return v
}

// ModelTable renders one fitted model's per-covariate report: coefficient,
// hazard ratio with confidence bounds, Wald z and p-value, at the given
// decimal precision.
func ModelTable(rows []survival.SummaryRow, level float64, precision int, mode Mode) string {
	t := NewTable(mode)
	lo := fmt.Sprintf("HR lower %g%%", level*100)
	hi := fmt.Sprintf("HR upper %g%%", level*100)
	t.Header("covariate", "coef", "se", "HR", lo, hi, "z", "p")
	t.RightAlign(2, 3, 4, 5, 6, 7, 8)
	for _, r := range rows {
		t.Row(
			r.Covariate,
			num(r.Coef, precision),
			num(r.SE, precision),
			num(r.HR, precision),
			num(r.HRLower, precision),
			num(r.HRUpper, precision),
			num(r.Z, precision),
			pval(r.P, precision),
		)
	}
	return t.String()
}

// ComparisonEntry is one model's discrimination result at the horizon.
type ComparisonEntry struct {
	Label string
	AUC   float64
}

// ComparisonTable renders the models' AUCs side by side for one horizon.
func ComparisonTable(entries []ComparisonEntry, horizon float64, precision int, mode Mode) string {
	t := NewTable(mode)
	t.Header("model", fmt.Sprintf("AUC @ day %g", horizon))
	t.RightAlign(2)
	for _, e := range entries {
		t.Row(e.Label, num(e.AUC, precision))
	}
	return t.String()
}
