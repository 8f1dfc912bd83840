package format

import (
	"strings"
	"testing"

	"hfsurv/internal/survival"
)

var sampleRows = []survival.SummaryRow{
	{Covariate: "age_exp", Coef: 0.02127, SE: 0.00405, HR: 1.02150, HRLower: 1.01341, HRUpper: 1.02965, Z: 5.2519, P: 1.5e-7},
	{Covariate: "EF_recip", Coef: 0.6771, SE: 0.1495, HR: 1.9682, HRLower: 1.4684, HRUpper: 2.6381, Z: 4.5290, P: 0.0321},
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", ASCII},
		{"ascii", ASCII},
		{"markdown", Markdown},
		{"md", Markdown},
	}
	for _, tt := range tests {
		if got := ParseMode(tt.in); got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestModelTable(t *testing.T) {
	out := ModelTable(sampleRows, 0.95, 4, ASCII)

	for _, want := range []string{
		"covariate", "HR lower 95%", "HR upper 95%",
		"age_exp", "EF_recip",
		"0.0213", // coef at 4 decimals
		"1.9682", // HR
		"0.0321", // ordinary p-value stays fixed-point
		"1.5e-07", // tiny p-value switches to scientific
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestModelTable_Precision(t *testing.T) {
	out := ModelTable(sampleRows, 0.95, 2, ASCII)
	if !strings.Contains(out, "1.97") {
		t.Errorf("output missing HR at 2 decimals:\n%s", out)
	}
	if strings.Contains(out, "1.9682") {
		t.Errorf("output carries 4-decimal value at precision 2:\n%s", out)
	}
}

func TestModelTable_Markdown(t *testing.T) {
	out := ModelTable(sampleRows, 0.95, 4, Markdown)
	if !strings.HasPrefix(strings.TrimSpace(out), "|") {
		t.Errorf("markdown output does not look like a table:\n%s", out)
	}
	if !strings.Contains(out, "| age_exp") {
		t.Errorf("markdown output missing covariate cell:\n%s", out)
	}
}

func TestComparisonTable(t *testing.T) {
	entries := []ComparisonEntry{
		{Label: "raw", AUC: 0.7412},
		{Label: "transformed", AUC: 0.7835},
	}
	out := ComparisonTable(entries, 285, 4, ASCII)
	for _, want := range []string{"AUC @ day 285", "raw", "transformed", "0.7412", "0.7835"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
