package study

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"hfsurv/internal/transform"
)

func writeStudy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "study.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	s := Default()

	if s.Evaluation.Horizon != 285 {
		t.Errorf("Horizon = %g, want 285", s.Evaluation.Horizon)
	}
	if s.Evaluation.Level != 0.95 {
		t.Errorf("Level = %g, want 0.95", s.Evaluation.Level)
	}
	if diff := cmp.Diff([]string{"age", "EF", "serum_creatinine"}, s.Raw); diff != "" {
		t.Errorf("Raw mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"age_exp", "EF_recip", "serum_creatinine_recip"}, s.Transformed); diff != "" {
		t.Errorf("Transformed mismatch (-want +got):\n%s", diff)
	}

	set, err := s.TransformSet()
	if err != nil {
		t.Fatalf("TransformSet: %v", err)
	}
	if diff := cmp.Diff(transform.DefaultSet(), set); diff != "" {
		t.Errorf("transform set mismatch (-want +got):\n%s", diff)
	}

	schema := s.Schema()
	if schema.TimeColumn != "TIME" || schema.EventColumn != "Event" {
		t.Errorf("schema = %+v, want TIME/Event", schema)
	}
	if got := schema.Rename["ejection_fraction"]; got != "EF" {
		t.Errorf("rename ejection_fraction = %q, want EF", got)
	}
}

func TestLoad(t *testing.T) {
	path := writeStudy(t, `
name: pilot
dataset: data/pilot.csv
columns:
  time: followup_days
  event: died
  rename:
    ejection_fraction: EF
raw: [age, EF]
transformed: [age_exp, EF_recip]
transforms:
  - {covariate: age, form: exp, coef: 0.06}
  - {covariate: EF, form: reciprocal, coef: 100}
evaluation:
  horizon: 200
  ties: breslow
oracle:
  base_url: http://localhost:9090
  max_rounds: 2
store: pilot.db
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if s.Name != "pilot" {
		t.Errorf("Name = %q, want pilot", s.Name)
	}
	if s.Columns.Time != "followup_days" || s.Columns.Event != "died" {
		t.Errorf("columns = %+v", s.Columns)
	}
	if s.Evaluation.Horizon != 200 {
		t.Errorf("Horizon = %g, want 200", s.Evaluation.Horizon)
	}
	if s.Evaluation.Ties != "breslow" {
		t.Errorf("Ties = %q, want breslow", s.Evaluation.Ties)
	}
	// Absent settings fall back to defaults.
	if s.Evaluation.Level != 0.95 {
		t.Errorf("Level = %g, want default 0.95", s.Evaluation.Level)
	}
	if s.Evaluation.Precision != 4 {
		t.Errorf("Precision = %d, want default 4", s.Evaluation.Precision)
	}
	if s.Oracle.MaxRounds != 2 {
		t.Errorf("MaxRounds = %d, want 2", s.Oracle.MaxRounds)
	}
	if s.Oracle.MaxComplexity != 8 {
		t.Errorf("MaxComplexity = %d, want default 8", s.Oracle.MaxComplexity)
	}
	if s.StorePath != "pilot.db" {
		t.Errorf("StorePath = %q, want pilot.db", s.StorePath)
	}

	set, err := s.TransformSet()
	if err != nil {
		t.Fatalf("TransformSet: %v", err)
	}
	want := transform.Set{
		{Covariate: "age", Form: transform.Exponential, Coef: 0.06},
		{Covariate: "EF", Form: transform.Reciprocal, Coef: 100},
	}
	if diff := cmp.Diff(want, set); diff != "" {
		t.Errorf("transform set mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := Load(writeStudy(t, "name: x\n")); err == nil {
		t.Error("expected error for missing dataset path")
	}
	if _, err := Load(writeStudy(t, "dataset: [unclosed")); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestTransformSet_UnknownForm(t *testing.T) {
	s := &Study{Transforms: []TransformSpec{{Covariate: "age", Form: "sigmoid"}}}
	if _, err := s.TransformSet(); err == nil {
		t.Error("expected error for unknown functional form")
	}
}

func TestTransformSet_ZeroCoef(t *testing.T) {
	// A parameterized form with no coefficient is a study-file mistake, most
	// likely a misspelled key; it must not be silently patched over.
	s := &Study{Transforms: []TransformSpec{{Covariate: "serum_creatinine", Form: "reciprocal"}}}
	if _, err := s.TransformSet(); err == nil {
		t.Error("expected error for reciprocal with zero coef")
	}

	s = &Study{Transforms: []TransformSpec{{Covariate: "age", Form: "identity"}}}
	if _, err := s.TransformSet(); err != nil {
		t.Errorf("identity form needs no coef: %v", err)
	}
}
