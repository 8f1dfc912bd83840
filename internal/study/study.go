// Package study holds the per-study configuration file: dataset location and
// schema, covariate selections, the transformation set, evaluation settings
// and the discovery-service endpoint. Everything the pipeline once kept as
// implicit global state lives here and is passed explicitly to the component
// that needs it.
package study

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"hfsurv/internal/dataset"
	"hfsurv/internal/transform"
)

// Columns maps raw CSV headers onto the internal schema.
type Columns struct {
	Time   string            `yaml:"time"`   // follow-up time header, default "TIME"
	Event  string            `yaml:"event"`  // event indicator header, default "Event"
	Rename map[string]string `yaml:"rename"` // raw header -> short label
}

// TransformSpec is one expression entry of the study file.
type TransformSpec struct {
	Covariate string  `yaml:"covariate"`
	Form      string  `yaml:"form"` // "reciprocal", "exp", "log", "identity"
	Coef      float64 `yaml:"coef"`
}

// Evaluation controls model comparison and reporting.
type Evaluation struct {
	Horizon   float64 `yaml:"horizon"`   // ROC horizon in days, default 285
	Level     float64 `yaml:"level"`     // confidence level, default 0.95
	Precision int     `yaml:"precision"` // report decimals, default 4
	Ties      string  `yaml:"ties"`      // "efron" (default) or "breslow"
}

// Oracle points at the discovery service and bounds its search.
type Oracle struct {
	BaseURL       string   `yaml:"base_url"`
	APIKeyPath    string   `yaml:"api_key_path"` // file with the bearer token, optional
	MaxComplexity int      `yaml:"max_complexity"`
	Operators     []string `yaml:"operators"`
	MaxRounds     int      `yaml:"max_rounds"`
	MinGain       float64  `yaml:"min_gain"`
}

// Study is the full configuration for one analysis.
type Study struct {
	Name       string   `yaml:"name"`
	Dataset    string   `yaml:"dataset"` // CSV path
	Columns    Columns  `yaml:"columns"`
	Covariates []string `yaml:"covariates"` // raw covariates of interest

	Raw         []string        `yaml:"raw"`         // covariates of the untransformed model
	Transformed []string        `yaml:"transformed"` // derived column labels of the transformed model
	Transforms  []TransformSpec `yaml:"transforms"`

	Evaluation Evaluation `yaml:"evaluation"`
	Oracle     Oracle     `yaml:"oracle"`
	StorePath  string     `yaml:"store"` // SQLite path, default .hfsurv/hfsurv.db
}

// Default returns the reference study: the heart-failure cohort with the
// transformation constants of the prior search.
func Default() *Study {
	s := &Study{
		Name:    "heart-failure",
		Dataset: "data/heart_failure.csv",
		Columns: Columns{
			Time:   "TIME",
			Event:  "Event",
			Rename: map[string]string{"ejection_fraction": "EF"},
		},
		Covariates:  []string{"age", "EF", "serum_creatinine", "serum_sodium", "anaemia", "high_blood_pressure"},
		Raw:         []string{"age", "EF", "serum_creatinine"},
		Transformed: []string{"age_exp", "EF_recip", "serum_creatinine_recip"},
	}
	for _, e := range transform.DefaultSet() {
		s.Transforms = append(s.Transforms, TransformSpec{Covariate: e.Covariate, Form: e.Form.String(), Coef: e.Coef})
	}
	s.applyDefaults()
	return s
}

func (s *Study) applyDefaults() {
	if s.Columns.Time == "" {
		s.Columns.Time = "TIME"
	}
	if s.Columns.Event == "" {
		s.Columns.Event = "Event"
	}
	if s.Evaluation.Horizon == 0 {
		s.Evaluation.Horizon = 285
	}
	if s.Evaluation.Level == 0 {
		s.Evaluation.Level = 0.95
	}
	if s.Evaluation.Precision == 0 {
		s.Evaluation.Precision = 4
	}
	if s.Oracle.MaxComplexity == 0 {
		s.Oracle.MaxComplexity = 8
	}
	if len(s.Oracle.Operators) == 0 {
		s.Oracle.Operators = []string{"add", "mul", "div", "exp", "log"}
	}
	if s.Oracle.MaxRounds == 0 {
		s.Oracle.MaxRounds = 5
	}
	if s.Oracle.MinGain == 0 {
		s.Oracle.MinGain = 0.005
	}
	if s.StorePath == "" {
		s.StorePath = ".hfsurv/hfsurv.db"
	}
}

// Load reads and parses a study file, applying defaults for absent settings.
func Load(path string) (*Study, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read study: %w", err)
	}
	var s Study
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse study %s: %w", path, err)
	}
	if s.Dataset == "" {
		return nil, fmt.Errorf("study %s: dataset path is required", path)
	}
	s.applyDefaults()
	return &s, nil
}

// Schema returns the dataset schema configured for this study.
func (s *Study) Schema() dataset.Schema {
	return dataset.Schema{
		TimeColumn:  s.Columns.Time,
		EventColumn: s.Columns.Event,
		Rename:      s.Columns.Rename,
	}
}

// TransformSet resolves the configured transforms into an executable set.
func (s *Study) TransformSet() (transform.Set, error) {
	if len(s.Transforms) == 0 {
		return transform.DefaultSet(), nil
	}
	set := make(transform.Set, 0, len(s.Transforms))
	for _, spec := range s.Transforms {
		kind, err := transform.ParseKind(spec.Form)
		if err != nil {
			return nil, err
		}
		// A zero coefficient on a parameterized form is a study-file mistake
		// (c/x, exp(c*x) and log(c*x) all degenerate at c=0); report it
		// rather than guessing a constant.
		if spec.Coef == 0 && kind != transform.Identity {
			return nil, fmt.Errorf("study: transform %s(%s) needs a nonzero coef", spec.Form, spec.Covariate)
		}
		set = append(set, transform.Expression{Covariate: spec.Covariate, Form: kind, Coef: spec.Coef})
	}
	return set, nil
}
